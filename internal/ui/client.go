package ui

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 256 * 1024 // SDP offers run to a few KB
	sendQueueSize  = 64
)

// client is one connected kiosk page.
type client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	sendMu    sync.Mutex
	sendDone  bool
	closeOnce sync.Once
}

func newClient(id string, hub *Hub, conn *websocket.Conn) *client {
	return &client{
		id:   id,
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendQueueSize),
	}
}

func (c *client) enqueue(frame []byte) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendDone {
		return
	}
	select {
	case c.send <- frame:
	default:
		log.Printf("⚠️  Page %s send queue full, dropping frame", c.id)
	}
}

func (c *client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.sendDone {
		c.sendDone = true
		close(c.send)
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		_ = c.conn.Close()
	})
}

// readPump decodes page messages until the connection drops.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) &&
				!errors.Is(err, websocket.ErrCloseSent) {
				log.Printf("❌ WebSocket read error (%s): %v", c.id, err)
			}
			return
		}

		if messageType != websocket.TextMessage {
			log.Printf("📄 Binary message (unexpected) from %s", c.id)
			continue
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			log.Printf("⚠️  Bad message from %s: %v", c.id, err)
			continue
		}

		if c.hub.verbose {
			log.Printf("📥 %s from %s", env.Type, c.id)
		}
		c.hub.emit(c.id, env)
	}
}

// writePump drains the send queue and keeps the connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Printf("❌ WebSocket write error (%s): %v", c.id, err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
