// Package ui serves the kiosk page and pushes controller state to it over
// a websocket.
package ui

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"checkin-kiosk/internal/kiosk"
)

// Events sent to the page
const (
	EventPanel   = "panel"
	EventToggle  = "toggle"
	EventAlert   = "alert"
	EventOfficer = "officer"
	EventHello   = "hello"
)

// Message types received from the page
const (
	MsgAction      = "action"
	MsgOfficer     = "officer"
	MsgOffer       = "offer"
	MsgCandidate   = "candidate"
	MsgCameraError = "camera_error"
)

// Envelope is the websocket frame in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// MessageHandler handles one inbound message type.
type MessageHandler func(clientID string, data json.RawMessage)

// ============================================================
// HUB
// ============================================================

// Hub fans events out to every connected page. It is the controller's
// kiosk.View and OfficerSource.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client

	// replayed to pages that connect later
	stateMu   sync.RWMutex
	panel     *kiosk.Panel
	toggle    *kiosk.Toggle
	officerID string

	handlers   map[string][]MessageHandler
	handlersMu sync.RWMutex
	wg         sync.WaitGroup

	verbose bool
}

func NewHub() *Hub {
	return &Hub{
		clients:  make(map[string]*client),
		handlers: make(map[string][]MessageHandler),
	}
}

func (h *Hub) SetVerbose(verbose bool) {
	h.verbose = verbose
}

// ============================================================
// EVENT SYSTEM
// ============================================================

// On registers a handler for an inbound message type.
func (h *Hub) On(msgType string, handler MessageHandler) {
	h.handlersMu.Lock()
	defer h.handlersMu.Unlock()
	h.handlers[msgType] = append(h.handlers[msgType], handler)
}

// emit runs handlers concurrently so a slow one (camera open) never
// blocks the read loop that will deliver its answer.
func (h *Hub) emit(clientID string, env Envelope) {
	h.handlersMu.RLock()
	handlers := h.handlers[env.Type]
	h.handlersMu.RUnlock()

	if len(handlers) == 0 {
		log.Printf("⚠️  Unhandled message type: %s", env.Type)
		return
	}

	for _, handler := range handlers {
		hd := handler
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("⚠️  Handler panic for message '%s': %v", env.Type, r)
				}
			}()
			hd(clientID, env.Data)
		}()
	}
}

// Wait blocks until running handlers return.
func (h *Hub) Wait() {
	h.wg.Wait()
}

// ============================================================
// BROADCAST
// ============================================================

// Broadcast sends an event to every connected page. Slow pages drop events
// rather than stall the controller.
func (h *Hub) Broadcast(event string, payload any) {
	frame, err := encode(event, payload)
	if err != nil {
		log.Printf("⚠️  Broadcast %s: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		c.enqueue(frame)
	}

	if h.verbose {
		log.Printf("📤 %s -> %d page(s)", event, len(h.clients))
	}
}

func encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", event, err)
	}
	return json.Marshal(Envelope{Type: event, Data: data})
}

// ClientCount returns how many pages are connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	log.Printf("🔌 Page connected: %s", c.id)

	if frame, err := encode(EventHello, map[string]string{"client_id": c.id}); err == nil {
		c.enqueue(frame)
	}

	h.stateMu.RLock()
	panel, toggle, officer := h.panel, h.toggle, h.officerID
	h.stateMu.RUnlock()

	if toggle != nil {
		if frame, err := encode(EventToggle, toggle); err == nil {
			c.enqueue(frame)
		}
	}
	if panel != nil {
		if frame, err := encode(EventPanel, panel); err == nil {
			c.enqueue(frame)
		}
	}
	if officer != "" {
		if frame, err := encode(EventOfficer, officerPayload{OfficerID: officer}); err == nil {
			c.enqueue(frame)
		}
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		c.closeSend()
	}
	h.mu.Unlock()

	log.Printf("🔌 Page disconnected: %s", c.id)
}

// Close disconnects every page.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

// ============================================================
// KIOSK VIEW
// ============================================================

func (h *Hub) ShowPanel(p kiosk.Panel) {
	h.stateMu.Lock()
	h.panel = &p
	h.stateMu.Unlock()
	h.Broadcast(EventPanel, p)
}

func (h *Hub) ShowToggle(t kiosk.Toggle) {
	h.stateMu.Lock()
	h.toggle = &t
	h.stateMu.Unlock()
	h.Broadcast(EventToggle, t)
}

func (h *Hub) Alert(message string) {
	h.Broadcast(EventAlert, alertPayload{Message: message})
}

// ============================================================
// OFFICER SOURCE
// ============================================================

type officerPayload struct {
	OfficerID string `json:"officer_id"`
}

type alertPayload struct {
	Message string `json:"message"`
}

// OfficerID returns the identifier last entered on any page.
func (h *Hub) OfficerID() string {
	h.stateMu.RLock()
	defer h.stateMu.RUnlock()
	return h.officerID
}

// SetOfficerID records the operator's identifier and syncs other pages.
func (h *Hub) SetOfficerID(id string) {
	h.stateMu.Lock()
	changed := h.officerID != id
	h.officerID = id
	h.stateMu.Unlock()

	if changed {
		h.Broadcast(EventOfficer, officerPayload{OfficerID: id})
	}
}
