package ui

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"checkin-kiosk/internal/camera"
	"checkin-kiosk/internal/kiosk"
	"checkin-kiosk/models"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Kiosk is the controller surface the page drives.
type Kiosk interface {
	Start(ctx context.Context) error
	Stop()
	Toggle(ctx context.Context) error
	Confirm(ctx context.Context) error
	Advance()
	State() kiosk.State
}

// StatsSource reports the auth service's counters.
type StatsSource interface {
	Stats(ctx context.Context) (models.AuthStats, error)
}

// CaptureSource reports counters for a remote camera's live stream.
type CaptureSource interface {
	Stats() (camera.Stats, bool)
}

// SignalHandler receives WebRTC signaling from the page. It is nil when the
// kiosk uses a local webcam.
type SignalHandler interface {
	HandleOffer(session, sdp string) error
	HandleCandidate(session string, candidate []byte) error
	HandleCameraError(session, message string) error
}

// Server is the kiosk page's HTTP and websocket endpoint.
type Server struct {
	hub     *Hub
	kiosk   Kiosk
	stats   StatsSource
	signals SignalHandler
	capture CaptureSource

	router     *chi.Mux
	httpServer *http.Server
	upgrader   websocket.Upgrader

	// outlives individual requests; websocket actions run under it
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer builds the router. stats and signals may be nil.
func NewServer(addr string, hub *Hub, k Kiosk, stats StatsSource, signals SignalHandler) *Server {
	r := chi.NewRouter()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		hub:     hub,
		kiosk:   k,
		stats:   stats,
		signals: signals,
		router:  r,
		ctx:     ctx,
		cancel:  cancel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	s.setupRoutes()
	s.registerMessageHandlers()

	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	return s
}

// Start serves until Shutdown.
func (s *Server) Start() error {
	log.Printf("🖥️  Kiosk page on http://%s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and disconnects every page.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down kiosk page server...")
	s.cancel()
	s.hub.Close()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// SetCapture adds the remote camera's counters to the state response.
func (s *Server) SetCapture(src CaptureSource) {
	s.capture = src
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}

// ============================================================
// WEBSOCKET
// ============================================================

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ WebSocket upgrade: %v", err)
		return
	}

	c := newClient(uuid.NewString(), s.hub, conn)
	s.hub.register(c)

	go c.writePump()
	go c.readPump()
}
