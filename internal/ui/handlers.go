package ui

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"checkin-kiosk/internal/camera"
	"checkin-kiosk/internal/kiosk"
	"checkin-kiosk/internal/ui/static"

	"github.com/go-chi/chi/v5"
)

func (s *Server) setupRoutes() {
	s.router.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.router.Get("/ws", s.serveWS)

	s.router.Route("/api/kiosk", func(r chi.Router) {
		r.Post("/start", s.handleStart)
		r.Post("/stop", s.handleStop)
		r.Post("/toggle", s.handleToggle)
		r.Post("/confirm", s.handleConfirm)
		r.Post("/next", s.handleNext)
		r.Put("/officer", s.handleOfficer)
		r.Get("/state", s.handleState)
		r.Get("/stats", s.handleStats)
	})

	fileServer := http.FileServer(static.GetFileSystem())
	s.router.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ".") {
			r.URL.Path = "/"
		}
		w.Header().Set("Cache-Control", "no-cache")
		fileServer.ServeHTTP(w, r)
	})
}

// ============================================================
// RESPONSES
// ============================================================

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// StateResponse is the controller snapshot plus page-side details.
type StateResponse struct {
	kiosk.State
	OfficerID string `json:"officer_id"`
	Pages     int    `json:"pages"`

	// set only while a remote camera stream is live
	Capture *camera.Stats `json:"capture,omitempty"`
}

func (s *Server) state() StateResponse {
	resp := StateResponse{
		State:     s.kiosk.State(),
		OfficerID: s.hub.OfficerID(),
		Pages:     s.hub.ClientCount(),
	}
	if s.capture != nil {
		if stats, live := s.capture.Stats(); live {
			resp.Capture = &stats
		}
	}
	return resp
}

// ============================================================
// KIOSK ACTIONS
// ============================================================

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := s.kiosk.Start(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.kiosk.Stop()
	respondJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if err := s.kiosk.Toggle(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	if err := s.kiosk.Confirm(r.Context()); err != nil {
		respondError(w, confirmStatus(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, s.state())
}

func confirmStatus(err error) int {
	switch {
	case errors.Is(err, kiosk.ErrConfirmRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, kiosk.ErrConfirmInProgress):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.kiosk.Advance()
	respondJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleOfficer(w http.ResponseWriter, r *http.Request) {
	var body officerPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.hub.SetOfficerID(strings.TrimSpace(body.OfficerID))
	respondJSON(w, http.StatusOK, officerPayload{OfficerID: s.hub.OfficerID()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		respondError(w, http.StatusNotImplemented, "stats not available")
		return
	}
	stats, err := s.stats.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// ============================================================
// PAGE MESSAGES
// ============================================================

type actionMessage struct {
	Name string `json:"name"`
}

type descriptionMessage struct {
	Session string `json:"session"`
	SDP     string `json:"sdp"`
}

type candidateMessage struct {
	Session   string          `json:"session"`
	Candidate json.RawMessage `json:"candidate"`
}

type cameraErrorMessage struct {
	Session string `json:"session"`
	Message string `json:"message"`
}

func (s *Server) registerMessageHandlers() {
	s.hub.On(MsgAction, func(clientID string, data json.RawMessage) {
		var msg actionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("⚠️  Bad action from %s: %v", clientID, err)
			return
		}
		if err := s.runAction(s.ctx, msg.Name); err != nil {
			log.Printf("⚠️  Action %s: %v", msg.Name, err)
		}
	})

	s.hub.On(MsgOfficer, func(clientID string, data json.RawMessage) {
		var msg officerPayload
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("⚠️  Bad officer from %s: %v", clientID, err)
			return
		}
		s.hub.SetOfficerID(strings.TrimSpace(msg.OfficerID))
	})

	s.hub.On(MsgOffer, func(clientID string, data json.RawMessage) {
		var msg descriptionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("⚠️  Bad offer from %s: %v", clientID, err)
			return
		}
		if s.signals == nil {
			return
		}
		if err := s.signals.HandleOffer(msg.Session, msg.SDP); err != nil {
			log.Printf("❌ Offer: %v", err)
		}
	})

	s.hub.On(MsgCandidate, func(clientID string, data json.RawMessage) {
		var msg candidateMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("⚠️  Bad candidate from %s: %v", clientID, err)
			return
		}
		if s.signals == nil {
			return
		}
		if err := s.signals.HandleCandidate(msg.Session, msg.Candidate); err != nil {
			log.Printf("⚠️  Candidate: %v", err)
		}
	})

	s.hub.On(MsgCameraError, func(clientID string, data json.RawMessage) {
		var msg cameraErrorMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("⚠️  Bad camera_error from %s: %v", clientID, err)
			return
		}
		if s.signals == nil {
			return
		}
		if err := s.signals.HandleCameraError(msg.Session, msg.Message); err != nil {
			log.Printf("⚠️  Camera error: %v", err)
		}
	})
}

// runAction maps a page button to a controller operation.
func (s *Server) runAction(ctx context.Context, name string) error {
	switch name {
	case "start":
		return s.kiosk.Start(ctx)
	case "stop":
		s.kiosk.Stop()
	case "toggle":
		return s.kiosk.Toggle(ctx)
	case "confirm":
		return s.kiosk.Confirm(ctx)
	case "next":
		s.kiosk.Advance()
	default:
		return errors.New("unknown action " + name)
	}
	return nil
}
