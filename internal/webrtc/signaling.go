package webrtc

import (
	"encoding/json"
	"fmt"
	"log"

	"checkin-kiosk/internal/utils"

	"github.com/pion/webrtc/v4"
)

// Answer bitrate hints, in kbps
const (
	answerBandwidthKbps = 2500
	minVideoKbps        = 1500
	maxVideoKbps        = 3000
)

// ============================================================
// OFFER HANDLING
// ============================================================

// HandleOffer answers the page's SDP offer for a pending session.
func (r *RemoteCamera) HandleOffer(sessionID, sdp string) error {
	s, err := r.lookup(sessionID)
	if err != nil {
		return err
	}

	log.Printf("📝 Processing offer (session %s)...", sessionID)

	pc, err := r.createPeerConnection()
	if err != nil {
		s.markReady(err)
		return fmt.Errorf("failed to create peer connection: %w", err)
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		_ = pc.Close()
		return fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}
	s.pc = pc
	s.mu.Unlock()

	r.setupPeerConnectionHandlers(s, pc)

	fail := func(err error) error {
		s.markReady(err)
		return err
	}

	if err := pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeOffer,
		SDP:  sdp,
	}); err != nil {
		return fail(fmt.Errorf("failed to set remote description: %w", err))
	}

	if r.cfg.AudioEnabled {
		if err := r.setupAudioTrack(s, pc); err != nil {
			log.Printf("⚠️  Failed to setup audio: %v", err)
		}
	}

	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		return fail(fmt.Errorf("failed to create answer: %w", err))
	}

	if err := pc.SetLocalDescription(answer); err != nil {
		return fail(fmt.Errorf("failed to set local description: %w", err))
	}

	r.signaler.Broadcast(EventAnswer, Description{
		Session: sessionID,
		Type:    webrtc.SDPTypeAnswer.String(),
		SDP:     utils.PatchSDPForQuality(answer.SDP, answerBandwidthKbps, minVideoKbps, maxVideoKbps),
	})

	s.mu.Lock()
	s.iceReady = true
	pending := s.pendingICE
	s.pendingICE = nil
	s.mu.Unlock()

	if len(pending) > 0 {
		log.Printf("📦 Processing %d pending ICE candidates...", len(pending))
		for i, candidate := range pending {
			if err := pc.AddICECandidate(candidate); err != nil {
				log.Printf("⚠️  Failed to add pending ICE %d: %v", i+1, err)
			}
		}
	}

	log.Println("✅ Answer sent!")
	return nil
}

// ============================================================
// ICE CANDIDATE HANDLING
// ============================================================

// HandleCandidate adds a trickled browser candidate, queueing it until the
// answer is in place.
func (r *RemoteCamera) HandleCandidate(sessionID string, raw []byte) error {
	var candidate webrtc.ICECandidateInit
	if err := json.Unmarshal(raw, &candidate); err != nil {
		return fmt.Errorf("invalid candidate: %w", err)
	}

	s, err := r.lookup(sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.iceReady || s.pc == nil {
		s.pendingICE = append(s.pendingICE, candidate)
		log.Printf("📦 Queued ICE (total: %d)", len(s.pendingICE))
		return nil
	}

	if err := s.pc.AddICECandidate(candidate); err != nil {
		log.Printf("⚠️  Failed to add ICE: %v", err)
		return err
	}

	sdpMid := "unknown"
	if candidate.SDPMid != nil {
		sdpMid = *candidate.SDPMid
	}
	log.Printf("✅ Added ICE (sdpMid: %s)", sdpMid)
	return nil
}

// HandleCameraError fails a pending Open with ErrCameraDenied.
func (r *RemoteCamera) HandleCameraError(sessionID, message string) error {
	s, err := r.lookup(sessionID)
	if err != nil {
		return err
	}
	log.Printf("❌ Browser camera error (session %s): %s", sessionID, message)
	s.markReady(fmt.Errorf("%w: %s", ErrCameraDenied, message))
	return nil
}
