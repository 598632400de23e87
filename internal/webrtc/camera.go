package webrtc

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"checkin-kiosk/internal/audio"
	"checkin-kiosk/internal/camera"
	"checkin-kiosk/internal/camera/cvimage"
	"checkin-kiosk/internal/vp8"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
)

// RemoteCamera is a camera.Device backed by the kiosk browser's webcam.
// At most one stream is live at a time.
type RemoteCamera struct {
	cfg      Config
	signaler Signaler
	library  *audio.Library
	decoder  *vp8.Decoder

	mu      sync.Mutex
	current *session
}

// NewRemoteCamera wires the camera to the page signaler. library may be nil.
func NewRemoteCamera(cfg Config, signaler Signaler, library *audio.Library) *RemoteCamera {
	if library == nil {
		library = audio.NewLibrary()
	}
	return &RemoteCamera{
		cfg:      cfg,
		signaler: signaler,
		library:  library,
		decoder:  vp8.NewDecoder(cfg.MaxDecodeWidth, cfg.MaxDecodeHeight),
	}
}

func (r *RemoteCamera) Name() string { return "browser" }

// Open asks the page for its webcam and waits until video arrives, the
// browser reports an error, ctx ends, or the open timeout passes.
func (r *RemoteCamera) Open(ctx context.Context, width, height int) (camera.Stream, error) {
	r.mu.Lock()
	if r.current != nil {
		r.mu.Unlock()
		return nil, ErrBusy
	}
	sctx, cancel := context.WithCancel(context.Background())
	s := &session{
		id:         uuid.NewString(),
		ctx:        sctx,
		cancel:     cancel,
		ready:      make(chan struct{}),
		pendingICE: make([]webrtc.ICECandidateInit, 0, 10),
	}
	r.current = s
	r.mu.Unlock()

	log.Printf("📡 Requesting browser camera (session %s, %dx%d)", s.id, width, height)
	r.signaler.Broadcast(EventCameraRequest, CameraRequest{Session: s.id, Width: width, Height: height})

	timer := time.NewTimer(r.cfg.OpenTimeout)
	defer timer.Stop()

	var err error
	select {
	case <-s.ready:
		err = s.openErr
	case <-timer.C:
		err = ErrOpenTimeout
	case <-ctx.Done():
		err = ctx.Err()
	}

	if err != nil {
		r.release(s)
		return nil, err
	}

	log.Printf("✅ Browser camera streaming (session %s)", s.id)
	return &remoteStream{camera: r, session: s}, nil
}

// Play implements kiosk.Cues over the live session's audio track.
func (r *RemoteCamera) Play(cue string) {
	s := r.session()
	if s == nil {
		return
	}

	s.mu.Lock()
	player := s.audioPlayer
	s.mu.Unlock()
	if player == nil {
		return
	}

	item, ok := r.library.Item(cue)
	if !ok {
		log.Printf("⚠️  Audio cue %s not configured", cue)
		return
	}
	player.PlayNow(item)
}

// Stats returns capture counters for the live session, including remote
// candidates still waiting for the answer.
func (r *RemoteCamera) Stats() (camera.Stats, bool) {
	s := r.session()
	if s == nil {
		return camera.Stats{}, false
	}
	s.mu.Lock()
	stats := s.stats
	stats.PendingCandidates = len(s.pendingICE)
	player := s.audioPlayer
	s.mu.Unlock()

	if player != nil {
		stats.CuesPlayed = player.Played()
		if playing, current, _ := player.Status(); playing {
			stats.CuePlaying = current
		}
	}
	return stats, true
}

// Close releases the live stream, if any.
func (r *RemoteCamera) Close() {
	if s := r.session(); s != nil {
		r.release(s)
	}
}

func (r *RemoteCamera) session() *session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// lookup returns the live session with the given id.
func (r *RemoteCamera) lookup(id string) (*session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil || r.current.id != id {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	return r.current, nil
}

// release tears a session down once and tells the page to stop its tracks.
func (r *RemoteCamera) release(s *session) {
	r.mu.Lock()
	if r.current == s {
		r.current = nil
	}
	r.mu.Unlock()

	s.stopOnce.Do(func() {
		log.Printf("🧹 Cleaning up session %s", s.id)

		s.cancel()
		s.markReady(camera.ErrStreamStopped)

		s.mu.Lock()
		s.stopped = true
		pc := s.pc
		player := s.audioPlayer
		if s.latest != nil {
			s.latest.Close()
			s.latest = nil
		}
		s.mu.Unlock()

		if player != nil {
			player.Stop()
		}
		if pc != nil {
			if err := pc.Close(); err != nil {
				log.Printf("   ⚠️  PC close: %v", err)
			}
		}

		r.signaler.Broadcast(EventCameraStop, SessionRef{Session: s.id})
		log.Printf("   ✅ Cleanup complete")
	})
}

// markReady records the outcome of Open; only the first call counts.
func (s *session) markReady(err error) {
	s.readyOnce.Do(func() {
		s.openErr = err
		close(s.ready)
	})
}

// ============================================================
// STREAM
// ============================================================

type remoteStream struct {
	camera  *RemoteCamera
	session *session
}

// Capture encodes the most recent decoded keyframe.
func (rs *remoteStream) Capture() (camera.Frame, error) {
	s := rs.session
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return camera.Frame{}, camera.ErrStreamStopped
	}
	if s.latest == nil {
		return camera.Frame{}, camera.ErrNoFrame
	}
	return cvimage.EncodeJPEG(*s.latest, rs.camera.cfg.JPEGQuality)
}

func (rs *remoteStream) Stop() error {
	rs.camera.release(rs.session)
	return nil
}
