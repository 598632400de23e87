// Package webrtc exposes the kiosk browser's webcam as a camera.Device.
//
// The browser is the offerer: Open asks it (through the UI hub) to call
// getUserMedia and send an SDP offer. VP8 keyframes from the remote track
// are decoded with ffmpeg and the latest one is served by Capture. An Opus
// track back to the browser carries the audio cues.
package webrtc

import (
	"context"
	"errors"
	"sync"
	"time"

	"checkin-kiosk/internal/audio"
	"checkin-kiosk/internal/camera"
	"checkin-kiosk/models"

	"github.com/pion/webrtc/v4"
	"gocv.io/x/gocv"
)

var (
	// ErrCameraDenied means the browser refused or failed getUserMedia.
	ErrCameraDenied = errors.New("browser camera denied")
	// ErrOpenTimeout means no video track arrived within the open timeout.
	ErrOpenTimeout = errors.New("timed out waiting for browser camera")
	// ErrBusy is returned by Open while another stream is live.
	ErrBusy = errors.New("browser camera already in use")
	// ErrUnknownSession is returned for signals that match no live session.
	ErrUnknownSession = errors.New("unknown camera session")
)

// Events sent to the kiosk page
const (
	EventCameraRequest = "camera_request"
	EventCameraStop    = "camera_stop"
	EventAnswer        = "answer"
	EventCandidate     = "candidate"
)

// Signaler delivers events to the kiosk page.
type Signaler interface {
	Broadcast(event string, payload any)
}

// ============================================================
// SIGNALING PAYLOADS
// ============================================================

type CameraRequest struct {
	Session string `json:"session"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

type SessionRef struct {
	Session string `json:"session"`
}

type Description struct {
	Session string `json:"session"`
	Type    string `json:"type"`
	SDP     string `json:"sdp"`
}

type Candidate struct {
	Session   string                  `json:"session"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
}

// ============================================================
// CONFIG
// ============================================================

type Config struct {
	ICEServers      []string
	OpenTimeout     time.Duration
	PLIInterval     time.Duration
	MaxDecodeWidth  int
	MaxDecodeHeight int
	SampleBufferMax uint16
	JPEGQuality     int
	AudioEnabled    bool
}

func DefaultConfig() Config {
	return Config{
		ICEServers:      []string{"stun:stun.l.google.com:19302"},
		OpenTimeout:     10 * time.Second,
		PLIInterval:     1 * time.Second,
		MaxDecodeWidth:  640,
		MaxDecodeHeight: 480,
		SampleBufferMax: 128,
		JPEGQuality:     90,
		AudioEnabled:    true,
	}
}

// ConfigFrom maps the kiosk file settings onto a Config.
func ConfigFrom(cfg *models.Config) Config {
	c := DefaultConfig()
	c.ICEServers = cfg.WebRTC.ICEServers
	if cfg.WebRTC.OpenTimeout > 0 {
		c.OpenTimeout = cfg.WebRTC.OpenTimeout
	}
	if cfg.WebRTC.PLIInterval > 0 {
		c.PLIInterval = cfg.WebRTC.PLIInterval
	}
	if cfg.WebRTC.MaxDecodeWidth > 0 && cfg.WebRTC.MaxDecodeHeight > 0 {
		c.MaxDecodeWidth, c.MaxDecodeHeight = cfg.WebRTC.MaxDecodeWidth, cfg.WebRTC.MaxDecodeHeight
	}
	if cfg.WebRTC.SampleBufferMax > 0 {
		c.SampleBufferMax = cfg.WebRTC.SampleBufferMax
	}
	if cfg.Kiosk.JPEGQuality > 0 {
		c.JPEGQuality = cfg.Kiosk.JPEGQuality
	}
	c.AudioEnabled = cfg.Audio.Enabled
	return c
}

// ============================================================
// SESSION STATE
// ============================================================

// session is one browser camera stream, from camera_request to Stop.
type session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc

	// closed once with the outcome of Open
	ready     chan struct{}
	readyOnce sync.Once
	openErr   error

	mu          sync.Mutex
	pc          *webrtc.PeerConnection
	pendingICE  []webrtc.ICECandidateInit
	iceReady    bool
	audioPlayer *audio.Player
	latest      *gocv.Mat
	stats       camera.Stats
	stopOnce    sync.Once
	stopped     bool
}

