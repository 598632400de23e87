// Package camera defines the stream contract the kiosk controller drives.
// Implementations live in camera/webcam (local device via gocv) and in
// internal/webrtc (the kiosk browser's webcam over a peer connection).
package camera

import (
	"context"
	"errors"
)

// ErrStreamStopped is returned by Capture after Stop.
var ErrStreamStopped = errors.New("camera stream stopped")

// ErrNoFrame is returned when the stream is open but has not produced a frame yet.
var ErrNoFrame = errors.New("no frame available")

// Frame is one JPEG encoded video frame at the stream's native resolution.
type Frame struct {
	JPEG   []byte
	Width  int
	Height int
}

// Stats counts what a remote stream's capture pipeline has seen.
type Stats struct {
	Samples           int `json:"samples"`
	Keyframes         int `json:"keyframes"`
	Decoded           int `json:"decoded"`
	Failures          int `json:"failures"`
	PendingCandidates int `json:"pending_candidates"`

	CuesPlayed int    `json:"cues_played"`
	CuePlaying string `json:"cue_playing,omitempty"`
}

// Device hands out camera streams.
type Device interface {
	// Open requests a width x height stream. An error means access was
	// denied or the hardware is unavailable.
	Open(ctx context.Context, width, height int) (Stream, error)
	Name() string
}

// Stream is a live camera stream owned by exactly one caller.
type Stream interface {
	Capture() (Frame, error)
	// Stop releases every underlying track/device. Safe to call twice.
	Stop() error
}
