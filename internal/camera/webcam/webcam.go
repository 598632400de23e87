// Package webcam opens a local capture device through OpenCV.
package webcam

import (
	"context"
	"fmt"
	"log"
	"sync"

	"checkin-kiosk/internal/camera"
	"checkin-kiosk/internal/camera/cvimage"

	"gocv.io/x/gocv"
)

// Device is a local webcam addressed by its OpenCV device index.
type Device struct {
	ID          int
	JPEGQuality int
}

func NewDevice(id, jpegQuality int) *Device {
	return &Device{ID: id, JPEGQuality: jpegQuality}
}

func (d *Device) Name() string {
	return fmt.Sprintf("webcam:%d", d.ID)
}

// Open opens the device and asks for width x height. Drivers may pick
// the nearest mode they support; frames carry the actual size.
func (d *Device) Open(ctx context.Context, width, height int) (camera.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vc, err := gocv.VideoCaptureDevice(d.ID)
	if err != nil {
		return nil, fmt.Errorf("error opening video capture device %d: %w", d.ID, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("video capture device %d not available", d.ID)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(height))

	log.Printf("📷 Webcam %d opened (%.0fx%.0f)", d.ID,
		vc.Get(gocv.VideoCaptureFrameWidth), vc.Get(gocv.VideoCaptureFrameHeight))

	return &stream{
		vc:      vc,
		img:     gocv.NewMat(),
		quality: d.JPEGQuality,
		id:      d.ID,
	}, nil
}

type stream struct {
	mu      sync.Mutex
	vc      *gocv.VideoCapture
	img     gocv.Mat
	quality int
	id      int
	stopped bool
}

func (s *stream) Capture() (camera.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return camera.Frame{}, camera.ErrStreamStopped
	}

	if ok := s.vc.Read(&s.img); !ok {
		return camera.Frame{}, fmt.Errorf("cannot read device %d", s.id)
	}
	if s.img.Empty() {
		return camera.Frame{}, camera.ErrNoFrame
	}

	return cvimage.EncodeJPEG(s.img, s.quality)
}

func (s *stream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	s.stopped = true

	s.img.Close()
	return s.vc.Close()
}
