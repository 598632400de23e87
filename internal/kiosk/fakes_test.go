package kiosk

import (
	"context"
	"errors"
	"sync"

	"checkin-kiosk/internal/camera"
	"checkin-kiosk/models"
)

// ============================================================
// CAMERA
// ============================================================

type fakeDevice struct {
	mu      sync.Mutex
	openErr error
	opened  int
	streams []*fakeStream

	// when set, Open signals entered and waits for gate or ctx
	gate      chan struct{}
	entered   chan struct{}
	ignoreCtx bool
}

func (d *fakeDevice) Name() string { return "fake" }

func (d *fakeDevice) Open(ctx context.Context, width, height int) (camera.Stream, error) {
	d.mu.Lock()
	gate, entered, ignoreCtx := d.gate, d.entered, d.ignoreCtx
	d.mu.Unlock()

	if gate != nil {
		if entered != nil {
			entered <- struct{}{}
		}
		if ignoreCtx {
			<-gate
		} else {
			select {
			case <-gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.opened++
	if d.openErr != nil {
		return nil, d.openErr
	}
	s := &fakeStream{width: width, height: height}
	d.streams = append(d.streams, s)
	return s, nil
}

func (d *fakeDevice) lastStream() *fakeStream {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.streams) == 0 {
		return nil
	}
	return d.streams[len(d.streams)-1]
}

type fakeStream struct {
	mu         sync.Mutex
	width      int
	height     int
	stopped    bool
	stopCalls  int
	captureErr error
}

func (s *fakeStream) Capture() (camera.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return camera.Frame{}, camera.ErrStreamStopped
	}
	if s.captureErr != nil {
		return camera.Frame{}, s.captureErr
	}
	return camera.Frame{JPEG: []byte{0xff, 0xd8, 0xff, 0xd9}, Width: s.width, Height: s.height}, nil
}

func (s *fakeStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.stopCalls++
	return nil
}

func (s *fakeStream) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// ============================================================
// RECOGNIZER
// ============================================================

type frameCall struct {
	image     string
	officerID string
}

type fakeRecognizer struct {
	mu           sync.Mutex
	frameResp    *models.ProcessFrameResponse
	frameErr     error
	frameCalls   []frameCall
	block        chan struct{} // when set, ProcessFrame waits on it
	entered      chan struct{} // signalled when ProcessFrame is entered
	confirmResp  *models.ConfirmResponse
	confirmErr   error
	confirmCalls []models.ConfirmRequest
}

func (r *fakeRecognizer) ProcessFrame(ctx context.Context, image, officerID string) (*models.ProcessFrameResponse, error) {
	r.mu.Lock()
	r.frameCalls = append(r.frameCalls, frameCall{image: image, officerID: officerID})
	block, entered := r.block, r.entered
	r.mu.Unlock()

	if entered != nil {
		select {
		case entered <- struct{}{}:
		default:
		}
	}
	if block != nil {
		<-block
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frameResp, r.frameErr
}

func (r *fakeRecognizer) ConfirmAuth(ctx context.Context, req models.ConfirmRequest) (*models.ConfirmResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.confirmCalls = append(r.confirmCalls, req)
	return r.confirmResp, r.confirmErr
}

func (r *fakeRecognizer) setFrame(resp *models.ProcessFrameResponse, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frameResp, r.frameErr = resp, err
}

func (r *fakeRecognizer) frameCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frameCalls)
}

func (r *fakeRecognizer) lastFrameCall() frameCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frameCalls[len(r.frameCalls)-1]
}

func (r *fakeRecognizer) confirmCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.confirmCalls)
}

// ============================================================
// VIEW
// ============================================================

type fakeView struct {
	mu      sync.Mutex
	panels  []Panel
	toggles []Toggle
	alerts  []string
}

func (v *fakeView) ShowPanel(p Panel) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panels = append(v.panels, p)
}

func (v *fakeView) ShowToggle(t Toggle) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.toggles = append(v.toggles, t)
}

func (v *fakeView) Alert(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.alerts = append(v.alerts, message)
}

func (v *fakeView) lastPanel() Panel {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.panels) == 0 {
		return Panel{}
	}
	return v.panels[len(v.panels)-1]
}

func (v *fakeView) lastToggle() Toggle {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.toggles) == 0 {
		return Toggle{}
	}
	return v.toggles[len(v.toggles)-1]
}

func (v *fakeView) alertList() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.alerts...)
}

// ============================================================
// OFFICER / CUES
// ============================================================

type staticOfficer string

func (o staticOfficer) OfficerID() string { return string(o) }

type fakeCues struct {
	mu     sync.Mutex
	played []string
}

func (c *fakeCues) Play(cue string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.played = append(c.played, cue)
}

func (c *fakeCues) list() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.played...)
}

var errNetwork = errors.New("connection refused")

// ============================================================
// CONTROLLER PEEKS
// ============================================================

func (c *Controller) isActive() bool {
	return c.State().Active
}

func (c *Controller) currentRecord() *models.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	rec := *c.current
	return &rec
}
