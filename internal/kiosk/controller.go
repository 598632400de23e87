package kiosk

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"checkin-kiosk/internal/camera"
	"checkin-kiosk/internal/utils"
	"checkin-kiosk/models"
)

// ============================================================
// COLLABORATORS
// ============================================================

// Recognizer is the remote auth service.
type Recognizer interface {
	ProcessFrame(ctx context.Context, image, officerID string) (*models.ProcessFrameResponse, error)
	ConfirmAuth(ctx context.Context, req models.ConfirmRequest) (*models.ConfirmResponse, error)
}

// View is the operator-facing surface: result panel, start/stop control, alerts.
type View interface {
	ShowPanel(p Panel)
	ShowToggle(t Toggle)
	Alert(message string)
}

// OfficerSource returns the officer identifier currently entered by the operator.
type OfficerSource interface {
	OfficerID() string
}

// Cues plays short audio feedback on the kiosk.
type Cues interface {
	Play(cue string)
}

// Audio cue names
const (
	CueConfirmSuccess = "confirm_success"
	CueConfirmFail    = "confirm_fail"
)

// Alert texts
const (
	AlertCameraUnavailable = "Cannot access camera. Please check permissions."
	AlertConfirmFailed     = "Error confirming authentication"
)

var (
	ErrCameraUnavailable = errors.New("camera unavailable")
	ErrConfirmRejected   = errors.New("confirmation rejected")
	ErrConfirmInProgress = errors.New("confirmation already in progress")
)

// ============================================================
// OPTIONS
// ============================================================

type Options struct {
	Width            int
	Height           int
	PollInterval     time.Duration
	DefaultOfficerID string
	PhotoBaseURL     string // resolves relative face image paths
}

func DefaultOptions() Options {
	return Options{
		Width:            640,
		Height:           480,
		PollInterval:     1 * time.Second,
		DefaultOfficerID: models.DefaultOfficerID,
		PhotoBaseURL:     models.DefaultBaseURL,
	}
}

// ============================================================
// CONTROLLER
// ============================================================

// State is a point-in-time copy of the controller's session state.
type State struct {
	Active     bool    `json:"active"`
	Panel      Panel   `json:"panel"`
	Toggle     Toggle  `json:"toggle"`
	Camera     string  `json:"camera"`
	Confidence float64 `json:"confidence,omitempty"`
	Cycles     uint64  `json:"cycles"` // poll cycles since construction
}

type Controller struct {
	camera     camera.Device
	recognizer Recognizer
	view       View
	officer    OfficerSource
	cues       Cues
	opts       Options

	// requests outlive Stop; only Close cancels them
	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	active     bool
	stream     camera.Stream
	current    *models.Record
	confidence float64
	session    uint64
	photoURL   string
	panel      Panel
	toggle     Toggle
	starting   bool
	cancelOpen context.CancelFunc // aborts a camera open in progress
	confirming bool
	cycles     uint64
}

// NewController builds an idle controller. officer and cues may be nil.
func NewController(device camera.Device, recognizer Recognizer, view View, officer OfficerSource, cues Cues, opts Options) *Controller {
	defaults := DefaultOptions()
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = defaults.Width, defaults.Height
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaults.PollInterval
	}
	if opts.DefaultOfficerID == "" {
		opts.DefaultOfficerID = defaults.DefaultOfficerID
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Controller{
		camera:     device,
		recognizer: recognizer,
		view:       view,
		officer:    officer,
		cues:       cues,
		opts:       opts,
		ctx:        ctx,
		cancel:     cancel,
		panel:      noDetectionPanel(),
		toggle:     toggleFor(false),
	}
}

// ============================================================
// START / STOP
// ============================================================

// Start acquires the camera and begins polling. Denial leaves the
// controller idle and raises an alert; there is no retry.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.active || c.starting {
		c.mu.Unlock()
		log.Println("⚠️  Already running")
		return nil
	}
	c.starting = true
	// a Stop while the camera opens bumps session and cancels this start
	pending := c.session
	ctx, cancelOpen := context.WithCancel(ctx)
	c.cancelOpen = cancelOpen
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.starting = false
		c.cancelOpen = nil
		c.mu.Unlock()
		cancelOpen()
	}()

	log.Printf("📷 Requesting camera %s (%dx%d)...", c.camera.Name(), c.opts.Width, c.opts.Height)

	stream, err := c.camera.Open(ctx, c.opts.Width, c.opts.Height)
	if err != nil {
		c.mu.Lock()
		stopped := c.session != pending
		c.mu.Unlock()
		if stopped {
			log.Printf("🛑 Camera open abandoned: %v", err)
			return nil
		}
		log.Printf("❌ Error accessing camera: %v", err)
		c.view.Alert(AlertCameraUnavailable)
		return fmt.Errorf("%w: %w", ErrCameraUnavailable, err)
	}

	c.mu.Lock()
	if c.session != pending {
		c.mu.Unlock()
		log.Println("🛑 Stopped while the camera was opening")
		if err := stream.Stop(); err != nil {
			log.Printf("⚠️  Camera stop: %v", err)
		}
		return nil
	}
	c.stream = stream
	c.active = true
	c.session++
	session := c.session
	c.setToggle(true)
	c.mu.Unlock()

	log.Printf("✅ Camera streaming, session %d", session)

	go c.pollCycle(session)
	return nil
}

// Stop releases the camera, restores the start control and clears the panel.
// An in-flight frame submission is not cancelled; its result is discarded.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream != nil {
		if err := c.stream.Stop(); err != nil {
			log.Printf("⚠️  Camera stop: %v", err)
		}
		c.stream = nil
		log.Println("🛑 Camera released")
	}

	if c.cancelOpen != nil {
		c.cancelOpen()
	}
	c.active = false
	c.session++
	c.setToggle(false)
	c.clear()
}

// Toggle starts when idle and stops when active or starting.
func (c *Controller) Toggle(ctx context.Context) error {
	c.mu.Lock()
	busy := c.active || c.starting
	c.mu.Unlock()

	if busy {
		c.Stop()
		return nil
	}
	return c.Start(ctx)
}

// Close stops the controller and cancels outstanding requests.
func (c *Controller) Close() {
	c.Stop()
	c.cancel()
}

// ============================================================
// POLL LOOP
// ============================================================

// pollCycle runs one capture-submit-render round and reschedules itself
// with a one-shot timer. A cycle belongs to the session that scheduled it;
// once that session ends nothing reschedules, so cycles never overlap.
func (c *Controller) pollCycle(session uint64) {
	c.mu.Lock()
	if !c.active || c.session != session {
		c.mu.Unlock()
		return
	}
	stream := c.stream
	c.cycles++
	c.mu.Unlock()

	c.processFrame(session, stream)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active && c.session == session {
		time.AfterFunc(c.opts.PollInterval, func() { c.pollCycle(session) })
	}
}

func (c *Controller) processFrame(session uint64, stream camera.Stream) {
	frame, err := stream.Capture()
	if err != nil {
		if !errors.Is(err, camera.ErrNoFrame) {
			log.Printf("⚠️  Error capturing frame: %v", err)
		}
		return
	}

	image := utils.DataURL(models.FrameMIMEType, frame.JPEG)

	resp, err := c.recognizer.ProcessFrame(c.ctx, image, c.officerID())
	if err != nil {
		log.Printf("❌ Error processing frame: %v", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active || c.session != session {
		log.Printf("   ⏭️  Dropping result from ended session %d", session)
		return
	}

	if resp.IsMatch() {
		c.render(resp.Voter, resp.Confidence)
	} else {
		c.clear()
	}
}

// ============================================================
// PANEL
// ============================================================

// render must be called with mu held.
func (c *Controller) render(record *models.Record, confidence float64) {
	rec := *record
	c.current = &rec
	c.confidence = confidence

	if record.FaceImagePath != "" {
		c.photoURL = utils.ResolveAssetURL(c.opts.PhotoBaseURL, record.FaceImagePath)
	}

	c.panel = detailPanel(&rec, confidence, c.photoURL)
	c.view.ShowPanel(c.panel)
}

// clear must be called with mu held.
func (c *Controller) clear() {
	wasShown := c.current != nil || c.panel.State != PanelNoDetection
	c.current = nil
	c.confidence = 0
	c.panel = noDetectionPanel()
	if wasShown {
		log.Println("🧹 Panel cleared")
	}
	c.view.ShowPanel(c.panel)
}

func (c *Controller) setToggle(active bool) {
	c.toggle = toggleFor(active)
	c.view.ShowToggle(c.toggle)
}

// Advance prepares the panel for the next subject. Camera state is untouched.
func (c *Controller) Advance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clear()
}

// ============================================================
// CONFIRM
// ============================================================

// Confirm submits the operator's approval for the displayed record. It does
// nothing when no record is shown.
func (c *Controller) Confirm(ctx context.Context) error {
	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return nil
	}
	if c.confirming {
		c.mu.Unlock()
		return ErrConfirmInProgress
	}
	c.confirming = true
	record := *c.current
	confidence := c.confidence
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.confirming = false
		c.mu.Unlock()
	}()

	req := models.ConfirmRequest{
		UniqueID:   record.UniqueID,
		NIC:        record.NIC,
		FullName:   record.FullName,
		OfficerID:  c.officerID(),
		Confidence: confidence,
	}

	resp, err := c.recognizer.ConfirmAuth(ctx, req)
	if err != nil {
		log.Printf("❌ Error confirming authentication: %v", err)
		c.view.Alert(AlertConfirmFailed)
		return fmt.Errorf("confirm %s: %w", record.UniqueID, err)
	}

	if !resp.Success {
		c.view.Alert("Error: " + resp.Error)
		c.playCue(CueConfirmFail)
		return fmt.Errorf("%w: %s", ErrConfirmRejected, resp.Error)
	}

	c.view.Alert(resp.Message)
	c.playCue(CueConfirmSuccess)
	c.Advance()
	return nil
}

// ============================================================
// HELPERS
// ============================================================

func (c *Controller) officerID() string {
	if c.officer != nil {
		if id := c.officer.OfficerID(); id != "" {
			return id
		}
	}
	return c.opts.DefaultOfficerID
}

func (c *Controller) playCue(cue string) {
	if c.cues != nil {
		c.cues.Play(cue)
	}
}

// State returns a snapshot for status endpoints and late-joining views.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Active:     c.active,
		Panel:      c.panel,
		Toggle:     c.toggle,
		Camera:     c.camera.Name(),
		Confidence: c.confidence,
		Cycles:     c.cycles,
	}
}
