package models

import "time"

// ============================================================
// CONFIGURATION
// ============================================================

type Config struct {
	API     APIConfig    `yaml:"api"`
	Kiosk   KioskConfig  `yaml:"kiosk"`
	Camera  CameraConfig `yaml:"camera"`
	UI      UIConfig     `yaml:"ui"`
	WebRTC  WebRTCConfig `yaml:"webrtc"`
	Audio   AudioConfig  `yaml:"audio"`
	Verbose bool         `yaml:"verbose"`
}

type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	SecretKey string        `yaml:"secret_key"`
	Timeout   time.Duration `yaml:"timeout"` // 0 = wait for the server indefinitely
}

type KioskConfig struct {
	DefaultOfficerID string        `yaml:"default_officer_id"`
	PollInterval     time.Duration `yaml:"poll_interval"`
	FrameWidth       int           `yaml:"frame_width"`
	FrameHeight      int           `yaml:"frame_height"`
	JPEGQuality      int           `yaml:"jpeg_quality"` // 1-100
}

// Camera sources
const (
	CameraSourceWebcam  = "webcam"
	CameraSourceBrowser = "browser"
)

type CameraConfig struct {
	Source   string `yaml:"source"`
	DeviceID int    `yaml:"device_id"`
}

type UIConfig struct {
	Addr string `yaml:"addr"`
}

type WebRTCConfig struct {
	OpenTimeout     time.Duration `yaml:"open_timeout"`
	PLIInterval     time.Duration `yaml:"pli_interval"`
	MaxDecodeWidth  int           `yaml:"max_decode_width"`
	MaxDecodeHeight int           `yaml:"max_decode_height"`
	SampleBufferMax uint16        `yaml:"sample_buffer_max"`
	ICEServers      []string      `yaml:"ice_servers"`
}

type AudioConfig struct {
	Enabled            bool   `yaml:"enabled"`
	WelcomePath        string `yaml:"welcome_path"`
	ConfirmSuccessPath string `yaml:"confirm_success_path"`
	ConfirmFailPath    string `yaml:"confirm_fail_path"`
}
