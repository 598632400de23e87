package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"checkin-kiosk/models"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks for the kiosk file when none is given.
const DefaultPath = "config/kiosk.yaml"

// ============================================================
// DEFAULTS
// ============================================================

func Default() *models.Config {
	return &models.Config{
		API: models.APIConfig{
			BaseURL: models.DefaultBaseURL,
		},
		Kiosk: models.KioskConfig{
			DefaultOfficerID: models.DefaultOfficerID,
			PollInterval:     1 * time.Second,
			FrameWidth:       640,
			FrameHeight:      480,
			JPEGQuality:      90,
		},
		Camera: models.CameraConfig{
			Source:   models.CameraSourceWebcam,
			DeviceID: 0,
		},
		UI: models.UIConfig{
			Addr: "127.0.0.1:8090",
		},
		WebRTC: models.WebRTCConfig{
			OpenTimeout:     10 * time.Second,
			PLIInterval:     1 * time.Second,
			MaxDecodeWidth:  640,
			MaxDecodeHeight: 480,
			SampleBufferMax: 128,
			ICEServers:      []string{"stun:stun.l.google.com:19302"},
		},
		Audio: models.AudioConfig{
			Enabled:            true,
			WelcomePath:        "./audio/welcome.ogg",
			ConfirmSuccessPath: "./audio/confirm-success.ogg",
			ConfirmFailPath:    "./audio/confirm-failed.ogg",
		},
	}
}

const defaultFile = `# checkin-kiosk configuration
api:
  base_url: http://localhost:5003
  secret_key: ""
  timeout: 0s

kiosk:
  default_officer_id: OFFICER_001
  poll_interval: 1s
  frame_width: 640
  frame_height: 480
  jpeg_quality: 90

camera:
  source: webcam   # webcam | browser
  device_id: 0

ui:
  addr: 127.0.0.1:8090

webrtc:
  open_timeout: 10s
  pli_interval: 1s
  max_decode_width: 640
  max_decode_height: 480
  sample_buffer_max: 128
  ice_servers:
    - stun:stun.l.google.com:19302

audio:
  enabled: true
  welcome_path: ./audio/welcome.ogg
  confirm_success_path: ./audio/confirm-success.ogg
  confirm_fail_path: ./audio/confirm-failed.ogg

verbose: false
`

// ============================================================
// LOAD
// ============================================================

// Load reads the YAML kiosk file at path, creating it with defaults when it
// does not exist, then applies environment overrides.
func Load(path string) (*models.Config, error) {
	if path == "" {
		path = DefaultPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("⚠️  Config file not found, creating default at %s", path)

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultFile), 0644); err != nil {
			return nil, fmt.Errorf("failed to create default config file: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	ApplyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults, so omitted keys keep their default.
func Parse(data []byte) (*models.Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides file values with environment variables (a .env file is
// loaded into the environment by the CLI before this runs).
func ApplyEnv(cfg *models.Config) {
	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		cfg.API.SecretKey = v
	}
	if v := os.Getenv("OFFICER_ID"); v != "" {
		cfg.Kiosk.DefaultOfficerID = v
	}
	if v := os.Getenv("KIOSK_ADDR"); v != "" {
		cfg.UI.Addr = v
	}
	if v := os.Getenv("KIOSK_CAMERA"); v != "" {
		cfg.Camera.Source = v
	}
	cfg.Camera.DeviceID = envInt("KIOSK_DEVICE", cfg.Camera.DeviceID)
	cfg.Kiosk.PollInterval = envDuration("POLL_INTERVAL", cfg.Kiosk.PollInterval)
	cfg.API.Timeout = envDuration("API_TIMEOUT", cfg.API.Timeout)
	if os.Getenv("VERBOSE") == "true" {
		cfg.Verbose = true
	}
}

// Validate rejects values the kiosk cannot run with.
func Validate(cfg *models.Config) error {
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if cfg.Kiosk.PollInterval <= 0 {
		return fmt.Errorf("kiosk.poll_interval must be positive, got %v", cfg.Kiosk.PollInterval)
	}
	if cfg.Kiosk.FrameWidth <= 0 || cfg.Kiosk.FrameHeight <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", cfg.Kiosk.FrameWidth, cfg.Kiosk.FrameHeight)
	}
	if cfg.Kiosk.JPEGQuality < 1 || cfg.Kiosk.JPEGQuality > 100 {
		return fmt.Errorf("kiosk.jpeg_quality must be 1-100, got %d", cfg.Kiosk.JPEGQuality)
	}
	switch cfg.Camera.Source {
	case models.CameraSourceWebcam, models.CameraSourceBrowser:
	default:
		return fmt.Errorf("unknown camera source %q (want %s or %s)",
			cfg.Camera.Source, models.CameraSourceWebcam, models.CameraSourceBrowser)
	}
	return nil
}

// envInt reads an environment variable as a non-negative integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return d
	}
	return defaultVal
}
