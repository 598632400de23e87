package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"checkin-kiosk/internal/api"
	"checkin-kiosk/internal/audio"
	"checkin-kiosk/internal/camera"
	"checkin-kiosk/internal/camera/webcam"
	"checkin-kiosk/internal/kiosk"
	"checkin-kiosk/internal/recognition"
	"checkin-kiosk/internal/ui"
	"checkin-kiosk/internal/webrtc"
	"checkin-kiosk/models"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the kiosk",
	Long: `Start the kiosk controller and serve the operator page.

Open the page in a browser on the kiosk and press Start Authentication.
With --camera webcam the kiosk reads a local capture device; with
--camera browser the page streams its own webcam over WebRTC.`,
	RunE: runKiosk,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("addr", "", "Address for the operator page (overrides ui.addr)")
	runCmd.Flags().String("camera", "", "Camera source: webcam or browser (overrides camera.source)")
	runCmd.Flags().Int("device", -1, "Webcam device index (overrides camera.device_id)")
	runCmd.Flags().String("base-url", "", "Auth service base URL (overrides api.base_url)")
}

func applyRunFlags(cmd *cobra.Command, cfg *models.Config) {
	if v := mustGetString(cmd, "addr"); v != "" {
		cfg.UI.Addr = v
	}
	if v := mustGetString(cmd, "camera"); v != "" {
		cfg.Camera.Source = v
	}
	if v := mustGetInt(cmd, "device"); v >= 0 {
		cfg.Camera.DeviceID = v
	}
	if v := mustGetString(cmd, "base-url"); v != "" {
		cfg.API.BaseURL = v
	}
}

func runKiosk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)

	log.Println("╔════════════════════════════════════════════╗")
	log.Println("║  Voter Authentication Kiosk                ║")
	log.Println("╚════════════════════════════════════════════╝")
	log.Printf("📋 Auth service: %s", cfg.API.BaseURL)
	log.Printf("📋 Camera: %s", cfg.Camera.Source)
	log.Printf("📋 Poll interval: %v", cfg.Kiosk.PollInterval)

	apiClient := api.NewAPIClient(cfg.API.BaseURL, cfg.API.SecretKey, cfg.API.Timeout)
	apiClient.SetVerbose(cfg.Verbose)
	service := recognition.NewService(apiClient)

	hub := ui.NewHub()
	hub.SetVerbose(cfg.Verbose)
	hub.SetOfficerID(cfg.Kiosk.DefaultOfficerID)

	var (
		device  camera.Device
		cues    kiosk.Cues
		signals ui.SignalHandler
		remote  *webrtc.RemoteCamera
	)

	switch cfg.Camera.Source {
	case models.CameraSourceBrowser:
		library := audio.LoadLibrary(cfg.Audio)
		if cues := library.List(); len(cues) > 0 {
			log.Printf("🔊 Audio cues: %s", strings.Join(cues, ", "))
		} else {
			log.Println("🔇 No audio cues configured")
		}
		remote = webrtc.NewRemoteCamera(webrtc.ConfigFrom(cfg), hub, library)
		device, cues, signals = remote, remote, remote
	default:
		device = webcam.NewDevice(cfg.Camera.DeviceID, cfg.Kiosk.JPEGQuality)
	}

	controller := kiosk.NewController(device, service, hub, hub, cues, kiosk.Options{
		Width:            cfg.Kiosk.FrameWidth,
		Height:           cfg.Kiosk.FrameHeight,
		PollInterval:     cfg.Kiosk.PollInterval,
		DefaultOfficerID: cfg.Kiosk.DefaultOfficerID,
		PhotoBaseURL:     cfg.API.BaseURL,
	})

	server := ui.NewServer(cfg.UI.Addr, hub, controller, service, signals)
	if remote != nil {
		server.SetCapture(remote)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case <-sigCh:
		log.Println("\n⚠️  Shutting down...")
	case runErr = <-errCh:
		if runErr != nil {
			log.Printf("❌ %v", runErr)
		}
	}

	controller.Close()
	if remote != nil {
		remote.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️  %v", err)
	}
	hub.Wait()

	log.Println("✅ Done!")
	if runErr != nil {
		return fmt.Errorf("kiosk server: %w", runErr)
	}
	return nil
}
