package cmd

import (
	"testing"

	"checkin-kiosk/internal/config"
	"checkin-kiosk/models"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "run"}
	c.Flags().String("addr", "", "")
	c.Flags().String("camera", "", "")
	c.Flags().Int("device", -1, "")
	c.Flags().String("base-url", "", "")
	require.NoError(t, c.Flags().Parse(args))
	return c
}

func TestApplyRunFlags_Defaults(t *testing.T) {
	cfg := config.Default()
	applyRunFlags(newRunFlags(t), cfg)

	want := config.Default()
	assert.Equal(t, want.UI.Addr, cfg.UI.Addr)
	assert.Equal(t, want.Camera, cfg.Camera)
	assert.Equal(t, want.API.BaseURL, cfg.API.BaseURL)
}

func TestApplyRunFlags_Overrides(t *testing.T) {
	cfg := config.Default()
	applyRunFlags(newRunFlags(t,
		"--addr", ":9000",
		"--camera", "browser",
		"--device", "2",
		"--base-url", "http://auth.local:5003",
	), cfg)

	assert.Equal(t, ":9000", cfg.UI.Addr)
	assert.Equal(t, models.CameraSourceBrowser, cfg.Camera.Source)
	assert.Equal(t, 2, cfg.Camera.DeviceID)
	assert.Equal(t, "http://auth.local:5003", cfg.API.BaseURL)
}

func TestMustGetString_UnknownFlagPanics(t *testing.T) {
	assert.Panics(t, func() { mustGetString(newRunFlags(t), "nope") })
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "check", "stats", "version"} {
		assert.True(t, names[want], want)
	}
}
