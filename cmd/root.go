package cmd

import (
	"fmt"
	"log"
	"os"

	"checkin-kiosk/internal/config"
	"checkin-kiosk/models"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "checkin-kiosk",
	Short: "Polling-station voter authentication kiosk",
	Long: `checkin-kiosk drives a camera at a polling station, submits a frame
every second to the face authentication service, shows the matched voter
record to the officer and records the officer's confirmation.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the kiosk YAML file")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log request details")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// loadConfig reads the kiosk file and applies persistent flags on top.
func loadConfig(cmd *cobra.Command) (*models.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if mustGetBool(cmd, "verbose") {
		cfg.Verbose = true
	}
	if cfg.Verbose {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	}
	return cfg, nil
}
