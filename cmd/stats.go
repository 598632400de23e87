package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"checkin-kiosk/internal/api"
	"checkin-kiosk/internal/recognition"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the auth service's authentication statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	apiClient := api.NewAPIClient(cfg.API.BaseURL, cfg.API.SecretKey, cfg.API.Timeout)
	apiClient.SetVerbose(cfg.Verbose)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stats, err := recognition.NewService(apiClient).Stats(ctx)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("format stats: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
