package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/diagctl/internal/errors"
	"codeberg.org/mutker/diagctl/internal/history"
	"codeberg.org/mutker/diagctl/internal/logger"
	"codeberg.org/mutker/diagctl/internal/pid"
	"codeberg.org/mutker/diagctl/internal/scan"
	"codeberg.org/mutker/diagctl/internal/upload"
	"github.com/spf13/cobra"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a diagnostic scan and write a JSON report",
		RunE:  runScan,
	}

	cmd.Flags().String("server-endpoint", "", "upload the finished report to this URL")
	cmd.Flags().Bool("history", false, "record the scan in the history database")
	cmd.Flags().String("history-db", "", "path to the history database")

	return cmd
}

func runScan(cmd *cobra.Command, _ []string) error {
	errFactory := errors.New()

	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	if err := pid.Write(); err != nil {
		return err
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Warn().Err(err).Msg("failed to remove PID file")
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := history.NewService(history.Config{
		Enabled: cfg.History,
		DBPath:  cfg.HistoryDB,
	}, logger.Default())
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close history store")
		}
	}()

	scanner := scan.New(
		scan.Config{
			OutputDir:      cfg.OutputDir,
			ServerEndpoint: cfg.ServerEndpoint,
		},
		scan.DefaultCollectors(time.Duration(cfg.SmartCacheTTL)*time.Second),
		store,
		upload.New(time.Duration(cfg.UploadTimeout)*time.Second),
	)

	var progress scan.Progress
	if cfg.Verbose || cfg.Debug {
		progress = func(fraction float64, stage string) {
			fmt.Printf("[%d%%] %s\n", int(fraction*100), stage)
		}
	}

	r, path, err := scanner.Run(ctx, progress)
	if err != nil {
		return err
	}

	fmt.Printf("Status:       %v\n", r["status"])
	fmt.Printf("Health score: %v/100\n", r["health_score"])
	if warnings, ok := r["warnings"].([]string); ok && len(warnings) > 0 {
		fmt.Println("Warnings:")
		for _, warning := range warnings {
			fmt.Printf("  - %s\n", warning)
		}
	}
	fmt.Printf("Report:       %s\n", path)

	return nil
}
