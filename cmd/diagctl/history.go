package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"codeberg.org/mutker/diagctl/internal/errors"
	"codeberg.org/mutker/diagctl/internal/history"
	"codeberg.org/mutker/diagctl/internal/logger"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent scan results",
		RunE:  runHistory,
	}

	cmd.Flags().Int("limit", 10, "number of scans to show")
	cmd.Flags().String("history-db", "", "path to the history database")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	errFactory := errors.New()

	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.HistoryDB); err != nil {
		return errFactory.WithData(errors.ErrResourceNotFound, cfg.HistoryDB)
	}

	store, err := history.NewService(history.Config{
		Enabled: true,
		DBPath:  cfg.HistoryDB,
	}, logger.Default())
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close history store")
		}
	}()

	entries, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No scans recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tSTATUS\tSCORE\tWARNINGS\tCPU °C\tDISK %\tRAM GB")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.1f\t%.1f\t%.1f\n",
			entry.Timestamp.Local().Format(time.DateTime),
			entry.Status,
			entry.HealthScore,
			entry.WarningCount,
			entry.CPUTempC,
			entry.DiskUsedPercent,
			entry.RAMGB,
		)
	}

	return w.Flush()
}
