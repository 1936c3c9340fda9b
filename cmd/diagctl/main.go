package main

import (
	"os"

	"codeberg.org/mutker/diagctl/internal/config"
	"codeberg.org/mutker/diagctl/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "diagctl",
		Short:         "Collect and interpret system diagnostics",
		Long:          "diagctl collects a point-in-time diagnostic snapshot (system, storage, temperatures, Windows 11 readiness), interprets it into a health verdict and persists the report as JSON.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().String("log-level", config.DefaultLogLevel, "log level (debug, info, warning, error)")
	root.PersistentFlags().BoolP("verbose", "v", false, "print progress information")
	root.PersistentFlags().Bool("debug", false, "enable debug logging")
	root.PersistentFlags().String("output-dir", "", "directory for diagnostic report JSON")

	root.AddCommand(newScanCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newHistoryCmd())

	return root
}

// loadConfig merges the config file, environment and command flags.
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}

	initLogging(cfg)

	return cfg, nil
}

func initLogging(cfg *config.Config) {
	logger.Init(false, false, logger.IsService())

	switch cfg.LogLevel {
	case "debug":
		logger.SetLogLevel(logger.DebugLevel)
	case "info":
		logger.SetLogLevel(logger.InfoLevel)
	case "warning":
		logger.SetLogLevel(logger.WarnLevel)
	case "error":
		logger.SetLogLevel(logger.ErrorLevel)
	}

	if cfg.Verbose {
		logger.SetLogLevel(logger.InfoLevel)
	}
	if cfg.Debug {
		logger.SetLogLevel(logger.DebugLevel)
	}
}
