package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/SscSPs/bookkeeping_app/internal/platform/config"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:          "bookkeeping_backend",
	Short:        "Bookkeeping backend: ledgers, invoices, stock and bank statements",
	Version:      version,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command execution failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration and installs the JSON logger at the configured level.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}
