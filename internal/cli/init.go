// Package cli provides common CLI initialization utilities.
// This package consolidates repeated initialization patterns across
// cmd/flux, cmd/flux-worker, and cmd/fluxctl.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"flux/internal/backend"
	"flux/internal/config"
	"flux/internal/log"
	"flux/internal/sheets"
	"flux/internal/sheets/google"
	"flux/internal/sheets/memory"
)

// SetupLogger initializes structured logging at the configured level and
// installs it as the default logger.
func SetupLogger(level string) *log.Logger {
	logger := log.New(log.Config{
		Level:  log.ParseLevel(level),
		Output: os.Stdout,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenBackend creates the data backend selected by cfg.
func OpenBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", bcfg.Type, err)
	}
	return res, nil
}

// NewExporter returns the Google Sheets mirror when a spreadsheet is
// configured and an in-process one otherwise.
func NewExporter(ctx context.Context, logger *log.Logger, cfg *config.Config) (sheets.TransactionExporter, error) {
	if !cfg.SheetsEnabled() {
		logger.InfoContext(ctx, "Sheets mirror disabled, rows are kept in memory")
		return memory.New(), nil
	}
	client, err := google.New(ctx, google.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("google sheets client: %w", err)
	}
	logger.InfoContext(ctx, "Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}

// SignalContext returns a context canceled on SIGINT or SIGTERM.
func SignalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String(), log.FieldOperation, log.OpShutdown)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
