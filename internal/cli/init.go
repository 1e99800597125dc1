// Package cli provides common CLI initialization utilities shared by
// cmd/ledger and cmd/ledger-worker.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ledger/internal/config"
	"ledger/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from cfg, installs it as the slog
// default and returns it. An unknown level falls back to info.
func SetupLogger(cfg *config.Config, component string, w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stdout
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	logger := log.New(log.Config{
		Component: component,
		Handler:   log.NewHandler(w, cfg.LogFormat, level),
	})
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Invalid log level, using info", "level", cfg.LogLevel)
	}
	return logger
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
