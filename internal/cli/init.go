// Package cli provides the initialization steps shared by the ubs binary
// and its tests.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ubs/internal/backend"
	"ubs/internal/config"
	"ubs/internal/log"
	"ubs/internal/services"
)

// SetupLogger initializes structured logging at the given level and sets it
// as the default logger. An unknown level falls back to info.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	lvl, err := log.ParseLevel(level)
	cfg.Level = lvl
	logger := log.New(cfg)
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Unknown log level, using info", "level", level)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// A missing file is not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitLedger opens the configured store and wraps it in a Ledger with its
// report cache. Closing the ledger closes the store.
func InitLedger(ctx context.Context, logger *log.Logger, cfg *config.Config) (*services.Ledger, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateStore(ctx, bcfg)
	if err != nil {
		return nil, err
	}
	rc, err := services.NewReportCache(cfg.ReportCacheSize, cfg.ReportCacheTTL)
	if err != nil {
		_ = res.Cleanup()
		return nil, fmt.Errorf("init report cache: %w", err)
	}
	return services.NewLedger(res.Store, rc, logger), nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
