package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"ubs/internal/cli"
	apphttp "ubs/internal/http"
	"ubs/internal/log"
)

func main() {
	// Load .env file for local development (ignore errors in production)
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.SetupLogger("info").Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	logger := cli.SetupLogger(cfg.LogLevel)
	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	ledger, err := cli.InitLedger(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize ledger", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Error("Failed to close ledger", log.FieldError, err)
		}
	}()

	srv := apphttp.NewServer(cfg.ListenAddr, ledger, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting ubs server",
			"addr", cfg.ListenAddr,
			"backend", cfg.DataBackend,
			log.FieldDBPath, cfg.SQLiteDBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "addr", cfg.ListenAddr)
		stop()
		_ = ledger.Close()
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
