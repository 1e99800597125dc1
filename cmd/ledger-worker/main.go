package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"ledger/internal/backend"
	"ledger/internal/cli"
	"ledger/internal/config"
	"ledger/internal/log"
	"ledger/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, log.ComponentWorker, os.Stdout)

	logger.Info("Starting ledger-worker")
	if err := run(cfg, logger); err != nil {
		logger.Error("Worker failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return fmt.Errorf("backend config: %w", err)
	}
	backendCfg.RequireAMQP = true

	factory := backend.NewFactory(logger.Logger.With(log.FieldComponent, log.ComponentBackend))
	res, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	mirror, err := factory.CreateMirror(ctx, backendCfg)
	if err != nil {
		return err
	}
	w := worker.NewMirrorWorker(res.Backend.Transactions, mirror)

	// Events published while the worker was down are not replayed, so the
	// mirror is rebuilt from storage before consuming.
	logger.Info("Performing startup resync", log.FieldOwnerID, cfg.OwnerID, "mirror", backendCfg.Mirror)
	if err := w.Resync(ctx, cfg.OwnerID); err != nil {
		logger.Error("Startup resync failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := res.Backend.Events.Consume(gctx, w.HandleEvent)
		if err == nil || errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("consume ledger events: %w", err)
	})

	if cfg.ResyncInterval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(cfg.ResyncInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					if err := w.Resync(gctx, cfg.OwnerID); err != nil {
						logger.Error("Periodic resync failed", "error", err)
					}
				}
			}
		})
	} else {
		logger.Info("Periodic resync disabled")
	}

	return g.Wait()
}
