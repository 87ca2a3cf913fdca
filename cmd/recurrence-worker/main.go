package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"carteira/internal/amqp"
	"carteira/internal/config"
	"carteira/internal/core"
	applog "carteira/internal/log"
	"carteira/internal/services"
	"carteira/internal/storage/sqlite"
)

// The worker sweeps every owner's recurring templates on a fixed
// interval. Occurrence creation is idempotent, so overlapping sweeps
// (or this worker racing the API's manual run endpoint) only ever
// materialize each occurrence once.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting recurrence-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var notifier services.Notifier
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change notifications", "error", err)
		} else {
			defer client.Close()
			notifier = client
		}
	}

	ledger := services.NewLedger(repo, notifier)
	scheduler := services.NewScheduler(repo, ledger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Recurrence sweep configured",
		"interval", cfg.RecurrenceInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	sweep := func(now time.Time) {
		owners, err := repo.ListOwnerIDs(ctx)
		if err != nil {
			logger.Error("Failed to list owners", "error", err)
			return
		}
		ref := core.DateOf(now.UTC())

		var total int64
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(4)
		results := make([]int, len(owners))
		for i, owner := range owners {
			g.Go(func() error {
				count, err := scheduler.MaterializeDue(gctx, owner, ref)
				if err != nil {
					logger.Error("Sweep failed for owner", "error", err, "owner_id", owner)
					return nil // keep sweeping the other owners
				}
				results[i] = count
				return nil
			})
		}
		_ = g.Wait()
		for _, c := range results {
			total += int64(c)
		}
		logger.Info("Sweep complete", "owners", len(owners), "occurrences_created", total)
	}

	// Run initial sweep on startup
	sweep(time.Now())

	ticker := time.NewTicker(cfg.RecurrenceInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				sweep(now)
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
	}

	cancel()
	logger.Info("Recurrence-worker shutdown complete")
}
