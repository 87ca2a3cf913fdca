package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"carteira/internal/amqp"
	"carteira/internal/analytics"
	"carteira/internal/config"
	apphttp "carteira/internal/http"
	applog "carteira/internal/log"
	"carteira/internal/services"
	"carteira/internal/storage/memory"
	"carteira/internal/storage/sqlite"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	var store services.Store
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()
		store = repo
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
	default:
		store = memory.New()
		logger.Info("Initialized memory backend")
	}

	// The notifier is optional: without AMQP the ledger still works, it
	// just stops telling downstream consumers about changes.
	var notifier services.Notifier
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change notifications", "error", err)
		} else {
			defer client.Close()
			notifier = client
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled, change notifications off")
	}

	ledger := services.NewLedger(store, notifier)
	wallets := services.NewWallets(store, notifier)
	catalog := services.NewCatalog(store)
	scheduler := services.NewScheduler(store, ledger)
	importer := services.NewImporter(store, ledger)

	policy := analytics.Policy{
		AnomalyRatio:     cfg.AnomalyRatio,
		AnomalyHighRatio: cfg.AnomalyHighRatio,
		HealthHighRatio:  cfg.HealthHighRatio,
		HealthMidRatio:   cfg.HealthMidRatio,
		ProjectionWindow: cfg.ProjectionWindow,
		TopExpensesLimit: cfg.TopExpensesLimit,
	}

	srv := apphttp.NewServer(":"+cfg.Port, ledger, wallets, catalog, scheduler, importer, policy)

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting carteira server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
