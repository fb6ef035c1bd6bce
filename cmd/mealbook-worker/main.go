package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"mealbook/internal/amqp"
	"mealbook/internal/backend"
	"mealbook/internal/config"
	applog "mealbook/internal/log"
	"mealbook/internal/storage"
	"mealbook/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	logger.Info("Starting mealbook-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the mirror worker")
		os.Exit(1)
	}

	store, err := backend.NewRowStore(context.Background(), cfg, logger.Logger)
	if err != nil {
		logger.Error("Failed to initialize row store", "error", err, "backend", cfg.RowStoreBackend)
		os.Exit(1)
	}

	mirror, err := storage.NewMirrorRepository(cfg.MirrorDBPath)
	if err != nil {
		logger.Error("Failed to initialize mirror repository", "error", err, "path", cfg.MirrorDBPath)
		os.Exit(1)
	}
	defer mirror.Close()

	events, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer events.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	mirrorWorker := worker.NewMirrorWorker(store, mirror)

	// Catch up on mutations missed while the worker was down.
	logger.Info("Performing startup resync")
	if err := mirrorWorker.Resync(ctx); err != nil {
		logger.Error("Startup resync failed", "error", err)
		// Continue anyway; live events still converge per expense.
	}

	if err := events.ConsumeExpenseEvents(ctx, mirrorWorker.HandleEvent); err != nil && err != context.Canceled {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
