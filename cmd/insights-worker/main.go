package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"atlasledger/internal/amqp"
	"atlasledger/internal/config"
	"atlasledger/internal/insights"
	"atlasledger/internal/log"
	"atlasledger/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentWorker})
	log.SetDefault(logger)

	logger.Info("Starting insights-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}
	if cfg.InsightsURL == "" {
		logger.Error("INSIGHTS_URL is required for the worker")
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	analytics := insights.NewClient(cfg.InsightsURL, cfg.InsightsTimeout)
	forwarder := worker.NewAlertForwarder(analytics, cfg.InsightsTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Surface analytics availability at startup without failing hard.
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := analytics.Health(healthCtx); err != nil {
		logger.Warn("Analytics service not reachable at startup", log.FieldError, err)
	} else {
		logger.Info("Analytics service reachable", "url", cfg.InsightsURL)
	}
	cancel()

	err = amqpClient.ConsumeAlertsRecomputed(ctx, func(msg *amqp.AlertsRecomputedMessage) error {
		return forwarder.HandleAlertsRecomputed(ctx, msg)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
