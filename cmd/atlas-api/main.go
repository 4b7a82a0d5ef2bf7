package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"atlasledger/internal/amqp"
	"atlasledger/internal/cache"
	"atlasledger/internal/config"
	"atlasledger/internal/core"
	apphttp "atlasledger/internal/http"
	"atlasledger/internal/insights"
	"atlasledger/internal/log"
	"atlasledger/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Summary cache with a background sweeper for expired entries.
	summaryCache := cache.NewLRUCache[core.SpendSummary](cfg.SummaryCacheSize, cfg.SummaryCacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(summaryCache)
	cacheManager.StartCleanup(5 * time.Minute)
	defer cacheManager.Stop()

	storeOpts := store.Options{
		SummaryCache: summaryCache,
		Logger:       logger.WithComponent(log.ComponentStore),
	}

	// Event bus is optional; an empty URL runs the API standalone.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		storeOpts.Publisher = amqpClient
		logger.Info("AMQP event bus enabled",
			"exchange", cfg.AMQPExchange,
			"queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	ledger := store.New(storeOpts)

	// Analytics service is optional; without it forecasts fall back to
	// the local baseline.
	var forecaster apphttp.Forecaster
	if cfg.InsightsURL != "" {
		forecaster = insights.NewClient(cfg.InsightsURL, cfg.InsightsTimeout)
		logger.Info("Analytics service enabled", "url", cfg.InsightsURL)
	} else {
		logger.Info("Analytics service disabled - no INSIGHTS_URL provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, ledger, forecaster, apphttp.Options{
		UploadRequestsPerMinute: cfg.UploadRequestsPerMinute,
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting atlas-api server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
