package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/klimakart/choropleth-styling-service/internal/adapter/climateapi"
	"github.com/klimakart/choropleth-styling-service/internal/adapter/excel"
	httpadapter "github.com/klimakart/choropleth-styling-service/internal/adapter/http"
	kafkaadapter "github.com/klimakart/choropleth-styling-service/internal/adapter/kafka"
	"github.com/klimakart/choropleth-styling-service/internal/config"
	"github.com/klimakart/choropleth-styling-service/internal/observability"
	"github.com/klimakart/choropleth-styling-service/internal/styling"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client := climateapi.NewClient(cfg.DataAPIBaseURL, cfg.DataAPITimeout, logger, metrics)
	cached := climateapi.NewCachedProvider(client, cfg.CacheSize, metrics)
	logger.Info("data API client ready",
		"base_url", cfg.DataAPIBaseURL, "cache_size", cfg.CacheSize)

	svc := styling.New(cached, logger, metrics, cfg.LegendSteps)
	exporter := excel.NewExporter(logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, exporter, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Refresh consumer (feature-flagged via KAFKA_ENABLED).
	var consumer *kafkaadapter.Consumer
	if cfg.KafkaEnabled {
		consumer = kafkaadapter.NewConsumer(cfg, cached, logger, metrics)
		logger.Info("refresh notifications enabled",
			"brokers", cfg.KafkaBrokers, "topic", cfg.KafkaRefreshTopic)
		go func() {
			if err := consumer.Run(ctx); err != nil {
				logger.Error("refresh consumer error", "error", err)
			}
		}()
	} else {
		logger.Info("refresh notifications disabled")
	}

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("refresh consumer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
