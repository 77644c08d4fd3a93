// Command enrich runs the first pipeline stage: it samples temperature, wind,
// and aerosol index for every raw GPS fix, checkpoints each pass, joins the
// enriched fixes to trip metadata, and writes the per-trip summary file.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tripgrid/trip-weather-etl/internal/adapter/geoquery"
	httpadapter "github.com/tripgrid/trip-weather-etl/internal/adapter/http"
	kafkaadapter "github.com/tripgrid/trip-weather-etl/internal/adapter/kafka"
	"github.com/tripgrid/trip-weather-etl/internal/config"
	"github.com/tripgrid/trip-weather-etl/internal/observability"
	"github.com/tripgrid/trip-weather-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := geoquery.NewClient(cfg.Archive.BaseURL, cfg.Archive.Token, cfg.Archive.Timeout, logger)
	if err := client.StartSession(ctx); err != nil {
		logger.Error("archive session failed", "error", err)
		os.Exit(1)
	}
	sampler := geoquery.NewCachedSampler(geoquery.NewSampler(client, logger), cfg.Archive.CacheSize, metrics)

	// Summary publishing is feature-flagged via KAFKA_ENABLED.
	var publisher pipeline.SummaryPublisher
	var kafkaWriter *kafkaadapter.Writer
	if cfg.Kafka.Enabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		publisher = kafkaWriter
		logger.Info("summary publishing enabled", "topic", cfg.Kafka.Topic)
	}

	paths := pipeline.Paths{
		RawLocations:          cfg.Files.RawLocations,
		TripData:              cfg.Files.TripData,
		TemperatureCheckpoint: cfg.Files.TemperatureCheckpoint,
		WindCheckpoint:        cfg.Files.WindCheckpoint,
		AerosolCheckpoint:     cfg.Files.AerosolCheckpoint,
		Joined:                cfg.Files.Joined,
		Summary:               cfg.Files.Summary,
	}
	p := pipeline.New(sampler, paths, publisher, logger, metrics, cfg.Archive.Concurrency, cfg.Archive.ForceRefresh)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	runErr := p.Run(ctx)
	switch {
	case runErr == nil:
		logger.Info("enrichment run complete")
	case errors.Is(runErr, context.Canceled):
		logger.Info("enrichment run interrupted; resume from the last checkpoint")
	default:
		logger.Error("enrichment run failed", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		os.Exit(1)
	}
}
