// Package config loads process configuration from environment variables,
// with an optional .env file for local runs.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all settings for both pipeline stages.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	Files   FilesConfig
	Archive ArchiveConfig
	Kafka   KafkaConfig
	Analyze AnalyzeConfig
}

// FilesConfig names every flat file the pipeline reads or writes.
type FilesConfig struct {
	RawLocations string `envconfig:"RAW_LOCATIONS_PATH" default:"data/rawlocations.csv"`
	TripData     string `envconfig:"TRIP_DATA_PATH" default:"data/tripData.csv"`

	TemperatureCheckpoint string `envconfig:"TEMP_CHECKPOINT_PATH" default:"data/locations_temp.csv"`
	WindCheckpoint        string `envconfig:"WIND_CHECKPOINT_PATH" default:"data/locations_wind.csv"`
	AerosolCheckpoint     string `envconfig:"AEROSOL_CHECKPOINT_PATH" default:"data/locations_aerosol.csv"`
	Joined                string `envconfig:"JOINED_PATH" default:"data/trips_joined.csv"`
	Summary               string `envconfig:"SUMMARY_PATH" default:"data/trip_summary.csv"`
}

// ArchiveConfig configures the earth-observation archive client.
type ArchiveConfig struct {
	BaseURL      string        `envconfig:"ARCHIVE_BASE_URL" default:"https://api.gridarchive.dev"`
	Token        string        `envconfig:"ARCHIVE_TOKEN"`
	Timeout      time.Duration `envconfig:"ARCHIVE_TIMEOUT" default:"30s"`
	CacheSize    int           `envconfig:"ARCHIVE_CACHE_SIZE" default:"4096"`
	Concurrency  int           `envconfig:"ARCHIVE_CONCURRENCY" default:"4"`
	ForceRefresh bool          `envconfig:"FORCE_REFRESH" default:"false"`
}

// KafkaConfig configures the optional trip-summary sink, disabled by default.
type KafkaConfig struct {
	Enabled bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	Brokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	Topic   string   `envconfig:"KAFKA_SUMMARY_TOPIC" default:"trip-weather-summaries"`
}

// AnalyzeConfig configures the analysis stage.
type AnalyzeConfig struct {
	PlotDir  string  `envconfig:"PLOT_DIR" default:"plots"`
	TestFrac float64 `envconfig:"TEST_FRACTION" default:"0.2"`
	Seed     uint64  `envconfig:"SPLIT_SEED" default:"42"`
	Trees    int     `envconfig:"FOREST_TREES" default:"200"`
}

// Load reads configuration, applying defaults where unset. A .env file in the
// working directory is folded in first when present.
func Load() (*Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if cfg.Archive.Timeout <= 0 {
		return nil, errors.New("ARCHIVE_TIMEOUT must be positive")
	}
	if cfg.Archive.CacheSize <= 0 {
		return nil, errors.New("ARCHIVE_CACHE_SIZE must be positive")
	}
	if cfg.Archive.Concurrency <= 0 {
		return nil, errors.New("ARCHIVE_CONCURRENCY must be positive")
	}
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.Analyze.TestFrac <= 0 || cfg.Analyze.TestFrac >= 1 {
		return nil, errors.New("TEST_FRACTION must be in (0, 1)")
	}

	return &cfg, nil
}
