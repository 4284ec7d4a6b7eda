package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upstream climate data API.
	DataAPIBaseURL string
	DataAPITimeout time.Duration
	CacheSize      int

	// Engine settings.
	LegendSteps int

	// Dataset refresh notifications (optional).
	KafkaEnabled      bool
	KafkaBrokers      []string
	KafkaRefreshTopic string
	KafkaGroupID      string
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	// Best effort: absence of a .env file is the normal production case.
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	apiTimeout, err := parseDuration("DATA_API_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseInt("CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}
	legendSteps, err := parseInt("LEGEND_STEPS", 7)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DataAPIBaseURL: os.Getenv("DATA_API_BASE_URL"),
		DataAPITimeout: apiTimeout,
		CacheSize:      cacheSize,

		LegendSteps: legendSteps,

		KafkaEnabled:      os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:      parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaRefreshTopic: envOrDefault("KAFKA_REFRESH_TOPIC", "climate-dataset-refresh"),
		KafkaGroupID:      envOrDefault("KAFKA_GROUP_ID", "choropleth-styling"),
	}

	if cfg.DataAPIBaseURL == "" {
		return nil, errors.New("DATA_API_BASE_URL is required")
	}
	if cfg.CacheSize <= 0 {
		return nil, errors.New("CACHE_SIZE must be positive")
	}
	if cfg.LegendSteps < 2 {
		return nil, errors.New("LEGEND_STEPS must be at least 2")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if strings.TrimSpace(cfg.KafkaRefreshTopic) == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_REFRESH_TOPIC is empty")
		}
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
