package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Environment string
	LogLevel    slog.Level
	LogFile     string
	DataDir     string

	// Empty disables event publishing.
	RedisURL string

	AutoSkipInterval time.Duration
	RevealRate       float64 // characters per second
	FrameInterval    time.Duration
	ContentRating    string

	DecisionScript string
	RefuseScene    string

	TracingEnabled bool
	OTLPEndpoint   string
	ServiceVersion string
}

func Load() (*Config, error) {
	autoSkip, err := parseDuration("AUTO_SKIP_INTERVAL", "100ms")
	if err != nil {
		return nil, err
	}
	frame, err := parseDuration("FRAME_INTERVAL", "33ms")
	if err != nil {
		return nil, err
	}
	rate, err := strconv.ParseFloat(getEnv("REVEAL_RATE", "60"), 64)
	if err != nil || rate <= 0 {
		return nil, fmt.Errorf("invalid REVEAL_RATE %q: must be a positive number", os.Getenv("REVEAL_RATE"))
	}

	return &Config{
		Environment:      getEnv("ENVIRONMENT", "development"),
		LogLevel:         parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LogFile:          getEnv("LOG_FILE", ""),
		DataDir:          getEnv("DATA_DIR", "./data"),
		RedisURL:         getEnv("REDIS_URL", ""),
		AutoSkipInterval: autoSkip,
		RevealRate:       rate,
		FrameInterval:    frame,
		ContentRating:    getEnv("CONTENT_RATING", "R"),
		DecisionScript:   getEnv("DECISION_SCRIPT", "open_door"),
		RefuseScene:      getEnv("REFUSE_SCENE", "house_not_enter.json"),
		TracingEnabled:   getEnv("OTEL_TRACES_ENABLED", "false") == "true",
		OTLPEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		ServiceVersion:   getEnv("SERVICE_VERSION", "dev"),
	}, nil
}

func parseDuration(key, defaultValue string) (time.Duration, error) {
	raw := getEnv(key, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, raw)
	}
	return d, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
