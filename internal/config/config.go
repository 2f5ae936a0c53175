// Package config loads service settings from environment variables, with an
// optional .env file for local runs.
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

const dateLayout = "2006-01-02"

// Station metadata backends.
const (
	StationSourceStore   = "store"
	StationSourceDataset = "dataset"
)

// Row selection strategies.
const (
	StrategyCoordinate = "coordinate"
	StrategyLatest     = "latest"
)

// Config holds all service settings.
type Config struct {
	DatabaseURL     string
	DataPath        string
	ModelPath       string
	ModelSchemaPath string

	LogLevel  string
	LogFormat string

	HTTPAddr        string
	ShutdownTimeout time.Duration

	// Observation window bounding which historical rows are eligible for
	// selection, independent of the requested forecast date.
	WindowStart time.Time
	WindowEnd   time.Time

	// CoordTolerance is the per-axis degree threshold for matching rows to
	// a station's registered coordinates.
	CoordTolerance float64

	// StrictFeatures rejects rows missing schema columns instead of
	// defaulting them to zero.
	StrictFeatures bool

	RowStrategy   string
	StationSource string

	// Kafka publication of finished batches, off unless brokers are set.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// DailySchedule is an optional HH:MM (UTC) time at which forecastd
	// runs a batch for the current date. Empty disables the scheduler.
	DailySchedule string
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	windowStart, err := parseDateEnv("WINDOW_START", "2023-03-01")
	if err != nil {
		return nil, err
	}
	windowEnd, err := parseDateEnv("WINDOW_END", "2023-05-31")
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := time.ParseDuration(envOrDefault("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil || shutdownTimeout <= 0 {
		return nil, errors.New("invalid SHUTDOWN_TIMEOUT")
	}

	tolerance, err := parseFloatEnv("COORD_TOLERANCE", 0.001)
	if err != nil {
		return nil, err
	}

	brokers := splitNonEmpty(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DataPath:        envOrDefault("DATA_PATH", "data/df_test_final.csv"),
		ModelPath:       os.Getenv("MODEL_PATH"),
		ModelSchemaPath: os.Getenv("MODEL_SCHEMA_PATH"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout: shutdownTimeout,
		WindowStart:     windowStart,
		WindowEnd:       windowEnd,
		CoordTolerance:  tolerance,
		StrictFeatures:  os.Getenv("STRICT_FEATURES") == "true",
		RowStrategy:     envOrDefault("ROW_STRATEGY", StrategyCoordinate),
		StationSource:   envOrDefault("STATION_SOURCE", StationSourceStore),
		KafkaEnabled:    kafkaEnabled,
		KafkaBrokers:    brokers,
		KafkaTopic:      envOrDefault("KAFKA_TOPIC", "heat-index-forecasts"),
		DailySchedule:   os.Getenv("DAILY_SCHEDULE"),
	}

	if cfg.ModelPath == "" {
		return nil, errors.New("MODEL_PATH is required")
	}
	if cfg.StationSource != StationSourceStore && cfg.StationSource != StationSourceDataset {
		return nil, fmt.Errorf("invalid STATION_SOURCE %q", cfg.StationSource)
	}
	if cfg.StationSource == StationSourceStore && cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required when STATION_SOURCE is store")
	}
	if cfg.RowStrategy != StrategyCoordinate && cfg.RowStrategy != StrategyLatest {
		return nil, fmt.Errorf("invalid ROW_STRATEGY %q", cfg.RowStrategy)
	}
	if cfg.WindowEnd.Before(cfg.WindowStart) {
		return nil, errors.New("WINDOW_END precedes WINDOW_START")
	}
	if cfg.CoordTolerance <= 0 {
		return nil, errors.New("COORD_TOLERANCE must be positive")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.DailySchedule != "" {
		if _, err := time.Parse("15:04", cfg.DailySchedule); err != nil {
			return nil, fmt.Errorf("invalid DAILY_SCHEDULE %q: want HH:MM", cfg.DailySchedule)
		}
	}

	return cfg, nil
}

// ParseForecastDate validates the invocation's base date argument.
func ParseForecastDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid forecast date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDateEnv(key, def string) (time.Time, error) {
	v := envOrDefault(key, def)
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: want YYYY-MM-DD", key, v)
	}
	return t, nil
}

func parseFloatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return f, nil
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
