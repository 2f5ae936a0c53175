package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("MODEL_PATH", "models/hi.model")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/heatwatch")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/df_test_final.csv", cfg.DataPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), cfg.WindowStart)
	assert.Equal(t, time.Date(2023, 5, 31, 0, 0, 0, 0, time.UTC), cfg.WindowEnd)
	assert.Equal(t, 0.001, cfg.CoordTolerance)
	assert.False(t, cfg.StrictFeatures)
	assert.Equal(t, StrategyCoordinate, cfg.RowStrategy)
	assert.Equal(t, StationSourceStore, cfg.StationSource)
	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.DailySchedule)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("WINDOW_START", "2024-01-01")
	t.Setenv("WINDOW_END", "2024-03-31")
	t.Setenv("COORD_TOLERANCE", "0.01")
	t.Setenv("STRICT_FEATURES", "true")
	t.Setenv("ROW_STRATEGY", StrategyLatest)
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("KAFKA_TOPIC", "forecasts")
	t.Setenv("DAILY_SCHEDULE", "05:30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), cfg.WindowStart)
	assert.Equal(t, 0.01, cfg.CoordTolerance)
	assert.True(t, cfg.StrictFeatures)
	assert.Equal(t, StrategyLatest, cfg.RowStrategy)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "forecasts", cfg.KafkaTopic)
	assert.Equal(t, "05:30", cfg.DailySchedule)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing model path", map[string]string{"MODEL_PATH": ""}},
		{"missing database url for store source", map[string]string{"DATABASE_URL": ""}},
		{"bad station source", map[string]string{"STATION_SOURCE": "csv"}},
		{"bad row strategy", map[string]string{"ROW_STRATEGY": "nearest"}},
		{"inverted window", map[string]string{"WINDOW_START": "2023-06-01"}},
		{"bad window date", map[string]string{"WINDOW_END": "31-05-2023"}},
		{"zero tolerance", map[string]string{"COORD_TOLERANCE": "0"}},
		{"bad shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT": "soon"}},
		{"kafka enabled without brokers", map[string]string{"KAFKA_ENABLED": "true"}},
		{"bad schedule", map[string]string{"DAILY_SCHEDULE": "5:3pm"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoad_DatasetSourceNeedsNoDatabase(t *testing.T) {
	t.Setenv("MODEL_PATH", "models/hi.model")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("STATION_SOURCE", StationSourceDataset)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StationSourceDataset, cfg.StationSource)
}

func TestParseForecastDate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		d, err := ParseForecastDate("2023-04-15")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseForecastDate("04/15/2023")
		require.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseForecastDate("")
		require.Error(t, err)
	})
}
