package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heatwatch/hi-forecast/internal/domain"
)

type stubPredictor struct {
	out []float64
	err error
}

func (s *stubPredictor) Predict(_ []float64) ([]float64, error) {
	return s.out, s.err
}

func TestRunner_Forecast(t *testing.T) {
	fv := domain.FeatureVector{Values: make([]float64, domain.FeatureCount)}

	t.Run("single output duplicated across horizons", func(t *testing.T) {
		r := NewRunner(&stubPredictor{out: []float64{41.7}})

		t1, t2, err := r.Forecast(fv)

		require.NoError(t, err)
		assert.Equal(t, 41.7, t1)
		assert.Equal(t, 41.7, t2)
	})

	t.Run("two outputs map to distinct horizons", func(t *testing.T) {
		r := NewRunner(&stubPredictor{out: []float64{42.137, 999.0}})

		t1, t2, err := r.Forecast(fv)

		require.NoError(t, err)
		assert.Equal(t, 42.137, t1)
		assert.Equal(t, 999.0, t2)
	})

	t.Run("no output columns is an error", func(t *testing.T) {
		r := NewRunner(&stubPredictor{out: nil})

		_, _, err := r.Forecast(fv)

		require.Error(t, err)
	})

	t.Run("predictor error propagates", func(t *testing.T) {
		r := NewRunner(&stubPredictor{err: errors.New("boom")})

		_, _, err := r.Forecast(fv)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})
}

func TestLoad_MissingArtifact(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.model"), "")

	require.Error(t, err)
	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestReadSchema(t *testing.T) {
	dir := t.TempDir()

	t.Run("bare array", func(t *testing.T) {
		path := filepath.Join(dir, "schema_array.json")
		require.NoError(t, os.WriteFile(path, []byte(`["TMAX","TMIN","RH"]`), 0o644))

		names, err := readSchema(path)

		require.NoError(t, err)
		assert.Equal(t, []string{"TMAX", "TMIN", "RH"}, names)
	})

	t.Run("feature_names object", func(t *testing.T) {
		path := filepath.Join(dir, "schema_obj.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"feature_names":["RH","TMAX"]}`), 0o644))

		names, err := readSchema(path)

		require.NoError(t, err)
		assert.Equal(t, []string{"RH", "TMAX"}, names)
	})

	t.Run("object without names", func(t *testing.T) {
		path := filepath.Join(dir, "schema_empty.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"version":1}`), 0o644))

		_, err := readSchema(path)

		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := readSchema(filepath.Join(dir, "absent.json"))
		require.Error(t, err)
	})
}
