package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		canonical string
		ok        bool
	}{
		{"exact spelling", "TMAX", "TMAX", true},
		{"postgres lowercase", "tmax", "TMAX", true},
		{"mixed case", "Max_Hi_Rolling_Mean_7", "Max_HI_Rolling_Mean_7", true},
		{"surrounding whitespace", "  RH ", "RH", true},
		{"interaction caret form", "T^2", "T^2", true},
		{"interaction sql alias", "t_sq", "T^2", true},
		{"interaction sql alias squared pair", "t_sq_x_rh_sq", "T^2xRH^2", true},
		{"date column", "date", "Date", true},
		{"station id alias", "station_id", "Station", true},
		{"latitude short alias", "lat", "Latitude", true},
		{"unknown column", "SOIL_MOISTURE", "", false},
		{"empty string", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canonical, ok := Canonicalize(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.canonical, canonical)
		})
	}
}

// The alias table must cover every schema feature plus the identifier/date
// columns under at least their lowercase spellings, or a backend could
// silently drop a required column.
func TestCanonicalize_TotalOverSchema(t *testing.T) {
	for _, name := range CanonicalFeatures {
		canonical, ok := Canonicalize(foldColumn(name))
		require.True(t, ok, "no alias entry for %q", name)
		assert.Equal(t, name, canonical)
	}
	for _, name := range []string{ColDate, ColStation, ColLatitude, ColLongitude, ColElevation} {
		_, ok := Canonicalize(foldColumn(name))
		assert.True(t, ok, "no alias entry for %q", name)
	}
}

func TestCanonicalFeatures_Count(t *testing.T) {
	assert.Len(t, CanonicalFeatures, FeatureCount)

	seen := make(map[string]bool, len(CanonicalFeatures))
	for _, name := range CanonicalFeatures {
		assert.False(t, seen[name], "duplicate schema name %q", name)
		seen[name] = true
	}
}

func TestCanonicalizeColumns(t *testing.T) {
	t.Run("remaps and drops unknown", func(t *testing.T) {
		out := CanonicalizeColumns(map[string]float64{
			"tmax":       38.2,
			"Rh":         55.0,
			"t_sq":       1459.24,
			"mystery":    1.0,
			"wind_speed": 3.0,
		})

		assert.Equal(t, map[string]float64{
			"TMAX":       38.2,
			"RH":         55.0,
			"T^2":        1459.24,
			"WIND_SPEED": 3.0,
		}, out)
	})

	t.Run("canonical spelling wins over alias", func(t *testing.T) {
		out := CanonicalizeColumns(map[string]float64{
			"Latitude": 14.5,
			"lat":      99.0,
		})

		assert.Equal(t, 14.5, out["Latitude"])
	})
}
