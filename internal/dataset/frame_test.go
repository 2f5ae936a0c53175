package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heatwatch/hi-forecast/internal/domain"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "df_test.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleCSV = `date,station,latitude,longitude,elevation,tmax,tmin,rh,wind_speed,extra_col
2023-04-13,0,14.58,121.00,21.0,36.1,25.0,60.0,2.5,9
2023-04-14,0,14.58,121.00,21.0,37.0,25.5,58.0,2.8,9
2023-04-15,2,14.50,121.00,46.0,38.2,26.0,55.0,3.0,9
2023-04-15,0,14.58,121.00,21.0,37.5,25.8,57.0,2.9,9
`

func TestLoadCSV(t *testing.T) {
	frame, err := LoadCSV(writeCSV(t, sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, 4, frame.Len())

	t.Run("headers canonicalized, unknown columns dropped", func(t *testing.T) {
		rows := frame.RowsForDate(time.Date(2023, 4, 13, 0, 0, 0, 0, time.UTC))
		require.Len(t, rows, 1)

		v, ok := rows[0].Value(domain.ColTMax)
		assert.True(t, ok)
		assert.Equal(t, 36.1, v)
		_, ok = rows[0].Value("extra_col")
		assert.False(t, ok)
	})

	t.Run("exact date filter keeps file order within a date", func(t *testing.T) {
		rows := frame.RowsForDate(time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC))
		require.Len(t, rows, 2)
		assert.Equal(t, 2.0, rows[0].ValueOrZero(domain.ColStation))
		assert.Equal(t, 0.0, rows[1].ValueOrZero(domain.ColStation))
	})

	t.Run("range filter is inclusive", func(t *testing.T) {
		rows := frame.RowsInRange(
			time.Date(2023, 4, 14, 0, 0, 0, 0, time.UTC),
			time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC),
		)
		assert.Len(t, rows, 3)
	})

	t.Run("stations derived ascending with coordinates", func(t *testing.T) {
		stations := frame.Stations()
		require.Len(t, stations, 2)
		assert.Equal(t, 0, stations[0].ID)
		assert.Equal(t, 2, stations[1].ID)
		assert.Equal(t, 14.50, stations[1].Latitude)
		assert.Equal(t, 46.0, stations[1].Elevation)
	})
}

func TestLoadCSV_EmptyCellIsAbsentNotZero(t *testing.T) {
	frame, err := LoadCSV(writeCSV(t, "Date,Station,TMAX,RH\n2023-04-15,1,38.2,\n"))
	require.NoError(t, err)

	rows := frame.RowsForDate(time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC))
	require.Len(t, rows, 1)

	_, ok := rows[0].Value(domain.ColRH)
	assert.False(t, ok, "empty cell must stay distinguishable from 0.0")
}

func TestLoadCSV_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCSV(filepath.Join(t.TempDir(), "absent.csv"))
		require.Error(t, err)
	})

	t.Run("no date column", func(t *testing.T) {
		_, err := LoadCSV(writeCSV(t, "Station,TMAX\n1,38.2\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Date")
	})

	t.Run("bad date cell", func(t *testing.T) {
		_, err := LoadCSV(writeCSV(t, "Date,TMAX\nnot-a-date,38.2\n"))
		require.Error(t, err)
	})
}
