package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/heatwatch/hi-forecast/internal/adapter/http"
	"github.com/heatwatch/hi-forecast/internal/domain"
	"github.com/heatwatch/hi-forecast/internal/pipeline"
)

type mockRunner struct {
	result *pipeline.Result
	err    error
	gotDay time.Time
}

func (m *mockRunner) Run(_ context.Context, baseDate time.Time) (*pipeline.Result, error) {
	m.gotDay = baseDate
	return m.result, m.err
}

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func newTestServer(runner *mockRunner, readyErr error) *httpadapter.Server {
	return httpadapter.NewServer(":0", runner, &mockReadiness{err: readyErr}, slog.Default())
}

func TestForecastEndpoint(t *testing.T) {
	t.Run("returns batch payload", func(t *testing.T) {
		runner := &mockRunner{result: &pipeline.Result{
			BaseDate: time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC),
			Forecasts: []domain.Forecast{
				{StationID: 3, Tomorrow: 42.14, DayAfterTomorrow: 55.0},
			},
			AbsErrors: []domain.ErrorRecord{{StationID: 3}},
		}}
		srv := newTestServer(runner, nil)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/forecast?date=2023-04-15", nil)

		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC), runner.gotDay)

		var body struct {
			Forecasts []domain.Forecast    `json:"forecasts"`
			AbsErrors []domain.ErrorRecord `json:"abs_errors"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Forecasts, 1)
		assert.Equal(t, 3, body.Forecasts[0].StationID)
		assert.Equal(t, 42.14, body.Forecasts[0].Tomorrow)
		require.Len(t, body.AbsErrors, 1)
		assert.Nil(t, body.AbsErrors[0].AbsError1D)
	})

	t.Run("rejects missing date", func(t *testing.T) {
		srv := newTestServer(&mockRunner{}, nil)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/forecast", nil)

		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		srv := newTestServer(&mockRunner{}, nil)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/forecast?date=15-04-2023", nil)

		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("fatal invocation error returns 500 with diagnostic", func(t *testing.T) {
		srv := newTestServer(&mockRunner{err: errors.New("load model artifact: corrupt")}, nil)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/forecast?date=2023-04-15", nil)

		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body["error"], "corrupt")
	})
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(&mockRunner{}, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyz(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		srv := newTestServer(&mockRunner{}, nil)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not ready", func(t *testing.T) {
		srv := newTestServer(&mockRunner{}, fmt.Errorf("store unreachable"))
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "store unreachable", body["error"])
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&mockRunner{}, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
