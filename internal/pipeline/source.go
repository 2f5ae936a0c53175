package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/heatwatch/hi-forecast/internal/dataset"
	"github.com/heatwatch/hi-forecast/internal/domain"
	"github.com/heatwatch/hi-forecast/internal/observability"
)

// RowSource serves observation rows by exact date or inclusive date range.
type RowSource interface {
	RowsForDate(ctx context.Context, date time.Time) ([]domain.Row, error)
	RowsInRange(ctx context.Context, from, to time.Time) ([]domain.Row, error)
}

// StationSource serves the station reference set, ascending by id.
type StationSource interface {
	Stations(ctx context.Context) ([]domain.StationRecord, error)
}

// GroundTruthSource looks up a recorded heat index value. A nil result with
// nil error means no ground truth exists for that key yet.
type GroundTruthSource interface {
	Actual(ctx context.Context, stationID int, date time.Time) (*float64, error)
}

// FrameSource adapts the in-memory dataset frame to the source interfaces.
type FrameSource struct {
	Frame *dataset.Frame
}

func (s FrameSource) RowsForDate(_ context.Context, date time.Time) ([]domain.Row, error) {
	return s.Frame.RowsForDate(date), nil
}

func (s FrameSource) RowsInRange(_ context.Context, from, to time.Time) ([]domain.Row, error) {
	return s.Frame.RowsInRange(from, to), nil
}

func (s FrameSource) Stations(_ context.Context) ([]domain.StationRecord, error) {
	return s.Frame.Stations(), nil
}

// FallbackSource consults the primary backend first and falls back to the
// secondary when the primary yields zero rows or fails. Which backend
// satisfied each request is recorded through the log and the source_requests
// metric only; it never reaches the forecast payload.
type FallbackSource struct {
	Primary       RowSource
	Secondary     RowSource
	PrimaryName   string
	SecondaryName string
	Logger        *slog.Logger
	Metrics       *observability.Metrics
}

func (s *FallbackSource) RowsForDate(ctx context.Context, date time.Time) ([]domain.Row, error) {
	return s.fetch(ctx, func(src RowSource) ([]domain.Row, error) {
		return src.RowsForDate(ctx, date)
	})
}

func (s *FallbackSource) RowsInRange(ctx context.Context, from, to time.Time) ([]domain.Row, error) {
	return s.fetch(ctx, func(src RowSource) ([]domain.Row, error) {
		return src.RowsInRange(ctx, from, to)
	})
}

func (s *FallbackSource) fetch(ctx context.Context, query func(RowSource) ([]domain.Row, error)) ([]domain.Row, error) {
	rows, primaryErr := query(s.Primary)
	if primaryErr != nil {
		s.Logger.Warn("primary row source failed, trying fallback",
			"backend", s.PrimaryName, "error", primaryErr)
	}
	if len(rows) > 0 {
		s.Metrics.SourceRequests.WithLabelValues(s.PrimaryName).Inc()
		return rows, nil
	}

	if s.Secondary == nil {
		return nil, primaryErr
	}

	rows, err := query(s.Secondary)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		s.Metrics.SourceRequests.WithLabelValues(s.SecondaryName).Inc()
		s.Logger.Info("rows served by fallback backend", "backend", s.SecondaryName)
	}
	return rows, nil
}
