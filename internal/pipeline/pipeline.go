// Package pipeline orchestrates one forecast invocation: row sourcing with
// backend fallback, per-station row selection, feature building, model
// evaluation, output clamping, and optional error evaluation against ground
// truth.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/heatwatch/hi-forecast/internal/domain"
	"github.com/heatwatch/hi-forecast/internal/observability"
)

// Stage names the per-station progression. A station that fails between row
// resolution and clamping ends at StageSkipped with a warning naming the
// stage it failed in.
type Stage string

const (
	StagePending       Stage = "pending"
	StageRowResolved   Stage = "row_resolved"
	StageFeaturesBuilt Stage = "features_built"
	StagePredicted     Stage = "predicted"
	StageClamped       Stage = "clamped"
	StageEvaluated     Stage = "evaluated"
	StageSkipped       Stage = "skipped"
)

// Warning is one diagnostic entry on the secondary channel. StationID is
// 1-based, matching the payload.
type Warning struct {
	StationID int       `json:"station_id"`
	Stage     Stage     `json:"stage"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

// Result is one invocation's output: the primary forecast payload, the
// secondary abs-error payload, and diagnostics. Forecasts and AbsErrors hold
// exactly the stations that succeeded, in ascending station order.
type Result struct {
	BaseDate  time.Time            `json:"base_date"`
	Forecasts []domain.Forecast    `json:"forecasts"`
	AbsErrors []domain.ErrorRecord `json:"abs_errors"`
	Warnings  []Warning            `json:"warnings,omitempty"`
}

// ModelRunner produces the raw horizon pair for one feature vector.
type ModelRunner interface {
	Forecast(fv domain.FeatureVector) (t1, t2 float64, err error)
}

// Params wires a Runner. The observation window lives on the strategy; the
// candidate fetch derives its range from there so the two cannot diverge.
type Params struct {
	Stations StationSource
	Rows     RowSource
	Strategy RowSelectionStrategy
	Model    ModelRunner
	// Schema is the model artifact's declared feature order; nil means the
	// canonical order.
	Schema []string
	// Strict rejects rows missing schema columns instead of zero-filling.
	Strict bool
	// Truth is optional; nil disables error evaluation.
	Truth   GroundTruthSource
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Runner executes forecast invocations. It is stateless across invocations;
// each Run is independent and, for a fixed dataset and artifact,
// deterministic.
type Runner struct {
	p Params
}

// New creates a Runner.
func New(p Params) *Runner {
	return &Runner{p: p}
}

// Run executes one batch for the given base date, forecasting base+1 and
// base+2 for every known station in ascending id order. Failures scoped to
// one station are converted to warnings; only errors that prevent any
// station from being processed are returned.
func (r *Runner) Run(ctx context.Context, baseDate time.Time) (*Result, error) {
	start := time.Now()

	stations, err := r.p.Stations.Stations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stations: %w", err)
	}
	sort.Slice(stations, func(i, j int) bool { return stations[i].ID < stations[j].ID })

	window := r.p.Strategy.Bounds()
	candidates, err := r.p.Rows.RowsInRange(ctx, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("load observation rows: %w", err)
	}

	day1 := baseDate.AddDate(0, 0, 1)
	day2 := baseDate.AddDate(0, 0, 2)

	// Empty slices, not nil: an all-skipped batch must still serialize the
	// payload arrays as [].
	result := &Result{
		BaseDate:  baseDate,
		Forecasts: []domain.Forecast{},
		AbsErrors: []domain.ErrorRecord{},
	}
	for _, station := range stations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		forecast, errRec, warnings := r.processStation(ctx, station, candidates, day1, day2)
		result.Warnings = append(result.Warnings, warnings...)
		if forecast == nil {
			r.p.Metrics.StationsSkipped.Inc()
			continue
		}
		result.Forecasts = append(result.Forecasts, *forecast)
		result.AbsErrors = append(result.AbsErrors, *errRec)
		r.p.Metrics.ForecastsGenerated.Inc()
	}

	r.p.Metrics.InvocationDuration.Observe(time.Since(start).Seconds())
	r.p.Logger.Info("forecast batch complete",
		"base_date", baseDate.Format("2006-01-02"),
		"stations", len(stations),
		"forecasts", len(result.Forecasts),
		"warnings", len(result.Warnings),
	)
	return result, nil
}

// processStation walks one station through the stage machine. A nil forecast
// means the station was skipped; warnings carry both skip reasons and
// non-fatal notices (zero-defaulted features, failed truth lookups).
func (r *Runner) processStation(
	ctx context.Context,
	station domain.StationRecord,
	candidates []domain.Row,
	day1, day2 time.Time,
) (*domain.Forecast, *domain.ErrorRecord, []Warning) {
	outID := station.ID + 1
	var warnings []Warning

	skip := func(stage Stage, err error) (*domain.Forecast, *domain.ErrorRecord, []Warning) {
		r.p.Logger.Warn("station skipped",
			"station", outID, "stage", string(stage), "error", err)
		warnings = append(warnings, Warning{
			StationID: outID,
			Stage:     stage,
			Reason:    err.Error(),
			At:        domain.Now(),
		})
		return nil, nil, warnings
	}

	row, err := r.p.Strategy.SelectRow(station, candidates)
	if err != nil {
		return skip(StageRowResolved, err)
	}

	fv, missing, err := domain.BuildFeatures(row, station.ID, r.p.Schema, r.p.Strict)
	if err != nil {
		return skip(StageFeaturesBuilt, err)
	}
	if len(missing) > 0 {
		r.p.Metrics.FeaturesDefaulted.Add(float64(len(missing)))
		warnings = append(warnings, Warning{
			StationID: outID,
			Stage:     StageFeaturesBuilt,
			Reason:    "features defaulted to zero: " + strings.Join(missing, ", "),
			At:        domain.Now(),
		})
	}

	rawT1, rawT2, err := r.p.Model.Forecast(fv)
	if err != nil {
		return skip(StagePredicted, err)
	}

	forecast := &domain.Forecast{
		StationID:        outID,
		Tomorrow:         domain.ClampForecast(rawT1),
		DayAfterTomorrow: domain.ClampForecast(rawT2),
	}

	errRec := &domain.ErrorRecord{StationID: outID}
	if r.p.Truth != nil {
		errRec.AbsError1D = domain.AbsError(forecast.Tomorrow, r.lookupActual(ctx, station.ID, day1))
		errRec.AbsError2D = domain.AbsError(forecast.DayAfterTomorrow, r.lookupActual(ctx, station.ID, day2))
	}
	return forecast, errRec, warnings
}

// lookupActual fetches ground truth for one horizon. Absence and lookup
// failure both yield nil: evaluation is never fatal and never skips the
// station.
func (r *Runner) lookupActual(ctx context.Context, stationID int, date time.Time) *float64 {
	actual, err := r.p.Truth.Actual(ctx, stationID, date)
	if err != nil {
		r.p.Logger.Warn("ground truth lookup failed",
			"station", stationID+1, "date", date.Format("2006-01-02"), "error", err)
		r.p.Metrics.GroundTruth.WithLabelValues("miss").Inc()
		return nil
	}
	if actual == nil {
		r.p.Metrics.GroundTruth.WithLabelValues("miss").Inc()
		return nil
	}
	r.p.Metrics.GroundTruth.WithLabelValues("hit").Inc()
	return actual
}
