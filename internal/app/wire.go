// Package app wires configured backends, the model artifact, and the row
// selection strategy into pipeline parameters shared by the binaries.
package app

import (
	"context"
	"log/slog"

	"github.com/heatwatch/hi-forecast/internal/config"
	"github.com/heatwatch/hi-forecast/internal/dataset"
	"github.com/heatwatch/hi-forecast/internal/model"
	"github.com/heatwatch/hi-forecast/internal/observability"
	"github.com/heatwatch/hi-forecast/internal/pipeline"
	"github.com/heatwatch/hi-forecast/internal/store"
)

// Deps holds the wired pipeline inputs plus the owned store handle, which is
// nil when no relational backend is configured.
type Deps struct {
	Params pipeline.Params
	DB     *store.DB
}

// Close releases the store connection if one was opened.
func (d *Deps) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}

// Build wires the row, station, and ground-truth sources per the configured
// backends and loads the model artifact. The store, when configured, is the
// primary row backend with the dataset file as fallback; without a store the
// dataset serves everything and error evaluation is disabled.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*Deps, error) {
	deps := &Deps{}

	frame, err := dataset.LoadCSV(cfg.DataPath)
	if err != nil {
		if cfg.DatabaseURL == "" {
			return nil, err
		}
		logger.Warn("dataset unavailable, store only", "path", cfg.DataPath, "error", err)
		frame = nil
	}

	var (
		rows     pipeline.RowSource
		stations pipeline.StationSource
		truth    pipeline.GroundTruthSource
	)

	if cfg.DatabaseURL != "" {
		db, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		deps.DB = db

		fallback := &pipeline.FallbackSource{
			Primary:     db,
			PrimaryName: "store",
			Logger:      logger,
			Metrics:     metrics,
		}
		if frame != nil {
			fallback.Secondary = pipeline.FrameSource{Frame: frame}
			fallback.SecondaryName = "dataset"
		}
		rows = fallback
		truth = db

		if cfg.StationSource == config.StationSourceDataset && frame != nil {
			stations = pipeline.FrameSource{Frame: frame}
		} else {
			stations = db
		}
	} else {
		src := pipeline.FrameSource{Frame: frame}
		rows = src
		stations = src
	}

	ensemble, err := model.Load(cfg.ModelPath, cfg.ModelSchemaPath)
	if err != nil {
		deps.Close()
		return nil, err
	}

	window := pipeline.Window{Start: cfg.WindowStart, End: cfg.WindowEnd}
	var strategy pipeline.RowSelectionStrategy
	if cfg.RowStrategy == config.StrategyLatest {
		strategy = pipeline.LatestStrategy{Window: window}
	} else {
		strategy = pipeline.CoordinateStrategy{Window: window, Tolerance: cfg.CoordTolerance}
	}

	deps.Params = pipeline.Params{
		Stations: stations,
		Rows:     rows,
		Strategy: strategy,
		Model:    model.NewRunner(ensemble),
		Schema:   ensemble.Schema(),
		Strict:   cfg.StrictFeatures,
		Truth:    truth,
		Logger:   logger,
		Metrics:  metrics,
	}
	return deps, nil
}

// CheckReadiness reports whether the configured backends can serve a batch.
// Dataset-only deployments are always ready once built.
func (d *Deps) CheckReadiness(ctx context.Context) error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Ping(ctx)
}
