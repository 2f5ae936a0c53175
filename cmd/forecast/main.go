// Command forecast runs one forecast batch for a base date and prints the
// payload to stdout: one JSON array of per-station forecasts, then one JSON
// object with the abs-error records. Diagnostics go to stderr.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/heatwatch/hi-forecast/internal/app"
	"github.com/heatwatch/hi-forecast/internal/config"
	"github.com/heatwatch/hi-forecast/internal/domain"
	"github.com/heatwatch/hi-forecast/internal/observability"
	"github.com/heatwatch/hi-forecast/internal/pipeline"
)

func main() {
	dateArg := flag.String("date", "", "base date YYYY-MM-DD (default: today, UTC)")
	flag.Parse()

	if err := run(*dateArg); err != nil {
		json.NewEncoder(os.Stderr).Encode(map[string]string{"error": err.Error()}) //nolint:errcheck
		os.Exit(1)
	}
}

func run(dateArg string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	baseDate := domain.Now().UTC().Truncate(24 * time.Hour)
	if dateArg != "" {
		baseDate, err = config.ParseForecastDate(dateArg)
		if err != nil {
			return err
		}
	}

	ctx := context.Background()

	deps, err := app.Build(ctx, cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer deps.Close()

	result, err := pipeline.New(deps.Params).Run(ctx, baseDate)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(result.Forecasts); err != nil {
		return fmt.Errorf("write forecasts: %w", err)
	}
	if err := enc.Encode(map[string]any{"abs_errors": result.AbsErrors}); err != nil {
		return fmt.Errorf("write abs errors: %w", err)
	}
	return nil
}
