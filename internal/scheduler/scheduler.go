package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/heatwatch/hi-forecast/internal/domain"
	"github.com/heatwatch/hi-forecast/internal/pipeline"
)

// BatchRunner executes one forecast invocation for a base date.
type BatchRunner interface {
	Run(ctx context.Context, baseDate time.Time) (*pipeline.Result, error)
}

// Publisher delivers a finished batch downstream. Optional.
type Publisher interface {
	PublishBatch(ctx context.Context, result *pipeline.Result) error
}

// Scheduler runs one forecast batch per day at a fixed UTC time. The base
// date of each run is the calendar date at trigger time.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    BatchRunner
	publisher Publisher
	at        string
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a daily scheduler. at is an HH:MM wall-clock time in UTC.
// publisher may be nil.
func New(runner BatchRunner, publisher Publisher, at string, timeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		runner:    runner,
		publisher: publisher,
		at:        at,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start registers the daily job and starts the scheduler asynchronously.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(1).Day().At(s.at).Do(s.runOnce)
	if err != nil {
		return err
	}
	s.scheduler.StartAsync()
	s.logger.Info("daily forecast schedule started", "at", s.at)
	return nil
}

// Stop halts the scheduler. A job already in flight runs to completion.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	baseDate := domain.Now().UTC().Truncate(24 * time.Hour)
	s.logger.Info("scheduled forecast run starting", "base_date", baseDate.Format("2006-01-02"))

	result, err := s.runner.Run(ctx, baseDate)
	if err != nil {
		s.logger.Error("scheduled forecast run failed", "error", err)
		return
	}
	s.logger.Info("scheduled forecast run complete",
		"forecasts", len(result.Forecasts), "warnings", len(result.Warnings))

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishBatch(ctx, result); err != nil {
		s.logger.Error("forecast publish failed", "error", err)
	}
}
