// Command forecastd serves on-demand forecast batches over HTTP and,
// optionally, runs one batch per day on a fixed UTC schedule and publishes
// finished batches to Kafka.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/heatwatch/hi-forecast/internal/adapter/http"
	kafkaadapter "github.com/heatwatch/hi-forecast/internal/adapter/kafka"
	"github.com/heatwatch/hi-forecast/internal/app"
	"github.com/heatwatch/hi-forecast/internal/config"
	"github.com/heatwatch/hi-forecast/internal/observability"
	"github.com/heatwatch/hi-forecast/internal/pipeline"
	"github.com/heatwatch/hi-forecast/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx, cfg, logger, metrics)
	if err != nil {
		logger.Error("failed to wire backends", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	runner := pipeline.New(deps.Params)

	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		logger.Info("kafka publication enabled", "topic", cfg.KafkaTopic)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, runner, deps, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	var sched *scheduler.Scheduler
	if cfg.DailySchedule != "" {
		var pub scheduler.Publisher
		if publisher != nil {
			pub = publisher
		}
		sched = scheduler.New(runner, pub, cfg.DailySchedule, 10*time.Minute, logger)
		if err := sched.Start(); err != nil {
			logger.Error("failed to start scheduler", "error", err)
			os.Exit(1)
		}
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if sched != nil {
		sched.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
