package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kpetrov/docflow/internal/bootstrap"
	"github.com/kpetrov/docflow/internal/config"
	"github.com/kpetrov/docflow/internal/core/ports"
	"github.com/kpetrov/docflow/internal/observability/logging"
	"github.com/kpetrov/docflow/internal/observability/metrics"
)

const stageTimeout = 5 * time.Minute

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger, "docflow-worker")
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")

	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		logger.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	stages := []struct {
		name    string
		queue   ports.MessageQueue
		handler ports.StageHandler
	}{
		{"extraction", app.ExtractionQueue, app.ExtractionUC},
		{"metadata", app.MetadataQueue, app.MetadataUC},
		{"classification", app.ClassificationQueue, app.ClassificationUC},
		{"status", app.StatusQueue, app.StatusUC},
		{"notification", app.NotificationQueue, app.NotificationUC},
	}

	var wg sync.WaitGroup
	for _, stage := range stages {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("worker subscribed", "stage", stage.name)
			err := stage.queue.Subscribe(ctx, instrument(stage.name, stage.handler, workerMetrics))
			if err != nil {
				logger.Error("worker subscribe error", "stage", stage.name, "error", err)
				stop()
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		runAnalytics(ctx, app, cfg.AnalyticsInterval, logger)
	}()

	<-ctx.Done()
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}

// instrument wraps a stage handler with a per-message timeout and the worker
// metrics.
func instrument(stage string, handler ports.StageHandler, m *metrics.WorkerMetrics) func(context.Context, []byte) error {
	return func(ctx context.Context, payload []byte) error {
		handleCtx, cancel := context.WithTimeout(ctx, stageTimeout)
		defer cancel()

		m.StartStage(stage)
		start := time.Now()
		err := handler.Handle(handleCtx, payload)
		m.FinishStage(stage, time.Since(start), err)
		return err
	}
}

// runAnalytics writes one snapshot at startup and then on every tick until
// shutdown.
func runAnalytics(ctx context.Context, app *bootstrap.App, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}

	snapshot := func() {
		snapCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if _, err := app.Analytics.Snapshot(snapCtx); err != nil {
			logger.Warn("analytics snapshot failed", "error", err)
		}
	}

	snapshot()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapshot()
		}
	}
}
