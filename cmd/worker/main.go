package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/regulation-assistant/internal/bootstrap"
	"github.com/kirillkom/regulation-assistant/internal/config"
	"github.com/kirillkom/regulation-assistant/internal/core/domain"
	"github.com/kirillkom/regulation-assistant/internal/core/ports"
	"github.com/kirillkom/regulation-assistant/internal/observability/logging"
	"github.com/kirillkom/regulation-assistant/internal/observability/metrics"
)

type workerOpener func(ctx context.Context, cfg config.Config, logger *slog.Logger) (*bootstrap.Worker, error)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg, logger, bootstrap.NewWorker)
	stop()
	if err != nil {
		logger.Error("worker_failed", "error", err)
		os.Exit(1)
	}
}

// run blocks until ctx is done or the subscription fails. Resources are
// released before it returns.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger, open workerOpener) error {
	worker, err := open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("bootstrap worker: %w", err)
	}
	defer worker.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject, "metrics_port", cfg.WorkerMetricsPort)
	if err := worker.Queue.SubscribeQuestionAnswered(ctx, recordHandler(worker.Recorder, workerMetrics, logger)); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

func recordHandler(recorder ports.QuestionRecorder, m *metrics.WorkerMetrics, logger *slog.Logger) func(context.Context, domain.QuestionRecord) error {
	return func(ctx context.Context, record domain.QuestionRecord) error {
		if !record.CreatedAt.IsZero() {
			m.ObserveQueueLag(time.Since(record.CreatedAt))
		}
		m.StartEvent()
		started := time.Now()
		err := recorder.Record(ctx, record)
		m.FinishEvent(time.Since(started), err)
		if err == nil {
			logger.Debug("question_recorded", "question_id", record.ID, "topic", record.Topic)
		}
		return err
	}
}
