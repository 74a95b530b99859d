package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/regulation-assistant/internal/bootstrap"
	"github.com/kirillkom/regulation-assistant/internal/config"
	"github.com/kirillkom/regulation-assistant/internal/core/domain"
	"github.com/kirillkom/regulation-assistant/internal/observability/metrics"
)

type recorderFake struct {
	records []domain.QuestionRecord
	err     error
}

func (f *recorderFake) Record(_ context.Context, record domain.QuestionRecord) error {
	f.records = append(f.records, record)
	return f.err
}

func TestRecordHandlerPassesRecordAndError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewWorkerMetrics("worker-test")

	ok := &recorderFake{}
	record := domain.QuestionRecord{ID: "q1", Question: "Burs başvurusu ne zaman?", CreatedAt: time.Now().Add(-time.Second)}
	if err := recordHandler(ok, m, logger)(context.Background(), record); err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if len(ok.records) != 1 || ok.records[0].ID != "q1" {
		t.Fatalf("unexpected records %+v", ok.records)
	}

	failing := &recorderFake{err: errors.New("db down")}
	if err := recordHandler(failing, m, logger)(context.Background(), record); err == nil {
		t.Fatalf("expected recorder error to propagate")
	}
}

type subscriberFake struct {
	err error
}

func (f subscriberFake) SubscribeQuestionAnswered(context.Context, func(context.Context, domain.QuestionRecord) error) error {
	return f.err
}

func TestRunClosesWorkerWhenSubscribeFails(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	closed := false
	open := func(context.Context, config.Config, *slog.Logger) (*bootstrap.Worker, error) {
		return bootstrap.NewWorkerFrom(subscriberFake{err: errors.New("nats gone")}, &recorderFake{}, func() { closed = true }), nil
	}

	err := run(context.Background(), config.Config{WorkerMetricsPort: "0"}, logger, open)
	if err == nil || !strings.Contains(err.Error(), "subscribe") {
		t.Fatalf("expected subscribe error, got %v", err)
	}
	if !closed {
		t.Fatalf("worker must be closed before run returns")
	}
}

func TestRunReportsBootstrapFailure(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	open := func(context.Context, config.Config, *slog.Logger) (*bootstrap.Worker, error) {
		return nil, errors.New("postgres unreachable")
	}

	err := run(context.Background(), config.Config{WorkerMetricsPort: "0"}, logger, open)
	if err == nil || !strings.Contains(err.Error(), "bootstrap worker") {
		t.Fatalf("expected bootstrap error, got %v", err)
	}
}
