package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/regulation-assistant/internal/config"
	"github.com/kirillkom/regulation-assistant/internal/core/ports"
	"github.com/kirillkom/regulation-assistant/internal/core/usecase"
	"github.com/kirillkom/regulation-assistant/internal/infrastructure/queue/nats"
	"github.com/kirillkom/regulation-assistant/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/regulation-assistant/internal/lexicon"
)

// Worker holds what the analytics worker needs: the event subscription and
// the recorder that persists each event.
type Worker struct {
	Queue    ports.QuestionSubscriber
	Recorder ports.QuestionRecorder

	closeFn func()
}

func NewWorker(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Worker, error) {
	if logger == nil {
		logger = slog.Default()
	}
	lex, err := lexicon.Load(cfg.LexiconPath)
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: newExecutor(cfg, logger, nil),
		Logger:             logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	recorder := usecase.NewAnalyticsUseCase(postgres.NewQuestionRepository(db), lex)
	return NewWorkerFrom(queue, recorder, func() {
		queue.Close()
		_ = db.Close()
	}), nil
}

// NewWorkerFrom assembles a Worker from already opened parts. closeFn may
// be nil.
func NewWorkerFrom(queue ports.QuestionSubscriber, recorder ports.QuestionRecorder, closeFn func()) *Worker {
	return &Worker{Queue: queue, Recorder: recorder, closeFn: closeFn}
}

func (w *Worker) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

