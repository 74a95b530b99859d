package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/kirillkom/regulation-assistant/internal/config"
	"github.com/kirillkom/regulation-assistant/internal/core/domain"
)

type slowAnswerer struct {
	deadline time.Time
	hasDL    bool
}

func (s *slowAnswerer) ProcessQuery(ctx context.Context, text string) domain.Answer {
	s.deadline, s.hasDL = ctx.Deadline()
	return domain.Answer{Response: text}
}

func TestWithDeadlineBoundsPipelineRuns(t *testing.T) {
	inner := &slowAnswerer{}
	answerer := withDeadline(inner, time.Minute)

	answerer.ProcessQuery(context.Background(), "soru")
	if !inner.hasDL || time.Until(inner.deadline) > time.Minute {
		t.Fatalf("expected a deadline within a minute, got %v (set=%v)", inner.deadline, inner.hasDL)
	}

	if withDeadline(inner, 0) != inner {
		t.Fatalf("a zero timeout must not wrap the answerer")
	}
}

func TestNewLLMProviderSelectsBackend(t *testing.T) {
	executor := newExecutor(config.Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	_, embedder, err := newLLMProvider(config.Config{LLMProvider: "ollama", OllamaEmbedModel: "nomic-embed-text"}, executor)
	if err != nil || embedder.Model() != "nomic-embed-text" {
		t.Fatalf("unexpected ollama provider: %v", err)
	}

	_, embedder, err = newLLMProvider(config.Config{LLMProvider: "openai", OpenAIBaseURL: "http://127.0.0.1:1/v1", OpenAIEmbedModel: "text-embedding-3-small"}, executor)
	if err != nil || embedder.Model() != "text-embedding-3-small" {
		t.Fatalf("unexpected openai provider: %v", err)
	}

	if _, _, err := newLLMProvider(config.Config{LLMProvider: "bard"}, executor); err == nil {
		t.Fatalf("expected unknown provider error")
	}
}

func TestNewQueryEmbedderDisabledReturnsInner(t *testing.T) {
	executor := newExecutor(config.Config{}, nil, nil)
	_, embedder, err := newLLMProvider(config.Config{LLMProvider: "ollama"}, executor)
	if err != nil {
		t.Fatalf("newLLMProvider() error = %v", err)
	}

	got, closeFn, err := newQueryEmbedder(config.Config{EmbedCacheSize: 0}, embedder, slog.Default(), nil)
	if err != nil {
		t.Fatalf("newQueryEmbedder() error = %v", err)
	}
	defer closeFn()
	if got != embedder {
		t.Fatalf("expected the raw embedder when caching is disabled")
	}
}

func TestNewQueryEmbedderOpensPersistentTier(t *testing.T) {
	executor := newExecutor(config.Config{}, nil, nil)
	_, embedder, err := newLLMProvider(config.Config{LLMProvider: "ollama"}, executor)
	if err != nil {
		t.Fatalf("newLLMProvider() error = %v", err)
	}

	got, closeFn, err := newQueryEmbedder(config.Config{
		EmbedCacheSize:       16,
		EmbedCacheTTLSeconds: 60,
		EmbedCachePath:       t.TempDir(),
	}, embedder, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	if err != nil {
		t.Fatalf("newQueryEmbedder() error = %v", err)
	}
	closeFn()
	if got == embedder {
		t.Fatalf("expected a cached embedder")
	}
}

func TestNewRejectsUnknownSessionBackend(t *testing.T) {
	cfg := config.Config{LLMProvider: "ollama", SessionBackend: "redis"}
	if _, err := New(context.Background(), cfg, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))); err == nil {
		t.Fatalf("expected unknown session backend error")
	}
}

func TestNewWiresInMemoryApp(t *testing.T) {
	cfg := config.Config{
		LLMProvider:    "ollama",
		SessionBackend: "memory",
		EmbedCacheSize: 8,
		RAGTopK:        5,
	}
	app, err := New(context.Background(), cfg, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()
	if app.Pipeline == nil || app.Chat == nil || app.Seeder == nil {
		t.Fatalf("expected wired use cases")
	}
	if app.Stats != nil {
		t.Fatalf("stats must be nil when analytics is disabled")
	}
}
