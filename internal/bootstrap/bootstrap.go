package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/regulation-assistant/internal/config"
	"github.com/kirillkom/regulation-assistant/internal/core/ports"
	"github.com/kirillkom/regulation-assistant/internal/core/usecase"
	"github.com/kirillkom/regulation-assistant/internal/infrastructure/cache"
	"github.com/kirillkom/regulation-assistant/internal/infrastructure/chunking"
	"github.com/kirillkom/regulation-assistant/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/regulation-assistant/internal/infrastructure/llm/openai"
	"github.com/kirillkom/regulation-assistant/internal/infrastructure/queue/nats"
	"github.com/kirillkom/regulation-assistant/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/regulation-assistant/internal/infrastructure/resilience"
	"github.com/kirillkom/regulation-assistant/internal/infrastructure/session"
	"github.com/kirillkom/regulation-assistant/internal/infrastructure/vector/qdrant"
	"github.com/kirillkom/regulation-assistant/internal/lexicon"
	"github.com/kirillkom/regulation-assistant/internal/observability/metrics"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Pipeline ports.QuestionAnswerer
	Chat     *usecase.ChatUseCase
	Seeder   *usecase.SeedUseCase
	// Stats is nil when analytics is disabled.
	Stats ports.StatsReader

	closeFn func()
}

type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *metrics.HTTPServerMetrics
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics reports retries, breaker transitions and embedding cache
// lookups to m.
func WithMetrics(m *metrics.HTTPServerMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// embeddingProvider is what both LLM backends offer for embeddings.
type embeddingProvider interface {
	ports.BatchEmbedder
	Model() string
}

func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger

	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*App, error) {
		closeAll()
		return nil, err
	}

	lex, err := lexicon.Load(cfg.LexiconPath)
	if err != nil {
		return fail(fmt.Errorf("load lexicon: %w", err))
	}

	executor := newExecutor(cfg, logger, o.metrics)

	completer, embedder, err := newLLMProvider(cfg, executor)
	if err != nil {
		return fail(err)
	}

	queryEmbedder, closeCache, err := newQueryEmbedder(cfg, embedder, logger, o.metrics)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeCache)

	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection, qdrant.WithExecutor(executor))

	analyzer := usecase.NewQueryAnalyzer(lex)
	retriever := usecase.NewRetriever(analyzer, queryEmbedder, vectorDB, vectorDB, lex, usecase.RetrieverConfig{
		DefaultLimit:        cfg.RAGTopK,
		MaxResults:          cfg.RAGMaxResults,
		SemanticWeight:      cfg.RAGSemanticWeight,
		KeywordWeight:       cfg.RAGKeywordWeight,
		SimilarityThreshold: cfg.RAGSimilarityThreshold,
	}, logger)
	assembler := usecase.NewContextAssembler(lex, usecase.AssemblerConfig{
		MaxEntries:       cfg.RAGMaxContextEntries,
		MaxContextLength: cfg.RAGMaxContextLength,
	})
	synthesizer := usecase.NewAnswerSynthesizer(completer, usecase.SynthesizerConfig{
		Temperature:     cfg.LLMTemperature,
		MaxTokens:       cfg.LLMMaxTokens,
		MinAnswerLength: cfg.AnswerMinLength,
		MaxAnswerLength: cfg.AnswerMaxLength,
	}, logger)
	evaluator := usecase.NewQualityEvaluator(lex, cfg.AnswerMinLength, cfg.AnswerMaxLength)
	pipeline := withDeadline(
		usecase.NewPipeline(analyzer, retriever, assembler, synthesizer, evaluator, logger),
		time.Duration(cfg.RAGTimeoutSeconds)*time.Second,
	)

	var db *sql.DB
	openDB := func() (*sql.DB, error) {
		if db != nil {
			return db, nil
		}
		opened, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, opened); err != nil {
			_ = opened.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		db = opened
		closers = append(closers, func() { _ = opened.Close() })
		return db, nil
	}

	var sessions ports.SessionStore
	switch cfg.SessionBackend {
	case "postgres":
		conn, err := openDB()
		if err != nil {
			return fail(err)
		}
		sessions = postgres.NewConversationRepository(conn)
	case "memory", "":
		sessions = session.NewMemoryStore(0)
	default:
		return fail(fmt.Errorf("unknown session backend %q", cfg.SessionBackend))
	}

	var publisher ports.QuestionPublisher
	var stats ports.StatsReader
	if cfg.AnalyticsEnabled {
		queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
			Logger:             logger,
		})
		if err != nil {
			return fail(fmt.Errorf("init message queue: %w", err))
		}
		closers = append(closers, queue.Close)
		publisher = queue

		conn, err := openDB()
		if err != nil {
			return fail(err)
		}
		stats = usecase.NewAnalyticsUseCase(postgres.NewQuestionRepository(conn), lex)
	}

	chat := usecase.NewChatUseCase(pipeline, sessions, publisher, lex, logger)
	closers = append(closers, chat.Close)

	seeder := usecase.NewSeedUseCase(
		chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		embedder,
		vectorDB,
		cfg.SeedBatchSize,
	)

	logger.Info("bootstrap_ready",
		"llm_provider", cfg.LLMProvider,
		"embedding_model", embedder.Model(),
		"session_backend", cfg.SessionBackend,
		"analytics", cfg.AnalyticsEnabled,
	)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Pipeline: pipeline,
		Chat:     chat,
		Seeder:   seeder,
		Stats:    stats,
		closeFn:  closeAll,
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func newExecutor(cfg config.Config, logger *slog.Logger, observer *metrics.HTTPServerMetrics) *resilience.Executor {
	rc := resilience.DefaultConfig()
	rc.RetryMaxAttempts = cfg.RetryMaxAttempts
	rc.RetryInitialBackoff = time.Duration(cfg.RetryInitialBackoffMS) * time.Millisecond
	rc.RetryMaxBackoff = time.Duration(cfg.RetryMaxBackoffMS) * time.Millisecond
	rc.AttemptTimeout = time.Duration(cfg.AttemptTimeoutSeconds) * time.Second
	rc.BreakerEnabled = cfg.BreakerEnabled

	opts := []resilience.Option{resilience.WithLogger(logger)}
	if observer != nil {
		opts = append(opts, resilience.WithObserver(observer))
	}
	return resilience.NewExecutor(rc, opts...)
}

func newLLMProvider(cfg config.Config, executor *resilience.Executor) (ports.Completer, embeddingProvider, error) {
	switch cfg.LLMProvider {
	case "openai":
		oc := openai.Config{
			BaseURL:        cfg.OpenAIBaseURL,
			APIKey:         cfg.OpenAIAPIKey,
			ChatModel:      cfg.OpenAIChatModel,
			EmbeddingModel: cfg.OpenAIEmbedModel,
		}
		completer, err := openai.NewCompleter(oc, executor)
		if err != nil {
			return nil, nil, fmt.Errorf("init openai completer: %w", err)
		}
		embedder, err := openai.NewEmbedder(oc, executor)
		if err != nil {
			return nil, nil, fmt.Errorf("init openai embedder: %w", err)
		}
		return completer, embedder, nil
	case "ollama", "":
		client := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, ollama.WithExecutor(executor))
		return ollama.NewCompleter(client), ollama.NewEmbedder(client), nil
	default:
		return nil, nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}

// newQueryEmbedder puts the in-process LRU in front of the embedder and,
// when a path is configured, a Badger store behind it.
func newQueryEmbedder(
	cfg config.Config,
	embedder embeddingProvider,
	logger *slog.Logger,
	recorder *metrics.HTTPServerMetrics,
) (ports.Embedder, func(), error) {
	noop := func() {}
	if cfg.EmbedCacheSize <= 0 {
		return embedder, noop, nil
	}
	ttl := time.Duration(cfg.EmbedCacheTTLSeconds) * time.Second
	tiers := cache.Tiered{cache.NewLRU(cfg.EmbedCacheSize, ttl)}
	closeFn := noop
	if cfg.EmbedCachePath != "" {
		store, err := cache.OpenBadger(cfg.EmbedCachePath, ttl, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open embedding cache: %w", err)
		}
		tiers = append(tiers, store)
		closeFn = func() {
			if err := store.Close(); err != nil {
				logger.Warn("embedding_cache_close_failed", "error", err)
			}
		}
	}

	var lookups cache.LookupRecorder
	if recorder != nil {
		lookups = recorder
	}
	return cache.NewCachedEmbedder(embedder, tiers, embedder.Model(), lookups), closeFn, nil
}
