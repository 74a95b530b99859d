package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
	"github.com/kirillkom/regulation-assistant/internal/core/ports"
	"github.com/kirillkom/regulation-assistant/internal/infrastructure/resilience"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const serviceName = "openai"

type Config struct {
	BaseURL        string
	APIKey         string
	ChatModel      string
	EmbeddingModel string
}

// Completer talks to any OpenAI-compatible chat completion endpoint.
type Completer struct {
	model    llms.Model
	executor *resilience.Executor
}

func NewCompleter(cfg Config, executor *resilience.Executor) (*Completer, error) {
	client, err := openai.New(clientOptions(cfg, openai.WithModel(cfg.ChatModel))...)
	if err != nil {
		return nil, fmt.Errorf("create openai chat client: %w", err)
	}
	return &Completer{model: client, executor: executor}, nil
}

func (c *Completer) Complete(ctx context.Context, prompt string, opts ports.CompletionOptions) (string, error) {
	callOpts := []llms.CallOption{llms.WithTemperature(opts.Temperature)}
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(opts.MaxTokens))
	}

	out, err := resilience.Do(ctx, c.executor, serviceName+".complete", func(ctx context.Context) (string, error) {
		return llms.GenerateFromSinglePrompt(ctx, c.model, prompt, callOpts...)
	}, classifyError)
	if err != nil {
		return "", resilience.WrapUpstream(serviceName+" complete", err, classifyError)
	}
	return strings.TrimSpace(out), nil
}

// Embedder wraps the langchaingo embedder for OpenAI-compatible services.
type Embedder struct {
	embedder  embeddings.Embedder
	modelName string
	executor  *resilience.Executor
}

func NewEmbedder(cfg Config, executor *resilience.Executor) (*Embedder, error) {
	client, err := openai.New(clientOptions(cfg, openai.WithEmbeddingModel(cfg.EmbeddingModel))...)
	if err != nil {
		return nil, fmt.Errorf("create openai embedding client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("create openai embedder: %w", err)
	}
	return &Embedder{embedder: embedder, modelName: cfg.EmbeddingModel, executor: executor}, nil
}

func (e *Embedder) Model() string {
	return e.modelName
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors[0]) == 0 {
		return nil, domain.WrapError(domain.ErrMalformedResponse, serviceName+" embed", fmt.Errorf("empty embedding"))
	}
	return vectors[0], nil
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := resilience.Do(ctx, e.executor, serviceName+".embed", func(ctx context.Context) ([][]float32, error) {
		return e.embedder.EmbedDocuments(ctx, texts)
	}, classifyError)
	if err != nil {
		return nil, resilience.WrapUpstream(serviceName+" embed", err, classifyError)
	}
	if len(vectors) != len(texts) {
		return nil, domain.WrapError(
			domain.ErrMalformedResponse,
			serviceName+" embed",
			fmt.Errorf("got %d embeddings for %d inputs", len(vectors), len(texts)),
		)
	}
	return vectors, nil
}

func clientOptions(cfg Config, extra ...openai.Option) []openai.Option {
	token := strings.TrimSpace(cfg.APIKey)
	if token == "" {
		// Local OpenAI-compatible servers accept any token.
		token = "none"
	}
	opts := []openai.Option{openai.WithToken(token)}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, openai.WithBaseURL(strings.TrimRight(base, "/")))
	}
	return append(opts, extra...)
}

// classifyError retries rate limits, server errors and transport failures.
// langchaingo reports HTTP status only in the error text.
func classifyError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"status code: 429", "status code: 5", "rate limit", "connection reset"} {
		if strings.Contains(msg, marker) {
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
