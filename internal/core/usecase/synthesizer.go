package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
	"github.com/kirillkom/regulation-assistant/internal/core/ports"
)

const noClearAnswer = "Modelden net bir yanıt alınamadı."

var errNoCompleter = errors.New("completer is not configured")

type SynthesizerConfig struct {
	Temperature     float64
	MaxTokens       int
	MinAnswerLength int
	MaxAnswerLength int
}

func DefaultSynthesizerConfig() SynthesizerConfig {
	return SynthesizerConfig{
		Temperature:     0.1,
		MaxTokens:       2048,
		MinAnswerLength: 20,
		MaxAnswerLength: 1000,
	}
}

func (c SynthesizerConfig) normalize() SynthesizerConfig {
	def := DefaultSynthesizerConfig()
	if c.Temperature < 0 {
		c.Temperature = def.Temperature
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = def.MaxTokens
	}
	if c.MinAnswerLength < 0 {
		c.MinAnswerLength = def.MinAnswerLength
	}
	if c.MaxAnswerLength <= 0 {
		c.MaxAnswerLength = def.MaxAnswerLength
	}
	return c
}

// AnswerSynthesizer prompts the completion service with the assembled
// context and cleans what comes back.
type AnswerSynthesizer struct {
	completer ports.Completer
	cfg       SynthesizerConfig
	logger    *slog.Logger
}

func NewAnswerSynthesizer(completer ports.Completer, cfg SynthesizerConfig, logger *slog.Logger) *AnswerSynthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnswerSynthesizer{
		completer: completer,
		cfg:       cfg.normalize(),
		logger:    logger,
	}
}

func (s *AnswerSynthesizer) Synthesize(ctx context.Context, q domain.Query, bundle domain.ContextBundle) (string, error) {
	if s.completer == nil {
		return "", domain.WrapError(domain.ErrUpstream, "synthesize", errNoCompleter)
	}

	prompt := buildPrompt(q.Original, q.Category, bundle.Formatted)
	raw, err := s.completer.Complete(ctx, prompt, ports.CompletionOptions{
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		return "", domain.WrapError(domain.ErrUpstream, "synthesize", err)
	}

	cleaned := cleanCompletion(raw, s.cfg.MaxAnswerLength)
	if strings.TrimSpace(cleaned) == "" {
		s.logger.Warn("completion_empty", "category", q.Category)
		cleaned = noClearAnswer
	}
	return stripCitations(cleaned, s.cfg.MinAnswerLength), nil
}
