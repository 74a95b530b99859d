package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
	"github.com/kirillkom/regulation-assistant/internal/core/ports"
	"github.com/kirillkom/regulation-assistant/internal/lexicon"
)

const (
	defaultStatsLimit = 10
	maxStatsLimit     = 100
)

// AnalyticsUseCase stores answered questions and serves aggregate stats.
type AnalyticsUseCase struct {
	repo ports.QuestionRepository
	lex  *lexicon.Lexicon
}

func NewAnalyticsUseCase(repo ports.QuestionRepository, lex *lexicon.Lexicon) *AnalyticsUseCase {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &AnalyticsUseCase{repo: repo, lex: lex}
}

func (uc *AnalyticsUseCase) Record(ctx context.Context, record domain.QuestionRecord) error {
	record.Question = strings.TrimSpace(record.Question)
	if record.Question == "" {
		return domain.WrapError(domain.ErrInvalidInput, "record question", fmt.Errorf("question is required"))
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.UserID == "" {
		record.UserID = anonymousUser
	}
	if record.Topic == "" {
		record.Topic = uc.lex.DetectTopic(record.Question)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	if err := uc.repo.SaveQuestion(ctx, record); err != nil {
		return fmt.Errorf("save question: %w", err)
	}
	return nil
}

func (uc *AnalyticsUseCase) TopTopics(ctx context.Context, limit int) ([]domain.TopicCount, error) {
	topics, err := uc.repo.TopTopics(ctx, statsLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("top topics: %w", err)
	}
	return topics, nil
}

func (uc *AnalyticsUseCase) TopSources(ctx context.Context, limit int) ([]domain.SourceCount, error) {
	sources, err := uc.repo.TopSources(ctx, statsLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("top sources: %w", err)
	}
	return sources, nil
}

func statsLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultStatsLimit
	case limit > maxStatsLimit:
		return maxStatsLimit
	default:
		return limit
	}
}
