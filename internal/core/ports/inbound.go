package ports

import (
	"context"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
)

// QuestionAnswerer is the inbound contract of the retrieval and answer pipeline.
// It never fails: every branch yields a well-formed Answer.
type QuestionAnswerer interface {
	ProcessQuery(ctx context.Context, text string) domain.Answer
}

// ChatService wraps the pipeline with greetings and per-user history.
type ChatService interface {
	Chat(ctx context.Context, userID, message string) (domain.ChatReply, error)
	History(ctx context.Context, userID string) ([]domain.ConversationTurn, error)
	ClearHistory(ctx context.Context, userID string) error
}

// QuestionRecorder is the inbound contract for the analytics worker.
type QuestionRecorder interface {
	Record(ctx context.Context, record domain.QuestionRecord) error
}

// StatsReader exposes aggregated question analytics.
type StatsReader interface {
	TopTopics(ctx context.Context, limit int) ([]domain.TopicCount, error)
	TopSources(ctx context.Context, limit int) ([]domain.SourceCount, error)
}
