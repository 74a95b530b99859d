package ports

import (
	"context"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
)

// Embedder builds the query vector for semantic search.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// BatchEmbedder embeds many passages at once (corpus seeding).
type BatchEmbedder interface {
	Embedder
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndex returns nearest neighbours ordered by ascending distance.
type VectorIndex interface {
	Query(ctx context.Context, vector []float32, limit int, filter domain.SearchFilter) ([]domain.VectorHit, error)
}

// KeywordCorpus exposes every passage for lexical scoring.
type KeywordCorpus interface {
	All(ctx context.Context) ([]domain.CorpusDocument, error)
}

// PassageSplitter cuts a document into overlapping passages.
type PassageSplitter interface {
	Split(text string) []string
}

// PassageIndexer stores embedded passages in the vector index.
type PassageIndexer interface {
	Upsert(ctx context.Context, docs []domain.CorpusDocument, vectors [][]float32) error
}

type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
}

// Completer calls the text completion service.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

// EmbeddingCache stores query vectors keyed by model and text.
// Writes are last-write-wins; a miss is never an error.
type EmbeddingCache interface {
	Get(ctx context.Context, key string) ([]float32, bool)
	Set(ctx context.Context, key string, vector []float32)
}

// SessionStore keeps the bounded per-user conversation history.
type SessionStore interface {
	Append(ctx context.Context, turn domain.ConversationTurn) error
	History(ctx context.Context, userID string) ([]domain.ConversationTurn, error)
	Clear(ctx context.Context, userID string) error
}

// QuestionPublisher emits answered-question events for analytics.
type QuestionPublisher interface {
	PublishQuestionAnswered(ctx context.Context, record domain.QuestionRecord) error
}

// QuestionSubscriber consumes answered-question events.
type QuestionSubscriber interface {
	SubscribeQuestionAnswered(ctx context.Context, handler func(context.Context, domain.QuestionRecord) error) error
}

// QuestionRepository persists question analytics.
type QuestionRepository interface {
	SaveQuestion(ctx context.Context, record domain.QuestionRecord) error
	TopTopics(ctx context.Context, limit int) ([]domain.TopicCount, error)
	TopSources(ctx context.Context, limit int) ([]domain.SourceCount, error)
}
