package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
	"github.com/kirillkom/regulation-assistant/internal/core/ports"
	"github.com/kirillkom/regulation-assistant/internal/lexicon"
)

const (
	anonymousUser       = "anonymous"
	maxGreetingWords    = 5
	mixedReplyPrefix    = "Merhaba! "
	publishTimeout      = 5 * time.Second
	greetingResponse    = "Merhaba! Ondokuz Mayıs Üniversitesi yönetmelikleri ve kuralları ile ilgili sorularınızı cevaplamaya hazırım. Size nasıl yardımcı olabilirim?"
	goodbyeResponse     = "Görüşmek üzere! Sorularınız için her zaman buradayım. İyi günler dilerim."
	autoReplyConfidence = 1.0
)

// ChatUseCase answers chat messages: canned replies for greetings and
// goodbyes, the pipeline for everything else. Answered questions are
// published for analytics without blocking the reply.
type ChatUseCase struct {
	answerer  ports.QuestionAnswerer
	sessions  ports.SessionStore
	publisher ports.QuestionPublisher
	lex       *lexicon.Lexicon
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

func NewChatUseCase(
	answerer ports.QuestionAnswerer,
	sessions ports.SessionStore,
	publisher ports.QuestionPublisher,
	lex *lexicon.Lexicon,
	logger *slog.Logger,
) *ChatUseCase {
	if lex == nil {
		lex = lexicon.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatUseCase{
		answerer:  answerer,
		sessions:  sessions,
		publisher: publisher,
		lex:       lex,
		logger:    logger,
		now:       time.Now,
	}
}

func (uc *ChatUseCase) Chat(ctx context.Context, userID, message string) (domain.ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return domain.ChatReply{}, domain.WrapError(domain.ErrEmptyQuery, "chat", fmt.Errorf("message is required"))
	}
	userID = normalizeUserID(userID)

	lowered := lexicon.Fold(message)
	tokens := splitWordsLower(message)
	hasGreeting := uc.matchesAny(tokens, uc.lex.GreetingPhrases)
	hasQuestion := containsAny(lowered, uc.lex.QuestionIndicators)

	switch {
	case hasGreeting && !hasQuestion && len(strings.Fields(lowered)) <= maxGreetingWords:
		reply := autoReply(greetingResponse, domain.ReplyGreeting)
		uc.remember(ctx, userID, message, reply.Response)
		return reply, nil
	case uc.matchesAny(tokens, uc.lex.GoodbyePhrases):
		reply := autoReply(goodbyeResponse, domain.ReplyGoodbye)
		uc.remember(ctx, userID, message, reply.Response)
		return reply, nil
	}

	answer := uc.answerer.ProcessQuery(ctx, message)
	reply := domain.ChatReply{Answer: answer, Type: domain.ReplyRAG}
	if hasGreeting && hasQuestion {
		reply.Response = mixedReplyPrefix + answer.Response
		reply.Type = domain.ReplyMixed
	}

	uc.publish(ctx, userID, message, reply.Answer)
	uc.remember(ctx, userID, message, reply.Response)
	return reply, nil
}

func (uc *ChatUseCase) History(ctx context.Context, userID string) ([]domain.ConversationTurn, error) {
	if uc.sessions == nil {
		return []domain.ConversationTurn{}, nil
	}
	turns, err := uc.sessions.History(ctx, normalizeUserID(userID))
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return turns, nil
}

func (uc *ChatUseCase) ClearHistory(ctx context.Context, userID string) error {
	if uc.sessions == nil {
		return nil
	}
	if err := uc.sessions.Clear(ctx, normalizeUserID(userID)); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Close stops accepting analytics publishes and blocks until pending ones
// finish. Replies keep working after Close.
func (uc *ChatUseCase) Close() {
	uc.mu.Lock()
	uc.closed = true
	uc.mu.Unlock()
	uc.inflight.Wait()
}

func (uc *ChatUseCase) matchesAny(tokens []string, phrases []string) bool {
	for _, phrase := range phrases {
		if containsPhrase(tokens, phrase) {
			return true
		}
	}
	return false
}

func (uc *ChatUseCase) remember(ctx context.Context, userID, question, answer string) {
	if uc.sessions == nil {
		return
	}
	err := uc.sessions.Append(ctx, domain.ConversationTurn{
		UserID:    userID,
		Question:  question,
		Answer:    answer,
		CreatedAt: uc.now().UTC(),
	})
	if err != nil {
		uc.logger.Warn("session_append_failed", "user_id", userID, "error", err)
	}
}

func (uc *ChatUseCase) publish(ctx context.Context, userID, question string, answer domain.Answer) {
	if uc.publisher == nil {
		return
	}
	record := domain.QuestionRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		Question:   question,
		Answer:     answer.Response,
		Topic:      uc.lex.DetectTopic(question),
		Confidence: answer.Confidence,
		Outcome:    answer.Outcome,
		CreatedAt:  uc.now().UTC(),
	}
	if len(answer.Sources) > 0 {
		record.SourceFile = answer.Sources[0]
	}

	uc.mu.Lock()
	if uc.closed {
		uc.mu.Unlock()
		uc.logger.Warn("question_publish_skipped", "question_id", record.ID, "reason", "closed")
		return
	}
	uc.inflight.Add(1)
	uc.mu.Unlock()

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	go func() {
		defer uc.inflight.Done()
		defer cancel()
		if err := uc.publisher.PublishQuestionAnswered(publishCtx, record); err != nil {
			uc.logger.Warn("question_publish_failed", "question_id", record.ID, "error", err)
		}
	}()
}

func autoReply(text string, kind domain.ReplyType) domain.ChatReply {
	return domain.ChatReply{
		Answer: domain.Answer{
			Response:     text,
			Sources:      []string{},
			Confidence:   autoReplyConfidence,
			QualityLevel: domain.QualityAutoReply,
			Outcome:      domain.OutcomeAnswered,
		},
		Type: kind,
	}
}

func normalizeUserID(userID string) string {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return anonymousUser
	}
	return userID
}
