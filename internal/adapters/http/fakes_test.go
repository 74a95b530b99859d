package httpadapter

import (
	"context"
	"net/http"
	"sync"

	"github.com/kirillkom/regulation-assistant/internal/config"
	"github.com/kirillkom/regulation-assistant/internal/core/domain"
	"github.com/kirillkom/regulation-assistant/internal/core/ports"
)

type answererFake struct {
	mu        sync.Mutex
	questions []string
	answer    domain.Answer
}

func (f *answererFake) ProcessQuery(_ context.Context, text string) domain.Answer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.questions = append(f.questions, text)
	return f.answer
}

type chatFake struct {
	reply   domain.ChatReply
	err     error
	turns   []domain.ConversationTurn
	cleared []string
}

func (f *chatFake) Chat(_ context.Context, userID, message string) (domain.ChatReply, error) {
	if f.err != nil {
		return domain.ChatReply{}, f.err
	}
	reply := f.reply
	if reply.Response == "" {
		reply.Response = "yanıt: " + message
	}
	return reply, nil
}

func (f *chatFake) History(context.Context, string) ([]domain.ConversationTurn, error) {
	return f.turns, f.err
}

func (f *chatFake) ClearHistory(_ context.Context, userID string) error {
	if f.err != nil {
		return f.err
	}
	f.cleared = append(f.cleared, userID)
	return nil
}

type statsFake struct {
	limits []int
	err    error
}

func (f *statsFake) TopTopics(_ context.Context, limit int) ([]domain.TopicCount, error) {
	f.limits = append(f.limits, limit)
	return []domain.TopicCount{{Topic: "sınav", Count: 3}}, f.err
}

func (f *statsFake) TopSources(_ context.Context, limit int) ([]domain.SourceCount, error) {
	return []domain.SourceCount{{SourceFile: "sinav.pdf", Count: 2}}, f.err
}

var (
	_ ports.QuestionAnswerer = (*answererFake)(nil)
	_ ports.ChatService      = (*chatFake)(nil)
	_ ports.StatsReader      = (*statsFake)(nil)
)

func newTestHandler(cfg config.Config) http.Handler {
	return NewRouter(cfg, &answererFake{}, &chatFake{}, &statsFake{}).Handler()
}
