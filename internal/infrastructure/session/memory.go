package session

import (
	"context"
	"sync"
	"time"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
)

// MemoryStore keeps conversation history in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	maxTurns int
	turns    map[string][]domain.ConversationTurn
}

func NewMemoryStore(maxTurns int) *MemoryStore {
	if maxTurns <= 0 {
		maxTurns = domain.MaxConversationTurns
	}
	return &MemoryStore{
		maxTurns: maxTurns,
		turns:    make(map[string][]domain.ConversationTurn),
	}
}

func (s *MemoryStore) Append(_ context.Context, turn domain.ConversationTurn) error {
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.turns[turn.UserID], turn)
	if over := len(history) - s.maxTurns; over > 0 {
		history = append([]domain.ConversationTurn(nil), history[over:]...)
	}
	s.turns[turn.UserID] = history
	return nil
}

func (s *MemoryStore) History(_ context.Context, userID string) ([]domain.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.turns[userID]
	out := make([]domain.ConversationTurn, len(history))
	copy(out, history)
	return out, nil
}

func (s *MemoryStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, userID)
	return nil
}
