package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
)

func TestMemoryStoreKeepsLastTurns(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(3)
	for i := 0; i < 5; i++ {
		if err := s.Append(ctx, domain.ConversationTurn{UserID: "u1", Question: fmt.Sprintf("q%d", i)}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, _ := s.History(ctx, "u1")
	if len(got) != 3 || got[0].Question != "q2" || got[2].Question != "q4" {
		t.Fatalf("unexpected history %+v", got)
	}
	if got[0].CreatedAt.IsZero() {
		t.Fatalf("expected timestamp to be filled")
	}
}

func TestMemoryStoreSeparatesUsersAndClears(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)
	_ = s.Append(ctx, domain.ConversationTurn{UserID: "u1", Question: "a"})
	_ = s.Append(ctx, domain.ConversationTurn{UserID: "u2", Question: "b"})

	if err := s.Clear(ctx, "u1"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got, _ := s.History(ctx, "u1"); len(got) != 0 {
		t.Fatalf("expected cleared history, got %+v", got)
	}
	if got, _ := s.History(ctx, "u2"); len(got) != 1 {
		t.Fatalf("other users must be untouched, got %+v", got)
	}
}

func TestMemoryStoreConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(domain.MaxConversationTurns)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Append(ctx, domain.ConversationTurn{UserID: "u1", Question: "q"})
		}()
	}
	wg.Wait()
	if got, _ := s.History(ctx, "u1"); len(got) != domain.MaxConversationTurns {
		t.Fatalf("expected %d turns, got %d", domain.MaxConversationTurns, len(got))
	}
}
