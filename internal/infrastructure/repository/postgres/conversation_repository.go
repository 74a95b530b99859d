package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
)

// ConversationRepository keeps the last MaxConversationTurns turns per user.
type ConversationRepository struct {
	db       *sql.DB
	maxTurns int
}

func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{db: db, maxTurns: domain.MaxConversationTurns}
}

func (r *ConversationRepository) Append(ctx context.Context, turn domain.ConversationTurn) error {
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append turn: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO conversation_turns (user_id, question, answer, created_at)
VALUES ($1, $2, $3, $4)
`, turn.UserID, turn.Question, turn.Answer, turn.CreatedAt); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
DELETE FROM conversation_turns
WHERE user_id = $1 AND id NOT IN (
	SELECT id FROM conversation_turns
	WHERE user_id = $1
	ORDER BY created_at DESC, id DESC
	LIMIT $2
)
`, turn.UserID, r.maxTurns); err != nil {
		return fmt.Errorf("trim turns: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append turn: %w", err)
	}
	return nil
}

func (r *ConversationRepository) History(ctx context.Context, userID string) ([]domain.ConversationTurn, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT user_id, question, answer, created_at
FROM conversation_turns
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`, userID, r.maxTurns)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ConversationTurn, 0, r.maxTurns)
	for rows.Next() {
		var turn domain.ConversationTurn
		if err := rows.Scan(&turn.UserID, &turn.Question, &turn.Answer, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		out = append(out, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}

	// Returned in descending order from SQL; reverse to keep chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *ConversationRepository) Clear(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM conversation_turns WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear turns: %w", err)
	}
	return nil
}
