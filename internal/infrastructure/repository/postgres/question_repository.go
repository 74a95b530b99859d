package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
)

type QuestionRepository struct {
	db *sql.DB
}

func NewQuestionRepository(db *sql.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// SaveQuestion ignores records it has already stored, so redelivered events
// are harmless.
func (r *QuestionRepository) SaveQuestion(ctx context.Context, record domain.QuestionRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO question_records (id, user_id, question, answer, source_file, topic, confidence, outcome, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO NOTHING
`, record.ID, record.UserID, record.Question, record.Answer, record.SourceFile, record.Topic, record.Confidence, string(record.Outcome), record.CreatedAt)
	if err != nil {
		return fmt.Errorf("save question: %w", err)
	}
	return nil
}

func (r *QuestionRepository) TopTopics(ctx context.Context, limit int) ([]domain.TopicCount, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT topic, COUNT(*)
FROM question_records
WHERE topic <> ''
GROUP BY topic
ORDER BY COUNT(*) DESC, topic ASC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("top topics: %w", err)
	}
	defer rows.Close()

	out := make([]domain.TopicCount, 0, limit)
	for rows.Next() {
		var tc domain.TopicCount
		if err := rows.Scan(&tc.Topic, &tc.Count); err != nil {
			return nil, fmt.Errorf("scan topic count: %w", err)
		}
		out = append(out, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topic counts: %w", err)
	}
	return out, nil
}

func (r *QuestionRepository) TopSources(ctx context.Context, limit int) ([]domain.SourceCount, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT source_file, COUNT(*)
FROM question_records
WHERE source_file <> ''
GROUP BY source_file
ORDER BY COUNT(*) DESC, source_file ASC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("top sources: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SourceCount, 0, limit)
	for rows.Next() {
		var sc domain.SourceCount
		if err := rows.Scan(&sc.SourceFile, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan source count: %w", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source counts: %w", err)
	}
	return out, nil
}
