package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
	"github.com/kirillkom/regulation-assistant/internal/lexicon"
)

type questionRepoFake struct {
	saved  []domain.QuestionRecord
	limits []int
	err    error
}

func (f *questionRepoFake) SaveQuestion(_ context.Context, record domain.QuestionRecord) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, record)
	return nil
}

func (f *questionRepoFake) TopTopics(_ context.Context, limit int) ([]domain.TopicCount, error) {
	f.limits = append(f.limits, limit)
	return []domain.TopicCount{{Topic: "eduroam", Count: 3}}, f.err
}

func (f *questionRepoFake) TopSources(_ context.Context, limit int) ([]domain.SourceCount, error) {
	f.limits = append(f.limits, limit)
	return []domain.SourceCount{{SourceFile: "eduroam.pdf", Count: 3}}, f.err
}

func TestAnalyticsRecordFillsDefaults(t *testing.T) {
	repo := &questionRepoFake{}
	uc := NewAnalyticsUseCase(repo, lexicon.Default())

	err := uc.Record(context.Background(), domain.QuestionRecord{Question: "  Eduroam şifresi nasıl alınır? "})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	got := repo.saved[0]
	if got.Topic != "eduroam" || got.UserID != anonymousUser || got.ID == "" || got.CreatedAt.IsZero() {
		t.Fatalf("unexpected saved record %+v", got)
	}
	if got.Question != "Eduroam şifresi nasıl alınır?" {
		t.Fatalf("expected trimmed question, got %q", got.Question)
	}
}

func TestAnalyticsRecordKeepsExplicitTopic(t *testing.T) {
	repo := &questionRepoFake{}
	uc := NewAnalyticsUseCase(repo, nil)

	if err := uc.Record(context.Background(), domain.QuestionRecord{Question: "yurt", Topic: "konaklama_ozel"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if repo.saved[0].Topic != "konaklama_ozel" {
		t.Fatalf("expected explicit topic kept, got %q", repo.saved[0].Topic)
	}
}

func TestAnalyticsRecordValidatesAndWrapsErrors(t *testing.T) {
	uc := NewAnalyticsUseCase(&questionRepoFake{}, nil)
	if err := uc.Record(context.Background(), domain.QuestionRecord{}); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	storeErr := errors.New("insert failed")
	uc = NewAnalyticsUseCase(&questionRepoFake{err: storeErr}, nil)
	if err := uc.Record(context.Background(), domain.QuestionRecord{Question: "burs"}); !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestAnalyticsStatsLimits(t *testing.T) {
	repo := &questionRepoFake{}
	uc := NewAnalyticsUseCase(repo, nil)

	if _, err := uc.TopTopics(context.Background(), 0); err != nil {
		t.Fatalf("TopTopics() error = %v", err)
	}
	if _, err := uc.TopSources(context.Background(), 1000); err != nil {
		t.Fatalf("TopSources() error = %v", err)
	}
	if repo.limits[0] != defaultStatsLimit || repo.limits[1] != maxStatsLimit {
		t.Fatalf("unexpected limits %v", repo.limits)
	}
}
