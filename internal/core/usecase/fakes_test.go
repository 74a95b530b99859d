package usecase

import (
	"context"
	"sync"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
	"github.com/kirillkom/regulation-assistant/internal/core/ports"
)

type embedderFake struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (f *embedderFake) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2}, nil
}

type vectorIndexFake struct {
	hits   []domain.VectorHit
	err    error
	limits []int
}

func (f *vectorIndexFake) Query(_ context.Context, _ []float32, limit int, _ domain.SearchFilter) ([]domain.VectorHit, error) {
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.hits) {
		return f.hits[:limit], nil
	}
	return f.hits, nil
}

type corpusFake struct {
	docs  []domain.CorpusDocument
	err   error
	calls int
}

func (f *corpusFake) All(context.Context) ([]domain.CorpusDocument, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

type completerFake struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
	opts     []ports.CompletionOptions
	panicMsg string
}

func (f *completerFake) Complete(_ context.Context, prompt string, opts ports.CompletionOptions) (string, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func doc(text, source string) domain.CorpusDocument {
	return domain.CorpusDocument{Text: text, Metadata: map[string]string{domain.MetadataSourceFile: source}}
}

func hit(text, source string, distance float64) domain.VectorHit {
	return domain.VectorHit{Text: text, Metadata: map[string]string{domain.MetadataSourceFile: source}, Distance: distance}
}
