package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
)

type splitterFake struct{}

func (splitterFake) Split(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool { return r == '\n' })
}

type batchEmbedderFake struct {
	embedderFake
	batches [][]string
	short   bool
}

func (f *batchEmbedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.batches = append(f.batches, texts)
	if f.err != nil {
		return nil, f.err
	}
	n := len(texts)
	if f.short {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{float32(i)}
	}
	return out, nil
}

type indexerFake struct {
	docs []domain.CorpusDocument
	err  error
}

func (f *indexerFake) Upsert(_ context.Context, docs []domain.CorpusDocument, _ [][]float32) error {
	if f.err != nil {
		return f.err
	}
	f.docs = append(f.docs, docs...)
	return nil
}

func TestSeedDocumentBatchesAndTagsPassages(t *testing.T) {
	embedder := &batchEmbedderFake{}
	indexer := &indexerFake{}
	uc := NewSeedUseCase(splitterFake{}, embedder, indexer, 2)

	n, err := uc.SeedDocument(context.Background(), "/data/yonetmelik.txt", "bir\niki\nüç")
	if err != nil {
		t.Fatalf("SeedDocument() error = %v", err)
	}
	if n != 3 || len(embedder.batches) != 2 {
		t.Fatalf("expected 3 passages in 2 batches, got %d in %d", n, len(embedder.batches))
	}
	last := indexer.docs[2]
	if last.Metadata[domain.MetadataSourceFile] != "yonetmelik.txt" || last.Metadata[domain.MetadataChunkIndex] != "2" {
		t.Fatalf("unexpected metadata %+v", last.Metadata)
	}
}

func TestSeedDocumentRejectsEmptyInput(t *testing.T) {
	uc := NewSeedUseCase(splitterFake{}, &batchEmbedderFake{}, &indexerFake{}, 0)
	if _, err := uc.SeedDocument(context.Background(), "a.txt", ""); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty text, got %v", err)
	}
	if _, err := uc.SeedDocument(context.Background(), " ", "metin"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty name, got %v", err)
	}
}

func TestSeedDocumentDetectsVectorMismatch(t *testing.T) {
	uc := NewSeedUseCase(splitterFake{}, &batchEmbedderFake{short: true}, &indexerFake{}, 0)
	_, err := uc.SeedDocument(context.Background(), "a.txt", "bir\niki")
	if !domain.IsKind(err, domain.ErrMalformedResponse) {
		t.Fatalf("expected malformed response, got %v", err)
	}
}

func TestSeedDocumentStopsOnIndexError(t *testing.T) {
	indexErr := errors.New("qdrant unavailable")
	uc := NewSeedUseCase(splitterFake{}, &batchEmbedderFake{}, &indexerFake{err: indexErr}, 0)
	n, err := uc.SeedDocument(context.Background(), "a.txt", "bir")
	if !errors.Is(err, indexErr) || n != 0 {
		t.Fatalf("expected index error and zero written, got %d %v", n, err)
	}
}
