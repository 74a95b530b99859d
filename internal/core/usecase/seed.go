package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
	"github.com/kirillkom/regulation-assistant/internal/core/ports"
)

const defaultSeedBatchSize = 32

// SeedUseCase splits plain-text documents into passages, embeds them and
// writes them to the vector index used by retrieval.
type SeedUseCase struct {
	splitter  ports.PassageSplitter
	embedder  ports.BatchEmbedder
	indexer   ports.PassageIndexer
	batchSize int
}

func NewSeedUseCase(
	splitter ports.PassageSplitter,
	embedder ports.BatchEmbedder,
	indexer ports.PassageIndexer,
	batchSize int,
) *SeedUseCase {
	if batchSize <= 0 {
		batchSize = defaultSeedBatchSize
	}
	return &SeedUseCase{
		splitter:  splitter,
		embedder:  embedder,
		indexer:   indexer,
		batchSize: batchSize,
	}
}

// SeedDocument indexes text under the base name of sourceFile and returns
// the number of passages written.
func (uc *SeedUseCase) SeedDocument(ctx context.Context, sourceFile, text string) (int, error) {
	source := filepath.Base(strings.TrimSpace(sourceFile))
	if source == "" || source == "." {
		return 0, domain.WrapError(domain.ErrInvalidInput, "seed document", errors.New("source file name is required"))
	}

	passages := uc.splitter.Split(text)
	if len(passages) == 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "seed document", fmt.Errorf("%s produced zero passages", source))
	}

	written := 0
	for start := 0; start < len(passages); start += uc.batchSize {
		end := min(start+uc.batchSize, len(passages))
		docs := make([]domain.CorpusDocument, 0, end-start)
		for i := start; i < end; i++ {
			docs = append(docs, domain.CorpusDocument{
				Text: passages[i],
				Metadata: map[string]string{
					domain.MetadataSourceFile: source,
					domain.MetadataChunkIndex: strconv.Itoa(i),
				},
			})
		}

		vectors, err := uc.embed(ctx, passages[start:end])
		if err != nil {
			return written, err
		}
		if err := uc.indexer.Upsert(ctx, docs, vectors); err != nil {
			return written, fmt.Errorf("index passages: %w", err)
		}
		written += len(docs)
	}
	return written, nil
}

func (uc *SeedUseCase) embed(ctx context.Context, passages []string) ([][]float32, error) {
	vectors, err := uc.embedder.Embed(ctx, passages)
	if err != nil {
		return nil, fmt.Errorf("embed passages: %w", err)
	}
	if len(vectors) != len(passages) {
		return nil, domain.WrapError(
			domain.ErrMalformedResponse,
			"embed passages",
			fmt.Errorf("vectors/passages mismatch: %d/%d", len(vectors), len(passages)),
		)
	}
	return vectors, nil
}
