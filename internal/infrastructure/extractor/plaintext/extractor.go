package plaintext

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
)

// Source opens stored documents by key.
type Source interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

type Extractor struct {
	source Source
}

func NewExtractor(source Source) *Extractor {
	return &Extractor{source: source}
}

// Extract returns the trimmed UTF-8 text of a document. A leading byte
// order mark is dropped and Windows line endings are normalized.
func (e *Extractor) Extract(ctx context.Context, key string) (string, error) {
	reader, err := e.source.Open(ctx, key)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}

	if !utf8.Valid(raw) {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", fmt.Errorf("%s is not UTF-8 text", key))
	}

	text := strings.TrimPrefix(string(raw), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSpace(text), nil
}
