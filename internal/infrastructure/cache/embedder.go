package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"

	"github.com/kirillkom/regulation-assistant/internal/core/ports"
)

// Key scopes a text to its embedding model.
func Key(model, text string) string {
	sum := md5.Sum([]byte(model + ":" + text))
	return hex.EncodeToString(sum[:])
}

// Tiered reads tiers in order and backfills the faster ones on a hit.
type Tiered []ports.EmbeddingCache

func (t Tiered) Get(ctx context.Context, key string) ([]float32, bool) {
	for i, tier := range t {
		if v, ok := tier.Get(ctx, key); ok {
			for j := 0; j < i; j++ {
				t[j].Set(ctx, key, v)
			}
			return v, true
		}
	}
	return nil, false
}

func (t Tiered) Set(ctx context.Context, key string, vector []float32) {
	for _, tier := range t {
		tier.Set(ctx, key, vector)
	}
}

// LookupRecorder observes cache effectiveness.
type LookupRecorder interface {
	RecordEmbeddingCacheLookup(hit bool)
}

// CachedEmbedder memoizes query embeddings.
type CachedEmbedder struct {
	inner    ports.Embedder
	cache    ports.EmbeddingCache
	model    string
	recorder LookupRecorder
}

func NewCachedEmbedder(inner ports.Embedder, cache ports.EmbeddingCache, model string, recorder LookupRecorder) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: cache, model: model, recorder: recorder}
}

func (e *CachedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	key := Key(e.model, text)
	if v, ok := e.cache.Get(ctx, key); ok {
		e.record(true)
		return v, nil
	}
	e.record(false)

	v, err := e.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Set(ctx, key, v)
	return v, nil
}

func (e *CachedEmbedder) record(hit bool) {
	if e.recorder != nil {
		e.recorder.RecordEmbeddingCacheLookup(hit)
	}
}
