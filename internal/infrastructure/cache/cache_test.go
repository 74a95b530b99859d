package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

type embedderFake struct {
	calls int
	err   error
}

func (f *embedderFake) EmbedQuery(context.Context, string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.25, -1.5}, nil
}

type recorderFake struct {
	hits, misses int
}

func (r *recorderFake) RecordEmbeddingCacheLookup(hit bool) {
	if hit {
		r.hits++
		return
	}
	r.misses++
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(2, 0)
	c.Set(ctx, "a", []float32{1})
	c.Set(ctx, "b", []float32{2})
	if _, ok := c.Get(ctx, "a"); !ok {
		t.Fatalf("expected a to be cached")
	}
	c.Set(ctx, "c", []float32{3})

	if _, ok := c.Get(ctx, "b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	if _, ok := c.Get(ctx, "a"); !ok {
		t.Fatalf("expected a to survive")
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
}

func TestLRUExpiresEntries(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(4, time.Minute)
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set(ctx, "k", []float32{1})
	now = now.Add(59 * time.Second)
	if _, ok := c.Get(ctx, "k"); !ok {
		t.Fatalf("expected entry before ttl")
	}
	now = now.Add(2 * time.Second)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatalf("expected entry to expire")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry must be removed")
	}
}

func TestLRUReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(1, 0)
	v := []float32{1, 2}
	c.Set(ctx, "k", v)
	v[0] = 9
	got, _ := c.Get(ctx, "k")
	got[1] = 7
	again, _ := c.Get(ctx, "k")
	if again[0] != 1 || again[1] != 2 {
		t.Fatalf("cached vector was mutated: %v", again)
	}
}

func TestBadgerRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := OpenBadger("", 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	defer store.Close()

	if _, ok := store.Get(ctx, "missing"); ok {
		t.Fatalf("expected miss")
	}
	store.Set(ctx, "k", []float32{0.5, -0.25, 3})
	got, ok := store.Get(ctx, "k")
	if !ok || len(got) != 3 || got[0] != 0.5 || got[1] != -0.25 || got[2] != 3 {
		t.Fatalf("unexpected vector %v (ok=%v)", got, ok)
	}
}

func TestBadgerPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := OpenBadger(dir, time.Hour, logger)
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	store.Set(ctx, Key("m", "sınav"), []float32{1, 2})
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := OpenBadger(dir, time.Hour, logger)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()
	if got, ok := reopened.Get(ctx, Key("m", "sınav")); !ok || len(got) != 2 {
		t.Fatalf("expected persisted vector, got %v", got)
	}
}

func TestTieredBackfillsFasterTier(t *testing.T) {
	ctx := context.Background()
	l1, l2 := NewLRU(4, 0), NewLRU(4, 0)
	l2.Set(ctx, "k", []float32{4})

	tiers := Tiered{l1, l2}
	if _, ok := tiers.Get(ctx, "k"); !ok {
		t.Fatalf("expected hit from second tier")
	}
	if _, ok := l1.Get(ctx, "k"); !ok {
		t.Fatalf("expected first tier to be backfilled")
	}
}

func TestCachedEmbedderMemoizesPerModel(t *testing.T) {
	ctx := context.Background()
	inner := &embedderFake{}
	rec := &recorderFake{}
	store := NewLRU(8, 0)
	e := NewCachedEmbedder(inner, store, "nomic", rec)

	for i := 0; i < 3; i++ {
		if _, err := e.EmbedQuery(ctx, "devamsızlık"); err != nil {
			t.Fatalf("EmbedQuery() error = %v", err)
		}
	}
	if inner.calls != 1 || rec.hits != 2 || rec.misses != 1 {
		t.Fatalf("expected one upstream call, got calls=%d hits=%d misses=%d", inner.calls, rec.hits, rec.misses)
	}

	other := NewCachedEmbedder(inner, store, "bge", nil)
	if _, err := other.EmbedQuery(ctx, "devamsızlık"); err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("a different model must not share entries")
	}
}

func TestCachedEmbedderDoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	inner := &embedderFake{err: errors.New("down")}
	store := NewLRU(8, 0)
	e := NewCachedEmbedder(inner, store, "m", nil)

	if _, err := e.EmbedQuery(ctx, "q"); err == nil {
		t.Fatalf("expected error")
	}
	if store.Len() != 0 {
		t.Fatalf("failure must not be cached")
	}
}

func TestKeyIsStableAndScoped(t *testing.T) {
	if Key("m", "a") != Key("m", "a") || Key("m", "a") == Key("n", "a") {
		t.Fatalf("unexpected key behaviour")
	}
	if len(Key("m", "a")) != 32 {
		t.Fatalf("expected md5 hex key")
	}
}
