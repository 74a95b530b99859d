package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
	"github.com/kirillkom/regulation-assistant/internal/core/ports"
)

type capture struct {
	mu      sync.Mutex
	payload map[string]any
}

func (c *capture) get(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.payload[key]
}

func newFakeServer(t *testing.T) (*httptest.Server, *capture) {
	t.Helper()
	captured := &capture{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		captured.mu.Lock()
		captured.payload = payload
		captured.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"chat",
				"choices":[{"index":0,"message":{"role":"assistant","content":" Devamsızlık sınırı yüzde otuzdur. "},"finish_reason":"stop"}],
				"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`))
		case strings.HasSuffix(r.URL.Path, "/embeddings"):
			_, _ = w.Write([]byte(`{"object":"list","model":"embed",
				"data":[{"object":"embedding","index":0,"embedding":[0.1,0.2,0.3]}],
				"usage":{"prompt_tokens":1,"total_tokens":1}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func TestCompleterUsesChatEndpoint(t *testing.T) {
	server, captured := newFakeServer(t)
	completer, err := NewCompleter(Config{BaseURL: server.URL, ChatModel: "chat"}, nil)
	if err != nil {
		t.Fatalf("NewCompleter() error = %v", err)
	}

	got, err := completer.Complete(context.Background(), "Devamsızlık sınırı nedir?", ports.CompletionOptions{Temperature: 0.1, MaxTokens: 64})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "Devamsızlık sınırı yüzde otuzdur." {
		t.Fatalf("unexpected completion %q", got)
	}
	if captured.get("model") != "chat" {
		t.Fatalf("unexpected model %v", captured.get("model"))
	}
}

func TestEmbedderReturnsVectors(t *testing.T) {
	server, _ := newFakeServer(t)
	embedder, err := NewEmbedder(Config{BaseURL: server.URL, EmbeddingModel: "embed"}, nil)
	if err != nil {
		t.Fatalf("NewEmbedder() error = %v", err)
	}

	vec, err := embedder.EmbedQuery(context.Background(), "sınav\nkuralları")
	if err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}
	if len(vec) != 3 || embedder.Model() != "embed" {
		t.Fatalf("unexpected vector %v for model %q", vec, embedder.Model())
	}
}

func TestEmbedQueryRejectsEmptyVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"embed",
			"data":[{"object":"embedding","index":0,"embedding":[]}],
			"usage":{"prompt_tokens":1,"total_tokens":1}}`))
	}))
	defer server.Close()

	embedder, err := NewEmbedder(Config{BaseURL: server.URL, EmbeddingModel: "embed"}, nil)
	if err != nil {
		t.Fatalf("NewEmbedder() error = %v", err)
	}
	_, err = embedder.EmbedQuery(context.Background(), "sınav")
	if !domain.IsKind(err, domain.ErrMalformedResponse) || !strings.Contains(err.Error(), "empty embedding") {
		t.Fatalf("expected empty embedding error, got %v", err)
	}
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		err       error
		retryable bool
		record    bool
	}{
		{context.Canceled, false, false},
		{errors.New("API returned unexpected status code: 503: overloaded"), true, true},
		{errors.New("API returned unexpected status code: 429: slow down"), true, true},
		{errors.New("API returned unexpected status code: 401: bad key"), false, true},
	}
	for _, tc := range cases {
		got := classifyError(tc.err)
		if got.Retryable != tc.retryable || got.RecordFailure != tc.record {
			t.Fatalf("classifyError(%v) = %+v", tc.err, got)
		}
	}
}
