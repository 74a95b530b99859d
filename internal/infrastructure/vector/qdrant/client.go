package qdrant

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
	"github.com/kirillkom/regulation-assistant/internal/infrastructure/resilience"
)

const (
	payloadText       = "text"
	defaultScrollPage = 256
)

type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client
	executor   *resilience.Executor
	scrollPage int

	ensureMu          sync.Mutex
	ensuredCollection bool
	ensuredVectorSize int
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithExecutor(executor *resilience.Executor) Option {
	return func(c *Client) {
		c.executor = executor
	}
}

// WithScrollPage sets how many points one scroll request fetches.
func WithScrollPage(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.scrollPage = n
		}
	}
}

func New(baseURL, collection string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		scrollPage: defaultScrollPage,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query returns the nearest passages. Qdrant reports cosine similarity, which
// is turned into a distance in [0,2]. A missing collection yields no hits.
func (c *Client) Query(
	ctx context.Context,
	vector []float32,
	limit int,
	filter domain.SearchFilter,
) ([]domain.VectorHit, error) {
	if len(vector) == 0 || limit <= 0 {
		return nil, nil
	}

	reqBody := searchRequest{
		Vector:      vector,
		Limit:       limit,
		WithPayload: true,
		Filter:      sourceFilter(filter),
	}
	var resp searchResponse
	found, err := c.call(ctx, http.MethodPost, c.collectionPath("/points/search"), reqBody, &resp, "search")
	if err != nil || !found {
		return nil, err
	}

	out := make([]domain.VectorHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		text, metadata := splitPayload(r.Payload)
		if text == "" {
			continue
		}
		out = append(out, domain.VectorHit{
			Text:     text,
			Metadata: metadata,
			Distance: math.Max(0, math.Min(2, 1-r.Score)),
		})
	}
	return out, nil
}

// All scrolls through every stored passage.
func (c *Client) All(ctx context.Context) ([]domain.CorpusDocument, error) {
	var (
		out    []domain.CorpusDocument
		offset any
	)
	for {
		reqBody := scrollRequest{
			Limit:       c.scrollPage,
			Offset:      offset,
			WithPayload: true,
			WithVector:  false,
		}
		var resp scrollResponse
		found, err := c.call(ctx, http.MethodPost, c.collectionPath("/points/scroll"), reqBody, &resp, "scroll")
		if err != nil {
			return nil, err
		}
		if !found {
			return out, nil
		}
		for _, p := range resp.Result.Points {
			text, metadata := splitPayload(p.Payload)
			if text == "" {
				continue
			}
			out = append(out, domain.CorpusDocument{Text: text, Metadata: metadata})
		}
		if resp.Result.NextPageOffset == nil || len(resp.Result.Points) == 0 {
			return out, nil
		}
		offset = resp.Result.NextPageOffset
	}
}

// Upsert stores passages with ids derived from source file and chunk index,
// so seeding the same document twice overwrites instead of duplicating.
func (c *Client) Upsert(ctx context.Context, docs []domain.CorpusDocument, vectors [][]float32) error {
	if len(docs) == 0 {
		return nil
	}
	if len(docs) != len(vectors) {
		return fmt.Errorf("passages/vectors mismatch: %d != %d", len(docs), len(vectors))
	}
	if err := c.ensureCollection(ctx, len(vectors[0])); err != nil {
		return err
	}

	points := make([]point, 0, len(docs))
	for i, doc := range docs {
		payload := make(map[string]any, len(doc.Metadata)+1)
		for k, v := range doc.Metadata {
			payload[k] = v
		}
		if raw, ok := doc.Metadata[domain.MetadataChunkIndex]; ok {
			if n, err := strconv.Atoi(raw); err == nil {
				payload[domain.MetadataChunkIndex] = n
			}
		}
		payload[payloadText] = doc.Text
		points = append(points, point{
			ID:      pointID(doc),
			Vector:  vectors[i],
			Payload: payload,
		})
	}

	found, err := c.call(ctx, http.MethodPut, c.collectionPath("/points?wait=true"), upsertRequest{Points: points}, nil, "upsert")
	if err != nil {
		return err
	}
	if !found {
		return domain.WrapError(domain.ErrUpstream, "qdrant upsert", fmt.Errorf("collection %q not found", c.collection))
	}
	return nil
}

func (c *Client) ensureCollection(ctx context.Context, vectorSize int) error {
	c.ensureMu.Lock()
	if c.ensuredCollection && c.ensuredVectorSize == vectorSize {
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	reqBody := createCollectionRequest{}
	reqBody.Vectors.Size = vectorSize
	reqBody.Vectors.Distance = "Cosine"

	err := c.send(ctx, http.MethodPut, c.collectionPath(""), reqBody, nil, "ensure_collection")
	if err != nil {
		statusErr, ok := asStatusError(err)
		// 409 when the collection already exists.
		if !ok || statusErr.StatusCode != http.StatusConflict {
			return resilience.WrapUpstream("qdrant ensure_collection", err, resilience.ClassifyHTTP)
		}
	}

	c.ensureMu.Lock()
	defer c.ensureMu.Unlock()
	c.ensuredCollection = true
	c.ensuredVectorSize = vectorSize
	return nil
}

func (c *Client) collectionPath(suffix string) string {
	return "/collections/" + c.collection + suffix
}

func sourceFilter(filter domain.SearchFilter) *searchFilter {
	source := strings.TrimSpace(filter.SourceFile)
	if source == "" {
		return nil
	}
	return &searchFilter{Must: []fieldCondition{{
		Key:   domain.MetadataSourceFile,
		Match: matchValue{Value: source},
	}}}
}

func pointID(doc domain.CorpusDocument) string {
	source := doc.Metadata[domain.MetadataSourceFile]
	chunk, ok := doc.Metadata[domain.MetadataChunkIndex]
	if source == "" || !ok {
		return uuid.NewString()
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("passage:"+source+"#"+chunk)).String()
}

// splitPayload separates the passage text from the remaining payload,
// rendering every other value as a string.
func splitPayload(payload map[string]any) (string, map[string]string) {
	metadata := make(map[string]string, len(payload))
	var text string
	for k, v := range payload {
		s := payloadString(v)
		if k == payloadText {
			text = s
			continue
		}
		metadata[k] = s
	}
	return text, metadata
}

func payloadString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
