package usecase

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
	"github.com/kirillkom/regulation-assistant/internal/core/ports"
	"github.com/kirillkom/regulation-assistant/internal/lexicon"
)

type RetrieverConfig struct {
	DefaultLimit        int
	MaxResults          int
	SemanticWeight      float64
	KeywordWeight       float64
	SimilarityThreshold float64
}

func DefaultRetrieverConfig() RetrieverConfig {
	return RetrieverConfig{
		DefaultLimit:        10,
		MaxResults:          20,
		SemanticWeight:      0.7,
		KeywordWeight:       0.3,
		SimilarityThreshold: 0.01,
	}
}

func (c RetrieverConfig) normalize() RetrieverConfig {
	def := DefaultRetrieverConfig()
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = def.DefaultLimit
	}
	if c.MaxResults <= 0 {
		c.MaxResults = def.MaxResults
	}
	if c.SemanticWeight < 0 || c.KeywordWeight < 0 || c.SemanticWeight+c.KeywordWeight == 0 {
		c.SemanticWeight = def.SemanticWeight
		c.KeywordWeight = def.KeywordWeight
	}
	if c.SimilarityThreshold < 0 {
		c.SimilarityThreshold = def.SimilarityThreshold
	}
	return c
}

// Retriever combines vector similarity and weighted keyword scoring.
// A failing collaborator degrades its search to an empty list.
type Retriever struct {
	analyzer *QueryAnalyzer
	embedder ports.Embedder
	index    ports.VectorIndex
	corpus   ports.KeywordCorpus
	lex      *lexicon.Lexicon
	cfg      RetrieverConfig
	logger   *slog.Logger
}

func NewRetriever(
	analyzer *QueryAnalyzer,
	embedder ports.Embedder,
	index ports.VectorIndex,
	corpus ports.KeywordCorpus,
	lex *lexicon.Lexicon,
	cfg RetrieverConfig,
	logger *slog.Logger,
) *Retriever {
	if lex == nil {
		lex = lexicon.Default()
	}
	if analyzer == nil {
		analyzer = NewQueryAnalyzer(lex)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		analyzer: analyzer,
		embedder: embedder,
		index:    index,
		corpus:   corpus,
		lex:      lex,
		cfg:      cfg.normalize(),
		logger:   logger,
	}
}

func (r *Retriever) Config() RetrieverConfig {
	return r.cfg
}

// AdvancedRetrieve analyzes text and runs RetrieveAnalyzed.
func (r *Retriever) AdvancedRetrieve(ctx context.Context, text string, k int) (domain.RetrievalResult, error) {
	return r.RetrieveAnalyzed(ctx, r.analyzer.Analyze(text), k)
}

// RetrieveAnalyzed runs a hybrid search for up to three expansion variants
// and keeps the best-scoring candidate per distinct text.
func (r *Retriever) RetrieveAnalyzed(ctx context.Context, q domain.Query, k int) (domain.RetrievalResult, error) {
	k = r.limit(k)
	result := domain.RetrievalResult{Query: q}
	variants := searchVariants(q)
	if len(variants) == 0 {
		return result, nil
	}

	docs := r.loadCorpus(ctx)
	lists := make([][]domain.RetrievalCandidate, 0, len(variants))
	for _, variant := range variants {
		lists = append(lists, r.hybrid(ctx, variant, k, r.cfg.SemanticWeight, r.cfg.KeywordWeight, docs))
	}
	if err := ctx.Err(); err != nil {
		return result, domain.WrapError(domain.ErrUpstream, "advanced retrieve", err)
	}

	result.Candidates = trimCandidates(mergeByText(lists...), k)
	return result, nil
}

// HybridSearch fuses semantic and keyword results gathered at 2k.
func (r *Retriever) HybridSearch(ctx context.Context, text string, k int, semanticWeight, keywordWeight float64) []domain.RetrievalCandidate {
	return r.hybrid(ctx, text, r.limit(k), semanticWeight, keywordWeight, r.loadCorpus(ctx))
}

func (r *Retriever) hybrid(
	ctx context.Context,
	text string,
	k int,
	semanticWeight, keywordWeight float64,
	docs []domain.CorpusDocument,
) []domain.RetrievalCandidate {
	semantic := r.SemanticSearch(ctx, text, 2*k)
	keyword := r.scoreKeywords(docs, text, 2*k)
	return trimCandidates(fuseWeighted(semantic, keyword, semanticWeight, keywordWeight), k)
}

// SemanticSearch embeds text and converts neighbour distances to
// similarities in [0,1].
func (r *Retriever) SemanticSearch(ctx context.Context, text string, k int) []domain.RetrievalCandidate {
	if r.embedder == nil || r.index == nil || strings.TrimSpace(text) == "" {
		return nil
	}
	k = r.limit(k)
	if k > r.cfg.MaxResults {
		k = r.cfg.MaxResults
	}

	vector, err := r.embedder.EmbedQuery(ctx, text)
	if err != nil {
		r.logger.Warn("retrieval_degraded", "search", "semantic", "stage", "embed", "error", err)
		return nil
	}
	hits, err := r.index.Query(ctx, vector, k, domain.SearchFilter{})
	if err != nil {
		r.logger.Warn("retrieval_degraded", "search", "semantic", "stage", "vector_query", "error", err)
		return nil
	}

	out := make([]domain.RetrievalCandidate, 0, len(hits))
	for _, hit := range hits {
		sim := clamp01(1 - hit.Distance)
		out = append(out, domain.RetrievalCandidate{
			Text:          hit.Text,
			Source:        domain.SourceOf(hit.Metadata),
			Metadata:      hit.Metadata,
			SemanticScore: sim,
			CombinedScore: sim,
			Origin:        domain.OriginSemantic,
		})
	}
	return out
}

// KeywordSearch scores every corpus passage against the query keywords.
func (r *Retriever) KeywordSearch(ctx context.Context, text string, k int) []domain.RetrievalCandidate {
	return r.scoreKeywords(r.loadCorpus(ctx), text, r.limit(k))
}

func (r *Retriever) loadCorpus(ctx context.Context) []domain.CorpusDocument {
	if r.corpus == nil {
		return nil
	}
	docs, err := r.corpus.All(ctx)
	if err != nil {
		r.logger.Warn("retrieval_degraded", "search", "keyword", "stage", "corpus_scan", "error", err)
		return nil
	}
	return docs
}

func (r *Retriever) scoreKeywords(docs []domain.CorpusDocument, text string, k int) []domain.RetrievalCandidate {
	if len(docs) == 0 {
		return nil
	}
	keywords := r.analyzer.ExtractKeywords(r.analyzer.Clean(text))
	if len(keywords) == 0 {
		return nil
	}

	out := make([]domain.RetrievalCandidate, 0, len(docs))
	for _, doc := range docs {
		if strings.TrimSpace(doc.Text) == "" {
			continue
		}
		score := r.keywordScore(doc.Text, keywords)
		if score <= 0 {
			continue
		}
		out = append(out, domain.RetrievalCandidate{
			Text:          doc.Text,
			Source:        domain.SourceOf(doc.Metadata),
			Metadata:      doc.Metadata,
			KeywordScore:  score,
			CombinedScore: score,
			Origin:        domain.OriginKeyword,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].KeywordScore > out[j].KeywordScore
	})
	return trimCandidates(out, k)
}

// keywordScore sums whole-word occurrence counts times keyword weight and
// normalizes by the square root of the passage word count.
func (r *Retriever) keywordScore(text string, keywords []string) float64 {
	counts := make(map[string]int, 32)
	for _, token := range splitWordsLower(text) {
		counts[token]++
	}

	score := 0.0
	for _, kw := range keywords {
		if n := counts[kw]; n > 0 {
			score += float64(n) * r.lex.Weight(kw)
		}
	}

	words := len(strings.Fields(text))
	if words > 0 {
		score /= math.Sqrt(float64(words))
	}
	return score
}

// FilterBySimilarityThreshold keeps candidates whose combined score
// reaches the configured minimum.
func (r *Retriever) FilterBySimilarityThreshold(candidates []domain.RetrievalCandidate) []domain.RetrievalCandidate {
	out := make([]domain.RetrievalCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.CombinedScore >= r.cfg.SimilarityThreshold {
			out = append(out, c)
		}
	}
	return out
}

func (r *Retriever) limit(k int) int {
	if k <= 0 {
		return r.cfg.DefaultLimit
	}
	return k
}
