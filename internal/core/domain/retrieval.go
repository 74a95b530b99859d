package domain

// MetadataSourceFile is the payload key carrying the originating file name.
const MetadataSourceFile = "source_file"

// MetadataChunkIndex is the payload key carrying the chunk position within its file.
const MetadataChunkIndex = "chunk_index"

type Origin string

const (
	OriginSemantic Origin = "semantic"
	OriginKeyword  Origin = "keyword"
	OriginHybrid   Origin = "hybrid"
)

// VectorHit is one nearest neighbour returned by the vector index.
// Distance is cosine-derived and lies in [0,2].
type VectorHit struct {
	Text     string
	Metadata map[string]string
	Distance float64
}

// CorpusDocument is one passage from the keyword corpus.
type CorpusDocument struct {
	Text     string
	Metadata map[string]string
}

type SearchFilter struct {
	SourceFile string
}

type RetrievalCandidate struct {
	Text          string            `json:"text"`
	Source        string            `json:"source"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	SemanticScore float64           `json:"semantic_score"`
	KeywordScore  float64           `json:"keyword_score"`
	CombinedScore float64           `json:"combined_score"`
	Origin        Origin            `json:"origin"`
}

// RetrievalResult is the output of an advanced retrieval run.
type RetrievalResult struct {
	Candidates []RetrievalCandidate
	Query      Query
}

func SourceOf(metadata map[string]string) string {
	if metadata == nil {
		return ""
	}
	return metadata[MetadataSourceFile]
}
