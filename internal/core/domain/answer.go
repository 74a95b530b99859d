package domain

type QualityLevel string

const (
	QualityExcellent QualityLevel = "Excellent"
	QualityGood      QualityLevel = "Good"
	QualityMedium    QualityLevel = "Medium"
	QualityWeak      QualityLevel = "Weak"
	QualityVeryWeak  QualityLevel = "VeryWeak"

	QualityNoInformation QualityLevel = "NoInformation"
	QualityLowConfidence QualityLevel = "LowConfidence"
	QualityError         QualityLevel = "Error"
	QualityAutoReply     QualityLevel = "AutoReply"
)

// LevelForScore discretizes an overall evaluation score.
func LevelForScore(score float64) QualityLevel {
	switch {
	case score >= 0.8:
		return QualityExcellent
	case score >= 0.6:
		return QualityGood
	case score >= 0.4:
		return QualityMedium
	case score >= 0.2:
		return QualityWeak
	default:
		return QualityVeryWeak
	}
}

// Outcome tags which branch of the pipeline produced an Answer.
type Outcome string

const (
	OutcomeAnswered      Outcome = "answered"
	OutcomeNoResults     Outcome = "no_results"
	OutcomeLowSimilarity Outcome = "low_similarity"
	OutcomeError         Outcome = "error"
)

type ContextEntry struct {
	Index      int     `json:"index"`
	Source     string  `json:"source"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
	ChunkIndex int     `json:"chunk_index"`
}

// ContextBundle is the prompt-ready view of the retrieved candidates.
type ContextBundle struct {
	Entries   []ContextEntry
	Sources   []string
	Formatted string
	Documents []string
}

func (b ContextBundle) IsEmpty() bool {
	return len(b.Entries) == 0
}

type LengthCheck struct {
	WordCount int  `json:"word_count"`
	CharCount int  `json:"char_count"`
	TooShort  bool `json:"too_short"`
	TooLong   bool `json:"too_long"`
	Optimal   bool `json:"optimal_length"`
}

type LanguageQuality struct {
	Score            float64  `json:"score"`
	Issues           []string `json:"issues"`
	UncertaintyCount int      `json:"uncertainty_count"`
}

type FactualConsistency struct {
	Score               float64  `json:"score"`
	Issues              []string `json:"issues"`
	InconsistentNumbers []string `json:"inconsistent_numbers,omitempty"`
}

type Evaluation struct {
	Relevance     float64            `json:"relevance_score"`
	Completeness  float64            `json:"completeness_score"`
	Accuracy      float64            `json:"accuracy_score"`
	Clarity       float64            `json:"clarity_score"`
	SourceSupport float64            `json:"source_support_score"`
	Length        LengthCheck        `json:"length_check"`
	Language      LanguageQuality    `json:"language_quality"`
	Factual       FactualConsistency `json:"factual_consistency"`
	Overall       float64            `json:"overall_score"`
	Level         QualityLevel       `json:"quality_level"`
	Suggestions   []string           `json:"improvement_suggestions"`
}

type QueryAnalysis struct {
	Category Category `json:"category"`
	Keywords []string `json:"keywords"`
	Expanded []string `json:"expanded"`
	Entities Entities `json:"entities"`
}

func AnalysisOf(q Query) *QueryAnalysis {
	return &QueryAnalysis{
		Category: q.Category,
		Keywords: q.Keywords,
		Expanded: q.Expanded,
		Entities: q.Entities,
	}
}

type RetrievalInfo struct {
	TotalFound     int     `json:"total_found"`
	AfterFiltering int     `json:"after_filtering"`
	BestScore      float64 `json:"best_score"`
}

// Answer is the well-formed record returned for every processed question.
type Answer struct {
	Response      string         `json:"response"`
	Sources       []string       `json:"sources"`
	Confidence    float64        `json:"confidence"`
	QualityLevel  QualityLevel   `json:"quality_level"`
	Outcome       Outcome        `json:"outcome"`
	QueryAnalysis *QueryAnalysis `json:"query_analysis,omitempty"`
	RetrievalInfo RetrievalInfo  `json:"retrieval_info"`
	Evaluation    *Evaluation    `json:"evaluation,omitempty"`
	Error         string         `json:"error,omitempty"`
}
