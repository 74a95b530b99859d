package domain

// Category is the coarse question type used to pick prompt instructions
// and completeness checks.
type Category string

const (
	CategoryProcedure    Category = "procedure"
	CategoryTemporal     Category = "temporal"
	CategoryLocation     Category = "location"
	CategoryQuantitative Category = "quantitative"
	CategoryDefinition   Category = "definition"
	CategoryExplanation  Category = "explanation"
	CategoryGeneral      Category = "general"
)

type Entities struct {
	Numbers  []string `json:"numbers"`
	Dates    []string `json:"dates"`
	Keywords []string `json:"keywords"`
}

// Query is the analyzed form of one user question.
type Query struct {
	Original   string   `json:"original"`
	Normalized string   `json:"cleaned"`
	Category   Category `json:"category"`
	Keywords   []string `json:"keywords"`
	Expanded   []string `json:"expanded"`
	Entities   Entities `json:"entities"`
}

func (q Query) IsEmpty() bool {
	return q.Normalized == ""
}
