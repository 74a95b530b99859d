package usecase

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
	"github.com/kirillkom/regulation-assistant/internal/lexicon"
)

const (
	maxQueryKeywords  = 5
	minKeywordRunes   = 3
	maxSearchVariants = 3
)

var (
	numberPattern = regexp.MustCompile(`\d+`)
	datePattern   = regexp.MustCompile(`\d{1,2}[./]\d{1,2}[./]\d{2,4}`)
)

// QueryAnalyzer normalizes, classifies and expands raw questions.
// It is a pure function of its input and the lexicon tables.
type QueryAnalyzer struct {
	lex       *lexicon.Lexicon
	stopWords map[string]struct{}
}

func NewQueryAnalyzer(lex *lexicon.Lexicon) *QueryAnalyzer {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &QueryAnalyzer{
		lex:       lex,
		stopWords: lex.StopWordSet(),
	}
}

func (a *QueryAnalyzer) Analyze(text string) domain.Query {
	normalized := a.Clean(text)
	return domain.Query{
		Original:   text,
		Normalized: normalized,
		Category:   a.Categorize(normalized),
		Keywords:   a.ExtractKeywords(normalized),
		Expanded:   a.Expand(normalized),
		Entities:   a.ExtractEntities(text),
	}
}

// Clean lowercases text, replaces punctuation with spaces, collapses
// whitespace and drops stop words. Clean(Clean(x)) == Clean(x).
func (a *QueryAnalyzer) Clean(text string) string {
	lowered := lexicon.Fold(strings.TrimSpace(text))
	stripped := strings.Map(func(r rune) rune {
		if isWordRune(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, lowered)

	words := strings.Fields(stripped)
	kept := words[:0]
	for _, w := range words {
		if _, stop := a.stopWords[w]; stop {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// Categorize returns the category of the first rule with a pattern
// contained in the lowercased text.
func (a *QueryAnalyzer) Categorize(text string) domain.Category {
	lowered := lexicon.Fold(text)
	for _, rule := range a.lex.Categories {
		if containsAny(lowered, rule.Patterns) {
			return rule.Category
		}
	}
	return domain.CategoryGeneral
}

// Expand returns text followed by one variant per synonym of every synonym
// key contained in text, deduplicated in first-seen order.
func (a *QueryAnalyzer) Expand(text string) []string {
	if text == "" {
		return nil
	}

	seen := map[string]struct{}{text: {}}
	out := []string{text}
	for _, group := range a.lex.Synonyms {
		if group.Key == "" || !strings.Contains(text, group.Key) {
			continue
		}
		for _, syn := range group.Synonyms {
			variant := strings.ReplaceAll(text, group.Key, syn)
			if _, dup := seen[variant]; dup {
				continue
			}
			seen[variant] = struct{}{}
			out = append(out, variant)
		}
	}
	return out
}

// ExtractKeywords returns up to five words of at least three runes from
// already cleaned text, in order.
func (a *QueryAnalyzer) ExtractKeywords(cleaned string) []string {
	out := make([]string, 0, maxQueryKeywords)
	for _, w := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(w) < minKeywordRunes {
			continue
		}
		out = append(out, w)
		if len(out) == maxQueryKeywords {
			break
		}
	}
	return out
}

func (a *QueryAnalyzer) ExtractEntities(text string) domain.Entities {
	lowered := lexicon.Fold(text)
	entities := domain.Entities{
		Numbers:  numberPattern.FindAllString(text, -1),
		Dates:    datePattern.FindAllString(text, -1),
		Keywords: []string{},
	}
	for _, kw := range a.lex.AcademicKeywords {
		if strings.Contains(lowered, kw) {
			entities.Keywords = append(entities.Keywords, kw)
		}
	}
	return entities
}

// searchVariants returns the expansion variants used for retrieval.
func searchVariants(q domain.Query) []string {
	variants := q.Expanded
	if len(variants) == 0 && q.Normalized != "" {
		variants = []string{q.Normalized}
	}
	if len(variants) > maxSearchVariants {
		variants = variants[:maxSearchVariants]
	}
	return variants
}
