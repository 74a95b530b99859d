// Package lexicon holds the language tables that drive query analysis,
// keyword scoring, answer evaluation and chat intent detection.
package lexicon

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
)

// Fold lowercases text with Turkish casing rules, so "I" folds to "ı"
// and "İ" to "i". Every table lookup goes through it.
func Fold(s string) string {
	return strings.ToLowerSpecial(unicode.TurkishCase, s)
}

// CategoryRule maps a question category to substring patterns.
// Rules are evaluated in order and the first match wins.
type CategoryRule struct {
	Category domain.Category `yaml:"category"`
	Patterns []string        `yaml:"patterns"`
}

type SynonymGroup struct {
	Key      string   `yaml:"key"`
	Synonyms []string `yaml:"synonyms"`
}

// CompletenessRule describes the content an answer to a given kind of
// question is expected to contain.
type CompletenessRule struct {
	QueryPatterns   []string `yaml:"query_patterns"`
	ResponseMarkers []string `yaml:"response_markers"`
	AcceptDigits    bool     `yaml:"accept_digits"`
}

type TopicRule struct {
	Topic    string   `yaml:"topic"`
	Keywords []string `yaml:"keywords"`
}

type Lexicon struct {
	StopWords      []string           `yaml:"stop_words"`
	Synonyms       []SynonymGroup     `yaml:"synonyms"`
	Categories     []CategoryRule     `yaml:"categories"`
	KeywordWeights map[string]float64 `yaml:"keyword_weights"`

	AcademicKeywords []string `yaml:"academic_keywords"`
	AcademicTerms    []string `yaml:"academic_terms"`

	QueryStopWords []string `yaml:"query_stop_words"`

	CertaintyPhrases   []string           `yaml:"certainty_phrases"`
	UncertaintyPhrases []string           `yaml:"uncertainty_phrases"`
	Connectives        []string           `yaml:"connectives"`
	ReferenceWords     []string           `yaml:"reference_words"`
	Completeness       []CompletenessRule `yaml:"completeness"`

	GreetingPhrases    []string `yaml:"greeting_phrases"`
	GoodbyePhrases     []string `yaml:"goodbye_phrases"`
	QuestionIndicators []string `yaml:"question_indicators"`

	Topics       []TopicRule `yaml:"topics"`
	DefaultTopic string      `yaml:"default_topic"`
}

// Weight returns the keyword weight, 1.0 for unknown keywords.
func (l *Lexicon) Weight(keyword string) float64 {
	if w, ok := l.KeywordWeights[keyword]; ok {
		return w
	}
	return 1.0
}

func (l *Lexicon) StopWordSet() map[string]struct{} {
	return toSet(l.StopWords)
}

func (l *Lexicon) QueryStopWordSet() map[string]struct{} {
	return toSet(l.QueryStopWords)
}

// DetectTopic returns the first topic whose keyword occurs in the text.
func (l *Lexicon) DetectTopic(text string) string {
	lowered := Fold(text)
	for _, rule := range l.Topics {
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(lowered, kw) {
				return rule.Topic
			}
		}
	}
	return l.DefaultTopic
}

func (l *Lexicon) Validate() error {
	if len(l.Categories) == 0 {
		return fmt.Errorf("lexicon: at least one category rule is required")
	}
	for i, rule := range l.Categories {
		if rule.Category == "" {
			return fmt.Errorf("lexicon: category rule %d has empty category", i)
		}
		if len(rule.Patterns) == 0 {
			return fmt.Errorf("lexicon: category %q has no patterns", rule.Category)
		}
	}
	for key, w := range l.KeywordWeights {
		if w <= 0 {
			return fmt.Errorf("lexicon: keyword weight for %q must be positive", key)
		}
	}
	return nil
}

func toSet(words []string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}
