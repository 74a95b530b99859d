package usecase

import (
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
	"github.com/kirillkom/regulation-assistant/internal/lexicon"
)

const (
	relevanceTermBonus     = 0.1
	phraseAdjustment       = 0.1
	accuracyDocsChecked    = 3
	detailedAnswerWords    = 20
	repeatedWordMinRunes   = 4
	repeatedWordMaxCount   = 3
	longSentenceWords      = 40
	uncertaintyLimit       = 2
	factualTermMinRunes    = 4
	novelTermLimit         = 5
	suggestionThreshold    = 0.5
	clarityLongAnswerChars = 500
)

var evaluationWeights = struct {
	relevance, completeness, accuracy, clarity, sourceSupport float64
}{0.25, 0.20, 0.25, 0.15, 0.15}

// QualityEvaluator scores an answer against its question, sources and the
// retrieved passages. Every score it produces lies in [0,1].
type QualityEvaluator struct {
	lex      *lexicon.Lexicon
	minWords int
	maxWords int
}

func NewQualityEvaluator(lex *lexicon.Lexicon, minAnswerLength, maxAnswerLength int) *QualityEvaluator {
	if lex == nil {
		lex = lexicon.Default()
	}
	def := DefaultSynthesizerConfig()
	if minAnswerLength < 0 {
		minAnswerLength = def.MinAnswerLength
	}
	if maxAnswerLength <= 0 {
		maxAnswerLength = def.MaxAnswerLength
	}
	return &QualityEvaluator{lex: lex, minWords: minAnswerLength, maxWords: maxAnswerLength}
}

func (e *QualityEvaluator) Evaluate(answer string, q domain.Query, sources, retrieved []string) domain.Evaluation {
	ev := domain.Evaluation{
		Relevance:     e.relevance(answer, q.Original),
		Completeness:  e.completeness(answer, q.Original),
		Accuracy:      e.accuracy(answer, retrieved),
		Clarity:       e.clarity(answer),
		SourceSupport: e.sourceSupport(answer, sources),
		Length:        e.lengthCheck(answer),
		Language:      e.languageQuality(answer),
		Factual:       e.factualConsistency(answer, retrieved),
	}

	w := evaluationWeights
	overall := ev.Relevance*w.relevance +
		ev.Completeness*w.completeness +
		ev.Accuracy*w.accuracy +
		ev.Clarity*w.clarity +
		ev.SourceSupport*w.sourceSupport
	overall *= ev.Language.Score
	overall *= ev.Factual.Score

	ev.Overall = clamp01(overall)
	ev.Level = domain.LevelForScore(ev.Overall)
	ev.Suggestions = suggestionsFor(ev)
	return ev
}

func (e *QualityEvaluator) relevance(answer, query string) float64 {
	queryWords := toTokenSet(query)
	if len(queryWords) == 0 {
		return 0
	}
	answerWords := toTokenSet(answer)
	common := 0
	for w := range queryWords {
		if _, ok := answerWords[w]; ok {
			common++
		}
	}

	score := float64(common) / float64(len(queryWords))
	score += relevanceTermBonus * float64(countContained(lexicon.Fold(answer), e.lex.AcademicTerms))
	return clamp01(score)
}

// completeness applies the first completeness rule whose query pattern
// matches; the remaining rules are ignored.
func (e *QualityEvaluator) completeness(answer, query string) float64 {
	queryLower := lexicon.Fold(query)
	answerLower := lexicon.Fold(answer)

	score := 0.5
	for _, rule := range e.lex.Completeness {
		if !containsAny(queryLower, rule.QueryPatterns) {
			continue
		}
		if containsAny(answerLower, rule.ResponseMarkers) || (rule.AcceptDigits && containsDigit(answer)) {
			score += 0.3
		}
		break
	}
	if len(strings.Fields(answer)) >= detailedAnswerWords {
		score += 0.2
	}
	return clamp01(score)
}

func (e *QualityEvaluator) accuracy(answer string, retrieved []string) float64 {
	if len(retrieved) == 0 {
		return 0
	}

	answerNumbers := digitRuns(answer)
	docs := retrieved
	if len(docs) > accuracyDocsChecked {
		docs = docs[:accuracyDocsChecked]
	}

	matched, checks := 0, 0
	for _, doc := range docs {
		docNumbers := make(map[string]struct{})
		for _, n := range digitRuns(doc) {
			docNumbers[n] = struct{}{}
		}
		for _, n := range answerNumbers {
			checks++
			if _, ok := docNumbers[n]; ok {
				matched++
			}
		}
	}

	score := 0.5
	if checks > 0 {
		score = float64(matched) / float64(checks)
	}
	lowered := lexicon.Fold(answer)
	score += phraseAdjustment * float64(countContained(lowered, e.lex.CertaintyPhrases))
	score -= phraseAdjustment * float64(countContained(lowered, e.lex.UncertaintyPhrases))
	return clamp01(score)
}

func (e *QualityEvaluator) clarity(answer string) float64 {
	score := 0.5

	sentences := strings.Split(answer, ".")
	words := 0
	for _, s := range sentences {
		words += len(strings.Fields(s))
	}
	avg := float64(words) / float64(len(sentences))
	switch {
	case avg >= 15 && avg <= 25:
		score += 0.2
	case avg > 35:
		score -= 0.2
	}

	if strings.Count(answer, ".") >= 2 {
		score += 0.1
	}
	if containsAny(lexicon.Fold(answer), e.lex.Connectives) {
		score += 0.1
	}
	if utf8.RuneCountInString(answer) > clarityLongAnswerChars {
		score -= 0.1
	}
	return clamp01(score)
}

func (e *QualityEvaluator) sourceSupport(answer string, sources []string) float64 {
	if len(sources) == 0 {
		return 0
	}

	score := 0.5
	if len(sources) >= 2 {
		score += 0.2
	} else {
		score += 0.1
	}

	lowered := lexicon.Fold(answer)
	if containsAny(lowered, e.lex.ReferenceWords) {
		score += 0.2
	}
	for _, source := range sources {
		stem := lexicon.Fold(source)
		stem = strings.ReplaceAll(stem, ".pdf", "")
		stem = strings.ReplaceAll(stem, ".docx", "")
		if stem != "" && strings.Contains(lowered, stem) {
			score += 0.1
		}
	}
	return clamp01(score)
}

func (e *QualityEvaluator) lengthCheck(answer string) domain.LengthCheck {
	words := len(strings.Fields(answer))
	return domain.LengthCheck{
		WordCount: words,
		CharCount: utf8.RuneCountInString(answer),
		TooShort:  words < e.minWords,
		TooLong:   words > e.maxWords,
		Optimal:   words >= e.minWords && words <= e.maxWords,
	}
}

func (e *QualityEvaluator) languageQuality(answer string) domain.LanguageQuality {
	out := domain.LanguageQuality{Score: 1.0, Issues: []string{}}
	lowered := lexicon.Fold(answer)

	freq := make(map[string]int)
	order := make([]string, 0, 16)
	for _, w := range strings.Fields(lowered) {
		if freq[w] == 0 {
			order = append(order, w)
		}
		freq[w]++
	}
	repeated := make([]string, 0, 3)
	for _, w := range order {
		if freq[w] > repeatedWordMaxCount && utf8.RuneCountInString(w) >= repeatedWordMinRunes {
			repeated = append(repeated, w)
		}
	}
	if len(repeated) > 0 {
		if len(repeated) > 3 {
			repeated = repeated[:3]
		}
		out.Issues = append(out.Issues, "Tekrarlayan kelimeler: "+strings.Join(repeated, ", "))
		out.Score -= 0.2
	}

	for _, s := range strings.Split(answer, ".") {
		if len(strings.Fields(s)) > longSentenceWords {
			out.Issues = append(out.Issues, "Çok uzun cümleler mevcut")
			out.Score -= 0.1
			break
		}
	}

	out.UncertaintyCount = countContained(lowered, e.lex.UncertaintyPhrases)
	if out.UncertaintyCount > uncertaintyLimit {
		out.Issues = append(out.Issues, "Çok fazla belirsizlik ifadesi")
		out.Score -= 0.3
	}

	if out.Score < 0 {
		out.Score = 0
	}
	return out
}

func (e *QualityEvaluator) factualConsistency(answer string, retrieved []string) domain.FactualConsistency {
	if len(retrieved) == 0 {
		return domain.FactualConsistency{Score: 0, Issues: []string{"Kaynak belge yok"}}
	}

	out := domain.FactualConsistency{Score: 0.8, Issues: []string{}}

	docNumbers := make(map[string]struct{})
	docTerms := make(map[string]struct{})
	for _, doc := range retrieved {
		for _, n := range digitRuns(doc) {
			docNumbers[n] = struct{}{}
		}
		for _, token := range splitWordsLower(doc) {
			if utf8.RuneCountInString(token) >= factualTermMinRunes {
				docTerms[token] = struct{}{}
			}
		}
	}

	for _, n := range digitRuns(answer) {
		if _, ok := docNumbers[n]; !ok {
			out.InconsistentNumbers = append(out.InconsistentNumbers, n)
		}
	}
	if len(out.InconsistentNumbers) > 0 {
		out.Issues = append(out.Issues, "Belgede bulunmayan rakamlar: "+strings.Join(out.InconsistentNumbers, ", "))
		out.Score -= 0.3
	}

	novel := make(map[string]struct{})
	for _, token := range splitWordsLower(answer) {
		if utf8.RuneCountInString(token) < factualTermMinRunes {
			continue
		}
		if _, ok := docTerms[token]; !ok {
			novel[token] = struct{}{}
		}
	}
	if len(novel) > novelTermLimit {
		out.Issues = append(out.Issues, "Belgelerde bulunmayan çok fazla terim kullanılmış")
		out.Score -= 0.2
	}

	if out.Score < 0 {
		out.Score = 0
	}
	return out
}

func suggestionsFor(ev domain.Evaluation) []string {
	out := make([]string, 0, 4)
	checks := []struct {
		score float64
		text  string
	}{
		{ev.Relevance, "Soruyla daha ilgili bilgiler verin"},
		{ev.Completeness, "Daha detaylı ve eksiksiz cevap verin"},
		{ev.Accuracy, "Belgelerle tutarlı bilgiler verin"},
		{ev.Clarity, "Daha net ve anlaşılır yazın"},
		{ev.SourceSupport, "Kaynak belgelerden daha fazla yararlanın"},
	}
	for _, c := range checks {
		if c.score < suggestionThreshold {
			out = append(out, c.text)
		}
	}

	switch {
	case ev.Length.TooShort:
		out = append(out, "Yanıtı daha detaylandırın")
	case ev.Length.TooLong:
		out = append(out, "Yanıtı daha kısa ve öz yapın")
	}
	if ev.Language.UncertaintyCount > uncertaintyLimit {
		out = append(out, "Daha kesin ifadeler kullanın")
	}
	return out
}
