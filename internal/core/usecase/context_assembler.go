package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
	"github.com/kirillkom/regulation-assistant/internal/lexicon"
)

const minGateKeywordRunes = 3

type AssemblerConfig struct {
	MaxEntries       int
	MaxContextLength int
}

func DefaultAssemblerConfig() AssemblerConfig {
	return AssemblerConfig{
		MaxEntries:       10,
		MaxContextLength: 4000,
	}
}

func (c AssemblerConfig) normalize() AssemblerConfig {
	def := DefaultAssemblerConfig()
	if c.MaxEntries <= 0 {
		c.MaxEntries = def.MaxEntries
	}
	if c.MaxContextLength <= 0 {
		c.MaxContextLength = def.MaxContextLength
	}
	return c
}

// ContextAssembler turns ranked candidates into the numbered context block
// handed to the completion service.
type ContextAssembler struct {
	stopWords map[string]struct{}
	cfg       AssemblerConfig
}

func NewContextAssembler(lex *lexicon.Lexicon, cfg AssemblerConfig) *ContextAssembler {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &ContextAssembler{
		stopWords: lex.QueryStopWordSet(),
		cfg:       cfg.normalize(),
	}
}

// Assemble gates, trims and numbers the first MaxEntries candidates.
// Entry indexes keep the candidate's rank, so gaps mark dropped passages.
func (a *ContextAssembler) Assemble(candidates []domain.RetrievalCandidate, q domain.Query) domain.ContextBundle {
	keywords := a.gateKeywords(q.Original)
	maxWords := a.cfg.MaxContextLength / 5

	bundle := domain.ContextBundle{}
	seenSources := make(map[string]struct{}, len(candidates))
	for i, c := range trimCandidates(candidates, a.cfg.MaxEntries) {
		index := i + 1
		if !passesRelevanceGate(c.Text, keywords) {
			continue
		}

		text, _ := truncateWords(c.Text, maxWords)
		source := c.Metadata[domain.MetadataSourceFile]
		if source == "" {
			source = fmt.Sprintf("Belge_%d", index)
		}
		if _, seen := seenSources[source]; !seen {
			seenSources[source] = struct{}{}
			bundle.Sources = append(bundle.Sources, source)
		}

		bundle.Documents = append(bundle.Documents, text)
		bundle.Entries = append(bundle.Entries, domain.ContextEntry{
			Index:      index,
			Source:     source,
			Text:       text,
			Score:      c.CombinedScore,
			ChunkIndex: chunkIndexOf(c.Metadata),
		})
	}

	bundle.Formatted = formatContext(bundle.Entries)
	return bundle
}

// gateKeywords returns the lowercased query words that are not question or
// stop words and are longer than two runes.
func (a *ContextAssembler) gateKeywords(query string) []string {
	words := strings.Fields(lexicon.Fold(query))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimFunc(w, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if _, stop := a.stopWords[w]; stop {
			continue
		}
		if utf8.RuneCountInString(w) < minGateKeywordRunes {
			continue
		}
		out = append(out, w)
	}
	return out
}

func passesRelevanceGate(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	return containsAny(lexicon.Fold(text), keywords)
}

func formatContext(entries []domain.ContextEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%d. [%s] %s (Uygunluk: %.2f)", e.Index, e.Source, e.Text, e.Score))
	}
	return strings.Join(lines, "\n\n")
}

func chunkIndexOf(metadata map[string]string) int {
	raw, ok := metadata[domain.MetadataChunkIndex]
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
