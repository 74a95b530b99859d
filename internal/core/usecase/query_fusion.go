package usecase

import (
	"sort"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
)

// fuseWeighted unions semantic and keyword candidates by exact text.
// Semantic-only candidates score sw*semantic, keyword-only candidates
// score kw*keyword, and candidates found by both are tagged hybrid.
func fuseWeighted(semantic, keyword []domain.RetrievalCandidate, sw, kw float64) []domain.RetrievalCandidate {
	out := make([]domain.RetrievalCandidate, 0, len(semantic)+len(keyword))
	byText := make(map[string]int, len(semantic)+len(keyword))

	for _, c := range semantic {
		if _, dup := byText[c.Text]; dup {
			continue
		}
		c.KeywordScore = 0
		c.CombinedScore = c.SemanticScore * sw
		c.Origin = domain.OriginSemantic
		byText[c.Text] = len(out)
		out = append(out, c)
	}

	for _, c := range keyword {
		if i, ok := byText[c.Text]; ok {
			existing := &out[i]
			existing.KeywordScore = c.KeywordScore
			existing.CombinedScore = existing.SemanticScore*sw + c.KeywordScore*kw
			existing.Origin = domain.OriginHybrid
			existing.Metadata = preferRicherMetadata(existing.Metadata, c.Metadata)
			if existing.Source == "" {
				existing.Source = c.Source
			}
			continue
		}
		c.SemanticScore = 0
		c.CombinedScore = c.KeywordScore * kw
		c.Origin = domain.OriginKeyword
		byText[c.Text] = len(out)
		out = append(out, c)
	}

	sortByCombinedScore(out)
	return out
}

// mergeByText keeps, for every distinct text, the candidate with the
// highest combined score across all lists.
func mergeByText(lists ...[]domain.RetrievalCandidate) []domain.RetrievalCandidate {
	total := 0
	for _, l := range lists {
		total += len(l)
	}

	out := make([]domain.RetrievalCandidate, 0, total)
	byText := make(map[string]int, total)
	for _, l := range lists {
		for _, c := range l {
			if i, ok := byText[c.Text]; ok {
				if c.CombinedScore > out[i].CombinedScore {
					out[i] = c
				}
				continue
			}
			byText[c.Text] = len(out)
			out = append(out, c)
		}
	}

	sortByCombinedScore(out)
	return out
}

func sortByCombinedScore(candidates []domain.RetrievalCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CombinedScore > candidates[j].CombinedScore
	})
}

func trimCandidates(candidates []domain.RetrievalCandidate, limit int) []domain.RetrievalCandidate {
	if limit <= 0 || len(candidates) <= limit {
		return candidates
	}
	return candidates[:limit]
}

func preferRicherMetadata(current, candidate map[string]string) map[string]string {
	if len(candidate) == 0 {
		return current
	}
	if len(current) == 0 {
		return candidate
	}
	merged := make(map[string]string, len(current)+len(candidate))
	for k, v := range candidate {
		merged[k] = v
	}
	for k, v := range current {
		merged[k] = v
	}
	return merged
}
