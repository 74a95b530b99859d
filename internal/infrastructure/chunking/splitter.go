package chunking

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultPassageSize = 1024
	DefaultOverlap     = 100
)

// Splitter cuts text into passages of at most PassageSize runes on word
// boundaries. Consecutive passages share roughly Overlap runes of words.
type Splitter struct {
	PassageSize int
	Overlap     int
}

func NewSplitter(passageSize, overlap int) *Splitter {
	if passageSize <= 0 {
		passageSize = DefaultPassageSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= passageSize {
		overlap = passageSize / 4
	}
	return &Splitter{
		PassageSize: passageSize,
		Overlap:     overlap,
	}
}

func (s *Splitter) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	out := make([]string, 0, utf8.RuneCountInString(text)/s.PassageSize+1)
	start := 0
	for start < len(words) {
		end, size := start, 0
		for end < len(words) {
			n := utf8.RuneCountInString(words[end])
			if end > start {
				n++
			}
			if size+n > s.PassageSize && end > start {
				break
			}
			size += n
			end++
		}
		out = append(out, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
		start = s.overlapStart(words, start, end)
	}
	return out
}

// overlapStart walks back from end while the carried words fit in Overlap,
// always advancing past start.
func (s *Splitter) overlapStart(words []string, start, end int) int {
	next, carried := end, 0
	for next-1 > start {
		n := utf8.RuneCountInString(words[next-1]) + 1
		if carried+n > s.Overlap {
			break
		}
		carried += n
		next--
	}
	return next
}
