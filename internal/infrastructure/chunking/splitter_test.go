package chunking

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitKeepsWordsWhole(t *testing.T) {
	s := NewSplitter(20, 0)
	got := s.Split("Madde 14 sınav salonlarında yiyecek bulundurulması yasaktır")
	for _, p := range got {
		if utf8.RuneCountInString(p) > 20 && strings.Contains(p, " ") {
			t.Fatalf("passage %q exceeds size", p)
		}
	}
	if strings.Join(got, " ") != "Madde 14 sınav salonlarında yiyecek bulundurulması yasaktır" {
		t.Fatalf("passages without overlap must reassemble the text, got %v", got)
	}
}

func TestSplitCarriesOverlap(t *testing.T) {
	s := NewSplitter(11, 4)
	got := s.Split("aa bb cc dd ee ff")
	if len(got) < 2 {
		t.Fatalf("expected several passages, got %v", got)
	}
	if got[0] != "aa bb cc dd" || !strings.HasPrefix(got[1], "dd") {
		t.Fatalf("expected one carried word, got %v", got)
	}
}

func TestSplitHandlesOversizedWordAndEmptyText(t *testing.T) {
	s := NewSplitter(4, 1)
	got := s.Split("uzunkelime a")
	if len(got) != 2 || got[0] != "uzunkelime" {
		t.Fatalf("unexpected passages %v", got)
	}
	if s.Split("   ") != nil {
		t.Fatalf("expected nil for blank text")
	}
}

func TestNewSplitterNormalizes(t *testing.T) {
	s := NewSplitter(0, 5000)
	if s.PassageSize != DefaultPassageSize || s.Overlap != DefaultPassageSize/4 {
		t.Fatalf("unexpected splitter %+v", s)
	}
}
