package usecase

import (
	"reflect"
	"strings"
	"testing"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
	"github.com/kirillkom/regulation-assistant/internal/lexicon"
)

func candidate(text, source string, score float64) domain.RetrievalCandidate {
	meta := map[string]string{}
	if source != "" {
		meta[domain.MetadataSourceFile] = source
	}
	return domain.RetrievalCandidate{Text: text, Source: source, Metadata: meta, CombinedScore: score}
}

func TestAssembleFormatsNumberedContext(t *testing.T) {
	a := NewContextAssembler(lexicon.Default(), DefaultAssemblerConfig())
	q := newTestAnalyzer().Analyze("Sınav kuralları nelerdir?")

	bundle := a.Assemble([]domain.RetrievalCandidate{
		candidate("Sınav   salonuna telefon getirilemez.", "sinav.pdf", 0.82),
		candidate("Sınav süresi 90 dakikadır.", "sinav.pdf", 0.51),
	}, q)

	want := "1. [sinav.pdf] Sınav salonuna telefon getirilemez. (Uygunluk: 0.82)\n\n" +
		"2. [sinav.pdf] Sınav süresi 90 dakikadır. (Uygunluk: 0.51)"
	if bundle.Formatted != want {
		t.Fatalf("unexpected formatted context:\n%s", bundle.Formatted)
	}
	if !reflect.DeepEqual(bundle.Sources, []string{"sinav.pdf"}) {
		t.Fatalf("expected deduplicated sources, got %v", bundle.Sources)
	}
	if len(bundle.Documents) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(bundle.Documents))
	}
}

func TestAssembleDropsPassagesWithoutQueryKeywords(t *testing.T) {
	a := NewContextAssembler(lexicon.Default(), DefaultAssemblerConfig())
	q := newTestAnalyzer().Analyze("Sınav kuralları nelerdir?")

	bundle := a.Assemble([]domain.RetrievalCandidate{
		candidate("Yemekhane saat 12'de açılır.", "yemek.pdf", 0.9),
		candidate("Final sınavı kuralları ilan edilir.", "", 0.4),
	}, q)

	if len(bundle.Entries) != 1 {
		t.Fatalf("expected one gated entry, got %d", len(bundle.Entries))
	}
	entry := bundle.Entries[0]
	if entry.Index != 2 || entry.Source != "Belge_2" {
		t.Fatalf("expected rank-based index and fallback source, got %+v", entry)
	}
}

func TestAssemblePassesEverythingWhenQueryHasNoKeywords(t *testing.T) {
	a := NewContextAssembler(lexicon.Default(), DefaultAssemblerConfig())
	q := newTestAnalyzer().Analyze("ne nedir?")

	bundle := a.Assemble([]domain.RetrievalCandidate{candidate("Herhangi bir metin.", "a.pdf", 0.3)}, q)
	if bundle.IsEmpty() {
		t.Fatalf("expected passage to pass without keywords")
	}
}

func TestAssembleTrimsLongPassages(t *testing.T) {
	a := NewContextAssembler(lexicon.Default(), AssemblerConfig{MaxContextLength: 20})
	q := newTestAnalyzer().Analyze("yönetmelik")

	text := "yönetmelik " + strings.Repeat("madde ", 10)
	bundle := a.Assemble([]domain.RetrievalCandidate{candidate(text, "y.pdf", 0.5)}, q)
	if got := bundle.Entries[0].Text; got != "yönetmelik madde madde madde..." {
		t.Fatalf("unexpected trimmed text %q", got)
	}
}

func TestAssembleCapsEntriesAndReadsChunkIndex(t *testing.T) {
	a := NewContextAssembler(lexicon.Default(), AssemblerConfig{MaxEntries: 2})
	q := newTestAnalyzer().Analyze("kayıt")

	first := candidate("kayıt bir", "a.pdf", 0.9)
	first.Metadata[domain.MetadataChunkIndex] = "7"
	bundle := a.Assemble([]domain.RetrievalCandidate{
		first,
		candidate("kayıt iki", "b.pdf", 0.8),
		candidate("kayıt üç", "c.pdf", 0.7),
	}, q)

	if len(bundle.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(bundle.Entries))
	}
	if bundle.Entries[0].ChunkIndex != 7 || bundle.Entries[1].ChunkIndex != 0 {
		t.Fatalf("unexpected chunk indexes %+v", bundle.Entries)
	}
	if !reflect.DeepEqual(bundle.Sources, []string{"a.pdf", "b.pdf"}) {
		t.Fatalf("unexpected sources %v", bundle.Sources)
	}
}
