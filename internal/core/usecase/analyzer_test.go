package usecase

import (
	"reflect"
	"testing"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
	"github.com/kirillkom/regulation-assistant/internal/lexicon"
)

func newTestAnalyzer() *QueryAnalyzer {
	return NewQueryAnalyzer(lexicon.Default())
}

func TestCleanRemovesPunctuationAndStopWords(t *testing.T) {
	a := newTestAnalyzer()
	got := a.Clean("  Bu Sınav   için ne GEREKLİ?! ")
	if got != "sınav ne gerekli" {
		t.Fatalf("unexpected cleaned text %q", got)
	}
}

func TestCleanFoldsTurkishUpperCase(t *testing.T) {
	a := newTestAnalyzer()
	if got := a.Clean("SINAV KURALLARI"); got != "sınav kuralları" {
		t.Fatalf("unexpected cleaned text %q", got)
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	a := newTestAnalyzer()
	inputs := []string{
		"",
		"   ",
		"Sınav kuralları nelerdir?",
		"Öğrenci İşleri — kayıt, 12.09.2024 tarihinde!!",
		"o ve bir ile",
		"ders_kodu: BIL-101 (3 kredi)",
		"ÇĞIİÖŞÜ çğıöşü",
	}
	for _, in := range inputs {
		once := a.Clean(in)
		twice := a.Clean(once)
		if once != twice {
			t.Fatalf("Clean not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestCategorizeChecksTemporalBeforeDefinition(t *testing.T) {
	a := newTestAnalyzer()
	if got := a.Categorize("Ne zaman sınav olacak?"); got != domain.CategoryTemporal {
		t.Fatalf("expected temporal, got %s", got)
	}
}

func TestCategorizeRules(t *testing.T) {
	a := newTestAnalyzer()
	cases := map[string]domain.Category{
		"Kayıt nasıl yapılır":          domain.CategoryProcedure,
		"Kütüphane nerede":             domain.CategoryLocation,
		"Kaç kredi almalıyım":          domain.CategoryQuantitative,
		"Sınav kuralları nelerdir":     domain.CategoryDefinition,
		"why is attendance mandatory": domain.CategoryExplanation,
		"harç ücreti":                  domain.CategoryGeneral,
	}
	for in, want := range cases {
		if got := a.Categorize(in); got != want {
			t.Fatalf("Categorize(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestExpandKeepsOriginalFirstAndDeduplicates(t *testing.T) {
	a := newTestAnalyzer()
	got := a.Expand("öğrenci sınav")
	want := []string{
		"öğrenci sınav",
		"öğrenci exam",
		"öğrenci test",
		"öğrenci imtihan",
		"öğrenci değerlendirme",
		"student sınav",
		"talebe sınav",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected expansion:\n got %v\nwant %v", got, want)
	}
}

func TestExpandWithoutSynonymsReturnsOriginal(t *testing.T) {
	a := newTestAnalyzer()
	got := a.Expand("yemekhane saatleri")
	if len(got) != 1 || got[0] != "yemekhane saatleri" {
		t.Fatalf("unexpected expansion %v", got)
	}
	if a.Expand("") != nil {
		t.Fatalf("expected nil expansion for empty text")
	}
}

func TestExtractKeywordsCapsAtFive(t *testing.T) {
	a := newTestAnalyzer()
	got := a.ExtractKeywords("ab sınav kuralları nelerdir mezuniyet şartları kredi yük")
	want := []string{"sınav", "kuralları", "nelerdir", "mezuniyet", "şartları"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected keywords %v", got)
	}
}

func TestExtractEntities(t *testing.T) {
	a := newTestAnalyzer()
	got := a.ExtractEntities("Mezuniyet için 240 kredi ve 15.06.2025 tarihine kadar başvuru")
	if !reflect.DeepEqual(got.Numbers, []string{"240", "15", "06", "2025"}) {
		t.Fatalf("unexpected numbers %v", got.Numbers)
	}
	if !reflect.DeepEqual(got.Dates, []string{"15.06.2025"}) {
		t.Fatalf("unexpected dates %v", got.Dates)
	}
	if !reflect.DeepEqual(got.Keywords, []string{"kredi", "mezuniyet"}) {
		t.Fatalf("unexpected academic keywords %v", got.Keywords)
	}
}

func TestAnalyzeEmptyQuery(t *testing.T) {
	a := newTestAnalyzer()
	q := a.Analyze("   ?!  ")
	if !q.IsEmpty() {
		t.Fatalf("expected empty normalized query, got %q", q.Normalized)
	}
	if q.Category != domain.CategoryGeneral {
		t.Fatalf("expected general category, got %s", q.Category)
	}
	if len(q.Keywords) != 0 || len(q.Expanded) != 0 {
		t.Fatalf("expected no keywords or variants, got %v %v", q.Keywords, q.Expanded)
	}
}

func TestSearchVariantsCapsAtThree(t *testing.T) {
	a := newTestAnalyzer()
	q := a.Analyze("Sınav notu")
	variants := searchVariants(q)
	if len(variants) != 3 {
		t.Fatalf("expected 3 variants, got %d (%v)", len(variants), variants)
	}
	if variants[0] != q.Normalized {
		t.Fatalf("expected normalized query first, got %q", variants[0])
	}
}
