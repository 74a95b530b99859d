package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
)

func TestSynthesizeBuildsCategoryPrompt(t *testing.T) {
	completer := &completerFake{response: "Sınav salonuna telefon getirmek yasaktır ve kimlik zorunludur."}
	s := NewAnswerSynthesizer(completer, DefaultSynthesizerConfig(), discardLogger())
	q := newTestAnalyzer().Analyze("Kayıt nasıl yapılır?")
	bundle := domain.ContextBundle{Formatted: "1. [kayit.pdf] Kayıt öğrenci işlerinde yapılır. (Uygunluk: 0.70)"}

	got, err := s.Synthesize(context.Background(), q, bundle)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if got != completer.response {
		t.Fatalf("unexpected answer %q", got)
	}

	prompt := completer.prompts[0]
	for _, want := range []string{
		"SORU: Kayıt nasıl yapılır?",
		"Prosedür sorularında adım adım açıklama yap.",
		"ÖNEMLI: Sadece kullanıcının şu anda sorduğu soruya cevap ver.",
		bundle.Formatted,
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if opts := completer.opts[0]; opts.Temperature != 0.1 || opts.MaxTokens != 2048 {
		t.Fatalf("unexpected completion options %+v", opts)
	}
}

func TestSynthesizeWrapsCompleterError(t *testing.T) {
	s := NewAnswerSynthesizer(&completerFake{err: errors.New("connection refused")}, DefaultSynthesizerConfig(), discardLogger())
	_, err := s.Synthesize(context.Background(), newTestAnalyzer().Analyze("sınav"), domain.ContextBundle{})
	if !domain.IsKind(err, domain.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestSynthesizeEmptyCompletionFallsBack(t *testing.T) {
	s := NewAnswerSynthesizer(&completerFake{response: "  <think>hmm</think> "}, DefaultSynthesizerConfig(), discardLogger())
	got, err := s.Synthesize(context.Background(), newTestAnalyzer().Analyze("sınav"), domain.ContextBundle{})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if got != noClearAnswer {
		t.Fatalf("expected no-clear-answer fallback, got %q", got)
	}
}

func TestBuildPromptUnknownCategoryUsesGeneral(t *testing.T) {
	prompt := buildPrompt("soru", domain.Category("weird"), "ctx")
	if !strings.Contains(prompt, "Kapsamlı ve düzenli bir açıklama yap.") {
		t.Fatalf("expected general instruction in prompt")
	}
}

func TestBuildPromptDoesNotExpandPlaceholdersInQuestion(t *testing.T) {
	prompt := buildPrompt("{context} nedir", domain.CategoryDefinition, "BELGE")
	if !strings.Contains(prompt, "SORU: {context} nedir") {
		t.Fatalf("question placeholder was substituted:\n%s", prompt)
	}
}

func TestCleanCompletion(t *testing.T) {
	raw := "<think>düşünüyorum</think>**Sınav** süresi <b>90</b> &amp; `dakika`\n\n  dır."
	if got := cleanCompletion(raw, 1000); got != "Sınav süresi 90 & dakika dır." {
		t.Fatalf("unexpected cleaned text %q", got)
	}
}

func TestCleanCompletionTruncatesLongAnswers(t *testing.T) {
	raw := strings.Repeat("kelime ", 30)
	got := cleanCompletion(raw, 50)
	if got != strings.TrimSpace(strings.Repeat("kelime ", 10))+"..." {
		t.Fatalf("unexpected truncated text %q", got)
	}
}

func TestStripCitations(t *testing.T) {
	cases := map[string]string{
		"Devam zorunludur.\nKaynak: [yonetmelik.pdf]":              "Devam zorunludur.",
		"Devam zorunludur. Kaynak: yonetmelik.pdf sayfa 3":         "Devam zorunludur.",
		"Devam zorunludur. [Anasayfa - Öğrenci İşleri] bağlantısı": "Devam zorunludur.",
		"Devam zorunludur. Kaynak belge: yönerge":                  "Devam zorunludur.",
		"Derslerin yüzde yetmişine devam zorunludur...... devamı":  "Derslerin yüzde yetmişine devam zorunludur",
		"Önce belgeler hazırlanır... sonra kayıt yapılır.":         "Önce belgeler hazırlanır... sonra kayıt yapılır.",
	}
	for in, want := range cases {
		if got := stripCitations(in, 0); got != want {
			t.Fatalf("stripCitations(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStripCitationsPadsShortAnswers(t *testing.T) {
	got := stripCitations("Evet.", 20)
	if got != "Evet."+shortAnswerSuffix {
		t.Fatalf("unexpected padded answer %q", got)
	}
}
