package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const shortAnswerSuffix = " Bu konuda daha detaylı bilgi için ilgili belgeleri inceleyebilirsiniz."

var (
	thinkBlockPattern = regexp.MustCompile(`(?is)<think>.*?</think>`)
	tagPattern        = regexp.MustCompile(`(?s)<.*?>`)
	markdownPattern   = regexp.MustCompile("\\*\\*|__|~~|`")
	whitespacePattern = regexp.MustCompile(`\s+`)

	citationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)\s*Kaynak:\s*\[.*?\].*?$`),
		regexp.MustCompile(`(?im)\s*Kaynak:\s*.*?\.pdf.*?$`),
		regexp.MustCompile(`(?im)\s*Kaynak:\s*.*?\.docx.*?$`),
		regexp.MustCompile(`(?im)\s*Kaynak belge:\s*.*?$`),
		regexp.MustCompile(`(?im)\s*\[.*?\.pdf\].*?$`),
		regexp.MustCompile(`(?im)\s*\[.*?\.docx\].*?$`),
		regexp.MustCompile(`(?im)\s*\[Anasayfa.*?\].*?$`),
		// trailing ellipsis plus an unterminated fragment after it
		regexp.MustCompile(`(?m)\.{3,}[^.!?\n]*$`),
	}
	trailingSpacePattern = regexp.MustCompile(`(?m)[ \t]+$`)
)

// cleanCompletion removes reasoning blocks, markup and emphasis from a raw
// completion and collapses whitespace. Answers longer than maxChars are cut
// to maxChars/5 words.
func cleanCompletion(raw string, maxChars int) string {
	if raw == "" {
		return ""
	}
	text := thinkBlockPattern.ReplaceAllString(raw, "")
	text = tagPattern.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = markdownPattern.ReplaceAllString(text, "")
	text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))

	if maxChars > 0 && utf8.RuneCountInString(text) > maxChars {
		text, _ = truncateWords(text, maxChars/5)
	}
	return text
}

// stripCitations drops self-citation fragments the model appends and pads
// answers shorter than minChars with a pointer to the source documents.
func stripCitations(text string, minChars int) string {
	for _, p := range citationPatterns {
		text = p.ReplaceAllString(text, "")
	}
	text = trailingSpacePattern.ReplaceAllString(text, "")
	text = strings.TrimRight(text, " \t\r\n")

	if utf8.RuneCountInString(text) < minChars {
		text += shortAnswerSuffix
	}
	return strings.TrimSpace(text)
}
