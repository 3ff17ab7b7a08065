package intelligence

import (
	"strings"
)

// lineBreaks lists every sequence treated as a line break. "\r\n" comes
// first so a Windows line ending folds to a single separator.
var lineBreaks = []string{"\r\n", "\r", "\n", "\v", "\f", "\u0085", "\u2028", "\u2029"}

var (
	singleSpaceFolder = newBreakReplacer(" ")
	doubleSpaceFolder = newBreakReplacer("  ")
)

func newBreakReplacer(sep string) *strings.Replacer {
	pairs := make([]string, 0, len(lineBreaks)*2)
	for _, b := range lineBreaks {
		pairs = append(pairs, b, sep)
	}
	return strings.NewReplacer(pairs...)
}

// Text carries the views of one OCR output used during extraction
type Text struct {
	Raw        string // untouched OCR output, for line-sensitive rules
	Normalized string // line breaks folded to single spaces
	Lower      string // lowercase of Normalized, for keyword triggers
}

// NewText builds all views of raw.
func NewText(raw string) Text {
	normalized := Normalize(raw)
	return Text{
		Raw:        raw,
		Normalized: normalized,
		Lower:      strings.ToLower(normalized),
	}
}

// Normalize folds line breaks to single spaces and trims the result.
// Case is preserved; Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	return strings.TrimSpace(singleSpaceFolder.Replace(raw))
}

// NormalizeBoundaries folds line breaks to a double space so that field
// boundaries survive as a separator distinct from ordinary spacing.
func NormalizeBoundaries(raw string) string {
	return doubleSpaceFolder.Replace(raw)
}

// Snippet returns at most n runes from the start of s.
func Snippet(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
