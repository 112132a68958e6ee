package triage

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases, collapses whitespace, drops punctuation and
// symbols while keeping Vietnamese letters, digits and underscores,
// then re-joins the word-segmented tokens with single spaces. It never
// fails: if segmentation produces nothing usable the cleaned text is
// returned as-is.
func Normalize(text string) string {
	cleaned := cleanText(text)
	tokens := Segment(cleaned)
	if len(tokens) == 0 {
		return cleaned
	}
	return strings.Join(tokens, " ")
}

func cleanText(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if keepRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// keepRune reports whether a rune survives normalization. The range
// U+0080..U+024F covers the Latin Extended blocks Vietnamese uses.
func keepRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
		return true
	}
	if unicode.IsSpace(r) {
		return true
	}
	return r >= 0x80 && r <= 0x24F
}

// StripDiacritics folds accented Vietnamese text onto base Latin
// letters by NFD-decomposing and dropping the combining marks. It is
// total: on any transform failure the input is returned unchanged.
// Note that U+0111 (đ) has no canonical decomposition and passes
// through untouched; dictionary entries rely on this.
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
