package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// ssaTagPattern matches ASS/SSA override blocks like {\an8\i1}.
	ssaTagPattern = regexp.MustCompile(`\{.*?\}`)
	// htmlTagPattern matches inline markup like <i> and </font>.
	htmlTagPattern = regexp.MustCompile(`<.*?>`)
)

// diacriticsStripper decomposes text and removes combining marks so that
// "café" and "cafe" normalize identically.
var diacriticsStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripMarkup removes subtitle formatting tags and hard line breaks, leaving
// plain dialogue text.
func StripMarkup(text string) string {
	text = ssaTagPattern.ReplaceAllString(text, "")
	text = htmlTagPattern.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, `\N`, " ")
	text = strings.ReplaceAll(text, `\n`, " ")
	text = strings.ReplaceAll(text, "\n", " ")
	return text
}

// NormalizeToken lowercases a single word, strips diacritics, and drops
// everything that is not a letter or digit. Returns "" when nothing remains.
func NormalizeToken(word string) string {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return ""
	}
	if stripped, _, err := transform.String(diacriticsStripper, word); err == nil {
		word = stripped
	}
	var b strings.Builder
	b.Grow(len(word))
	for _, r := range word {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeWords strips markup from text, splits it on whitespace, and
// normalizes each word. Empty results are dropped; empty input yields an
// empty slice.
func NormalizeWords(text string) []string {
	fields := strings.Fields(StripMarkup(text))
	words := make([]string, 0, len(fields))
	for _, field := range fields {
		if token := NormalizeToken(field); token != "" {
			words = append(words, token)
		}
	}
	return words
}
