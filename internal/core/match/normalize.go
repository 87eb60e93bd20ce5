package match

import (
	"strings"
	"unicode"
)

// Normalize lowercases text and drops everything that is not a word
// character (letter, digit, underscore) or whitespace.
func Normalize(text string) string {
	lowered := strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if isWordRune(r) || isSpaceRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isSpaceRune also keeps the ASCII information separators U+001C..U+001F,
// which regex \s treats as whitespace but unicode.IsSpace does not.
func isSpaceRune(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
