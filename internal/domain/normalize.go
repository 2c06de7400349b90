package domain

import (
	"strings"
	"unicode"
)

// NormalizeSpace prepares leaf text for storage and comparison:
//   - trims leading/trailing whitespace
//   - compresses internal whitespace runs (including newlines from
//     pretty-printed XML) into a single space
//
// Case, diacritics, and punctuation are preserved; dictionary headwords
// are case-sensitive data.
func NormalizeSpace(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			prevSpace = true
			continue
		}
		if prevSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
