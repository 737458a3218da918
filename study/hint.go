package study

import (
	"strings"
	"unicode/utf8"
)

// Hint obfuscates a definition for display: a single word becomes its first
// character plus an ellipsis ("Photosynthesis" → "P..."), a phrase becomes
// the first character of each word joined by spaces ("light dependent
// reaction" → "l d r...").
func Hint(definition string) string {
	words := strings.Fields(definition)
	if len(words) == 0 {
		return ""
	}
	if len(words) == 1 {
		r, _ := utf8.DecodeRuneInString(words[0])
		return string(r) + "..."
	}

	initials := make([]string, len(words))
	for i, w := range words {
		r, _ := utf8.DecodeRuneInString(w)
		initials[i] = string(r)
	}
	return strings.Join(initials, " ") + "..."
}

// MatchAnswer reports whether a typed answer matches the definition. Matching
// trims surrounding whitespace and ignores case; there is no fuzzy matching,
// so stray punctuation fails.
func MatchAnswer(input, definition string) bool {
	return strings.EqualFold(strings.TrimSpace(input), strings.TrimSpace(definition))
}
