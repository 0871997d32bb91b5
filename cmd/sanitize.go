package cmd

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// sanitizeText replaces C0 and C1 control characters and DEL with '?' so
// that paths and block content print on one terminal line without escapes.
func sanitizeText(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return '?'
		}
		return r
	}, s)
}

// truncate shortens s to at most n runes, marking a cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
