// Package savings estimates prompt token counts and converts token deltas
// into energy and CO₂ figures.
package savings

import (
	"strings"
	"unicode/utf8"
)

// CharsPerToken is the fixed heuristic ratio used by Estimate.
const CharsPerToken = 4

// Estimate returns the heuristic token count of text. Whitespace runs are
// collapsed and the result trimmed; empty text is 0 tokens, anything else is
// ceil(runes/4) and at least 1.
func Estimate(text string) int {
	normalized := Normalize(text)
	if normalized == "" {
		return 0
	}
	n := utf8.RuneCountInString(normalized)
	tokens := (n + CharsPerToken - 1) / CharsPerToken
	if tokens < 1 {
		return 1
	}
	return tokens
}

// Normalize collapses every whitespace run to a single space and trims the ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
