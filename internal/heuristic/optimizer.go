// Package heuristic implements the cosmetic prompt shortener shown to users
// before they submit an optimization: filler words are removed and the text
// is cut to roughly three quarters of its length.
package heuristic

import (
	"regexp"
	"strings"

	"github.com/ayush/greenprompt/backend/internal/savings"
)

// Fillers are removed as whole words, case-insensitively.
var Fillers = []string{"the", "and", "a", "an", "that", "please", "kindly", "just"}

var fillerPattern = regexp.MustCompile(`(?i)\b(?:` + strings.Join(Fillers, "|") + `)\b`)

const (
	minKeep   = 10
	keepRatio = 0.75
)

// Result is the shortened text plus its token accounting.
type Result struct {
	Text           string
	TokensBefore   int
	TokensAfter    int
	AlreadyOptimal bool
}

// Optimize strips fillers and truncates the prompt. AlreadyOptimal is set when
// the shortened text estimates to the same number of tokens as the input;
// callers should then skip recording a saving.
func Optimize(prompt string) Result {
	original := savings.Normalize(prompt)
	stripped := savings.Normalize(fillerPattern.ReplaceAllString(original, " "))

	limit := max(minKeep, int(keepRatio*float64(runeLen(original))))
	out := truncate(stripped, limit)

	before := savings.Estimate(prompt)
	after := savings.Estimate(out)
	return Result{
		Text:           out,
		TokensBefore:   before,
		TokensAfter:    after,
		AlreadyOptimal: before == after,
	}
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

func runeLen(s string) int {
	return len([]rune(s))
}
