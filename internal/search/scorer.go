package search

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrRootNotFound is returned when the knowledge base root does not exist.
	ErrRootNotFound = errors.New("knowledge base path does not exist")
	// ErrInvalidPattern is returned when a keyword cannot be compiled.
	ErrInvalidPattern = errors.New("invalid keyword pattern")
)

// Pattern is a compiled keyword.
type Pattern struct {
	Keyword string
	re      *regexp.Regexp
}

// Compile turns each keyword into a case-insensitive literal matcher.
// Keywords are matched as plain text, never as regular expressions.
// Empty keywords are skipped since they would match at every position.
func Compile(keywords []string) ([]Pattern, error) {
	patterns := make([]Pattern, 0, len(keywords))
	for _, k := range keywords {
		if k == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(k))
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, k, err)
		}
		patterns = append(patterns, Pattern{Keyword: k, re: re})
	}
	return patterns, nil
}

// Count returns the number of non-overlapping matches of p in text.
func (p Pattern) Count(text string) int {
	return len(p.re.FindAllStringIndex(text, -1))
}

// Score sums the match counts of every pattern in text.
func Score(text string, patterns []Pattern) float64 {
	var score float64
	for _, p := range patterns {
		score += float64(p.Count(text))
	}
	return score
}
