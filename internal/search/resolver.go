// Package search implements the retrieval tools the answer loop exposes to
// the model: semantic content search and catalog outline lookup.
package search

import (
	"sort"
	"strings"
	"unicode"
)

// Resolve matches a user-supplied course name against catalog titles and
// returns the best match. Matching tiers, strongest first: exact
// case-insensitive, substring, then word overlap of at least half the
// query's words. Ties break lexicographically so resolution is
// deterministic. Returns false when nothing clears the bar.
func Resolve(name string, titles []string) (string, bool) {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" || len(titles) == 0 {
		return "", false
	}

	sorted := make([]string, len(titles))
	copy(sorted, titles)
	sort.Strings(sorted)

	for _, title := range sorted {
		if strings.ToLower(title) == query {
			return title, true
		}
	}

	for _, title := range sorted {
		if strings.Contains(strings.ToLower(title), query) {
			return title, true
		}
	}

	queryWords := tokenize(query)
	if len(queryWords) == 0 {
		return "", false
	}

	best := ""
	bestScore := 0.0
	for _, title := range sorted {
		titleWords := tokenize(strings.ToLower(title))
		matched := 0
		for _, w := range queryWords {
			for _, tw := range titleWords {
				if w == tw {
					matched++
					break
				}
			}
		}
		score := float64(matched) / float64(len(queryWords))
		if score > bestScore {
			best = title
			bestScore = score
		}
	}

	if bestScore >= 0.5 {
		return best, true
	}
	return "", false
}

// tokenize splits on anything that isn't a letter or digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
