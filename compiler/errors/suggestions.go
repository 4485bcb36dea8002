package errors

import (
	"sort"
)

// maxSuggestionDistance bounds how different a candidate may be from the input
const maxSuggestionDistance = 3

// SuggestSimilar returns the candidates closest to input by edit distance,
// nearest first. Candidates further than a small threshold are dropped.
func SuggestSimilar(input string, candidates []string, limit int) []string {
	type scored struct {
		name string
		dist int
	}

	var matches []scored
	for _, c := range candidates {
		if c == input {
			continue
		}
		d := levenshtein(input, c)
		if d <= maxSuggestionDistance {
			matches = append(matches, scored{name: c, dist: d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].name < matches[j].name
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.name)
	}
	return out
}

// levenshtein computes the edit distance between two strings
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}
