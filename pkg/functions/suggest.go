package functions

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// MaxSuggestDistance is the largest edit distance reported as a likely typo.
const MaxSuggestDistance = 2

// Closest returns the candidate nearest to name by case-insensitive edit
// distance, provided it is within the limit returned by suggestDistance.
// Ties go to the candidate listed first. An exact match is never suggested.
func Closest(name string, candidates []string) (string, bool) {
	target := strings.ToLower(name)
	best, bestDist := "", suggestDistance(name)+1
	for _, c := range candidates {
		if c == name {
			continue
		}
		if d := fuzzy.LevenshteinDistance(target, strings.ToLower(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, best != ""
}

// suggestDistance scales the typo allowance with the length of name, so
// one or two character names only match by case.
func suggestDistance(name string) int {
	return min(MaxSuggestDistance, (utf8.RuneCountInString(name)-1)/2)
}

// SuggestFunction returns the built-in whose name is closest to name.
func SuggestFunction(name string) (string, bool) {
	return Closest(name, Names())
}

// Search returns the built-ins matching query as a case-insensitive fuzzy
// subsequence, best match first. An empty query returns every built-in.
func Search(query string) []*Def {
	if query == "" {
		return All()
	}
	ranks := fuzzy.RankFindFold(query, Names())
	sort.Stable(ranks)
	out := make([]*Def, 0, len(ranks))
	for _, r := range ranks {
		def, _ := Lookup(r.Target)
		out = append(out, def)
	}
	return out
}
