package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/unicode/norm"
)

// Match tiers, best first. Results in the same tier keep server order.
const (
	tierExact = iota
	tierPrefix
	tierContains
	tierFuzzy
	tierOther
)

// normalize folds a query or name for comparison
func normalize(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}

// matchTier classifies how well name matches query
func matchTier(name, query string) int {
	name, query = normalize(name), normalize(query)
	switch {
	case name == query:
		return tierExact
	case strings.HasPrefix(name, query):
		return tierPrefix
	case strings.Contains(name, query):
		return tierContains
	case fuzzy.MatchNormalizedFold(query, name):
		return tierFuzzy
	default:
		return tierOther
	}
}

// bestTier returns the best tier among several names for one result
func bestTier(query string, names ...string) int {
	best := tierOther
	for _, n := range names {
		if n == "" {
			continue
		}
		best = min(best, matchTier(n, query))
	}
	return best
}

// rankStable orders results by tier without disturbing server order within
// a tier.
func rankStable(results []Result, query string) {
	slices.SortStableFunc(results, func(a, b Result) int {
		return cmp.Compare(a.tier(query), b.tier(query))
	})
}
