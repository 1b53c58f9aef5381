package soldprice

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samwhite/cardscout/internal/tiers"
)

const maxKeyTokens = 10

// Filler and boilerplate that varies between listings of the same card and
// only fragments the cache.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "of": true,
	"with": true, "for": true, "in": true,
	"card": true, "cards": true, "lot": true, "new": true, "hot": true,
	"rare": true, "mint": true, "nm": true, "gem": true, "invest": true,
	"look": true, "nice": true, "beautiful": true, "wow": true,
	"ssp": true, "pop": true, "graded": true, "grade": true,
}

// gradingServices get excluded from ungraded lookups so raw-card estimates
// are not polluted by high-value graded sales.
var gradingServices = []string{"psa", "bgs", "sgc", "cgc"}

var (
	printRunTokenRe = regexp.MustCompile(`^/\d+$`)
	cardNumTokenRe  = regexp.MustCompile(`^#?[a-z]{0,4}-?\d+[a-z]?$`)
	nonAlnumRe      = regexp.MustCompile(`[^a-z0-9]+`)
)

// DeriveKey normalizes a listing descriptor into a cache key that is also
// a usable sold-listings search query. Alphanumeric tokens are kept, stop
// words dropped, print-run ("/75") and card-number ("d-2", "#136") tokens
// kept verbatim, and the result capped at the first significant tokens.
// When the descriptor mentions no grading service, explicit exclusion
// tokens for each service are appended.
func DeriveKey(descriptor string) string {
	lower := strings.ToLower(descriptor)

	var toks []string
	for _, field := range strings.Fields(lower) {
		if len(toks) == maxKeyTokens {
			break
		}
		if printRunTokenRe.MatchString(field) || cardNumTokenRe.MatchString(field) {
			toks = append(toks, field)
			continue
		}
		clean := nonAlnumRe.ReplaceAllString(field, "")
		if clean == "" || stopWords[clean] {
			continue
		}
		toks = append(toks, clean)
	}

	if !mentionsGrading(toks) {
		for _, svc := range gradingServices {
			toks = append(toks, "-"+svc)
		}
	}

	return strings.Join(toks, " ")
}

func mentionsGrading(toks []string) bool {
	for _, tok := range toks {
		for _, svc := range gradingServices {
			if tok == svc {
				return true
			}
		}
	}
	return false
}

// canonicalRuns are the print-run values that actually occur in the wild.
// Tiered lookups snap to one of these so the cache is keyed per tier
// instead of exploding one entry per distinct numbered card.
var canonicalRuns = []int{5, 10, 25, 50, 75, 99, 149, 199, 249, 299, 399, 499}

// TierKey derives the sold-price key for a tiered search: the query plus a
// canonical print run inside the matched tier's range, not the listing's
// own (possibly unique) run. Falls back to the tier minimum when no
// canonical run fits.
func TierKey(queryPlain string, t tiers.Tier) string {
	run := t.Min
	for _, c := range canonicalRuns {
		if c >= t.Min && c <= t.Max {
			run = c
			break
		}
	}
	return DeriveKey(fmt.Sprintf("%s /%d", queryPlain, run))
}
