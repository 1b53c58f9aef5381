/*
Package tiers maps numbered-card print runs to price ceilings.

A numbered card encodes its print run as a "/N" fraction in the title
(e.g. "Refractor /75"). Watchlist entries for numbered cards carry an
ordered list of contiguous print-run ranges, each with its own ceiling.
*/
package tiers

import (
	"regexp"
	"strconv"
)

// Tier is one inclusive print-run range with its price ceiling.
type Tier struct {
	Min   int     `json:"min"`
	Max   int     `json:"max"`
	Price float64 `json:"price"`
}

var printRunRe = regexp.MustCompile(`/(\d+)`)

// ExtractPrintRun finds every "/digits" substring in the title and returns
// the minimum value, the rarest run mentioned. Sellers often list the card
// number alongside ("Card #136 /299"), and the "#136" form is ignored here.
// Returns false when the title carries no print run at all.
func ExtractPrintRun(title string) (int, bool) {
	matches := printRunRe.FindAllStringSubmatch(title, -1)
	if len(matches) == 0 {
		return 0, false
	}

	min := -1
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if min < 0 || n < min {
			min = n
		}
	}
	if min < 0 {
		return 0, false
	}
	return min, true
}

// Resolve returns the ceiling of the first tier whose range contains n.
// First match wins; overlapping tiers are the caller's responsibility and
// are never disambiguated here. The second return is false when no tier
// matches, in which case the listing is skipped.
func Resolve(tiers []Tier, n int) (float64, bool) {
	for _, t := range tiers {
		if n >= t.Min && n <= t.Max {
			return t.Price, true
		}
	}
	return 0, false
}

// Match is Resolve returning the whole tier, for callers that need the
// range itself (sold-price keys are derived per tier, not per print run).
func Match(tiers []Tier, n int) (Tier, bool) {
	for _, t := range tiers {
		if n >= t.Min && n <= t.Max {
			return t, true
		}
	}
	return Tier{}, false
}
