/*
Package evaluate contains the deal classifier: the rules that decide whether
an observed listing is worth reporting for a watchlist search.

Fixed-price listings qualify at or under the ceiling and are the ones the
seen-state store later suppresses. Auctions qualify under stricter rules
(price can still rise, so the ceiling is exclusive and the auction must be
closing soon) and are re-reported every scan while they qualify.
*/
package evaluate

import (
	"github.com/samwhite/cardscout/internal/query"
	"github.com/samwhite/cardscout/internal/tiers"
	"github.com/samwhite/cardscout/internal/types"
)

// AuctionPolicy holds the auction acceptance and deal-quality thresholds.
// These are policy values, not constants: the right cut-offs are a matter
// of taste and the defaults just encode the ones that worked.
type AuctionPolicy struct {
	// MaxHoursLeft rejects auctions ending further out than this; a price
	// twelve hours before close still says something, a price five days
	// out says nothing.
	MaxHoursLeft float64

	// MaxBidsForDeal and DealFraction flag an auction as a standout deal:
	// at most this many bids and a current price under this fraction of
	// the ceiling.
	MaxBidsForDeal int
	DealFraction   float64
}

// DefaultAuctionPolicy returns the standard thresholds.
func DefaultAuctionPolicy() AuctionPolicy {
	return AuctionPolicy{
		MaxHoursLeft:   12,
		MaxBidsForDeal: 2,
		DealFraction:   0.5,
	}
}

// Evaluator classifies listings against one search's query and price rule.
type Evaluator struct {
	Policy AuctionPolicy
}

// New returns an Evaluator with the default auction policy.
func New() Evaluator {
	return Evaluator{Policy: DefaultAuctionPolicy()}
}

// Flat classifies a listing against a flat price ceiling.
func (e Evaluator) Flat(l types.Listing, q query.Query, ceiling float64) (types.Deal, bool) {
	if !q.Matches(l.Title) {
		return types.Deal{}, false
	}
	return e.classify(l, ceiling, 0)
}

// Tiered classifies a numbered-card listing: the title must carry a print
// run and the run must fall into one of the supplied tiers, whose price
// becomes the ceiling. Listings without a print run are not numbered cards
// and never qualify here.
func (e Evaluator) Tiered(l types.Listing, q query.Query, ts []tiers.Tier) (types.Deal, bool) {
	if !q.Matches(l.Title) {
		return types.Deal{}, false
	}

	n, ok := tiers.ExtractPrintRun(l.Title)
	if !ok {
		return types.Deal{}, false
	}
	ceiling, ok := tiers.Resolve(ts, n)
	if !ok {
		return types.Deal{}, false
	}

	return e.classify(l, ceiling, n)
}

func (e Evaluator) classify(l types.Listing, ceiling float64, numbered int) (types.Deal, bool) {
	deal := types.Deal{
		Listing:  l,
		Numbered: numbered,
		Ceiling:  ceiling,
	}

	switch l.SaleType {
	case types.Auction:
		// Exclusive bound: an auction at the ceiling has no headroom left.
		if l.Price >= ceiling {
			return types.Deal{}, false
		}
		if l.HoursRemaining == nil || *l.HoursRemaining > e.Policy.MaxHoursLeft {
			return types.Deal{}, false
		}
		deal.IsDeal = l.BidCount <= e.Policy.MaxBidsForDeal &&
			l.Price < e.Policy.DealFraction*ceiling
		return deal, true

	default:
		if l.Price > ceiling {
			return types.Deal{}, false
		}
		return deal, true
	}
}

// Deduper suppresses repeat listings within one scan. One instance is used
// per query (double-visited result cards) and a second per owner (the same
// item matching two of the owner's queries is attributed to the first).
type Deduper struct {
	seen map[string]bool
}

// NewDeduper returns an empty Deduper.
func NewDeduper() *Deduper {
	return &Deduper{seen: make(map[string]bool)}
}

// Admit reports whether the listing is the first with its identity (item id,
// falling back to link) seen by this Deduper. Listings with neither are
// always admitted; there is nothing to key them by.
func (d *Deduper) Admit(l types.Listing) bool {
	key := l.ID
	if key == "" {
		key = l.Link
	}
	if key == "" {
		return true
	}
	if d.seen[key] {
		return false
	}
	d.seen[key] = true
	return true
}
