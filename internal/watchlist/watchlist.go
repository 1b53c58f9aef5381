/*
Package watchlist loads the user-authored watchlist configuration.

Each entry is keyed by an owner (the player whose cards are tracked) and
holds an optional numbered-card section plus any number of flat-ceiling
searches. The flat-versus-tiered distinction is resolved once at load time
into a PriceRule variant, so the scan never inspects raw config again.
*/
package watchlist

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/samwhite/cardscout/internal/query"
	"github.com/samwhite/cardscout/internal/tiers"
)

// PriceRule is the pricing side of one search: a flat ceiling or a tier
// set for numbered cards. The two variants below are the only
// implementations.
type PriceRule interface {
	priceRule()
}

// Flat caps acceptable prices at a single ceiling.
type Flat struct {
	Ceiling float64
}

// Tiered resolves the ceiling from the card's print run.
type Tiered struct {
	Tiers []tiers.Tier
}

func (Flat) priceRule()   {}
func (Tiered) priceRule() {}

// Section is one search belonging to an owner.
type Section struct {
	Query      query.Query
	Rule       PriceRule
	SearchSold bool
}

// Entry is one owner's watchlist entry. The numbered section, when
// present, is always first in Sections.
type Entry struct {
	Owner    string
	Sections []Section
}

// Watchlist is the full configuration, ordered by owner name so scans are
// deterministic.
type Watchlist []Entry

type rawSection struct {
	Query      string       `json:"query"`
	Price      float64      `json:"price"`
	Tiers      []tiers.Tier `json:"tiers"`
	SearchSold bool         `json:"searchSold"`
}

type rawEntry struct {
	Numbered *rawSection  `json:"numbered"`
	Searches []rawSection `json:"searches"`
}

// Load reads and validates the watchlist file.
func Load(path string) (Watchlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlist %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a Watchlist from raw JSON.
func Parse(data []byte) (Watchlist, error) {
	var raw map[string]rawEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse watchlist JSON: %w", err)
	}

	owners := make([]string, 0, len(raw))
	for owner := range raw {
		owners = append(owners, owner)
	}
	sort.Strings(owners)

	var wl Watchlist
	for _, owner := range owners {
		re := raw[owner]
		entry := Entry{Owner: owner}

		if re.Numbered != nil {
			sec, err := buildTiered(*re.Numbered)
			if err != nil {
				return nil, fmt.Errorf("watchlist entry %q numbered section: %w", owner, err)
			}
			entry.Sections = append(entry.Sections, sec)
		}

		for i, rs := range re.Searches {
			sec, err := buildFlat(rs)
			if err != nil {
				return nil, fmt.Errorf("watchlist entry %q search %d: %w", owner, i+1, err)
			}
			entry.Sections = append(entry.Sections, sec)
		}

		if len(entry.Sections) == 0 {
			return nil, fmt.Errorf("watchlist entry %q has no searches", owner)
		}
		wl = append(wl, entry)
	}

	return wl, nil
}

func buildFlat(rs rawSection) (Section, error) {
	if rs.Query == "" {
		return Section{}, fmt.Errorf("query is required")
	}
	if rs.Price <= 0 {
		return Section{}, fmt.Errorf("price must be positive, got %.2f", rs.Price)
	}
	return Section{
		Query:      query.Parse(rs.Query),
		Rule:       Flat{Ceiling: rs.Price},
		SearchSold: rs.SearchSold,
	}, nil
}

func buildTiered(rs rawSection) (Section, error) {
	if rs.Query == "" {
		return Section{}, fmt.Errorf("query is required")
	}
	if len(rs.Tiers) == 0 {
		return Section{}, fmt.Errorf("at least one tier is required")
	}
	for i, t := range rs.Tiers {
		if t.Min > t.Max {
			return Section{}, fmt.Errorf("tier %d: min %d exceeds max %d", i+1, t.Min, t.Max)
		}
		if t.Price <= 0 {
			return Section{}, fmt.Errorf("tier %d: price must be positive, got %.2f", i+1, t.Price)
		}
	}
	return Section{
		Query:      query.Parse(rs.Query),
		Rule:       Tiered{Tiers: rs.Tiers},
		SearchSold: rs.SearchSold,
	}, nil
}
