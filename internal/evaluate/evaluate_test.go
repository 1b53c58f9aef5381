package evaluate

import (
	"testing"

	"github.com/samwhite/cardscout/internal/query"
	"github.com/samwhite/cardscout/internal/tiers"
	"github.com/samwhite/cardscout/internal/types"
)

func hours(h float64) *float64 { return &h }

func binListing(title string, price float64) types.Listing {
	return types.Listing{
		ID:       "123",
		Title:    title,
		Price:    price,
		SaleType: types.FixedPrice,
	}
}

func auctionListing(title string, price float64, bids int, hoursLeft *float64) types.Listing {
	return types.Listing{
		ID:             "456",
		Title:          title,
		Price:          price,
		SaleType:       types.Auction,
		BidCount:       bids,
		HoursRemaining: hoursLeft,
	}
}

func TestFlatFixedPrice(t *testing.T) {
	e := New()
	q := query.Parse("luka doncic prizm")

	tests := []struct {
		name    string
		listing types.Listing
		ceiling float64
		want    bool
	}{
		{"under ceiling", binListing("Luka Doncic Prizm Silver", 35), 40, true},
		{"at ceiling", binListing("Luka Doncic Prizm Silver", 40), 40, true},
		{"over ceiling", binListing("Luka Doncic Prizm Silver", 41), 40, false},
		{"title mismatch", binListing("Luka Doncic Select", 35), 40, false},
	}

	for _, tt := range tests {
		_, got := e.Flat(tt.listing, q, tt.ceiling)
		if got != tt.want {
			t.Errorf("%s: accepted=%v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFlatFixedPriceHasNoQualityFlag(t *testing.T) {
	e := New()
	q := query.Parse("luka")
	deal, ok := e.Flat(binListing("Luka Doncic", 1), q, 100)
	if !ok {
		t.Fatal("listing should qualify")
	}
	if deal.IsDeal {
		t.Error("fixed-price deals are uniformly reportable, never flagged")
	}
}

func TestFlatAuction(t *testing.T) {
	e := New()
	q := query.Parse("harper")

	tests := []struct {
		name    string
		listing types.Listing
		ceiling float64
		want    bool
	}{
		{"qualifies", auctionListing("Dylan Harper", 20, 1, hours(4)), 40, true},
		{"at ceiling rejected", auctionListing("Dylan Harper", 40, 1, hours(4)), 40, false},
		{"too far out", auctionListing("Dylan Harper", 20, 1, hours(13)), 40, false},
		{"unknown time left", auctionListing("Dylan Harper", 20, 1, nil), 40, false},
		{"boundary hours", auctionListing("Dylan Harper", 20, 1, hours(12)), 40, true},
	}

	for _, tt := range tests {
		_, got := e.Flat(tt.listing, q, tt.ceiling)
		if got != tt.want {
			t.Errorf("%s: accepted=%v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAuctionDealFlag(t *testing.T) {
	e := New()
	q := query.Parse("harper")

	deal, ok := e.Flat(auctionListing("Dylan Harper", 19, 2, hours(3)), q, 40)
	if !ok || !deal.IsDeal {
		t.Errorf("2 bids at under half the ceiling should flag a deal (ok=%v, IsDeal=%v)", ok, deal.IsDeal)
	}

	deal, ok = e.Flat(auctionListing("Dylan Harper", 19, 3, hours(3)), q, 40)
	if !ok || deal.IsDeal {
		t.Errorf("3 bids should not flag a deal (ok=%v, IsDeal=%v)", ok, deal.IsDeal)
	}

	deal, ok = e.Flat(auctionListing("Dylan Harper", 20, 1, hours(3)), q, 40)
	if !ok || deal.IsDeal {
		t.Errorf("price at half the ceiling should not flag a deal (ok=%v, IsDeal=%v)", ok, deal.IsDeal)
	}
}

func TestTieredFixedPrice(t *testing.T) {
	e := New()
	q := query.Parse("dylan harper refractor")
	ts := []tiers.Tier{
		{Min: 1, Max: 24, Price: 150},
		{Min: 25, Max: 74, Price: 60},
	}

	deal, ok := e.Tiered(binListing("Dylan Harper Refractor /50", 55), q, ts)
	if !ok {
		t.Fatal("listing in the 25-74 tier at $55 should qualify")
	}
	if deal.Numbered != 50 || deal.Ceiling != 60 {
		t.Errorf("deal annotations: Numbered=%d Ceiling=%.2f; want 50, 60", deal.Numbered, deal.Ceiling)
	}

	if _, ok := e.Tiered(binListing("Dylan Harper Refractor /50", 65), q, ts); ok {
		t.Error("price over the tier ceiling should be rejected")
	}
	if _, ok := e.Tiered(binListing("Dylan Harper Refractor /99", 5), q, ts); ok {
		t.Error("print run outside every tier should be rejected")
	}
	if _, ok := e.Tiered(binListing("Dylan Harper Refractor", 5), q, ts); ok {
		t.Error("title without a print run is not a numbered card")
	}
}

func TestTieredAuctionUsesTierCeiling(t *testing.T) {
	e := New()
	q := query.Parse("harper")
	ts := []tiers.Tier{{Min: 1, Max: 99, Price: 60}}

	deal, ok := e.Tiered(auctionListing("Dylan Harper /75", 25, 0, hours(2)), q, ts)
	if !ok || !deal.IsDeal {
		t.Errorf("auction under half the tier price with 0 bids should be a deal (ok=%v, IsDeal=%v)", ok, deal.IsDeal)
	}

	deal, ok = e.Tiered(auctionListing("Dylan Harper /75", 45, 0, hours(2)), q, ts)
	if !ok || deal.IsDeal {
		t.Errorf("auction above half the tier price qualifies but is not flagged (ok=%v, IsDeal=%v)", ok, deal.IsDeal)
	}
}

func TestDeduper(t *testing.T) {
	d := NewDeduper()

	a := types.Listing{ID: "111", Link: "https://x/itm/111"}
	if !d.Admit(a) {
		t.Error("first sighting should be admitted")
	}
	if d.Admit(a) {
		t.Error("repeat id should be suppressed")
	}

	b := types.Listing{Link: "https://x/itm/222"}
	if !d.Admit(b) {
		t.Error("first link sighting should be admitted")
	}
	if d.Admit(b) {
		t.Error("repeat link should be suppressed")
	}

	if !d.Admit(types.Listing{}) || !d.Admit(types.Listing{}) {
		t.Error("listings without id or link are always admitted")
	}
}
