package ebay

import (
	"math"
	"strings"
	"testing"

	"github.com/samwhite/cardscout/internal/types"
)

const binResultsPage = `
<html><body>
<ul class="srp-results">
  <li class="s-card" id="item1a2b3c4d">
    <a class="s-card__link" href="https://www.ebay.com/itm/111222333?hash=abc">
      <span class="s-card__title">Luka Doncic 2018 Prizm Silver PSA 10</span>
    </a>
    <span class="s-card__price">$120.50</span>
    <div class="s-card__attribute-row">+$4.99 shipping</div>
  </li>
  <li class="s-card" id="item5e6f7a8b">
    <a class="s-card__link" href="https://www.ebay.com/itm/444555666">
      <span class="s-card__title">Luka Doncic Prizm Base Lot</span>
    </a>
    <span class="s-card__price">$35.00</span>
    <div class="s-card__attribute-row">Free shipping</div>
  </li>
  <li class="s-card">
    <span class="s-card__title">Shop on eBay</span>
    <span class="s-card__price">$20.00</span>
  </li>
  <li class="s-card">
    <span class="s-card__title">No price card</span>
  </li>
</ul>
</body></html>`

const auctionResultsPage = `
<html><body>
<ul class="srp-results">
  <li class="s-card" id="item99aa88bb">
    <a class="s-card__link" href="https://www.ebay.com/itm/777888999">
      <span class="s-card__title">Wembanyama Select Rookie /49</span>
    </a>
    <span class="s-card__price">$41.00</span>
    <div class="s-card__attribute-row">2 bids</div>
    <div class="s-card__attribute-row">5h 30m left</div>
    <div class="s-card__attribute-row">+$5.00 shipping</div>
  </li>
</ul>
</body></html>`

func TestParseSearchResultsFixedPrice(t *testing.T) {
	listings, err := ParseSearchResults(binResultsPage, types.FixedPrice)
	if err != nil {
		t.Fatalf("ParseSearchResults() error = %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings (placeholder and priceless cards skipped), got %d", len(listings))
	}

	first := listings[0]
	if first.ID != "1a2b3c4d" {
		t.Errorf("expected id from li attribute, got %q", first.ID)
	}
	if first.Title != "Luka Doncic 2018 Prizm Silver PSA 10" {
		t.Errorf("unexpected title %q", first.Title)
	}
	if first.Price != 120.50 {
		t.Errorf("expected price 120.50, got %v", first.Price)
	}
	if first.Shipping != 4.99 {
		t.Errorf("expected shipping 4.99, got %v", first.Shipping)
	}
	if math.Abs(first.TotalPrice-125.49) > 1e-9 {
		t.Errorf("expected total 125.49, got %v", first.TotalPrice)
	}
	if first.SaleType != types.FixedPrice {
		t.Errorf("unexpected sale type %v", first.SaleType)
	}

	second := listings[1]
	if second.Shipping != 0 {
		t.Errorf("expected free shipping to parse as 0, got %v", second.Shipping)
	}
	if second.TotalPrice != 35.00 {
		t.Errorf("expected total 35.00, got %v", second.TotalPrice)
	}
}

func TestParseSearchResultsAuction(t *testing.T) {
	listings, err := ParseSearchResults(auctionResultsPage, types.Auction)
	if err != nil {
		t.Fatalf("ParseSearchResults() error = %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}

	l := listings[0]
	if l.BidCount != 2 {
		t.Errorf("expected 2 bids, got %d", l.BidCount)
	}
	if l.HoursRemaining == nil {
		t.Fatal("expected hours remaining to be parsed")
	}
	if math.Abs(*l.HoursRemaining-5.5) > 1e-9 {
		t.Errorf("expected 5.5 hours remaining, got %v", *l.HoursRemaining)
	}
}

func TestCardIDFallsBackToLink(t *testing.T) {
	page := `
<ul class="srp-results">
  <li class="s-card">
    <a class="s-card__link" href="https://www.ebay.com/itm/123456789012?var=0">
      <span class="s-card__title">Some Card</span>
    </a>
    <span class="s-card__price">$10.00</span>
  </li>
</ul>`
	listings, err := ParseSearchResults(page, types.FixedPrice)
	if err != nil {
		t.Fatalf("ParseSearchResults() error = %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	if listings[0].ID != "123456789012" {
		t.Errorf("expected id from item link, got %q", listings[0].ID)
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		text string
		want float64
		ok   bool
	}{
		{"$1,234.56", 1234.56, true},
		{"$12.00 to $18.00", 12.00, true},
		{"$45", 45, true},
		{"AU $30.00", 30, true},
		{"see details", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePrice(tt.text)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParsePrice(%q) = (%v, %v), want (%v, %v)", tt.text, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseTimeLeft(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"2d 3h left", 51},
		{"5h 30m left", 5.5},
		{"54m left", 0.9},
		{"1d left", 24},
	}
	for _, tt := range tests {
		got := ParseTimeLeft(tt.text)
		if got == nil {
			t.Errorf("ParseTimeLeft(%q) = nil, want %v", tt.text, tt.want)
			continue
		}
		if math.Abs(*got-tt.want) > 1e-9 {
			t.Errorf("ParseTimeLeft(%q) = %v, want %v", tt.text, *got, tt.want)
		}
	}

	if got := ParseTimeLeft("Located in United States"); got != nil {
		t.Errorf("expected nil for text with no countdown, got %v", *got)
	}
}

func TestParseBidCount(t *testing.T) {
	if got := ParseBidCount("7 bids"); got != 7 {
		t.Errorf("ParseBidCount(\"7 bids\") = %d, want 7", got)
	}
	if got := ParseBidCount("1 bid"); got != 1 {
		t.Errorf("ParseBidCount(\"1 bid\") = %d, want 1", got)
	}
	if got := ParseBidCount("Buy It Now"); got != -1 {
		t.Errorf("ParseBidCount without bids = %d, want -1", got)
	}
}

func TestParseSoldPricesCapsSamples(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`<ul class="srp-results">`)
	for i := 0; i < 15; i++ {
		sb.WriteString(`<li class="s-card"><span class="s-card__title">Card</span><span class="s-card__price">$10.00</span></li>`)
	}
	sb.WriteString(`</ul>`)

	prices, err := ParseSoldPrices(sb.String())
	if err != nil {
		t.Fatalf("ParseSoldPrices() error = %v", err)
	}
	if len(prices) != maxSoldSamples {
		t.Errorf("expected %d prices, got %d", maxSoldSamples, len(prices))
	}
}

func TestBuildSearchURL(t *testing.T) {
	u := BuildSearchURL("luka doncic prizm -lot", types.FixedPrice)
	for _, want := range []string{"_nkw=luka+doncic+prizm+-lot", "LH_BIN=1", "_sop=10"} {
		if !strings.Contains(u, want) {
			t.Errorf("expected %q in %q", want, u)
		}
	}

	u = BuildSearchURL("wembanyama", types.Auction)
	if !strings.Contains(u, "LH_Auction=1") {
		t.Errorf("expected auction filter in %q", u)
	}
	if strings.Contains(u, "LH_BIN") {
		t.Errorf("did not expect BIN filter in %q", u)
	}
}

func TestBuildSoldURL(t *testing.T) {
	u := BuildSoldURL("luka doncic psa 10")
	for _, want := range []string{"LH_Sold=1", "LH_Complete=1", "_nkw=luka+doncic+psa+10"} {
		if !strings.Contains(u, want) {
			t.Errorf("expected %q in %q", want, u)
		}
	}
}
