package types

// SaleType distinguishes how a listing can be bought.
type SaleType int

const (
	FixedPrice SaleType = iota
	Auction
)

func (s SaleType) String() string {
	if s == Auction {
		return "auction"
	}
	return "fixed-price"
}

// Listing is one observed marketplace item, produced fresh each scan by the
// scraping layer. The evaluator never mutates a Listing; derived fields live
// on Deal.
type Listing struct {
	ID         string // marketplace item id; empty for malformed or placeholder entries
	Title      string
	Price      float64
	Shipping   float64
	TotalPrice float64
	Link       string
	SaleType   SaleType

	// Auction-only fields.
	BidCount       int
	HoursRemaining *float64 // nil when the time-left text was unparseable
}

// SoldEstimate is a recent-average sale price for comparable cards.
type SoldEstimate struct {
	AveragePrice float64
	SampleSize   int
}

// Deal is a listing that passed evaluation for one watchlist search,
// annotated with the derived fields the report shows.
type Deal struct {
	Listing
	Owner    string
	Query    string
	Numbered int     // print run extracted from the title, 0 for flat searches
	Ceiling  float64 // the price limit this listing beat
	IsDeal   bool    // auction quality flag: low bids well under the ceiling

	SoldEstimate *SoldEstimate // nil when unavailable or not requested
}
