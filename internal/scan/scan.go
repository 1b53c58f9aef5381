/*
Package scan drives one complete pass over the watchlist: search, evaluate,
filter against seen state, annotate with sold-price estimates, and notify.

Evaluation is deliberately sequential. The scraping layer runs one browser
session (parallel page fetches raise the detection risk), which makes the
natural shape of the scan a plain loop: one owner at a time, one query at a
time.
*/
package scan

import (
	"context"
	"log"
	"time"

	"github.com/samwhite/cardscout/internal/ai"
	"github.com/samwhite/cardscout/internal/evaluate"
	"github.com/samwhite/cardscout/internal/notify"
	"github.com/samwhite/cardscout/internal/quiet"
	"github.com/samwhite/cardscout/internal/seen"
	"github.com/samwhite/cardscout/internal/soldprice"
	"github.com/samwhite/cardscout/internal/tiers"
	"github.com/samwhite/cardscout/internal/types"
	"github.com/samwhite/cardscout/internal/watchlist"
)

// Source is the scraping collaborator: it yields raw listings for a query
// and sale type. Search errors are treated as zero results for that query;
// the scan continues.
type Source interface {
	Search(ctx context.Context, query string, saleType types.SaleType) ([]types.Listing, error)
}

// Sender delivers rendered alerts. Implemented by notify.EmailSender.
type Sender interface {
	Send(msg *notify.RenderedMessage) error
	SendPlain(subject, body string) error
}

// DealSink receives every reported deal, e.g. for a Postgres log. Optional.
type DealSink interface {
	Record(deals []types.Deal) error
}

// BriefFunc produces an optional AI summary for an owner's deals. A nil
// return simply omits the brief.
type BriefFunc func(owner string, deals []types.Deal) *ai.DealBrief

// Scanner wires the evaluation core to its collaborators for one scan.
type Scanner struct {
	Source   Source
	Seen     *seen.Store
	Sold     *soldprice.Cache
	Queue    *quiet.Queue
	Eval     evaluate.Evaluator
	Renderer *notify.HTMLEmailRenderer
	Sender   Sender

	Sink  DealSink  // optional
	Brief BriefFunc // optional

	// CtlBaseURL is where the control server lives; hide/clear links in
	// alert emails point at it.
	CtlBaseURL string

	// Delay runs between queries, giving the serialized browser session
	// breathing room. Nil means no delay.
	Delay func()

	now func() time.Time
}

// Summary is what one scan did.
type Summary struct {
	Owners   int
	Queries  int
	Listings int
	Deals    int
	Queued   int
	Sent     int
	Flushed  int
}

// Run executes one scan over the watchlist. Seen state and the sold-price
// cache are persisted before Run returns, regardless of notification
// outcomes.
func (s *Scanner) Run(ctx context.Context, wl watchlist.Watchlist) (*Summary, error) {
	if s.now == nil {
		s.now = time.Now
	}
	summary := &Summary{Owners: len(wl)}

	for _, entry := range wl {
		deals := s.scanOwner(ctx, entry, summary)
		summary.Deals += len(deals)

		if len(deals) > 0 {
			s.report(entry.Owner, deals, summary)
		}
	}

	// The queue flushes on every scan that completes outside quiet hours,
	// even when this scan itself queued nothing.
	summary.Flushed = s.Queue.Flush(s.Sender.SendPlain)

	if err := s.Seen.Save(); err != nil {
		log.Printf("Error saving seen-state: %v", err)
	}
	if err := s.Sold.Save(); err != nil {
		log.Printf("Error saving sold-price cache: %v", err)
	}

	return summary, nil
}

func (s *Scanner) scanOwner(ctx context.Context, entry watchlist.Entry, summary *Summary) []types.Deal {
	ownerDedupe := evaluate.NewDeduper()
	var deals []types.Deal

	for _, sec := range entry.Sections {
		queryDedupe := evaluate.NewDeduper()

		for _, saleType := range []types.SaleType{types.FixedPrice, types.Auction} {
			summary.Queries++

			listings, err := s.Source.Search(ctx, sec.Query.Raw, saleType)
			if err != nil {
				log.Printf("Search failed for %q (%s): %v. Continuing with zero results.",
					sec.Query.Raw, saleType, err)
				continue
			}
			summary.Listings += len(listings)

			for _, l := range listings {
				deal, ok := s.evaluateListing(l, sec)
				if !ok {
					continue
				}
				if !queryDedupe.Admit(l) || !ownerDedupe.Admit(l) {
					continue
				}

				// Fixed-price deals are shown once and then suppressed.
				// Auctions bypass the store: their price and clock change
				// before the next scan.
				if l.SaleType == types.FixedPrice {
					if !s.Seen.IsNew(entry.Owner, l.ID) {
						continue
					}
					s.Seen.MarkSeen(entry.Owner, l.ID)
				}

				deal.Owner = entry.Owner
				deal.Query = sec.Query.Raw
				if sec.SearchSold {
					deal.SoldEstimate = s.soldEstimate(deal, sec)
				}
				deals = append(deals, deal)
			}

			if s.Delay != nil {
				s.Delay()
			}
		}
	}

	return deals
}

func (s *Scanner) evaluateListing(l types.Listing, sec watchlist.Section) (types.Deal, bool) {
	switch rule := sec.Rule.(type) {
	case watchlist.Flat:
		return s.Eval.Flat(l, sec.Query, rule.Ceiling)
	case watchlist.Tiered:
		return s.Eval.Tiered(l, sec.Query, rule.Tiers)
	default:
		return types.Deal{}, false
	}
}

// soldEstimate annotates a deal with a recent-average sale price. Tiered
// deals are keyed by query plus the matched tier's canonical print run, so
// one cache entry covers a whole tier. Flat deals are keyed by the listing
// title itself: the title carries grading and variant detail the query
// omits, and a flat estimate must not conflate those. Failures leave the
// deal unannotated.
func (s *Scanner) soldEstimate(deal types.Deal, sec watchlist.Section) *types.SoldEstimate {
	var key string
	switch rule := sec.Rule.(type) {
	case watchlist.Tiered:
		tier, ok := tiers.Match(rule.Tiers, deal.Numbered)
		if !ok {
			return nil
		}
		key = soldprice.TierKey(sec.Query.Plain(), tier)
	default:
		key = soldprice.DeriveKey(deal.Title)
	}
	return s.Sold.Get(key)
}

func (s *Scanner) report(owner string, deals []types.Deal, summary *Summary) {
	notify.ReportDeals(owner, deals)

	if s.Sink != nil {
		if err := s.Sink.Record(deals); err != nil {
			log.Printf("Error recording deals for %s: %v", owner, err)
		}
	}

	var brief *ai.DealBrief
	if s.Brief != nil {
		brief = s.Brief(owner, deals)
	}

	msg, err := s.Renderer.Render(notify.NotificationData{
		Owner:      owner,
		Deals:      deals,
		Brief:      brief,
		CtlBaseURL: s.CtlBaseURL,
	})
	if err != nil {
		log.Printf("Error rendering alert for %s: %v", owner, err)
		return
	}

	if s.Queue.ShouldQueue(s.now()) {
		if err := s.Queue.Enqueue(msg.Subject, msg.Text); err != nil {
			log.Printf("Error queueing alert for %s: %v", owner, err)
			return
		}
		summary.Queued++
		log.Printf("Quiet hours: queued alert for %s.", owner)
		return
	}

	if err := s.Sender.Send(msg); err != nil {
		// Already logged by the sender; the scan continues and state is
		// still persisted.
		return
	}
	summary.Sent++
}

// SoldKeys derives every sold-price cache key derivable from the
// watchlist, one per sold-enabled section (tiered sections yield one key
// per tier). The control server's refresh action walks these. Tiered keys
// are exactly the keys scans look up. Flat lookups are keyed by each
// listing's own title, which the watchlist cannot anticipate, so warming a
// flat section's query key is best-effort: it helps when a title
// normalizes to the same key as the query and is a no-op otherwise.
func SoldKeys(wl watchlist.Watchlist) []string {
	var keys []string
	for _, entry := range wl {
		for _, sec := range entry.Sections {
			if !sec.SearchSold {
				continue
			}
			switch rule := sec.Rule.(type) {
			case watchlist.Tiered:
				for _, t := range rule.Tiers {
					keys = append(keys, soldprice.TierKey(sec.Query.Plain(), t))
				}
			case watchlist.Flat:
				keys = append(keys, soldprice.DeriveKey(sec.Query.Plain()))
			}
		}
	}
	return keys
}
