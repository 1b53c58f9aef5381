/*
Package ebay scrapes eBay search result pages into Listing records.

Pages are rendered in a real headless Chrome (the result grid is built by
JavaScript and plain HTTP gets are served a bot wall), then parsed from the
rendered HTML. One browser tab is reused for every search in a scan;
serializing page loads through it keeps the session looking human.
*/
package ebay

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/samwhite/cardscout/internal/types"
)

const (
	searchBaseURL  = "https://www.ebay.com/sch/i.html"
	defaultTimeout = 45 * time.Second

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
)

// Config controls the browser session.
type Config struct {
	ChromeBin   string        // explicit browser binary; empty means autodetect
	PageTimeout time.Duration // per-page budget; zero means the default
}

// Client is the scraping collaborator handed to the scan. It is not safe
// for concurrent use; the whole point is one serialized session.
type Client struct {
	ctx     context.Context
	cancels []context.CancelFunc
	timeout time.Duration
}

// NewClient starts a headless browser session.
func NewClient(cfg Config) (*Client, error) {
	chromeBin := cfg.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	log.Printf("Using browser binary: %s", orAuto(chromeBin))

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
		chromedp.WindowSize(1920, 1080),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	// One tab for the whole scan; suppress chromedp log noise.
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	timeout := cfg.PageTimeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		ctx:     tabCtx,
		cancels: []context.CancelFunc{cancelTab, cancelAlloc},
		timeout: timeout,
	}, nil
}

// Close shuts the browser down.
func (c *Client) Close() {
	for _, cancel := range c.cancels {
		cancel()
	}
}

// Search renders one result page and returns its parsed listings.
func (c *Client) Search(ctx context.Context, query string, saleType types.SaleType) ([]types.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pageURL := BuildSearchURL(query, saleType)
	rendered, err := c.renderPage(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to render results for %q: %w", query, err)
	}

	listings, err := ParseSearchResults(rendered, saleType)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results for %q: %w", query, err)
	}
	log.Printf("Found %d raw listing(s) for %q (%s).", len(listings), query, saleType)
	return listings, nil
}

// FetchSoldEstimate renders the sold-and-completed results for a derived
// cache key and averages the sale prices. Returns (nil, nil) when the
// search yields nothing; the deal simply goes unannotated.
func (c *Client) FetchSoldEstimate(key string) (*types.SoldEstimate, error) {
	pageURL := BuildSoldURL(key)
	rendered, err := c.renderPage(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to render sold results for %q: %w", key, err)
	}

	prices, err := ParseSoldPrices(rendered)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sold results for %q: %w", key, err)
	}
	if len(prices) == 0 {
		return nil, nil
	}

	sum := 0.0
	for _, p := range prices {
		sum += p
	}
	return &types.SoldEstimate{
		AveragePrice: sum / float64(len(prices)),
		SampleSize:   len(prices),
	}, nil
}

func (c *Client) renderPage(pageURL string) (string, error) {
	runCtx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()

	var rendered string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady(".srp-results", chromedp.ByQuery),
		chromedp.Sleep(2*time.Second), // let the grid finish rendering
		chromedp.OuterHTML("html", &rendered, chromedp.ByQuery),
	)
	if err != nil {
		return "", err
	}
	return rendered, nil
}

// BuildSearchURL builds a newest-first search URL restricted to one sale
// type.
func BuildSearchURL(query string, saleType types.SaleType) string {
	params := url.Values{
		"_nkw": {query},
		"_sop": {"10"}, // newly listed first
	}
	if saleType == types.Auction {
		params.Set("LH_Auction", "1")
	} else {
		params.Set("LH_BIN", "1")
	}
	return searchBaseURL + "?" + params.Encode()
}

// BuildSoldURL builds a sold-and-completed listings URL for a sold-price
// cache key. The key's "-term" exclusion tokens are native search syntax.
func BuildSoldURL(key string) string {
	params := url.Values{
		"_nkw":        {key},
		"LH_Sold":     {"1"},
		"LH_Complete": {"1"},
	}
	return searchBaseURL + "?" + params.Encode()
}

func findChromeBinary() string {
	for _, name := range []string{
		"google-chrome",
		"google-chrome-stable",
		"chromium",
		"chromium-browser",
	} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

func orAuto(s string) string {
	if s == "" {
		return "(chromedp default)"
	}
	return s
}
