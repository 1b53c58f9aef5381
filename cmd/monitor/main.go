package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/samwhite/cardscout/internal/ai"
	"github.com/samwhite/cardscout/internal/config"
	"github.com/samwhite/cardscout/internal/dealstore"
	"github.com/samwhite/cardscout/internal/ebay"
	"github.com/samwhite/cardscout/internal/evaluate"
	"github.com/samwhite/cardscout/internal/notify"
	"github.com/samwhite/cardscout/internal/quiet"
	"github.com/samwhite/cardscout/internal/scan"
	"github.com/samwhite/cardscout/internal/seen"
	"github.com/samwhite/cardscout/internal/soldprice"
	"github.com/samwhite/cardscout/internal/types"
	"github.com/samwhite/cardscout/internal/watchlist"
)

var (
	watchlistPath = flag.String("watchlist", "", "(-w) Path to the watchlist file (default: WATCHLIST_PATH or watchlist.json)")
	runOnce       = flag.Bool("once", false, "(-o) Run a single scan and exit instead of looping")
	intervalMin   = flag.Int("interval", 0, "Minutes between scans when looping (default: SCAN_INTERVAL_MIN)")
	dryRun        = flag.Bool("dry-run", false, "Evaluate and print deals without sending email or archiving")
)

func init() {
	flag.StringVar(watchlistPath, "w", "", "(-w) Path to the watchlist file (shorthand)")
	flag.BoolVar(runOnce, "o", false, "(-o) Run a single scan and exit (shorthand)")

	flag.Usage = func() {
		flagSet := flag.CommandLine
		fmt.Printf("Usage of %s:\n", "monitor")

		order := []string{
			"watchlist",
			"once",
			"interval",
			"dry-run",
		}

		for _, name := range order {
			f := flagSet.Lookup(name)
			if f != nil {
				fmt.Printf("  -%s\n", f.Name)
				fmt.Printf("    %s\n", f.Usage)
			}
		}
	}
}

func main() {
	flag.Parse()
	cfg := config.Load()

	wlPath := *watchlistPath
	if wlPath == "" {
		wlPath = cfg.WatchlistPath
	}
	wl, err := watchlist.Load(wlPath)
	if err != nil {
		fmt.Printf("Fatal error loading watchlist: %v\n", err)
		os.Exit(1)
	}
	log.Printf("Loaded watchlist with %d owner(s) from %s.", len(wl), wlPath)

	seenStore, err := seen.NewStore(cfg.SeenPath())
	if err != nil {
		fmt.Printf("Fatal error setting up seen state: %v\n", err)
		os.Exit(1)
	}

	queue, err := quiet.NewQueue(cfg.QueuePath(), cfg.Timezone,
		quiet.Window{Start: cfg.QuietStartHour, End: cfg.QuietEndHour})
	if err != nil {
		fmt.Printf("Fatal error setting up notification queue: %v\n", err)
		os.Exit(1)
	}

	browser, err := ebay.NewClient(ebay.Config{ChromeBin: cfg.ChromeBin})
	if err != nil {
		fmt.Printf("Fatal error starting browser: %v\n", err)
		os.Exit(1)
	}
	defer browser.Close()

	soldCache, err := soldprice.NewCache(cfg.SoldCachePath(), browser.FetchSoldEstimate)
	if err != nil {
		fmt.Printf("Fatal error setting up sold-price cache: %v\n", err)
		os.Exit(1)
	}

	sender := notify.NewEmailSender(notify.EmailConfig{
		SMTPServer: cfg.SMTPHost,
		SMTPPort:   cfg.SMTPPort,
		SMTPUser:   cfg.SMTPUser,
		SMTPPass:   cfg.SMTPPassword,
		ToEmail:    cfg.ToEmail,
		FromEmail:  cfg.FromEmail,
	}, *dryRun)
	if !sender.Enabled() {
		log.Println("Email delivery disabled; deals will only be printed to the console.")
	}

	scanner := &scan.Scanner{
		Source:     browser,
		Seen:       seenStore,
		Sold:       soldCache,
		Queue:      queue,
		Eval:       evaluate.New(),
		Renderer:   notify.NewHTMLEmailRenderer(),
		Sender:     sender,
		CtlBaseURL: cfg.CtlBaseURL,
		Delay:      queryDelay(cfg.QueryDelaySec),
	}

	if dsn := cfg.DSN(); dsn != "" && !*dryRun {
		store, err := dealstore.NewPostgresWriter(dsn)
		if err != nil {
			fmt.Printf("Fatal error connecting to Postgres: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		scanner.Sink = store
		log.Println("Deal archive enabled.")
	}

	if cfg.GeminiAPIKey != "" {
		scanner.Brief = briefFunc(cfg.GeminiAPIKey, cfg.GeminiModel)
	}

	interval := *intervalMin
	if interval == 0 {
		interval = cfg.ScanIntervalMin
	}

	ctx := context.Background()
	for {
		summary, err := scanner.Run(ctx, wl)
		if err != nil {
			fmt.Printf("Fatal error during scan: %v\n", err)
			os.Exit(1)
		}
		log.Printf("Scan complete: %d owner(s), %d quer(ies), %d listing(s), %d deal(s), %d sent, %d queued, %d flushed.",
			summary.Owners, summary.Queries, summary.Listings, summary.Deals,
			summary.Sent, summary.Queued, summary.Flushed)

		if *runOnce {
			return
		}
		log.Printf("Sleeping %d minute(s) until the next scan.", interval)
		time.Sleep(time.Duration(interval) * time.Minute)
	}
}

// queryDelay spaces out searches so the serialized browser session does
// not hammer the site at machine speed. A little jitter on top of the
// base keeps the cadence from looking clockwork.
func queryDelay(baseSec int) func() {
	if baseSec <= 0 {
		return nil
	}
	return func() {
		jitter := time.Duration(rand.Intn(2000)) * time.Millisecond
		time.Sleep(time.Duration(baseSec)*time.Second + jitter)
	}
}

func briefFunc(apiKey, model string) scan.BriefFunc {
	return func(owner string, deals []types.Deal) *ai.DealBrief {
		var sb strings.Builder
		for _, d := range deals {
			fmt.Fprintf(&sb, "- %s: $%.2f total (limit $%.2f, %s)",
				d.Title, d.TotalPrice, d.Ceiling, d.SaleType)
			if d.SoldEstimate != nil {
				fmt.Fprintf(&sb, ", recent sold avg $%.2f over %d sale(s)",
					d.SoldEstimate.AveragePrice, d.SoldEstimate.SampleSize)
			}
			sb.WriteString("\n")
		}

		brief, err := ai.GenerateBrief(sb.String(), apiKey, model)
		if err != nil {
			log.Printf("Brief generation failed for %s: %v. Sending without it.", owner, err)
			return nil
		}
		return brief
	}
}
