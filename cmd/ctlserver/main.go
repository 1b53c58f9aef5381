package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/samwhite/cardscout/internal/config"
	"github.com/samwhite/cardscout/internal/ctl"
	"github.com/samwhite/cardscout/internal/dealstore"
	"github.com/samwhite/cardscout/internal/ebay"
	"github.com/samwhite/cardscout/internal/scan"
	"github.com/samwhite/cardscout/internal/seen"
	"github.com/samwhite/cardscout/internal/soldprice"
	"github.com/samwhite/cardscout/internal/watchlist"
)

var port = flag.Int("port", 0, "(-p) Listen port (default: CTL_PORT)")

func init() {
	flag.IntVar(port, "p", 0, "(-p) Listen port (shorthand)")
}

// The control server runs alongside the monitor and shares its state
// files. Each process persists after its own mutations; last writer wins.
func main() {
	flag.Parse()
	cfg := config.Load()

	seenStore, err := seen.NewStore(cfg.SeenPath())
	if err != nil {
		fmt.Printf("Fatal error setting up seen state: %v\n", err)
		os.Exit(1)
	}

	// Sold-price refreshes need a browser of their own; the monitor's
	// session is not shared across processes.
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

	soldKeys := func() ([]string, error) {
		wl, err := watchlist.Load(cfg.WatchlistPath)
		if err != nil {
			return nil, err
		}
		return scan.SoldKeys(wl), nil
	}

	listenPort := *port
	if listenPort == 0 {
		listenPort = cfg.CtlPort
	}

	server := ctl.New(seenStore, soldCache, soldKeys)

	if dsn := cfg.DSN(); dsn != "" {
		store, err := dealstore.NewPostgresWriter(dsn)
		if err != nil {
			fmt.Printf("Fatal error connecting to Postgres: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		server.ShowRecentDeals(store.RecentDeals)
	}

	if err := server.ListenAndServe(fmt.Sprintf(":%d", listenPort)); err != nil {
		fmt.Printf("Fatal error serving: %v\n", err)
		os.Exit(1)
	}
}
