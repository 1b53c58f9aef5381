/*
Package soldprice caches recent-average sale prices for comparable cards.

Looking up sold comparables is by far the most expensive part of a scan (it
costs a full browser page load per lookup), so estimates are cached on disk
under a normalized key and reused for a week. The key derivation is the
delicate part: it has to be coarse enough that near-duplicate titles share
one entry, and specific enough that different cards do not.
*/
package soldprice

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/samwhite/cardscout/internal/types"
)

// FreshnessWindow is how long a cached estimate is trusted.
const FreshnessWindow = 7 * 24 * time.Hour

// FetchFunc retrieves a fresh estimate for a derived key. The key doubles
// as the sold-listings search query. Returning (nil, nil) means the search
// yielded nothing usable.
type FetchFunc func(key string) (*types.SoldEstimate, error)

type entry struct {
	AvgPrice float64   `json:"avg_price"`
	NumSold  int       `json:"num_sold"`
	Updated  time.Time `json:"updated"`
}

// Cache is the persistent sold-price estimate cache.
type Cache struct {
	mu       sync.Mutex
	path     string
	entries  map[string]entry
	fetch    FetchFunc
	inflight map[string]chan struct{}
	now      func() time.Time
}

// NewCache loads the cache from path. Missing or corrupt files start empty.
func NewCache(path string, fetch FetchFunc) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory for %s: %w", path, err)
	}

	c := &Cache{
		path:     path,
		entries:  make(map[string]entry),
		fetch:    fetch,
		inflight: make(map[string]chan struct{}),
		now:      time.Now,
	}
	c.load()
	return c, nil
}

func (c *Cache) load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Error reading sold-price cache (%s): %v. Starting fresh.", c.path, err)
		}
		return
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		log.Printf("Error unmarshalling sold-price cache: %v. Starting fresh.", err)
		c.entries = make(map[string]entry)
	}
}

// Save writes the cache to disk.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sold-price cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write sold-price cache %s: %w", c.path, err)
	}
	return nil
}

// Get returns the estimate for the key, fetching and storing it when the
// cached entry is missing or stale. A failed or empty fetch returns nil and
// caches nothing, so the next scan retries. At most one fetch per key is
// outstanding at a time; concurrent callers wait for the first result.
func (c *Cache) Get(key string) *types.SoldEstimate {
	for {
		c.mu.Lock()
		if e, ok := c.entries[key]; ok && c.fresh(e) {
			c.mu.Unlock()
			return &types.SoldEstimate{AveragePrice: e.AvgPrice, SampleSize: e.NumSold}
		}

		if wait, busy := c.inflight[key]; busy {
			c.mu.Unlock()
			<-wait
			continue // re-check what the winner stored
		}

		done := make(chan struct{})
		c.inflight[key] = done
		c.mu.Unlock()

		est, err := c.fetch(key)

		c.mu.Lock()
		delete(c.inflight, key)
		close(done)
		if err != nil {
			c.mu.Unlock()
			log.Printf("Sold-price fetch failed for %q: %v", key, err)
			return nil
		}
		if est == nil {
			c.mu.Unlock()
			return nil
		}
		c.entries[key] = entry{
			AvgPrice: est.AveragePrice,
			NumSold:  est.SampleSize,
			Updated:  c.now(),
		}
		c.mu.Unlock()
		return est
	}
}

func (c *Cache) fresh(e entry) bool {
	return c.now().Sub(e.Updated) <= FreshnessWindow
}

// Stale reports whether the key has no fresh entry.
func (c *Cache) Stale(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return !ok || !c.fresh(e)
}

// Refresh force-fetches every stale or missing key from the list and
// returns how many were refreshed. Used by the control server's
// refresh action ahead of the next scan.
func (c *Cache) Refresh(keys []string) int {
	refreshed := 0
	for _, key := range keys {
		if !c.Stale(key) {
			continue
		}
		if c.Get(key) != nil {
			refreshed++
		}
	}
	return refreshed
}

// Len returns the number of cached entries, fresh or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
