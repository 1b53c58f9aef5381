/*
Package seen tracks which fixed-price listings have already been surfaced,
per watchlist owner, so a deal is only reported once until explicitly
cleared or hidden.
*/
package seen

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// LegacyOwner receives ids loaded from the old file shape, a bare JSON
// array with no owner attribution.
const LegacyOwner = "_legacy"

// Store is the persistent per-owner set of surfaced listing ids. Loaded at
// process start, mutated during a scan, saved at scan end. Safe for
// concurrent use; the control server mutates it while a scan may be running.
type Store struct {
	mu   sync.Mutex
	path string
	seen map[string]map[string]bool
}

// NewStore loads the store from path. A missing file means an empty store;
// an unreadable or corrupt one is logged and treated the same so a bad
// state file never blocks a scan.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory for %s: %w", path, err)
	}

	s := &Store{
		path: path,
		seen: make(map[string]map[string]bool),
	}
	s.load()
	return s, nil
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Seen-state file %s not found. Starting fresh.", s.path)
			return
		}
		log.Printf("Error reading seen-state file (%s): %v. Starting fresh.", s.path, err)
		return
	}

	var byOwner map[string][]string
	if err := json.Unmarshal(data, &byOwner); err == nil {
		for owner, ids := range byOwner {
			set := make(map[string]bool, len(ids))
			for _, id := range ids {
				set[id] = true
			}
			s.seen[owner] = set
		}
		log.Printf("Loaded seen-state for %d owner(s).", len(s.seen))
		return
	}

	// Old file shape: a bare list of ids with no owner attribution.
	var legacy []string
	if err := json.Unmarshal(data, &legacy); err == nil {
		set := make(map[string]bool, len(legacy))
		for _, id := range legacy {
			set[id] = true
		}
		s.seen[LegacyOwner] = set
		log.Printf("Loaded %d ids from legacy seen-state shape.", len(legacy))
		return
	}

	log.Printf("Error unmarshalling seen-state JSON from %s. Starting fresh.", s.path)
}

// Save writes the store to disk, always in the owner-keyed shape.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]string, len(s.seen))
	for owner, ids := range s.seen {
		list := make([]string, 0, len(ids))
		for id := range ids {
			list = append(list, id)
		}
		sort.Strings(list)
		out[owner] = list
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal seen-state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write seen-state file %s: %w", s.path, err)
	}
	return nil
}

// IsNew reports whether the id has not yet been surfaced for the owner.
// Listings without an id are always new; there is nothing to remember
// them by.
func (s *Store) IsNew(owner, id string) bool {
	if id == "" {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.seen[owner][id]
}

// MarkSeen records the id for the owner. Empty ids are ignored.
func (s *Store) MarkSeen(owner, id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[owner] == nil {
		s.seen[owner] = make(map[string]bool)
	}
	s.seen[owner][id] = true
}

// Hide marks the id seen and reports whether it already was. Hiding an
// already-hidden id is a no-op; the caller surfaces "already hidden".
func (s *Store) Hide(owner, id string) (already bool) {
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[owner][id] {
		return true
	}
	if s.seen[owner] == nil {
		s.seen[owner] = make(map[string]bool)
	}
	s.seen[owner][id] = true
	return false
}

// Clear forgets every id for the owner and returns how many were cleared.
// Clearing an owner with no history clears zero and does not error.
func (s *Store) Clear(owner string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.seen[owner])
	delete(s.seen, owner)
	return n
}

// ClearAll forgets everything and returns the total cleared.
func (s *Store) ClearAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, ids := range s.seen {
		total += len(ids)
	}
	s.seen = make(map[string]map[string]bool)
	return total
}

// Counts returns the number of seen ids per owner, for the status page.
func (s *Store) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int, len(s.seen))
	for owner, ids := range s.seen {
		counts[owner] = len(ids)
	}
	return counts
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}
