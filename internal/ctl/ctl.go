/*
Package ctl serves the small control surface linked from notification
emails: hide a single listing, clear an owner's seen history, clear
everything, and force a sold-price refresh.

Responses are tiny self-contained HTML pages since they are opened from
a phone mail client.
*/
package ctl

import (
	"fmt"
	"html"
	"log"
	"net/http"
	"sort"

	"github.com/samwhite/cardscout/internal/seen"
	"github.com/samwhite/cardscout/internal/soldprice"
	"github.com/samwhite/cardscout/internal/types"
)

// Server wires the seen store and sold-price cache behind HTTP handlers.
type Server struct {
	seen     *seen.Store
	sold     *soldprice.Cache
	soldKeys func() ([]string, error)
	recent   func(limit int) ([]types.Deal, error)
}

// New builds a Server. soldKeys supplies the cache keys to refresh and
// may be nil when sold-price tracking is disabled.
func New(seenStore *seen.Store, soldCache *soldprice.Cache, soldKeys func() ([]string, error)) *Server {
	return &Server{seen: seenStore, sold: soldCache, soldKeys: soldKeys}
}

// ShowRecentDeals adds a latest-archived-deals section to the status page,
// fed by the deal archive when one is configured.
func (s *Server) ShowRecentDeals(fetch func(limit int) ([]types.Deal, error)) {
	s.recent = fetch
}

// Routes returns the handler mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/hide", s.handleHide)
	mux.HandleFunc("/clear", s.handleClear)
	mux.HandleFunc("/clear-all", s.handleClearAll)
	mux.HandleFunc("/refresh-sold", s.handleRefreshSold)
	return mux
}

// ListenAndServe blocks serving the control surface on addr.
func (s *Server) ListenAndServe(addr string) error {
	log.Printf("Control server listening on %s", addr)
	return http.ListenAndServe(addr, s.Routes())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	counts := s.seen.Counts()
	owners := make([]string, 0, len(counts))
	for owner := range counts {
		owners = append(owners, owner)
	}
	sort.Strings(owners)

	body := "<h2>cardscout control</h2><ul>"
	for _, owner := range owners {
		body += fmt.Sprintf("<li>%s: %d seen listing(s) <a href=\"/clear?owner=%s\">clear</a></li>",
			html.EscapeString(owner), counts[owner], html.EscapeString(owner))
	}
	body += "</ul>"
	body += `<p><a href="/clear-all">Clear all owners</a> &middot; <a href="/refresh-sold">Refresh sold prices</a></p>`
	body += s.recentDealsSection()
	writePage(w, http.StatusOK, body)
}

func (s *Server) recentDealsSection() string {
	if s.recent == nil {
		return ""
	}
	deals, err := s.recent(10)
	if err != nil {
		log.Printf("Failed to read recent deals: %v", err)
		return "<p>Deal archive unavailable.</p>"
	}
	if len(deals) == 0 {
		return "<p>No archived deals yet.</p>"
	}

	body := "<h3>Recently archived deals</h3><ul>"
	for _, d := range deals {
		body += fmt.Sprintf("<li>%s: <a href=\"%s\">%s</a> at $%.2f (limit $%.2f)</li>",
			html.EscapeString(d.Owner), html.EscapeString(d.Link),
			html.EscapeString(d.Title), d.TotalPrice, d.Ceiling)
	}
	return body + "</ul>"
}

func (s *Server) handleHide(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	id := r.URL.Query().Get("id")
	if owner == "" || id == "" {
		writePage(w, http.StatusBadRequest, "<p>Missing owner or id parameter.</p>")
		return
	}

	already := s.seen.Hide(owner, id)
	if err := s.seen.Save(); err != nil {
		log.Printf("Failed to save seen state: %v", err)
		writePage(w, http.StatusInternalServerError, "<p>Failed to save state.</p>")
		return
	}

	if already {
		writePage(w, http.StatusOK, fmt.Sprintf("<p>Listing %s was already hidden for %s.</p>",
			html.EscapeString(id), html.EscapeString(owner)))
		return
	}
	log.Printf("Hid listing %s for %s.", id, owner)
	writePage(w, http.StatusOK, fmt.Sprintf("<p>Listing %s hidden for %s. It will not be reported again.</p>",
		html.EscapeString(id), html.EscapeString(owner)))
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writePage(w, http.StatusBadRequest, "<p>Missing owner parameter.</p>")
		return
	}

	cleared := s.seen.Clear(owner)
	if err := s.seen.Save(); err != nil {
		log.Printf("Failed to save seen state: %v", err)
		writePage(w, http.StatusInternalServerError, "<p>Failed to save state.</p>")
		return
	}

	log.Printf("Cleared %d seen listing(s) for %s.", cleared, owner)
	writePage(w, http.StatusOK, fmt.Sprintf("<p>Cleared %d seen listing(s) for %s. Matching listings will be reported again on the next scan.</p>",
		cleared, html.EscapeString(owner)))
}

func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	cleared := s.seen.ClearAll()
	if err := s.seen.Save(); err != nil {
		log.Printf("Failed to save seen state: %v", err)
		writePage(w, http.StatusInternalServerError, "<p>Failed to save state.</p>")
		return
	}

	log.Printf("Cleared %d seen listing(s) across all owners.", cleared)
	writePage(w, http.StatusOK, fmt.Sprintf("<p>Cleared %d seen listing(s) across all owners.</p>", cleared))
}

func (s *Server) handleRefreshSold(w http.ResponseWriter, r *http.Request) {
	if s.sold == nil || s.soldKeys == nil {
		writePage(w, http.StatusOK, "<p>Sold-price tracking is not enabled.</p>")
		return
	}

	keys, err := s.soldKeys()
	if err != nil {
		log.Printf("Failed to collect sold-price keys: %v", err)
		writePage(w, http.StatusInternalServerError, "<p>Failed to read the watchlist.</p>")
		return
	}

	refreshed := s.sold.Refresh(keys)
	if err := s.sold.Save(); err != nil {
		log.Printf("Failed to save sold-price cache: %v", err)
	}
	log.Printf("Refreshed %d of %d sold-price key(s).", refreshed, len(keys))
	writePage(w, http.StatusOK, fmt.Sprintf("<p>Refreshed %d of %d sold-price key(s).</p>", refreshed, len(keys)))
}

func writePage(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html><head><meta name="viewport" content="width=device-width, initial-scale=1"><title>cardscout</title></head>
<body style="font-family: sans-serif; margin: 2em;">%s</body></html>`, body)
}
