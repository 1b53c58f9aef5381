/*
Package quiet defers notifications during a configured local-time window.

Scans run on a cron schedule around the clock, but nobody wants a deal
alert at 3am. Notifications built during quiet hours are persisted to a
FIFO queue and flushed by the first scan that completes outside the window.
*/
package quiet

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Notification is one deferred alert.
type Notification struct {
	Subject  string    `json:"subject"`
	Body     string    `json:"body"`
	QueuedAt time.Time `json:"queued_at"`
}

// Window is a half-open range of local hours [Start, End) during which
// notifications are queued instead of sent. A window with Start > End
// wraps midnight.
type Window struct {
	Start int
	End   int
}

// DefaultWindow is midnight to 6am.
var DefaultWindow = Window{Start: 0, End: 6}

// Contains reports whether the hour falls inside the window.
func (w Window) Contains(hour int) bool {
	if w.Start == w.End {
		return false
	}
	if w.Start < w.End {
		return hour >= w.Start && hour < w.End
	}
	return hour >= w.Start || hour < w.End
}

// Queue is the persistent quiet-hours notification queue.
type Queue struct {
	mu    sync.Mutex
	path  string
	loc   *time.Location
	win   Window
	items []Notification
	now   func() time.Time
}

// NewQueue loads the queue from path. Times are evaluated in the named
// zone; an invalid zone name is an error since silently alerting in the
// wrong timezone defeats the feature.
func NewQueue(path, tzName string, win Window) (*Queue, error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone name '%s': %w", tzName, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory for %s: %w", path, err)
	}

	q := &Queue{
		path: path,
		loc:  loc,
		win:  win,
		now:  time.Now,
	}
	q.load()
	return q, nil
}

func (q *Queue) load() {
	data, err := os.ReadFile(q.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Error reading notification queue (%s): %v. Starting empty.", q.path, err)
		}
		return
	}
	if err := json.Unmarshal(data, &q.items); err != nil {
		log.Printf("Error unmarshalling notification queue: %v. Starting empty.", err)
		q.items = nil
	}
}

func (q *Queue) save() error {
	items := q.items
	if items == nil {
		items = []Notification{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal notification queue: %w", err)
	}
	if err := os.WriteFile(q.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write notification queue %s: %w", q.path, err)
	}
	return nil
}

// ShouldQueue reports whether a notification built now must be deferred.
func (q *Queue) ShouldQueue(now time.Time) bool {
	return q.win.Contains(now.In(q.loc).Hour())
}

// Enqueue appends a notification and persists immediately, so a crash
// between scans loses nothing.
func (q *Queue) Enqueue(subject, body string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, Notification{
		Subject:  subject,
		Body:     body,
		QueuedAt: q.now(),
	})
	return q.save()
}

// Flush hands every queued notification to send in FIFO order, then clears
// the queue regardless of individual failures (best-effort: a transport
// error is logged, not retried). Returns the number attempted. Called once
// at the end of every scan; during quiet hours it is a no-op.
func (q *Queue) Flush(send func(subject, body string) error) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.win.Contains(q.now().In(q.loc).Hour()) {
		return 0
	}
	if len(q.items) == 0 {
		return 0
	}

	attempted := 0
	for _, n := range q.items {
		attempted++
		if err := send(n.Subject, n.Body); err != nil {
			log.Printf("Failed to deliver queued notification %q (queued %s): %v",
				n.Subject, n.QueuedAt.Format(time.RFC3339), err)
		}
	}

	q.items = nil
	if err := q.save(); err != nil {
		log.Printf("Error persisting flushed notification queue: %v", err)
	}
	return attempted
}

// Len returns the number of queued notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
