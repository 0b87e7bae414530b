// Package alerts holds the daily deduplication state, the pending pregame
// queue and the delivery side: message rendering and the Telegram notifier.
package alerts

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/courtedge/courtedge/pkg/engine"
)

// FlushWindow is one pregame delivery mark: an alert still pending when
// minutes-to-tip enters [Min, Max] is dispatched once under Label.
type FlushWindow struct {
	Label string
	Min   float64
	Max   float64
}

// DefaultFlushWindows returns the standard delivery marks, ordered farthest
// from tip first. Due relies on that ordering: firing a later mark retires
// every earlier one.
func DefaultFlushWindows() []FlushWindow {
	return []FlushWindow{
		{Label: "10m", Min: 9, Max: 11},
		{Label: "2m", Min: 1, Max: 3},
	}
}

// Store is the in-memory alert state for one process: a dedup set of
// fingerprints that already fired this UTC day, and the pending map the
// pregame flusher drains. Lost on restart, which is acceptable: a restart
// re-arms at most one extra alert per market per day.
type Store struct {
	windows []FlushWindow

	mu      sync.Mutex
	epoch   string
	seen    map[string]struct{}
	pending map[string]*pendingAlert
}

type pendingAlert struct {
	id    string
	alert engine.Alert
	sent  map[string]bool // by flush-window label
}

// NewStore creates an empty store. With no windows given the default
// delivery marks apply.
func NewStore(windows ...FlushWindow) *Store {
	if len(windows) == 0 {
		windows = DefaultFlushWindows()
	}
	return &Store{
		windows: windows,
		seen:    make(map[string]struct{}),
		pending: make(map[string]*pendingAlert),
	}
}

// ResetIfNewEpoch clears the dedup set when the UTC day rolls over. The
// pending map survives: a fixture queued late in the evening still flushes
// after midnight.
func (s *Store) ResetIfNewEpoch(now time.Time) {
	epoch := now.UTC().Format("2006-01-02")

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch == s.epoch {
		return
	}
	s.epoch = epoch
	s.seen = make(map[string]struct{})
}

// SeenOrRegister reports whether the fingerprint already fired this epoch and
// registers it atomically when it has not.
func (s *Store) SeenOrRegister(fingerprint string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[fingerprint]; ok {
		return true
	}
	s.seen[fingerprint] = struct{}{}
	return false
}

// Queue adds a cleared alert to the pending map. Re-queueing the same
// fingerprint keeps the existing entry and its sent marks.
func (s *Store) Queue(alert engine.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[alert.Fingerprint]; ok {
		return
	}
	s.pending[alert.Fingerprint] = &pendingAlert{
		id:    uuid.NewString(),
		alert: alert,
		sent:  make(map[string]bool),
	}
}

// PendingCount returns the number of queued alerts.
func (s *Store) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Dispatch is one due delivery handed to the flusher.
type Dispatch struct {
	ID     string
	Window string
	Alert  engine.Alert
}

// Due returns the deliveries whose window is open right now, marking them
// sent, and evicts entries that are spent or stale. An alert gets at most one
// delivery per flush window; a late queue that lands in a later window
// retires the skipped earlier marks. Anything still pending this long after
// tip-off is dropped unsent.
func (s *Store) Due(now time.Time, evictAfter time.Duration) []Dispatch {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []Dispatch
	for fp, p := range s.pending {
		if now.After(p.alert.TipOff.Add(evictAfter)) {
			delete(s.pending, fp)
			continue
		}

		minutes := p.alert.TipOff.Sub(now).Minutes()
		for i, w := range s.windows {
			if p.sent[w.Label] || minutes < w.Min || minutes > w.Max {
				continue
			}
			for _, earlier := range s.windows[:i+1] {
				p.sent[earlier.Label] = true
			}
			due = append(due, Dispatch{ID: p.id, Window: w.Label, Alert: p.alert})
			break
		}

		if len(p.sent) == len(s.windows) {
			delete(s.pending, fp)
		}
	}
	return due
}
