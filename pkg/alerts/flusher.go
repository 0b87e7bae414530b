package alerts

import (
	"context"
	"log"
	"time"
)

// LineupChecker re-checks lineup confirmation at delivery time. The state at
// queue time is stale by the 10-minute window.
type LineupChecker interface {
	Confirmed(ctx context.Context, tipOff time.Time, homeAbbr, awayAbbr string) bool
}

// Flusher drains the pending alert queue on a fixed cadence, delivering each
// alert once per open pregame window.
type Flusher struct {
	store      *Store
	notifier   Notifier
	lineups    LineupChecker
	evictAfter time.Duration
	interval   time.Duration
	logger     *log.Logger
}

// NewFlusher creates a flusher. A zero interval defaults to one minute.
func NewFlusher(store *Store, notifier Notifier, lineups LineupChecker, evictAfter time.Duration, logger *log.Logger) *Flusher {
	return &Flusher{
		store:      store,
		notifier:   notifier,
		lineups:    lineups,
		evictAfter: evictAfter,
		interval:   time.Minute,
		logger:     logger,
	}
}

// Run blocks until the context is cancelled.
func (f *Flusher) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			f.Tick(ctx, now)
		}
	}
}

// Tick runs one flush pass. Exposed for tests and for the ops endpoint.
func (f *Flusher) Tick(ctx context.Context, now time.Time) {
	for _, d := range f.store.Due(now, f.evictAfter) {
		confirmed := f.lineups.Confirmed(ctx, d.Alert.TipOff, d.Alert.HomeAbbr, d.Alert.AwayAbbr)
		text := Render(d, confirmed)
		if err := f.notifier.Send(ctx, text); err != nil {
			f.logger.Printf("flush %s window=%s failed: %v", d.Alert.Game, d.Window, err)
			continue
		}
		f.logger.Printf("flush %s market=%s window=%s tier=%s", d.Alert.Game, d.Alert.Market, d.Window, d.Alert.Result.Tier)
	}
}
