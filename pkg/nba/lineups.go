package nba

import (
	"context"
	"time"

	"github.com/courtedge/courtedge/pkg/engine"
)

// Lineups are never called confirmed earlier than this before tip.
const lineupConfirmWindow = 30 * time.Minute

// LineupJudge decides whether both rotations are settled. OUT players do not
// block confirmation; open questionable or doubtful tags do.
type LineupJudge struct{}

// Confirmed implements the engine's lineup collaborator.
func (LineupJudge) Confirmed(tipOff, now time.Time, home, away engine.InjuryContext) bool {
	if tipOff.IsZero() || tipOff.Sub(now) > lineupConfirmWindow {
		return false
	}
	return !home.Uncertain() && !away.Uncertain()
}

// LineupChecker re-derives confirmation from a live injury snapshot at
// delivery time. Satisfies the alert flusher's collaborator.
type LineupChecker struct {
	Injuries *InjuryClient
	Judge    LineupJudge
	Now      func() time.Time
}

// Confirmed fetches the current report and judges both teams.
func (c LineupChecker) Confirmed(ctx context.Context, tipOff time.Time, homeAbbr, awayAbbr string) bool {
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}
	// Teams with no injuries are absent from the report; only a failed
	// fetch (empty snapshot) blocks confirmation.
	snapshot := c.Injuries.Snapshot(ctx)
	if len(snapshot) == 0 {
		return false
	}
	return c.Judge.Confirmed(tipOff, now, snapshot[homeAbbr], snapshot[awayAbbr])
}
