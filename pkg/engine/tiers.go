package engine

import "math"

// Tier is the ordinal confidence label of a signal.
type Tier string

const (
	TierNoise      Tier = "NOISE"  // totals path: composite score too low
	TierNoBet      Tier = "NO BET" // win-prob path: split too close
	TierLean       Tier = "LEAN"
	TierStrong     Tier = "STRONG"
	TierVeryStrong Tier = "VERY STRONG"
	TierElite      Tier = "ELITE"
)

// Rank returns the tier's ordinal position; both no-signal labels rank 0.
func (t Tier) Rank() int {
	switch t {
	case TierLean:
		return 1
	case TierStrong:
		return 2
	case TierVeryStrong:
		return 3
	case TierElite:
		return 4
	default:
		return 0
	}
}

// Bump promotes the tier exactly one step, never past the top.
func (t Tier) Bump() Tier {
	switch t {
	case TierLean:
		return TierStrong
	case TierStrong:
		return TierVeryStrong
	case TierVeryStrong:
		return TierElite
	default:
		return t
	}
}

// Signal is the directional lean classification, independent of the tier.
// The two may disagree; both are surfaced.
type Signal string

const (
	SignalBet        Signal = "BET"
	SignalWatchOver  Signal = "WATCH OVER"
	SignalWatchUnder Signal = "WATCH UNDER"
	SignalPass       Signal = "PASS"
)

// ConfidenceScore builds the hand-tuned composite: edge dominates (weight
// 400), fair-vs-line deviation contributes at weight 3, distributional skew
// from the midpoint contributes 1:1. Clamped to [0, 100], truncated to int.
func ConfidenceScore(edge, fair, line, pct float64) int {
	score := math.Abs(edge)*400 + math.Abs(fair-line)*3 + math.Abs(50-pct)
	return int(math.Min(score, 100))
}

// TierForScore maps a composite score through the configured cutoff ladder.
func TierForScore(score int, c TierCutoffs) Tier {
	s := float64(score)
	switch {
	case s >= c.Elite:
		return TierElite
	case s >= c.VeryStrong:
		return TierVeryStrong
	case s >= c.Strong:
		return TierStrong
	case s >= c.Lean:
		return TierLean
	default:
		return TierNoise
	}
}

// WinProbTier maps a simulated win percentage through its own ladder. No
// market odds are involved on this path.
func WinProbTier(winPct float64, c TierCutoffs) Tier {
	switch {
	case winPct >= c.Elite:
		return TierElite
	case winPct >= c.VeryStrong:
		return TierVeryStrong
	case winPct >= c.Strong:
		return TierStrong
	case winPct >= c.Lean:
		return TierLean
	default:
		return TierNoBet
	}
}

// LeanSignal classifies the directional lean: a real edge is a BET, a skewed
// percentile without edge is a WATCH in the skew's direction, else PASS.
func (c *ModelConfig) LeanSignal(edge, pct float64) Signal {
	if edge >= c.LeanBetEdge {
		return SignalBet
	}
	if pct <= c.WatchOverPct {
		return SignalWatchOver
	}
	if pct >= c.WatchUnderPct {
		return SignalWatchUnder
	}
	return SignalPass
}
