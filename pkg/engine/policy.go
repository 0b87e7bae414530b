package engine

import (
	"fmt"
	"math"
)

// Policy is the layered per-market decision logic. Every method is a pure
// function of already-computed numeric state; only the deduplication step in
// the engine has side effects.
type Policy struct {
	cfg *ModelConfig
}

// NewPolicy creates a policy bound to a model config.
func NewPolicy(cfg *ModelConfig) *Policy {
	if cfg == nil {
		cfg = DefaultModelConfig()
	}
	return &Policy{cfg: cfg}
}

// Window returns the label of the decision window containing minutesToTip,
// or false when the fixture is outside every window.
func (p *Policy) Window(minutesToTip float64) (string, bool) {
	for _, w := range p.cfg.Windows {
		if minutesToTip >= w.Min && minutesToTip <= w.Max {
			return w.Label, true
		}
	}
	return "", false
}

// TotalsVerdict is the outcome of the totals gate chain.
type TotalsVerdict struct {
	Tier     Tier
	Suppress bool
	Reason   string
}

// CheckTotals runs the statistical sanity gate, the edge floor, trap
// detection and the defensive confidence bump for a totals market.
// calOver is the calibrated over-probability, edge the capped signed edge,
// defOut whether either side has a defensive anchor out.
func (p *Policy) CheckTotals(pick Pick, calOver, edge, fair, line float64, tier Tier, defOut bool) TotalsVerdict {
	// Coin-flip rejection: nothing to say when the calibrated probability
	// hugs the midpoint.
	if math.Abs(calOver-0.5) < p.cfg.CoinFlipBand {
		return TotalsVerdict{Tier: tier, Suppress: true, Reason: "coin_flip"}
	}

	// Edge floor on the displayed percentage.
	if math.Abs(edge)*100 < p.cfg.MinEdgePct {
		return TotalsVerdict{Tier: tier, Suppress: true, Reason: "edge_floor"}
	}

	// Trap detection: the book shaded the line against the model. Only the
	// top tier is allowed to fight a shaded line.
	if p.Trapped(pick, fair, line) && tier != TierElite {
		return TotalsVerdict{Tier: tier, Suppress: true, Reason: "trap"}
	}

	// Defensive bump: an OVER landing in a middle tier gets exactly one
	// step up when a defensive anchor is out on either side.
	if pick == PickOver && defOut && tier.Rank() >= TierLean.Rank() && tier != TierElite {
		tier = tier.Bump()
	}

	if tier.Rank() == 0 {
		return TotalsVerdict{Tier: tier, Suppress: true, Reason: "tier_floor"}
	}

	return TotalsVerdict{Tier: tier}
}

// Trapped reports whether the posted line sits beyond fair value against the
// pick direction by more than the trap margin.
func (p *Policy) Trapped(pick Pick, fair, line float64) bool {
	switch pick {
	case PickOver:
		return line-fair > p.cfg.TrapMargin
	case PickUnder:
		return fair-line > p.cfg.TrapMargin
	}
	return false
}

// AllowSpread applies the spread bet filters: a fair-spread floor, a tier
// minimum, and a decisive win-percentage floor.
func (p *Policy) AllowSpread(fairSpread, winPct float64, tier Tier) (bool, string) {
	if math.Abs(fairSpread) < p.cfg.SpreadMinFair {
		return false, "fair_spread_floor"
	}
	if tier.Rank() < TierStrong.Rank() {
		return false, "tier_floor"
	}
	if winPct < p.cfg.SpreadMinPct {
		return false, "win_pct_floor"
	}
	return true, ""
}

// AllowMoneyline applies the moneyline bet filters: tier minimum, win
// percentage floor, a heavy-favorite price floor (vig trap), and in strict
// mode a weak-underdog price ceiling that only the top tier may exceed.
func (p *Policy) AllowMoneyline(winPct, fairOdds float64, tier Tier) (bool, string) {
	if tier.Rank() < TierStrong.Rank() {
		return false, "tier_floor"
	}
	if fairOdds < p.cfg.MoneylineMinPrice {
		return false, "vig_trap"
	}
	if winPct < p.cfg.MoneylineMinPct {
		return false, "win_pct_floor"
	}
	if p.cfg.Strict && p.cfg.MoneylineMaxDog > 0 && fairOdds > p.cfg.MoneylineMaxDog && tier != TierElite {
		return false, "weak_dog"
	}
	return true, ""
}

// Fingerprint builds the dedup key for an alert. Identical fingerprints must
// not emit twice within one alert-epoch.
func Fingerprint(game string, market Market, line float64, tier Tier, stage Stage, injurySig string) string {
	return fmt.Sprintf("%s_%s_%g_%s_%s_%s", game, market, line, tier, stage, injurySig)
}

// InjurySignature condenses both sides' injury flags into a short stable
// token so that a changed injury picture re-arms the dedup key.
func InjurySignature(home, away InjuryContext) string {
	mark := func(c InjuryContext) string {
		s := ""
		if c.Tier1Out {
			s += "1"
		}
		if c.Tier2Out {
			s += "2"
		}
		if c.DefTier1Out {
			s += "d"
		}
		if c.DefTier2Out {
			s += "e"
		}
		if s == "" {
			s = "-"
		}
		return s
	}
	return mark(home) + ":" + mark(away)
}
