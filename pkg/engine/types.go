// Package engine implements the Monte Carlo simulation and edge-scoring core:
// situational projection adjustment, normal-distribution sampling, probability
// calibration, confidence tiering, and the layered decision policy that turns
// a priced market into at most one alert per day.
package engine

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Market identifies a bet type within a fixture.
type Market string

const (
	MarketGame      Market = "game"
	MarketSpread    Market = "spread"
	MarketMoneyline Market = "h2h"
	MarketQ1        Market = "q1"
	MarketQ2        Market = "q2"
	MarketQ3        Market = "q3"
	MarketQ4        Market = "q4"
)

// MarketOrder is the fixed evaluation order within a fixture pass. Spread
// must precede moneyline: moneyline reuses spread's simulated win split.
var MarketOrder = []Market{
	MarketGame, MarketSpread, MarketMoneyline,
	MarketQ1, MarketQ2, MarketQ3, MarketQ4,
}

// IsTotal reports whether the market is priced against a posted total line.
func (m Market) IsTotal() bool {
	switch m {
	case MarketGame, MarketQ1, MarketQ2, MarketQ3, MarketQ4:
		return true
	}
	return false
}

// Side is the designated home side of a request ("A" or "B").
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// Request is one evaluation unit. Immutable once constructed; consumed
// exactly once per simulation pass.
type Request struct {
	TeamA    string    `json:"team_a"`
	TeamB    string    `json:"team_b"`
	GameTime time.Time `json:"game_time"`

	BasePointsA float64 `json:"base_team_a_points"`
	BasePointsB float64 `json:"base_team_b_points"`
	HomeSide    Side    `json:"home_team"`

	TravelKmA float64 `json:"team_a_travel_km"`
	TravelKmB float64 `json:"team_b_travel_km"`
	B2BA      bool    `json:"team_a_b2b"`
	B2BB      bool    `json:"team_b_b2b"`
}

// ApplyDefaults fills the zero values a manual submission may omit.
func (r *Request) ApplyDefaults() {
	if r.BasePointsA == 0 {
		r.BasePointsA = 115
	}
	if r.BasePointsB == 0 {
		r.BasePointsB = 112
	}
	if r.HomeSide == "" {
		r.HomeSide = SideA
	}
}

// InjuryContext is a per-team snapshot of roster availability, sourced fresh
// on every evaluation. Never cached past a single pass.
type InjuryContext struct {
	Tier1Out      bool    `json:"tier_1_out"`
	Tier2Out      bool    `json:"tier_2_out"`
	DefTier1Out   bool    `json:"def_tier_1_out"`
	DefTier2Out   bool    `json:"def_tier_2_out"`
	SecondaryOut  bool    `json:"secondary_out"`
	Questionable  bool    `json:"questionable"`
	Doubtful      bool    `json:"doubtful"`
	MinutesFactor float64 `json:"minutes_factor"`
}

// AnyDefensiveOut reports whether a defensive anchor of either tier is out.
func (c InjuryContext) AnyDefensiveOut() bool {
	return c.DefTier1Out || c.DefTier2Out
}

// Uncertain reports whether the rotation is still unsettled.
func (c InjuryContext) Uncertain() bool {
	return c.Questionable || c.Doubtful
}

// Adjustments is the Situational Adjuster's output: adjusted per-side
// projections plus the scalar modifiers the sampler consumes.
type Adjustments struct {
	PointsA float64
	PointsB float64

	Pace         float64 // points added to total means (scaled per market)
	Variance     float64 // fractional widening of every market's SD
	DefTotals    float64 // points added to total means only
	DefSpreadVar float64 // extra fractional widening, spread market only
}

// HomePoints returns the adjusted projection of the designated home side.
func (a Adjustments) HomePoints(home Side) float64 {
	if home == SideA {
		return a.PointsA
	}
	return a.PointsB
}

// AwayPoints returns the adjusted projection of the away side.
func (a Adjustments) AwayPoints(home Side) float64 {
	if home == SideA {
		return a.PointsB
	}
	return a.PointsA
}

// Quote is a posted market price from the odds feed.
type Quote struct {
	Line  float64         `json:"line"`
	Over  decimal.Decimal `json:"over_price"`
	Under decimal.Decimal `json:"under_price"`
}

// QuoteBook maps markets to their posted quotes for one fixture. Absent
// entries mean "not yet posted", not an error.
type QuoteBook map[Market]Quote

// Pick is the directional side of a signal.
type Pick string

const (
	PickOver  Pick = "OVER"
	PickUnder Pick = "UNDER"
	PickHome  Pick = "HOME"
	PickAway  Pick = "AWAY"
)

// Stage tells whether lineups were settled when the signal fired.
type Stage string

const (
	StageEarly     Stage = "EARLY"
	StageConfirmed Stage = "CONFIRMED"
)

// Result is one market's record in an evaluation pass. Created once,
// immutable, never patched; a re-evaluation produces a new record.
type Result struct {
	Market     Market  `json:"market"`
	Line       float64 `json:"line,omitempty"`
	Fair       float64 `json:"fair"`
	Edge       float64 `json:"edge,omitempty"`
	Percentile float64 `json:"pct,omitempty"`
	Tier       Tier    `json:"tier"`
	Signal     Signal  `json:"signal,omitempty"`
	Pick       Pick    `json:"pick"`
	Stage      Stage   `json:"stage,omitempty"`

	// Spread / moneyline path.
	HomeWinPct   float64         `json:"home_win_pct,omitempty"`
	AwayWinPct   float64         `json:"away_win_pct,omitempty"`
	FairHomeOdds decimal.Decimal `json:"fair_home_odds,omitempty"`
	FairAwayOdds decimal.Decimal `json:"fair_away_odds,omitempty"`

	// Situational modifiers in effect for this record.
	PaceAdjust     float64 `json:"pace_adjust"`
	VarianceAdjust float64 `json:"variance_adjust"`
}

// Alert is a policy-cleared signal ready for queueing or delivery. The
// delivery collaborator renders it; the engine only assembles the facts.
type Alert struct {
	Fingerprint string
	Game        string
	HomeAbbr    string
	AwayAbbr    string
	TeamA       string
	TeamB       string
	HomeTeam    string
	AwayTeam    string
	Market      Market
	Stage       Stage
	TipOff      time.Time
	Result      Result

	AwayTravelKm float64
	B2BA         bool
	B2BB         bool
}

// Evaluation is the outcome of one fixture pass. An empty Markets map is a
// valid, non-error outcome: the fixture is real but there is nothing to say
// yet.
type Evaluation struct {
	Game    string            `json:"game"`
	Markets map[Market]Result `json:"markets"`
	Alerts  []Alert           `json:"-"`
}

// ErrUnknownTeam marks the only truly invalid input: a team name that fails
// to resolve. Everything else degrades to an empty evaluation.
var ErrUnknownTeam = errors.New("unknown team")
