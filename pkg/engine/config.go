package engine

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ModelConfig holds every tunable constant of the simulation and decision
// model. Nothing in the engine is allowed to hardcode these: the same binary
// runs different operating modes by swapping the config.
type ModelConfig struct {
	// Monte Carlo sample size. Fixed for the life of the process so that
	// sampling noise is comparable across markets and fixtures.
	Simulations int `yaml:"simulations"`

	// Situational adjustments (points unless noted).
	HomeCourtBonus  float64 `yaml:"home_court_bonus"`
	B2BHomePenalty  float64 `yaml:"b2b_home_penalty"`
	B2BAwayPenalty  float64 `yaml:"b2b_away_penalty"`
	B2BTravelKm     float64 `yaml:"b2b_travel_km"`      // stacking threshold
	B2BTravelStack  float64 `yaml:"b2b_travel_stack"`   // extra penalty when B2B + long travel
	TravelTier1Km   float64 `yaml:"travel_tier1_km"`    // moderate travel threshold
	TravelTier1Pen  float64 `yaml:"travel_tier1_pen"`
	TravelTier2Km   float64 `yaml:"travel_tier2_km"`    // long travel threshold
	TravelTier2Pen  float64 `yaml:"travel_tier2_pen"`
	AltitudeVenues  []string `yaml:"altitude_venues"`
	AltitudeHomeUp  float64  `yaml:"altitude_home_up"`
	AltitudeAwayDn  float64  `yaml:"altitude_away_dn"`

	// Star injury modifiers. Tier-1 out speeds the game up and adds chaos;
	// tier-2 out slows the offense but still adds variance. Contributions
	// from both sides stack.
	Tier1PaceUp float64 `yaml:"tier1_pace_up"`
	Tier1VarUp  float64 `yaml:"tier1_var_up"`
	Tier2PaceDn float64 `yaml:"tier2_pace_dn"`
	Tier2VarUp  float64 `yaml:"tier2_var_up"`

	// Defensive anchors out: totals drift up; spreads get wider, not higher.
	DefTier1Totals    float64 `yaml:"def_tier1_totals"`
	DefTier2Totals    float64 `yaml:"def_tier2_totals"`
	DefTier1SpreadVar float64 `yaml:"def_tier1_spread_var"`
	DefTier2SpreadVar float64 `yaml:"def_tier2_spread_var"`

	// Calibration.
	CalibrationStrength float64 `yaml:"calibration_strength"`
	EdgeCap             float64 `yaml:"edge_cap"`

	// Tier ladders.
	TierCutoffs    TierCutoffs `yaml:"tier_cutoffs"`
	WinProbCutoffs TierCutoffs `yaml:"win_prob_cutoffs"`

	// Lean signal.
	LeanBetEdge   float64 `yaml:"lean_bet_edge"`
	WatchOverPct  float64 `yaml:"watch_over_pct"`
	WatchUnderPct float64 `yaml:"watch_under_pct"`

	// Decision policy gates.
	MinEdgePct     float64 `yaml:"min_edge_pct"`    // displayed edge floor, percent
	CoinFlipBand   float64 `yaml:"coin_flip_band"`  // |p-0.5| below this is noise
	TrapMargin     float64 `yaml:"trap_margin"`     // points of line-vs-fair shading
	SpreadMinFair  float64 `yaml:"spread_min_fair"` // |fair spread| floor
	SpreadMinPct   float64 `yaml:"spread_min_pct"`
	MoneylineMinPct   float64 `yaml:"moneyline_min_pct"`
	MoneylineMinPrice float64 `yaml:"moneyline_min_price"` // vig trap floor, decimal odds
	MoneylineMaxDog   float64 `yaml:"moneyline_max_dog"`   // strict mode only, 0 disables
	Strict            bool    `yaml:"strict"`

	// Decision windows relative to tip-off.
	Windows []DecisionWindow `yaml:"windows"`

	// Pregame delivery marks the alert flusher drains, ordered farthest
	// from tip first.
	FlushWindows []DecisionWindow `yaml:"flush_windows"`

	// Pending alerts are dropped this long after tip-off even if a delivery
	// window was missed.
	PendingEvictAfter time.Duration `yaml:"pending_evict_after"`

	Markets map[Market]MarketParams `yaml:"markets"`
}

// MarketParams are the static per-market simulation parameters.
type MarketParams struct {
	MeanFactor float64 `yaml:"mean_factor"` // fraction of full-game scoring
	BaseSD     float64 `yaml:"base_sd"`
	EarlyAlert bool    `yaml:"early_alert"`
}

// DecisionWindow is a named interval of minutes-to-tip in which the policy
// will evaluate a fixture. Negative minutes mean the game already tipped.
type DecisionWindow struct {
	Label string  `yaml:"label"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
}

// TierCutoffs are the ordered score thresholds for the tier ladder. The
// labels and their ordering are the invariant; the values are an operating
// mode, not law.
type TierCutoffs struct {
	Elite      float64 `yaml:"elite"`
	VeryStrong float64 `yaml:"very_strong"`
	Strong     float64 `yaml:"strong"`
	Lean       float64 `yaml:"lean"`
}

// DefaultModelConfig returns the standard operating mode.
func DefaultModelConfig() *ModelConfig {
	return &ModelConfig{
		Simulations: 50_000,

		HomeCourtBonus: 2.5,
		B2BHomePenalty: 1.0,
		B2BAwayPenalty: 2.0,
		B2BTravelKm:    800,
		B2BTravelStack: 0.5,
		TravelTier1Km:  800,
		TravelTier1Pen: 0.4,
		TravelTier2Km:  1500,
		TravelTier2Pen: 0.75,
		AltitudeVenues: []string{"DEN", "UTA"},
		AltitudeHomeUp: 0.6,
		AltitudeAwayDn: 0.4,

		Tier1PaceUp: 1.5,
		Tier1VarUp:  0.8,
		Tier2PaceDn: -1.0,
		Tier2VarUp:  0.2,

		DefTier1Totals:    1.25,
		DefTier2Totals:    0.75,
		DefTier1SpreadVar: 0.05,
		DefTier2SpreadVar: 0.03,

		CalibrationStrength: 0.65,
		EdgeCap:             0.12,

		TierCutoffs:    TierCutoffs{Elite: 70, VeryStrong: 63, Strong: 58, Lean: 54},
		WinProbCutoffs: TierCutoffs{Elite: 66, VeryStrong: 61, Strong: 57, Lean: 54},

		LeanBetEdge:   0.005,
		WatchOverPct:  45,
		WatchUnderPct: 55,

		MinEdgePct:        2.0,
		CoinFlipBand:      0.02,
		TrapMargin:        1.0,
		SpreadMinFair:     2.0,
		SpreadMinPct:      55,
		MoneylineMinPct:   52,
		MoneylineMinPrice: 1.45,
		MoneylineMaxDog:   0,
		Strict:            false,

		Windows: []DecisionWindow{
			{Label: "early", Min: 15, Max: 30},
			{Label: "10m", Min: 9, Max: 11},
			{Label: "2m", Min: 1, Max: 3},
			{Label: "tipped", Min: -5, Max: 0},
		},

		FlushWindows: []DecisionWindow{
			{Label: "10m", Min: 9, Max: 11},
			{Label: "2m", Min: 1, Max: 3},
		},

		PendingEvictAfter: 30 * time.Minute,

		Markets: map[Market]MarketParams{
			MarketGame:      {MeanFactor: 1.0, BaseSD: 12, EarlyAlert: true},
			MarketSpread:    {BaseSD: 12},
			MarketMoneyline: {},
			MarketQ1:        {MeanFactor: 0.25, BaseSD: 6},
			MarketQ2:        {MeanFactor: 0.25, BaseSD: 6},
			MarketQ3:        {MeanFactor: 0.25, BaseSD: 6},
			MarketQ4:        {MeanFactor: 0.25, BaseSD: 6},
		},
	}
}

// StrictModelConfig returns the tighter operating mode: higher tier cutoffs
// and a weak-underdog moneyline rejection.
func StrictModelConfig() *ModelConfig {
	cfg := DefaultModelConfig()
	cfg.TierCutoffs = TierCutoffs{Elite: 72, VeryStrong: 67, Strong: 60, Lean: 56}
	cfg.MoneylineMaxDog = 3.20
	cfg.Strict = true
	return cfg
}

// LoadModelConfig reads YAML overrides on top of the default config.
func LoadModelConfig(path string) (*ModelConfig, error) {
	cfg := DefaultModelConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing model config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configs the engine cannot run with.
func (c *ModelConfig) Validate() error {
	if c.Simulations <= 0 {
		return fmt.Errorf("simulations must be positive, got %d", c.Simulations)
	}
	if c.CalibrationStrength <= 0 || c.CalibrationStrength > 1 {
		return fmt.Errorf("calibration strength must be in (0, 1], got %v", c.CalibrationStrength)
	}
	if c.EdgeCap <= 0 {
		return fmt.Errorf("edge cap must be positive, got %v", c.EdgeCap)
	}
	if !c.TierCutoffs.ordered() || !c.WinProbCutoffs.ordered() {
		return fmt.Errorf("tier cutoffs must be monotonically decreasing")
	}
	if len(c.Windows) == 0 {
		return fmt.Errorf("at least one decision window required")
	}
	if len(c.FlushWindows) == 0 {
		return fmt.Errorf("at least one flush window required")
	}
	return nil
}

func (t TierCutoffs) ordered() bool {
	return t.Elite >= t.VeryStrong && t.VeryStrong >= t.Strong && t.Strong >= t.Lean
}

// HighAltitude reports whether the venue is in the configured altitude set.
func (c *ModelConfig) HighAltitude(abbr string) bool {
	for _, v := range c.AltitudeVenues {
		if v == abbr {
			return true
		}
	}
	return false
}
