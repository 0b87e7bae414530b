package engine

// Adjuster turns raw baseline projections plus situational facts into the
// adjusted per-side projections and scalar modifiers the sampler runs on.
// All adjustments are additive and deterministic.
type Adjuster struct {
	cfg *ModelConfig
}

// NewAdjuster creates an adjuster bound to a model config.
func NewAdjuster(cfg *ModelConfig) *Adjuster {
	if cfg == nil {
		cfg = DefaultModelConfig()
	}
	return &Adjuster{cfg: cfg}
}

// Adjust applies home court, fatigue, travel, altitude and injury effects.
// homeAbbr is the resolved venue identifier (for the altitude set); homeCtx
// and awayCtx are the per-side injury snapshots.
func (a *Adjuster) Adjust(req Request, homeAbbr string, homeCtx, awayCtx InjuryContext) Adjustments {
	cfg := a.cfg

	adj := Adjustments{
		PointsA: req.BasePointsA,
		PointsB: req.BasePointsB,
	}

	aIsHome := req.HomeSide == SideA

	// Rotation depletion scales the baseline before any situational add-ons.
	// A zero factor means "no snapshot", not "team scores nothing".
	factorA, factorB := homeCtx.MinutesFactor, awayCtx.MinutesFactor
	if !aIsHome {
		factorA, factorB = factorB, factorA
	}
	if factorA > 0 {
		adj.PointsA *= factorA
	}
	if factorB > 0 {
		adj.PointsB *= factorB
	}

	// Home court.
	if aIsHome {
		adj.PointsA += cfg.HomeCourtBonus
	} else {
		adj.PointsB += cfg.HomeCourtBonus
	}

	// Back-to-back fatigue: the home side absorbs a short rest better than
	// a side that also traveled.
	if req.B2BA {
		if aIsHome {
			adj.PointsA -= cfg.B2BHomePenalty
		} else {
			adj.PointsA -= cfg.B2BAwayPenalty
		}
	}
	if req.B2BB {
		if !aIsHome {
			adj.PointsB -= cfg.B2BHomePenalty
		} else {
			adj.PointsB -= cfg.B2BAwayPenalty
		}
	}

	awayB2B := req.B2BB
	awayTravel := req.TravelKmB
	if !aIsHome {
		awayB2B = req.B2BA
		awayTravel = req.TravelKmA
	}

	// Travel stacks with a back-to-back only past the stacking threshold.
	stack := 0.0
	if awayB2B && awayTravel > cfg.B2BTravelKm {
		stack += cfg.B2BTravelStack
	}

	// Pure travel fatigue, two mutually exclusive tiers: the longer-distance
	// tier wins.
	switch {
	case awayTravel > cfg.TravelTier2Km:
		stack += cfg.TravelTier2Pen
	case awayTravel > cfg.TravelTier1Km:
		stack += cfg.TravelTier1Pen
	}

	if aIsHome {
		adj.PointsB -= stack
	} else {
		adj.PointsA -= stack
	}

	// Altitude edge, home venue only.
	if cfg.HighAltitude(homeAbbr) {
		if aIsHome {
			adj.PointsA += cfg.AltitudeHomeUp
			adj.PointsB -= cfg.AltitudeAwayDn
		} else {
			adj.PointsB += cfg.AltitudeHomeUp
			adj.PointsA -= cfg.AltitudeAwayDn
		}
	}

	// Injury pace/variance effects stack across both sides.
	for _, ctx := range []InjuryContext{homeCtx, awayCtx} {
		if ctx.Tier1Out {
			adj.Pace += cfg.Tier1PaceUp
			adj.Variance += cfg.Tier1VarUp
		}
		if ctx.Tier2Out {
			adj.Pace += cfg.Tier2PaceDn
			adj.Variance += cfg.Tier2VarUp
		}

		// Defensive anchors out push totals up; spreads get wider instead.
		if ctx.DefTier1Out {
			adj.DefTotals += cfg.DefTier1Totals
			adj.DefSpreadVar += cfg.DefTier1SpreadVar
		}
		if ctx.DefTier2Out {
			adj.DefTotals += cfg.DefTier2Totals
			adj.DefSpreadVar += cfg.DefTier2SpreadVar
		}
	}

	return adj
}
