package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// TeamResolver maps a free-form team name to its canonical abbreviation.
type TeamResolver interface {
	Abbr(name string) (string, bool)
}

// FixtureTimes resolves the scheduled tip-off of a fixture. A false return
// means the fixture is not on today's slate.
type FixtureTimes interface {
	TipOff(ctx context.Context, homeAbbr, awayAbbr string) (time.Time, bool)
}

// OddsSource returns the posted quotes for a fixture. A false return means
// the fixture is not priced yet; that is a degraded state, not an error.
type OddsSource interface {
	Book(ctx context.Context, homeAbbr, awayAbbr string) (QuoteBook, bool)
}

// InjurySource returns the current per-team injury snapshot, keyed by
// abbreviation. Pulled fresh on every evaluation, never cached across passes.
type InjurySource interface {
	Snapshot(ctx context.Context) map[string]InjuryContext
}

// LineupJudge decides whether both rotations are settled enough to call the
// signal CONFIRMED rather than EARLY.
type LineupJudge interface {
	Confirmed(tipOff, now time.Time, home, away InjuryContext) bool
}

// AlertStore is the daily dedup set plus the pending alert queue.
type AlertStore interface {
	// ResetIfNewEpoch clears the dedup set when the UTC day rolls over.
	ResetIfNewEpoch(now time.Time)
	// SeenOrRegister reports whether the fingerprint already fired this
	// epoch, registering it atomically when it has not.
	SeenOrRegister(fingerprint string) bool
	// Queue hands a cleared alert to the pregame scheduler.
	Queue(alert Alert)
}

// Observer receives engine telemetry. All methods must be cheap and
// non-blocking.
type Observer interface {
	EvaluationDone(game string, markets int, d time.Duration)
	MarketSuppressed(market Market, reason string)
	AlertQueued(market Market, tier Tier, edge float64)
}

type noopObserver struct{}

func (noopObserver) EvaluationDone(string, int, time.Duration) {}
func (noopObserver) MarketSuppressed(Market, string)           {}
func (noopObserver) AlertQueued(Market, Tier, float64)         {}

// Engine runs one full fixture pass: situational adjustment, per-market
// simulation in the fixed order, calibration, tiering and the decision
// policy. The engine itself is stateless across passes; daily dedup state
// lives in the AlertStore.
type Engine struct {
	cfg      *ModelConfig
	adjuster *Adjuster
	sampler  *Sampler
	policy   *Policy

	teams    TeamResolver
	fixtures FixtureTimes
	odds     OddsSource
	injuries InjurySource
	lineups  LineupJudge
	store    AlertStore
	observer Observer

	nowFn func() time.Time
}

// Deps are the engine's collaborators. Teams, fixtures, odds, injuries,
// lineups and the store are required; Observer and Now are optional.
type Deps struct {
	Teams    TeamResolver
	Fixtures FixtureTimes
	Odds     OddsSource
	Injuries InjurySource
	Lineups  LineupJudge
	Store    AlertStore
	Observer Observer

	// Now overrides the clock in tests.
	Now func() time.Time
	// Seed fixes the sampler's RNG; zero keeps it time-seeded.
	Seed int64
}

// New creates an engine bound to a model config and its collaborators.
func New(cfg *ModelConfig, deps Deps) *Engine {
	if cfg == nil {
		cfg = DefaultModelConfig()
	}
	if deps.Observer == nil {
		deps.Observer = noopObserver{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Engine{
		cfg:      cfg,
		adjuster: NewAdjuster(cfg),
		sampler:  NewSampler(cfg.Simulations, deps.Seed),
		policy:   NewPolicy(cfg),
		teams:    deps.Teams,
		fixtures: deps.Fixtures,
		odds:     deps.Odds,
		injuries: deps.Injuries,
		lineups:  deps.Lineups,
		store:    deps.Store,
		observer: deps.Observer,
		nowFn:    deps.Now,
	}
}

// EvalOptions tune a single pass.
type EvalOptions struct {
	// Unconditional skips the decision-window gate. Used by the daily ops
	// sweep and by manual submissions.
	Unconditional bool
}

// pass carries the per-fixture state a single evaluation threads through its
// markets. Moneyline reuses the spread's simulated win split, which is why
// spread must run first.
type pass struct {
	game      string
	homeAbbr  string
	awayAbbr  string
	tipOff    time.Time
	stage     Stage
	adj       Adjustments
	homePts   float64
	awayPts   float64
	injurySig string
	defOut    bool
	draw      *Stream

	spreadDone  bool
	homeWinFrac float64
	fairSpread  float64
}

// Evaluate runs one fixture pass. An unknown team name is the only error;
// every other missing precondition returns a valid evaluation with an empty
// markets map.
func (e *Engine) Evaluate(ctx context.Context, req Request, opts EvalOptions) (*Evaluation, error) {
	start := e.nowFn()
	req.ApplyDefaults()

	e.store.ResetIfNewEpoch(start)

	abbrA, okA := e.teams.Abbr(req.TeamA)
	abbrB, okB := e.teams.Abbr(req.TeamB)
	if !okA || !okB {
		name := req.TeamA
		if okA {
			name = req.TeamB
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownTeam, name)
	}

	homeAbbr, awayAbbr := abbrA, abbrB
	if req.HomeSide == SideB {
		homeAbbr, awayAbbr = abbrB, abbrA
	}

	eval := &Evaluation{
		Game:    homeAbbr + "_vs_" + awayAbbr,
		Markets: make(map[Market]Result),
	}

	tip, ok := e.fixtures.TipOff(ctx, homeAbbr, awayAbbr)
	if !ok {
		tip = req.GameTime
	}
	if tip.IsZero() {
		return eval, nil
	}

	if !opts.Unconditional {
		if _, inWindow := e.policy.Window(tip.Sub(start).Minutes()); !inWindow {
			return eval, nil
		}
	}

	book, ok := e.odds.Book(ctx, homeAbbr, awayAbbr)
	if !ok || len(book) == 0 {
		return eval, nil
	}

	snapshot := e.injuries.Snapshot(ctx)
	homeCtx := snapshot[homeAbbr]
	awayCtx := snapshot[awayAbbr]

	p := &pass{
		game:      eval.Game,
		homeAbbr:  homeAbbr,
		awayAbbr:  awayAbbr,
		tipOff:    tip,
		stage:     StageEarly,
		adj:       e.adjuster.Adjust(req, homeAbbr, homeCtx, awayCtx),
		injurySig: InjurySignature(homeCtx, awayCtx),
		defOut:    homeCtx.AnyDefensiveOut() || awayCtx.AnyDefensiveOut(),
		// Draws are keyed by fixture and epoch so a re-evaluation of
		// identical inputs reproduces identical samples.
		draw: e.sampler.Stream(eval.Game + "|" + start.UTC().Format("2006-01-02")),
	}
	p.homePts = p.adj.HomePoints(req.HomeSide)
	p.awayPts = p.adj.AwayPoints(req.HomeSide)
	if e.lineups.Confirmed(tip, start, homeCtx, awayCtx) {
		p.stage = StageConfirmed
	}

	for _, market := range MarketOrder {
		var (
			res Result
			ok  bool
		)
		switch market {
		case MarketSpread:
			res, ok = e.evalSpread(p)
		case MarketMoneyline:
			res, ok = e.evalMoneyline(p)
		default:
			res, ok = e.evalTotal(p, market, book)
		}
		if !ok {
			continue
		}
		eval.Markets[market] = res
		e.emit(eval, p, req, res)
	}

	e.observer.EvaluationDone(eval.Game, len(eval.Markets), e.nowFn().Sub(start))
	return eval, nil
}

// evalSpread simulates the victory margin and applies the spread filters.
// The win split is recorded on the pass even when the filters reject the
// record, because moneyline depends on it.
func (e *Engine) evalSpread(p *pass) (Result, bool) {
	params := e.cfg.Markets[MarketSpread]
	mean := p.homePts - p.awayPts
	sd := params.BaseSD * (1 + p.adj.Variance + p.adj.DefSpreadVar)

	margins := p.draw.Normal(mean, sd)

	p.spreadDone = true
	p.homeWinFrac = margins.FracAbove(0)
	p.fairSpread = round1(-margins.Mean())

	homePct := round1(p.homeWinFrac * 100)
	awayPct := round1((1 - p.homeWinFrac) * 100)

	pick, winPct := PickHome, homePct
	if awayPct > homePct {
		pick, winPct = PickAway, awayPct
	}

	tier := WinProbTier(winPct, e.cfg.WinProbCutoffs)
	allowed, reason := e.policy.AllowSpread(p.fairSpread, winPct, tier)
	if !allowed {
		e.observer.MarketSuppressed(MarketSpread, reason)
		return Result{}, false
	}

	return Result{
		Market:         MarketSpread,
		Fair:           p.fairSpread,
		Tier:           tier,
		Pick:           pick,
		Stage:          p.stage,
		HomeWinPct:     homePct,
		AwayWinPct:     awayPct,
		PaceAdjust:     round2(p.adj.Pace),
		VarianceAdjust: round2(p.adj.Variance),
	}, true
}

// evalMoneyline derives fair win prices from the spread pass's win split.
func (e *Engine) evalMoneyline(p *pass) (Result, bool) {
	if !p.spreadDone {
		e.observer.MarketSuppressed(MarketMoneyline, "missing_spread")
		return Result{}, false
	}

	homeProb := p.homeWinFrac
	awayProb := 1 - homeProb
	if homeProb <= 0 || awayProb <= 0 {
		e.observer.MarketSuppressed(MarketMoneyline, "degenerate_split")
		return Result{}, false
	}

	fairHome := decimal.NewFromFloat(1 / homeProb).Round(2)
	fairAway := decimal.NewFromFloat(1 / awayProb).Round(2)

	pick, pickProb, pickOdds := PickHome, homeProb, fairHome
	if awayProb > homeProb {
		pick, pickProb, pickOdds = PickAway, awayProb, fairAway
	}
	winPct := round1(pickProb * 100)

	tier := WinProbTier(winPct, e.cfg.WinProbCutoffs)
	allowed, reason := e.policy.AllowMoneyline(winPct, pickOdds.InexactFloat64(), tier)
	if !allowed {
		e.observer.MarketSuppressed(MarketMoneyline, reason)
		return Result{}, false
	}

	return Result{
		Market:         MarketMoneyline,
		Tier:           tier,
		Pick:           pick,
		Stage:          p.stage,
		HomeWinPct:     round1(homeProb * 100),
		AwayWinPct:     round1(awayProb * 100),
		FairHomeOdds:   fairHome,
		FairAwayOdds:   fairAway,
		PaceAdjust:     round2(p.adj.Pace),
		VarianceAdjust: round2(p.adj.Variance),
	}, true
}

// evalTotal runs the sample-calibrate-score pipeline for one totals market.
func (e *Engine) evalTotal(p *pass, market Market, book QuoteBook) (Result, bool) {
	quote, ok := book[market]
	if !ok {
		e.observer.MarketSuppressed(market, "no_line")
		return Result{}, false
	}

	params := e.cfg.Markets[market]
	mean := (p.adj.PointsA + p.adj.PointsB + p.adj.Pace + p.adj.DefTotals) * params.MeanFactor
	sd := params.BaseSD * (1 + p.adj.Variance)

	sample := p.draw.Normal(mean, sd)
	fair := sample.Mean()

	rawOver := sample.FracAbove(quote.Line)
	calOver := Calibrate(rawOver, e.cfg.CalibrationStrength)

	pick := PickUnder
	price := quote.Under
	if calOver > 0.5 {
		pick = PickOver
		price = quote.Over
	}

	implied, err := ImpliedProb(price.InexactFloat64())
	if err != nil {
		e.observer.MarketSuppressed(market, "bad_price")
		return Result{}, false
	}
	pickProb := calOver
	if pick == PickUnder {
		pickProb = 1 - calOver
	}
	edge := CapEdge(pickProb-implied, e.cfg.EdgeCap)

	pct := PercentilePosition(sample, quote.Line)
	score := ConfidenceScore(edge, fair, quote.Line, pct)
	tier := TierForScore(score, e.cfg.TierCutoffs)
	signal := e.cfg.LeanSignal(edge, pct)

	verdict := e.policy.CheckTotals(pick, calOver, edge, fair, quote.Line, tier, p.defOut)
	if verdict.Suppress {
		e.observer.MarketSuppressed(market, verdict.Reason)
		return Result{}, false
	}

	return Result{
		Market:         market,
		Line:           quote.Line,
		Fair:           round2(fair),
		Edge:           round4(edge),
		Percentile:     pct,
		Tier:           verdict.Tier,
		Signal:         signal,
		Pick:           pick,
		Stage:          p.stage,
		PaceAdjust:     round2(p.adj.Pace),
		VarianceAdjust: round2(p.adj.Variance),
	}, true
}

// emit runs the dedup gate and queues the alert. A duplicate keeps the
// market record but fires nothing.
func (e *Engine) emit(eval *Evaluation, p *pass, req Request, res Result) {
	fp := Fingerprint(p.game, res.Market, res.Line, res.Tier, p.stage, p.injurySig)
	if e.store.SeenOrRegister(fp) {
		e.observer.MarketSuppressed(res.Market, "duplicate")
		return
	}

	awayTravel := req.TravelKmB
	homeTeam, awayTeam := req.TeamA, req.TeamB
	if req.HomeSide == SideB {
		awayTravel = req.TravelKmA
		homeTeam, awayTeam = req.TeamB, req.TeamA
	}

	alert := Alert{
		Fingerprint:  fp,
		Game:         p.game,
		HomeAbbr:     p.homeAbbr,
		AwayAbbr:     p.awayAbbr,
		TeamA:        req.TeamA,
		TeamB:        req.TeamB,
		HomeTeam:     homeTeam,
		AwayTeam:     awayTeam,
		Market:       res.Market,
		Stage:        p.stage,
		TipOff:       p.tipOff,
		Result:       res,
		AwayTravelKm: awayTravel,
		B2BA:         req.B2BA,
		B2BB:         req.B2BB,
	}
	e.store.Queue(alert)
	eval.Alerts = append(eval.Alerts, alert)
	e.observer.AlertQueued(res.Market, res.Tier, res.Edge)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
