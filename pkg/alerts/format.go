package alerts

import (
	"fmt"
	"math"
	"strings"

	"github.com/courtedge/courtedge/pkg/engine"
)

func marketLabel(m engine.Market) string {
	switch m {
	case engine.MarketGame:
		return "🏀 FULL GAME TOTAL"
	case engine.MarketSpread:
		return "📏 FULL GAME SPREAD"
	case engine.MarketMoneyline:
		return "💰 MONEYLINE"
	case engine.MarketQ1:
		return "🏀 Q1 TOTAL"
	case engine.MarketQ2:
		return "🏀 Q2 TOTAL"
	case engine.MarketQ3:
		return "🏀 Q3 TOTAL"
	case engine.MarketQ4:
		return "🏀 Q4 TOTAL"
	}
	return "🏀 " + strings.ToUpper(string(m))
}

func windowPrefix(window string, confirmed bool) string {
	var b strings.Builder
	switch window {
	case "2m":
		b.WriteString("🚨 2 MIN ")
	case "10m":
		b.WriteString("⏰ 10 MIN ")
	default:
		b.WriteString("📢 EARLY ")
	}
	if confirmed {
		return b.String() + "— ✅ Lineups confirmed\n\n"
	}
	return b.String() + "— ⏳ Lineups pending\n\n"
}

// Render builds the delivery text for one alert. The body mirrors the market
// record; the prefix carries the delivery window and lineup status.
func Render(d Dispatch, lineupsConfirmed bool) string {
	a := d.Alert
	r := a.Result

	var b strings.Builder
	b.WriteString(windowPrefix(d.Window, lineupsConfirmed))

	switch {
	case a.Market == engine.MarketSpread:
		pickEmoji := "🏠"
		if r.Pick == engine.PickAway {
			pickEmoji = "✈️"
		}
		fmt.Fprintf(&b, "%s — %s\n", marketLabel(a.Market), r.Tier)
		fmt.Fprintf(&b, "%s PICK: %s\n\n", pickEmoji, r.Pick)
		fmt.Fprintf(&b, "%s vs %s\n", a.TeamA, a.TeamB)
		fmt.Fprintf(&b, "📐 Fair Spread: %g\n", r.Fair)
		fmt.Fprintf(&b, "🏠 Home win %%: %g%%\n", r.HomeWinPct)
		fmt.Fprintf(&b, "✈️ Away win %%: %g%%\n", r.AwayWinPct)
		b.WriteString("🏥 Injuries Included: YES\n")

	case a.Market == engine.MarketMoneyline:
		pickTeam := a.HomeTeam
		pickPct := r.HomeWinPct
		pickOdds := r.FairHomeOdds
		if r.Pick == engine.PickAway {
			pickTeam = a.AwayTeam
			pickPct = r.AwayWinPct
			pickOdds = r.FairAwayOdds
		}
		fmt.Fprintf(&b, "%s — %s\n", marketLabel(a.Market), r.Tier)
		fmt.Fprintf(&b, "🏆 PICK: %s\n\n", pickTeam)
		fmt.Fprintf(&b, "%s vs %s\n", a.TeamA, a.TeamB)
		fmt.Fprintf(&b, "📊 Win Prob: %g%%\n", pickPct)
		fmt.Fprintf(&b, "📈 Fair Odds: %s\n", pickOdds)
		b.WriteString("🏥 Injuries Included: YES\n")

	default:
		sideEmoji := "⬆️"
		if r.Pick == engine.PickUnder {
			sideEmoji = "⬇️"
		}
		fmt.Fprintf(&b, "%s — %s\n", marketLabel(a.Market), r.Tier)
		fmt.Fprintf(&b, "%s PICK: %s\n\n", sideEmoji, r.Pick)
		fmt.Fprintf(&b, "%s vs %s\n", a.TeamA, a.TeamB)
		if tags := b2bTags(a); tags != "" {
			fmt.Fprintf(&b, "🔁 Back-to-Back: %s\n", tags)
		}
		fmt.Fprintf(&b, "✈️ Away Travel: %d km\n", int(math.Round(a.AwayTravelKm)))
		fmt.Fprintf(&b, "📈 Line: %g\n", r.Line)
		fmt.Fprintf(&b, "🎯 Fair: %.2f\n", r.Fair)
		fmt.Fprintf(&b, "⚡ Edge: %.2f%%\n", r.Edge*100)
		fmt.Fprintf(&b, "🏆 Tier: %s\n", r.Tier)
		fmt.Fprintf(&b, "📊 Percentile: %g%%\n", r.Percentile)
		b.WriteString("🏥 Injuries Included: YES\n")
	}

	// Pace environment tag plus the raw modifiers for eyeballing.
	if r.PaceAdjust >= 1.0 {
		b.WriteString("🔥 FAST game environment\n")
	} else if r.PaceAdjust <= -1.0 {
		b.WriteString("🐢 SLOW game environment\n")
	}
	fmt.Fprintf(&b, "\n⚙ Pace adj: %+.2f | Var adj: %+.2f", r.PaceAdjust, r.VarianceAdjust)

	return b.String()
}

func b2bTags(a engine.Alert) string {
	var tags []string
	if a.B2BA {
		tags = append(tags, a.TeamA+" B2B")
	}
	if a.B2BB {
		tags = append(tags, a.TeamB+" B2B")
	}
	return strings.Join(tags, ", ")
}
