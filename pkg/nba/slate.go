package nba

import (
	"context"
	"math"

	"github.com/courtedge/courtedge/pkg/engine"
)

// SlateBuilder turns today's scoreboard into ready-to-evaluate requests:
// travel distances from arena coordinates, back-to-back detection against
// the rest of the slate, home side always A.
type SlateBuilder struct {
	Scoreboard *ScoreboardClient
}

// Build fetches the slate and assembles one request per game.
func (b SlateBuilder) Build(ctx context.Context) ([]engine.Request, error) {
	games, err := b.Scoreboard.Games(ctx)
	if err != nil {
		return nil, err
	}

	reqs := make([]engine.Request, 0, len(games))
	for _, g := range games {
		travel := math.Round(TravelKm(g.AwayAbbr, g.HomeAbbr)*10) / 10

		reqs = append(reqs, engine.Request{
			TeamA:     g.HomeName,
			TeamB:     g.AwayName,
			GameTime:  g.TipOff,
			HomeSide:  engine.SideA,
			TravelKmA: 0,
			TravelKmB: travel,
			B2BA:      BackToBack(g.HomeAbbr, g.TipOff, games),
			B2BB:      BackToBack(g.AwayAbbr, g.TipOff, games),
		})
	}
	return reqs, nil
}
