package nba

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/courtedge/courtedge/pkg/engine"
)

const scoreboardJSON = `{
  "scoreboard": {
    "games": [
      {
        "gameId": "0022600501",
        "gameTimeUTC": "2026-01-16T00:30:00Z",
        "homeTeam": {"teamName": "Celtics", "teamTricode": "BOS"},
        "awayTeam": {"teamName": "Heat", "teamTricode": "MIA"}
      },
      {
        "gameId": "0022600502",
        "gameTimeUTC": "2026-01-16T02:00:00Z",
        "homeTeam": {"teamName": "Lakers", "teamTricode": "LAL"},
        "awayTeam": {"teamName": "Nuggets", "teamTricode": "DEN"}
      }
    ]
  }
}`

func scoreboardServer(t *testing.T) *ScoreboardClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(scoreboardJSON))
	}))
	t.Cleanup(srv.Close)
	return NewScoreboardClient(WithScoreboardURL(srv.URL))
}

func TestScoreboardGames(t *testing.T) {
	c := scoreboardServer(t)

	games, err := c.Games(context.Background())
	if err != nil {
		t.Fatalf("Games error: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("games = %d, want 2", len(games))
	}
	if games[0].HomeAbbr != "BOS" || games[0].AwayAbbr != "MIA" {
		t.Errorf("first game = %+v", games[0])
	}
	want := time.Date(2026, 1, 16, 0, 30, 0, 0, time.UTC)
	if !games[0].TipOff.Equal(want) {
		t.Errorf("tip = %v, want %v", games[0].TipOff, want)
	}
}

func TestScoreboardTipOff(t *testing.T) {
	c := scoreboardServer(t)

	tip, ok := c.TipOff(context.Background(), "LAL", "DEN")
	if !ok {
		t.Fatal("fixture not found")
	}
	if tip.Hour() != 2 {
		t.Errorf("tip = %v", tip)
	}

	if _, ok := c.TipOff(context.Background(), "DEN", "LAL"); ok {
		t.Error("reversed sides should not match")
	}
}

func TestScoreboardDegradesToNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewScoreboardClient(WithScoreboardURL(srv.URL))
	if _, ok := c.TipOff(context.Background(), "BOS", "MIA"); ok {
		t.Error("feed failure should degrade to not found")
	}
}

func TestBackToBack(t *testing.T) {
	tip := time.Date(2026, 1, 16, 0, 30, 0, 0, time.UTC)
	games := []Game{
		{HomeAbbr: "BOS", AwayAbbr: "NYK", TipOff: tip.Add(-24 * time.Hour)},
		{HomeAbbr: "MIA", AwayAbbr: "ORL", TipOff: tip.Add(-3 * 24 * time.Hour)},
	}

	if !BackToBack("BOS", tip, games) {
		t.Error("BOS played 24h earlier, want back-to-back")
	}
	if BackToBack("MIA", tip, games) {
		t.Error("MIA played three days earlier, want rested")
	}
	if BackToBack("DEN", tip, games) {
		t.Error("DEN has no prior game")
	}
}

const injuryJSON = `{
  "injuryReport": {
    "teams": [
      {
        "teamTricode": "DEN",
        "players": [
          {"playerName": "Nikola Jokic", "status": "Out"},
          {"playerName": "Jamal Murray", "status": "Questionable"}
        ]
      },
      {
        "teamTricode": "MIN",
        "players": [
          {"playerName": "Rudy Gobert", "status": "Out"},
          {"playerName": "Some Reserve", "status": "Out"}
        ]
      }
    ]
  }
}`

func injuryServer(t *testing.T) *InjuryClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(injuryJSON))
	}))
	t.Cleanup(srv.Close)
	return NewInjuryClient(WithInjuryURL(srv.URL))
}

func TestInjurySnapshot(t *testing.T) {
	c := injuryServer(t)
	snap := c.Snapshot(context.Background())

	den := snap["DEN"]
	if !den.Tier1Out {
		t.Error("Jokic out should flag tier 1")
	}
	if !den.Questionable {
		t.Error("Murray questionable should flag uncertainty")
	}
	if den.MinutesFactor != 0.90 {
		t.Errorf("DEN minutes factor = %v, want 0.90", den.MinutesFactor)
	}

	minn := snap["MIN"]
	if !minn.DefTier1Out {
		t.Error("Gobert out should flag defensive tier 1")
	}
	if minn.Tier1Out {
		t.Error("Gobert is not an offensive tier-1 star")
	}
	if !minn.SecondaryOut {
		t.Error("unlisted OUT player should flag secondary")
	}
	// Gobert counts as secondary on offense (0.03) plus the reserve (0.03).
	if minn.MinutesFactor != 0.94 {
		t.Errorf("MIN minutes factor = %v, want 0.94", minn.MinutesFactor)
	}
}

func TestInjurySnapshotDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewInjuryClient(WithInjuryURL(srv.URL))
	if snap := c.Snapshot(context.Background()); len(snap) != 0 {
		t.Errorf("snapshot = %v, want empty on bad payload", snap)
	}
}

func TestLineupJudge(t *testing.T) {
	judge := LineupJudge{}
	tip := time.Date(2026, 1, 16, 0, 30, 0, 0, time.UTC)
	healthy := engine.InjuryContext{MinutesFactor: 1.0}
	uncertain := engine.InjuryContext{Questionable: true}

	tests := []struct {
		name string
		now  time.Time
		home engine.InjuryContext
		away engine.InjuryContext
		want bool
	}{
		{"too early", tip.Add(-45 * time.Minute), healthy, healthy, false},
		{"inside window settled", tip.Add(-20 * time.Minute), healthy, healthy, true},
		{"home uncertain", tip.Add(-20 * time.Minute), uncertain, healthy, false},
		{"away uncertain", tip.Add(-20 * time.Minute), healthy, uncertain, false},
		{"out players do not block", tip.Add(-20 * time.Minute), engine.InjuryContext{Tier1Out: true}, healthy, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := judge.Confirmed(tip, tt.now, tt.home, tt.away); got != tt.want {
				t.Errorf("Confirmed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSlateBuilder(t *testing.T) {
	c := scoreboardServer(t)
	reqs, err := SlateBuilder{Scoreboard: c}.Build(context.Background())
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("requests = %d, want 2", len(reqs))
	}

	first := reqs[0]
	if first.TeamA != "Celtics" || first.TeamB != "Heat" {
		t.Errorf("teams = %q vs %q", first.TeamA, first.TeamB)
	}
	if first.HomeSide != engine.SideA {
		t.Errorf("home side = %q, want A", first.HomeSide)
	}
	// Miami to Boston is about 2,025 km.
	if first.TravelKmB < 1900 || first.TravelKmB > 2150 {
		t.Errorf("away travel = %v, want ~2025", first.TravelKmB)
	}
	if first.TravelKmA != 0 {
		t.Errorf("home travel = %v, want 0", first.TravelKmA)
	}
}
