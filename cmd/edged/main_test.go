package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/courtedge/courtedge/pkg/alerts"
	"github.com/courtedge/courtedge/pkg/engine"
	"github.com/courtedge/courtedge/pkg/metrics"
	"github.com/courtedge/courtedge/pkg/streaming"
)

type fixedTeams map[string]string

func (f fixedTeams) Abbr(name string) (string, bool) {
	abbr, ok := f[name]
	return abbr, ok
}

type noFixtures struct{}

func (noFixtures) TipOff(context.Context, string, string) (time.Time, bool) {
	return time.Time{}, false
}

type fixedOdds engine.QuoteBook

func (f fixedOdds) Book(context.Context, string, string) (engine.QuoteBook, bool) {
	return engine.QuoteBook(f), true
}

type noInjuries struct{}

func (noInjuries) Snapshot(context.Context) map[string]engine.InjuryContext { return nil }

type noLineups struct{}

func (noLineups) Confirmed(time.Time, time.Time, engine.InjuryContext, engine.InjuryContext) bool {
	return false
}

func newTestService(t *testing.T) *service {
	t.Helper()

	store := alerts.NewStore()
	book := fixedOdds{
		engine.MarketGame: {
			Line:  224.5,
			Over:  decimal.NewFromFloat(1.90),
			Under: decimal.NewFromFloat(1.90),
		},
	}
	eng := engine.New(nil, engine.Deps{
		Teams:    fixedTeams{"Boston Celtics": "BOS", "Miami Heat": "MIA"},
		Fixtures: noFixtures{},
		Odds:     book,
		Injuries: noInjuries{},
		Lineups:  noLineups{},
		Store:    store,
		Seed:     42,
	})

	return &service{
		engine:  eng,
		store:   store,
		hub:     streaming.NewHub(),
		metrics: metrics.New(store.PendingCount),
		simSem:  make(chan struct{}, 1),
	}
}

func simulateBody(t *testing.T, windowed bool) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"team_a":    "Boston Celtics",
		"team_b":    "Miami Heat",
		"game_time": time.Now().Add(5 * time.Hour).UTC().Format(time.RFC3339),
		"windowed":  windowed,
	})
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(raw)
}

func TestSimulateWindowedFlag(t *testing.T) {
	svc := newTestService(t)

	// A plain manual submission evaluates unconditionally, even hours out.
	rec := httptest.NewRecorder()
	svc.handleSimulate(rec, httptest.NewRequest(http.MethodPost, "/simulate", simulateBody(t, false)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body)
	}
	var eval engine.Evaluation
	if err := json.Unmarshal(rec.Body.Bytes(), &eval); err != nil {
		t.Fatal(err)
	}
	if len(eval.Markets) == 0 {
		t.Fatal("unconditional simulate produced no markets")
	}

	// Opting in to the window gate suppresses a fixture five hours from tip.
	rec = httptest.NewRecorder()
	svc.handleSimulate(rec, httptest.NewRequest(http.MethodPost, "/simulate", simulateBody(t, true)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body)
	}
	eval = engine.Evaluation{}
	if err := json.Unmarshal(rec.Body.Bytes(), &eval); err != nil {
		t.Fatal(err)
	}
	if len(eval.Markets) != 0 {
		t.Fatalf("windowed simulate evaluated outside every window: %v", eval.Markets)
	}
}

func TestSimulateRejectsUnknownTeam(t *testing.T) {
	svc := newTestService(t)

	raw, _ := json.Marshal(map[string]string{"team_a": "Springfield Atoms", "team_b": "Miami Heat"})
	rec := httptest.NewRecorder()
	svc.handleSimulate(rec, httptest.NewRequest(http.MethodPost, "/simulate", bytes.NewReader(raw)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
