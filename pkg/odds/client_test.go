package odds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/courtedge/courtedge/pkg/engine"
)

const oddsJSON = `[
  {
    "home_team": "Boston Celtics",
    "away_team": "Miami Heat",
    "bookmakers": [
      {
        "markets": [
          {
            "key": "totals",
            "outcomes": [
              {"name": "Over", "point": 224.5, "price": 1.90},
              {"name": "Under", "point": 224.5, "price": 1.90}
            ]
          },
          {
            "key": "totals_q1",
            "outcomes": [
              {"name": "Over", "point": 56.5, "price": 1.87},
              {"name": "Under", "point": 56.5, "price": 1.93}
            ]
          },
          {
            "key": "h2h",
            "outcomes": [
              {"name": "Boston Celtics", "price": 1.55},
              {"name": "Miami Heat", "price": 2.45}
            ]
          }
        ]
      }
    ]
  },
  {
    "home_team": "Unknown Franchise",
    "away_team": "Miami Heat",
    "bookmakers": []
  }
]`

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(100, 10))
}

func TestFetchParsesQuoteBooks(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apiKey") != "test-key" {
			t.Errorf("missing api key, query: %s", r.URL.RawQuery)
		}
		if r.URL.Query().Get("oddsFormat") != "decimal" {
			t.Error("want decimal odds format")
		}
		w.Write([]byte(oddsJSON))
	})

	books, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(books) != 1 {
		t.Fatalf("books = %d, want 1 (unresolvable fixture dropped)", len(books))
	}

	book := books[FixtureKey{Home: "BOS", Away: "MIA"}]
	game, ok := book[engine.MarketGame]
	if !ok {
		t.Fatalf("no full-game quote: %v", book)
	}
	if game.Line != 224.5 {
		t.Errorf("line = %v, want 224.5", game.Line)
	}
	if game.Over.String() != "1.9" || game.Under.String() != "1.9" {
		t.Errorf("prices = %s / %s", game.Over, game.Under)
	}

	if _, ok := book[engine.MarketQ1]; !ok {
		t.Error("missing q1 quote")
	}
	// Unmapped market keys are ignored.
	if len(book) != 2 {
		t.Errorf("book has %d markets, want 2", len(book))
	}
}

func TestFetchEmptyBodyMeansNoOddsYet(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {})

	books, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("empty body should not error: %v", err)
	}
	if len(books) != 0 {
		t.Errorf("books = %v, want none", books)
	}
}

func TestFetchRequiresKey(t *testing.T) {
	c := NewClient("")
	if _, err := c.Fetch(context.Background()); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestBookSourceCachesAndDegrades(t *testing.T) {
	var calls int
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(oddsJSON))
	})
	src := NewBookSource(c, time.Minute)

	if _, ok := src.Book(context.Background(), "BOS", "MIA"); !ok {
		t.Fatal("fixture not found")
	}
	if _, ok := src.Book(context.Background(), "BOS", "MIA"); !ok {
		t.Fatal("cached lookup failed")
	}
	if calls != 1 {
		t.Errorf("upstream calls = %d, want 1 (cached)", calls)
	}

	if _, ok := src.Book(context.Background(), "LAL", "DEN"); ok {
		t.Error("unpriced fixture should be absent")
	}
}

func TestBookSourceFailureDegradesToNoOdds(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	src := NewBookSource(c, time.Minute)

	if _, ok := src.Book(context.Background(), "BOS", "MIA"); ok {
		t.Error("feed failure should degrade to no odds")
	}
}
