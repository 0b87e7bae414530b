// Package odds fetches posted NBA prices from The Odds API and exposes them
// as per-fixture quote books.
package odds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/courtedge/courtedge/pkg/engine"
	"github.com/courtedge/courtedge/pkg/nba"
)

const (
	// DefaultBaseURL is The Odds API endpoint for NBA odds.
	DefaultBaseURL = "https://api.the-odds-api.com/v4/sports/basketball_nba/odds"

	// The free tier allows 500 requests per month; one request covers the
	// whole slate, so the limiter only guards against tight loops.
	defaultRateLimit = 0.5
	defaultBurst     = 1
)

// marketKeys maps feed market keys to engine markets.
var marketKeys = map[string]engine.Market{
	"totals":    engine.MarketGame,
	"totals_q1": engine.MarketQ1,
	"totals_q2": engine.MarketQ2,
	"totals_q3": engine.MarketQ3,
	"totals_q4": engine.MarketQ4,
}

// Client fetches the slate's quote books in one request.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	resolver   nba.Resolver
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL sets a custom API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.httpClient = client }
}

// WithRateLimit sets custom rate limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// NewClient creates an odds client. The API key is required.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type oddsEvent struct {
	HomeTeam   string `json:"home_team"`
	AwayTeam   string `json:"away_team"`
	Bookmakers []struct {
		Markets []struct {
			Key      string `json:"key"`
			Outcomes []struct {
				Name  string          `json:"name"`
				Point float64         `json:"point"`
				Price decimal.Decimal `json:"price"`
			} `json:"outcomes"`
		} `json:"markets"`
	} `json:"bookmakers"`
}

// FixtureKey identifies one fixture by tricodes.
type FixtureKey struct {
	Home string
	Away string
}

// Fetch pulls the whole slate's totals quotes keyed by fixture. Later
// bookmakers overwrite earlier ones per market; the feed orders by priority.
func (c *Client) Fetch(ctx context.Context) (map[FixtureKey]engine.QuoteBook, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("odds api key missing")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", "us")
	params.Set("markets", "totals,totals_q1,totals_q2,totals_q3,totals_q4")
	params.Set("oddsFormat", "decimal")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching odds: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("odds api status %d", res.StatusCode)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		// No odds live yet; not an error.
		return map[FixtureKey]engine.QuoteBook{}, nil
	}

	var events []oddsEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("parsing odds: %w", err)
	}

	out := make(map[FixtureKey]engine.QuoteBook, len(events))
	for _, ev := range events {
		home, okH := c.resolver.Abbr(ev.HomeTeam)
		away, okA := c.resolver.Abbr(ev.AwayTeam)
		if !okH || !okA {
			continue
		}

		book := make(engine.QuoteBook)
		for _, bm := range ev.Bookmakers {
			for _, m := range bm.Markets {
				market, ok := marketKeys[m.Key]
				if !ok || len(m.Outcomes) < 2 {
					continue
				}
				quote := engine.Quote{Line: m.Outcomes[0].Point}
				for _, o := range m.Outcomes {
					switch o.Name {
					case "Over":
						quote.Over = o.Price
					case "Under":
						quote.Under = o.Price
					}
				}
				book[market] = quote
			}
		}
		if len(book) > 0 {
			out[FixtureKey{Home: home, Away: away}] = book
		}
	}
	return out, nil
}

// BookSource caches one slate fetch for a short window and serves per-fixture
// lookups from it. Satisfies the engine's odds collaborator; a failed fetch
// degrades to "no odds".
type BookSource struct {
	client *Client
	ttl    time.Duration

	mu        sync.Mutex
	books     map[FixtureKey]engine.QuoteBook
	fetchedAt time.Time
}

// NewBookSource wraps a client with a fetch cache. A zero TTL defaults to
// one minute.
func NewBookSource(client *Client, ttl time.Duration) *BookSource {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &BookSource{client: client, ttl: ttl}
}

// Book returns the fixture's quotes, refreshing the slate cache when stale.
func (s *BookSource) Book(ctx context.Context, homeAbbr, awayAbbr string) (engine.QuoteBook, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.books == nil || time.Since(s.fetchedAt) > s.ttl {
		books, err := s.client.Fetch(ctx)
		if err != nil {
			return nil, false
		}
		s.books = books
		s.fetchedAt = time.Now()
	}

	book, ok := s.books[FixtureKey{Home: homeAbbr, Away: awayAbbr}]
	return book, ok
}
