package nba

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultScoreboardURL is the league's static scoreboard feed.
	DefaultScoreboardURL = "https://cdn.nba.com/static/json/liveData/scoreboard/todaysScoreboard_00.json"

	// The CDN feeds are static JSON; a handful of requests per second is
	// already generous.
	scoreboardRateLimit = 2.0
	scoreboardBurst     = 2

	// A second game inside this span counts as a back-to-back.
	backToBackWindow = 26 * time.Hour
)

// Game is one scoreboard entry.
type Game struct {
	ID       string
	HomeName string
	AwayName string
	HomeAbbr string
	AwayAbbr string
	TipOff   time.Time
}

// ScoreboardClient fetches today's slate from the league CDN.
type ScoreboardClient struct {
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ScoreboardOption configures the client.
type ScoreboardOption func(*ScoreboardClient)

// WithScoreboardURL sets a custom feed URL.
func WithScoreboardURL(url string) ScoreboardOption {
	return func(c *ScoreboardClient) { c.url = url }
}

// WithScoreboardHTTPClient sets a custom HTTP client.
func WithScoreboardHTTPClient(client *http.Client) ScoreboardOption {
	return func(c *ScoreboardClient) { c.httpClient = client }
}

// NewScoreboardClient creates a scoreboard client.
func NewScoreboardClient(opts ...ScoreboardOption) *ScoreboardClient {
	c := &ScoreboardClient{
		url: DefaultScoreboardURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(scoreboardRateLimit), scoreboardBurst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type scoreboardPayload struct {
	Scoreboard struct {
		Games []struct {
			GameID      string `json:"gameId"`
			GameTimeUTC string `json:"gameTimeUTC"`
			HomeTeam    struct {
				TeamName    string `json:"teamName"`
				TeamTricode string `json:"teamTricode"`
			} `json:"homeTeam"`
			AwayTeam struct {
				TeamName    string `json:"teamName"`
				TeamTricode string `json:"teamTricode"`
			} `json:"awayTeam"`
		} `json:"games"`
	} `json:"scoreboard"`
}

// Games fetches today's games. Entries without a tip-off time are dropped.
func (c *ScoreboardClient) Games(ctx context.Context) ([]Game, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching scoreboard: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scoreboard status %d", res.StatusCode)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	var payload scoreboardPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parsing scoreboard: %w", err)
	}

	var games []Game
	for _, g := range payload.Scoreboard.Games {
		tip, err := time.Parse(time.RFC3339, g.GameTimeUTC)
		if err != nil {
			continue
		}
		games = append(games, Game{
			ID:       g.GameID,
			HomeName: g.HomeTeam.TeamName,
			AwayName: g.AwayTeam.TeamName,
			HomeAbbr: g.HomeTeam.TeamTricode,
			AwayAbbr: g.AwayTeam.TeamTricode,
			TipOff:   tip.UTC(),
		})
	}
	return games, nil
}

// TipOff finds the scheduled tip of the fixture on today's slate. Satisfies
// the engine's fixture-time collaborator; a feed failure degrades to "not
// scheduled".
func (c *ScoreboardClient) TipOff(ctx context.Context, homeAbbr, awayAbbr string) (time.Time, bool) {
	games, err := c.Games(ctx)
	if err != nil {
		return time.Time{}, false
	}
	for _, g := range games {
		if g.HomeAbbr == homeAbbr && g.AwayAbbr == awayAbbr {
			return g.TipOff, true
		}
	}
	return time.Time{}, false
}

// BackToBack reports whether the team has another game ending within the
// back-to-back window before this tip.
func BackToBack(teamAbbr string, tip time.Time, games []Game) bool {
	for _, g := range games {
		if g.HomeAbbr != teamAbbr && g.AwayAbbr != teamAbbr {
			continue
		}
		diff := tip.Sub(g.TipOff)
		if diff > 0 && diff <= backToBackWindow {
			return true
		}
	}
	return false
}
