package nba

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/courtedge/courtedge/pkg/engine"
)

// DefaultInjuryURL is the league's static injury report feed.
const DefaultInjuryURL = "https://cdn.nba.com/static/json/liveData/injuries/injuryReport_00.json"

// Minutes-factor decrements per missing rotation piece. The floor keeps a
// decimated roster from projecting below a plausible offense.
const (
	tier1MinutesHit     = 0.10
	tier2MinutesHit     = 0.06
	secondaryMinutesHit = 0.03
	minutesFactorFloor  = 0.85
)

// InjuryClient derives per-team injury contexts from the league report.
// Snapshots are always fetched fresh; a failed fetch degrades to an empty
// map and every team reads as healthy.
type InjuryClient struct {
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// InjuryOption configures the client.
type InjuryOption func(*InjuryClient)

// WithInjuryURL sets a custom feed URL.
func WithInjuryURL(url string) InjuryOption {
	return func(c *InjuryClient) { c.url = url }
}

// WithInjuryHTTPClient sets a custom HTTP client.
func WithInjuryHTTPClient(client *http.Client) InjuryOption {
	return func(c *InjuryClient) { c.httpClient = client }
}

// NewInjuryClient creates an injury report client.
func NewInjuryClient(opts ...InjuryOption) *InjuryClient {
	c := &InjuryClient{
		url: DefaultInjuryURL,
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

type injuryPayload struct {
	InjuryReport struct {
		Teams []struct {
			TeamTricode string `json:"teamTricode"`
			Players     []struct {
				PlayerName string `json:"playerName"`
				Status     string `json:"status"`
			} `json:"players"`
		} `json:"teams"`
	} `json:"injuryReport"`
}

// Snapshot fetches the current report and derives an InjuryContext per team.
func (c *InjuryClient) Snapshot(ctx context.Context) map[string]engine.InjuryContext {
	out := make(map[string]engine.InjuryContext)

	if err := c.limiter.Wait(ctx); err != nil {
		return out
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return out
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return out
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return out
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return out
	}

	var payload injuryPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return out
	}

	for _, team := range payload.InjuryReport.Teams {
		ctx := engine.InjuryContext{MinutesFactor: 1.0}

		for _, p := range team.Players {
			status := strings.ToUpper(p.Status)
			switch status {
			case "QUESTIONABLE":
				ctx.Questionable = true
			case "DOUBTFUL":
				ctx.Doubtful = true
			}
			if status != "OUT" {
				continue
			}

			switch TierOf(team.TeamTricode, p.PlayerName) {
			case StarTier1:
				ctx.Tier1Out = true
				ctx.MinutesFactor -= tier1MinutesHit
			case StarTier2:
				ctx.Tier2Out = true
				ctx.MinutesFactor -= tier2MinutesHit
			default:
				ctx.SecondaryOut = true
				ctx.MinutesFactor -= secondaryMinutesHit
			}

			switch DefTierOf(team.TeamTricode, p.PlayerName) {
			case StarTier1:
				ctx.DefTier1Out = true
			case StarTier2:
				ctx.DefTier2Out = true
			}
		}

		ctx.MinutesFactor = math.Round(math.Max(ctx.MinutesFactor, minutesFactorFloor)*100) / 100
		out[team.TeamTricode] = ctx
	}
	return out
}
