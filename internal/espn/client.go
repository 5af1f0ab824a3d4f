// Package espn provides access to the ESPN site API scoreboard and game summaries.
package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rewired-gh/slatewatch/internal/models"
)

const (
	DefaultBaseURL   = "https://site.api.espn.com/apis/site/v2/sports"
	DefaultSportPath = "football/nfl"

	userAgent = "Mozilla/5.0 (compatible; slatewatch/1.0)"
)

// ClientConfig tunes retries and connection reuse.
type ClientConfig struct {
	MaxRetries          int
	RetryDelayBase      time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
}

// Client provides access to the ESPN API.
type Client struct {
	baseURL    string
	sportPath  string
	httpClient *http.Client
	config     ClientConfig
}

// Scoreboard is the current day's slate, labeled by time slot.
type Scoreboard struct {
	Games     []models.Game
	TimeSlots []string
	Season    int
	Week      int
}

// NewClient creates a new ESPN client. Every request is bounded by timeout.
func NewClient(baseURL, sportPath string, timeout time.Duration, cfg ClientConfig) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if sportPath == "" {
		sportPath = DefaultSportPath
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelayBase <= 0 {
		cfg.RetryDelayBase = time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.MaxIdleConns > 0 {
		transport.MaxIdleConns = cfg.MaxIdleConns
	}
	if cfg.MaxIdleConnsPerHost > 0 {
		transport.MaxIdleConnsPerHost = cfg.MaxIdleConnsPerHost
	}
	if cfg.IdleConnTimeout > 0 {
		transport.IdleConnTimeout = cfg.IdleConnTimeout
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		sportPath: strings.Trim(sportPath, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		config: cfg,
	}
}

// FetchScoreboard retrieves today's games and labels each with its time slot.
func (c *Client) FetchScoreboard(ctx context.Context) (*Scoreboard, error) {
	var resp ScoreboardResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/%s/scoreboard", c.baseURL, c.sportPath), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch scoreboard: %w", err)
	}

	board := &Scoreboard{
		Games:  make([]models.Game, 0, len(resp.Events)),
		Season: resp.Season.Year,
		Week:   resp.Week.Number,
	}
	slots := make(map[string]bool)
	for _, ev := range resp.Events {
		game, ok := convertEvent(ev)
		if !ok {
			continue
		}
		board.Games = append(board.Games, game)
		slots[game.TimeSlot] = true
	}

	board.TimeSlots = make([]string, 0, len(slots))
	for slot := range slots {
		board.TimeSlots = append(board.TimeSlots, slot)
	}
	sort.Strings(board.TimeSlots)

	return board, nil
}

// FetchSummary retrieves the raw summary payload for one game.
func (c *Client) FetchSummary(ctx context.Context, gameID string) (*Summary, error) {
	var summary Summary
	u := fmt.Sprintf("%s/%s/summary?event=%s", c.baseURL, c.sportPath, url.QueryEscape(gameID))
	if err := c.getJSON(ctx, u, &summary); err != nil {
		return nil, fmt.Errorf("failed to fetch summary for game %s: %w", gameID, err)
	}
	return &summary, nil
}

// convertEvent maps a scoreboard event onto a Game. Events without a
// competition are skipped.
func convertEvent(ev Event) (models.Game, bool) {
	if len(ev.Competitions) == 0 {
		return models.Game{}, false
	}
	comp := ev.Competitions[0]

	game := models.Game{
		ID: ev.ID,
		Status: models.GameStatus{
			Type:        comp.Status.Type.State,
			Description: comp.Status.Type.Description,
			Detail:      comp.Status.Type.Detail,
		},
	}
	for _, competitor := range comp.Competitors {
		team := models.Team{
			Name:         competitor.Team.DisplayName,
			Abbreviation: competitor.Team.Abbreviation,
		}
		score, _ := strconv.Atoi(competitor.Score)
		switch competitor.HomeAway {
		case "home":
			game.HomeTeam = team
			game.HomeScore = score
		case "away":
			game.AwayTeam = team
			game.AwayScore = score
		}
	}

	if kickoff, err := parseKickoff(comp.Date); err == nil {
		game.Date = kickoff
		game.TimeSlot = TimeSlot(kickoff)
	}

	return game, true
}

// parseKickoff accepts the provider's minute-precision timestamps as well as RFC 3339.
func parseKickoff(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04Z07:00", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized kickoff time %q", s)
}

// getJSON performs a GET with retry and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, urlStr string, out any) error {
	resp, err := c.doRequest(ctx, urlStr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ESPN API error: status=%d, body=%s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// doRequest performs HTTP request with retry logic
func (c *Client) doRequest(ctx context.Context, urlStr string) (*http.Response, error) {
	var lastErr error

	for i := 0; i < c.config.MaxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
		} else {
			return resp, nil
		}

		if i == c.config.MaxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.config.RetryDelayBase * time.Duration(i+1)):
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
