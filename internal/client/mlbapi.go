package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mlbstats/ingestion/internal/cache"

	"github.com/rs/zerolog/log"
)

// Stat groups accepted by the people stats endpoints
const (
	GroupHitting  = "hitting"
	GroupPitching = "pitching"
)

// Options configures the MLB Stats API client
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	MaxConcurrency int
	MaxRetries     int
	RetryDelay     time.Duration
	Cache          cache.Cache
	CacheTTL       time.Duration
}

// Client is the MLB Stats API client
type Client struct {
	baseURL string
	*fetcher
}

// NewClient creates a new MLB Stats API client
func NewClient(opts Options) *Client {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	f := newFetcher(opts.Timeout, opts.MaxConcurrency, opts.MaxRetries, opts.RetryDelay, "application/json")
	if opts.Cache != nil {
		f.cache = opts.Cache
		f.cacheTTL = opts.CacheTTL
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		fetcher: f,
	}
}

func (c *Client) endpoint(path string, params url.Values) string {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func (c *Client) getJSON(ctx context.Context, name, u string, cached bool, out interface{}) error {
	var (
		body []byte
		err  error
	)
	if cached {
		body, err = c.getCached(ctx, name, u)
	} else {
		body, err = c.get(ctx, name, u)
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", name, err)
	}
	return nil
}

// FetchTeams fetches all major league clubs
func (c *Client) FetchTeams(ctx context.Context) ([]Team, error) {
	var resp teamsResponse
	u := c.endpoint("/teams", url.Values{"sportId": {"1"}})
	if err := c.getJSON(ctx, "teams", u, true, &resp); err != nil {
		return nil, err
	}

	log.Info().Int("count", len(resp.Teams)).Msg("Fetched teams from API")
	return resp.Teams, nil
}

// FetchRoster fetches a team's 40-man roster for a season
func (c *Client) FetchRoster(ctx context.Context, teamMlbID, season int) ([]RosterEntry, error) {
	var resp rosterResponse
	u := c.endpoint(fmt.Sprintf("/teams/%d/roster", teamMlbID), url.Values{
		"season":     {strconv.Itoa(season)},
		"rosterType": {"40Man"},
	})
	if err := c.getJSON(ctx, "roster", u, false, &resp); err != nil {
		return nil, err
	}
	return resp.Roster, nil
}

// FetchPerson fetches a player's biographical record
func (c *Client) FetchPerson(ctx context.Context, personID int) (*Person, error) {
	var resp peopleResponse
	u := c.endpoint(fmt.Sprintf("/people/%d", personID), nil)
	if err := c.getJSON(ctx, "people", u, true, &resp); err != nil {
		return nil, err
	}
	if len(resp.People) == 0 {
		return nil, fmt.Errorf("person %d: %w", personID, ErrNotFound)
	}
	return &resp.People[0], nil
}

// FetchSchedule fetches regular season and postseason games between two dates inclusive
func (c *Client) FetchSchedule(ctx context.Context, start, end time.Time) ([]ScheduleGame, error) {
	var resp scheduleResponse
	u := c.endpoint("/schedule", url.Values{
		"sportId":   {"1"},
		"startDate": {start.Format("2006-01-02")},
		"endDate":   {end.Format("2006-01-02")},
		"gameType":  {"R,P"},
		"hydrate":   {"probablePitcher"},
	})
	if err := c.getJSON(ctx, "schedule", u, false, &resp); err != nil {
		return nil, err
	}

	var games []ScheduleGame
	for _, d := range resp.Dates {
		games = append(games, d.Games...)
	}

	log.Info().
		Str("start", start.Format("2006-01-02")).
		Str("end", end.Format("2006-01-02")).
		Int("count", len(games)).
		Msg("Fetched schedule from API")
	return games, nil
}

// FetchPlayerStats fetches a player's season stat splits for a group (hitting or pitching)
func (c *Client) FetchPlayerStats(ctx context.Context, personID, season int, group string) ([]StatSplit, error) {
	var resp statsResponse
	u := c.endpoint(fmt.Sprintf("/people/%d/stats", personID), url.Values{
		"stats":  {"season"},
		"season": {strconv.Itoa(season)},
		"group":  {group},
	})
	if err := c.getJSON(ctx, "stats", u, false, &resp); err != nil {
		return nil, err
	}

	var splits []StatSplit
	for _, s := range resp.Stats {
		splits = append(splits, s.Splits...)
	}
	return splits, nil
}

// FetchStandings fetches regular season standings for both leagues
func (c *Client) FetchStandings(ctx context.Context, season int) ([]TeamRecord, error) {
	var resp standingsResponse
	u := c.endpoint("/standings", url.Values{
		"leagueId":       {"103,104"},
		"season":         {strconv.Itoa(season)},
		"standingsTypes": {"regularSeason"},
	})
	if err := c.getJSON(ctx, "standings", u, false, &resp); err != nil {
		return nil, err
	}

	var records []TeamRecord
	for _, r := range resp.Records {
		records = append(records, r.TeamRecords...)
	}
	return records, nil
}

// FetchBoxScore returns the raw box score payload of a game
func (c *Client) FetchBoxScore(ctx context.Context, gamePk int) ([]byte, error) {
	return c.get(ctx, "boxscore", c.endpoint(fmt.Sprintf("/game/%d/boxscore", gamePk), nil))
}

// FetchLinescore fetches the inning-by-inning linescore of a game
func (c *Client) FetchLinescore(ctx context.Context, gamePk int) (*Linescore, error) {
	var resp Linescore
	u := c.endpoint(fmt.Sprintf("/game/%d/linescore", gamePk), nil)
	if err := c.getJSON(ctx, "linescore", u, false, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchSabermetrics returns the raw sabermetrics stat payload for a player
func (c *Client) FetchSabermetrics(ctx context.Context, personID, season int, group string) ([]byte, error) {
	u := c.endpoint(fmt.Sprintf("/people/%d/stats", personID), url.Values{
		"stats":  {"sabermetrics"},
		"season": {strconv.Itoa(season)},
		"group":  {group},
	})
	return c.get(ctx, "sabermetrics", u)
}
