package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

//go:generate mockgen -destination=mocks/mock_savant.go -package=mocks -source=savant.go LeaderboardFeed

// LeaderboardFeed fetches Baseball Savant leaderboards as CSV text
type LeaderboardFeed interface {
	FetchOAA(ctx context.Context, season int) (string, error)
	FetchExpectedStats(ctx context.Context, season int) (string, error)
	FetchSprintSpeed(ctx context.Context, season int) (string, error)
}

// SavantClient reads the public Baseball Savant CSV leaderboards
type SavantClient struct {
	baseURL string
	*fetcher
}

var _ LeaderboardFeed = (*SavantClient)(nil)

// NewSavantClient creates a leaderboard client sharing the API retry policy
func NewSavantClient(baseURL string, timeout time.Duration, maxRetries int) *SavantClient {
	return &SavantClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetcher: newFetcher(timeout, 2, maxRetries, time.Second, "text/csv"),
	}
}

// FetchOAA fetches the fielder outs above average leaderboard
func (c *SavantClient) FetchOAA(ctx context.Context, season int) (string, error) {
	return c.leaderboard(ctx, "outs_above_average", season, url.Values{"type": {"Fielder"}})
}

// FetchExpectedStats fetches the batter expected statistics leaderboard
func (c *SavantClient) FetchExpectedStats(ctx context.Context, season int) (string, error) {
	return c.leaderboard(ctx, "expected_statistics", season, url.Values{"type": {"batter"}})
}

// FetchSprintSpeed fetches the sprint speed leaderboard
func (c *SavantClient) FetchSprintSpeed(ctx context.Context, season int) (string, error) {
	return c.leaderboard(ctx, "sprint_speed", season, url.Values{})
}

func (c *SavantClient) leaderboard(ctx context.Context, name string, season int, params url.Values) (string, error) {
	params.Set("year", strconv.Itoa(season))
	params.Set("min", "q")
	params.Set("csv", "true")

	body, err := c.get(ctx, name, c.baseURL+"/leaderboard/"+name+"?"+params.Encode())
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s leaderboard: %w", name, err)
	}
	return string(body), nil
}
