package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"mlbstats/ingestion/internal/cache"
	"mlbstats/ingestion/internal/metrics"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

const userAgent = "mlbstats-ingestion/1.0"

// ErrNotFound is returned when the upstream API answers 404
var ErrNotFound = errors.New("upstream resource not found")

// StatusError is returned for non-success responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, body)
}

// fetcher performs rate limited GET requests with retries and an optional response cache
type fetcher struct {
	httpClient  *http.Client
	rateLimiter chan struct{}
	maxRetries  int
	retryDelay  time.Duration
	accept      string
	cache       cache.Cache
	cacheTTL    time.Duration
}

func newFetcher(timeout time.Duration, maxConcurrency, maxRetries int, retryDelay time.Duration, accept string) *fetcher {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	rateLimiter := make(chan struct{}, maxConcurrency)
	for i := 0; i < maxConcurrency; i++ {
		rateLimiter <- struct{}{}
	}

	return &fetcher{
		rateLimiter: rateLimiter,
		maxRetries:  maxRetries,
		retryDelay:  retryDelay,
		accept:      accept,
		cache:       cache.Nop{},
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// getCached serves the body from the cache when present, otherwise fetches and stores it
func (f *fetcher) getCached(ctx context.Context, endpoint, url string) ([]byte, error) {
	if body, ok, err := f.cache.Get(ctx, cache.GroupUpstream, url); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Response cache read failed")
	} else if ok {
		return body, nil
	}

	body, err := f.get(ctx, endpoint, url)
	if err != nil {
		return nil, err
	}
	if err := f.cache.Set(ctx, cache.GroupUpstream, url, body, f.cacheTTL); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Response cache write failed")
	}
	return body, nil
}

// get performs a GET request with retry logic and rate limiting.
// 429, 502, 503 and 504 are retried with exponential backoff, honouring Retry-After.
func (f *fetcher) get(ctx context.Context, endpoint, url string) ([]byte, error) {
	// Rate limiting: acquire semaphore
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.rateLimiter:
	}
	defer func() { f.rateLimiter <- struct{}{} }()

	attempt := 0
	operation := func() ([]byte, error) {
		attempt++
		if attempt > 1 {
			metrics.RecordAPIRetry(endpoint)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", f.accept)
		req.Header.Set("User-Agent", userAgent)

		log.Debug().
			Str("url", url).
			Int("attempt", attempt).
			Msg("Making API request")

		start := time.Now()
		resp, err := f.httpClient.Do(req)
		if err != nil {
			metrics.RecordAPICall(endpoint, "error", time.Since(start).Seconds())
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, fmt.Errorf("API request failed: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		metrics.RecordAPICall(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			log.Debug().
				Str("url", url).
				Int("size", len(body)).
				Msg("API request successful")
			return body, nil

		case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			log.Warn().
				Str("url", url).
				Int("status", resp.StatusCode).
				Int("attempt", attempt).
				Msg("Received retryable error, will retry")
			if seconds := retryAfter(resp.Header); seconds > 0 {
				return nil, backoff.RetryAfter(seconds)
			}
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}

		case http.StatusNotFound:
			return nil, backoff.Permanent(fmt.Errorf("%s: %w", url, ErrNotFound))

		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, backoff.Permanent(fmt.Errorf("API authentication failed: %w",
				&StatusError{StatusCode: resp.StatusCode, Body: string(body)}))

		default:
			return nil, backoff.Permanent(&StatusError{StatusCode: resp.StatusCode, Body: string(body)})
		}
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = f.retryDelay
	policy.MaxInterval = 30 * time.Second

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(f.maxRetries+1)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			log.Info().
				Str("url", url).
				Err(err).
				Dur("backoff", wait).
				Msg("Retrying API request after backoff")
		}),
	)
	if err != nil {
		metrics.RecordError("client", endpoint)
		return nil, err
	}
	return body, nil
}

// retryAfter reads a Retry-After header given in seconds
func retryAfter(h http.Header) int {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	seconds, err := strconv.Atoi(v)
	if err != nil || seconds < 0 {
		return 0
	}
	return seconds
}
