package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Paapzz/Gamelist/pkg/sharded"
)

// Common errors.
var (
	ErrServerError = errors.New("api: server error")
	ErrBadResponse = errors.New("api: response body is not a record array")
)

// Policy is the retry policy for a single page fetch: how many times to
// retry, how long to wait between tries, and which status codes are worth
// retrying at all.
type Policy struct {
	// Attempts is the number of retries after the first try.
	Attempts int

	// Backoff is the initial backoff duration.
	Backoff time.Duration

	// MaxBackoff caps the exponential backoff.
	MaxBackoff time.Duration
}

// Retryable reports whether a response status code indicates a transient
// failure. Rate limiting and the server error class qualify; everything else
// is final.
func (p Policy) Retryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// Delay returns the backoff before retry attempt n (1-based), with jitter
// between 0.5x and 1.5x of the exponential schedule.
func (p Policy) Delay(attempt int) time.Duration {
	backoff := p.Backoff * time.Duration(1<<uint(attempt-1))
	if backoff > p.MaxBackoff {
		backoff = p.MaxBackoff
	}
	return time.Duration(float64(backoff) * (0.5 + rand.Float64()))
}

// Options configures the API client.
type Options struct {
	// BaseURL is the dataset endpoint. offset and limit are added as query
	// parameters; any query parameters already present are preserved.
	BaseURL string

	// Timeout for individual requests.
	// Default: 30s
	Timeout time.Duration

	// Retry controls backoff on transient failures.
	Retry Policy
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Timeout: 30 * time.Second,
		Retry: Policy{
			Attempts:   5,
			Backoff:    time.Second,
			MaxBackoff: 30 * time.Second,
		},
	}
}

// Client fetches pages of records from the dataset endpoint.
type Client struct {
	client *http.Client
	opts   Options

	// sleep waits between retries; replaced in tests for determinism.
	sleep func(context.Context, time.Duration) error
}

// NewClient creates a new API client with the given options.
func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Client{
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
		sleep:  sleepCtx,
	}
}

// FetchPage fetches one page of records at the given offset. Transient
// failures are retried per the policy; the caller sees only the final
// outcome.
func (c *Client) FetchPage(ctx context.Context, offset, limit int) ([]sharded.Record, error) {
	u, err := pageURL(c.opts.BaseURL, offset, limit)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.opts.Retry.Attempts; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, c.opts.Retry.Delay(attempt)); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if c.opts.Retry.Retryable(resp.StatusCode) {
			resp.Body.Close()
			lastErr = fmt.Errorf("%w: %d %s", ErrServerError, resp.StatusCode, resp.Status)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, fmt.Errorf("api: unexpected status code: %d", resp.StatusCode)
		}

		records, err := decodePage(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		return records, nil
	}

	return nil, fmt.Errorf("fetch page offset=%d failed after %d attempts: %w",
		offset, c.opts.Retry.Attempts+1, lastErr)
}

// pageURL builds the request URL with offset and limit query parameters.
func pageURL(base string, offset, limit int) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// decodePage parses a response body as a JSON array of raw records.
func decodePage(r io.Reader) ([]sharded.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var records []sharded.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return records, nil
}

// sleepCtx waits for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
