// Package httpsrc implements an HTTP-backed data source with built-in
// retry/backoff. Issue-tracker exports are commonly pulled straight from an
// API endpoint rather than a file on disk.
//
// Design goals:
//
//   - Keep a tiny, explicit API (a Source that GETs one URL).
//   - Handle transient failures with exponential backoff.
//   - Respect context cancellation during requests and backoff waits.
//   - Be easy to test by injecting a custom http.Client and sleep function.
package httpsrc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config configures the HTTP source.
//
// Zero values are given sensible defaults:
//   - Timeout:        30s
//   - MaxRetries:     3
//   - InitialBackoff: 200ms
//   - MaxBackoff:     5s
type Config struct {
	// Timeout is the per-request timeout applied at the http.Client level.
	Timeout time.Duration

	// MaxRetries is the number of retry attempts after the initial request.
	// MaxRetries=0 means only the initial attempt.
	MaxRetries int

	// InitialBackoff is the base backoff duration for the first retry. Each
	// subsequent retry doubles the previous backoff up to MaxBackoff.
	InitialBackoff time.Duration

	// MaxBackoff caps the exponential backoff duration.
	MaxBackoff time.Duration

	// Headers are added to every request (e.g. Accept, Authorization).
	Headers http.Header

	// Client is an optional custom http.Client. When nil, one is built from
	// Timeout.
	Client *http.Client
}

// Remote is an HTTP data source bound to a single URL. Open issues a GET with
// retries and returns the response body.
type Remote struct {
	url     string
	client  *http.Client
	retries int
	initial time.Duration
	max     time.Duration
	headers http.Header

	// sleep is injectable to make tests fast and deterministic. It returns
	// the context error when the wait is cut short by cancellation.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRemote constructs a Remote for url, applying defaults for zero Config
// values.
func NewRemote(url string, cfg Config) *Remote {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Remote{
		url:     url,
		client:  client,
		retries: cfg.MaxRetries,
		initial: cfg.InitialBackoff,
		max:     cfg.MaxBackoff,
		headers: cfg.Headers,
		sleep:   sleepWithContext,
	}
}

// sleepWithContext sleeps for d but aborts early when ctx is canceled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Open GETs the URL and returns the response body. Transport errors and
// 5xx/429 responses are retried with exponential backoff; other non-2xx
// statuses fail immediately. The caller must close the returned body.
func (r *Remote) Open(ctx context.Context) (io.ReadCloser, error) {
	backoff := r.initial
	var lastErr error

	for attempt := 0; attempt <= r.retries; attempt++ {
		if attempt > 0 {
			if err := r.sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff *= 2
			if backoff > r.max {
				backoff = r.max
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
		if err != nil {
			return nil, fmt.Errorf("build request for %s: %w", r.url, err)
		}
		for k, vs := range r.headers {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := r.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if retryable(resp.StatusCode) {
			resp.Body.Close()
			lastErr = fmt.Errorf("GET %s: status %d", r.url, resp.StatusCode)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			return nil, fmt.Errorf("GET %s: status %d", r.url, resp.StatusCode)
		}
		return resp.Body, nil
	}

	return nil, fmt.Errorf("GET %s: retries exhausted: %w", r.url, lastErr)
}

// retryable reports whether a status code indicates a transient condition.
func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
