// Package collector implements the content collectors the orchestrator runs:
// Google News search (web), Hacker News, Reddit and Google Trends.
// Every upstream call is paced by a rate limiter, guarded by a circuit
// breaker and retried with backoff.
package collector

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/resilience/circuitbreaker"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/resilience/retry"
)

const (
	maxBodySize      = 5 * 1024 * 1024 // 5MB
	defaultUserAgent = "linkedinposts-curator/1.0"
	defaultTimeout   = 15 * time.Second
)

// Option configures a collector.
type Option func(*options)

type options struct {
	client    *http.Client
	baseURL   string
	retry     retry.Config
	rps       float64
	burst     int
	userAgent string
	now       func() time.Time
}

// WithHTTPClient sets the HTTP client used for upstream requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithBaseURL overrides the upstream API base URL.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithRetryConfig overrides the retry policy (default retry.CollectorConfig).
func WithRetryConfig(cfg retry.Config) Option {
	return func(o *options) { o.retry = cfg }
}

// WithRateLimit sets requests per second and burst. rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		o.rps = rps
		o.burst = burst
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithClock sets the time source for RetrievedAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(baseURL string, rps float64, opts []Option) options {
	o := options{
		client:    &http.Client{Timeout: defaultTimeout},
		baseURL:   baseURL,
		retry:     retry.CollectorConfig(),
		rps:       rps,
		burst:     1,
		userAgent: defaultUserAgent,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// apiClient performs paced, breaker-guarded, retried GET requests for one source.
type apiClient struct {
	source    string
	client    *http.Client
	limiter   *rate.Limiter
	breaker   *circuitbreaker.CircuitBreaker
	retry     retry.Config
	userAgent string
}

func newAPIClient(source string, o options) *apiClient {
	limit := rate.Inf
	if o.rps > 0 {
		limit = rate.Limit(o.rps)
	}
	cfg := o.retry
	if cfg.OperationName == "" {
		cfg.OperationName = "collector." + source
	}
	return &apiClient{
		source:    source,
		client:    o.client,
		limiter:   rate.NewLimiter(limit, max(o.burst, 1)),
		breaker:   circuitbreaker.New(circuitbreaker.CollectorConfig(source)),
		retry:     cfg,
		userAgent: o.userAgent,
	}
}

// get fetches rawURL and returns the response body.
func (c *apiClient) get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	res := retry.Do(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		body, err := circuitbreaker.Call(c.breaker, func() ([]byte, error) {
			return c.doGet(ctx, rawURL, accept)
		})
		if circuitbreaker.IsRejection(err) {
			slog.Warn("collector circuit breaker open, request rejected",
				slog.String("source", c.source),
				slog.String("state", c.breaker.State().String()))
		}
		return body, err
	})
	if !res.Success {
		return nil, fmt.Errorf("%s: request failed after %d attempt(s): %w", c.source, res.Attempts, res.Err)
	}
	return res.Data, nil
}

// doGet performs a single request without retry or circuit breaker.
func (c *apiClient) doGet(ctx context.Context, rawURL, accept string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status: %s", resp.Status),
		}
	}

	// Limit body size to prevent memory exhaustion
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("response body exceeds %d bytes", maxBodySize)
	}
	return body, nil
}
