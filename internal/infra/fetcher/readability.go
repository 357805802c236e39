package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/resilience/circuitbreaker"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/resilience/retry"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/usecase/collect"
)

// ReadabilityFetcher implements collect.ContentFetcher with the Mozilla
// Readability algorithm. Requests are retried on transient failures and
// guarded by a circuit breaker. Safe for concurrent use.
type ReadabilityFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         Config
}

var _ collect.ContentFetcher = (*ReadabilityFetcher)(nil)

// NewReadabilityFetcher creates a fetcher. Every redirect target is
// re-validated against the SSRF rules.
func NewReadabilityFetcher(config Config) *ReadabilityFetcher {
	retryCfg := retry.ContentFetchConfig()
	retryCfg.OperationName = "content_fetch"

	fetcher := &ReadabilityFetcher{
		circuitBreaker: circuitbreaker.New(circuitbreaker.ContentFetchConfig()),
		retryConfig:    retryCfg,
		config:         config,
	}

	// the per-request context carries the timeout
	fetcher.client = &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= fetcher.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", collect.ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.Context(), req.URL.String(), fetcher.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}
	return fetcher
}

// WithRetryConfig overrides the retry policy. Used by tests to avoid real backoff.
func (f *ReadabilityFetcher) WithRetryConfig(cfg retry.Config) *ReadabilityFetcher {
	f.retryConfig = cfg
	return f
}

// FetchContent fetches urlStr and returns its extracted article text.
// Errors wrap the collect sentinels (ErrInvalidURL, ErrPrivateIP,
// ErrTooManyRedirects, ErrBodyTooLarge, ErrTimeout, ErrReadabilityFailed)
// or a *retry.HTTPError.
func (f *ReadabilityFetcher) FetchContent(ctx context.Context, urlStr string) (string, error) {
	if err := validateURL(ctx, urlStr, f.config.DenyPrivateIPs); err != nil {
		return "", err
	}

	res := retry.Do(ctx, f.retryConfig, func(ctx context.Context) (string, error) {
		return circuitbreaker.Call(f.circuitBreaker, func() (string, error) {
			return f.doFetch(ctx, urlStr)
		})
	})
	if !res.Success {
		if circuitbreaker.IsRejection(res.Err) {
			slog.Warn("content fetch circuit breaker open, request rejected",
				slog.String("url", urlStr),
				slog.String("state", f.circuitBreaker.State().String()))
		}
		return "", res.Err
	}
	return res.Data, nil
}

// doFetch performs one request and extraction without retry or circuit breaker.
func (f *ReadabilityFetcher) doFetch(ctx context.Context, urlStr string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", collect.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() == nil && errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: request exceeded %v", collect.ErrTimeout, f.config.Timeout)
		}
		// redirect policy failures carry our own sentinels
		var urlErr *url.Error
		if errors.As(err, &urlErr) && (errors.Is(urlErr.Err, collect.ErrTooManyRedirects) ||
			errors.Is(urlErr.Err, collect.ErrPrivateIP) || errors.Is(urlErr.Err, collect.ErrInvalidURL)) {
			return "", urlErr.Err
		}
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	htmlBytes, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(htmlBytes)) > f.config.MaxBodySize {
		return "", fmt.Errorf("%w: response exceeds limit %d bytes", collect.ErrBodyTooLarge, f.config.MaxBodySize)
	}

	// final URL after redirects resolves relative links
	pageURL := req.URL
	if resp.Request != nil && resp.Request.URL != nil {
		pageURL = resp.Request.URL
	}

	article, err := readability.FromReader(bytes.NewReader(htmlBytes), pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", collect.ErrReadabilityFailed, err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("%w: no readable content found", collect.ErrReadabilityFailed)
	}
	return text, nil
}
