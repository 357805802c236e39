// Package retry provides retry logic with exponential backoff and jitter,
// plus a per-attempt timeout race. It helps handle transient failures
// gracefully by automatically retrying failed operations.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/observability/metrics"
)

// Config holds the configuration for retry logic.
type Config struct {
	// MaxRetries is the number of retries after the first attempt.
	// An operation is attempted at most MaxRetries+1 times.
	MaxRetries int

	// BaseDelay is the delay before the first retry; retry n waits BaseDelay*2^(n-1)
	BaseDelay time.Duration

	// MaxDelay caps a single wait. Zero means uncapped.
	MaxDelay time.Duration

	// JitterFraction is the fraction of delay to add as random jitter (0.0 to 1.0)
	JitterFraction float64

	// RetryOn decides whether a failed attempt is retried. Nil means IsRetryable.
	// A *TimeoutError is always retried regardless of RetryOn.
	RetryOn func(error) bool

	// OperationName labels log lines, metrics and timeout errors
	OperationName string
}

// Result is the outcome of Do. Attempts is always at least 1.
type Result[T any] struct {
	Success  bool
	Data     T
	Err      error
	Attempts int
}

// DefaultConfig returns a default retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxRetries:     2,
		BaseDelay:      1 * time.Second,
		MaxDelay:       30 * time.Second,
		JitterFraction: 0.1,
	}
}

// CollectorConfig returns configuration for collector HTTP calls.
// Aggressive retry for transient network issues; the orchestrator deadline bounds the total.
func CollectorConfig() Config {
	return Config{
		MaxRetries:     3,
		BaseDelay:      500 * time.Millisecond,
		MaxDelay:       8 * time.Second,
		JitterFraction: 0.1,
	}
}

// AIAPIConfig returns configuration optimized for AI API calls.
// Moderate retry due to cost considerations.
func AIAPIConfig() Config {
	return Config{
		MaxRetries:     2,
		BaseDelay:      2 * time.Second,
		MaxDelay:       10 * time.Second,
		JitterFraction: 0.1,
	}
}

// ImageAPIConfig returns configuration for metered image generation.
// A single retry: each request is billed and may be duplicated.
func ImageAPIConfig() Config {
	return Config{
		MaxRetries:     1,
		BaseDelay:      3 * time.Second,
		MaxDelay:       10 * time.Second,
		JitterFraction: 0.1,
	}
}

// ContentFetchConfig returns configuration for article content fetching.
// Moderate retry for network issues and transient site failures.
func ContentFetchConfig() Config {
	return Config{
		MaxRetries:     2,
		BaseDelay:      1 * time.Second,
		MaxDelay:       10 * time.Second,
		JitterFraction: 0.1,
	}
}

// Do runs op until it succeeds, fails with a non-retryable error, or
// MaxRetries+1 attempts have been made. Business failures are reported in the
// returned Result; Do panics only when op is nil.
//
// Context cancellation while waiting between attempts ends the loop with a
// failure Result carrying the context error.
func Do[T any](ctx context.Context, cfg Config, op func(ctx context.Context) (T, error)) Result[T] {
	if op == nil {
		panic("retry: nil operation")
	}
	maxAttempts := max(cfg.MaxRetries, 0) + 1

	var res Result[T]
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res.Attempts = attempt

		data, err := op(ctx)

		// Success - return immediately
		if err == nil {
			if attempt > 1 {
				slog.Info("operation succeeded after retry",
					slog.String("operation", cfg.OperationName),
					slog.Int("attempt", attempt))
			}
			metrics.RecordRetryAttempt(cfg.OperationName, "success")
			res.Success = true
			res.Data = data
			res.Err = nil
			return res
		}
		res.Err = err

		if !cfg.shouldRetry(err) {
			slog.Warn("non-retryable error, aborting",
				slog.String("operation", cfg.OperationName),
				slog.Int("attempt", attempt),
				slog.Any("error", err))
			metrics.RecordRetryAttempt(cfg.OperationName, "failure")
			return res
		}

		// Don't wait after last attempt
		if attempt == maxAttempts {
			break
		}

		delay := backoffDelay(cfg, attempt)
		slog.Warn("operation failed, retrying",
			slog.String("operation", cfg.OperationName),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts),
			slog.Duration("delay", delay),
			slog.Any("error", err))
		metrics.RecordRetryAttempt(cfg.OperationName, "retry")

		// Wait with context cancellation support
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			metrics.RecordRetryAttempt(cfg.OperationName, "failure")
			res.Err = fmt.Errorf("retry aborted: %w", ctx.Err())
			return res
		}
	}

	metrics.RecordRetryAttempt(cfg.OperationName, "failure")
	return res
}

// shouldRetry applies RetryOn, always treating a *TimeoutError as retryable.
func (c Config) shouldRetry(err error) bool {
	if isTimeout(err) {
		return true
	}
	if c.RetryOn != nil {
		return c.RetryOn(err)
	}
	return IsRetryable(err)
}

// backoffDelay returns BaseDelay*2^(attempt-1), capped and jittered.
func backoffDelay(cfg Config, attempt int) time.Duration {
	delay := cfg.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if cfg.MaxDelay > 0 && delay >= cfg.MaxDelay {
			break
		}
	}
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return addJitter(delay, cfg.JitterFraction)
}

// IsRetryable determines if an error is worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if isTimeout(err) {
		return true
	}

	// Context errors are not retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Network errors (timeout)
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// Syscall errors
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	// HTTP status codes
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return IsRetryableStatus(httpErr.StatusCode)
	}

	return false
}

// IsRetryableStatus reports whether an HTTP status is transient:
// 5xx, 429 Too Many Requests and 408 Request Timeout. Other 4xx are not.
func IsRetryableStatus(status int) bool {
	if status >= 500 && status < 600 {
		return true
	}
	return status == http.StatusTooManyRequests || status == http.StatusRequestTimeout
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// addJitter adds random jitter to a duration to prevent thundering herd.
func addJitter(duration time.Duration, jitterFraction float64) time.Duration {
	if jitterFraction <= 0 {
		return duration
	}
	if jitterFraction > 1.0 {
		jitterFraction = 1.0
	}
	// #nosec G404 -- Using math/rand is acceptable for jitter calculation.
	// Cryptographic randomness is not required for retry backoff jitter.
	jitter := time.Duration(rand.Float64() * float64(duration) * jitterFraction)
	return duration + jitter
}
