// Package circuitbreaker guards upstream calls with github.com/sony/gobreaker.
// A breaker opens once enough of the recent calls have failed and rejects
// further calls until its cool-down elapses.
package circuitbreaker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/observability/logging"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/observability/metrics"
)

// Config describes when a breaker trips and how it recovers.
type Config struct {
	// Name labels the breaker in logs and metrics.
	Name string

	// MaxRequests is the number of probe calls let through while half-open.
	MaxRequests uint32

	// Interval resets the closed-state counters. Zero never resets.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration

	// FailureThreshold is the failure ratio (0..1] that trips the breaker
	// once at least MinRequests calls were counted.
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultConfig suits hosted model APIs.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// ClaudeAPIConfig is the breaker for the Claude tier.
func ClaudeAPIConfig() Config { return DefaultConfig("claude-api") }

// OpenAIAPIConfig is the breaker for the OpenAI chat tier.
func OpenAIAPIConfig() Config { return DefaultConfig("openai-api") }

// ImageAPIConfig trips after two calls: every image request is billed.
func ImageAPIConfig() Config {
	cfg := DefaultConfig("openai-images")
	cfg.MaxRequests = 1
	cfg.Interval = time.Minute
	cfg.Timeout = 2 * time.Minute
	cfg.FailureThreshold = 0.5
	cfg.MinRequests = 2
	return cfg
}

// CollectorConfig is the breaker for one collector's upstream. A run makes
// few requests per source, so the minimum sample is small.
func CollectorConfig(source string) Config {
	cfg := DefaultConfig("collector-" + source)
	cfg.MaxRequests = 2
	cfg.Interval = time.Minute
	cfg.FailureThreshold = 0.7
	cfg.MinRequests = 4
	return cfg
}

// ContentFetchConfig is the breaker shared by all readability fetches.
// Individual sites fail often, so it only trips on a broad outage.
func ContentFetchConfig() Config {
	cfg := DefaultConfig("content-fetch")
	cfg.Interval = time.Minute
	cfg.Timeout = 5 * time.Minute
	cfg.FailureThreshold = 0.8
	return cfg
}

func (c Config) readyToTrip(counts gobreaker.Counts) bool {
	if counts.Requests < c.MinRequests {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= c.FailureThreshold
}

// CircuitBreaker is a named gobreaker instance.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New creates a breaker. State changes are logged and exported as the
// circuit_breaker_state gauge.
func New(cfg Config) *CircuitBreaker {
	logger := logging.Component("circuitbreaker")
	metrics.RecordBreakerState(cfg.Name, int(gobreaker.StateClosed))

	return &CircuitBreaker{
		name: cfg.Name,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: cfg.readyToTrip,
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed",
					slog.String("circuit", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
				metrics.RecordBreakerState(name, int(to))
			},
		}),
	}
}

// Call runs fn through cb. While the breaker is open fn is not called and
// the error satisfies IsRejection.
func Call[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T
	out, err := cb.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return zero, err
	}
	v, _ := out.(T)
	return v, nil
}

// State returns the current state.
func (cb *CircuitBreaker) State() gobreaker.State { return cb.breaker.State() }

// Name returns the breaker name.
func (cb *CircuitBreaker) Name() string { return cb.name }

// IsRejection reports whether err came from the breaker refusing the call
// (open state, or too many half-open probes) rather than from the wrapped function.
func IsRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
