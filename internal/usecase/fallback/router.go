// Package fallback routes a request through a priority-ordered chain of
// interchangeable backends, escalating on expected failures and aborting on
// anything unexpected.
package fallback

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/observability/logging"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/observability/metrics"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/observability/tracing"
)

// Tier is one ranked alternative in a fallback chain.
type Tier[T any] struct {
	Name    string
	Enabled bool
	Call    func(ctx context.Context) (T, error)

	// Recoverable reports whether an error from Call should escalate to the
	// next tier. Nil means no error is recoverable.
	Recoverable func(error) bool

	// Terminal marks the manual tier: it is never called and always succeeds
	// with the zero value of T and Instructions.
	Terminal     bool
	Instructions string
}

// Result is a successful route.
type Result[T any] struct {
	Value          T
	Tier           string
	TiersAttempted []string
	Instructions   string
	Recovered      []TierError

	// Manual is set when the route ended at the terminal tier.
	Manual bool
}

type options struct {
	name string
}

// Option configures a route.
type Option func(*options)

// WithName labels the route in logs, spans and metrics.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// Route tries each enabled tier in order and returns the first success.
//
// A failed tier is classified with its own Recoverable func: recoverable
// failures move on to the next tier, anything else returns a *FatalError
// immediately without touching later tiers. If every enabled tier fails
// recoverably and none is terminal, Route returns an *ExhaustedError.
//
// The attempt log is local to one call; Route is safe for concurrent use
// as long as the tier funcs are.
func Route[T any](ctx context.Context, tiers []Tier[T], opts ...Option) (res *Result[T], err error) {
	o := options{name: "default"}
	for _, opt := range opts {
		opt(&o)
	}
	logger := logging.FromContext(ctx).With(slog.String("router", o.name))
	start := time.Now()

	ctx, span := tracing.StartSpan(ctx, "fallback.route", attribute.String("router", o.name))
	defer func() {
		if res != nil {
			span.SetAttributes(
				attribute.String("tier", res.Tier),
				attribute.StringSlice("tiers_attempted", res.TiersAttempted),
			)
			metrics.RecordRoute(o.name, res.Tier, time.Since(start))
		}
		tracing.EndSpan(span, err)
	}()

	var (
		attempted []string
		recovered []TierError
	)
	for _, tier := range tiers {
		if !tier.Enabled {
			logger.Debug("tier disabled, skipping", slog.String("tier", tier.Name))
			metrics.RecordTierOutcome(o.name, tier.Name, "skipped")
			continue
		}
		if cerr := ctx.Err(); cerr != nil {
			return nil, fmt.Errorf("route %s aborted before tier %q: %w", o.name, tier.Name, cerr)
		}

		attempted = append(attempted, tier.Name)

		if tier.Terminal {
			logger.Info("falling back to manual tier",
				slog.String("tier", tier.Name),
				slog.Any("tiers_attempted", attempted))
			metrics.RecordTierOutcome(o.name, tier.Name, "manual")
			var zero T
			return &Result[T]{
				Value:          zero,
				Tier:           tier.Name,
				TiersAttempted: attempted,
				Instructions:   tier.Instructions,
				Recovered:      recovered,
				Manual:         true,
			}, nil
		}

		logger.Debug("trying tier", slog.String("tier", tier.Name))
		value, callErr := tier.Call(ctx)
		if callErr == nil {
			logger.Info("tier succeeded",
				slog.String("tier", tier.Name),
				slog.Int("tiers_attempted", len(attempted)))
			metrics.RecordTierOutcome(o.name, tier.Name, "success")
			return &Result[T]{
				Value:          value,
				Tier:           tier.Name,
				TiersAttempted: attempted,
				Recovered:      recovered,
			}, nil
		}

		if tier.Recoverable == nil || !tier.Recoverable(callErr) {
			logger.Error("tier failed with unrecoverable error",
				slog.String("tier", tier.Name),
				slog.Any("error", callErr))
			metrics.RecordTierOutcome(o.name, tier.Name, "fatal")
			return nil, &FatalError{
				Tier:      tier.Name,
				Err:       callErr,
				Attempted: attempted,
				Recovered: recovered,
			}
		}

		logger.Warn("tier failed, escalating",
			slog.String("tier", tier.Name),
			slog.Any("error", callErr))
		metrics.RecordTierOutcome(o.name, tier.Name, "recoverable")
		recovered = append(recovered, TierError{Tier: tier.Name, Err: callErr})
	}

	if len(attempted) == 0 {
		return nil, fmt.Errorf("route %s: %w", o.name, ErrNoEnabledTiers)
	}
	return nil, &ExhaustedError{Failures: recovered}
}
