package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TimeoutError is returned when an operation does not finish within its budget.
type TimeoutError struct {
	Operation string
	After     time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	if e.Operation == "" {
		return fmt.Sprintf("operation timed out after %s", e.After)
	}
	return fmt.Sprintf("%s timed out after %s", e.Operation, e.After)
}

// Timeout marks TimeoutError as a net.Error-style timeout.
func (e *TimeoutError) Timeout() bool { return true }

func isTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

type outcome[T any] struct {
	data T
	err  error
}

// WithTimeout races op against a timer of length d. When the timer wins it
// returns a *TimeoutError and cancels the context passed to op.
//
// The operation is not forcibly stopped: an op that ignores its context keeps
// running in its goroutine until it returns, and its result is discarded.
// A non-positive d disables the timer.
func WithTimeout[T any](ctx context.Context, d time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	return withTimeout(ctx, "", d, op)
}

// DoWithTimeout is Do with a fresh timeout applied to every attempt rather
// than to the whole retry loop.
func DoWithTimeout[T any](ctx context.Context, cfg Config, perAttempt time.Duration, op func(ctx context.Context) (T, error)) Result[T] {
	if op == nil {
		panic("retry: nil operation")
	}
	return Do(ctx, cfg, func(ctx context.Context) (T, error) {
		return withTimeout(ctx, cfg.OperationName, perAttempt, op)
	})
}

func withTimeout[T any](ctx context.Context, name string, d time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	if d <= 0 {
		return op(ctx)
	}

	opCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// buffered so an orphaned op can always deliver and exit
	done := make(chan outcome[T], 1)
	go func() {
		data, err := op(opCtx)
		done <- outcome[T]{data: data, err: err}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	var zero T
	select {
	case out := <-done:
		return out.data, out.err
	case <-timer.C:
		return zero, &TimeoutError{Operation: name, After: d}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
