package fallback

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoEnabledTiers is returned when every configured tier is disabled.
var ErrNoEnabledTiers = errors.New("no enabled tiers")

// TierError pairs a tier name with the error it failed with.
type TierError struct {
	Tier string
	Err  error
}

func (e TierError) String() string {
	return fmt.Sprintf("%s: %v", e.Tier, e.Err)
}

// FatalError aborts a route: a tier failed with an error outside its
// recoverable family. Recovered holds the failures absorbed before it.
type FatalError struct {
	Tier      string
	Err       error
	Attempted []string
	Recovered []TierError
}

func (e *FatalError) Error() string {
	msg := fmt.Sprintf("tier %q failed with unrecoverable error: %v", e.Tier, e.Err)
	if len(e.Recovered) > 0 {
		msg += " (after " + joinTierErrors(e.Recovered) + ")"
	}
	return msg
}

func (e *FatalError) Unwrap() error { return e.Err }

// ExhaustedError means every enabled tier failed recoverably and no terminal tier was configured.
type ExhaustedError struct {
	Failures []TierError
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d tiers failed: %s", len(e.Failures), joinTierErrors(e.Failures))
}

func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

func joinTierErrors(errs []TierError) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.String()
	}
	return strings.Join(parts, "; ")
}

// ToolNotFoundError means a tool-backed tier's executable is not installed.
type ToolNotFoundError struct {
	Tool string
	Err  error
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool %q not found: %v", e.Tool, e.Err)
}

func (e *ToolNotFoundError) Unwrap() error { return e.Err }

// AuthError means the tier's credentials are missing, rejected or expired.
type AuthError struct {
	Tier string
	Err  error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication failed: %v", e.Tier, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// TierTimeoutError means the tier did not answer within its budget.
type TierTimeoutError struct {
	Tier  string
	After time.Duration
}

func (e *TierTimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out after %s", e.Tier, e.After)
}

// GenerationError means the tier ran but produced no usable output.
type GenerationError struct {
	Tier   string
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: generation failed: %s: %v", e.Tier, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: generation failed: %s", e.Tier, e.Reason)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ToolTierRecoverable is the recoverable family for tool-backed tiers:
// exactly the four typed failures above. Anything else aborts the route.
func ToolTierRecoverable(err error) bool {
	var (
		notFound *ToolNotFoundError
		auth     *AuthError
		timeout  *TierTimeoutError
		gen      *GenerationError
	)
	return errors.As(err, &notFound) ||
		errors.As(err, &auth) ||
		errors.As(err, &timeout) ||
		errors.As(err, &gen)
}

// MeteredTierRecoverable is the recoverable family for metered API tiers:
// any failure escalates to the next tier.
func MeteredTierRecoverable(err error) bool {
	return err != nil
}
