package fallback

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/resilience/retry"
)

// APISentinels names the adapter errors ClassifyAPIError recognises besides
// HTTP statuses and timeouts. Nil fields never match.
type APISentinels struct {
	// MissingKey marks a tier that has no credentials configured.
	MissingKey error
	// Empty marks a call that succeeded without producing output.
	Empty error
}

// ClassifyAPIError maps the final error of an API-backed tier call onto the
// recoverable taxonomy: 401/403 and MissingKey become *AuthError, deadline
// overruns *TierTimeoutError, and everything else *GenerationError.
// Cancellation of the caller's context is returned as is.
func ClassifyAPIError(ctx context.Context, tier string, timeout time.Duration, err error, s APISentinels) error {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return err
	}

	var httpErr *retry.HTTPError
	if errors.As(err, &httpErr) &&
		(httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden) {
		return &AuthError{Tier: tier, Err: err}
	}
	if s.MissingKey != nil && errors.Is(err, s.MissingKey) {
		return &AuthError{Tier: tier, Err: err}
	}

	var timeoutErr *retry.TimeoutError
	if errors.As(err, &timeoutErr) || errors.Is(err, context.DeadlineExceeded) {
		return &TierTimeoutError{Tier: tier, After: timeout}
	}

	reason := "api error"
	if s.Empty != nil && errors.Is(err, s.Empty) {
		reason = "empty response"
	}
	return &GenerationError{Tier: tier, Reason: reason, Err: err}
}
