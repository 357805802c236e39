package llm

import (
	"errors"
	"fmt"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/resilience/retry"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/usecase/fallback"
)

// Sentinel errors for model calls.
var (
	// ErrMissingAPIKey indicates the tier has no credentials configured.
	ErrMissingAPIKey = errors.New("api key not configured")

	// ErrEmptyResponse indicates the model answered without any text.
	ErrEmptyResponse = errors.New("model returned empty response")
)

var sentinels = fallback.APISentinels{MissingKey: ErrMissingAPIKey, Empty: ErrEmptyResponse}

func statusError(provider string, status int, message string) error {
	return &retry.HTTPError{StatusCode: status, Message: fmt.Sprintf("%s: %s", provider, message)}
}
