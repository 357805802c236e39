package imagegen

import (
	"errors"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/usecase/fallback"
)

// Sentinel errors for image generation.
var (
	// ErrMissingAPIKey indicates the metered tier has no credentials configured.
	ErrMissingAPIKey = errors.New("api key not configured")

	// ErrNoImage indicates the backend finished without producing image data.
	ErrNoImage = errors.New("no image produced")
)

var apiSentinels = fallback.APISentinels{MissingKey: ErrMissingAPIKey, Empty: ErrNoImage}
