package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/observability/logging"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/resilience/circuitbreaker"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/resilience/retry"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/usecase/fallback"
)

// OpenAITierName is the tier name of the metered image API.
const OpenAITierName = "openai-images"

// OpenAIImages generates images with the OpenAI Images API.
type OpenAIImages struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         OpenAIConfig
}

// NewOpenAIImages creates the metered image tier.
func NewOpenAIImages(config OpenAIConfig) *OpenAIImages {
	clientCfg := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientCfg.BaseURL = config.BaseURL
	}
	if config.Retry.OperationName == "" {
		config.Retry.OperationName = "imagegen." + OpenAITierName
	}

	return &OpenAIImages{
		client:         openai.NewClientWithConfig(clientCfg),
		circuitBreaker: circuitbreaker.New(circuitbreaker.ImageAPIConfig()),
		config:         config,
	}
}

// Name returns the tier name.
func (o *OpenAIImages) Name() string { return OpenAITierName }

// Enabled reports whether credentials are configured.
func (o *OpenAIImages) Enabled() bool { return o.config.APIKey != "" }

// Generate returns the decoded image for prompt.
func (o *OpenAIImages) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if !o.Enabled() {
		return nil, fallback.ClassifyAPIError(ctx, OpenAITierName, o.config.Timeout, ErrMissingAPIKey, apiSentinels)
	}

	res := retry.DoWithTimeout(ctx, o.config.Retry, o.config.Timeout, func(ctx context.Context) ([]byte, error) {
		out, err := circuitbreaker.Call(o.circuitBreaker, func() ([]byte, error) {
			return o.doGenerate(ctx, prompt)
		})
		if circuitbreaker.IsRejection(err) {
			slog.Warn("image api circuit breaker open, request rejected",
				slog.String("service", OpenAITierName),
				slog.String("state", o.circuitBreaker.State().String()))
		}
		return out, err
	})
	if !res.Success {
		return nil, fallback.ClassifyAPIError(ctx, OpenAITierName, o.config.Timeout,
			fmt.Errorf("image generation failed after %d attempt(s): %w", res.Attempts, res.Err), apiSentinels)
	}
	return res.Data, nil
}

// doGenerate performs the API call without retry or circuit breaker.
func (o *OpenAIImages) doGenerate(ctx context.Context, prompt string) ([]byte, error) {
	logger := logging.FromContext(ctx).With(slog.String("tier", OpenAITierName))
	logger.InfoContext(ctx, "requesting image", slog.String("model", o.config.Model), slog.String("size", o.config.Size))
	start := time.Now()

	resp, err := o.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          o.config.Model,
		Size:           o.config.Size,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	duration := time.Since(start)
	if err != nil {
		logger.ErrorContext(ctx, "image request failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		if status := openAIStatus(err); status != 0 {
			return nil, &retry.HTTPError{StatusCode: status, Message: "openai images: " + err.Error()}
		}
		return nil, fmt.Errorf("openai images api error: %w", err)
	}

	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, ErrNoImage
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoImage
	}

	logger.InfoContext(ctx, "image received",
		slog.Int("bytes", len(data)),
		slog.Duration("duration", duration))
	return data, nil
}

func openAIStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
