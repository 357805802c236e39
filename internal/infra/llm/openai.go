package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/observability/logging"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/resilience/circuitbreaker"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/resilience/retry"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/usecase/fallback"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/utils/text"
)

// OpenAITierName is the tier name used in routes, logs and metrics.
const OpenAITierName = "openai"

// OpenAI generates text with the Chat Completions API.
type OpenAI struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         Config
}

// NewOpenAI creates the OpenAI tier.
func NewOpenAI(config Config) *OpenAI {
	clientCfg := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientCfg.BaseURL = config.BaseURL
	}
	if config.Retry.OperationName == "" {
		config.Retry.OperationName = "llm." + OpenAITierName
	}

	return &OpenAI{
		client:         openai.NewClientWithConfig(clientCfg),
		circuitBreaker: circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		config:         config,
	}
}

// Name returns the tier name.
func (o *OpenAI) Name() string { return OpenAITierName }

// Enabled reports whether credentials are configured.
func (o *OpenAI) Enabled() bool { return o.config.APIKey != "" }

// Generate returns the model's answer to prompt.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	if !o.Enabled() {
		return "", fallback.ClassifyAPIError(ctx, OpenAITierName, o.config.Timeout, ErrMissingAPIKey, sentinels)
	}

	res := retry.DoWithTimeout(ctx, o.config.Retry, o.config.Timeout, func(ctx context.Context) (string, error) {
		out, err := circuitbreaker.Call(o.circuitBreaker, func() (string, error) {
			return o.doGenerate(ctx, prompt)
		})
		if circuitbreaker.IsRejection(err) {
			slog.Warn("openai api circuit breaker open, request rejected",
				slog.String("service", "openai-api"),
				slog.String("state", o.circuitBreaker.State().String()))
		}
		return out, err
	})
	if !res.Success {
		return "", fallback.ClassifyAPIError(ctx, OpenAITierName, o.config.Timeout, fmt.Errorf("openai generate failed after %d attempt(s): %w", res.Attempts, res.Err), sentinels)
	}
	return res.Data, nil
}

// doGenerate performs the API call without retry or circuit breaker.
func (o *OpenAI) doGenerate(ctx context.Context, prompt string) (string, error) {
	logger := logging.FromContext(ctx).With(slog.String("tier", OpenAITierName))
	truncated := text.Truncate(prompt, o.config.MaxPromptChars, "\n...(truncated)")

	logger.InfoContext(ctx, "starting generation", slog.Int("prompt_length", text.CountRunes(truncated)))
	start := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.config.Model,
		MaxTokens: o.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: truncated,
		}},
	})
	duration := time.Since(start)

	if err != nil {
		logger.ErrorContext(ctx, "generation failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		if status := openAIStatus(err); status != 0 {
			return "", statusError("openai", status, err.Error())
		}
		return "", fmt.Errorf("openai api error: %w", err)
	}

	// Validate response structure (safety check to prevent panic on array access)
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrEmptyResponse
	}

	logger.InfoContext(ctx, "generation completed",
		slog.Int("output_length", text.CountRunes(out)),
		slog.Duration("duration", duration))
	return out, nil
}

// openAIStatus extracts the HTTP status from go-openai errors, or 0.
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
