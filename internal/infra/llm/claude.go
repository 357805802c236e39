package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/observability/logging"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/resilience/circuitbreaker"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/resilience/retry"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/usecase/fallback"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/utils/text"
)

// ClaudeTierName is the tier name used in routes, logs and metrics.
const ClaudeTierName = "claude"

// Claude generates text with Anthropic's Messages API.
type Claude struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         Config
}

// NewClaude creates the Claude tier. SDK-level retries are disabled; the
// tier's own retry loop owns backoff.
func NewClaude(config Config) *Claude {
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	if config.Retry.OperationName == "" {
		config.Retry.OperationName = "llm." + ClaudeTierName
	}

	return &Claude{
		client:         anthropic.NewClient(opts...),
		circuitBreaker: circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		config:         config,
	}
}

// Name returns the tier name.
func (c *Claude) Name() string { return ClaudeTierName }

// Enabled reports whether credentials are configured.
func (c *Claude) Enabled() bool { return c.config.APIKey != "" }

// Generate returns the model's answer to prompt. Failures are typed for
// fallback.MeteredTierRecoverable and fallback.ToolTierRecoverable alike.
func (c *Claude) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		return "", fallback.ClassifyAPIError(ctx, ClaudeTierName, c.config.Timeout, ErrMissingAPIKey, sentinels)
	}

	res := retry.DoWithTimeout(ctx, c.config.Retry, c.config.Timeout, func(ctx context.Context) (string, error) {
		out, err := circuitbreaker.Call(c.circuitBreaker, func() (string, error) {
			return c.doGenerate(ctx, prompt)
		})
		if circuitbreaker.IsRejection(err) {
			slog.Warn("claude api circuit breaker open, request rejected",
				slog.String("service", "claude-api"),
				slog.String("state", c.circuitBreaker.State().String()))
		}
		return out, err
	})
	if !res.Success {
		return "", fallback.ClassifyAPIError(ctx, ClaudeTierName, c.config.Timeout, fmt.Errorf("claude generate failed after %d attempt(s): %w", res.Attempts, res.Err), sentinels)
	}
	return res.Data, nil
}

// doGenerate performs the API call without retry or circuit breaker.
func (c *Claude) doGenerate(ctx context.Context, prompt string) (string, error) {
	requestID := uuid.New().String()
	logger := logging.FromContext(ctx).With(slog.String("tier", ClaudeTierName), slog.String("request_id", requestID))

	truncated := text.Truncate(prompt, c.config.MaxPromptChars, "\n...(truncated)")
	if len(truncated) != len(prompt) {
		logger.Warn("prompt truncated for claude api",
			slog.Int("original_length", text.CountRunes(prompt)),
			slog.Int("limit", c.config.MaxPromptChars))
	}

	logger.InfoContext(ctx, "starting generation", slog.Int("prompt_length", text.CountRunes(truncated)))
	start := time.Now()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(truncated)),
		},
	})
	duration := time.Since(start)

	if err != nil {
		logger.ErrorContext(ctx, "generation failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", statusError("claude", apiErr.StatusCode, err.Error())
		}
		return "", fmt.Errorf("claude api error: %w", err)
	}

	var b strings.Builder
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", ErrEmptyResponse
	}

	logger.InfoContext(ctx, "generation completed",
		slog.Int("output_length", text.CountRunes(out)),
		slog.Duration("duration", duration))
	return out, nil
}
