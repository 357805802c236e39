// Package llm adapts hosted language models to draft-generation tiers.
// Each tier wraps its SDK call in a circuit breaker inside a retry loop with
// a per-attempt timeout, and reports failures as the fallback package's
// typed errors so a router can escalate to the next tier.
package llm

import (
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/resilience/retry"
)

// Config configures one model tier.
type Config struct {
	APIKey string
	Model  string

	// MaxTokens bounds the response length.
	MaxTokens int

	// Timeout bounds a single attempt, not the whole retry loop.
	Timeout time.Duration

	// BaseURL overrides the API endpoint. Empty means the SDK default.
	BaseURL string

	// MaxPromptChars truncates oversized prompts (in runes).
	MaxPromptChars int

	Retry retry.Config
}

// DefaultClaudeConfig returns defaults for the Claude tier.
func DefaultClaudeConfig(apiKey string) Config {
	return Config{
		APIKey:         apiKey,
		Model:          string(anthropic.ModelClaudeSonnet4_5_20250929),
		MaxTokens:      1024,
		Timeout:        60 * time.Second,
		MaxPromptChars: 20000,
		Retry:          retry.AIAPIConfig(),
	}
}

// DefaultOpenAIConfig returns defaults for the OpenAI tier.
func DefaultOpenAIConfig(apiKey string) Config {
	return Config{
		APIKey:         apiKey,
		Model:          openai.GPT4oMini,
		MaxTokens:      1024,
		Timeout:        60 * time.Second,
		MaxPromptChars: 20000,
		Retry:          retry.AIAPIConfig(),
	}
}

// Validate reports every invalid field. A missing API key is not a
// configuration error: the tier reports it as an auth failure at call time.
func (c Config) Validate() error {
	var errs []error
	if c.Model == "" {
		errs = append(errs, errors.New("model cannot be empty"))
	}
	if c.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %v", c.Timeout))
	}
	if c.MaxPromptChars <= 0 {
		errs = append(errs, fmt.Errorf("max prompt chars must be positive, got %d", c.MaxPromptChars))
	}
	return errors.Join(errs...)
}
