// Package imagegen provides the automated image generation tiers: a
// subscription-backed command-line tool and the metered OpenAI Images API.
package imagegen

import (
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/resilience/retry"
)

// Placeholders substituted into CLIConfig.Args.
const (
	PromptPlaceholder = "{prompt}"
	OutputPlaceholder = "{output}"
)

// CLIConfig configures the command-line tool tier.
type CLIConfig struct {
	// Tool is the executable name resolved through the tool cache.
	Tool string

	// Args are passed to Tool after placeholder substitution. The tool is
	// expected to write the image to the {output} path.
	Args []string

	// Timeout bounds a single invocation.
	Timeout time.Duration

	// Disabled turns the tier off without removing it from the chain.
	Disabled bool
}

// DefaultCLIConfig drives the Gemini CLI in non-interactive mode.
func DefaultCLIConfig() CLIConfig {
	return CLIConfig{
		Tool: "gemini",
		Args: []string{
			"--yolo",
			"--prompt",
			"Generate an image for the brief below and save it as a PNG file at " + OutputPlaceholder + ".\n\n" + PromptPlaceholder,
		},
		Timeout: 3 * time.Minute,
	}
}

// Validate checks the CLI tier configuration.
func (c CLIConfig) Validate() error {
	var errs []error
	if c.Tool == "" {
		errs = append(errs, errors.New("tool cannot be empty"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %v", c.Timeout))
	}
	return errors.Join(errs...)
}

// OpenAIConfig configures the OpenAI Images tier.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	Size    string
	Timeout time.Duration
	BaseURL string
	Retry   retry.Config
}

// DefaultOpenAIConfig returns the metered image API defaults.
func DefaultOpenAIConfig(apiKey string) OpenAIConfig {
	return OpenAIConfig{
		APIKey:  apiKey,
		Model:   openai.CreateImageModelDallE3,
		Size:    openai.CreateImageSize1024x1024,
		Timeout: 2 * time.Minute,
		Retry:   retry.ImageAPIConfig(),
	}
}

// Validate checks the OpenAI Images configuration. An empty API key is
// allowed: the tier is then reported as disabled.
func (c OpenAIConfig) Validate() error {
	var errs []error
	if c.Model == "" {
		errs = append(errs, errors.New("model cannot be empty"))
	}
	if c.Size == "" {
		errs = append(errs, errors.New("size cannot be empty"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %v", c.Timeout))
	}
	return errors.Join(errs...)
}
