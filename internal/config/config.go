// Package config loads the curator configuration. Values are layered:
// built-in defaults, then an optional YAML file, then environment
// variables. Command-line flags are applied on top by the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	envconfig "github.com/rajanrengasamy/linkedinposts-sub001/pkg/config"
)

// Config is the full application configuration.
type Config struct {
	Collection CollectionConfig `yaml:"collection"`
	Enhance    EnhanceConfig    `yaml:"enhance"`
	Draft      DraftConfig      `yaml:"draft"`
	Claude     ModelConfig      `yaml:"claude"`
	OpenAI     ModelConfig      `yaml:"openai"`
	Image      ImageConfig      `yaml:"image"`
	Log        LogConfig        `yaml:"log"`
}

// CollectionConfig controls the collectors and the orchestrator.
type CollectionConfig struct {
	// Sources lists optional sources to run next to the web source.
	Sources      []string      `yaml:"sources"`
	MaxPerSource int           `yaml:"maxPerSource"`
	MaxTotal     int           `yaml:"maxTotal"`
	Timeout      time.Duration `yaml:"timeout"`
	TrendsGeo    string        `yaml:"trendsGeo"`
	UserAgent    string        `yaml:"userAgent"`
}

// EnhanceConfig controls readability enhancement of short web snippets.
type EnhanceConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Parallelism    int           `yaml:"parallelism"`
	Threshold      int           `yaml:"threshold"`
	FetchTimeout   time.Duration `yaml:"fetchTimeout"`
	MaxBodySize    int64         `yaml:"maxBodySize"`
	DenyPrivateIPs bool          `yaml:"denyPrivateIPs"`
}

// DraftConfig controls prompt construction.
type DraftConfig struct {
	PromptItems     int `yaml:"promptItems"`
	SnippetChars    int `yaml:"snippetChars"`
	ExtractiveItems int `yaml:"extractiveItems"`
}

// ModelConfig configures one model tier. API keys come from the
// environment only and are never read from or written to YAML.
type ModelConfig struct {
	APIKey    string        `yaml:"-"`
	Model     string        `yaml:"model"`
	MaxTokens int           `yaml:"maxTokens"`
	Timeout   time.Duration `yaml:"timeout"`
	BaseURL   string        `yaml:"baseURL"`
}

// ImageConfig configures the image tiers.
type ImageConfig struct {
	Tool          string        `yaml:"tool"`
	ToolArgs      []string      `yaml:"toolArgs"`
	ToolTimeout   time.Duration `yaml:"toolTimeout"`
	ToolDisabled  bool          `yaml:"toolDisabled"`
	OpenAIModel   string        `yaml:"openaiModel"`
	OpenAISize    string        `yaml:"openaiSize"`
	OpenAITimeout time.Duration `yaml:"openaiTimeout"`
	OutputPath    string        `yaml:"outputPath"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	// Format is "json" or "text".
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Collection: CollectionConfig{
			Sources:      []string{"hackernews", "reddit"},
			MaxPerSource: 25,
			MaxTotal:     50,
			Timeout:      90 * time.Second,
			TrendsGeo:    "US",
			UserAgent:    "linkedinposts-curator/1.0",
		},
		Enhance: EnhanceConfig{
			Enabled:        true,
			Parallelism:    5,
			Threshold:      600,
			FetchTimeout:   10 * time.Second,
			MaxBodySize:    10 * 1024 * 1024,
			DenyPrivateIPs: true,
		},
		Draft: DraftConfig{
			PromptItems:     12,
			SnippetChars:    600,
			ExtractiveItems: 5,
		},
		Claude: ModelConfig{
			Model:     "claude-sonnet-4-5-20250929",
			MaxTokens: 1024,
			Timeout:   60 * time.Second,
		},
		OpenAI: ModelConfig{
			Model:     "gpt-4o-mini",
			MaxTokens: 1024,
			Timeout:   60 * time.Second,
		},
		Image: ImageConfig{
			Tool:          "gemini",
			ToolTimeout:   3 * time.Minute,
			OpenAIModel:   "dall-e-3",
			OpenAISize:    "1024x1024",
			OpenAITimeout: 2 * time.Minute,
			OutputPath:    "output/infographic.png",
		},
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is not empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := cfg.decodeYAML(data); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// decodeYAML overlays data onto c. Unknown keys are rejected.
func (c *Config) decodeYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() {
	col := &c.Collection
	col.Sources = envconfig.GetEnvStringList("CURATOR_SOURCES", col.Sources)
	col.MaxPerSource = envconfig.GetEnvInt("CURATOR_MAX_PER_SOURCE", col.MaxPerSource)
	col.MaxTotal = envconfig.GetEnvInt("CURATOR_MAX_TOTAL", col.MaxTotal)
	col.Timeout = envconfig.GetEnvDuration("CURATOR_COLLECT_TIMEOUT", col.Timeout)
	col.TrendsGeo = envconfig.GetEnvString("CURATOR_TRENDS_GEO", col.TrendsGeo)
	col.UserAgent = envconfig.GetEnvString("CURATOR_USER_AGENT", col.UserAgent)

	en := &c.Enhance
	en.Enabled = envconfig.GetEnvBool("CURATOR_ENHANCE_ENABLED", en.Enabled)
	en.Parallelism = envconfig.GetEnvInt("CURATOR_ENHANCE_PARALLELISM", en.Parallelism)
	en.Threshold = envconfig.GetEnvInt("CURATOR_ENHANCE_THRESHOLD", en.Threshold)
	en.FetchTimeout = envconfig.GetEnvDuration("CURATOR_FETCH_TIMEOUT", en.FetchTimeout)
	en.MaxBodySize = envconfig.GetEnvInt64("CURATOR_FETCH_MAX_BODY_SIZE", en.MaxBodySize)
	en.DenyPrivateIPs = envconfig.GetEnvBool("CURATOR_FETCH_DENY_PRIVATE_IPS", en.DenyPrivateIPs)

	c.Draft.PromptItems = envconfig.GetEnvInt("CURATOR_PROMPT_ITEMS", c.Draft.PromptItems)

	c.Claude.APIKey = envconfig.GetEnvString("ANTHROPIC_API_KEY", c.Claude.APIKey)
	c.Claude.Model = envconfig.GetEnvString("CLAUDE_MODEL", c.Claude.Model)
	c.Claude.Timeout = envconfig.GetEnvDuration("CLAUDE_TIMEOUT", c.Claude.Timeout)
	c.Claude.BaseURL = envconfig.GetEnvString("ANTHROPIC_BASE_URL", c.Claude.BaseURL)

	c.OpenAI.APIKey = envconfig.GetEnvString("OPENAI_API_KEY", c.OpenAI.APIKey)
	c.OpenAI.Model = envconfig.GetEnvString("OPENAI_MODEL", c.OpenAI.Model)
	c.OpenAI.Timeout = envconfig.GetEnvDuration("OPENAI_TIMEOUT", c.OpenAI.Timeout)
	c.OpenAI.BaseURL = envconfig.GetEnvString("OPENAI_BASE_URL", c.OpenAI.BaseURL)

	img := &c.Image
	img.Tool = envconfig.GetEnvString("CURATOR_IMAGE_TOOL", img.Tool)
	img.ToolTimeout = envconfig.GetEnvDuration("CURATOR_IMAGE_TOOL_TIMEOUT", img.ToolTimeout)
	img.ToolDisabled = envconfig.GetEnvBool("CURATOR_IMAGE_TOOL_DISABLED", img.ToolDisabled)
	img.OpenAIModel = envconfig.GetEnvString("CURATOR_IMAGE_MODEL", img.OpenAIModel)
	img.OutputPath = envconfig.GetEnvString("CURATOR_IMAGE_OUTPUT", img.OutputPath)

	c.Log.Format = envconfig.GetEnvString("LOG_FORMAT", c.Log.Format)
	c.Log.Level = envconfig.GetEnvString("LOG_LEVEL", c.Log.Level)
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	positive := func(field string, v int) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", field, v))
		}
	}

	positive("collection.maxPerSource", c.Collection.MaxPerSource)
	positive("collection.maxTotal", c.Collection.MaxTotal)
	add(envconfig.ValidateDurationRange("collection.timeout", c.Collection.Timeout, time.Second, 30*time.Minute))
	if strings.TrimSpace(c.Collection.TrendsGeo) == "" {
		errs = append(errs, errors.New("collection.trendsGeo cannot be empty"))
	}

	if c.Enhance.Enabled {
		positive("enhance.parallelism", c.Enhance.Parallelism)
		positive("enhance.threshold", c.Enhance.Threshold)
		add(envconfig.ValidatePositiveDuration("enhance.fetchTimeout", c.Enhance.FetchTimeout))
		if c.Enhance.MaxBodySize <= 0 {
			errs = append(errs, fmt.Errorf("enhance.maxBodySize must be positive, got %d", c.Enhance.MaxBodySize))
		}
	}

	positive("draft.promptItems", c.Draft.PromptItems)
	positive("draft.snippetChars", c.Draft.SnippetChars)
	positive("draft.extractiveItems", c.Draft.ExtractiveItems)

	for _, m := range []struct {
		name string
		ModelConfig
	}{{"claude", c.Claude}, {"openai", c.OpenAI}} {
		name := m.name
		if m.Model == "" {
			errs = append(errs, fmt.Errorf("%s.model cannot be empty", name))
		}
		positive(name+".maxTokens", m.MaxTokens)
		add(envconfig.ValidatePositiveDuration(name+".timeout", m.Timeout))
	}

	if !c.Image.ToolDisabled {
		if c.Image.Tool == "" {
			errs = append(errs, errors.New("image.tool cannot be empty unless image.toolDisabled is set"))
		}
		add(envconfig.ValidatePositiveDuration("image.toolTimeout", c.Image.ToolTimeout))
	}
	add(envconfig.ValidatePositiveDuration("image.openaiTimeout", c.Image.OpenAITimeout))

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or text, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
