package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "curator.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, Default().Collection, cfg.Collection)
}

func TestLoad_YAMLOverlay(t *testing.T) {
	// Arrange
	path := writeFile(t, `
collection:
  sources: [hackernews, googletrends]
  maxTotal: 20
  timeout: 45s
image:
  toolDisabled: true
log:
  format: json
`)

	// Act
	cfg, err := Load(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"hackernews", "googletrends"}, cfg.Collection.Sources)
	assert.Equal(t, 20, cfg.Collection.MaxTotal)
	assert.Equal(t, 45*time.Second, cfg.Collection.Timeout)
	assert.Equal(t, 25, cfg.Collection.MaxPerSource, "unset keys keep defaults")
	assert.True(t, cfg.Image.ToolDisabled)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeFile(t, "collection:\n  maxTotal: 20\n")
	t.Setenv("CURATOR_MAX_TOTAL", "7")
	t.Setenv("CURATOR_SOURCES", "reddit")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Collection.MaxTotal)
	assert.Equal(t, []string{"reddit"}, cfg.Collection.Sources)
	assert.Equal(t, "sk-ant-test", cfg.Claude.APIKey)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
}

func TestLoad_APIKeyIsNotReadFromYAML(t *testing.T) {
	path := writeFile(t, "claude:\n  apiKey: leaked\n")

	_, err := Load(path)

	require.Error(t, err, "unknown keys are rejected")
	assert.Contains(t, err.Error(), "apiKey")
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, ""))

	require.NoError(t, err)
	assert.Equal(t, Default().Draft, cfg.Draft)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeFile(t, `
collection:
  maxPerSource: 0
  timeout: 10ms
draft:
  promptItems: -1
log:
  format: xml
`)

	_, err := Load(path)

	require.Error(t, err)
	for _, want := range []string{
		"collection.maxPerSource must be positive",
		"collection.timeout: 10ms is below minimum 1s",
		"draft.promptItems must be positive",
		`log.format must be json or text, got "xml"`,
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidate_DisabledSectionsSkipChecks(t *testing.T) {
	cfg := Default()
	cfg.Enhance.Enabled = false
	cfg.Enhance.Parallelism = 0
	cfg.Image.ToolDisabled = true
	cfg.Image.Tool = ""

	assert.NoError(t, cfg.Validate())
}
