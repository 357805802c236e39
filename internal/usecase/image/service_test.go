package image_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/usecase/fallback"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/usecase/image"
)

type stubGenerator struct {
	name     string
	disabled bool
	data     []byte
	err      error
	calls    int
}

func (g *stubGenerator) Name() string  { return g.name }
func (g *stubGenerator) Enabled() bool { return !g.disabled }

func (g *stubGenerator) Generate(context.Context, string) ([]byte, error) {
	g.calls++
	return g.data, g.err
}

func stripPrefix(data []byte) ([]byte, error) {
	return data[len("meta:"):], nil
}

func TestService_Generate_ToolTierSucceeds(t *testing.T) {
	// Arrange
	out := filepath.Join(t.TempDir(), "nested", "infographic.png")
	tool := &stubGenerator{name: "gemini", data: []byte("meta:pixels")}
	api := &stubGenerator{name: "openai-images", data: []byte("unused")}
	svc := image.NewService(image.WithToolTier(tool), image.WithMeteredTier(api), image.WithStripper(stripPrefix))

	// Act
	res, err := svc.Generate(context.Background(), image.Request{Prompt: "a lighthouse", OutputPath: out})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "gemini", res.Tier)
	assert.Equal(t, []string{"gemini"}, res.TiersAttempted)
	assert.Equal(t, out, res.Path)
	assert.True(t, res.MetadataStripped)
	assert.False(t, res.Manual)
	assert.Equal(t, len("pixels"), res.Bytes)
	assert.Zero(t, api.calls)

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(written))
}

func TestService_Generate_ToolMissingEscalatesToMetered(t *testing.T) {
	out := filepath.Join(t.TempDir(), "img.png")
	tool := &stubGenerator{name: "gemini", err: &fallback.ToolNotFoundError{Tool: "gemini", Err: errors.New("not in PATH")}}
	api := &stubGenerator{name: "openai-images", data: []byte("pixels")}
	svc := image.NewService(image.WithToolTier(tool), image.WithMeteredTier(api))

	res, err := svc.Generate(context.Background(), image.Request{Prompt: "a lighthouse", OutputPath: out})

	require.NoError(t, err)
	assert.Equal(t, "openai-images", res.Tier)
	assert.Equal(t, []string{"gemini", "openai-images"}, res.TiersAttempted)
	require.Len(t, res.TierFailures, 1)
	assert.False(t, res.MetadataStripped)
	assert.FileExists(t, out)
}

func TestService_Generate_UnexpectedToolErrorAborts(t *testing.T) {
	// Arrange
	out := filepath.Join(t.TempDir(), "img.png")
	tool := &stubGenerator{name: "gemini", err: errors.New("scratch dir: read-only file system")}
	api := &stubGenerator{name: "openai-images", data: []byte("pixels")}
	svc := image.NewService(image.WithToolTier(tool), image.WithMeteredTier(api))

	// Act
	_, err := svc.Generate(context.Background(), image.Request{Prompt: "a lighthouse", OutputPath: out})

	// Assert
	var fatal *fallback.FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, "gemini", fatal.Tier)
	assert.Zero(t, api.calls)
	assert.NoFileExists(t, out)
}

func TestService_Generate_AllTiersFailEndsManual(t *testing.T) {
	out := filepath.Join(t.TempDir(), "img.png")
	tool := &stubGenerator{name: "gemini", err: &fallback.AuthError{Tier: "gemini", Err: errors.New("not logged in")}}
	api := &stubGenerator{name: "openai-images", err: errors.New("billing hard limit reached")}
	svc := image.NewService(image.WithToolTier(tool), image.WithMeteredTier(api))

	res, err := svc.Generate(context.Background(), image.Request{Prompt: "a lighthouse", OutputPath: out})

	require.NoError(t, err)
	assert.True(t, res.Manual)
	assert.Equal(t, image.ManualTierName, res.Tier)
	assert.Equal(t, []string{"gemini", "openai-images", image.ManualTierName}, res.TiersAttempted)
	assert.Len(t, res.TierFailures, 2)
	assert.Contains(t, res.Instructions, "a lighthouse")
	assert.Contains(t, res.Instructions, out)
	assert.Empty(t, res.Path)
	assert.NoFileExists(t, out)
}

func TestService_Generate_NoBackendsIsManual(t *testing.T) {
	res, err := image.NewService().Generate(context.Background(), image.Request{Prompt: "p", OutputPath: "img.png"})

	require.NoError(t, err)
	assert.True(t, res.Manual)
	assert.Equal(t, []string{image.ManualTierName}, res.TiersAttempted)
}

func TestService_Generate_StripFailureKeepsImage(t *testing.T) {
	out := filepath.Join(t.TempDir(), "img.webp")
	tool := &stubGenerator{name: "gemini", data: []byte("RIFF....WEBP")}
	failing := func([]byte) ([]byte, error) { return nil, errors.New("unsupported image format") }
	svc := image.NewService(image.WithToolTier(tool), image.WithStripper(failing))

	res, err := svc.Generate(context.Background(), image.Request{Prompt: "p", OutputPath: out})

	require.NoError(t, err)
	assert.False(t, res.MetadataStripped)
	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "RIFF....WEBP", string(written))
}

func TestService_Generate_InvalidRequest(t *testing.T) {
	svc := image.NewService()

	_, err := svc.Generate(context.Background(), image.Request{Prompt: " ", OutputPath: "x.png"})
	assert.ErrorIs(t, err, image.ErrEmptyPrompt)

	_, err = svc.Generate(context.Background(), image.Request{Prompt: "p"})
	assert.ErrorIs(t, err, image.ErrEmptyOutput)
}

func TestManualInstructions(t *testing.T) {
	got := image.ManualInstructions("draw a lighthouse", "out/infographic.png")

	assert.Contains(t, got, "draw a lighthouse")
	assert.Contains(t, got, "curator strip-metadata out/infographic.png")
}
