package cli

import (
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/infra/collector"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/infra/fetcher"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/infra/imagegen"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/infra/imagemeta"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/infra/llm"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/usecase/collect"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/usecase/draft"
	"github.com/rajanrengasamy/linkedinposts-sub001/internal/usecase/image"
)

// Everything below is constructed once per command run and injected.

func (a *app) collectService() (*collect.Service, error) {
	cfg := a.cfg
	opts := []collector.Option{collector.WithUserAgent(cfg.Collection.UserAgent)}

	svcOpts := []collect.Option{
		collect.WithOptional(
			collector.NewHackerNews(opts...),
			collector.NewReddit(opts...),
			collector.NewGoogleTrends(cfg.Collection.TrendsGeo, opts...),
		),
	}
	if cfg.Enhance.Enabled {
		fcfg := fetcher.DefaultConfig()
		fcfg.Timeout = cfg.Enhance.FetchTimeout
		fcfg.MaxBodySize = cfg.Enhance.MaxBodySize
		fcfg.DenyPrivateIPs = cfg.Enhance.DenyPrivateIPs
		fcfg.UserAgent = cfg.Collection.UserAgent

		enhancer := collect.NewEnhancer(fetcher.NewReadabilityFetcher(fcfg), collect.EnhanceConfig{
			Parallelism: cfg.Enhance.Parallelism,
			Threshold:   cfg.Enhance.Threshold,
		})
		svcOpts = append(svcOpts, collect.WithEnhancer(enhancer))
	}
	return collect.NewService(collector.NewWeb(opts...), svcOpts...)
}

func (a *app) collectConfig() collect.Config {
	c := a.cfg.Collection
	return collect.Config{
		Sources:      c.Sources,
		MaxPerSource: c.MaxPerSource,
		MaxTotal:     c.MaxTotal,
		Timeout:      c.Timeout,
	}
}

func (a *app) draftService() (*draft.Service, error) {
	svc, err := a.collectService()
	if err != nil {
		return nil, err
	}

	claudeCfg := llm.DefaultClaudeConfig(a.cfg.Claude.APIKey)
	claudeCfg.Model = a.cfg.Claude.Model
	claudeCfg.MaxTokens = a.cfg.Claude.MaxTokens
	claudeCfg.Timeout = a.cfg.Claude.Timeout
	claudeCfg.BaseURL = a.cfg.Claude.BaseURL

	openaiCfg := llm.DefaultOpenAIConfig(a.cfg.OpenAI.APIKey)
	openaiCfg.Model = a.cfg.OpenAI.Model
	openaiCfg.MaxTokens = a.cfg.OpenAI.MaxTokens
	openaiCfg.Timeout = a.cfg.OpenAI.Timeout
	openaiCfg.BaseURL = a.cfg.OpenAI.BaseURL

	generators := []draft.Generator{llm.NewClaude(claudeCfg), llm.NewOpenAI(openaiCfg)}

	dcfg := draft.Config{
		Collect:         a.collectConfig(),
		PromptItems:     a.cfg.Draft.PromptItems,
		SnippetChars:    a.cfg.Draft.SnippetChars,
		ExtractiveItems: a.cfg.Draft.ExtractiveItems,
	}
	if err := dcfg.Validate(); err != nil {
		return nil, err
	}
	return draft.NewService(svc, generators, dcfg), nil
}

func (a *app) imageService() *image.Service {
	ic := a.cfg.Image

	toolCfg := imagegen.DefaultCLIConfig()
	toolCfg.Tool = ic.Tool
	toolCfg.Timeout = ic.ToolTimeout
	toolCfg.Disabled = ic.ToolDisabled
	if len(ic.ToolArgs) > 0 {
		toolCfg.Args = ic.ToolArgs
	}

	apiCfg := imagegen.DefaultOpenAIConfig(a.cfg.OpenAI.APIKey)
	apiCfg.Model = ic.OpenAIModel
	apiCfg.Size = ic.OpenAISize
	apiCfg.Timeout = ic.OpenAITimeout
	apiCfg.BaseURL = a.cfg.OpenAI.BaseURL

	return image.NewService(
		image.WithToolTier(imagegen.NewCLITool(toolCfg, a.tools)),
		image.WithMeteredTier(imagegen.NewOpenAIImages(apiCfg)),
		image.WithStripper(stripMetadata),
	)
}

func stripMetadata(data []byte) ([]byte, error) {
	out, _, err := imagemeta.Strip(data)
	return out, err
}
