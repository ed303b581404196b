// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/article-graph/internal/diagram"
	"github.com/pdiddy/article-graph/internal/export"
	"github.com/pdiddy/article-graph/internal/secrets"
	"github.com/pdiddy/article-graph/pkg/types"
)

const (
	defaultFetchTimeout = 20 * time.Second
	defaultAITimeout    = 2 * time.Minute
	defaultMaxTokens    = 4096
	defaultUserAgent    = "article-graph/0.1"
)

// defaultURLs is processed when no URLs are given on the command line or in
// the config file.
var defaultURLs = []string{
	"https://en.wikipedia.org/wiki/Sustainable_agriculture",
	"https://www.nature.com/articles/d41586-025-03353-5",
	"https://www.sciencedirect.com/science/article/pii/S1043661820315152",
	"https://www.ncbi.nlm.nih.gov/pmc/articles/PMC10457221/",
	"https://www.fao.org/3/y4671e/y4671e06.htm",
	"https://www.medscape.com/viewarticle/time-reconsider-tramadol-chronic-pain-2025a1000ria",
	"https://www.sciencedirect.com/science/article/pii/S0378378220307088",
	"https://www.frontiersin.org/news/2025/09/01/rectangle-telescope-finding-habitable-planets",
	"https://www.medscape.com/viewarticle/second-dose-boosts-shingles-protection-adults-aged-65-years-2025a1000ro7",
	"https://www.theguardian.com/global-development/2025/oct/13/astro-ambassadors-stargazers-himalayas-hanle-ladakh-india",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("fetch.timeout", defaultFetchTimeout)
	v.SetDefault("fetch.user_agent", defaultUserAgent)
	v.SetDefault("ai.provider", string(types.ProviderOpenAI))
	v.SetDefault("ai.max_tokens", defaultMaxTokens)
	v.SetDefault("ai.timeout", defaultAITimeout)
	v.SetDefault("output.diagram_dir", ".")
	v.SetDefault("output.diagram_prefix", diagram.DefaultPrefix)
	v.SetDefault("output.csv_path", export.DefaultPath)
}

// providerEnv lists the conventional variables for each provider's
// credential and endpoint, checked after ARTICLE_GRAPH_AI_*.
var providerEnv = map[types.Provider][2]string{
	types.ProviderOpenAI:    {"OPENAI_API_KEY", "OPENAI_API_BASE"},
	types.ProviderAnthropic: {"ANTHROPIC_API_KEY", "ANTHROPIC_BASE_URL"},
}

// buildRunConfig assembles the run configuration from viper (config file,
// ARTICLE_GRAPH_* environment, bound flags), provider environment
// variables, and the secrets directory, in that order of precedence.
func buildRunConfig(v *viper.Viper, args []string) types.RunConfig {
	provider := types.Provider(v.GetString("ai.provider"))
	env := providerEnv[provider]

	apiKey := v.GetString("ai.api_key")
	baseURL := v.GetString("ai.base_url")
	if env[0] != "" {
		apiKey = firstSet(apiKey, os.Getenv(env[0]))
		baseURL = firstSet(baseURL, os.Getenv(env[1]))
	}
	apiKey = secretDefault(secrets.KeyAPIKey, apiKey)
	// .secrets/llm-api-base names an OpenAI-compatible endpoint.
	if provider == "" || provider == types.ProviderOpenAI {
		baseURL = secretDefault(secrets.KeyBaseURL, baseURL)
	}

	cfg := types.RunConfig{
		URLs: args,
		Fetch: types.FetchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("fetch.timeout"),
				UserAgent: v.GetString("fetch.user_agent"),
			},
			MinPrimaryChars:  v.GetInt("fetch.min_primary_chars"),
			MaxChars:         v.GetInt("fetch.max_chars"),
			BrowserUserAgent: v.GetString("fetch.browser_user_agent"),
		},
		AI: types.AIConfig{
			Provider:  provider,
			Model:     v.GetString("ai.model"),
			APIKey:    apiKey,
			BaseURL:   baseURL,
			MaxTokens: v.GetInt("ai.max_tokens"),
			Timeout:   v.GetDuration("ai.timeout"),
		},
		Output: types.OutputConfig{
			DiagramDir:    v.GetString("output.diagram_dir"),
			DiagramPrefix: v.GetString("output.diagram_prefix"),
			CSVPath:       v.GetString("output.csv_path"),
		},
		Catalog: types.CatalogConfig{
			Path: v.GetString("catalog.path"),
		},
	}

	if v.IsSet("fetch.fallback_domains") {
		cfg.Fetch.FallbackDomains = v.GetStringSlice("fetch.fallback_domains")
	}

	if len(cfg.URLs) == 0 {
		cfg.URLs = v.GetStringSlice("urls")
	}
	if len(cfg.URLs) == 0 {
		cfg.URLs = defaultURLs
	}

	return cfg
}

func firstSet(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
