// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"net/http"

	"github.com/pdiddy/article-graph/pkg/types"
)

// NewBackend returns the Backend selected by cfg.Provider. An empty provider
// means openai. A missing API key is not an error here; the backend fails
// each call with ErrAPIKeyRequired instead.
func NewBackend(cfg types.AIConfig, client *http.Client) (Backend, error) {
	if client == nil && cfg.Timeout > 0 {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	switch cfg.Provider {
	case "", types.ProviderOpenAI:
		return &OpenAIBackend{
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			Client:    client,
		}, nil
	case types.ProviderAnthropic:
		return NewAnthropicBackend(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens, client), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q (want openai or anthropic)", cfg.Provider)
	}
}
