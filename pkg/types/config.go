package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "article-graph/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the content fetcher.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MinPrimaryChars is the length the main-content text must exceed before
	// the primary method is accepted (default 200).
	MinPrimaryChars int `json:"min_primary_chars" yaml:"min_primary_chars"`

	// MaxChars caps the fallback text length in runes (default 10000).
	MaxChars int `json:"max_chars" yaml:"max_chars"`

	// FallbackDomains lists hosts that skip the primary method and go
	// straight to the fallback parser.
	FallbackDomains []string `json:"fallback_domains" yaml:"fallback_domains"`

	// BrowserUserAgent is sent by the fallback method.
	BrowserUserAgent string `json:"browser_user_agent" yaml:"browser_user_agent"`
}

// Provider identifies the LLM wire format.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// AIConfig holds settings for the extraction stage's language-model API.
type AIConfig struct {
	// Provider selects the backend: openai (any OpenAI-compatible endpoint)
	// or anthropic.
	Provider Provider `json:"provider" yaml:"provider"`

	// Model is the AI model identifier (e.g. "LongCat-Flash-Chat").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL is the API base endpoint (e.g. "https://api.longcat.chat/openai/v1").
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxTokens bounds the length of the model's reply.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Timeout bounds a single API call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// OutputConfig says where diagrams and the tag table are written.
type OutputConfig struct {
	// DiagramDir is the directory that receives one diagram per URL.
	DiagramDir string `json:"diagram_dir" yaml:"diagram_dir"`

	// DiagramPrefix names diagram files as <prefix>_<index>.md (default "mermaid").
	DiagramPrefix string `json:"diagram_prefix" yaml:"diagram_prefix"`

	// CSVPath is the tag table written at the end of the run.
	CSVPath string `json:"csv_path" yaml:"csv_path"`
}

// CatalogConfig holds settings for the optional SQLite result catalog.
type CatalogConfig struct {
	// Path is the database file. Empty disables the catalog.
	Path string `json:"path" yaml:"path"`
}

// RunConfig groups all stage configurations for one pipeline run.
type RunConfig struct {
	URLs    []string      `json:"urls" yaml:"urls"`
	Fetch   FetchConfig   `json:"fetch" yaml:"fetch"`
	AI      AIConfig      `json:"ai" yaml:"ai"`
	Output  OutputConfig  `json:"output" yaml:"output"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`
}
