package model

import (
	"time"

	"github.com/tailored-agentic-units/ezra/core/config"
)

// Provider names accepted in Config.Provider.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

const (
	defaultProvider  = ProviderGemini
	defaultName      = "gemini-2.0-flash"
	defaultTimeout   = config.Duration(60 * time.Second)
	defaultMaxTokens = 1024
)

// Config describes one model endpoint.
type Config struct {
	Provider     string          `json:"provider,omitempty" toml:"provider,omitempty"`
	Name         string          `json:"name,omitempty" toml:"name,omitempty"`
	APIKeySecret string          `json:"api_key_secret,omitempty" toml:"api_key_secret,omitempty"` // Dotted secret path; defaults per provider.
	BaseURL      string          `json:"base_url,omitempty" toml:"base_url,omitempty"`
	Timeout      config.Duration `json:"timeout,omitempty" toml:"timeout,omitempty"`
	RateLimit    float64         `json:"rate_limit,omitempty" toml:"rate_limit,omitempty"` // Requests per second; zero disables limiting.
	Burst        int             `json:"burst,omitempty" toml:"burst,omitempty"`
	MaxTokens    int             `json:"max_tokens,omitempty" toml:"max_tokens,omitempty"`
}

// DefaultConfig returns the default model configuration: Gemini 2.0 Flash
// with a 60 second request timeout.
func DefaultConfig() Config {
	return Config{
		Provider:  defaultProvider,
		Name:      defaultName,
		Timeout:   defaultTimeout,
		MaxTokens: defaultMaxTokens,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Provider != "" {
		c.Provider = source.Provider
	}
	if source.Name != "" {
		c.Name = source.Name
	}
	if source.APIKeySecret != "" {
		c.APIKeySecret = source.APIKeySecret
	}
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.Timeout > 0 {
		c.Timeout = source.Timeout
	}
	if source.RateLimit > 0 {
		c.RateLimit = source.RateLimit
	}
	if source.Burst > 0 {
		c.Burst = source.Burst
	}
	if source.MaxTokens > 0 {
		c.MaxTokens = source.MaxTokens
	}
}
