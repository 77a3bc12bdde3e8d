package model

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/time/rate"

	"github.com/tailored-agentic-units/ezra/secrets"
)

type providerInfo struct {
	secret string   // default dotted secret path
	env    []string // conventional environment variables, consulted last
	keyed  bool     // whether the provider requires an API key
}

var providers = map[string]providerInfo{
	ProviderGemini:    {secret: "GOOGLE.API_KEY", env: []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}, keyed: true},
	ProviderOpenAI:    {secret: "OPENAI.API_KEY", env: []string{"OPENAI_API_KEY"}, keyed: true},
	ProviderAnthropic: {secret: "ANTHROPIC.API_KEY", env: []string{"ANTHROPIC_API_KEY"}, keyed: true},
	ProviderOllama:    {secret: "OLLAMA.API_KEY"},
}

// Providers returns the supported provider names.
func Providers() []string {
	return []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderOllama}
}

// New creates a Model from configuration. The API key is resolved from store
// by cfg.APIKeySecret (or the provider's default path), then from the
// provider's conventional environment variables. The result is wrapped with
// rate limiting and a timeout when the configuration asks for them.
func New(ctx context.Context, cfg *Config, store secrets.Store) (Model, error) {
	c := DefaultConfig()
	c.Merge(cfg)

	provider := strings.ToLower(c.Provider)
	info, ok := providers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, c.Provider)
	}

	key := resolveKey(&c, info, store)
	if info.keyed && key == "" {
		return nil, fmt.Errorf("%w: %s (secret %s or $%s)",
			ErrMissingAPIKey, provider, secretPath(&c, info), strings.Join(info.env, ", $"))
	}

	var (
		m   Model
		err error
	)
	switch provider {
	case ProviderGemini:
		m, err = newGemini(ctx, &c, key)
	case ProviderOpenAI:
		m, err = newOpenAI(&c, key)
	case ProviderAnthropic:
		m, err = newAnthropic(&c, key)
	case ProviderOllama:
		m, err = newOllama(&c)
	}
	if err != nil {
		return nil, err
	}

	if c.RateLimit > 0 {
		burst := c.Burst
		if burst < 1 {
			burst = 1
		}
		m = WithRateLimit(m, rate.NewLimiter(rate.Limit(c.RateLimit), burst))
	}
	if c.Timeout > 0 {
		m = WithTimeout(m, c.Timeout.Std())
	}

	return m, nil
}

func secretPath(c *Config, info providerInfo) string {
	if c.APIKeySecret != "" {
		return c.APIKeySecret
	}
	return info.secret
}

func resolveKey(c *Config, info providerInfo, store secrets.Store) string {
	if store != nil {
		if key, ok := store.Lookup(secretPath(c, info)); ok {
			return key
		}
	}
	for _, name := range info.env {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}
	return ""
}

func generationError(provider string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrGeneration, provider, err)
}
