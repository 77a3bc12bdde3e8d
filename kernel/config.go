package kernel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/tailored-agentic-units/ezra/core/config"
	"github.com/tailored-agentic-units/ezra/executor"
	"github.com/tailored-agentic-units/ezra/model"
	"github.com/tailored-agentic-units/ezra/prompts"
)

const (
	defaultToolTimeout = config.Duration(30 * time.Second)
	defaultSecrets     = "secrets.json"
	defaultObserver    = "slog"
)

// Config holds initialization parameters for all kernel subsystems.
// Each subsystem section delegates to that subsystem's config-driven constructor.
type Config struct {
	Model          model.Config            `json:"model" toml:"model"`                                         // Shared by every role.
	Models         map[string]model.Config `json:"models,omitempty" toml:"models,omitempty"`                   // Per-role overrides merged over Model.
	Prompts        prompts.Config          `json:"prompts" toml:"prompts"`                                     // Template directory and hot reload.
	Secrets        string                  `json:"secrets,omitempty" toml:"secrets,omitempty"`                 // Secrets file path; JSON or TOML.
	ToolTimeout    config.Duration         `json:"tool_timeout,omitempty" toml:"tool_timeout,omitempty"`       // Per-invocation limit; zero disables it.
	FailureMessage string                  `json:"failure_message,omitempty" toml:"failure_message,omitempty"` // Spoken when a plan halts.
	Observer       string                  `json:"observer,omitempty" toml:"observer,omitempty"`               // Comma-separated observer names.
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Model:          model.DefaultConfig(),
		Prompts:        prompts.DefaultConfig(),
		Secrets:        defaultSecrets,
		ToolTimeout:    defaultToolTimeout,
		FailureMessage: executor.DefaultFailureMessage,
		Observer:       defaultObserver,
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Model.Merge(&source.Model)
	c.Prompts.Merge(&source.Prompts)

	if len(source.Models) > 0 {
		if c.Models == nil {
			c.Models = make(map[string]model.Config, len(source.Models))
		}
		for role, m := range source.Models {
			existing := c.Models[role]
			existing.Merge(&m)
			c.Models[role] = existing
		}
	}
	if source.Secrets != "" {
		c.Secrets = source.Secrets
	}
	if source.ToolTimeout > 0 {
		c.ToolTimeout = source.ToolTimeout
	}
	if source.FailureMessage != "" {
		c.FailureMessage = source.FailureMessage
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// RoleConfig returns the model configuration for role: the shared Model
// section with the role's override merged over it.
func (c *Config) RoleConfig(role string) model.Config {
	cfg := c.Model
	if override, ok := c.Models[role]; ok {
		cfg.Merge(&override)
	}
	return cfg
}

// LoadConfig reads a config file, merges it with defaults, and returns the
// resulting Config. Files ending in .toml are decoded as TOML, anything else
// as JSON.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if strings.EqualFold(filepath.Ext(filename), ".toml") {
		if _, err := toml.Decode(string(data), &loaded); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
