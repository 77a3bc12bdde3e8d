package prompts

// Config holds prompt store initialization parameters.
type Config struct {
	Dir   string `json:"dir,omitempty" toml:"dir,omitempty"`     // Directory overriding the built-in templates; empty uses only the defaults.
	Watch bool   `json:"watch,omitempty" toml:"watch,omitempty"` // Reload templates from Dir when they change.
}

// DefaultConfig returns the default prompt configuration (built-in templates).
func DefaultConfig() Config {
	return Config{}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Dir != "" {
		c.Dir = source.Dir
	}
	if source.Watch {
		c.Watch = true
	}
}

// NewStore creates a Store from configuration. Files in Dir take precedence
// over the built-in templates.
func NewStore(cfg *Config) Store {
	if cfg.Dir == "" {
		return NewEmbeddedStore()
	}
	return NewLayeredStore(NewFileStore(cfg.Dir), NewEmbeddedStore())
}
