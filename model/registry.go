package model

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/tailored-agentic-units/ezra/secrets"
)

// Roles under which the assistant looks up its models.
const (
	RolePlanner = "planner"
	RoleRouter  = "router"
	RoleAnswer  = "answer"
)

// Info describes a registered model.
type Info struct {
	Role     string
	Provider string
	Name     string
}

// Registry manages model configurations by role with lazy instantiation.
// Configs are stored at registration time; models are created on first Get.
// Thread-safe for concurrent access.
type Registry struct {
	mu       sync.Mutex
	configs  map[string]Config
	models   map[string]Model
	fallback string
	secrets  secrets.Store
}

// NewRegistry creates an empty Registry. Keys for lazily created models are
// resolved from store.
func NewRegistry(store secrets.Store) *Registry {
	return &Registry{
		configs: make(map[string]Config),
		models:  make(map[string]Model),
		secrets: store,
	}
}

// SetFallback names the role served when Get is asked for a role that has no
// registration of its own.
func (r *Registry) SetFallback(role string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = role
}

// Register adds a role's model configuration. The model is not created until
// Get is called.
func (r *Registry) Register(role string, cfg Config) error {
	if role == "" {
		return ErrEmptyRole
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[role]; exists {
		return fmt.Errorf("%w: %s", ErrModelExists, role)
	}
	if _, exists := r.models[role]; exists {
		return fmt.Errorf("%w: %s", ErrModelExists, role)
	}

	r.configs[role] = cfg
	return nil
}

// Replace updates a role's configuration. Any created model is dropped and
// the next Get re-creates it.
func (r *Registry) Replace(role string, cfg Config) error {
	if role == "" {
		return ErrEmptyRole
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, configured := r.configs[role]
	_, set := r.models[role]
	if !configured && !set {
		return fmt.Errorf("%w: %s", ErrModelNotFound, role)
	}

	r.configs[role] = cfg
	delete(r.models, role)
	return nil
}

// Set installs a ready-made model for role, replacing any configuration.
func (r *Registry) Set(role string, m Model) error {
	if role == "" {
		return ErrEmptyRole
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.configs, role)
	r.models[role] = m
	return nil
}

// Unregister removes a role.
func (r *Registry) Unregister(role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, configured := r.configs[role]
	_, set := r.models[role]
	if !configured && !set {
		return fmt.Errorf("%w: %s", ErrModelNotFound, role)
	}

	delete(r.configs, role)
	delete(r.models, role)
	return nil
}

// Get returns the model for role, creating it on first access.
func (r *Registry) Get(ctx context.Context, role string) (Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.get(ctx, role)
	if errors.Is(err, ErrModelNotFound) && r.fallback != "" && role != r.fallback {
		return r.get(ctx, r.fallback)
	}
	return m, err
}

func (r *Registry) get(ctx context.Context, role string) (Model, error) {
	if m, exists := r.models[role]; exists {
		return m, nil
	}

	cfg, registered := r.configs[role]
	if !registered {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, role)
	}

	m, err := New(ctx, &cfg, r.secrets)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s model: %w", role, err)
	}

	r.models[role] = m
	return m, nil
}

// Resolver returns a Model that looks up role on every call, so models are
// created lazily and follow Replace.
func (r *Registry) Resolver(role string) Model {
	return Func(func(ctx context.Context, req Request) (*Response, error) {
		m, err := r.Get(ctx, role)
		if err != nil {
			return nil, err
		}
		return m.Generate(ctx, req)
	})
}

// List returns information about all registered roles, sorted by role.
func (r *Registry) List() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool)
	infos := make([]Info, 0, len(r.configs)+len(r.models))
	for role, cfg := range r.configs {
		c := DefaultConfig()
		c.Merge(&cfg)
		infos = append(infos, Info{Role: role, Provider: c.Provider, Name: c.Name})
		seen[role] = true
	}
	for role := range r.models {
		if !seen[role] {
			infos = append(infos, Info{Role: role, Provider: "custom"})
		}
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Role < infos[j].Role
	})
	return infos
}

// Close releases every created model that holds resources.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for role, m := range r.models {
		if err := closeModel(m); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", role, err))
		}
	}
	return errors.Join(errs...)
}
