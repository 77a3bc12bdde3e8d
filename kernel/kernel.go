// Package kernel composes the assistant: tool registry, prompt templates,
// models, router, planner, executor and answer synthesizer.
//
// The kernel initializes from configuration via New, creating all subsystems
// internally. Functional options allow test overrides of any subsystem.
//
//	k, err := kernel.New(&cfg)
//	result, err := k.Orchestrate(ctx, kernel.Request{AudioData: clip})
package kernel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tailored-agentic-units/ezra/answer"
	"github.com/tailored-agentic-units/ezra/core/protocol"
	"github.com/tailored-agentic-units/ezra/executor"
	"github.com/tailored-agentic-units/ezra/model"
	"github.com/tailored-agentic-units/ezra/observability"
	"github.com/tailored-agentic-units/ezra/planner"
	"github.com/tailored-agentic-units/ezra/prompts"
	"github.com/tailored-agentic-units/ezra/router"
	"github.com/tailored-agentic-units/ezra/secrets"
	"github.com/tailored-agentic-units/ezra/tools"
	"github.com/tailored-agentic-units/ezra/tools/builtin"
)

// Request is one user turn: typed text, recorded speech, or both.
type Request struct {
	Query     string `json:"query,omitempty"`
	AudioData []byte `json:"audio_data,omitempty"`
	MIMEType  string `json:"mime_type,omitempty"`
}

// Result holds the outcome of an Orchestrate call.
type Result struct {
	Plan      *protocol.Plan       `json:"plan"`      // Populated plan; the audit trail of the request.
	Narration []executor.Narration `json:"narration"` // Everything spoken while serving the request, in order.
}

// AnswerRequest asks for a raw result to be phrased as an answer.
type AnswerRequest struct {
	Query     string `json:"query"`
	RawAnswer string `json:"raw_answer"`
}

// Option configures a Kernel after config-driven initialization.
// Applied by New before components are wired, so overrides reach every
// component that depends on them.
type Option func(*Kernel)

// WithRegistry overrides the config-created tool registry.
func WithRegistry(r *tools.Registry) Option {
	return func(k *Kernel) { k.tools = r }
}

// WithModel installs m for role instead of creating it from configuration.
func WithModel(role string, m model.Model) Option {
	return func(k *Kernel) {
		if k.overrides == nil {
			k.overrides = make(map[string]model.Model)
		}
		k.overrides[role] = m
	}
}

// WithPromptStore overrides the config-created template store.
func WithPromptStore(s prompts.Store) Option {
	return func(k *Kernel) { k.store = s }
}

// WithSecrets overrides the config-created secrets store.
func WithSecrets(s secrets.Store) Option {
	return func(k *Kernel) { k.secrets = s }
}

// WithObserver overrides the configured observer.
func WithObserver(o observability.Observer) Option {
	return func(k *Kernel) { k.observer = o }
}

// WithNarrator sets where narrations are delivered as they happen, in
// addition to being collected on the Result.
func WithNarrator(n executor.Narrator) Option {
	return func(k *Kernel) { k.narrator = n }
}

// Kernel serves assistant requests.
type Kernel struct {
	cfg Config

	tools     *tools.Registry
	models    *model.Registry
	overrides map[string]model.Model
	store     prompts.Store
	prompts   *prompts.Cache
	secrets   secrets.Store
	observer  observability.Observer
	narrator  executor.Narrator

	router  *router.Router
	synth   *answer.Synthesizer
	planner *planner.Generator

	narrating sync.WaitGroup
}

// New creates a Kernel from configuration. Subsystems (tools, secrets,
// prompts, models) are initialized from their config sections unless an
// option overrides them; the router, planner and synthesizer are then wired
// on top.
func New(cfg *Config, opts ...Option) (*Kernel, error) {
	c := DefaultConfig()
	if cfg != nil {
		c.Merge(cfg)
	}

	k := &Kernel{cfg: c}
	for _, opt := range opts {
		opt(k)
	}

	if k.observer == nil {
		obs, err := newObserver(c.Observer)
		if err != nil {
			return nil, err
		}
		k.observer = obs
	}
	if k.narrator == nil {
		k.narrator = executor.NopNarrator{}
	}

	if k.secrets == nil {
		k.secrets = k.loadSecrets(c.Secrets)
	}

	if k.tools == nil {
		k.tools = tools.NewRegistry(tools.WithTimeout(c.ToolTimeout.Std()))
		builtin.Register(k.tools)
	}

	if k.store == nil {
		k.store = prompts.NewStore(&c.Prompts)
	}
	k.prompts = prompts.NewCache(k.store)
	if err := k.prompts.Preload(context.Background(), prompts.Planner, prompts.Router, prompts.Answer); err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}

	models, err := k.newModelRegistry()
	if err != nil {
		return nil, err
	}
	k.models = models

	k.router = router.New(models.Resolver(model.RoleRouter), k.prompts, router.WithObserver(k.observer))
	k.synth = answer.New(models.Resolver(model.RoleAnswer), k.prompts, answer.WithObserver(k.observer))
	k.planner = planner.New(models.Resolver(model.RolePlanner), k.prompts, k.tools, k.router,
		planner.WithObserver(k.observer),
		planner.WithFailureMessage(c.FailureMessage),
	)

	return k, nil
}

func newObserver(name string) (observability.Observer, error) {
	if name == "" || name == defaultObserver {
		return observability.NewSlogObserver(slog.Default()), nil
	}
	obs, err := observability.ParseObservers(name)
	if err != nil {
		return nil, fmt.Errorf("failed to create observer: %w", err)
	}
	return obs, nil
}

// loadSecrets reads the secrets file, falling back to the environment. A
// missing file is reported and tolerated.
func (k *Kernel) loadSecrets(path string) secrets.Store {
	env := secrets.Env{}
	if path == "" {
		return env
	}

	file, err := secrets.NewFileStore(path)
	if err != nil {
		level := observability.LevelError
		if errors.Is(err, secrets.ErrMissingFile) {
			level = observability.LevelWarning
		}
		k.observer.OnEvent(context.Background(), observability.Event{
			Type:      EventSecretsMissing,
			Level:     level,
			Timestamp: time.Now(),
			Source:    "kernel.New",
			Data: map[string]any{
				"path":  path,
				"error": err.Error(),
			},
		})
		return env
	}
	return secrets.Chain{file, env}
}

func (k *Kernel) newModelRegistry() (*model.Registry, error) {
	reg := model.NewRegistry(k.secrets)

	roles := []string{model.RolePlanner, model.RoleRouter, model.RoleAnswer}
	for role := range k.cfg.Models {
		if !slices.Contains(roles, role) {
			roles = append(roles, role)
		}
	}

	for _, role := range roles {
		if m, ok := k.overrides[role]; ok {
			if err := reg.Set(role, m); err != nil {
				return nil, fmt.Errorf("failed to set %s model: %w", role, err)
			}
			continue
		}
		if err := reg.Register(role, k.cfg.RoleConfig(role)); err != nil {
			return nil, fmt.Errorf("failed to register %s model: %w", role, err)
		}
	}
	return reg, nil
}

// Registry returns the kernel's tool registry.
func (k *Kernel) Registry() *tools.Registry {
	return k.tools
}

// Models returns the kernel's model registry.
func (k *Kernel) Models() *model.Registry {
	return k.models
}

// Prompts returns the kernel's template cache.
func (k *Kernel) Prompts() *prompts.Cache {
	return k.prompts
}

// Orchestrate serves one request: it generates a plan and, when the plan has
// steps, executes it.
//
// A halted plan is not an error; inspect Result.Plan.Status. Errors are
// returned for invalid requests, model failures, and cancellation, in which
// case Result may still carry the partially executed plan.
func (k *Kernel) Orchestrate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	k.observer.OnEvent(ctx, observability.Event{
		Type:      EventOrchestrateStart,
		Level:     observability.LevelInfo,
		Timestamp: start,
		Source:    "kernel.Orchestrate",
		Data: map[string]any{
			"query_length": len(req.Query),
			"audio_bytes":  len(req.AudioData),
			"tools":        k.tools.Len(),
		},
	})

	plan, err := k.planner.Generate(ctx, planner.Input{
		Query:    req.Query,
		Audio:    req.AudioData,
		MIMEType: req.MIMEType,
	})
	if err != nil {
		k.fail(ctx, "kernel.Orchestrate", err)
		return nil, err
	}

	transcript := executor.NewRecordingNarrator()
	exec := executor.New(k.tools, k.synth,
		executor.WithNarrator(k.narrator),
		executor.WithTranscript(transcript),
		executor.WithObserver(k.observer),
		executor.WithFailureMessage(k.cfg.FailureMessage),
	)
	defer k.track(exec)

	result := &Result{Plan: plan}

	if len(plan.Steps) == 0 {
		kind := executor.KindAnswer
		if plan.Halted() {
			kind = executor.KindFailure
		}
		exec.Announce(ctx, executor.Narration{
			PlanID: plan.ID,
			Kind:   kind,
			Text:   plan.Message,
		})
	} else if _, err := exec.Execute(ctx, plan); err != nil {
		result.Narration = transcript.Narrations()
		k.fail(ctx, "kernel.Orchestrate", err)
		return result, err
	}

	result.Narration = transcript.Narrations()

	k.observer.OnEvent(ctx, observability.Event{
		Type:      EventOrchestrateComplete,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "kernel.Orchestrate",
		Data: map[string]any{
			"plan_id":  plan.ID,
			"status":   string(plan.Status),
			"steps":    len(plan.Steps),
			"duration": time.Since(start).String(),
		},
	})

	return result, nil
}

// ExecuteTool runs a single tool directly. Failures are reported in the
// result, never as an error.
func (k *Kernel) ExecuteTool(ctx context.Context, name string, args protocol.Args) protocol.ToolResult {
	k.observer.OnEvent(ctx, observability.Event{
		Type:      EventToolCall,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "kernel.ExecuteTool",
		Data: map[string]any{
			"name":      name,
			"arguments": args.Names(),
		},
	})

	result := k.tools.Execute(ctx, name, args)

	k.observer.OnEvent(ctx, observability.Event{
		Type:      EventToolComplete,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "kernel.ExecuteTool",
		Data: map[string]any{
			"name":     name,
			"is_error": result.Failed(),
		},
	})

	return result
}

// Answer phrases req.RawAnswer as a spoken reply to req.Query.
func (k *Kernel) Answer(ctx context.Context, req AnswerRequest) (string, error) {
	if strings.TrimSpace(req.Query) == "" {
		return "", fmt.Errorf("%w: query is empty", ErrInvalidRequest)
	}

	text, err := k.synth.Synthesize(ctx, req.Query, req.RawAnswer)
	if err != nil {
		k.fail(ctx, "kernel.Answer", err)
		return "", err
	}

	k.observer.OnEvent(ctx, observability.Event{
		Type:      EventAnswer,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "kernel.Answer",
		Data:      map[string]any{"answer_length": len(text)},
	})

	return text, nil
}

// Tools returns the registered tool descriptors in registration order.
func (k *Kernel) Tools() []protocol.Descriptor {
	return k.tools.List()
}

// Manifest returns the tool manifest shown to the planning model.
func (k *Kernel) Manifest() string {
	return k.tools.Manifest()
}

// FailureMessage returns the text set on halted plans.
func (k *Kernel) FailureMessage() string {
	return k.cfg.FailureMessage
}

// Watch reloads prompt templates from the configured directory as they
// change, until ctx ends. It returns nil immediately when watching is not
// configured.
func (k *Kernel) Watch(ctx context.Context) error {
	if !k.cfg.Prompts.Watch || k.cfg.Prompts.Dir == "" {
		return nil
	}
	return prompts.Watch(ctx, k.cfg.Prompts.Dir, k.prompts, k.observer)
}

// Wait blocks until narrations from earlier requests have been delivered
// to the narrator set with WithNarrator.
func (k *Kernel) Wait() {
	k.narrating.Wait()
}

// Close waits for pending narrations and releases model clients.
func (k *Kernel) Close() error {
	k.Wait()
	return k.models.Close()
}

func (k *Kernel) track(exec *executor.Executor) {
	k.narrating.Add(1)
	go func() {
		defer k.narrating.Done()
		exec.Wait()
	}()
}

func (k *Kernel) fail(ctx context.Context, source string, err error) {
	level := observability.LevelError
	if errors.Is(err, ErrInvalidRequest) {
		level = observability.LevelWarning
	}
	k.observer.OnEvent(ctx, observability.Event{
		Type:      EventError,
		Level:     level,
		Timestamp: time.Now(),
		Source:    source,
		Data:      map[string]any{"error": err.Error()},
	})
}
