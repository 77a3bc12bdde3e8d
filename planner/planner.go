// Package planner turns a user request into an executable plan.
//
// Spoken requests are sent, together with the tool manifest, to a multimodal
// model that replies with a JSON plan. Typed requests without audio skip
// planning and are answered by the router.
package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/ezra/core/protocol"
	"github.com/tailored-agentic-units/ezra/core/response"
	"github.com/tailored-agentic-units/ezra/model"
	"github.com/tailored-agentic-units/ezra/observability"
	"github.com/tailored-agentic-units/ezra/prompts"
)

// DefaultMIMEType is used for audio submitted without a MIME type.
const DefaultMIMEType = "audio/mp3"

// Input is a planning request. At least one of Query or Audio must be set.
type Input struct {
	Query    string
	Audio    []byte
	MIMEType string
}

// Manifester renders the tool manifest shown to the model.
type Manifester interface {
	Manifest() string
}

// Router answers text-only queries.
type Router interface {
	Route(ctx context.Context, query string) (string, error)
}

// Generator produces plans.
type Generator struct {
	model    model.Model
	prompts  *prompts.Cache
	tools    Manifester
	router   Router
	observer observability.Observer
	newID    func() string
	failure  string
}

// Option configures a Generator.
type Option func(*Generator)

// WithObserver sets the event observer. The default discards events.
func WithObserver(o observability.Observer) Option {
	return func(g *Generator) { g.observer = o }
}

// WithFailureMessage sets the Message of a plan the model declined to
// produce. The default is protocol.DefaultFailureMessage.
func WithFailureMessage(msg string) Option {
	return func(g *Generator) {
		if msg != "" {
			g.failure = msg
		}
	}
}

// WithIDFunc overrides plan ID generation.
func WithIDFunc(fn func() string) Option {
	return func(g *Generator) { g.newID = fn }
}

// New creates a Generator. m must accept audio input; text-only requests go
// to r instead.
func New(m model.Model, p *prompts.Cache, tools Manifester, r Router, opts ...Option) *Generator {
	g := &Generator{
		model:    m,
		prompts:  p,
		tools:    tools,
		router:   r,
		observer: observability.NoOpObserver{},
		newID:    newPlanID,
		failure:  protocol.DefaultFailureMessage,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a plan for in.
//
// A model reply that contains no usable JSON is not an error: the reply text
// is returned as the plan's Response with no steps. Model failures are
// returned as-is and never retried.
func (g *Generator) Generate(ctx context.Context, in Input) (*protocol.Plan, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" && len(in.Audio) == 0 {
		return nil, ErrInvalidRequest
	}

	g.observer.OnEvent(ctx, observability.Event{
		Type:      EventGenerateStart,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "planner.Generate",
		Data: map[string]any{
			"query_length": len(query),
			"audio_bytes":  len(in.Audio),
		},
	})

	if len(in.Audio) == 0 {
		return g.route(ctx, query)
	}

	prompt, err := g.prompts.Render(ctx, prompts.Planner, map[string]string{
		"tools":      g.tools.Manifest(),
		"user_input": describeInput(query),
	})
	if err != nil {
		return nil, err
	}

	mime := in.MIMEType
	if mime == "" {
		mime = DefaultMIMEType
	}

	resp, err := g.model.Generate(ctx, model.Request{
		Prompt: prompt,
		Audio:  &model.Audio{MIMEType: mime, Data: in.Audio},
		JSON:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}

	plan, err := response.ParsePlan(resp.Text)
	if err != nil {
		if !errors.Is(err, response.ErrMalformedPayload) {
			return nil, err
		}
		g.observer.OnEvent(ctx, observability.Event{
			Type:      EventMalformedPayload,
			Level:     observability.LevelWarning,
			Timestamp: time.Now(),
			Source:    "planner.Generate",
			Data:      map[string]any{"error": err.Error()},
		})
		plan = &protocol.Plan{Response: strings.TrimSpace(resp.Text)}
	}

	g.finalize(ctx, plan, query)

	g.observer.OnEvent(ctx, observability.Event{
		Type:      EventGenerateComplete,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "planner.Generate",
		Data: map[string]any{
			"plan_id": plan.ID,
			"steps":   len(plan.Steps),
		},
	})

	return plan, nil
}

func (g *Generator) route(ctx context.Context, query string) (*protocol.Plan, error) {
	text, err := g.router.Route(ctx, query)
	if err != nil {
		return nil, err
	}

	plan := &protocol.Plan{
		ID:       g.newID(),
		Query:    query,
		Response: text,
		Message:  text,
		Status:   protocol.StatusRouted,
	}

	g.observer.OnEvent(ctx, observability.Event{
		Type:      EventRouted,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "planner.Generate",
		Data:      map[string]any{"plan_id": plan.ID},
	})

	return plan, nil
}

// finalize assigns identifiers and the initial status of a decoded plan.
//
// A plan without steps is terminal. It completes with the model's response,
// or halts when the model reported an error or said nothing. Steps take
// precedence over a reported error.
func (g *Generator) finalize(ctx context.Context, plan *protocol.Plan, query string) {
	plan.ID = g.newID()
	if plan.Query == "" {
		plan.Query = query
	}

	for i := range plan.Steps {
		if plan.Steps[i].ID == "" {
			plan.Steps[i].ID = fmt.Sprintf("s%d", i+1)
		}
	}

	if len(plan.Steps) == 0 {
		g.terminate(ctx, plan)
		return
	}
	plan.Status = protocol.StatusPending
	plan.Error = ""
	plan.Message = ""

	if _, err := plan.Graph(); err != nil {
		g.observer.OnEvent(ctx, observability.Event{
			Type:      EventInvalidGraph,
			Level:     observability.LevelWarning,
			Timestamp: time.Now(),
			Source:    "planner.Generate",
			Data: map[string]any{
				"plan_id": plan.ID,
				"error":   err.Error(),
			},
		})
	}
}

func (g *Generator) terminate(ctx context.Context, plan *protocol.Plan) {
	plan.Response = strings.TrimSpace(plan.Response)
	plan.Error = strings.TrimSpace(plan.Error)

	if plan.Error == "" && plan.Response != "" {
		plan.Status = protocol.StatusCompleted
		plan.Message = plan.Response
		return
	}

	plan.Status = protocol.StatusHalted
	plan.Message = plan.Response
	if plan.Message == "" {
		plan.Message = g.failure
	}
	if plan.Error == "" {
		plan.Error = ErrEmptyPlan.Error()
	}

	g.observer.OnEvent(ctx, observability.Event{
		Type:      EventDeclined,
		Level:     observability.LevelWarning,
		Timestamp: time.Now(),
		Source:    "planner.Generate",
		Data: map[string]any{
			"plan_id": plan.ID,
			"error":   plan.Error,
		},
	})
}

func describeInput(query string) string {
	if query == "" {
		return "The user's request is in the attached audio."
	}
	return "The user's request is in the attached audio. They also typed: " + query
}

func newPlanID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
