// Package router answers plain text queries directly, bypassing planning.
// The reply is an opaque, user-facing answer rather than a plan.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tailored-agentic-units/ezra/model"
	"github.com/tailored-agentic-units/ezra/observability"
	"github.com/tailored-agentic-units/ezra/prompts"
)

// ErrEmptyQuery is returned by Route for a blank query.
var ErrEmptyQuery = errors.New("query is empty")

// Router event types.
const (
	EventRouteStart    observability.EventType = "router.route.start"
	EventRouteComplete observability.EventType = "router.route.complete"
	EventRouteError    observability.EventType = "router.route.error"
)

// Router forwards a query to a model through the router template.
type Router struct {
	model    model.Model
	prompts  *prompts.Cache
	observer observability.Observer
}

// Option configures a Router.
type Option func(*Router)

// WithObserver sets the event observer. The default discards events.
func WithObserver(o observability.Observer) Option {
	return func(r *Router) { r.observer = o }
}

// New creates a Router that renders the router template from p and
// submits it to m.
func New(m model.Model, p *prompts.Cache, opts ...Option) *Router {
	r := &Router{
		model:    m,
		prompts:  p,
		observer: observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route returns the model's trimmed text reply to query.
func (r *Router) Route(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", ErrEmptyQuery
	}

	r.observer.OnEvent(ctx, observability.Event{
		Type:      EventRouteStart,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "router.Route",
		Data:      map[string]any{"query_length": len(query)},
	})

	prompt, err := r.prompts.Render(ctx, prompts.Router, map[string]string{
		"user_query": query,
	})
	if err != nil {
		return "", err
	}

	resp, err := r.model.Generate(ctx, model.Request{Prompt: prompt})
	if err != nil {
		r.observer.OnEvent(ctx, observability.Event{
			Type:      EventRouteError,
			Level:     observability.LevelError,
			Timestamp: time.Now(),
			Source:    "router.Route",
			Data:      map[string]any{"error": err.Error()},
		})
		return "", fmt.Errorf("route: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("route: %w", model.ErrEmptyResponse)
	}

	r.observer.OnEvent(ctx, observability.Event{
		Type:      EventRouteComplete,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "router.Route",
		Data:      map[string]any{"response_length": len(text)},
	})

	return text, nil
}
