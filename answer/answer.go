// Package answer turns a tool's raw result into a spoken answer.
package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tailored-agentic-units/ezra/model"
	"github.com/tailored-agentic-units/ezra/observability"
	"github.com/tailored-agentic-units/ezra/prompts"
)

// Synthesizer event types.
const (
	EventSynthesizeStart    observability.EventType = "answer.synthesize.start"
	EventSynthesizeComplete observability.EventType = "answer.synthesize.complete"
)

// Synthesizer asks a model to phrase a raw result as an answer to the
// original query.
type Synthesizer struct {
	model    model.Model
	prompts  *prompts.Cache
	observer observability.Observer
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithObserver sets the event observer. The default discards events.
func WithObserver(o observability.Observer) Option {
	return func(s *Synthesizer) { s.observer = o }
}

// New creates a Synthesizer using the answer template from p.
func New(m model.Model, p *prompts.Cache, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		model:    m,
		prompts:  p,
		observer: observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize returns the trimmed answer text. Failures are returned without
// retry.
func (s *Synthesizer) Synthesize(ctx context.Context, query, rawResult string) (string, error) {
	s.observer.OnEvent(ctx, observability.Event{
		Type:      EventSynthesizeStart,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "answer.Synthesize",
		Data: map[string]any{
			"query_length":  len(query),
			"result_length": len(rawResult),
		},
	})

	prompt, err := s.prompts.Render(ctx, prompts.Answer, map[string]string{
		"query":     query,
		"rawAnswer": rawResult,
	})
	if err != nil {
		return "", err
	}

	resp, err := s.model.Generate(ctx, model.Request{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("synthesize: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("synthesize: %w", model.ErrEmptyResponse)
	}

	s.observer.OnEvent(ctx, observability.Event{
		Type:      EventSynthesizeComplete,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "answer.Synthesize",
		Data:      map[string]any{"answer_length": len(text)},
	})

	return text, nil
}
