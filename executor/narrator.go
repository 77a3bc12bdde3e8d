package executor

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/tailored-agentic-units/ezra/observability"
)

// Kind classifies a narration.
type Kind string

const (
	KindStep    Kind = "step"
	KindFailure Kind = "failure"
	KindAnswer  Kind = "answer"
)

// Narration is a line of text meant to be spoken to the user while a plan
// runs.
type Narration struct {
	PlanID string `json:"plan_id,omitempty"`
	StepID string `json:"step_id,omitempty"`
	Kind   Kind   `json:"kind"`
	Text   string `json:"text"`
}

// Narrator delivers narrations. The executor calls it from a background
// goroutine, one narration at a time, and ignores errors after reporting
// them as events.
type Narrator interface {
	Narrate(ctx context.Context, n Narration) error
}

// NarratorFunc adapts a function to Narrator.
type NarratorFunc func(ctx context.Context, n Narration) error

func (f NarratorFunc) Narrate(ctx context.Context, n Narration) error {
	return f(ctx, n)
}

// NopNarrator discards narrations.
type NopNarrator struct{}

func (NopNarrator) Narrate(context.Context, Narration) error { return nil }

// MultiNarrator delivers each narration to every non-nil narrator and joins
// their errors.
type MultiNarrator struct {
	narrators []Narrator
}

func NewMultiNarrator(narrators ...Narrator) *MultiNarrator {
	filtered := make([]Narrator, 0, len(narrators))
	for _, n := range narrators {
		if n != nil {
			filtered = append(filtered, n)
		}
	}
	return &MultiNarrator{narrators: filtered}
}

func (m *MultiNarrator) Narrate(ctx context.Context, n Narration) error {
	var errs []error
	for _, narrator := range m.narrators {
		if err := narrator.Narrate(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ChannelNarrator sends narrations on a channel without blocking. When the
// channel is full the narration is dropped and ErrNarrationDropped returned.
type ChannelNarrator struct {
	ch chan<- Narration
}

func NewChannelNarrator(ch chan<- Narration) *ChannelNarrator {
	return &ChannelNarrator{ch: ch}
}

func (c *ChannelNarrator) Narrate(_ context.Context, n Narration) error {
	select {
	case c.ch <- n:
		return nil
	default:
		return ErrNarrationDropped
	}
}

// RecordingNarrator keeps every narration in memory.
type RecordingNarrator struct {
	mu         sync.Mutex
	narrations []Narration
}

func NewRecordingNarrator() *RecordingNarrator {
	return &RecordingNarrator{}
}

func (r *RecordingNarrator) Narrate(_ context.Context, n Narration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.narrations = append(r.narrations, n)
	return nil
}

// Narrations returns a copy of what has been recorded.
func (r *RecordingNarrator) Narrations() []Narration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.narrations)
}

// Texts returns the recorded narration texts in order.
func (r *RecordingNarrator) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	texts := make([]string, len(r.narrations))
	for i, n := range r.narrations {
		texts[i] = n.Text
	}
	return texts
}

// ObserverNarrator reports narrations as observability events, so a headless
// deployment can still log what would have been spoken.
type ObserverNarrator struct {
	observer observability.Observer
}

func NewObserverNarrator(o observability.Observer) *ObserverNarrator {
	return &ObserverNarrator{observer: o}
}

func (o *ObserverNarrator) Narrate(ctx context.Context, n Narration) error {
	o.observer.OnEvent(ctx, observability.Event{
		Type:      EventNarration,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "executor.Narrate",
		Data: map[string]any{
			"plan_id": n.PlanID,
			"step_id": n.StepID,
			"kind":    string(n.Kind),
			"text":    n.Text,
		},
	})
	return nil
}
