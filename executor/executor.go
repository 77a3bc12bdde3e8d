// Package executor runs a plan's steps in order, narrating progress and
// asking for a spoken answer once the final step produces a result.
//
// A failing step halts the plan. The failure is recorded on the step and on
// the plan rather than returned as an error: Execute only returns errors for
// cancellation and answer synthesis failures.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/ezra/core/protocol"
	"github.com/tailored-agentic-units/ezra/observability"
	"github.com/tailored-agentic-units/ezra/tools"
)

// Tools resolves and invokes tools. *tools.Registry implements it.
type Tools interface {
	Resolve(name string) (tools.Handler, bool)
	Invoke(ctx context.Context, name string, args protocol.Args) (*structpb.Value, error)
}

// Synthesizer phrases the final tool result as an answer.
type Synthesizer interface {
	Synthesize(ctx context.Context, query, rawResult string) (string, error)
}

// DefaultNarrationBuffer is how many narrations may wait for a slow
// narrator before further ones are dropped.
const DefaultNarrationBuffer = 16

// Executor runs plans.
type Executor struct {
	tools          Tools
	synth          Synthesizer
	narrator       Narrator
	transcript     *RecordingNarrator
	observer       observability.Observer
	failureMessage string
	buffer         int

	delivering sync.WaitGroup
}

// Option configures an Executor.
type Option func(*Executor)

// WithNarrator sets where step descriptions are spoken. The default discards
// them. Delivery happens off the execution path, in order; use Wait to block
// until everything queued has been delivered.
func WithNarrator(n Narrator) Option {
	return func(e *Executor) { e.narrator = n }
}

// WithTranscript records every narration into r synchronously, before it is
// queued for the narrator.
func WithTranscript(r *RecordingNarrator) Option {
	return func(e *Executor) { e.transcript = r }
}

// WithNarrationBuffer replaces DefaultNarrationBuffer.
func WithNarrationBuffer(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.buffer = n
		}
	}
}

// WithObserver sets the event observer. The default discards events.
func WithObserver(o observability.Observer) Option {
	return func(e *Executor) { e.observer = o }
}

// WithFailureMessage replaces DefaultFailureMessage.
func WithFailureMessage(msg string) Option {
	return func(e *Executor) {
		if msg != "" {
			e.failureMessage = msg
		}
	}
}

// New creates an Executor.
func New(t Tools, s Synthesizer, opts ...Option) *Executor {
	e := &Executor{
		tools:          t,
		synth:          s,
		narrator:       NopNarrator{},
		observer:       observability.NoOpObserver{},
		failureMessage: DefaultFailureMessage,
		buffer:         DefaultNarrationBuffer,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs plan in place and returns it.
//
// Steps already marked completed are skipped. The first step that fails
// halts the plan with Status halted, Error set to the cause and Message set
// to the failure message; the returned error is nil in that case. When the
// final step succeeds its result is synthesized into Message and Response.
func (e *Executor) Execute(ctx context.Context, plan *protocol.Plan) (*protocol.Plan, error) {
	if plan == nil {
		return nil, ErrNilPlan
	}

	plan.Status = protocol.StatusRunning
	start := time.Now()

	q := e.startNarration(ctx)
	defer q.close()

	e.observer.OnEvent(ctx, observability.Event{
		Type:      EventExecuteStart,
		Level:     observability.LevelInfo,
		Timestamp: start,
		Source:    "executor.Execute",
		Data: map[string]any{
			"plan_id": plan.ID,
			"steps":   len(plan.Steps),
			"pending": plan.Pending(),
		},
	})

	last := len(plan.Steps) - 1
	for i := range plan.Steps {
		step := &plan.Steps[i]
		if step.Completed {
			continue
		}

		if err := ctx.Err(); err != nil {
			e.halt(ctx, q, plan, step, err)
			return plan, err
		}

		name := step.Tool.Name
		e.observer.OnEvent(ctx, observability.Event{
			Type:      EventStepStart,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    "executor.Execute",
			Data: map[string]any{
				"plan_id": plan.ID,
				"step_id": step.ID,
				"tool":    name,
			},
		})

		q.narrate(Narration{
			PlanID: plan.ID,
			StepID: step.ID,
			Kind:   KindStep,
			Text:   step.Description,
		})

		if _, ok := e.tools.Resolve(name); !ok {
			step.Tool.Error = fmt.Sprintf("Tool %s not found", name)
			e.halt(ctx, q, plan, step, fmt.Errorf("%w: %s", ErrToolNotFound, name))
			plan.Message = step.Tool.Error
			return plan, nil
		}

		value, err := e.tools.Invoke(ctx, name, step.Tool.Args)
		if err != nil {
			step.Tool.Error = err.Error()
			e.halt(ctx, q, plan, step, err)
			return plan, nil
		}

		step.Tool.Result = value
		step.Tool.Error = ""
		step.Completed = true

		e.observer.OnEvent(ctx, observability.Event{
			Type:      EventStepComplete,
			Level:     observability.LevelInfo,
			Timestamp: time.Now(),
			Source:    "executor.Execute",
			Data: map[string]any{
				"plan_id": plan.ID,
				"step_id": step.ID,
				"tool":    name,
			},
		})

		if i == last {
			if err := e.synthesize(ctx, q, plan, value); err != nil {
				return plan, err
			}
		}
	}

	plan.Status = protocol.StatusCompleted

	e.observer.OnEvent(ctx, observability.Event{
		Type:      EventExecuteComplete,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "executor.Execute",
		Data: map[string]any{
			"plan_id":  plan.ID,
			"duration": time.Since(start).String(),
		},
	})

	return plan, nil
}

// Announce narrates n outside of plan execution, with the same delivery
// guarantees as Execute.
func (e *Executor) Announce(ctx context.Context, n Narration) {
	q := e.startNarration(ctx)
	defer q.close()
	q.narrate(n)
}

// Wait blocks until every narration queued by earlier Execute calls has been
// delivered or dropped.
func (e *Executor) Wait() {
	e.delivering.Wait()
}

func (e *Executor) synthesize(ctx context.Context, q *narrationQueue, plan *protocol.Plan, value *structpb.Value) error {
	answer, err := e.synth.Synthesize(ctx, plan.Query, protocol.ValueText(value))
	if err != nil {
		plan.Status = protocol.StatusHalted
		plan.Error = err.Error()
		plan.Message = e.failureMessage

		e.observer.OnEvent(ctx, observability.Event{
			Type:      EventSynthesisFailed,
			Level:     observability.LevelError,
			Timestamp: time.Now(),
			Source:    "executor.Execute",
			Data: map[string]any{
				"plan_id": plan.ID,
				"error":   err.Error(),
			},
		})
		return fmt.Errorf("synthesize answer: %w", err)
	}

	plan.Message = answer
	plan.Response = answer

	e.observer.OnEvent(ctx, observability.Event{
		Type:      EventSynthesisComplete,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "executor.Execute",
		Data: map[string]any{
			"plan_id":       plan.ID,
			"answer_length": len(answer),
		},
	})

	q.narrate(Narration{PlanID: plan.ID, Kind: KindAnswer, Text: answer})
	return nil
}

// halt records cause on plan and narrates the failure message.
func (e *Executor) halt(ctx context.Context, q *narrationQueue, plan *protocol.Plan, step *protocol.Step, cause error) {
	plan.Status = protocol.StatusHalted
	plan.Error = cause.Error()
	plan.Message = e.failureMessage

	level := observability.LevelError
	if errors.Is(cause, context.Canceled) {
		level = observability.LevelWarning
	}
	e.observer.OnEvent(ctx, observability.Event{
		Type:      EventStepFailed,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "executor.Execute",
		Data: map[string]any{
			"plan_id": plan.ID,
			"step_id": step.ID,
			"tool":    step.Tool.Name,
			"error":   cause.Error(),
		},
	})

	q.narrate(Narration{
		PlanID: plan.ID,
		StepID: step.ID,
		Kind:   KindFailure,
		Text:   e.failureMessage,
	})
}

// narrationQueue carries one Execute call's narrations to the narrator on
// a single goroutine, preserving order. Execute never waits on it.
type narrationQueue struct {
	e   *Executor
	ctx context.Context
	ch  chan Narration
}

// startNarration starts the delivery goroutine. Delivery outlives the
// request context, so narrations still queued when Execute returns are
// spoken rather than cut off.
func (e *Executor) startNarration(ctx context.Context) *narrationQueue {
	q := &narrationQueue{
		e:   e,
		ctx: context.WithoutCancel(ctx),
		ch:  make(chan Narration, e.buffer),
	}

	e.delivering.Add(1)
	go func() {
		defer e.delivering.Done()
		for n := range q.ch {
			e.deliver(q.ctx, n)
		}
	}()
	return q
}

// narrate records n and queues it without blocking. A full queue drops n.
func (q *narrationQueue) narrate(n Narration) {
	if n.Text == "" {
		return
	}
	if q.e.transcript != nil {
		_ = q.e.transcript.Narrate(q.ctx, n)
	}

	select {
	case q.ch <- n:
	default:
		q.e.narrationFailed(q.ctx, n, ErrNarrationDropped)
	}
}

func (q *narrationQueue) close() {
	close(q.ch)
}

// deliver hands n to the narrator, reporting rather than propagating
// delivery failures.
func (e *Executor) deliver(ctx context.Context, n Narration) {
	err := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("narrator panic: %v", p)
			}
		}()
		return e.narrator.Narrate(ctx, n)
	}()
	if err != nil {
		e.narrationFailed(ctx, n, err)
	}
}

func (e *Executor) narrationFailed(ctx context.Context, n Narration, err error) {
	e.observer.OnEvent(ctx, observability.Event{
		Type:      EventNarrationFailed,
		Level:     observability.LevelWarning,
		Timestamp: time.Now(),
		Source:    "executor.Execute",
		Data: map[string]any{
			"plan_id": n.PlanID,
			"step_id": n.StepID,
			"error":   err.Error(),
		},
	})
}
