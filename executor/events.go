package executor

import "github.com/tailored-agentic-units/ezra/observability"

// Executor event types.
const (
	EventExecuteStart      observability.EventType = "executor.execute.start"
	EventExecuteComplete   observability.EventType = "executor.execute.complete"
	EventStepStart         observability.EventType = "executor.step.start"
	EventStepComplete      observability.EventType = "executor.step.complete"
	EventStepFailed        observability.EventType = "executor.step.failed"
	EventSynthesisComplete observability.EventType = "executor.synthesis.complete"
	EventSynthesisFailed   observability.EventType = "executor.synthesis.failed"
	EventNarration         observability.EventType = "executor.narration"
	EventNarrationFailed   observability.EventType = "executor.narration.failed"
)
