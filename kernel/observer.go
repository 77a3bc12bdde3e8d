package kernel

import "github.com/tailored-agentic-units/ezra/observability"

// Kernel event types emitted while serving requests.
const (
	EventOrchestrateStart    observability.EventType = "kernel.orchestrate.start"
	EventOrchestrateComplete observability.EventType = "kernel.orchestrate.complete"
	EventToolCall            observability.EventType = "kernel.tool.call"
	EventToolComplete        observability.EventType = "kernel.tool.complete"
	EventAnswer              observability.EventType = "kernel.answer"
	EventSecretsMissing      observability.EventType = "kernel.secrets.missing"
	EventError               observability.EventType = "kernel.error"
)
