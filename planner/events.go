package planner

import "github.com/tailored-agentic-units/ezra/observability"

// Planner event types.
const (
	EventGenerateStart    observability.EventType = "planner.generate.start"
	EventGenerateComplete observability.EventType = "planner.generate.complete"
	EventRouted           observability.EventType = "planner.routed"
	EventMalformedPayload observability.EventType = "planner.payload.malformed"
	EventInvalidGraph     observability.EventType = "planner.graph.invalid"
	EventDeclined         observability.EventType = "planner.declined"
)
