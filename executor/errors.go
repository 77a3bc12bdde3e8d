package executor

import (
	"errors"

	"github.com/tailored-agentic-units/ezra/core/protocol"
)

var (
	// ErrToolNotFound marks a step naming a tool that is not registered.
	ErrToolNotFound = errors.New("tool not found")
	// ErrNilPlan is returned by Execute when given no plan.
	ErrNilPlan = errors.New("plan is nil")
	// ErrNarrationDropped is returned by ChannelNarrator when its channel is
	// full.
	ErrNarrationDropped = errors.New("narration dropped")
)

// DefaultFailureMessage is the user-facing text set on a halted plan.
const DefaultFailureMessage = protocol.DefaultFailureMessage
