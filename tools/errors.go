package tools

import "errors"

// Sentinel errors for tool invocation. Execute folds them into
// protocol.ToolResult.Error; Invoke returns them wrapped.
var (
	ErrNotFound         = errors.New("tool not found")
	ErrInvalidArguments = errors.New("invalid tool arguments")
	ErrExecution        = errors.New("tool execution failed")
	ErrTimeout          = errors.New("tool timed out")
	ErrPanic            = errors.New("tool panicked")
)
