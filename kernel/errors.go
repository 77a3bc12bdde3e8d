package kernel

import "github.com/tailored-agentic-units/ezra/planner"

// ErrInvalidRequest is returned by Orchestrate and Answer for a request
// without the input they need.
var ErrInvalidRequest = planner.ErrInvalidRequest
