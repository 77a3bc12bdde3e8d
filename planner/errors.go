package planner

import "errors"

var (
	// ErrInvalidRequest is returned when an Input carries neither a query nor
	// audio.
	ErrInvalidRequest = errors.New("invalid request: query or audio required")
	// ErrEmptyPlan is recorded on a plan the model returned with no steps,
	// no response and no error of its own.
	ErrEmptyPlan = errors.New("model returned an empty plan")
)
