package model

import "errors"

// Sentinel errors for model construction and generation.
var (
	ErrUnknownProvider  = errors.New("unknown model provider")
	ErrMissingAPIKey    = errors.New("missing API key")
	ErrAudioUnsupported = errors.New("provider does not accept audio")
	ErrGeneration       = errors.New("generation failed")
	ErrEmptyResponse    = errors.New("empty model response")
	ErrTimeout          = errors.New("model request timed out")
)

// Sentinel errors for the model registry.
var (
	ErrModelNotFound = errors.New("model not found")
	ErrModelExists   = errors.New("model already registered")
	ErrEmptyRole     = errors.New("model role is empty")
)
