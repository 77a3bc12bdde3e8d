package prompts

import "errors"

// Sentinel errors for template operations.
var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrLoadFailed       = errors.New("template load failed")
)
