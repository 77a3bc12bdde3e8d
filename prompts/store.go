// Package prompts loads the named prompt templates that drive planning,
// routing and answer synthesis. Templates are plain text containing
// {{placeholder}} tokens, stored as <name>.prompt.md.
package prompts

import "context"

// Well-known template names.
const (
	Planner = "planner"
	Router  = "router"
	Answer  = "answer"
)

// Extension is the file suffix of a template.
const Extension = ".prompt.md"

// Store translates between template storage and named templates.
// Implementations perform I/O on each call without caching.
type Store interface {
	// List returns the names of all available templates.
	List(ctx context.Context) ([]string, error)
	// Load retrieves the named templates, in the order requested.
	Load(ctx context.Context, names ...string) ([]Template, error)
}

// FileName returns the file name holding the named template.
func FileName(name string) string {
	return name + Extension
}
