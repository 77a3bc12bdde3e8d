package tools

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/ezra/core/protocol"
)

// Handler is the function signature for tool implementations.
// Arguments have already been validated against the tool's descriptor.
// The returned value must be representable by structpb.NewValue.
type Handler func(ctx context.Context, args protocol.Args) (any, error)

type entry struct {
	descriptor protocol.Descriptor
	handler    Handler
}

// Registry maps tool names to handlers and descriptors. It is populated once
// by the composition root and read concurrently afterwards.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	order   []string
	timeout time.Duration
}

// Option configures a Registry.
type Option func(*Registry)

// WithTimeout bounds every invocation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.timeout = d
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register stores handler under descriptor.Name, replacing any prior entry.
// A replaced tool keeps its original position in List.
func (r *Registry) Register(handler Handler, descriptor protocol.Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[descriptor.Name]; !exists {
		r.order = append(r.order, descriptor.Name)
	}
	r.entries[descriptor.Name] = entry{descriptor: descriptor, handler: handler}
}

// Resolve retrieves a handler by tool name.
// Returns the handler and true if found, nil and false otherwise.
func (r *Registry) Resolve(name string) (Handler, bool) {
	e, ok := r.lookup(name)
	if !ok {
		return nil, false
	}
	return e.handler, true
}

// Descriptor retrieves a tool's descriptor by name.
func (r *Registry) Descriptor(name string) (protocol.Descriptor, bool) {
	e, ok := r.lookup(name)
	if !ok {
		return protocol.Descriptor{}, false
	}
	return e.descriptor, true
}

// List returns the descriptors of all registered tools in registration order.
func (r *Registry) List() []protocol.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptors := make([]protocol.Descriptor, 0, len(r.order))
	for _, name := range r.order {
		descriptors = append(descriptors, r.entries[name].descriptor)
	}
	return descriptors
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Manifest renders the registered tools for a planning prompt.
func (r *Registry) Manifest() string {
	return RenderManifest(r.List())
}

// Invoke validates args and runs the named tool. Handler errors, panics and
// timeouts come back as errors wrapping ErrExecution, ErrPanic or ErrTimeout.
func (r *Registry) Invoke(ctx context.Context, name string, args protocol.Args) (*structpb.Value, error) {
	e, ok := r.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	if err := Validate(e.descriptor, args); err != nil {
		return nil, err
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	type outcome struct {
		value any
		err   error
	}

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("%w: %s: %v", ErrPanic, name, p)}
			}
		}()
		v, err := e.handler(ctx, args)
		done <- outcome{value: v, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			if errors.Is(out.err, ErrPanic) {
				return nil, out.err
			}
			return nil, fmt.Errorf("%w: %s: %w", ErrExecution, name, out.err)
		}
		return toValue(name, out.value)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, name)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrExecution, name, ctx.Err())
	}
}

// Execute is Invoke with failures folded into the result. It never returns a
// raw error or lets a handler panic escape.
func (r *Registry) Execute(ctx context.Context, name string, args protocol.Args) protocol.ToolResult {
	v, err := r.Invoke(ctx, name, args)
	if err != nil {
		return protocol.ToolResult{Error: err.Error()}
	}
	return protocol.ToolResult{Data: v}
}

func (r *Registry) lookup(name string) (entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

func toValue(name string, v any) (*structpb.Value, error) {
	if pv, ok := v.(*structpb.Value); ok {
		if pv == nil {
			return structpb.NewNullValue(), nil
		}
		return pv, nil
	}
	pv, err := structpb.NewValue(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: unsupported result: %w", ErrExecution, name, err)
	}
	return pv, nil
}
