package protocol

import (
	"errors"
	"fmt"
	"slices"
)

// Sentinel errors for dependency graph construction.
var (
	ErrDuplicateStepID   = errors.New("duplicate step id")
	ErrUnknownDependency = errors.New("unknown dependency")
	ErrForwardDependency = errors.New("dependency on a later step")
	ErrEmptyStepID       = errors.New("step id is empty")
)

// Graph is the dependency DAG declared by a plan's steps. The executor runs
// steps positionally; Graph exposes the declared edges for inspection and for
// schedulers that want to run independent steps together.
type Graph struct {
	order      []string
	deps       map[string][]string
	dependents map[string][]string
}

// Graph builds the dependency graph for p. Every dependency must name an
// earlier step, which makes the graph acyclic by construction.
func (p *Plan) Graph() (*Graph, error) {
	g := &Graph{
		order:      make([]string, 0, len(p.Steps)),
		deps:       make(map[string][]string, len(p.Steps)),
		dependents: make(map[string][]string, len(p.Steps)),
	}

	position := make(map[string]int, len(p.Steps))
	for i, s := range p.Steps {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: step %d", ErrEmptyStepID, i+1)
		}
		if _, dup := position[s.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStepID, s.ID)
		}
		position[s.ID] = i
	}

	for i, s := range p.Steps {
		g.order = append(g.order, s.ID)
		for _, dep := range s.Dependencies {
			at, ok := position[dep]
			if !ok {
				return nil, fmt.Errorf("%w: %s depends on %s", ErrUnknownDependency, s.ID, dep)
			}
			if at >= i {
				return nil, fmt.Errorf("%w: %s depends on %s", ErrForwardDependency, s.ID, dep)
			}
			if slices.Contains(g.deps[s.ID], dep) {
				continue
			}
			g.deps[s.ID] = append(g.deps[s.ID], dep)
			g.dependents[dep] = append(g.dependents[dep], s.ID)
		}
	}

	return g, nil
}

// Nodes returns step ids in plan order.
func (g *Graph) Nodes() []string {
	return slices.Clone(g.order)
}

// Dependencies returns the ids id directly depends on.
func (g *Graph) Dependencies(id string) []string {
	return slices.Clone(g.deps[id])
}

// Dependents returns the ids that directly depend on id.
func (g *Graph) Dependents(id string) []string {
	return slices.Clone(g.dependents[id])
}

// Roots returns the steps with no dependencies, in plan order.
func (g *Graph) Roots() []string {
	var roots []string
	for _, id := range g.order {
		if len(g.deps[id]) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

// Ready returns, in plan order, the steps not in done whose dependencies are
// all in done.
func (g *Graph) Ready(done map[string]bool) []string {
	var ready []string
	for _, id := range g.order {
		if done[id] {
			continue
		}
		satisfied := true
		for _, dep := range g.deps[id] {
			if !done[dep] {
				satisfied = false
				break
			}
		}
		if satisfied {
			ready = append(ready, id)
		}
	}
	return ready
}
