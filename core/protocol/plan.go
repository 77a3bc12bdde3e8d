package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Status tracks where a plan is in its lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusHalted    Status = "halted"
	StatusRouted    Status = "routed"
)

// DefaultFailureMessage is the user-facing text set on a halted plan.
const DefaultFailureMessage = "Failed to process your request. Please try again."

// ErrToolEntryShape is returned when a step's tool object does not name
// exactly one tool.
var ErrToolEntryShape = errors.New("step tool must name exactly one tool")

// ToolEntry is a step's single tool invocation: the tool name, its arguments,
// and, once the step has run, its result or error.
//
// On the wire the entry is keyed by tool name:
//
//	{"calculator": {"args": {"a": 2, "b": 3, "operation": "+"}, "result": 5}}
type ToolEntry struct {
	Name   string
	Args   Args
	Result *structpb.Value
	Error  string
}

type toolEntryBody struct {
	Args   Args            `json:"args"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func (e ToolEntry) MarshalJSON() ([]byte, error) {
	body := toolEntryBody{Args: e.Args, Error: e.Error}
	if e.Result != nil {
		data, err := json.Marshal(e.Result.AsInterface())
		if err != nil {
			return nil, fmt.Errorf("marshal result of %s: %w", e.Name, err)
		}
		body.Result = data
	}
	return json.Marshal(map[string]toolEntryBody{e.Name: body})
}

func (e *ToolEntry) UnmarshalJSON(data []byte) error {
	var entries map[string]toolEntryBody
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	if len(entries) != 1 {
		return fmt.Errorf("%w: got %d", ErrToolEntryShape, len(entries))
	}

	for name, body := range entries {
		e.Name = name
		e.Args = body.Args
		e.Error = body.Error
		e.Result = nil
		if len(body.Result) > 0 {
			var raw any
			if err := json.Unmarshal(body.Result, &raw); err != nil {
				return fmt.Errorf("result of %s: %w", name, err)
			}
			v, err := structpb.NewValue(raw)
			if err != nil {
				return fmt.Errorf("result of %s: %w", name, err)
			}
			e.Result = v
		}
	}
	return nil
}

// Step is one node of a plan. Resources and Dependencies are declarative;
// execution order is the step's position in Plan.Steps.
type Step struct {
	ID           string    `json:"id"`
	Description  string    `json:"description"`
	Resources    []string  `json:"resources,omitempty"`
	Dependencies []string  `json:"dependencies,omitempty"`
	Tool         ToolEntry `json:"tool"`
	Completed    bool      `json:"completed,omitempty"`
}

// Plan is the unit of work produced by the planner and mutated in place by the
// executor. The fully populated plan is the audit trail returned to the caller.
//
// Response carries raw model text when the planner short-circuits (router
// answer or unparseable payload). Message is the user-facing terminal text:
// the synthesized answer on success, a failure description on halt.
type Plan struct {
	ID       string
	Query    string
	Steps    []Step
	Response string
	Error    string
	Message  string
	Status   Status
}

type planSteps struct {
	Steps []Step `json:"steps"`
}

type planWire struct {
	ID       string     `json:"id,omitempty"`
	Query    string     `json:"query,omitempty"`
	Plan     *planSteps `json:"plan,omitempty"`
	Steps    []Step     `json:"steps,omitempty"`
	Response string     `json:"response,omitempty"`
	Error    string     `json:"error,omitempty"`
	Message  string     `json:"message,omitempty"`
	Status   Status     `json:"status,omitempty"`
}

func (p Plan) MarshalJSON() ([]byte, error) {
	steps := p.Steps
	if steps == nil {
		steps = []Step{}
	}
	return json.Marshal(planWire{
		ID:       p.ID,
		Query:    p.Query,
		Plan:     &planSteps{Steps: steps},
		Response: p.Response,
		Error:    p.Error,
		Message:  p.Message,
		Status:   p.Status,
	})
}

// UnmarshalJSON accepts steps either nested under "plan" or at the top level.
func (p *Plan) UnmarshalJSON(data []byte) error {
	var w planWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	p.ID = w.ID
	p.Query = w.Query
	p.Response = w.Response
	p.Error = w.Error
	p.Message = w.Message
	p.Status = w.Status
	p.Steps = w.Steps
	if w.Plan != nil && len(w.Plan.Steps) > 0 {
		p.Steps = w.Plan.Steps
	}
	return nil
}

// Halted reports whether execution stopped before the last step.
func (p *Plan) Halted() bool {
	return p.Status == StatusHalted
}

// Pending returns the number of steps not yet completed.
func (p *Plan) Pending() int {
	n := 0
	for _, s := range p.Steps {
		if !s.Completed {
			n++
		}
	}
	return n
}

// Step returns the step with the given id.
func (p *Plan) Step(id string) (*Step, bool) {
	for i := range p.Steps {
		if p.Steps[i].ID == id {
			return &p.Steps[i], true
		}
	}
	return nil, false
}
