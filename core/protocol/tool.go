// Package protocol defines the data shapes shared across the planner, executor,
// tool registry, and transport: tool descriptors, typed arguments, plans, and
// tool results.
package protocol

// ParamType names the value kind a tool parameter accepts.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeInteger ParamType = "integer"
	TypeBoolean ParamType = "boolean"
	TypeObject  ParamType = "object"
	TypeArray   ParamType = "array"
	TypeAny     ParamType = "any"
)

// Parameter describes one declared tool argument.
// A nil Required means the parameter is required.
type Parameter struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type,omitempty"`
	Description string    `json:"description,omitempty"`
	Required    *bool     `json:"required,omitempty"`
}

// IsRequired reports whether the parameter must be supplied.
func (p Parameter) IsRequired() bool {
	return p.Required == nil || *p.Required
}

// Optional returns a copy of p marked as not required.
func (p Parameter) Optional() Parameter {
	f := false
	p.Required = &f
	return p
}

// Descriptor is the identity and contract of one invocable tool.
// Name is the registry key and is stable for the lifetime of the process.
type Descriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters,omitempty"`
	Returns     string      `json:"returns,omitempty"`
}

// Parameter returns the declared parameter with the given name.
func (d Descriptor) Parameter(name string) (Parameter, bool) {
	for _, p := range d.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}
