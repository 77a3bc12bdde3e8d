package protocol

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"google.golang.org/protobuf/types/known/structpb"
)

// Args maps parameter names to tagged values. Each value carries exactly one
// kind (null, number, string, bool, struct, or list), which lets the registry
// check arguments against a Descriptor before a handler runs.
type Args map[string]*structpb.Value

// NewArgs converts plain Go values into Args. Values must be representable by
// structpb.NewValue.
func NewArgs(values map[string]any) (Args, error) {
	args := make(Args, len(values))
	for k, v := range values {
		pv, err := structpb.NewValue(v)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", k, err)
		}
		args[k] = pv
	}
	return args, nil
}

// MustArgs is NewArgs that panics on unrepresentable values.
func MustArgs(values map[string]any) Args {
	args, err := NewArgs(values)
	if err != nil {
		panic(err)
	}
	return args
}

// Names returns the argument names in sorted order.
func (a Args) Names() []string {
	return slices.Sorted(maps.Keys(a))
}

// String returns the string value of an argument.
func (a Args) String(name string) (string, bool) {
	v, ok := a[name]
	if !ok {
		return "", false
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", false
	}
	return s.StringValue, true
}

// Number returns the numeric value of an argument.
func (a Args) Number(name string) (float64, bool) {
	v, ok := a[name]
	if !ok {
		return 0, false
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, false
	}
	return n.NumberValue, true
}

// Bool returns the boolean value of an argument.
func (a Args) Bool(name string) (bool, bool) {
	v, ok := a[name]
	if !ok {
		return false, false
	}
	b, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, false
	}
	return b.BoolValue, true
}

// AsMap returns the arguments as plain Go values.
func (a Args) AsMap() map[string]any {
	out := make(map[string]any, len(a))
	for k, v := range a {
		out[k] = v.AsInterface()
	}
	return out
}

func (a Args) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(a.AsMap())
}

func (a *Args) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	args, err := NewArgs(raw)
	if err != nil {
		return err
	}
	*a = args
	return nil
}

// ValueText renders a tool value as plain text. Strings are returned
// unquoted; every other kind is encoded as compact JSON.
func ValueText(v *structpb.Value) string {
	if v == nil {
		return ""
	}
	if s, ok := v.GetKind().(*structpb.Value_StringValue); ok {
		return s.StringValue
	}
	data, err := json.Marshal(v.AsInterface())
	if err != nil {
		return ""
	}
	return string(data)
}

// KindName names the kind carried by v, for diagnostics.
func KindName(v *structpb.Value) string {
	switch v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return "null"
	case *structpb.Value_NumberValue:
		return "number"
	case *structpb.Value_StringValue:
		return "string"
	case *structpb.Value_BoolValue:
		return "boolean"
	case *structpb.Value_StructValue:
		return "object"
	case *structpb.Value_ListValue:
		return "array"
	default:
		return "unset"
	}
}
