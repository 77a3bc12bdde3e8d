package tools

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/ezra/core/protocol"
)

// Validate checks args against the parameters declared by d. Unknown
// parameters, missing required parameters and kind mismatches are rejected
// with ErrInvalidArguments. A null value counts as absent.
func Validate(d protocol.Descriptor, args protocol.Args) error {
	for _, name := range args.Names() {
		if _, ok := d.Parameter(name); !ok {
			return fmt.Errorf("%w: %s: unknown parameter %q", ErrInvalidArguments, d.Name, name)
		}
	}

	for _, p := range d.Parameters {
		v, present := args[p.Name]
		if !present || isNull(v) {
			if p.IsRequired() {
				return fmt.Errorf("%w: %s: missing required parameter %q", ErrInvalidArguments, d.Name, p.Name)
			}
			continue
		}
		if !matches(p.Type, v) {
			return fmt.Errorf("%w: %s: parameter %q must be %s, got %s",
				ErrInvalidArguments, d.Name, p.Name, p.Type, protocol.KindName(v))
		}
	}

	return nil
}

func isNull(v *structpb.Value) bool {
	if v == nil {
		return true
	}
	_, null := v.GetKind().(*structpb.Value_NullValue)
	return null
}

func matches(t protocol.ParamType, v *structpb.Value) bool {
	switch t {
	case "", protocol.TypeAny:
		return true
	case protocol.TypeString:
		_, ok := v.GetKind().(*structpb.Value_StringValue)
		return ok
	case protocol.TypeNumber:
		_, ok := v.GetKind().(*structpb.Value_NumberValue)
		return ok
	case protocol.TypeInteger:
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return false
		}
		f := n.NumberValue
		return !math.IsInf(f, 0) && !math.IsNaN(f) && math.Trunc(f) == f
	case protocol.TypeBoolean:
		_, ok := v.GetKind().(*structpb.Value_BoolValue)
		return ok
	case protocol.TypeObject:
		_, ok := v.GetKind().(*structpb.Value_StructValue)
		return ok
	case protocol.TypeArray:
		_, ok := v.GetKind().(*structpb.Value_ListValue)
		return ok
	default:
		return false
	}
}
