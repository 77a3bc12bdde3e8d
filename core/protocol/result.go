package protocol

import (
	"encoding/json"

	"google.golang.org/protobuf/types/known/structpb"
)

// ToolResult is the outcome of one tool invocation. Exactly one of Data or
// Error is meaningful: a non-empty Error marks failure.
type ToolResult struct {
	Data  *structpb.Value
	Error string
}

// Failed reports whether the invocation failed.
func (r ToolResult) Failed() bool {
	return r.Error != ""
}

// Text renders Data as plain text.
func (r ToolResult) Text() string {
	return ValueText(r.Data)
}

type toolResultWire struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// MarshalJSON encodes {"data": …} on success and {"data": null, "error": …}
// on failure.
func (r ToolResult) MarshalJSON() ([]byte, error) {
	w := toolResultWire{Data: json.RawMessage("null"), Error: r.Error}
	if r.Error == "" && r.Data != nil {
		data, err := json.Marshal(r.Data.AsInterface())
		if err != nil {
			return nil, err
		}
		w.Data = data
	}
	return json.Marshal(w)
}

func (r *ToolResult) UnmarshalJSON(data []byte) error {
	var w toolResultWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.Error = w.Error
	r.Data = nil
	if len(w.Data) == 0 || string(w.Data) == "null" {
		return nil
	}
	var raw any
	if err := json.Unmarshal(w.Data, &raw); err != nil {
		return err
	}
	v, err := structpb.NewValue(raw)
	if err != nil {
		return err
	}
	r.Data = v
	return nil
}

// JSON returns the wire encoding of r. Encoding failures are reported inside
// the returned document rather than as an error.
func (r ToolResult) JSON() string {
	data, err := json.Marshal(r)
	if err != nil {
		fallback, _ := json.Marshal(toolResultWire{Data: json.RawMessage("null"), Error: err.Error()})
		return string(fallback)
	}
	return string(data)
}
