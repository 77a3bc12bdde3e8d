package server

import (
	"encoding/json"
)

// codecName replaces connect's built-in JSON codec, which only accepts
// protobuf messages, so plain Go structs travel as application/json.
const codecName = "json"

type jsonCodec struct{}

func (jsonCodec) Name() string { return codecName }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
