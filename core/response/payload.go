// Package response extracts structured payloads from generative model output.
//
// Models are asked for JSON but frequently wrap it in a markdown code fence,
// sometimes with prose around the fence. Parsing is two-stage: the trimmed
// text is tried as JSON first, then the first fenced block is located and
// tried. Anything else is ErrMalformedPayload, and callers decide how to
// degrade.
package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/ezra/core/protocol"
)

// ErrMalformedPayload is returned when no JSON payload can be found in the
// model output.
var ErrMalformedPayload = errors.New("malformed model payload")

const fence = "```"

// ExtractPayload returns the JSON document carried by text.
func ExtractPayload(text string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty output", ErrMalformedPayload)
	}

	if json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed), nil
	}

	inner, ok := Unfence(trimmed)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON document or fenced block", ErrMalformedPayload)
	}
	if !json.Valid([]byte(inner)) {
		return nil, fmt.Errorf("%w: fenced block is not valid JSON", ErrMalformedPayload)
	}
	return json.RawMessage(inner), nil
}

// Unfence returns the trimmed body of the first fenced code block in text.
// The opening fence may carry a language tag (```json). The body runs to the
// next closing fence, or to the end of text if the fence is never closed.
func Unfence(text string) (string, bool) {
	start := strings.Index(text, fence)
	if start < 0 {
		return "", false
	}
	rest := text[start+len(fence):]

	// The language tag, if any, ends at the first newline.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		tag := strings.TrimSpace(rest[:nl])
		if !strings.ContainsAny(tag, "{[\"") {
			rest = rest[nl+1:]
		}
	}

	if end := strings.Index(rest, fence); end >= 0 {
		rest = rest[:end]
	}

	body := strings.TrimSpace(rest)
	if body == "" {
		return "", false
	}
	return body, true
}

// ParsePlan decodes a planning payload into a Plan.
// The payload may carry steps nested under "plan" or at the top level.
func ParsePlan(text string) (*protocol.Plan, error) {
	payload, err := ExtractPayload(text)
	if err != nil {
		return nil, err
	}

	if !bytes.HasPrefix(bytes.TrimSpace(payload), []byte("{")) {
		return nil, fmt.Errorf("%w: payload is not an object", ErrMalformedPayload)
	}

	var plan protocol.Plan
	if err := json.Unmarshal(payload, &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return &plan, nil
}
