// Package model is the boundary to generative model endpoints. Every provider
// is reached through the single Generate call, which accepts text and,
// where the provider supports it, raw audio.
//
//	m, err := model.New(ctx, &cfg, secretStore)
//	resp, err := m.Generate(ctx, model.Request{Prompt: prompt, JSON: true})
package model

import "context"

// Model submits one prompt to a generative endpoint and waits for the full
// response. No retries are attempted.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Request is a single-turn generation request.
type Request struct {
	Prompt string
	Audio  *Audio // Optional audio attachment; only multimodal providers accept it.
	JSON   bool   // Ask the provider to constrain output to a JSON document.
}

// Audio is a raw audio attachment.
type Audio struct {
	MIMEType string
	Data     []byte
}

// Response carries the generated text and the provider's native response.
type Response struct {
	Text string
	Raw  any
}

// Func adapts a function to the Model interface.
type Func func(ctx context.Context, req Request) (*Response, error)

func (f Func) Generate(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}
