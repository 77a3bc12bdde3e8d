package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// gemini is the default provider and the only one accepting audio, which it
// transcribes implicitly as part of generation.
type gemini struct {
	client *genai.Client
	name   string
}

func newGemini(ctx context.Context, c *Config, key string) (*gemini, error) {
	opts := []option.ClientOption{option.WithAPIKey(key)}
	if c.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(c.BaseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &gemini{client: client, name: c.Name}, nil
}

func (g *gemini) Generate(ctx context.Context, req Request) (*Response, error) {
	m := g.client.GenerativeModel(g.name)
	if req.JSON {
		m.ResponseMIMEType = "application/json"
	}

	parts := make([]genai.Part, 0, 2)
	if req.Audio != nil {
		parts = append(parts, genai.Blob{MIMEType: req.Audio.MIMEType, Data: req.Audio.Data})
	}
	parts = append(parts, genai.Text(req.Prompt))

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, generationError(ProviderGemini, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmptyResponse, ProviderGemini)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyResponse, ProviderGemini)
	}

	return &Response{Text: b.String(), Raw: resp}, nil
}

func (g *gemini) Close() error {
	return g.client.Close()
}
