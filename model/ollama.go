package model

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	ollama "github.com/ollama/ollama/api"
)

const defaultOllamaHost = "http://localhost:11434"

type ollamaModel struct {
	client *ollama.Client
	name   string
}

func newOllama(c *Config) (*ollamaModel, error) {
	host := c.BaseURL
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = defaultOllamaHost
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}

	return &ollamaModel{client: ollama.NewClient(u, http.DefaultClient), name: c.Name}, nil
}

func (o *ollamaModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if req.Audio != nil {
		return nil, fmt.Errorf("%w: %s", ErrAudioUnsupported, ProviderOllama)
	}

	stream := false
	gen := &ollama.GenerateRequest{
		Model:  o.name,
		Prompt: req.Prompt,
		Stream: &stream,
	}
	if req.JSON {
		gen.Format = json.RawMessage(`"json"`)
	}

	var (
		text strings.Builder
		last ollama.GenerateResponse
	)
	err := o.client.Generate(ctx, gen, func(gr ollama.GenerateResponse) error {
		text.WriteString(gr.Response)
		last = gr
		return nil
	})
	if err != nil {
		return nil, generationError(ProviderOllama, err)
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyResponse, ProviderOllama)
	}

	return &Response{Text: text.String(), Raw: last}, nil
}
