package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

type anthropicModel struct {
	client    anthropic.Client
	name      string
	maxTokens int64
}

func newAnthropic(c *Config, key string) (*anthropicModel, error) {
	opts := []anthropicopt.RequestOption{anthropicopt.WithAPIKey(key)}
	if c.BaseURL != "" {
		opts = append(opts, anthropicopt.WithBaseURL(c.BaseURL))
	}

	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &anthropicModel{
		client:    anthropic.NewClient(opts...),
		name:      c.Name,
		maxTokens: int64(maxTokens),
	}, nil
}

// Generate ignores Request.JSON: the Messages API has no JSON mode, so the
// prompt itself must ask for JSON.
func (a *anthropicModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if req.Audio != nil {
		return nil, fmt.Errorf("%w: %s", ErrAudioUnsupported, ProviderAnthropic)
	}

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.name),
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		return nil, generationError(ProviderAnthropic, err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	if b.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyResponse, ProviderAnthropic)
	}

	return &Response{Text: b.String(), Raw: msg}, nil
}
