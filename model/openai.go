package model

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

type openAI struct {
	client *openai.Client
	name   string
}

func newOpenAI(c *Config, key string) (*openAI, error) {
	cfg := openai.DefaultConfig(key)
	if c.BaseURL != "" {
		cfg.BaseURL = c.BaseURL
	}
	return &openAI{client: openai.NewClientWithConfig(cfg), name: c.Name}, nil
}

func (o *openAI) Generate(ctx context.Context, req Request) (*Response, error) {
	if req.Audio != nil {
		return nil, fmt.Errorf("%w: %s", ErrAudioUnsupported, ProviderOpenAI)
	}

	chat := openai.ChatCompletionRequest{
		Model: o.name,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: req.Prompt,
		}},
	}
	if req.JSON {
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		return nil, generationError(ProviderOpenAI, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyResponse, ProviderOpenAI)
	}

	return &Response{Text: resp.Choices[0].Message.Content, Raw: resp}, nil
}
