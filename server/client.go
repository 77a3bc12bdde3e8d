package server

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/tailored-agentic-units/ezra/core/protocol"
)

// Client calls an AssistantService.
type Client struct {
	orchestrate *connect.Client[OrchestrateRequest, OrchestrateResponse]
	executeTool *connect.Client[ExecuteToolRequest, ExecuteToolResponse]
	answer      *connect.Client[AnswerRequest, AnswerResponse]
	listTools   *connect.Client[ListToolsRequest, ListToolsResponse]
}

// NewClient creates a Client for the service at baseURL, for example
// http://localhost:8080. Errors returned by its methods are *connect.Error
// values; use connect.CodeOf to classify them.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)

	return &Client{
		orchestrate: connect.NewClient[OrchestrateRequest, OrchestrateResponse](httpClient, baseURL+OrchestrateProcedure, opts...),
		executeTool: connect.NewClient[ExecuteToolRequest, ExecuteToolResponse](httpClient, baseURL+ExecuteToolProcedure, opts...),
		answer:      connect.NewClient[AnswerRequest, AnswerResponse](httpClient, baseURL+AnswerProcedure, opts...),
		listTools:   connect.NewClient[ListToolsRequest, ListToolsResponse](httpClient, baseURL+ListToolsProcedure, opts...),
	}
}

func (c *Client) Orchestrate(ctx context.Context, req *OrchestrateRequest) (*OrchestrateResponse, error) {
	res, err := c.orchestrate.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

// ExecuteTool runs a tool remotely. Tool failures are reported in the
// result; the error is for transport failures.
func (c *Client) ExecuteTool(ctx context.Context, name string, args protocol.Args) (protocol.ToolResult, error) {
	res, err := c.executeTool.CallUnary(ctx, connect.NewRequest(&ExecuteToolRequest{Name: name, Args: args}))
	if err != nil {
		return protocol.ToolResult{}, err
	}
	return res.Msg.Result, nil
}

func (c *Client) Answer(ctx context.Context, query, rawAnswer string) (string, error) {
	res, err := c.answer.CallUnary(ctx, connect.NewRequest(&AnswerRequest{Query: query, RawAnswer: rawAnswer}))
	if err != nil {
		return "", err
	}
	return res.Msg.Answer, nil
}

func (c *Client) ListTools(ctx context.Context) (*ListToolsResponse, error) {
	res, err := c.listTools.CallUnary(ctx, connect.NewRequest(&ListToolsRequest{}))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}
