package server_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"github.com/tailored-agentic-units/ezra/core/protocol"
	"github.com/tailored-agentic-units/ezra/kernel"
	"github.com/tailored-agentic-units/ezra/model"
	"github.com/tailored-agentic-units/ezra/model/mock"
	"github.com/tailored-agentic-units/ezra/observability"
	"github.com/tailored-agentic-units/ezra/secrets"
	"github.com/tailored-agentic-units/ezra/server"
)

const additionPlan = `{"query": "what is 2 plus 3", "plan": {"steps": [{"id": "s1", "description": "Adding", "tool": {"calculator": {"args": {"a": 2, "b": 3, "operation": "+"}}}}]}}`

func newKernel(t *testing.T, planner, answer *mock.Model) *kernel.Kernel {
	t.Helper()
	k, err := kernel.New(&kernel.Config{},
		kernel.WithModel(model.RolePlanner, planner),
		kernel.WithModel(model.RoleRouter, mock.New(mock.Text("Hi there."))),
		kernel.WithModel(model.RoleAnswer, answer),
		kernel.WithSecrets(secrets.Map{}),
		kernel.WithObserver(observability.NoOpObserver{}),
	)
	if err != nil {
		t.Fatalf("kernel.New() failed: %v", err)
	}
	return k
}

func serve(t *testing.T, svc server.Service, opts ...connect.HandlerOption) *server.Client {
	t.Helper()
	path, h := server.NewHandler(svc, opts...)
	mux := http.NewServeMux()
	mux.Handle(path, h)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return server.NewClient(srv.Client(), srv.URL)
}

func TestOrchestrate(t *testing.T) {
	k := newKernel(t, mock.New(mock.Text(additionPlan)), mock.New(mock.Text("It's five.")))
	client := serve(t, k)

	res, err := client.Orchestrate(context.Background(), &server.OrchestrateRequest{
		AudioData: []byte("audio"),
		MIMEType:  "audio/mp3",
	})
	if err != nil {
		t.Fatalf("Orchestrate() failed: %v", err)
	}

	if res.Plan.Status != protocol.StatusCompleted || res.Plan.Message != "It's five." {
		t.Errorf("plan status = %s, message = %q", res.Plan.Status, res.Plan.Message)
	}
	if len(res.Plan.Steps) != 1 || protocol.ValueText(res.Plan.Steps[0].Tool.Result) != "5" {
		t.Errorf("steps = %+v", res.Plan.Steps)
	}
	if len(res.Narration) != 2 {
		t.Errorf("narration = %+v", res.Narration)
	}
}

func TestOrchestrate_InvalidRequest(t *testing.T) {
	client := serve(t, newKernel(t, mock.New(), mock.New()))

	_, err := client.Orchestrate(context.Background(), &server.OrchestrateRequest{})
	if got := connect.CodeOf(err); got != connect.CodeInvalidArgument {
		t.Errorf("code = %v, want %v (err = %v)", got, connect.CodeInvalidArgument, err)
	}
}

func TestExecuteTool(t *testing.T) {
	client := serve(t, newKernel(t, mock.New(), mock.New()))
	ctx := context.Background()

	result, err := client.ExecuteTool(ctx, "calculator", protocol.MustArgs(map[string]any{"a": 9, "b": 3, "operation": "/"}))
	if err != nil {
		t.Fatalf("ExecuteTool() failed: %v", err)
	}
	if result.Text() != "3" {
		t.Errorf("result = %q, want 3", result.Text())
	}

	result, err = client.ExecuteTool(ctx, "weather", nil)
	if err != nil {
		t.Fatalf("ExecuteTool() transport error: %v", err)
	}
	if !result.Failed() {
		t.Errorf("result = %+v, want tool error", result)
	}

	_, err = client.ExecuteTool(ctx, "", nil)
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("empty name code = %v, want %v", connect.CodeOf(err), connect.CodeInvalidArgument)
	}
}

func TestAnswer(t *testing.T) {
	client := serve(t, newKernel(t, mock.New(), mock.New(mock.Text("The answer is five."))))

	got, err := client.Answer(context.Background(), "what is 2 plus 3", "5")
	if err != nil {
		t.Fatalf("Answer() failed: %v", err)
	}
	if got != "The answer is five." {
		t.Errorf("Answer() = %q", got)
	}
}

func TestListTools(t *testing.T) {
	client := serve(t, newKernel(t, mock.New(), mock.New()))

	res, err := client.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools() failed: %v", err)
	}
	if len(res.Tools) != 4 || res.Tools[0].Name != "calculator" {
		t.Errorf("tools = %+v", res.Tools)
	}
	if !strings.Contains(res.Manifest, "## calculator") {
		t.Error("manifest missing calculator")
	}
}

// failingService returns a fixed error from every fallible call.
type failingService struct {
	err error
}

func (s failingService) Orchestrate(context.Context, kernel.Request) (*kernel.Result, error) {
	return nil, s.err
}

func (s failingService) ExecuteTool(context.Context, string, protocol.Args) protocol.ToolResult {
	return protocol.ToolResult{Error: s.err.Error()}
}

func (s failingService) Answer(context.Context, kernel.AnswerRequest) (string, error) {
	return "", s.err
}

func (failingService) Tools() []protocol.Descriptor {
	return nil
}

func (failingService) Manifest() string {
	return ""
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want connect.Code
	}{
		{"invalid request", kernel.ErrInvalidRequest, connect.CodeInvalidArgument},
		{"model timeout", fmt.Errorf("route: %w", model.ErrTimeout), connect.CodeDeadlineExceeded},
		{"generation", fmt.Errorf("generate plan: %w", model.ErrGeneration), connect.CodeUnavailable},
		{"missing key", model.ErrMissingAPIKey, connect.CodeFailedPrecondition},
		{"unclassified", errors.New("boom"), connect.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := serve(t, failingService{err: tt.err})

			_, err := client.Orchestrate(context.Background(), &server.OrchestrateRequest{Query: "x"})
			if got := connect.CodeOf(err); got != tt.want {
				t.Errorf("Orchestrate code = %v, want %v", got, tt.want)
			}

			_, err = client.Answer(context.Background(), "q", "r")
			if got := connect.CodeOf(err); got != tt.want {
				t.Errorf("Answer code = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithObserver(t *testing.T) {
	rec := observability.NewRecorder()
	client := serve(t, newKernel(t, mock.New(), mock.New()), server.WithObserver(rec))

	if _, err := client.ListTools(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := client.Orchestrate(context.Background(), &server.OrchestrateRequest{}); err == nil {
		t.Fatal("expected invalid request error")
	}

	events := rec.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Data["procedure"] != server.ListToolsProcedure || events[0].Data["code"] != "ok" {
		t.Errorf("first event data = %v", events[0].Data)
	}
	if events[1].Data["code"] != connect.CodeInvalidArgument.String() {
		t.Errorf("second event data = %v", events[1].Data)
	}
}

func TestPlainJSONCall(t *testing.T) {
	path, h := server.NewHandler(newKernel(t, mock.New(), mock.New()))
	mux := http.NewServeMux()
	mux.Handle(path, h)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	body := strings.NewReader(`{"name": "calculator", "args": {"a": 1, "b": 2, "operation": "+"}}`)
	resp, err := http.Post(srv.URL+server.ExecuteToolProcedure, "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
