package protocol_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/ezra/core/protocol"
)

func TestParameter_IsRequired(t *testing.T) {
	yes, no := true, false

	tests := []struct {
		name  string
		param protocol.Parameter
		want  bool
	}{
		{name: "unset defaults to required", param: protocol.Parameter{Name: "a"}, want: true},
		{name: "explicit true", param: protocol.Parameter{Name: "a", Required: &yes}, want: true},
		{name: "explicit false", param: protocol.Parameter{Name: "a", Required: &no}, want: false},
		{name: "optional helper", param: protocol.Parameter{Name: "a"}.Optional(), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.param.IsRequired(); got != tt.want {
				t.Errorf("IsRequired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArgs_Accessors(t *testing.T) {
	args := protocol.MustArgs(map[string]any{
		"a":         2,
		"operation": "+",
		"verbose":   true,
	})

	if n, ok := args.Number("a"); !ok || n != 2 {
		t.Errorf("Number(a) = %v, %v; want 2, true", n, ok)
	}
	if s, ok := args.String("operation"); !ok || s != "+" {
		t.Errorf("String(operation) = %q, %v; want \"+\", true", s, ok)
	}
	if b, ok := args.Bool("verbose"); !ok || !b {
		t.Errorf("Bool(verbose) = %v, %v; want true, true", b, ok)
	}
	if _, ok := args.Number("operation"); ok {
		t.Error("Number(operation) succeeded on a string value")
	}
	if _, ok := args.String("missing"); ok {
		t.Error("String(missing) succeeded")
	}

	names := args.Names()
	if strings.Join(names, ",") != "a,operation,verbose" {
		t.Errorf("Names() = %v, want sorted names", names)
	}
}

func TestArgs_JSON(t *testing.T) {
	var args protocol.Args
	if err := json.Unmarshal([]byte(`{"a":2,"b":3,"operation":"+"}`), &args); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if protocol.KindName(args["a"]) != "number" {
		t.Errorf("a kind = %s, want number", protocol.KindName(args["a"]))
	}
	if protocol.KindName(args["operation"]) != "string" {
		t.Errorf("operation kind = %s, want string", protocol.KindName(args["operation"]))
	}

	data, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"a":2,"b":3,"operation":"+"}` {
		t.Errorf("got %s", data)
	}
}

func TestToolEntry_JSON(t *testing.T) {
	input := `{"calculator":{"args":{"a":2,"b":3,"operation":"+"}}}`

	var entry protocol.ToolEntry
	if err := json.Unmarshal([]byte(input), &entry); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if entry.Name != "calculator" {
		t.Errorf("got name %q, want %q", entry.Name, "calculator")
	}
	if entry.Result != nil {
		t.Error("expected nil result before execution")
	}

	entry.Result = structpb.NewNumberValue(5)

	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"calculator":{"args":{"a":2,"b":3,"operation":"+"},"result":5}}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestToolEntry_RejectsWrongShape(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "no tool", input: `{}`},
		{name: "two tools", input: `{"a":{"args":{}},"b":{"args":{}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entry protocol.ToolEntry
			err := json.Unmarshal([]byte(tt.input), &entry)
			if !errors.Is(err, protocol.ErrToolEntryShape) {
				t.Errorf("got error %v, want %v", err, protocol.ErrToolEntryShape)
			}
		})
	}
}

func TestPlan_UnmarshalNestedAndFlat(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "nested",
			input: `{"query":"add","plan":{"steps":[{"id":"s1","description":"add","tool":{"calculator":{"args":{"a":1}}}}]}}`,
		},
		{
			name:  "flat",
			input: `{"query":"add","steps":[{"id":"s1","description":"add","tool":{"calculator":{"args":{"a":1}}}}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var plan protocol.Plan
			if err := json.Unmarshal([]byte(tt.input), &plan); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if plan.Query != "add" {
				t.Errorf("got query %q, want %q", plan.Query, "add")
			}
			if len(plan.Steps) != 1 {
				t.Fatalf("got %d steps, want 1", len(plan.Steps))
			}
			if plan.Steps[0].Tool.Name != "calculator" {
				t.Errorf("got tool %q, want calculator", plan.Steps[0].Tool.Name)
			}
		})
	}
}

func TestPlan_MarshalUsesNestedShape(t *testing.T) {
	plan := protocol.Plan{
		Query: "q",
		Steps: []protocol.Step{{
			ID:          "s1",
			Description: "d",
			Tool:        protocol.ToolEntry{Name: "echo", Args: protocol.Args{}},
			Completed:   true,
		}},
		Status: protocol.StatusCompleted,
	}

	data, err := json.Marshal(plan)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	inner, ok := generic["plan"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested plan object, got %s", data)
	}
	steps, ok := inner["steps"].([]any)
	if !ok || len(steps) != 1 {
		t.Fatalf("expected one nested step, got %s", data)
	}
	if generic["status"] != "completed" {
		t.Errorf("got status %v, want completed", generic["status"])
	}
}

func TestPlan_PendingAndStep(t *testing.T) {
	plan := protocol.Plan{Steps: []protocol.Step{
		{ID: "s1", Completed: true},
		{ID: "s2"},
		{ID: "s3"},
	}}

	if got := plan.Pending(); got != 2 {
		t.Errorf("Pending() = %d, want 2", got)
	}

	step, ok := plan.Step("s2")
	if !ok {
		t.Fatal("Step(s2) not found")
	}
	step.Completed = true
	if plan.Steps[1].Completed != true {
		t.Error("Step() should return a pointer into the plan")
	}
}

func TestToolResult_JSON(t *testing.T) {
	tests := []struct {
		name   string
		result protocol.ToolResult
		want   string
	}{
		{name: "success", result: protocol.ToolResult{Data: structpb.NewNumberValue(5)}, want: `{"data":5}`},
		{name: "failure", result: protocol.ToolResult{Error: "Tool weather not found"}, want: `{"data":null,"error":"Tool weather not found"}`},
		{name: "failure drops data", result: protocol.ToolResult{Data: structpb.NewNumberValue(1), Error: "boom"}, want: `{"data":null,"error":"boom"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.JSON(); got != tt.want {
				t.Errorf("JSON() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValueText(t *testing.T) {
	tests := []struct {
		name  string
		value *structpb.Value
		want  string
	}{
		{name: "nil", value: nil, want: ""},
		{name: "string unquoted", value: structpb.NewStringValue("sunny"), want: "sunny"},
		{name: "number", value: structpb.NewNumberValue(5), want: "5"},
		{name: "fraction", value: structpb.NewNumberValue(2.5), want: "2.5"},
		{name: "bool", value: structpb.NewBoolValue(true), want: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := protocol.ValueText(tt.value); got != tt.want {
				t.Errorf("ValueText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGraph(t *testing.T) {
	plan := protocol.Plan{Steps: []protocol.Step{
		{ID: "s1"},
		{ID: "s2"},
		{ID: "s3", Dependencies: []string{"s1", "s2"}},
		{ID: "s4", Dependencies: []string{"s1"}},
	}}

	g, err := plan.Graph()
	if err != nil {
		t.Fatalf("Graph() failed: %v", err)
	}

	if got := strings.Join(g.Roots(), ","); got != "s1,s2" {
		t.Errorf("Roots() = %s, want s1,s2", got)
	}
	if got := strings.Join(g.Dependents("s1"), ","); got != "s3,s4" {
		t.Errorf("Dependents(s1) = %s, want s3,s4", got)
	}
	if got := strings.Join(g.Dependencies("s3"), ","); got != "s1,s2" {
		t.Errorf("Dependencies(s3) = %s, want s1,s2", got)
	}

	ready := g.Ready(map[string]bool{"s1": true})
	if got := strings.Join(ready, ","); got != "s2,s4" {
		t.Errorf("Ready({s1}) = %s, want s2,s4", got)
	}
}

func TestGraph_Errors(t *testing.T) {
	tests := []struct {
		name  string
		steps []protocol.Step
		want  error
	}{
		{
			name:  "duplicate id",
			steps: []protocol.Step{{ID: "s1"}, {ID: "s1"}},
			want:  protocol.ErrDuplicateStepID,
		},
		{
			name:  "unknown dependency",
			steps: []protocol.Step{{ID: "s1", Dependencies: []string{"nope"}}},
			want:  protocol.ErrUnknownDependency,
		},
		{
			name:  "forward dependency",
			steps: []protocol.Step{{ID: "s1", Dependencies: []string{"s2"}}, {ID: "s2"}},
			want:  protocol.ErrForwardDependency,
		},
		{
			name:  "self dependency",
			steps: []protocol.Step{{ID: "s1", Dependencies: []string{"s1"}}},
			want:  protocol.ErrForwardDependency,
		},
		{
			name:  "empty id",
			steps: []protocol.Step{{ID: ""}},
			want:  protocol.ErrEmptyStepID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := protocol.Plan{Steps: tt.steps}
			_, err := plan.Graph()
			if !errors.Is(err, tt.want) {
				t.Errorf("Graph() error = %v, want %v", err, tt.want)
			}
		})
	}
}
