package builtin_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tailored-agentic-units/ezra/core/protocol"
	"github.com/tailored-agentic-units/ezra/tools"
	"github.com/tailored-agentic-units/ezra/tools/builtin"
)

func newRegistry() *tools.Registry {
	reg := tools.NewRegistry()
	builtin.Register(reg)
	return reg
}

func TestRegister(t *testing.T) {
	reg := newRegistry()

	var names []string
	for _, d := range reg.List() {
		names = append(names, d.Name)
	}
	if got := strings.Join(names, ","); got != "calculator,datetime,read_file,list_directory" {
		t.Errorf("registered tools = %s", got)
	}
}

func TestCalculator(t *testing.T) {
	reg := newRegistry()

	tests := []struct {
		name      string
		a, b      float64
		operation string
		want      string
		wantErr   bool
	}{
		{name: "add", a: 2, b: 3, operation: "+", want: "5"},
		{name: "subtract", a: 2, b: 3, operation: "-", want: "-1"},
		{name: "multiply", a: 4, b: 2.5, operation: "*", want: "10"},
		{name: "divide", a: 7, b: 2, operation: "/", want: "3.5"},
		{name: "divide by zero", a: 1, b: 0, operation: "/", wantErr: true},
		{name: "unknown operation", a: 1, b: 2, operation: "%", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := protocol.MustArgs(map[string]any{"a": tt.a, "b": tt.b, "operation": tt.operation})
			result := reg.Execute(context.Background(), "calculator", args)

			if tt.wantErr {
				if !result.Failed() {
					t.Errorf("expected failure, got %s", result.JSON())
				}
				return
			}
			if result.Failed() {
				t.Fatalf("unexpected failure: %s", result.Error)
			}
			if result.Text() != tt.want {
				t.Errorf("got %s, want %s", result.Text(), tt.want)
			}
		})
	}
}

func TestCalculator_DivisionByZeroError(t *testing.T) {
	args := protocol.MustArgs(map[string]any{"a": 1, "b": 0, "operation": "/"})
	_, err := builtin.Calculator(context.Background(), args)
	if !errors.Is(err, builtin.ErrDivisionByZero) {
		t.Errorf("error = %v, want %v", err, builtin.ErrDivisionByZero)
	}
}

func TestDatetime(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	orig := builtin.Now
	builtin.Now = func() time.Time { return fixed }
	t.Cleanup(func() { builtin.Now = orig })

	reg := newRegistry()

	result := reg.Execute(context.Background(), "datetime", protocol.MustArgs(map[string]any{"timezone": "UTC"}))
	if result.Failed() {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
	if result.Text() != "2024-03-01T12:00:00Z" {
		t.Errorf("got %s", result.Text())
	}

	bad := reg.Execute(context.Background(), "datetime", protocol.MustArgs(map[string]any{"timezone": "Nowhere/Special"}))
	if !bad.Failed() {
		t.Error("expected failure for unknown timezone")
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := newRegistry()

	result := reg.Execute(context.Background(), "read_file", protocol.MustArgs(map[string]any{"path": path}))
	if result.Text() != "hello" {
		t.Errorf("got %q, want hello", result.Text())
	}

	missing := reg.Execute(context.Background(), "read_file", protocol.MustArgs(map[string]any{"path": filepath.Join(dir, "nope")}))
	if !missing.Failed() {
		t.Error("expected failure for missing file")
	}
}

func TestListDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	reg := newRegistry()

	result := reg.Execute(context.Background(), "list_directory", protocol.MustArgs(map[string]any{"path": dir}))
	if result.Failed() {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
	if result.Text() != `["a.txt","sub/"]` {
		t.Errorf("got %s", result.Text())
	}
}
