// Package builtin provides the tools every assistant ships with.
package builtin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/tailored-agentic-units/ezra/core/protocol"
	"github.com/tailored-agentic-units/ezra/tools"
)

// ErrDivisionByZero is returned by the calculator for a zero divisor.
var ErrDivisionByZero = errors.New("division by zero")

// Register installs every built-in tool into reg.
func Register(reg *tools.Registry) {
	reg.Register(Calculator, CalculatorDescriptor)
	reg.Register(Datetime, DatetimeDescriptor)
	reg.Register(ReadFile, ReadFileDescriptor)
	reg.Register(ListDirectory, ListDirectoryDescriptor)
}

var CalculatorDescriptor = protocol.Descriptor{
	Name:        "calculator",
	Description: "Simple calculator tool",
	Parameters: []protocol.Parameter{
		{Name: "a", Type: protocol.TypeNumber, Description: "First number"},
		{Name: "b", Type: protocol.TypeNumber, Description: "Second number"},
		{Name: "operation", Type: protocol.TypeString, Description: "Operation to perform: one of + - * /"},
	},
	Returns: "number",
}

// Calculator applies a binary arithmetic operation to a and b.
func Calculator(_ context.Context, args protocol.Args) (any, error) {
	a, _ := args.Number("a")
	b, _ := args.Number("b")
	op, _ := args.String("operation")

	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return nil, ErrDivisionByZero
		}
		return a / b, nil
	default:
		return nil, fmt.Errorf("invalid operation: %s", op)
	}
}

var DatetimeDescriptor = protocol.Descriptor{
	Name:        "datetime",
	Description: "Returns the current date and time in RFC3339 format.",
	Parameters: []protocol.Parameter{
		protocol.Parameter{
			Name:        "timezone",
			Type:        protocol.TypeString,
			Description: "IANA time zone name, such as Europe/Paris. Defaults to local time.",
		}.Optional(),
	},
	Returns: "string",
}

// Now is the clock used by Datetime.
var Now = time.Now

func Datetime(_ context.Context, args protocol.Args) (any, error) {
	now := Now()
	if tz, ok := args.String("timezone"); ok && tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("unknown timezone %q: %w", tz, err)
		}
		now = now.In(loc)
	}
	return now.Format(time.RFC3339), nil
}

var ReadFileDescriptor = protocol.Descriptor{
	Name:        "read_file",
	Description: "Reads the contents of a file at the given path.",
	Parameters: []protocol.Parameter{
		{Name: "path", Type: protocol.TypeString, Description: "Absolute or relative path to the file to read."},
	},
	Returns: "string",
}

func ReadFile(_ context.Context, args protocol.Args) (any, error) {
	path, _ := args.String("path")
	if path == "" {
		return nil, errors.New("path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

var ListDirectoryDescriptor = protocol.Descriptor{
	Name:        "list_directory",
	Description: "Lists files and directories at the given path. Directories end with a slash.",
	Parameters: []protocol.Parameter{
		protocol.Parameter{
			Name:        "path",
			Type:        protocol.TypeString,
			Description: "Absolute or relative path to the directory to list. Defaults to the working directory.",
		}.Optional(),
	},
	Returns: "array of entry names",
}

func ListDirectory(_ context.Context, args protocol.Args) (any, error) {
	path, _ := args.String("path")
	if path == "" {
		path = "."
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	names := make([]any, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	return names, nil
}
