package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/tailored-agentic-units/ezra/core/protocol"
	"github.com/tailored-agentic-units/ezra/kernel"
	"github.com/tailored-agentic-units/ezra/observability"
	"github.com/tailored-agentic-units/ezra/server"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to config file, JSON or TOML (optional)")
		prompt     = flag.String("prompt", "", "Typed request to send to the assistant")
		audioFile  = flag.String("audio", "", "Recorded request to send to the assistant")
		mimeType   = flag.String("mime", "", "MIME type of -audio (default from the file extension)")
		promptsDir = flag.String("prompts", "", "Directory of prompt templates (overrides config)")
		secrets    = flag.String("secrets", "", "Path to secrets file (overrides config)")
		serve      = flag.String("serve", "", "Serve the assistant over Connect RPC on this address, e.g. :8080")
		tool       = flag.String("tool", "", "Execute a single tool by name")
		toolArgs   = flag.String("args", "{}", "JSON object of arguments for -tool")
		asJSON     = flag.Bool("json", false, "Print the full plan as JSON")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	if *serve == "" && *tool == "" && *prompt == "" && *audioFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: ezra [-config <file>] (-prompt <text> | -audio <file> | -tool <name> [-args <json>] | -serve <addr>)")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := kernel.DefaultConfig()
	if *configFile != "" {
		loaded, err := kernel.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}
	if *promptsDir != "" {
		cfg.Prompts.Dir = *promptsDir
	}
	if *secrets != "" {
		cfg.Secrets = *secrets
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	observer := observability.NewSlogObserver(logger)

	runtime, err := kernel.New(&cfg, kernel.WithObserver(observer))
	if err != nil {
		log.Fatalf("Failed to create assistant: %v", err)
	}
	defer runtime.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *serve != "":
		err = runServer(ctx, runtime, *serve, observer)
	case *tool != "":
		err = runTool(ctx, runtime, *tool, *toolArgs)
	default:
		err = runRequest(ctx, runtime, *prompt, *audioFile, *mimeType, *asJSON)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

func runServer(ctx context.Context, k *kernel.Kernel, addr string, observer observability.Observer) error {
	go func() {
		if err := k.Watch(ctx); err != nil {
			slog.Error("prompt watcher stopped", "error", err)
		}
	}()

	slog.Info("serving", "addr", addr, "service", server.ServiceName)
	return server.ListenAndServe(ctx, addr, k, 10*time.Second, server.WithObserver(observer))
}

func runTool(ctx context.Context, k *kernel.Kernel, name, rawArgs string) error {
	var args protocol.Args
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return fmt.Errorf("invalid -args: %w", err)
	}

	result := k.ExecuteTool(ctx, name, args)
	if result.Failed() {
		return fmt.Errorf("tool %s failed: %s", name, result.Error)
	}
	fmt.Println(result.Text())
	return nil
}

func runRequest(ctx context.Context, k *kernel.Kernel, query, audioFile, mimeType string, asJSON bool) error {
	req := kernel.Request{Query: query}
	if audioFile != "" {
		data, err := os.ReadFile(audioFile)
		if err != nil {
			return fmt.Errorf("failed to read audio: %w", err)
		}
		req.AudioData = data
		req.MIMEType = mimeType
		if req.MIMEType == "" {
			req.MIMEType = audioMIMEType(audioFile)
		}
	}

	result, err := k.Orchestrate(ctx, req)
	if result != nil {
		printResult(result, asJSON)
	}
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return nil
}

func audioMIMEType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "audio/wav"
	case ".ogg":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	case ".aac":
		return "audio/aac"
	case ".aiff", ".aif":
		return "audio/aiff"
	default:
		return "audio/mp3"
	}
}

func printResult(result *kernel.Result, asJSON bool) {
	plan := result.Plan
	if asJSON {
		data, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to encode plan: %v\n", err)
			return
		}
		fmt.Println(string(data))
		return
	}

	if len(plan.Steps) > 0 {
		fmt.Println("Steps:")
		for i, s := range plan.Steps {
			fmt.Printf("  [%d] %s: %s(%s)\n", i+1, s.ID, s.Tool.Name, argsText(s.Tool.Args))
			switch {
			case s.Tool.Error != "":
				fmt.Printf("    error: %s\n", s.Tool.Error)
			case s.Completed:
				fmt.Printf("    -> %s\n", truncate(protocol.ValueText(s.Tool.Result), 200))
			default:
				fmt.Println("    (not run)")
			}
		}
		fmt.Println()
	}

	fmt.Printf("Status: %s\n", plan.Status)
	if plan.Error != "" {
		fmt.Printf("Error: %s\n", plan.Error)
	}
	fmt.Printf("Response: %s\n", plan.Message)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func argsText(args protocol.Args) string {
	data, err := json.Marshal(args)
	if err != nil {
		return "?"
	}
	return string(data)
}
