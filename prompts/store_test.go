package prompts_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/tailored-agentic-units/ezra/prompts"
)

func writeTemplate(t *testing.T, dir, name, text string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, prompts.FileName(name)), []byte(text), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
}

func TestEmbeddedStore(t *testing.T) {
	store := prompts.NewEmbeddedStore()
	ctx := context.Background()

	names, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	for _, want := range []string{prompts.Planner, prompts.Router, prompts.Answer} {
		if !slices.Contains(names, want) {
			t.Errorf("List() missing %s: %v", want, names)
		}
	}

	tests := []struct {
		name         string
		placeholders []string
	}{
		{name: prompts.Planner, placeholders: []string{"tools", "user_input"}},
		{name: prompts.Router, placeholders: []string{"user_query"}},
		{name: prompts.Answer, placeholders: []string{"query", "rawAnswer"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loaded, err := store.Load(ctx, tt.name)
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			got := loaded[0].Placeholders()
			for _, p := range tt.placeholders {
				if !slices.Contains(got, p) {
					t.Errorf("template %s missing placeholder %s (has %v)", tt.name, p, got)
				}
			}
		})
	}
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "router", "route {{user_query}}")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".hidden.prompt.md"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := prompts.NewFileStore(dir)
	ctx := context.Background()

	names, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(names) != 1 || names[0] != "router" {
		t.Errorf("List() = %v, want [router]", names)
	}

	loaded, err := store.Load(ctx, "router")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded[0].Text != "route {{user_query}}" {
		t.Errorf("Load() text = %q", loaded[0].Text)
	}

	_, err = store.Load(ctx, "planner")
	if !errors.Is(err, prompts.ErrTemplateNotFound) {
		t.Errorf("Load(planner) error = %v, want %v", err, prompts.ErrTemplateNotFound)
	}

	_, err = store.Load(ctx, "../escape")
	if !errors.Is(err, prompts.ErrTemplateNotFound) {
		t.Errorf("Load(../escape) error = %v, want %v", err, prompts.ErrTemplateNotFound)
	}
}

func TestFileStore_MissingRoot(t *testing.T) {
	store := prompts.NewFileStore(filepath.Join(t.TempDir(), "absent"))

	names, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("List() = %v, want empty", names)
	}
}

func TestLayeredStore(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "router", "custom {{user_query}}")
	writeTemplate(t, dir, "extra", "extra")

	store := prompts.NewLayeredStore(prompts.NewFileStore(dir), prompts.NewEmbeddedStore())
	ctx := context.Background()

	loaded, err := store.Load(ctx, "router", "answer")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded[0].Text != "custom {{user_query}}" {
		t.Errorf("router should come from the file layer, got %q", loaded[0].Text)
	}
	if loaded[1].Name != "answer" || loaded[1].Text == "" {
		t.Errorf("answer should fall back to the embedded layer, got %+v", loaded[1])
	}

	names, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	for _, want := range []string{"router", "extra", "planner", "answer"} {
		if !slices.Contains(names, want) {
			t.Errorf("List() missing %s: %v", want, names)
		}
	}
	if n := countOf(names, "router"); n != 1 {
		t.Errorf("router listed %d times, want 1", n)
	}

	_, err = store.Load(ctx, "nope")
	if !errors.Is(err, prompts.ErrTemplateNotFound) {
		t.Errorf("Load(nope) error = %v, want %v", err, prompts.ErrTemplateNotFound)
	}
}

func TestConfig_NewStore(t *testing.T) {
	cfg := prompts.DefaultConfig()
	cfg.Merge(&prompts.Config{Dir: t.TempDir(), Watch: true})

	if cfg.Dir == "" || !cfg.Watch {
		t.Fatalf("Merge() did not apply source: %+v", cfg)
	}

	store := prompts.NewStore(&cfg)
	loaded, err := store.Load(context.Background(), prompts.Planner)
	if err != nil {
		t.Fatalf("Load(planner) failed: %v", err)
	}
	if loaded[0].Text == "" {
		t.Error("planner template is empty")
	}
}

func countOf(names []string, name string) int {
	n := 0
	for _, s := range names {
		if s == name {
			n++
		}
	}
	return n
}
