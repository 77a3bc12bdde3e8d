package prompts_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tailored-agentic-units/ezra/observability"
	"github.com/tailored-agentic-units/ezra/prompts"
)

func TestCache_LazyLoadAndInvalidate(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "answer", "v1 {{query}}")

	cache := prompts.NewCache(prompts.NewFileStore(dir))
	ctx := context.Background()

	if cache.Cached("answer") {
		t.Fatal("template cached before first use")
	}

	got, err := cache.Render(ctx, "answer", map[string]string{"query": "q"})
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if got != "v1 q" {
		t.Errorf("Render() = %q, want %q", got, "v1 q")
	}

	writeTemplate(t, dir, "answer", "v2 {{query}}")

	got, _ = cache.Render(ctx, "answer", map[string]string{"query": "q"})
	if got != "v1 q" {
		t.Errorf("cached Render() = %q, want stale %q", got, "v1 q")
	}

	cache.Invalidate("answer")

	got, _ = cache.Render(ctx, "answer", map[string]string{"query": "q"})
	if got != "v2 q" {
		t.Errorf("Render() after Invalidate = %q, want %q", got, "v2 q")
	}
}

func TestCache_Preload(t *testing.T) {
	cache := prompts.NewCache(prompts.NewEmbeddedStore())
	ctx := context.Background()

	if err := cache.Preload(ctx, prompts.Planner, prompts.Router, prompts.Answer); err != nil {
		t.Fatalf("Preload() failed: %v", err)
	}
	for _, name := range []string{prompts.Planner, prompts.Router, prompts.Answer} {
		if !cache.Cached(name) {
			t.Errorf("%s not cached after Preload", name)
		}
	}

	cache.Invalidate()
	if cache.Cached(prompts.Planner) {
		t.Error("Invalidate() with no names should clear everything")
	}

	err := cache.Preload(ctx, "missing")
	if !errors.Is(err, prompts.ErrTemplateNotFound) {
		t.Errorf("Preload(missing) error = %v, want %v", err, prompts.ErrTemplateNotFound)
	}
}

func TestWatch_InvalidatesOnWrite(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "router", "v1")

	cache := prompts.NewCache(prompts.NewFileStore(dir))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := cache.Get(ctx, "router"); err != nil {
		t.Fatalf("Get() failed: %v", err)
	}

	rec := observability.NewRecorder()
	done := make(chan error, 1)
	go func() {
		done <- prompts.Watch(ctx, dir, cache, rec)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for cache.Cached("router") {
		if time.Now().After(deadline) {
			t.Fatal("template was not invalidated after the file changed")
		}
		if err := os.WriteFile(filepath.Join(dir, prompts.FileName("router")), []byte("v2"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	tmpl, err := cache.Get(ctx, "router")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if tmpl.Text != "v2" {
		t.Errorf("reloaded text = %q, want v2", tmpl.Text)
	}
	if rec.Count(prompts.EventReload) == 0 {
		t.Error("no reload event recorded")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() returned %v", err)
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	cache := prompts.NewCache(prompts.NewEmbeddedStore())
	err := prompts.Watch(context.Background(), filepath.Join(t.TempDir(), "absent"), cache, observability.NoOpObserver{})
	if err == nil {
		t.Error("Watch() on a missing directory should fail")
	}
}
