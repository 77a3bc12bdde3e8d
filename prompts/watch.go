package prompts

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tailored-agentic-units/ezra/observability"
)

// Watch event types.
const (
	EventReload     observability.EventType = "prompts.reload"
	EventWatchError observability.EventType = "prompts.watch.error"
)

// Watch invalidates cached templates when their files under root change, so
// prompt edits take effect without a restart. It blocks until ctx is done.
func Watch(ctx context.Context, root string, cache *Cache, observer observability.Observer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, ok := templateName(event.Name)
			if !ok {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			cache.Invalidate(name)
			observer.OnEvent(ctx, observability.Event{
				Type:      EventReload,
				Level:     observability.LevelInfo,
				Timestamp: time.Now(),
				Source:    "prompts.Watch",
				Data: map[string]any{
					"template": name,
					"op":       event.Op.String(),
				},
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			observer.OnEvent(ctx, observability.Event{
				Type:      EventWatchError,
				Level:     observability.LevelWarning,
				Timestamp: time.Now(),
				Source:    "prompts.Watch",
				Data:      map[string]any{"error": err.Error()},
			})
		}
	}
}

func templateName(path string) (string, bool) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return "", false
	}
	name, ok := strings.CutSuffix(base, Extension)
	return name, ok && name != ""
}
