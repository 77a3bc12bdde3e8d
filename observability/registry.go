package observability

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

var (
	observers = map[string]Observer{
		"noop": NoOpObserver{},
		"slog": NewSlogObserver(slog.Default()),
	}
	mutex sync.RWMutex
)

// GetObserver returns a registered observer by name.
// Pre-registered observers: "noop" (NoOpObserver) and "slog" (default logger).
func GetObserver(name string) (Observer, error) {
	mutex.RLock()
	defer mutex.RUnlock()

	obs, exists := observers[strings.TrimSpace(name)]
	if !exists {
		return nil, fmt.Errorf("unknown observer: %s", name)
	}
	return obs, nil
}

// ParseObservers resolves a comma-separated list of registered names, such
// as "slog,metrics". A single name yields that observer; several yield a
// MultiObserver.
func ParseObservers(names string) (Observer, error) {
	parts := strings.Split(names, ",")
	if len(parts) == 1 {
		return GetObserver(parts[0])
	}

	resolved := make([]Observer, 0, len(parts))
	for _, name := range parts {
		obs, err := GetObserver(name)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, obs)
	}
	return NewMultiObserver(resolved...), nil
}

// RegisterObserver adds or replaces a named observer in the global registry.
func RegisterObserver(name string, observer Observer) {
	mutex.Lock()
	defer mutex.Unlock()

	observers[name] = observer
}
