// Package secrets resolves credentials by dotted path, such as
// "GOOGLE.API_KEY". A missing secret is a normal outcome reported as
// ("", false); callers decide whether absence is fatal.
package secrets

import (
	"errors"
	"os"
	"strings"
)

// ErrMissingFile is returned alongside an empty store when a secrets file
// does not exist.
var ErrMissingFile = errors.New("secrets file not found")

// Store looks up secrets by dotted path.
type Store interface {
	Lookup(path string) (string, bool)
}

// Map is an in-memory Store keyed by full dotted path.
type Map map[string]string

func (m Map) Lookup(path string) (string, bool) {
	v, ok := m[path]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Env resolves secrets from environment variables. The dotted path is
// upper-cased and dots become underscores: GOOGLE.API_KEY reads
// $GOOGLE_API_KEY. Prefix, when set, is prepended with an underscore.
type Env struct {
	Prefix string
}

func (e Env) Lookup(path string) (string, bool) {
	v, ok := os.LookupEnv(EnvName(e.Prefix, path))
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// EnvName returns the environment variable consulted for path.
func EnvName(prefix, path string) string {
	name := strings.ToUpper(strings.ReplaceAll(path, ".", "_"))
	if prefix != "" {
		name = strings.ToUpper(prefix) + "_" + name
	}
	return name
}

// Chain tries each store in order and returns the first hit.
type Chain []Store

func (c Chain) Lookup(path string) (string, bool) {
	for _, s := range c {
		if s == nil {
			continue
		}
		if v, ok := s.Lookup(path); ok {
			return v, true
		}
	}
	return "", false
}
