package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/gjson"
)

// NewFileStore loads a secrets file. The format follows the extension:
// .toml is decoded as TOML, anything else as JSON. A missing file yields an
// empty store together with an error wrapping ErrMissingFile, so callers can
// log it and continue.
func NewFileStore(path string) (Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Map{}, fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return nil, fmt.Errorf("read secrets: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return parseTOML(data)
	}
	return parseJSON(data)
}

type jsonStore struct {
	doc string
}

func parseJSON(data []byte) (Store, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parse secrets: invalid JSON")
	}
	return &jsonStore{doc: string(data)}, nil
}

// Lookup resolves path against the document. A literal key containing dots
// takes precedence over nested traversal.
func (s *jsonStore) Lookup(path string) (string, bool) {
	if r := gjson.Get(s.doc, gjson.Escape(path)); scalar(r) {
		return r.String(), true
	}
	if r := gjson.Get(s.doc, path); scalar(r) {
		return r.String(), true
	}
	return "", false
}

func scalar(r gjson.Result) bool {
	switch r.Type {
	case gjson.String, gjson.Number, gjson.True, gjson.False:
		return r.String() != ""
	default:
		return false
	}
}

type tomlStore struct {
	doc map[string]any
}

func parseTOML(data []byte) (Store, error) {
	var doc map[string]any
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, fmt.Errorf("parse secrets: %w", err)
	}
	return &tomlStore{doc: doc}, nil
}

func (s *tomlStore) Lookup(path string) (string, bool) {
	if v, ok := s.doc[path]; ok {
		return tomlScalar(v)
	}

	var node any = s.doc
	for _, part := range strings.Split(path, ".") {
		table, ok := node.(map[string]any)
		if !ok {
			return "", false
		}
		node, ok = table[part]
		if !ok {
			return "", false
		}
	}
	return tomlScalar(node)
}

func tomlScalar(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, v != ""
	case int64, float64, bool:
		return fmt.Sprint(v), true
	default:
		return "", false
	}
}
