package prompts

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

//go:embed defaults/*.prompt.md
var defaults embed.FS

type fsStore struct {
	fsys fs.FS
	root string
}

// NewFileStore creates a Store backed by the directory root. A missing root
// lists no templates.
func NewFileStore(root string) Store {
	return &fsStore{fsys: os.DirFS(root), root: root}
}

// NewEmbeddedStore creates a Store over the templates compiled into the
// binary.
func NewEmbeddedStore() Store {
	sub, err := fs.Sub(defaults, "defaults")
	if err != nil {
		panic(err)
	}
	return &fsStore{fsys: sub, root: "embedded"}
}

func (s *fsStore) List(_ context.Context) ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, s.root, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if name, ok := strings.CutSuffix(e.Name(), Extension); ok && name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func (s *fsStore) Load(_ context.Context, names ...string) ([]Template, error) {
	templates := make([]Template, 0, len(names))

	for _, name := range names {
		if !fs.ValidPath(name) || strings.Contains(name, "/") {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		data, err := fs.ReadFile(s.fsys, FileName(name))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
			}
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, name, err)
		}
		templates = append(templates, Template{Name: name, Text: string(data)})
	}

	return templates, nil
}

type layeredStore struct {
	layers []Store
}

// NewLayeredStore creates a Store that resolves each template from the first
// layer that has it. Typically a FileStore over an EmbeddedStore, so files on
// disk override the built-in defaults.
func NewLayeredStore(layers ...Store) Store {
	return &layeredStore{layers: layers}
}

func (s *layeredStore) List(ctx context.Context) ([]string, error) {
	var names []string
	seen := make(map[string]bool)

	for _, layer := range s.layers {
		layerNames, err := layer.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, name := range layerNames {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names, nil
}

func (s *layeredStore) Load(ctx context.Context, names ...string) ([]Template, error) {
	templates := make([]Template, 0, len(names))

	for _, name := range names {
		t, err := s.loadOne(ctx, name)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, nil
}

func (s *layeredStore) loadOne(ctx context.Context, name string) (Template, error) {
	for _, layer := range s.layers {
		loaded, err := layer.Load(ctx, name)
		if err == nil {
			return loaded[0], nil
		}
		if !errors.Is(err, ErrTemplateNotFound) {
			return Template{}, err
		}
	}
	return Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
}
