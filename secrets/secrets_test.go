package secrets_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tailored-agentic-units/ezra/secrets"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileStore(t *testing.T) {
	jsonPath := writeFile(t, "secrets.json", `{
		"GOOGLE": {"API_KEY": "g-123"},
		"OPENAI.API_KEY": "o-456",
		"PORT": 8080,
		"EMPTY": {"API_KEY": ""},
		"TABLE": {"nested": {"x": 1}}
	}`)

	tomlPath := writeFile(t, "secrets.toml", `
"OPENAI.API_KEY" = "o-456"
PORT = 8080

[GOOGLE]
API_KEY = "g-123"

[EMPTY]
API_KEY = ""

[TABLE.nested]
x = 1
`)

	for _, path := range []string{jsonPath, tomlPath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			store, err := secrets.NewFileStore(path)
			if err != nil {
				t.Fatalf("NewFileStore() failed: %v", err)
			}

			tests := []struct {
				path   string
				want   string
				wantOK bool
			}{
				{path: "GOOGLE.API_KEY", want: "g-123", wantOK: true},
				{path: "OPENAI.API_KEY", want: "o-456", wantOK: true},
				{path: "PORT", want: "8080", wantOK: true},
				{path: "EMPTY.API_KEY", wantOK: false},
				{path: "TABLE.nested", wantOK: false},
				{path: "ANTHROPIC.API_KEY", wantOK: false},
			}

			for _, tt := range tests {
				got, ok := store.Lookup(tt.path)
				if ok != tt.wantOK || got != tt.want {
					t.Errorf("Lookup(%s) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.wantOK)
				}
			}
		})
	}
}

func TestFileStore_Missing(t *testing.T) {
	store, err := secrets.NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, secrets.ErrMissingFile) {
		t.Errorf("error = %v, want %v", err, secrets.ErrMissingFile)
	}
	if store == nil {
		t.Fatal("missing file should still yield a usable store")
	}
	if _, ok := store.Lookup("GOOGLE.API_KEY"); ok {
		t.Error("empty store reported a secret")
	}
}

func TestFileStore_Invalid(t *testing.T) {
	path := writeFile(t, "secrets.json", `{not json`)
	if _, err := secrets.NewFileStore(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestEnv(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "from-env")
	t.Setenv("EZRA_OPENAI_API_KEY", "prefixed")

	if got, ok := (secrets.Env{}).Lookup("GOOGLE.API_KEY"); !ok || got != "from-env" {
		t.Errorf("Lookup(GOOGLE.API_KEY) = %q, %v", got, ok)
	}
	if got, ok := (secrets.Env{Prefix: "ezra"}).Lookup("openai.api_key"); !ok || got != "prefixed" {
		t.Errorf("prefixed Lookup = %q, %v", got, ok)
	}
	if _, ok := (secrets.Env{}).Lookup("NOT.SET.ANYWHERE"); ok {
		t.Error("Lookup of unset variable reported ok")
	}
}

func TestChain(t *testing.T) {
	chain := secrets.Chain{
		nil,
		secrets.Map{"A": "first"},
		secrets.Map{"A": "second", "B": "b"},
	}

	if got, _ := chain.Lookup("A"); got != "first" {
		t.Errorf("Lookup(A) = %q, want first", got)
	}
	if got, _ := chain.Lookup("B"); got != "b" {
		t.Errorf("Lookup(B) = %q, want b", got)
	}
	if _, ok := chain.Lookup("C"); ok {
		t.Error("Lookup(C) reported ok")
	}
}
