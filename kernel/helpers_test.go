package kernel_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tailored-agentic-units/ezra/prompts"
)

func writePrompt(t *testing.T, dir, name, text string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, prompts.FileName(name)), []byte(text), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}
