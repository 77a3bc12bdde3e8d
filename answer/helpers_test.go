package answer_test

import (
	"os"
	"path/filepath"

	"github.com/tailored-agentic-units/ezra/prompts"
)

func writeAnswerTemplate(dir, text string) error {
	return os.WriteFile(filepath.Join(dir, prompts.FileName(prompts.Answer)), []byte(text), 0o644)
}
