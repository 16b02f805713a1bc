package prompts

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultPrompt(t *testing.T) {
	prompt, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prompt != MindSoothe {
		t.Fatalf("expected default prompt")
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.txt")
	os.WriteFile(path, []byte("  You are a patient tutor.\n"), 0o644)

	prompt, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prompt != "You are a patient tutor." {
		t.Fatalf("expected trimmed file contents, got %q", prompt)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.txt")
	os.WriteFile(empty, []byte("   \n"), 0o644)

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "missing.txt")},
		{"blank file", empty},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(tc.path); err == nil {
				t.Errorf("expected error for %s", tc.path)
			}
		})
	}
}
