package cli

import (
	"os"
	"path/filepath"
	"testing"

	"draftboard/pkg/errors"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input  string
		output string
		ext    string
		want   string
	}{
		{"arch.json", "", "svg", "arch.svg"},
		{"arch.json", "out.svg", "svg", "out.svg"},
		{"dir/arch.json", "", "png", "dir/arch.png"},
		{"noext", "", "dot", "noext.dot"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.input, tt.output, tt.ext); got != tt.want {
			t.Errorf("outputPath(%q, %q, %q) = %q, want %q", tt.input, tt.output, tt.ext, got, tt.want)
		}
	}
}

func TestRefuseExisting(t *testing.T) {
	dir := t.TempDir()

	fresh := filepath.Join(dir, "fresh.json")
	if err := refuseExisting(fresh); err != nil {
		t.Errorf("fresh path refused: %v", err)
	}

	taken := filepath.Join(dir, "taken.json")
	if err := os.WriteFile(taken, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := refuseExisting(taken)
	if err == nil {
		t.Fatal("existing path not refused")
	}
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("code = %v, want INVALID_PATH", errors.GetCode(err))
	}
}
