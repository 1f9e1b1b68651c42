package cli

import (
	"os"
	"path/filepath"
	"strings"

	"draftboard/pkg/errors"
)

// refuseExisting returns an error when path already exists.
func refuseExisting(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.New(errors.ErrCodeInvalidPath, "%s already exists (use --force to overwrite)", path)
	}
	return nil
}

// outputPath derives an output file name from the input file and extension
// when no explicit output was given. "arch.json" with ext "svg" becomes
// "arch.svg".
func outputPath(input, output, ext string) string {
	if output != "" {
		return output
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "." + ext
}
