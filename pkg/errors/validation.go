package errors

import (
	"strings"
	"unicode"
)

// ValidateID validates a node, edge, or diagram identifier.
// IDs travel in URLs, file names, and storage keys, so the rules are
// intentionally conservative:
//   - No empty IDs
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "id contains control characters")
		}
	}

	if strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return New(ErrCodeInvalidInput, "id contains path characters")
	}

	return nil
}

// ValidateColor validates a hex color string of the form "#rgb" or "#rrggbb".
func ValidateColor(color string) error {
	if color == "" {
		return nil // empty means "use default"
	}
	if !strings.HasPrefix(color, "#") || (len(color) != 4 && len(color) != 7) {
		return New(ErrCodeInvalidColor, "color must be #rgb or #rrggbb, got %q", color)
	}
	for _, r := range color[1:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return New(ErrCodeInvalidColor, "color contains non-hex digit %q", r)
		}
	}
	return nil
}

// ValidateDiagramFilename validates a diagram filename for safety.
// It ensures the filename is a simple basename without path components.
func ValidateDiagramFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidPath, "filename cannot be empty")
	}

	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidPath, "filename cannot contain path separators")
	}

	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidPath, "filename cannot be a hidden file")
	}

	return nil
}
