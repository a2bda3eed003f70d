package archive

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidVolumeName means a volume name sanitized down to nothing and
// cannot be given an on-disk directory.
var ErrInvalidVolumeName = errors.New("invalid volume name")

// SanitizeName maps a volume name to a filesystem-safe path segment: path
// separators become underscores, everything outside [A-Za-z0-9_-] is
// dropped. The same input always yields the same output, so directory
// names stay stable across a volume's backup history.
func SanitizeName(name string) (string, error) {
	replaced := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, name)

	var b strings.Builder
	hasContent := false
	for _, r := range replaced {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9':
			hasContent = true
			b.WriteRune(r)
		case r == '_', r == '-':
			b.WriteRune(r)
		}
	}

	// a result of nothing but separator placeholders carries no identity
	if !hasContent {
		return "", fmt.Errorf("%w: %q sanitizes to nothing", ErrInvalidVolumeName, name)
	}

	return b.String(), nil
}
