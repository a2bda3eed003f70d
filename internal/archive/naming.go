package archive

import (
	"path/filepath"
	"strings"
	"time"
)

// TimestampLayout is fixed-width, so archive filenames sort
// chronologically as plain strings.
const TimestampLayout = "20060102_150405"

const Extension = ".tar.gz"

// Dir returns the per-volume archive directory under root.
func Dir(root, volumeName string) (string, error) {
	sanitized, err := SanitizeName(volumeName)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, sanitized), nil
}

// Filename builds the archive filename for a volume at a timestamp. The
// sanitized name is used so the filename itself is always path-safe; the
// original name is recoverable through the registry.
func Filename(volumeName, timestamp string) (string, error) {
	sanitized, err := SanitizeName(volumeName)
	if err != nil {
		return "", err
	}
	return sanitized + "_" + timestamp + Extension, nil
}

// Path returns the full archive path for a volume at a timestamp.
func Path(root, volumeName, timestamp string) (string, error) {
	dir, err := Dir(root, volumeName)
	if err != nil {
		return "", err
	}
	name, err := Filename(volumeName, timestamp)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// NewTimestamp formats the current local time in TimestampLayout.
func NewTimestamp() string {
	return time.Now().Format(TimestampLayout)
}

// parseTimestamp pulls the timestamp out of an archive filename, rejecting
// files that do not match the {name}_{timestamp}.tar.gz shape.
func parseTimestamp(filename string) (string, bool) {
	if !strings.HasSuffix(filename, Extension) {
		return "", false
	}
	base := strings.TrimSuffix(filename, Extension)

	if len(base) < len(TimestampLayout)+1 {
		return "", false
	}
	ts := base[len(base)-len(TimestampLayout):]
	if base[len(base)-len(TimestampLayout)-1] != '_' {
		return "", false
	}

	if _, err := time.Parse(TimestampLayout, ts); err != nil {
		return "", false
	}
	return ts, true
}
