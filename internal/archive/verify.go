package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// ErrCorruptArchive means a written archive failed post-backup
// verification. Corrupt archives are never left on disk.
var ErrCorruptArchive = errors.New("corrupt archive")

// Verify walks the full gzip stream and every tar header in the archive.
// It runs independently of the archiver that produced the file, so a
// truncated or garbage write is caught before the backup is reported as
// successful.
func Verify(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptArchive, path, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		_, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCorruptArchive, path, err)
		}
		if _, err := io.Copy(io.Discard, tr); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCorruptArchive, path, err)
		}
	}

	return nil
}
