package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/volbak/volbak/pkg/models"
)

// List enumerates a volume's archives, newest first. A missing archive
// directory means "no backups yet" and returns an empty list, not an
// error.
func List(root, volumeName string) ([]models.Archive, error) {
	dir, err := Dir(root, volumeName)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read archive directory %s: %w", dir, err)
	}

	var archives []models.Archive
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, ok := parseTimestamp(entry.Name())
		if !ok {
			continue
		}

		a := models.Archive{
			VolumeName: volumeName,
			Timestamp:  ts,
			Path:       filepath.Join(dir, entry.Name()),
		}
		if info, err := entry.Info(); err == nil {
			a.SizeBytes = info.Size()
		}
		archives = append(archives, a)
	}

	sort.Slice(archives, func(i, j int) bool {
		return archives[i].Timestamp > archives[j].Timestamp
	})

	return archives, nil
}

// ListDirs enumerates the sanitized volume names that have an archive
// directory under root, sorted. Used for restore discovery when the
// caller has no volume name in hand.
func ListDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup root %s: %w", root, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}

	sort.Strings(names)
	return names, nil
}
