package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Registry persists the sanitized-name to original-name mapping alongside
// the archives. Sanitization is lossy, so directory enumeration alone
// cannot always recover the volume a history belongs to; the registry
// closes that gap.
type Registry struct {
	path  string
	Names map[string]string `json:"names"`
}

func LoadRegistry(root string) (*Registry, error) {
	r := &Registry{
		path:  filepath.Join(root, "registry.json"),
		Names: map[string]string{},
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("failed to read archive registry: %w", err)
	}

	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("failed to parse archive registry %s: %w", r.path, err)
	}
	if r.Names == nil {
		r.Names = map[string]string{}
	}

	return r, nil
}

// Record remembers the original name behind a volume's sanitized directory
// name and persists the mapping.
func (r *Registry) Record(volumeName string) error {
	sanitized, err := SanitizeName(volumeName)
	if err != nil {
		return err
	}

	if r.Names[sanitized] == volumeName {
		return nil
	}
	r.Names[sanitized] = volumeName
	return r.save()
}

// Original resolves a sanitized directory name back to the volume name it
// was recorded for.
func (r *Registry) Original(sanitized string) (string, bool) {
	name, ok := r.Names[sanitized]
	return name, ok
}

func (r *Registry) save() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("failed to create backup root: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write archive registry: %w", err)
	}
	return nil
}
