package models

// MinRetention is the floor for every resolved keep-count. A retention of
// zero would mean "delete the backup we just wrote", so anything invalid
// clamps here.
const MinRetention = 1

const DefaultMaxBackups = 5

type Config struct {
	BackupDirectory   string         `toml:"backup_directory"`
	DefaultMaxBackups int            `toml:"default_max_backups"`
	Volumes           []VolumePolicy `toml:"volumes"`
}

type VolumePolicy struct {
	Name       string `toml:"name"`
	MaxBackups int    `toml:"max_backups,omitempty"`
}

// ResolveRetention returns the keep-count for a volume: the per-volume
// override when present and valid, otherwise the configured default,
// otherwise MinRetention.
func (c *Config) ResolveRetention(volumeName string) int {
	for _, v := range c.Volumes {
		if v.Name == volumeName {
			if v.MaxBackups >= MinRetention {
				return v.MaxBackups
			}
			break
		}
	}

	if c.DefaultMaxBackups >= MinRetention {
		return c.DefaultMaxBackups
	}
	return MinRetention
}

// ConfiguredVolumes lists the volume names with an explicit policy entry,
// in config order. An empty list means unattended mode has nothing to do.
func (c *Config) ConfiguredVolumes() []string {
	names := make([]string, 0, len(c.Volumes))
	for _, v := range c.Volumes {
		if v.Name != "" {
			names = append(names, v.Name)
		}
	}
	return names
}

// SetVolumePolicy adds or updates the policy entry for a volume. A
// maxBackups below MinRetention records the volume without an override so
// it follows the default.
func (c *Config) SetVolumePolicy(name string, maxBackups int) {
	for i, v := range c.Volumes {
		if v.Name == name {
			if maxBackups < MinRetention {
				c.Volumes[i].MaxBackups = 0
			} else {
				c.Volumes[i].MaxBackups = maxBackups
			}
			return
		}
	}

	policy := VolumePolicy{Name: name}
	if maxBackups >= MinRetention {
		policy.MaxBackups = maxBackups
	}
	c.Volumes = append(c.Volumes, policy)
}
