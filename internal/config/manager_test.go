package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/volbak/volbak/pkg/models"
)

func TestNewManagerMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("missing config should fall back to defaults, got %v", err)
	}

	cfg := m.GetConfig()
	if cfg.BackupDirectory == "" {
		t.Error("default config has empty backup directory")
	}
	if cfg.DefaultMaxBackups != models.DefaultMaxBackups {
		t.Errorf("DefaultMaxBackups = %d, want %d", cfg.DefaultMaxBackups, models.DefaultMaxBackups)
	}
	if len(cfg.ConfiguredVolumes()) != 0 {
		t.Error("default config has configured volumes")
	}
}

func TestManagerSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "volbak", "config.toml")

	m, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}

	cfg := m.GetConfig()
	cfg.BackupDirectory = "/srv/backups"
	cfg.DefaultMaxBackups = 3
	cfg.SetVolumePolicy("db_data", 7)
	cfg.SetVolumePolicy("cache", 0)

	if err := m.Save(); err != nil {
		t.Fatal(err)
	}

	reloaded, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	got := reloaded.GetConfig()

	if got.BackupDirectory != "/srv/backups" {
		t.Errorf("BackupDirectory = %q", got.BackupDirectory)
	}
	if got.ResolveRetention("db_data") != 7 {
		t.Errorf("ResolveRetention(db_data) = %d, want 7", got.ResolveRetention("db_data"))
	}
	if got.ResolveRetention("cache") != 3 {
		t.Errorf("ResolveRetention(cache) = %d, want default 3", got.ResolveRetention("cache"))
	}

	volumes := got.ConfiguredVolumes()
	if len(volumes) != 2 {
		t.Errorf("ConfiguredVolumes = %v, want 2 entries", volumes)
	}
}

func TestLoadMalformedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("backup_directory = [not toml"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewManager(path); err == nil {
		t.Fatal("malformed config did not error")
	}
}

func TestResolveRetentionFallbacks(t *testing.T) {
	cfg := &models.Config{
		DefaultMaxBackups: 4,
		Volumes: []models.VolumePolicy{
			{Name: "explicit", MaxBackups: 9},
			{Name: "invalid", MaxBackups: -2},
			{Name: "unset"},
		},
	}

	if got := cfg.ResolveRetention("explicit"); got != 9 {
		t.Errorf("explicit = %d, want 9", got)
	}
	if got := cfg.ResolveRetention("invalid"); got != 4 {
		t.Errorf("invalid override = %d, want default 4", got)
	}
	if got := cfg.ResolveRetention("unset"); got != 4 {
		t.Errorf("unset override = %d, want default 4", got)
	}
	if got := cfg.ResolveRetention("unknown"); got != 4 {
		t.Errorf("unknown volume = %d, want default 4", got)
	}

	// broken default clamps to the floor
	cfg.DefaultMaxBackups = 0
	if got := cfg.ResolveRetention("unknown"); got != models.MinRetention {
		t.Errorf("invalid default = %d, want %d", got, models.MinRetention)
	}
}
