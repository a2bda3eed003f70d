package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/volbak/volbak/pkg/models"
)

type Manager struct {
	configPath string
	config     *models.Config
}

// DefaultPath is ~/.volbak/config.toml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".volbak", "config.toml"), nil
}

// NewManager loads the config at path, falling back to defaults when no
// file exists yet.
func NewManager(path string) (*Manager, error) {
	m := &Manager{configPath: path}

	if err := m.Load(); err != nil {
		if os.IsNotExist(err) {
			m.config = defaultConfig(path)
			return m, nil
		}
		return nil, err
	}

	return m, nil
}

func defaultConfig(configPath string) *models.Config {
	return &models.Config{
		BackupDirectory:   filepath.Join(filepath.Dir(configPath), "backups"),
		DefaultMaxBackups: models.DefaultMaxBackups,
	}
}

func (m *Manager) Load() error {
	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		return err
	}

	var config models.Config
	if _, err := toml.DecodeFile(m.configPath, &config); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}

	if config.BackupDirectory == "" {
		config.BackupDirectory = defaultConfig(m.configPath).BackupDirectory
	}

	m.config = &config
	return nil
}

func (m *Manager) Save() error {
	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(m.configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(m.config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

func (m *Manager) GetConfig() *models.Config {
	return m.config
}

func (m *Manager) Path() string {
	return m.configPath
}
