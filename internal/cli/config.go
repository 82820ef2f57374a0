package cli

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const defaultUserID = "local"

// FileConfig is the on-disk CLI configuration.
type FileConfig struct {
	DBPath string `toml:"db_path"`
	UserID string `toml:"user_id"`
	// Color is nil when missing from the file, which means enabled.
	Color *bool `toml:"color"`
}

func (c FileConfig) ColorEnabled() bool {
	return c.Color == nil || *c.Color
}

// DefaultConfigPath respects XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	return filepath.Join(configHome(), "kanso", "config.toml")
}

func defaultDBPath() string {
	home, _ := os.UserHomeDir()
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "kanso", "kanso.db")
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

// LoadFileConfig reads path and fills the blanks with defaults. A missing
// file is not an error.
func LoadFileConfig(path string) (*FileConfig, error) {
	cfg := &FileConfig{}

	if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath()
	}
	if cfg.UserID == "" {
		cfg.UserID = defaultUserID
	}
	return cfg, nil
}

// SaveFileConfig writes cfg to path, creating the parent directory.
func SaveFileConfig(path string, cfg *FileConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
