package config

import (
	"os"
	"path/filepath"
)

// Loader handles locating and loading the configuration file.
type Loader struct {
	Version      string // build version, "dev" enables the local rc file
	OverridePath string // explicit path, wins over the search order
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load loads the configuration, returning defaults when no file exists.
func (l *Loader) Load() (*Config, error) {
	path := l.GetConfigPath()
	if path == "" {
		return New(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f)
}

// Save writes the configuration to path in RC format.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(cfg.String()), 0o644)
}

// GetConfigPath returns the path to the configuration file, or empty string
// when none is found.
func (l *Loader) GetConfigPath() string {
	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err == nil {
			return l.OverridePath
		}
	}

	if l.Version == "dev" {
		wd, _ := os.Getwd()
		localPath := filepath.Join(wd, ".markpixrc")
		if _, err := os.Stat(localPath); err == nil {
			return localPath
		}
	}

	home, _ := os.UserHomeDir()
	xdgPath := filepath.Join(home, ".config", "markpix", "config.rc")
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}

	xdgPath = filepath.Join(home, ".config", "markpix", "markpix.rc")
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}

	return ""
}
