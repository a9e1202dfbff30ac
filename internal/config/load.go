package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	path := ConfigPath()
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)
	cfg.sanitize()
	return cfg, nil
}

// findConfigFile looks for config in the working directory, then the user config dir.
func findConfigFile() string {
	for _, path := range []string{
		"./arviewer.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "ARViewer")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "ARViewer")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "arviewer")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "arviewer")
	}
}

// loadFromFile merges a YAML file over cfg.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// sanitize repairs values the engine cannot work with.
func (c *Config) sanitize() {
	n := &c.Navigation
	if n.MinDistance <= 0 {
		n.MinDistance = 0.1
	}
	if n.MaxDistance < n.MinDistance {
		n.MaxDistance = n.MinDistance
	}
	// The camera must never reach the horizon.
	if n.MaxPolarAngle <= 0 || n.MaxPolarAngle >= 90 {
		n.MaxPolarAngle = 85
	}
	if n.DampingFactor <= 0 || n.DampingFactor > 1 {
		n.DampingFactor = 0.08
	}
	if c.Assets.MaxTextureSize <= 0 {
		c.Assets.MaxTextureSize = 2048
	}
	if c.Graphics.ShadowResolution <= 0 {
		c.Graphics.ShadowResolution = 2048
	}
}
