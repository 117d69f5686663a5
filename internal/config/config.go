package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.harmonyrc, $XDG_CONFIG_HOME/harmony/config.toml, ~/.config/harmony/config.toml
func Load() (*Config, error) {
	cfg := &Config{}

	// Try loading from file
	path := findConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// Apply defaults, then environment variable overrides
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

const header = "# Harmony Configuration\n# Every key is optional; missing keys take their defaults.\n\n"

// Save writes v as TOML to path under a header comment, creating parent
// directories. v is a *Config or a raw section map.
func Save(path string, v any) error {
	var buf bytes.Buffer
	buf.WriteString(header)
	enc := toml.NewEncoder(&buf)
	enc.Indent = "  "
	if err := enc.Encode(v); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0600)
}

// Path returns the config file in use, or the XDG location a new one
// should be written to.
func Path() string {
	if p := findConfigFile(); p != "" {
		return p
	}
	return filepath.Join(xdgConfigDir(), "harmony", "config.toml")
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, ".harmonyrc"),
		filepath.Join(xdgConfigDir(), "harmony", "config.toml"),
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

func xdgConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Providers
	if v := os.Getenv("HARMONY_SAAVN_BASE_URL"); v != "" {
		cfg.Saavn.BaseURL = v
	}
	if v := os.Getenv("HARMONY_YOUTUBE_API_KEY"); v != "" {
		cfg.YouTube.APIKey = v
	}
	if v := os.Getenv("HARMONY_LASTFM_API_KEY"); v != "" {
		cfg.LastFM.APIKey = v
	}

	// Storage
	if v := os.Getenv("HARMONY_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("HARMONY_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}

	// Playback
	if v := os.Getenv("HARMONY_PLAYBACK_VOLUME"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Playback.Volume = i
		}
	}

	if v := os.Getenv("HARMONY_METRICS_LISTEN"); v != "" {
		cfg.Metrics.Listen = v
	}

	// TUI
	if v := os.Getenv("HARMONY_TUI_THEME"); v != "" {
		cfg.TUI.Theme = v
	}
	if v := os.Getenv("HARMONY_TUI_REFRESH_INTERVAL"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.TUI.RefreshInterval = i
		}
	}

	// Log
	if v := os.Getenv("HARMONY_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HARMONY_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
