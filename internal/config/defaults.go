package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Saavn: SaavnConfig{
			BaseURL: "https://saavn.dev/api",
			Timeout: 10,
		},
		YouTube: YouTubeConfig{
			Region: "IN",
		},
		Storage: StorageConfig{
			Backend: "file",
			Path:    defaultDataDir(),
		},
		Playback: PlaybackConfig{
			Volume: 70,
			Repeat: "off",
		},
		Cache: CacheConfig{
			SimilarTTL:     "6h",
			TrendingTTL:    "5m",
			SuggestionsTTL: "24h",
			MaxEntries:     256,
		},
		TUI: TUIConfig{
			Theme:           "auto",
			RefreshInterval: 1000,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Saavn
	if c.Saavn.BaseURL == "" {
		c.Saavn.BaseURL = d.Saavn.BaseURL
	}
	if c.Saavn.Timeout == 0 {
		c.Saavn.Timeout = d.Saavn.Timeout
	}

	if c.YouTube.Region == "" {
		c.YouTube.Region = d.YouTube.Region
	}

	// Storage
	if c.Storage.Backend == "" {
		c.Storage.Backend = d.Storage.Backend
	}
	if c.Storage.Path == "" {
		c.Storage.Path = d.Storage.Path
	}

	// Playback
	if c.Playback.Volume == 0 {
		c.Playback.Volume = d.Playback.Volume
	}
	if c.Playback.Repeat == "" {
		c.Playback.Repeat = d.Playback.Repeat
	}

	// Cache
	if c.Cache.SimilarTTL == "" {
		c.Cache.SimilarTTL = d.Cache.SimilarTTL
	}
	if c.Cache.TrendingTTL == "" {
		c.Cache.TrendingTTL = d.Cache.TrendingTTL
	}
	if c.Cache.SuggestionsTTL == "" {
		c.Cache.SuggestionsTTL = d.Cache.SuggestionsTTL
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = d.Cache.MaxEntries
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.MaxSize == 0 {
		c.Log.MaxSize = d.Log.MaxSize
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = d.Log.MaxBackups
	}
	if c.Log.MaxAge == 0 {
		c.Log.MaxAge = d.Log.MaxAge
	}
}

// Durations returns the parsed cache lifetimes. Unparseable values fall back
// to the defaults; Validate reports them.
func (c *CacheConfig) Durations() (similar, trending, suggestions time.Duration) {
	d := Default().Cache
	return parseOr(c.SimilarTTL, d.SimilarTTL),
		parseOr(c.TrendingTTL, d.TrendingTTL),
		parseOr(c.SuggestionsTTL, d.SuggestionsTTL)
}

// VolumeFraction returns the configured volume in [0,1].
func (c *PlaybackConfig) VolumeFraction() float64 {
	v := float64(c.Volume) / 100
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func parseOr(s, fallback string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	d, _ := time.ParseDuration(fallback)
	return d
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "harmony")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".harmony"
	}
	return filepath.Join(home, ".local", "share", "harmony")
}
