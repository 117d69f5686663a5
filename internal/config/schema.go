package config

// Config is the root configuration structure.
type Config struct {
	Saavn    SaavnConfig    `toml:"saavn"`
	YouTube  YouTubeConfig  `toml:"youtube"`
	LastFM   LastFMConfig   `toml:"lastfm"`
	Storage  StorageConfig  `toml:"storage"`
	Playback PlaybackConfig `toml:"playback"`
	Cache    CacheConfig    `toml:"cache"`
	Notify   NotifyConfig   `toml:"notify"`
	Metrics  MetricsConfig  `toml:"metrics"`
	TUI      TUIConfig      `toml:"tui"`
	Log      LogConfig      `toml:"log"`
}

// SaavnConfig holds song-search API settings.
type SaavnConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout int    `toml:"timeout"` // seconds
}

// YouTubeConfig holds YouTube Data API settings. An empty key disables it.
type YouTubeConfig struct {
	APIKey string `toml:"api_key"`
	Region string `toml:"region"`
}

// LastFMConfig holds Last.fm API settings. An empty key disables it.
type LastFMConfig struct {
	APIKey string `toml:"api_key"`
}

// StorageConfig selects where the library is persisted.
type StorageConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// PlaybackConfig holds default playback settings.
type PlaybackConfig struct {
	Volume  int    `toml:"volume"`
	Shuffle bool   `toml:"shuffle"`
	Repeat  string `toml:"repeat"`
}

// CacheConfig holds suggestion cache lifetimes.
type CacheConfig struct {
	SimilarTTL     string `toml:"similar_ttl"`
	TrendingTTL    string `toml:"trending_ttl"`
	SuggestionsTTL string `toml:"suggestions_ttl"`
	MaxEntries     int    `toml:"max_entries"`
}

// NotifyConfig holds notification settings.
type NotifyConfig struct {
	Desktop bool `toml:"desktop"`
}

// MetricsConfig holds the metrics endpoint address. Empty disables it.
type MetricsConfig struct {
	Listen string `toml:"listen"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme"`
	RefreshInterval int    `toml:"refresh_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSize    int    `toml:"max_size"` // megabytes
	MaxBackups int    `toml:"max_backups"`
	MaxAge     int    `toml:"max_age"` // days
}
