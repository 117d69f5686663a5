// Package kv persists the library as string values under fixed keys.
package kv

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/FL1CKfps/Harmony-player/internal/config"
)

// Keys under which the store persists its library.
const (
	KeyPlaylists      = "harmony_playlists"
	KeyLikedSongs     = "harmony_liked_songs"
	KeyRecentlyPlayed = "harmony_recently_played"
	KeyUserName       = "harmony_user_name"
)

// Store is a string key-value store.
type Store interface {
	// Load returns the value for key. ok is false when nothing was saved.
	Load(key string) (value string, ok bool, err error)
	Save(key, value string) error
}

// Open returns the store selected by cfg.Backend.
func Open(cfg config.StorageConfig, log *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileStore(cfg.Path)
	case "sqlite":
		return NewSQLiteStore(filepath.Join(cfg.Path, "harmony.db"), log)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
