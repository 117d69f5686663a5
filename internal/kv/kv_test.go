package kv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/FL1CKfps/Harmony-player/internal/config"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	if _, ok, err := s.Load(KeyPlaylists); err != nil || ok {
		t.Fatalf("Load() on empty store = ok %v, err %v", ok, err)
	}

	if err := s.Save(KeyPlaylists, `[{"id":"p1"}]`); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Save(KeyPlaylists, `[]`); err != nil {
		t.Fatalf("Save() overwrite error = %v", err)
	}

	got, ok, err := s.Load(KeyPlaylists)
	if err != nil || !ok {
		t.Fatalf("Load() = ok %v, err %v", ok, err)
	}
	if got != "[]" {
		t.Errorf("Load() = %q, want %q", got, "[]")
	}
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatal(err)
	}
	exerciseStore(t, s)

	info, err := os.Stat(filepath.Join(dir, "data", KeyPlaylists+".json"))
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permissions = %o, want 0600", perm)
	}
}

func TestFileStoreRejectsPathKeys(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	if err := s.Save("../escape", "x"); err == nil {
		t.Error("Save() with path separator should fail")
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseStore(t, s)
	if s.Saves() != 2 {
		t.Errorf("Saves() = %d, want 2", s.Saves())
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "harmony.db"), nil)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestOpen(t *testing.T) {
	tests := []struct {
		backend string
		wantErr bool
	}{
		{"file", false},
		{"memory", false},
		{"sqlite", false},
		{"redis", true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			s, err := Open(config.StorageConfig{Backend: tt.backend, Path: t.TempDir()}, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if c, ok := s.(interface{ Close() error }); ok {
				c.Close()
			}
		})
	}
}
