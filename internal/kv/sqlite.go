package kv

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/FL1CKfps/Harmony-player/internal/logging"
)

// SQLiteStore keeps values in a single-table SQLite database.
// It is safe for concurrent use because the underlying *sql.DB is.
type SQLiteStore struct {
	conn *sql.DB
	log  *zap.Logger

	loadStmt *sql.Stmt
	saveStmt *sql.Stmt
}

// NewSQLiteStore opens (or creates) the database at path. Callers should
// Close it when finished.
func NewSQLiteStore(path string, log *zap.Logger) (*SQLiteStore, error) {
	log = logging.OrNop(log)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", path+"?cache=shared&mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(15 * time.Minute)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA temp_store=memory;",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			log.Warn("failed to set pragma", zap.String("pragma", pragma), zap.Error(err))
		}
	}

	const schema = `CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	s := &SQLiteStore{conn: conn, log: log}
	if s.loadStmt, err = conn.Prepare(`SELECT value FROM kv WHERE key = ?`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}
	s.saveStmt, err = conn.Prepare(`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if err != nil {
		s.loadStmt.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Load(key string) (string, bool, error) {
	var value string
	err := s.loadStmt.QueryRow(key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Save(key, value string) error {
	if _, err := s.saveStmt.Exec(key, value, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	s.log.Debug("saved key", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

// Close releases the prepared statements and the connection.
func (s *SQLiteStore) Close() error {
	s.loadStmt.Close()
	s.saveStmt.Close()
	return s.conn.Close()
}
