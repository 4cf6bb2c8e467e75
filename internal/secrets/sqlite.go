package secrets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS secrets (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

const (
	defaultSQLiteDir = ".toolbelt-mcp"
	defaultSQLiteDB  = "toolbelt.db"
)

// SQLiteConfig configures the SQLite-backed secret store.
type SQLiteConfig struct {
	Path string
	// Scope controls encryption key derivation; defaults to Path.
	Scope string
}

// SQLiteStore persists secrets in SQLite, encrypted at rest.
type SQLiteStore struct {
	db    *sql.DB
	codec *secretCodec
}

// DefaultPath returns the default SQLite path under the user's home.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("secrets: resolve user home: %w", err)
	}
	return filepath.Join(home, defaultSQLiteDir, defaultSQLiteDB), nil
}

// NewSQLiteStore opens (or creates) a SQLite-backed secret store.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("secrets: sqlite path is required")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("secrets: create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("secrets: sqlite open: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("secrets: sqlite set WAL mode: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("secrets: sqlite create schema: %w", err)
	}

	scope := cfg.Scope
	if strings.TrimSpace(scope) == "" {
		scope = cfg.Path
	}
	codec, err := newSecretCodec(scope)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("secrets: init codec: %w", err)
	}

	return &SQLiteStore{db: db, codec: codec}, nil
}

// Set encrypts and upserts the value for the key.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return errors.New("secrets: sqlite store is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("secrets: key is required")
	}

	encrypted, err := s.codec.Encrypt(value)
	if err != nil {
		return fmt.Errorf("secrets: encrypt value: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO secrets (key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
	value = excluded.value,
	updated_at = excluded.updated_at`,
		key, encrypted, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("secrets: sqlite upsert: %w", err)
	}
	return nil
}

// Get retrieves and decrypts the value for the key, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s == nil || s.db == nil {
		return "", errors.New("secrets: sqlite store is nil")
	}

	var stored string
	err := s.db.QueryRowContext(ctx, `
SELECT value FROM secrets WHERE key = ?`, key).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("secrets: sqlite select: %w", err)
	}

	value, err := s.codec.Decrypt(stored)
	if err != nil {
		return "", fmt.Errorf("secrets: decrypt value: %w", err)
	}
	return value, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
