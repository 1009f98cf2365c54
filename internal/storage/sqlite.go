package storage

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteCredentialStore implements CredentialStore using a SQLite database.
type SQLiteCredentialStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteCredentialStore opens (and migrates) the database at path.
func NewSQLiteCredentialStore(path string) (*SQLiteCredentialStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLiteCredentialStore{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteCredentialStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteCredentialStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteCredentialStore) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the key-value settings table.
func (s *SQLiteCredentialStore) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY NOT NULL,
			value TEXT NOT NULL
		);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load reads the credential row.
func (s *SQLiteCredentialStore) Load() (string, bool, error) {
	var token string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", CredentialKey).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return token, token != "", nil
}

// Save upserts the credential row.
func (s *SQLiteCredentialStore) Save(token string) error {
	if token == "" {
		return ErrEmptyCredential
	}
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, CredentialKey, token)
	return err
}

// Clear deletes the credential row.
func (s *SQLiteCredentialStore) Clear() error {
	_, err := s.db.Exec("DELETE FROM settings WHERE key = ?", CredentialKey)
	return err
}

// DefaultSQLitePath returns the default SQLite database path: ~/.config/bmr/bmr.db
func DefaultSQLitePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bmr.db"), nil
}
