package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// CredentialKey is the fixed name of the slot holding the API key.
const CredentialKey = "API_KEY"

// ErrEmptyCredential is returned when saving an empty API key.
var ErrEmptyCredential = errors.New("credential must not be empty")

// CredentialStore persists a single bearer credential across sessions.
type CredentialStore interface {
	// Load returns the stored credential; ok is false when none is stored.
	Load() (token string, ok bool, err error)
	Save(token string) error
	Clear() error
}

// FileCredentialStore implements CredentialStore using a JSON file.
type FileCredentialStore struct {
	path string
}

type credentialFile struct {
	APIKey string `json:"API_KEY"`
}

// NewFileCredentialStore creates a FileCredentialStore with the given file path.
func NewFileCredentialStore(path string) *FileCredentialStore {
	return &FileCredentialStore{path: path}
}

// Path returns the credential file path.
func (s *FileCredentialStore) Path() string {
	return s.path
}

// Load reads the credential from the JSON file.
// A missing file means no credential.
func (s *FileCredentialStore) Load() (string, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}

	var f credentialFile
	if err := json.Unmarshal(data, &f); err != nil {
		return "", false, err
	}
	if f.APIKey == "" {
		return "", false, nil
	}
	return f.APIKey, true, nil
}

// Save writes the credential, creating the directory if needed.
// The file is only readable by the current user.
func (s *FileCredentialStore) Save(token string) error {
	if token == "" {
		return ErrEmptyCredential
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(credentialFile{APIKey: token}, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0600)
}

// Clear removes the credential file. Clearing an absent credential is not an error.
func (s *FileCredentialStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// DefaultCredentialPath returns the default credential path: ~/.config/bmr/credential.json
func DefaultCredentialPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "credential.json"), nil
}

// ConfigDir returns the directory holding all bmr state: ~/.config/bmr
func ConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bmr"), nil
}

// OpenCredentialStore opens the backend named in the config.
func OpenCredentialStore(cfg *Config) (CredentialStore, error) {
	switch cfg.CredentialBackend {
	case BackendSQLite:
		path, err := DefaultSQLitePath()
		if err != nil {
			return nil, err
		}
		return NewSQLiteCredentialStore(path)
	default:
		path, err := DefaultCredentialPath()
		if err != nil {
			return nil, err
		}
		return NewFileCredentialStore(path), nil
	}
}
