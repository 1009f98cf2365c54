package storage_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nikbrunner/bmr/internal/storage"
)

// credentialStores returns one of each backend rooted in a temp directory.
func credentialStores(t *testing.T) map[string]storage.CredentialStore {
	t.Helper()
	tmpDir := t.TempDir()

	sqliteStore, err := storage.NewSQLiteCredentialStore(filepath.Join(tmpDir, "bmr.db"))
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]storage.CredentialStore{
		"file":   storage.NewFileCredentialStore(filepath.Join(tmpDir, "nested", "credential.json")),
		"sqlite": sqliteStore,
	}
}

func TestCredentialStore_AbsentByDefault(t *testing.T) {
	for name, s := range credentialStores(t) {
		t.Run(name, func(t *testing.T) {
			token, ok, err := s.Load()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok || token != "" {
				t.Errorf("expected no credential, got %q", token)
			}
		})
	}
}

func TestCredentialStore_SaveLoadClear(t *testing.T) {
	for name, s := range credentialStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Save("secret"); err != nil {
				t.Fatalf("failed to save: %v", err)
			}

			token, ok, err := s.Load()
			if err != nil || !ok || token != "secret" {
				t.Fatalf("expected secret, got %q ok=%v err=%v", token, ok, err)
			}

			// Overwrite keeps a single live value
			if err := s.Save("rotated"); err != nil {
				t.Fatalf("failed to overwrite: %v", err)
			}
			token, _, _ = s.Load()
			if token != "rotated" {
				t.Errorf("expected rotated, got %q", token)
			}

			if err := s.Clear(); err != nil {
				t.Fatalf("failed to clear: %v", err)
			}
			if _, ok, _ := s.Load(); ok {
				t.Error("expected credential to be cleared")
			}

			// Clearing twice is harmless
			if err := s.Clear(); err != nil {
				t.Errorf("second clear failed: %v", err)
			}
		})
	}
}

func TestCredentialStore_RejectsEmpty(t *testing.T) {
	for name, s := range credentialStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Save(""); !errors.Is(err, storage.ErrEmptyCredential) {
				t.Errorf("expected ErrEmptyCredential, got %v", err)
			}
		})
	}
}

func TestFileCredentialStore_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential.json")
	s := storage.NewFileCredentialStore(path)

	if err := s.Save("secret"); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("credential file was not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected mode 0600, got %o", perm)
	}
}

func TestSQLiteCredentialStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bmr.db")

	s, err := storage.NewSQLiteCredentialStore(path)
	if err != nil {
		t.Fatalf("failed to open: %v", err)
	}
	if err := s.Save("secret"); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	s.Close()

	reopened, err := storage.NewSQLiteCredentialStore(path)
	if err != nil {
		t.Fatalf("failed to reopen: %v", err)
	}
	defer reopened.Close()

	token, ok, err := reopened.Load()
	if err != nil || !ok || token != "secret" {
		t.Errorf("expected secret after reopen, got %q ok=%v err=%v", token, ok, err)
	}
}
