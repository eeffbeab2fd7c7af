package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	pkgerrors "github.com/matzehuels/orgchart/pkg/errors"
)

// FileStore is a file-based store for CLI applications.
// Each key is stored as <key>.json in a config directory, so a saved chart
// can be inspected and edited by hand.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store in the given directory.
// If baseDir is empty, defaults to ~/.config/orgchart/charts/.
// The directory will be created if it doesn't exist.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "orgchart", "charts")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Get reads the file for key.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path, err := s.Path(key)
	if err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	return data, true, nil
}

// Set writes data for key. The write goes to a temporary file that is
// renamed into place, so a crash never leaves a half-written snapshot.
func (s *FileStore) Set(ctx context.Context, key string, data []byte) error {
	path, err := s.Path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.baseDir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// Delete removes the file for key.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	path, err := s.Path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// Close does nothing for file store.
func (s *FileStore) Close() error { return nil }

// Backend returns "file".
func (s *FileStore) Backend() string { return BackendFile }

// Dir returns the base directory.
func (s *FileStore) Dir() string { return s.baseDir }

// Path returns the file path for key.
// Returns an error if the key is not a safe file name.
func (s *FileStore) Path(key string) (string, error) {
	if err := pkgerrors.ValidateStorageKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, key+".json"), nil
}

var _ Store = (*FileStore)(nil)
