package kvstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// FileStore persists each key as a file under a base directory.
type FileStore struct {
	baseDir string
	limit   int64
}

// NewFileStore ensures the base directory exists and returns a handle.
func NewFileStore(baseDir string, limit int64) (*FileStore, error) {
	if baseDir == "" {
		baseDir = "./data"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &FileStore{baseDir: baseDir, limit: limit}, nil
}

// Get reads the file holding key.
func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	path, err := s.resolve(key)
	if err != nil {
		return "", false, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read storage file: %w", err)
	}
	return string(raw), true, nil
}

// Set writes value through a temporary file so readers never observe a partial write.
func (s *FileStore) Set(_ context.Context, key, value string) error {
	if exceeds(s.limit, len(value)) {
		return ErrQuotaExceeded
	}
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.baseDir, ".tmp-*")
	if err != nil {
		return writeError("create storage file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		return writeError("write storage file", err)
	}
	if err := tmp.Close(); err != nil {
		return writeError("close storage file", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return writeError("replace storage file", err)
	}
	return nil
}

// Remove deletes the file holding key if present.
func (s *FileStore) Remove(_ context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete storage file: %w", err)
	}
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}

// Path exposes the file backing key (useful for debugging).
func (s *FileStore) Path(key string) string {
	path, _ := s.resolve(key)
	return path
}

func (s *FileStore) resolve(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.baseDir, key+".json"), nil
}

// writeError maps a full disk to ErrQuotaExceeded; the cause stays reachable through errors.Is.
func writeError(op string, err error) error {
	if errors.Is(err, syscall.ENOSPC) {
		return fmt.Errorf("%s: %w: %w", op, ErrQuotaExceeded, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
