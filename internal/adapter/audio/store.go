// Package audio manages recordings on the local filesystem.
package audio

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/dreamjournal/internal/domain"
)

// Store reads and deletes recordings. Relative locations resolve against dir.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Open returns the recording at location. Returns domain.ErrNotFound if it is gone.
func (s *Store) Open(location string) (io.ReadCloser, error) {
	f, err := os.Open(s.resolve(location))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("audio %s: %w", location, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("audio %s: %w", location, err)
	}
	return f, nil
}

// Remove deletes the recording at location. A missing file is not an error.
func (s *Store) Remove(location string) error {
	err := os.Remove(s.resolve(location))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("audio %s: %w", location, err)
	}
	return nil
}

// Import copies src into the store under a fresh name that keeps the
// extension, and returns the new location.
func (s *Store) Import(src string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("audio import: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("audio import: %w", err)
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(src))
	dst := filepath.Join(s.dir, name)

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("audio import: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("audio import: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return "", fmt.Errorf("audio import: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("audio import: %w", err)
	}

	return dst, nil
}

func (s *Store) resolve(location string) string {
	if filepath.IsAbs(location) {
		return location
	}
	return filepath.Join(s.dir, location)
}
