package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, errors.New("upload directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// path keeps names inside the store directory.
func (s *LocalStore) path(name string) (string, error) {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || base != name {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return filepath.Join(s.dir, base), nil
}

func (s *LocalStore) Save(_ context.Context, name string, r io.Reader) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}

	dst, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(p)
		return fmt.Errorf("failed to save file: %w", err)
	}
	return dst.Close()
}

func (s *LocalStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

func (s *LocalStore) Delete(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}

	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotExist
	}
	return err
}
