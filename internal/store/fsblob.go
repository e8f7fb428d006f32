package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FSBlobStore stores document bytes as flat files under a base directory,
// one file per reference. References are uuids generated by the service, so
// no path sanitization beyond Base is needed.
type FSBlobStore struct {
	dir string
}

func NewFSBlobStore(dir string) (*FSBlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FSBlobStore{dir: dir}, nil
}

func (s *FSBlobStore) path(ref string) string {
	return filepath.Join(s.dir, filepath.Base(ref)+".pdf")
}

func (s *FSBlobStore) Put(ctx context.Context, ref string, data []byte) error {
	if err := os.WriteFile(s.path(ref), data, 0o644); err != nil {
		return fmt.Errorf("write blob: %w", err)
	}
	return nil
}

func (s *FSBlobStore) Get(ctx context.Context, ref string) ([]byte, error) {
	data, err := os.ReadFile(s.path(ref))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

func (s *FSBlobStore) Delete(ctx context.Context, ref string) error {
	err := os.Remove(s.path(ref))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}
