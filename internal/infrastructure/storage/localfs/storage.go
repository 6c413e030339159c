// Package localfs parks uploaded rate sheets on local disk between the
// upload request and the import worker run.
package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if dir == "" {
		dir = "./data/ratesheets"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create rate sheet dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the sheet through a temp file and renames it into place, so a
// concurrently running import worker never observes a partial upload.
func (s *Store) Save(_ context.Context, key string, data io.Reader) error {
	if err := validKey(key); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp sheet file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		return fmt.Errorf("write sheet %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close sheet %q: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, key)); err != nil {
		return fmt.Errorf("publish sheet %q: %w", key, err)
	}
	return nil
}

func (s *Store) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, key))
	if err != nil {
		return nil, fmt.Errorf("open sheet %q: %w", key, err)
	}
	return f, nil
}

// Keys are "<uuid>_<sanitized filename>"; anything that could escape the
// sheet directory is rejected outright.
func validKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty sheet key")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("invalid sheet key %q", key)
	}
	return nil
}
