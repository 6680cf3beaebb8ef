package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	perrors "github.com/matzehuels/parley/pkg/errors"
)

const ext = ".json"

// FileStore keeps each document as <dir>/<name>.json, the same file a
// player or the editor can open directly.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store rooted at dir, creating the directory if
// needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "file store: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeStore, err, "create %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory documents are kept in.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(name string) (string, error) {
	if err := perrors.ValidateDocumentName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name+ext), nil
}

// Get reads the document file.
func (s *FileStore) Get(ctx context.Context, name string) ([]byte, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, storeErr(err, "read", name)
	}
	return data, nil
}

// Put writes the document through a temporary file so readers never see a
// partial document.
func (s *FileStore) Put(ctx context.Context, name string, data []byte) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return storeErr(err, "write", name)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return storeErr(err, "write", name)
	}
	if err := tmp.Close(); err != nil {
		return storeErr(err, "write", name)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return storeErr(err, "write", name)
	}
	return nil
}

// Delete removes the document file.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return storeErr(err, "delete", name)
	}
	return nil
}

// List returns the names of the .json files in the directory.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeStore, err, "list %s", s.dir)
	}
	var names []string
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || !strings.HasSuffix(n, ext) || strings.HasPrefix(n, ".") {
			continue
		}
		names = append(names, strings.TrimSuffix(n, ext))
	}
	return sorted(names), nil
}

// Close does nothing.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) String() string { return fmt.Sprintf("file:%s", s.dir) }
