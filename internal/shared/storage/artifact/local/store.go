package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"docsearch-backend/internal/shared/storage/artifact"
)

// Store keeps artifacts as plain files under a fixed root directory.
type Store struct {
	root string
}

// New creates a filesystem store rooted at root.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute storage root.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) Put(ctx context.Context, id string, raw []byte, text string) (artifact.Handles, error) {
	if err := artifact.ValidateID(id); err != nil {
		return artifact.Handles{}, err
	}
	if err := ctx.Err(); err != nil {
		return artifact.Handles{}, err
	}

	handles := artifact.Handles{Raw: artifact.RawKey(id), Text: artifact.TextKey(id)}
	if err := s.write(handles.Raw, raw); err != nil {
		return artifact.Handles{}, err
	}
	if err := s.write(handles.Text, []byte(text)); err != nil {
		_ = os.Remove(s.path(handles.Raw))
		return artifact.Handles{}, err
	}
	return handles, nil
}

func (s *Store) Get(ctx context.Context, handle string) ([]byte, error) {
	if err := artifact.ValidateHandle(handle); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(handle))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, artifact.ErrNotFound
	}
	if err != nil {
		return nil, &artifact.StorageError{Op: "get", Handle: handle, Err: err}
	}
	return data, nil
}

func (s *Store) Delete(ctx context.Context, handle string) error {
	if err := artifact.ValidateHandle(handle); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.path(handle))
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return &artifact.StorageError{Op: "delete", Handle: handle, Err: err}
}

// write stages data in a temp file beside the target and renames it into place.
func (s *Store) write(handle string, data []byte) error {
	target := s.path(handle)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &artifact.StorageError{Op: "put", Handle: handle, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return &artifact.StorageError{Op: "put", Handle: handle, Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &artifact.StorageError{Op: "put", Handle: handle, Err: cause}
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &artifact.StorageError{Op: "put", Handle: handle, Err: err}
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return &artifact.StorageError{Op: "put", Handle: handle, Err: err}
	}
	return nil
}

func (s *Store) path(handle string) string {
	return filepath.Join(s.root, filepath.FromSlash(handle))
}

var _ artifact.Store = (*Store)(nil)
