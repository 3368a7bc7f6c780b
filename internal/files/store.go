package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrInvalidName indicates a filename that does not survive
// sanitization unchanged and therefore cannot name a stored file.
var ErrInvalidName = errors.New("invalid stored filename")

// ErrFileNotFound indicates that no stored file exists under the name.
var ErrFileNotFound = errors.New("stored file not found")

// Store owns the upload directory. It is the only component that
// creates or deletes files there; the document workflow goes through
// it for every filesystem effect.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed and returns a store
// scoped to it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &Store{dir: dir}, nil
}

// Dir returns the upload directory path.
func (s *Store) Dir() string {
	return s.dir
}

// ResolveUniqueName resolves a collision-free stored name for the
// requested filename within the store's directory.
func (s *Store) ResolveUniqueName(requested string) (string, error) {
	return ResolveUniqueName(s.dir, requested)
}

// Save writes the reader's content to a new file under the stored
// name. The file is created with O_EXCL: if two racing uploads were
// resolved to the same name, the second write fails instead of
// silently overwriting the first.
func (s *Store) Save(name string, r io.Reader) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", name, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("failed to write file %s: %w", name, err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to close file %s: %w", name, err)
	}

	return nil
}

// Remove deletes a stored file. A missing file is not an error: by the
// time cleanup runs the invariant being protected (no dangling
// metadata) is already satisfied.
func (s *Store) Remove(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file %s: %w", name, err)
	}

	return nil
}

// Path returns the on-disk path of an existing stored file. Unknown
// names map to ErrFileNotFound; names that could escape the directory
// are rejected with ErrInvalidName before touching the filesystem.
func (s *Store) Path(name string) (string, error) {
	path, err := s.path(name)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrFileNotFound
		}
		return "", fmt.Errorf("failed to stat file %s: %w", name, err)
	}
	if info.IsDir() {
		return "", ErrFileNotFound
	}

	return path, nil
}

// path validates the name and joins it onto the directory. Only names
// that are their own sanitized form are accepted, which rules out
// separators and dot-dot references.
func (s *Store) path(name string) (string, error) {
	if name == "" || name != Sanitize(name) {
		return "", ErrInvalidName
	}

	return filepath.Join(s.dir, name), nil
}
