package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store persists frames by path. Read reports a genuinely absent frame via
// ErrNotFound; every other failure is a *StorageError. Write replaces the
// previous version atomically — a partially written frame must never be
// observable as the current version.
type Store interface {
	Read(path string) (*Frame, error)
	Write(path string, f *Frame) error
	Exists(path string) (bool, error)
}

// FileStore stores frames as CSV files on the local filesystem.
type FileStore struct{}

// NewFileStore creates a FileStore.
func NewFileStore() *FileStore { return &FileStore{} }

// Read loads the frame at path.
func (s *FileStore) Read(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, &StorageError{Op: "open", Path: path, Err: err}
	}
	defer file.Close()

	f, err := ReadCSV(file)
	if err != nil {
		return nil, &StorageError{Op: "read", Path: path, Err: err}
	}
	return f, nil
}

// Write persists the frame at path via temp file and rename, creating
// intermediate directories as needed.
func (s *FileStore) Write(path string, f *Frame) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &StorageError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return &StorageError{Op: "create temp", Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if err := f.WriteCSV(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &StorageError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &StorageError{Op: "close", Path: path, Err: err}
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &StorageError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

// Exists reports whether a frame is present at path.
func (s *FileStore) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, &StorageError{Op: "stat", Path: path, Err: err}
}
