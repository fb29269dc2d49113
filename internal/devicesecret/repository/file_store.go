package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	validation "github.com/jellydator/validation"

	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
	apperrors "github.com/allisson/devicesecret/internal/errors"
	customValidation "github.com/allisson/devicesecret/internal/validation"
)

const (
	fileStoreDirMode  = 0o700
	fileStoreFileMode = 0o600
)

// FileStore keeps each value in its own file at <dir>/<namespace>/<key>.
//
// Directories are created with mode 0700 and files with 0600. Writes go to a temporary
// file in the same directory which is synced and renamed over the target, so a reader
// sees either the old value or the new one.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir. The directory is created on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Get reads the value stored under namespace/key.
func (f *FileStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	path, err := f.path(namespace, key)
	if err != nil {
		return nil, err
	}

	value, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, deviceDomain.ErrKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to read value")
	}
	return value, nil
}

// Put atomically replaces the value stored under namespace/key.
func (f *FileStore) Put(ctx context.Context, namespace, key string, value []byte) error {
	path, err := f.path(namespace, key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, fileStoreDirMode); err != nil {
		return apperrors.Wrap(err, "failed to create namespace directory")
	}

	tmp, err := os.CreateTemp(dir, "."+key+".*.tmp")
	if err != nil {
		return apperrors.Wrap(err, "failed to create temporary file")
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(fileStoreFileMode); err != nil {
		_ = tmp.Close()
		return apperrors.Wrap(err, "failed to set file mode")
	}
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return apperrors.Wrap(err, "failed to write value")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return apperrors.Wrap(err, "failed to sync value")
	}
	if err := tmp.Close(); err != nil {
		return apperrors.Wrap(err, "failed to close temporary file")
	}

	if err := os.Rename(tmpName, path); err != nil {
		return apperrors.Wrap(err, "failed to replace value")
	}
	return nil
}

// path validates namespace and key so neither can escape the base directory.
func (f *FileStore) path(namespace, key string) (string, error) {
	for _, name := range []string{namespace, key} {
		if err := validation.Validate(name, validation.Required, customValidation.Identifier); err != nil {
			return "", fmt.Errorf("%w: %q: %v", apperrors.ErrInvalidInput, name, err)
		}
	}
	return filepath.Join(f.dir, namespace, key), nil
}
