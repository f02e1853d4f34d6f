// Package local is the on-host fallback store. Whole collections are kept as
// JSON arrays under fixed keys of a blob area.
package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Blobs is a persistent string area keyed by name.
type Blobs interface {
	// ReadBlob returns the value under key and whether it exists.
	ReadBlob(ctx context.Context, key string) (string, bool, error)
	WriteBlob(ctx context.Context, key, value string) error
	RemoveKeys(ctx context.Context, keys ...string) error
}

const (
	fileModeForDirs  os.FileMode = 0o755
	fileModeForFiles os.FileMode = 0o600
	blobExt                      = ".json"
	tempPrefix                   = ".tmp-"
)

// FileBlobs stores one file per key under a directory. Writes go to a temp
// file in the same directory and are renamed into place.
type FileBlobs struct {
	dir string
}

// NewFileBlobs creates dir if needed.
func NewFileBlobs(dir string) (*FileBlobs, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("local store directory is empty")
	}
	if err := os.MkdirAll(dir, fileModeForDirs); err != nil {
		return nil, fmt.Errorf("failed to create local store directory: %w", err)
	}
	return &FileBlobs{dir: dir}, nil
}

// Dir returns the backing directory.
func (b *FileBlobs) Dir() string {
	return b.dir
}

func (b *FileBlobs) ReadBlob(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	path, err := b.path(key)
	if err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return string(data), true, nil
}

func (b *FileBlobs) WriteBlob(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := b.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(b.dir, tempPrefix+key+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp blob: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	if err := tmp.Chmod(fileModeForFiles); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to chmod blob %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close blob %s: %w", key, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace blob %s: %w", key, err)
	}
	return nil
}

func (b *FileBlobs) RemoveKeys(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var errs []error
	for _, key := range keys {
		path, err := b.path(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to remove blob %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (b *FileBlobs) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(b.dir, key+blobExt), nil
}
