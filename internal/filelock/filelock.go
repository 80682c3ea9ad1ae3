// Package filelock serialises access to the files shared between CLI runs:
// the translation cache and the offline submission store.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockPath returns the sidecar lock file guarding path.
func LockPath(path string) string {
	return path + ".lock"
}

// WithLock runs fn while holding the exclusive lock for path.
func WithLock(path string, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("filelock: create directory for %s: %w", path, err)
	}
	lock := flock.New(LockPath(path))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("filelock: lock %s: %w", path, err)
	}
	defer lock.Unlock()
	return fn()
}

// WithReadLock runs fn while holding the shared lock for path.
func WithReadLock(path string, fn func() error) error {
	lock := flock.New(LockPath(path))
	if err := lock.RLock(); err != nil {
		return fmt.Errorf("filelock: read lock %s: %w", path, err)
	}
	defer lock.Unlock()
	return fn()
}

// AtomicWrite writes data to a temporary file in the target directory and
// renames it over path.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("filelock: create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("filelock: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("filelock: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("filelock: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("filelock: close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("filelock: chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("filelock: rename to %s: %w", path, err)
	}
	committed = true
	return nil
}

// LockAndWrite combines WithLock and AtomicWrite.
func LockAndWrite(path string, data []byte) error {
	return WithLock(path, func() error {
		return AtomicWrite(path, data)
	})
}

// LockAndRead reads path under the shared lock. A missing file returns
// os.ErrNotExist wrapped.
func LockAndRead(path string) ([]byte, error) {
	var data []byte
	err := WithReadLock(path, func() error {
		var readErr error
		data, readErr = os.ReadFile(path)
		return readErr
	})
	return data, err
}
