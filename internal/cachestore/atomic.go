package cachestore

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeFileAtomic replaces path's contents with data: write a sibling temp
// file, fsync it, then rename over the target. Rename-over-existing is
// atomic on POSIX filesystems, so readers never observe a torn file.
func writeFileAtomic(path string, data []byte, mode os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cachestore: create directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, ".tmp-*.cosmos")
	if err != nil {
		return fmt.Errorf("cachestore: create temp file: %w", err)
	}
	tempPath := tempFile.Name()
	cleanup := true
	defer func() {
		_ = tempFile.Close()
		if cleanup {
			_ = os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("cachestore: write temp file: %w", err)
	}
	if err := tempFile.Chmod(mode); err != nil {
		return fmt.Errorf("cachestore: chmod temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("cachestore: fsync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("cachestore: close temp file: %w", err)
	}

	if err := atomicReplace(tempPath, path); err != nil {
		return err
	}
	if err := syncDirectory(dir); err != nil {
		return err
	}

	cleanup = false
	return nil
}

// syncDirectory fsyncs a directory so a rename survives a crash. Best-effort
// on platforms where directory fsync is unsupported or unnecessary.
func syncDirectory(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return nil
	}
	defer f.Close()
	_ = f.Sync()
	return nil
}
