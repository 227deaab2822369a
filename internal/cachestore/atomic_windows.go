//go:build windows

package cachestore

import (
	"fmt"
	"os"
)

// atomicReplace is non-atomic on Windows: os.Rename fails when targetPath
// already exists, so the existing target is backed up first. If the final
// rename fails, the backup is restored so the target is never left absent.
// This preserves documented, known behavior rather than papering over it.
func atomicReplace(tempPath, targetPath string) error {
	backupPath := targetPath + ".bak"

	_, statErr := os.Stat(targetPath)
	hadTarget := statErr == nil

	if hadTarget {
		if err := os.Rename(targetPath, backupPath); err != nil {
			return fmt.Errorf("cachestore: backup existing file: %w", err)
		}
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		if hadTarget {
			if rollbackErr := os.Rename(backupPath, targetPath); rollbackErr != nil {
				return fmt.Errorf("cachestore: replace failed (%v) and rollback failed: %w", err, rollbackErr)
			}
		}
		return fmt.Errorf("cachestore: replace file: %w", err)
	}

	if hadTarget {
		_ = os.Remove(backupPath)
	}
	return nil
}
