//go:build !windows

package cachestore

import "os"

// atomicReplace renames tempPath over targetPath. On POSIX filesystems
// rename-over-existing is itself atomic, so no backup step is needed.
func atomicReplace(tempPath, targetPath string) error {
	return os.Rename(tempPath, targetPath)
}
