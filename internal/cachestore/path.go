package cachestore

import (
	"path/filepath"
	"strings"
)

// NormalizePath converts an absolute or mixed-separator path into a
// repo-relative, forward-slash path. Idempotent: normalizing an
// already-normalized path returns it unchanged.
func NormalizePath(p, repoRoot string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	repoRoot = strings.ReplaceAll(repoRoot, "\\", "/")

	if repoRoot != "" && filepath.IsAbs(filepath.FromSlash(p)) {
		if rel, err := filepath.Rel(filepath.FromSlash(repoRoot), filepath.FromSlash(p)); err == nil {
			p = filepath.ToSlash(rel)
		}
	}

	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}

	return p
}
