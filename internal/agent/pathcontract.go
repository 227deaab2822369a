package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// resolveRepoPath enforces the tool path contract: the path must be
// repo-relative, must not escape the repo root via "..", must not be
// absolute, and must not traverse a symlink. It returns the absolute path
// on disk for the caller to use.
func resolveRepoPath(repoRoot, rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("path_contract_violation: empty path")
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("path_contract_violation: absolute path %q not allowed", rel)
	}

	clean := filepath.Clean(filepath.FromSlash(rel))
	for _, part := range strings.Split(clean, string(filepath.Separator)) {
		if part == ".." {
			return "", fmt.Errorf("path_contract_violation: path %q escapes repo root", rel)
		}
	}

	abs := filepath.Join(repoRoot, clean)
	if err := rejectSymlinkTraversal(repoRoot, abs); err != nil {
		return "", err
	}
	return abs, nil
}

// rejectSymlinkTraversal walks from repoRoot down to abs, failing if any
// intermediate component is a symlink.
func rejectSymlinkTraversal(repoRoot, abs string) error {
	rel, err := filepath.Rel(repoRoot, abs)
	if err != nil {
		return fmt.Errorf("path_contract_violation: %w", err)
	}

	current := repoRoot
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if part == "." || part == "" {
			continue
		}
		current = filepath.Join(current, part)
		info, err := os.Lstat(current)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("path_contract_violation: %w", err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("path_contract_violation: symlink encountered at %q", part)
		}
	}
	return nil
}
