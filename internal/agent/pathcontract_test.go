package agent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRepoPathRejectsAbsolute(t *testing.T) {
	_, err := resolveRepoPath(t.TempDir(), "/etc/passwd")
	assert.ErrorContains(t, err, "path_contract_violation")
}

func TestResolveRepoPathRejectsTraversal(t *testing.T) {
	_, err := resolveRepoPath(t.TempDir(), "../secret.txt")
	assert.ErrorContains(t, err, "path_contract_violation")
}

func TestResolveRepoPathAcceptsRelative(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	abs, err := resolveRepoPath(root, "src/main.go")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "src", "main.go"), abs)
}

func TestResolveRepoPathRejectsSymlink(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "real.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "link")))

	_, err := resolveRepoPath(root, "link/real.txt")
	assert.ErrorContains(t, err, "path_contract_violation")
}
