package vcs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T, dir string) {
	t.Helper()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		require.NoError(t, cmd.Run())
	}
	run("init", "-b", "main")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "test")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n"), 0o644))
	run("add", "-A")
	run("commit", "-m", "init")
}

func TestCurrentBranch(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	r := Open(dir)

	branch, err := r.CurrentBranch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "main", branch)
}

func TestCheckoutCreatesAndSwitchesBranch(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	r := Open(dir)
	ctx := context.Background()

	require.NoError(t, r.Checkout(ctx, "cosmos/work", true))
	branch, err := r.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cosmos/work", branch)

	require.NoError(t, r.Checkout(ctx, "main", false))
	branch, err = r.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "main", branch)
}

func TestStatusReportsUnstagedAndUntracked(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	r := Open(dir)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n\nfunc f() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.go"), []byte("package a\n"), 0o644))

	st, err := r.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.Clean())
	assert.Contains(t, st.Unstaged, "a.go")
	assert.Contains(t, st.Untracked, "b.go")
}

func TestRestoreFileDiscardsChange(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	r := Open(dir)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n\nfunc f() {}\n"), 0o644))
	require.NoError(t, r.RestoreFile(ctx, "a.go"))

	data, err := os.ReadFile(filepath.Join(dir, "a.go"))
	require.NoError(t, err)
	assert.Equal(t, "package a\n", string(data))
}

func TestCommitAllAndStatusClean(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	r := Open(dir)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.go"), []byte("package a\n"), 0o644))
	require.NoError(t, r.CommitAll(ctx, "add c.go"))

	st, err := r.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Clean())
}

func TestDiscardAllRemovesUntrackedAndResetsTracked(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	r := Open(dir)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n\nfunc f() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "untracked.go"), []byte("package a\n"), 0o644))

	require.NoError(t, r.DiscardAll(ctx))

	data, err := os.ReadFile(filepath.Join(dir, "a.go"))
	require.NoError(t, err)
	assert.Equal(t, "package a\n", string(data))

	_, err = os.Stat(filepath.Join(dir, "untracked.go"))
	assert.True(t, os.IsNotExist(err))
}

func TestMainBranchFallsBackToLocalMain(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	r := Open(dir)

	branch, err := r.MainBranch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "main", branch)
}
