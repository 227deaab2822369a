package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"cosmos/internal/config"
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

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	fn()

	_ = w.Close()
	os.Stdout = origOut
	return <-done
}

func TestRunScanReportsFileCount(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	cfg = config.DefaultConfig()

	output := captureOutput(t, func() {
		require.NoError(t, runScan(context.Background(), dir))
	})
	require.Contains(t, output, "scanned 1 files")
}

func TestRunShipRequiresMessage(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	err := runShip(context.Background(), dir, "")
	require.Error(t, err)
}

func TestRunShipRejectsCleanTree(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	err := runShip(context.Background(), dir, "a commit message")
	require.Error(t, err)
}
