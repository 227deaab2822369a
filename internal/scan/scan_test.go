package scan

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

	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("hot.go", "package a\n\nfunc f() {\n\tif true {\n\t\tfor i := 0; i < 1; i++ {\n\t\t}\n\t}\n}\n")
	run("add", "-A")
	run("commit", "-m", "init")

	write("hot.go", "package a\n\nfunc f() {\n\tif true {\n\t\tfor i := 0; i < 1; i++ {\n\t\t\tif i > 0 && i < 5 {\n\t\t\t}\n\t\t}\n\t}\n}\n")
	run("add", "-A")
	run("commit", "-m", "second touch")

	write("cold.go", "package a\n\nfunc g() {}\n")
	run("add", "-A")
	run("commit", "-m", "add cold file")
}

func TestSignalsRanksChurnedFileHighest(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)

	signals, err := Signals(context.Background(), dir, []string{".go"})
	require.NoError(t, err)
	require.Len(t, signals, 2)

	byPath := map[string]float64{}
	for _, s := range signals {
		byPath["churn:"+s.Path] = s.Churn
	}
	assert.Greater(t, byPath["churn:hot.go"], byPath["churn:cold.go"])
}

func TestSourceSnippetsReturnsNumberedLines(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)

	src := Source{Root: dir}
	snippets := src.Snippets("cold.go")
	require.NotEmpty(t, snippets)
	assert.Equal(t, 1, snippets[0].StartLine)
	assert.Contains(t, snippets[0].Text, "1\tpackage a")
}

func TestSourceSnippetsMissingFileReturnsNil(t *testing.T) {
	src := Source{Root: t.TempDir()}
	assert.Nil(t, src.Snippets("missing.go"))
}
