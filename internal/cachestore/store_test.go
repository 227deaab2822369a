package cachestore

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initGitRepo(t *testing.T, dir string) {
	t.Helper()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		require.NoError(t, cmd.Run())
	}
	run("init")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "test")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n"), 0o644))
	run("add", "-A")
	run("commit", "-m", "init")
}

func TestOpenCreatesLayoutAndGitignore(t *testing.T) {
	dir := t.TempDir()
	initGitRepo(t, dir)

	s, err := Open(dir, ".cosmos", 5*time.Second)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".cosmos", "v2"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(data), ".cosmos/")

	_ = s
}

func TestWelcomeSeenFlag(t *testing.T) {
	dir := t.TempDir()
	initGitRepo(t, dir)
	s, err := Open(dir, ".cosmos", 5*time.Second)
	require.NoError(t, err)

	assert.False(t, s.WelcomeSeen())
	require.NoError(t, s.MarkWelcomeSeen())
	assert.True(t, s.WelcomeSeen())
}

func TestResetRemovesOnlyTargetedCategory(t *testing.T) {
	dir := t.TempDir()
	initGitRepo(t, dir)
	s, err := Open(dir, ".cosmos", 5*time.Second)
	require.NoError(t, err)

	require.NoError(t, s.SaveGlossary(DomainGlossary{"foo": "bar"}))
	require.NoError(t, s.SaveMemory(RepoMemory{"k": "v"}))

	require.NoError(t, s.Reset(CategoryGlossary))

	_, ok := s.LoadGlossary()
	assert.False(t, ok, "glossary should be reset")

	mem, ok := s.LoadMemory()
	assert.True(t, ok, "memory should survive an unrelated reset")
	assert.Equal(t, "v", mem["k"])
}

func TestValidateIndexFastPathHitAndMiss(t *testing.T) {
	dir := t.TempDir()
	initGitRepo(t, dir)
	s, err := Open(dir, ".cosmos", 5*time.Second)
	require.NoError(t, err)

	head, clean, err := gitHeadAndCleanliness(dir)
	require.NoError(t, err)
	require.True(t, clean)

	meta := IndexMeta{Root: dir, GitHead: head, FileCount: 1}
	idx := CodebaseIndex{Root: dir, Files: map[string]FileRecord{}}

	assert.True(t, s.ValidateIndex(idx, meta, 2000))

	// Mutate the tree: the fast path now misses, and since FileCount (1) is
	// under threshold the slow path runs. It only rehashes files listed in
	// idx, so list the real file with a stale hash to force a slow-path miss.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n\nfunc X() {}\n"), 0o644))
	idxWithFile := CodebaseIndex{Root: dir, Files: map[string]FileRecord{
		"a.go": {Path: "a.go", ContentHash: "deadbeef"},
	}}
	assert.False(t, s.ValidateIndex(idxWithFile, meta, 2000))
}

func TestValidateIndexOverThresholdTakesFastPathOnly(t *testing.T) {
	dir := t.TempDir()
	initGitRepo(t, dir)
	s, err := Open(dir, ".cosmos", 5*time.Second)
	require.NoError(t, err)

	head, _, err := gitHeadAndCleanliness(dir)
	require.NoError(t, err)

	// Over threshold with a bogus file hash that would fail the slow path --
	// but the fast path should still hit since HEAD matches and tree is clean.
	meta := IndexMeta{Root: dir, GitHead: head, FileCount: 5000}
	idx := CodebaseIndex{Root: dir, Files: map[string]FileRecord{
		"a.go": {Path: "a.go", ContentHash: "wrong"},
	}}
	assert.True(t, s.ValidateIndex(idx, meta, 2000))
}

func TestJSONLAppendAndTailOrder(t *testing.T) {
	dir := t.TempDir()
	initGitRepo(t, dir)
	s, err := Open(dir, ".cosmos", 5*time.Second)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.AppendPipelineMetric(PipelineMetricRecord{
			RunID: "run-1", Stage: "generate", LatencyMs: int64(i),
		}))
	}

	recent := s.TailPipelineMetrics(3)
	require.Len(t, recent, 3)
	assert.Equal(t, int64(2), recent[0].LatencyMs)
	assert.Equal(t, int64(4), recent[2].LatencyMs)
}

func TestTailJSONLSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	initGitRepo(t, dir)
	s, err := Open(dir, ".cosmos", 5*time.Second)
	require.NoError(t, err)

	path := s.path(filePipelineMetrics)
	require.NoError(t, os.WriteFile(path, []byte("{not json}\n{\"run_id\":\"r1\",\"stage\":\"x\",\"latency_ms\":7}\n"), 0o644))

	recs := s.TailPipelineMetrics(10)
	require.Len(t, recs, 1)
	assert.Equal(t, "r1", recs[0].RunID)
}

func TestNormalizePathIdempotent(t *testing.T) {
	root := "/repo"
	cases := []string{
		"/repo/src/a.go",
		"./src/a.go",
		"src\\a.go",
		"src/a.go",
	}
	for _, c := range cases {
		once := NormalizePath(c, root)
		twice := NormalizePath(once, root)
		assert.Equal(t, once, twice, "normalize should be idempotent for %q", c)
		assert.False(t, filepath.IsAbs(once))
	}
}
