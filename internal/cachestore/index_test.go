package cachestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadIndexServesCachedSnapshotAfterSave(t *testing.T) {
	dir := t.TempDir()
	initGitRepo(t, dir)
	s, err := Open(dir, ".cosmos", 5*time.Second)
	require.NoError(t, err)

	idx := CodebaseIndex{Root: dir, Files: map[string]FileRecord{"a.go": {Path: "a.go"}}}
	meta := IndexMeta{Root: dir, FileCount: 1}
	require.NoError(t, s.SaveIndex(idx, meta))

	// Corrupt the on-disk file; LoadIndex should still serve the in-memory
	// snapshot populated by SaveIndex rather than re-reading the broken file.
	require.NoError(t, os.WriteFile(s.path(fileIndex), []byte("not json"), 0o600))

	got, gotMeta, ok := s.LoadIndex()
	require.True(t, ok)
	require.Equal(t, idx, got)
	require.Equal(t, meta, gotMeta)
}

func TestInvalidateIndexCacheForcesDiskRead(t *testing.T) {
	dir := t.TempDir()
	initGitRepo(t, dir)
	s, err := Open(dir, ".cosmos", 5*time.Second)
	require.NoError(t, err)

	idx := CodebaseIndex{Root: dir, Files: map[string]FileRecord{"a.go": {Path: "a.go"}}}
	require.NoError(t, s.SaveIndex(idx, IndexMeta{Root: dir, FileCount: 1}))

	s.InvalidateIndexCache()
	require.NoError(t, os.WriteFile(s.path(fileIndex), []byte("not json"), 0o600))

	_, _, ok := s.LoadIndex()
	require.False(t, ok, "expected disk re-read to fail on corrupted index")
}

func TestResetIndexCategoryInvalidatesCache(t *testing.T) {
	dir := t.TempDir()
	initGitRepo(t, dir)
	s, err := Open(dir, ".cosmos", 5*time.Second)
	require.NoError(t, err)

	idx := CodebaseIndex{Root: dir, Files: map[string]FileRecord{"a.go": {Path: "a.go"}}}
	require.NoError(t, s.SaveIndex(idx, IndexMeta{Root: dir, FileCount: 1}))
	require.NoError(t, s.Reset(CategoryIndex))

	_, _, ok := s.LoadIndex()
	require.False(t, ok, "expected cache invalidation plus file removal to miss")
}

func TestIndexWatcherInvalidatesCacheOnExternalWrite(t *testing.T) {
	dir := t.TempDir()
	initGitRepo(t, dir)
	s, err := Open(dir, ".cosmos", 5*time.Second)
	require.NoError(t, err)

	idx := CodebaseIndex{Root: dir, Files: map[string]FileRecord{"a.go": {Path: "a.go"}}}
	require.NoError(t, s.SaveIndex(idx, IndexMeta{Root: dir, FileCount: 1}))

	watcher, err := NewIndexWatcher(s)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watcher.Start(ctx)
	defer watcher.Stop()

	// Simulate another process rewriting the index file on disk.
	other := CodebaseIndex{Root: dir, Files: map[string]FileRecord{"b.go": {Path: "b.go"}}}
	require.NoError(t, s.writeJSON(fileIndex, other))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.cacheMu.RLock()
		ok := s.cachedOK
		s.cacheMu.RUnlock()
		if !ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected watcher to invalidate in-memory cache within 2s, path=%s", filepath.Join(dir, ".cosmos", "v2", fileIndex))
}
