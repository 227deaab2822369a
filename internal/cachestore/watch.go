package cachestore

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"cosmos/internal/logging"
)

// IndexWatcher watches the store's active cache directory for changes to the
// index file made by another cosmos process and invalidates the in-memory
// snapshot so the next LoadIndex call re-reads from disk instead of serving
// stale data.
type IndexWatcher struct {
	store   *Store
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewIndexWatcher opens an fsnotify watch on the store's cache directory.
func NewIndexWatcher(s *Store) (*IndexWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(s.activeDir); err != nil {
		w.Close()
		return nil, err
	}
	return &IndexWatcher{
		store:   s,
		watcher: w,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start runs the watch loop in a goroutine. Non-blocking.
func (iw *IndexWatcher) Start(ctx context.Context) {
	go iw.run(ctx)
}

// Stop halts the watch loop and releases the underlying fsnotify watcher.
func (iw *IndexWatcher) Stop() {
	close(iw.stopCh)
	<-iw.doneCh
	iw.watcher.Close()
}

func (iw *IndexWatcher) run(ctx context.Context) {
	defer close(iw.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case <-iw.stopCh:
			return
		case event, ok := <-iw.watcher.Events:
			if !ok {
				return
			}
			iw.handleEvent(event)
		case err, ok := <-iw.watcher.Errors:
			if !ok {
				return
			}
			logging.CacheError("index watcher: %v", err)
		}
	}
}

func (iw *IndexWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != fileIndex {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	iw.store.InvalidateIndexCache()
	logging.CacheDebug("index.json changed on disk, invalidated in-memory snapshot")
}
