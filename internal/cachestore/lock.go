package cachestore

import (
	"fmt"
	"os"
	"syscall"
	"time"
)

const lockPollInterval = 50 * time.Millisecond

// lockMode selects shared (read) or exclusive (write) advisory locking.
type lockMode int

const (
	lockShared lockMode = iota
	lockExclusive
)

// fileLock holds an open descriptor on v2/.lock for the duration of one
// cache operation.
type fileLock struct {
	file *os.File
}

// acquireLock opens (creating if necessary) the lock file and polls
// syscall.Flock at a fixed interval until it succeeds or timeout elapses.
// Acquisition never corrupts lock state: a failed non-blocking Flock simply
// means "try again", and the caller always gets a clean timeout error.
func acquireLock(lockPath string, mode lockMode, timeout time.Duration) (*fileLock, error) {
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cachestore: open lock file: %w", err)
	}

	flockMode := syscall.LOCK_SH
	if mode == lockExclusive {
		flockMode = syscall.LOCK_EX
	}

	deadline := time.Now().Add(timeout)
	for {
		err := syscall.Flock(int(f.Fd()), flockMode|syscall.LOCK_NB)
		if err == nil {
			return &fileLock{file: f}, nil
		}
		if time.Now().After(deadline) {
			_ = f.Close()
			return nil, fmt.Errorf("cachestore: lock acquisition timed out after %v", timeout)
		}
		time.Sleep(lockPollInterval)
	}
}

// release unlocks and closes the descriptor. Best-effort: the file handle is
// always closed even if the unlock syscall fails.
func (l *fileLock) release() {
	_ = syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	_ = l.file.Close()
}
