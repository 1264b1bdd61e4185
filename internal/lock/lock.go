// Package lock serializes access to the pool state file.
//
// pool.json is read-modify-written as a whole, so two concurrent erk
// invocations would otherwise race with last-writer-wins. An advisory
// flock on a sibling .lock file covers the load-mutate-save window.
package lock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// AcquireTimeout is how long to wait for the pool lock before giving up.
const AcquireTimeout = 5 * time.Second

// retryInterval is how often to retry the lock while waiting.
const retryInterval = 100 * time.Millisecond

// PoolLock holds an exclusive advisory lock on the pool state.
type PoolLock struct {
	fl *flock.Flock
}

// Acquire takes an exclusive lock guarding the state file at statePath.
// The lock file is created adjacent to the state file with a .lock suffix.
// Returns an error if the lock cannot be acquired within AcquireTimeout.
func Acquire(statePath string) (*PoolLock, error) {
	lockPath := statePath + ".lock"

	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	fl := flock.New(lockPath)
	ctx, cancel := context.WithTimeout(context.Background(), AcquireTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, retryInterval)
	if err != nil {
		return nil, fmt.Errorf("acquiring pool lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("timeout waiting for pool lock (another erk command running?)")
	}

	return &PoolLock{fl: fl}, nil
}

// Release releases the lock. Safe to call on a nil receiver.
func (l *PoolLock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
