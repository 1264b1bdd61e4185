package lock

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAcquireAndRelease(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), ".erk", "pool.json")

	l, err := Acquire(statePath)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	// Lock file is created next to the state file.
	if _, err := os.Stat(statePath + ".lock"); err != nil {
		t.Errorf("lock file not created: %v", err)
	}

	if err := l.Release(); err != nil {
		t.Errorf("Release: %v", err)
	}
}

func TestReacquireAfterRelease(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "pool.json")

	l1, err := Acquire(statePath)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	if err := l1.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	l2, err := Acquire(statePath)
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	defer l2.Release()
}

func TestReleaseNil(t *testing.T) {
	var l *PoolLock
	if err := l.Release(); err != nil {
		t.Errorf("nil Release: %v", err)
	}
}
