package locking

import (
	"os"
	"path/filepath"
	"testing"
)

// TestLockerFailOnDirectory tests that locker creation fails for a directory
// path.
func TestLockerFailOnDirectory(t *testing.T) {
	if _, err := NewLocker(t.TempDir(), 0666); err == nil {
		t.Fatal("creating a locker on a directory path succeeded")
	}
}

// TestLockerCycle tests the lifecycle of a Locker.
func TestLockerCycle(t *testing.T) {
	// Create a locker, creating the lock file on demand.
	path := filepath.Join(t.TempDir(), "target.lock")
	locker, err := NewLocker(path, 0666)
	if err != nil {
		t.Fatal("unable to create locker:", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal("lock file not created:", err)
	}

	// Acquire without blocking.
	acquired, err := locker.TryLock()
	if err != nil {
		t.Fatal("unable to attempt lock acquisition:", err)
	}
	if !acquired {
		t.Fatal("uncontended lock not acquired")
	}
	if !locker.Held() {
		t.Error("lock incorrectly reported as unheld")
	}

	// Release.
	if err := locker.Unlock(); err != nil {
		t.Fatal("unable to release lock:", err)
	}
	if locker.Held() {
		t.Error("lock incorrectly reported as held")
	}

	// Blocking acquisition must succeed immediately when uncontended.
	if err := locker.Lock(); err != nil {
		t.Fatal("unable to acquire lock:", err)
	}

	// Close the handle.
	if err := locker.Close(); err != nil {
		t.Fatal("unable to close locker:", err)
	}
}

// TestLockerTruncates tests that creating a locker truncates stale lock file
// contents.
func TestLockerTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "target.lock")
	if err := os.WriteFile(path, []byte("stale"), 0666); err != nil {
		t.Fatal("unable to seed lock file:", err)
	}
	locker, err := NewLocker(path, 0666)
	if err != nil {
		t.Fatal("unable to create locker:", err)
	}
	defer locker.Close()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal("unable to probe lock file:", err)
	}
	if info.Size() != 0 {
		t.Error("lock file not truncated")
	}
}
