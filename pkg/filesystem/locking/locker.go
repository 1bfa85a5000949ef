package locking

import (
	"os"

	"github.com/pkg/errors"
)

// Locker provides advisory whole-file locking around a build lock handle.
// Locks are released explicitly via Unlock or Close, or implicitly by the
// kernel when the owning process exits.
type Locker struct {
	// file is the underlying lock handle.
	file *os.File
	// held indicates whether this locker currently holds the lock.
	held bool
}

// NewLocker attempts to create a lock handle at the specified path, creating
// (and truncating) the file if necessary. The lock is returned in an
// unlocked state.
func NewLocker(path string, permissions os.FileMode) (*Locker, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, permissions)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open lock file")
	}
	return &Locker{file: file}, nil
}

// Held indicates whether this locker holds the lock.
func (l *Locker) Held() bool {
	return l.held
}

// Close closes the lock handle, releasing any lock held through it.
func (l *Locker) Close() error {
	l.held = false
	return l.file.Close()
}
