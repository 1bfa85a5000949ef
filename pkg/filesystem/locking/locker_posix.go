//go:build !windows && !plan9
// +build !windows,!plan9

package locking

import (
	"io"

	"golang.org/x/sys/unix"
)

// wholeFile describes an exclusive lock covering the entire file.
func wholeFile() *unix.Flock_t {
	return &unix.Flock_t{
		Type:   unix.F_WRLCK,
		Whence: io.SeekStart,
		Start:  0,
		Len:    0,
	}
}

// Lock acquires the lock, blocking until it is available.
func (l *Locker) Lock() error {
	if err := unix.FcntlFlock(l.file.Fd(), unix.F_SETLKW, wholeFile()); err != nil {
		return err
	}
	l.held = true
	return nil
}

// TryLock attempts to acquire the lock without blocking. It returns false
// (with a nil error) if another process holds the lock.
func (l *Locker) TryLock() (bool, error) {
	if err := unix.FcntlFlock(l.file.Fd(), unix.F_SETLK, wholeFile()); err != nil {
		if err == unix.EAGAIN || err == unix.EACCES {
			return false, nil
		}
		return false, err
	}
	l.held = true
	return true, nil
}

// Unlock releases the lock.
func (l *Locker) Unlock() error {
	release := wholeFile()
	release.Type = unix.F_UNLCK
	if err := unix.FcntlFlock(l.file.Fd(), unix.F_SETLK, release); err != nil {
		return err
	}
	l.held = false
	return nil
}
