package depfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/redo-tools/redo/pkg/logging"
)

// stateDirName is the name of the per-directory state directory holding
// ledgers, lock files, and build temporaries.
const stateDirName = ".redo"

// Temporary file name prefixes. The embedded pid and nonce keep concurrent
// and crashed builders from colliding.
const (
	tempTargetPrefix = ".tmp"
	tempDepPrefix    = ".dep"
)

// DepPath returns the ledger path for a target base name in a directory.
func DepPath(dir, base string) string {
	return filepath.Join(dir, stateDirName, base+".dep")
}

// LockPath returns the lock file path for a target base name in a directory.
func LockPath(dir, base string) string {
	return filepath.Join(dir, stateDirName, base+".lock")
}

// Nonce returns a fresh per-job temporary-name component.
func Nonce() string {
	return uuid.NewString()[:8]
}

// TempTargetPath returns the path holding candidate target contents while a
// recipe runs.
func TempTargetPath(dir, base, nonce string) string {
	return filepath.Join(dir, stateDirName,
		fmt.Sprintf("%s.%d.%s.%s", tempTargetPrefix, os.Getpid(), nonce, base))
}

// TempDepPath returns the path holding a candidate ledger while a recipe
// runs.
func TempDepPath(dir, base, nonce string) string {
	return filepath.Join(dir, stateDirName,
		fmt.Sprintf("%s.%d.%s.%s", tempDepPrefix, os.Getpid(), nonce, base))
}

// EnsureStateDir creates the state directory for a target directory if it
// doesn't already exist, verifying that whatever occupies the path is a
// usable directory.
func EnsureStateDir(dir string) error {
	path := filepath.Join(dir, stateDirName)
	if err := os.Mkdir(path, 0755); err == nil {
		return nil
	} else if !os.IsExist(err) {
		return errors.Wrap(err, "unable to create state directory")
	}
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, "unable to probe state directory")
	}
	if !info.IsDir() {
		return errors.Errorf("state path is not a directory: %s", path)
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return errors.Wrap(err, "insufficient rights on state directory")
	}
	return nil
}

// CleanOrphans removes temporary files in a directory's state directory that
// were left behind by builder processes that no longer exist.
func CleanOrphans(dir string, logger *logging.Logger) {
	path := filepath.Join(dir, stateDirName)
	entries, err := os.ReadDir(path)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, tempTargetPrefix+".") &&
			!strings.HasPrefix(name, tempDepPrefix+".") {
			continue
		}
		fields := strings.SplitN(name, ".", 4)
		if len(fields) < 4 {
			continue
		}
		pid, err := strconv.Atoi(fields[2])
		if err != nil || pid == os.Getpid() {
			continue
		}
		if unix.Kill(pid, 0) == unix.ESRCH {
			logger.Debugf("Removing orphaned temporary: %s", name)
			if err := os.Remove(filepath.Join(path, name)); err != nil {
				logger.Warn(err)
			}
		}
	}
}
