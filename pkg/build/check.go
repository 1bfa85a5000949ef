package build

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/redo-tools/redo/pkg/depfile"
	"github.com/redo-tools/redo/pkg/dofile"
	"github.com/redo-tools/redo/pkg/hashing"
)

// resolve joins a possibly-relative path against a directory. Absolute paths
// pass through untouched.
func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// splitTarget resolves a target as given (possibly containing separators)
// against a directory, returning the directory and base name to operate in.
// A target naming a directory that can't be entered is a filesystem
// assertion failure.
func splitTarget(dir, target string) (string, string, error) {
	full := resolve(dir, target)
	targetDir := filepath.Dir(full)
	base := filepath.Base(full)
	if strings.ContainsRune(target, '/') {
		info, err := os.Stat(targetDir)
		if err != nil {
			return "", "", withCode(StatusFilesystem,
				errors.Wrapf(err, "unable to enter directory for %s", target))
		}
		if !info.IsDir() {
			return "", "", withCode(StatusFilesystem,
				errors.Errorf("not a directory: %s", targetDir))
		}
	}
	return targetDir, base, nil
}

// candidateRecorder returns a dofile resolution recorder that registers
// missed candidates as must-not-exist dependencies on the parent ledger
// channel.
func (c *Context) candidateRecorder() dofile.Recorder {
	return func(candidate string) {
		if err := c.DepWriter.IfCreate(candidate); err != nil {
			c.Logger.Warn(err)
		}
	}
}

// isSource reports whether a target should be treated as a source file: it
// has no ledger, and, with the force state unset, the file exists; with the
// force state set (disabled or enabled), no dofile can be found for it.
func (c *Context) isSource(dir, base string) bool {
	if _, err := os.Stat(depfile.DepPath(dir, base)); err == nil {
		return false
	}
	if c.Force < 0 {
		_, err := os.Stat(filepath.Join(dir, base))
		return err == nil
	}
	_, found := dofile.Find(dir, base, c.candidateRecorder())
	return !found
}

// UpToDate reports whether the target needs no rebuild, recursing through
// its recorded dependencies. The returned error is non-nil only for fatal
// filesystem assertions; any unreadable or stale state simply reports the
// target as needing a rebuild.
func (c *Context) UpToDate(target string) (bool, error) {
	return c.upToDate(c.BaseDir, target)
}

func (c *Context) upToDate(dir, target string) (bool, error) {
	dir, base, err := splitTarget(dir, target)
	if err != nil {
		return false, err
	}

	if c.isSource(dir, base) {
		c.Logger.Debugf("Not rebuilt, is source file: %s", base)
		return true, nil
	}
	if c.Force > 0 {
		c.Logger.Debugf("Rebuild, force flag active: %s", base)
		return false, nil
	}

	ledger, err := os.Open(depfile.DepPath(dir, base))
	if err != nil {
		c.Logger.Debugf("Rebuild, ledger cannot be opened: %s", base)
		return false, nil
	}
	defer ledger.Close()

	ok := true
	scanner := depfile.NewScanner(ledger)
	for ok && scanner.Scan() {
		entry, err := scanner.Entry()
		if err != nil {
			c.Logger.Debugf("Rebuild, invalid ledger record: %s", base)
			ok = false
			break
		}
		switch entry.Kind {
		case depfile.KindIfCreate:
			if _, err := os.Stat(resolve(dir, entry.Path)); err == nil {
				c.Logger.Debugf("Rebuild, dependency %s must not exist: %s", entry.Path, base)
				ok = false
			}
		case depfile.KindAlways:
			c.Logger.Debugf("Rebuild, forced by always record: %s", base)
			ok = false
		case depfile.KindUsed:
			current, err := c.entryCurrent(dir, base, entry)
			if err != nil {
				return false, err
			}
			ok = current
		}
	}
	if ok && scanner.Err() != nil {
		c.Logger.Debugf("Rebuild, error while reading ledger: %s", base)
		ok = false
	}
	if ok {
		c.Logger.Debugf("Not rebuilt, already up-to-date: %s", base)
	}
	return ok, nil
}

// entryCurrent checks a consumed-file record: the dependency must open, its
// change stamp and fingerprint must match the recorded values, and (unless
// the record names the target itself) the dependency must itself be up to
// date.
func (c *Context) entryCurrent(dir, base string, entry depfile.Entry) (bool, error) {
	file, err := os.Open(resolve(dir, entry.Path))
	if err != nil {
		c.Logger.Debugf("Rebuild, cannot open dependency %s: %s", entry.Path, base)
		return false, nil
	}
	stamp, err := hashing.Stamp(file)
	if err != nil || stamp != entry.Stamp {
		file.Close()
		c.Logger.Debugf("Rebuild, timestamp mismatch for %s: %s", entry.Path, base)
		return false, nil
	}
	digest, err := hashing.File(file)
	file.Close()
	if err != nil || digest.String() != entry.Hash {
		c.Logger.Debugf("Rebuild, hash mismatch for %s: %s", entry.Path, base)
		return false, nil
	}

	// A record naming the target itself is only checked, never traversed.
	if entry.Path == base {
		return true, nil
	}
	current, err := c.upToDate(dir, entry.Path)
	if err != nil {
		return false, err
	}
	if !current {
		c.Logger.Debugf("Rebuild, dependency needs rebuild for %s: %s", entry.Path, base)
	}
	return current, nil
}
