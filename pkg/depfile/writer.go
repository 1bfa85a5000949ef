package depfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/redo-tools/redo/pkg/hashing"
)

// Uprel converts a directory prefix (the path from a recipe's working
// directory down to its target's directory) into the up-relative prefix
// ("../" per component) that maps recipe-relative paths into target-relative
// ones.
func Uprel(dirprefix string) string {
	if dirprefix == "" {
		return ""
	}
	return strings.Repeat("../", strings.Count(dirprefix, "/")+1)
}

// Writer appends dependency records to a ledger channel. A nil Writer
// discards all records, which is the behavior required of verbs invoked
// outside of a recipe.
type Writer struct {
	// channel is the destination stream.
	channel *os.File
	// dir is the directory against which relative paths are opened for
	// fingerprinting.
	dir string
	// uprel is the prefix prepended to relative recorded paths.
	uprel string
}

// NewWriter creates a Writer appending to the specified channel. Relative
// paths are opened against dir and recorded with the up-relative prefix
// derived from dirprefix.
func NewWriter(channel *os.File, dir, dirprefix string) *Writer {
	return &Writer{channel: channel, dir: dir, uprel: Uprel(dirprefix)}
}

// Used records a consumed file with its current fingerprint and change
// stamp. A file that can't be opened produces no record, mirroring the
// treatment of vanished dependencies at recording time.
func (w *Writer) Used(path string) error {
	if w == nil {
		return nil
	}
	opened := path
	prefix := ""
	if !filepath.IsAbs(path) {
		opened = filepath.Join(w.dir, path)
		prefix = w.uprel
	}
	file, err := os.Open(opened)
	if err != nil {
		return nil
	}
	defer file.Close()
	digest, err := hashing.File(file)
	if err != nil {
		return errors.Wrap(err, "unable to fingerprint dependency")
	}
	stamp, err := hashing.Stamp(file)
	if err != nil {
		return errors.Wrap(err, "unable to stamp dependency")
	}
	_, err = fmt.Fprintf(w.channel, "=%s %s %s%s\n", digest, stamp, prefix, path)
	return errors.Wrap(err, "unable to record dependency")
}

// IfCreate records a path whose creation invalidates the target.
func (w *Writer) IfCreate(path string) error {
	if w == nil {
		return nil
	}
	_, err := fmt.Fprintf(w.channel, "-%s\n", path)
	return errors.Wrap(err, "unable to record dependency")
}

// Always marks the target as always out-of-date.
func (w *Writer) Always() error {
	if w == nil {
		return nil
	}
	_, err := fmt.Fprintln(w.channel, "!")
	return errors.Wrap(err, "unable to record dependency")
}
