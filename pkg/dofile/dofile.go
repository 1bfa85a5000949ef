package dofile

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// A Recorder receives the path of every candidate dofile that was probed and
// found missing, so that callers can register the candidates as
// must-not-exist dependencies (creating one later invalidates the target).
type Recorder func(candidate string)

// probe checks a single candidate for existence, reporting a miss to the
// recorder. The candidate is relative to dir.
func probe(dir, candidate string, record Recorder) bool {
	if _, err := os.Stat(filepath.Join(dir, candidate)); err == nil {
		return true
	}
	if record != nil {
		record(candidate)
	}
	return false
}

// Find locates the dofile for a target in the specified directory. The
// target must not contain a path separator. The returned path is relative to
// dir (e.g. "./x.do" or "./../../default.o.do").
//
// For a target dir/base.a.b the search probes dir/base.a.b.do, then for each
// directory from dir up to the filesystem root: <ancestor>/base.a.b.do
// (skipped for dir itself), <ancestor>/default.a.b.do,
// <ancestor>/default.b.do, and <ancestor>/default.do. The root is detected
// when a directory and its parent share a device and inode.
func Find(dir, target string, record Recorder) (string, bool) {
	if probe(dir, "./"+target+".do", record) {
		return "./" + target + ".do", true
	}

	updir := "./"
	var previous unix.Stat_t
	for {
		var current unix.Stat_t
		if err := unix.Stat(filepath.Join(dir, updir), &current); err != nil {
			return "", false
		}
		if current.Dev == previous.Dev && current.Ino == previous.Ino {
			// Reached the root: .. is the same directory as .
			return "", false
		}
		previous = current

		if updir != "./" {
			if probe(dir, updir+target+".do", record) {
				return updir + target + ".do", true
			}
		}
		suffix := target
		for {
			index := strings.IndexByte(suffix, '.')
			if index < 0 {
				break
			}
			suffix = suffix[index+1:]
			candidate := updir + "default." + suffix + ".do"
			if probe(dir, candidate, record) {
				return candidate, true
			}
		}
		if probe(dir, updir+"default.do", record) {
			return updir + "default.do", true
		}

		updir += "../"
	}
}

// Basename derives the second recipe argument from a target: for a dofile
// named default.<ext...>.do, one trailing dot-delimited suffix is stripped
// from the target per extension component; for any other dofile the target
// is returned unchanged.
func Basename(dofile, target string) string {
	if !strings.HasPrefix(dofile, "default.") {
		return target
	}
	strip := strings.Count(dofile, ".") - 1
	result := target
	for ; strip > 0; strip-- {
		if index := strings.LastIndexByte(result, '.'); index >= 0 {
			result = result[:index]
		}
	}
	return result
}
