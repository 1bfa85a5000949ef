package build

import (
	"github.com/redo-tools/redo/pkg/hashing"
)

// GuardVariable returns the name of the environment variable that marks a
// target as currently being built somewhere in the ancestry of this process.
// The name embeds a fingerprint of the target's directory and base name, so
// it survives exec into recipes and unwinds naturally with process exit.
func GuardVariable(dir, base string) string {
	return "REDO_" + hashing.Sum([]byte(dir+base)).String()
}
