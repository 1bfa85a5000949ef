package hashing

import (
	"golang.org/x/sys/unix"
)

// changeTime extracts the change-time seconds from file metadata.
func changeTime(metadata *unix.Stat_t) int64 {
	return metadata.Ctimespec.Sec
}
