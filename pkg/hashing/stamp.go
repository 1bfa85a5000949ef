//go:build !windows
// +build !windows

package hashing

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Stamp returns a file's change stamp: the 64-bit st_ctime value rendered as
// 16 lowercase hexadecimal digits.
func Stamp(file *os.File) (string, error) {
	var metadata unix.Stat_t
	if err := unix.Fstat(int(file.Fd()), &metadata); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", uint64(changeTime(&metadata))), nil
}
