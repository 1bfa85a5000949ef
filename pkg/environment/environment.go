package environment

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// Fd returns the file descriptor number stored in the named environment
// variable. It returns -1 if the variable is unset, non-numeric, negative, or
// larger than 255 (the inherited-descriptor contract only covers small
// numbers).
func Fd(name string) int {
	value, ok := os.LookupEnv(name)
	if !ok {
		return -1
	}
	fd, err := strconv.Atoi(value)
	if err != nil || fd < 0 || fd > 255 {
		return -1
	}
	return fd
}

// SetFd stores an integer in the named environment variable so that child
// processes inherit it.
func SetFd(name string, value int) error {
	if err := os.Setenv(name, strconv.Itoa(value)); err != nil {
		return errors.Wrap(err, "unable to set environment variable")
	}
	return nil
}

// Flag returns the integer state of a flag environment variable: -1 if unset
// or invalid, otherwise the stored value. Flag variables share the numeric
// convention of descriptor variables.
func Flag(name string) int {
	return Fd(name)
}
