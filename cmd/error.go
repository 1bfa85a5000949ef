package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
)

// exitCoder is implemented by errors that know which exit status the process
// should terminate with.
type exitCoder interface {
	ExitCode() int
}

// Warning prints a warning message to standard error.
func Warning(message string) {
	fmt.Fprintln(color.Error, color.YellowString("warning:"), message)
}

// Error prints an error message to standard error.
func Error(err error) {
	fmt.Fprintln(color.Error, color.RedString("error:"), err)
}

// Fatal prints an error message to standard error and then terminates the
// process, honoring any exit status carried by the error and defaulting to
// an error exit code otherwise.
func Fatal(err error) {
	Error(err)
	code := 1
	var coder exitCoder
	if errors.As(err, &coder) {
		code = coder.ExitCode()
	}
	os.Exit(code)
}
