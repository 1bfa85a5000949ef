package logging

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	// DebugEnabled controls whether or not Debug logging methods produce
	// output. It is set once at startup, before any concurrent logging.
	DebugEnabled bool
	// VerboseEnabled controls whether or not Verbose logging methods produce
	// output. It is set once at startup, before any concurrent logging.
	VerboseEnabled bool
)

// std is the underlying logger. Diagnostics go to standard error with no
// decoration, because the message format is part of the tool's contract.
var std = log.New(os.Stderr, "", 0)

func init() {
	// Color is only meaningful when standard error is a terminal.
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		color.NoColor = true
	}
}

// Logger is the main logger type. It has the novel property that it still
// functions if nil, but it doesn't log anything. It is safe for concurrent
// usage.
type Logger struct{}

// RootLogger is the logger used throughout the tool.
var RootLogger = &Logger{}

// Printf logs information with semantics equivalent to fmt.Printf, followed
// by a newline.
func (l *Logger) Printf(format string, v ...interface{}) {
	if l != nil {
		std.Output(2, fmt.Sprintf(format, v...))
	}
}

// Println logs information with semantics equivalent to fmt.Println.
func (l *Logger) Println(v ...interface{}) {
	if l != nil {
		std.Output(2, fmt.Sprint(v...))
	}
}

// Debugf logs information with semantics equivalent to fmt.Printf, but only
// if debugging is enabled (otherwise it's a no-op).
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l != nil && DebugEnabled {
		std.Output(2, fmt.Sprintf(format, v...))
	}
}

// Verbosef logs information with semantics equivalent to fmt.Printf, but only
// if verbose output is enabled (otherwise it's a no-op).
func (l *Logger) Verbosef(format string, v ...interface{}) {
	if l != nil && VerboseEnabled {
		std.Output(2, fmt.Sprintf(format, v...))
	}
}

// Warn logs error information with a warning prefix and yellow color.
func (l *Logger) Warn(err error) {
	if l != nil {
		std.Output(2, color.YellowString("warning: %v", err))
	}
}

// Error logs error information with an error prefix and red color.
func (l *Logger) Error(err error) {
	if l != nil {
		std.Output(2, color.RedString("error: %v", err))
	}
}

// Indent returns an indentation string for the specified recursion level,
// used to key build traces on depth.
func Indent(level int) string {
	if level <= 0 {
		return ""
	}
	return strings.Repeat(" ", level)
}
