package main

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/redo-tools/redo/pkg/build"
	"github.com/redo-tools/redo/pkg/environment"
	"github.com/redo-tools/redo/pkg/logging"
)

// commonConfiguration holds the flag surface shared by every verb. Flags are
// reflected into the environment so that child invocations inherit them.
type commonConfiguration struct {
	// debug indicates the presence of the -d/--debug flag.
	debug bool
	// force indicates the presence of the -f flag.
	force bool
	// keepGoing indicates the presence of the -k/--keep-going flag.
	keepGoing bool
	// verbose indicates the presence of the -v/--verbose flag.
	verbose bool
	// print indicates the presence of the --print flag.
	print bool
	// quiet indicates the presence of the -V/--quiet flag.
	quiet bool
	// silent indicates the presence of the --silent flag.
	silent bool
	// trace indicates the presence of the -x flag.
	trace bool
	// noTrace indicates the presence of the -X flag.
	noTrace bool
	// jobs stores the value of the -j/--jobs flag.
	jobs int
	// directory stores the value of the -C/--directory flag.
	directory string
}

// register binds the shared flag surface to a command's flag set.
func (c *commonConfiguration) register(flags *pflag.FlagSet) {
	flags.BoolVarP(&c.debug, "debug", "d", false, "Output debugging information")
	flags.BoolVarP(&c.force, "force", "f", false, "Rebuild regardless of recorded state")
	flags.BoolVarP(&c.keepGoing, "keep-going", "k", false, "Continue with other targets after a failure")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Trace dispatched recipes")
	flags.BoolVar(&c.print, "print", false, "Trace dispatched recipes")
	flags.BoolVarP(&c.quiet, "quiet", "V", false, "Operate quietly")
	flags.BoolVar(&c.silent, "silent", false, "Operate quietly")
	flags.BoolVarP(&c.trace, "trace", "x", false, "Run shell recipes with tracing")
	flags.BoolVarP(&c.noTrace, "no-trace", "X", false, "Run shell recipes without tracing")
	flags.IntVarP(&c.jobs, "jobs", "j", 0, "Allow multiple recipes to run in parallel")
	flags.StringVarP(&c.directory, "directory", "C", "", "Change to directory before doing anything")
}

// setFlag reflects a flag state into the environment, treating failure as a
// setup error.
func setFlag(name string, value int) error {
	if err := environment.SetFd(name, value); err != nil {
		return &build.Error{Code: build.StatusSetup, Cause: errors.Wrap(err, name)}
	}
	return nil
}

// apply performs the directory change and reflects the parsed flags into the
// environment, then configures logging from the resulting state.
func (c *commonConfiguration) apply() error {
	if c.directory != "" {
		if err := os.Chdir(c.directory); err != nil {
			return errors.Wrap(err, "unable to change directory")
		}
	}

	settings := []struct {
		active   bool
		variable string
		value    int
	}{
		{c.debug, build.DebugVariable, 1},
		{c.force, build.ForceVariable, 1},
		{c.keepGoing, build.KeepGoingVariable, 1},
		{c.verbose || c.print, build.VerboseVariable, 1},
		{c.quiet || c.silent, build.VerboseVariable, 0},
		{c.quiet || c.silent, build.DebugVariable, 0},
		{c.trace, build.TraceVariable, 1},
		{c.noTrace, build.TraceVariable, 0},
	}
	for _, setting := range settings {
		if !setting.active {
			continue
		}
		if err := setFlag(setting.variable, setting.value); err != nil {
			return err
		}
	}
	if c.jobs != 0 {
		if err := os.Setenv("JOBS", strconv.Itoa(c.jobs)); err != nil {
			return &build.Error{Code: build.StatusSetup, Cause: errors.Wrap(err, "JOBS")}
		}
	}

	logging.DebugEnabled = environment.Flag(build.DebugVariable) > 0
	logging.VerboseEnabled = environment.Flag(build.VerboseVariable) > 0
	return nil
}
