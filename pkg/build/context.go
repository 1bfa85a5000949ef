package build

import (
	"os"

	"github.com/pkg/errors"

	"github.com/redo-tools/redo/pkg/depfile"
	"github.com/redo-tools/redo/pkg/environment"
	"github.com/redo-tools/redo/pkg/jobserver"
	"github.com/redo-tools/redo/pkg/logging"
)

// Environment variables making up the recursion contract with child
// invocations.
const (
	// LevelVariable carries the recursion depth.
	LevelVariable = "REDO_LEVEL"
	// DepFdVariable carries the writable descriptor of the parent ledger
	// channel.
	DepFdVariable = "REDO_DEP_FD"
	// DirPrefixVariable carries the path from a recipe's working directory
	// down to its target's directory.
	DirPrefixVariable = "REDO_DIRPREFIX"
)

// Flag environment variables. Each holds the numeric flag convention: unset,
// 0, or 1.
const (
	ForceVariable     = "REDO_FORCE"
	KeepGoingVariable = "REDO_KEEP_GOING"
	DebugVariable     = "REDO_DEBUG"
	TraceVariable     = "REDO_TRACE"
	VerboseVariable   = "REDO_VERBOSE"
)

// Context carries the per-invocation state of the build engine: the base
// directory, the inherited ledger channel, the recursion level, flag state,
// and the token pool. It replaces the process globals of traditional redo
// implementations so that the engine's pieces can be tested in isolation.
type Context struct {
	// BaseDir is the working directory at process start. Relative targets
	// and recorded paths resolve against it.
	BaseDir string
	// DepWriter records into the inherited parent ledger channel. It is nil
	// at top level, in which case recording is a no-op.
	DepWriter *depfile.Writer
	// Level is the recursion depth.
	Level int
	// Force is the rebuild-unconditionally state: -1 unset, 0 disabled,
	// positive enabled.
	Force int
	// KeepGoing is the continue-after-failure state: -1 unset (stop on
	// first failure), otherwise keep going.
	KeepGoing int
	// Trace enables shell tracing of recipes.
	Trace bool
	// Logger emits diagnostics.
	Logger *logging.Logger
	// Pool arbitrates build tokens.
	Pool *jobserver.Pool
	// dirprefix is the inherited directory prefix used when recording
	// relative paths into ledgers.
	dirprefix string
}

// NewContext assembles a Context from the process environment. When
// inheritPrefix is set, the inherited directory prefix participates in path
// recording (the if-change contract); otherwise recorded paths are taken
// as given (the force-build and hash contracts).
func NewContext(logger *logging.Logger, inheritPrefix bool) (*Context, error) {
	baseDir, err := os.Getwd()
	if err != nil {
		return nil, withCode(StatusSetup, errors.Wrap(err, "unable to determine working directory"))
	}

	context := &Context{
		BaseDir:   baseDir,
		Force:     environment.Flag(ForceVariable),
		KeepGoing: environment.Flag(KeepGoingVariable),
		Trace:     environment.Flag(TraceVariable) > 0,
		Logger:    logger,
	}
	if level := environment.Fd(LevelVariable); level > 0 {
		context.Level = level
	}
	if inheritPrefix {
		context.dirprefix = os.Getenv(DirPrefixVariable)
	}
	if fd := environment.Fd(DepFdVariable); fd >= 0 {
		channel := os.NewFile(uintptr(fd), "ledger-channel")
		context.DepWriter = depfile.NewWriter(channel, baseDir, context.dirprefix)
	}

	pool, err := jobserver.Open()
	if err != nil {
		return nil, withCode(StatusSetup, err)
	}
	context.Pool = pool

	return context, nil
}

// RecordDeps records each of the specified targets into the parent ledger
// channel, so that the recipe that invoked this process depends on them.
// Targets that can't be opened are skipped.
func (c *Context) RecordDeps(targets []string) {
	for _, target := range targets {
		if err := c.DepWriter.Used(target); err != nil {
			c.Logger.Warn(err)
		}
	}
}
