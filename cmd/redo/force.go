package main

import (
	"github.com/spf13/cobra"

	"github.com/redo-tools/redo/pkg/build"
	"github.com/redo-tools/redo/pkg/logging"
	"github.com/redo-tools/redo/pkg/redo"
)

// forceMain is the entry point for redo: rebuild each argument regardless of
// recorded state, defaulting to the "all" target.
func forceMain(_ *cobra.Command, arguments []string) error {
	if err := forceConfiguration.apply(); err != nil {
		return err
	}
	context, err := build.NewContext(logging.RootLogger, false)
	if err != nil {
		return err
	}
	// Force this invocation without exporting the flag: nested invocations
	// from recipes are still conditional unless -f was given explicitly.
	context.Force = 1
	if len(arguments) == 0 {
		arguments = []string{"all"}
	}
	if err := context.IfChange(arguments); err != nil {
		return err
	}
	context.Pool.Procure()
	return nil
}

// forceCommand is the redo command.
var forceCommand = &cobra.Command{
	Use:           "redo [flags] [targets...]",
	Short:         "Rebuild targets unconditionally",
	RunE:          forceMain,
	Version:       redo.Version,
	SilenceErrors: true,
}

// forceConfiguration stores the redo command flags.
var forceConfiguration commonConfiguration

func init() {
	forceConfiguration.register(forceCommand.Flags())
}
