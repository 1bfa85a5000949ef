package main

import (
	"github.com/spf13/cobra"

	"github.com/redo-tools/redo/pkg/build"
	"github.com/redo-tools/redo/pkg/logging"
	"github.com/redo-tools/redo/pkg/redo"
)

// ifchangeMain is the entry point for redo-ifchange: rebuild each argument
// only if one of its recorded dependencies changed, then record the
// arguments as dependencies of the invoking recipe.
func ifchangeMain(_ *cobra.Command, arguments []string) error {
	if err := ifchangeConfiguration.apply(); err != nil {
		return err
	}
	context, err := build.NewContext(logging.RootLogger, true)
	if err != nil {
		return err
	}
	if err := context.IfChange(arguments); err != nil {
		return err
	}
	context.RecordDeps(arguments)
	context.Pool.Procure()
	return nil
}

// ifchangeCommand is the redo-ifchange command.
var ifchangeCommand = &cobra.Command{
	Use:           "redo-ifchange [flags] [targets...]",
	Short:         "Rebuild targets whose recorded dependencies have changed",
	RunE:          ifchangeMain,
	Version:       redo.Version,
	SilenceErrors: true,
}

// ifchangeConfiguration stores the redo-ifchange command flags.
var ifchangeConfiguration commonConfiguration

func init() {
	ifchangeConfiguration.register(ifchangeCommand.Flags())
}
