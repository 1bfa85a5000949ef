package main

import (
	"github.com/spf13/cobra"

	"github.com/redo-tools/redo/pkg/build"
	"github.com/redo-tools/redo/pkg/logging"
	"github.com/redo-tools/redo/pkg/redo"
)

// ifcreateMain is the entry point for redo-ifcreate: declare, on behalf of
// the invoking recipe, that its target becomes stale if any of the named
// files starts to exist. Outside of a recipe there is no ledger channel and
// the declarations are discarded.
func ifcreateMain(_ *cobra.Command, arguments []string) error {
	if err := ifcreateConfiguration.apply(); err != nil {
		return err
	}
	context, err := build.NewContext(logging.RootLogger, false)
	if err != nil {
		return err
	}
	for _, target := range arguments {
		if err := context.DepWriter.IfCreate(target); err != nil {
			return err
		}
	}
	return nil
}

// ifcreateCommand is the redo-ifcreate command.
var ifcreateCommand = &cobra.Command{
	Use:           "redo-ifcreate [flags] [targets...]",
	Short:         "Declare dependencies on the continued absence of files",
	RunE:          ifcreateMain,
	Version:       redo.Version,
	SilenceErrors: true,
}

// ifcreateConfiguration stores the redo-ifcreate command flags.
var ifcreateConfiguration commonConfiguration

func init() {
	ifcreateConfiguration.register(ifcreateCommand.Flags())
}
