package main

import (
	"github.com/pkg/errors"

	"github.com/spf13/cobra"

	"github.com/redo-tools/redo/pkg/build"
	"github.com/redo-tools/redo/pkg/logging"
	"github.com/redo-tools/redo/pkg/redo"
)

// alwaysMain is the entry point for redo-always: mark the invoking recipe's
// target as never up-to-date.
func alwaysMain(_ *cobra.Command, _ []string) error {
	if err := alwaysConfiguration.apply(); err != nil {
		return err
	}
	context, err := build.NewContext(logging.RootLogger, false)
	if err != nil {
		return err
	}
	if context.DepWriter == nil {
		return &build.Error{
			Code:  build.StatusMisuse,
			Cause: errors.New("redo-always must be invoked from within .do file"),
		}
	}
	return context.DepWriter.Always()
}

// alwaysCommand is the redo-always command.
var alwaysCommand = &cobra.Command{
	Use:           "redo-always",
	Short:         "Mark the invoking recipe's target as always out-of-date",
	RunE:          alwaysMain,
	Version:       redo.Version,
	SilenceErrors: true,
}

// alwaysConfiguration stores the redo-always command flags.
var alwaysConfiguration commonConfiguration

func init() {
	alwaysConfiguration.register(alwaysCommand.Flags())
}
