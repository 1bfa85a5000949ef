package main

import (
	"os"

	"github.com/pkg/errors"

	"github.com/spf13/cobra"

	"github.com/redo-tools/redo/pkg/build"
	"github.com/redo-tools/redo/pkg/depfile"
	"github.com/redo-tools/redo/pkg/redo"
)

// hashMain is the entry point for redo-hash: print a consumed-file ledger
// record for each argument to standard output. Arguments that can't be
// opened are skipped.
func hashMain(_ *cobra.Command, arguments []string) error {
	if err := hashConfiguration.apply(); err != nil {
		return err
	}
	directory, err := os.Getwd()
	if err != nil {
		return &build.Error{
			Code:  build.StatusSetup,
			Cause: errors.Wrap(err, "unable to determine working directory"),
		}
	}
	writer := depfile.NewWriter(os.Stdout, directory, "")
	for _, target := range arguments {
		if err := writer.Used(target); err != nil {
			return err
		}
	}
	return nil
}

// hashCommand is the redo-hash command.
var hashCommand = &cobra.Command{
	Use:           "redo-hash [flags] [files...]",
	Short:         "Print ledger records for the specified files",
	RunE:          hashMain,
	Version:       redo.Version,
	SilenceErrors: true,
}

// hashConfiguration stores the redo-hash command flags.
var hashConfiguration commonConfiguration

func init() {
	hashConfiguration.register(hashCommand.Flags())
}
