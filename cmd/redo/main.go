package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/spf13/cobra"

	"github.com/redo-tools/redo/cmd"
)

// commands maps invocation names to their root commands. The binary is
// installed (or symlinked) once per verb and dispatches on how it was
// invoked.
var commands = map[string]*cobra.Command{
	"redo":          forceCommand,
	"redo-ifchange": ifchangeCommand,
	"redo-ifcreate": ifcreateCommand,
	"redo-always":   alwaysCommand,
	"redo-hash":     hashCommand,
}

func main() {
	program := filepath.Base(os.Args[0])
	command, ok := commands[program]
	if !ok {
		cmd.Fatal(errors.Errorf("not implemented %s", program))
	}
	if err := command.Execute(); err != nil {
		cmd.Fatal(err)
	}
}
