package cli

import (
	"github.com/urfave/cli/v3"
)

func NewCommand() *cli.Command {
	return &cli.Command{
		Name:      "aderunner",
		Usage:     "Deployment environment runner entrypoint",
		Version:   "0.1.0",
		ArgsUsage: "[script]",
		Description: `aderunner resolves the runner configuration from environment variables, runs the
scripts in the entrypoint directory, signs in to Azure CLI and runs the script for
ADE_ACTION_NAME.

The action script is the first match of:
  1. the [script] argument, when it is an existing .sh or .py file
  2. <action>.sh or <action>.py in the catalog item directory
  3. <action>.sh or <action>.py in the runner actions directory`,
		Flags:  DefineFlags(),
		Action: RunEntrypoint,
	}
}
