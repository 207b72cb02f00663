package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var exitCodesCmd = &cobra.Command{
	Use:   "exit-codes",
	Short: "Describe the process exit codes",
	Args:  usageArgs(cobra.NoArgs),
	Run: func(cmd *cobra.Command, args []string) {
		codes := []struct {
			code int
			desc string
		}{
			{ExitSuccess, "every scenario passed"},
			{ExitTestFailure, "one or more scenarios failed"},
			{ExitParseError, "a fixture file failed validation"},
			{ExitConfigError, "the configuration could not be loaded or is invalid"},
			{ExitBrowserError, "the browser could not be started"},
			{ExitUsageError, "invalid command-line usage"},
		}
		for _, c := range codes {
			fmt.Fprintf(cmd.OutOrStdout(), "%3d  %s\n", c.code, c.desc)
		}
	},
}
