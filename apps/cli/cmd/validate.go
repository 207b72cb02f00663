package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/abdul-hamid-achik/stripcheck/packages/movement"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate movement fixture files against the storage schema",
	Long: `Validate JSON files holding a movements envelope, as stored under the
movements key, without starting a browser.

Examples:
  stripcheck validate fixtures/connect.json
  stripcheck validate fixtures/*.json`,
	Args:              usageArgs(cobra.MinimumNArgs(1)),
	ValidArgsFunction: completeFixtures,
	RunE:              validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	hasErrors := false
	for _, file := range args {
		data, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s: %v\n", file, err)
			hasErrors = true
			continue
		}

		if err := movement.ValidateJSON(string(data)); err != nil {
			hasErrors = true
			var verr *movement.ValidationError
			if errors.As(err, &verr) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Invalid: %s\n", file)
				for _, problem := range verr.Problems {
					fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", problem)
				}
				continue
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s: %v\n", file, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", file)
	}

	if hasErrors {
		return withExitCode(ExitParseError, fmt.Errorf("validation failed"))
	}

	return nil
}
