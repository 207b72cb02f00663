package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/stripcheck/packages/core/config"
	"github.com/abdul-hamid-achik/stripcheck/packages/core/runner"
	"github.com/abdul-hamid-achik/stripcheck/packages/scenarios/formation"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var listOnlyFlag string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the scenarios in execution order",
	Long: `List the formation scenarios in the order run executes them.

Examples:
  stripcheck list
  stripcheck list --only "F1*"`,
	Args: usageArgs(cobra.NoArgs),
	RunE: listCommand,
}

func init() {
	listCmd.Flags().StringVarP(&listOnlyFlag, "only", "n", "", "Mark scenarios matching comma-separated ID patterns")
	_ = listCmd.RegisterFlagCompletionFunc("only", completeScenarioIDs)
}

func listCommand(cmd *cobra.Command, args []string) error {
	dim := color.New(color.Faint).SprintFunc()

	suite := formation.New(nil, nil, config.DefaultSelectors())
	for _, sc := range suite.Scenarios() {
		if runner.Selected(sc.ID, listOnlyFlag) {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-4s %s\n", sc.ID, sc.Title)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", dim(fmt.Sprintf("%-4s %s (skipped)", sc.ID, sc.Title)))
		}
	}

	return nil
}
