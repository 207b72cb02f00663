package cmd

import (
	"strings"

	"github.com/abdul-hamid-achik/stripcheck/packages/core/config"
	"github.com/abdul-hamid-achik/stripcheck/packages/scenarios/formation"
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for stripcheck.

Scenario IDs, output formats and notification policies complete as flag
values, so "stripcheck run --only F<TAB>" lists the scenarios.

Examples:
  source <(stripcheck completion bash)
  stripcheck completion zsh > "${fpath[1]}/_stripcheck"
  stripcheck completion fish | source
  stripcheck completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  usageArgs(cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs)),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletionV2(out, true)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

var (
	outputFormats  = []string{"console", "json", "junit", "tap", "html", "xlsx"}
	notifyServices = []string{"slack", "teams"}
	notifyPolicies = []string{"always", "failure", "success", "recovery"}
	logLevels      = []string{"debug", "info", "warn", "error"}
)

type completionFunc func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective)

func init() {
	rootCmd.AddCommand(completionCmd)
}

// registerRunCompletions is called once the run flags exist
func registerRunCompletions() {
	_ = runCmd.RegisterFlagCompletionFunc("only", completeScenarioIDs)
	_ = runCmd.RegisterFlagCompletionFunc("output", completeList(outputFormats))
	_ = runCmd.RegisterFlagCompletionFunc("notify", completeList(notifyServices))
	_ = runCmd.RegisterFlagCompletionFunc("notify-on", cobra.FixedCompletions(notifyPolicies, cobra.ShellCompDirectiveNoFileComp))
	_ = runCmd.RegisterFlagCompletionFunc("log-level", cobra.FixedCompletions(logLevels, cobra.ShellCompDirectiveNoFileComp))
	_ = runCmd.MarkFlagFilename("config", "yaml", "yml", "json")
	_ = runCmd.MarkFlagFilename("env-file", "env")
}

// completeFixtures offers JSON files for validate
func completeFixtures(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeScenarioIDs offers scenario IDs, continuing after the last comma
func completeScenarioIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var ids []string
	for _, sc := range formation.New(nil, nil, config.DefaultSelectors()).Scenarios() {
		ids = append(ids, sc.ID+"\t"+sc.Title)
	}
	return completeList(ids)(cmd, args, toComplete)
}

// completeList completes comma-separated values, skipping ones already given
func completeList(values []string) completionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		prefix := ""
		given := map[string]bool{}
		if i := strings.LastIndex(toComplete, ","); i >= 0 {
			prefix = toComplete[:i+1]
			for _, v := range strings.Split(toComplete[:i], ",") {
				given[strings.TrimSpace(v)] = true
			}
		}

		var out []string
		for _, v := range values {
			name, _, _ := strings.Cut(v, "\t")
			if !given[name] {
				out = append(out, prefix+v)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
}
