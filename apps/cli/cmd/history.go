package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/stripcheck/packages/core/config"
	"github.com/abdul-hamid-achik/stripcheck/packages/core/runner"
	"github.com/abdul-hamid-achik/stripcheck/packages/history"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	historyLimitFlag int
	historyRunFlag   string
	historyDBPath    string
	historyConfig    string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs",
	Long: `Show recent runs from the history database, newest first.

Examples:
  stripcheck history
  stripcheck history --limit 5
  stripcheck history --run 6f1c2b0e-...`,
	Args: usageArgs(cobra.NoArgs),
	RunE: historyCommand,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", getEnvInt("STRIPCHECK_HISTORY_LIMIT", 20), "Number of runs to show (env: STRIPCHECK_HISTORY_LIMIT)")
	historyCmd.Flags().StringVar(&historyRunFlag, "run", "", "Show the scenario results of one run")
	historyCmd.Flags().StringVar(&historyDBPath, "history-db", getEnvString("STRIPCHECK_HISTORY_DB", ""), "Run history database (default: from config) (env: STRIPCHECK_HISTORY_DB)")
	historyCmd.Flags().StringVar(&historyConfig, "config", getEnvString("STRIPCHECK_CONFIG", ""), "Path to config file (env: STRIPCHECK_CONFIG)")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	path := historyDBPath
	if path == "" {
		cfg, err := config.LoadConfig(historyConfig)
		if err != nil {
			return withExitCode(ExitConfigError, fmt.Errorf("cannot load config: %w", err))
		}
		path = cfg.GetHistoryDB()
	}
	if path == "" {
		return withExitCode(ExitConfigError, fmt.Errorf("run history is disabled (history_db is empty)"))
	}

	ctx := context.Background()
	store, err := history.Open(ctx, path)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	defer store.Close()

	if historyRunFlag != "" {
		return showRun(ctx, cmd, store, historyRunFlag)
	}

	runs, err := store.Recent(ctx, historyLimitFlag)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No runs recorded in %s\n", store.Path())
		return nil
	}

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	for _, r := range runs {
		status := green("PASS")
		if !r.Succeeded() {
			status = red("FAIL")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s  %d/%d passed  %s\n",
			r.Started.Local().Format(time.DateTime),
			status,
			r.ID,
			r.Passed,
			r.Total-r.Skipped,
			r.Duration.Round(time.Millisecond))
	}

	return nil
}

func showRun(ctx context.Context, cmd *cobra.Command, store *history.Store, runID string) error {
	scenarios, err := store.Scenarios(ctx, runID)
	if err != nil {
		return err
	}
	if len(scenarios) == 0 {
		return fmt.Errorf("no run with id %s", runID)
	}

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	for _, s := range scenarios {
		status := red(s.Status)
		switch s.Status {
		case runner.StatusPass:
			status = green(s.Status)
		case runner.StatusSkip:
			status = yellow(s.Status)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %-4s %s  %s\n", s.ID, status, s.Title)
		if s.Note != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "       %s\n", s.Note)
		}
	}

	return nil
}
