package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/stripcheck/packages/browser"
	"github.com/abdul-hamid-achik/stripcheck/packages/core/config"
	"github.com/abdul-hamid-achik/stripcheck/packages/core/env"
	"github.com/abdul-hamid-achik/stripcheck/packages/core/runner"
	"github.com/abdul-hamid-achik/stripcheck/packages/history"
	"github.com/abdul-hamid-achik/stripcheck/packages/logger"
	"github.com/abdul-hamid-achik/stripcheck/packages/notify"
	"github.com/abdul-hamid-achik/stripcheck/packages/output"
	"github.com/abdul-hamid-achik/stripcheck/packages/scenarios/formation"
	"github.com/abdul-hamid-achik/stripcheck/packages/storage"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the formation scenarios against the strip board",
	Long: `Run scenarios F1-F10 against a running strip board.

The board must already be served at the base URL. Every scenario records
PASS or FAIL with a note and screenshot references, results.json is written
into the artifacts directory, and the exit code is 1 when any scenario fails.

Examples:
  stripcheck run
  stripcheck run --base-url http://localhost:8080/
  stripcheck run --only F3,F4 --headless=false --slow-mo 250ms
  stripcheck run -o junit --output-file artifacts/junit.xml
  stripcheck run -o console,html,xlsx
  stripcheck run --env-file .env.ci --notify slack --notify-on recovery
  stripcheck run --watch`,
	Args:         usageArgs(cobra.NoArgs),
	SilenceUsage: true,
	RunE:         runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	configFlag        string
	envFileFlag       string
	baseURLFlag       string
	artifactsFlag     string
	headlessFlag      bool
	slowMoFlag        string
	timeoutFlag       string
	settleTimeoutFlag string
	onlyFlag          string
	verboseFlag       int // 0=off, 1=-v, 2=-vv
	noColorFlag       bool
	outputFlag        string
	outputFileFlag    string
	logLevelFlag      string
	historyDBFlag     string
	installFlag       bool
	watchFlag         bool

	// Notification flags
	notifyFlag       string
	notifyOnFlag     string
	slackWebhookFlag string
	slackChannelFlag string
	teamsWebhookFlag string
)

// flagEnv maps run flags onto the environment variables that can set them
var flagEnv = map[string]string{
	"config":         "STRIPCHECK_CONFIG",
	"base-url":       "STRIPCHECK_BASE_URL",
	"artifacts":      "STRIPCHECK_ARTIFACTS",
	"headless":       "STRIPCHECK_HEADLESS",
	"slow-mo":        "STRIPCHECK_SLOW_MO",
	"timeout":        "STRIPCHECK_TIMEOUT",
	"settle-timeout": "STRIPCHECK_SETTLE_TIMEOUT",
	"only":           "STRIPCHECK_ONLY",
	"no-color":       "STRIPCHECK_NO_COLOR",
	"output":         "STRIPCHECK_OUTPUT",
	"output-file":    "STRIPCHECK_OUTPUT_FILE",
	"log-level":      "STRIPCHECK_LOG_LEVEL",
	"history-db":     "STRIPCHECK_HISTORY_DB",
	"install":        "STRIPCHECK_INSTALL",
	"notify":         "STRIPCHECK_NOTIFY",
	"notify-on":      "STRIPCHECK_NOTIFY_ON",
	"slack-webhook":  "SLACK_WEBHOOK",
	"slack-channel":  "SLACK_CHANNEL",
	"teams-webhook":  "TEAMS_WEBHOOK",
}

func init() {
	// Core flags
	runCmd.Flags().StringVar(&configFlag, "config", getEnvString("STRIPCHECK_CONFIG", ""), "Path to config file (env: STRIPCHECK_CONFIG)")
	runCmd.Flags().StringVar(&envFileFlag, "env-file", getEnvString("STRIPCHECK_ENV_FILE", ""), "Path to .env file exported before config is resolved (env: STRIPCHECK_ENV_FILE)")
	runCmd.Flags().StringVar(&baseURLFlag, "base-url", getEnvString("STRIPCHECK_BASE_URL", config.DefaultBaseURL), "URL of the running strip board (env: STRIPCHECK_BASE_URL)")
	runCmd.Flags().StringVar(&artifactsFlag, "artifacts", getEnvString("STRIPCHECK_ARTIFACTS", config.DefaultArtifactsDir), "Directory for screenshots and results.json (env: STRIPCHECK_ARTIFACTS)")
	runCmd.Flags().StringVarP(&onlyFlag, "only", "n", getEnvString("STRIPCHECK_ONLY", ""), "Run only scenarios matching comma-separated ID patterns, e.g. F3,F1* (env: STRIPCHECK_ONLY)")

	// Browser flags
	runCmd.Flags().BoolVar(&headlessFlag, "headless", getEnvBool("STRIPCHECK_HEADLESS", true), "Run the browser headless (env: STRIPCHECK_HEADLESS)")
	runCmd.Flags().StringVar(&slowMoFlag, "slow-mo", getEnvString("STRIPCHECK_SLOW_MO", "0s"), "Delay between browser operations (env: STRIPCHECK_SLOW_MO)")
	runCmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("STRIPCHECK_TIMEOUT", "5s"), "Per-action timeout (e.g., 5s, 500ms) (env: STRIPCHECK_TIMEOUT)")
	runCmd.Flags().StringVar(&settleTimeoutFlag, "settle-timeout", getEnvString("STRIPCHECK_SETTLE_TIMEOUT", "3s"), "Bound for waits on storage and DOM after an action (env: STRIPCHECK_SETTLE_TIMEOUT)")
	runCmd.Flags().BoolVar(&installFlag, "install", getEnvBool("STRIPCHECK_INSTALL", false), "Install the Playwright driver and Chromium before running (env: STRIPCHECK_INSTALL)")

	// Output flags
	runCmd.Flags().CountVarP(&verboseFlag, "verbose", "v", "Verbose output (-v shows passing checks, -vv debug logging)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("STRIPCHECK_NO_COLOR", false), "Disable colored output (env: STRIPCHECK_NO_COLOR)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("STRIPCHECK_OUTPUT", "console"), "Output formats, comma-separated: console, json, junit, tap, html, xlsx (env: STRIPCHECK_OUTPUT)")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("STRIPCHECK_OUTPUT_FILE", ""), "Write the first output format to file (default: stdout) (env: STRIPCHECK_OUTPUT_FILE)")
	runCmd.Flags().StringVar(&logLevelFlag, "log-level", getEnvString("STRIPCHECK_LOG_LEVEL", "warn"), "Log level: debug, info, warn, error (env: STRIPCHECK_LOG_LEVEL)")
	runCmd.Flags().StringVar(&historyDBFlag, "history-db", getEnvString("STRIPCHECK_HISTORY_DB", ""), "Run history database, empty string disables (env: STRIPCHECK_HISTORY_DB)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch the config and env files and re-run on change")

	// Notification flags
	runCmd.Flags().StringVar(&notifyFlag, "notify", getEnvString("STRIPCHECK_NOTIFY", ""), "Notification service: slack, teams (env: STRIPCHECK_NOTIFY)")
	runCmd.Flags().StringVar(&notifyOnFlag, "notify-on", getEnvString("STRIPCHECK_NOTIFY_ON", "failure"), "When to notify: always, failure, success, recovery (env: STRIPCHECK_NOTIFY_ON)")
	runCmd.Flags().StringVar(&slackWebhookFlag, "slack-webhook", getEnvString("SLACK_WEBHOOK", ""), "Slack webhook URL (env: SLACK_WEBHOOK)")
	runCmd.Flags().StringVar(&slackChannelFlag, "slack-channel", getEnvString("SLACK_CHANNEL", ""), "Slack channel override (env: SLACK_CHANNEL)")
	runCmd.Flags().StringVar(&teamsWebhookFlag, "teams-webhook", getEnvString("TEAMS_WEBHOOK", ""), "Microsoft Teams webhook URL (env: TEAMS_WEBHOOK)")

	registerRunCompletions()
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return isTruthy(val)
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func isTruthy(val string) bool {
	val = strings.ToLower(strings.TrimSpace(val))
	return val == "true" || val == "1" || val == "yes"
}

// lookupFlag returns a flag's value when it was given on the command line
// or its environment variable is set now. Flag defaults are read from the
// environment at startup, before --env-file is exported, so the variable
// is read again here.
func lookupFlag(cmd *cobra.Command, name string) (string, bool) {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		return f.Value.String(), true
	}
	if key, ok := flagEnv[name]; ok {
		if val := os.Getenv(key); val != "" {
			return val, true
		}
	}
	return "", false
}

// flagOr returns the effective value of a string flag
func flagOr(cmd *cobra.Command, name, current string) string {
	if val, ok := lookupFlag(cmd, name); ok {
		return val
	}
	return current
}

// Formatter interface for all output formatters
type Formatter interface {
	FormatResult(result *runner.RunResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable interface for formatters that need to flush output
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// exportedEnv holds the keys exported from --env-file so a watch re-run can
// pick up edits to the file
var exportedEnv []string

func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	level := flagOr(cmd, "log-level", logLevelFlag)
	if verboseFlag > 1 {
		level = "debug"
	}
	log := logger.New(level)
	defer func() { _ = log.Sync() }()

	notifyManager, err := buildNotifyManager(cmd)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nReceived interrupt, stopping gracefully...")
			cancel()
		case <-ctx.Done():
		}
	}()

	result, err := executeRun(ctx, cmd, cfg, log)
	if err != nil {
		return err
	}
	afterRun(ctx, cfg, result, notifyManager, log)

	// If watch mode is not enabled, exit normally
	if !watchFlag {
		if result.Failed > 0 {
			return withExitCode(ExitTestFailure, nil)
		}
		return nil
	}

	return watch(ctx, cmd, cfg, notifyManager, log)
}

// loadRunConfig resolves the run configuration: defaults, then the config
// file, then STRIPCHECK_* variables and command-line flags.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	if envFileFlag != "" {
		for _, key := range exportedEnv {
			_ = os.Unsetenv(key)
		}
		exported, err := env.LoadAndExportDotEnv(envFileFlag)
		if err != nil {
			return nil, withExitCode(ExitConfigError, err)
		}
		exportedEnv = exported
	}

	cfg, err := config.LoadConfig(flagOr(cmd, "config", configFlag))
	if err != nil {
		return nil, withExitCode(ExitConfigError, fmt.Errorf("cannot load config: %w", err))
	}

	if err := applyFlagOverrides(cmd, cfg); err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, withExitCode(ExitConfigError, fmt.Errorf("invalid config: %w", err))
	}
	return cfg, nil
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	if v, ok := lookupFlag(cmd, "base-url"); ok {
		cfg.BaseURL = v
	}
	if v, ok := lookupFlag(cmd, "artifacts"); ok {
		cfg.ArtifactsDir = v
	}
	if v, ok := lookupFlag(cmd, "headless"); ok {
		cfg.Headless = config.BoolPtr(isTruthy(v))
	}
	if v, ok := lookupFlag(cmd, "no-color"); ok {
		cfg.NoColor = config.BoolPtr(isTruthy(v))
	}
	if verboseFlag > 0 {
		cfg.Verbose = config.BoolPtr(true)
	}
	// --history-db "" disables history
	if v, ok := lookupFlag(cmd, "history-db"); ok {
		cfg.HistoryDB = config.StringPtr(v)
	}
	if v, ok := lookupFlag(cmd, "output"); ok {
		cfg.Reporters = splitList(v)
	}

	durations := []struct {
		name   string
		target *int
	}{
		{"slow-mo", &cfg.SlowMo},
		{"timeout", &cfg.Timeout},
		{"settle-timeout", &cfg.SettleTimeout},
	}
	for _, d := range durations {
		v, ok := lookupFlag(cmd, d.name)
		if !ok {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w (use format like 5s, 250ms)", d.name, v, err)
		}
		*d.target = int(parsed.Milliseconds())
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}

func buildNotifyManager(cmd *cobra.Command) (*notify.Manager, error) {
	services := flagOr(cmd, "notify", notifyFlag)
	if services == "" {
		return nil, nil
	}

	notifyOn, err := notify.ParseNotifyOn(flagOr(cmd, "notify-on", notifyOnFlag))
	if err != nil {
		return nil, err
	}

	var notifiers []notify.Notifier
	for _, service := range splitList(services) {
		switch service {
		case "slack":
			webhook := flagOr(cmd, "slack-webhook", slackWebhookFlag)
			if webhook == "" {
				return nil, fmt.Errorf("--slack-webhook is required when using --notify slack")
			}
			slackOpts := []notify.SlackOption{}
			if channel := flagOr(cmd, "slack-channel", slackChannelFlag); channel != "" {
				slackOpts = append(slackOpts, notify.WithSlackChannel(channel))
			}
			notifiers = append(notifiers, notify.NewSlackNotifier(webhook, slackOpts...))

		case "teams":
			webhook := flagOr(cmd, "teams-webhook", teamsWebhookFlag)
			if webhook == "" {
				return nil, fmt.Errorf("--teams-webhook is required when using --notify teams")
			}
			notifiers = append(notifiers, notify.NewTeamsNotifier(webhook))

		default:
			return nil, fmt.Errorf("unknown notification service %q", service)
		}
	}

	return notify.NewManager(notifyOn, notifiers...), nil
}

// executeRun launches the browser, runs the scenarios and writes every report
func executeRun(ctx context.Context, cmd *cobra.Command, cfg *config.Config, log logger.Logger) (*runner.RunResult, error) {
	reports, err := openReports(cmd, cfg)
	if err != nil {
		return nil, err
	}
	defer reports.close()

	reports.header(version)

	opts := browser.OptionsFromConfig(cfg)
	opts.Install = isTruthy(flagOr(cmd, "install", strconv.FormatBool(installFlag)))
	opts.Logger = log

	session, err := browser.Launch(ctx, opts)
	if err != nil {
		reports.error(err)
		return nil, withExitCode(ExitBrowserError, err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn("closing browser session", "error", err)
		}
	}()

	// An unreachable board is not fatal: every scenario reloads and records
	// its own failure.
	if err := session.Open(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot open %s: %v\n", cfg.BaseURL, err)
	}

	store := storage.New(session.Page(), storage.Keys{
		Movements: cfg.Storage.MovementsKey,
		Bookings:  cfg.Storage.BookingsKey,
	}, storage.WithTimeout(cfg.SettleDuration()))

	suite := formation.New(session, store, cfg.Selectors)

	r := runner.NewRunner(session, &runner.Config{
		NameFilter: flagOr(cmd, "only", onlyFlag),
		Verbose:    cfg.GetVerbose(),
		Logger:     log,
	})
	result := r.Run(ctx, suite.Scenarios())

	if path, err := output.WriteEvidence(cfg.ArtifactsDir, result); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	} else {
		log.Info("evidence written", "path", path)
	}

	if err := reports.finish(result); err != nil {
		return result, fmt.Errorf("error writing output: %w", err)
	}
	for _, path := range reports.files {
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written: %s\n", path)
	}

	return result, nil
}

// afterRun records history and sends notifications. Failures here are
// warnings; they never change the run outcome.
func afterRun(ctx context.Context, cfg *config.Config, result *runner.RunResult, manager *notify.Manager, log logger.Logger) {
	// still record and notify after an interrupt
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	if path := cfg.GetHistoryDB(); path != "" {
		store, err := history.Open(ctx, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: history disabled: %v\n", err)
		} else {
			defer store.Close()

			if manager != nil {
				last, err := store.LastRun(ctx)
				switch {
				case err == nil:
					manager.SetLastState(last.Succeeded())
				case !errors.Is(err, history.ErrNoRuns):
					log.Warn("reading last run", "error", err)
				}
			}

			if err := store.Record(ctx, result, cfg.BaseURL); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to record run history: %v\n", err)
			}
		}
	}

	if manager != nil {
		if err := manager.Notify(ctx, notify.NewSummary(result, cfg.BaseURL)); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to send notification: %v\n", err)
		}
	}
}

// watch re-runs the scenarios whenever the config file or env file changes
func watch(ctx context.Context, cmd *cobra.Command, cfg *config.Config, manager *notify.Manager, log logger.Logger) error {
	targets := map[string]bool{}
	for _, p := range []string{cfg.Source(), envFileFlag} {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			targets[abs] = true
		}
	}
	if len(targets) == 0 {
		fmt.Fprintf(os.Stderr, "warning: no config or env file to watch\n")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace files, so watch the directories
	watchedDirs := make(map[string]bool)
	for target := range targets {
		dir := filepath.Dir(target)
		if watchedDirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		watchedDirs[dir] = true
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	rerun := make(chan string, 1)
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !targets[abs] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			// Debounce: reset timer on each event
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				select {
				case rerun <- name:
				default:
				}
			})

		case name := <-rerun:
			fmt.Fprintf(cmd.OutOrStdout(), "\n\nFile changed: %s\nRe-running scenarios...\n\n", name)

			next, err := loadRunConfig(cmd)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: keeping previous config: %v\n", err)
				next = cfg
			}
			cfg = next

			result, err := executeRun(ctx, cmd, cfg, log)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			} else {
				afterRun(ctx, cfg, result, manager, log)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "warning: watcher error: %v\n", err)
		}
	}
}
