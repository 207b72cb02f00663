package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/stripcheck/packages/assertions"
	"github.com/abdul-hamid-achik/stripcheck/packages/logger"
	"github.com/google/uuid"
)

// Driver is the part of the browser session the runner needs between scenarios
type Driver interface {
	ResetErrors()
	PageErrors() []string
	Screenshot(ctx context.Context, name string) (string, error)
}

type Runner struct {
	driver Driver
	config *Config
	log    logger.Logger
}

type Config struct {
	// NameFilter selects scenarios by ID: comma-separated patterns with leading and trailing *
	NameFilter string
	Verbose    bool
	Logger     logger.Logger
	// OnResult is called after each scenario record is appended
	OnResult func(*ScenarioResult)
}

func NewRunner(driver Driver, cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{}
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Runner{
		driver: driver,
		config: cfg,
		log:    log,
	}
}

type RunResult struct {
	RunID    string
	Started  time.Time
	Results  []*ScenarioResult
	Duration time.Duration
	Passed   int
	Failed   int
	Skipped  int
	Timing   Timing
}

// Total counts every recorded scenario except skipped ones
func (r *RunResult) Total() int {
	return r.Passed + r.Failed
}

// Run executes scenarios in order and returns one record per scenario
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) *RunResult {
	start := time.Now()
	result := &RunResult{
		RunID:   uuid.NewString(),
		Started: start,
	}
	timing := newTimingRecorder()

	log := r.log.With("run_id", result.RunID)
	log.Info("run started", "scenarios", len(scenarios))

	abortReason := ""
	for _, sc := range scenarios {
		var sr *ScenarioResult

		switch {
		case !Selected(sc.ID, r.config.NameFilter):
			sr = skipped(sc, "filtered out")
		case abortReason != "":
			sr = notRun(sc, abortReason)
		case ctx.Err() != nil:
			abortReason = reasonCancelled
			sr = notRun(sc, abortReason)
		default:
			sr = r.runScenario(ctx, sc, log)
			timing.record(sr.Duration)
			if errors.Is(sr.Error, ErrAborted) {
				abortReason = ErrAborted.Error()
			}
		}

		result.Results = append(result.Results, sr)
		switch {
		case sr.Skipped:
			result.Skipped++
		case sr.Passed:
			result.Passed++
		default:
			result.Failed++
		}

		if r.config.OnResult != nil {
			r.config.OnResult(sr)
		}
	}

	result.Duration = time.Since(start)
	result.Timing = timing.summary()
	log.Info("run finished",
		"passed", result.Passed,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"duration", result.Duration)

	return result
}

func (r *Runner) runScenario(ctx context.Context, sc Scenario, log logger.Logger) *ScenarioResult {
	log = log.With("scenario", sc.ID)
	log.Debug("scenario started", "title", sc.Title)

	r.driver.ResetErrors()
	c := newCase(sc.ID, r.driver)

	err := execute(ctx, sc, c)

	if len(c.refs) == 0 && !errors.Is(err, ErrAborted) && ctx.Err() == nil {
		if shotErr := c.Screenshot(ctx, ""); shotErr != nil {
			log.Warn("screenshot failed", "error", shotErr)
			c.Notef("screenshot failed: %v", shotErr)
		}
	}

	pageErrors := r.driver.PageErrors()
	passed := err == nil && assertions.AllPassed(c.checks) && len(pageErrors) == 0

	sr := &ScenarioResult{
		ID:         sc.ID,
		Title:      sc.Title,
		Passed:     passed,
		Status:     StatusFail,
		Refs:       c.refs,
		Checks:     c.checks,
		PageErrors: pageErrors,
		Duration:   time.Since(c.started),
		Error:      err,
	}
	if passed {
		sr.Status = StatusPass
	}
	sr.Note = buildNote(c.notes, err, c.checks, pageErrors)
	// an interrupted scenario reads like the ones the interrupt kept from starting
	if err != nil && ctx.Err() != nil {
		sr.Note = "not run: " + reasonCancelled
	}

	if passed {
		log.Info("scenario passed", "duration", sr.Duration)
	} else {
		log.Warn("scenario failed", "duration", sr.Duration, "note", sr.Note)
	}
	if r.config.Verbose {
		for _, check := range c.checks {
			log.Debug("check", "subject", check.Subject, "operator", check.Operator,
				"expected", check.Expected, "actual", check.Actual, "passed", check.Passed)
		}
	}

	return sr
}

// execute runs the scenario body, turning a panic into an error so the run continues
func execute(ctx context.Context, sc Scenario, c *Case) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("scenario panicked: %v", rec)
		}
	}()
	if sc.Run == nil {
		return fmt.Errorf("scenario %s has no body", sc.ID)
	}
	return sc.Run(ctx, c)
}

// Selected reports whether id matches any of the comma-separated patterns in filter
func Selected(id, filter string) bool {
	if filter == "" {
		return true
	}
	for _, pattern := range strings.Split(filter, ",") {
		if pattern = strings.TrimSpace(pattern); pattern != "" && matchesPattern(id, pattern) {
			return true
		}
	}
	return false
}

func matchesPattern(name, pattern string) bool {
	if pattern == "" || pattern == "*" {
		return true
	}

	if pattern[0] == '*' && pattern[len(pattern)-1] == '*' {
		substr := pattern[1 : len(pattern)-1]
		for i := 0; i <= len(name)-len(substr); i++ {
			if name[i:i+len(substr)] == substr {
				return true
			}
		}
		return false
	}

	if pattern[0] == '*' {
		suffix := pattern[1:]
		return len(name) >= len(suffix) && name[len(name)-len(suffix):] == suffix
	}

	if pattern[len(pattern)-1] == '*' {
		prefix := pattern[:len(pattern)-1]
		return len(name) >= len(prefix) && name[:len(prefix)] == prefix
	}

	return name == pattern
}
