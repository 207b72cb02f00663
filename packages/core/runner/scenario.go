package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/stripcheck/packages/assertions"
)

// Scenario statuses as they appear in reports
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
	StatusSkip = "SKIP"
)

// Scenario is one independent behaviour check
type Scenario struct {
	ID    string
	Title string
	Run   func(ctx context.Context, c *Case) error
}

// Case collects what a running scenario observes
type Case struct {
	id      string
	driver  Driver
	checks  []*assertions.Result
	notes   []string
	refs    []string
	started time.Time
}

func newCase(id string, driver Driver) *Case {
	return &Case{id: id, driver: driver, started: time.Now()}
}

// Check evaluates actual against expected and records the result.
// It returns whether the check passed.
func (c *Case) Check(subject string, op assertions.Operator, expected, actual any) bool {
	result := assertions.Evaluate(assertions.Check{
		Subject:  subject,
		Operator: op,
		Expected: expected,
		Actual:   actual,
	})
	c.checks = append(c.checks, result)
	return result.Passed
}

// Notef adds a free-form note to the scenario record
func (c *Case) Notef(format string, args ...any) {
	c.notes = append(c.notes, fmt.Sprintf(format, args...))
}

// Screenshot captures the page as <ID>-<name>.png, or <ID>.png when name is empty
func (c *Case) Screenshot(ctx context.Context, name string) error {
	file := c.id
	if name != "" {
		file = c.id + "-" + name
	}
	ref, err := c.driver.Screenshot(ctx, file)
	if err != nil {
		return fmt.Errorf("screenshot %s: %w", file, err)
	}
	c.refs = append(c.refs, ref)
	return nil
}

// ScenarioResult is the record produced for every scenario
type ScenarioResult struct {
	ID         string
	Title      string
	Status     string
	Passed     bool
	Skipped    bool
	Note       string
	Refs       []string
	Checks     []*assertions.Result
	PageErrors []string
	Duration   time.Duration
	Error      error
}

const reasonCancelled = "run cancelled"

// notRun records a scenario that never started
func notRun(sc Scenario, reason string) *ScenarioResult {
	return &ScenarioResult{
		ID:     sc.ID,
		Title:  sc.Title,
		Status: StatusFail,
		Note:   "not run: " + reason,
		Error:  fmt.Errorf("%s: %s", sc.ID, reason),
	}
}

func skipped(sc Scenario, reason string) *ScenarioResult {
	return &ScenarioResult{
		ID:      sc.ID,
		Title:   sc.Title,
		Status:  StatusSkip,
		Skipped: true,
		Note:    reason,
	}
}

// buildNote summarizes why a scenario passed or failed
func buildNote(notes []string, err error, checks []*assertions.Result, pageErrors []string) string {
	parts := append([]string(nil), notes...)

	if err != nil {
		parts = append(parts, err.Error())
	}
	for _, f := range assertions.Failures(checks) {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Subject, f.Message))
	}
	if len(pageErrors) > 0 {
		parts = append(parts, fmt.Sprintf("%d page error(s): %s", len(pageErrors), pageErrors[0]))
	}

	return strings.Join(parts, "; ")
}
