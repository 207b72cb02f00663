// Package notify sends run summaries to chat webhooks.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/stripcheck/packages/core/runner"
)

// NotifyOn specifies when to send notifications
type NotifyOn string

const (
	// NotifyAlways sends notifications for every run
	NotifyAlways NotifyOn = "always"
	// NotifyFailure sends notifications only when scenarios fail
	NotifyFailure NotifyOn = "failure"
	// NotifySuccess sends notifications only when every scenario passes
	NotifySuccess NotifyOn = "success"
	// NotifyRecovery sends notifications on failure and on the first passing run after one
	NotifyRecovery NotifyOn = "recovery"
)

// ParseNotifyOn validates a policy name
func ParseNotifyOn(s string) (NotifyOn, error) {
	switch n := NotifyOn(s); n {
	case NotifyAlways, NotifyFailure, NotifySuccess, NotifyRecovery:
		return n, nil
	}
	return "", fmt.Errorf("unknown notify policy %q (want always, failure, success or recovery)", s)
}

// RunSummary represents the summary of a run for notifications
type RunSummary struct {
	RunID           string           `json:"run_id"`
	TotalScenarios  int              `json:"total_scenarios"`
	Passed          int              `json:"passed"`
	Failed          int              `json:"failed"`
	Skipped         int              `json:"skipped"`
	Duration        time.Duration    `json:"duration"`
	BaseURL         string           `json:"base_url,omitempty"`
	FailedScenarios []FailedScenario `json:"failed_scenarios,omitempty"`
	IsRecovery      bool             `json:"is_recovery,omitempty"`
}

// FailedScenario represents a failed scenario for notifications
type FailedScenario struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Note  string `json:"note,omitempty"`
}

// NewSummary builds a notification summary from a run
func NewSummary(result *runner.RunResult, baseURL string) *RunSummary {
	s := &RunSummary{
		RunID:          result.RunID,
		TotalScenarios: len(result.Results),
		Passed:         result.Passed,
		Failed:         result.Failed,
		Skipped:        result.Skipped,
		Duration:       result.Duration,
		BaseURL:        baseURL,
	}
	for _, r := range result.Results {
		if r.Status == runner.StatusFail {
			s.FailedScenarios = append(s.FailedScenarios, FailedScenario{
				ID:    r.ID,
				Title: r.Title,
				Note:  r.Note,
			})
		}
	}
	return s
}

func (s *RunSummary) title() string {
	switch {
	case s.Failed > 0:
		return fmt.Sprintf("%d scenario(s) failed", s.Failed)
	case s.IsRecovery:
		return "Formation checks recovered!"
	}
	return "All scenarios passed!"
}

// Notifier is the interface for notification services
type Notifier interface {
	// Notify sends a notification about a run
	Notify(ctx context.Context, summary *RunSummary) error

	// Name returns the name of the notifier
	Name() string
}

// Manager manages multiple notifiers
type Manager struct {
	notifiers []Notifier
	notifyOn  NotifyOn
	lastState bool // true if last run was successful
}

// NewManager creates a new notification manager
func NewManager(notifyOn NotifyOn, notifiers ...Notifier) *Manager {
	return &Manager{
		notifiers: notifiers,
		notifyOn:  notifyOn,
		lastState: true, // Assume success initially
	}
}

// AddNotifier adds a notifier to the manager
func (m *Manager) AddNotifier(n Notifier) {
	m.notifiers = append(m.notifiers, n)
}

// SetLastState seeds the recovery policy with the outcome of a previous run,
// typically read from run history
func (m *Manager) SetLastState(passed bool) {
	m.lastState = passed
}

// Notify sends notifications based on the configured policy
func (m *Manager) Notify(ctx context.Context, summary *RunSummary) error {
	shouldNotify := false
	currentSuccess := summary.Failed == 0

	switch m.notifyOn {
	case NotifyAlways:
		shouldNotify = true
	case NotifyFailure:
		shouldNotify = !currentSuccess
	case NotifySuccess:
		shouldNotify = currentSuccess
	case NotifyRecovery:
		if !m.lastState && currentSuccess {
			shouldNotify = true
			summary.IsRecovery = true
		}
		if !currentSuccess {
			shouldNotify = true
		}
	}

	m.lastState = currentSuccess

	if !shouldNotify {
		return nil
	}

	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, summary); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}

	return errors.Join(errs...)
}
