package browser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/stripcheck/packages/core/runner"
	"github.com/playwright-community/playwright-go"
)

// Classify wraps a Playwright error with the runner sentinel it stands for:
// ErrNotReached for timeouts and ErrAborted for a closed page, context or browser
func Classify(action, selector string, err error) error {
	if err == nil {
		return nil
	}
	msg := firstLine(err.Error())
	switch {
	case errors.Is(err, playwright.ErrTimeout):
		return fmt.Errorf("%w: %s %s: %s", runner.ErrNotReached, action, selector, msg)
	case errors.Is(err, playwright.ErrTargetClosed):
		return fmt.Errorf("%w: %s %s: %s", runner.ErrAborted, action, selector, msg)
	default:
		return fmt.Errorf("%s %s: %w", action, selector, err)
	}
}

// firstLine drops the call log Playwright appends to its messages
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
