package browser

import (
	"context"

	"github.com/playwright-community/playwright-go"
)

// Open navigates to the base URL and waits for the load event
func (s *Session) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.Goto(s.opts.BaseURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	return Classify("open", s.opts.BaseURL, err)
}

// Reload reloads the page so the application re-reads storage
func (s *Session) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.Reload(playwright.PageReloadOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	return Classify("reload", s.opts.BaseURL, err)
}

func (s *Session) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return Classify("click", selector, s.page.Locator(selector).First().Click())
}

func (s *Session) Fill(ctx context.Context, selector, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return Classify("fill", selector, s.page.Locator(selector).First().Fill(value))
}

// Select picks an option by value in a <select>
func (s *Session) Select(ctx context.Context, selector, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.Locator(selector).First().SelectOption(playwright.SelectOptionValues{
		Values: &[]string{value},
	})
	return Classify("select", selector, err)
}

// Count returns how many nodes match selector without waiting
func (s *Session) Count(ctx context.Context, selector string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := s.page.Locator(selector).Count()
	return n, Classify("count", selector, err)
}

// Text returns the text content of the first match
func (s *Session) Text(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := s.page.Locator(selector).First().TextContent()
	return text, Classify("text", selector, err)
}

// Value returns the current value of the first matching input
func (s *Session) Value(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	value, err := s.page.Locator(selector).First().InputValue()
	return value, Classify("value", selector, err)
}

// WaitVisible waits until the first match is visible
func (s *Session) WaitVisible(ctx context.Context, selector string) error {
	return s.waitFor(ctx, "wait visible", selector, playwright.WaitForSelectorStateVisible)
}

// WaitHidden waits until no match is visible
func (s *Session) WaitHidden(ctx context.Context, selector string) error {
	return s.waitFor(ctx, "wait hidden", selector, playwright.WaitForSelectorStateHidden)
}

func (s *Session) waitFor(ctx context.Context, action, selector string, state *playwright.WaitForSelectorState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opts := playwright.LocatorWaitForOptions{State: state}
	// zero means no timeout to Playwright, so leave the page default in place
	if s.opts.Timeout > 0 {
		opts.Timeout = playwright.Float(float64(s.opts.Timeout.Milliseconds()))
	}
	return Classify(action, selector, s.page.Locator(selector).First().WaitFor(opts))
}

// Visible reports whether the first match is currently visible, without waiting
func (s *Session) Visible(ctx context.Context, selector string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	visible, err := s.page.Locator(selector).First().IsVisible()
	return visible, Classify("visible", selector, err)
}
