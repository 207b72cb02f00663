package browser

import (
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// Monitor collects console and uncaught page errors. Playwright delivers
// events on its own goroutine, so all access is locked.
type Monitor struct {
	mu     sync.Mutex
	ignore []string
	errors []string
}

// NewMonitor creates a monitor that drops messages containing any ignore substring
func NewMonitor(ignore []string) *Monitor {
	return &Monitor{ignore: append([]string(nil), ignore...)}
}

// Attach subscribes the monitor to page events
func (m *Monitor) Attach(page playwright.Page) {
	page.OnConsole(func(msg playwright.ConsoleMessage) {
		m.Console(msg.Type(), msg.Text())
	})
	page.OnPageError(func(err error) {
		m.PageError(err)
	})
}

// Console records a console message of type "error"
func (m *Monitor) Console(kind, text string) {
	if kind != "error" {
		return
	}
	m.add("console: " + text)
}

// PageError records an uncaught exception thrown by the page
func (m *Monitor) PageError(err error) {
	if err == nil {
		return
	}
	m.add("pageerror: " + err.Error())
}

func (m *Monitor) add(msg string) {
	for _, s := range m.ignore {
		if s != "" && strings.Contains(msg, s) {
			return
		}
	}
	m.mu.Lock()
	m.errors = append(m.errors, msg)
	m.mu.Unlock()
}

// Reset forgets every recorded error
func (m *Monitor) Reset() {
	m.mu.Lock()
	m.errors = nil
	m.mu.Unlock()
}

// Errors returns a copy of the recorded errors
func (m *Monitor) Errors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.errors) == 0 {
		return nil
	}
	return append([]string(nil), m.errors...)
}
