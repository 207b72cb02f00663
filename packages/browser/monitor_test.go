package browser

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/abdul-hamid-achik/stripcheck/packages/core/config"
	"github.com/stretchr/testify/assert"
)

func TestMonitor_RecordsErrorsOnly(t *testing.T) {
	m := NewMonitor(nil)

	m.Console("log", "board ready")
	m.Console("warning", "deprecated API")
	m.Console("error", "Uncaught TypeError")
	m.PageError(errors.New("ReferenceError: formation is not defined"))
	m.PageError(nil)

	assert.Equal(t, []string{
		"console: Uncaught TypeError",
		"pageerror: ReferenceError: formation is not defined",
	}, m.Errors())
}

func TestMonitor_AllowList(t *testing.T) {
	m := NewMonitor(config.DefaultIgnoreErrors)

	m.Console("error", "Failed to load resource: net::ERR_INTERNET_DISCONNECTED")
	m.Console("error", "GET https://cdn.example.com/xlsx.js net::ERR_NAME_NOT_RESOLVED")
	m.Console("error", "Cannot read properties of null (reading 'elements')")

	assert.Equal(t, []string{"console: Cannot read properties of null (reading 'elements')"}, m.Errors())
}

func TestMonitor_EmptyIgnoreEntryMatchesNothing(t *testing.T) {
	m := NewMonitor([]string{""})
	m.Console("error", "boom")
	assert.Len(t, m.Errors(), 1)
}

func TestMonitor_Reset(t *testing.T) {
	m := NewMonitor(nil)
	m.Console("error", "boom")
	m.Reset()

	assert.Nil(t, m.Errors())
}

func TestMonitor_ErrorsReturnsCopy(t *testing.T) {
	m := NewMonitor(nil)
	m.Console("error", "boom")

	errs := m.Errors()
	errs[0] = "changed"

	assert.Equal(t, []string{"console: boom"}, m.Errors())
}

func TestMonitor_ConcurrentEvents(t *testing.T) {
	m := NewMonitor(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			m.Console("error", fmt.Sprintf("error %d", n))
		}(i)
	}
	wg.Wait()

	assert.Len(t, m.Errors(), 50)
}
