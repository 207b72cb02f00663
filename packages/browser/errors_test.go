package browser

import (
	"errors"
	"fmt"
	"testing"

	"github.com/abdul-hamid-achik/stripcheck/packages/core/runner"
	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Classify("click", "#x", nil))
	})

	t.Run("timeout is not reached", func(t *testing.T) {
		cause := fmt.Errorf("%w: Timeout 5000ms exceeded.\nCall log:\n  - waiting for locator", playwright.ErrTimeout)
		err := Classify("wait visible", "#editModal", cause)

		assert.ErrorIs(t, err, runner.ErrNotReached)
		assert.NotContains(t, err.Error(), "Call log")
		assert.Contains(t, err.Error(), "not reached: wait visible #editModal")
	})

	t.Run("closed target aborts", func(t *testing.T) {
		cause := fmt.Errorf("%w: page has been closed", playwright.ErrTargetClosed)
		err := Classify("click", ".js-edit", cause)

		assert.ErrorIs(t, err, runner.ErrAborted)
		assert.NotErrorIs(t, err, runner.ErrNotReached)
	})

	t.Run("other errors keep their cause", func(t *testing.T) {
		cause := errors.New("element is not a <select> element")
		err := Classify("select", "#newWtc", cause)

		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "select #newWtc: element is not a <select> element", err.Error())
	})
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "one", firstLine("one\ntwo"))
	assert.Equal(t, "one", firstLine("one  \n"))
	assert.Equal(t, "single", firstLine("single"))
}
