package runner

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/stripcheck/packages/assertions"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDriver struct {
	resets  int
	errs    []string
	shots   []string
	shotErr error
}

func (d *fakeDriver) ResetErrors() {
	d.resets++
	d.errs = nil
}

func (d *fakeDriver) PageErrors() []string {
	return d.errs
}

func (d *fakeDriver) Screenshot(_ context.Context, name string) (string, error) {
	if d.shotErr != nil {
		return "", d.shotErr
	}
	ref := "artifacts/" + name + ".png"
	d.shots = append(d.shots, ref)
	return ref, nil
}

func passing(id string) Scenario {
	return Scenario{ID: id, Title: "passes", Run: func(ctx context.Context, c *Case) error {
		c.Check("value", assertions.OpEquals, 1, 1)
		return nil
	}}
}

func ids(results []*ScenarioResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}

func TestNewRunner(t *testing.T) {
	t.Run("with nil config", func(t *testing.T) {
		r := NewRunner(&fakeDriver{}, nil)
		assert.NotNil(t, r)
		assert.NotNil(t, r.config)
		assert.NotNil(t, r.log)
	})

	t.Run("with custom config", func(t *testing.T) {
		r := NewRunner(&fakeDriver{}, &Config{NameFilter: "F1*", Verbose: true})
		assert.Equal(t, "F1*", r.config.NameFilter)
		assert.True(t, r.config.Verbose)
	})
}

func TestRunner_Run_AllPass(t *testing.T) {
	driver := &fakeDriver{}
	r := NewRunner(driver, nil)

	result := r.Run(context.Background(), []Scenario{passing("F1"), passing("F2")})

	assert.Equal(t, 2, result.Passed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 2, result.Total())
	assert.Equal(t, []string{"F1", "F2"}, ids(result.Results))
	assert.Equal(t, 2, driver.resets)
	_, err := uuid.Parse(result.RunID)
	assert.NoError(t, err)

	for _, sr := range result.Results {
		assert.Equal(t, StatusPass, sr.Status)
		assert.True(t, sr.Passed)
		assert.Empty(t, sr.Note)
		require.Len(t, sr.Refs, 1, "a screenshot is captured when the body took none")
		assert.Equal(t, "artifacts/"+sr.ID+".png", sr.Refs[0])
	}
	assert.Equal(t, int64(2), result.Timing.Count)
}

func TestRunner_Run_CheckFailure(t *testing.T) {
	r := NewRunner(&fakeDriver{}, nil)

	result := r.Run(context.Background(), []Scenario{{
		ID:    "F2",
		Title: "badge",
		Run: func(ctx context.Context, c *Case) error {
			c.Check("badge text", assertions.OpContains, "2", "FMN 3")
			return nil
		},
	}})

	require.Len(t, result.Results, 1)
	sr := result.Results[0]
	assert.False(t, sr.Passed)
	assert.Equal(t, StatusFail, sr.Status)
	assert.Equal(t, "badge text: expected 'FMN 3' to contain '2'", sr.Note)
	assert.Equal(t, 1, result.Failed)
}

func TestRunner_Run_PageErrorsFailScenario(t *testing.T) {
	driver := &fakeDriver{}
	r := NewRunner(driver, nil)

	result := r.Run(context.Background(), []Scenario{
		{ID: "F10", Run: func(ctx context.Context, c *Case) error {
			driver.errs = append(driver.errs, "TypeError: cannot read properties of null")
			return nil
		}},
		passing("F11"),
	})

	assert.False(t, result.Results[0].Passed)
	assert.Equal(t, []string{"TypeError: cannot read properties of null"}, result.Results[0].PageErrors)
	assert.Contains(t, result.Results[0].Note, "1 page error(s)")
	assert.True(t, result.Results[1].Passed, "errors are reset between scenarios")
}

func TestRunner_Run_NotReachedContinues(t *testing.T) {
	r := NewRunner(&fakeDriver{}, nil)

	result := r.Run(context.Background(), []Scenario{
		{ID: "F7", Run: func(ctx context.Context, c *Case) error {
			return fmt.Errorf("%w: #editModal", ErrNotReached)
		}},
		passing("F8"),
	})

	require.Len(t, result.Results, 2)
	assert.Equal(t, "not reached: #editModal", result.Results[0].Note)
	assert.ErrorIs(t, result.Results[0].Error, ErrNotReached)
	assert.True(t, result.Results[1].Passed)
}

func TestRunner_Run_OtherErrorsContinue(t *testing.T) {
	r := NewRunner(&fakeDriver{}, nil)

	result := r.Run(context.Background(), []Scenario{
		{ID: "F1", Run: func(ctx context.Context, c *Case) error {
			c.Notef("created movement %d", 4)
			return errors.New("click failed")
		}},
		{ID: "F2", Run: func(ctx context.Context, c *Case) error {
			panic("boom")
		}},
		{ID: "F3"},
		passing("F4"),
	})

	require.Len(t, result.Results, 4)
	assert.Equal(t, "created movement 4; click failed", result.Results[0].Note)
	assert.Equal(t, "scenario panicked: boom", result.Results[1].Note)
	assert.Equal(t, "scenario F3 has no body", result.Results[2].Note)
	assert.True(t, result.Results[3].Passed)
	assert.Equal(t, 3, result.Failed)
}

func TestRunner_Run_AbortRecordsRemaining(t *testing.T) {
	driver := &fakeDriver{}
	r := NewRunner(driver, nil)

	result := r.Run(context.Background(), []Scenario{
		passing("F1"),
		{ID: "F2", Run: func(ctx context.Context, c *Case) error {
			return fmt.Errorf("%w: page closed", ErrAborted)
		}},
		passing("F3"),
		passing("F4"),
	})

	assert.Equal(t, []string{"F1", "F2", "F3", "F4"}, ids(result.Results))
	assert.True(t, result.Results[0].Passed)
	assert.False(t, result.Results[1].Passed)
	assert.Empty(t, result.Results[1].Refs, "no screenshot once the session is gone")
	for _, sr := range result.Results[2:] {
		assert.Equal(t, StatusFail, sr.Status)
		assert.Equal(t, "not run: browser session aborted", sr.Note)
	}
	assert.Equal(t, 2, driver.resets)
	assert.Equal(t, 3, result.Failed)
}

func TestRunner_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(&fakeDriver{}, nil)

	result := r.Run(ctx, []Scenario{
		{ID: "F1", Run: func(ctx context.Context, c *Case) error {
			cancel()
			return ctx.Err()
		}},
		passing("F2"),
	})

	require.Len(t, result.Results, 2)
	assert.ErrorIs(t, result.Results[0].Error, context.Canceled)
	assert.Equal(t, "not run: run cancelled", result.Results[0].Note)
	assert.Equal(t, "not run: run cancelled", result.Results[1].Note)
	assert.Equal(t, 2, result.Failed)
}

func TestRunner_Run_CancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(&fakeDriver{}, nil)

	result := r.Run(ctx, []Scenario{
		passing("F4"),
		{ID: "F5", Run: func(ctx context.Context, c *Case) error {
			c.Check("element[1].status", assertions.OpEquals, "COMPLETED", "PLANNED")
			cancel()
			<-ctx.Done()
			return fmt.Errorf("polling storage: %w", ctx.Err())
		}},
		passing("F6"),
	})

	require.Len(t, result.Results, 3)
	assert.True(t, result.Results[0].Passed)
	assert.Empty(t, result.Results[0].Note)
	for _, sr := range result.Results[1:] {
		assert.Equal(t, StatusFail, sr.Status, sr.ID)
		assert.Equal(t, "not run: run cancelled", sr.Note, sr.ID)
	}
	assert.Empty(t, result.Results[2].Refs)
}

func TestRunner_Run_ScreenshotsTakenByBody(t *testing.T) {
	driver := &fakeDriver{}
	r := NewRunner(driver, nil)

	result := r.Run(context.Background(), []Scenario{{
		ID: "F2",
		Run: func(ctx context.Context, c *Case) error {
			if err := c.Screenshot(ctx, "before"); err != nil {
				return err
			}
			return c.Screenshot(ctx, "after-reload")
		},
	}})

	assert.Equal(t, []string{"artifacts/F2-before.png", "artifacts/F2-after-reload.png"}, result.Results[0].Refs)
}

func TestRunner_Run_ScreenshotFailureIsNoted(t *testing.T) {
	driver := &fakeDriver{shotErr: errors.New("disk full")}
	r := NewRunner(driver, nil)

	result := r.Run(context.Background(), []Scenario{passing("F1")})

	sr := result.Results[0]
	assert.True(t, sr.Passed)
	assert.Equal(t, "screenshot failed: screenshot F1: disk full", sr.Note)
}

func TestRunner_NameFilter(t *testing.T) {
	var seen []string
	r := NewRunner(&fakeDriver{}, &Config{
		NameFilter: "F1*",
		OnResult:   func(sr *ScenarioResult) { seen = append(seen, sr.ID+":"+sr.Status) },
	})

	result := r.Run(context.Background(), []Scenario{passing("F1"), passing("F2"), passing("F10")})

	assert.Equal(t, []string{"F1:PASS", "F2:SKIP", "F10:PASS"}, seen)
	assert.Equal(t, 2, result.Passed)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 2, result.Total())
}

func TestMatchesPattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    bool
	}{
		{"F1", "", true},
		{"F1", "*", true},
		{"F1", "F1", true},
		{"F10", "F1", false},
		{"F10", "F1*", true},
		{"F10", "*10", true},
		{"F10", "*1*", true},
		{"F2", "*1*", false},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesPattern(tt.name, tt.pattern))
		})
	}
}

func TestSelected(t *testing.T) {
	assert.True(t, Selected("F3", ""))
	assert.True(t, Selected("F3", "F3,F4"))
	assert.True(t, Selected("F4", "F3, F4"))
	assert.True(t, Selected("F10", "F2,F1*"))
	assert.False(t, Selected("F5", "F3,F4"))
	assert.False(t, Selected("F5", " , "))
}

func TestTimingRecorder(t *testing.T) {
	rec := newTimingRecorder()
	assert.Equal(t, Timing{}, rec.summary())

	rec.record(0)
	rec.record(10 * time.Millisecond)
	rec.record(2 * time.Minute)

	s := rec.summary()
	assert.Equal(t, int64(3), s.Count)
	assert.InDelta(t, float64(time.Minute), float64(s.Max), float64(100*time.Millisecond))
	assert.InDelta(t, float64(10*time.Millisecond), float64(s.P50), float64(50*time.Microsecond))
}
