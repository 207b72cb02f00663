package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/stripcheck/packages/core/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	name  string
	calls []*RunSummary
	err   error
}

func (r *recordingNotifier) Notify(_ context.Context, s *RunSummary) error {
	r.calls = append(r.calls, s)
	return r.err
}

func (r *recordingNotifier) Name() string {
	return r.name
}

func passing() *RunSummary {
	return &RunSummary{TotalScenarios: 10, Passed: 10}
}

func failing() *RunSummary {
	return &RunSummary{TotalScenarios: 10, Passed: 9, Failed: 1}
}

func TestParseNotifyOn(t *testing.T) {
	for _, s := range []string{"always", "failure", "success", "recovery"} {
		n, err := ParseNotifyOn(s)
		require.NoError(t, err)
		assert.Equal(t, NotifyOn(s), n)
	}
	_, err := ParseNotifyOn("sometimes")
	assert.Error(t, err)
}

func TestManagerPolicies(t *testing.T) {
	tests := []struct {
		name     string
		notifyOn NotifyOn
		summary  *RunSummary
		want     int
	}{
		{"always on pass", NotifyAlways, passing(), 1},
		{"always on fail", NotifyAlways, failing(), 1},
		{"failure on pass", NotifyFailure, passing(), 0},
		{"failure on fail", NotifyFailure, failing(), 1},
		{"success on pass", NotifySuccess, passing(), 1},
		{"success on fail", NotifySuccess, failing(), 0},
		{"recovery on pass after pass", NotifyRecovery, passing(), 0},
		{"recovery on fail", NotifyRecovery, failing(), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingNotifier{name: "rec"}
			m := NewManager(tt.notifyOn, rec)
			require.NoError(t, m.Notify(context.Background(), tt.summary))
			assert.Len(t, rec.calls, tt.want)
		})
	}
}

func TestManagerRecovery(t *testing.T) {
	rec := &recordingNotifier{name: "rec"}
	m := NewManager(NotifyRecovery)
	m.AddNotifier(rec)
	m.SetLastState(false)

	s := passing()
	require.NoError(t, m.Notify(context.Background(), s))
	require.Len(t, rec.calls, 1)
	assert.True(t, s.IsRecovery)
	assert.Equal(t, "Formation checks recovered!", s.title())

	// second pass in a row is quiet
	require.NoError(t, m.Notify(context.Background(), passing()))
	assert.Len(t, rec.calls, 1)
}

func TestManagerJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	ok := &recordingNotifier{name: "ok"}
	bad := &recordingNotifier{name: "bad", err: boom}

	err := NewManager(NotifyAlways, bad, ok).Notify(context.Background(), passing())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bad: boom")
	assert.Len(t, ok.calls, 1, "later notifiers still run")
}

func TestNewSummary(t *testing.T) {
	result := &runner.RunResult{
		RunID:    "run-1",
		Passed:   1,
		Failed:   1,
		Skipped:  1,
		Duration: 2 * time.Second,
		Results: []*runner.ScenarioResult{
			{ID: "F1", Title: "one", Status: runner.StatusPass, Passed: true},
			{ID: "F2", Title: "two", Status: runner.StatusFail, Note: "badge text: expected '' to contain '2'"},
			{ID: "F3", Title: "three", Status: runner.StatusSkip, Skipped: true},
		},
	}

	s := NewSummary(result, "http://localhost:8000/")
	assert.Equal(t, "run-1", s.RunID)
	assert.Equal(t, 3, s.TotalScenarios)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, "http://localhost:8000/", s.BaseURL)
	require.Len(t, s.FailedScenarios, 1)
	assert.Equal(t, FailedScenario{ID: "F2", Title: "two", Note: "badge text: expected '' to contain '2'"}, s.FailedScenarios[0])
	assert.Equal(t, "1 scenario(s) failed", s.title())
}

func TestSlackNotifier(t *testing.T) {
	var got slackMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := failing()
	s.FailedScenarios = []FailedScenario{{ID: "F3", Title: "Seeded 3-element formation shows badge", Note: "not reached"}}

	n := NewSlackNotifier(srv.URL, WithSlackChannel("#ops"))
	require.NoError(t, n.Notify(context.Background(), s))

	assert.Equal(t, "#ops", got.Channel)
	assert.Equal(t, "stripcheck", got.Username)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "danger", got.Attachments[0].Color)
	assert.Contains(t, got.Attachments[0].Title, "1 scenario(s) failed")
	assert.Contains(t, got.Attachments[0].Text, "`F3`")
	assert.Contains(t, got.Attachments[0].Text, "not reached")
}

func TestSlackNotifierStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("invalid_token"))
	}))
	defer srv.Close()

	err := NewSlackNotifier(srv.URL).Notify(context.Background(), passing())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "invalid_token")
}

func TestTeamsNotifier(t *testing.T) {
	var got teamsMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := passing()
	s.BaseURL = "http://localhost:8000/"
	require.NoError(t, NewTeamsNotifier(srv.URL).Notify(context.Background(), s))

	assert.Equal(t, "message", got.Type)
	require.Len(t, got.Attachments, 1)
	body := got.Attachments[0].Content.Body
	require.NotEmpty(t, body)
	assert.Contains(t, body[0].Text, "All scenarios passed!")
	assert.Equal(t, "good", body[0].Color)
	assert.Equal(t, "**Application:** http://localhost:8000/", body[2].Text)
}

func TestNotifierHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, NewTeamsNotifier(srv.URL).Notify(ctx, passing()))
}
