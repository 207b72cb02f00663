package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/stripcheck/packages/core/runner"
)

// EvidenceFile is the name of the evidence document inside the artifacts directory
const EvidenceFile = "results.json"

// Evidence is the results document written next to the screenshots
type Evidence struct {
	Summary EvidenceSummary  `json:"summary"`
	Results []EvidenceRecord `json:"results"`
}

// EvidenceSummary counts scenario outcomes
type EvidenceSummary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// EvidenceRecord is one scenario outcome
type EvidenceRecord struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Status string   `json:"status"`
	Note   string   `json:"note"`
	Refs   []string `json:"refs"`
}

// NewEvidence builds the evidence document for a run. Screenshot refs are
// made relative to baseDir when possible.
func NewEvidence(result *runner.RunResult, baseDir string) Evidence {
	ev := Evidence{Results: make([]EvidenceRecord, 0, len(result.Results))}
	for _, r := range result.Results {
		ev.Results = append(ev.Results, EvidenceRecord{
			ID:     r.ID,
			Title:  r.Title,
			Status: r.Status,
			Note:   r.Note,
			Refs:   relativeRefs(r.Refs, baseDir),
		})
		switch r.Status {
		case runner.StatusPass:
			ev.Summary.Passed++
		case runner.StatusFail:
			ev.Summary.Failed++
		}
	}
	ev.Summary.Total = len(ev.Results)
	return ev
}

// WriteEvidence writes results.json into dir, creating it if needed, and
// returns the path written.
func WriteEvidence(dir string, result *runner.RunResult) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifacts directory: %w", err)
	}

	data, err := json.MarshalIndent(NewEvidence(result, dir), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode evidence: %w", err)
	}

	path := filepath.Join(dir, EvidenceFile)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write evidence: %w", err)
	}
	return path, nil
}

func relativeRefs(refs []string, baseDir string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if baseDir != "" {
			if rel, err := filepath.Rel(baseDir, ref); err == nil {
				ref = filepath.ToSlash(rel)
			}
		}
		out = append(out, ref)
	}
	return out
}

// JSONOutput is the evidence document plus run detail
type JSONOutput struct {
	RunID    string      `json:"runId"`
	Summary  JSONSummary `json:"summary"`
	Results  []JSONTest  `json:"results"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

// JSONSummary extends the evidence summary
type JSONSummary struct {
	Total   int   `json:"total"`
	Passed  int   `json:"passed"`
	Failed  int   `json:"failed"`
	Skipped int   `json:"skipped,omitempty"`
	P50     int64 `json:"p50Ms,omitempty"`
	P95     int64 `json:"p95Ms,omitempty"`
}

// JSONTest is one evidence record with its checks and page errors
type JSONTest struct {
	EvidenceRecord
	Duration   float64         `json:"duration"`
	Checks     []JSONAssertion `json:"checks,omitempty"`
	PageErrors []string        `json:"pageErrors,omitempty"`
}

// JSONAssertion represents a check result
type JSONAssertion struct {
	Subject  string `json:"subject"`
	Operator string `json:"operator"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
	Passed   bool   `json:"passed"`
	Message  string `json:"message,omitempty"`
}

// JSONFormatter formats scenario results as JSON
type JSONFormatter struct {
	writer  io.Writer
	baseDir string
	output  JSONOutput
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
		output: JSONOutput{Results: make([]JSONTest, 0)},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

// JSONWithBaseDir makes screenshot refs relative to dir
func JSONWithBaseDir(dir string) JSONOption {
	return func(f *JSONFormatter) {
		f.baseDir = dir
	}
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	ev := NewEvidence(result, f.baseDir)

	f.output.RunID = result.RunID
	f.output.Summary = JSONSummary{
		Total:   ev.Summary.Total,
		Passed:  ev.Summary.Passed,
		Failed:  ev.Summary.Failed,
		Skipped: result.Skipped,
		P50:     result.Timing.P50.Milliseconds(),
		P95:     result.Timing.P95.Milliseconds(),
	}

	for i, r := range result.Results {
		test := JSONTest{
			EvidenceRecord: ev.Results[i],
			Duration:       float64(r.Duration.Milliseconds()),
			PageErrors:     r.PageErrors,
		}
		for _, a := range r.Checks {
			test.Checks = append(test.Checks, JSONAssertion{
				Subject:  a.Subject,
				Operator: a.Operator,
				Expected: a.Expected,
				Actual:   a.Actual,
				Passed:   a.Passed,
				Message:  a.Message,
			})
		}
		f.output.Results = append(f.output.Results, test)
	}
}

func (f *JSONFormatter) FormatError(err error) {
	// Errors are included in individual scenario notes
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	f.output.Duration = float64(totalDuration.Milliseconds())
	f.output.Time = time.Now().Format(time.RFC3339)

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(f.output)
}
