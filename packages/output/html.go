package output

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/stripcheck/packages/core/runner"
)

// HTMLOutput represents the complete HTML output structure
type HTMLOutput struct {
	Version        string
	RunID          string
	Summary        HTMLSummary
	Tests          []HTMLTest
	Duration       float64
	P50            int64
	P95            int64
	Time           string
	PassedPercent  float64
	FailedPercent  float64
	SkippedPercent float64
}

// HTMLSummary represents the scenario summary for HTML output
type HTMLSummary struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

// HTMLTest represents a single scenario result for HTML output
type HTMLTest struct {
	ID          string
	Title       string
	Status      string
	Note        string
	Duration    float64
	StatusClass string
	Refs        []string
	PageErrors  []string
	Assertions  []HTMLAssertion
}

// HTMLAssertion represents a check result for HTML output
type HTMLAssertion struct {
	Subject     string
	Operator    string
	ExpectedStr string
	ActualStr   string
	Passed      bool
	Message     string
}

// HTMLFormatter formats scenario results as HTML
type HTMLFormatter struct {
	writer  io.Writer
	baseDir string
	runID   string
	p50     time.Duration
	p95     time.Duration
	results []HTMLTest
	version string
}

// HTMLOption is a functional option for HTMLFormatter
type HTMLOption func(*HTMLFormatter)

// NewHTMLFormatter creates a new HTML formatter
func NewHTMLFormatter(opts ...HTMLOption) *HTMLFormatter {
	f := &HTMLFormatter{
		writer:  os.Stdout,
		results: make([]HTMLTest, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// HTMLWithWriter sets the output writer
func HTMLWithWriter(w io.Writer) HTMLOption {
	return func(f *HTMLFormatter) {
		f.writer = w
	}
}

// HTMLWithBaseDir makes screenshot links relative to dir, which should be
// the directory the report is written to.
func HTMLWithBaseDir(dir string) HTMLOption {
	return func(f *HTMLFormatter) {
		f.baseDir = dir
	}
}

// FormatResult accumulates scenario results
func (f *HTMLFormatter) FormatResult(result *runner.RunResult) {
	f.runID = result.RunID
	f.p50 = result.Timing.P50
	f.p95 = result.Timing.P95

	for _, r := range result.Results {
		test := HTMLTest{
			ID:         r.ID,
			Title:      r.Title,
			Status:     r.Status,
			Note:       r.Note,
			Duration:   float64(r.Duration.Milliseconds()),
			Refs:       relativeRefs(r.Refs, f.baseDir),
			PageErrors: r.PageErrors,
		}

		// Set status class for CSS
		if r.Skipped {
			test.StatusClass = "skipped"
		} else if r.Passed {
			test.StatusClass = "passed"
		} else {
			test.StatusClass = "failed"
		}

		for _, a := range r.Checks {
			test.Assertions = append(test.Assertions, HTMLAssertion{
				Subject:     a.Subject,
				Operator:    a.Operator,
				ExpectedStr: formatValue(a.Expected, 200),
				ActualStr:   formatValue(a.Actual, 200),
				Passed:      a.Passed,
				Message:     a.Message,
			})
		}

		f.results = append(f.results, test)
	}
}

// FormatError handles errors (no-op for HTML, errors are in scenario notes)
func (f *HTMLFormatter) FormatError(err error) {
	// Errors are included in individual scenario notes
}

// FormatHeader captures the version for the HTML report
func (f *HTMLFormatter) FormatHeader(version string) {
	f.version = version
}

// Flush writes the accumulated HTML output
func (f *HTMLFormatter) Flush(totalDuration time.Duration) error {
	var passed, failed, skipped int
	for _, t := range f.results {
		if t.StatusClass == "skipped" {
			skipped++
		} else if t.StatusClass == "passed" {
			passed++
		} else {
			failed++
		}
	}

	total := len(f.results)
	var passedPct, failedPct, skippedPct float64
	if total > 0 {
		passedPct = float64(passed) / float64(total) * 100
		failedPct = float64(failed) / float64(total) * 100
		skippedPct = float64(skipped) / float64(total) * 100
	}

	output := HTMLOutput{
		Version: f.version,
		RunID:   f.runID,
		Summary: HTMLSummary{
			Total:   total,
			Passed:  passed,
			Failed:  failed,
			Skipped: skipped,
		},
		Tests:          f.results,
		Duration:       float64(totalDuration.Milliseconds()),
		P50:            f.p50.Milliseconds(),
		P95:            f.p95.Milliseconds(),
		Time:           time.Now().Format("2006-01-02 15:04:05"),
		PassedPercent:  passedPct,
		FailedPercent:  failedPct,
		SkippedPercent: skippedPct,
	}

	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse HTML template: %w", err)
	}

	return tmpl.Execute(f.writer, output)
}
