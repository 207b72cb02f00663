package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/stripcheck/packages/core/runner"
	"github.com/xuri/excelize/v2"
)

const (
	resultsSheet = "Results"
	summarySheet = "Summary"
)

var resultsHeader = []any{"ID", "Title", "Status", "Duration (ms)", "Note", "Failed checks", "Page errors", "Screenshots"}

// XLSXFormatter writes scenario results as a spreadsheet with a results
// sheet and a summary sheet
type XLSXFormatter struct {
	writer  io.Writer
	baseDir string
	version string
	runs    []*runner.RunResult
}

type XLSXOption func(*XLSXFormatter)

func NewXLSXFormatter(opts ...XLSXOption) *XLSXFormatter {
	f := &XLSXFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func XLSXWithWriter(w io.Writer) XLSXOption {
	return func(f *XLSXFormatter) {
		f.writer = w
	}
}

// XLSXWithBaseDir makes screenshot refs relative to dir
func XLSXWithBaseDir(dir string) XLSXOption {
	return func(f *XLSXFormatter) {
		f.baseDir = dir
	}
}

func (f *XLSXFormatter) FormatResult(result *runner.RunResult) {
	f.runs = append(f.runs, result)
}

func (f *XLSXFormatter) FormatError(err error) {
	// Errors are included in individual scenario notes
}

func (f *XLSXFormatter) FormatHeader(version string) {
	f.version = version
}

// Flush builds the workbook and writes it
func (f *XLSXFormatter) Flush(totalDuration time.Duration) error {
	book := excelize.NewFile()
	defer book.Close()

	if err := book.SetSheetName("Sheet1", resultsSheet); err != nil {
		return fmt.Errorf("failed to name results sheet: %w", err)
	}
	if _, err := book.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	styles, err := newXLSXStyles(book)
	if err != nil {
		return err
	}

	rows, err := f.writeResults(book, styles)
	if err != nil {
		return err
	}
	if err := f.writeSummary(book, styles, totalDuration); err != nil {
		return err
	}

	if rows > 0 {
		last, _ := excelize.CoordinatesToCellName(len(resultsHeader), rows+1)
		if err := book.AutoFilter(resultsSheet, "A1:"+last, nil); err != nil {
			return fmt.Errorf("failed to set filter: %w", err)
		}
	}

	book.SetActiveSheet(0)
	return book.Write(f.writer)
}

type xlsxStyles struct {
	header int
	pass   int
	fail   int
	skip   int
}

func newXLSXStyles(book *excelize.File) (xlsxStyles, error) {
	var s xlsxStyles
	var err error

	if s.header, err = book.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDDDDD"}},
	}); err != nil {
		return s, fmt.Errorf("failed to create header style: %w", err)
	}
	if s.pass, err = statusStyle(book, "#2E7D32"); err != nil {
		return s, err
	}
	if s.fail, err = statusStyle(book, "#C62828"); err != nil {
		return s, err
	}
	if s.skip, err = statusStyle(book, "#F9A825"); err != nil {
		return s, err
	}
	return s, nil
}

func statusStyle(book *excelize.File, color string) (int, error) {
	id, err := book.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: color},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create status style: %w", err)
	}
	return id, nil
}

func (f *XLSXFormatter) writeResults(book *excelize.File, styles xlsxStyles) (int, error) {
	if err := book.SetSheetRow(resultsSheet, "A1", &resultsHeader); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(resultsHeader), 1)
	if err := book.SetCellStyle(resultsSheet, "A1", lastHeader, styles.header); err != nil {
		return 0, fmt.Errorf("failed to style header: %w", err)
	}

	row := 1
	for _, run := range f.runs {
		for _, r := range run.Results {
			row++
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return 0, err
			}

			var failed []string
			for _, a := range r.Checks {
				if !a.Passed {
					failed = append(failed, fmt.Sprintf("%s: %s", a.Subject, a.Message))
				}
			}

			values := []any{
				r.ID,
				r.Title,
				r.Status,
				r.Duration.Milliseconds(),
				r.Note,
				strings.Join(failed, "\n"),
				strings.Join(r.PageErrors, "\n"),
				strings.Join(relativeRefs(r.Refs, f.baseDir), "\n"),
			}
			if err := book.SetSheetRow(resultsSheet, cell, &values); err != nil {
				return 0, fmt.Errorf("failed to write %s: %w", r.ID, err)
			}

			style := styles.fail
			switch r.Status {
			case runner.StatusPass:
				style = styles.pass
			case runner.StatusSkip:
				style = styles.skip
			}
			statusCell, _ := excelize.CoordinatesToCellName(3, row)
			if err := book.SetCellStyle(resultsSheet, statusCell, statusCell, style); err != nil {
				return 0, fmt.Errorf("failed to style %s: %w", r.ID, err)
			}
		}
	}

	widths := map[string]float64{"A": 6, "B": 48, "C": 8, "D": 14, "E": 60, "F": 50, "G": 50, "H": 40}
	for col, w := range widths {
		if err := book.SetColWidth(resultsSheet, col, col, w); err != nil {
			return 0, fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}

	return row - 1, nil
}

func (f *XLSXFormatter) writeSummary(book *excelize.File, styles xlsxStyles, totalDuration time.Duration) error {
	var passed, failed, skipped, total int
	var runID string
	var timing runner.Timing
	for _, run := range f.runs {
		runID = run.RunID
		timing = run.Timing
		for _, r := range run.Results {
			total++
			switch r.Status {
			case runner.StatusPass:
				passed++
			case runner.StatusSkip:
				skipped++
			default:
				failed++
			}
		}
	}

	rows := [][]any{
		{"Version", f.version},
		{"Run", runID},
		{"Generated", time.Now().Format(time.RFC3339)},
		{"Total", total},
		{"Passed", passed},
		{"Failed", failed},
		{"Skipped", skipped},
		{"Duration (ms)", totalDuration.Milliseconds()},
		{"P50 (ms)", timing.P50.Milliseconds()},
		{"P95 (ms)", timing.P95.Milliseconds()},
		{"Max (ms)", timing.Max.Milliseconds()},
	}
	for i, values := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := book.SetSheetRow(summarySheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}

	last, _ := excelize.CoordinatesToCellName(1, len(rows))
	if err := book.SetCellStyle(summarySheet, "A1", last, styles.header); err != nil {
		return fmt.Errorf("failed to style summary: %w", err)
	}
	return book.SetColWidth(summarySheet, "A", "B", 24)
}
