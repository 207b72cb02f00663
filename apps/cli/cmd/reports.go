package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/stripcheck/packages/core/config"
	"github.com/abdul-hamid-achik/stripcheck/packages/core/runner"
	"github.com/abdul-hamid-achik/stripcheck/packages/output"
	"github.com/spf13/cobra"
)

// reportFiles names the file a format is written to when it is not the
// primary output or cannot go to a terminal
var reportFiles = map[string]string{
	"json":  "report.json",
	"junit": "junit.xml",
	"tap":   "report.tap",
	"html":  "report.html",
	"xlsx":  "report.xlsx",
}

// reportSet fans one run out to every configured formatter
type reportSet struct {
	formatters []Formatter
	closers    []io.Closer
	files      []string
}

// openReports builds the formatters for cfg.Reporters. The first format
// writes to --output-file or stdout; html and xlsx, and every further
// format, write to a file in the artifacts directory.
func openReports(cmd *cobra.Command, cfg *config.Config) (*reportSet, error) {
	formats := cfg.Reporters
	if len(formats) == 0 {
		formats = []string{"console"}
	}

	rs := &reportSet{}
	for i, format := range formats {
		path := ""
		switch {
		case i == 0 && outputFileFlag != "":
			path = outputFileFlag
		case i == 0 && format != "html" && format != "xlsx":
			// stdout
		case format == "console":
			fmt.Fprintf(os.Stderr, "warning: console output is only available as the first format\n")
			continue
		default:
			name, ok := reportFiles[format]
			if !ok {
				rs.close()
				return nil, withExitCode(ExitUsageError, fmt.Errorf("unknown output format %q (want console, json, junit, tap, html or xlsx)", format))
			}
			path = filepath.Join(cfg.ArtifactsDir, name)
		}

		var w io.Writer = cmd.OutOrStdout()
		baseDir := ""
		if path != "" {
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				rs.close()
				return nil, fmt.Errorf("cannot create output directory: %w", err)
			}
			f, err := os.Create(path)
			if err != nil {
				rs.close()
				return nil, fmt.Errorf("cannot create output file: %w", err)
			}
			rs.closers = append(rs.closers, f)
			rs.files = append(rs.files, path)
			w = f
			baseDir = filepath.Dir(path)
		}

		formatter, err := newFormatter(format, w, baseDir, cfg)
		if err != nil {
			rs.close()
			return nil, withExitCode(ExitUsageError, err)
		}
		rs.formatters = append(rs.formatters, formatter)
	}

	return rs, nil
}

func newFormatter(format string, w io.Writer, baseDir string, cfg *config.Config) (Formatter, error) {
	switch format {
	case "json":
		return output.NewJSONFormatter(output.JSONWithWriter(w), output.JSONWithBaseDir(baseDir)), nil
	case "junit":
		return output.NewJUnitFormatter(output.JUnitWithWriter(w)), nil
	case "tap":
		return output.NewTAPFormatter(output.TAPWithWriter(w)), nil
	case "html":
		return output.NewHTMLFormatter(output.HTMLWithWriter(w), output.HTMLWithBaseDir(baseDir)), nil
	case "xlsx":
		return output.NewXLSXFormatter(output.XLSXWithWriter(w), output.XLSXWithBaseDir(baseDir)), nil
	case "console":
		return output.NewConsoleFormatter(
			output.WithWriter(w),
			output.WithVerbose(cfg.GetVerbose()),
			output.WithNoColor(cfg.GetNoColor()),
		), nil
	}
	return nil, fmt.Errorf("unknown output format %q (want console, json, junit, tap, html or xlsx)", format)
}

func (rs *reportSet) header(version string) {
	for _, f := range rs.formatters {
		f.FormatHeader(version)
	}
}

func (rs *reportSet) error(err error) {
	for _, f := range rs.formatters {
		f.FormatError(err)
	}
}

// finish hands the run to every formatter and flushes those that accumulate
func (rs *reportSet) finish(result *runner.RunResult) error {
	var firstErr error
	for _, f := range rs.formatters {
		f.FormatResult(result)
		if flushable, ok := f.(Flushable); ok {
			if err := flushable.Flush(result.Duration); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (rs *reportSet) close() {
	for _, c := range rs.closers {
		_ = c.Close()
	}
	rs.closers = nil
}
