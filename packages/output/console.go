package output

import (
	"fmt"
	"io"
	"os"

	"github.com/abdul-hamid-achik/stripcheck/packages/core/runner"
	"github.com/fatih/color"
)

// formatValue formats a value for display, truncating or summarizing large values
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case nil:
		return "<absent>"
	case []any:
		return fmt.Sprintf("[array with %d items]", len(val))
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	}
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatResult(result *runner.RunResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s\n", bold("Run: "+result.RunID))
	fmt.Fprintf(f.writer, "\n")

	for _, r := range result.Results {
		label := fmt.Sprintf("%-4s %s", r.ID, r.Title)

		if r.Skipped {
			fmt.Fprintf(f.writer, "  %s %s\n", yellow("-"), label)
			continue
		}

		if r.Duration == 0 && !r.Passed {
			// never started
			fmt.Fprintf(f.writer, "  %s %s %s\n", red("x"), label, red(fmt.Sprintf("(%s)", r.Note)))
			continue
		}

		symbol := green("✓")
		if !r.Passed {
			symbol = red("✗")
		}

		fmt.Fprintf(f.writer, "  %s %s %s\n", symbol, label, cyan(fmt.Sprintf("(%dms)", r.Duration.Milliseconds())))

		if r.Error != nil {
			fmt.Fprintf(f.writer, "    %s %v\n", red("→"), r.Error)
		}

		for _, a := range r.Checks {
			if a.Passed && !f.verbose {
				continue
			}
			mark := green("✓")
			if !a.Passed {
				mark = red("→")
			}
			fmt.Fprintf(f.writer, "    %s %s %s\n", mark, a.Subject, a.Operator)
			if !a.Passed {
				fmt.Fprintf(f.writer, "      Expected: %s\n", formatValue(a.Expected, 100))
				fmt.Fprintf(f.writer, "      Actual:   %s\n", formatValue(a.Actual, 100))
				if a.Message != "" {
					fmt.Fprintf(f.writer, "      %s\n", a.Message)
				}
			}
		}

		for _, e := range r.PageErrors {
			fmt.Fprintf(f.writer, "    %s %s\n", red("!"), e)
		}

		if f.verbose {
			for _, ref := range r.Refs {
				fmt.Fprintf(f.writer, "    screenshot: %s\n", ref)
			}
		}
	}

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Scenarios: ")
	if result.Passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d passed", result.Passed)))
	}
	if result.Failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", result.Failed)))
	}
	if result.Skipped > 0 {
		fmt.Fprintf(f.writer, "%s, ", yellow(fmt.Sprintf("%d skipped", result.Skipped)))
	}
	fmt.Fprintf(f.writer, "%d total\n", len(result.Results))
	fmt.Fprintf(f.writer, "Time:      %dms", result.Duration.Milliseconds())
	if result.Timing.Count > 0 {
		fmt.Fprintf(f.writer, " (p50 %dms, p95 %dms, max %dms)",
			result.Timing.P50.Milliseconds(),
			result.Timing.P95.Milliseconds(),
			result.Timing.Max.Milliseconds())
	}
	fmt.Fprintf(f.writer, "\n\n")
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("stripcheck"), version)
}
