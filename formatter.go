package specrunner

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ethereum-optimism/infra/op-specrunner/types"
)

// ResultFormatter is responsible for formatting and displaying run results.
type ResultFormatter interface {
	FormatResults(report *types.RunReport) error
}

// ConsoleResultFormatter implements the ResultFormatter interface.
type ConsoleResultFormatter struct {
	logger log.Logger
	out    io.Writer
}

// NewConsoleResultFormatter creates a new ConsoleResultFormatter.
func NewConsoleResultFormatter(logger log.Logger) *ConsoleResultFormatter {
	return &ConsoleResultFormatter{
		logger: logger,
	}
}

// FormatResults formats and displays the run results.
func (f *ConsoleResultFormatter) FormatResults(report *types.RunReport) error {
	f.logger.Info("Printing results...")
	out := f.out
	if out == nil {
		out = os.Stdout
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle(fmt.Sprintf("Suite Results (%s)", formatDuration(report.Duration)))

	// Configure columns
	t.AppendHeader(table.Row{
		"Target", "Specs", "Failures", "Time", "Status", "Error",
	})

	// Set column configurations for better readability
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Target", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Specs", Align: text.AlignRight},
		{Name: "Failures", Align: text.AlignRight},
		{Name: "Time", Align: text.AlignRight},
		{Name: "Error", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	// Print each suite target and its outcome. Error-keyed results carry no
	// file, so mark them explicitly.
	for _, result := range report.Results {
		target := result.File
		if target == "" {
			target = "(system error)"
		}
		t.AppendRow(table.Row{
			target,
			result.Stats.Specs,
			result.Stats.Failures,
			fmt.Sprintf("%.3fs", result.Stats.Time),
			getResultString(result.Status()),
			result.Error,
		})
	}

	// Update the table style setting based on result status
	switch report.Status() {
	case types.SuiteStatusPass:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	case types.SuiteStatusError:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	// Add summary footer
	t.AppendFooter(table.Row{
		"TOTAL",
		report.Stats.Specs,
		report.Stats.Failures,
		formatDuration(report.Duration),
		getResultString(report.Status()),
		"",
	})

	t.Render()

	fmt.Fprintln(out, report.String())

	return nil
}

// getResultString returns a short string representing the suite result
func getResultString(status types.SuiteStatus) string {
	switch status {
	case types.SuiteStatusPass:
		return "✓ pass"
	case types.SuiteStatusError:
		return "! error"
	default:
		return "✗ fail"
	}
}

// Helper function to format duration to seconds with 1 decimal place
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
