package reporting

import (
	"fmt"
	"io"
	"os"
)

// ANSI color codes
const (
	reset  = "\033[0m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
)

// Console writes leveled lines to a pair of output streams, colorized when
// attached to a terminal. Info and Success go to out, Warning and Error to
// err.
type Console struct {
	out   io.Writer
	err   io.Writer
	color bool
}

var _ Reporter = (*Console)(nil)

// NewConsole creates a Console bound to stdout/stderr with color detection.
func NewConsole() *Console {
	return &Console{
		out:   os.Stdout,
		err:   os.Stderr,
		color: isTerminal(),
	}
}

// NewConsoleWithWriters creates a Console with custom writers (for testing).
func NewConsoleWithWriters(out, err io.Writer, color bool) *Console {
	return &Console{
		out:   out,
		err:   err,
		color: color,
	}
}

// Info prints a plain informational line.
func (c *Console) Info(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Success prints a success line in green.
func (c *Console) Success(format string, args ...interface{}) {
	if c.color {
		fmt.Fprintf(c.out, green+format+reset+"\n", args...)
	} else {
		fmt.Fprintf(c.out, format+"\n", args...)
	}
}

// Warning prints a warning line in yellow to the error stream.
func (c *Console) Warning(format string, args ...interface{}) {
	if c.color {
		fmt.Fprintf(c.err, yellow+format+reset+"\n", args...)
	} else {
		fmt.Fprintf(c.err, format+"\n", args...)
	}
}

// Error prints an error line in red to the error stream.
func (c *Console) Error(format string, args ...interface{}) {
	if c.color {
		fmt.Fprintf(c.err, red+format+reset+"\n", args...)
	} else {
		fmt.Fprintf(c.err, format+"\n", args...)
	}
}

// isTerminal returns true if stdout is a terminal.
func isTerminal() bool {
	if fi, _ := os.Stdout.Stat(); fi != nil {
		return (fi.Mode() & os.ModeCharDevice) != 0
	}
	return false
}
