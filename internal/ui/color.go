// Package ui renders severity-colored CLI output for the validate and
// package commands, generalizing the teacher's internal/ui.InitColors
// (referenced from cmd/cie/main.go) from a single no-color flag into the
// full set of signals a bioimageio CLI run needs: --no-color, NO_COLOR, CI,
// and whether stderr is actually a terminal.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	passColor    = color.New(color.FgGreen, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

// InitColors enables or disables color output globally. It is called once
// from main() after flags are parsed, the same point the teacher calls
// ui.InitColors(globals.NoColor).
func InitColors(noColor bool) {
	if noColor || os.Getenv("NO_COLOR") != "" || isCI() {
		color.NoColor = true
		return
	}
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		color.NoColor = true
	}
}

func isCI() bool {
	v := os.Getenv("CI")
	return v != "" && v != "0" && v != "false"
}

// Status renders one of the three overall statuses from spec.md §4.4 with
// the severity-appropriate color.
func Status(w io.Writer, status string) {
	switch status {
	case "passed":
		passColor.Fprintln(w, "passed")
	case "valid-format":
		warningColor.Fprintln(w, "valid-format")
	case "failed":
		errorColor.Fprintln(w, "failed")
	default:
		fmt.Fprintln(w, status)
	}
}

// Error writes a red-highlighted error line.
func Error(w io.Writer, format string, args ...any) {
	errorColor.Fprintf(w, format+"\n", args...)
}

// Warning writes a yellow-highlighted warning line.
func Warning(w io.Writer, format string, args ...any) {
	warningColor.Fprintf(w, format+"\n", args...)
}

// Info writes a cyan-highlighted informational line.
func Info(w io.Writer, format string, args ...any) {
	infoColor.Fprintf(w, format+"\n", args...)
}
