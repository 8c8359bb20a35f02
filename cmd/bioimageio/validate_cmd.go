package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
	"github.com/bioimage-io/spec-go/internal/metrics"
	"github.com/bioimage-io/spec-go/internal/ui"
	"github.com/bioimage-io/spec-go/pkg/description"
	"github.com/bioimage-io/spec-go/pkg/summary"
	"github.com/bioimage-io/spec-go/pkg/validate"
)

// runValidate executes the 'validate' command: load a resource description
// and report its validation summary (spec.md §4.9's validate_format).
//
// Flags:
//   - --update-format: validate against the latest known format version
//     instead of the one discovered in the document
//   - --metrics-addr: expose Prometheus metrics while this run executes
func runValidate(args []string, globals GlobalFlags) int {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	updateFormat := fs.Bool("update-format", false, "Validate against the latest known format version")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: bioimageio validate <source> [options]

Validate a bioimage.io resource description (a single RDF YAML file or a
.zip package) against its declared, or the latest, format version.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}
	source := fs.Arg(0)

	if _, err := applySettings(); err != nil {
		bioerrors.FatalError(bioerrors.NewConfigError("cannot load settings", err.Error(), "", err), globals.JSON)
		return 1
	}

	logger := newLogger(globals)
	metrics.Serve(*metricsAddr, logger)

	start := time.Now()
	formatVersion := "discover"
	if *updateFormat {
		formatVersion = "latest"
	}

	desc, invalid, err := description.LoadDescription(source, formatVersion)
	metrics.RunDuration.WithLabelValues("validate").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RunsTotal.WithLabelValues("validate", "error").Inc()
		bioerrors.FatalError(bioerrors.NewConfigError("cannot load resource description", err.Error(), "", err), globals.JSON)
		return 1
	}

	var sum *summary.ValidationSummary
	if invalid != nil {
		sum = invalid.Summary
	} else {
		sum = desc.Summary
	}
	metrics.RunsTotal.WithLabelValues("validate", string(sum.Status)).Inc()

	printSummary(sum, globals)
	if sum.Status == validate.StatusFailed {
		return 1
	}
	return 0
}

func newLogger(globals GlobalFlags) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case globals.Verbose >= 2:
		level = slog.LevelDebug
	case globals.Verbose == 1:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func printSummary(sum *summary.ValidationSummary, globals GlobalFlags) {
	if globals.JSON {
		b, err := sum.JSON()
		if err != nil {
			bioerrors.FatalError(err, true)
			return
		}
		fmt.Println(string(b))
		return
	}

	fmt.Printf("%s: ", sum.SourceName)
	ui.Status(os.Stdout, string(sum.Status))
	for _, d := range sum.Details {
		for _, e := range d.Errors {
			ui.Error(os.Stdout, "  [%s] %s: %s", d.Name, e.Loc, e.Msg)
		}
		if globals.Quiet {
			continue
		}
		for _, w := range d.Warnings {
			ui.Warning(os.Stdout, "  [%s] %s: %s", d.Name, w.Loc, w.Msg)
		}
	}
}
