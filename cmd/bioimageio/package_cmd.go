package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
	"github.com/bioimage-io/spec-go/internal/metrics"
	"github.com/bioimage-io/spec-go/internal/ui"
	"github.com/bioimage-io/spec-go/pkg/description"
	"github.com/bioimage-io/spec-go/pkg/iocheck"
	"github.com/bioimage-io/spec-go/pkg/validate"
)

// runPackage executes the 'package' command: validate a resource
// description, then materialize it as a distributable folder or zip
// (spec.md §4.7/§4.9's save_bioimageio_package*).
//
// Flags:
//   - --path: output path (default: "<source dir>/<source base name>.bioimageio.zip",
//     without the ".zip" suffix when --as-folder is set)
//   - --as-folder: write an unpacked directory instead of a zip
//   - --update-format: upgrade to the latest known format version first
//   - --weights-priority-order: comma-separated weight format preference
func runPackage(args []string, globals GlobalFlags) int {
	fs := flag.NewFlagSet("package", flag.ExitOnError)
	outPath := fs.String("path", "", "Output path for the package (default derived from the resource name)")
	asFolder := fs.Bool("as-folder", false, "Write an unpacked directory instead of a zip archive")
	updateFormat := fs.Bool("update-format", false, "Upgrade to the latest known format version before packaging")
	weightsOrder := fs.String("weights-priority-order", "", "Comma-separated weight format preference, e.g. pytorch_state_dict,onnx")
	compressionLevel := fs.Int("compression-level", 6, "Zip deflate compression level (0-9)")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: bioimageio package <source> [options]

Validate a resource description and materialize a distributable package:
a zip archive by default, or a plain directory with --as-folder.

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
	if err != nil {
		metrics.RunsTotal.WithLabelValues("package", "error").Inc()
		bioerrors.FatalError(bioerrors.NewConfigError("cannot load resource description", err.Error(), "", err), globals.JSON)
		return 1
	}
	if invalid != nil {
		metrics.RunsTotal.WithLabelValues("package", string(invalid.Summary.Status)).Inc()
		printSummary(invalid.Summary, globals)
		return 1
	}

	var priorityOrder []string
	if *weightsOrder != "" {
		priorityOrder = strings.Split(*weightsOrder, ",")
	}

	root := iocheck.NewDirRoot(filepath.Dir(source))
	dest := *outPath
	if dest == "" {
		dest = defaultPackagePath(source, *asFolder)
	}

	if *asFolder {
		err = description.SaveBioimageioPackageAsFolder(desc, root, description.UserAgent, dest, priorityOrder)
	} else {
		err = description.SaveBioimageioPackage(desc, root, description.UserAgent, dest, priorityOrder, *compressionLevel)
	}
	metrics.RunDuration.WithLabelValues("package").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RunsTotal.WithLabelValues("package", "error").Inc()
		bioerrors.FatalError(bioerrors.NewInternalError("packaging failed", err.Error(), "", err), globals.JSON)
		return 1
	}

	metrics.RunsTotal.WithLabelValues("package", string(validate.StatusPassed)).Inc()
	if !globals.Quiet {
		ui.Info(os.Stdout, "wrote %s", dest)
	}
	return 0
}

func defaultPackagePath(source string, asFolder bool) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	dir := filepath.Dir(source)
	if asFolder {
		return filepath.Join(dir, base+".bioimageio")
	}
	return filepath.Join(dir, base+".bioimageio.zip")
}
