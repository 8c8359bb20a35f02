// Package main implements the bioimageio CLI for validating and packaging
// bioimage.io resource descriptions.
//
// Usage:
//
//	bioimageio validate <source> [--update-format]   Validate an RDF
//	bioimageio package <source> [--path OUT]         Write a distributable package
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/bioimage-io/spec-go/internal/ui"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags holds the flags that apply to every subcommand.
type GlobalFlags struct {
	JSON    bool
	NoColor bool
	Verbose int
	Quiet   bool
}

func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		jsonOutput  = flag.Bool("json", false, "Output the validation summary as JSON")
		noColor     = flag.Bool("no-color", false, "Disable color output")
		verbose     = flag.CountP("verbose", "v", "Increase verbosity (-v, -vv)")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress non-essential output")
	)

	// Stop parsing at the first non-flag argument so subcommand-specific
	// flags like "package --path out.zip" reach their own FlagSet instead
	// of being rejected here.
	flag.SetInterspersed(false)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `bioimageio - bioimage.io resource description validator and packager

Usage:
  bioimageio <command> [options]

Commands:
  validate      Validate a resource description against its format's schema
  package       Materialize a distributable package (folder or zip)

Global Options:
  --json             Output in JSON format
  --no-color         Disable color output (respects NO_COLOR env var)
  -v, --verbose      Increase verbosity (-v for info, -vv for debug)
  -q, --quiet        Suppress non-essential output
  -V, --version      Show version and exit

Examples:
  bioimageio validate rdf.yaml
  bioimageio --json validate rdf.yaml
  bioimageio package rdf.yaml --path my-model.zip

For detailed command help: bioimageio <command> --help

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("bioimageio version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	if os.Getenv("NO_COLOR") != "" {
		*noColor = true
	}
	if *quiet && *verbose > 0 {
		fmt.Fprintln(os.Stderr, "Error: cannot use --quiet and --verbose together")
		os.Exit(1)
	}
	if *jsonOutput {
		*quiet = true
	}

	globals := GlobalFlags{JSON: *jsonOutput, NoColor: *noColor, Verbose: *verbose, Quiet: *quiet}
	ui.InitColors(globals.NoColor)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "validate":
		os.Exit(runValidate(cmdArgs, globals))
	case "package":
		os.Exit(runPackage(cmdArgs, globals))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
