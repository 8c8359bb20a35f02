package description

import (
	"archive/zip"
	"io"
	"strings"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
	"github.com/bioimage-io/spec-go/pkg/iocheck"
	"github.com/bioimage-io/spec-go/pkg/rdf"
	"github.com/bioimage-io/spec-go/pkg/schema"
	"github.com/bioimage-io/spec-go/pkg/upgrade"
	"github.com/bioimage-io/spec-go/pkg/validate"
)

// UserAgent is sent on every HTTP file-source fetch performed during
// validation. It defaults to the teacher-style package identity and is
// overridden once at startup from internal/settings' user_agent knob
// (spec.md §6.4), the same way cmd/cie's globals are assembled once in
// main() and threaded through rather than re-read per call.
var UserAgent = "bioimageio-spec-go"

// ioChecksRule wires the file-source resolver and I/O-check layer (C6)
// into the main validation pass, gated on ctx.PerformIOChecks (spec.md
// §4.6): every FileDescr discovered in the raw document is resolved
// against ctx.Root and, when it declares a sha256, verified.
func ioChecksRule(raw upgrade.Dict) validate.Rule {
	return func(ctx *validate.Context) []*bioerrors.Diagnostic {
		if !ctx.PerformIOChecks {
			return nil
		}
		files := collectFileDescrs(raw, bioerrors.Loc{})
		if len(files) == 0 {
			return nil
		}

		root, cleanup, err := rootFromContext(ctx)
		if err != nil {
			return []*bioerrors.Diagnostic{bioerrors.IOError(bioerrors.Loc{}, "cannot resolve validation context root", err)}
		}
		if cleanup != nil {
			defer cleanup()
		}

		items := make([]iocheck.VerifyItem, len(files))
		for i, f := range files {
			items[i] = iocheck.VerifyItem{Loc: f.Loc, Source: f.Source, ExpectedHash: f.Sha256}
		}
		results := iocheck.VerifyAll(ctx, root, UserAgent, items, 8)

		var diags []*bioerrors.Diagnostic
		for _, r := range results {
			if r.Diagnostic != nil {
				diags = append(diags, r.Diagnostic)
			}
		}
		return diags
	}
}

// documentationRule requires a model's `documentation` Markdown file to
// contain a "## Validation" section (spec.md §3.1). It is gated on
// ctx.PerformIOChecks since it needs the file's content, not just its
// resolvability.
func documentationRule(raw upgrade.Dict, rtype schema.ResourceType) validate.Rule {
	return func(ctx *validate.Context) []*bioerrors.Diagnostic {
		if rtype != schema.TypeModel || !ctx.PerformIOChecks {
			return nil
		}
		loc := bioerrors.Loc{"documentation"}
		docSrc, ok := raw["documentation"].(string)
		if !ok || docSrc == "" {
			return nil
		}

		fs, err := rdf.ParseFileSource(loc, docSrc)
		if err != nil {
			return []*bioerrors.Diagnostic{bioerrors.ValueError(loc, "file_source", err.Error())}
		}

		root, cleanup, err := rootFromContext(ctx)
		if err != nil {
			return []*bioerrors.Diagnostic{bioerrors.IOError(loc, "cannot resolve validation context root", err)}
		}
		if cleanup != nil {
			defer cleanup()
		}

		res, err := iocheck.Resolve(root, fs, loc)
		if err != nil {
			return []*bioerrors.Diagnostic{bioerrors.IOError(loc, "cannot resolve documentation source", err)}
		}
		r, err := iocheck.Open(root, res, UserAgent, true)
		if err != nil {
			return []*bioerrors.Diagnostic{bioerrors.IOError(loc, "cannot open documentation source", err)}
		}
		defer r.Close()

		content, err := io.ReadAll(r)
		if err != nil {
			return []*bioerrors.Diagnostic{bioerrors.IOError(loc, "cannot read documentation source", err)}
		}
		if !strings.Contains(string(content), "## Validation") {
			return []*bioerrors.Diagnostic{bioerrors.ValueError(loc, "documentation", "model documentation must contain a \"## Validation\" section")}
		}
		return nil
	}
}

// rootFromContext derives an iocheck.Root from a Context's Root string:
// "zip:<path>" opens that archive, an http(s) prefix becomes a URL root,
// anything else is treated as a local directory (spec.md §4.6's three
// root shapes). The returned cleanup closes any opened zip reader and may
// be nil.
func rootFromContext(ctx *validate.Context) (*iocheck.Root, func() error, error) {
	switch {
	case strings.HasPrefix(ctx.Root, "zip:"):
		path := strings.TrimPrefix(ctx.Root, "zip:")
		zr, err := zip.OpenReader(path)
		if err != nil {
			return nil, nil, err
		}
		return iocheck.NewZipRoot(&zr.Reader), zr.Close, nil
	case strings.HasPrefix(ctx.Root, "http://"), strings.HasPrefix(ctx.Root, "https://"):
		return iocheck.NewURLRoot(ctx.Root), nil, nil
	default:
		return iocheck.NewDirRoot(ctx.Root), nil, nil
	}
}
