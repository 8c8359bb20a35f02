package description

import (
	"archive/zip"
	"io"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
	"github.com/bioimage-io/spec-go/pkg/iocheck"
	"github.com/bioimage-io/spec-go/pkg/packager"
	"github.com/bioimage-io/spec-go/pkg/rdf"
	"github.com/bioimage-io/spec-go/pkg/summary"
	"github.com/bioimage-io/spec-go/pkg/upgrade"
	"github.com/bioimage-io/spec-go/pkg/validate"
	"github.com/klauspost/compress/flate"
	"gopkg.in/yaml.v3"
)

// defaultRDFFileName builds "{name}.{type}.bioimageio.yaml" (spec.md §4.7).
func defaultRDFFileName(d *Description) string {
	name := stringField(d.Raw, "name")
	if name == "" {
		name = "resource"
	}
	return sanitizeFileStem(name) + "." + string(d.Type) + ".bioimageio.yaml"
}

func sanitizeFileStem(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		case r == ' ':
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "resource"
	}
	return string(out)
}

// collectFileDescrs walks the raw document breadth-first for
// `{source: ..., sha256?: ...}` objects — the FileDescr wire shape of
// spec.md §6.2 — since this package does not carry a fully typed, per-field
// "in-package" schema annotation; any object exposing a `source` string is
// treated as an in-package file reference, matching spec.md §4.7 step 1's
// "whenever a FileDescr appears".
func collectFileDescrs(node any, loc bioerrors.Loc) []packager.FileDescr {
	type pending struct {
		node any
		loc  bioerrors.Loc
	}
	var out []packager.FileDescr
	queue := []pending{{node, loc}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		switch v := cur.node.(type) {
		case upgrade.Dict:
			if src, ok := v["source"].(string); ok {
				fs, err := rdf.ParseFileSource(cur.loc, src)
				if err == nil && fs.Kind != rdf.KindHttpUrl {
					sha, _ := v["sha256"].(string)
					out = append(out, packager.FileDescr{Loc: cur.loc.With("source"), Source: fs, Sha256: sha})
				}
			}
			for k, child := range v {
				queue = append(queue, pending{child, cur.loc.With(k)})
			}
		case []any:
			for i, child := range v {
				queue = append(queue, pending{child, cur.loc.With(i)})
			}
		}
	}
	return out
}

// rewriteSourcesToLocalNames returns a deep copy of raw with every matched
// FileDescr's `source` rewritten to its resolved local filename (spec.md
// §4.7 step 2: "the YAML entry is then rewritten to the local filename").
func rewriteSourcesToLocalNames(raw upgrade.Dict, bySourceValue map[string]string) upgrade.Dict {
	var rewrite func(any) any
	rewrite = func(node any) any {
		switch v := node.(type) {
		case upgrade.Dict:
			cp := make(upgrade.Dict, len(v))
			for k, child := range v {
				cp[k] = rewrite(child)
			}
			if src, ok := cp["source"].(string); ok {
				if local, ok := bySourceValue[src]; ok {
					cp["source"] = local
				}
			}
			return cp
		case []any:
			cp := make([]any, len(v))
			for i, child := range v {
				cp[i] = rewrite(child)
			}
			return cp
		default:
			return v
		}
	}
	return rewrite(raw).(upgrade.Dict)
}

// buildPackageEntries resolves local filenames for every in-package file
// and rewrites the raw document's source fields to match (spec.md §4.7
// steps 1-3).
func buildPackageEntries(d *Description, rdfFileName string) ([]packager.PackageEntry, upgrade.Dict, []*bioerrors.Diagnostic) {
	files := collectFileDescrs(d.Raw, bioerrors.Loc{})
	entries, err := packager.ResolveLocalNames(files)
	if err != nil {
		diag, ok := err.(*bioerrors.Diagnostic)
		if !ok {
			diag = bioerrors.ValueError(bioerrors.Loc{}, "source", err.Error())
		}
		return nil, nil, []*bioerrors.Diagnostic{diag}
	}

	diags := packager.CheckReservedNames(rdfFileName, entries)

	bySource := make(map[string]string, len(entries))
	for _, e := range entries {
		bySource[e.Source.Value] = e.LocalName
	}
	rewritten := rewriteSourcesToLocalNames(d.Raw, bySource)
	return entries, rewritten, diags
}

func marshalRDF(raw upgrade.Dict) ([]byte, error) {
	return yaml.Marshal(raw)
}

// SaveBioimageioPackageAsFolder implements spec.md §4.7's directory
// materialization path.
func SaveBioimageioPackageAsFolder(d *Description, root *iocheck.Root, userAgent, outDir string, weightsPriorityOrder []string) error {
	d, err := applyWeightsFilter(d, weightsPriorityOrder)
	if err != nil {
		return err
	}
	rdfName := defaultRDFFileName(d)
	entries, rewritten, diags := buildPackageEntries(d, rdfName)
	if len(diags) > 0 {
		return diags[0]
	}
	rdfBytes, err := marshalRDF(rewritten)
	if err != nil {
		return err
	}
	return packager.MaterializeDirectory(root, userAgent, outDir, entries, rdfName, rdfBytes)
}

// SaveBioimageioPackage implements spec.md §4.7's zip materialization path,
// followed by step 6's re-validation at warning-level = error.
func SaveBioimageioPackage(d *Description, root *iocheck.Root, userAgent, outPath string, weightsPriorityOrder []string, compressionLevel int) error {
	d, err := applyWeightsFilter(d, weightsPriorityOrder)
	if err != nil {
		return err
	}
	rdfName := defaultRDFFileName(d)
	entries, rewritten, diags := buildPackageEntries(d, rdfName)
	if len(diags) > 0 {
		return diags[0]
	}
	rdfBytes, err := marshalRDF(rewritten)
	if err != nil {
		return err
	}
	if err := packager.MaterializeZip(root, userAgent, outPath, entries, rdfName, rdfBytes, compressionLevel); err != nil {
		return err
	}
	return revalidateZip(outPath)
}

// SaveBioimageioPackageToStream writes the zip package directly to w,
// without touching disk for the archive itself (spec.md §4.9).
func SaveBioimageioPackageToStream(d *Description, root *iocheck.Root, userAgent string, w io.Writer, weightsPriorityOrder []string, compressionLevel int) error {
	d, err := applyWeightsFilter(d, weightsPriorityOrder)
	if err != nil {
		return err
	}
	rdfName := defaultRDFFileName(d)
	entries, rewritten, diags := buildPackageEntries(d, rdfName)
	if len(diags) > 0 {
		return diags[0]
	}
	rdfBytes, err := marshalRDF(rewritten)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, compressionLevel)
	})
	for _, e := range entries {
		res, err := iocheck.Resolve(root, e.Source, e.Loc)
		if err != nil {
			return err
		}
		r, err := iocheck.Open(root, res, userAgent, true)
		if err != nil {
			return err
		}
		fw, err := zw.Create(e.LocalName)
		if err != nil {
			r.Close()
			return err
		}
		if _, err := io.Copy(fw, r); err != nil {
			r.Close()
			return err
		}
		r.Close()
	}
	fw, err := zw.Create(rdfName)
	if err != nil {
		return err
	}
	if _, err := fw.Write(rdfBytes); err != nil {
		return err
	}
	return zw.Close()
}

func applyWeightsFilter(d *Description, priorityOrder []string) (*Description, error) {
	if len(priorityOrder) == 0 {
		return d, nil
	}
	weights, _ := d.Raw["weights"].(upgrade.Dict)
	if weights == nil {
		if m, ok := d.Raw["weights"].(map[string]any); ok {
			weights = upgrade.Dict(m)
		}
	}
	if weights == nil {
		return d, nil
	}
	asAny := make(map[string]any, len(weights))
	for k, v := range weights {
		asAny[k] = v
	}
	filtered, err := packager.FilterWeights(asAny, priorityOrder)
	if err != nil {
		return nil, err
	}
	cp := cloneDict(d.Raw)
	fw := make(upgrade.Dict, len(filtered))
	for k, v := range filtered {
		fw[k] = v
	}
	cp["weights"] = fw

	ctx := validate.NewContext("", "")
	filteredDesc, invalid := BuildDescription(cp, ctx, d.FormatVersion)
	if invalid != nil {
		return nil, &packageRevalidationError{summary: invalid.Summary}
	}
	return filteredDesc, nil
}

// packageRevalidationError reports that re-validating the description
// after filtering to weights_priority_order failed (spec.md §4.7 step 4:
// "the filtered description is re-validated").
type packageRevalidationError struct {
	summary *summary.ValidationSummary
}

func (e *packageRevalidationError) Error() string {
	return "description failed re-validation after weights_priority_order filtering: status=" + string(e.summary.Status)
}

// revalidateZip implements spec.md §4.7 step 6: after writing the zip, it
// is re-loaded and re-validated with warning-level = error.
func revalidateZip(outPath string) error {
	_, invalid, err := LoadDescription(outPath, "discover")
	if err != nil {
		return err
	}
	if invalid != nil {
		return &packageRevalidationError{summary: invalid.Summary}
	}
	return nil
}
