// Package packager implements the packager (C7) of spec.md §4.7: breadth-
// first file collection, filename-clash resolution, weight-format
// filtering, and archive materialization.
package packager

import (
	"path"
	"strings"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
	"github.com/bioimage-io/spec-go/pkg/rdf"
)

// maxSuffix bounds the "_2".."_20" collision-resolution search of spec.md
// §4.7 step 2.
const maxSuffix = 20

// FileDescr is one in-package file reference discovered by the breadth-
// first walk of spec.md §4.7 step 1.
type FileDescr struct {
	Loc    bioerrors.Loc
	Source rdf.FileSource
	Sha256 string // "" if not yet known
}

// PackageEntry is a FileDescr after local-filename resolution: Source keeps
// the original reference (for fetching), LocalName is where it lands in
// the archive, and is what the rewritten YAML's `source` field becomes.
type PackageEntry struct {
	Loc       bioerrors.Loc
	Source    rdf.FileSource
	Sha256    string
	LocalName string
}

// ResolveLocalNames implements spec.md §4.7 step 2: take the basename of
// each source; when two different sources collide on the same basename,
// append "_2", "_3", ... before the extension. The same source reused at
// multiple locations keeps a single local name (first one assigned wins).
func ResolveLocalNames(files []FileDescr) ([]PackageEntry, error) {
	entries := make([]PackageEntry, len(files))
	nameToSource := map[string]string{} // localName -> source value that owns it
	sourceToName := map[string]string{} // source value -> already-assigned localName

	for i, f := range files {
		if existing, ok := sourceToName[f.Source.Value]; ok {
			entries[i] = PackageEntry{Loc: f.Loc, Source: f.Source, Sha256: f.Sha256, LocalName: existing}
			continue
		}

		base := path.Base(f.Source.Value)
		name := base
		ext := path.Ext(base)
		stem := strings.TrimSuffix(base, ext)

		assigned := ""
		for n := 1; n <= maxSuffix; n++ {
			candidate := name
			if n > 1 {
				candidate = stem + "_" + itoa(n) + ext
			}
			owner, taken := nameToSource[candidate]
			if !taken || owner == f.Source.Value {
				assigned = candidate
				break
			}
		}
		if assigned == "" {
			return nil, bioerrors.ValueError(f.Loc, "source", "no free local filename slot for "+f.Source.Value+" (exhausted "+itoa(maxSuffix)+" suffixes)")
		}

		nameToSource[assigned] = f.Source.Value
		sourceToName[f.Source.Value] = assigned
		entries[i] = PackageEntry{Loc: f.Loc, Source: f.Source, Sha256: f.Sha256, LocalName: assigned}
	}
	return entries, nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// CheckReservedNames implements spec.md §4.7 step 3: the RDF filename
// itself may not be the target of a file reference.
func CheckReservedNames(rdfFileName string, entries []PackageEntry) []*bioerrors.Diagnostic {
	var diags []*bioerrors.Diagnostic
	for _, e := range entries {
		if e.LocalName == rdfFileName {
			diags = append(diags, bioerrors.ValueError(e.Loc, "source", "local filename "+e.LocalName+" collides with the reserved RDF filename"))
		}
	}
	return diags
}

// FilterWeights implements spec.md §4.7 step 4: given the raw `weights`
// mapping (format name -> entry) and a priority order, keep only the first
// present format. Fails if none of the requested formats is present.
func FilterWeights(weights map[string]any, priorityOrder []string) (map[string]any, error) {
	if len(priorityOrder) == 0 {
		return weights, nil
	}
	for _, format := range priorityOrder {
		if entry, ok := weights[format]; ok {
			return map[string]any{format: entry}, nil
		}
	}
	return nil, bioerrors.ValueError(bioerrors.Loc{"weights"}, "weights_priority_order", "none of the requested weight formats is present: "+strings.Join(priorityOrder, ", "))
}
