package description

import (
	"fmt"
	"io"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
	"github.com/bioimage-io/spec-go/pkg/iocheck"
	"github.com/bioimage-io/spec-go/pkg/rdf"
	"github.com/bioimage-io/spec-go/pkg/schema"
	"github.com/bioimage-io/spec-go/pkg/upgrade"
	"github.com/bioimage-io/spec-go/pkg/validate"
)

// collectionInheritedFields are the root fields an entry without its own
// value falls back to (spec.md §3.4: "entries inherit fields from the
// collection root, may be overridden in-place").
var collectionInheritedFields = []string{
	"authors", "maintainers", "cite", "license", "tags", "links",
	"git_repo", "documentation", "covers", "badges",
}

// collectionRule is the cheap, I/O-free half of §3.4's collection support:
// it rejects duplicate entry ids among the inline `collection` list without
// resolving any entry_source/rdf_source (that needs a root and is done by
// BuildCollectionEntries, gated on PerformIOChecks like the rest of C6).
func collectionRule(raw upgrade.Dict, rtype schema.ResourceType) validate.Rule {
	return func(ctx *validate.Context) []*bioerrors.Diagnostic {
		if rtype != schema.TypeCollection {
			return nil
		}
		loc := bioerrors.Loc{"collection"}
		entries, ok := raw["collection"].([]any)
		if !ok {
			return []*bioerrors.Diagnostic{bioerrors.Missing(loc)}
		}
		if len(entries) == 0 {
			return []*bioerrors.Diagnostic{bioerrors.ValueError(loc, "collection", "must contain at least one entry")}
		}

		var diags []*bioerrors.Diagnostic
		seen := map[string]bool{}
		for i, raw := range entries {
			entry, ok := asDict(raw)
			if !ok {
				diags = append(diags, bioerrors.ValueError(loc.With(i), "collection", "entry must be a mapping"))
				continue
			}
			if _, isCollection := entry["collection"]; isCollection {
				diags = append(diags, bioerrors.ValueError(loc.With(i), "collection", "a collection entry may not itself be a collection"))
				continue
			}
			id, _ := entry["id"].(string)
			if id == "" {
				continue // entry_source/rdf_source-sourced entries may carry their id externally
			}
			if seen[id] {
				diags = append(diags, bioerrors.ValueError(loc.With(i).With("id"), "id", fmt.Sprintf("duplicate collection entry id %q", id)))
			}
			seen[id] = true
		}
		return diags
	}
}

// ResolvedEntry is one fully-materialized collection member (spec.md
// §3.4): its raw document after root-field inheritance, inline overrides,
// and entry_source/rdf_source resolution have all been merged, with its
// final `<collection_id>/<entry_id>` id assigned.
type ResolvedEntry struct {
	ID  string
	Raw upgrade.Dict
}

// BuildCollectionEntries resolves every member of a `collection` document
// into its final RD (spec.md §3.4). For each entry: an externally sourced
// document (entry_source/rdf_source) is fetched and parsed first, root
// fields are inherited under it, and the entry's own inline fields are
// applied last as the most specific override. Duplicate final ids across
// the whole collection are rejected.
func BuildCollectionEntries(raw upgrade.Dict, ctx *validate.Context) ([]ResolvedEntry, []*bioerrors.Diagnostic) {
	loc := bioerrors.Loc{"collection"}
	entries, ok := raw["collection"].([]any)
	if !ok {
		return nil, []*bioerrors.Diagnostic{bioerrors.Missing(loc)}
	}
	collectionID, _ := raw["id"].(string)

	var root *iocheck.Root
	var cleanup func() error
	if ctx.PerformIOChecks {
		var err error
		root, cleanup, err = rootFromContext(ctx)
		if err != nil {
			return nil, []*bioerrors.Diagnostic{bioerrors.IOError(loc, "cannot resolve validation context root", err)}
		}
		if cleanup != nil {
			defer cleanup()
		}
	}

	var out []ResolvedEntry
	var diags []*bioerrors.Diagnostic
	seenIDs := map[string]bool{}

	for i, rawEntry := range entries {
		eloc := loc.With(i)
		entry, ok := asDict(rawEntry)
		if !ok {
			diags = append(diags, bioerrors.ValueError(eloc, "collection", "entry must be a mapping"))
			continue
		}

		sourced := upgrade.Dict{}
		if src, ok := firstNonEmpty(entry, "rdf_source", "entry_source"); ok {
			if root == nil {
				diags = append(diags, bioerrors.ValueError(eloc, "entry_source", "entry_source/rdf_source requires I/O checks to be enabled"))
				continue
			}
			fetched, err := fetchEntrySource(root, eloc, src)
			if err != nil {
				diags = append(diags, toDiagnostic(eloc, err))
				continue
			}
			sourced = fetched
		}

		merged := inheritRootFields(raw)
		for k, v := range sourced {
			merged[k] = v
		}
		for k, v := range entry {
			if k == "rdf_source" || k == "entry_source" {
				continue
			}
			merged[k] = v
		}

		entryID, _ := merged["id"].(string)
		if entryID == "" {
			diags = append(diags, bioerrors.Missing(eloc.With("id")))
			continue
		}
		finalID := entryID
		if collectionID != "" {
			finalID = collectionID + "/" + entryID
		}
		if seenIDs[finalID] {
			diags = append(diags, bioerrors.ValueError(eloc.With("id"), "id", fmt.Sprintf("duplicate collection entry id %q", finalID)))
			continue
		}
		seenIDs[finalID] = true
		merged["id"] = finalID

		out = append(out, ResolvedEntry{ID: finalID, Raw: merged})
	}
	return out, diags
}

// inheritRootFields copies the collection root's inheritable fields into a
// fresh dict an entry's own fields will be layered on top of.
func inheritRootFields(root upgrade.Dict) upgrade.Dict {
	out := upgrade.Dict{}
	for _, f := range collectionInheritedFields {
		if v, ok := root[f]; ok {
			out[f] = v
		}
	}
	return out
}

func firstNonEmpty(d upgrade.Dict, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := d[k].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

func fetchEntrySource(root *iocheck.Root, loc bioerrors.Loc, source string) (upgrade.Dict, error) {
	fs, err := rdf.ParseFileSource(loc, source)
	if err != nil {
		return nil, err
	}
	res, err := iocheck.Resolve(root, fs, loc)
	if err != nil {
		return nil, err
	}
	r, err := iocheck.Open(root, res, UserAgent, true)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return parseYAML(b)
}
