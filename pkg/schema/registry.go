// Package schema implements the schema registry (C2) of spec.md §4.2: a
// process-wide mapping (type, "MAJOR.MINOR"|"latest") -> Schema.
package schema

import (
	"fmt"
	"sort"
	"sync"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
	"github.com/bioimage-io/spec-go/pkg/rdf"
)

// ResourceType enumerates the `type` discriminator of spec.md §3.1. Unknown
// values fall back to Generic.
type ResourceType string

const (
	TypeGeneric     ResourceType = "generic"
	TypeApplication ResourceType = "application"
	TypeDataset     ResourceType = "dataset"
	TypeNotebook    ResourceType = "notebook"
	TypeModel       ResourceType = "model"
	TypeCollection  ResourceType = "collection"
)

// NormalizeType maps an arbitrary raw `type` string onto a known
// ResourceType, defaulting to Generic (spec.md §3.1: "Unknown type falls
// back to generic").
func NormalizeType(raw string) ResourceType {
	switch ResourceType(raw) {
	case TypeApplication, TypeDataset, TypeNotebook, TypeModel, TypeCollection:
		return ResourceType(raw)
	default:
		return TypeGeneric
	}
}

// Schema identifies one (type, major.minor) schema entry. FieldNames is the
// set of field names the validation engine (C4) accepts for this schema;
// AllowUnknown controls whether unrecognized fields are forbidden (spec.md
// §4.4: forbidden everywhere except `attachments` and `config`).
type Schema struct {
	Type         ResourceType
	MajorMinor   string
	FieldNames   map[string]bool
	AllowUnknown bool
}

// registryEntry tracks the known minors for one type plus which is latest.
type registryEntry struct {
	minors map[string]*Schema
	latest string // MAJOR.MINOR
}

// Registry is the process-wide (read-only after init) schema table of
// spec.md §4.2.
type Registry struct {
	mu      sync.RWMutex
	byType  map[ResourceType]*registryEntry
}

// NewRegistry builds an empty registry; Default() returns the populated
// process-wide instance used by the rest of the module.
func NewRegistry() *Registry {
	return &Registry{byType: make(map[ResourceType]*registryEntry)}
}

// Register adds one schema version for a type, marking it latest if it is
// the first registered, or if makeLatest is passed, or if it numerically
// exceeds the current latest.
func (r *Registry) Register(s *Schema, makeLatest bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byType[s.Type]
	if !ok {
		e = &registryEntry{minors: make(map[string]*Schema)}
		r.byType[s.Type] = e
	}
	e.minors[s.MajorMinor] = s
	if makeLatest || e.latest == "" || minorGreater(s.MajorMinor, e.latest) {
		e.latest = s.MajorMinor
	}
}

func minorGreater(a, b string) bool {
	var aMaj, aMin, bMaj, bMin int
	fmt.Sscanf(a, "%d.%d", &aMaj, &aMin)
	fmt.Sscanf(b, "%d.%d", &bMaj, &bMin)
	if aMaj != bMaj {
		return aMaj > bMaj
	}
	return aMin > bMin
}

// LatestMinor returns the latest known MAJOR.MINOR for a type.
func (r *Registry) LatestMinor(t ResourceType) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byType[t]
	if !ok {
		return "", false
	}
	return e.latest, true
}

// KnownMinors returns every registered MAJOR.MINOR for a type, sorted.
func (r *Registry) KnownMinors(t ResourceType) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byType[t]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(e.minors))
	for m := range e.minors {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// GetSchema resolves a schema by (type, format_version). formatVersion may
// be "latest", or a "MAJOR.MINOR[.PATCH]" string (patch is rounded off per
// spec.md §4.2). Returns a warning diagnostic when format_version exceeds
// every known minor and is treated as latest (spec.md §8.6's
// "format_version: 9999.0.0" scenario). A known MAJOR.MINOR is accepted at
// any patch without a warning.
func (r *Registry) GetSchema(loc bioerrors.Loc, t ResourceType, formatVersion string) (*Schema, *bioerrors.Diagnostic, error) {
	r.mu.RLock()
	e, ok := r.byType[t]
	r.mu.RUnlock()
	if !ok {
		return nil, nil, bioerrors.ValueError(loc, "type", fmt.Sprintf("no schema registered for type %q", t))
	}

	if formatVersion == "" || formatVersion == "latest" {
		r.mu.RLock()
		s := e.minors[e.latest]
		r.mu.RUnlock()
		return s, nil, nil
	}

	v, err := rdf.ParseVersion(loc.With("format_version"), formatVersion)
	if err != nil {
		return nil, nil, err
	}
	mm := v.MajorMinor()

	r.mu.RLock()
	s, known := e.minors[mm]
	latest := e.minors[e.latest]
	latestMM := e.latest
	r.mu.RUnlock()

	if known {
		return s, nil, nil
	}

	// Unknown minor: if it is numerically beyond the latest known minor,
	// treat it as the latest known version with a warning (forward
	// compatibility, spec.md §3.1 and the §8 scenario 6).
	if minorGreater(mm, latestMM) {
		warn := bioerrors.Warning(loc.With("format_version"), 30,
			fmt.Sprintf("format_version %s is newer than the latest known version %s; treating as %s", formatVersion, latestMM, latestMM))
		return latest, warn, nil
	}

	return nil, nil, bioerrors.ValueError(loc.With("format_version"), "format_version",
		fmt.Sprintf("unknown format_version %s for type %s", formatVersion, t))
}

var defaultRegistry = buildDefault()

// Default returns the process-wide registry populated with the known
// schemas (generic 0.2/0.3, application 0.2/0.3, dataset 0.2/0.3, notebook
// 0.2/0.3, model 0.4/0.5, collection 0.2/0.3).
func Default() *Registry { return defaultRegistry }

func buildDefault() *Registry {
	r := NewRegistry()

	genericFields := map[string]bool{
		"name": true, "description": true, "authors": true, "maintainers": true,
		"cite": true, "license": true, "covers": true, "attachments": true,
		"tags": true, "links": true, "git_repo": true, "icon": true,
		"version": true, "version_comment": true, "uploader": true, "id": true,
		"id_emoji": true, "config": true, "documentation": true, "type": true,
		"format_version": true, "badges": true,
	}
	register := func(t ResourceType, minors ...string) {
		for i, mm := range minors {
			r.Register(&Schema{Type: t, MajorMinor: mm, FieldNames: genericFields}, i == len(minors)-1)
		}
	}
	register(TypeGeneric, "0.2", "0.3")
	register(TypeApplication, "0.2", "0.3")
	register(TypeDataset, "0.2", "0.3")
	register(TypeNotebook, "0.2", "0.3")

	collectionFields := make(map[string]bool, len(genericFields)+1)
	for k := range genericFields {
		collectionFields[k] = true
	}
	collectionFields["collection"] = true
	r.Register(&Schema{Type: TypeCollection, MajorMinor: "0.2", FieldNames: collectionFields}, false)
	r.Register(&Schema{Type: TypeCollection, MajorMinor: "0.3", FieldNames: collectionFields}, true)

	modelFields := make(map[string]bool, len(genericFields)+8)
	for k := range genericFields {
		modelFields[k] = true
	}
	for _, f := range []string{"inputs", "outputs", "weights", "training_data", "packaged_by", "parent", "timestamp", "run_mode"} {
		modelFields[f] = true
	}
	r.Register(&Schema{Type: TypeModel, MajorMinor: "0.4", FieldNames: modelFields}, false)
	r.Register(&Schema{Type: TypeModel, MajorMinor: "0.5", FieldNames: modelFields}, true)

	return r
}
