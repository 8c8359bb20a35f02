package upgrade

import (
	"github.com/bioimage-io/spec-go/pkg/rdf"
	"github.com/bioimage-io/spec-go/pkg/schema"
)

// Step is one upgrader in a chain: a pure function from one minor version's
// raw dict to the next.
type Step func(Dict) Dict

// chains lists, per type, the ordered upgrader steps from the oldest known
// minor to the latest (spec.md §4.3: "chained until the target minor is
// reached").
var chains = map[schema.ResourceType][]Step{
	schema.TypeGeneric:     {UpgradeGeneric02To03},
	schema.TypeApplication: {UpgradeGeneric02To03},
	schema.TypeDataset:     {UpgradeGeneric02To03},
	schema.TypeNotebook:    {UpgradeGeneric02To03},
	schema.TypeCollection:  {UpgradeGeneric02To03},
	schema.TypeModel:       {UpgradeGeneric02To03, UpgradeModel04To05},
}

// ChainFor returns the full upgrader chain registered for a type.
func ChainFor(t schema.ResourceType) []Step {
	return chains[t]
}

// UpgradeToLatest runs, in chain order, every upgrader step whose target
// version (the format_version the step writes) is newer than the
// document's current format_version, so a document already at the latest
// known minor passes through unchanged. It never raises (spec.md §4.3):
// malformed input simply passes through unmodified steps.
func UpgradeToLatest(t schema.ResourceType, d Dict, currentMinor string) Dict {
	steps := ChainFor(t)
	cur, err := rdf.ParseVersion(nil, ensurePatch(currentMinor))
	if err != nil {
		return d
	}
	for _, step := range steps {
		if target, ok := step(Dict{})["format_version"].(string); ok {
			if tv, err := rdf.ParseVersion(nil, target); err == nil && tv.Compare(cur) <= 0 {
				continue
			}
		}
		before := d["format_version"]
		d = step(d)
		after, _ := d["format_version"].(string)
		if after == "" {
			d["format_version"] = before
			continue
		}
		next, err := rdf.ParseVersion(nil, after)
		if err == nil && next.Compare(cur) > 0 {
			cur = next
		}
	}
	return d
}

func ensurePatch(v string) string {
	// ParseVersion accepts 1-3 release components already; nothing to do,
	// kept as a named hook for symmetry with the original call sites.
	return v
}
