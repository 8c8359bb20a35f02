// Package description implements the description façade (C9) of spec.md
// §4.9: the small set of public entry points (build_description,
// load_description, update_format, update_hashes, validate_format,
// save_bioimageio_package*) that wire together the schema registry (C2),
// upgraders (C3), validation engine (C4), tensor core (C5), and I/O layer
// (C6) into the operations a caller actually invokes.
package description

import (
	"fmt"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
	"github.com/bioimage-io/spec-go/pkg/schema"
	"github.com/bioimage-io/spec-go/pkg/summary"
	"github.com/bioimage-io/spec-go/pkg/upgrade"
	"github.com/bioimage-io/spec-go/pkg/validate"
)

// requiredGenericFields are required on every resource kind regardless of
// type (spec.md §3.1/§4.2's minimal generic schema).
var requiredGenericFields = []string{"name", "description", "type", "format_version"}

// requiredModelFields are additionally required on the model kind
// (spec.md §3.2).
var requiredModelFields = []string{"inputs", "outputs", "weights"}

// Description is the successful outcome of build_description: a raw
// document at a known (type, format_version), annotated with its
// validation outcome.
type Description struct {
	Raw           upgrade.Dict
	Type          schema.ResourceType
	FormatVersion string
	Summary       *summary.ValidationSummary
}

// Status reports the merged status of the description's validation
// summary (spec.md §4.4's three statuses).
func (d *Description) Status() validate.Status {
	if d.Summary == nil {
		return validate.StatusPassed
	}
	return d.Summary.Status
}

// InvalidDescription is build_description's failure outcome: we could not
// produce even a best-effort typed Description, only a summary explaining
// why (spec.md §7: "completely unparseable nodes become InvalidDescription
// records").
type InvalidDescription struct {
	Summary *summary.ValidationSummary
}

func discoverTypeAndVersion(raw upgrade.Dict) (schema.ResourceType, string) {
	typ, _ := raw["type"].(string)
	fv, _ := raw["format_version"].(string)
	return schema.NormalizeType(typ), fv
}

// BuildDescription implements spec.md §4.9's two-phase build:
//  1. discover: extract type + format_version from the raw document,
//  2. re-validate against the requested formatVersion ("discover" keeps
//     whatever was found, "latest" upgrades to the newest known minor, or
//     "X.Y" targets a specific minor), prefixing the discover pass's own
//     diagnostics into the summary.
func BuildDescription(raw upgrade.Dict, ctx *validate.Context, formatVersion string) (*Description, *InvalidDescription) {
	reg := schema.Default()
	rtype, discoveredFV := discoverTypeAndVersion(raw)

	discoverRes := validate.Run(ctx, []validate.Rule{
		requireFieldsRule(bioerrors.Loc{}, raw, []string{"type"}),
	})
	discoverDetail := summary.DetailFromResult("discover", "", discoverRes)

	target := formatVersion
	if target == "" || target == "discover" {
		target = discoveredFV
	}

	upgraded := raw
	if target == "latest" || target == "" {
		upgraded = upgrade.UpgradeToLatest(rtype, cloneDict(raw), discoveredFV)
		target = "latest"
	} else if discoveredFV != "" && discoveredFV != target {
		upgraded = upgrade.UpgradeToLatest(rtype, cloneDict(raw), discoveredFV)
	}

	sch, forwardWarn, err := reg.GetSchema(bioerrors.Loc{"format_version"}, rtype, target)
	if err != nil {
		diag, ok := err.(*bioerrors.Diagnostic)
		if !ok {
			diag = bioerrors.ValueError(bioerrors.Loc{"format_version"}, "format_version", err.Error())
		}
		sum := &summary.ValidationSummary{Type: string(rtype), Details: []summary.Detail{discoverDetail}}
		sum.Details = append(sum.Details, summary.DetailFromResult("main", "", &validate.Result{
			Status: validate.StatusFailed,
			Errors: []*bioerrors.Diagnostic{diag},
		}))
		sum.Merge()
		return nil, &InvalidDescription{Summary: sum}
	}

	var rules []validate.Rule
	rules = append(rules, requireFieldsRule(bioerrors.Loc{}, upgraded, requiredGenericFields))
	if rtype == schema.TypeModel {
		rules = append(rules, requireFieldsRule(bioerrors.Loc{}, upgraded, requiredModelFields))
	}
	if !sch.AllowUnknown {
		rules = append(rules, forbidUnknownFieldsRule(bioerrors.Loc{}, upgraded, sch.FieldNames))
	}
	if forwardWarn != nil {
		warn := forwardWarn
		rules = append(rules, func(ctx *validate.Context) []*bioerrors.Diagnostic {
			return []*bioerrors.Diagnostic{warn}
		})
	}
	rules = append(rules, envelopeRule(upgraded, rtype))
	rules = append(rules, documentationRule(upgraded, rtype))
	rules = append(rules, weightsRule(upgraded, rtype))
	rules = append(rules, tensorAxesRule(upgraded, rtype, sch.MajorMinor))
	rules = append(rules, identifierRule(upgraded, rtype, sch.MajorMinor))
	rules = append(rules, processingRule(upgraded, rtype, sch.MajorMinor))
	rules = append(rules, collectionRule(upgraded, rtype))
	rules = append(rules, ioChecksRule(upgraded))

	mainRes := validate.Run(ctx, rules)
	mainDetail := summary.DetailFromResult("main", "", mainRes)

	sum := &summary.ValidationSummary{
		Name:          stringField(upgraded, "name"),
		SourceName:    ctx.FileName,
		Type:          string(rtype),
		FormatVersion: sch.MajorMinor,
		ID:            stringField(upgraded, "id"),
		Details:       []summary.Detail{discoverDetail, mainDetail},
	}
	sum.Merge()

	if sum.Status == validate.StatusFailed {
		return nil, &InvalidDescription{Summary: sum}
	}
	return &Description{Raw: upgraded, Type: rtype, FormatVersion: sch.MajorMinor, Summary: sum}, nil
}

// ValidateFormat is the convenience wrapper of spec.md §4.9: build and
// return only the summary.
func ValidateFormat(raw upgrade.Dict, ctx *validate.Context, formatVersion string) *summary.ValidationSummary {
	desc, invalid := BuildDescription(raw, ctx, formatVersion)
	if invalid != nil {
		return invalid.Summary
	}
	return desc.Summary
}

// UpdateFormat loads, rebuilds at "latest", per spec.md §4.9.
func UpdateFormat(raw upgrade.Dict, ctx *validate.Context) (*Description, *InvalidDescription) {
	return BuildDescription(raw, ctx, "latest")
}

func requireFieldsRule(loc bioerrors.Loc, raw upgrade.Dict, fields []string) validate.Rule {
	return func(ctx *validate.Context) []*bioerrors.Diagnostic {
		var diags []*bioerrors.Diagnostic
		for _, f := range fields {
			if v, ok := raw[f]; !ok || v == nil {
				diags = append(diags, bioerrors.Missing(loc.With(f)))
			}
		}
		return diags
	}
}

func forbidUnknownFieldsRule(loc bioerrors.Loc, raw upgrade.Dict, known map[string]bool) validate.Rule {
	return func(ctx *validate.Context) []*bioerrors.Diagnostic {
		var diags []*bioerrors.Diagnostic
		for k := range raw {
			if !known[k] {
				diags = append(diags, bioerrors.ValueError(loc.With(k), "extra_forbidden", fmt.Sprintf("unknown field %q is not permitted here", k)))
			}
		}
		return diags
	}
}

func stringField(d upgrade.Dict, key string) string {
	s, _ := d[key].(string)
	return s
}

func cloneDict(d upgrade.Dict) upgrade.Dict {
	cp := make(upgrade.Dict, len(d))
	for k, v := range d {
		cp[k] = v
	}
	return cp
}
