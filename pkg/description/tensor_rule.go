package description

import (
	"fmt"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
	"github.com/bioimage-io/spec-go/pkg/rdf"
	"github.com/bioimage-io/spec-go/pkg/schema"
	"github.com/bioimage-io/spec-go/pkg/tensor"
	"github.com/bioimage-io/spec-go/pkg/upgrade"
	"github.com/bioimage-io/spec-go/pkg/validate"
)

// tensorAxesRule wires the model-0.5 tensor/axis algebra (C5) into the main
// validation pass: spec.md §3.3's cross-tensor invariants (duplicate/
// unresolvable axis ids, a single batch axis per tensor, size-reference and
// channel-reference targets, WithHalo's minimum-size and implied-input-halo
// checks) only make sense once a document is actually at the 0.5 per-axis
// object shape, so this is only run when the schema selected for validation
// is model/0.5.
func tensorAxesRule(raw upgrade.Dict, rtype schema.ResourceType, schemaMajorMinor string) validate.Rule {
	return func(ctx *validate.Context) []*bioerrors.Diagnostic {
		if rtype != schema.TypeModel || schemaMajorMinor != "0.5" {
			return nil
		}
		m := tensor.DecodeModel(raw)
		return tensor.ValidateAxes(m, bioerrors.Loc{})
	}
}

// processingRule wires the pre/postprocessing chain invariants of spec.md
// §3.3 (axes-kwarg subset, scale_range's reference_tensor scoping,
// reproducibility_tolerance vs. the max test-tensor value) and the
// test-tensor contract of §6.3 (dtype, shape, non-degenerate values) into
// the main pass. Both the reproducibility check and the test-tensor
// contract need a decoded test_tensor array; decodeTestTensors is a no-op
// when no ArrayDecoder is wired (spec.md §6.3 scopes the array codec
// itself to a caller), so both checks are silently skipped in that case.
func processingRule(raw upgrade.Dict, rtype schema.ResourceType, schemaMajorMinor string) validate.Rule {
	return func(ctx *validate.Context) []*bioerrors.Diagnostic {
		if rtype != schema.TypeModel || schemaMajorMinor != "0.5" {
			return nil
		}
		m := tensor.DecodeModel(raw)
		arrays, diags := decodeTestTensors(ctx, m)
		diags = append(diags, tensor.CheckTestTensors(m, arrays, bioerrors.Loc{})...)

		for i, t := range m.Inputs {
			loc := bioerrors.Loc{"inputs", i, "preprocessing"}
			diags = append(diags, tensor.ValidateProcessingChain(m, t, tensor.StagePre, t.Preprocessing, loc, 0, 0, false)...)
		}
		for i, t := range m.Outputs {
			loc := bioerrors.Loc{"outputs", i, "postprocessing"}
			maxTestValue, absTol, hasTol := 0.0, 0.0, false
			if arr, ok := arrays[t.ID]; ok {
				maxTestValue = arr.MaxAbs
				if rt, found := tensor.ForOutput(m.ReproTolerances, t.ID); found && rt.HasAbsoluteTolerance {
					absTol, hasTol = rt.AbsoluteTolerance, true
				}
			}
			diags = append(diags, tensor.ValidateProcessingChain(m, t, tensor.StagePost, t.Postprocessing, loc, maxTestValue, absTol, hasTol)...)
		}
		return diags
	}
}

// identifierRule enforces the axis/tensor id length bounds (spec.md §4.1:
// LowerCaseIdentifier, <=16 for axis ids, <=32 for tensor ids) and the
// SI-unit grammar (spec.md §4.1: SiUnit) of time/space axes — the rdf (C1)
// primitives the decoded tensor.Model has no slot for, so this rule reads
// them straight off the raw model-0.5 `inputs`/`outputs` lists.
func identifierRule(raw upgrade.Dict, rtype schema.ResourceType, schemaMajorMinor string) validate.Rule {
	return func(ctx *validate.Context) []*bioerrors.Diagnostic {
		if rtype != schema.TypeModel || schemaMajorMinor != "0.5" {
			return nil
		}
		var diags []*bioerrors.Diagnostic
		diags = append(diags, identifierDiagsForList(raw["inputs"], "inputs")...)
		diags = append(diags, identifierDiagsForList(raw["outputs"], "outputs")...)
		return diags
	}
}

func identifierDiagsForList(raw any, field string) []*bioerrors.Diagnostic {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	var diags []*bioerrors.Diagnostic
	for i, item := range list {
		d, ok := asDict(item)
		if !ok {
			continue
		}
		tloc := bioerrors.Loc{field, i}
		if id, ok := d["id"].(string); ok && id != "" {
			if _, err := rdf.LowerCaseIdentifier(tloc.With("id"), id, rdf.TensorIDMaxLen); err != nil {
				diags = append(diags, toDiagnostic(tloc.With("id"), err))
			}
		}
		axesRaw, _ := d["axes"].([]any)
		for j, a := range axesRaw {
			ad, ok := asDict(a)
			if !ok {
				continue
			}
			aloc := tloc.With("axes", j)
			if id, ok := ad["id"].(string); ok && id != "" {
				if _, err := rdf.LowerCaseIdentifier(aloc.With("id"), id, rdf.AxisIDMaxLen); err != nil {
					diags = append(diags, toDiagnostic(aloc.With("id"), err))
				}
			}
			axisType, _ := ad["type"].(string)
			if unit, ok := ad["unit"].(string); ok && unit != "" && (axisType == "time" || axisType == "space") {
				if _, err := rdf.ValidateSIUnit(aloc.With("unit"), unit); err != nil {
					diags = append(diags, toDiagnostic(aloc.With("unit"), err))
				}
			}
		}
	}
	return diags
}

// weightsRule enforces spec.md §3.2's weights-record invariants: at least
// one entry, at most one entry may omit `parent`, and every non-root
// entry's `parent` must reference another present format and is not
// self-referential.
func weightsRule(raw upgrade.Dict, rtype schema.ResourceType) validate.Rule {
	return func(ctx *validate.Context) []*bioerrors.Diagnostic {
		if rtype != schema.TypeModel {
			return nil
		}
		weights, ok := raw["weights"].(upgrade.Dict)
		if !ok {
			return nil
		}
		loc := bioerrors.Loc{"weights"}
		if len(weights) == 0 {
			return []*bioerrors.Diagnostic{bioerrors.ValueError(loc, "weights", "must declare at least one weight format")}
		}

		var diags []*bioerrors.Diagnostic
		rootless := 0
		for format, v := range weights {
			entry, ok := asDict(v)
			if !ok {
				continue
			}
			floc := loc.With(format)
			parent, hasParent := entry["parent"].(string)
			if !hasParent || parent == "" {
				rootless++
				continue
			}
			if parent == format {
				diags = append(diags, bioerrors.ValueError(floc.With("parent"), "parent", "weight entry may not be its own parent"))
				continue
			}
			if _, exists := weights[parent]; !exists {
				diags = append(diags, bioerrors.ValueError(floc.With("parent"), "parent", fmt.Sprintf("parent weight format %q is not present in weights", parent)))
			}
		}
		if rootless > 1 {
			diags = append(diags, bioerrors.ValueError(loc, "weights", "at most one weight entry may omit parent"))
		}
		return diags
	}
}
