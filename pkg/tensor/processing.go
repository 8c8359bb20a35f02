package tensor

import (
	"fmt"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
)

// ProcessingKind names one processing step from spec.md §4.5.3.
type ProcessingKind string

const (
	ProcBinarize                  ProcessingKind = "binarize"
	ProcClip                      ProcessingKind = "clip"
	ProcEnsureDtype               ProcessingKind = "ensure_dtype"
	ProcFixedZeroMeanUnitVariance ProcessingKind = "fixed_zero_mean_unit_variance"
	ProcScaleLinear               ProcessingKind = "scale_linear"
	ProcScaleMeanVariance         ProcessingKind = "scale_mean_variance" // postprocessing only
	ProcScaleRange                ProcessingKind = "scale_range"
	ProcSigmoid                   ProcessingKind = "sigmoid"
	ProcSoftmax                   ProcessingKind = "softmax"
	ProcZeroMeanUnitVariance      ProcessingKind = "zero_mean_unit_variance"
)

// ProcessingStep is one entry in a tensor's pre/postprocessing chain
// (spec.md §4.5.3). Axes and ReferenceTensor are the only kwargs whose
// shape correctness is cross-checked against the model (invariants 5-6);
// the remaining per-kind numeric kwargs are opaque to this package.
type ProcessingStep struct {
	Kind            ProcessingKind
	Axes            []string // kwarg subset of the tensor's own axis ids
	ReferenceTensor string   // ScaleRange.reference_tensor, "" if unset
}

// Stage discriminates pre- vs postprocessing, since invariant 6 scopes
// ScaleRange.reference_tensor differently for each (spec.md §3.3).
type Stage string

const (
	StagePre  Stage = "preprocessing"
	StagePost Stage = "postprocessing"
)

// NormalizeChain auto-inserts the implicit ensure_dtype steps spec.md
// §4.5.3 describes: one before the user-declared preprocessing chain, and
// one (or a trailing binarize, if already last) after the postprocessing
// chain, so every tensor enters and leaves processing at a known dtype.
func NormalizeChain(stage Stage, steps []ProcessingStep) []ProcessingStep {
	out := make([]ProcessingStep, 0, len(steps)+2)
	if stage == StagePre {
		out = append(out, ProcessingStep{Kind: ProcEnsureDtype})
		out = append(out, steps...)
		return out
	}
	out = append(out, steps...)
	if len(out) == 0 || out[len(out)-1].Kind != ProcBinarize {
		out = append(out, ProcessingStep{Kind: ProcEnsureDtype})
	}
	return out
}

// ValidateProcessingChain checks invariants 5-7 of spec.md §3.3 for one
// tensor's pre/postprocessing chain.
func ValidateProcessingChain(m Model, t Tensor, stage Stage, steps []ProcessingStep, loc bioerrors.Loc, maxTestValue, reproducibilityAbsTol float64, hasReproducibilityTol bool) []*bioerrors.Diagnostic {
	var diags []*bioerrors.Diagnostic

	axisIDs := map[string]bool{}
	for _, a := range t.Axes {
		axisIDs[a.ID] = true
	}

	for i, step := range steps {
		sloc := loc.With(i)

		if stage == StagePost && step.Kind == ProcScaleMeanVariance {
			// postprocessing-only step, nothing further to check here.
		}

		for _, axID := range step.Axes {
			if !axisIDs[axID] {
				diags = append(diags, bioerrors.ValueError(sloc.With("axes"), "axes", fmt.Sprintf("axis %q is not an axis of tensor %q", axID, t.ID)))
			}
		}

		if step.Kind == ProcScaleRange && step.ReferenceTensor != "" {
			_, isInput := findInModel(m.Inputs, step.ReferenceTensor)
			_, isOutput := findInModel(m.Outputs, step.ReferenceTensor)
			switch stage {
			case StagePre:
				if !isInput {
					diags = append(diags, bioerrors.ValueError(sloc.With("reference_tensor"), "reference_tensor", "preprocessing scale_range may only reference an input tensor"))
				}
			case StagePost:
				if !isInput && !isOutput {
					diags = append(diags, bioerrors.ValueError(sloc.With("reference_tensor"), "reference_tensor", "postprocessing scale_range must reference an input or output tensor"))
				}
			}
		}
	}

	if hasReproducibilityTol {
		limit := 0.01 * maxTestValue
		if reproducibilityAbsTol > limit {
			diags = append(diags, bioerrors.ValueError(loc.With("reproducibility_tolerance", "absolute_tolerance"), "reproducibility_tolerance", fmt.Sprintf("absolute_tolerance %g exceeds 1%% of max test value (%g)", reproducibilityAbsTol, limit)))
		}
	}

	return diags
}

// ReproTolerance is one entry of config.bioimageio.reproducibility_tolerance
// (spec.md §3.2): only the first entry matching a given output tensor id is
// considered.
type ReproTolerance struct {
	AbsoluteTolerance    float64
	HasAbsoluteTolerance bool
	OutputIDs            []string // empty means "applies to every output"
}

// ForOutput returns the first tolerance entry that applies to outputID, or
// false if none does.
func ForOutput(tolerances []ReproTolerance, outputID string) (ReproTolerance, bool) {
	for _, t := range tolerances {
		if len(t.OutputIDs) == 0 {
			return t, true
		}
		for _, id := range t.OutputIDs {
			if id == outputID {
				return t, true
			}
		}
	}
	return ReproTolerance{}, false
}

func findInModel(tensors []Tensor, id string) (Tensor, bool) {
	for _, t := range tensors {
		if t.ID == id {
			return t, true
		}
	}
	return Tensor{}, false
}
