package tensor

import (
	"fmt"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
)

// DataDependentResult mirrors DataDependentSize{min, max?} as an output
// shape component that is only known at inference time (spec.md §3.2,
// §4.5.2 step 4: "outputs: TensorId -> AxisId -> (int | DataDependentSize)").
type DataDependentResult struct {
	Min    int
	Max    int
	HasMax bool
}

// AxisResult is one resolved output axis: either a concrete size or a
// DataDependentResult.
type AxisResult struct {
	IsDataDependent bool
	Value           int
	DataDependent   DataDependentResult
}

// InputShapes maps tensor id -> axis id -> concrete size, the caller-
// supplied shape of every input tensor (spec.md §4.5.2).
type InputShapes map[string]map[string]int

// GetOutputTensorSizes computes concrete output shapes from concrete input
// shapes, following the four steps of spec.md §4.5.2:
//  1. infer the batch size from all input batch axes (mismatches fail),
//  2. infer the scale factor n per parameterized input axis,
//  3. resolve non-reference axes, then input SizeReferences, then output
//     axes in declared order,
//  4. return a map of concrete sizes (or DataDependentResult for outputs).
func GetOutputTensorSizes(m Model, shapes InputShapes) (map[string]map[string]AxisResult, error) {
	batchSize, err := inferBatchSize(m, shapes)
	if err != nil {
		return nil, err
	}

	resolved := map[string]map[string]int{}
	results := map[string]map[string]AxisResult{}
	for _, t := range m.AllTensors() {
		resolved[t.ID] = map[string]int{}
		results[t.ID] = map[string]AxisResult{}
	}

	// Pass 1: non-reference axes (batch, channel, fixed, parameterized,
	// data-dependent) for inputs then outputs.
	for _, t := range m.Inputs {
		if err := resolveNonReference(t, shapes[t.ID], batchSize, resolved[t.ID], results[t.ID]); err != nil {
			return nil, err
		}
	}
	for _, t := range m.Outputs {
		if err := resolveNonReference(t, shapes[t.ID], batchSize, resolved[t.ID], results[t.ID]); err != nil {
			return nil, err
		}
	}

	// Pass 2: SizeReference axes on inputs.
	for _, t := range m.Inputs {
		if err := resolveReferences(m, t, resolved, results); err != nil {
			return nil, err
		}
	}

	// Pass 3: output axes in declared order (may reference inputs or
	// already-resolved outputs).
	for _, t := range m.Outputs {
		if err := resolveReferences(m, t, resolved, results); err != nil {
			return nil, err
		}
	}

	return results, nil
}

func inferBatchSize(m Model, shapes InputShapes) (int, error) {
	batchSize := -1
	for _, t := range m.Inputs {
		for _, a := range t.Axes {
			if a.Type != AxisBatch {
				continue
			}
			v, ok := shapes[t.ID][a.ID]
			if !ok || v == 1 {
				continue
			}
			if batchSize == -1 {
				batchSize = v
			} else if batchSize != v {
				return 0, bioerrors.ValueError(bioerrors.Loc{t.ID, a.ID}, "batch_size", fmt.Sprintf("inconsistent batch size: %d vs %d", batchSize, v))
			}
		}
	}
	if batchSize == -1 {
		batchSize = 1
	}
	return batchSize, nil
}

func resolveNonReference(t Tensor, shape map[string]int, batchSize int, resolved map[string]int, results map[string]AxisResult) error {
	for _, a := range t.Axes {
		switch {
		case a.Type == AxisBatch:
			resolved[a.ID] = batchSize
			results[a.ID] = AxisResult{Value: batchSize}
		case a.Type == AxisChannel && a.Size.Kind != SizeReferenceKind:
			n := len(a.ChannelNames)
			resolved[a.ID] = n
			results[a.ID] = AxisResult{Value: n}
		case a.Size.Kind == SizeFixed:
			resolved[a.ID] = a.Size.Fixed
			results[a.ID] = AxisResult{Value: a.Size.Fixed}
		case a.Size.Kind == SizeParameterized:
			v, ok := shape[a.ID]
			if !ok {
				// No concrete input given (typical for an output-side
				// parameterized axis, which spec.md says is a hard error
				// when its n cannot be derived from a reference).
				return bioerrors.ValueError(bioerrors.Loc{t.ID, a.ID}, "size", "parameterized axis has no concrete size and is not resolvable by reference")
			}
			n := a.Size.GetN(v)
			resolved[a.ID] = a.Size.GetSize(n)
			results[a.ID] = AxisResult{Value: resolved[a.ID]}
		case a.Size.Kind == SizeDataDependent:
			results[a.ID] = AxisResult{
				IsDataDependent: true,
				DataDependent:   DataDependentResult{Min: a.Size.DDMin, Max: a.Size.DDMax, HasMax: a.Size.DDHasMax},
			}
		}
	}
	return nil
}

func resolveReferences(m Model, t Tensor, resolved map[string]map[string]int, results map[string]map[string]AxisResult) error {
	for _, a := range t.Axes {
		if a.Size.Kind != SizeReferenceKind {
			continue
		}
		ref := a.Size.Ref
		refTensor, ok := m.FindTensor(ref.TensorID)
		if !ok {
			return bioerrors.ValueError(bioerrors.Loc{t.ID, a.ID}, "size_reference", "referenced tensor not found: "+ref.TensorID)
		}
		refAxis, ok := refTensor.FindAxis(ref.AxisID)
		if !ok {
			return bioerrors.ValueError(bioerrors.Loc{t.ID, a.ID}, "size_reference", "referenced axis not found: "+ref.AxisID)
		}
		refSize, ok := resolved[ref.TensorID][ref.AxisID]
		if !ok {
			return bioerrors.ValueError(bioerrors.Loc{t.ID, a.ID}, "size_reference", "referenced axis not yet resolved: "+ref.AxisID)
		}
		size := int(float64(refSize)*refAxis.EffectiveScale()/a.EffectiveScale()) + ref.Offset
		resolved[t.ID][a.ID] = size
		results[t.ID][a.ID] = AxisResult{Value: size}
	}
	return nil
}
