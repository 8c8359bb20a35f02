// Package tensor implements the model 0.5 tensor/axis algebra (C5) of
// spec.md §4.5 — the algorithmic heart of the engine: axis-size validation,
// output-shape computation from concrete input shapes, and the
// pre/postprocessing chain shape.
package tensor

import (
	"fmt"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
)

// AxisType discriminates the axis tagged union of spec.md §3.2.
type AxisType string

const (
	AxisBatch   AxisType = "batch"
	AxisChannel AxisType = "channel"
	AxisIndex   AxisType = "index"
	AxisTime    AxisType = "time"
	AxisSpace   AxisType = "space"
)

// SizeKind discriminates the axis size tagged union of spec.md §3.2.
type SizeKind string

const (
	SizeFixed         SizeKind = "fixed"
	SizeParameterized SizeKind = "parameterized"
	SizeDataDependent SizeKind = "data_dependent"
	SizeReferenceKind SizeKind = "reference"
)

// SizeReference defines a size in terms of another axis (spec.md §3.2):
// get_size = ref.size * ref_axis.scale / axis.scale + offset.
type SizeReference struct {
	TensorID string
	AxisID   string
	Offset   int
}

// Size is the tagged union `int | ParameterizedSize | DataDependentSize |
// SizeReference`, optionally wrapped by WithHalo (spec.md §3.2).
type Size struct {
	Kind SizeKind

	Fixed int // SizeFixed

	Min  int // SizeParameterized
	Step int // SizeParameterized

	DDMin    int  // SizeDataDependent
	DDMax    int  // SizeDataDependent, valid iff DDHasMax
	DDHasMax bool

	Ref SizeReference // SizeReferenceKind

	HasHalo bool // WithHalo wrapper, only meaningful when Kind == SizeReferenceKind
	Halo    int
}

// GetN returns the smallest n >= 0 such that GetSize(n) >= s, for a
// parameterized size (spec.md §4.5.1).
func (s Size) GetN(target int) int {
	if s.Step <= 0 {
		return 0
	}
	if target <= s.Min {
		return 0
	}
	n := (target - s.Min) / s.Step
	if s.Min+n*s.Step < target {
		n++
	}
	return n
}

// GetSize returns min + n*step for a parameterized size (spec.md §4.5.1).
func (s Size) GetSize(n int) int {
	return s.Min + n*s.Step
}

// Axis is one dimension of a tensor (spec.md §3.2).
type Axis struct {
	ID           string
	Type         AxisType
	Unit         string // "" for axes without a unit (batch, index, channel)
	Scale        float64
	ChannelNames []string // AxisChannel only; Size is implied by len()
	Concatenable bool     // AxisBatch only
	Size         Size     // unused for AxisBatch/AxisChannel
}

// EffectiveScale returns the axis's scale for SizeReference arithmetic:
// batch axes always have scale 1 (spec.md §3.2).
func (a Axis) EffectiveScale() float64 {
	if a.Type == AxisBatch {
		return 1
	}
	return a.Scale
}

// Tensor is an input or output tensor (spec.md §3.2).
type Tensor struct {
	ID   string
	Axes []Axis

	DataType       string           // tensor.data.type, "" if undecodable
	Preprocessing  []ProcessingStep // inputs only
	Postprocessing []ProcessingStep // outputs only
	TestTensor     string           // resolved test_tensor file-source value, "" if unset
}

// FindAxis returns the axis with the given id, or false.
func (t Tensor) FindAxis(id string) (Axis, bool) {
	for _, a := range t.Axes {
		if a.ID == id {
			return a, true
		}
	}
	return Axis{}, false
}

// Model is the set of input and output tensors of one model description,
// the unit of validation for the cross-tensor invariants of spec.md §3.3.
type Model struct {
	Inputs  []Tensor
	Outputs []Tensor

	ReproTolerances []ReproTolerance
}

// AllTensors returns inputs followed by outputs.
func (m Model) AllTensors() []Tensor {
	out := make([]Tensor, 0, len(m.Inputs)+len(m.Outputs))
	out = append(out, m.Inputs...)
	out = append(out, m.Outputs...)
	return out
}

// FindTensor looks up a tensor by id across both inputs and outputs.
func (m Model) FindTensor(id string) (Tensor, bool) {
	for _, t := range m.AllTensors() {
		if t.ID == id {
			return t, true
		}
	}
	return Tensor{}, false
}

// ValidateAxes checks invariants 1-4 of spec.md §3.3 for every tensor/axis
// in the model, returning every violation found (non-short-circuiting,
// spec.md §4.4 "Propagation policy").
func ValidateAxes(m Model, loc bioerrors.Loc) []*bioerrors.Diagnostic {
	var diags []*bioerrors.Diagnostic

	for _, t := range m.AllTensors() {
		tloc := loc.With(t.ID)
		seen := map[string]bool{}
		batchCount := 0
		for i, a := range t.Axes {
			aloc := tloc.With("axes", i)
			if seen[a.ID] {
				diags = append(diags, bioerrors.ValueError(aloc, "axis_id", fmt.Sprintf("duplicate axis id %q in tensor %q", a.ID, t.ID)))
			}
			seen[a.ID] = true
			if a.Type == AxisBatch {
				batchCount++
			}

			if a.Type != AxisBatch && a.Type != AxisChannel && a.Size.Kind == SizeReferenceKind {
				diags = append(diags, validateSizeReference(m, t, a, aloc)...)
			}
			if a.Type == AxisChannel && a.Size.Kind == SizeReferenceKind {
				diags = append(diags, validateChannelReference(m, a, aloc)...)
			}
		}
		if batchCount > 1 {
			diags = append(diags, bioerrors.ValueError(tloc, "axes", fmt.Sprintf("tensor %q has more than one batch axis", t.ID)))
		}
	}
	return diags
}

// validateSizeReference enforces invariant 2 of spec.md §3.3.
func validateSizeReference(m Model, t Tensor, a Axis, loc bioerrors.Loc) []*bioerrors.Diagnostic {
	ref := a.Size.Ref
	if ref.TensorID == t.ID && ref.AxisID == a.ID {
		return []*bioerrors.Diagnostic{bioerrors.ValueError(loc, "size_reference", "axis may not reference itself")}
	}
	refTensor, ok := m.FindTensor(ref.TensorID)
	if !ok {
		return []*bioerrors.Diagnostic{bioerrors.ValueError(loc, "size_reference", fmt.Sprintf("referenced tensor %q not found", ref.TensorID))}
	}
	refAxis, ok := refTensor.FindAxis(ref.AxisID)
	if !ok {
		return []*bioerrors.Diagnostic{bioerrors.ValueError(loc, "size_reference", fmt.Sprintf("referenced axis %q not found on tensor %q", ref.AxisID, ref.TensorID))}
	}
	if refAxis.Type == AxisBatch {
		return []*bioerrors.Diagnostic{bioerrors.ValueError(loc, "size_reference", "size reference may not target a batch axis")}
	}
	switch refAxis.Size.Kind {
	case SizeFixed, SizeParameterized:
		// allowed
	default:
		return []*bioerrors.Diagnostic{bioerrors.ValueError(loc, "size_reference", "size reference must target a fixed or parameterized axis, not another reference or data-dependent size")}
	}
	if refAxis.Unit != a.Unit {
		return []*bioerrors.Diagnostic{bioerrors.ValueError(loc, "size_reference", fmt.Sprintf("referencing axis unit %q does not match referenced axis unit %q", a.Unit, refAxis.Unit))}
	}
	if a.Size.HasHalo {
		var minSize int
		switch refAxis.Size.Kind {
		case SizeFixed:
			minSize = refAxis.Size.Fixed
		case SizeParameterized:
			minSize = refAxis.Size.Min
		}
		return ValidateHalo(loc, a.Size.Halo, minSize, refAxis.EffectiveScale(), a.EffectiveScale())
	}
	return nil
}

// validateChannelReference enforces invariant 3 of spec.md §3.3: a channel
// axis whose size is a SizeReference may only point at another channel
// axis.
func validateChannelReference(m Model, a Axis, loc bioerrors.Loc) []*bioerrors.Diagnostic {
	ref := a.Size.Ref
	refTensor, ok := m.FindTensor(ref.TensorID)
	if !ok {
		return []*bioerrors.Diagnostic{bioerrors.ValueError(loc, "size_reference", fmt.Sprintf("referenced tensor %q not found", ref.TensorID))}
	}
	refAxis, ok := refTensor.FindAxis(ref.AxisID)
	if !ok || refAxis.Type != AxisChannel {
		return []*bioerrors.Diagnostic{bioerrors.ValueError(loc, "size_reference", "a channel axis size reference may only target another channel axis")}
	}
	return nil
}

// ValidateHalo enforces invariant 4 of spec.md §3.3 for one WithHalo axis,
// given its resolved minimum size and the scale of the referenced input
// axis. resolvedMinSize is the minimum concrete size this axis can take;
// inputScale/outputScale are the corresponding axes' scale (spec.md §3.3).
func ValidateHalo(loc bioerrors.Loc, halo, resolvedMinSize int, inputScale, outputScale float64) []*bioerrors.Diagnostic {
	var diags []*bioerrors.Diagnostic
	if resolvedMinSize-2*halo < 1 {
		diags = append(diags, bioerrors.ValueError(loc, "halo", fmt.Sprintf("halo %d too large for minimum resolved size %d: %d - 2*%d < 1", halo, resolvedMinSize, resolvedMinSize, halo)))
	}
	if inputScale != 0 {
		implied := float64(halo) * outputScale / inputScale
		rounded := int(implied + 0.5)
		if implied != float64(rounded) || rounded%2 != 0 || rounded < 0 {
			diags = append(diags, bioerrors.ValueError(loc, "halo", "implied input halo must be a non-negative, even integer (no half-pixel halos)"))
		}
	}
	return diags
}
