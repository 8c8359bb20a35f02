package tensor

import (
	"fmt"
	"io"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
)

// DecodedArray is what an external array decoder returns for one
// test_tensor/sample_tensor file (spec.md §6.3). This package never parses
// the array container itself (npy/npz); it only consumes the decoder's
// output.
type DecodedArray struct {
	Dtype  string
	Shape  []int
	MaxAbs float64 // largest |value| found in the array
}

// ArrayDecoder decodes one test/sample tensor file's bytes into a
// DecodedArray. A caller wires in the actual codec (spec.md §6.3: "external
// decoder"); this package ships none.
type ArrayDecoder func(r io.Reader) (DecodedArray, error)

// floatUpcasts lists, for each declared dtype, the decoded dtypes tolerated
// as an upcast (spec.md §6.3: "dtype matches ... with float-upcast
// tolerated").
var floatUpcasts = map[string][]string{
	"float32": {"float32", "float64"},
	"float16": {"float16", "float32", "float64"},
}

func dtypeCompatible(declared, decoded string) bool {
	if declared == decoded {
		return true
	}
	for _, d := range floatUpcasts[declared] {
		if d == decoded {
			return true
		}
	}
	return false
}

// CheckTestTensors implements spec.md §6.3's four checks for every tensor
// in m that has a decoded array in arrays, resolving SizeReference axes
// against the referenced tensor's own decoded shape when both are present.
func CheckTestTensors(m Model, arrays map[string]DecodedArray, loc bioerrors.Loc) []*bioerrors.Diagnostic {
	var diags []*bioerrors.Diagnostic
	for _, t := range m.AllTensors() {
		arr, ok := arrays[t.ID]
		if !ok {
			continue
		}
		diags = append(diags, checkOneTestTensor(m, t, arr, arrays, loc.With(t.ID, "test_tensor"))...)
	}
	return diags
}

func checkOneTestTensor(m Model, t Tensor, arr DecodedArray, arrays map[string]DecodedArray, loc bioerrors.Loc) []*bioerrors.Diagnostic {
	var diags []*bioerrors.Diagnostic

	if t.DataType != "" && arr.Dtype != "" && !dtypeCompatible(t.DataType, arr.Dtype) {
		diags = append(diags, bioerrors.ValueError(loc, "test_tensor", fmt.Sprintf("test tensor dtype %q is not compatible with declared dtype %q", arr.Dtype, t.DataType)))
	}

	if len(arr.Shape) != len(t.Axes) {
		diags = append(diags, bioerrors.ValueError(loc, "test_tensor", fmt.Sprintf("test tensor has %d dimensions, tensor %q declares %d axes", len(arr.Shape), t.ID, len(t.Axes))))
		return diags
	}

	for i, a := range t.Axes {
		n := arr.Shape[i]
		aloc := loc.With("shape", i)
		switch a.Type {
		case AxisBatch:
			continue
		case AxisChannel:
			if len(a.ChannelNames) > 0 && n != len(a.ChannelNames) {
				diags = append(diags, bioerrors.ValueError(aloc, "shape", fmt.Sprintf("axis %q: test tensor size %d does not match channel_names length %d", a.ID, n, len(a.ChannelNames))))
			}
			continue
		}
		switch a.Size.Kind {
		case SizeFixed:
			if n != a.Size.Fixed {
				diags = append(diags, bioerrors.ValueError(aloc, "shape", fmt.Sprintf("axis %q: test tensor size %d does not match fixed size %d", a.ID, n, a.Size.Fixed)))
			}
		case SizeParameterized:
			if n < a.Size.Min || (n-a.Size.Min)%a.Size.Step != 0 {
				diags = append(diags, bioerrors.ValueError(aloc, "shape", fmt.Sprintf("axis %q: test tensor size %d is not min=%d + n*step=%d", a.ID, n, a.Size.Min, a.Size.Step)))
			}
		case SizeReferenceKind:
			diags = append(diags, checkReferenceSize(m, a, n, arrays, aloc)...)
		}
	}

	if arr.MaxAbs <= 1e-4 {
		diags = append(diags, bioerrors.ValueError(loc, "test_tensor", "test tensor values are entirely within (-1e-4, 1e-4)"))
	}

	return diags
}

func checkReferenceSize(m Model, a Axis, n int, arrays map[string]DecodedArray, loc bioerrors.Loc) []*bioerrors.Diagnostic {
	refArr, ok := arrays[a.Size.Ref.TensorID]
	if !ok {
		return nil
	}
	refTensor, ok := m.FindTensor(a.Size.Ref.TensorID)
	if !ok {
		return nil
	}
	refIdx := -1
	for i, ra := range refTensor.Axes {
		if ra.ID == a.Size.Ref.AxisID {
			refIdx = i
			break
		}
	}
	if refIdx < 0 || refIdx >= len(refArr.Shape) {
		return nil
	}
	refAxis := refTensor.Axes[refIdx]
	expected := int(float64(refArr.Shape[refIdx])*refAxis.EffectiveScale()/a.EffectiveScale()) + a.Size.Ref.Offset
	if a.Size.HasHalo {
		expected -= 2 * a.Size.Halo
	}
	if n != expected {
		return []*bioerrors.Diagnostic{bioerrors.ValueError(loc, "shape", fmt.Sprintf("axis %q: test tensor size %d does not match size reference's resolved size %d", a.ID, n, expected))}
	}
	return nil
}
