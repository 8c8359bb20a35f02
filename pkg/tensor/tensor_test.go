package tensor

import (
	"testing"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchTensor(id string, extra ...Axis) Tensor {
	axes := append([]Axis{{ID: "batch", Type: AxisBatch, Concatenable: true}}, extra...)
	return Tensor{ID: id, Axes: axes}
}

func TestBatchSizeInference_Consistent(t *testing.T) {
	m := Model{
		Inputs: []Tensor{
			batchTensor("raw", Axis{ID: "c", Type: AxisChannel, ChannelNames: []string{"r", "g", "b"}}),
			batchTensor("mask", Axis{ID: "c", Type: AxisChannel, ChannelNames: []string{"m"}}),
		},
	}
	shapes := InputShapes{
		"raw":  {"batch": 4, "c": 3},
		"mask": {"batch": 4, "c": 1},
	}
	results, err := GetOutputTensorSizes(m, shapes)
	require.NoError(t, err)
	assert.Equal(t, 4, results["raw"]["batch"].Value)
	assert.Equal(t, 4, results["mask"]["batch"].Value)
}

func TestBatchSizeInference_Mismatch(t *testing.T) {
	m := Model{
		Inputs: []Tensor{
			batchTensor("raw"),
			batchTensor("mask"),
		},
	}
	shapes := InputShapes{
		"raw":  {"batch": 4},
		"mask": {"batch": 2},
	}
	_, err := GetOutputTensorSizes(m, shapes)
	require.Error(t, err)
}

func TestParameterizedSizeReference_OutputOffset(t *testing.T) {
	m := Model{
		Inputs: []Tensor{
			batchTensor("x", Axis{
				ID:    "w",
				Type:  AxisSpace,
				Scale: 1.0,
				Size:  Size{Kind: SizeParameterized, Min: 16, Step: 8},
			}),
		},
		Outputs: []Tensor{
			batchTensor("y", Axis{
				ID:    "w",
				Type:  AxisSpace,
				Scale: 1.0,
				Size: Size{
					Kind: SizeReferenceKind,
					Ref:  SizeReference{TensorID: "x", AxisID: "w", Offset: -2},
				},
			}),
		},
	}
	shapes := InputShapes{"x": {"batch": 1, "w": 32}}
	results, err := GetOutputTensorSizes(m, shapes)
	require.NoError(t, err)
	assert.Equal(t, 32, results["x"]["w"].Value)
	assert.Equal(t, 30, results["y"]["w"].Value)
}

func TestValidateHalo(t *testing.T) {
	loc := bioerrors.Loc{"outputs", 0, "axes", 1}

	diags := ValidateHalo(loc, 3, 4, 1.0, 1.0)
	assert.NotEmpty(t, diags, "halo 3 against resolved min size 4 must fail: 4-2*3 = -2 < 1")

	diags = ValidateHalo(loc, 3, 10, 1.0, 2.0)
	assert.Empty(t, diags, "halo 3 against resolved min size 10 must pass: 10-2*3 = 4 >= 1, and the implied input halo 3*2.0/1.0 = 6 is even")
}

func TestValidateAxes_DuplicateID(t *testing.T) {
	m := Model{Inputs: []Tensor{
		{ID: "x", Axes: []Axis{
			{ID: "batch", Type: AxisBatch},
			{ID: "w", Type: AxisSpace, Size: Size{Kind: SizeFixed, Fixed: 32}},
			{ID: "w", Type: AxisSpace, Size: Size{Kind: SizeFixed, Fixed: 32}},
		}},
	}}
	diags := ValidateAxes(m, bioerrors.Loc{"inputs"})
	require.NotEmpty(t, diags)
}

func TestValidateAxes_MultipleBatch(t *testing.T) {
	m := Model{Inputs: []Tensor{
		{ID: "x", Axes: []Axis{
			{ID: "batch", Type: AxisBatch},
			{ID: "batch2", Type: AxisBatch},
		}},
	}}
	diags := ValidateAxes(m, bioerrors.Loc{"inputs"})
	require.NotEmpty(t, diags)
}

func TestValidateAxes_SizeReferenceSelf(t *testing.T) {
	m := Model{Inputs: []Tensor{
		{ID: "x", Axes: []Axis{
			{ID: "w", Type: AxisSpace, Size: Size{
				Kind: SizeReferenceKind,
				Ref:  SizeReference{TensorID: "x", AxisID: "w"},
			}},
		}},
	}}
	diags := ValidateAxes(m, bioerrors.Loc{"inputs"})
	require.NotEmpty(t, diags)
}

func TestValidateAxes_ChannelReferenceMustTargetChannel(t *testing.T) {
	m := Model{Inputs: []Tensor{
		{ID: "x", Axes: []Axis{
			{ID: "w", Type: AxisSpace, Size: Size{Kind: SizeFixed, Fixed: 8}},
		}},
		{ID: "y", Axes: []Axis{
			{ID: "c", Type: AxisChannel, Size: Size{
				Kind: SizeReferenceKind,
				Ref:  SizeReference{TensorID: "x", AxisID: "w"},
			}},
		}},
	}}
	diags := ValidateAxes(m, bioerrors.Loc{"tensors"})
	require.NotEmpty(t, diags)
}

func TestNormalizeChain_InsertsEnsureDtype(t *testing.T) {
	pre := NormalizeChain(StagePre, []ProcessingStep{{Kind: ProcScaleLinear}})
	require.Len(t, pre, 2)
	assert.Equal(t, ProcEnsureDtype, pre[0].Kind)

	post := NormalizeChain(StagePost, []ProcessingStep{{Kind: ProcSigmoid}})
	require.Len(t, post, 2)
	assert.Equal(t, ProcEnsureDtype, post[1].Kind)

	postBinarize := NormalizeChain(StagePost, []ProcessingStep{{Kind: ProcBinarize}})
	require.Len(t, postBinarize, 1, "a trailing binarize already fixes the dtype, no extra ensure_dtype needed")
}

func TestValidateProcessingChain_AxesSubset(t *testing.T) {
	tns := Tensor{ID: "x", Axes: []Axis{{ID: "batch", Type: AxisBatch}, {ID: "c", Type: AxisChannel}}}
	m := Model{Inputs: []Tensor{tns}}
	steps := []ProcessingStep{{Kind: ProcZeroMeanUnitVariance, Axes: []string{"c", "nonexistent"}}}
	diags := ValidateProcessingChain(m, tns, StagePre, steps, bioerrors.Loc{"inputs", 0, "preprocessing"}, 0, 0, false)
	require.NotEmpty(t, diags)
}

func TestValidateProcessingChain_ScaleRangeReferenceScoping(t *testing.T) {
	x := Tensor{ID: "x", Axes: []Axis{{ID: "batch", Type: AxisBatch}}}
	y := Tensor{ID: "y", Axes: []Axis{{ID: "batch", Type: AxisBatch}}}
	m := Model{Inputs: []Tensor{x}, Outputs: []Tensor{y}}

	preSteps := []ProcessingStep{{Kind: ProcScaleRange, ReferenceTensor: "y"}}
	diags := ValidateProcessingChain(m, x, StagePre, preSteps, bioerrors.Loc{"inputs", 0, "preprocessing"}, 0, 0, false)
	require.NotEmpty(t, diags, "preprocessing scale_range may not reference an output tensor")

	postSteps := []ProcessingStep{{Kind: ProcScaleRange, ReferenceTensor: "x"}}
	diags = ValidateProcessingChain(m, y, StagePost, postSteps, bioerrors.Loc{"outputs", 0, "postprocessing"}, 0, 0, false)
	require.Empty(t, diags, "postprocessing scale_range may reference an input tensor")
}

func TestValidateProcessingChain_ReproducibilityTolerance(t *testing.T) {
	tns := Tensor{ID: "y", Axes: []Axis{{ID: "batch", Type: AxisBatch}}}
	m := Model{Outputs: []Tensor{tns}}

	diags := ValidateProcessingChain(m, tns, StagePost, nil, bioerrors.Loc{"outputs", 0}, 100.0, 5.0, true)
	require.NotEmpty(t, diags, "absolute_tolerance 5 exceeds 1% of max test value 100 (= 1.0)")

	diags = ValidateProcessingChain(m, tns, StagePost, nil, bioerrors.Loc{"outputs", 0}, 100.0, 0.5, true)
	require.Empty(t, diags)
}
