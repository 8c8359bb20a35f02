package description

import (
	"testing"

	"github.com/bioimage-io/spec-go/pkg/upgrade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDescription_WeightsSelfReferentialParentFails(t *testing.T) {
	doc := minimalModelDoc()
	doc["weights"] = upgrade.Dict{
		"pytorch_state_dict": upgrade.Dict{"source": "weights.pt", "parent": "pytorch_state_dict"},
	}
	_, invalid := BuildDescription(doc, modelCtx(), "discover")
	require.NotNil(t, invalid, "a weight entry may not be its own parent")
}

func TestBuildDescription_WeightsParentMustExist(t *testing.T) {
	doc := minimalModelDoc()
	doc["weights"] = upgrade.Dict{
		"onnx": upgrade.Dict{"source": "weights.onnx", "parent": "pytorch_state_dict"},
	}
	_, invalid := BuildDescription(doc, modelCtx(), "discover")
	require.NotNil(t, invalid, "parent must reference a weight format present in the same record")
}

func TestBuildDescription_WeightsMultipleRootlessEntriesFails(t *testing.T) {
	doc := minimalModelDoc()
	doc["weights"] = upgrade.Dict{
		"pytorch_state_dict": upgrade.Dict{"source": "weights.pt"},
		"onnx":               upgrade.Dict{"source": "weights.onnx"},
	}
	_, invalid := BuildDescription(doc, modelCtx(), "discover")
	require.NotNil(t, invalid, "at most one weight entry may omit parent")
}

func TestBuildDescription_WeightsEmptyFails(t *testing.T) {
	doc := minimalModelDoc()
	doc["weights"] = upgrade.Dict{}
	_, invalid := BuildDescription(doc, modelCtx(), "discover")
	require.NotNil(t, invalid, "weights must declare at least one format")
}

func TestBuildDescription_WeightsValidChainPasses(t *testing.T) {
	doc := minimalModelDoc()
	doc["weights"] = upgrade.Dict{
		"pytorch_state_dict": upgrade.Dict{"source": "weights.pt"},
		"onnx":               upgrade.Dict{"source": "weights.onnx", "parent": "pytorch_state_dict"},
	}
	desc, invalid := BuildDescription(doc, modelCtx(), "discover")
	require.Nil(t, invalid)
	assert.NotNil(t, desc)
}
