package description

import (
	"testing"

	"github.com/bioimage-io/spec-go/pkg/upgrade"
	"github.com/bioimage-io/spec-go/pkg/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimalModelDoc() upgrade.Dict {
	return upgrade.Dict{
		"name":           "My Model",
		"description":    "a test model",
		"type":           "model",
		"format_version": "0.5.0",
		"authors":        []any{upgrade.Dict{"name": "Jane Doe"}},
		"inputs": []any{
			upgrade.Dict{"id": "raw", "axes": []any{
				upgrade.Dict{"id": "batch", "type": "batch"},
				upgrade.Dict{"id": "x", "type": "space", "unit": "µm", "scale": 1.0, "size": 64},
			}},
		},
		"outputs": []any{
			upgrade.Dict{"id": "pred", "axes": []any{
				upgrade.Dict{"id": "batch", "type": "batch"},
				upgrade.Dict{"id": "x", "type": "space", "unit": "µm", "scale": 1.0, "size": upgrade.Dict{
					"reference": upgrade.Dict{"tensor_id": "raw", "axis_id": "x"},
				}},
			}},
		},
		"weights": upgrade.Dict{
			"pytorch_state_dict": upgrade.Dict{"source": "weights.pt"},
		},
	}
}

func modelCtx() *validate.Context {
	return validate.NewContext("/tmp", "rdf.yaml").With(func(c *validate.Context) { c.PerformIOChecks = false })
}

func TestBuildDescription_ValidModelTensorsPasses(t *testing.T) {
	desc, invalid := BuildDescription(minimalModelDoc(), modelCtx(), "discover")
	require.Nil(t, invalid)
	assert.Equal(t, validate.StatusPassed, desc.Status())
}

func TestBuildDescription_DanglingSizeReferenceFails(t *testing.T) {
	doc := minimalModelDoc()
	outputs := doc["outputs"].([]any)
	axes := outputs[0].(upgrade.Dict)["axes"].([]any)
	axes[1].(upgrade.Dict)["size"] = upgrade.Dict{
		"reference": upgrade.Dict{"tensor_id": "raw", "axis_id": "does_not_exist"},
	}
	_, invalid := BuildDescription(doc, modelCtx(), "discover")
	require.NotNil(t, invalid, "a size reference to a nonexistent axis must be rejected")
}

func TestBuildDescription_DuplicateAxisIDFails(t *testing.T) {
	doc := minimalModelDoc()
	inputs := doc["inputs"].([]any)
	axes := inputs[0].(upgrade.Dict)["axes"].([]any)
	axes = append(axes, upgrade.Dict{"id": "x", "type": "space", "unit": "µm", "scale": 1.0, "size": 32})
	inputs[0].(upgrade.Dict)["axes"] = axes
	_, invalid := BuildDescription(doc, modelCtx(), "discover")
	require.NotNil(t, invalid, "duplicate axis ids within a tensor must be rejected")
}
