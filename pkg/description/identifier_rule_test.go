package description

import (
	"testing"

	"github.com/bioimage-io/spec-go/pkg/upgrade"
	"github.com/stretchr/testify/require"
)

func TestBuildDescription_UpperCaseAxisIDFails(t *testing.T) {
	doc := minimalModelDoc()
	inputs := doc["inputs"].([]any)
	axes := inputs[0].(upgrade.Dict)["axes"].([]any)
	axes[1].(upgrade.Dict)["id"] = "X"
	_, invalid := BuildDescription(doc, modelCtx(), "discover")
	require.NotNil(t, invalid, "axis ids must be lower-case identifiers")
}

func TestBuildDescription_TooLongTensorIDFails(t *testing.T) {
	doc := minimalModelDoc()
	inputs := doc["inputs"].([]any)
	inputs[0].(upgrade.Dict)["id"] = "this_tensor_id_is_definitely_longer_than_32_chars"
	_, invalid := BuildDescription(doc, modelCtx(), "discover")
	require.NotNil(t, invalid, "tensor ids are bounded to 32 characters")
}

func TestBuildDescription_UnrecognizedSIUnitFails(t *testing.T) {
	doc := minimalModelDoc()
	inputs := doc["inputs"].([]any)
	axes := inputs[0].(upgrade.Dict)["axes"].([]any)
	axes[1].(upgrade.Dict)["unit"] = "banana"
	_, invalid := BuildDescription(doc, modelCtx(), "discover")
	require.NotNil(t, invalid, "space/time axis units must match the SI unit grammar")
}
