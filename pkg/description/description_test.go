package description

import (
	"testing"

	"github.com/bioimage-io/spec-go/pkg/upgrade"
	"github.com/bioimage-io/spec-go/pkg/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genericDoc() upgrade.Dict {
	return upgrade.Dict{
		"name":           "My Resource",
		"description":    "a test resource",
		"type":           "dataset",
		"format_version": "0.3.0",
		"authors":        []any{upgrade.Dict{"name": "Jane Doe"}},
	}
}

func TestBuildDescription_Passes(t *testing.T) {
	ctx := validate.NewContext("/tmp", "rdf.yaml")
	desc, invalid := BuildDescription(genericDoc(), ctx, "discover")
	require.Nil(t, invalid)
	require.NotNil(t, desc)
	assert.Equal(t, validate.StatusPassed, desc.Status())
}

func TestBuildDescription_MissingRequiredField(t *testing.T) {
	doc := genericDoc()
	delete(doc, "description")
	ctx := validate.NewContext("/tmp", "rdf.yaml")
	desc, invalid := BuildDescription(doc, ctx, "discover")
	assert.Nil(t, desc)
	require.NotNil(t, invalid)
	assert.Equal(t, validate.StatusFailed, invalid.Summary.Status)
}

func TestBuildDescription_UnknownFieldRejected(t *testing.T) {
	doc := genericDoc()
	doc["totally_unknown_field"] = 1
	ctx := validate.NewContext("/tmp", "rdf.yaml")
	_, invalid := BuildDescription(doc, ctx, "discover")
	require.NotNil(t, invalid)
}

func TestBuildDescription_ModelRequiresTensorFields(t *testing.T) {
	doc := genericDoc()
	doc["type"] = "model"
	doc["format_version"] = "0.5.0"
	ctx := validate.NewContext("/tmp", "rdf.yaml")
	_, invalid := BuildDescription(doc, ctx, "discover")
	require.NotNil(t, invalid, "model kind additionally requires inputs/outputs/weights")
}

func TestBuildDescription_UpgradesToLatest(t *testing.T) {
	doc := upgrade.Dict{
		"name":           "legacy",
		"description":    "old format",
		"type":           "dataset",
		"format_version": "0.2.0",
		"authors":        []any{"Jane Doe"},
	}
	ctx := validate.NewContext("/tmp", "rdf.yaml")
	desc, invalid := BuildDescription(doc, ctx, "latest")
	require.Nil(t, invalid)
	assert.Equal(t, "0.3.0", desc.Raw["format_version"])
}

func TestValidateFormat_ReturnsSummary(t *testing.T) {
	ctx := validate.NewContext("/tmp", "rdf.yaml")
	sum := ValidateFormat(genericDoc(), ctx, "discover")
	assert.Equal(t, validate.StatusPassed, sum.Status)
}
