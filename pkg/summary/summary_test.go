package summary

import (
	"testing"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
	"github.com/bioimage-io/spec-go/pkg/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetailFromResult_Passed(t *testing.T) {
	res := &validate.Result{Status: validate.StatusPassed}
	d := DetailFromResult("discover", "", res)
	assert.Equal(t, validate.StatusPassed, d.Status)
	assert.Empty(t, d.Errors)
}

func TestDetailFromResult_WithDiagnostics(t *testing.T) {
	res := &validate.Result{
		Status: validate.StatusFailed,
		Errors: []*bioerrors.Diagnostic{bioerrors.Missing(bioerrors.Loc{"name"})},
	}
	d := DetailFromResult("main", "", res)
	require.Len(t, d.Errors, 1)
	assert.Equal(t, "name", d.Errors[0].Loc)
	assert.Equal(t, "missing", d.Errors[0].Type)
}

func TestMerge_FailedWins(t *testing.T) {
	s := &ValidationSummary{Details: []Detail{
		{Status: validate.StatusValidFormat},
		{Status: validate.StatusFailed},
		{Status: validate.StatusPassed},
	}}
	s.Merge()
	assert.Equal(t, validate.StatusFailed, s.Status)
}

func TestMerge_ValidFormatWhenOnlyWarnings(t *testing.T) {
	s := &ValidationSummary{Details: []Detail{
		{Status: validate.StatusPassed},
		{Status: validate.StatusValidFormat},
	}}
	s.Merge()
	assert.Equal(t, validate.StatusValidFormat, s.Status)
}

func TestJSON_IncludesName(t *testing.T) {
	s := &ValidationSummary{Name: "my-model", SourceName: "rdf.yaml", Type: "model", FormatVersion: "0.5.0", Status: validate.StatusPassed}
	b, err := s.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(b), `"name": "my-model"`)
}
