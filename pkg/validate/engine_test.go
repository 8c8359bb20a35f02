package validate

import (
	"testing"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Passed(t *testing.T) {
	ctx := NewContext("/tmp", "rdf.yaml")
	res := Run(ctx, nil)
	assert.Equal(t, StatusPassed, res.Status)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestRun_ValidFormat_WarningNotPromoted(t *testing.T) {
	ctx := NewContext("/tmp", "rdf.yaml") // default WarningLevel = SeverityError
	rules := []Rule{
		func(ctx *Context) []*bioerrors.Diagnostic {
			return []*bioerrors.Diagnostic{bioerrors.Warning(bioerrors.Loc{"name"}, bioerrors.SeverityWarning, "name is unusually long")}
		},
	}
	res := Run(ctx, rules)
	assert.Equal(t, StatusValidFormat, res.Status)
	assert.Empty(t, res.Errors)
	require.Len(t, res.Warnings, 1)
}

func TestRun_Failed_HardError(t *testing.T) {
	ctx := NewContext("/tmp", "rdf.yaml")
	rules := []Rule{
		func(ctx *Context) []*bioerrors.Diagnostic {
			return []*bioerrors.Diagnostic{bioerrors.Missing(bioerrors.Loc{"name"})}
		},
	}
	res := Run(ctx, rules)
	assert.Equal(t, StatusFailed, res.Status)
	require.Len(t, res.Errors, 1)
}

func TestRun_WarningPromotedAtLowerThreshold(t *testing.T) {
	ctx := NewContext("/tmp", "rdf.yaml").WithWarningLevel(bioerrors.SeverityWarning)
	rules := []Rule{
		func(ctx *Context) []*bioerrors.Diagnostic {
			return []*bioerrors.Diagnostic{bioerrors.Warning(bioerrors.Loc{"license"}, bioerrors.SeverityWarning, "deprecated license id")}
		},
	}
	res := Run(ctx, rules)
	assert.Equal(t, StatusFailed, res.Status, "a warning at or above the configured warning_level is promoted to an error")
	require.Len(t, res.Errors, 1)
	require.Len(t, res.Warnings, 1, "the warning still appears in the warnings list from the info-threshold pass")
}

func TestRun_PanicBecomesTraceback(t *testing.T) {
	ctx := NewContext("/tmp", "rdf.yaml")
	rules := []Rule{
		func(ctx *Context) []*bioerrors.Diagnostic {
			panic("boom")
		},
	}
	res := Run(ctx, rules)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, bioerrors.TypeTraceback, res.Errors[0].Type)
}

func TestAggregate(t *testing.T) {
	res := &Result{Errors: []*bioerrors.Diagnostic{
		bioerrors.Missing(bioerrors.Loc{"a"}),
		bioerrors.Missing(bioerrors.Loc{"b"}),
	}}
	err := Aggregate(res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 error")
}

func TestContext_WithIsolatesKnownFiles(t *testing.T) {
	ctx := NewContext("/tmp", "rdf.yaml")
	ctx.SetCachedHash("a.npy", "deadbeef")

	nested := ctx.WithWarningLevel(bioerrors.SeverityWarning)
	nested.SetCachedHash("b.npy", "cafebabe")

	_, ok := ctx.CachedHash("b.npy")
	assert.False(t, ok, "mutating a nested context must not leak back into the parent")
}
