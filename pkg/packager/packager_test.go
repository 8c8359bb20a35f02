package packager

import (
	"testing"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
	"github.com/bioimage-io/spec-go/pkg/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func src(t *testing.T, raw string) rdf.FileSource {
	t.Helper()
	fs, err := rdf.ParseFileSource(nil, raw)
	require.NoError(t, err)
	return fs
}

func TestResolveLocalNames_NoCollision(t *testing.T) {
	files := []FileDescr{
		{Loc: bioerrors.Loc{"weights", "pytorch_state_dict", "source"}, Source: src(t, "weights.pt")},
		{Loc: bioerrors.Loc{"covers", 0}, Source: src(t, "cover.png")},
	}
	entries, err := ResolveLocalNames(files)
	require.NoError(t, err)
	assert.Equal(t, "weights.pt", entries[0].LocalName)
	assert.Equal(t, "cover.png", entries[1].LocalName)
}

func TestResolveLocalNames_CollisionGetsSuffix(t *testing.T) {
	files := []FileDescr{
		{Loc: bioerrors.Loc{"inputs", 0, "test_tensor", "source"}, Source: src(t, "a/weights.pt")},
		{Loc: bioerrors.Loc{"inputs", 1, "test_tensor", "source"}, Source: src(t, "b/weights.pt")},
	}
	entries, err := ResolveLocalNames(files)
	require.NoError(t, err)
	assert.Equal(t, "weights.pt", entries[0].LocalName)
	assert.Equal(t, "weights_2.pt", entries[1].LocalName)
}

func TestResolveLocalNames_SameSourceReused(t *testing.T) {
	files := []FileDescr{
		{Loc: bioerrors.Loc{"a"}, Source: src(t, "shared/data.npy")},
		{Loc: bioerrors.Loc{"b"}, Source: src(t, "shared/data.npy")},
	}
	entries, err := ResolveLocalNames(files)
	require.NoError(t, err)
	assert.Equal(t, entries[0].LocalName, entries[1].LocalName)
}

func TestResolveLocalNames_ExhaustedSuffixes(t *testing.T) {
	files := []FileDescr{}
	for i := 0; i < maxSuffix+1; i++ {
		files = append(files, FileDescr{Loc: bioerrors.Loc{"f", i}, Source: src(t, "dirs/"+itoa(i)+"/weights.pt")})
	}
	_, err := ResolveLocalNames(files)
	require.Error(t, err)
}

func TestCheckReservedNames(t *testing.T) {
	entries := []PackageEntry{{LocalName: "model.bioimageio.yaml", Loc: bioerrors.Loc{"weights", "source"}}}
	diags := CheckReservedNames("model.bioimageio.yaml", entries)
	require.NotEmpty(t, diags)
}

func TestFilterWeights_KeepsFirstPresent(t *testing.T) {
	weights := map[string]any{
		"onnx":               map[string]any{"source": "model.onnx"},
		"pytorch_state_dict": map[string]any{"source": "model.pt"},
	}
	filtered, err := FilterWeights(weights, []string{"torchscript", "pytorch_state_dict", "onnx"})
	require.NoError(t, err)
	assert.Len(t, filtered, 1)
	_, ok := filtered["pytorch_state_dict"]
	assert.True(t, ok)
}

func TestFilterWeights_NoneRequestedPresent(t *testing.T) {
	weights := map[string]any{"onnx": map[string]any{"source": "model.onnx"}}
	_, err := FilterWeights(weights, []string{"torchscript"})
	require.Error(t, err)
}
