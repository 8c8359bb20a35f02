package upgrade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpgradeGeneric02To03_AuthorStrings(t *testing.T) {
	d := Dict{
		"format_version": "0.2.0",
		"authors":        []any{"Jane Doe"},
		"cite":           []any{Dict{"text": "a paper", "doi": "https://doi.org/10.1/abc"}},
		"name":           "my/model",
	}
	out := UpgradeGeneric02To03(d)
	assert.Equal(t, "0.3.0", out["format_version"])

	authors, ok := out["authors"].([]any)
	require.True(t, ok)
	author, ok := authors[0].(Dict)
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", author["name"])

	cite := out["cite"].([]any)[0].(Dict)
	assert.Equal(t, "10.1/abc", cite["doi"])

	assert.Equal(t, "mymodel", out["name"])
}

func TestUpgradeGeneric02To03_AttachmentsFiles(t *testing.T) {
	d := Dict{
		"attachments": Dict{"files": []any{"a.txt", "b.txt"}},
	}
	out := UpgradeGeneric02To03(d)
	files, ok := out["attachments"].([]any)
	require.True(t, ok)
	require.Len(t, files, 2)
	assert.Equal(t, "a.txt", files[0].(Dict)["source"])
}

func TestUpgradeModel04To05_LegacyAxesAndShape(t *testing.T) {
	d := Dict{
		"format_version": "0.4.0",
		"inputs": []any{
			Dict{
				"axes":  "bcyx",
				"shape": []any{1, 3, 256, 256},
			},
		},
		"test_inputs": []any{"test-input.npy"},
	}
	out := UpgradeModel04To05(d)
	assert.Equal(t, "0.5.0", out["format_version"])

	in := out["inputs"].([]any)[0].(Dict)
	axes := in["axes"].([]any)
	require.Len(t, axes, 4)

	batch := axes[0].(Dict)
	assert.Equal(t, "batch", batch["type"])

	channel := axes[1].(Dict)
	assert.Equal(t, "channel", channel["type"])

	space := axes[2].(Dict)
	assert.Equal(t, "space", space["type"])
	assert.Equal(t, 256, space["size"])

	tt, ok := in["test_tensor"].(Dict)
	require.True(t, ok)
	assert.Equal(t, "test-input.npy", tt["source"])
}

func TestUpgradeArchitecture(t *testing.T) {
	fileForm := upgradeArchitecture("model.py:MyNet")
	assert.Equal(t, "model.py", fileForm.(Dict)["source_file"])
	assert.Equal(t, "MyNet", fileForm.(Dict)["callable"])

	libForm := upgradeArchitecture("torchvision.models.resnet18")
	assert.Equal(t, "torchvision.models", libForm.(Dict)["import_from"])
	assert.Equal(t, "resnet18", libForm.(Dict)["callable"])
}
