package description

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/bioimage-io/spec-go/pkg/iocheck"
	"github.com/bioimage-io/spec-go/pkg/upgrade"
	"github.com/bioimage-io/spec-go/pkg/validate"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDescription_FromFile(t *testing.T) {
	dir := t.TempDir()
	rdfPath := filepath.Join(dir, "rdf.yaml")
	body := "name: My Resource\ndescription: a test resource\ntype: dataset\nformat_version: 0.3.0\n"
	require.NoError(t, os.WriteFile(rdfPath, []byte(body), 0o644))

	desc, invalid, err := LoadDescription(rdfPath, "discover")
	require.NoError(t, err)
	require.Nil(t, invalid)
	assert.Equal(t, validate.StatusPassed, desc.Status())
}

func TestLoadDescription_FromZip(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "package.zip")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("my-resource.dataset.bioimageio.yaml")
	require.NoError(t, err)
	_, err = w.Write([]byte("name: My Resource\ndescription: a test resource\ntype: dataset\nformat_version: 0.3.0\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	desc, invalid, err := LoadDescription(zipPath, "discover")
	require.NoError(t, err)
	require.Nil(t, invalid)
	assert.Equal(t, "dataset", string(desc.Type))
}

func TestLoadDescription_ZipWithoutRDFFails(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "empty.zip")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("readme.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("nothing to see here"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, _, err = LoadDescription(zipPath, "discover")
	require.Error(t, err)
}

func TestSaveBioimageioPackageAsFolder_CopiesFilesAndRewritesSources(t *testing.T) {
	root := iocheck.NewMemDirRoot()
	require.NoError(t, afero.WriteFile(root.Fs, "weights.pt", []byte("binary weights"), 0o644))

	doc := upgrade.Dict{
		"name":           "My Model",
		"description":    "a test model",
		"type":           "dataset",
		"format_version": "0.3.0",
		"attachments":    upgrade.Dict{"files": []any{upgrade.Dict{"source": "weights.pt"}}},
	}
	ctx := validate.NewContext("", "").With(func(c *validate.Context) { c.PerformIOChecks = false })
	desc, invalid := BuildDescription(doc, ctx, "discover")
	require.Nil(t, invalid)

	outDir := filepath.Join(t.TempDir(), "out")
	err := SaveBioimageioPackageAsFolder(desc, root, "test-agent/1.0", outDir, nil)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(outDir, "weights.pt"))
	assert.FileExists(t, filepath.Join(outDir, "My_Model.dataset.bioimageio.yaml"))
}

func TestSaveBioimageioPackage_ZipThenRevalidates(t *testing.T) {
	root := iocheck.NewMemDirRoot()
	require.NoError(t, afero.WriteFile(root.Fs, "weights.pt", []byte("binary weights"), 0o644))

	doc := upgrade.Dict{
		"name":           "My Model",
		"description":    "a test model",
		"type":           "dataset",
		"format_version": "0.3.0",
		"attachments":    upgrade.Dict{"files": []any{upgrade.Dict{"source": "weights.pt"}}},
	}
	ctx := validate.NewContext("", "").With(func(c *validate.Context) { c.PerformIOChecks = false })
	desc, invalid := BuildDescription(doc, ctx, "discover")
	require.Nil(t, invalid)

	outPath := filepath.Join(t.TempDir(), "package.zip")
	err := SaveBioimageioPackage(desc, root, "test-agent/1.0", outPath, nil, 6)
	require.NoError(t, err)
	assert.FileExists(t, outPath)
}
