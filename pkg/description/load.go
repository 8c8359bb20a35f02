package description

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bioimage-io/spec-go/pkg/iocheck"
	"github.com/bioimage-io/spec-go/pkg/upgrade"
	"github.com/bioimage-io/spec-go/pkg/validate"
	"gopkg.in/yaml.v3"
)

// isRDFFileName recognizes the RDF entry names inside a package
// (spec.md §6.1): an exact "bioimageio.yaml", anything ending in
// ".bioimageio.yaml", or the legacy "rdf.yaml"/"model.yaml".
func isRDFFileName(name string) bool {
	base := filepath.Base(name)
	return base == "bioimageio.yaml" || base == "rdf.yaml" || base == "model.yaml" || strings.HasSuffix(base, ".bioimageio.yaml")
}

// LoadDescription implements spec.md §4.9's load_description: open a
// bioimage.io YAML file or zip archive, locate the RDF by its recognized
// name, derive a ValidationContext rooted at the package, and call
// BuildDescription.
func LoadDescription(sourcePath string, formatVersion string) (*Description, *InvalidDescription, error) {
	if strings.HasSuffix(strings.ToLower(sourcePath), ".zip") {
		return loadFromZip(sourcePath, formatVersion)
	}
	return loadFromFile(sourcePath, formatVersion)
}

func loadFromFile(sourcePath, formatVersion string) (*Description, *InvalidDescription, error) {
	b, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, nil, err
	}
	raw, err := parseYAML(b)
	if err != nil {
		return nil, nil, err
	}
	dir := filepath.Dir(sourcePath)
	ctx := validate.NewContext(dir, filepath.Base(sourcePath))
	desc, invalid := BuildDescription(raw, ctx, formatVersion)
	return desc, invalid, nil
}

func loadFromZip(sourcePath, formatVersion string) (*Description, *InvalidDescription, error) {
	zr, err := zip.OpenReader(sourcePath)
	if err != nil {
		return nil, nil, err
	}
	defer zr.Close()

	var rdfFile *zip.File
	for _, f := range zr.File {
		if isRDFFileName(f.Name) {
			rdfFile = f
			break
		}
	}
	if rdfFile == nil {
		return nil, nil, &noRDFError{sourcePath}
	}

	rc, err := rdfFile.Open()
	if err != nil {
		return nil, nil, err
	}
	b, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, nil, err
	}

	raw, err := parseYAML(b)
	if err != nil {
		return nil, nil, err
	}

	root := iocheck.NewZipRoot(&zr.Reader)
	ctx := validate.NewContext("zip:"+sourcePath, rdfFile.Name)
	_ = root // unused: the I/O checks reopen the archive from ctx.Root's "zip:" path
	desc, invalid := BuildDescription(raw, ctx, formatVersion)
	return desc, invalid, nil
}

type noRDFError struct{ path string }

func (e *noRDFError) Error() string {
	return "no bioimage.io RDF file found in " + e.path
}

func parseYAML(b []byte) (upgrade.Dict, error) {
	var raw upgrade.Dict
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// UpdateHashes forces recomputation of every known FileDescr's sha256 by
// re-running the build with UpdateHashes set on the context (spec.md §4.9):
// cached hashes are bypassed and a declared sha256 that differs from the
// recomputed one is not reported. The recomputed hashes are not written
// back; the returned Description's Raw keeps the sha256 values it was given.
func UpdateHashes(raw upgrade.Dict, ctx *validate.Context) (*Description, *InvalidDescription) {
	nested := ctx.With(func(c *validate.Context) { c.UpdateHashes = true })
	return BuildDescription(raw, nested, "discover")
}
