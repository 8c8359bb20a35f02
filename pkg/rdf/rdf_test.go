package rdf

import (
	"strings"
	"testing"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifier(t *testing.T) {
	v, err := Identifier(nil, "my_axis1")
	require.NoError(t, err)
	assert.Equal(t, "my_axis1", v)

	_, err = Identifier(nil, "1bad")
	assert.Error(t, err)

	_, err = Identifier(nil, "class")
	assert.Error(t, err, "reserved keywords must be rejected")
}

func TestLowerCaseIdentifierLength(t *testing.T) {
	_, err := LowerCaseIdentifier(nil, "Channel", AxisIDMaxLen)
	assert.Error(t, err, "must be lower-case")

	_, err = LowerCaseIdentifier(nil, strings.Repeat("a", 17), AxisIDMaxLen)
	assert.Error(t, err, "must respect axis id length bound")

	v, err := LowerCaseIdentifier(nil, "channel", AxisIDMaxLen)
	require.NoError(t, err)
	assert.Equal(t, "channel", v)
}

func TestResourceId(t *testing.T) {
	_, err := ResourceId(nil, "/bad")
	assert.Error(t, err)
	_, err = ResourceId(nil, "bad/")
	assert.Error(t, err)
	v, err := ResourceId(nil, "my-collection/my-model")
	require.NoError(t, err)
	assert.Equal(t, "my-collection/my-model", v)
}

func TestSha256(t *testing.T) {
	good := strings.Repeat("a", 64)
	v, err := ValidateSha256(nil, good)
	require.NoError(t, err)
	assert.Equal(t, Sha256(good), v)

	_, err = ValidateSha256(nil, "tooshort")
	assert.Error(t, err)

	_, err = ValidateSha256(nil, strings.Repeat("A", 64))
	assert.Error(t, err, "must be lower-case")
}

func TestComputeSha256(t *testing.T) {
	h, err := ComputeSha256(strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, Sha256("2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"), h)
}

func TestOrcidChecksum(t *testing.T) {
	v, err := ValidateOrcid(nil, "0000-0002-1825-0097")
	require.NoError(t, err)
	assert.Equal(t, Orcid("0000-0002-1825-0097"), v)

	_, err = ValidateOrcid(nil, "0000-0002-1825-0098")
	assert.Error(t, err, "checksum must be rejected")
}

func TestSIUnit(t *testing.T) {
	v, err := ValidateSIUnit(nil, "µm")
	require.NoError(t, err)
	assert.Equal(t, "µm", v)

	v, err = ValidateSIUnit(nil, "m * s")
	require.NoError(t, err)
	assert.Equal(t, "m·s", v)

	_, err = ValidateSIUnit(nil, "not a unit!!")
	assert.Error(t, err)
}

func TestFileSourceClassification(t *testing.T) {
	fs, err := ParseFileSource(nil, "https://example.com/weights.pt")
	require.NoError(t, err)
	assert.Equal(t, KindHttpUrl, fs.Kind)

	fs, err = ParseFileSource(nil, "/abs/path/file.yaml")
	require.NoError(t, err)
	assert.Equal(t, KindAbsoluteFilePath, fs.Kind)

	fs, err = ParseFileSource(nil, "relative/file.yaml")
	require.NoError(t, err)
	assert.Equal(t, KindRelativeFilePath, fs.Kind)
}

func TestWithSuffix(t *testing.T) {
	fs, _ := ParseFileSource(nil, "cover.PNG")
	err := WithSuffix(nil, fs, false, ".png")
	assert.Error(t, err, "case-sensitive by default")

	err = WithSuffix(nil, fs, true, ".png")
	assert.NoError(t, err)
}

func TestLicense(t *testing.T) {
	warn, err := ValidateLicense(nil, "MIT")
	require.NoError(t, err)
	assert.Nil(t, warn)

	warn, err = ValidateLicense(bioerrors.Loc{"license"}, "BSD-2-Clause-FreeBSD")
	require.NoError(t, err)
	require.NotNil(t, warn)
	assert.Equal(t, "license", warn.Loc.String())
}

func TestVersionParsing(t *testing.T) {
	v, err := ParseVersion(nil, "0.5.3")
	require.NoError(t, err)
	assert.Equal(t, 0, v.Major)
	assert.Equal(t, 5, v.Minor)
	assert.Equal(t, 3, v.Patch)
	assert.Equal(t, "0.5", v.MajorMinor())

	future, err := ParseVersion(nil, "9999.0.0")
	require.NoError(t, err)
	assert.Equal(t, 1, future.Compare(v))
}

func TestValidatePersonShape(t *testing.T) {
	err := ValidatePersonShape(Person{Name: "Jane Doe", Email: "jane@example.com", Orcid: "0000-0002-1825-0097"})
	require.NoError(t, err)

	err = ValidatePersonShape(Person{Name: "", Email: "not-an-email"})
	require.Error(t, err)
}
