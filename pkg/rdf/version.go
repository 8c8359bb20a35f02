package rdf

import (
	"fmt"
	"regexp"
	"strconv"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
)

// pep440 is a reduced grammar covering the subset spec.md §4.1 calls out:
// "epoch!major.minor.patch, pre/post/dev/local allowed".
var pep440 = regexp.MustCompile(
	`^(?:(?P<epoch>\d+)!)?` +
		`(?P<release>\d+(?:\.\d+){0,2})` +
		`(?:(?P<prel>a|b|rc)(?P<pren>\d+))?` +
		`(?:\.post(?P<post>\d+))?` +
		`(?:\.dev(?P<dev>\d+))?` +
		`(?:\+(?P<local>[a-zA-Z0-9]+(?:[-_.][a-zA-Z0-9]+)*))?$`,
)

// Version is a parsed PEP-440-style version, the format both a resource's
// own `version` field and `format_version` use (spec.md §3.1, Glossary).
type Version struct {
	Raw     string
	Epoch   int
	Major   int
	Minor   int
	Patch   int
	Pre     string // "", "a", "b", "rc"
	PreNum  int
	Post    int
	HasPost bool
	Dev     int
	HasDev  bool
	Local   string
}

// ParseVersion parses a PEP-440-shaped version string.
func ParseVersion(loc bioerrors.Loc, s string) (Version, error) {
	m := pep440.FindStringSubmatch(s)
	if m == nil {
		return Version{}, bioerrors.ValueError(loc, "version", fmt.Sprintf("%q is not a valid version", s))
	}
	names := pep440.SubexpNames()
	get := func(name string) string {
		for i, n := range names {
			if n == name {
				return m[i]
			}
		}
		return ""
	}

	v := Version{Raw: s}
	if e := get("epoch"); e != "" {
		v.Epoch, _ = strconv.Atoi(e)
	}
	release := get("release")
	parts := splitRelease(release)
	if len(parts) > 0 {
		v.Major = parts[0]
	}
	if len(parts) > 1 {
		v.Minor = parts[1]
	}
	if len(parts) > 2 {
		v.Patch = parts[2]
	}
	v.Pre = get("prel")
	if pn := get("pren"); pn != "" {
		v.PreNum, _ = strconv.Atoi(pn)
	}
	if p := get("post"); p != "" {
		v.HasPost = true
		v.Post, _ = strconv.Atoi(p)
	}
	if d := get("dev"); d != "" {
		v.HasDev = true
		v.Dev, _ = strconv.Atoi(d)
	}
	v.Local = get("local")
	return v, nil
}

func splitRelease(release string) []int {
	var out []int
	cur := 0
	started := false
	for _, r := range release {
		if r == '.' {
			out = append(out, cur)
			cur = 0
			started = false
			continue
		}
		cur = cur*10 + int(r-'0')
		started = true
	}
	if started || len(out) == 0 {
		out = append(out, cur)
	}
	return out
}

// MajorMinor returns the "MAJOR.MINOR" string used to key the schema
// registry (spec.md §4.2).
func (v Version) MajorMinor() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compare returns -1, 0, or 1 comparing the (major, minor, patch) release
// tuple only, ignoring pre/post/dev/local — sufficient for the
// format-version "patch differences tolerated forward" rule of spec.md §3.1.
func (v Version) Compare(other Version) int {
	a := [3]int{v.Major, v.Minor, v.Patch}
	b := [3]int{other.Major, other.Minor, other.Patch}
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
