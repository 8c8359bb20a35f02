package rdf

import (
	"regexp"
	"strings"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
)

// siPrefixes and siUnits are the grammar terminals of spec.md §4.1's
// "{prefix}?{unit}{power}?((·…)|(/…))*" SI unit regex.
var siPrefixes = []string{
	"Q", "R", "Y", "Z", "E", "P", "T", "G", "M", "k", "h", "da",
	"d", "c", "m", "µ", "u", "n", "p", "f", "a", "z", "y", "r", "q",
}

var siUnits = []string{
	"m", "g", "s", "A", "K", "mol", "cd", "Hz", "N", "Pa", "J", "W", "C",
	"V", "F", "Ω", "ohm", "S", "Wb", "T", "H", "°C", "lm", "lx", "Bq", "Gy",
	"Sv", "kat", "l", "L", "px", "pixel", "arbitrary unit", "a.u.",
}

func buildSIUnitRegex() *regexp.Regexp {
	prefix := "(?:" + strings.Join(siPrefixes, "|") + ")?"
	unit := "(?:" + strings.Join(siUnits, "|") + ")"
	power := `(?:\^?-?\d+)?`
	term := prefix + unit + power
	full := "^" + term + `(?:[·/]` + term + `)*$`
	return regexp.MustCompile(full)
}

var siUnitRegex = buildSIUnitRegex()

// NormalizeSIUnit normalizes ×, *, and space to "·" before matching, the
// three characters spec.md §4.1 calls out; a run of them (as in "m * s")
// collapses to a single "·".
func NormalizeSIUnit(s string) string {
	r := strings.NewReplacer("×", "·", "*", "·", " ", "·")
	out := r.Replace(s)
	for strings.Contains(out, "··") {
		out = strings.ReplaceAll(out, "··", "·")
	}
	return out
}

// ValidateSIUnit validates (after normalization) an SI unit string against
// the grammar in spec.md §4.1.
func ValidateSIUnit(loc bioerrors.Loc, s string) (string, error) {
	norm := NormalizeSIUnit(s)
	if !siUnitRegex.MatchString(norm) {
		return "", bioerrors.ValueError(loc, "unit", "not a recognized SI unit expression: "+s)
	}
	return norm, nil
}
