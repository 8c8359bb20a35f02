package rdf

import (
	"regexp"
	"strconv"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
)

var orcidPattern = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{3}[0-9X]$`)

// Orcid is a validated ORCID iD: 19 characters in 4-4-4-4 groups, last
// character may be 'X', with an ISO 7064 mod-11-2 checksum (spec.md §4.1).
type Orcid string

// ValidateOrcid validates the shape and checksum of an ORCID iD.
func ValidateOrcid(loc bioerrors.Loc, s string) (Orcid, error) {
	if !orcidPattern.MatchString(s) {
		return "", bioerrors.ValueError(loc, "orcid", "must be 19 characters in 4-4-4-4 groups")
	}
	if !orcidChecksumOK(s) {
		return "", bioerrors.ValueError(loc, "orcid", "checksum (ISO 7064 mod-11-2) does not match")
	}
	return Orcid(s), nil
}

// orcidChecksumOK implements ISO 7064 mod-11-2 over the first 15 digits,
// checked against the 16th (possibly 'X') check character.
func orcidChecksumOK(s string) bool {
	total := 0
	count := 0
	for _, r := range s {
		if r == '-' {
			continue
		}
		count++
		if count == 16 {
			// This is the check digit; validated after the loop.
			break
		}
		d := int(r - '0')
		total = (total + d) * 2
	}
	remainder := total % 11
	result := (12 - remainder) % 11

	checkChar := rune(s[len(s)-1])
	var expect int
	if result == 10 {
		return checkChar == 'X'
	}
	expect, _ = strconv.Atoi(string(checkChar))
	return expect == result
}
