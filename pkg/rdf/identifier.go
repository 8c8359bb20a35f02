// Package rdf implements the primitive value types of spec.md §4.1 (C1):
// constrained strings, the file-source union, URL normalization, and the
// suffix/regex constraints every higher-level schema node is built from.
package rdf

import (
	"fmt"
	"regexp"
	"strings"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
)

// reservedIdentifiers is the "Python-specific identifier keyword list" that
// spec.md §9 Open Question (c) says leaks into the primitive Identifier and
// must still be rejected by other-language implementations for round-trip
// compatibility with existing RDs.
var reservedIdentifiers = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

var identifierHead = regexp.MustCompile(`^[A-Za-z_]`)
var identifierBody = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Identifier validates a non-empty string that starts with a letter or
// underscore, continues with letters/digits/underscore, and is not a
// reserved keyword (spec.md §4.1).
func Identifier(loc bioerrors.Loc, s string) (string, error) {
	if s == "" {
		return "", bioerrors.ValueError(loc, "identifier", "must not be empty")
	}
	if !identifierHead.MatchString(s) {
		return "", bioerrors.ValueError(loc, "identifier", "must start with a letter or underscore")
	}
	if !identifierBody.MatchString(s) {
		return "", bioerrors.ValueError(loc, "identifier", "must contain only letters, digits, and underscores")
	}
	if reservedIdentifiers[s] {
		return "", bioerrors.ValueError(loc, "identifier", fmt.Sprintf("%q is a reserved keyword", s))
	}
	return s, nil
}

// LowerCaseIdentifier validates an Identifier that is additionally
// all-lowercase and bounded in length — axis ids (<=16) and tensor ids
// (<=32) per spec.md §4.1.
func LowerCaseIdentifier(loc bioerrors.Loc, s string, maxLen int) (string, error) {
	v, err := Identifier(loc, s)
	if err != nil {
		return "", err
	}
	if v != strings.ToLower(v) {
		return "", bioerrors.ValueError(loc, "identifier", "must be lower-case")
	}
	if len(v) > maxLen {
		return "", bioerrors.ValueError(loc, "identifier", fmt.Sprintf("must be at most %d characters", maxLen))
	}
	return v, nil
}

const (
	// AxisIDMaxLen bounds axis identifiers (spec.md §4.1).
	AxisIDMaxLen = 16
	// TensorIDMaxLen bounds tensor identifiers (spec.md §4.1).
	TensorIDMaxLen = 32
)

var resourceIDChars = regexp.MustCompile(`^[a-z0-9_\-/.]+$`)

// ResourceId validates a non-empty, lower-case identifier with characters in
// [a-z0-9_\-/.], which must not start or end with "/" (spec.md §4.1).
func ResourceId(loc bioerrors.Loc, s string) (string, error) {
	if s == "" {
		return "", bioerrors.ValueError(loc, "id", "must not be empty")
	}
	if s != strings.ToLower(s) {
		return "", bioerrors.ValueError(loc, "id", "must be lower-case")
	}
	if !resourceIDChars.MatchString(s) {
		return "", bioerrors.ValueError(loc, "id", "must only contain [a-z0-9_-/.]")
	}
	if strings.HasPrefix(s, "/") || strings.HasSuffix(s, "/") {
		return "", bioerrors.ValueError(loc, "id", "must not start or end with '/'")
	}
	return s, nil
}

// Name validates the common-envelope `name` field (spec.md §3.1): 5-128
// chars; models additionally restrict to letters/digits/`_+-()` and spaces.
func Name(loc bioerrors.Loc, s string, modelRestricted bool) (string, error) {
	if len(s) < 5 || len(s) > 128 {
		return "", bioerrors.ValueError(loc, "name", "must be between 5 and 128 characters")
	}
	if modelRestricted {
		for _, r := range s {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			case r == '_' || r == '+' || r == '-' || r == '(' || r == ')' || r == ' ':
			default:
				return "", bioerrors.ValueError(loc, "name", "model names may only contain letters, digits, '_+-()' and spaces")
			}
		}
	}
	return s, nil
}
