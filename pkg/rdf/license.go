package rdf

import (
	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
)

// ValidateLicense validates a `license` field against the embedded SPDX
// table (spec.md §4.1). A deprecated entry is accepted but returns a
// non-nil *bioerrors.Diagnostic of TypeWarning for the caller (typically
// the validation engine, C4) to record as a warning rather than an error —
// matching the concrete scenario in spec.md §8.4 (BSD-2-Clause-FreeBSD).
func ValidateLicense(loc bioerrors.Loc, id string) (warn *bioerrors.Diagnostic, err error) {
	res := LookupLicense(id)
	if !res.Known {
		return bioerrors.Warning(loc, 30, "unknown SPDX license id: "+id), nil
	}
	if res.Deprecated {
		return bioerrors.Warning(loc, 30, "SPDX license id "+id+" is deprecated"), nil
	}
	return nil, nil
}
