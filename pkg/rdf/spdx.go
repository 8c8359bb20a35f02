package rdf

// spdxEntry mirrors the shape of the original implementation's embedded
// SPDX table (src/bioimageio/spec/_internal/license_id.py): an id plus a
// deprecated flag. This is a representative subset pinned to one SPDX
// release, per spec.md §9 Open Question (b) — implementers targeting a
// different release should emit a broader "unknown license" warning for
// anything not present here rather than failing validation outright.
type spdxEntry struct {
	ID         string
	Deprecated bool
}

var spdxTable = map[string]spdxEntry{
	"MIT":                   {ID: "MIT"},
	"Apache-2.0":            {ID: "Apache-2.0"},
	"BSD-2-Clause":          {ID: "BSD-2-Clause"},
	"BSD-3-Clause":          {ID: "BSD-3-Clause"},
	"GPL-2.0-only":          {ID: "GPL-2.0-only"},
	"GPL-2.0-or-later":      {ID: "GPL-2.0-or-later"},
	"GPL-3.0-only":          {ID: "GPL-3.0-only"},
	"GPL-3.0-or-later":      {ID: "GPL-3.0-or-later"},
	"LGPL-2.1-only":         {ID: "LGPL-2.1-only"},
	"LGPL-3.0-only":         {ID: "LGPL-3.0-only"},
	"AGPL-3.0-only":         {ID: "AGPL-3.0-only"},
	"AGPL-3.0-or-later":     {ID: "AGPL-3.0-or-later"},
	"MPL-2.0":               {ID: "MPL-2.0"},
	"CC0-1.0":               {ID: "CC0-1.0"},
	"CC-BY-4.0":             {ID: "CC-BY-4.0"},
	"CC-BY-SA-4.0":          {ID: "CC-BY-SA-4.0"},
	"CC-BY-NC-4.0":          {ID: "CC-BY-NC-4.0"},
	"ISC":                   {ID: "ISC"},
	"Unlicense":             {ID: "Unlicense"},
	"0BSD":                  {ID: "0BSD"},
	"BSD-2-Clause-FreeBSD":  {ID: "BSD-2-Clause-FreeBSD", Deprecated: true},
	"BSD-2-Clause-NetBSD":   {ID: "BSD-2-Clause-NetBSD", Deprecated: true},
	"GPL-2.0":               {ID: "GPL-2.0", Deprecated: true},
	"GPL-3.0":               {ID: "GPL-3.0", Deprecated: true},
	"LGPL-2.1":              {ID: "LGPL-2.1", Deprecated: true},
	"LGPL-3.0":              {ID: "LGPL-3.0", Deprecated: true},
	"AGPL-3.0":              {ID: "AGPL-3.0", Deprecated: true},
	"eCos-2.0":              {ID: "eCos-2.0", Deprecated: true},
	"Nunit":                 {ID: "Nunit", Deprecated: true},
	"wxWindows":              {ID: "wxWindows", Deprecated: true},
}

// LicenseLookupResult reports whether an id is known and, if so, whether it
// is deprecated.
type LicenseLookupResult struct {
	Known      bool
	Deprecated bool
}

// LookupLicense looks up an SPDX id in the embedded table.
func LookupLicense(id string) LicenseLookupResult {
	e, ok := spdxTable[id]
	if !ok {
		return LicenseLookupResult{Known: false}
	}
	return LicenseLookupResult{Known: true, Deprecated: e.Deprecated}
}
