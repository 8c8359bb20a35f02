package rdf

import (
	"net/url"
	"path"
	"strings"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
)

// FileSourceKind discriminates the FileSource tagged union of spec.md §4.1.
type FileSourceKind int

const (
	KindHttpUrl FileSourceKind = iota
	KindAbsoluteFilePath
	KindRelativeFilePath
)

// FileSource is a tagged union of HttpUrl, AbsoluteFilePath, and
// RelativeFilePath (spec.md §4.1). RelativeFilePath stores a POSIX path and
// is resolved against a context-provided root by the iocheck package (C6).
type FileSource struct {
	Kind FileSourceKind
	// Value is the raw string: the full URL, the absolute path, or the
	// POSIX-style relative path, depending on Kind.
	Value string
}

// ParseFileSource classifies a raw string into the FileSource union.
func ParseFileSource(loc bioerrors.Loc, raw string) (FileSource, error) {
	if raw == "" {
		return FileSource{}, bioerrors.ValueError(loc, "file_source", "must not be empty")
	}
	if u, err := url.Parse(raw); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return FileSource{Kind: KindHttpUrl, Value: raw}, nil
	}
	if path.IsAbs(raw) || isWindowsAbs(raw) {
		return FileSource{Kind: KindAbsoluteFilePath, Value: raw}, nil
	}
	// RelativeFilePath stores a POSIX path regardless of host OS.
	return FileSource{Kind: KindRelativeFilePath, Value: filepathToPosix(raw)}, nil
}

func isWindowsAbs(p string) bool {
	return len(p) >= 3 && p[1] == ':' && (p[2] == '\\' || p[2] == '/')
}

func filepathToPosix(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// WithSuffix validates that a FileSource's value ends with one of the
// allowed suffixes. Matching is case-sensitive unless caseInsensitive is set
// (spec.md §4.1).
func WithSuffix(loc bioerrors.Loc, fs FileSource, caseInsensitive bool, suffixes ...string) error {
	v := fs.Value
	if caseInsensitive {
		v = strings.ToLower(v)
	}
	for _, suf := range suffixes {
		s := suf
		if caseInsensitive {
			s = strings.ToLower(s)
		}
		if strings.HasSuffix(v, s) {
			return nil
		}
	}
	return bioerrors.ValueError(loc, "suffix", "file source does not have one of the required suffixes: "+strings.Join(suffixes, ", "))
}

// ApprovedImageExtensions are the allowed extensions for `covers` (spec.md §3.1).
var ApprovedImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".tif", ".tiff"}
