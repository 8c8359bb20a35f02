package rdf

import (
	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
)

// ValidateCoverImage checks a single `covers` entry's file-source shape
// against ApprovedImageExtensions (spec.md §3.1). Decoding the image itself
// to sanity-check its aspect ratio/size is delegated to the external image
// codec a caller wires in (spec.md §1 scopes out bundled codecs); only the
// cheap, codec-free suffix check is done here, supplementing the original's
// cover.py sanity pass at the file-source level.
func ValidateCoverImage(loc bioerrors.Loc, raw string) error {
	fs, err := ParseFileSource(loc, raw)
	if err != nil {
		return err
	}
	return WithSuffix(loc, fs, true, ApprovedImageExtensions...)
}
