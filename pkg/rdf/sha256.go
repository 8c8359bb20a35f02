package rdf

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"regexp"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
)

var sha256Pattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Sha256 is a validated, lower-case 64-hex-character digest (spec.md §4.1).
type Sha256 string

// ValidateSha256 normalizes and validates a SHA-256 hex digest.
func ValidateSha256(loc bioerrors.Loc, s string) (Sha256, error) {
	if !sha256Pattern.MatchString(s) {
		return "", bioerrors.ValueError(loc, "sha256", "must be 64 lower-case hex characters")
	}
	return Sha256(s), nil
}

// ComputeSha256 streams r through SHA-256 without buffering the whole
// input (spec.md §5 "Backpressure": hash computed on the fly).
func ComputeSha256(r io.Reader) (Sha256, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return Sha256(hex.EncodeToString(h.Sum(nil))), nil
}
