package rdf

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once   sync.Once
	shared *validator.Validate
)

// Validator returns the process-wide go-playground/validator instance used
// for the simple struct-tag constraints (length, regex, oneof) that
// compose with the hand-written checks elsewhere in this package (SPDX/ORCID/SHA-256/SI-unit
// need bespoke logic validator can't express as a tag). Registered once,
// lazily, the way a long-lived CLI process wants a single compiled
// validator rather than rebuilding on every call.
func Validator() *validator.Validate {
	once.Do(func() {
		shared = validator.New(validator.WithRequiredStructEnabled())
		_ = shared.RegisterValidation("sha256hex", func(fl validator.FieldLevel) bool {
			return sha256Pattern.MatchString(fl.Field().String())
		})
		_ = shared.RegisterValidation("orcidshape", func(fl validator.FieldLevel) bool {
			return orcidPattern.MatchString(fl.Field().String())
		})
	})
	return shared
}

// Person is the common author/maintainer/uploader shape (spec.md §3.1):
// struct-tag constraints (including the email tag) are enforced by
// go-playground/validator; the ORCID checksum is layered on top by the
// caller.
type Person struct {
	Name        string `validate:"required,min=1"`
	Affiliation string `validate:"omitempty"`
	Email       string `validate:"omitempty,email"`
	Orcid       string `validate:"omitempty,orcidshape"`
	GithubUser  string `validate:"omitempty"`
}

// ValidatePersonShape runs the struct-tag pass over a Person. Callers still
// need to run ValidateOrcid for the checksum, which validator tags cannot
// express.
func ValidatePersonShape(p Person) error {
	return Validator().Struct(p)
}
