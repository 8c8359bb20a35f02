package description

import (
	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
	"github.com/bioimage-io/spec-go/pkg/rdf"
	"github.com/bioimage-io/spec-go/pkg/schema"
	"github.com/bioimage-io/spec-go/pkg/upgrade"
	"github.com/bioimage-io/spec-go/pkg/validate"
)

// envelopeRule wires the remaining common-envelope checks of spec.md §3.1
// into the main validation pass: the ones already built and tested as
// standalone primitives in pkg/rdf (C1) but, unlike requireFieldsRule and
// forbidUnknownFieldsRule, need a value read out of the raw document rather
// than just a presence check.
func envelopeRule(raw upgrade.Dict, rtype schema.ResourceType) validate.Rule {
	return func(ctx *validate.Context) []*bioerrors.Diagnostic {
		var diags []*bioerrors.Diagnostic

		if name, ok := raw["name"].(string); ok {
			if _, err := rdf.Name(bioerrors.Loc{"name"}, name, rtype == schema.TypeModel); err != nil {
				diags = append(diags, toDiagnostic(bioerrors.Loc{"name"}, err))
			}
		}

		if id, ok := raw["id"].(string); ok && id != "" {
			if _, err := rdf.ResourceId(bioerrors.Loc{"id"}, id); err != nil {
				diags = append(diags, toDiagnostic(bioerrors.Loc{"id"}, err))
			}
		}

		if lic, ok := raw["license"].(string); ok && lic != "" {
			warn, err := rdf.ValidateLicense(bioerrors.Loc{"license"}, lic)
			if err != nil {
				diags = append(diags, toDiagnostic(bioerrors.Loc{"license"}, err))
			} else if warn != nil {
				diags = append(diags, warn)
			}
		}

		diags = append(diags, personListDiags(raw, "authors")...)
		diags = append(diags, personListDiags(raw, "maintainers")...)
		diags = append(diags, citeListDiags(raw)...)
		diags = append(diags, coversListDiags(raw)...)

		return diags
	}
}

func toDiagnostic(loc bioerrors.Loc, err error) *bioerrors.Diagnostic {
	if d, ok := err.(*bioerrors.Diagnostic); ok {
		return d
	}
	return bioerrors.ValueError(loc, "value", err.Error())
}

// personListDiags validates every entry of an `authors`/`maintainers` list
// against rdf.Person's shape plus rdf.ValidateOrcid's checksum (spec.md
// §3.1). A bare string entry (the 0.4 "author as plain name" shape) is
// accepted without a shape check since it carries no structured fields.
func personListDiags(raw upgrade.Dict, field string) []*bioerrors.Diagnostic {
	list, ok := raw[field].([]any)
	if !ok {
		return nil
	}
	var diags []*bioerrors.Diagnostic
	for i, item := range list {
		loc := bioerrors.Loc{field, i}
		d, ok := asDict(item)
		if !ok {
			continue
		}
		p := rdf.Person{
			Name:        stringField(d, "name"),
			Affiliation: stringField(d, "affiliation"),
			Email:       stringField(d, "email"),
			Orcid:       stringField(d, "orcid"),
			GithubUser:  stringField(d, "github_user"),
		}
		if err := rdf.ValidatePersonShape(p); err != nil {
			diags = append(diags, bioerrors.ValueError(loc, "person", err.Error()))
		}
		if p.Orcid != "" {
			if _, err := rdf.ValidateOrcid(loc.With("orcid"), p.Orcid); err != nil {
				diags = append(diags, toDiagnostic(loc.With("orcid"), err))
			}
		}
	}
	return diags
}

// citeListDiags requires each `cite` entry to carry a doi or a url
// (spec.md §3.1).
func citeListDiags(raw upgrade.Dict) []*bioerrors.Diagnostic {
	list, ok := raw["cite"].([]any)
	if !ok {
		return nil
	}
	var diags []*bioerrors.Diagnostic
	for i, item := range list {
		loc := bioerrors.Loc{"cite", i}
		d, ok := asDict(item)
		if !ok {
			continue
		}
		if stringField(d, "doi") == "" && stringField(d, "url") == "" {
			diags = append(diags, bioerrors.ValueError(loc, "cite_entry", "must have a doi or a url"))
		}
	}
	return diags
}

// coversListDiags validates every `covers` entry's file-source shape
// against rdf.ApprovedImageExtensions (spec.md §3.1).
func coversListDiags(raw upgrade.Dict) []*bioerrors.Diagnostic {
	list, ok := raw["covers"].([]any)
	if !ok {
		return nil
	}
	var diags []*bioerrors.Diagnostic
	for i, item := range list {
		src, ok := item.(string)
		if !ok {
			continue
		}
		loc := bioerrors.Loc{"covers", i}
		if err := rdf.ValidateCoverImage(loc, src); err != nil {
			diags = append(diags, toDiagnostic(loc, err))
		}
	}
	return diags
}

func asDict(v any) (upgrade.Dict, bool) {
	d, ok := v.(upgrade.Dict)
	return d, ok
}
