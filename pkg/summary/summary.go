// Package summary implements the validation summary (C8) of spec.md §4.8:
// a structured, JSON-serializable record of one validation run. Markdown
// and HTML rendering are explicitly out of scope (spec.md §1 Non-goals);
// this package only produces the structured record those renderers would
// consume.
package summary

import (
	"encoding/json"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
	"github.com/bioimage-io/spec-go/pkg/validate"
)

// EnvEntry is one row of the recorded environment (spec.md §4.8 "env").
type EnvEntry struct {
	Package string `json:"package"`
	Version string `json:"version"`
	Build   string `json:"build,omitempty"`
	Channel string `json:"channel,omitempty"`
}

// DiagnosticEntry is one error/warning entry inside a Detail.
type DiagnosticEntry struct {
	Loc      string `json:"loc"`
	Msg      string `json:"msg"`
	Type     string `json:"type"`
	Severity int    `json:"severity,omitempty"`
}

func diagnosticEntry(d *bioerrors.Diagnostic) DiagnosticEntry {
	return DiagnosticEntry{
		Loc:      d.Loc.String(),
		Msg:      d.Message,
		Type:     string(d.Type),
		Severity: int(d.Severity),
	}
}

// Detail is one sub-validation's contribution to the summary (e.g. the
// "discover" pass, then the re-validation against the requested format
// version, spec.md §4.9).
type Detail struct {
	Name     string            `json:"name"`
	Status   validate.Status   `json:"status"`
	Loc      string            `json:"loc,omitempty"`
	Errors   []DiagnosticEntry `json:"errors,omitempty"`
	Warnings []DiagnosticEntry `json:"warnings,omitempty"`

	RecommendedEnv []EnvEntry `json:"recommended_env,omitempty"`
	EnvDiff        []string   `json:"env_diff,omitempty"`
}

// DetailFromResult builds a Detail from one validate.Result.
func DetailFromResult(name, loc string, res *validate.Result) Detail {
	d := Detail{Name: name, Status: res.Status, Loc: loc}
	for _, e := range res.Errors {
		d.Errors = append(d.Errors, diagnosticEntry(e))
	}
	for _, w := range res.Warnings {
		d.Warnings = append(d.Warnings, diagnosticEntry(w))
	}
	return d
}

// ValidationSummary is the top-level structured record of spec.md §4.8.
type ValidationSummary struct {
	Name          string          `json:"name"`
	SourceName    string          `json:"source_name"`
	Type          string          `json:"type"`
	FormatVersion string          `json:"format_version"`
	Status        validate.Status `json:"status"`
	ID            string          `json:"id,omitempty"`
	Env           []EnvEntry      `json:"env,omitempty"`
	Details       []Detail        `json:"details"`
}

// Merge folds each Detail's status into the top-level status: failed wins
// over valid-format wins over passed (spec.md §4.8/§7: "status is failed
// whenever at least one error exists; otherwise valid-format if warnings
// exist; otherwise passed").
func (s *ValidationSummary) Merge() {
	status := validate.StatusPassed
	for _, d := range s.Details {
		switch {
		case d.Status == validate.StatusFailed:
			status = validate.StatusFailed
		case d.Status == validate.StatusValidFormat && status != validate.StatusFailed:
			status = validate.StatusValidFormat
		}
	}
	s.Status = status
}

// JSON serializes the summary (spec.md §4.8: "can be serialized to JSON,
// Markdown, or HTML; the rendering layer is external" — only JSON is this
// package's concern).
func (s *ValidationSummary) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
