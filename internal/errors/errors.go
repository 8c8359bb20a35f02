// Package errors provides the structured diagnostic error shape used
// throughout the validation, upgrade, and packaging pipeline.
//
// Every error carries a machine-readable Type (following the taxonomy of
// spec.md §7: "missing", "type_error.*", "value_error.*", "io_error",
// "traceback", "warning", "severe_warnings"), a location path, a
// human-readable message, an optional hint, and an optional wrapped cause.
package errors

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Type is the machine-readable diagnostic kind from spec.md §7.
type Type string

const (
	TypeMissing         Type = "missing"
	TypeValueError      Type = "value_error"
	TypeIOError         Type = "io_error"
	TypeTraceback       Type = "traceback"
	TypeWarning         Type = "warning"
	TypeSevereWarnings  Type = "severe_warnings"
)

// TypeTypeError builds a "type_error.<kind>" diagnostic type, e.g.
// TypeTypeError("int") -> "type_error.int".
func TypeTypeError(kind string) Type { return Type("type_error." + kind) }

// TypeValueErrorOf builds a "value_error.<kind>" diagnostic type, e.g.
// TypeValueErrorOf("url") -> "value_error.url".
func TypeValueErrorOf(kind string) Type { return Type("value_error." + kind) }

// Loc is a field location path: a sequence of field names and/or slice
// indices, e.g. Loc{"inputs", 0, "axes", 1, "size"}.
type Loc []any

// String renders a Loc the way the engine reports it in diagnostics, e.g.
// "inputs.0.axes.1.size".
func (l Loc) String() string {
	parts := make([]string, len(l))
	for i, p := range l {
		parts[i] = fmt.Sprintf("%v", p)
	}
	return strings.Join(parts, ".")
}

// With returns a new Loc with additional path segments appended.
func (l Loc) With(segs ...any) Loc {
	out := make(Loc, 0, len(l)+len(segs))
	out = append(out, l...)
	out = append(out, segs...)
	return out
}

// Severity levels from spec.md Glossary: info=20, warning=30, alert=35,
// error=50.
type Severity int

const (
	SeverityInfo    Severity = 20
	SeverityWarning Severity = 30
	SeverityAlert   Severity = 35
	SeverityError   Severity = 50
)

// Diagnostic is a single error or warning attached to a location in a raw
// document, mirroring spec.md §4.4's "location path, message, machine type,
// optional traceback" record. Hard errors (Type != TypeWarning) are always
// SeverityError; Severity only varies for TypeWarning diagnostics.
type Diagnostic struct {
	Loc      Loc
	Type     Type
	Message  string
	Hint     string
	Cause    error
	Severity Severity
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	if d.Loc.String() == "" {
		return fmt.Sprintf("[%s] %s", d.Type, d.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", d.Type, d.Loc.String(), d.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (d *Diagnostic) Unwrap() error { return d.Cause }

// New builds a Diagnostic. cause may be nil. Its Severity defaults to
// SeverityError; Warning overrides it.
func New(loc Loc, typ Type, message string, cause error) *Diagnostic {
	return &Diagnostic{Loc: loc, Type: typ, Message: message, Cause: cause, Severity: SeverityError}
}

// Missing builds a "missing" diagnostic for a required field.
func Missing(loc Loc) *Diagnostic {
	return New(loc, TypeMissing, "field required", nil)
}

// ValueError builds a "value_error.<kind>" diagnostic.
func ValueError(loc Loc, kind, message string) *Diagnostic {
	return New(loc, TypeValueErrorOf(kind), message, nil)
}

// IOError builds an "io_error" diagnostic, e.g. a missing file or a hash
// mismatch discovered by the file-source resolver (C6).
func IOError(loc Loc, message string, cause error) *Diagnostic {
	return New(loc, TypeIOError, message, cause)
}

// Traceback wraps an unexpected panic/error recovered during traversal into
// a "traceback" diagnostic, capturing a formatted stack via pkg/errors so
// the original frame is preserved for later reporting (spec.md §7).
func Traceback(loc Loc, recovered any) *Diagnostic {
	err := pkgerrors.Errorf("panic: %v", recovered)
	return New(loc, TypeTraceback, fmt.Sprintf("%+v", err), err)
}

// Warning builds a "warning" diagnostic at a given severity (spec.md §7,
// Glossary: info=20, warning=30, alert=35, error=50).
func Warning(loc Loc, severity Severity, message string) *Diagnostic {
	d := New(loc, TypeWarning, message, nil)
	d.Severity = severity
	return d
}

// ConfigError is a user-facing error for CLI/config failures, generalizing
// the teacher's internal/errors.NewConfigError(title, detail, hint, cause)
// constructor family used across cmd/cie.
type ConfigError struct {
	Title  string
	Detail string
	Hint   string
	Cause  error
}

func (e *ConfigError) Error() string {
	msg := e.Title
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// NewConfigError builds a ConfigError. cause may be nil.
func NewConfigError(title, detail, hint string, cause error) *ConfigError {
	return &ConfigError{Title: title, Detail: detail, Hint: hint, Cause: cause}
}

// NewPermissionError builds a ConfigError for filesystem permission failures.
func NewPermissionError(title, detail, hint string, cause error) *ConfigError {
	return NewConfigError(title, detail, hint, cause)
}

// NewInternalError builds a ConfigError for unexpected internal failures.
func NewInternalError(title, detail, hint string, cause error) *ConfigError {
	return NewConfigError(title, detail, hint, cause)
}

// NewNetworkError builds a ConfigError for remote-fetch failures (e.g. the
// HTTP FileSource root of spec.md §4.6).
func NewNetworkError(title, detail, hint string, cause error) *ConfigError {
	return NewConfigError(title, detail, hint, cause)
}

// FatalError prints err to stderr and exits with status 1. jsonOutput
// switches the rendering to a single-line JSON object so --json callers
// never get plain text mixed into their output, generalizing the teacher's
// errors.FatalError(err, globals.JSON) used throughout cmd/cie.
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		os.Exit(1)
	}
	if jsonOutput {
		b, mErr := json.Marshal(map[string]string{"error": err.Error()})
		if mErr == nil {
			fmt.Fprintln(os.Stderr, string(b))
			os.Exit(1)
		}
	}
	fmt.Fprintln(os.Stderr, "Error:", err.Error())
	os.Exit(1)
}
