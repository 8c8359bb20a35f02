package errors

import "testing"

func TestLoc_String(t *testing.T) {
	loc := Loc{"inputs", 0, "axes", 1, "size"}
	got := loc.String()
	want := "inputs.0.axes.1.size"
	if got != want {
		t.Fatalf("Loc.String() = %q, want %q", got, want)
	}
}

func TestLoc_With(t *testing.T) {
	loc := Loc{"weights"}.With("pytorch_state_dict", "source")
	want := "weights.pytorch_state_dict.source"
	if loc.String() != want {
		t.Fatalf("Loc.With() = %q, want %q", loc.String(), want)
	}
}

func TestWarning_CarriesSeverity(t *testing.T) {
	d := Warning(Loc{"name"}, SeverityAlert, "looks off")
	if d.Severity != SeverityAlert {
		t.Fatalf("Warning().Severity = %v, want %v", d.Severity, SeverityAlert)
	}
	if d.Type != TypeWarning {
		t.Fatalf("Warning().Type = %v, want %v", d.Type, TypeWarning)
	}
}

func TestNew_DefaultsToErrorSeverity(t *testing.T) {
	d := Missing(Loc{"name"})
	if d.Severity != SeverityError {
		t.Fatalf("Missing().Severity = %v, want %v", d.Severity, SeverityError)
	}
}

func TestConfigError_Error(t *testing.T) {
	err := NewConfigError("bad config", "missing key", "set BIOIMAGEIO_USER_AGENT", nil)
	want := "bad config: missing key (set BIOIMAGEIO_USER_AGENT)"
	if err.Error() != want {
		t.Fatalf("ConfigError.Error() = %q, want %q", err.Error(), want)
	}
}

func TestDiagnostic_ErrorFormatsLocAndMessage(t *testing.T) {
	d := ValueError(Loc{"format_version"}, "semver", "must be a valid version")
	want := "[value_error.semver] format_version: must be a valid version"
	if d.Error() != want {
		t.Fatalf("Diagnostic.Error() = %q, want %q", d.Error(), want)
	}
}
