package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestStatus_KnownValues(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	Status(&buf, "passed")
	if !strings.Contains(buf.String(), "passed") {
		t.Fatalf("Status(passed) = %q, want to contain %q", buf.String(), "passed")
	}
}

func TestStatus_UnknownFallsBackToPlain(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	Status(&buf, "weird-status")
	if strings.TrimSpace(buf.String()) != "weird-status" {
		t.Fatalf("Status(weird-status) = %q, want %q", buf.String(), "weird-status")
	}
}

func TestError_FormatsMessage(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	Error(&buf, "missing field %s", "name")
	if !strings.Contains(buf.String(), "missing field name") {
		t.Fatalf("Error() = %q, want to contain %q", buf.String(), "missing field name")
	}
}

func TestInitColors_NoColorFlagDisablesColor(t *testing.T) {
	InitColors(true)
	if !color.NoColor {
		t.Fatalf("InitColors(true) left color.NoColor = false")
	}
}
