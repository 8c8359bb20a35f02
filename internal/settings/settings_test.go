package settings

import "testing"

func TestDefaults(t *testing.T) {
	s := Defaults()
	if !s.PerformIOChecks {
		t.Fatalf("Defaults().PerformIOChecks = false, want true")
	}
	if s.HTTPTimeout.Seconds() != 10 {
		t.Fatalf("Defaults().HTTPTimeout = %v, want 10s", s.HTTPTimeout)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("BIOIMAGEIO_USER_AGENT", "my-agent/2.0")
	t.Setenv("BIOIMAGEIO_PERFORM_IO_CHECKS", "false")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.UserAgent != "my-agent/2.0" {
		t.Fatalf("Load().UserAgent = %q, want %q", s.UserAgent, "my-agent/2.0")
	}
	if s.PerformIOChecks {
		t.Fatalf("Load().PerformIOChecks = true, want false")
	}
}

func TestLoad_CIForcesUserAgent(t *testing.T) {
	t.Setenv("BIOIMAGEIO_CI", "true")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.UserAgent != "ci" {
		t.Fatalf("Load().UserAgent = %q, want %q", s.UserAgent, "ci")
	}
}

func TestParseDuration_PlainSeconds(t *testing.T) {
	d, err := parseDuration("15")
	if err != nil {
		t.Fatalf("parseDuration() error = %v", err)
	}
	if d.Seconds() != 15 {
		t.Fatalf("parseDuration(15) = %v, want 15s", d)
	}
}
