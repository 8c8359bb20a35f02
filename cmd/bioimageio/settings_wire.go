package main

import (
	"github.com/bioimage-io/spec-go/internal/settings"
	"github.com/bioimage-io/spec-go/pkg/description"
	"github.com/bioimage-io/spec-go/pkg/iocheck"
	"github.com/bioimage-io/spec-go/pkg/validate"
)

// applySettings loads internal/settings' process-wide knobs (spec.md §6.4)
// and threads them into the packages that read package-level defaults,
// mirroring the teacher's pattern of resolving its Config once in main()
// and passing the derived values down rather than re-reading per call.
func applySettings() (settings.Settings, error) {
	s, err := settings.Load()
	if err != nil {
		return s, err
	}
	validate.DefaultPerformIOChecks = s.PerformIOChecks
	iocheck.HTTPTimeout = s.HTTPTimeout
	description.UserAgent = s.UserAgent
	return s, nil
}
