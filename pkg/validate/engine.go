package validate

import (
	"fmt"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
	multierror "github.com/hashicorp/go-multierror"
	pkgerrors "github.com/pkg/errors"
)

// Rule is one unit of validation logic: given the active context, it
// returns every diagnostic it finds (errors and warnings alike — severity
// is carried on the Diagnostic itself, not chosen by the caller).
type Rule func(ctx *Context) []*bioerrors.Diagnostic

// Status is one of the three overall outcomes of spec.md §4.4.
type Status string

const (
	StatusPassed      Status = "passed"
	StatusValidFormat Status = "valid-format"
	StatusFailed      Status = "failed"
)

// Result is the outcome of running a rule set once: the hard-error tree
// plus the full warnings list, kept separate per spec.md §4.4 step 1 to
// avoid double-reporting a threshold-promoted warning as both an error and
// a warning.
type Result struct {
	Status   Status
	Errors   []*bioerrors.Diagnostic
	Warnings []*bioerrors.Diagnostic
}

// Run executes rules twice against ctx, per spec.md §4.4:
//  1. once at ctx's own WarningLevel, so warnings at or above that
//     threshold are promoted into the error list (producing the tree);
//  2. once at SeverityInfo, so every would-be warning is gathered without
//     re-triggering the promotion — the warnings list reported to the
//     caller always reflects every warning, promoted or not.
//
// A panic inside any rule is recovered into a "traceback" diagnostic
// (spec.md §7) rather than aborting the whole run, using pkg/errors to
// keep the original stack for later reporting.
func Run(ctx *Context, rules []Rule) *Result {
	errDiags := runPass(ctx, rules)
	warnDiags := runPass(ctx.WithWarningLevel(bioerrors.SeverityInfo), rules)

	res := &Result{}
	for _, d := range errDiags {
		if isError(d, ctx.WarningLevel) {
			res.Errors = append(res.Errors, d)
		}
	}
	for _, d := range warnDiags {
		if d.Type == bioerrors.TypeWarning {
			res.Warnings = append(res.Warnings, d)
		}
	}

	switch {
	case len(res.Errors) > 0:
		res.Status = StatusFailed
	case len(res.Warnings) > 0:
		res.Status = StatusValidFormat
	default:
		res.Status = StatusPassed
	}
	return res
}

func isError(d *bioerrors.Diagnostic, threshold bioerrors.Severity) bool {
	if d.Type != bioerrors.TypeWarning {
		return true
	}
	return d.Severity >= threshold
}

func runPass(ctx *Context, rules []Rule) (diags []*bioerrors.Diagnostic) {
	for _, rule := range rules {
		diags = append(diags, runOne(ctx, rule)...)
	}
	return diags
}

func runOne(ctx *Context, rule Rule) (diags []*bioerrors.Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			diags = append(diags, bioerrors.Traceback(nil, r))
		}
	}()
	return rule(ctx)
}

// Aggregate folds a Result's errors into a single error via
// hashicorp/go-multierror, for call sites (e.g. raise_errors mode) that
// want one error value instead of a diagnostic slice.
func Aggregate(res *Result) error {
	if len(res.Errors) == 0 {
		return nil
	}
	var merr *multierror.Error
	for _, d := range res.Errors {
		merr = multierror.Append(merr, d)
	}
	return merr.ErrorOrNil()
}

// RaiseFirst returns the first error directly, wrapped with a stack trace,
// for ValidationContext.raise_errors mode (spec.md §4.6: "bypasses
// aggregation for debugging").
func RaiseFirst(res *Result) error {
	if len(res.Errors) == 0 {
		return nil
	}
	return pkgerrors.WithStack(fmt.Errorf("%s", res.Errors[0].Error()))
}
