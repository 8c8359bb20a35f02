// Package validate implements the validation engine (C4) of spec.md §4.4:
// a two-pass diagnostic collector that separates hard errors from
// threshold-promoted warnings, plus the ValidationContext (§4.6) every
// validation function runs against.
package validate

import (
	"sync"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
)

// knownFilesCache is the content-addressed source->sha256 cache of spec.md
// §4.6/§5. It is the one piece of state a Context deliberately shares
// across concurrent VerifyAll goroutines, so it carries its own mutex
// rather than relying on single-threaded access.
type knownFilesCache struct {
	mu sync.Mutex
	m  map[string]string
}

func newKnownFilesCache() *knownFilesCache {
	return &knownFilesCache{m: map[string]string{}}
}

func (k *knownFilesCache) get(key string) (string, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.m[key]
	return v, ok
}

func (k *knownFilesCache) set(key, val string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.m[key] = val
}

func (k *knownFilesCache) clone() *knownFilesCache {
	k.mu.Lock()
	defer k.mu.Unlock()
	cp := newKnownFilesCache()
	for key, v := range k.m {
		cp.m[key] = v
	}
	return cp
}

// Context is the immutable, nestable ValidationContext of spec.md §4.6.
// Validation functions take a *Context explicitly rather than reaching for
// global state, so a packager re-validation pass can run with a different
// root/warning_level without disturbing a caller's own context.
type Context struct {
	Root            string // directory path, URL, or "zip:<path>"
	FileName        string // logical RDF filename, for diagnostics
	PerformIOChecks bool
	WarningLevel    bioerrors.Severity
	UpdateHashes    bool
	RaiseErrors     bool // bypass aggregation, surface the first error directly
	DisableCache    bool

	knownFiles *knownFilesCache
}

// DefaultPerformIOChecks seeds every new Context's PerformIOChecks field.
// It starts true (spec.md §6.4's perform_io_checks default) and is
// overridden once at process startup from internal/settings, the same way
// the teacher's Config values are read once and threaded through rather
// than re-read per call.
var DefaultPerformIOChecks = true

// NewContext builds a Context with spec.md §6.4 defaults: IO checks on,
// warning level at error (so only hard errors, no promotion), caching on.
func NewContext(root, fileName string) *Context {
	return &Context{
		Root:            root,
		FileName:        fileName,
		PerformIOChecks: DefaultPerformIOChecks,
		WarningLevel:    bioerrors.SeverityError,
		knownFiles:      newKnownFilesCache(),
	}
}

// With returns a shallow copy of c with the given mutator applied, leaving
// the receiver untouched (spec.md §4.6: "immutable; nestable"). The known-
// files cache is deep-copied so a nested context's lookups can't leak back
// into the parent's.
func (c *Context) With(mutate func(*Context)) *Context {
	cp := *c
	cp.knownFiles = c.knownFiles.clone()
	mutate(&cp)
	return &cp
}

// WithWarningLevel returns a nested context at a different warning
// threshold; Run uses it for its info-level second pass.
func (c *Context) WithWarningLevel(level bioerrors.Severity) *Context {
	return c.With(func(cp *Context) { cp.WarningLevel = level })
}

// CachedHash returns the cached sha256 for a source, if known and caching
// is not disabled. Safe for concurrent use by VerifyAll's goroutines.
func (c *Context) CachedHash(source string) (string, bool) {
	if c.DisableCache {
		return "", false
	}
	return c.knownFiles.get(source)
}

// SetCachedHash records a freshly computed sha256 for a source. Safe for
// concurrent use by VerifyAll's goroutines.
func (c *Context) SetCachedHash(source, sha256 string) {
	if c.DisableCache {
		return
	}
	c.knownFiles.set(source, sha256)
}
