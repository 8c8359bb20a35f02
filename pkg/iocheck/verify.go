package iocheck

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
	"github.com/bioimage-io/spec-go/pkg/rdf"
	"github.com/bioimage-io/spec-go/pkg/validate"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

// HTTPTimeout is the default remote-fetch timeout (spec.md §6.4 HTTP_TIMEOUT).
var HTTPTimeout = 10 * time.Second

// Open returns a streaming reader for a resolved file source. The caller
// must Close it. quiet suppresses the download progress bar (spec.md §6.4
// CI mode).
func Open(root *Root, res Resolved, userAgent string, quiet bool) (io.ReadCloser, error) {
	switch res.Kind {
	case RootDir:
		return root.Fs.Open(res.Path)
	case RootZip:
		f, err := root.Zip.Open(res.ZipEntry)
		if err != nil {
			return nil, err
		}
		return f, nil
	case RootURL:
		client := &http.Client{Timeout: HTTPTimeout}
		req, err := http.NewRequest(http.MethodGet, res.URL, nil)
		if err != nil {
			return nil, err
		}
		if userAgent != "" {
			req.Header.Set("User-Agent", userAgent)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("fetching %s: HTTP %d", res.URL, resp.StatusCode)
		}
		if quiet {
			return resp.Body, nil
		}
		bar := progressbar.DefaultBytes(resp.ContentLength, "fetching "+res.URL)
		return &progressReadCloser{r: io.TeeReader(resp.Body, bar), c: resp.Body}, nil
	}
	return nil, fmt.Errorf("unknown root kind")
}

type progressReadCloser struct {
	r io.Reader
	c io.Closer
}

func (p *progressReadCloser) Read(b []byte) (int, error) { return p.r.Read(b) }
func (p *progressReadCloser) Close() error               { return p.c.Close() }

// CheckExists does a cheap existence probe for a resolved source: a HEAD
// request for URL roots, a Stat for directory/zip roots. Per spec.md §5,
// a timeout here is demoted to a warning rather than an error.
func CheckExists(root *Root, res Resolved, userAgent string) *bioerrors.Diagnostic {
	switch res.Kind {
	case RootDir:
		if _, err := root.Fs.Stat(res.Path); err != nil {
			return bioerrors.IOError(nil, "file not found: "+res.Path, err)
		}
		return nil
	case RootZip:
		if _, err := root.Zip.Open(res.ZipEntry); err != nil {
			return bioerrors.IOError(nil, "zip entry not found: "+res.ZipEntry, err)
		}
		return nil
	case RootURL:
		ctx, cancel := context.WithTimeout(context.Background(), HTTPTimeout)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, res.URL, nil)
		if err != nil {
			return bioerrors.IOError(nil, "cannot build HEAD request for "+res.URL, err)
		}
		if userAgent != "" {
			req.Header.Set("User-Agent", userAgent)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			// HEAD failures (including timeouts) are demoted to a warning.
			return bioerrors.Warning(nil, bioerrors.SeverityWarning, "could not verify existence of "+res.URL+": "+err.Error())
		}
		resp.Body.Close()
		if resp.StatusCode >= 400 {
			return bioerrors.Warning(nil, bioerrors.SeverityWarning, fmt.Sprintf("HEAD %s returned %d", res.URL, resp.StatusCode))
		}
		return nil
	}
	return nil
}

// VerifyItem is one FileDescr's verification request.
type VerifyItem struct {
	Loc          bioerrors.Loc
	Source       rdf.FileSource
	ExpectedHash string // "" if unset
}

// VerifyResult is one VerifyItem's outcome: either a resolved hash (when
// UpdateHashes is set or none was declared) or a diagnostic.
type VerifyResult struct {
	Loc        bioerrors.Loc
	Hash       rdf.Sha256
	Diagnostic *bioerrors.Diagnostic
}

// Verify streams a single file's content through SHA-256 and compares it
// to the declared hash, consulting/populating ctx.KnownFiles (spec.md
// §4.6). If ctx.PerformIOChecks is false, it is a no-op.
func Verify(ctx *validate.Context, root *Root, userAgent string, item VerifyItem) VerifyResult {
	if !ctx.PerformIOChecks {
		return VerifyResult{Loc: item.Loc}
	}

	cacheKey := item.Source.Value
	if cached, ok := ctx.CachedHash(cacheKey); ok && !ctx.UpdateHashes {
		return checkAgainst(item, rdf.Sha256(cached))
	}

	res, err := Resolve(root, item.Source, item.Loc)
	if err != nil {
		return VerifyResult{Loc: item.Loc, Diagnostic: bioerrors.IOError(item.Loc, "cannot resolve file source", err)}
	}
	r, err := Open(root, res, userAgent, true)
	if err != nil {
		return VerifyResult{Loc: item.Loc, Diagnostic: bioerrors.IOError(item.Loc, "cannot open file source", err)}
	}
	defer r.Close()

	hash, err := rdf.ComputeSha256(r)
	if err != nil {
		return VerifyResult{Loc: item.Loc, Diagnostic: bioerrors.IOError(item.Loc, "cannot read file source", err)}
	}
	ctx.SetCachedHash(cacheKey, string(hash))
	if ctx.UpdateHashes {
		return VerifyResult{Loc: item.Loc, Hash: hash}
	}
	return checkAgainst(item, hash)
}

func checkAgainst(item VerifyItem, hash rdf.Sha256) VerifyResult {
	if item.ExpectedHash == "" {
		return VerifyResult{Loc: item.Loc, Hash: hash}
	}
	if string(hash) != item.ExpectedHash {
		return VerifyResult{Loc: item.Loc, Hash: hash, Diagnostic: bioerrors.IOError(item.Loc, fmt.Sprintf("sha256 mismatch: expected %s, got %s", item.ExpectedHash, hash), nil)}
	}
	return VerifyResult{Loc: item.Loc, Hash: hash}
}

// VerifyAll verifies many files concurrently, bounded by concurrency, using
// golang.org/x/sync/errgroup (spec.md §5: "may be invoked from multiple
// threads as long as each invocation gets its own ValidationContext" — here
// each goroutine only reads from ctx and writes to its own result slot,
// with the shared KnownFiles cache being the one deliberately shared,
// content-addressed structure spec.md §5 allows).
func VerifyAll(ctx *validate.Context, root *Root, userAgent string, items []VerifyItem, concurrency int) []VerifyResult {
	if concurrency <= 0 {
		concurrency = 8
	}
	results := make([]VerifyResult, len(items))
	g := new(errgroup.Group)
	g.SetLimit(concurrency)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			results[i] = Verify(ctx, root, userAgent, item)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
