package packager

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"

	"github.com/bioimage-io/spec-go/pkg/iocheck"
	"github.com/google/uuid"
	"github.com/klauspost/compress/flate"
)

// MaterializeDirectory copies every entry's source bytes plus the
// (already-rewritten) RDF bytes into outDir, staging under a uuid-named
// sibling directory first so a crash mid-copy never leaves a partially
// written package at the final path (spec.md §4.7 step 5).
func MaterializeDirectory(root *iocheck.Root, userAgent string, outDir string, entries []PackageEntry, rdfFileName string, rdfBytes []byte) error {
	staging := outDir + ".staging-" + uuid.NewString()
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return err
	}
	defer os.RemoveAll(staging)

	for _, e := range entries {
		if err := copyEntry(root, userAgent, e, filepath.Join(staging, e.LocalName)); err != nil {
			return err
		}
	}
	if err := os.WriteFile(filepath.Join(staging, rdfFileName), rdfBytes, 0o644); err != nil {
		return err
	}

	if err := os.RemoveAll(outDir); err != nil {
		return err
	}
	return os.Rename(staging, outDir)
}

func copyEntry(root *iocheck.Root, userAgent string, e PackageEntry, dest string) error {
	res, err := iocheck.Resolve(root, e.Source, e.Loc)
	if err != nil {
		return err
	}
	r, err := iocheck.Open(root, res, userAgent, true)
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer w.Close()
	_, err = io.Copy(w, r)
	return err
}

// MaterializeZip writes every entry plus the RDF into a zip archive at
// outPath, using klauspost/compress's flate implementation as the
// registered Deflate compressor (spec.md §4.7 step 5: "same entries into a
// ZIP at a chosen compression level").
func MaterializeZip(root *iocheck.Root, userAgent string, outPath string, entries []PackageEntry, rdfFileName string, rdfBytes []byte, compressionLevel int) error {
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, compressionLevel)
	})
	defer zw.Close()

	for _, e := range entries {
		res, err := iocheck.Resolve(root, e.Source, e.Loc)
		if err != nil {
			return err
		}
		r, err := iocheck.Open(root, res, userAgent, true)
		if err != nil {
			return err
		}
		w, err := zw.Create(e.LocalName)
		if err != nil {
			r.Close()
			return err
		}
		if _, err := io.Copy(w, r); err != nil {
			r.Close()
			return err
		}
		r.Close()
	}

	w, err := zw.Create(rdfFileName)
	if err != nil {
		return err
	}
	_, err = w.Write(rdfBytes)
	return err
}
