package description

import (
	"io"

	bioerrors "github.com/bioimage-io/spec-go/internal/errors"
	"github.com/bioimage-io/spec-go/pkg/iocheck"
	"github.com/bioimage-io/spec-go/pkg/rdf"
	"github.com/bioimage-io/spec-go/pkg/tensor"
	"github.com/bioimage-io/spec-go/pkg/validate"
)

// TestTensorDecoder decodes a tensor's test_tensor file into an N-D array
// (spec.md §6.3's "external decoder"). Nil by default: this package ships
// no npy/npz codec, the same way ValidateCoverImage leaves image decoding
// to a caller-wired codec. A caller that wants §6.3's dtype/shape/value
// checks enforced sets this once at startup.
var TestTensorDecoder tensor.ArrayDecoder

// decodeTestTensors resolves and decodes every tensor's test_tensor file
// against ctx's root, skipping entirely when I/O checks are off or no
// ArrayDecoder is wired.
func decodeTestTensors(ctx *validate.Context, m tensor.Model) (map[string]tensor.DecodedArray, []*bioerrors.Diagnostic) {
	if !ctx.PerformIOChecks || TestTensorDecoder == nil {
		return nil, nil
	}

	root, cleanup, err := rootFromContext(ctx)
	if err != nil {
		return nil, []*bioerrors.Diagnostic{bioerrors.IOError(bioerrors.Loc{}, "cannot resolve validation context root", err)}
	}
	if cleanup != nil {
		defer cleanup()
	}

	arrays := make(map[string]tensor.DecodedArray)
	var diags []*bioerrors.Diagnostic
	for _, t := range m.AllTensors() {
		if t.TestTensor == "" {
			continue
		}
		loc := bioerrors.Loc{t.ID, "test_tensor"}

		fs, err := rdf.ParseFileSource(loc, t.TestTensor)
		if err != nil {
			diags = append(diags, toDiagnostic(loc, err))
			continue
		}
		res, err := iocheck.Resolve(root, fs, loc)
		if err != nil {
			diags = append(diags, bioerrors.IOError(loc, "cannot resolve test tensor source", err))
			continue
		}
		r, err := iocheck.Open(root, res, UserAgent, true)
		if err != nil {
			diags = append(diags, bioerrors.IOError(loc, "cannot open test tensor source", err))
			continue
		}
		arr, err := decodeAndClose(r, TestTensorDecoder)
		if err != nil {
			diags = append(diags, bioerrors.IOError(loc, "cannot decode test tensor", err))
			continue
		}
		arrays[t.ID] = arr
	}
	return arrays, diags
}

func decodeAndClose(r io.ReadCloser, decode tensor.ArrayDecoder) (tensor.DecodedArray, error) {
	defer r.Close()
	return decode(r)
}
