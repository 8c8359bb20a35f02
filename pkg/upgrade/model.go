package upgrade

import "strings"

// axisLetterMeaning maps the legacy single-letter axis codes (spec.md
// §4.3: "bcyx" etc.) onto the 0.5 axis `type` discriminator.
var axisLetterMeaning = map[byte]string{
	'b': "batch",
	'c': "channel",
	'i': "index",
	't': "time",
	'x': "space",
	'y': "space",
	'z': "space",
}

// upgradeLegacyAxes translates a legacy axis-letters string (e.g. "bcyx")
// into the 0.5 per-axis object list (spec.md §4.3). Sizes are left
// unresolved (nil) — the raw `shape` field supplies them separately via
// upgradeShapeToAxes, which fills in the `size` of each entry produced here.
func upgradeLegacyAxes(letters string) []any {
	axes := make([]any, 0, len(letters))
	for i := 0; i < len(letters); i++ {
		l := letters[i]
		typ, ok := axisLetterMeaning[l]
		if !ok {
			typ = "space"
		}
		axis := Dict{"type": typ}
		switch typ {
		case "channel":
			axis["id"] = "channel"
		case "batch":
			axis["id"] = "batch"
		default:
			axis["id"] = string(l)
		}
		axes = append(axes, axis)
	}
	return axes
}

// upgradeShapeToAxes fills in the `size` of each axis produced by
// upgradeLegacyAxes from the legacy `shape` field, which was one of: a
// fixed int list, {min, step} (ParameterizedInputShape), or
// {reference_tensor, scale, offset} (ImplicitOutputShape) (spec.md §4.3).
func upgradeShapeToAxes(axes []any, shape any) {
	switch s := shape.(type) {
	case []any:
		for i, axis := range axes {
			if i >= len(s) {
				break
			}
			if a, ok := axis.(Dict); ok && a["type"] != "batch" {
				a["size"] = s[i]
			}
		}
	case Dict:
		if _, ok := s["min"]; ok {
			minV, _ := s["min"].([]any)
			step, _ := s["step"].([]any)
			for i, axis := range axes {
				if a, ok := axis.(Dict); ok && a["type"] != "batch" {
					entry := Dict{}
					if i < len(minV) {
						entry["min"] = minV[i]
					}
					if i < len(step) {
						entry["step"] = step[i]
					}
					a["size"] = entry
				}
			}
		} else if refT, ok := s["reference_tensor"]; ok {
			scale, _ := s["scale"].([]any)
			offset, _ := s["offset"].([]any)
			for i, axis := range axes {
				a, ok := axis.(Dict)
				if !ok || a["type"] == "batch" {
					continue
				}
				entry := Dict{"tensor_id": refT, "axis_id": a["id"]}
				if i < len(offset) {
					entry["offset"] = offset[i]
				}
				_ = scale // per-axis scale ratio folded into the referenced axis's own scale
				a["size"] = Dict{"reference": entry}
			}
		}
	}
}

// upgradeArchitecture converts the legacy `architecture` string, which was
// either "<file>:<callable>" or "<pkg.mod.callable>" (spec.md §4.3), into
// the 0.5 ArchitectureFromFile / ArchitectureFromLibrary discriminated
// shape.
func upgradeArchitecture(raw any) any {
	s, ok := raw.(string)
	if !ok {
		return raw
	}
	if strings.Contains(s, ":") {
		parts := strings.SplitN(s, ":", 2)
		return Dict{"source_file": parts[0], "callable": parts[1]}
	}
	idx := strings.LastIndex(s, ".")
	if idx < 0 {
		return Dict{"callable": s}
	}
	return Dict{"import_from": s[:idx], "callable": s[idx+1:]}
}

// UpgradeModel04To05 applies the representative model 0.4 -> 0.5 rules of
// spec.md §4.3. It is best-effort: malformed legacy data is left as-is for
// the validation engine (C4) to report in the normal way, never causing the
// upgrader itself to fail (spec.md §4.3: "Upgraders ... must not raise").
func UpgradeModel04To05(d Dict) Dict {
	if d == nil {
		return d
	}

	testInputs, _ := d["test_inputs"].([]any)
	testOutputs, _ := d["test_outputs"].([]any)
	sampleInputs, _ := d["sample_inputs"].([]any)
	sampleOutputs, _ := d["sample_outputs"].([]any)

	upgradeTensorList := func(kind string, rawList any, testSrcs, sampleSrcs []any) []any {
		list, ok := rawList.([]any)
		if !ok {
			return nil
		}
		out := make([]any, len(list))
		for i, item := range list {
			t, ok := item.(Dict)
			if !ok {
				out[i] = item
				continue
			}
			if axesRaw, ok := t["axes"].(string); ok {
				axes := upgradeLegacyAxes(axesRaw)
				if shape, ok := t["shape"]; ok {
					upgradeShapeToAxes(axes, shape)
					delete(t, "shape")
				}
				t["axes"] = axes
			}
			if i < len(testSrcs) {
				t["test_tensor"] = Dict{"source": testSrcs[i]}
			}
			if i < len(sampleSrcs) {
				t["sample_tensor"] = Dict{"source": sampleSrcs[i]}
			}
			out[i] = t
		}
		return out
	}

	if in, ok := d["inputs"]; ok {
		d["inputs"] = upgradeTensorList("input", in, testInputs, sampleInputs)
	}
	if out, ok := d["outputs"]; ok {
		d["outputs"] = upgradeTensorList("output", out, testOutputs, sampleOutputs)
	}
	delete(d, "test_inputs")
	delete(d, "test_outputs")
	delete(d, "sample_inputs")
	delete(d, "sample_outputs")

	if arch, ok := d["architecture"]; ok {
		d["architecture"] = upgradeArchitecture(arch)
	}

	if weights, ok := d["weights"].(Dict); ok {
		if psd, ok := weights["pytorch_state_dict"].(Dict); ok {
			if _, ok := psd["pytorch_version"]; !ok {
				psd["pytorch_version"] = "1.10"
			}
			if arch, ok := psd["architecture"]; ok {
				psd["architecture"] = upgradeArchitecture(arch)
			}
		}
		if onnx, ok := weights["onnx"].(Dict); ok {
			if _, ok := onnx["opset_version"]; !ok {
				onnx["opset_version"] = 15
			}
		}
		if tf, ok := weights["tensorflow_saved_model_bundle"].(Dict); ok {
			if _, ok := tf["tensorflow_version"]; !ok {
				tf["tensorflow_version"] = "1.15"
			}
		}
	}

	d["format_version"] = "0.5.0"
	return d
}
