package tensor

// Dict mirrors upgrade.Dict's shape without importing pkg/upgrade, so this
// package stays a leaf: the decoder only needs map[string]any/[]any, the
// same generic shape pkg/upgrade/model.go already produces for 0.5 axes
// when it upgrades legacy axis-letters + shape into per-axis objects.
type Dict = map[string]any

// DecodeModel builds a Model from a raw model-0.5 document's `inputs` and
// `outputs` lists (spec.md §3.2's axis wire shape: `{type, id, size, ...}`
// per axis, grounded on the same Dict convention pkg/upgrade/model.go
// produces when it upgrades legacy 0.4 axes). Malformed nodes are skipped
// rather than raising, matching the rest of the engine's best-effort
// decoding policy; ValidateAxes still catches the structural damage that
// matters (duplicate/missing axis ids, dangling references).
func DecodeModel(raw Dict) Model {
	return Model{
		Inputs:          decodeTensorList(raw["inputs"]),
		Outputs:         decodeTensorList(raw["outputs"]),
		ReproTolerances: decodeReproTolerances(raw),
	}
}

func decodeTensorList(raw any) []Tensor {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]Tensor, 0, len(list))
	for _, item := range list {
		d, ok := asDict(item)
		if !ok {
			continue
		}
		id, _ := d["id"].(string)
		axesRaw, _ := d["axes"].([]any)
		axes := make([]Axis, 0, len(axesRaw))
		for _, a := range axesRaw {
			ad, ok := asDict(a)
			if !ok {
				continue
			}
			axes = append(axes, decodeAxis(ad))
		}
		out = append(out, Tensor{
			ID:             id,
			Axes:           axes,
			DataType:       decodeDataType(d["data"]),
			Preprocessing:  decodeProcessingSteps(d["preprocessing"]),
			Postprocessing: decodeProcessingSteps(d["postprocessing"]),
			TestTensor:     decodeFileSourceValue(d["test_tensor"]),
		})
	}
	return out
}

// decodeDataType reads a tensor's `data.type`: either one {type, ...} dict,
// or a per-channel list sharing a single `type` (spec.md §3.2).
func decodeDataType(raw any) string {
	if d, ok := asDict(raw); ok {
		return stringOf(d["type"])
	}
	if list, ok := raw.([]any); ok && len(list) > 0 {
		if d, ok := asDict(list[0]); ok {
			return stringOf(d["type"])
		}
	}
	return ""
}

// decodeFileSourceValue reads a FileDescr-shaped field that may be a bare
// source string or a {source, sha256?} object (spec.md §6.2).
func decodeFileSourceValue(raw any) string {
	if s, ok := raw.(string); ok {
		return s
	}
	if d, ok := asDict(raw); ok {
		return stringOf(d["source"])
	}
	return ""
}

// decodeProcessingSteps reads a `preprocessing`/`postprocessing` list of
// {id, kwargs: {axes?, reference_tensor?}} objects (spec.md §4.5.3).
func decodeProcessingSteps(raw any) []ProcessingStep {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]ProcessingStep, 0, len(list))
	for _, item := range list {
		d, ok := asDict(item)
		if !ok {
			continue
		}
		step := ProcessingStep{Kind: ProcessingKind(stringOf(d["id"]))}
		if kwargs, ok := asDict(d["kwargs"]); ok {
			step.Axes = stringsOf(kwargs["axes"])
			step.ReferenceTensor = stringOf(kwargs["reference_tensor"])
		}
		out = append(out, step)
	}
	return out
}

// decodeReproTolerances reads config.bioimageio.reproducibility_tolerance
// (spec.md §3.2).
func decodeReproTolerances(raw Dict) []ReproTolerance {
	cfg, ok := asDict(raw["config"])
	if !ok {
		return nil
	}
	bio, ok := asDict(cfg["bioimageio"])
	if !ok {
		return nil
	}
	list, ok := bio["reproducibility_tolerance"].([]any)
	if !ok {
		return nil
	}
	out := make([]ReproTolerance, 0, len(list))
	for _, item := range list {
		d, ok := asDict(item)
		if !ok {
			continue
		}
		rt := ReproTolerance{OutputIDs: stringsOf(d["output_ids"])}
		if v, ok := d["absolute_tolerance"]; ok {
			rt.HasAbsoluteTolerance = true
			switch n := v.(type) {
			case float64:
				rt.AbsoluteTolerance = n
			case int:
				rt.AbsoluteTolerance = float64(n)
			}
		}
		out = append(out, rt)
	}
	return out
}

func decodeAxis(d Dict) Axis {
	a := Axis{
		ID:   stringOf(d["id"]),
		Type: AxisType(stringOf(d["type"])),
		Unit: stringOf(d["unit"]),
	}
	if scale, ok := d["scale"].(float64); ok {
		a.Scale = scale
	} else {
		a.Scale = 1
	}
	switch a.Type {
	case AxisBatch:
		if v, ok := d["concatenable"].(bool); ok {
			a.Concatenable = v
		}
		return a
	case AxisChannel:
		names := stringsOf(d["channel_names"])
		a.ChannelNames = names
		if len(names) > 0 {
			a.Size = Size{Kind: SizeFixed, Fixed: len(names)}
		}
		if ref, ok := sizeRef(d["size"]); ok {
			a.Size = ref
		}
		return a
	}
	a.Size = decodeSize(d["size"])
	return a
}

func decodeSize(raw any) Size {
	switch v := raw.(type) {
	case int:
		return Size{Kind: SizeFixed, Fixed: v}
	case float64:
		return Size{Kind: SizeFixed, Fixed: int(v)}
	case Dict:
		if ref, ok := sizeRef(v); ok {
			return ref
		}
		if _, ok := v["step"]; ok {
			return Size{Kind: SizeParameterized, Min: intOf(v["min"]), Step: intOf(v["step"])}
		}
		if _, ok := v["max"]; ok {
			return Size{Kind: SizeDataDependent, DDMin: intOf(v["min"]), DDMax: intOf(v["max"]), DDHasMax: true}
		}
		if _, ok := v["min"]; ok {
			return Size{Kind: SizeDataDependent, DDMin: intOf(v["min"])}
		}
	}
	return Size{}
}

func sizeRef(raw any) (Size, bool) {
	d, ok := asDict(raw)
	if !ok {
		return Size{}, false
	}
	refRaw, ok := d["reference"]
	if !ok {
		return Size{}, false
	}
	ref, ok := asDict(refRaw)
	if !ok {
		return Size{}, false
	}
	s := Size{
		Kind: SizeReferenceKind,
		Ref: SizeReference{
			TensorID: stringOf(ref["tensor_id"]),
			AxisID:   stringOf(ref["axis_id"]),
			Offset:   intOf(ref["offset"]),
		},
	}
	if halo, ok := d["halo"]; ok {
		s.HasHalo = true
		s.Halo = intOf(halo)
	}
	return s, true
}

func asDict(v any) (Dict, bool) {
	d, ok := v.(Dict)
	return d, ok
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

func stringsOf(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func intOf(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}
