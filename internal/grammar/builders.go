package grammar

// Table construction helpers.

func req(ref, name string, t DataType, min, max int) ElementDef {
	return ElementDef{Ref: ref, Name: name, Type: t, Min: min, Max: max, Required: true}
}

func opt(ref, name string, t DataType, min, max int) ElementDef {
	return ElementDef{Ref: ref, Name: name, Type: t, Min: min, Max: max}
}

func composite(ref, name string, required bool, parts ...ElementDef) ElementDef {
	return ElementDef{Ref: ref, Name: name, Required: required, Components: parts}
}

func (d ElementDef) codes(list string) ElementDef {
	d.CodeList = list
	return d
}

func (d ElementDef) control() ElementDef {
	d.Control = true
	return d
}

func (d ElementDef) decimals(n int) ElementDef {
	d.Decimals = n
	return d
}

func segment(id, name string, elements ...ElementDef) *SegmentDef {
	return &SegmentDef{ID: id, Name: name, Elements: elements}
}

func mandatory(id string, maxUse int) SegmentUsage {
	return SegmentUsage{ID: id, Required: true, MaxUse: maxUse}
}

func optional(id string, maxUse int) SegmentUsage {
	return SegmentUsage{ID: id, MaxUse: maxUse}
}

func loopStart(id, loop string) SegmentUsage {
	return SegmentUsage{ID: id, Loop: loop, LoopStart: true}
}

func inLoop(id, loop string) SegmentUsage {
	return SegmentUsage{ID: id, Loop: loop}
}

func mustRegister(r *Registry, s *TransactionSchema) {
	if err := r.RegisterTransaction(s); err != nil {
		panic(err)
	}
}
