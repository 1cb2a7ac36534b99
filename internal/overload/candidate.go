package overload

// MethodCandidate is one (signature, parameter wrappers, arg builders,
// return builder) triple specialized to a single effective arity
// (spec.md §3). parameter_count == len(Parameters) == len(Builders)
// always holds.
type MethodCandidate struct {
	Signature  *RawSignature
	Parameters []*ParameterWrapper
	Builders   []*ArgBuilder
	Return     *ReturnBuilder

	// ParamsArrayIndex is the wrapper index of the is_params_array
	// parameter, or -1 if this candidate has none. At most one wrapper
	// is ever is_params_array (spec.md §3).
	ParamsArrayIndex int
	// HasParamsDictionary is true if this candidate carries a
	// params-dict parameter; such candidate sets are treated as empty
	// for resolution purposes (spec.md §4.3) — they exist only as
	// internal duals for keyword-mapping normalization.
	HasParamsDictionary bool

	// DefaultedSuffix is the number of trailing optional parameters
	// (from Signature.Params) this candidate omits in favor of their
	// declared defaults (spec.md §4.1 step 3). Zero for the full
	// candidate.
	DefaultedSuffix int
	// HoistedOutParams are Signature.Params indices hoisted into
	// Return by a by-ref-reduced candidate (spec.md §4.1 step 4).
	// Empty for every candidate except the by-ref-reduced one.
	HoistedOutParams []int

	// IsGeneric marks a candidate whose signature still carries
	// unresolved type parameters the candidate construction stage
	// chose not to reject outright (used only by the "least generic"
	// tie-break TODO, spec.md §4.6 step 2 / §9). BuildCandidateSets
	// never sets this — HasUnresolvedGeneric signatures are skipped
	// entirely — it exists for embedders with a partial generic-
	// inference pre-pass to attach after the fact.
	IsGeneric bool

	// ParameterCount is the effective arity: len(Parameters).
	ParameterCount int
}

// CandidateSet is the set of MethodCandidates sharing one effective
// arity (spec.md §3). Arity zero is legal.
type CandidateSet struct {
	Arity      int
	Candidates []*MethodCandidate
}

// IsEffectivelyEmpty reports whether this set has no candidates, or
// consists solely of params-dictionary candidates (spec.md §4.3).
func (cs *CandidateSet) IsEffectivelyEmpty() bool {
	if cs == nil || len(cs.Candidates) == 0 {
		return true
	}
	for _, c := range cs.Candidates {
		if !c.HasParamsDictionary {
			return false
		}
	}
	return true
}

// BuildCandidateSets runs candidate-set construction (spec.md §4.1) for
// every accepted signature, returning the arity-bucketed candidate
// sets and the pool of variadic (params-array/params-dict) candidates
// retained for on-demand splat-length specialization.
func BuildCandidateSets(signatures []*RawSignature, argNames []string, policy BindingPolicy) (buckets map[int]*CandidateSet, paramsPool []*MethodCandidate) {
	buckets = make(map[int]*CandidateSet)

	for _, sig := range signatures {
		if sig == nil || sig.IsVariadicCStyle || sig.HasUnresolvedGeneric {
			continue // silent rejection, spec.md §4.1
		}
		for _, cand := range candidatesForSignature(sig, argNames, policy) {
			if cand.ParamsArrayIndex >= 0 || cand.HasParamsDictionary {
				paramsPool = append(paramsPool, cand)
			}
			addCandidate(buckets, cand)
		}
	}

	if len(paramsPool) > 0 {
		// Specialize to every arity bucket already present — a fixed
		// snapshot taken before any expansion is inserted (spec.md
		// §4.1 "Arity bucketing").
		arities := make([]int, 0, len(buckets))
		for k := range buckets {
			arities = append(arities, k)
		}
		for _, k := range arities {
			for _, pc := range paramsPool {
				if ext := makeParamsExtended(pc, k); ext != nil {
					addCandidate(buckets, ext)
				}
			}
		}
	}

	return buckets, paramsPool
}

func addCandidate(buckets map[int]*CandidateSet, c *MethodCandidate) {
	cs, ok := buckets[c.ParameterCount]
	if !ok {
		cs = &CandidateSet{Arity: c.ParameterCount}
		buckets[c.ParameterCount] = cs
	}
	cs.Candidates = append(cs.Candidates, c)
}

// candidatesForSignature builds the full candidate plus every default
// candidate and the (at most one) by-ref-reduced candidate for a
// single accepted signature.
func candidatesForSignature(sig *RawSignature, argNames []string, policy BindingPolicy) []*MethodCandidate {
	var wrappers []*ParameterWrapper
	var builders []*ArgBuilder
	priority := 0
	paramsArrayIdx := -1
	hasParamsDict := false

	if !sig.IsStatic {
		wrappers = append(wrappers, &ParameterWrapper{Type: sig.DeclaringType, ProhibitsNull: true})
		builders = append(builders, &ArgBuilder{Kind: BuilderInstance, Priority: priority, ParamIndex: len(wrappers) - 1, SourceParamIndex: -1})
		priority++
	}

	var claimed uint64
	if policy != nil {
		if c, ok := policy.MapSpecialParameters(ParameterMapping{Signature: sig, ArgNames: argNames}); ok {
			claimed = c
		}
	}

	// wrapperIndexOf maps a sig.Params index to its wrapper index, so
	// by-ref reduction (which refers back to sig.Params indices) can
	// find the wrapper to drop.
	wrapperIndexOf := make([]int, len(sig.Params))
	var outOnly []int

	for i, p := range sig.Params {
		wi := len(wrappers)
		wrapperIndexOf[i] = wi

		wrapper := &ParameterWrapper{
			Type: p.Type, ProhibitsNull: p.ProhibitsNull, IsByRef: p.IsByRef,
			IsParamsArray: p.IsParamsArray, IsParamsDict: p.IsParamsDict, Raw: p.Raw,
		}
		wrappers = append(wrappers, wrapper)

		kind := BuilderSimple
		if claimed&(1<<uint(i)) != 0 {
			kind = BuilderSpecial
		} else if p.IsParamsArray {
			kind = BuilderParamsArray
			paramsArrayIdx = wi
		}
		if p.IsParamsDict {
			hasParamsDict = true
		}
		builders = append(builders, &ArgBuilder{Kind: kind, Priority: priority, ParamIndex: wi, SourceParamIndex: i})
		priority++

		if p.IsByRef && p.IsOut && claimed&(1<<uint(i)) == 0 {
			outOnly = append(outOnly, i)
		}
	}

	base := &MethodCandidate{
		Signature: sig, Parameters: wrappers, Builders: builders,
		Return:              &ReturnBuilder{},
		ParamsArrayIndex:     paramsArrayIdx,
		HasParamsDictionary:  hasParamsDict,
		ParameterCount:       len(wrappers),
	}

	candidates := []*MethodCandidate{base}

	// Default candidates: one per suffix length of trailing optional,
	// non-variadic parameters (spec.md §4.1 step 3).
	trailingOptional := 0
	for i := len(sig.Params) - 1; i >= 0; i-- {
		if claimed&(1<<uint(i)) != 0 {
			break
		}
		p := sig.Params[i]
		if !p.HasDefault || p.IsParamsArray || p.IsParamsDict {
			break
		}
		trailingOptional++
	}
	for drop := 1; drop <= trailingOptional; drop++ {
		cut := len(wrappers) - drop
		candidates = append(candidates, &MethodCandidate{
			Signature:           sig,
			Parameters:          append([]*ParameterWrapper{}, wrappers[:cut]...),
			Builders:             append([]*ArgBuilder{}, builders[:cut]...),
			Return:               &ReturnBuilder{},
			ParamsArrayIndex:      -1, // dropped suffix is never the params-array
			HasParamsDictionary:   false,
			DefaultedSuffix:       drop,
			ParameterCount:        cut,
		})
	}

	// By-ref-reduced candidate (spec.md §4.1 step 4).
	if len(outOnly) > 0 {
		drop := make(map[int]bool, len(outOnly))
		for _, i := range outOnly {
			drop[wrapperIndexOf[i]] = true
		}
		var rw []*ParameterWrapper
		var rb []*ArgBuilder
		newParamsArrayIdx := -1
		for i, w := range wrappers {
			if drop[i] {
				continue
			}
			rw = append(rw, w)
			rb = append(rb, builders[i])
			if i == paramsArrayIdx {
				newParamsArrayIdx = len(rw) - 1
			}
		}
		candidates = append(candidates, &MethodCandidate{
			Signature:           sig,
			Parameters:          rw,
			Builders:            rb,
			Return:              &ReturnBuilder{CountOutParams: len(outOnly)},
			ParamsArrayIndex:    newParamsArrayIdx,
			HasParamsDictionary: hasParamsDict,
			HoistedOutParams:    append([]int{}, outOnly...),
			ParameterCount:      len(rw),
		})
	}

	return candidates
}

// makeParamsExtended specializes a params-array/params-dict candidate
// to exactly k trailing positional slots (spec.md §4.1 "Arity
// bucketing"): the array parameter is replaced by the right number of
// individual element-typed wrappers, and the is_params_array flag is
// cleared. Returns nil if k is smaller than the fixed prefix the
// candidate requires.
func makeParamsExtended(c *MethodCandidate, k int) *MethodCandidate {
	if c.ParamsArrayIndex < 0 {
		return nil
	}
	if k < c.ParamsArrayIndex {
		return nil
	}
	arrayWrapper := c.Parameters[c.ParamsArrayIndex]
	elemType := arrayWrapper.Type
	trailing := len(c.Parameters) - c.ParamsArrayIndex - 1
	expandedCount := k - c.ParamsArrayIndex - trailing
	if expandedCount < 0 {
		return nil
	}

	out := make([]*ParameterWrapper, 0, k)
	outB := make([]*ArgBuilder, 0, k)
	priority := 0

	for _, b := range c.Builders[:c.ParamsArrayIndex] {
		out = append(out, c.Parameters[b.ParamIndex])
		nb := *b
		nb.Priority = priority
		nb.ParamIndex = len(out) - 1
		priority++
		outB = append(outB, &nb)
	}

	for i := 0; i < expandedCount; i++ {
		out = append(out, &ParameterWrapper{
			Type:          elemType,
			ProhibitsNull: arrayWrapper.ProhibitsNull,
			IsByRef:       false,
			Raw:           arrayWrapper.Raw,
		})
		outB = append(outB, &ArgBuilder{Kind: BuilderSimple, Priority: priority, ParamIndex: len(out) - 1, SourceParamIndex: -1})
		priority++
	}

	for _, b := range c.Builders[c.ParamsArrayIndex+1:] {
		out = append(out, c.Parameters[b.ParamIndex])
		nb := *b
		nb.Priority = priority
		nb.ParamIndex = len(out) - 1
		priority++
		outB = append(outB, &nb)
	}

	return &MethodCandidate{
		Signature:           c.Signature,
		Parameters:          out,
		Builders:            outB,
		Return:              c.Return,
		ParamsArrayIndex:     -1,
		HasParamsDictionary:  c.HasParamsDictionary,
		DefaultedSuffix:      c.DefaultedSuffix,
		HoistedOutParams:     c.HoistedOutParams,
		ParameterCount:       len(out),
	}
}
