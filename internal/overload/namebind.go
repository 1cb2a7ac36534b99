package overload

// ArgumentBinding pairs one actual argument with the candidate
// parameter index it was bound to, after name resolution (spec.md §4
// stage 3 "name binder").
type ArgumentBinding struct {
	ArgIndex   int
	ParamIndex int
}

// bindNames resolves a candidate's named arguments against its
// parameter names, producing one binding per named argument or a
// keyword error. Positional arguments are assumed already bound 1:1 to
// the leading parameter indices by the caller and are not revisited
// here (spec.md §4 stage 3 only concerns names).
//
// A candidate is rejected outright (nil, err) on the first keyword
// problem; the resolver only surfaces that error if every candidate in
// the bucket is likewise rejected (spec.md §4 "suppressed if any
// candidate survives").
func bindNames(c *MethodCandidate, args *ActualArguments, positionalCount int) ([]ArgumentBinding, *ErrorInfo) {
	if len(args.Named) == 0 {
		return nil, nil
	}

	// Map each declared parameter name straight to its current wrapper
	// index via SourceParamIndex, rather than walking Builders in
	// position order: a params-array-expanded candidate
	// (candidate.go's makeParamsExtended) inserts a variable number of
	// synthetic per-element builders ahead of any trailing named
	// parameters, so builder position no longer lines up with
	// RawSignature.Params position once expansion happens.
	paramNameIndex := make(map[string]int, len(c.Signature.Params))
	for _, b := range c.Builders {
		if b.Kind == BuilderInstance || b.SourceParamIndex < 0 {
			continue
		}
		paramNameIndex[c.Signature.Params[b.SourceParamIndex].Name] = b.ParamIndex
	}

	seen := make(map[string]bool, len(args.Names))
	bindings := make([]ArgumentBinding, 0, len(args.Named))
	for i, name := range args.Names {
		if seen[name] {
			return nil, &ErrorInfo{Kind: ErrDuplicateKeyword, Candidates: []*MethodCandidate{c}, Keyword: name}
		}
		seen[name] = true

		wi, ok := paramNameIndex[name]
		if !ok {
			return nil, &ErrorInfo{Kind: ErrUnassignableKeyword, Candidates: []*MethodCandidate{c}, Keyword: name}
		}
		bindings = append(bindings, ArgumentBinding{ArgIndex: positionalCount + i, ParamIndex: wi})
	}
	return bindings, nil
}
