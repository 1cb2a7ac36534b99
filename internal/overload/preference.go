package overload

import "sort"

// selectBest runs stage 5 (spec.md §4.6) over the applicable
// candidates from one candidate set, returning the winner or nil with
// ambiguous=true when two or more candidates are mutually
// unresolvable.
func selectBest(applicable []*ApplicableCandidate, args *ActualArguments, policy BindingPolicy) (winner *ApplicableCandidate, ambiguous bool) {
	if len(applicable) == 0 {
		return nil, false
	}
	best := applicable[0]
	tiedWithBest := false

	for _, cand := range applicable[1:] {
		switch comparePreferred(best, cand, args, policy) {
		case One:
			// best stays
			tiedWithBest = false
		case Two:
			best = cand
			tiedWithBest = false
		case Equivalent:
			tiedWithBest = true
		case Ambiguous:
			return nil, true
		}
	}

	if !tiedWithBest {
		// Re-verify best actually beats (or ties) every other
		// candidate — the single forward pass above is a tournament and
		// only valid when preference is transitive, which it is for
		// narrowing-level-bounded conversions (spec.md §8); an explicit
		// re-check catches any remaining pairwise ambiguity cheaply
		// since len(applicable) is always small.
		for _, cand := range applicable {
			if cand == best {
				continue
			}
			switch comparePreferred(best, cand, args, policy) {
			case Two, Ambiguous:
				return nil, true
			}
		}
		return best, false
	}

	// best tied with at least one other candidate on the final
	// comparison; collect everyone still tied with it and break with
	// structural rules, otherwise it's ambiguous.
	var tied []*ApplicableCandidate
	for _, cand := range applicable {
		if cand == best {
			tied = append(tied, cand)
			continue
		}
		switch comparePreferred(best, cand, args, policy) {
		case One:
			continue // best still wins this one
		case Two:
			return nil, true // shouldn't happen given forward pass, but be safe
		case Equivalent:
			tied = append(tied, cand)
		case Ambiguous:
			return nil, true
		}
	}
	if len(tied) == 1 {
		return tied[0], false
	}
	return breakStructuralTie(tied)
}

// comparePreferred compares two applicable candidates per-argument
// (spec.md §4.6 "per-argument preference"), aggregating the verdicts
// of every shared argument position. One means a is preferred, Two
// means b is preferred, Equivalent means no argument decided between
// them, Ambiguous means different arguments disagreed.
func comparePreferred(a, b *ApplicableCandidate, args *ActualArguments, policy BindingPolicy) Preference {
	bindA := indexBindings(a.Bindings)
	bindB := indexBindings(b.Bindings)

	overall := Equivalent
	for argIdx, pa := range bindA {
		pb, ok := bindB[argIdx]
		if !ok {
			continue
		}
		paramA := a.Candidate.Parameters[pa]
		paramB := b.Candidate.Parameters[pb]
		if policy.ParametersEquivalent(paramA, paramB) {
			continue
		}

		pref := perArgumentPreference(argumentAt(args, argIdx), paramA, paramB, policy)
		if pref == Equivalent {
			continue
		}
		switch {
		case overall == Equivalent:
			overall = pref
		case overall == pref:
			// agrees with running verdict
		case overall == Ambiguous || pref == Ambiguous:
			// a decisive vote from one argument overrides an
			// inconclusive one from another (spec.md §4.6), regardless
			// of which was seen first — argIdx iterates a map, so
			// order isn't something the result may depend on.
			if pref != Ambiguous {
				overall = pref
			}
		default:
			return Ambiguous
		}
	}
	return overall
}

// perArgumentPreference implements spec.md §4.6's per-argument
// decision: try SelectBestConversionFor level by level, then fall back
// to simple wrapper-equality/PreferConvert with the symmetric
// swap+invert rule.
func perArgumentPreference(arg ActualArgument, p1, p2 *ParameterWrapper, policy BindingPolicy) Preference {
	for level := LevelNone; level <= LevelAll; level++ {
		if pref := policy.SelectBestConversionFor(arg.Type, p1, p2, level); pref != Equivalent {
			return pref
		}
	}

	fwd := policy.PreferConvert(p1.Type, p2.Type)
	if fwd != Equivalent {
		return fwd
	}
	bwd := policy.PreferConvert(p2.Type, p1.Type)
	if bwd != Equivalent {
		return bwd.invert()
	}
	return Equivalent
}

func indexBindings(bindings []ArgumentBinding) map[int]int {
	m := make(map[int]int, len(bindings))
	for _, b := range bindings {
		m[b.ArgIndex] = b.ParamIndex
	}
	return m
}

// breakStructuralTie applies spec.md §4.6's ordered structural
// tie-breakers: accessibility, generic specificity, out-parameter
// count, then arg-builder priority bands. Returns ambiguous=true if
// more than one candidate survives every rule.
func breakStructuralTie(tied []*ApplicableCandidate) (*ApplicableCandidate, bool) {
	tied = narrowBy(tied, func(c *ApplicableCandidate) int {
		if c.Candidate.Signature.IsPrivate {
			return 1
		}
		return 0
	})
	if len(tied) == 1 {
		return tied[0], false
	}

	tied = narrowBy(tied, func(c *ApplicableCandidate) int {
		if c.Candidate.IsGeneric {
			return 1
		}
		return 0
	})
	if len(tied) == 1 {
		return tied[0], false
	}

	tied = narrowBy(tied, func(c *ApplicableCandidate) int {
		return c.Candidate.Return.CountOutParams
	})
	if len(tied) == 1 {
		return tied[0], false
	}

	tied = narrowBy(tied, priorityBandKey)
	if len(tied) == 1 {
		return tied[0], false
	}
	return nil, true
}

// narrowBy keeps only the candidates achieving the minimum of key(c).
func narrowBy(in []*ApplicableCandidate, key func(*ApplicableCandidate) int) []*ApplicableCandidate {
	if len(in) <= 1 {
		return in
	}
	min := key(in[0])
	for _, c := range in[1:] {
		if v := key(c); v < min {
			min = v
		}
	}
	var out []*ApplicableCandidate
	for _, c := range in {
		if key(c) == min {
			out = append(out, c)
		}
	}
	return out
}

// priorityBandKey summarizes a candidate's arg-builder priorities into
// a single comparable number: the sorted sequence of builder
// priorities compared lexicographically, collapsed to an int by
// weighting each position — small candidates (the common case) never
// overflow a reasonable bound.
func priorityBandKey(c *ApplicableCandidate) int {
	prios := make([]int, 0, len(c.Candidate.Builders))
	for _, b := range c.Candidate.Builders {
		prios = append(prios, b.Priority)
	}
	sort.Ints(prios)
	key := 0
	for _, p := range prios {
		key = key*64 + minInt(p, 63)
	}
	return key
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
