package overload

import "sort"

// Resolver runs the five-stage overload resolution pipeline of spec.md
// §1–4 over a fixed set of signatures and one embedder-supplied
// BindingPolicy. A Resolver is single-use: calling Resolve twice on
// the same instance is a programmer error and panics, matching
// spec.md §1's single-use, single-threaded contract.
type Resolver struct {
	Policy BindingPolicy

	// IsUniversalTop, if set, identifies the host type system's
	// universal/"object" type, so computeRestrictions can skip
	// emitting a restriction that would never narrow anything (spec.md
	// §4.7). Nil means "no universal type" — every restriction is kept.
	IsUniversalTop func(Type) bool

	used bool
}

// NewResolver constructs a single-use resolver bound to policy.
func NewResolver(policy BindingPolicy) *Resolver {
	return &Resolver{Policy: policy}
}

// Resolve runs the full pipeline against signatures and returns the
// BindingTarget (spec.md §5). It panics if called more than once on
// the same Resolver.
func (r *Resolver) Resolve(signatures []*RawSignature) *BindingTarget {
	if r.used {
		panic("overload: Resolver.Resolve called more than once on the same Resolver")
	}
	r.used = true

	policy := r.Policy
	named, names := policy.GetNamedArguments()

	buckets, pool := BuildCandidateSets(signatures, names, policy)

	maxArity := 0
	for k := range buckets {
		if k > maxArity {
			maxArity = k
		}
	}
	preLimit, postLimit := splatLimits(pool, maxArity)

	args, ok := policy.CreateActualArguments(named, names, preLimit, postLimit)
	if !ok {
		return makeInvalidArgumentsError()
	}
	if verr := args.Validate(); verr != nil {
		return &BindingTarget{Kind: TargetInvalidArguments, Error: &ErrorInfo{Kind: ErrNoApplicableCandidate}}
	}

	set := selectCandidateSet(buckets, args)
	if set.IsEffectivelyEmpty() {
		return makeIncorrectArgumentCountError(bucketArities(buckets), len(pool) > 0, args.Count())
	}

	applicable, failures, kwErrors := filterApplicable(set, args, policy)
	if len(applicable) == 0 {
		if len(failures) == 0 && len(kwErrors) > 0 {
			return &BindingTarget{Kind: TargetInvalidArguments, Error: kwErrors[0]}
		}
		return makeNoApplicableCandidateError(set.Candidates, failures)
	}

	winner, ambiguous := selectBest(applicable, args, policy)
	if ambiguous {
		cands := make([]*MethodCandidate, 0, len(applicable))
		for _, a := range applicable {
			cands = append(cands, a.Candidate)
		}
		return makeAmbiguousError(cands)
	}

	restrictions := computeRestrictions(winner, set, args, r.IsUniversalTop)
	return &BindingTarget{
		Kind:         TargetSuccess,
		Candidate:    winner.Candidate,
		Arguments:    args,
		Restrictions: restrictions,
	}
}

// bucketArities returns the sorted arities that have a non-empty
// CandidateSet, for spec.md §4.3/§6's IncorrectArgumentCount
// expected_arities[].
func bucketArities(buckets map[int]*CandidateSet) []int {
	arities := make([]int, 0, len(buckets))
	for k, set := range buckets {
		if !set.IsEffectivelyEmpty() {
			arities = append(arities, k)
		}
	}
	sort.Ints(arities)
	return arities
}

// selectCandidateSet implements spec.md §4.3: the bucket matching the
// call site's effective positional+named argument count. An arity with
// no bucket at all yields an empty CandidateSet rather than nil, so
// callers can uniformly check IsEffectivelyEmpty.
func selectCandidateSet(buckets map[int]*CandidateSet, args *ActualArguments) *CandidateSet {
	arity := args.Count()
	if set, ok := buckets[arity]; ok {
		return set
	}
	return &CandidateSet{Arity: arity}
}
