package overload

// RuntimeRestriction is one runtime type check the call site must keep
// enforcing after resolution picks a candidate (spec.md §4.7): the
// static type of some argument was not enough to guarantee the
// selected overload is the one that should run at runtime, so a guard
// on the argument's actual runtime type is required.
type RuntimeRestriction struct {
	ArgIndex int
	// RequiredType is the type the argument's runtime value must match
	// (not merely be assignable to) for this resolution to remain
	// valid.
	RequiredType Type
}

// computeRestrictions implements spec.md §4.7: restrict on argument i
// whenever the winning candidate set was overloaded on parameter i's
// position (more than one candidate in the bucket disagreed on that
// parameter's type), or the argument's static type was not directly
// assignable to the selected parameter type and had to rely on a
// conversion. A restriction naming the universal/top type is always
// dropped — coercing to "anything" is never informative at runtime.
func computeRestrictions(winner *ApplicableCandidate, set *CandidateSet, args *ActualArguments, isUniversalTop func(Type) bool) []*RuntimeRestriction {
	if winner == nil {
		return nil
	}
	bindings := indexBindings(winner.Bindings)

	var restrictions []*RuntimeRestriction
	for argIdx, paramIdx := range bindings {
		selected := winner.Candidate.Parameters[paramIdx]
		if isUniversalTop != nil && isUniversalTop(selected.Type) {
			continue
		}

		overloaded := isOverloadedOnPosition(set, winner.Candidate, paramIdx)
		arg := argumentAt(args, argIdx)
		staticallyAssignable := arg.Type != nil && selected.Type != nil && arg.Type.Equal(selected.Type)

		if overloaded || !staticallyAssignable {
			restrictions = append(restrictions, &RuntimeRestriction{ArgIndex: argIdx, RequiredType: selected.Type})
		}
	}
	return restrictions
}

// isOverloadedOnPosition reports whether some other candidate in set
// disagrees with winner on the parameter type at the given wrapper
// index (i.e. the call site's overload choice actually hinges on
// argIdx's runtime type, not merely its static type).
func isOverloadedOnPosition(set *CandidateSet, winner *MethodCandidate, paramIdx int) bool {
	if set == nil {
		return false
	}
	var winnerType Type
	if paramIdx < len(winner.Parameters) {
		winnerType = winner.Parameters[paramIdx].Type
	}
	for _, c := range set.Candidates {
		if c == winner {
			continue
		}
		if paramIdx >= len(c.Parameters) {
			continue
		}
		other := c.Parameters[paramIdx].Type
		if winnerType == nil || other == nil || !winnerType.Equal(other) {
			return true
		}
	}
	return false
}
