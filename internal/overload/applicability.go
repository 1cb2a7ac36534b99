package overload

// ApplicableCandidate is a MethodCandidate that passed stage 4 at some
// narrowing level, together with the bindings used to reach that
// verdict (spec.md §4.4).
type ApplicableCandidate struct {
	Candidate *MethodCandidate
	Bindings  []ArgumentBinding
	Level     NarrowingLevel
}

// filterApplicable runs stage 4 (spec.md §4.4) over one candidate set:
// for each candidate, try narrowing levels from None up to All,
// keeping the candidate at the first level where every actual argument
// (including any collapsed splat tail) converts to its bound
// parameter. Candidates that never convert at any level are dropped
// and their first failure recorded for diagnostics.
func filterApplicable(set *CandidateSet, args *ActualArguments, policy BindingPolicy) ([]*ApplicableCandidate, []ConversionFailure, []*ErrorInfo) {
	var applicable []*ApplicableCandidate
	var failures []ConversionFailure
	var kwErrors []*ErrorInfo

	for _, c := range set.Candidates {
		bindings, kwErr := bindPositionalAndNamed(c, args)
		if kwErr != nil {
			// Keyword errors are suppressed as long as some other
			// candidate survives (spec.md §4 stage 3); the resolver only
			// surfaces these if applicable ends up empty.
			kwErrors = append(kwErrors, kwErr)
			continue
		}

		level, fail, ok := bestApplicableLevel(c, args, bindings, policy)
		if !ok {
			if fail != nil {
				failures = append(failures, *fail)
			}
			continue
		}
		applicable = append(applicable, &ApplicableCandidate{Candidate: c, Bindings: bindings, Level: level})
	}

	return applicable, failures, kwErrors
}

// bindPositionalAndNamed assigns every positional actual argument to
// the parameter of the same index, then appends name-resolved bindings
// for the named arguments.
func bindPositionalAndNamed(c *MethodCandidate, args *ActualArguments) ([]ArgumentBinding, *ErrorInfo) {
	bindings := make([]ArgumentBinding, 0, len(c.Parameters))
	for i := range args.Positional {
		if i >= len(c.Parameters) {
			break
		}
		bindings = append(bindings, ArgumentBinding{ArgIndex: i, ParamIndex: i})
	}
	named, err := bindNames(c, args, len(args.Positional))
	if err != nil {
		return nil, err
	}
	bindings = append(bindings, named...)
	return bindings, nil
}

func bestApplicableLevel(c *MethodCandidate, args *ActualArguments, bindings []ArgumentBinding, policy BindingPolicy) (NarrowingLevel, *ConversionFailure, bool) {
	for level := LevelNone; level <= LevelAll; level++ {
		fail := firstInapplicable(c, args, bindings, level, policy)
		if fail == nil {
			return level, nil, true
		}
		if level == LevelAll {
			return LevelNone, fail, false
		}
	}
	return LevelNone, nil, false
}

// firstInapplicable returns the first conversion failure at the given
// level, or nil if every bound argument (and the collapsed splat tail,
// if any) converts.
func firstInapplicable(c *MethodCandidate, args *ActualArguments, bindings []ArgumentBinding, level NarrowingLevel, policy BindingPolicy) *ConversionFailure {
	for _, b := range bindings {
		arg := argumentAt(args, b.ArgIndex)
		param := c.Parameters[b.ParamIndex]
		if !policy.CanConvertFrom(arg.Type, param, level) {
			return &ConversionFailure{Candidate: c, ArgIndex: b.ArgIndex, Argument: arg, ParamIndex: b.ParamIndex, Parameter: param}
		}
	}

	if args.CollapsedCount > 0 && c.ParamsArrayIndex < 0 {
		// A collapsed tail with nowhere to go (no params-array on this
		// candidate) never applies — it was only kept in the pool for
		// candidates that do have one.
		return &ConversionFailure{Candidate: c, ArgIndex: -1}
	}
	if args.CollapsedCount > 0 && c.ParamsArrayIndex >= 0 {
		elemType := c.Parameters[c.ParamsArrayIndex]
		for i := 0; i < args.CollapsedCount; i++ {
			t, _, ok := args.GetSplattedItem(i)
			if !ok {
				return &ConversionFailure{Candidate: c, ArgIndex: -1}
			}
			if !policy.CanConvertFrom(t, elemType, level) {
				return &ConversionFailure{Candidate: c, ArgIndex: -1, ParamIndex: c.ParamsArrayIndex, Parameter: elemType}
			}
		}
	}
	return nil
}

func argumentAt(args *ActualArguments, i int) ActualArgument {
	if i < len(args.Positional) {
		return args.Positional[i]
	}
	return args.Named[i-len(args.Positional)]
}
