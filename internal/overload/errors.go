package overload

import "fmt"

// BindingTarget is the tagged result of a resolution attempt (spec.md
// §5). Exactly one of Success/failure fields is meaningful, selected
// by Kind.
type BindingTarget struct {
	Kind BindingTargetKind

	// Success fields.
	Candidate *MethodCandidate
	Arguments *ActualArguments
	// Restrictions are the runtime type restrictions computed for the
	// winning candidate (spec.md §4.7); nil when none apply.
	Restrictions []*RuntimeRestriction

	// Error carries the structured diagnostic for every non-success Kind.
	Error *ErrorInfo
}

// BindingTargetKind enumerates the possible resolve_overload outcomes.
type BindingTargetKind int

const (
	TargetSuccess BindingTargetKind = iota
	TargetNoMatch
	TargetAmbiguousMatch
	TargetInvalidArguments
	// TargetIncorrectArgumentCount: the call's actual argument count
	// matches no candidate's effective arity and no variadic candidate
	// can be specialized to it (spec.md §3, §4.3, §6).
	TargetIncorrectArgumentCount
)

func (k BindingTargetKind) String() string {
	switch k {
	case TargetSuccess:
		return "Success"
	case TargetNoMatch:
		return "NoMatch"
	case TargetAmbiguousMatch:
		return "AmbiguousMatch"
	case TargetInvalidArguments:
		return "InvalidArguments"
	case TargetIncorrectArgumentCount:
		return "IncorrectArgumentCount"
	default:
		return "Unknown"
	}
}

// ErrorInfoKind distinguishes the structured error shapes of spec.md §5.
type ErrorInfoKind int

const (
	// ErrNoApplicableCandidate: no candidate in any arity bucket
	// accepted the call at any narrowing level.
	ErrNoApplicableCandidate ErrorInfoKind = iota
	// ErrAmbiguousCandidates: two or more candidates survived
	// preference selection with no winner.
	ErrAmbiguousCandidates
	// ErrDuplicateKeyword: the same name was used for two named
	// arguments (suppressed if some other branch still resolves).
	ErrDuplicateKeyword
	// ErrUnassignableKeyword: a named argument's name does not match
	// any parameter name of the candidate under consideration.
	ErrUnassignableKeyword
	// ErrConversionFailure: a specific argument could not convert to a
	// specific parameter at any narrowing level.
	ErrConversionFailure
	// ErrIncorrectArgumentCount: no candidate-set bucket exists for the
	// call's actual argument count.
	ErrIncorrectArgumentCount
)

// ConversionFailure records one argument/parameter pair that failed to
// convert, for diagnostics (spec.md §4.4).
type ConversionFailure struct {
	Candidate   *MethodCandidate
	ArgIndex    int
	Argument    ActualArgument
	ParamIndex  int
	Parameter   *ParameterWrapper
}

// ErrorInfo is the structured diagnostic payload spec.md §5 requires
// instead of an unstructured message string.
type ErrorInfo struct {
	Kind ErrorInfoKind

	// Candidates lists every candidate considered relevant to the
	// failure (all of them for NoApplicableCandidate/Ambiguous, the
	// one candidate under consideration for Duplicate/Unassignable
	// keyword).
	Candidates []*MethodCandidate

	// Failures is populated for ErrNoApplicableCandidate: the specific
	// conversion that failed for each rejected candidate.
	Failures []ConversionFailure

	// Keyword is populated for ErrDuplicateKeyword/ErrUnassignableKeyword.
	Keyword string

	// ExpectedArities and Actual are populated for
	// ErrIncorrectArgumentCount (spec.md §4.3's expected_arities[]/actual):
	// ExpectedArities is the sorted set of bucket arities that do have
	// candidates. ArityOrMore is the spec's "+∞" sentinel, set when a
	// variadic candidate pool exists — meaning any arity at least as
	// large as the greatest bucket arity could, in principle, have been
	// served by specializing a variadic candidate, just not this one
	// (it was already tried and didn't yield one, e.g. a collapsed
	// splat that still left an unservable tail).
	ExpectedArities []int
	Actual          int
	ArityOrMore     bool
}

func (e *ErrorInfo) Error() string {
	if e == nil {
		return "overload: <nil error>"
	}
	switch e.Kind {
	case ErrNoApplicableCandidate:
		return fmt.Sprintf("overload: no applicable candidate among %d", len(e.Candidates))
	case ErrAmbiguousCandidates:
		return fmt.Sprintf("overload: ambiguous match among %d candidates", len(e.Candidates))
	case ErrDuplicateKeyword:
		return fmt.Sprintf("overload: duplicate keyword argument %q", e.Keyword)
	case ErrUnassignableKeyword:
		return fmt.Sprintf("overload: keyword argument %q does not match any parameter", e.Keyword)
	case ErrConversionFailure:
		if len(e.Failures) > 0 {
			f := e.Failures[0]
			return fmt.Sprintf("overload: argument %d cannot convert to parameter %d", f.ArgIndex, f.ParamIndex)
		}
		return "overload: conversion failure"
	case ErrIncorrectArgumentCount:
		if e.ArityOrMore {
			return fmt.Sprintf("overload: %d arguments given, expected one of %v or more", e.Actual, e.ExpectedArities)
		}
		return fmt.Sprintf("overload: %d arguments given, expected one of %v", e.Actual, e.ExpectedArities)
	default:
		return "overload: unknown error"
	}
}

// makeInvalidArgumentsError wraps a BindingPolicy.CreateActualArguments
// rejection into a BindingTarget (spec.md §4.2 "ok=false").
func makeInvalidArgumentsError() *BindingTarget {
	return &BindingTarget{
		Kind:  TargetInvalidArguments,
		Error: &ErrorInfo{Kind: ErrNoApplicableCandidate},
	}
}

func makeNoApplicableCandidateError(candidates []*MethodCandidate, failures []ConversionFailure) *BindingTarget {
	return &BindingTarget{
		Kind: TargetNoMatch,
		Error: &ErrorInfo{
			Kind:       ErrNoApplicableCandidate,
			Candidates: candidates,
			Failures:   failures,
		},
	}
}

// makeIncorrectArgumentCountError reports spec.md §4.3's "else" branch:
// the call's actual argument count matched no candidate-set bucket.
// arities is the sorted set of bucket arities that do have candidates;
// arityOrMore is the "+∞" sentinel, set when a variadic candidate pool
// exists.
func makeIncorrectArgumentCountError(arities []int, arityOrMore bool, actual int) *BindingTarget {
	return &BindingTarget{
		Kind: TargetIncorrectArgumentCount,
		Error: &ErrorInfo{
			Kind:            ErrIncorrectArgumentCount,
			ExpectedArities: arities,
			ArityOrMore:     arityOrMore,
			Actual:          actual,
		},
	}
}

func makeAmbiguousError(candidates []*MethodCandidate) *BindingTarget {
	return &BindingTarget{
		Kind: TargetAmbiguousMatch,
		Error: &ErrorInfo{
			Kind:       ErrAmbiguousCandidates,
			Candidates: candidates,
		},
	}
}
