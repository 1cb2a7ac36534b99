package overload_test

import (
	"testing"

	"github.com/funvibe/funxy/internal/overload"
)

func resolverWith(args []overload.ActualArgument) *overload.Resolver {
	return overload.NewResolver(&positionalPolicy{args: args})
}

func TestResolve_ExactMatchWins(t *testing.T) {
	intSig := sig("f", true, overload.RawParam{Name: "a", Type: tInt})
	stringSig := sig("f", true, overload.RawParam{Name: "a", Type: tString})

	r := resolverWith(positional(5))
	target := r.Resolve([]*overload.RawSignature{intSig, stringSig})

	if target.Kind != overload.TargetSuccess {
		t.Fatalf("expected success, got %s (%v)", target.Kind, target.Error)
	}
	if target.Candidate.Signature != intSig {
		t.Fatalf("expected the Int overload to win")
	}
}

func TestResolve_NoApplicableCandidate(t *testing.T) {
	stringSig := sig("f", true, overload.RawParam{Name: "a", Type: tString})

	r := resolverWith(positional(5))
	target := r.Resolve([]*overload.RawSignature{stringSig})

	if target.Kind != overload.TargetNoMatch {
		t.Fatalf("expected NoMatch, got %s", target.Kind)
	}
}

func TestResolve_WideningPrefersNarrowerLevel(t *testing.T) {
	// Only the Float overload exists; an Int argument must still widen
	// and succeed at LevelOne.
	floatSig := sig("f", true, overload.RawParam{Name: "a", Type: tFloat})

	r := resolverWith(positional(5))
	target := r.Resolve([]*overload.RawSignature{floatSig})

	if target.Kind != overload.TargetSuccess {
		t.Fatalf("expected success via widening, got %s (%v)", target.Kind, target.Error)
	}
}

func TestResolve_AmbiguousWhenNoPreferenceDecides(t *testing.T) {
	a := sig("f", true, overload.RawParam{Name: "a", Type: tAny})
	b := sig("f", true, overload.RawParam{Name: "a", Type: tAny})

	r := resolverWith(positional("x"))
	target := r.Resolve([]*overload.RawSignature{a, b})

	if target.Kind != overload.TargetAmbiguousMatch {
		t.Fatalf("expected AmbiguousMatch, got %s", target.Kind)
	}
}

func TestResolve_SingleUsePanicsOnSecondCall(t *testing.T) {
	intSig := sig("f", true, overload.RawParam{Name: "a", Type: tInt})
	r := resolverWith(positional(5))
	r.Resolve([]*overload.RawSignature{intSig})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on second Resolve call")
		}
	}()
	r.Resolve([]*overload.RawSignature{intSig})
}

func TestResolve_IncorrectArgumentCount(t *testing.T) {
	twoArgSig := sig("f", true,
		overload.RawParam{Name: "a", Type: tInt},
		overload.RawParam{Name: "b", Type: tInt},
	)

	r := resolverWith(positional(5))
	target := r.Resolve([]*overload.RawSignature{twoArgSig})

	if target.Kind != overload.TargetIncorrectArgumentCount {
		t.Fatalf("expected IncorrectArgumentCount, got %s (%v)", target.Kind, target.Error)
	}
	if target.Error.Actual != 1 {
		t.Fatalf("expected Actual=1, got %d", target.Error.Actual)
	}
	if len(target.Error.ExpectedArities) != 1 || target.Error.ExpectedArities[0] != 2 {
		t.Fatalf("expected ExpectedArities=[2], got %v", target.Error.ExpectedArities)
	}
	if target.Error.ArityOrMore {
		t.Fatalf("expected ArityOrMore=false with no variadic candidate")
	}
}

func TestResolve_DefaultCandidateMatchesShorterArity(t *testing.T) {
	withDefault := sig("f", true,
		overload.RawParam{Name: "a", Type: tInt},
		overload.RawParam{Name: "b", Type: tInt, HasDefault: true},
	)

	r := resolverWith(positional(5))
	target := r.Resolve([]*overload.RawSignature{withDefault})

	if target.Kind != overload.TargetSuccess {
		t.Fatalf("expected success matching the default-candidate arity, got %s (%v)", target.Kind, target.Error)
	}
	if target.Candidate.DefaultedSuffix != 1 {
		t.Fatalf("expected the one-arg default candidate to win, got DefaultedSuffix=%d", target.Candidate.DefaultedSuffix)
	}
}
