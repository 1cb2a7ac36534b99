package overload_test

import (
	"testing"

	"github.com/funvibe/funxy/internal/overload"
)

var (
	tAmbigArg = &fakeType{"AmbigArg"}
	tWinArg   = &fakeType{"WinArg"}
	tWin      = &fakeType{"Win"}
	tLose     = &fakeType{"Lose"}
)

// preferenceFlipPolicy forces every parameter pair to be compared (never
// equivalent) and drives SelectBestConversionFor off the actual
// argument's type alone: the first argument always reports Ambiguous,
// the second always reports a decisive winner. This isolates
// comparePreferred's cross-argument aggregation from any particular
// conversion policy.
type preferenceFlipPolicy struct {
	positionalPolicy
}

func (p *preferenceFlipPolicy) CanConvertFrom(from overload.Type, to *overload.ParameterWrapper, level overload.NarrowingLevel) bool {
	return true
}

func (p *preferenceFlipPolicy) ParametersEquivalent(p1, p2 *overload.ParameterWrapper) bool {
	return false
}

func (p *preferenceFlipPolicy) SelectBestConversionFor(actualType overload.Type, p1, p2 *overload.ParameterWrapper, level overload.NarrowingLevel) overload.Preference {
	switch actualType {
	case tAmbigArg:
		return overload.Ambiguous
	case tWinArg:
		if p1.Type == tWin {
			return overload.One
		}
		return overload.Two
	default:
		return overload.Equivalent
	}
}

// TestResolve_DecisiveVoteOverridesPerArgumentAmbiguous is a regression
// test for comparePreferred: a per-argument Ambiguous verdict from one
// argument must not veto a decisive verdict from another, in either
// argument order (argIdx iterates a map, so evaluation order is not
// guaranteed).
func TestResolve_DecisiveVoteOverridesPerArgumentAmbiguous(t *testing.T) {
	winner := sig("f", true,
		overload.RawParam{Name: "a", Type: tAmbigArg},
		overload.RawParam{Name: "b", Type: tWin},
	)
	loser := sig("f", true,
		overload.RawParam{Name: "a", Type: tAmbigArg},
		overload.RawParam{Name: "b", Type: tLose},
	)

	args := []overload.ActualArgument{
		{Value: 1, Type: tAmbigArg},
		{Value: 2, Type: tWinArg},
	}
	policy := &preferenceFlipPolicy{positionalPolicy{args: args}}
	r := overload.NewResolver(policy)

	target := r.Resolve([]*overload.RawSignature{winner, loser})
	if target.Kind != overload.TargetSuccess {
		t.Fatalf("expected the decisive second argument to win despite the first argument's reported ambiguity, got %s (%v)", target.Kind, target.Error)
	}
	if target.Candidate.Signature != winner {
		t.Fatalf("expected the Win-typed candidate to win")
	}
}
