package overload_test

import (
	"testing"

	"github.com/funvibe/funxy/internal/overload"
)

// paramsArrayThenNamedPolicy builds a fixed ActualArguments with two
// positional arguments (to fill a params-array) plus one keyword
// argument, regardless of what the resolver passes to
// CreateActualArguments.
type paramsArrayThenNamedPolicy struct {
	fakePolicy
}

func (p *paramsArrayThenNamedPolicy) CreateActualArguments(named []interface{}, names []string, pre, post int) (*overload.ActualArguments, bool) {
	return &overload.ActualArguments{
		Positional: positional(1, 2),
		Named:      []overload.ActualArgument{{Value: "hi", Type: tString, Name: "tail"}},
		Names:      []string{"tail"},
		SplatIndex: -1,
	}, true
}

// TestResolve_NameBindingAfterParamsArrayExpansion is a regression test
// for builderForParam: a signature with a trailing named parameter
// after a params-array must still bind that name to the right wrapper
// once the params-array has been expanded to fill extra positional
// slots (candidate.go's makeParamsExtended inserts synthetic
// per-element builders ahead of the trailing parameter).
func TestResolve_NameBindingAfterParamsArrayExpansion(t *testing.T) {
	variadic := sig("f", true,
		overload.RawParam{Name: "rest", Type: tInt, IsParamsArray: true},
		overload.RawParam{Name: "tail", Type: tString},
	)
	// Forces an arity-3 bucket to exist so the params-array candidate
	// gets specialized to 3 slots (2 expanded rest elements + tail).
	fixed := sig("fixed3", true,
		overload.RawParam{Name: "a", Type: tInt},
		overload.RawParam{Name: "b", Type: tInt},
		overload.RawParam{Name: "c", Type: tString},
	)

	policy := &paramsArrayThenNamedPolicy{fakePolicy{named: []interface{}{"hi"}, names: []string{"tail"}}}
	r := overload.NewResolver(policy)
	target := r.Resolve([]*overload.RawSignature{variadic, fixed})

	if target.Kind != overload.TargetSuccess {
		t.Fatalf("expected success, got %s (%v)", target.Kind, target.Error)
	}
	if target.Candidate.Signature != variadic {
		t.Fatalf("expected the params-array overload to win")
	}
	// A wrong binderForParam mapping points "tail" at a synthetic
	// Int-typed element wrapper instead of the trailing String
	// parameter, which would fail CanConvertFrom for every candidate
	// and turn this into a TargetNoMatch instead of TargetSuccess above
	// — but pin down the wrapper shape too, for a sharper failure
	// message if this regresses.
	if got := len(target.Candidate.Parameters); got != 3 || target.Candidate.Parameters[2].Type != tString {
		t.Fatalf("expected a 3-parameter candidate ending in String, got %v", target.Candidate.Parameters)
	}
}
