package overload_test

import (
	"testing"

	"github.com/funvibe/funxy/internal/overload"
)

func sig(name string, static bool, params ...overload.RawParam) *overload.RawSignature {
	return &overload.RawSignature{Name: name, IsStatic: static, DeclaringType: tSelf, Params: params}
}

func TestBuildCandidateSets_SimpleArityBucketing(t *testing.T) {
	one := sig("f1", true, overload.RawParam{Name: "a", Type: tInt})
	two := sig("f2", true, overload.RawParam{Name: "a", Type: tInt}, overload.RawParam{Name: "b", Type: tString})

	buckets, pool := overload.BuildCandidateSets([]*overload.RawSignature{one, two}, nil, &fakePolicy{})
	if len(pool) != 0 {
		t.Fatalf("expected no variadic pool, got %d", len(pool))
	}
	if got := len(buckets[1].Candidates); got != 1 {
		t.Fatalf("arity 1 bucket: expected 1 candidate, got %d", got)
	}
	if got := len(buckets[2].Candidates); got != 1 {
		t.Fatalf("arity 2 bucket: expected 1 candidate, got %d", got)
	}
}

func TestBuildCandidateSets_InstanceParameterPrepended(t *testing.T) {
	method := sig("m", false, overload.RawParam{Name: "a", Type: tInt})
	buckets, _ := overload.BuildCandidateSets([]*overload.RawSignature{method}, nil, &fakePolicy{})

	// One implicit instance slot + one declared parameter = arity 2.
	set, ok := buckets[2]
	if !ok || len(set.Candidates) != 1 {
		t.Fatalf("expected one candidate at arity 2, buckets=%v", buckets)
	}
}

func TestBuildCandidateSets_DefaultSuffixCandidates(t *testing.T) {
	s := sig("withDefaults", true,
		overload.RawParam{Name: "a", Type: tInt},
		overload.RawParam{Name: "b", Type: tInt, HasDefault: true},
		overload.RawParam{Name: "c", Type: tInt, HasDefault: true},
	)
	buckets, _ := overload.BuildCandidateSets([]*overload.RawSignature{s}, nil, &fakePolicy{})

	for _, arity := range []int{1, 2, 3} {
		if buckets[arity] == nil || len(buckets[arity].Candidates) != 1 {
			t.Errorf("expected exactly one candidate at arity %d, got %v", arity, buckets[arity])
		}
	}
}

func TestBuildCandidateSets_ParamsArrayExpandsToBucketArities(t *testing.T) {
	variadic := sig("variadic", true, overload.RawParam{Name: "rest", Type: tInt, IsParamsArray: true})
	fixed := sig("fixed3", true,
		overload.RawParam{Name: "a", Type: tInt},
		overload.RawParam{Name: "b", Type: tInt},
		overload.RawParam{Name: "c", Type: tInt},
	)

	buckets, pool := overload.BuildCandidateSets([]*overload.RawSignature{variadic, fixed}, nil, &fakePolicy{})
	if len(pool) != 1 {
		t.Fatalf("expected 1 pooled variadic candidate, got %d", len(pool))
	}
	// arity 3 must now have both the fixed candidate and a
	// params-array candidate expanded to 3 slots.
	if got := len(buckets[3].Candidates); got != 2 {
		t.Fatalf("expected 2 candidates at arity 3, got %d", got)
	}
}

func TestBuildCandidateSets_SkipsUnresolvedGenericAndCStyleVariadic(t *testing.T) {
	generic := sig("g", true, overload.RawParam{Name: "a", Type: tInt})
	generic.HasUnresolvedGeneric = true
	cstyle := sig("printfLike", true, overload.RawParam{Name: "fmt", Type: tString})
	cstyle.IsVariadicCStyle = true

	buckets, _ := overload.BuildCandidateSets([]*overload.RawSignature{generic, cstyle}, nil, &fakePolicy{})
	if len(buckets) != 0 {
		t.Fatalf("expected no candidates at all, got %v", buckets)
	}
}

func TestCandidateSet_IsEffectivelyEmpty(t *testing.T) {
	var nilSet *overload.CandidateSet
	if !nilSet.IsEffectivelyEmpty() {
		t.Fatal("nil set should be effectively empty")
	}
	empty := &overload.CandidateSet{}
	if !empty.IsEffectivelyEmpty() {
		t.Fatal("empty candidate list should be effectively empty")
	}
}
