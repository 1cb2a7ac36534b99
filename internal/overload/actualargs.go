package overload

import "fmt"

// ActualArgument is one normalized call-site argument: its value (an
// embedder-owned opaque handle — a Funxy Object, a reflect.Value, etc.)
// together with the static/runtime "limit type" the applicability and
// preference stages reason about.
type ActualArgument struct {
	Value interface{}
	Type  Type
	// Name is non-empty for an argument supplied by keyword.
	Name string
}

// SplattedItemFunc lazily fetches a collapsed-tail element by index,
// relative to the start of the splat sequence (spec.md §4.2,
// get_splatted_item). It is called only for indices within
// [0, CollapsedCount).
type SplattedItemFunc func(i int) (Type, interface{}, bool)

// ActualArguments is the normalized record produced by stage 2
// (spec.md §3). Positional and named arguments are stored separately;
// Names pairs one-to-one with Named.
type ActualArguments struct {
	Positional []ActualArgument
	Named      []ActualArgument
	Names      []string

	// SplatIndex is the position at which the splat sequence was
	// spliced, or -1 if the call has no splat.
	SplatIndex int
	// CollapsedCount is the number of splat elements beyond the
	// expansion limit that remain as an unexpanded tail.
	CollapsedCount int
	// VisibleCount is what the caller source wrote, for diagnostics.
	VisibleCount int

	// GetSplattedItem fetches a collapsed-tail element; nil if
	// CollapsedCount is 0.
	GetSplattedItem SplattedItemFunc
}

// Count is len(Positional) + len(Named), the invariant from spec.md §3.
func (a *ActualArguments) Count() int {
	if a == nil {
		return 0
	}
	return len(a.Positional) + len(a.Named)
}

// Validate checks the invariants spec.md §3 lists for ActualArguments.
func (a *ActualArguments) Validate() error {
	if a.SplatIndex >= 0 && (a.SplatIndex > a.Count()) {
		return fmt.Errorf("overload: splat_index %d out of range for count %d", a.SplatIndex, a.Count())
	}
	if a.CollapsedCount < 0 {
		return fmt.Errorf("overload: collapsed_count %d must be >= 0", a.CollapsedCount)
	}
	seen := make(map[string]bool, len(a.Names))
	for _, n := range a.Names {
		if seen[n] {
			return fmt.Errorf("overload: duplicate named argument %q", n)
		}
		seen[n] = true
	}
	return nil
}

// splatLimits computes (pre_splat_limit, post_splat_limit) from the
// variadic pool, per spec.md §4.2. Without variadic candidates both
// limits are unbounded (expand the splat fully), signaled by -1.
func splatLimits(paramsPool []*MethodCandidate, maxArity int) (pre, post int) {
	if len(paramsPool) == 0 {
		return -1, -1
	}

	maxParamsArrayIndex := -1
	maxTrailingAfterArray := 0
	for _, c := range paramsPool {
		if c.ParamsArrayIndex < 0 {
			continue
		}
		if c.ParamsArrayIndex > maxParamsArrayIndex {
			maxParamsArrayIndex = c.ParamsArrayIndex
		}
		trailing := c.ParameterCount - c.ParamsArrayIndex - 1
		if trailing > maxTrailingAfterArray {
			maxTrailingAfterArray = trailing
		}
	}
	if maxParamsArrayIndex < 0 {
		return -1, -1
	}

	// The "+1" is mandatory: at least one expanded element must
	// precede the splat index so collapsed-tail convertibility can be
	// tested against a concrete params-array parameter (spec.md §4.2).
	pre = 1 + maxParamsArrayIndex
	post = maxTrailingAfterArray
	if pre+post < maxArity {
		pre = maxArity - post
	}
	return pre, post
}
