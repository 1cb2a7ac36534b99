package overload

// ParameterWrapper is a normalized view of one formal parameter.
// Equality is by (type, prohibits_null) only, per spec.md §3 — the
// by-ref/params flags distinguish candidates structurally but don't
// participate in wrapper equality.
type ParameterWrapper struct {
	Type          Type
	ProhibitsNull bool
	IsByRef       bool
	IsParamsArray bool
	IsParamsDict  bool

	// Raw is an embedder-owned back-pointer to the original parameter
	// metadata, carried along for conversion context (spec.md §3).
	Raw interface{}
}

// Equal implements the wrapper-equality rule from spec.md §3.
func (p *ParameterWrapper) Equal(o *ParameterWrapper) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.ProhibitsNull != o.ProhibitsNull {
		return false
	}
	if p.Type == nil || o.Type == nil {
		return p.Type == o.Type
	}
	return p.Type.Equal(o.Type)
}

// ArgBuilderKind distinguishes the ways a formal parameter consumes
// (or doesn't consume) a positional slot of the actual-argument vector.
type ArgBuilderKind int

const (
	// BuilderSimple consumes exactly one ordinary positional slot.
	BuilderSimple ArgBuilderKind = iota
	// BuilderInstance supplies the implicit instance argument for a
	// non-static method. The call-site constructor is responsible for
	// synthesizing the corresponding ActualArguments slot (typically
	// ActualArguments.Positional[0]) — the caller's source doesn't
	// type it, but the binder still treats it as a consumed slot.
	BuilderInstance
	// BuilderSpecial supplies a parameter the embedder's
	// map_special_parameters hook claimed (spec.md §4.1 step 2). Like
	// BuilderInstance, the call-site constructor synthesizes its
	// ActualArguments slot.
	BuilderSpecial
	// BuilderParamsArray collects zero or more trailing positional
	// slots into the params-array parameter.
	BuilderParamsArray
)

// Defaulted trailing parameters and by-ref-reduced (hoisted) out
// parameters are never represented as wrappers/builders on the
// candidate that omits them — code-emission (an external collaborator,
// spec.md §1) supplies the default expression or return-side plumbing
// by consulting MethodCandidate.DefaultedSuffix / HoistedOutParams
// against the original RawSignature.

// ArgBuilder is a policy object describing how one formal parameter
// consumes a positional slot of the normalized argument vector. Lower
// Priority means "earlier conversion rule" and wins arg-builder-
// priority tie-breaks (spec.md §4.6 step 4).
type ArgBuilder struct {
	Kind ArgBuilderKind
	// Priority orders conversion rules for the priority-band tie-break.
	// Lower is preferred.
	Priority int
	// ParamIndex is the index into the owning candidate's Parameters
	// slice that this builder services.
	ParamIndex int
	// SourceParamIndex is the index into the original RawSignature.Params
	// this builder was derived from, or -1 if it has no single source
	// parameter (the instance builder, or a synthetic per-element
	// wrapper makeParamsExtended inserted for an expanded params-array).
	// Name binding keys off this instead of builder position, since a
	// params-array expansion can insert any number of synthetic builders
	// ahead of trailing named parameters.
	SourceParamIndex int
}

// ReturnBuilder summarizes how a candidate's return value and any
// by-ref outputs combine into the call's overall result.
type ReturnBuilder struct {
	// CountOutParams is the number of by-ref parameters hoisted out of
	// the argument list by a by-ref-reduced candidate (spec.md §4.1
	// step 4, §4.6 step 3).
	CountOutParams int
	// Raw is an embedder-owned encoding of how to actually combine the
	// return value with the out parameters; opaque to the resolver.
	Raw interface{}
}
