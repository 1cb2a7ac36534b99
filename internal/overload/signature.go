package overload

// RawParam describes one formal parameter of a raw, un-normalized
// signature, as supplied by the embedder (e.g. derived from Go
// reflection or from internal/ext's FuncSignature/MethodInfo).
type RawParam struct {
	Name string
	Type Type

	ProhibitsNull bool
	IsByRef       bool
	// IsOut marks a by-ref parameter that carries no meaningful input
	// value — only by-ref-reduced candidates consult this.
	IsOut bool
	// IsParamsArray marks a trailing positional variadic tail.
	IsParamsArray bool
	// IsParamsDict marks a trailing named/dictionary variadic tail.
	IsParamsDict bool
	// HasDefault marks an optional parameter with a caller-omittable
	// default value.
	HasDefault bool

	// Raw is an embedder-owned back-pointer carried into the resulting
	// ParameterWrapper.
	Raw interface{}
}

// RawSignature is the candidate-construction input for one host
// signature (spec.md §4.1). C-style variadic signatures and signatures
// with unresolved generic parameters are rejected by setting the
// corresponding flag; BuildCandidates skips them silently.
type RawSignature struct {
	// Method is an embedder-owned back-pointer to the underlying
	// method/function metadata. It is carried, unexamined, into every
	// MethodCandidate derived from this signature and into
	// BindingTarget.Success on a successful resolution.
	Method interface{}

	// Name is the candidate's display name, used only for diagnostics
	// (e.g. AmbiguousMatch's stringified signature list).
	Name string

	IsStatic      bool
	DeclaringType Type // used for the implicit instance parameter

	Params []RawParam

	// IsVariadicCStyle marks a C-style (printf-like) calling
	// convention; such signatures cannot be bound and are skipped.
	IsVariadicCStyle bool
	// HasUnresolvedGeneric marks a signature with unbound generic type
	// parameters; generic-argument inference is out of scope (spec.md
	// §1 Non-goals), so such signatures are skipped.
	HasUnresolvedGeneric bool

	// IsPrivate feeds the accessibility tie-break (spec.md §4.6 step 1).
	IsPrivate bool
}

// ParameterMapping is passed to BindingPolicy.MapSpecialParameters so
// the embedder can claim parameters before ordinary mapping runs.
type ParameterMapping struct {
	Signature *RawSignature
	// ArgNames is the caller's argument-name list, supplied so the
	// embedder can special-case named parameters (e.g. an implicit
	// context slot that should only be consumed when not named
	// explicitly by the caller).
	ArgNames []string
}
