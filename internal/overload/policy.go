package overload

// BindingPolicy is the embedder capability set of spec.md §6. The
// resolver depends on it as a set of functions, not an inheritance
// hierarchy: a binding policy for a new host type system is one struct
// implementing these methods, nothing more.
type BindingPolicy interface {
	// GetNamedArguments returns the call site's named arguments and
	// their names, parallel slices. The default embedder behavior is
	// "none" — policies with no named-argument support may always
	// return (nil, nil).
	GetNamedArguments() (named []interface{}, names []string)

	// CreateActualArguments normalizes named arguments plus whatever
	// splat sequence the embedder is tracking into an ActualArguments
	// record. pre/postSplatLimit bound how much of an unknown-length
	// splat is eagerly expanded (spec.md §4.2). Returning ok=false
	// signals a shape the embedder rejects (e.g. duplicate names it
	// can detect early); the resolver reports InvalidArguments.
	CreateActualArguments(named []interface{}, names []string, preSplatLimit, postSplatLimit int) (args *ActualArguments, ok bool)

	// AllowKeywordArgumentSetting reports whether named arguments may
	// be bound to the given signature's parameters at all. Typical
	// default: constructors only.
	AllowKeywordArgumentSetting(sig *RawSignature) bool

	// MapSpecialParameters lets the embedder pre-map selected
	// parameters (e.g. an implicit context slot) before ordinary
	// mapping fills the remainder. It returns a bitmask of RawParam
	// indices it claimed; ok=false means "nothing claimed, use the
	// default mapping" (prepend the instance parameter for non-static
	// methods, which the resolver already does unconditionally).
	MapSpecialParameters(mapping ParameterMapping) (claimed uint64, ok bool)

	// CanConvertFrom reports whether a value whose runtime/static type
	// is `from` can be supplied to a parameter typed `to` at narrowing
	// level `level`. Must be monotonic in level: anything convertible
	// at level L must remain convertible at any level > L (spec.md §8
	// "Monotonicity in narrowing").
	CanConvertFrom(from Type, to *ParameterWrapper, level NarrowingLevel) bool

	// SelectBestConversionFor compares converting a single actual
	// argument (whose static/limit type is `actualType`) to parameter
	// p1 versus p2, at narrowing level `level`. Called by the resolver
	// for increasing levels until a non-Equivalent verdict is reached.
	SelectBestConversionFor(actualType Type, p1, p2 *ParameterWrapper, level NarrowingLevel) Preference

	// PreferConvert is the host-binder's last-resort numeric
	// preference ordering between two candidate parameter types,
	// called symmetrically by the resolver (spec.md §4.6, §9).
	PreferConvert(t1, t2 Type) Preference

	// ParametersEquivalent lets the embedder override wrapper equality
	// (spec.md §4.6 per-argument comparison, "if parameter wrappers
	// are equal"). Most policies can just compare (Type, ProhibitsNull)
	// via ParameterWrapper.Equal and needn't do more.
	ParametersEquivalent(p1, p2 *ParameterWrapper) bool
}
