package ext

import "github.com/funvibe/funxy/internal/evaluator"

// OverloadCandidate is one Go-interop binding sharing a Funxy name
// with at least one other binding. ParamTypes are the declared Funxy
// types of each candidate's parameters (from FuncSignature.Params[i].
// Type.FunxyType, computed once by the inspector), in the order the
// candidate's generated wrapper expects them.
type OverloadCandidate struct {
	ParamTypes []string
	Variadic   bool
	Fn         BuiltinFunction
}

// NewOverloadedBuiltin builds the Funxy-visible value for a name bound
// by more than one Go-interop candidate. codegen emits one call to
// this per colliding `as:` name instead of writing
// builtins[name] = ... once per candidate, which would silently let
// the last-registered candidate win.
func NewOverloadedBuiltin(name string, candidates []OverloadCandidate) Object {
	members := make([]evaluator.OverloadMember, len(candidates))
	for i, c := range candidates {
		members[i] = evaluator.OverloadMember{ParamTypes: c.ParamTypes, Variadic: c.Variadic, Fn: c.Fn}
	}
	return evaluator.NewOverloadSet(name, members)
}
