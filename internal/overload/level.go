// Package overload implements the method overload resolver: given a
// call site described as positional, named, and splat arguments, and a
// set of candidate signatures pulled from a host type system, it picks
// the single most applicable candidate or reports why none qualifies.
//
// The resolver knows nothing about what "convertible" or "preferred"
// means for any particular host type system — that knowledge lives
// entirely behind the BindingPolicy interface (policy.go), supplied by
// an embedder such as internal/evaluator's Funxy binding policy.
package overload

import "fmt"

// NarrowingLevel is a tier in the conversion lattice. Higher levels
// admit more, and more lossy, conversions. Only ordering is relied on;
// the resolver never special-cases a particular level's meaning.
type NarrowingLevel int

const (
	// LevelNone accepts only the tightest conversions (typically:
	// identity and exact reference-type matches).
	LevelNone NarrowingLevel = iota
	// LevelOne widens to the next tier (typically: numeric widening).
	LevelOne
	// LevelTwo widens further (typically: user-defined/structural
	// conversions).
	LevelTwo
	// LevelAll accepts everything the policy is willing to allow,
	// including boxing to the host type system's universal top type.
	LevelAll
)

func (l NarrowingLevel) String() string {
	switch l {
	case LevelNone:
		return "None"
	case LevelOne:
		return "One"
	case LevelTwo:
		return "Two"
	case LevelAll:
		return "All"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}
