package evaluator

import (
	"fmt"
	"strings"

	"github.com/funvibe/funxy/internal/overload"
	"github.com/funvibe/funxy/internal/typesystem"
)

// OVERLOAD_SET_OBJ is the Object kind for *OverloadSet values.
const OVERLOAD_SET_OBJ = "OVERLOAD_SET"

// OverloadMember is one candidate of an OverloadSet: a declared
// parameter-type shape plus the function that runs when the resolver
// picks it. ParamTypes are runtime-type names (RUNTIME_TYPE_INT,
// "String", a record's TypeName, ...); if Variadic, the last entry
// names the element type of a trailing params-array.
type OverloadMember struct {
	ParamTypes []string
	Variadic   bool
	Fn         BuiltinFunction
}

// OverloadSet is a Funxy-visible function value backed by more than
// one implementation, disambiguated at call time by
// internal/overload. It is produced two ways: a name collision in a
// generated Go-interop binding file (internal/ext's codegen groups
// same-named bindings instead of letting a later one silently shadow
// an earlier one), or directly via NewOverloadSet for a hand-written
// builtin family.
type OverloadSet struct {
	Name    string
	Members []OverloadMember
}

func NewOverloadSet(name string, members []OverloadMember) *OverloadSet {
	return &OverloadSet{Name: name, Members: members}
}

func (o *OverloadSet) Type() ObjectType { return OVERLOAD_SET_OBJ }
func (o *OverloadSet) Inspect() string  { return fmt.Sprintf("overload set %s/%d", o.Name, len(o.Members)) }
func (o *OverloadSet) RuntimeType() typesystem.Type {
	return typesystem.TCon{Name: "OverloadSet"}
}
func (o *OverloadSet) Hash() uint32 { return hashString(o.Name) }

// signaturesFor builds the overload.RawSignature list for one
// OverloadSet, tagging each with its member index via Method so the
// winning candidate can be mapped back to the OverloadMember to run.
func (o *OverloadSet) signaturesFor() []*overload.RawSignature {
	sigs := make([]*overload.RawSignature, len(o.Members))
	for i, m := range o.Members {
		params := make([]overload.RawParam, len(m.ParamTypes))
		for j, tn := range m.ParamTypes {
			params[j] = overload.RawParam{
				Name:          fmt.Sprintf("a%d", j),
				Type:          namedType(tn),
				IsParamsArray: m.Variadic && j == len(m.ParamTypes)-1,
			}
		}
		sigs[i] = &overload.RawSignature{
			Method:   i,
			Name:     o.Name,
			IsStatic: true,
			Params:   params,
		}
	}
	return sigs
}

// applyOverloadSet resolves the member to run for one call and invokes
// it. Resolution failures are rendered as structured *Error values via
// newErrorWithStack, matching how every other ApplyFunction branch
// reports call-time errors (spec.md's resolver never panics on a
// caller mistake — only reuse of a single-use Resolver is a
// programmer error).
func (e *Evaluator) applyOverloadSet(set *OverloadSet, args []Object) Object {
	policy := &funxyBindingPolicy{e: e, args: args}
	target := overload.NewResolver(policy).Resolve(set.signaturesFor())

	switch target.Kind {
	case overload.TargetSuccess:
		idx := target.Candidate.Signature.Method.(int)
		return set.Members[idx].Fn(e, args...)

	case overload.TargetAmbiguousMatch:
		return e.newErrorWithStack("ambiguous call to %s: %d overloads match equally well", set.Name, len(target.Error.Candidates))

	case overload.TargetIncorrectArgumentCount:
		return e.newErrorWithStack("wrong number of arguments to %s: got %d, expected %s", set.Name, target.Error.Actual, describeArities(target.Error))

	default:
		return e.newErrorWithStack("no overload of %s matches argument types (%s)", set.Name, describeArgTypes(args))
	}
}

func describeArgTypes(args []Object) string {
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = getRuntimeTypeName(a)
	}
	return strings.Join(names, ", ")
}

// describeArities renders an ErrorInfo's ExpectedArities/ArityOrMore
// (overload.ErrIncorrectArgumentCount) into a short human-readable list.
func describeArities(info *overload.ErrorInfo) string {
	parts := make([]string, len(info.ExpectedArities))
	for i, a := range info.ExpectedArities {
		parts[i] = fmt.Sprintf("%d", a)
	}
	joined := strings.Join(parts, " or ")
	if info.ArityOrMore {
		joined += " or more"
	}
	return joined
}
