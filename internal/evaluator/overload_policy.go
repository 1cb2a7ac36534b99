package evaluator

import (
	"strings"

	"github.com/funvibe/funxy/internal/overload"
	"github.com/funvibe/funxy/internal/typesystem"
)

// funxyType adapts a declared parameter type to overload.Type. Two
// forms exist in practice: a full typesystem.Type (from a *Builtin's
// TypeInfo, carrying unions/records/generics) and a bare runtime-type
// name string (from a Go-interop overload group, which only knows the
// declared Funxy type names, e.g. "Int", "String"). Both compare by
// their String() form — the host type system has no richer equality
// function exposed, and String() is already how every other part of
// this codebase normalizes a type for display and cache keys (see
// internal/typesystem's NormalizeUnion, which dedupes by t.String()).
type funxyType struct {
	sys  typesystem.Type
	name string
}

func sysType(t typesystem.Type) overload.Type { return funxyType{sys: t} }
func namedType(name string) overload.Type     { return funxyType{name: name} }

func (t funxyType) String() string {
	if t.sys != nil {
		return t.sys.String()
	}
	return t.name
}

func (t funxyType) Equal(other overload.Type) bool {
	o, ok := other.(funxyType)
	if !ok {
		return false
	}
	return t.String() == o.String()
}

// numeric tower widening order, shared by the builtin-dispatch policy
// and the Go-interop overload groups: a value at an earlier tier
// widens to any later tier at overload.LevelOne.
var numericTower = []string{RUNTIME_TYPE_INT, RUNTIME_TYPE_BIGINT, RUNTIME_TYPE_RATIONAL, RUNTIME_TYPE_FLOAT}

func tierOf(name string) int {
	for i, n := range numericTower {
		if n == name {
			return i
		}
	}
	return -1
}

// widensTo reports whether `from` widens to `to` per the numeric tower
// plus the Char->String promotion (Funxy strings are List<Char>; a
// bare Char argument widens to a one-element String the same way the
// language's own string-interpolation machinery treats chars).
func widensTo(from, to string) bool {
	if from == to {
		return true
	}
	ft, tt := tierOf(from), tierOf(to)
	if ft >= 0 && tt >= 0 && ft < tt {
		return true
	}
	if from == RUNTIME_TYPE_CHAR && to == RUNTIME_TYPE_STRING {
		return true
	}
	return false
}

// funxyBindingPolicy is the overload.BindingPolicy for dispatch among
// Funxy Objects — both internally-constructed overload sets and
// Go-interop overload groups generated by internal/ext. Narrowing is
// driven primarily off getRuntimeTypeName, the same runtime-type-name
// machinery apply.go's ApplyFunction already uses for trait/instance
// dispatch; the one structural exception is unionAccepts, for
// signatures built from a full typesystem.Type.
type funxyBindingPolicy struct {
	e    *Evaluator
	args []Object
}

func (p *funxyBindingPolicy) GetNamedArguments() (named []interface{}, names []string) {
	// Funxy call sites have no named-argument syntax; the lone
	// exception (a trailing RecordInstance used as a keyword bag for
	// constructors) is opted into by AllowKeywordArgumentSetting, and
	// the resolver only ever asks for names when a candidate allows it
	// — for plain overload-set/ext dispatch this is always empty.
	return nil, nil
}

func (p *funxyBindingPolicy) CreateActualArguments(named []interface{}, names []string, preSplatLimit, postSplatLimit int) (*overload.ActualArguments, bool) {
	positional := make([]overload.ActualArgument, len(p.args))
	for i, a := range p.args {
		positional[i] = overload.ActualArgument{Value: a, Type: namedType(getRuntimeTypeName(a))}
	}
	return &overload.ActualArguments{Positional: positional, SplatIndex: -1}, true
}

func (p *funxyBindingPolicy) AllowKeywordArgumentSetting(sig *overload.RawSignature) bool {
	return false
}

func (p *funxyBindingPolicy) MapSpecialParameters(mapping overload.ParameterMapping) (uint64, bool) {
	return 0, false
}

func (p *funxyBindingPolicy) CanConvertFrom(from overload.Type, to *overload.ParameterWrapper, level overload.NarrowingLevel) bool {
	ft, ok1 := from.(funxyType)
	tt, ok2 := to.Type.(funxyType)
	if !ok1 || !ok2 {
		return false
	}
	fromName, toName := baseTypeName(ft.String()), baseTypeName(tt.String())
	if toName == RUNTIME_TYPE_ANY {
		return level >= overload.LevelAll
	}
	if fromName == toName {
		return true
	}
	if level >= overload.LevelOne && widensTo(fromName, toName) {
		return true
	}
	if level >= overload.LevelTwo && unionAccepts(tt, fromName) {
		return true
	}
	return false
}

// unionAccepts reports whether fromName names a member of a TUnion
// parameter type (e.g. a declared Int | String | Nil parameter accepts
// a bare Int argument). Only signatures built from a full
// typesystem.Type via sysType carry this; Go-interop overload groups
// only ever know bare declared names and never satisfy this check.
func unionAccepts(t funxyType, fromName string) bool {
	u, ok := t.sys.(typesystem.TUnion)
	if !ok {
		return false
	}
	for _, member := range u.Types {
		if baseTypeName(member.String()) == fromName {
			return true
		}
	}
	return false
}

// baseTypeName strips a generic argument list (e.g. "List<Int>" ->
// "List"), so a runtime type name like getRuntimeTypeName's bare
// "List" still matches a declared Go-interop parameter type that
// names its element type too. Declared element types themselves are
// never checked this way — only the outermost constructor is, the
// same granularity getRuntimeTypeName itself offers for collections.
func baseTypeName(name string) string {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		return name[:i]
	}
	return name
}

func (p *funxyBindingPolicy) SelectBestConversionFor(actualType overload.Type, p1, p2 *overload.ParameterWrapper, level overload.NarrowingLevel) overload.Preference {
	c1 := p.CanConvertFrom(actualType, p1, level)
	c2 := p.CanConvertFrom(actualType, p2, level)
	switch {
	case c1 && !c2:
		return overload.One
	case c2 && !c1:
		return overload.Two
	default:
		return overload.Equivalent
	}
}

func (p *funxyBindingPolicy) PreferConvert(t1, t2 overload.Type) overload.Preference {
	n1, ok1 := t1.(funxyType)
	n2, ok2 := t2.(funxyType)
	if !ok1 || !ok2 {
		return overload.Equivalent
	}
	r1, r2 := tierOf(n1.String()), tierOf(n2.String())
	if r1 < 0 || r2 < 0 || r1 == r2 {
		return overload.Equivalent
	}
	if r1 < r2 {
		return overload.One
	}
	return overload.Two
}

func (p *funxyBindingPolicy) ParametersEquivalent(p1, p2 *overload.ParameterWrapper) bool {
	return p1.Equal(p2)
}

// RUNTIME_TYPE_ANY names the universal top type: internal/ext's
// inspector declares every boxed/unanalyzable Go parameter as
// FunxyType "HostObject" (see GoTypeRef.FunxyType in
// internal/ext/inspector.go), so that is the name CanConvertFrom
// treats as "accepts anything at LevelAll".
const RUNTIME_TYPE_ANY = "HostObject"
