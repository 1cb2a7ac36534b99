package overload_test

import (
	"github.com/funvibe/funxy/internal/overload"
)

// fakeType is a minimal overload.Type for tests: named types compare
// by name, nothing else.
type fakeType struct{ name string }

func (t *fakeType) String() string { return t.name }
func (t *fakeType) Equal(o overload.Type) bool {
	other, ok := o.(*fakeType)
	return ok && other.name == t.name
}

var (
	tInt    = &fakeType{"Int"}
	tFloat  = &fakeType{"Float"}
	tString = &fakeType{"String"}
	tAny    = &fakeType{"Any"}
	tSelf   = &fakeType{"Self"}
)

// numericTower ranks widening conversions the way a numeric-tower
// policy would: Int -> Float is a LevelOne widening, anything -> Any is
// a LevelAll boxing, everything else is only convertible to itself at
// LevelNone.
func numericTower(from overload.Type, to *overload.ParameterWrapper, level overload.NarrowingLevel) bool {
	if to.Type == nil {
		return false
	}
	if from.Equal(to.Type) {
		return true
	}
	if level >= overload.LevelOne && from == tInt && to.Type == tFloat {
		return true
	}
	if level >= overload.LevelAll && to.Type == tAny {
		return true
	}
	return false
}

// fakePolicy is a stand-in BindingPolicy with no named/splat/special
// support and numeric-tower conversions, enough to drive the pipeline
// end to end.
type fakePolicy struct {
	named []interface{}
	names []string
}

func (p *fakePolicy) GetNamedArguments() ([]interface{}, []string) {
	return p.named, p.names
}

func (p *fakePolicy) CreateActualArguments(named []interface{}, names []string, pre, post int) (*overload.ActualArguments, bool) {
	args := &overload.ActualArguments{SplatIndex: -1}
	for i, n := range names {
		args.Named = append(args.Named, overload.ActualArgument{Value: named[i], Type: typeOfValue(named[i]), Name: n})
		args.Names = append(args.Names, n)
	}
	return args, true
}

func (p *fakePolicy) AllowKeywordArgumentSetting(sig *overload.RawSignature) bool { return true }

func (p *fakePolicy) MapSpecialParameters(m overload.ParameterMapping) (uint64, bool) {
	return 0, false
}

func (p *fakePolicy) CanConvertFrom(from overload.Type, to *overload.ParameterWrapper, level overload.NarrowingLevel) bool {
	return numericTower(from, to, level)
}

func (p *fakePolicy) SelectBestConversionFor(actualType overload.Type, p1, p2 *overload.ParameterWrapper, level overload.NarrowingLevel) overload.Preference {
	c1 := numericTower(actualType, p1, level)
	c2 := numericTower(actualType, p2, level)
	switch {
	case c1 && !c2:
		return overload.One
	case c2 && !c1:
		return overload.Two
	default:
		return overload.Equivalent
	}
}

func (p *fakePolicy) PreferConvert(t1, t2 overload.Type) overload.Preference {
	return overload.Equivalent
}

func (p *fakePolicy) ParametersEquivalent(p1, p2 *overload.ParameterWrapper) bool {
	return p1.Equal(p2)
}

func typeOfValue(v interface{}) overload.Type {
	switch v.(type) {
	case int:
		return tInt
	case float64:
		return tFloat
	case string:
		return tString
	default:
		return tAny
	}
}

func positional(values ...interface{}) []overload.ActualArgument {
	out := make([]overload.ActualArgument, len(values))
	for i, v := range values {
		out[i] = overload.ActualArgument{Value: v, Type: typeOfValue(v)}
	}
	return out
}

// withPositional builds a policy whose CreateActualArguments ignores
// named/splat handling and just returns fixed positional arguments —
// enough for the candidate-construction and resolver tests, which
// drive ActualArguments directly where they need precise control.
type positionalPolicy struct {
	fakePolicy
	args []overload.ActualArgument
}

func (p *positionalPolicy) CreateActualArguments(named []interface{}, names []string, pre, post int) (*overload.ActualArguments, bool) {
	return &overload.ActualArguments{Positional: p.args, SplatIndex: -1}, true
}
