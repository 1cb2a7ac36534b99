package evaluator

import "testing"

func intMember() OverloadMember {
	return OverloadMember{
		ParamTypes: []string{RUNTIME_TYPE_INT},
		Fn: func(ev *Evaluator, args ...Object) Object {
			return &Integer{Value: args[0].(*Integer).Value * 2}
		},
	}
}

func floatMember() OverloadMember {
	return OverloadMember{
		ParamTypes: []string{RUNTIME_TYPE_FLOAT},
		Fn: func(ev *Evaluator, args ...Object) Object {
			return &Float{Value: args[0].(*Float).Value * 2}
		},
	}
}

func TestApplyOverloadSet_PicksExactMatch(t *testing.T) {
	set := NewOverloadSet("double", []OverloadMember{intMember(), floatMember()})
	eval := New()

	result := eval.applyOverloadSet(set, []Object{&Integer{Value: 21}})
	if isError(result) {
		t.Fatalf("unexpected error: %s", result.Inspect())
	}
	i, ok := result.(*Integer)
	if !ok || i.Value != 42 {
		t.Fatalf("expected Integer(42), got %#v", result)
	}

	result = eval.applyOverloadSet(NewOverloadSet("double", []OverloadMember{intMember(), floatMember()}), []Object{&Float{Value: 2.5}})
	f, ok := result.(*Float)
	if !ok || f.Value != 5.0 {
		t.Fatalf("expected Float(5.0), got %#v", result)
	}
}

func TestApplyOverloadSet_WidensIntToFloat(t *testing.T) {
	set := NewOverloadSet("onlyFloat", []OverloadMember{floatMember()})
	eval := New()

	result := eval.applyOverloadSet(set, []Object{&Integer{Value: 3}})
	if isError(result) {
		t.Fatalf("expected Int argument to widen to the Float overload, got error: %s", result.Inspect())
	}
}

func TestApplyOverloadSet_NoMatchReportsError(t *testing.T) {
	set := NewOverloadSet("intOnly", []OverloadMember{intMember()})
	eval := New()

	result := eval.applyOverloadSet(set, []Object{TRUE})
	if !isError(result) {
		t.Fatalf("expected a Boolean argument against an Int-only overload to fail, got %#v", result)
	}
}

func TestApplyOverloadSet_AmbiguousBetweenIdenticalShapes(t *testing.T) {
	set := NewOverloadSet("ambiguous", []OverloadMember{intMember(), intMember()})
	eval := New()

	result := eval.applyOverloadSet(set, []Object{&Integer{Value: 1}})
	if !isError(result) {
		t.Fatalf("expected two identically-shaped Int candidates to be ambiguous, got %#v", result)
	}
}

func TestOverloadSet_ObjectInterface(t *testing.T) {
	set := NewOverloadSet("double", []OverloadMember{intMember(), floatMember()})
	if set.Type() != OVERLOAD_SET_OBJ {
		t.Errorf("expected Type() %q, got %q", OVERLOAD_SET_OBJ, set.Type())
	}
	if set.Inspect() == "" {
		t.Errorf("expected a non-empty Inspect()")
	}
}
