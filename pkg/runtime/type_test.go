package runtime

import (
	"strings"
	"testing"
)

func mroNames(t *Type) string {
	names := make([]string, len(t.MRO()))
	for i, c := range t.MRO() {
		names[i] = c.Name
	}
	return strings.Join(names, " ")
}

func constant(s string) *FunctionValue {
	return NewFunction("who", func(*NativeCallContext, []Value) (Value, error) { return Str(s), nil })
}

func TestDiamondMRO(t *testing.T) {
	a, _ := NewType("A", nil, nil)
	b, _ := NewType("B", []*Type{a}, nil)
	c, _ := NewType("C", []*Type{a}, nil)
	d, err := NewType("D", []*Type{b, c}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := mroNames(d); got != "D B C A object" {
		t.Fatalf("unexpected MRO:\nexpected: %s\ngot: %s", "D B C A object", got)
	}
}

func TestInconsistentMRO(t *testing.T) {
	a, _ := NewType("A", nil, nil)
	b, _ := NewType("B", nil, nil)
	x, _ := NewType("X", []*Type{a, b}, nil)
	y, _ := NewType("Y", []*Type{b, a}, nil)
	_, err := NewType("Z", []*Type{x, y}, nil)
	want := "TypeError: Cannot create a consistent method resolution order (MRO) for bases X, Y"
	if exc, ok := AsException(err); !ok || exc.Error() != want {
		t.Fatalf("unexpected error:\nexpected: %s\ngot: %v", want, err)
	}
	_, err = NewType("W", []*Type{a, a}, nil)
	if exc, ok := AsException(err); !ok || exc.Error() != "TypeError: duplicate base class A" {
		t.Fatalf("expected duplicate base error, got %v", err)
	}
}

func TestSuperSkipsToNextInMRO(t *testing.T) {
	a, _ := NewType("A", nil, map[string]Value{"who": constant("A")})
	b, _ := NewType("B", []*Type{a}, map[string]Value{"who": constant("B")})
	c, _ := NewType("C", []*Type{a}, map[string]Value{"who": constant("C")})
	d, _ := NewType("D", []*Type{b, c}, nil)
	obj, err := Call(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, err := NewSuper(b, obj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := CallMethod(s, "who")
	if err != nil || ReprOf(got) != "'C'" {
		t.Fatalf("expected super(B, obj) to reach C, got %v (%v)", got, err)
	}
	s, _ = NewSuper(a, obj)
	_, err = CallMethod(s, "who")
	if exc, ok := AsException(err); !ok || exc.Error() != "AttributeError: 'super' object has no attribute 'who'" {
		t.Fatalf("expected AttributeError past the end of the MRO, got %v", err)
	}
	if _, err := NewSuper(b, Int(1)); !IsException(err, TypeError) {
		t.Fatalf("expected TypeError for an unrelated object, got %v", err)
	}
}

type fakeFrame struct {
	args  []Value
	class Value
	// cell reports a class cell even when class is nil.
	cell bool
}

func (f fakeFrame) Argument(i int) (Value, bool) {
	if i < len(f.args) {
		return f.args[i], true
	}
	return nil, false
}

func (f fakeFrame) ClassScope() (Value, bool) { return f.class, f.cell || f.class != nil }

func TestSuperFromFrame(t *testing.T) {
	a, _ := NewType("A", nil, map[string]Value{"who": constant("A")})
	b, _ := NewType("B", []*Type{a}, nil)
	obj, _ := Call(b)

	s, err := SuperFromFrame(fakeFrame{args: []Value{obj}, class: b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := CallMethod(s, "who"); ReprOf(got) != "'A'" {
		t.Fatalf("expected A, got %v", got)
	}
	cases := []struct {
		frame CallerFrame
		want  string
	}{
		{nil, "RuntimeError: super(): no current frame"},
		{fakeFrame{class: b}, "RuntimeError: super(): no arguments"},
		{fakeFrame{args: []Value{obj}}, "RuntimeError: super(): __class__ cell not found"},
		{fakeFrame{args: []Value{obj}, cell: true}, "RuntimeError: super(): empty __class__ cell"},
		{fakeFrame{args: []Value{obj}, class: Int(1)}, "RuntimeError: super(): __class__ is not a type (int)"},
	}
	for _, tc := range cases {
		_, err := SuperFromFrame(tc.frame)
		if exc, ok := AsException(err); !ok || exc.Error() != tc.want {
			t.Fatalf("unexpected error:\nexpected: %s\ngot: %v", tc.want, err)
		}
	}
}

func TestClassmethodThroughSuper(t *testing.T) {
	factory := NewFunction("make", func(_ *NativeCallContext, args []Value) (Value, error) {
		return Str(args[0].(*Type).Name), nil
	})
	a, _ := NewType("A", nil, map[string]Value{"make": ClassMethodValue{Func: factory}})
	b, _ := NewType("B", []*Type{a}, nil)
	s, _ := NewSuper(b, b)
	got, err := CallMethod(s, "make")
	if err != nil || ReprOf(got) != "'B'" {
		t.Fatalf("expected the classmethod to bind to B, got %v (%v)", got, err)
	}
}

func TestSuperBindsDescriptorsWithOwningClass(t *testing.T) {
	var gotOwner Value
	get := NewFunction("__get__", func(_ *NativeCallContext, args []Value) (Value, error) {
		gotOwner = args[2]
		return Str("described"), nil
	})
	descr, err := NewType("Descr", nil, map[string]Value{"__get__": get})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, err := Call(descr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, _ := NewType("A", nil, map[string]Value{"attr": d})
	b, _ := NewType("B", []*Type{a}, nil)
	c, _ := NewType("C", []*Type{b}, nil)
	obj, _ := Call(c)
	s, err := NewSuper(b, obj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := GetAttr(s, "attr")
	if err != nil || ReprOf(v) != "'described'" {
		t.Fatalf("expected the descriptor result, got %v (%v)", v, err)
	}
	if gotOwner != Value(a) {
		t.Fatalf("unexpected owner:\nexpected: %s\ngot: %s", ReprOf(a), ReprOf(gotOwner))
	}
}

func TestEqWithoutHashIsUnhashable(t *testing.T) {
	eq := NewFunction("__eq__", func(*NativeCallContext, []Value) (Value, error) { return True, nil })
	cls, _ := NewType("P", nil, map[string]Value{"__eq__": eq})
	obj, _ := Call(cls)
	_, err := Hash(obj)
	if exc, ok := AsException(err); !ok || exc.Error() != "TypeError: unhashable type: 'P'" {
		t.Fatalf("expected unhashable error, got %v", err)
	}
	bad := NewFunction("__hash__", func(*NativeCallContext, []Value) (Value, error) { return Str("x"), nil })
	cls, _ = NewType("Q", nil, map[string]Value{"__hash__": bad})
	obj, _ = Call(cls)
	_, err = Hash(obj)
	if exc, ok := AsException(err); !ok || exc.Error() != "TypeError: __hash__ method should return an integer" {
		t.Fatalf("expected integer error, got %v", err)
	}
}

func TestIsSubclass(t *testing.T) {
	a, _ := NewType("A", nil, nil)
	b, _ := NewType("B", []*Type{a}, nil)
	ok, err := IsSubclass(b, NewTuple(IntType, a))
	if err != nil || !ok {
		t.Fatalf("expected B to be a subclass of (int, A)")
	}
	if _, err := IsSubclass(Int(1), a); !IsException(err, TypeError) {
		t.Fatalf("expected TypeError for a non-class, got %v", err)
	}
}
