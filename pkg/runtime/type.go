package runtime

import (
	"sort"
	"strings"
)

// allocFunc creates the raw object for a call to a type, before __init__.
type allocFunc func(t *Type, args []Value, kwargs *DictValue) (Value, error)

// Type is a class descriptor. Its MRO is computed once at creation and never
// changes; the attribute dict stays mutable.
type Type struct {
	identity
	Name    string
	Bases   []*Type
	Dict    *DictValue
	mro     []*Type
	builtin bool
	alloc   allocFunc
}

func (t *Type) Kind() Kind { return KindType }

// NewType creates a class with a C3-linearized MRO. Functions found in attrs
// get their class cell bound to the new type.
func NewType(name string, bases []*Type, attrs map[string]Value) (*Type, error) {
	if len(bases) == 0 {
		bases = []*Type{ObjectType}
	}
	seen := make(map[*Type]bool, len(bases))
	for _, b := range bases {
		if b == nil {
			return nil, Errorf(TypeError, "bases must be types")
		}
		if seen[b] {
			return nil, Errorf(TypeError, "duplicate base class %s", b.Name)
		}
		seen[b] = true
	}
	t := &Type{Name: name, Bases: bases, Dict: NewDict()}
	mro, err := linearize(t)
	if err != nil {
		return nil, err
	}
	t.mro = mro

	names := make([]string, 0, len(attrs))
	for k := range attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		v := attrs[k]
		setClassCell(v, t)
		t.Dict.defineStr(k, v)
	}
	if _, hasEq := attrs["__eq__"]; hasEq {
		if _, hasHash := attrs["__hash__"]; !hasHash {
			t.Dict.defineStr("__hash__", None)
		}
	}
	return t, nil
}

func setClassCell(v Value, t *Type) {
	switch f := v.(type) {
	case *FunctionValue:
		if f.Class == nil {
			f.Class = t
		}
	case ClassMethodValue:
		setClassCell(f.Func, t)
	case StaticMethodValue:
		setClassCell(f.Func, t)
	case *PropertyValue:
		if f.Get != nil {
			setClassCell(f.Get, t)
		}
		if f.Set != nil {
			setClassCell(f.Set, t)
		}
	}
}

func newBuiltinType(name string, alloc allocFunc, bases ...*Type) *Type {
	t := &Type{Name: name, Bases: bases, Dict: NewDict(), builtin: true, alloc: alloc}
	if len(bases) == 0 {
		t.mro = []*Type{t}
		return t
	}
	mro, err := linearize(t)
	if err != nil {
		panic(err)
	}
	t.mro = mro
	return t
}

// linearize computes the C3 linearization of t from its bases.
func linearize(t *Type) ([]*Type, error) {
	seqs := make([][]*Type, 0, len(t.Bases)+1)
	for _, b := range t.Bases {
		seqs = append(seqs, append([]*Type(nil), b.mro...))
	}
	seqs = append(seqs, append([]*Type(nil), t.Bases...))

	result := []*Type{t}
	for {
		live := seqs[:0]
		for _, s := range seqs {
			if len(s) > 0 {
				live = append(live, s)
			}
		}
		seqs = live
		if len(seqs) == 0 {
			return result, nil
		}
		var next *Type
		for _, s := range seqs {
			if !inAnyTail(s[0], seqs) {
				next = s[0]
				break
			}
		}
		if next == nil {
			names := make([]string, len(t.Bases))
			for i, b := range t.Bases {
				names[i] = b.Name
			}
			return nil, Errorf(TypeError, "Cannot create a consistent method resolution order (MRO) for bases %s", strings.Join(names, ", "))
		}
		result = append(result, next)
		for i, s := range seqs {
			if s[0] == next {
				seqs[i] = s[1:]
			}
		}
	}
}

func inAnyTail(c *Type, seqs [][]*Type) bool {
	for _, s := range seqs {
		for _, t := range s[1:] {
			if t == c {
				return true
			}
		}
	}
	return false
}

// MRO returns a copy of the method resolution order.
func (t *Type) MRO() []*Type {
	return append([]*Type(nil), t.mro...)
}

// IsSubtype reports whether other appears in t's MRO.
func (t *Type) IsSubtype(other *Type) bool {
	if t == nil || other == nil {
		return false
	}
	for _, c := range t.mro {
		if c == other {
			return true
		}
	}
	return false
}

// Lookup scans the MRO for an attribute and reports the class that defines it.
func (t *Type) Lookup(name string) (Value, *Type, bool) {
	for _, c := range t.mro {
		if v, ok := c.Dict.getStr(name); ok {
			return v, c, true
		}
	}
	return nil, nil, false
}

// lookupAfter scans the MRO of t strictly after the class start and
// returns the value with the class whose dict holds it.
func (t *Type) lookupAfter(start *Type, name string) (Value, *Type, bool) {
	mro := t.mro
	i := 0
	for i < len(mro) && mro[i] != start {
		i++
	}
	for i++; i < len(mro); i++ {
		if v, ok := mro[i].Dict.getStr(name); ok {
			return v, mro[i], true
		}
	}
	return nil, nil, false
}

// IsBuiltin reports whether the type was created by the runtime itself.
func (t *Type) IsBuiltin() bool { return t.builtin }

func (t *Type) findAlloc() allocFunc {
	for _, c := range t.mro {
		if c.alloc != nil {
			return c.alloc
		}
	}
	return nil
}

// TypeOf returns the class of any runtime value.
func TypeOf(v Value) *Type {
	switch x := v.(type) {
	case nil, NoneValue:
		return NoneType
	case NotImplementedValue:
		return NotImplementedType
	case BoolValue:
		return BoolType
	case IntValue:
		return IntType
	case FloatValue:
		return FloatType
	case StrValue:
		return StrType
	case BytesValue:
		return BytesType
	case *TupleValue:
		return TupleType
	case *ListValue:
		return ListType
	case *DictValue:
		return DictType
	case *SetValue:
		if x.frozen {
			return FrozenSetType
		}
		return SetType
	case *DictViewValue:
		switch x.View {
		case ViewKeys:
			return DictKeysType
		case ViewValues:
			return DictValuesType
		default:
			return DictItemsType
		}
	case *IteratorValue:
		return IteratorType
	case *Type:
		return TypeType
	case *Instance:
		return x.Class
	case *ExceptionValue:
		return x.Class
	case *FunctionValue:
		return FunctionType
	case BoundMethodValue:
		return MethodType
	case ClassMethodValue:
		return ClassMethodType
	case StaticMethodValue:
		return StaticMethodType
	case *PropertyValue:
		return PropertyType
	case *SuperValue:
		return SuperType
	case *HostHandleValue:
		return HostHandleType
	}
	return ObjectType
}

// IsInstance reports whether type(v) is cls or a subclass of it.
func IsInstance(v Value, cls *Type) bool {
	return TypeOf(v).IsSubtype(cls)
}

// IsSubclass checks a class against a class or a tuple of classes, left to
// right.
func IsSubclass(v Value, classinfo Value) (bool, error) {
	sub, ok := v.(*Type)
	if !ok {
		return false, Errorf(TypeError, "issubclass() arg 1 must be a class")
	}
	switch ci := classinfo.(type) {
	case *Type:
		return sub.IsSubtype(ci), nil
	case *TupleValue:
		for _, el := range ci.Elements {
			ok, err := IsSubclass(sub, el)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	}
	return false, Errorf(TypeError, "issubclass() arg 2 must be a class or tuple of classes")
}
