package runtime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Builtin classes.
var (
	ObjectType         *Type
	TypeType           *Type
	NoneType           *Type
	NotImplementedType *Type
	IntType            *Type
	BoolType           *Type
	FloatType          *Type
	StrType            *Type
	BytesType          *Type
	TupleType          *Type
	ListType           *Type
	DictType           *Type
	SetType            *Type
	FrozenSetType      *Type
	DictKeysType       *Type
	DictValuesType     *Type
	DictItemsType      *Type
	IteratorType       *Type
	FunctionType       *Type
	MethodType         *Type
	ClassMethodType    *Type
	StaticMethodType   *Type
	PropertyType       *Type
	SuperType          *Type
	HostHandleType     *Type
)

func init() {
	ObjectType = newBuiltinType("object", allocObject)
	TypeType = newBuiltinType("type", allocType, ObjectType)
	NoneType = newBuiltinType("NoneType", nil, ObjectType)
	NotImplementedType = newBuiltinType("NotImplementedType", nil, ObjectType)
	IntType = newBuiltinType("int", allocInt, ObjectType)
	BoolType = newBuiltinType("bool", allocBool, IntType)
	FloatType = newBuiltinType("float", allocFloat, ObjectType)
	StrType = newBuiltinType("str", allocStr, ObjectType)
	BytesType = newBuiltinType("bytes", allocBytes, ObjectType)
	TupleType = newBuiltinType("tuple", allocTuple, ObjectType)
	ListType = newBuiltinType("list", allocList, ObjectType)
	DictType = newBuiltinType("dict", allocDict, ObjectType)
	SetType = newBuiltinType("set", allocSet, ObjectType)
	FrozenSetType = newBuiltinType("frozenset", allocFrozenSet, ObjectType)
	DictKeysType = newBuiltinType("dict_keys", nil, ObjectType)
	DictValuesType = newBuiltinType("dict_values", nil, ObjectType)
	DictItemsType = newBuiltinType("dict_items", nil, ObjectType)
	IteratorType = newBuiltinType("iterator", nil, ObjectType)
	FunctionType = newBuiltinType("function", nil, ObjectType)
	MethodType = newBuiltinType("method", nil, ObjectType)
	ClassMethodType = newBuiltinType("classmethod", allocClassMethod, ObjectType)
	StaticMethodType = newBuiltinType("staticmethod", allocStaticMethod, ObjectType)
	PropertyType = newBuiltinType("property", allocProperty, ObjectType)
	SuperType = newBuiltinType("super", allocSuper, ObjectType)
	HostHandleType = newBuiltinType("host_handle", nil, ObjectType)
	initExceptions()

	initObjectMethods()
	initScalarMethods()
	initDictMethods()
	initSetMethods()
	initListMethods()
	for _, t := range []*Type{ListType, DictType, SetType, DictKeysType, DictValuesType, DictItemsType} {
		t.Dict.defineStr("__hash__", None)
	}
}

func defMethod(t *Type, name string, impl func(ctx *NativeCallContext, self Value, args []Value) (Value, error)) {
	t.Dict.defineStr(name, &FunctionValue{Name: name, Class: t, Impl: func(ctx *NativeCallContext, args []Value) (Value, error) {
		if len(args) == 0 {
			return nil, Errorf(TypeError, "descriptor '%s' of '%s' object needs an argument", name, t.Name)
		}
		if !IsInstance(args[0], t) {
			return nil, Errorf(TypeError, "descriptor '%s' requires a '%s' object but received a '%s'", name, t.Name, TypeOf(args[0]).Name)
		}
		return impl(ctx, args[0], args[1:])
	}})
}

func checkArgs(name string, args []Value, min, max int) error {
	if len(args) < min || len(args) > max {
		if min == max {
			return Errorf(TypeError, "%s() takes exactly %d argument%s (%d given)", name, min, plural(min), len(args))
		}
		if len(args) < min {
			return Errorf(TypeError, "%s expected at least %d argument%s, got %d", name, min, plural(min), len(args))
		}
		return Errorf(TypeError, "%s expected at most %d argument%s, got %d", name, max, plural(max), len(args))
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

//-----------------------------------------------------------------------------
// Allocators
//-----------------------------------------------------------------------------

func allocObject(t *Type, args []Value, kwargs *DictValue) (Value, error) {
	if t == ObjectType && len(args) > 0 {
		return nil, Errorf(TypeError, "object() takes no arguments")
	}
	return &Instance{Class: t, Dict: NewDict()}, nil
}

func allocType(t *Type, args []Value, kwargs *DictValue) (Value, error) {
	switch len(args) {
	case 1:
		return TypeOf(args[0]), nil
	case 3:
		name, ok := args[0].(StrValue)
		if !ok {
			return nil, Errorf(TypeError, "type.__new__() argument 1 must be str, not %s", TypeOf(args[0]).Name)
		}
		baseVals, err := ToSlice(args[1])
		if err != nil {
			return nil, err
		}
		bases := make([]*Type, 0, len(baseVals))
		for _, b := range baseVals {
			bt, ok := b.(*Type)
			if !ok {
				return nil, Errorf(TypeError, "bases must be types")
			}
			bases = append(bases, bt)
		}
		ns, ok := args[2].(*DictValue)
		if !ok {
			return nil, Errorf(TypeError, "type.__new__() argument 3 must be dict, not %s", TypeOf(args[2]).Name)
		}
		attrs := make(map[string]Value, ns.Len())
		if err := ns.Range(func(k, v Value) error {
			if s, ok := k.(StrValue); ok {
				attrs[s.Val] = v
			}
			return nil
		}); err != nil {
			return nil, err
		}
		return NewType(name.Val, bases, attrs)
	}
	return nil, Errorf(TypeError, "type() takes 1 or 3 arguments")
}

func allocInt(t *Type, args []Value, kwargs *DictValue) (Value, error) {
	if err := checkArgs("int", args, 0, 1); err != nil {
		return nil, err
	}
	var n int64
	if len(args) == 1 {
		switch a := Unwrap(args[0]).(type) {
		case IntValue:
			n = a.Val
		case BoolValue:
			if a.Val {
				n = 1
			}
		case FloatValue:
			if math.IsNaN(a.Val) || math.IsInf(a.Val, 0) {
				return nil, Errorf(ValueError, "cannot convert float %s to integer", formatFloat(a.Val))
			}
			n = int64(a.Val)
		case StrValue:
			v, err := strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(a.Val), "_", ""), 10, 64)
			if err != nil {
				return nil, Errorf(ValueError, "invalid literal for int() with base 10: %s", quoteString(a.Val))
			}
			n = v
		default:
			return nil, Errorf(TypeError, "int() argument must be a string, a bytes-like object or a number, not '%s'", TypeOf(args[0]).Name)
		}
	}
	return wrapPayload(t, IntType, Int(n)), nil
}

func allocBool(t *Type, args []Value, kwargs *DictValue) (Value, error) {
	if err := checkArgs("bool", args, 0, 1); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return False, nil
	}
	b, err := Truthy(args[0])
	if err != nil {
		return nil, err
	}
	return Bool(b), nil
}

func allocFloat(t *Type, args []Value, kwargs *DictValue) (Value, error) {
	if err := checkArgs("float", args, 0, 1); err != nil {
		return nil, err
	}
	var f float64
	if len(args) == 1 {
		switch a := Unwrap(args[0]).(type) {
		case FloatValue:
			f = a.Val
		case IntValue:
			f = float64(a.Val)
		case BoolValue:
			if a.Val {
				f = 1
			}
		case StrValue:
			v, err := strconv.ParseFloat(strings.TrimSpace(a.Val), 64)
			if err != nil {
				return nil, Errorf(ValueError, "could not convert string to float: %s", quoteString(a.Val))
			}
			f = v
		default:
			return nil, Errorf(TypeError, "float() argument must be a string or a number, not '%s'", TypeOf(args[0]).Name)
		}
	}
	return wrapPayload(t, FloatType, FloatValue{Val: f}), nil
}

func allocStr(t *Type, args []Value, kwargs *DictValue) (Value, error) {
	if err := checkArgs("str", args, 0, 1); err != nil {
		return nil, err
	}
	s := ""
	if len(args) == 1 {
		var err error
		if s, err = ToString(args[0]); err != nil {
			return nil, err
		}
	}
	return wrapPayload(t, StrType, Str(s)), nil
}

func allocBytes(t *Type, args []Value, kwargs *DictValue) (Value, error) {
	if err := checkArgs("bytes", args, 0, 1); err != nil {
		return nil, err
	}
	var out []byte
	if len(args) == 1 {
		switch a := Unwrap(args[0]).(type) {
		case BytesValue:
			out = append([]byte(nil), a.Val...)
		case IntValue:
			if a.Val < 0 {
				return nil, Errorf(ValueError, "negative count")
			}
			out = make([]byte, a.Val)
		case StrValue:
			return nil, Errorf(TypeError, "string argument without an encoding")
		default:
			elems, err := ToSlice(args[0])
			if err != nil {
				return nil, Errorf(TypeError, "cannot convert '%s' object to bytes", TypeOf(args[0]).Name)
			}
			for _, el := range elems {
				n, ok := Unwrap(el).(IntValue)
				if !ok {
					return nil, Errorf(TypeError, "'%s' object cannot be interpreted as an integer", TypeOf(el).Name)
				}
				if n.Val < 0 || n.Val > 255 {
					return nil, Errorf(ValueError, "bytes must be in range(0, 256)")
				}
				out = append(out, byte(n.Val))
			}
		}
	}
	return wrapPayload(t, BytesType, BytesValue{Val: out}), nil
}

func allocTuple(t *Type, args []Value, kwargs *DictValue) (Value, error) {
	if err := checkArgs("tuple", args, 0, 1); err != nil {
		return nil, err
	}
	var elems []Value
	if len(args) == 1 {
		var err error
		if elems, err = ToSlice(args[0]); err != nil {
			return nil, err
		}
	}
	return wrapPayload(t, TupleType, NewTuple(elems...)), nil
}

func allocList(t *Type, args []Value, kwargs *DictValue) (Value, error) {
	return wrapPayload(t, ListType, NewList()), nil
}

func allocDict(t *Type, args []Value, kwargs *DictValue) (Value, error) {
	return wrapPayload(t, DictType, NewDict()), nil
}

func allocSet(t *Type, args []Value, kwargs *DictValue) (Value, error) {
	return wrapPayload(t, SetType, NewSet()), nil
}

func allocFrozenSet(t *Type, args []Value, kwargs *DictValue) (Value, error) {
	if err := checkArgs("frozenset", args, 0, 1); err != nil {
		return nil, err
	}
	var src Value
	if len(args) == 1 {
		src = args[0]
	}
	fs, err := NewFrozenSet(src)
	if err != nil {
		return nil, err
	}
	return wrapPayload(t, FrozenSetType, fs), nil
}

func allocClassMethod(t *Type, args []Value, kwargs *DictValue) (Value, error) {
	if err := checkArgs("classmethod", args, 1, 1); err != nil {
		return nil, err
	}
	return ClassMethodValue{Func: args[0]}, nil
}

func allocStaticMethod(t *Type, args []Value, kwargs *DictValue) (Value, error) {
	if err := checkArgs("staticmethod", args, 1, 1); err != nil {
		return nil, err
	}
	return StaticMethodValue{Func: args[0]}, nil
}

func allocProperty(t *Type, args []Value, kwargs *DictValue) (Value, error) {
	if err := checkArgs("property", args, 0, 2); err != nil {
		return nil, err
	}
	p := &PropertyValue{}
	if len(args) > 0 && !Is(args[0], None) {
		p.Get = args[0]
	}
	if len(args) > 1 && !Is(args[1], None) {
		p.Set = args[1]
	}
	return p, nil
}

func allocSuper(t *Type, args []Value, kwargs *DictValue) (Value, error) {
	switch len(args) {
	case 0:
		return nil, Errorf(RuntimeError, "super(): no arguments")
	case 1, 2:
		cls, ok := args[0].(*Type)
		if !ok {
			return nil, Errorf(TypeError, "super() argument 1 must be a type, not %s", TypeOf(args[0]).Name)
		}
		if len(args) == 1 {
			return NewSuper(cls, nil)
		}
		return NewSuper(cls, args[1])
	}
	return nil, Errorf(TypeError, "super() takes at most 2 arguments (%d given)", len(args))
}

//-----------------------------------------------------------------------------
// Methods
//-----------------------------------------------------------------------------

func initObjectMethods() {
	defMethod(ObjectType, "__init__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		return None, nil
	})
	defMethod(ObjectType, "__eq__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		if err := checkArgs("__eq__", args, 1, 1); err != nil {
			return nil, err
		}
		if Is(self, args[0]) {
			return True, nil
		}
		return NotImplemented, nil
	})
	defMethod(ObjectType, "__hash__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		if isUserObject(self) {
			return Int(fixHash(int64(ID(self)))), nil
		}
		h, err := Hash(self)
		return Int(h), err
	})
	defMethod(ObjectType, "__repr__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		if isUserObject(self) {
			return Str(fmt.Sprintf("<%s object at 0x%x>", TypeOf(self).Name, ID(self))), nil
		}
		s, err := Repr(self)
		return Str(s), err
	})
	defMethod(ObjectType, "__str__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		s, err := Repr(self)
		return Str(s), err
	})
	defMethod(TypeType, "mro", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		t := self.(*Type)
		out := make([]Value, len(t.mro))
		for i, c := range t.mro {
			out[i] = c
		}
		return NewList(out...), nil
	})
}

// payloadMethods installs hashing, equality and repr for builtins whose
// subclasses carry a payload.
func payloadMethods(t *Type) {
	defMethod(t, "__hash__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		h, err := Hash(Unwrap(self))
		return Int(h), err
	})
	defMethod(t, "__eq__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		if err := checkArgs("__eq__", args, 1, 1); err != nil {
			return nil, err
		}
		a, b := Unwrap(self), Unwrap(args[0])
		if isUserObject(b) || !comparableKinds(a, b) {
			return NotImplemented, nil
		}
		eq, err := builtinEqual(a, b)
		return Bool(eq), err
	})
	defMethod(t, "__repr__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		s, err := Repr(Unwrap(self))
		return Str(s), err
	})
}

func initScalarMethods() {
	for _, t := range []*Type{IntType, FloatType, StrType, BytesType, TupleType, FrozenSetType} {
		payloadMethods(t)
	}
	for _, t := range []*Type{StrType, BytesType, TupleType} {
		defMethod(t, "__len__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
			n, err := Len(Unwrap(self))
			return Int(int64(n)), err
		})
		defMethod(t, "__getitem__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
			if err := checkArgs("__getitem__", args, 1, 1); err != nil {
				return nil, err
			}
			return GetItem(Unwrap(self), args[0])
		})
		defMethod(t, "__contains__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
			if err := checkArgs("__contains__", args, 1, 1); err != nil {
				return nil, err
			}
			ok, err := Contains(Unwrap(self), args[0])
			return Bool(ok), err
		})
	}
	defMethod(StrType, "__str__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		return Unwrap(self), nil
	})
	defMethod(TupleType, "__iter__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		return Iter(Unwrap(self))
	})
}

func asDict(self Value) *DictValue {
	d, _ := Unwrap(self).(*DictValue)
	return d
}

func initDictMethods() {
	payloadMethods(DictType)
	defMethod(DictType, "__init__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		return None, asDict(self).updateFromArgs("dict", args, ctx.Kwargs)
	})
	defMethod(DictType, "__getitem__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		if err := checkArgs("__getitem__", args, 1, 1); err != nil {
			return nil, err
		}
		v, ok, err := asDict(self).Lookup(args[0])
		if err != nil {
			return nil, err
		}
		if !ok {
			if inst, isInst := self.(*Instance); isInst {
				if missing, _, found := inst.Class.Lookup("__missing__"); found {
					return callMethod(missing, inst, inst.Class, args[0])
				}
			}
			return nil, NewException(KeyError, args[0])
		}
		return v, nil
	})
	defMethod(DictType, "__setitem__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		if err := checkArgs("__setitem__", args, 2, 2); err != nil {
			return nil, err
		}
		return None, asDict(self).SetItem(args[0], args[1])
	})
	defMethod(DictType, "__delitem__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		if err := checkArgs("__delitem__", args, 1, 1); err != nil {
			return nil, err
		}
		return None, asDict(self).DelItem(args[0])
	})
	defMethod(DictType, "__contains__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		if err := checkArgs("__contains__", args, 1, 1); err != nil {
			return nil, err
		}
		ok, err := asDict(self).Contains(args[0])
		return Bool(ok), err
	})
	defMethod(DictType, "__len__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		return Int(int64(asDict(self).Len())), nil
	})
	defMethod(DictType, "__iter__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		return asDict(self).Iter(), nil
	})
	defMethod(DictType, "keys", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		return asDict(self).Keys(), nil
	})
	defMethod(DictType, "values", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		return asDict(self).Values(), nil
	})
	defMethod(DictType, "items", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		return asDict(self).Items(), nil
	})
	defMethod(DictType, "get", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		if err := checkArgs("get", args, 1, 2); err != nil {
			return nil, err
		}
		var def Value = None
		if len(args) == 2 {
			def = args[1]
		}
		return asDict(self).Get(args[0], def)
	})
	defMethod(DictType, "setdefault", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		if err := checkArgs("setdefault", args, 1, 2); err != nil {
			return nil, err
		}
		var def Value = None
		if len(args) == 2 {
			def = args[1]
		}
		return asDict(self).SetDefault(args[0], def)
	})
	defMethod(DictType, "pop", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		if err := checkArgs("pop", args, 1, 2); err != nil {
			return nil, err
		}
		var def Value
		if len(args) == 2 {
			def = args[1]
		}
		return asDict(self).Pop(args[0], def)
	})
	defMethod(DictType, "popitem", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		k, v, err := asDict(self).PopItem()
		if err != nil {
			return nil, err
		}
		return NewTuple(k, v), nil
	})
	defMethod(DictType, "update", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		return None, asDict(self).updateFromArgs("update", args, ctx.Kwargs)
	})
	defMethod(DictType, "clear", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		asDict(self).Clear()
		return None, nil
	})
	defMethod(DictType, "copy", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		return asDict(self).Copy(), nil
	})
	DictType.Dict.defineStr("fromkeys", ClassMethodValue{Func: &FunctionValue{Name: "fromkeys", Class: DictType, Impl: func(ctx *NativeCallContext, args []Value) (Value, error) {
		if err := checkArgs("fromkeys", args, 2, 3); err != nil {
			return nil, err
		}
		cls, _ := args[0].(*Type)
		var value Value = None
		if len(args) == 3 {
			value = args[2]
		}
		if cls == DictType {
			return DictFromKeys(args[1], value)
		}
		target, err := Call(cls)
		if err != nil {
			return nil, err
		}
		keys, err := ToSlice(args[1])
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			if err := SetItem(target, k, value); err != nil {
				return nil, err
			}
		}
		return target, nil
	}}})
}

func asSet(self Value) *SetValue {
	s, _ := Unwrap(self).(*SetValue)
	return s
}

func initSetMethods() {
	payloadMethods(SetType)
	defMethod(SetType, "__init__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		if err := checkArgs("set", args, 0, 1); err != nil {
			return nil, err
		}
		s := asSet(self)
		s.table.Clear()
		return None, s.Update(args...)
	})
	for _, t := range []*Type{SetType, FrozenSetType} {
		defMethod(t, "__contains__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
			if err := checkArgs("__contains__", args, 1, 1); err != nil {
				return nil, err
			}
			ok, err := asSet(self).Contains(args[0])
			return Bool(ok), err
		})
		defMethod(t, "__len__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
			return Int(int64(asSet(self).Len())), nil
		})
		defMethod(t, "__iter__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
			return asSet(self).Iter(), nil
		})
		defMethod(t, "copy", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
			return asSet(self).Copy(), nil
		})
		defMethod(t, "union", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
			return asSet(self).Union(args...)
		})
		defMethod(t, "intersection", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
			return asSet(self).Intersection(args...)
		})
		defMethod(t, "difference", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
			return asSet(self).Difference(args...)
		})
		defMethod(t, "issubset", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
			if err := checkArgs("issubset", args, 1, 1); err != nil {
				return nil, err
			}
			ok, err := asSet(self).IsSubset(args[0])
			return Bool(ok), err
		})
	}
	defMethod(SetType, "add", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		if err := checkArgs("add", args, 1, 1); err != nil {
			return nil, err
		}
		return None, asSet(self).Add(args[0])
	})
	defMethod(SetType, "discard", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		if err := checkArgs("discard", args, 1, 1); err != nil {
			return nil, err
		}
		return None, asSet(self).Discard(args[0])
	})
	defMethod(SetType, "remove", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		if err := checkArgs("remove", args, 1, 1); err != nil {
			return nil, err
		}
		return None, asSet(self).Remove(args[0])
	})
	defMethod(SetType, "pop", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		return asSet(self).Pop()
	})
	defMethod(SetType, "clear", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		return None, asSet(self).Clear()
	})
	defMethod(SetType, "update", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		return None, asSet(self).Update(args...)
	})
}

func initListMethods() {
	payloadMethods(ListType)
	defMethod(ListType, "__init__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		if err := checkArgs("list", args, 0, 1); err != nil {
			return nil, err
		}
		l := Unwrap(self).(*ListValue)
		l.Elements = l.Elements[:0]
		if len(args) == 1 {
			elems, err := ToSlice(args[0])
			if err != nil {
				return nil, err
			}
			l.Elements = append(l.Elements, elems...)
		}
		return None, nil
	})
	defMethod(ListType, "append", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		if err := checkArgs("append", args, 1, 1); err != nil {
			return nil, err
		}
		l := Unwrap(self).(*ListValue)
		l.Elements = append(l.Elements, args[0])
		return None, nil
	})
	defMethod(ListType, "__len__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		return Int(int64(len(Unwrap(self).(*ListValue).Elements))), nil
	})
	defMethod(ListType, "__getitem__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		if err := checkArgs("__getitem__", args, 1, 1); err != nil {
			return nil, err
		}
		return GetItem(Unwrap(self), args[0])
	})
	defMethod(ListType, "__setitem__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		if err := checkArgs("__setitem__", args, 2, 2); err != nil {
			return nil, err
		}
		return None, SetItem(Unwrap(self), args[0], args[1])
	})
	defMethod(ListType, "__iter__", func(ctx *NativeCallContext, self Value, args []Value) (Value, error) {
		return Iter(Unwrap(self))
	})
}
