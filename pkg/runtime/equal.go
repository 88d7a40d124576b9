package runtime

import (
	"bytes"
	"math"
)

// Is reports object identity. Scalars compare by value, which mirrors the
// interning the object model guarantees for them.
func Is(a, b Value) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case NoneValue:
		_, ok := b.(NoneValue)
		return ok
	case NotImplementedValue:
		_, ok := b.(NotImplementedValue)
		return ok
	case BoolValue:
		y, ok := b.(BoolValue)
		return ok && x.Val == y.Val
	case IntValue:
		y, ok := b.(IntValue)
		return ok && x.Val == y.Val
	case FloatValue:
		y, ok := b.(FloatValue)
		return ok && math.Float64bits(x.Val) == math.Float64bits(y.Val)
	case StrValue:
		y, ok := b.(StrValue)
		return ok && x.Val == y.Val
	case BytesValue:
		y, ok := b.(BytesValue)
		return ok && bytes.Equal(x.Val, y.Val)
	case BoundMethodValue:
		y, ok := b.(BoundMethodValue)
		return ok && Is(x.Receiver, y.Receiver) && Is(x.Method, y.Method)
	case ClassMethodValue:
		y, ok := b.(ClassMethodValue)
		return ok && Is(x.Func, y.Func)
	case StaticMethodValue:
		y, ok := b.(StaticMethodValue)
		return ok && Is(x.Func, y.Func)
	}
	return a == b
}

func isUserObject(v Value) bool {
	switch v.(type) {
	case *Instance, *ExceptionValue:
		return true
	}
	return false
}

// Equal implements ==. Identity wins, so an object equals itself even when
// its __eq__ declines; NaN is the exception and never equals anything.
// Container probes check Is first and so still find a NaN key.
func Equal(a, b Value) (bool, error) {
	if Is(a, b) {
		if f, ok := a.(FloatValue); ok && math.IsNaN(f.Val) {
			return false, nil
		}
		return true, nil
	}
	if !isUserObject(a) && !isUserObject(b) {
		return builtinEqual(a, b)
	}
	ta, tb := TypeOf(a), TypeOf(b)
	first, second := a, b
	if ta != tb && tb.IsSubtype(ta) {
		first, second = b, a
	}
	res, err := callEq(first, second)
	if err != nil {
		return false, err
	}
	if _, declined := res.(NotImplementedValue); !declined {
		return Truthy(res)
	}
	res, err = callEq(second, first)
	if err != nil {
		return false, err
	}
	if _, declined := res.(NotImplementedValue); !declined {
		return Truthy(res)
	}
	return false, nil
}

func callEq(self, other Value) (Value, error) {
	t := TypeOf(self)
	fn, _, ok := t.Lookup("__eq__")
	if !ok {
		return NotImplemented, nil
	}
	bound, err := bindDescriptor(fn, self, t)
	if err != nil {
		return nil, err
	}
	return Call(bound, other)
}

func numeric(v Value) (float64, int64, bool, bool) {
	switch x := v.(type) {
	case BoolValue:
		if x.Val {
			return 1, 1, true, true
		}
		return 0, 0, true, true
	case IntValue:
		return float64(x.Val), x.Val, true, true
	case FloatValue:
		return x.Val, 0, false, true
	}
	return 0, 0, false, false
}

// comparable reports whether two builtin payloads belong to categories that
// can be compared for equality without deferring to the other operand.
func comparableKinds(a, b Value) bool {
	if _, _, _, ok := numeric(a); ok {
		_, _, _, ok2 := numeric(b)
		return ok2
	}
	ka, kb := a.Kind(), b.Kind()
	if ka == kb {
		return true
	}
	setLike := func(k Kind) bool { return k == KindSet || k == KindFrozenSet }
	return setLike(ka) && setLike(kb)
}

func builtinEqual(a, b Value) (bool, error) {
	if fa, ia, aInt, ok := numeric(a); ok {
		fb, ib, bInt, ok2 := numeric(b)
		if !ok2 {
			return false, nil
		}
		if aInt && bInt {
			return ia == ib, nil
		}
		return fa == fb, nil
	}
	switch x := a.(type) {
	case StrValue:
		y, ok := b.(StrValue)
		return ok && x.Val == y.Val, nil
	case BytesValue:
		y, ok := b.(BytesValue)
		return ok && bytes.Equal(x.Val, y.Val), nil
	case *TupleValue:
		y, ok := b.(*TupleValue)
		if !ok {
			return false, nil
		}
		return sequenceEqual(x.Elements, y.Elements)
	case *ListValue:
		y, ok := b.(*ListValue)
		if !ok {
			return false, nil
		}
		return sequenceEqual(x.Elements, y.Elements)
	case *DictValue:
		y, ok := b.(*DictValue)
		if !ok {
			return false, nil
		}
		return x.Equal(y)
	case *SetValue:
		y, ok := b.(*SetValue)
		if !ok {
			return false, nil
		}
		return x.Equal(y)
	}
	return Is(a, b), nil
}

func sequenceEqual(a, b []Value) (bool, error) {
	if len(a) != len(b) {
		return false, nil
	}
	for i := range a {
		eq, err := Equal(a[i], b[i])
		if err != nil || !eq {
			return false, err
		}
	}
	return true, nil
}

// Truthy converts a value to bool the way an if statement would.
func Truthy(v Value) (bool, error) {
	switch x := v.(type) {
	case nil, NoneValue:
		return false, nil
	case BoolValue:
		return x.Val, nil
	case IntValue:
		return x.Val != 0, nil
	case FloatValue:
		return x.Val != 0, nil
	case StrValue:
		return x.Val != "", nil
	case BytesValue:
		return len(x.Val) > 0, nil
	case *TupleValue:
		return len(x.Elements) > 0, nil
	case *ListValue:
		return len(x.Elements) > 0, nil
	case *DictValue:
		return x.Len() > 0, nil
	case *SetValue:
		return x.Len() > 0, nil
	case *Instance:
		t := x.Class
		if fn, _, ok := t.Lookup("__bool__"); ok {
			res, err := callMethod(fn, x, t)
			if err != nil {
				return false, err
			}
			b, ok := res.(BoolValue)
			if !ok {
				return false, Errorf(TypeError, "__bool__ should return bool, returned %s", TypeOf(res).Name)
			}
			return b.Val, nil
		}
		if _, _, ok := t.Lookup("__len__"); ok {
			n, err := Len(x)
			return n > 0, err
		}
	}
	return true, nil
}
