package runtime

import (
	"strings"
	"unicode/utf8"
)

// Iter returns an iterator over any iterable value.
func Iter(v Value) (*IteratorValue, error) {
	switch x := v.(type) {
	case *IteratorValue:
		return x, nil
	case *TupleValue:
		return sliceIterator(x.Elements), nil
	case *ListValue:
		i := 0
		return NewIteratorValue(func() (Value, bool, error) {
			if i >= len(x.Elements) {
				return nil, true, nil
			}
			i++
			return x.Elements[i-1], false, nil
		}, nil), nil
	case StrValue:
		s := x.Val
		return NewIteratorValue(func() (Value, bool, error) {
			if s == "" {
				return nil, true, nil
			}
			_, size := utf8.DecodeRuneInString(s)
			ch := s[:size]
			s = s[size:]
			return Str(ch), false, nil
		}, nil), nil
	case BytesValue:
		elems := make([]Value, len(x.Val))
		for i, b := range x.Val {
			elems[i] = Int(int64(b))
		}
		return sliceIterator(elems), nil
	case *DictValue:
		return x.Iter(), nil
	case *SetValue:
		return x.Iter(), nil
	case *DictViewValue:
		return x.Iter(), nil
	case *HostHandleValue:
		if p, ok := x.Value.(HostAttrs); ok {
			fn, found, err := p.HostAttr("__iter__")
			if err != nil {
				return nil, err
			}
			if found {
				res, err := Call(fn)
				if err != nil {
					return nil, err
				}
				return asIterator(res)
			}
		}
	case *Instance:
		t := x.Class
		if fn, _, ok := t.Lookup("__iter__"); ok {
			res, err := callMethod(fn, x, t)
			if err != nil {
				return nil, err
			}
			return asIterator(res)
		}
		if _, _, ok := t.Lookup("__getitem__"); ok {
			return sequenceIterator(x), nil
		}
	}
	return nil, Errorf(TypeError, "'%s' object is not iterable", TypeOf(v).Name)
}

func sliceIterator(elems []Value) *IteratorValue {
	i := 0
	return NewIteratorValue(func() (Value, bool, error) {
		if i >= len(elems) {
			return nil, true, nil
		}
		i++
		return elems[i-1], false, nil
	}, nil)
}

// asIterator adapts the result of __iter__, which may be a native iterator or
// an object implementing __next__.
func asIterator(v Value) (*IteratorValue, error) {
	if it, ok := v.(*IteratorValue); ok {
		return it, nil
	}
	t := TypeOf(v)
	next, _, ok := t.Lookup("__next__")
	if !ok {
		return nil, Errorf(TypeError, "iter() returned non-iterator of type '%s'", t.Name)
	}
	return NewIteratorValue(func() (Value, bool, error) {
		res, err := callMethod(next, v, t)
		if err != nil {
			if IsException(err, StopIteration) {
				return nil, true, nil
			}
			return nil, false, err
		}
		return res, false, nil
	}, nil), nil
}

func sequenceIterator(v Value) *IteratorValue {
	var i int64
	return NewIteratorValue(func() (Value, bool, error) {
		res, err := GetItem(v, Int(i))
		if err != nil {
			if IsException(err, IndexError) || IsException(err, StopIteration) {
				return nil, true, nil
			}
			return nil, false, err
		}
		i++
		return res, false, nil
	}, nil)
}

func collect(it *IteratorValue) ([]Value, error) {
	defer it.Close()
	var out []Value
	for {
		v, done, err := it.Next()
		if err != nil {
			return nil, err
		}
		if done {
			return out, nil
		}
		out = append(out, v)
	}
}

// ToSlice drains an iterable into a Go slice.
func ToSlice(v Value) ([]Value, error) {
	switch x := v.(type) {
	case *TupleValue:
		return append([]Value(nil), x.Elements...), nil
	case *ListValue:
		return append([]Value(nil), x.Elements...), nil
	}
	it, err := Iter(v)
	if err != nil {
		return nil, err
	}
	return collect(it)
}

// Len implements len().
func Len(v Value) (int, error) {
	switch x := v.(type) {
	case StrValue:
		return utf8.RuneCountInString(x.Val), nil
	case BytesValue:
		return len(x.Val), nil
	case *TupleValue:
		return len(x.Elements), nil
	case *ListValue:
		return len(x.Elements), nil
	case *DictValue:
		return x.Len(), nil
	case *SetValue:
		return x.Len(), nil
	case *DictViewValue:
		return x.Len(), nil
	case *Instance:
		if fn, _, ok := x.Class.Lookup("__len__"); ok {
			res, err := callMethod(fn, x, x.Class)
			if err != nil {
				return 0, err
			}
			n, ok := Unwrap(res).(IntValue)
			if !ok {
				return 0, Errorf(TypeError, "'%s' object cannot be interpreted as an integer", TypeOf(res).Name)
			}
			if n.Val < 0 {
				return 0, Errorf(ValueError, "__len__() should return >= 0")
			}
			return int(n.Val), nil
		}
	}
	return 0, Errorf(TypeError, "object of type '%s' has no len()", TypeOf(v).Name)
}

func sequenceIndex(n int, idx Value, what string) (int, error) {
	i, ok := Unwrap(idx).(IntValue)
	if !ok {
		if b, isBool := idx.(BoolValue); isBool {
			i = Int(0)
			if b.Val {
				i = Int(1)
			}
		} else {
			return 0, Errorf(TypeError, "%s indices must be integers, not %s", what, TypeOf(idx).Name)
		}
	}
	pos := i.Val
	if pos < 0 {
		pos += int64(n)
	}
	if pos < 0 || pos >= int64(n) {
		return 0, Errorf(IndexError, "%s index out of range", what)
	}
	return int(pos), nil
}

// GetItem implements obj[key].
func GetItem(obj, key Value) (Value, error) {
	switch x := obj.(type) {
	case *DictValue:
		return x.GetItem(key)
	case *ListValue:
		i, err := sequenceIndex(len(x.Elements), key, "list")
		if err != nil {
			return nil, err
		}
		return x.Elements[i], nil
	case *TupleValue:
		i, err := sequenceIndex(len(x.Elements), key, "tuple")
		if err != nil {
			return nil, err
		}
		return x.Elements[i], nil
	case StrValue:
		runes := []rune(x.Val)
		i, err := sequenceIndex(len(runes), key, "string")
		if err != nil {
			return nil, err
		}
		return Str(string(runes[i])), nil
	case BytesValue:
		i, err := sequenceIndex(len(x.Val), key, "index")
		if err != nil {
			return nil, err
		}
		return Int(int64(x.Val[i])), nil
	case *Instance:
		if fn, _, ok := x.Class.Lookup("__getitem__"); ok {
			return callMethod(fn, x, x.Class, key)
		}
	}
	return nil, Errorf(TypeError, "'%s' object is not subscriptable", TypeOf(obj).Name)
}

// SetItem implements obj[key] = value.
func SetItem(obj, key, value Value) error {
	switch x := obj.(type) {
	case *DictValue:
		return x.SetItem(key, value)
	case *ListValue:
		i, err := sequenceIndex(len(x.Elements), key, "list assignment")
		if err != nil {
			return err
		}
		x.Elements[i] = value
		return nil
	case *Instance:
		if fn, _, ok := x.Class.Lookup("__setitem__"); ok {
			_, err := callMethod(fn, x, x.Class, key, value)
			return err
		}
	}
	return Errorf(TypeError, "'%s' object does not support item assignment", TypeOf(obj).Name)
}

// DelItem implements del obj[key].
func DelItem(obj, key Value) error {
	switch x := obj.(type) {
	case *DictValue:
		return x.DelItem(key)
	case *Instance:
		if fn, _, ok := x.Class.Lookup("__delitem__"); ok {
			_, err := callMethod(fn, x, x.Class, key)
			return err
		}
	}
	return Errorf(TypeError, "'%s' object does not support item deletion", TypeOf(obj).Name)
}

// Contains implements `item in container`.
func Contains(container, item Value) (bool, error) {
	switch x := container.(type) {
	case *DictValue:
		return x.Contains(item)
	case *SetValue:
		return x.Contains(item)
	case *DictViewValue:
		return x.Contains(item)
	case StrValue:
		s, ok := Unwrap(item).(StrValue)
		if !ok {
			return false, Errorf(TypeError, "'in <string>' requires string as left operand, not %s", TypeOf(item).Name)
		}
		return strings.Contains(x.Val, s.Val), nil
	case *Instance:
		if fn, _, ok := x.Class.Lookup("__contains__"); ok {
			res, err := callMethod(fn, x, x.Class, item)
			if err != nil {
				return false, err
			}
			return Truthy(res)
		}
	}
	it, err := Iter(container)
	if err != nil {
		return false, Errorf(TypeError, "argument of type '%s' is not iterable", TypeOf(container).Name)
	}
	defer it.Close()
	for {
		v, done, err := it.Next()
		if err != nil || done {
			return false, err
		}
		eq, err := Equal(v, item)
		if err != nil || eq {
			return eq, err
		}
	}
}
