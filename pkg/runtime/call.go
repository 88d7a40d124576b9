package runtime

// Call invokes a callable with positional arguments.
func Call(callable Value, args ...Value) (Value, error) {
	return CallKw(callable, args, nil)
}

// CallKw invokes a callable with positional and keyword arguments.
func CallKw(callable Value, args []Value, kwargs *DictValue) (Value, error) {
	switch fn := callable.(type) {
	case *FunctionValue:
		if fn.Impl == nil {
			return nil, Errorf(SystemError, "function %s has no implementation", fn.Name)
		}
		ctx := &NativeCallContext{Function: fn, Args: args, Kwargs: kwargs}
		return fn.Impl(ctx, args)
	case BoundMethodValue:
		full := make([]Value, 0, len(args)+1)
		full = append(full, fn.Receiver)
		full = append(full, args...)
		return CallKw(fn.Method, full, kwargs)
	case StaticMethodValue:
		return CallKw(fn.Func, args, kwargs)
	case *Type:
		return instantiate(fn, args, kwargs)
	case *Instance:
		if m, _, ok := fn.Class.Lookup("__call__"); ok {
			bound, err := bindDescriptor(m, fn, fn.Class)
			if err != nil {
				return nil, err
			}
			return CallKw(bound, args, kwargs)
		}
	}
	return nil, Errorf(TypeError, "'%s' object is not callable", TypeOf(callable).Name)
}

// CallMethod looks up name on obj and calls the bound result.
func CallMethod(obj Value, name string, args ...Value) (Value, error) {
	m, err := GetAttr(obj, name)
	if err != nil {
		return nil, err
	}
	return Call(m, args...)
}

func callMethod(fn Value, self Value, owner *Type, args ...Value) (Value, error) {
	bound, err := bindDescriptor(fn, self, owner)
	if err != nil {
		return nil, err
	}
	return Call(bound, args...)
}

func instantiate(t *Type, args []Value, kwargs *DictValue) (Value, error) {
	alloc := t.findAlloc()
	if alloc == nil {
		return nil, Errorf(TypeError, "cannot create '%s' instances", t.Name)
	}
	obj, err := alloc(t, args, kwargs)
	if err != nil {
		return nil, err
	}
	if TypeOf(obj) != t && !IsInstance(obj, t) {
		return obj, nil
	}
	init, owner, ok := t.Lookup("__init__")
	if !ok || owner == ObjectType {
		return obj, nil
	}
	if owner.builtin && !initConsumesArgs(owner) {
		return obj, nil
	}
	bound, err := bindDescriptor(init, obj, t)
	if err != nil {
		return nil, err
	}
	if _, err := CallKw(bound, args, kwargs); err != nil {
		return nil, err
	}
	return obj, nil
}

// initConsumesArgs reports whether a builtin's __init__ fills the object from
// the constructor arguments, as opposed to the allocator having done so.
func initConsumesArgs(t *Type) bool {
	return t == DictType || t == SetType || t == ListType || t == BaseException
}

// wrapPayload returns payload directly for the builtin itself and an
// instance carrying it for subclasses.
func wrapPayload(t, base *Type, payload Value) Value {
	if t == base {
		return payload
	}
	return &Instance{Class: t, Dict: NewDict(), Payload: payload}
}
