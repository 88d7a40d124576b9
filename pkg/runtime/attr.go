package runtime

// bindDescriptor applies the descriptor protocol to an attribute found on a
// class. obj is nil for lookups through the class itself.
func bindDescriptor(attr Value, obj Value, owner *Type) (Value, error) {
	switch d := attr.(type) {
	case Binder:
		return d.Bind(obj, owner)
	case *Instance:
		get, _, ok := d.Class.Lookup("__get__")
		if !ok {
			return attr, nil
		}
		var receiver Value = None
		if obj != nil {
			receiver = obj
		}
		var ownerVal Value = None
		if owner != nil {
			ownerVal = owner
		}
		return callMethod(get, d, d.Class, receiver, ownerVal)
	}
	return attr, nil
}

func isDataDescriptor(attr Value) bool {
	switch d := attr.(type) {
	case *PropertyValue:
		return true
	case *Instance:
		_, _, ok := d.Class.Lookup("__set__")
		return ok
	}
	return false
}

func instanceDict(obj Value) *DictValue {
	switch o := obj.(type) {
	case *Instance:
		return o.Dict
	case *ExceptionValue:
		if o.Attrs == nil {
			o.Attrs = NewDict()
		}
		return o.Attrs
	}
	return nil
}

// GetAttr resolves an attribute: data descriptors on the class, then the
// instance dict, then the remaining class attributes bound to obj.
func GetAttr(obj Value, name string) (Value, error) {
	switch o := obj.(type) {
	case *Type:
		return typeGetAttr(o, name)
	case *SuperValue:
		return o.GetAttr(name)
	case *HostHandleValue:
		if p, ok := o.Value.(HostAttrs); ok {
			v, found, err := p.HostAttr(name)
			if err != nil || found {
				return v, err
			}
		}
		if name == "__class__" {
			return HostHandleType, nil
		}
		return nil, Errorf(AttributeError, "'%s' object has no attribute '%s'", o.HandleType, name)
	case *ExceptionValue:
		if v, ok := exceptionAttr(o, name); ok {
			return v, nil
		}
	}
	t := TypeOf(obj)
	attr, _, found := t.Lookup(name)
	if found && isDataDescriptor(attr) {
		return bindDescriptor(attr, obj, t)
	}
	if d := instanceDict(obj); d != nil {
		if v, ok := d.getStr(name); ok {
			return v, nil
		}
	}
	if found {
		return bindDescriptor(attr, obj, t)
	}
	switch name {
	case "__class__":
		return t, nil
	case "__dict__":
		if d := instanceDict(obj); d != nil {
			return d, nil
		}
	}
	if hook, _, ok := t.Lookup("__getattr__"); ok {
		return callMethod(hook, obj, t, Str(name))
	}
	return nil, Errorf(AttributeError, "'%s' object has no attribute '%s'", t.Name, name)
}

func exceptionAttr(e *ExceptionValue, name string) (Value, bool) {
	switch name {
	case "args":
		return NewTuple(e.Args...), true
	case "__cause__":
		if e.Cause == nil {
			return None, true
		}
		return e.Cause, true
	case "__context__":
		if e.Context == nil {
			return None, true
		}
		return e.Context, true
	case "__suppress_context__":
		return Bool(e.SuppressContext), true
	}
	if e.Class.IsSubtype(OSError) && len(e.Args) >= 2 {
		switch name {
		case "errno":
			return e.Args[0], true
		case "strerror":
			return e.Args[1], true
		case "filename":
			if len(e.Args) >= 3 {
				return e.Args[2], true
			}
			return None, true
		}
	}
	return nil, false
}

func typeGetAttr(t *Type, name string) (Value, error) {
	switch name {
	case "__name__":
		return Str(t.Name), nil
	case "__mro__":
		elems := make([]Value, len(t.mro))
		for i, c := range t.mro {
			elems[i] = c
		}
		return NewTuple(elems...), nil
	case "__bases__":
		elems := make([]Value, len(t.Bases))
		for i, c := range t.Bases {
			elems[i] = c
		}
		return NewTuple(elems...), nil
	case "__dict__":
		return t.Dict.Copy(), nil
	case "__class__":
		return TypeType, nil
	}
	if attr, _, ok := t.Lookup(name); ok {
		return bindDescriptor(attr, nil, t)
	}
	return nil, Errorf(AttributeError, "type object '%s' has no attribute '%s'", t.Name, name)
}

// SetAttr assigns an attribute, honouring data descriptors with setters.
func SetAttr(obj Value, name string, value Value) error {
	if t, ok := obj.(*Type); ok {
		if t.builtin {
			return Errorf(TypeError, "cannot set '%s' attribute of immutable type '%s'", name, t.Name)
		}
		setClassCell(value, t)
		return t.Dict.setStr(name, value)
	}
	t := TypeOf(obj)
	if attr, _, ok := t.Lookup(name); ok && isDataDescriptor(attr) {
		switch d := attr.(type) {
		case *PropertyValue:
			if d.Set == nil {
				return Errorf(AttributeError, "can't set attribute")
			}
			_, err := Call(d.Set, obj, value)
			return err
		case *Instance:
			set, _, _ := d.Class.Lookup("__set__")
			_, err := callMethod(set, d, d.Class, obj, value)
			return err
		}
	}
	d := instanceDict(obj)
	if d == nil {
		return Errorf(AttributeError, "'%s' object has no attribute '%s'", t.Name, name)
	}
	return d.setStr(name, value)
}

// DelAttr removes an instance attribute.
func DelAttr(obj Value, name string) error {
	d := instanceDict(obj)
	if d == nil || !d.delStr(name) {
		return Errorf(AttributeError, "'%s' object has no attribute '%s'", TypeOf(obj).Name, name)
	}
	return nil
}

// HasAttr reports whether GetAttr succeeds. Errors other than AttributeError
// propagate.
func HasAttr(obj Value, name string) (bool, error) {
	if _, err := GetAttr(obj, name); err != nil {
		if IsException(err, AttributeError) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
