package runtime

import "fmt"

// SuperValue forwards attribute lookups to the classes that follow ThisType
// in the MRO of the receiver's type.
type SuperValue struct {
	identity
	ThisType *Type
	Obj      Value
	ObjType  *Type
}

func (s *SuperValue) Kind() Kind { return KindSuper }

// CallerFrame is what zero-argument super needs from the running call: the
// receiver (first positional argument) and the class cell of the function.
type CallerFrame interface {
	Argument(i int) (Value, bool)
	ClassScope() (Value, bool)
}

// NewSuper validates super(cls, obj). obj may be an instance of cls or a
// subclass of cls; nil yields an unbound proxy.
func NewSuper(cls *Type, obj Value) (*SuperValue, error) {
	if cls == nil {
		return nil, Errorf(TypeError, "super() argument 1 must be a type")
	}
	if obj == nil {
		return &SuperValue{ThisType: cls}, nil
	}
	objType, err := superCheck(cls, obj)
	if err != nil {
		return nil, err
	}
	return &SuperValue{ThisType: cls, Obj: obj, ObjType: objType}, nil
}

func superCheck(cls *Type, obj Value) (*Type, error) {
	if t, ok := obj.(*Type); ok && t.IsSubtype(cls) {
		return t, nil
	}
	if t := TypeOf(obj); t.IsSubtype(cls) {
		return t, nil
	}
	return nil, Errorf(TypeError, "super(type, obj): obj must be an instance or subtype of type")
}

// SuperFromFrame builds the zero-argument form from an explicit frame capture.
func SuperFromFrame(f CallerFrame) (*SuperValue, error) {
	if f == nil {
		return nil, Errorf(RuntimeError, "super(): no current frame")
	}
	obj, ok := f.Argument(0)
	if !ok {
		return nil, Errorf(RuntimeError, "super(): no arguments")
	}
	cell, ok := f.ClassScope()
	if !ok {
		return nil, Errorf(RuntimeError, "super(): __class__ cell not found")
	}
	if cell == nil || cell == Value(None) {
		return nil, Errorf(RuntimeError, "super(): empty __class__ cell")
	}
	cls, ok := cell.(*Type)
	if !ok {
		return nil, Errorf(RuntimeError, "super(): __class__ is not a type (%s)", TypeOf(cell).Name)
	}
	return NewSuper(cls, obj)
}

// Bind turns an unbound proxy into a bound one.
func (s *SuperValue) Bind(obj Value, owner *Type) (Value, error) {
	if obj == nil || s.Obj != nil {
		return s, nil
	}
	return NewSuper(s.ThisType, obj)
}

// GetAttr resolves name strictly after ThisType in the receiver's MRO and
// binds the result with the receiver and the class that owns the attribute.
// Classmethods bind to the receiver's class so cls stays the most derived
// class through a chain of cooperative calls.
func (s *SuperValue) GetAttr(name string) (Value, error) {
	if s.Obj != nil && name != "__class__" {
		if v, owner, ok := s.ObjType.lookupAfter(s.ThisType, name); ok {
			receiver := s.Obj
			if t, isType := s.Obj.(*Type); isType && t == s.ObjType {
				receiver = nil
			}
			if _, isClassMethod := v.(ClassMethodValue); isClassMethod {
				owner = s.ObjType
			}
			return bindDescriptor(v, receiver, owner)
		}
	}
	switch name {
	case "__thisclass__":
		return s.ThisType, nil
	case "__self__":
		if s.Obj == nil {
			return None, nil
		}
		return s.Obj, nil
	case "__self_class__":
		if s.ObjType == nil {
			return None, nil
		}
		return s.ObjType, nil
	case "__class__":
		return SuperType, nil
	}
	return nil, Errorf(AttributeError, "'super' object has no attribute '%s'", name)
}

func (s *SuperValue) repr() string {
	if s.ObjType != nil {
		return fmt.Sprintf("<super: <class '%s'>, <%s object>>", s.ThisType.Name, s.ObjType.Name)
	}
	return fmt.Sprintf("<super: <class '%s'>, NULL>", s.ThisType.Name)
}
