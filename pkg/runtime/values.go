package runtime

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNone Kind = iota
	KindNotImplemented
	KindBool
	KindInt
	KindFloat
	KindStr
	KindBytes
	KindTuple
	KindList
	KindDict
	KindSet
	KindFrozenSet
	KindDictView
	KindIterator
	KindType
	KindInstance
	KindFunction
	KindBoundMethod
	KindClassMethod
	KindStaticMethod
	KindProperty
	KindSuper
	KindException
	KindHostHandle
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNotImplemented:
		return "not_implemented"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindBytes:
		return "bytes"
	case KindTuple:
		return "tuple"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	case KindSet:
		return "set"
	case KindFrozenSet:
		return "frozenset"
	case KindDictView:
		return "dict_view"
	case KindIterator:
		return "iterator"
	case KindType:
		return "type"
	case KindInstance:
		return "instance"
	case KindFunction:
		return "function"
	case KindBoundMethod:
		return "bound_method"
	case KindClassMethod:
		return "classmethod"
	case KindStaticMethod:
		return "staticmethod"
	case KindProperty:
		return "property"
	case KindSuper:
		return "super"
	case KindException:
		return "exception"
	case KindHostHandle:
		return "host_handle"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

var nextObjectID atomic.Uint64

// identity gives heap objects a stable id, assigned on first use.
type identity struct {
	id atomic.Uint64
}

func (i *identity) objectID() uint64 {
	if id := i.id.Load(); id != 0 {
		return id
	}
	i.id.CompareAndSwap(0, nextObjectID.Add(1))
	return i.id.Load()
}

type identified interface {
	objectID() uint64
}

// ID returns the identity of an object. Scalars have no identity and report 0.
func ID(v Value) uint64 {
	if o, ok := v.(identified); ok {
		return o.objectID()
	}
	return 0
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NoneValue struct{}

func (NoneValue) Kind() Kind { return KindNone }

// None is the singleton absent value.
var None = NoneValue{}

type NotImplementedValue struct{}

func (NotImplementedValue) Kind() Kind { return KindNotImplemented }

// NotImplemented is returned by comparison hooks that decline an operand.
var NotImplemented = NotImplementedValue{}

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

var (
	True  = BoolValue{Val: true}
	False = BoolValue{Val: false}
)

// Bool converts a Go bool.
func Bool(b bool) BoolValue {
	if b {
		return True
	}
	return False
}

type IntValue struct {
	Val int64
}

func (v IntValue) Kind() Kind { return KindInt }

func Int(n int64) IntValue { return IntValue{Val: n} }

type FloatValue struct {
	Val float64
}

func (v FloatValue) Kind() Kind { return KindFloat }

type StrValue struct {
	Val string
}

func (v StrValue) Kind() Kind { return KindStr }

func Str(s string) StrValue { return StrValue{Val: s} }

// BytesValue is immutable; callers must not modify Val after construction.
type BytesValue struct {
	Val []byte
}

func (v BytesValue) Kind() Kind { return KindBytes }

//-----------------------------------------------------------------------------
// Sequences
//-----------------------------------------------------------------------------

type TupleValue struct {
	identity
	Elements []Value
}

func (v *TupleValue) Kind() Kind { return KindTuple }

func NewTuple(elems ...Value) *TupleValue {
	return &TupleValue{Elements: elems}
}

type ListValue struct {
	identity
	Elements []Value
}

func (v *ListValue) Kind() Kind { return KindList }

func NewList(elems ...Value) *ListValue {
	return &ListValue{Elements: elems}
}

// HostHandleValue carries opaque host handles (streams, compiled patterns)
// through the object model.
type HostHandleValue struct {
	identity
	HandleType string
	Value      any
}

func (v *HostHandleValue) Kind() Kind { return KindHostHandle }

// HostAttrs is implemented by host values that expose attributes, usually
// bound native methods.
type HostAttrs interface {
	HostAttr(name string) (Value, bool, error)
}

// NewHostHandle wraps a host value.
func NewHostHandle(handleType string, v any) *HostHandleValue {
	return &HostHandleValue{HandleType: handleType, Value: v}
}

//-----------------------------------------------------------------------------
// Iterators
//-----------------------------------------------------------------------------

// IteratorValue represents a lazily evaluated iterator.
type IteratorValue struct {
	identity
	mu     sync.Mutex
	next   func() (Value, bool, error)
	closer func()
	closed bool
}

// NewIteratorValue constructs an iterator with the provided driver function.
func NewIteratorValue(step func() (Value, bool, error), finalize func()) *IteratorValue {
	if step == nil {
		step = func() (Value, bool, error) { return nil, true, nil }
	}
	return &IteratorValue{next: step, closer: finalize}
}

func (v *IteratorValue) Kind() Kind { return KindIterator }

// Next advances the iterator. The bool result reports whether iteration has completed.
func (v *IteratorValue) Next() (Value, bool, error) {
	if v == nil {
		return nil, true, nil
	}
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil, true, nil
	}
	step := v.next
	v.mu.Unlock()
	val, done, err := step()
	if done || err != nil {
		v.Close()
	}
	return val, done, err
}

// Close releases any resources held by the iterator.
func (v *IteratorValue) Close() {
	if v == nil {
		return
	}
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	closer := v.closer
	v.mu.Unlock()
	if closer != nil {
		closer()
	}
}

//-----------------------------------------------------------------------------
// Functions & descriptors
//-----------------------------------------------------------------------------

// NativeCallContext is handed to every native function call. It records the
// callee and the positional arguments so zero-argument super can recover the
// defining class and the receiver without frame inspection.
type NativeCallContext struct {
	Function *FunctionValue
	Args     []Value
	Kwargs   *DictValue
	State    any
}

// Argument returns the i-th positional argument of the call.
func (c *NativeCallContext) Argument(i int) (Value, bool) {
	if c == nil || i < 0 || i >= len(c.Args) {
		return nil, false
	}
	return c.Args[i], true
}

// ClassScope returns the class cell of the function being executed.
func (c *NativeCallContext) ClassScope() (Value, bool) {
	if c == nil || c.Function == nil || c.Function.Class == nil {
		return nil, false
	}
	return c.Function.Class, true
}

type NativeFunc func(*NativeCallContext, []Value) (Value, error)

// FunctionValue is a callable defined in Go. Class is the __class__ cell,
// filled in when the function is placed in a class body.
type FunctionValue struct {
	identity
	Name  string
	Impl  NativeFunc
	Class Value
}

func (v *FunctionValue) Kind() Kind { return KindFunction }

// NewFunction wraps a native implementation.
func NewFunction(name string, impl NativeFunc) *FunctionValue {
	return &FunctionValue{Name: name, Impl: impl}
}

// Bind implements the descriptor protocol for plain functions.
func (v *FunctionValue) Bind(obj Value, owner *Type) (Value, error) {
	if obj == nil {
		return v, nil
	}
	return BoundMethodValue{Receiver: obj, Method: v}, nil
}

// Bound methods capture `self` and a callable.
type BoundMethodValue struct {
	Receiver Value
	Method   Value
}

func (v BoundMethodValue) Kind() Kind { return KindBoundMethod }

type ClassMethodValue struct {
	Func Value
}

func (v ClassMethodValue) Kind() Kind { return KindClassMethod }

func (v ClassMethodValue) Bind(obj Value, owner *Type) (Value, error) {
	if owner == nil {
		owner = TypeOf(obj)
	}
	return BoundMethodValue{Receiver: owner, Method: v.Func}, nil
}

type StaticMethodValue struct {
	Func Value
}

func (v StaticMethodValue) Kind() Kind { return KindStaticMethod }

func (v StaticMethodValue) Bind(obj Value, owner *Type) (Value, error) {
	return v.Func, nil
}

// PropertyValue is a data descriptor with an optional setter.
type PropertyValue struct {
	identity
	Get Value
	Set Value
}

func (v *PropertyValue) Kind() Kind { return KindProperty }

func (v *PropertyValue) Bind(obj Value, owner *Type) (Value, error) {
	if obj == nil {
		return v, nil
	}
	if v.Get == nil {
		return nil, Errorf(AttributeError, "unreadable attribute")
	}
	return Call(v.Get, obj)
}

// Binder is implemented by descriptors that produce a bound value when
// looked up through an instance or a class.
type Binder interface {
	Bind(obj Value, owner *Type) (Value, error)
}

//-----------------------------------------------------------------------------
// Instances
//-----------------------------------------------------------------------------

// Instance is an object of a user-defined class. Payload holds the builtin
// value when the class derives from a builtin such as int or dict.
type Instance struct {
	identity
	Class   *Type
	Dict    *DictValue
	Payload Value
}

func (v *Instance) Kind() Kind { return KindInstance }

// Unwrap returns the builtin payload of an instance, or v itself.
func Unwrap(v Value) Value {
	if inst, ok := v.(*Instance); ok && inst.Payload != nil {
		return inst.Payload
	}
	return v
}
