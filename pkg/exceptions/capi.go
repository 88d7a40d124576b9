package exceptions

import (
	"fmt"

	"github.com/danielsun1106/graalpython/pkg/runtime"
)

// The indicator API mirrors the embedding interface: at most one pending
// exception per state, set by a failing native call and inspected, fetched
// or cleared by its caller.

// SetObject makes kind(value) the pending exception. A value that is already
// an instance of kind is used as is; None means no arguments and a tuple
// spreads into arguments. A kind that is not an exception class records a
// SystemError instead.
func (s *State) SetObject(kind runtime.Value, value runtime.Value) {
	t, ok := kind.(*runtime.Type)
	if !ok || !isExceptionClass(t) {
		s.setCurrent(runtime.Errorf(runtime.SystemError,
			"exception %s not a BaseException subclass", runtime.ReprOf(kind)))
		return
	}
	if exc, ok := value.(*runtime.ExceptionValue); ok && exc.Class.IsSubtype(t) {
		s.setCurrent(exc)
		return
	}
	var args []runtime.Value
	switch v := value.(type) {
	case nil, runtime.NoneValue:
	case *runtime.TupleValue:
		args = v.Elements
	default:
		args = []runtime.Value{v}
	}
	exc, err := instantiate(t, args)
	if err != nil {
		s.SetFromError(err)
		return
	}
	s.setCurrent(exc)
}

// SetString sets kind(message) as the pending exception.
func (s *State) SetString(kind runtime.Value, message string) {
	s.SetObject(kind, runtime.Str(message))
}

// SetNone sets kind() as the pending exception.
func (s *State) SetNone(kind runtime.Value) {
	s.SetObject(kind, runtime.None)
}

// SetFormat formats a message, sets it on kind and returns the pending
// exception so callers can return it directly.
func (s *State) SetFormat(kind runtime.Value, format string, args ...runtime.Value) error {
	msg, err := runtime.FormatPercent(format, args...)
	if err != nil {
		s.SetFromError(err)
		return s.current
	}
	s.SetString(kind, msg)
	return s.current
}

// SetFromError records a Go error as the pending exception. Host errors are
// converted first; errno values become the matching OSError subclass.
func (s *State) SetFromError(err error) {
	if err == nil {
		return
	}
	s.setCurrent(runtime.WrapGoError(err))
}

// NoMemory records a MemoryError and returns it.
func (s *State) NoMemory() error {
	s.SetNone(runtime.MemoryError)
	return s.current
}

func (s *State) setCurrent(exc *runtime.ExceptionValue) {
	s.chain(exc)
	s.stamp(exc)
	s.current = exc
}

// Occurred returns the class of the pending exception, or nil.
func (s *State) Occurred() *runtime.Type {
	if s.current == nil {
		return nil
	}
	return s.current.Class
}

// ExceptionMatches reports whether the pending exception is caught by target.
func (s *State) ExceptionMatches(target runtime.Value) bool {
	if s.current == nil {
		return false
	}
	return Matches(s.current.Class, target)
}

// Clear drops the pending exception.
func (s *State) Clear() { s.current = nil }

// Fetch takes the pending exception, leaving none.
func (s *State) Fetch() *runtime.ExceptionValue {
	exc := s.current
	s.current = nil
	return exc
}

// Restore makes exc pending again; nil clears.
func (s *State) Restore(exc *runtime.ExceptionValue) { s.current = exc }

// Err returns the pending exception as a Go error without clearing it.
func (s *State) Err() error {
	if s.current == nil {
		return nil
	}
	return s.current
}

// PrintEx writes the pending exception with its chain to stderr and clears
// it. With setLast the exception is kept for LastException.
func (s *State) PrintEx(setLast bool) {
	exc := s.Fetch()
	if exc == nil {
		return
	}
	if setLast {
		s.last = exc
	}
	fmt.Fprint(s.stderr, FormatException(exc))
}
