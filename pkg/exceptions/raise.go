package exceptions

import (
	"github.com/danielsun1106/graalpython/pkg/runtime"
)

// Handler is one except clause: Match is a class, an instance or a tuple of
// either, and Body runs with the caught exception.
type Handler struct {
	Match runtime.Value
	Body  func(exc *runtime.ExceptionValue) error

	cleanup func() error
}

// Catch builds a Handler.
func Catch(match runtime.Value, body func(exc *runtime.ExceptionValue) error) Handler {
	return Handler{Match: match, Body: body}
}

// Finally builds a clause that Try runs on every exit path, after any
// matching handler.
func Finally(fn func() error) Handler {
	return Handler{cleanup: fn}
}

// Matches reports whether given (an exception instance or class) is caught
// by target. Tuples are tried left to right; two exception classes match by
// subclassing; anything else matches by identity only.
func Matches(given, target runtime.Value) bool {
	if given == nil || target == nil {
		return false
	}
	if tup, ok := target.(*runtime.TupleValue); ok {
		for _, el := range tup.Elements {
			if Matches(given, el) {
				return true
			}
		}
		return false
	}
	if exc, ok := given.(*runtime.ExceptionValue); ok {
		given = exc.Class
	}
	gt, gok := given.(*runtime.Type)
	tt, tok := target.(*runtime.Type)
	if gok && tok && isExceptionClass(gt) && isExceptionClass(tt) {
		return gt.IsSubtype(tt)
	}
	return runtime.Is(given, target)
}

func isExceptionClass(t *runtime.Type) bool {
	return t != nil && t.IsSubtype(runtime.BaseException)
}

// instantiate turns a class or instance into an exception record.
func instantiate(kind runtime.Value, args []runtime.Value) (*runtime.ExceptionValue, error) {
	switch k := kind.(type) {
	case *runtime.ExceptionValue:
		if len(args) > 0 {
			return nil, runtime.Errorf(runtime.TypeError, "instance exception may not have a separate value")
		}
		return k, nil
	case *runtime.Type:
		if !isExceptionClass(k) {
			return nil, runtime.Errorf(runtime.TypeError, "exceptions must derive from BaseException")
		}
		v, err := runtime.Call(k, args...)
		if err != nil {
			return nil, err
		}
		exc, ok := v.(*runtime.ExceptionValue)
		if !ok {
			return nil, runtime.Errorf(runtime.TypeError,
				"calling %s should have returned an instance of BaseException, not %s",
				runtime.ReprOf(k), runtime.TypeOf(v).Name)
		}
		return exc, nil
	default:
		return nil, runtime.Errorf(runtime.TypeError, "exceptions must derive from BaseException")
	}
}

// chain links exc to the exception being handled, unless that would close a
// cycle in the context chain.
func (s *State) chain(exc *runtime.ExceptionValue) {
	top := s.Handling()
	if top == nil || top == exc || exc.Context != nil {
		return
	}
	for c := top; c != nil; c = c.Context {
		if c.Context == exc {
			c.Context = nil
			break
		}
	}
	exc.Context = top
}

func (s *State) stamp(exc *runtime.ExceptionValue) {
	if exc.Traceback == nil && s.frames != nil && s.frames.Depth() > 0 {
		exc.Traceback = s.frames.Traceback()
	}
}

// Raise builds an exception from a class (called with args) or an instance
// and returns it as an error for the caller to propagate.
func (s *State) Raise(kind runtime.Value, args ...runtime.Value) error {
	exc, err := instantiate(kind, args)
	if err != nil {
		return err
	}
	s.chain(exc)
	s.stamp(exc)
	return exc
}

// RaiseFrom raises kind with an explicit cause. A None cause suppresses the
// implicit context in tracebacks.
func (s *State) RaiseFrom(kind, cause runtime.Value) error {
	exc, err := instantiate(kind, nil)
	if err != nil {
		return err
	}
	switch c := cause.(type) {
	case nil, runtime.NoneValue:
		exc.Cause = nil
	case *runtime.Type, *runtime.ExceptionValue:
		if t, ok := c.(*runtime.Type); ok && !isExceptionClass(t) {
			return runtime.Errorf(runtime.TypeError, "exception causes must derive from BaseException")
		}
		ce, err := instantiate(c, nil)
		if err != nil {
			return err
		}
		exc.Cause = ce
	default:
		return runtime.Errorf(runtime.TypeError, "exception causes must derive from BaseException")
	}
	exc.SuppressContext = true
	s.chain(exc)
	s.stamp(exc)
	return exc
}

// Format raises kind with a message built from a %-style format.
func (s *State) Format(kind *runtime.Type, format string, args ...runtime.Value) error {
	msg, err := runtime.FormatPercent(format, args...)
	if err != nil {
		return err
	}
	return s.Raise(kind, runtime.Str(msg))
}

// Try runs body and routes a raised exception to the first handler whose
// Match accepts it. While a handler runs its exception is the one being
// handled, so anything the handler raises is chained to it. Errors that do
// not match any handler, and host errors that are not exceptions, propagate
// unchanged.
func (s *State) Try(body func() error, handlers ...Handler) error {
	var catches []Handler
	var cleanups []func() error
	for _, h := range handlers {
		if h.cleanup != nil {
			cleanups = append(cleanups, h.cleanup)
			continue
		}
		catches = append(catches, h)
	}
	if len(cleanups) == 0 {
		return s.try(body, catches)
	}
	return s.TryFinally(func() error { return s.try(body, catches) }, func() error {
		for _, fn := range cleanups {
			if err := fn(); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *State) try(body func() error, handlers []Handler) error {
	err := body()
	if err == nil {
		return nil
	}
	exc, ok := runtime.AsException(err)
	if !ok {
		exc = runtime.WrapGoError(err)
	}
	for _, h := range handlers {
		if !Matches(exc, h.Match) {
			continue
		}
		return s.Handle(exc, h.Body)
	}
	return err
}

// Handle runs fn with exc marked as the exception being handled.
func (s *State) Handle(exc *runtime.ExceptionValue, fn func(*runtime.ExceptionValue) error) error {
	s.pushHandling(exc)
	herr := fn(exc)
	s.popHandling()
	if herr == nil {
		return nil
	}
	if hexc, ok := runtime.AsException(herr); ok && hexc != exc && hexc.Context == nil {
		hexc.Context = exc
	}
	return herr
}

// TryFinally runs body and then cleanup on every path. An error from
// cleanup replaces the body's error, chained to it.
func (s *State) TryFinally(body func() error, cleanup func() error) error {
	err := body()
	var cerr error
	if exc, ok := runtime.AsException(err); ok {
		cerr = s.Handle(exc, func(*runtime.ExceptionValue) error { return cleanup() })
	} else {
		cerr = cleanup()
	}
	if cerr != nil {
		return cerr
	}
	return err
}
