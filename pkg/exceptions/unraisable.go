package exceptions

import (
	"github.com/danielsun1106/graalpython/pkg/runtime"
)

// WriteUnraisable reports and clears the pending exception. obj names the
// context it escaped from (a finalizer, a callback) and may be nil.
func (s *State) WriteUnraisable(obj runtime.Value) {
	exc := s.Fetch()
	if exc == nil {
		return
	}
	s.unraisable(exc, obj)
}

// RunFinalizer calls fn with the pending exception saved, so a finalizer
// neither sees nor clobbers it. Whatever fn raises is reported as
// unraisable; nothing propagates to the caller.
func (s *State) RunFinalizer(obj runtime.Value, fn func() error) {
	saved := s.Fetch()
	defer s.Restore(saved)
	if err := fn(); err != nil {
		s.unraisable(runtime.WrapGoError(err), obj)
	}
	if exc := s.Fetch(); exc != nil {
		s.unraisable(exc, obj)
	}
}

func (s *State) unraisable(exc *runtime.ExceptionValue, obj runtime.Value) {
	msg := "Exception ignored in"
	if obj != nil {
		msg += ": " + runtime.ReprOf(obj)
	}
	if s.hook != nil {
		s.hook(UnraisableEvent{Exception: exc, Object: obj, Message: msg})
		return
	}
	s.logger.Error(msg,
		"exception", exc.Class.Name,
		"error", exc.Error(),
		"diagnostic", DescribeException(exc).Describe())
}
