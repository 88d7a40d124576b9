package exceptions

import (
	"io"
	"log/slog"
	"os"

	"github.com/emirpasic/gods/stacks/arraystack"

	"github.com/danielsun1106/graalpython/pkg/frame"
	"github.com/danielsun1106/graalpython/pkg/runtime"
)

// UnraisableEvent describes an exception that could not propagate, for
// example one raised by a finalizer.
type UnraisableEvent struct {
	Exception *runtime.ExceptionValue
	Object    runtime.Value
	Message   string
}

// Options configures a State.
type Options struct {
	Logger        *slog.Logger
	Stderr        io.Writer
	Frames        *frame.Stack
	WarningAction WarningAction
	// UnraisableHook, when set, receives unraisable events instead of the logger.
	UnraisableHook func(UnraisableEvent)
}

// State routes exceptions for one runtime: the pending-error indicator used
// by C-API style callers, the stack of exceptions currently being handled,
// and the sinks for errors that cannot propagate.
type State struct {
	current  *runtime.ExceptionValue
	last     *runtime.ExceptionValue
	handling *arraystack.Stack
	logger   *slog.Logger
	stderr   io.Writer
	frames   *frame.Stack
	action   WarningAction
	hook     func(UnraisableEvent)
	warned   map[warningKey]bool
}

// NewState builds a router with defaults for anything left unset.
func NewState(opts Options) *State {
	s := &State{
		handling: arraystack.New(),
		logger:   opts.Logger,
		stderr:   opts.Stderr,
		frames:   opts.Frames,
		action:   opts.WarningAction,
		hook:     opts.UnraisableHook,
		warned:   make(map[warningKey]bool),
	}
	if s.stderr == nil {
		s.stderr = os.Stderr
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(s.stderr, nil))
	}
	if s.action == "" {
		s.action = WarnDefault
	}
	return s
}

// Logger exposes the diagnostic logger.
func (s *State) Logger() *slog.Logger { return s.logger }

// Frames exposes the call stack the router reports locations from.
func (s *State) Frames() *frame.Stack { return s.frames }

// Handling returns the exception currently being handled, or nil.
func (s *State) Handling() *runtime.ExceptionValue {
	v, ok := s.handling.Peek()
	if !ok {
		return nil
	}
	return v.(*runtime.ExceptionValue)
}

func (s *State) pushHandling(exc *runtime.ExceptionValue) { s.handling.Push(exc) }

func (s *State) popHandling() { s.handling.Pop() }

// LastException returns the exception recorded by PrintEx(true).
func (s *State) LastException() *runtime.ExceptionValue { return s.last }
