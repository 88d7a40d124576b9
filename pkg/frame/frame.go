package frame

import (
	"fmt"

	"github.com/emirpasic/gods/stacks/arraystack"

	"github.com/danielsun1106/graalpython/pkg/runtime"
)

// Code describes the function a frame executes.
type Code struct {
	Filename  string
	Name      string
	FirstLine int
}

// Frame is one activation record. Class is the __class__ cell of the running
// function and Args its positional arguments; together they back
// zero-argument super.
type Frame struct {
	Code     *Code
	Line     int
	Locals   *runtime.DictValue
	Globals  *runtime.DictValue
	Builtins *runtime.DictValue
	Class    runtime.Value
	Args     []runtime.Value
	back     *Frame
}

// Back returns the calling frame.
func (f *Frame) Back() *Frame {
	if f == nil {
		return nil
	}
	return f.back
}

// Argument implements runtime.CallerFrame.
func (f *Frame) Argument(i int) (runtime.Value, bool) {
	if f == nil || i < 0 || i >= len(f.Args) {
		return nil, false
	}
	return f.Args[i], true
}

// ClassScope implements runtime.CallerFrame.
func (f *Frame) ClassScope() (runtime.Value, bool) {
	if f == nil || f.Class == nil {
		return nil, false
	}
	return f.Class, true
}

// Location renders "file:line" for diagnostics.
func (f *Frame) Location() string {
	if f == nil || f.Code == nil {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", f.Code.Filename, f.Line)
}

func (f *Frame) String() string {
	if f == nil || f.Code == nil {
		return "<frame>"
	}
	return fmt.Sprintf("<frame at %s, code %s>", f.Location(), f.Code.Name)
}

// Stack is the call stack of one runtime state.
type Stack struct {
	frames   *arraystack.Stack
	builtins *runtime.DictValue
}

// NewStack creates an empty call stack sharing one builtins namespace.
func NewStack(builtins *runtime.DictValue) *Stack {
	if builtins == nil {
		builtins = runtime.NewDict()
	}
	return &Stack{frames: arraystack.New(), builtins: builtins}
}

// Push activates a new frame on top of the stack.
func (s *Stack) Push(code *Code, class runtime.Value, args []runtime.Value) *Frame {
	f := &Frame{
		Code:     code,
		Locals:   runtime.NewDict(),
		Builtins: s.builtins,
		Class:    class,
		Args:     args,
		back:     s.Top(),
	}
	if code != nil {
		f.Line = code.FirstLine
	}
	if f.back != nil {
		f.Globals = f.back.Globals
	} else {
		f.Globals = runtime.NewDict()
	}
	s.frames.Push(f)
	return f
}

// Pop removes the top frame.
func (s *Stack) Pop() *Frame {
	v, ok := s.frames.Pop()
	if !ok {
		return nil
	}
	return v.(*Frame)
}

// Top returns the running frame, or nil.
func (s *Stack) Top() *Frame {
	v, ok := s.frames.Peek()
	if !ok {
		return nil
	}
	return v.(*Frame)
}

// Depth reports how many frames are active.
func (s *Stack) Depth() int { return s.frames.Size() }

// Current returns the frame depth levels below the top.
func (s *Stack) Current(depth int) (*Frame, error) {
	if depth < 0 {
		return nil, runtime.Errorf(runtime.ValueError, "depth must be non-negative")
	}
	frames := s.frames.Values()
	if depth >= len(frames) {
		return nil, runtime.Errorf(runtime.ValueError, "call stack is not deep enough")
	}
	return frames[depth].(*Frame), nil
}

// Enter runs fn inside a fresh frame and pops it on every exit path.
func (s *Stack) Enter(code *Code, class runtime.Value, args []runtime.Value, fn func(*Frame) (runtime.Value, error)) (runtime.Value, error) {
	f := s.Push(code, class, args)
	defer s.Pop()
	return fn(f)
}

// Super resolves zero-argument super for the running frame.
func (s *Stack) Super() (*runtime.SuperValue, error) {
	top := s.Top()
	if top == nil {
		return runtime.SuperFromFrame(nil)
	}
	return runtime.SuperFromFrame(top)
}

// Traceback lists the active frames from the outermost call inward.
func (s *Stack) Traceback() []string {
	frames := s.frames.Values()
	out := make([]string, 0, len(frames))
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i].(*Frame)
		name := "<module>"
		if f.Code != nil {
			name = f.Code.Name
		}
		out = append(out, fmt.Sprintf("  File \"%s\", line %d, in %s", fileOf(f), f.Line, name))
	}
	return out
}

func fileOf(f *Frame) string {
	if f.Code == nil {
		return "<unknown>"
	}
	return f.Code.Filename
}
