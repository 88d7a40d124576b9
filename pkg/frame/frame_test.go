package frame

import (
	"errors"
	"strings"
	"testing"

	"github.com/danielsun1106/graalpython/pkg/runtime"
)

func TestStackPushPop(t *testing.T) {
	builtins := runtime.NewDict()
	s := NewStack(builtins)
	outer := s.Push(&Code{Filename: "main.py", Name: "<module>", FirstLine: 1}, nil, nil)
	inner := s.Push(&Code{Filename: "lib.py", Name: "helper", FirstLine: 10}, nil, nil)
	if inner.Back() != outer {
		t.Fatalf("expected inner frame to link back to outer")
	}
	if inner.Globals != outer.Globals || inner.Builtins != builtins {
		t.Fatalf("expected globals and builtins to be shared")
	}
	if inner.Line != 10 || inner.Location() != "lib.py:10" {
		t.Fatalf("unexpected location %s", inner.Location())
	}
	if got, _ := s.Current(1); got != outer {
		t.Fatalf("expected Current(1) to be the outer frame")
	}
	if _, err := s.Current(2); !runtime.IsException(err, runtime.ValueError) {
		t.Fatalf("expected ValueError for a shallow stack, got %v", err)
	}
	want := "  File \"main.py\", line 1, in <module>\n  File \"lib.py\", line 10, in helper"
	if got := strings.Join(s.Traceback(), "\n"); got != want {
		t.Fatalf("unexpected traceback:\nexpected: %s\ngot: %s", want, got)
	}
	if s.Pop() != inner || s.Pop() != outer || s.Pop() != nil {
		t.Fatalf("expected frames to pop in LIFO order")
	}
}

func TestEnterPopsOnError(t *testing.T) {
	s := NewStack(nil)
	boom := errors.New("boom")
	_, err := s.Enter(&Code{Name: "f"}, nil, nil, func(*Frame) (runtime.Value, error) {
		if s.Depth() != 1 {
			t.Fatalf("expected one active frame, got %d", s.Depth())
		}
		return nil, boom
	})
	if err != boom || s.Depth() != 0 {
		t.Fatalf("expected the frame to be popped, depth %d err %v", s.Depth(), err)
	}
}

func TestStackSuper(t *testing.T) {
	a, _ := runtime.NewType("A", nil, map[string]runtime.Value{
		"who": runtime.NewFunction("who", func(*runtime.NativeCallContext, []runtime.Value) (runtime.Value, error) {
			return runtime.Str("A"), nil
		}),
	})
	b, _ := runtime.NewType("B", []*runtime.Type{a}, nil)
	obj, _ := runtime.Call(b)

	s := NewStack(nil)
	if _, err := s.Super(); !runtime.IsException(err, runtime.RuntimeError) {
		t.Fatalf("expected RuntimeError with no frame, got %v", err)
	}
	got, err := s.Enter(&Code{Name: "who"}, b, []runtime.Value{obj}, func(*Frame) (runtime.Value, error) {
		sup, err := s.Super()
		if err != nil {
			return nil, err
		}
		return runtime.CallMethod(sup, "who")
	})
	if err != nil || runtime.ReprOf(got) != "'A'" {
		t.Fatalf("expected super() in B to reach A, got %v (%v)", got, err)
	}
	f := &Frame{}
	if _, ok := f.ClassScope(); ok {
		t.Fatalf("expected no class cell on a bare frame")
	}
	if f.String() != "<frame>" {
		t.Fatalf("unexpected frame repr %s", f.String())
	}
}
