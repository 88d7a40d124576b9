package interpreter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielsun1106/graalpython/pkg/config"
	"github.com/danielsun1106/graalpython/pkg/exceptions"
	"github.com/danielsun1106/graalpython/pkg/frame"
	"github.com/danielsun1106/graalpython/pkg/pyio"
	"github.com/danielsun1106/graalpython/pkg/runtime"
	"github.com/danielsun1106/graalpython/pkg/sre"
)

type harness struct {
	interp *Interpreter
	stdout bytes.Buffer
	stderr bytes.Buffer
	events []exceptions.UnraisableEvent
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	h := &harness{}
	interp, err := New(Options{
		Config:         cfg,
		Stdout:         &h.stdout,
		Stderr:         &h.stderr,
		UnraisableHook: func(ev exceptions.UnraisableEvent) { h.events = append(h.events, ev) },
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	h.interp = interp
	return h
}

func (h *harness) call(t *testing.T, name string, args ...runtime.Value) runtime.Value {
	t.Helper()
	v, err := h.interp.Call(name, args...)
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", name, err)
	}
	return v
}

func TestBuiltinsNamespace(t *testing.T) {
	h := newHarness(t, nil)
	d := h.call(t, "dict", runtime.NewList(runtime.NewTuple(runtime.Str("a"), runtime.Int(1))))
	if got := runtime.ReprOf(d); got != "{'a': 1}" {
		t.Fatalf("unexpected dict:\nexpected: %s\ngot: %s", "{'a': 1}", got)
	}
	if n := h.call(t, "len", d); runtime.ReprOf(n) != "1" {
		t.Fatalf("expected len 1, got %v", n)
	}
	ok := h.call(t, "isinstance", runtime.True, runtime.NewTuple(runtime.StrType, runtime.IntType))
	if ok != runtime.Value(runtime.True) {
		t.Fatalf("expected bool to be an instance of int")
	}
	if _, err := h.interp.Lookup("KeyError"); err != nil {
		t.Fatalf("expected exception classes in builtins: %v", err)
	}
	_, err := h.interp.Call("nope")
	if exc, ok := runtime.AsException(err); !ok || exc.Error() != "NameError: name 'nope' is not defined" {
		t.Fatalf("expected NameError, got %v", err)
	}
	_, err = h.interp.Call("hash", runtime.NewList())
	if exc, ok := runtime.AsException(err); !ok || exc.Error() != "TypeError: unhashable type: 'list'" {
		t.Fatalf("expected unhashable TypeError, got %v", err)
	}
}

func TestGlobalsShadowBuiltins(t *testing.T) {
	h := newHarness(t, nil)
	h.interp.GlobalEnvironment().Define("len", runtime.Int(3))
	if v, _ := h.interp.Lookup("len"); runtime.ReprOf(v) != "3" {
		t.Fatalf("expected global binding to win, got %v", v)
	}
	if !h.interp.Builtins().Has("len") {
		t.Fatalf("expected builtins to keep len")
	}
}

func TestZeroArgumentSuperFollowsMRO(t *testing.T) {
	h := newHarness(t, nil)
	i := h.interp
	who := func(letter string) *runtime.FunctionValue {
		return i.Method("who", func(f *frame.Frame, args []runtime.Value) (runtime.Value, error) {
			s, err := i.Call("super")
			if err != nil {
				return nil, err
			}
			rest, err := runtime.CallMethod(s, "who")
			if err != nil {
				return nil, err
			}
			return runtime.Str(letter + rest.(runtime.StrValue).Val), nil
		})
	}
	base := runtime.NewFunction("who", func(*runtime.NativeCallContext, []runtime.Value) (runtime.Value, error) {
		return runtime.Str("A"), nil
	})
	a, _ := runtime.NewType("A", nil, map[string]runtime.Value{"who": base})
	b, _ := runtime.NewType("B", []*runtime.Type{a}, map[string]runtime.Value{"who": who("B")})
	c, _ := runtime.NewType("C", []*runtime.Type{a}, map[string]runtime.Value{"who": who("C")})
	d, err := runtime.NewType("D", []*runtime.Type{b, c}, map[string]runtime.Value{"who": who("D")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inst, err := runtime.Call(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := runtime.CallMethod(inst, "who")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runtime.ReprOf(got) != "'DBCA'" {
		t.Fatalf("expected MRO order DBCA, got %v", got)
	}
	if i.Frames().Depth() != 0 {
		t.Fatalf("expected frames to be popped, depth %d", i.Frames().Depth())
	}
}

func TestSuperWithoutFrame(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.interp.Call("super")
	if exc, ok := runtime.AsException(err); !ok || exc.Error() != "RuntimeError: super(): no current frame" {
		t.Fatalf("expected RuntimeError, got %v", err)
	}
}

func TestOpenRoundTrip(t *testing.T) {
	h := newHarness(t, nil)
	path := filepath.Join(t.TempDir(), "notes.txt")
	f := h.call(t, "open", runtime.Str(path), runtime.Str("w"))
	if _, err := runtime.CallMethod(f, "write", runtime.Str("one\ntwo\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := runtime.CallMethod(f, "close"); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "one\ntwo\n" {
		t.Fatalf("unexpected file contents %q (%v)", data, err)
	}
	f = h.call(t, "open", runtime.Str(path))
	line, err := runtime.CallMethod(f, "readline")
	if err != nil || runtime.ReprOf(line) != "'one\\n'" {
		t.Fatalf("unexpected readline %v (%v)", line, err)
	}
	runtime.CallMethod(f, "close")

	_, err = h.interp.Call("open", runtime.Str(path), runtime.Str("rw"))
	if exc, ok := runtime.AsException(err); !ok || exc.Error() != "ValueError: must have exactly one of create/read/write/append mode" {
		t.Fatalf("expected mode error, got %v", err)
	}
	_, err = h.interp.Call("open", runtime.Str(filepath.Join(t.TempDir(), "missing")))
	if !runtime.IsException(err, runtime.FileNotFoundError) {
		t.Fatalf("expected FileNotFoundError, got %v", err)
	}
}

func TestOpenBinaryRoundTrip(t *testing.T) {
	h := newHarness(t, nil)
	path := filepath.Join(t.TempDir(), "blob.bin")
	payload := []byte("\x00\xffab\r\n")
	f := h.call(t, "open", runtime.Str(path), runtime.Str("wb"))
	if _, err := runtime.CallMethod(f, "write", runtime.BytesValue{Val: payload}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := runtime.CallMethod(f, "close"); err != nil {
		t.Fatalf("close: %v", err)
	}
	f = h.call(t, "open", runtime.Str(path), runtime.Str("rb"))
	got, err := runtime.CallMethod(f, "read")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	b, ok := got.(runtime.BytesValue)
	if !ok || !bytes.Equal(b.Val, payload) {
		t.Fatalf("unexpected contents:\nexpected: %q\ngot: %v", payload, got)
	}
	runtime.CallMethod(f, "close")

	s, err := h.interp.Open(path, "ab", pyio.DefaultOpenOptions())
	if err != nil {
		t.Fatalf("Open(ab): %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	enc := "utf-8"
	opts := pyio.DefaultOpenOptions()
	opts.Encoding = &enc
	_, err = h.interp.Open(path, "rb", opts)
	if exc, ok := runtime.AsException(err); !ok || exc.Error() != "ValueError: binary mode doesn't take an encoding argument" {
		t.Fatalf("expected an explicit encoding to be rejected, got %v", err)
	}
}

func TestCloseFinalizesUnclosedStreams(t *testing.T) {
	cfg := config.Default()
	cfg.Warnings.Action = "error"
	h := newHarness(t, cfg)
	path := filepath.Join(t.TempDir(), "leak.txt")
	f := h.call(t, "open", runtime.Str(path), runtime.Str("w"))
	runtime.CallMethod(f, "write", runtime.Str("data"))
	h.interp.Close()
	if len(h.events) != 1 || !runtime.IsException(h.events[0].Exception, runtime.ResourceWarning) {
		t.Fatalf("expected one ResourceWarning event, got %#v", h.events)
	}
	if data, _ := os.ReadFile(path); string(data) != "data" {
		t.Fatalf("expected buffered data flushed on finalize, got %q", data)
	}
	if h.interp.State().Occurred() != nil {
		t.Fatalf("expected no pending exception after finalization")
	}
}

func TestCloseWithoutWarning(t *testing.T) {
	cfg := config.Default()
	cfg.Warnings.Action = "error"
	cfg.IO.WarnUnclosed = false
	h := newHarness(t, cfg)
	h.call(t, "open", runtime.Str(filepath.Join(t.TempDir(), "quiet.txt")), runtime.Str("w"))
	h.interp.Close()
	if len(h.events) != 0 {
		t.Fatalf("expected no events, got %#v", h.events)
	}
}

func TestRegexCompileIsCached(t *testing.T) {
	h := newHarness(t, nil)
	first := h.call(t, "re_compile", runtime.Str(`(\w+)@(\w+)`))
	second := h.call(t, "re_compile", runtime.Str(`(\w+)@(\w+)`))
	p1, _ := sre.PatternOf(first)
	p2, _ := sre.PatternOf(second)
	if p1 == nil || p1 != p2 {
		t.Fatalf("expected the cached pattern to be reused")
	}
	m, err := runtime.CallMethod(first, "search", runtime.Str("mail ann@example"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g, _ := runtime.CallMethod(m, "group", runtime.Int(2))
	if runtime.ReprOf(g) != "'example'" {
		t.Fatalf("expected group 2 = example, got %v", g)
	}
	_, err = h.interp.Call("re_compile", runtime.Str("(a"))
	if !runtime.IsException(err, sre.Error) {
		t.Fatalf("expected re.error, got %v", err)
	}
	if h.interp.Patterns().Len() != 1 {
		t.Fatalf("expected failures to stay out of the cache, got %d", h.interp.Patterns().Len())
	}
}

func TestPrint(t *testing.T) {
	h := newHarness(t, nil)
	kw := runtime.NewDict()
	if err := kw.SetItem(runtime.Str("sep"), runtime.Str("-")); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	if err := kw.SetItem(runtime.Str("end"), runtime.Str("!\n")); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	fn, _ := h.interp.Lookup("print")
	if _, err := runtime.CallKw(fn, []runtime.Value{runtime.Str("a"), runtime.Int(1)}, kw); err != nil {
		t.Fatalf("print: %v", err)
	}
	if h.stdout.String() != "a-1!\n" {
		t.Fatalf("unexpected output %q", h.stdout.String())
	}
}

func TestRunReportsUncaughtException(t *testing.T) {
	h := newHarness(t, nil)
	err := h.interp.Run("main.py", func(f *frame.Frame) error {
		if f.Code.Name != "<module>" {
			t.Fatalf("expected a module frame, got %s", f.Code.Name)
		}
		_, err := h.interp.Call("dict", runtime.NewList(runtime.Str("abc")))
		return err
	})
	if !runtime.IsException(err, runtime.ValueError) {
		t.Fatalf("expected ValueError, got %v", err)
	}
	h.interp.Report()
	want := "ValueError: dictionary update sequence element #0 has length 3; 2 is required"
	if !strings.Contains(h.stderr.String(), want) {
		t.Fatalf("unexpected report:\nexpected: %s\ngot: %s", want, h.stderr.String())
	}
	if h.interp.State().LastException() == nil {
		t.Fatalf("expected the reported exception to be kept as last")
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Warnings.Action = "loud"
	if _, err := New(Options{Config: cfg}); err == nil {
		t.Fatalf("expected an error for an invalid warnings action")
	}
}
