package pyio

import (
	"fmt"

	"github.com/danielsun1106/graalpython/pkg/runtime"
)

// Object exposes a stream to the object model: its methods become callable
// attributes of a host handle.
type Object struct {
	stream Stream
	handle *runtime.HostHandleValue
}

// NewObject wraps s as a runtime value.
func NewObject(s Stream) *runtime.HostHandleValue {
	o := &Object{stream: s}
	o.handle = runtime.NewHostHandle(typeName(s), o)
	return o.handle
}

// StreamOf unwraps a value made by NewObject.
func StreamOf(v runtime.Value) (Stream, bool) {
	h, ok := v.(*runtime.HostHandleValue)
	if !ok {
		return nil, false
	}
	o, ok := h.Value.(*Object)
	if !ok {
		return nil, false
	}
	return o.stream, true
}

func typeName(s Stream) string {
	switch x := s.(type) {
	case *FileIO:
		return "_io.FileIO"
	case *Buffered:
		return "_io." + x.kind.String()
	case *TextIOWrapper:
		return "_io.TextIOWrapper"
	case *BytesIO:
		return "_io.BytesIO"
	}
	return fmt.Sprintf("%T", s)
}

func (o *Object) String() string {
	if s, ok := o.stream.(fmt.Stringer); ok {
		return s.String()
	}
	return "<" + typeName(o.stream) + ">"
}

func intArg(args []runtime.Value, i int, def int64) (int64, error) {
	if i >= len(args) {
		return def, nil
	}
	switch v := args[i].(type) {
	case runtime.NoneValue:
		return def, nil
	case runtime.IntValue:
		return v.Val, nil
	case runtime.BoolValue:
		if v.Val {
			return 1, nil
		}
		return 0, nil
	}
	return 0, runtime.Errorf(runtime.TypeError, "argument should be integer or None, not '%s'", runtime.TypeOf(args[i]).Name)
}

func (o *Object) text() (*TextIOWrapper, bool) {
	t, ok := o.stream.(*TextIOWrapper)
	return t, ok
}

func (o *Object) method(name string, fn func(args []runtime.Value) (runtime.Value, error)) *runtime.FunctionValue {
	return runtime.NewFunction(name, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		return fn(args)
	})
}

// HostAttr implements runtime.HostAttrs.
func (o *Object) HostAttr(name string) (runtime.Value, bool, error) {
	switch name {
	case "closed":
		return runtime.Bool(o.stream.Closed()), true, nil
	case "name":
		switch s := o.stream.(type) {
		case *FileIO:
			return runtime.Str(s.Name()), true, nil
		case *TextIOWrapper:
			return runtime.Str(s.Name()), true, nil
		case *Buffered:
			if f, ok := s.Raw().(*FileIO); ok {
				return runtime.Str(f.Name()), true, nil
			}
		}
		return nil, false, nil
	case "mode":
		switch s := o.stream.(type) {
		case *FileIO:
			return runtime.Str(s.Mode()), true, nil
		case *TextIOWrapper:
			return runtime.Str(s.Mode()), true, nil
		}
		return nil, false, nil
	case "encoding":
		if t, ok := o.text(); ok {
			return runtime.Str(t.Encoding()), true, nil
		}
		return nil, false, nil
	}
	fn := o.lookup(name)
	if fn == nil {
		return nil, false, nil
	}
	return o.method(name, fn), true, nil
}

func (o *Object) lookup(name string) func(args []runtime.Value) (runtime.Value, error) {
	switch name {
	case "read":
		return o.read
	case "readline":
		return o.readline
	case "readlines":
		return o.readlines
	case "write":
		return o.write
	case "writelines":
		return o.writelines
	case "peek":
		if _, ok := o.stream.(Peeker); ok {
			return o.peek
		}
	case "getvalue":
		if _, ok := o.stream.(*BytesIO); ok {
			return o.getvalue
		}
	case "seek":
		return o.seek
	case "tell":
		return o.tell
	case "truncate":
		return o.truncate
	case "close", "__del__":
		return func([]runtime.Value) (runtime.Value, error) { return runtime.None, o.stream.Close() }
	case "flush":
		return func([]runtime.Value) (runtime.Value, error) { return runtime.None, o.stream.Flush() }
	case "readable":
		return o.predicate(o.stream.Readable)
	case "writable":
		return o.predicate(o.stream.Writable)
	case "seekable":
		return o.predicate(o.stream.Seekable)
	case "fileno":
		return o.fileno
	case "isatty":
		return o.isatty
	case "__enter__":
		return func([]runtime.Value) (runtime.Value, error) {
			if o.stream.Closed() {
				return nil, errClosed()
			}
			return o.handle, nil
		}
	case "__exit__":
		return func([]runtime.Value) (runtime.Value, error) { return runtime.False, o.stream.Close() }
	case "__iter__":
		return o.iter
	}
	return nil
}

func (o *Object) predicate(fn func() bool) func([]runtime.Value) (runtime.Value, error) {
	return func([]runtime.Value) (runtime.Value, error) {
		if o.stream.Closed() {
			return nil, errClosed()
		}
		return runtime.Bool(fn()), nil
	}
}

func (o *Object) read(args []runtime.Value) (runtime.Value, error) {
	n, err := intArg(args, 0, -1)
	if err != nil {
		return nil, err
	}
	if t, ok := o.text(); ok {
		s, err := t.Read(int(n))
		return runtime.Str(s), err
	}
	r, ok := o.stream.(Reader)
	if !ok {
		return nil, unsupported("read")
	}
	data, err := r.Read(int(n))
	if err != nil {
		return nil, err
	}
	return runtime.BytesValue{Val: data}, nil
}

func (o *Object) readline(args []runtime.Value) (runtime.Value, error) {
	limit, err := intArg(args, 0, -1)
	if err != nil {
		return nil, err
	}
	if t, ok := o.text(); ok {
		s, err := t.ReadLine(int(limit))
		return runtime.Str(s), err
	}
	r, ok := o.stream.(Reader)
	if !ok {
		return nil, unsupported("readline")
	}
	if err := checkClosed(r); err != nil {
		return nil, err
	}
	line, err := ReadLine(r, int(limit))
	if err != nil {
		return nil, err
	}
	return runtime.BytesValue{Val: line}, nil
}

func (o *Object) readlines(args []runtime.Value) (runtime.Value, error) {
	hint, err := intArg(args, 0, -1)
	if err != nil {
		return nil, err
	}
	if t, ok := o.text(); ok {
		var out []runtime.Value
		total := 0
		for {
			line, err := t.ReadLine(-1)
			if err != nil {
				return nil, err
			}
			if line == "" {
				break
			}
			out = append(out, runtime.Str(line))
			total += len(line)
			if hint > 0 && int64(total) > hint {
				break
			}
		}
		return runtime.NewList(out...), nil
	}
	r, ok := o.stream.(Reader)
	if !ok {
		return nil, unsupported("readlines")
	}
	lines, err := ReadLines(r, int(hint))
	if err != nil {
		return nil, err
	}
	out := make([]runtime.Value, len(lines))
	for i, l := range lines {
		out[i] = runtime.BytesValue{Val: l}
	}
	return runtime.NewList(out...), nil
}

func (o *Object) writeValue(v runtime.Value) (int, error) {
	if t, ok := o.text(); ok {
		s, ok := v.(runtime.StrValue)
		if !ok {
			return 0, runtime.Errorf(runtime.TypeError, "write() argument must be str, not %s", runtime.TypeOf(v).Name)
		}
		return t.Write(s.Val)
	}
	w, ok := o.stream.(Writer)
	if !ok {
		return 0, unsupported("write")
	}
	b, ok := v.(runtime.BytesValue)
	if !ok {
		return 0, runtime.Errorf(runtime.TypeError, "a bytes-like object is required, not '%s'", runtime.TypeOf(v).Name)
	}
	return w.Write(b.Val)
}

func (o *Object) write(args []runtime.Value) (runtime.Value, error) {
	if len(args) != 1 {
		return nil, runtime.Errorf(runtime.TypeError, "write() takes exactly one argument (%d given)", len(args))
	}
	n, err := o.writeValue(args[0])
	if err != nil {
		return nil, err
	}
	return runtime.Int(int64(n)), nil
}

func (o *Object) writelines(args []runtime.Value) (runtime.Value, error) {
	if len(args) != 1 {
		return nil, runtime.Errorf(runtime.TypeError, "writelines() takes exactly one argument (%d given)", len(args))
	}
	if err := checkClosed(o.stream); err != nil {
		return nil, err
	}
	lines, err := runtime.ToSlice(args[0])
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		if _, err := o.writeValue(line); err != nil {
			return nil, err
		}
	}
	return runtime.None, nil
}

func (o *Object) peek(args []runtime.Value) (runtime.Value, error) {
	p := o.stream.(Peeker)
	n, err := intArg(args, 0, 0)
	if err != nil {
		return nil, err
	}
	data, err := p.Peek(int(n))
	if err != nil {
		return nil, err
	}
	return runtime.BytesValue{Val: data}, nil
}

func (o *Object) getvalue([]runtime.Value) (runtime.Value, error) {
	data, err := o.stream.(*BytesIO).GetValue()
	if err != nil {
		return nil, err
	}
	return runtime.BytesValue{Val: data}, nil
}

func (o *Object) seek(args []runtime.Value) (runtime.Value, error) {
	if len(args) == 0 {
		return nil, runtime.Errorf(runtime.TypeError, "seek expected at least 1 argument, got 0")
	}
	off, err := intArg(args, 0, 0)
	if err != nil {
		return nil, err
	}
	whence, err := intArg(args, 1, SeekSet)
	if err != nil {
		return nil, err
	}
	sk, ok := o.stream.(Seeker)
	if !ok {
		return nil, unsupported("seek")
	}
	pos, err := sk.Seek(off, int(whence))
	if err != nil {
		return nil, err
	}
	return runtime.Int(pos), nil
}

func (o *Object) tell([]runtime.Value) (runtime.Value, error) {
	sk, ok := o.stream.(Seeker)
	if !ok {
		return nil, unsupported("tell")
	}
	pos, err := sk.Tell()
	if err != nil {
		return nil, err
	}
	return runtime.Int(pos), nil
}

func (o *Object) truncate(args []runtime.Value) (runtime.Value, error) {
	size, err := intArg(args, 0, -1)
	if err != nil {
		return nil, err
	}
	s := o.stream
	if t, ok := o.text(); ok {
		if err := t.Flush(); err != nil {
			return nil, err
		}
		s = t.Buffer()
	}
	tr, ok := s.(interface{ Truncate(int64) (int64, error) })
	if !ok {
		return nil, unsupported("truncate")
	}
	n, err := tr.Truncate(size)
	if err != nil {
		return nil, err
	}
	return runtime.Int(n), nil
}

func (o *Object) fileno([]runtime.Value) (runtime.Value, error) {
	s := o.stream
	if t, ok := o.text(); ok {
		s = t.Buffer()
	}
	f, ok := s.(Filenoer)
	if !ok {
		return nil, unsupported("fileno")
	}
	fd, err := f.Fileno()
	if err != nil {
		return nil, err
	}
	return runtime.Int(int64(fd)), nil
}

func (o *Object) isatty([]runtime.Value) (runtime.Value, error) {
	s := o.stream
	if t, ok := o.text(); ok {
		s = t.Buffer()
	}
	if err := checkClosed(s); err != nil {
		return nil, err
	}
	if f, ok := s.(interface{ Isatty() (bool, error) }); ok {
		tty, err := f.Isatty()
		return runtime.Bool(tty), err
	}
	return runtime.False, nil
}

func (o *Object) iter([]runtime.Value) (runtime.Value, error) {
	if err := checkClosed(o.stream); err != nil {
		return nil, err
	}
	if t, ok := o.text(); ok {
		return t.Lines(), nil
	}
	r, ok := o.stream.(Reader)
	if !ok {
		return nil, unsupported("File or stream is not readable")
	}
	return Lines(r), nil
}
