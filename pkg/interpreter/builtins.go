package interpreter

import (
	"fmt"
	"io"
	"strings"

	"github.com/danielsun1106/graalpython/pkg/frame"
	"github.com/danielsun1106/graalpython/pkg/pyio"
	"github.com/danielsun1106/graalpython/pkg/runtime"
	"github.com/danielsun1106/graalpython/pkg/sre"
)

type builtinFunc func(args []runtime.Value, kwargs *runtime.DictValue) (runtime.Value, error)

func (i *Interpreter) defineBuiltin(name string, impl builtinFunc) {
	i.builtins.Define(name, runtime.NewFunction(name, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		var kwargs *runtime.DictValue
		if ctx != nil {
			kwargs = ctx.Kwargs
		}
		return impl(args, kwargs)
	}))
}

func (i *Interpreter) installBuiltins() {
	for name, t := range map[string]*runtime.Type{
		"object":       runtime.ObjectType,
		"type":         runtime.TypeType,
		"int":          runtime.IntType,
		"bool":         runtime.BoolType,
		"float":        runtime.FloatType,
		"str":          runtime.StrType,
		"bytes":        runtime.BytesType,
		"tuple":        runtime.TupleType,
		"list":         runtime.ListType,
		"dict":         runtime.DictType,
		"set":          runtime.SetType,
		"frozenset":    runtime.FrozenSetType,
		"classmethod":  runtime.ClassMethodType,
		"staticmethod": runtime.StaticMethodType,
		"property":     runtime.PropertyType,
	} {
		i.builtins.Define(name, t)
	}
	for name, t := range runtime.BuiltinExceptions() {
		i.builtins.Define(name, t)
	}
	i.builtins.Define("None", runtime.None)
	i.builtins.Define("True", runtime.True)
	i.builtins.Define("False", runtime.False)

	i.defineBuiltin("super", i.builtinSuper)
	i.defineBuiltin("open", i.builtinOpen)
	i.defineBuiltin("isinstance", builtinIsInstance)
	i.defineBuiltin("issubclass", func(args []runtime.Value, _ *runtime.DictValue) (runtime.Value, error) {
		if err := arity("issubclass", args, 2, 2); err != nil {
			return nil, err
		}
		ok, err := runtime.IsSubclass(args[0], args[1])
		if err != nil {
			return nil, err
		}
		return runtime.Bool(ok), nil
	})
	i.defineBuiltin("hash", func(args []runtime.Value, _ *runtime.DictValue) (runtime.Value, error) {
		if err := arity("hash", args, 1, 1); err != nil {
			return nil, err
		}
		h, err := runtime.Hash(args[0])
		if err != nil {
			return nil, err
		}
		return runtime.Int(h), nil
	})
	i.defineBuiltin("repr", func(args []runtime.Value, _ *runtime.DictValue) (runtime.Value, error) {
		if err := arity("repr", args, 1, 1); err != nil {
			return nil, err
		}
		s, err := runtime.Repr(args[0])
		if err != nil {
			return nil, err
		}
		return runtime.Str(s), nil
	})
	i.defineBuiltin("len", func(args []runtime.Value, _ *runtime.DictValue) (runtime.Value, error) {
		if err := arity("len", args, 1, 1); err != nil {
			return nil, err
		}
		n, err := runtime.Len(args[0])
		if err != nil {
			return nil, err
		}
		return runtime.Int(int64(n)), nil
	})
	i.defineBuiltin("iter", func(args []runtime.Value, _ *runtime.DictValue) (runtime.Value, error) {
		if err := arity("iter", args, 1, 1); err != nil {
			return nil, err
		}
		return runtime.Iter(args[0])
	})
	i.defineBuiltin("next", builtinNext)
	i.defineBuiltin("print", i.builtinPrint)
	i.defineBuiltin("re_compile", i.builtinCompile)
}

func arity(name string, args []runtime.Value, min, max int) error {
	switch {
	case len(args) < min && min == max:
		return runtime.Errorf(runtime.TypeError, "%s() takes exactly %d argument%s (%d given)", name, min, plural(min), len(args))
	case len(args) < min:
		return runtime.Errorf(runtime.TypeError, "%s() takes at least %d argument%s (%d given)", name, min, plural(min), len(args))
	case len(args) > max:
		return runtime.Errorf(runtime.TypeError, "%s() takes at most %d argument%s (%d given)", name, max, plural(max), len(args))
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// kwarg returns the keyword argument name, or the positional one at index
// pos, or nil.
func kwarg(args []runtime.Value, kwargs *runtime.DictValue, pos int, name string) (runtime.Value, error) {
	if kwargs != nil {
		v, ok, err := kwargs.Lookup(runtime.Str(name))
		if err != nil {
			return nil, err
		}
		if ok {
			if pos < len(args) {
				return nil, runtime.Errorf(runtime.TypeError, "argument for open() given by name ('%s') and position (%d)", name, pos+1)
			}
			return v, nil
		}
	}
	if pos < len(args) {
		return args[pos], nil
	}
	return nil, nil
}

func optionalString(v runtime.Value, what string) (*string, error) {
	switch s := v.(type) {
	case nil, runtime.NoneValue:
		return nil, nil
	case runtime.StrValue:
		return &s.Val, nil
	}
	return nil, runtime.Errorf(runtime.TypeError, "open() argument '%s' must be str or None, not %s", what, runtime.TypeOf(v).Name)
}

// builtinSuper resolves the zero-argument form from the running frame.
func (i *Interpreter) builtinSuper(args []runtime.Value, kwargs *runtime.DictValue) (runtime.Value, error) {
	if len(args) == 0 {
		return i.frames.Super()
	}
	return runtime.CallKw(runtime.SuperType, args, kwargs)
}

func builtinIsInstance(args []runtime.Value, _ *runtime.DictValue) (runtime.Value, error) {
	if err := arity("isinstance", args, 2, 2); err != nil {
		return nil, err
	}
	switch ci := args[1].(type) {
	case *runtime.Type:
		return runtime.Bool(runtime.IsInstance(args[0], ci)), nil
	case *runtime.TupleValue:
		for _, el := range ci.Elements {
			ok, err := builtinIsInstance([]runtime.Value{args[0], el}, nil)
			if err != nil {
				return nil, err
			}
			if ok.(runtime.BoolValue).Val {
				return runtime.True, nil
			}
		}
		return runtime.False, nil
	}
	return nil, runtime.Errorf(runtime.TypeError, "isinstance() arg 2 must be a type or tuple of types")
}

func builtinNext(args []runtime.Value, _ *runtime.DictValue) (runtime.Value, error) {
	if err := arity("next", args, 1, 2); err != nil {
		return nil, err
	}
	it, ok := args[0].(*runtime.IteratorValue)
	if !ok {
		return nil, runtime.Errorf(runtime.TypeError, "'%s' object is not an iterator", runtime.TypeOf(args[0]).Name)
	}
	v, done, err := it.Next()
	if err != nil {
		return nil, err
	}
	if done {
		if len(args) == 2 {
			return args[1], nil
		}
		return nil, runtime.Errorf(runtime.StopIteration, "")
	}
	return v, nil
}

func (i *Interpreter) builtinPrint(args []runtime.Value, kwargs *runtime.DictValue) (runtime.Value, error) {
	sep, end := " ", "\n"
	var out io.Writer = i.stdout
	if kwargs != nil {
		if err := kwargs.Range(func(k, v runtime.Value) error {
			name := runtime.StrOf(k)
			switch name {
			case "sep", "end":
				s, err := optionalString(v, name)
				if err != nil {
					return err
				}
				if s != nil && name == "sep" {
					sep = *s
				} else if s != nil {
					end = *s
				}
			case "file":
				if _, isNone := v.(runtime.NoneValue); isNone {
					return nil
				}
				s, ok := pyio.StreamOf(v)
				if !ok {
					return runtime.Errorf(runtime.AttributeError, "'%s' object has no attribute 'write'", runtime.TypeOf(v).Name)
				}
				out = streamWriter{state: i, stream: s}
			default:
				return runtime.Errorf(runtime.TypeError, "'%s' is an invalid keyword argument for print()", name)
			}
			return nil
		}); err != nil {
			return nil, err
		}
	}
	parts := make([]string, len(args))
	for n, a := range args {
		s, err := runtime.ToString(a)
		if err != nil {
			return nil, err
		}
		parts[n] = s
	}
	if _, err := io.WriteString(out, strings.Join(parts, sep)+end); err != nil {
		return nil, runtime.WrapGoError(err)
	}
	return runtime.None, nil
}

// streamWriter adapts a stream to io.Writer for print(file=...).
type streamWriter struct {
	state  *Interpreter
	stream pyio.Stream
}

func (w streamWriter) Write(p []byte) (int, error) {
	if err := pyio.WriteString(w.state.state, string(p), w.stream); err != nil {
		return 0, err
	}
	return len(p), nil
}

// builtinOpen implements open(file, mode='r', buffering=-1, encoding=None,
// errors=None, newline=None, closefd=True).
func (i *Interpreter) builtinOpen(args []runtime.Value, kwargs *runtime.DictValue) (runtime.Value, error) {
	if err := arity("open", args, 0, 7); err != nil {
		return nil, err
	}
	file, err := kwarg(args, kwargs, 0, "file")
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, runtime.Errorf(runtime.TypeError, "open() missing required argument 'file' (pos 1)")
	}
	mode := "r"
	if v, err := kwarg(args, kwargs, 1, "mode"); err != nil {
		return nil, err
	} else if v != nil {
		s, ok := v.(runtime.StrValue)
		if !ok {
			return nil, runtime.Errorf(runtime.TypeError, "open() argument 'mode' must be str, not %s", runtime.TypeOf(v).Name)
		}
		mode = s.Val
	}
	opts := pyio.DefaultOpenOptions()
	if v, err := kwarg(args, kwargs, 2, "buffering"); err != nil {
		return nil, err
	} else if v != nil {
		n, ok := v.(runtime.IntValue)
		if !ok {
			return nil, runtime.Errorf(runtime.TypeError, "'%s' object cannot be interpreted as an integer", runtime.TypeOf(v).Name)
		}
		opts.Buffering = int(n.Val)
	}
	for pos, name := range []string{"encoding", "errors", "newline"} {
		v, err := kwarg(args, kwargs, 3+pos, name)
		if err != nil {
			return nil, err
		}
		s, err := optionalString(v, name)
		if err != nil {
			return nil, err
		}
		switch name {
		case "encoding":
			opts.Encoding = s
		case "errors":
			opts.Errors = s
		case "newline":
			opts.Newline = s
		}
	}
	if v, err := kwarg(args, kwargs, 6, "closefd"); err != nil {
		return nil, err
	} else if v != nil {
		keep, err := runtime.Truthy(v)
		if err != nil {
			return nil, err
		}
		opts.KeepFD = !keep
	}

	var stream pyio.Stream
	switch f := file.(type) {
	case runtime.StrValue:
		stream, err = i.Open(f.Val, mode, opts)
	case runtime.BytesValue:
		stream, err = i.Open(string(f.Val), mode, opts)
	case runtime.IntValue:
		stream, err = i.openFD(int(f.Val), mode, opts)
	default:
		return nil, runtime.Errorf(runtime.TypeError, "expected str, bytes or os.PathLike object, not %s", runtime.TypeOf(file).Name)
	}
	if err != nil {
		return nil, err
	}
	return pyio.NewObject(stream), nil
}

func (i *Interpreter) openFD(fd int, mode string, opts pyio.OpenOptions) (pyio.Stream, error) {
	return i.track(pyio.OpenFD(fd, mode, i.openDefaults(mode, opts)))
}

// builtinCompile is re.compile(pattern, flags=0) over the shared cache.
func (i *Interpreter) builtinCompile(args []runtime.Value, kwargs *runtime.DictValue) (runtime.Value, error) {
	if err := arity("re_compile", args, 1, 2); err != nil {
		return nil, err
	}
	if p, ok := sre.PatternOf(args[0]); ok {
		if len(args) > 1 {
			return nil, runtime.Errorf(runtime.ValueError, "cannot process flags argument with a compiled pattern")
		}
		return sre.NewPatternObject(p), nil
	}
	var pattern string
	switch p := args[0].(type) {
	case runtime.StrValue:
		pattern = p.Val
	case runtime.BytesValue:
		pattern = string(p.Val)
	default:
		return nil, runtime.Errorf(runtime.TypeError, "first argument must be string or compiled pattern")
	}
	flags := 0
	if len(args) > 1 {
		n, ok := args[1].(runtime.IntValue)
		if !ok {
			return nil, runtime.Errorf(runtime.TypeError, "flags must be an integer, not %s", runtime.TypeOf(args[1]).Name)
		}
		flags = int(n.Val)
	}
	p, err := i.Compile(pattern, flags)
	if err != nil {
		return nil, err
	}
	return sre.NewPatternObject(p), nil
}

// Method wraps impl as a function that runs in its own frame, so that
// super() with no arguments can find the receiver and the defining class.
// Placing the result in a class body fills in the class cell.
func (i *Interpreter) Method(name string, impl func(f *frame.Frame, args []runtime.Value) (runtime.Value, error)) *runtime.FunctionValue {
	code := &frame.Code{Filename: "<native>", Name: name}
	return runtime.NewFunction(name, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		var class runtime.Value
		if ctx != nil && ctx.Function != nil {
			class = ctx.Function.Class
		}
		return i.frames.Enter(code, class, args, func(f *frame.Frame) (runtime.Value, error) {
			return impl(f, args)
		})
	})
}

func (i *Interpreter) String() string {
	return fmt.Sprintf("<interpreter depth=%d patterns=%d>", i.frames.Depth(), i.patterns.Len())
}
