package sre

import (
	"github.com/danielsun1106/graalpython/pkg/runtime"
)

type patternObject struct{ p *Pattern }

type matchObject struct{ m *Match }

// NewPatternObject exposes p to the object model as a re.Pattern.
func NewPatternObject(p *Pattern) *runtime.HostHandleValue {
	return runtime.NewHostHandle("re.Pattern", &patternObject{p: p})
}

// NewMatchObject exposes m as a re.Match.
func NewMatchObject(m *Match) *runtime.HostHandleValue {
	return runtime.NewHostHandle("re.Match", &matchObject{m: m})
}

// PatternOf unwraps a value made by NewPatternObject.
func PatternOf(v runtime.Value) (*Pattern, bool) {
	h, ok := v.(*runtime.HostHandleValue)
	if !ok {
		return nil, false
	}
	o, ok := h.Value.(*patternObject)
	if !ok {
		return nil, false
	}
	return o.p, true
}

func (o *patternObject) String() string { return o.p.String() }

func (o *matchObject) String() string { return o.m.String() }

func fn(name string, impl func(args []runtime.Value) (runtime.Value, error)) *runtime.FunctionValue {
	return runtime.NewFunction(name, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		return impl(args)
	})
}

func stringArg(args []runtime.Value, i int) (string, error) {
	if i >= len(args) {
		return "", runtime.Errorf(runtime.TypeError, "missing required argument 'string' (pos %d)", i+1)
	}
	switch v := args[i].(type) {
	case runtime.StrValue:
		return v.Val, nil
	case runtime.BytesValue:
		return string(v.Val), nil
	}
	return "", runtime.Errorf(runtime.TypeError, "expected string or bytes-like object, got '%s'", runtime.TypeOf(args[i]).Name)
}

func intArg(args []runtime.Value, i int, def int) (int, error) {
	if i >= len(args) {
		return def, nil
	}
	switch v := args[i].(type) {
	case runtime.NoneValue:
		return def, nil
	case runtime.IntValue:
		return int(v.Val), nil
	case runtime.BoolValue:
		if v.Val {
			return 1, nil
		}
		return 0, nil
	}
	return 0, runtime.Errorf(runtime.TypeError, "'%s' object cannot be interpreted as an integer", runtime.TypeOf(args[i]).Name)
}

// rangeArgs reads (string, pos=0, endpos=end). An explicit negative endpos
// clamps to 0.
func rangeArgs(args []runtime.Value) (string, int, int, error) {
	s, err := stringArg(args, 0)
	if err != nil {
		return "", 0, 0, err
	}
	pos, err := intArg(args, 1, 0)
	if err != nil {
		return "", 0, 0, err
	}
	endpos, err := intArg(args, 2, -1)
	if err != nil {
		return "", 0, 0, err
	}
	if len(args) > 2 && endpos < 0 {
		if _, isNone := args[2].(runtime.NoneValue); !isNone {
			endpos = 0
		}
	}
	return s, pos, endpos, nil
}

func matchValue(m *Match, err error) (runtime.Value, error) {
	if err != nil {
		return nil, err
	}
	if m == nil {
		return runtime.None, nil
	}
	return NewMatchObject(m), nil
}

func (o *patternObject) replacer(repl runtime.Value) (Replacer, error) {
	switch r := repl.(type) {
	case runtime.StrValue:
		return Literal(r.Val), nil
	case runtime.BytesValue:
		return Literal(string(r.Val)), nil
	}
	return func(m *Match) (string, error) {
		v, err := runtime.Call(repl, NewMatchObject(m))
		if err != nil {
			return "", err
		}
		switch s := v.(type) {
		case runtime.StrValue:
			return s.Val, nil
		case runtime.NoneValue:
			return "", nil
		}
		return "", runtime.Errorf(runtime.TypeError, "expected str instance, %s found", runtime.TypeOf(v).Name)
	}, nil
}

func (o *patternObject) subn(args []runtime.Value) (string, int, error) {
	if len(args) < 2 {
		return "", 0, runtime.Errorf(runtime.TypeError, "sub() missing required argument 'string' (pos 2)")
	}
	repl, err := o.replacer(args[0])
	if err != nil {
		return "", 0, err
	}
	s, err := stringArg(args, 1)
	if err != nil {
		return "", 0, err
	}
	count, err := intArg(args, 2, 0)
	if err != nil {
		return "", 0, err
	}
	return o.p.Subn(repl, s, count)
}

// HostAttr implements runtime.HostAttrs.
func (o *patternObject) HostAttr(name string) (runtime.Value, bool, error) {
	p := o.p
	switch name {
	case "pattern":
		return runtime.Str(p.Pattern()), true, nil
	case "flags":
		return runtime.Int(int64(p.Flags())), true, nil
	case "groups":
		return runtime.Int(int64(p.Groups())), true, nil
	case "groupindex":
		d := runtime.NewDict()
		for _, group := range sortedNames(p.index) {
			if err := d.SetItem(runtime.Str(group), runtime.Int(int64(p.index[group]))); err != nil {
				return nil, true, err
			}
		}
		return d, true, nil
	case "search", "match", "fullmatch":
		op := map[string]func(string, int, int) (*Match, error){
			"search": p.Search, "match": p.Match, "fullmatch": p.FullMatch,
		}[name]
		return fn(name, func(args []runtime.Value) (runtime.Value, error) {
			s, pos, endpos, err := rangeArgs(args)
			if err != nil {
				return nil, err
			}
			return matchValue(op(s, pos, endpos))
		}), true, nil
	case "findall":
		return fn(name, func(args []runtime.Value) (runtime.Value, error) {
			s, pos, endpos, err := rangeArgs(args)
			if err != nil {
				return nil, err
			}
			out, err := p.FindAll(s, pos, endpos)
			if err != nil {
				return nil, err
			}
			return runtime.NewList(out...), nil
		}), true, nil
	case "finditer":
		return fn(name, func(args []runtime.Value) (runtime.Value, error) {
			s, pos, endpos, err := rangeArgs(args)
			if err != nil {
				return nil, err
			}
			return p.FindIterValue(s, pos, endpos), nil
		}), true, nil
	case "sub":
		return fn(name, func(args []runtime.Value) (runtime.Value, error) {
			out, _, err := o.subn(args)
			if err != nil {
				return nil, err
			}
			return runtime.Str(out), nil
		}), true, nil
	case "subn":
		return fn(name, func(args []runtime.Value) (runtime.Value, error) {
			out, n, err := o.subn(args)
			if err != nil {
				return nil, err
			}
			return runtime.NewTuple(runtime.Str(out), runtime.Int(int64(n))), nil
		}), true, nil
	case "split":
		return fn(name, func(args []runtime.Value) (runtime.Value, error) {
			s, err := stringArg(args, 0)
			if err != nil {
				return nil, err
			}
			maxsplit, err := intArg(args, 1, 0)
			if err != nil {
				return nil, err
			}
			out, err := p.Split(s, maxsplit)
			if err != nil {
				return nil, err
			}
			return runtime.NewList(out...), nil
		}), true, nil
	}
	return nil, false, nil
}

func defaultArg(args []runtime.Value) runtime.Value {
	if len(args) > 0 {
		return args[0]
	}
	return runtime.None
}

// HostAttr implements runtime.HostAttrs.
func (o *matchObject) HostAttr(name string) (runtime.Value, bool, error) {
	m := o.m
	switch name {
	case "string":
		return runtime.Str(m.Subject()), true, nil
	case "pos":
		return runtime.Int(int64(m.Pos())), true, nil
	case "endpos":
		return runtime.Int(int64(m.EndPos())), true, nil
	case "re":
		return NewPatternObject(m.Re()), true, nil
	case "lastindex":
		if g, ok := m.LastIndex(); ok {
			return runtime.Int(int64(g)), true, nil
		}
		return runtime.None, true, nil
	case "lastgroup":
		if s, ok := m.LastGroup(); ok {
			return runtime.Str(s), true, nil
		}
		return runtime.None, true, nil
	case "group", "__getitem__":
		return fn(name, func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return m.GroupValue(runtime.Int(0))
			}
			if len(args) == 1 {
				return m.GroupValue(args[0])
			}
			out := make([]runtime.Value, len(args))
			for i, a := range args {
				v, err := m.GroupValue(a)
				if err != nil {
					return nil, err
				}
				out[i] = v
			}
			return runtime.NewTuple(out...), nil
		}), true, nil
	case "groups":
		return fn(name, func(args []runtime.Value) (runtime.Value, error) {
			return m.Groups(defaultArg(args)), nil
		}), true, nil
	case "groupdict":
		return fn(name, func(args []runtime.Value) (runtime.Value, error) {
			return m.GroupDict(defaultArg(args))
		}), true, nil
	case "span", "start", "end":
		return fn(name, func(args []runtime.Value) (runtime.Value, error) {
			ref := runtime.Value(runtime.Int(0))
			if len(args) > 0 {
				ref = args[0]
			}
			g, err := m.GroupNumber(ref)
			if err != nil {
				return nil, err
			}
			start, end := m.Span(g)
			switch name {
			case "start":
				return runtime.Int(int64(start)), nil
			case "end":
				return runtime.Int(int64(end)), nil
			}
			return runtime.NewTuple(runtime.Int(int64(start)), runtime.Int(int64(end))), nil
		}), true, nil
	case "expand":
		return fn(name, func(args []runtime.Value) (runtime.Value, error) {
			tmpl, err := stringArg(args, 0)
			if err != nil {
				return nil, err
			}
			out, err := m.Expand(tmpl)
			if err != nil {
				return nil, err
			}
			return runtime.Str(out), nil
		}), true, nil
	}
	return nil, false, nil
}
