package runtime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Repr renders a value the way repr() does.
func Repr(v Value) (string, error) {
	var sb strings.Builder
	r := &reprState{active: map[uint64]bool{}}
	if err := r.write(&sb, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ReprOf is Repr for diagnostics; failures render as a placeholder.
func ReprOf(v Value) string {
	s, err := Repr(v)
	if err != nil {
		return fmt.Sprintf("<%s object>", TypeOf(v).Name)
	}
	return s
}

// ToString renders a value the way str() does.
func ToString(v Value) (string, error) {
	switch x := v.(type) {
	case StrValue:
		return x.Val, nil
	case *ExceptionValue:
		if fn, owner, ok := x.Class.Lookup("__str__"); ok && !owner.builtin {
			return stringResult(callMethod(fn, x, x.Class))
		}
		return x.Message(), nil
	case *Instance:
		if fn, owner, ok := x.Class.Lookup("__str__"); ok && owner != ObjectType {
			return stringResult(callMethod(fn, x, x.Class))
		}
	}
	return Repr(v)
}

// StrOf is ToString for diagnostics.
func StrOf(v Value) string {
	s, err := ToString(v)
	if err != nil {
		return ReprOf(v)
	}
	return s
}

func stringResult(res Value, err error) (string, error) {
	if err != nil {
		return "", err
	}
	s, ok := Unwrap(res).(StrValue)
	if !ok {
		return "", Errorf(TypeError, "__str__ returned non-string (type %s)", TypeOf(res).Name)
	}
	return s.Val, nil
}

type reprState struct {
	active map[uint64]bool
}

func (r *reprState) enter(v Value) bool {
	id := ID(v)
	if r.active[id] {
		return false
	}
	r.active[id] = true
	return true
}

func (r *reprState) leave(v Value) { delete(r.active, ID(v)) }

func (r *reprState) writeSeq(sb *strings.Builder, elems []Value) error {
	for i, el := range elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		if err := r.write(sb, el); err != nil {
			return err
		}
	}
	return nil
}

func (r *reprState) write(sb *strings.Builder, v Value) error {
	switch x := v.(type) {
	case nil, NoneValue:
		sb.WriteString("None")
	case NotImplementedValue:
		sb.WriteString("NotImplemented")
	case BoolValue:
		if x.Val {
			sb.WriteString("True")
		} else {
			sb.WriteString("False")
		}
	case IntValue:
		sb.WriteString(strconv.FormatInt(x.Val, 10))
	case FloatValue:
		sb.WriteString(formatFloat(x.Val))
	case StrValue:
		sb.WriteString(quoteString(x.Val))
	case BytesValue:
		sb.WriteString(quoteBytes(x.Val))
	case *TupleValue:
		if !r.enter(x) {
			sb.WriteString("(...)")
			return nil
		}
		defer r.leave(x)
		sb.WriteByte('(')
		if err := r.writeSeq(sb, x.Elements); err != nil {
			return err
		}
		if len(x.Elements) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	case *ListValue:
		if !r.enter(x) {
			sb.WriteString("[...]")
			return nil
		}
		defer r.leave(x)
		sb.WriteByte('[')
		if err := r.writeSeq(sb, x.Elements); err != nil {
			return err
		}
		sb.WriteByte(']')
	case *DictValue:
		if !r.enter(x) {
			sb.WriteString("{...}")
			return nil
		}
		defer r.leave(x)
		sb.WriteByte('{')
		first := true
		err := x.Range(func(k, val Value) error {
			if !first {
				sb.WriteString(", ")
			}
			first = false
			if err := r.write(sb, k); err != nil {
				return err
			}
			sb.WriteString(": ")
			return r.write(sb, val)
		})
		if err != nil {
			return err
		}
		sb.WriteByte('}')
	case *SetValue:
		name := TypeOf(x).Name
		if x.Len() == 0 {
			sb.WriteString(name + "()")
			return nil
		}
		if !r.enter(x) {
			sb.WriteString(name + "(...)")
			return nil
		}
		defer r.leave(x)
		if x.frozen {
			sb.WriteString(name + "(")
		}
		sb.WriteByte('{')
		if err := r.writeSeq(sb, x.Elements()); err != nil {
			return err
		}
		sb.WriteByte('}')
		if x.frozen {
			sb.WriteByte(')')
		}
	case *DictViewValue:
		sb.WriteString(TypeOf(x).Name + "([")
		if err := r.writeSeq(sb, x.list()); err != nil {
			return err
		}
		sb.WriteString("])")
	case *Type:
		fmt.Fprintf(sb, "<class '%s'>", x.Name)
	case *FunctionValue:
		fmt.Fprintf(sb, "<function %s at 0x%x>", x.Name, x.objectID())
	case BoundMethodValue:
		name := "?"
		if fn, ok := x.Method.(*FunctionValue); ok {
			name = fn.Name
		}
		fmt.Fprintf(sb, "<bound method %s of %s>", name, ReprOf(x.Receiver))
	case *SuperValue:
		sb.WriteString(x.repr())
	case *ExceptionValue:
		sb.WriteString(x.Class.Name)
		sb.WriteByte('(')
		if err := r.writeSeq(sb, x.Args); err != nil {
			return err
		}
		sb.WriteByte(')')
	case *Instance:
		if fn, owner, ok := x.Class.Lookup("__repr__"); ok && owner != ObjectType {
			if owner.builtin && x.Payload != nil {
				return r.write(sb, x.Payload)
			}
			s, err := stringResult(callMethod(fn, x, x.Class))
			if err != nil {
				return err
			}
			sb.WriteString(s)
			return nil
		}
		fmt.Fprintf(sb, "<%s object at 0x%x>", x.Class.Name, x.objectID())
	case *HostHandleValue:
		if s, ok := x.Value.(fmt.Stringer); ok {
			sb.WriteString(s.String())
		} else {
			fmt.Fprintf(sb, "<%s object at 0x%x>", x.HandleType, x.objectID())
		}
	default:
		fmt.Fprintf(sb, "<%s object at 0x%x>", TypeOf(v).Name, ID(v))
	}
	return nil
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func quoteString(s string) string {
	quote := byte('\'')
	if strings.IndexByte(s, '\'') >= 0 && strings.IndexByte(s, '"') < 0 {
		quote = '"'
	}
	var sb strings.Builder
	sb.WriteByte(quote)
	for _, r := range s {
		switch {
		case r == rune(quote) || r == '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r == utf8.RuneError || !unicode.IsPrint(r):
			switch {
			case r < 0x100:
				fmt.Fprintf(&sb, `\x%02x`, r)
			case r < 0x10000:
				fmt.Fprintf(&sb, `\u%04x`, r)
			default:
				fmt.Fprintf(&sb, `\U%08x`, r)
			}
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte(quote)
	return sb.String()
}

func quoteBytes(b []byte) string {
	quote := byte('\'')
	if strings.IndexByte(string(b), '\'') >= 0 && strings.IndexByte(string(b), '"') < 0 {
		quote = '"'
	}
	var sb strings.Builder
	sb.WriteByte('b')
	sb.WriteByte(quote)
	for _, c := range b {
		switch {
		case c == quote || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c == '\t':
			sb.WriteString(`\t`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&sb, `\x%02x`, c)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte(quote)
	return sb.String()
}
