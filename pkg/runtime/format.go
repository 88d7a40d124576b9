package runtime

import (
	"strconv"
	"strings"
)

// FormatPercent substitutes %-directives the way the C-level error
// formatters do: %s and %S use str(), %r and %R use repr(), %d/%i/%x take
// integers, %% is a literal percent.
func FormatPercent(format string, args ...Value) (string, error) {
	var sb strings.Builder
	next := 0
	take := func() (Value, error) {
		if next >= len(args) {
			return nil, Errorf(TypeError, "not enough arguments for format string")
		}
		next++
		return args[next-1], nil
	}
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(format) {
			return "", Errorf(ValueError, "incomplete format")
		}
		verb := format[i]
		if verb == '%' {
			sb.WriteByte('%')
			continue
		}
		arg, err := take()
		if err != nil {
			return "", err
		}
		switch verb {
		case 's', 'S', 'U':
			s, err := ToString(arg)
			if err != nil {
				return "", err
			}
			sb.WriteString(s)
		case 'r', 'R', 'A':
			s, err := Repr(arg)
			if err != nil {
				return "", err
			}
			sb.WriteString(s)
		case 'd', 'i', 'x':
			n, ok := Unwrap(arg).(IntValue)
			if !ok {
				if b, isBool := arg.(BoolValue); isBool {
					n = Int(0)
					if b.Val {
						n = Int(1)
					}
				} else {
					return "", Errorf(TypeError, "%%%c format: an integer is required, not %s", verb, TypeOf(arg).Name)
				}
			}
			base := 10
			if verb == 'x' {
				base = 16
			}
			sb.WriteString(strconv.FormatInt(n.Val, base))
		default:
			return "", Errorf(ValueError, "unsupported format character '%c' (0x%x) at index %d", verb, verb, i)
		}
	}
	if next < len(args) {
		return "", Errorf(TypeError, "not all arguments converted during string formatting")
	}
	return sb.String(), nil
}
