package sre

import (
	"strconv"
	"strings"

	"github.com/danielsun1106/graalpython/pkg/runtime"
)

var templateEscapes = map[rune]string{
	'a': "\a", 'b': "\b", 'f': "\f", 'n': "\n", 'r': "\r", 't': "\t", 'v': "\v", '\\': "\\",
}

func isOctal(r rune) bool { return r >= '0' && r <= '7' }

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// Expand substitutes group references in template: \1 through \99,
// \g<n> and \g<name>. Groups that did not participate expand to "".
func (m *Match) Expand(template string) (string, error) {
	src := []rune(template)
	var b strings.Builder
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c != '\\' {
			b.WriteRune(c)
			continue
		}
		if i+1 >= len(src) {
			return "", runtime.Errorf(Error, "bad escape (end of pattern) at position %d", i)
		}
		i++
		c = src[i]
		switch {
		case c == 'g':
			ref, next, err := m.templateGroup(src, i)
			if err != nil {
				return "", err
			}
			b.WriteString(m.text(ref))
			i = next
		case c == '0':
			j := i + 1
			for j < len(src) && j < i+3 && isOctal(src[j]) {
				j++
			}
			v, _ := strconv.ParseInt(string(src[i:j]), 8, 32)
			b.WriteRune(rune(v))
			i = j - 1
		case isDigit(c):
			if i+2 < len(src) && isOctal(c) && isOctal(src[i+1]) && isOctal(src[i+2]) {
				v, _ := strconv.ParseInt(string(src[i:i+3]), 8, 32)
				if v > 0o377 {
					return "", runtime.Errorf(Error, "octal escape value \\%s outside of range 0-0o377 at position %d", string(src[i:i+3]), i-1)
				}
				b.WriteRune(rune(v))
				i += 2
				continue
			}
			j := i + 1
			if j < len(src) && isDigit(src[j]) {
				j++
			}
			g, _ := strconv.Atoi(string(src[i:j]))
			if !m.valid(g) {
				return "", runtime.Errorf(Error, "invalid group reference %d at position %d", g, i-1)
			}
			b.WriteString(m.text(g))
			i = j - 1
		default:
			if esc, ok := templateEscapes[c]; ok {
				b.WriteString(esc)
			} else if c < 0x80 && (c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
				return "", runtime.Errorf(Error, "bad escape \\%c at position %d", c, i-1)
			} else {
				b.WriteRune('\\')
				b.WriteRune(c)
			}
		}
	}
	return b.String(), nil
}

// templateGroup parses the <...> after \g starting at src[at] == 'g' and
// returns the group number and the index of the closing '>'.
func (m *Match) templateGroup(src []rune, at int) (int, int, error) {
	if at+1 >= len(src) || src[at+1] != '<' {
		return 0, 0, runtime.Errorf(Error, "missing < at position %d", at+1)
	}
	start := at + 2
	end := start
	for end < len(src) && src[end] != '>' {
		end++
	}
	if end >= len(src) {
		return 0, 0, runtime.Errorf(Error, "missing >, unterminated name at position %d", start)
	}
	name := string(src[start:end])
	if name == "" {
		return 0, 0, runtime.Errorf(Error, "missing group name at position %d", start)
	}
	if g, err := strconv.Atoi(name); err == nil {
		if !m.valid(g) {
			return 0, 0, runtime.Errorf(Error, "invalid group reference %d at position %d", g, start)
		}
		return g, end, nil
	}
	g, ok := m.re.index[name]
	if !ok {
		return 0, 0, runtime.Errorf(runtime.IndexError, "unknown group name '%s'", name)
	}
	return g, end, nil
}
