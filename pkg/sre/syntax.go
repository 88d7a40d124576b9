package sre

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// SyntaxError reports a pattern the scanner rejects, with the rune offset
// where the problem was found.
type SyntaxError struct {
	Msg string
	Pos int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at position %d", e.Msg, e.Pos)
}

// syntax is what scanning a Python pattern yields: the pattern rewritten
// for a .NET-flavoured engine plus the group layout.
type syntax struct {
	expr    string
	groups  int
	names   map[string]int
	parents []int // parents[g] is the innermost group enclosing g, 0 at top level
}

type scanner struct {
	src     []rune
	pos     int
	verbose bool
	out     strings.Builder
	syn     syntax
	open    []int // group number per open paren, -1 when not capturing
	openPos []int
}

// scanPattern walks pattern once, numbering capturing groups by opening
// parenthesis and rewriting the constructs the engine spells differently:
// named groups lose their names, (?P=name) becomes a numbered reference and
// \Z becomes \z.
func scanPattern(pattern string, verbose bool) (syntax, error) {
	s := &scanner{
		src:     []rune(pattern),
		verbose: verbose,
		syn:     syntax{names: map[string]int{}, parents: []int{0}},
	}
	for s.pos < len(s.src) {
		if err := s.step(); err != nil {
			return syntax{}, err
		}
	}
	if len(s.open) > 0 {
		return syntax{}, &SyntaxError{Msg: "missing ), unterminated subpattern", Pos: s.openPos[len(s.openPos)-1]}
	}
	s.syn.expr = s.out.String()
	return s.syn, nil
}

func (s *scanner) peek(off int) rune {
	if s.pos+off < len(s.src) {
		return s.src[s.pos+off]
	}
	return 0
}

func (s *scanner) errorf(pos int, format string, args ...any) error {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Pos: pos}
}

func (s *scanner) step() error {
	c := s.src[s.pos]
	switch {
	case c == '\\':
		return s.escape()
	case c == '[':
		return s.class()
	case c == '#' && s.verbose:
		for s.pos < len(s.src) && s.src[s.pos] != '\n' {
			s.out.WriteRune(s.src[s.pos])
			s.pos++
		}
		return nil
	case c == '(':
		return s.group()
	case c == ')':
		if len(s.open) == 0 {
			return s.errorf(s.pos, "unbalanced parenthesis")
		}
		s.open = s.open[:len(s.open)-1]
		s.openPos = s.openPos[:len(s.openPos)-1]
	}
	s.out.WriteRune(c)
	s.pos++
	return nil
}

func (s *scanner) escape() error {
	if s.pos+1 >= len(s.src) {
		return s.errorf(s.pos, "bad escape (end of pattern)")
	}
	next := s.src[s.pos+1]
	if next == 'Z' {
		s.out.WriteString(`\z`)
	} else {
		s.out.WriteRune('\\')
		s.out.WriteRune(next)
	}
	s.pos += 2
	return nil
}

func (s *scanner) class() error {
	start := s.pos
	s.out.WriteRune('[')
	s.pos++
	if s.peek(0) == '^' {
		s.out.WriteRune('^')
		s.pos++
	}
	if s.peek(0) == ']' {
		s.out.WriteString(`\]`)
		s.pos++
	}
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch c {
		case '\\':
			if s.pos+1 >= len(s.src) {
				return s.errorf(s.pos, "bad escape (end of pattern)")
			}
			s.out.WriteRune(c)
			s.out.WriteRune(s.src[s.pos+1])
			s.pos += 2
			continue
		case '[':
			// A literal bracket in Python; the engine would read "[:" as a
			// POSIX class opener.
			s.out.WriteString(`\[`)
			s.pos++
			continue
		case ']':
			s.out.WriteRune(c)
			s.pos++
			return nil
		}
		s.out.WriteRune(c)
		s.pos++
	}
	return s.errorf(start, "unterminated character set")
}

func (s *scanner) innermost() int {
	for i := len(s.open) - 1; i >= 0; i-- {
		if s.open[i] >= 0 {
			return s.open[i]
		}
	}
	return 0
}

func (s *scanner) push(group int, at int) {
	s.open = append(s.open, group)
	s.openPos = append(s.openPos, at)
}

func (s *scanner) capture(at int) int {
	s.syn.groups++
	g := s.syn.groups
	s.syn.parents = append(s.syn.parents, s.innermost())
	s.push(g, at)
	return g
}

func (s *scanner) group() error {
	at := s.pos
	if s.peek(1) != '?' {
		s.capture(at)
		s.out.WriteRune('(')
		s.pos++
		return nil
	}
	switch s.peek(2) {
	case 'P':
		return s.pythonGroup(at)
	case '<':
		if k := s.peek(3); k == '=' || k == '!' {
			s.push(-1, at)
			s.out.WriteString("(?<")
			s.out.WriteRune(k)
			s.pos += 4
			return nil
		}
		return s.errorf(at+1, "unknown extension ?<%c", s.peek(3))
	case '#':
		for s.pos < len(s.src) && s.src[s.pos] != ')' {
			s.pos++
		}
		if s.pos >= len(s.src) {
			return s.errorf(at, "missing ), unterminated comment")
		}
		s.pos++
		return nil
	}
	s.push(-1, at)
	s.out.WriteString("(?")
	s.pos += 2
	return nil
}

// readName reads up to the terminator and validates the identifier.
func (s *scanner) readName(term rune) (string, error) {
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] != term {
		s.pos++
	}
	if s.pos >= len(s.src) {
		return "", s.errorf(start, "missing %c, unterminated name", term)
	}
	name := string(s.src[start:s.pos])
	s.pos++
	if name == "" {
		return "", s.errorf(start, "missing group name")
	}
	for i, r := range name {
		if r != '_' && !unicode.IsLetter(r) && (i == 0 || !unicode.IsDigit(r)) {
			return "", s.errorf(start, "bad character in group name '%s'", name)
		}
	}
	return name, nil
}

func (s *scanner) pythonGroup(at int) error {
	switch s.peek(3) {
	case '<':
		s.pos += 4
		name, err := s.readName('>')
		if err != nil {
			return err
		}
		if prev, dup := s.syn.names[name]; dup {
			return s.errorf(at+4, "redefinition of group name '%s' as group %d; was group %d", name, s.syn.groups+1, prev)
		}
		g := s.capture(at)
		s.syn.names[name] = g
		s.out.WriteRune('(')
		return nil
	case '=':
		s.pos += 4
		name, err := s.readName(')')
		if err != nil {
			return err
		}
		g, ok := s.syn.names[name]
		if !ok {
			return s.errorf(at+4, "unknown group name '%s'", name)
		}
		s.out.WriteString(`(?:\` + strconv.Itoa(g) + `)`)
		return nil
	}
	return s.errorf(at+1, "unknown extension ?P%c", s.peek(3))
}
