package sre

import (
	"fmt"
	"iter"
	"strings"

	"github.com/danielsun1106/graalpython/pkg/runtime"
)

// Error is the re.error exception class.
var Error = newErrorType()

func newErrorType() *runtime.Type {
	t, err := runtime.NewType("re.error", []*runtime.Type{runtime.Exception}, nil)
	if err != nil {
		panic(err)
	}
	return t
}

// Pattern is a compiled regular expression. The anchored programs used by
// Match and FullMatch are compiled the first time they are needed.
type Pattern struct {
	pattern string
	flags   int
	engine  Engine

	search Program
	match  Program
	full   Program

	groups  int
	index   map[string]int
	parents []int
}

// Compile compiles pattern for engine. As with the re module, \" and \'
// in the pattern stand for plain quotes.
func Compile(engine Engine, pattern string, flags int) (*Pattern, error) {
	if flags&LOCALE != 0 {
		return nil, runtime.Errorf(runtime.ValueError, "cannot use LOCALE flag with a str pattern")
	}
	if flags&ASCII != 0 && flags&UNICODE != 0 {
		return nil, runtime.Errorf(runtime.ValueError, "ASCII and UNICODE flags are incompatible")
	}
	if flags&ASCII == 0 {
		flags |= UNICODE
	}
	pattern = strings.NewReplacer(`\"`, `"`, `\'`, `'`).Replace(pattern)
	p := &Pattern{pattern: pattern, flags: flags, engine: engine}
	prog, err := p.compile(pattern)
	if err != nil {
		return nil, err
	}
	p.search = prog
	p.groups = prog.Groups()
	p.index = prog.GroupIndex()
	if syn, err := scanPattern(pattern, flags&VERBOSE != 0); err == nil && syn.groups == p.groups {
		p.parents = syn.parents
	}
	return p, nil
}

func (p *Pattern) compile(expr string) (Program, error) {
	prog, err := p.engine.Compile(expr, p.flags)
	if err != nil {
		if _, ok := runtime.AsException(err); ok {
			return nil, err
		}
		return nil, runtime.Errorf(Error, "%s", err.Error())
	}
	return prog, nil
}

// anchored wraps the pattern so it can only match at the search position,
// and also at the end of the subject when full is set.
func (p *Pattern) anchored(full bool) (Program, error) {
	slot := &p.match
	if full {
		slot = &p.full
	}
	if *slot != nil {
		return *slot, nil
	}
	body := p.pattern
	if p.flags&VERBOSE != 0 {
		body += "\n"
	}
	expr := `\G(?:` + body + `)`
	if full {
		expr += `\z`
	}
	prog, err := p.compile(expr)
	if err != nil {
		return nil, err
	}
	*slot = prog
	return prog, nil
}

func (p *Pattern) Pattern() string { return p.pattern }

func (p *Pattern) Flags() int { return p.flags }

// Groups is the number of capturing groups.
func (p *Pattern) Groups() int { return p.groups }

// GroupIndex maps group names to numbers.
func (p *Pattern) GroupIndex() map[string]int {
	out := make(map[string]int, len(p.index))
	for k, v := range p.index {
		out[k] = v
	}
	return out
}

// encloses reports whether group outer contains group inner.
func (p *Pattern) encloses(outer, inner int) bool {
	if p.parents == nil || inner >= len(p.parents) {
		return false
	}
	for g := p.parents[inner]; g > 0; g = p.parents[g] {
		if g == outer {
			return true
		}
	}
	return false
}

func (p *Pattern) String() string {
	var names []string
	rest := p.flags &^ UNICODE
	for _, f := range flagNames {
		if rest&f.bit != 0 {
			names = append(names, f.name)
			rest &^= f.bit
		}
	}
	if rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", rest))
	}
	src := runtime.ReprOf(runtime.Str(p.pattern))
	if len(names) == 0 {
		return "re.compile(" + src + ")"
	}
	return "re.compile(" + src + ", " + strings.Join(names, "|") + ")"
}

// bounds clamps pos and endpos the way the re module does. A negative
// endpos means the end of the subject.
func bounds(n, pos, endpos int) (int, int) {
	if pos < 0 {
		pos = 0
	}
	if pos > n {
		pos = n
	}
	if endpos < 0 || endpos > n {
		endpos = n
	}
	return pos, endpos
}

func (p *Pattern) exec(prog Program, s string, pos, endpos int) (*Match, error) {
	subject := []rune(s)
	pos, endpos = bounds(len(subject), pos, endpos)
	if endpos < pos {
		return nil, nil
	}
	res, err := prog.Exec(subject[:endpos], pos)
	if err != nil {
		return nil, runtime.WrapGoError(err)
	}
	if !res.IsMatch {
		return nil, nil
	}
	return newMatch(p, s, subject, pos, endpos, res), nil
}

// Search finds the first match at or after pos. A nil Match means no match.
func (p *Pattern) Search(s string, pos, endpos int) (*Match, error) {
	return p.exec(p.search, s, pos, endpos)
}

// Match matches only at pos.
func (p *Pattern) Match(s string, pos, endpos int) (*Match, error) {
	prog, err := p.anchored(false)
	if err != nil {
		return nil, err
	}
	return p.exec(prog, s, pos, endpos)
}

// FullMatch matches only if the whole of s[pos:endpos] matches.
func (p *Pattern) FullMatch(s string, pos, endpos int) (*Match, error) {
	prog, err := p.anchored(true)
	if err != nil {
		return nil, err
	}
	return p.exec(prog, s, pos, endpos)
}

// scan walks successive non-overlapping matches. After an empty match the
// next search starts one position further on, so every pattern terminates.
type scan struct {
	p       *Pattern
	str     string
	subject []rune
	pos     int
	endpos  int
	start   int
	done    bool
}

func (p *Pattern) newScan(s string, pos, endpos int) *scan {
	subject := []rune(s)
	pos, endpos = bounds(len(subject), pos, endpos)
	return &scan{p: p, str: s, subject: subject, pos: pos, endpos: endpos, start: pos, done: endpos < pos}
}

func (sc *scan) next() (*Match, error) {
	if sc.done || sc.pos > sc.endpos {
		sc.done = true
		return nil, nil
	}
	res, err := sc.p.search.Exec(sc.subject[:sc.endpos], sc.pos)
	if err != nil {
		sc.done = true
		return nil, runtime.WrapGoError(err)
	}
	if !res.IsMatch {
		sc.done = true
		return nil, nil
	}
	next := res.End[0]
	if next <= sc.pos || res.Start[0] == next {
		next = max(next, sc.pos) + 1
	}
	sc.pos = next
	return newMatch(sc.p, sc.str, sc.subject, sc.start, sc.endpos, res), nil
}

// FindIter yields every match in order.
func (p *Pattern) FindIter(s string, pos, endpos int) iter.Seq2[*Match, error] {
	return func(yield func(*Match, error) bool) {
		sc := p.newScan(s, pos, endpos)
		for {
			m, err := sc.next()
			if err != nil {
				yield(nil, err)
				return
			}
			if m == nil || !yield(m, nil) {
				return
			}
		}
	}
}

// FindIterValue is FindIter as a runtime iterator of match objects.
func (p *Pattern) FindIterValue(s string, pos, endpos int) *runtime.IteratorValue {
	sc := p.newScan(s, pos, endpos)
	return runtime.NewIteratorValue(func() (runtime.Value, bool, error) {
		m, err := sc.next()
		if err != nil {
			return nil, true, err
		}
		if m == nil {
			return nil, true, nil
		}
		return NewMatchObject(m), false, nil
	}, nil)
}

// FindAll lists the matches as str values: the whole match when the pattern
// has no groups, group 1 when it has one, and a tuple of all groups
// otherwise. Groups that did not participate contribute "".
func (p *Pattern) FindAll(s string, pos, endpos int) ([]runtime.Value, error) {
	var out []runtime.Value
	for m, err := range p.FindIter(s, pos, endpos) {
		if err != nil {
			return nil, err
		}
		switch p.groups {
		case 0:
			out = append(out, runtime.Str(m.text(0)))
		case 1:
			out = append(out, runtime.Str(m.text(1)))
		default:
			out = append(out, m.Groups(runtime.Str("")))
		}
	}
	return out, nil
}

// Replacer produces the replacement text for one match.
type Replacer func(m *Match) (string, error)

// Literal inserts repl as is. Backslash escapes are not expanded; use
// Match.Expand for that.
func Literal(repl string) Replacer {
	return func(*Match) (string, error) { return repl, nil }
}

// Sub replaces matches in s. count 0 replaces all of them and a negative
// count replaces none.
func (p *Pattern) Sub(repl Replacer, s string, count int) (string, error) {
	out, _, err := p.Subn(repl, s, count)
	return out, err
}

// Subn is Sub that also reports how many replacements were made.
func (p *Pattern) Subn(repl Replacer, s string, count int) (string, int, error) {
	if count < 0 {
		return s, 0, nil
	}
	sc := p.newScan(s, 0, -1)
	var b strings.Builder
	last, n := 0, 0
	for count == 0 || n < count {
		m, err := sc.next()
		if err != nil {
			return "", n, err
		}
		if m == nil {
			break
		}
		start, end := m.Span(0)
		b.WriteString(string(sc.subject[last:start]))
		text, err := repl(m)
		if err != nil {
			return "", n, err
		}
		b.WriteString(text)
		last = end
		n++
	}
	b.WriteString(string(sc.subject[last:]))
	return b.String(), n, nil
}

// Split breaks s at each match. Captured groups are included between the
// pieces, with None for groups that did not participate. maxsplit 0 means no
// limit and a negative maxsplit splits nothing.
func (p *Pattern) Split(s string, maxsplit int) ([]runtime.Value, error) {
	if maxsplit < 0 {
		return []runtime.Value{runtime.Str(s)}, nil
	}
	sc := p.newScan(s, 0, -1)
	var out []runtime.Value
	last, n := 0, 0
	for maxsplit == 0 || n < maxsplit {
		m, err := sc.next()
		if err != nil {
			return nil, err
		}
		if m == nil {
			break
		}
		start, end := m.Span(0)
		out = append(out, runtime.Str(string(sc.subject[last:start])))
		for g := 1; g <= p.groups; g++ {
			out = append(out, m.groupValue(g, runtime.None))
		}
		last = end
		n++
	}
	return append(out, runtime.Str(string(sc.subject[last:]))), nil
}
