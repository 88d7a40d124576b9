package sre

import (
	"fmt"
	"sort"

	"github.com/danielsun1106/graalpython/pkg/runtime"
)

// Match is an immutable snapshot of one successful match. Offsets are in
// runes.
type Match struct {
	re      *Pattern
	str     string
	subject []rune
	pos     int
	endpos  int
	start   []int
	end     []int
}

func newMatch(p *Pattern, s string, subject []rune, pos, endpos int, res Result) *Match {
	n := p.groups + 1
	m := &Match{re: p, str: s, subject: subject, pos: pos, endpos: endpos, start: make([]int, n), end: make([]int, n)}
	for i := 0; i < n; i++ {
		m.start[i], m.end[i] = -1, -1
		if i < len(res.Start) && i < len(res.End) {
			m.start[i], m.end[i] = res.Start[i], res.End[i]
		}
	}
	return m
}

func (m *Match) Re() *Pattern { return m.re }

// Subject is the string that was searched.
func (m *Match) Subject() string { return m.str }

func (m *Match) Pos() int { return m.pos }

func (m *Match) EndPos() int { return m.endpos }

func (m *Match) valid(g int) bool { return g >= 0 && g < len(m.start) }

func (m *Match) text(g int) string {
	if !m.valid(g) || m.start[g] < 0 {
		return ""
	}
	return string(m.subject[m.start[g]:m.end[g]])
}

// Group returns the text of group g; ok is false when g does not exist or
// did not participate.
func (m *Match) Group(g int) (string, bool) {
	if !m.valid(g) || m.start[g] < 0 {
		return "", false
	}
	return m.text(g), true
}

// GroupByName is Group for a named group.
func (m *Match) GroupByName(name string) (string, bool) {
	g, ok := m.re.index[name]
	if !ok {
		return "", false
	}
	return m.Group(g)
}

func (m *Match) groupValue(g int, def runtime.Value) runtime.Value {
	if s, ok := m.Group(g); ok {
		return runtime.Str(s)
	}
	return def
}

// GroupNumber resolves a group reference given as an int or a name.
func (m *Match) GroupNumber(ref runtime.Value) (int, error) {
	switch v := ref.(type) {
	case runtime.IntValue:
		if m.valid(int(v.Val)) {
			return int(v.Val), nil
		}
	case runtime.BoolValue:
		if v.Val && m.valid(1) {
			return 1, nil
		}
		if !v.Val {
			return 0, nil
		}
	case runtime.StrValue:
		if g, ok := m.re.index[v.Val]; ok {
			return g, nil
		}
	}
	return 0, runtime.Errorf(runtime.IndexError, "no such group")
}

// GroupValue implements group() for one reference: the text, or None when
// the group did not participate.
func (m *Match) GroupValue(ref runtime.Value) (runtime.Value, error) {
	g, err := m.GroupNumber(ref)
	if err != nil {
		return nil, err
	}
	return m.groupValue(g, runtime.None), nil
}

// Groups returns groups 1..n with def for those that did not participate.
func (m *Match) Groups(def runtime.Value) *runtime.TupleValue {
	out := make([]runtime.Value, 0, len(m.start)-1)
	for g := 1; g < len(m.start); g++ {
		out = append(out, m.groupValue(g, def))
	}
	return runtime.NewTuple(out...)
}

// GroupDict maps each named group to its text, in group order.
func (m *Match) GroupDict(def runtime.Value) (*runtime.DictValue, error) {
	d := runtime.NewDict()
	for _, name := range sortedNames(m.re.index) {
		if err := d.SetItem(runtime.Str(name), m.groupValue(m.re.index[name], def)); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// sortedNames orders group names by group number.
func sortedNames(index map[string]int) []string {
	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return index[names[i]] < index[names[j]] })
	return names
}

// Span returns the offsets of group g, (-1, -1) when it did not participate.
func (m *Match) Span(g int) (int, int) {
	if !m.valid(g) {
		return -1, -1
	}
	return m.start[g], m.end[g]
}

func (m *Match) Start(g int) int {
	s, _ := m.Span(g)
	return s
}

func (m *Match) End(g int) int {
	_, e := m.Span(g)
	return e
}

// LastIndex is the number of the last group to close, if any participated.
func (m *Match) LastIndex() (int, bool) {
	best := -1
	for g := 1; g < len(m.start); g++ {
		if m.start[g] < 0 {
			continue
		}
		if best < 0 || m.end[g] > m.end[best] || (m.end[g] == m.end[best] && !m.re.encloses(best, g)) {
			best = g
		}
	}
	return best, best > 0
}

// LastGroup is the name of the LastIndex group, if it has one.
func (m *Match) LastGroup() (string, bool) {
	g, ok := m.LastIndex()
	if !ok {
		return "", false
	}
	for name, idx := range m.re.index {
		if idx == g {
			return name, true
		}
	}
	return "", false
}

func (m *Match) String() string {
	return fmt.Sprintf("<re.Match object; span=(%d, %d), match=%s>",
		m.start[0], m.end[0], runtime.ReprOf(runtime.Str(m.text(0))))
}
