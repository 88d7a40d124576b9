package sre

import (
	"time"

	"github.com/dlclark/regexp2"
)

// Regexp2Engine runs patterns on github.com/dlclark/regexp2, a backtracking
// engine with lookbehind and backreferences. A zero Timeout means no limit.
type Regexp2Engine struct {
	Timeout time.Duration
}

func (e Regexp2Engine) options(flags int) regexp2.RegexOptions {
	opts := regexp2.None
	if flags&IGNORECASE != 0 {
		opts |= regexp2.IgnoreCase
	}
	if flags&MULTILINE != 0 {
		opts |= regexp2.Multiline
	}
	if flags&DOTALL != 0 {
		opts |= regexp2.Singleline
	}
	if flags&VERBOSE != 0 {
		opts |= regexp2.IgnorePatternWhitespace
	}
	return opts
}

func (e Regexp2Engine) Compile(pattern string, flags int) (Program, error) {
	syn, err := scanPattern(pattern, flags&VERBOSE != 0)
	if err != nil {
		return nil, err
	}
	re, err := regexp2.Compile(syn.expr, e.options(flags))
	if err != nil {
		return nil, err
	}
	if e.Timeout > 0 {
		re.MatchTimeout = e.Timeout
	}
	return &regexp2Program{re: re, syn: syn}, nil
}

type regexp2Program struct {
	re  *regexp2.Regexp
	syn syntax
}

func (p *regexp2Program) Groups() int { return p.syn.groups }

func (p *regexp2Program) GroupIndex() map[string]int {
	out := make(map[string]int, len(p.syn.names))
	for k, v := range p.syn.names {
		out[k] = v
	}
	return out
}

func (p *regexp2Program) Exec(subject []rune, start int) (Result, error) {
	if start > len(subject) {
		return NoMatch, nil
	}
	m, err := p.re.FindRunesMatchStartingAt(subject, start)
	if err != nil || m == nil {
		return NoMatch, err
	}
	n := p.syn.groups + 1
	res := Result{IsMatch: true, Start: make([]int, n), End: make([]int, n), GroupCount: n}
	for i := 0; i < n; i++ {
		g := m.GroupByNumber(i)
		if g == nil || len(g.Captures) == 0 {
			res.Start[i], res.End[i] = -1, -1
			continue
		}
		res.Start[i], res.End[i] = g.Index, g.Index+g.Length
	}
	return res, nil
}
