package sre

import (
	"reflect"
	"strings"
	"testing"

	"github.com/danielsun1106/graalpython/pkg/runtime"
)

// emptyEngine matches the empty string at every start position it is given.
type emptyEngine struct{ starts *[]int }

func (e emptyEngine) Compile(string, int) (Program, error) { return emptyProgram(e), nil }

type emptyProgram struct{ starts *[]int }

func (p emptyProgram) Groups() int                { return 0 }
func (p emptyProgram) GroupIndex() map[string]int { return nil }
func (p emptyProgram) Exec(subject []rune, start int) (Result, error) {
	*p.starts = append(*p.starts, start)
	return Result{IsMatch: true, Start: []int{start}, End: []int{start}, GroupCount: 1}, nil
}

func mustCompile(t *testing.T, pattern string, flags int) *Pattern {
	t.Helper()
	p, err := Compile(Regexp2Engine{}, pattern, flags)
	if err != nil {
		t.Fatalf("compile %q: %v", pattern, err)
	}
	return p
}

func strs(vals []runtime.Value) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = runtime.ReprOf(v)
	}
	return out
}

func TestScanPatternNumbersGroupsLeftToRight(t *testing.T) {
	syn, err := scanPattern(`(?P<a>x)(y)(?:z)(?P=a)\Z`, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if syn.expr != `(x)(y)(?:z)(?:\1)\z` {
		t.Fatalf("unexpected translation: %s", syn.expr)
	}
	if syn.groups != 2 || syn.names["a"] != 1 {
		t.Fatalf("expected 2 groups with a=1, got %d %v", syn.groups, syn.names)
	}
	syn, _ = scanPattern(`((a)[()]b)(c)`, false)
	if !reflect.DeepEqual(syn.parents, []int{0, 0, 1, 0}) {
		t.Fatalf("unexpected nesting: %v", syn.parents)
	}
}

func TestScanPatternErrors(t *testing.T) {
	cases := map[string]string{
		`(a`:        "missing ), unterminated subpattern at position 0",
		`a)`:        "unbalanced parenthesis at position 1",
		`(?P<1a>x)`: "bad character in group name '1a' at position 4",
		`(?P=b)`:    "unknown group name 'b' at position 4",
		`[a`:        "unterminated character set at position 0",
		`(?<x>a)`:   "unknown extension ?<x at position 1",
		`a\`:        "bad escape (end of pattern) at position 1",
	}
	for pattern, want := range cases {
		_, err := scanPattern(pattern, false)
		if err == nil || err.Error() != want {
			t.Fatalf("pattern %q: expected %q, got %v", pattern, want, err)
		}
	}
}

func TestCompileErrorIsReError(t *testing.T) {
	_, err := Compile(Regexp2Engine{}, `(?P<n>a)(?P<n>b)`, 0)
	exc, ok := runtime.AsException(err)
	if !ok || exc.Class != Error {
		t.Fatalf("expected re.error, got %v", err)
	}
	if exc.Message() != "redefinition of group name 'n' as group 2; was group 1 at position 12" {
		t.Fatalf("unexpected message: %s", exc.Message())
	}
	_, err = Compile(Regexp2Engine{}, "a", LOCALE)
	if !runtime.IsException(err, runtime.ValueError) {
		t.Fatalf("expected ValueError for LOCALE, got %v", err)
	}
}

func TestZeroWidthMatchesAdvanceByOne(t *testing.T) {
	var starts []int
	p, err := Compile(emptyEngine{starts: &starts}, "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all, err := p.FindAll("abc", 0, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 empty matches, got %d", len(all))
	}
	if !reflect.DeepEqual(starts, []int{0, 1, 2, 3}) {
		t.Fatalf("expected searches at 0..3, got %v", starts)
	}
	out, err := p.Sub(Literal("-"), "abc", 0)
	if err != nil || out != "-a-b-c-" {
		t.Fatalf("expected -a-b-c-, got %q (%v)", out, err)
	}
}

func TestSubZeroWidthWithRegexp2(t *testing.T) {
	p := mustCompile(t, "x*", 0)
	cases := map[string]string{"abc": "-a-b-c-", "axb": "-a--b-", "": "-"}
	for in, want := range cases {
		got, err := p.Sub(Literal("-"), in, 0)
		if err != nil || got != want {
			t.Fatalf("sub on %q: expected %q, got %q (%v)", in, want, got, err)
		}
	}
}

func TestSearchMatchFullMatch(t *testing.T) {
	p := mustCompile(t, `(\d+)-(\d+)`, 0)
	m, err := p.Search("tel 12-34", 0, -1)
	if err != nil || m == nil {
		t.Fatalf("expected a match, got %v (%v)", m, err)
	}
	if s, e := m.Span(0); s != 4 || e != 9 {
		t.Fatalf("expected span (4, 9), got (%d, %d)", s, e)
	}
	if g, _ := m.Group(2); g != "34" {
		t.Fatalf("expected group 2 = 34, got %q", g)
	}

	digits := mustCompile(t, `\d+`, 0)
	if m, _ := digits.Match("a12", 0, -1); m != nil {
		t.Fatalf("expected match to be anchored at pos, got %v", m)
	}
	m, _ = digits.Match("a12", 1, -1)
	if m == nil || m.String() != "<re.Match object; span=(1, 3), match='12'>" {
		t.Fatalf("unexpected match at pos 1: %v", m)
	}
	if m, _ := mustCompile(t, `^\d`, 0).Search("a1", 1, -1); m != nil {
		t.Fatalf("expected ^ to match only at the start of the string")
	}

	alt := mustCompile(t, `a|ab`, 0)
	m, _ = alt.FullMatch("ab", 0, -1)
	if g, _ := m.Group(0); m == nil || g != "ab" {
		t.Fatalf("expected fullmatch to backtrack into the second branch")
	}
	if m, _ := alt.FullMatch("abc", 0, -1); m != nil {
		t.Fatalf("expected no fullmatch on abc")
	}

	end := mustCompile(t, `c$`, 0)
	m, _ = end.Search("abcd", 0, 3)
	if m == nil || m.Start(0) != 2 || m.EndPos() != 3 {
		t.Fatalf("expected endpos to truncate the subject, got %v", m)
	}
}

func TestOffsetsAreRunes(t *testing.T) {
	m, _ := mustCompile(t, `é(.)`, 0).Search("café!", 0, -1)
	if m == nil {
		t.Fatalf("expected a match")
	}
	if s, e := m.Span(0); s != 3 || e != 5 {
		t.Fatalf("expected rune span (3, 5), got (%d, %d)", s, e)
	}
}

func TestFindAllShapes(t *testing.T) {
	got := strs(must(mustCompile(t, `\d`, 0).FindAll("a1b2", 0, -1)))
	if strings.Join(got, ",") != "'1','2'" {
		t.Fatalf("unexpected findall without groups: %v", got)
	}
	got = strs(must(mustCompile(t, `(\w)=\d`, 0).FindAll("a=1 b=2", 0, -1)))
	if strings.Join(got, ",") != "'a','b'" {
		t.Fatalf("unexpected findall with one group: %v", got)
	}
	got = strs(must(mustCompile(t, `(\w)=(\d)?`, 0).FindAll("a=1 b=", 0, -1)))
	if strings.Join(got, ",") != "('a', '1'),('b', '')" {
		t.Fatalf("unexpected findall with two groups: %v", got)
	}
}

func must(v []runtime.Value, err error) []runtime.Value {
	if err != nil {
		panic(err)
	}
	return v
}

func TestSubIsLiteralAndCounts(t *testing.T) {
	p := mustCompile(t, `(a)`, 0)
	out, _ := p.Sub(Literal(`<\1>`), "bab", 0)
	if out != `b<\1>b` {
		t.Fatalf("expected replacement inserted verbatim, got %q", out)
	}
	out, n, _ := p.Subn(Literal("b"), "aaa", 2)
	if out != "bba" || n != 2 {
		t.Fatalf("expected bba with 2 replacements, got %q %d", out, n)
	}
	out, n, _ = p.Subn(Literal("b"), "aaa", -1)
	if out != "aaa" || n != 0 {
		t.Fatalf("expected negative count to replace nothing, got %q %d", out, n)
	}
	out, _ = p.Sub(func(m *Match) (string, error) {
		return m.Expand(`[\1]`)
	}, "bab", 0)
	if out != "b[a]b" {
		t.Fatalf("expected expanded replacement, got %q", out)
	}
}

func TestSplit(t *testing.T) {
	got := strs(must(mustCompile(t, `x*`, 0).Split("axbc", 0)))
	if strings.Join(got, ",") != "'','a','','b','c',''" {
		t.Fatalf("unexpected split on empty matches: %v", got)
	}
	got = strs(must(mustCompile(t, `(-)|(\+)`, 0).Split("a-b+c", 0)))
	if strings.Join(got, ",") != "'a','-',None,'b',None,'+','c'" {
		t.Fatalf("unexpected split with groups: %v", got)
	}
	got = strs(must(mustCompile(t, `,`, 0).Split("a,b,c", 1)))
	if strings.Join(got, ",") != "'a','b,c'" {
		t.Fatalf("unexpected split with maxsplit: %v", got)
	}
}

func TestNamedGroups(t *testing.T) {
	p := mustCompile(t, `(?P<first>\w+) (?P<last>\w+)(?P<rest>!)?`, 0)
	m, _ := p.Match("Jane Doe", 0, -1)
	if m == nil {
		t.Fatalf("expected a match")
	}
	if s, ok := m.GroupByName("last"); !ok || s != "Doe" {
		t.Fatalf("expected last = Doe, got %q", s)
	}
	d, _ := m.GroupDict(runtime.Str("-"))
	if got := runtime.ReprOf(d); got != "{'first': 'Jane', 'last': 'Doe', 'rest': '-'}" {
		t.Fatalf("unexpected groupdict: %s", got)
	}
	if name, ok := m.LastGroup(); !ok || name != "last" {
		t.Fatalf("expected lastgroup last, got %q", name)
	}
	out, err := m.Expand(`\g<last>, \g<1>\n`)
	if err != nil || out != "Doe, Jane\n" {
		t.Fatalf("unexpected expansion %q (%v)", out, err)
	}
	_, err = m.Expand(`\g<9>`)
	if !runtime.IsException(err, Error) {
		t.Fatalf("expected re.error for a bad group reference, got %v", err)
	}
	_, err = m.GroupValue(runtime.Int(7))
	if exc, ok := runtime.AsException(err); !ok || exc.Error() != "IndexError: no such group" {
		t.Fatalf("expected IndexError, got %v", err)
	}
	if got := runtime.ReprOf(m.Groups(runtime.None)); got != "('Jane', 'Doe', None)" {
		t.Fatalf("unexpected groups: %s", got)
	}
}

func TestLastIndex(t *testing.T) {
	m, _ := mustCompile(t, `((a)b)`, 0).Match("ab", 0, -1)
	if g, _ := m.LastIndex(); g != 1 {
		t.Fatalf("expected the enclosing group to close last, got %d", g)
	}
	m, _ = mustCompile(t, `(a)(b*)`, 0).Match("a", 0, -1)
	if g, _ := m.LastIndex(); g != 2 {
		t.Fatalf("expected the later sibling to close last, got %d", g)
	}
	m, _ = mustCompile(t, `a`, 0).Match("a", 0, -1)
	if _, ok := m.LastIndex(); ok {
		t.Fatalf("expected no lastindex without groups")
	}
}

func TestPatternRepr(t *testing.T) {
	p := mustCompile(t, `a\d`, IGNORECASE|MULTILINE)
	if got := p.String(); got != `re.compile('a\\d', re.IGNORECASE|re.MULTILINE)` {
		t.Fatalf("unexpected repr: %s", got)
	}
	if p.Flags() != IGNORECASE|MULTILINE|UNICODE {
		t.Fatalf("expected UNICODE implied, got %d", p.Flags())
	}
	if got := mustCompile(t, "x", 0).String(); got != "re.compile('x')" {
		t.Fatalf("unexpected repr: %s", got)
	}
}

func TestFlagsReachEngine(t *testing.T) {
	if m, _ := mustCompile(t, `abc`, IGNORECASE).Search("xABC", 0, -1); m == nil {
		t.Fatalf("expected IGNORECASE to match ABC")
	}
	if m, _ := mustCompile(t, `^b`, MULTILINE).Search("a\nb", 0, -1); m == nil {
		t.Fatalf("expected MULTILINE ^ after a newline")
	}
	if m, _ := mustCompile(t, `a.b`, DOTALL).Search("a\nb", 0, -1); m == nil {
		t.Fatalf("expected DOTALL . to match a newline")
	}
	if m, _ := mustCompile(t, "a b # comment", VERBOSE).FullMatch("ab", 0, -1); m == nil {
		t.Fatalf("expected VERBOSE to ignore whitespace and comments")
	}
}

func TestCacheEvictsOldest(t *testing.T) {
	c := NewCache(Regexp2Engine{}, 2)
	a, _ := c.Compile("a", 0)
	if again, _ := c.Compile("a", 0); again != a {
		t.Fatalf("expected cached pattern")
	}
	c.Compile("b", 0)
	c.Compile("c", 0)
	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
	if again, _ := c.Compile("a", 0); again == a {
		t.Fatalf("expected a to have been evicted")
	}
}

func TestPatternObject(t *testing.T) {
	h := NewPatternObject(mustCompile(t, `(\w)(\d)`, 0))
	upper := runtime.NewFunction("upper", func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		g, err := runtime.CallMethod(args[0], "group", runtime.Int(1))
		if err != nil {
			return nil, err
		}
		return runtime.Str(strings.ToUpper(g.(runtime.StrValue).Val)), nil
	})
	out, err := runtime.CallMethod(h, "sub", upper, runtime.Str("a1 b2"))
	if err != nil || runtime.ReprOf(out) != "'A B'" {
		t.Fatalf("expected callable replacement, got %v (%v)", out, err)
	}
	res, err := runtime.CallMethod(h, "subn", runtime.Str("#"), runtime.Str("a1 b2"), runtime.Int(1))
	if err != nil || runtime.ReprOf(res) != "('# b2', 1)" {
		t.Fatalf("unexpected subn: %v (%v)", res, err)
	}
	m, _ := runtime.CallMethod(h, "search", runtime.Str("--x9"))
	span, _ := runtime.CallMethod(m, "span", runtime.Int(2))
	if runtime.ReprOf(span) != "(3, 4)" {
		t.Fatalf("unexpected span: %v", span)
	}
	none, _ := runtime.CallMethod(h, "match", runtime.Str("--x9"))
	if none != runtime.Value(runtime.None) {
		t.Fatalf("expected None, got %v", none)
	}
	items, err := runtime.CallMethod(h, "finditer", runtime.Str("a1b2c3"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all, _ := runtime.ToSlice(items)
	if len(all) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(all))
	}
	_, err = runtime.CallMethod(h, "search", runtime.Int(3))
	if exc, ok := runtime.AsException(err); !ok || exc.Message() != "expected string or bytes-like object, got 'int'" {
		t.Fatalf("expected TypeError, got %v", err)
	}
}
