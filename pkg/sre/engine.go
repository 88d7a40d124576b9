// Package sre implements Python's compiled-pattern and match objects on top
// of a pluggable regular expression engine.
package sre

// Flag values match the re module's.
const (
	TEMPLATE   = 1
	IGNORECASE = 2
	LOCALE     = 4
	MULTILINE  = 8
	DOTALL     = 16
	UNICODE    = 32
	VERBOSE    = 64
	DEBUG      = 128
	ASCII      = 256
)

var flagNames = []struct {
	bit  int
	name string
}{
	{TEMPLATE, "re.TEMPLATE"},
	{IGNORECASE, "re.IGNORECASE"},
	{LOCALE, "re.LOCALE"},
	{MULTILINE, "re.MULTILINE"},
	{DOTALL, "re.DOTALL"},
	{UNICODE, "re.UNICODE"},
	{VERBOSE, "re.VERBOSE"},
	{DEBUG, "re.DEBUG"},
	{ASCII, "re.ASCII"},
}

// Engine compiles Python-syntax patterns. Implementations translate the
// syntax to whatever their matcher understands but must number groups left
// to right by opening parenthesis.
type Engine interface {
	Compile(pattern string, flags int) (Program, error)
}

// Program is a compiled pattern.
type Program interface {
	// Exec searches subject from start, which is a rune offset. Text before
	// start stays visible to lookbehind.
	Exec(subject []rune, start int) (Result, error)
	// Groups is the number of capturing groups, not counting group 0.
	Groups() int
	// GroupIndex maps group names to numbers.
	GroupIndex() map[string]int
}

// Result is one engine match. Start and End hold rune offsets for group 0
// and every capturing group, with -1 for groups that did not participate.
type Result struct {
	IsMatch    bool
	Start      []int
	End        []int
	GroupCount int // including group 0
}

// NoMatch is the Result of a failed search.
var NoMatch = Result{}
