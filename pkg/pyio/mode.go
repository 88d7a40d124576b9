package pyio

import (
	"strings"

	"github.com/danielsun1106/graalpython/pkg/runtime"
)

// Mode is a parsed open() mode string.
type Mode struct {
	Creating  bool
	Reading   bool
	Writing   bool
	Appending bool
	Updating  bool
	Text      bool
	Binary    bool
	Universal bool
}

// TextOptions are the arguments only text mode accepts. A nil field means
// the argument was not given.
type TextOptions struct {
	Encoding *string
	Errors   *string
	Newline  *string
}

// ParseMode validates an open() mode together with the text-only options.
// Every check happens here so that a bad combination fails before any
// descriptor is opened.
func ParseMode(mode string, opts TextOptions) (Mode, error) {
	seen := make(map[rune]bool, len(mode))
	for _, c := range mode {
		if !strings.ContainsRune("xrwa+tbU", c) || seen[c] {
			return Mode{}, runtime.Errorf(runtime.ValueError, "invalid mode: '%s'", mode)
		}
		seen[c] = true
	}
	m := Mode{
		Creating:  seen['x'],
		Reading:   seen['r'],
		Writing:   seen['w'],
		Appending: seen['a'],
		Updating:  seen['+'],
		Text:      seen['t'],
		Binary:    seen['b'],
		Universal: seen['U'],
	}
	if m.Universal {
		if m.Writing || m.Appending {
			return Mode{}, runtime.Errorf(runtime.ValueError, "can't use U and writing mode at once")
		}
		if m.Creating || m.Updating {
			return Mode{}, runtime.Errorf(runtime.ValueError, "mode U cannot be combined with 'x', 'w', 'a', or '+'")
		}
		m.Reading = true
	}
	if m.Text && m.Binary {
		return Mode{}, runtime.Errorf(runtime.ValueError, "can't have text and binary mode at once")
	}
	count := 0
	for _, b := range []bool{m.Creating, m.Reading, m.Writing, m.Appending} {
		if b {
			count++
		}
	}
	if count != 1 {
		return Mode{}, runtime.Errorf(runtime.ValueError, "must have exactly one of create/read/write/append mode")
	}
	if m.Binary {
		switch {
		case opts.Encoding != nil:
			return Mode{}, runtime.Errorf(runtime.ValueError, "binary mode doesn't take an encoding argument")
		case opts.Errors != nil:
			return Mode{}, runtime.Errorf(runtime.ValueError, "binary mode doesn't take an errors argument")
		case opts.Newline != nil:
			return Mode{}, runtime.Errorf(runtime.ValueError, "binary mode doesn't take a newline argument")
		}
	}
	if opts.Newline != nil {
		if err := checkNewline(*opts.Newline); err != nil {
			return Mode{}, err
		}
	}
	return m, nil
}

// Raw renders the mode FileIO is opened with.
func (m Mode) Raw() string {
	var b strings.Builder
	switch {
	case m.Creating:
		b.WriteByte('x')
	case m.Reading:
		b.WriteByte('r')
	case m.Writing:
		b.WriteByte('w')
	case m.Appending:
		b.WriteByte('a')
	}
	if m.Updating {
		b.WriteByte('+')
	}
	return b.String()
}

func checkNewline(nl string) error {
	switch nl {
	case "", "\n", "\r", "\r\n":
		return nil
	}
	return runtime.Errorf(runtime.ValueError, "illegal newline value: '%s'", nl)
}

// rawMode is a decoded FileIO mode.
type rawMode struct {
	readable  bool
	writable  bool
	created   bool
	appending bool
	flags     int
}

func decodeRawMode(mode string) (rawMode, error) {
	bad := func() error {
		return runtime.Errorf(runtime.ValueError, "Must have exactly one of read/write/create/append mode")
	}
	var rm rawMode
	rwa, plus := false, false
	for _, c := range mode {
		switch c {
		case 'r':
			if rwa {
				return rawMode{}, bad()
			}
			rwa, rm.readable = true, true
		case 'w':
			if rwa {
				return rawMode{}, bad()
			}
			rwa, rm.writable = true, true
			rm.flags |= OCreat | OTrunc
		case 'x':
			if rwa {
				return rawMode{}, bad()
			}
			rwa, rm.created, rm.writable = true, true, true
			rm.flags |= OExcl | OCreat
		case 'a':
			if rwa {
				return rawMode{}, bad()
			}
			rwa, rm.writable, rm.appending = true, true, true
			rm.flags |= OAppend | OCreat
		case 'b':
		case '+':
			if plus {
				return rawMode{}, bad()
			}
			plus, rm.readable, rm.writable = true, true, true
		default:
			return rawMode{}, runtime.Errorf(runtime.ValueError, "invalid mode: %s", mode)
		}
	}
	if !rwa {
		return rawMode{}, bad()
	}
	switch {
	case rm.readable && rm.writable:
		rm.flags |= ORdWr
	case rm.readable:
		rm.flags |= ORdOnly
	default:
		rm.flags |= OWrOnly
	}
	return rm, nil
}

// String renders the mode attribute of a FileIO.
func (rm rawMode) String() string {
	switch {
	case rm.created:
		if rm.readable {
			return "xb+"
		}
		return "xb"
	case rm.appending:
		if rm.readable {
			return "ab+"
		}
		return "ab"
	case rm.readable:
		if rm.writable {
			return "rb+"
		}
		return "rb"
	}
	return "wb"
}
