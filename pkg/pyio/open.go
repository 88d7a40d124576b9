package pyio

import (
	"github.com/danielsun1106/graalpython/pkg/exceptions"
	"github.com/danielsun1106/graalpython/pkg/runtime"
)

// OpenOptions mirrors the keyword arguments of open(). Start from
// DefaultOpenOptions so Buffering means "pick a size".
type OpenOptions struct {
	// Buffering: 0 unbuffered (binary only), 1 line buffered, >1 buffer
	// size, <0 default.
	Buffering int
	Encoding  *string
	Errors    *string
	Newline   *string
	// KeepFD corresponds to closefd=False.
	KeepFD bool
	Opener func(path string, flags int) (int, error)
	OS     OS
	// BufferSize overrides the descriptor's block size as the default.
	BufferSize int
	// State receives warnings such as the 'U' mode deprecation.
	State *exceptions.State
}

// DefaultOpenOptions returns the options open() uses with no keywords.
func DefaultOpenOptions() OpenOptions {
	return OpenOptions{Buffering: -1}
}

// Open opens path and builds the stack the mode asks for: a FileIO, a
// buffered stream over it, and for text modes a TextIOWrapper on top. Mode
// errors are reported before the file is touched; a failure after the
// descriptor is acquired closes it again.
func Open(path string, mode string, opts OpenOptions) (Stream, error) {
	m, err := parseOpenMode(mode, opts)
	if err != nil {
		return nil, err
	}
	raw, err := NewFileIO(path, m.Raw(), FileIOOptions{OS: opts.OS, KeepFD: opts.KeepFD, Opener: opts.Opener})
	if err != nil {
		return nil, err
	}
	return wrap(raw, m, mode, opts)
}

// OpenFD is Open for an existing descriptor.
func OpenFD(fd int, mode string, opts OpenOptions) (Stream, error) {
	m, err := parseOpenMode(mode, opts)
	if err != nil {
		return nil, err
	}
	raw, err := NewFileIOFromFD(fd, m.Raw(), FileIOOptions{OS: opts.OS, KeepFD: opts.KeepFD})
	if err != nil {
		return nil, err
	}
	return wrap(raw, m, mode, opts)
}

func parseOpenMode(mode string, opts OpenOptions) (Mode, error) {
	m, err := ParseMode(mode, TextOptions{Encoding: opts.Encoding, Errors: opts.Errors, Newline: opts.Newline})
	if err != nil {
		return Mode{}, err
	}
	if m.Universal && opts.State != nil {
		if err := opts.State.Warn(runtime.DeprecationWarning, "'U' mode is deprecated", 2); err != nil {
			return Mode{}, err
		}
	}
	return m, nil
}

func wrap(raw *FileIO, m Mode, mode string, opts OpenOptions) (Stream, error) {
	var result Stream = raw
	fail := func(err error) (Stream, error) {
		result.Close()
		return nil, err
	}

	buffering := opts.Buffering
	lineBuffering := false
	if buffering == 1 || buffering < 0 && raw.os.Isatty(raw.fd) {
		buffering = -1
		lineBuffering = true
	}
	if buffering < 0 {
		buffering = opts.BufferSize
		if buffering == 0 {
			buffering = int(raw.BlkSize())
		}
	}
	if buffering < 0 {
		return fail(runtime.Errorf(runtime.ValueError, "invalid buffering size"))
	}
	if buffering == 0 {
		if m.Binary {
			return result, nil
		}
		return fail(runtime.Errorf(runtime.ValueError, "can't have unbuffered text I/O"))
	}

	var buffer *Buffered
	var err error
	switch {
	case m.Updating:
		buffer, err = NewBufferedRandom(raw, buffering)
	case m.Creating || m.Writing || m.Appending:
		buffer, err = NewBufferedWriter(raw, buffering)
	case m.Reading:
		buffer, err = NewBufferedReader(raw, buffering)
	default:
		err = runtime.Errorf(runtime.ValueError, "unknown mode: '%s'", mode)
	}
	if err != nil {
		return fail(err)
	}
	result = buffer
	if m.Binary {
		return result, nil
	}

	text, err := NewTextIOWrapper(buffer, TextIOOptions{
		Encoding:      deref(opts.Encoding),
		Errors:        deref(opts.Errors),
		Newline:       opts.Newline,
		LineBuffering: lineBuffering,
	})
	if err != nil {
		return fail(err)
	}
	text.mode = mode
	return text, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// WriteString writes s to f. A nil f is an error that keeps any exception
// already pending; otherwise the write happens only when none is pending.
func WriteString(state *exceptions.State, s string, f Stream) error {
	if f == nil {
		if state.Occurred() == nil {
			state.SetString(runtime.SystemError, "null file for PyFile_WriteString")
		}
		return state.Err()
	}
	if state.Occurred() != nil {
		return state.Err()
	}
	var err error
	switch w := f.(type) {
	case *TextIOWrapper:
		_, err = w.Write(s)
	case Writer:
		_, err = w.Write([]byte(s))
	default:
		err = unsupported("write")
	}
	if err != nil {
		state.SetFromError(err)
		return state.Err()
	}
	return nil
}
