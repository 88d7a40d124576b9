package pyio

import (
	"github.com/danielsun1106/graalpython/pkg/runtime"
)

// DefaultBufferSize is the buffer size used when nothing better is known.
const DefaultBufferSize = 8192

// Stream is the surface every layer of the stack shares.
type Stream interface {
	Close() error
	Closed() bool
	Flush() error
	Readable() bool
	Writable() bool
	Seekable() bool
}

// Reader is a stream that can read. Read(n) with n < 0 reads to EOF; an
// empty result means EOF.
type Reader interface {
	Stream
	Read(n int) ([]byte, error)
}

// Writer is a stream that can write.
type Writer interface {
	Stream
	Write(p []byte) (int, error)
}

// Peeker is implemented by streams that can look ahead without consuming.
type Peeker interface {
	Peek(n int) ([]byte, error)
}

// Seeker is implemented by streams with a file position.
type Seeker interface {
	Seek(offset int64, whence int) (int64, error)
	Tell() (int64, error)
}

// Filenoer is implemented by streams backed by a descriptor.
type Filenoer interface {
	Fileno() (int, error)
}

func errClosed() error {
	return runtime.Errorf(runtime.ValueError, "I/O operation on closed file")
}

func unsupported(msg string) error {
	return runtime.Errorf(runtime.UnsupportedOp, "%s", msg)
}

func checkClosed(s Stream) error {
	if s.Closed() {
		return errClosed()
	}
	return nil
}

// ReadLine reads up to and including the next newline, or limit bytes when
// limit >= 0. Sources that can peek are read a run at a time; others are
// read one byte at a time so nothing past the newline is consumed.
func ReadLine(src Reader, limit int) ([]byte, error) {
	peeker, canPeek := src.(Peeker)
	var line []byte
	for limit < 0 || len(line) < limit {
		want := 1
		if canPeek {
			ahead, err := peeker.Peek(1)
			if err != nil {
				return line, err
			}
			if len(ahead) > 0 {
				want = lineRun(ahead, limit, len(line))
			}
		}
		chunk, err := src.Read(want)
		if err != nil {
			return line, err
		}
		if len(chunk) == 0 {
			break
		}
		line = append(line, chunk...)
		if chunk[len(chunk)-1] == '\n' {
			break
		}
	}
	return line, nil
}

// lineRun counts the bytes of ahead that belong to the current line.
func lineRun(ahead []byte, limit, have int) int {
	n := 0
	for n < len(ahead) {
		if limit >= 0 && n >= limit-have {
			break
		}
		n++
		if ahead[n-1] == '\n' {
			break
		}
	}
	return n
}

// ReadLines reads lines until EOF, or until their total length exceeds hint
// when hint > 0.
func ReadLines(src Reader, hint int) ([][]byte, error) {
	var lines [][]byte
	total := 0
	for {
		line, err := ReadLine(src, -1)
		if err != nil {
			return lines, err
		}
		if len(line) == 0 {
			return lines, nil
		}
		lines = append(lines, line)
		total += len(line)
		if hint > 0 && total > hint {
			return lines, nil
		}
	}
}

// WriteLines writes each line in order; no separators are added.
func WriteLines(dst Writer, lines [][]byte) error {
	if err := checkClosed(dst); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := dst.Write(line); err != nil {
			return err
		}
	}
	return nil
}

// Lines iterates src line by line as bytes values.
func Lines(src Reader) *runtime.IteratorValue {
	return runtime.NewIteratorValue(func() (runtime.Value, bool, error) {
		if src.Closed() {
			return nil, true, errClosed()
		}
		line, err := ReadLine(src, -1)
		if err != nil {
			return nil, true, err
		}
		if len(line) == 0 {
			return nil, true, nil
		}
		return runtime.BytesValue{Val: line}, false, nil
	}, nil)
}

// ReadLineObject runs the readline algorithm over an arbitrary object with
// read() and optionally peek() methods.
func ReadLineObject(obj runtime.Value, limit int) (runtime.BytesValue, error) {
	canPeek, err := runtime.HasAttr(obj, "peek")
	if err != nil {
		return runtime.BytesValue{}, err
	}
	var line []byte
	for limit < 0 || len(line) < limit {
		want := 1
		if canPeek {
			v, err := runtime.CallMethod(obj, "peek", runtime.Int(1))
			if err != nil {
				return runtime.BytesValue{}, err
			}
			ahead, ok := v.(runtime.BytesValue)
			if !ok {
				return runtime.BytesValue{}, runtime.Errorf(runtime.OSError,
					"peek() should have returned a bytes object, not '%s'", runtime.TypeOf(v).Name)
			}
			if len(ahead.Val) > 0 {
				want = lineRun(ahead.Val, limit, len(line))
			}
		}
		v, err := runtime.CallMethod(obj, "read", runtime.Int(int64(want)))
		if err != nil {
			return runtime.BytesValue{}, err
		}
		chunk, ok := v.(runtime.BytesValue)
		if !ok {
			return runtime.BytesValue{}, runtime.Errorf(runtime.OSError,
				"read() should have returned a bytes object, not '%s'", runtime.TypeOf(v).Name)
		}
		if len(chunk.Val) == 0 {
			break
		}
		line = append(line, chunk.Val...)
		if chunk.Val[len(chunk.Val)-1] == '\n' {
			break
		}
	}
	return runtime.BytesValue{Val: line}, nil
}

// With runs fn with s and closes s on every exit path. A close error is
// reported only when fn succeeded.
func With[S Stream](s S, fn func(S) error) (err error) {
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}
