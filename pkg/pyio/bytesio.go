package pyio

import (
	"bytes"

	"github.com/danielsun1106/graalpython/pkg/runtime"
)

// BytesIO is an in-memory binary stream.
type BytesIO struct {
	buf    []byte
	pos    int
	closed bool
}

// NewBytesIO creates a stream positioned at the start of initial.
func NewBytesIO(initial []byte) *BytesIO {
	return &BytesIO{buf: append([]byte(nil), initial...)}
}

func (b *BytesIO) Closed() bool   { return b.closed }
func (b *BytesIO) Readable() bool { return !b.closed }
func (b *BytesIO) Writable() bool { return !b.closed }
func (b *BytesIO) Seekable() bool { return !b.closed }

func (b *BytesIO) Flush() error { return checkClosed(b) }

func (b *BytesIO) Close() error {
	b.closed = true
	b.buf = nil
	return nil
}

// GetValue returns a copy of the whole buffer.
func (b *BytesIO) GetValue() ([]byte, error) {
	if err := checkClosed(b); err != nil {
		return nil, err
	}
	return append([]byte(nil), b.buf...), nil
}

func (b *BytesIO) Read(n int) ([]byte, error) {
	if err := checkClosed(b); err != nil {
		return nil, err
	}
	if b.pos >= len(b.buf) {
		return []byte{}, nil
	}
	end := len(b.buf)
	if n >= 0 && b.pos+n < end {
		end = b.pos + n
	}
	out := append([]byte(nil), b.buf[b.pos:end]...)
	b.pos = end
	return out, nil
}

func (b *BytesIO) Read1(n int) ([]byte, error) { return b.Read(n) }

// ReadLine scans the buffer directly for the next newline.
func (b *BytesIO) ReadLine(limit int) ([]byte, error) {
	if err := checkClosed(b); err != nil {
		return nil, err
	}
	if b.pos >= len(b.buf) {
		return []byte{}, nil
	}
	rest := b.buf[b.pos:]
	end := len(rest)
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		end = i + 1
	}
	if limit >= 0 && limit < end {
		end = limit
	}
	return b.Read(end)
}

// Write stores p at the current position, zero-filling any gap left by a
// seek past the end.
func (b *BytesIO) Write(p []byte) (int, error) {
	if err := checkClosed(b); err != nil {
		return 0, err
	}
	if gap := b.pos - len(b.buf); gap > 0 {
		b.buf = append(b.buf, make([]byte, gap)...)
	}
	end := b.pos + len(p)
	if end > len(b.buf) {
		b.buf = append(b.buf[:b.pos], p...)
	} else {
		copy(b.buf[b.pos:], p)
	}
	b.pos = end
	return len(p), nil
}

func (b *BytesIO) Seek(offset int64, whence int) (int64, error) {
	if err := checkClosed(b); err != nil {
		return 0, err
	}
	var base int64
	switch whence {
	case SeekSet:
		if offset < 0 {
			return 0, runtime.Errorf(runtime.ValueError, "negative seek value %d", offset)
		}
	case SeekCur:
		base = int64(b.pos)
	case SeekEnd:
		base = int64(len(b.buf))
	default:
		return 0, runtime.Errorf(runtime.ValueError, "invalid whence (%d, should be 0, 1 or 2)", whence)
	}
	pos := base + offset
	if pos < 0 {
		pos = 0
	}
	b.pos = int(pos)
	return pos, nil
}

func (b *BytesIO) Tell() (int64, error) {
	if err := checkClosed(b); err != nil {
		return 0, err
	}
	return int64(b.pos), nil
}

// Truncate cuts the buffer at size (the current position when negative).
// The position does not move.
func (b *BytesIO) Truncate(size int64) (int64, error) {
	if err := checkClosed(b); err != nil {
		return 0, err
	}
	if size < 0 {
		size = int64(b.pos)
	}
	if size < int64(len(b.buf)) {
		b.buf = b.buf[:size]
	}
	return size, nil
}
