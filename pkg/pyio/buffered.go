package pyio

import (
	"fmt"

	"github.com/danielsun1106/graalpython/pkg/runtime"
)

// RawIO is what a buffered stream wraps. FileIO is the usual implementation.
type RawIO interface {
	Stream
	Read(n int) ([]byte, error)
	Write(p []byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
	Tell() (int64, error)
	Truncate(size int64) (int64, error)
}

type bufferedKind int

const (
	bufferedReader bufferedKind = iota
	bufferedWriter
	bufferedRandom
)

func (k bufferedKind) String() string {
	switch k {
	case bufferedReader:
		return "BufferedReader"
	case bufferedWriter:
		return "BufferedWriter"
	}
	return "BufferedRandom"
}

// Buffered adds read-ahead and write-behind buffering over a raw stream. It
// owns its buffers; the raw stream is shared with whoever created it but is
// closed when the buffered stream closes.
type Buffered struct {
	raw      RawIO
	kind     bufferedKind
	size     int
	rbuf     []byte
	rpos     int
	wbuf     []byte
	closed   bool
	detached bool
}

// NewBufferedReader wraps a readable raw stream.
func NewBufferedReader(raw RawIO, size int) (*Buffered, error) {
	return newBuffered(raw, size, bufferedReader)
}

// NewBufferedWriter wraps a writable raw stream.
func NewBufferedWriter(raw RawIO, size int) (*Buffered, error) {
	return newBuffered(raw, size, bufferedWriter)
}

// NewBufferedRandom wraps a seekable raw stream that is both readable and
// writable.
func NewBufferedRandom(raw RawIO, size int) (*Buffered, error) {
	return newBuffered(raw, size, bufferedRandom)
}

func newBuffered(raw RawIO, size int, kind bufferedKind) (*Buffered, error) {
	if raw.Closed() {
		return nil, errClosed()
	}
	if kind == bufferedRandom && !raw.Seekable() {
		return nil, errNotSeekable()
	}
	if kind != bufferedWriter && !raw.Readable() {
		return nil, unsupported("File or stream is not readable")
	}
	if kind != bufferedReader && !raw.Writable() {
		return nil, unsupported("File or stream is not writable")
	}
	if size <= 0 {
		return nil, runtime.Errorf(runtime.ValueError, "buffer size must be strictly positive")
	}
	return &Buffered{raw: raw, kind: kind, size: size}, nil
}

func (b *Buffered) canRead() bool  { return b.kind != bufferedWriter }
func (b *Buffered) canWrite() bool { return b.kind != bufferedReader }

// Raw returns the wrapped stream.
func (b *Buffered) Raw() RawIO { return b.raw }

func (b *Buffered) Closed() bool {
	if b.detached {
		return false
	}
	return b.closed || b.raw.Closed()
}

func (b *Buffered) Readable() bool { return b.canRead() && !b.Closed() && b.raw.Readable() }

func (b *Buffered) Writable() bool { return b.canWrite() && !b.Closed() && b.raw.Writable() }

func (b *Buffered) Seekable() bool { return !b.Closed() && b.raw.Seekable() }

func (b *Buffered) check() error {
	if b.detached {
		return runtime.Errorf(runtime.ValueError, "raw stream has been detached")
	}
	if b.Closed() {
		return errClosed()
	}
	return nil
}

func (b *Buffered) checkSeekable() error {
	if err := b.check(); err != nil {
		return err
	}
	if !b.raw.Seekable() {
		return errNotSeekable()
	}
	return nil
}

func errNotSeekable() error { return unsupported("File or stream is not seekable") }

func (b *Buffered) checkRead(op string) error {
	if err := b.check(); err != nil {
		return err
	}
	if !b.canRead() {
		return unsupported(op)
	}
	return nil
}

func (b *Buffered) unread() int { return len(b.rbuf) - b.rpos }

func (b *Buffered) take(n int) []byte {
	if n > b.unread() {
		n = b.unread()
	}
	out := append([]byte(nil), b.rbuf[b.rpos:b.rpos+n]...)
	b.rpos += n
	if b.rpos == len(b.rbuf) {
		b.rbuf, b.rpos = b.rbuf[:0], 0
	}
	return out
}

// fill performs one raw read into the read buffer and reports how many
// bytes arrived.
func (b *Buffered) fill() (int, error) {
	chunk, err := b.raw.Read(b.size)
	if err != nil {
		return 0, err
	}
	if b.rpos > 0 {
		b.rbuf = append(b.rbuf[:0], b.rbuf[b.rpos:]...)
		b.rpos = 0
	}
	b.rbuf = append(b.rbuf, chunk...)
	return len(chunk), nil
}

// prepareRead pushes out pending writes before reading.
func (b *Buffered) prepareRead() error {
	if len(b.wbuf) > 0 {
		return b.flushWrites()
	}
	return nil
}

// Read returns up to n bytes, fewer only at EOF. n < 0 reads to EOF.
func (b *Buffered) Read(n int) ([]byte, error) {
	if err := b.checkRead("read"); err != nil {
		return nil, err
	}
	if err := b.prepareRead(); err != nil {
		return nil, err
	}
	if n < 0 {
		out := b.take(b.unread())
		rest, err := b.raw.Read(-1)
		if err != nil {
			return out, err
		}
		return append(out, rest...), nil
	}
	if b.unread() >= n {
		return b.take(n), nil
	}
	out := b.take(b.unread())
	for len(out) < n {
		want := n - len(out)
		if want >= b.size {
			chunk, err := b.raw.Read(want)
			if err != nil {
				return out, err
			}
			if len(chunk) == 0 {
				break
			}
			out = append(out, chunk...)
			continue
		}
		got, err := b.fill()
		if err != nil {
			return out, err
		}
		if got == 0 {
			break
		}
		out = append(out, b.take(want)...)
	}
	return out, nil
}

// Read1 returns buffered bytes if there are any, else the result of at most
// one raw read.
func (b *Buffered) Read1(n int) ([]byte, error) {
	if err := b.checkRead("read1"); err != nil {
		return nil, err
	}
	if err := b.prepareRead(); err != nil {
		return nil, err
	}
	if n < 0 {
		n = b.size
	}
	if n == 0 {
		return []byte{}, nil
	}
	if b.unread() == 0 {
		if _, err := b.fill(); err != nil {
			return nil, err
		}
	}
	return b.take(n), nil
}

// Peek returns buffered bytes without consuming them, reading once from the
// raw stream when the buffer is empty. The result may be shorter or longer
// than n.
func (b *Buffered) Peek(n int) ([]byte, error) {
	if err := b.checkRead("peek"); err != nil {
		return nil, err
	}
	if err := b.prepareRead(); err != nil {
		return nil, err
	}
	if b.unread() == 0 {
		if _, err := b.fill(); err != nil {
			return nil, err
		}
	}
	return append([]byte(nil), b.rbuf[b.rpos:]...), nil
}

// ReadLine reads one line, peeking so only the line itself is consumed.
func (b *Buffered) ReadLine(limit int) ([]byte, error) {
	if err := b.checkRead("readline"); err != nil {
		return nil, err
	}
	return ReadLine(b, limit)
}

// Write buffers p, flushing once the buffer reaches its size.
func (b *Buffered) Write(p []byte) (int, error) {
	if err := b.check(); err != nil {
		return 0, err
	}
	if !b.canWrite() {
		return 0, unsupported("write")
	}
	if err := b.dropReadAhead(); err != nil {
		return 0, err
	}
	b.wbuf = append(b.wbuf, p...)
	if len(b.wbuf) >= b.size {
		if err := b.flushWrites(); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// dropReadAhead discards unread buffered bytes, moving the raw position back
// over them so the next write lands where the caller expects.
func (b *Buffered) dropReadAhead() error {
	if n := b.unread(); n > 0 {
		if _, err := b.raw.Seek(int64(-n), SeekCur); err != nil {
			return err
		}
	}
	b.rbuf, b.rpos = b.rbuf[:0], 0
	return nil
}

func (b *Buffered) flushWrites() error {
	for len(b.wbuf) > 0 {
		n, err := b.raw.Write(b.wbuf)
		if err != nil {
			return err
		}
		if n <= 0 {
			return runtime.Errorf(runtime.OSError, "raw write() returned %d", n)
		}
		b.wbuf = b.wbuf[n:]
	}
	b.wbuf = nil
	return nil
}

// Flush writes out anything buffered.
func (b *Buffered) Flush() error {
	if b.detached {
		return runtime.Errorf(runtime.ValueError, "raw stream has been detached")
	}
	if b.Closed() {
		return runtime.Errorf(runtime.ValueError, "flush of closed file")
	}
	if err := b.flushWrites(); err != nil {
		return err
	}
	return b.raw.Flush()
}

func (b *Buffered) Seek(offset int64, whence int) (int64, error) {
	if err := b.checkSeekable(); err != nil {
		return 0, err
	}
	if whence < SeekSet || whence > SeekEnd {
		return 0, runtime.Errorf(runtime.ValueError, "whence value %d unsupported", whence)
	}
	if err := b.flushWrites(); err != nil {
		return 0, err
	}
	if whence == SeekCur {
		offset -= int64(b.unread())
	}
	b.rbuf, b.rpos = b.rbuf[:0], 0
	return b.raw.Seek(offset, whence)
}

func (b *Buffered) Tell() (int64, error) {
	if err := b.checkSeekable(); err != nil {
		return 0, err
	}
	pos, err := b.raw.Tell()
	if err != nil {
		return 0, err
	}
	pos = pos - int64(b.unread()) + int64(len(b.wbuf))
	if pos < 0 {
		pos = 0
	}
	return pos, nil
}

// Truncate flushes and resizes; size < 0 means the current position.
func (b *Buffered) Truncate(size int64) (int64, error) {
	if err := b.check(); err != nil {
		return 0, err
	}
	if !b.canWrite() {
		return 0, unsupported("truncate")
	}
	if err := b.flushWrites(); err != nil {
		return 0, err
	}
	if size < 0 {
		pos, err := b.Tell()
		if err != nil {
			return 0, err
		}
		size = pos
	}
	if err := b.dropReadAhead(); err != nil {
		return 0, err
	}
	return b.raw.Truncate(size)
}

// Detach flushes and hands back the raw stream; the buffered stream is
// unusable afterwards.
func (b *Buffered) Detach() (RawIO, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	if err := b.flushWrites(); err != nil {
		return nil, err
	}
	b.detached = true
	return b.raw, nil
}

// Close flushes and then closes the raw stream. Only the first call does
// anything; a flush error is reported after the raw stream is closed.
func (b *Buffered) Close() error {
	if b.detached || b.Closed() {
		return nil
	}
	ferr := b.flushWrites()
	b.closed = true
	cerr := b.raw.Close()
	b.rbuf, b.wbuf = nil, nil
	if ferr != nil {
		return ferr
	}
	return cerr
}

// Fileno delegates to the raw stream.
func (b *Buffered) Fileno() (int, error) {
	if err := b.check(); err != nil {
		return -1, err
	}
	if f, ok := b.raw.(Filenoer); ok {
		return f.Fileno()
	}
	return -1, unsupported("fileno")
}

// Isatty delegates to the raw stream.
func (b *Buffered) Isatty() (bool, error) {
	if err := b.check(); err != nil {
		return false, err
	}
	if f, ok := b.raw.(interface{ Isatty() (bool, error) }); ok {
		return f.Isatty()
	}
	return false, nil
}

func (b *Buffered) String() string {
	if f, ok := b.raw.(*FileIO); ok && f.Name() != "" {
		return fmt.Sprintf("<_io.%s name=%s>", b.kind, runtime.ReprOf(runtime.Str(f.Name())))
	}
	return fmt.Sprintf("<_io.%s>", b.kind)
}
