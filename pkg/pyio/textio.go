package pyio

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/danielsun1106/graalpython/pkg/runtime"
)

const textChunkSize = 8192

// TextIOOptions configures NewTextIOWrapper. A nil Newline selects universal
// newlines with translation.
type TextIOOptions struct {
	Encoding      string
	Errors        string
	Newline       *string
	LineBuffering bool
}

// TextIOWrapper decodes and encodes text over a binary stream and applies
// newline translation.
type TextIOWrapper struct {
	buffer        Stream
	codec         *codec
	newline       *string
	lineBuffering bool
	mode          string

	decoded string
	pending []byte
	heldCR  bool
	eof     bool
}

// NewTextIOWrapper wraps a binary stream, usually a Buffered.
func NewTextIOWrapper(buffer Stream, opts TextIOOptions) (*TextIOWrapper, error) {
	if opts.Newline != nil {
		if err := checkNewline(*opts.Newline); err != nil {
			return nil, err
		}
	}
	c, err := newCodec(opts.Encoding, opts.Errors)
	if err != nil {
		return nil, err
	}
	return &TextIOWrapper{
		buffer:        buffer,
		codec:         c,
		newline:       opts.Newline,
		lineBuffering: opts.LineBuffering,
	}, nil
}

func (t *TextIOWrapper) Buffer() Stream      { return t.buffer }
func (t *TextIOWrapper) Encoding() string    { return t.codec.name }
func (t *TextIOWrapper) Errors() string      { return t.codec.errors }
func (t *TextIOWrapper) LineBuffering() bool { return t.lineBuffering }
func (t *TextIOWrapper) Mode() string        { return t.mode }
func (t *TextIOWrapper) Closed() bool        { return t.buffer.Closed() }
func (t *TextIOWrapper) Readable() bool      { return t.buffer.Readable() }
func (t *TextIOWrapper) Writable() bool      { return t.buffer.Writable() }
func (t *TextIOWrapper) Seekable() bool      { return t.buffer.Seekable() }

// Name reports the file name of the underlying FileIO, if any.
func (t *TextIOWrapper) Name() string {
	s := t.buffer
	if b, ok := s.(*Buffered); ok {
		s = b.Raw()
	}
	if f, ok := s.(*FileIO); ok {
		return f.Name()
	}
	return ""
}

func (t *TextIOWrapper) translating() bool { return t.newline == nil }

func (t *TextIOWrapper) checkReadable() error {
	if t.Closed() {
		return errClosed()
	}
	if !t.buffer.Readable() {
		return unsupported("not readable")
	}
	if _, ok := t.buffer.(Reader); !ok {
		return unsupported("not readable")
	}
	return nil
}

// readChunk decodes one more chunk into t.decoded.
func (t *TextIOWrapper) readChunk() error {
	var data []byte
	var err error
	if r1, ok := t.buffer.(interface{ Read1(int) ([]byte, error) }); ok {
		data, err = r1.Read1(textChunkSize)
	} else {
		data, err = t.buffer.(Reader).Read(textChunkSize)
	}
	if err != nil {
		return err
	}
	t.eof = len(data) == 0
	text, rest, err := t.codec.decode(append(t.pending, data...), t.eof)
	if err != nil {
		return err
	}
	t.pending = rest
	if t.translating() {
		if t.heldCR {
			text = "\r" + text
			t.heldCR = false
		}
		if !t.eof && strings.HasSuffix(text, "\r") {
			text = text[:len(text)-1]
			t.heldCR = true
		}
		text = strings.ReplaceAll(text, "\r\n", "\n")
		text = strings.ReplaceAll(text, "\r", "\n")
	}
	t.decoded += text
	return nil
}

func (t *TextIOWrapper) takeRunes(n int) string {
	i := 0
	for n > 0 && i < len(t.decoded) {
		_, size := utf8.DecodeRuneInString(t.decoded[i:])
		i += size
		n--
	}
	out := t.decoded[:i]
	t.decoded = t.decoded[i:]
	return out
}

// Read returns up to n characters; n < 0 reads to EOF.
func (t *TextIOWrapper) Read(n int) (string, error) {
	if err := t.checkReadable(); err != nil {
		return "", err
	}
	t.eof = false
	for n < 0 || utf8.RuneCountInString(t.decoded) < n {
		if err := t.readChunk(); err != nil {
			return "", err
		}
		if t.eof {
			break
		}
	}
	if n < 0 {
		out := t.decoded
		t.decoded = ""
		return out, nil
	}
	return t.takeRunes(n), nil
}

// lineEnd finds the end of the first complete line in s, or -1. needMore
// reports a trailing "\r" whose meaning depends on the next character.
func (t *TextIOWrapper) lineEnd(s string) (end int, needMore bool) {
	switch {
	case t.translating() || *t.newline == "\n":
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			return i + 1, false
		}
	case *t.newline == "":
		i := strings.IndexAny(s, "\r\n")
		if i < 0 {
			return -1, false
		}
		if s[i] == '\n' {
			return i + 1, false
		}
		if i+1 < len(s) {
			if s[i+1] == '\n' {
				return i + 2, false
			}
			return i + 1, false
		}
		return i + 1, true
	default:
		nl := *t.newline
		if i := strings.Index(s, nl); i >= 0 {
			return i + len(nl), false
		}
		if nl == "\r\n" && strings.HasSuffix(s, "\r") {
			return -1, true
		}
	}
	return -1, false
}

// ReadLine reads one line, or at most limit characters when limit >= 0.
func (t *TextIOWrapper) ReadLine(limit int) (string, error) {
	if err := t.checkReadable(); err != nil {
		return "", err
	}
	t.eof = false
	for {
		end, needMore := t.lineEnd(t.decoded)
		if needMore && t.eof {
			needMore = false
			if end < 0 {
				end = len(t.decoded)
			}
		}
		if end >= 0 && !needMore {
			line := t.decoded[:end]
			if limit >= 0 && utf8.RuneCountInString(line) > limit {
				return t.takeRunes(limit), nil
			}
			t.decoded = t.decoded[end:]
			return line, nil
		}
		if limit >= 0 && utf8.RuneCountInString(t.decoded) >= limit {
			return t.takeRunes(limit), nil
		}
		if t.eof {
			out := t.decoded
			t.decoded = ""
			return out, nil
		}
		if err := t.readChunk(); err != nil {
			return "", err
		}
	}
}

// Lines iterates the stream line by line as str values.
func (t *TextIOWrapper) Lines() *runtime.IteratorValue {
	return runtime.NewIteratorValue(func() (runtime.Value, bool, error) {
		line, err := t.ReadLine(-1)
		if err != nil {
			return nil, true, err
		}
		if line == "" {
			return nil, true, nil
		}
		return runtime.Str(line), false, nil
	}, nil)
}

// Write encodes s after newline translation and reports the number of
// characters written. With line buffering a newline forces a flush.
func (t *TextIOWrapper) Write(s string) (int, error) {
	if t.Closed() {
		return 0, errClosed()
	}
	w, ok := t.buffer.(Writer)
	if !ok || !t.buffer.Writable() {
		return 0, unsupported("not writable")
	}
	if err := t.dropReadAhead(); err != nil {
		return 0, err
	}
	text := s
	if t.newline != nil && *t.newline != "" && *t.newline != "\n" {
		text = strings.ReplaceAll(text, "\n", *t.newline)
	}
	data, err := t.codec.encode(text)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(data); err != nil {
		return 0, err
	}
	if t.lineBuffering && strings.ContainsAny(s, "\n\r") {
		if err := t.buffer.Flush(); err != nil {
			return 0, err
		}
	}
	return utf8.RuneCountInString(s), nil
}

// dropReadAhead rewinds over decoded but unread text so writes land at the
// logical position.
func (t *TextIOWrapper) dropReadAhead() error {
	if t.decoded == "" && len(t.pending) == 0 && !t.heldCR {
		return nil
	}
	skip := len(t.pending)
	if t.heldCR {
		skip++
	}
	if enc, err := t.codec.encode(t.decoded); err == nil {
		skip += len(enc)
	}
	t.resetDecoder()
	if sk, ok := t.buffer.(Seeker); ok && skip > 0 {
		if _, err := sk.Seek(int64(-skip), SeekCur); err != nil {
			return err
		}
	}
	return nil
}

func (t *TextIOWrapper) resetDecoder() {
	t.decoded, t.pending, t.heldCR, t.eof = "", nil, false, false
	t.codec.reset()
}

// Seek supports the positions Tell returns plus seeking to either end.
func (t *TextIOWrapper) Seek(offset int64, whence int) (int64, error) {
	if t.Closed() {
		return 0, errClosed()
	}
	sk, ok := t.buffer.(Seeker)
	if !ok || !t.buffer.Seekable() {
		return 0, unsupported("underlying stream is not seekable")
	}
	switch whence {
	case SeekCur:
		if offset != 0 {
			return 0, unsupported("can't do nonzero cur-relative seeks")
		}
		return t.Tell()
	case SeekEnd:
		if offset != 0 {
			return 0, unsupported("can't do nonzero end-relative seeks")
		}
	case SeekSet:
		if offset < 0 {
			return 0, runtime.Errorf(runtime.ValueError, "negative seek position %d", offset)
		}
	default:
		return 0, runtime.Errorf(runtime.ValueError, "invalid whence (%d, should be 0, 1 or 2)", whence)
	}
	if err := t.buffer.Flush(); err != nil {
		return 0, err
	}
	t.resetDecoder()
	return sk.Seek(offset, whence)
}

// Tell returns the byte position of the next unread character.
func (t *TextIOWrapper) Tell() (int64, error) {
	if t.Closed() {
		return 0, errClosed()
	}
	sk, ok := t.buffer.(Seeker)
	if !ok || !t.buffer.Seekable() {
		return 0, unsupported("underlying stream is not seekable")
	}
	if err := t.buffer.Flush(); err != nil {
		return 0, err
	}
	pos, err := sk.Tell()
	if err != nil {
		return 0, err
	}
	unread := int64(len(t.pending))
	if t.heldCR {
		unread++
	}
	if enc, err := t.codec.encode(t.decoded); err == nil {
		unread += int64(len(enc))
	}
	return pos - unread, nil
}

func (t *TextIOWrapper) Flush() error {
	if t.Closed() {
		return errClosed()
	}
	return t.buffer.Flush()
}

// Close flushes and closes the binary stream. Repeated calls do nothing.
func (t *TextIOWrapper) Close() error {
	if t.Closed() {
		return nil
	}
	ferr := t.buffer.Flush()
	cerr := t.buffer.Close()
	if ferr != nil {
		return ferr
	}
	return cerr
}

// Detach flushes and returns the binary stream.
func (t *TextIOWrapper) Detach() (Stream, error) {
	if err := t.Flush(); err != nil {
		return nil, err
	}
	b := t.buffer
	t.buffer = detachedStream{}
	return b, nil
}

func (t *TextIOWrapper) String() string {
	var b strings.Builder
	b.WriteString("<_io.TextIOWrapper")
	if name := t.Name(); name != "" {
		fmt.Fprintf(&b, " name=%s", runtime.ReprOf(runtime.Str(name)))
	}
	if t.mode != "" {
		fmt.Fprintf(&b, " mode='%s'", t.mode)
	}
	fmt.Fprintf(&b, " encoding='%s'>", t.codec.name)
	return b.String()
}

// detachedStream stands in for a buffer that has been handed back.
type detachedStream struct{}

func (detachedStream) Close() error   { return nil }
func (detachedStream) Closed() bool   { return false }
func (detachedStream) Readable() bool { return false }
func (detachedStream) Writable() bool { return false }
func (detachedStream) Seekable() bool { return false }
func (detachedStream) Flush() error {
	return runtime.Errorf(runtime.ValueError, "underlying buffer has been detached")
}
