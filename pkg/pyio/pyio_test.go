package pyio

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/danielsun1106/graalpython/pkg/exceptions"
	"github.com/danielsun1106/graalpython/pkg/runtime"
)

func fakeOpts(fake *fakeOS) OpenOptions {
	opts := DefaultOpenOptions()
	opts.OS = fake
	return opts
}

func str(s string) *string { return &s }

func expectException(t *testing.T, err error, cls *runtime.Type, msg string) {
	t.Helper()
	exc, ok := runtime.AsException(err)
	if !ok {
		t.Fatalf("expected %s, got %v", cls.Name, err)
	}
	if !exc.Class.IsSubtype(cls) {
		t.Fatalf("expected %s, got %s", cls.Name, exc.Class.Name)
	}
	if msg != "" && exc.Message() != msg {
		t.Fatalf("unexpected message:\nexpected: %s\ngot: %s", msg, exc.Message())
	}
}

func TestParseModeErrors(t *testing.T) {
	cases := []struct {
		mode string
		opts TextOptions
		msg  string
	}{
		{"rw", TextOptions{}, "must have exactly one of create/read/write/append mode"},
		{"", TextOptions{}, "must have exactly one of create/read/write/append mode"},
		{"rr", TextOptions{}, "invalid mode: 'rr'"},
		{"rq", TextOptions{}, "invalid mode: 'rq'"},
		{"rtb", TextOptions{}, "can't have text and binary mode at once"},
		{"Uw", TextOptions{}, "can't use U and writing mode at once"},
		{"U+", TextOptions{}, "mode U cannot be combined with 'x', 'w', 'a', or '+'"},
		{"rb", TextOptions{Encoding: str("utf-8")}, "binary mode doesn't take an encoding argument"},
		{"rb", TextOptions{Errors: str("strict")}, "binary mode doesn't take an errors argument"},
		{"rb", TextOptions{Newline: str("\n")}, "binary mode doesn't take a newline argument"},
		{"r", TextOptions{Newline: str("x")}, "illegal newline value: 'x'"},
	}
	for _, tc := range cases {
		_, err := ParseMode(tc.mode, tc.opts)
		expectException(t, err, runtime.ValueError, tc.msg)
	}
}

func TestParseModeUniversalImpliesRead(t *testing.T) {
	m, err := ParseMode("U", TextOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Reading || !m.Universal || m.Raw() != "r" {
		t.Fatalf("expected universal read mode, got %+v", m)
	}
	m, err = ParseMode("a+b", TextOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Raw() != "a+" || !m.Binary {
		t.Fatalf("expected raw mode a+, got %q", m.Raw())
	}
}

func TestOpenModeConflictTouchesNothing(t *testing.T) {
	fake := newFakeOS()
	fake.put("data.txt", "x")
	_, err := Open("data.txt", "rw", fakeOpts(fake))
	expectException(t, err, runtime.ValueError, "must have exactly one of create/read/write/append mode")
	if fake.opens != 0 {
		t.Fatalf("expected no descriptor to be opened, got %d", fake.opens)
	}
}

func TestOpenDirectoryClosesDescriptor(t *testing.T) {
	fake := newFakeOS()
	fake.files["dir"] = &fakeFile{isDir: true}
	_, err := Open("dir", "r", fakeOpts(fake))
	expectException(t, err, runtime.IsADirectoryError, "")
	if fake.opens != 1 || len(fake.handles) != 0 {
		t.Fatalf("expected the descriptor to be closed, open handles: %d", len(fake.handles))
	}
}

func TestOpenMissingFile(t *testing.T) {
	fake := newFakeOS()
	_, err := Open("missing.txt", "r", fakeOpts(fake))
	expectException(t, err, runtime.FileNotFoundError, "[Errno 2] No such file or directory: 'missing.txt'")
}

func TestOpenExclusiveExisting(t *testing.T) {
	fake := newFakeOS()
	fake.put("f", "")
	_, err := Open("f", "x", fakeOpts(fake))
	expectException(t, err, runtime.FileExistsError, "")
}

func TestFileIOKeepFDWithName(t *testing.T) {
	fake := newFakeOS()
	fake.put("f", "")
	_, err := NewFileIO("f", "r", FileIOOptions{OS: fake, KeepFD: true})
	expectException(t, err, runtime.ValueError, "Cannot use closefd=False with file name")
	if fake.opens != 0 {
		t.Fatalf("expected no open call, got %d", fake.opens)
	}
}

func TestFileIOOpener(t *testing.T) {
	fake := newFakeOS()
	fake.put("f", "hello")
	var gotFlags int
	f, err := NewFileIO("f", "r", FileIOOptions{OS: fake, Opener: func(path string, flags int) (int, error) {
		gotFlags = flags
		return fake.Open(path, flags, 0)
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer f.Close()
	if gotFlags&(OWrOnly|ORdWr) != 0 {
		t.Fatalf("expected read-only flags, got %#x", gotFlags)
	}
	_, err = NewFileIO("f", "r", FileIOOptions{OS: fake, Opener: func(string, int) (int, error) { return -3, nil }})
	expectException(t, err, runtime.ValueError, "opener returned -3")
}

func TestFileIOModeAndRepr(t *testing.T) {
	fake := newFakeOS()
	fake.put("f", "")
	f, err := NewFileIO("f", "r+", FileIOOptions{OS: fake})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Mode() != "rb+" {
		t.Fatalf("expected mode rb+, got %s", f.Mode())
	}
	if got := f.String(); got != "<_io.FileIO name='f' mode='rb+' closefd=True>" {
		t.Fatalf("unexpected repr: %s", got)
	}
	f.Close()
	if got := f.String(); got != "<_io.FileIO [closed]>" {
		t.Fatalf("unexpected repr: %s", got)
	}
	_, err = f.Read(1)
	expectException(t, err, runtime.ValueError, "I/O operation on closed file")
}

func TestFileIOWriteOnReadOnly(t *testing.T) {
	fake := newFakeOS()
	fake.put("f", "")
	f, err := NewFileIO("f", "r", FileIOOptions{OS: fake})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = f.Write([]byte("x"))
	expectException(t, err, runtime.UnsupportedOp, "File not open for writing")
}

func TestBufferedCloseFlushesAndClosesRawOnce(t *testing.T) {
	fake := newFakeOS()
	s, err := Open("out.bin", "wb", fakeOpts(fake))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := s.(*Buffered)
	if !ok {
		t.Fatalf("expected *Buffered, got %T", s)
	}
	if _, err := b.Write([]byte("abc")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(fake.files["out.bin"].data); got != "" {
		t.Fatalf("expected write to stay buffered, file holds %q", got)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("unexpected second close error: %v", err)
	}
	if got := string(fake.files["out.bin"].data); got != "abc" {
		t.Fatalf("expected flushed data abc, got %q", got)
	}
	if fake.closes[3] != 1 {
		t.Fatalf("expected raw close exactly once, got %d", fake.closes[3])
	}
	if !b.Closed() || !b.Raw().Closed() {
		t.Fatalf("expected buffered and raw streams to report closed")
	}
}

func TestBufferedFlushAtSize(t *testing.T) {
	fake := newFakeOS()
	fake.put("f", "")
	raw, err := NewFileIO("f", "w", FileIOOptions{OS: fake})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewBufferedWriter(raw, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b.Write([]byte("ab"))
	if len(fake.files["f"].data) != 0 {
		t.Fatalf("expected nothing written yet")
	}
	b.Write([]byte("cd"))
	if got := string(fake.files["f"].data); got != "abcd" {
		t.Fatalf("expected abcd after filling the buffer, got %q", got)
	}
	pos, _ := b.Tell()
	if pos != 4 {
		t.Fatalf("expected position 4, got %d", pos)
	}
}

func TestBufferedRejectsBadRaw(t *testing.T) {
	fake := newFakeOS()
	fake.put("f", "")
	raw, _ := NewFileIO("f", "r", FileIOOptions{OS: fake})
	_, err := NewBufferedWriter(raw, 16)
	expectException(t, err, runtime.UnsupportedOp, "File or stream is not writable")
	_, err = NewBufferedReader(raw, 0)
	expectException(t, err, runtime.ValueError, "buffer size must be strictly positive")
	fake.noSeek = true
	raw2, _ := NewFileIO("f", "r+", FileIOOptions{OS: fake})
	_, err = NewBufferedRandom(raw2, 16)
	expectException(t, err, runtime.UnsupportedOp, "File or stream is not seekable")
}

func TestBufferedSeekRequiresSeekableRaw(t *testing.T) {
	fake := newFakeOS()
	fake.put("p", "pipe data")
	fake.noSeek = true
	s, err := Open("p", "rb", fakeOpts(fake))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	b := s.(*Buffered)
	if b.Seekable() {
		t.Fatalf("expected a pipe-like stream to be unseekable")
	}
	_, err = b.Seek(0, SeekSet)
	expectException(t, err, runtime.UnsupportedOp, "File or stream is not seekable")
	_, err = b.Tell()
	expectException(t, err, runtime.UnsupportedOp, "File or stream is not seekable")
	data, err := b.Read(4)
	if err != nil || string(data) != "pipe" {
		t.Fatalf("expected reads to keep working, got %q (%v)", data, err)
	}
}

func TestBufferedRandomWriteAfterRead(t *testing.T) {
	fake := newFakeOS()
	fake.put("f", "0123456789")
	raw, _ := NewFileIO("f", "r+", FileIOOptions{OS: fake})
	b, err := NewBufferedRandom(raw, 64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := b.Read(2)
	if string(got) != "01" {
		t.Fatalf("expected 01, got %q", got)
	}
	b.Write([]byte("ab"))
	b.Flush()
	if data := string(fake.files["f"].data); data != "01ab456789" {
		t.Fatalf("expected write at logical position, got %q", data)
	}
	pos, _ := b.Tell()
	if pos != 4 {
		t.Fatalf("expected position 4, got %d", pos)
	}
}

func TestReadLineUsesPeek(t *testing.T) {
	fake := newFakeOS()
	fake.put("f", "ab\ncd\nef")
	raw, _ := NewFileIO("f", "r", FileIOOptions{OS: fake})
	b, _ := NewBufferedReader(raw, 64)
	first, _ := b.ReadLine(-1)
	second, _ := b.ReadLine(-1)
	if string(first) != "ab\n" || string(second) != "cd\n" {
		t.Fatalf("unexpected lines: %q %q", first, second)
	}
	if fake.reads != 1 {
		t.Fatalf("expected both lines served from one raw read, got %d reads", fake.reads)
	}
	lines := []string{string(first), string(second)}
	for {
		line, err := b.ReadLine(-1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(line) == 0 {
			break
		}
		lines = append(lines, string(line))
	}
	if strings.Join(lines, "|") != "ab\n|cd\n|ef" {
		t.Fatalf("unexpected lines: %q", lines)
	}
}

func TestReadLineByteAtATimeWithoutPeek(t *testing.T) {
	fake := newFakeOS()
	fake.put("f", "ab\ncd")
	raw, _ := NewFileIO("f", "r", FileIOOptions{OS: fake})
	line, err := ReadLine(raw, -1)
	if err != nil || string(line) != "ab\n" {
		t.Fatalf("expected ab\\n, got %q (%v)", line, err)
	}
	if fake.reads != 3 {
		t.Fatalf("expected 3 single-byte reads, got %d", fake.reads)
	}
	rest, _ := raw.Read(-1)
	if string(rest) != "cd" {
		t.Fatalf("expected nothing past the newline consumed, got %q", rest)
	}
}

func TestReadLineLimit(t *testing.T) {
	b := NewBytesIO([]byte("abcdef\n"))
	line, _ := ReadLine(b, 4)
	if string(line) != "abcd" {
		t.Fatalf("expected abcd, got %q", line)
	}
	line, _ = b.ReadLine(-1)
	if string(line) != "ef\n" {
		t.Fatalf("expected ef\\n, got %q", line)
	}
}

func newReaderClass(t *testing.T, read runtime.Value, peek runtime.Value) runtime.Value {
	t.Helper()
	attrs := map[string]runtime.Value{
		"read": runtime.NewFunction("read", func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			return read, nil
		}),
	}
	if peek != nil {
		attrs["peek"] = runtime.NewFunction("peek", func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			return peek, nil
		})
	}
	cls, err := runtime.NewType("Source", nil, attrs)
	if err != nil {
		t.Fatalf("NewType: %v", err)
	}
	obj, err := runtime.Call(cls)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	return obj
}

func TestReadLineObjectTypeErrors(t *testing.T) {
	obj := newReaderClass(t, runtime.Str("x"), nil)
	_, err := ReadLineObject(obj, -1)
	expectException(t, err, runtime.OSError, "read() should have returned a bytes object, not 'str'")

	obj = newReaderClass(t, runtime.BytesValue{Val: []byte("x")}, runtime.Int(1))
	_, err = ReadLineObject(obj, -1)
	expectException(t, err, runtime.OSError, "peek() should have returned a bytes object, not 'int'")
}

func TestReadLineObjectOverStream(t *testing.T) {
	h := NewObject(NewBytesIO([]byte("one\ntwo\n")))
	line, err := ReadLineObject(h, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(line.Val) != "one\n" {
		t.Fatalf("expected one\\n, got %q", line.Val)
	}
}

func TestBytesIOSeekAndWrite(t *testing.T) {
	b := NewBytesIO(nil)
	b.Write([]byte("abc"))
	if _, err := b.Seek(5, SeekSet); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b.Write([]byte("z"))
	v, _ := b.GetValue()
	if !bytes.Equal(v, []byte("abc\x00\x00z")) {
		t.Fatalf("expected zero-filled gap, got %q", v)
	}
	_, err := b.Seek(-1, SeekSet)
	expectException(t, err, runtime.ValueError, "negative seek value -1")
	_, err = b.Seek(0, 7)
	expectException(t, err, runtime.ValueError, "invalid whence (7, should be 0, 1 or 2)")
	b.Close()
	_, err = b.GetValue()
	expectException(t, err, runtime.ValueError, "I/O operation on closed file")
}

func textOver(t *testing.T, data string, opts TextIOOptions) *TextIOWrapper {
	t.Helper()
	w, err := NewTextIOWrapper(NewBytesIO([]byte(data)), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return w
}

func readLines(t *testing.T, w *TextIOWrapper) []string {
	t.Helper()
	var out []string
	for {
		line, err := w.ReadLine(-1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if line == "" {
			return out
		}
		out = append(out, line)
	}
}

func TestTextNewlineModes(t *testing.T) {
	data := "a\r\nb\rc\nd"
	cases := []struct {
		newline *string
		want    string
	}{
		{nil, "a\n|b\n|c\n|d"},
		{str(""), "a\r\n|b\r|c\n|d"},
		{str("\n"), "a\r\n|b\rc\n|d"},
		{str("\r"), "a\r|\nb\r|c\nd"},
		{str("\r\n"), "a\r\n|b\rc\nd"},
	}
	for _, tc := range cases {
		got := strings.Join(readLines(t, textOver(t, data, TextIOOptions{Newline: tc.newline})), "|")
		if got != tc.want {
			t.Fatalf("unexpected lines for newline %q:\nexpected: %q\ngot: %q", deref(tc.newline), tc.want, got)
		}
	}
}

func TestTextWriteTranslatesNewlines(t *testing.T) {
	buf := NewBytesIO(nil)
	w, err := NewTextIOWrapper(buf, TextIOOptions{Newline: str("\r\n")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, err := w.Write("a\nb\n")
	if err != nil || n != 4 {
		t.Fatalf("expected 4 characters written, got %d (%v)", n, err)
	}
	v, _ := buf.GetValue()
	if string(v) != "a\r\nb\r\n" {
		t.Fatalf("expected CRLF output, got %q", v)
	}
}

func TestTextEncodings(t *testing.T) {
	w := textOver(t, "\xe9t\xe9\n", TextIOOptions{Encoding: "latin-1"})
	got, err := w.Read(-1)
	if err != nil || got != "été\n" {
		t.Fatalf("expected été, got %q (%v)", got, err)
	}
	if w.Encoding() != "iso-8859-1" {
		t.Fatalf("expected normalized encoding name, got %s", w.Encoding())
	}

	w = textOver(t, "a\xff", TextIOOptions{Encoding: "ascii"})
	_, err = w.Read(-1)
	expectException(t, err, runtime.UnicodeDecodeError, "'ascii' codec can't decode byte 0xff in position 1: ordinal not in range(128)")

	w = textOver(t, "a\xffb", TextIOOptions{Errors: "replace"})
	got, _ = w.Read(-1)
	if got != "a\ufffdb" {
		t.Fatalf("expected replacement character, got %q", got)
	}

	_, err = NewTextIOWrapper(NewBytesIO(nil), TextIOOptions{Encoding: "no-such-codec"})
	expectException(t, err, runtime.LookupError, "unknown encoding: no-such-codec")
	_, err = NewTextIOWrapper(NewBytesIO(nil), TextIOOptions{Errors: "bogus"})
	expectException(t, err, runtime.LookupError, "unknown error handler name 'bogus'")
}

func TestTextSplitMultibyteAcrossChunks(t *testing.T) {
	c, _ := newCodec("utf-8", "")
	text, rest, err := c.decode([]byte("a\xc3"), false)
	if err != nil || text != "a" || !bytes.Equal(rest, []byte{0xc3}) {
		t.Fatalf("expected incomplete tail held back, got %q %q (%v)", text, rest, err)
	}
	text, _, err = c.decode(append(rest, 0xa9), false)
	if err != nil || text != "é" {
		t.Fatalf("expected é, got %q (%v)", text, err)
	}
}

func TestOpenTextRead(t *testing.T) {
	fake := newFakeOS()
	fake.put("poem.txt", "roses\r\nviolets\n")
	s, err := Open("poem.txt", "r", fakeOpts(fake))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w, ok := s.(*TextIOWrapper)
	if !ok {
		t.Fatalf("expected *TextIOWrapper, got %T", s)
	}
	if got := strings.Join(readLines(t, w), "|"); got != "roses\n|violets\n" {
		t.Fatalf("unexpected lines: %q", got)
	}
	if w.String() != "<_io.TextIOWrapper name='poem.txt' mode='r' encoding='utf-8'>" {
		t.Fatalf("unexpected repr: %s", w.String())
	}
	w.Close()
	if len(fake.handles) != 0 {
		t.Fatalf("expected close to release the descriptor")
	}
}

func TestOpenBufferingRules(t *testing.T) {
	fake := newFakeOS()
	fake.put("f", "")

	opts := fakeOpts(fake)
	opts.Buffering = 0
	s, err := Open("f", "rb", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(*FileIO); !ok {
		t.Fatalf("expected unbuffered binary open to return *FileIO, got %T", s)
	}
	s.Close()

	_, err = Open("f", "r", opts)
	expectException(t, err, runtime.ValueError, "can't have unbuffered text I/O")
	if len(fake.handles) != 0 {
		t.Fatalf("expected the descriptor to be closed after the failure")
	}

	opts.Buffering = -1
	opts.BufferSize = 3
	s, _ = Open("f", "wb", opts)
	s.(*Buffered).Write([]byte("abc"))
	if got := string(fake.files["f"].data); got != "abc" {
		t.Fatalf("expected BufferSize to bound the buffer, got %q", got)
	}
	s.Close()
}

func TestOpenTTYIsLineBuffered(t *testing.T) {
	fake := newFakeOS()
	fake.tty = true
	s, err := Open("tty", "w", fakeOpts(fake))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w := s.(*TextIOWrapper)
	if !w.LineBuffering() {
		t.Fatalf("expected line buffering on a terminal")
	}
	w.Write("partial")
	if len(fake.files["tty"].data) != 0 {
		t.Fatalf("expected partial line to stay buffered")
	}
	w.Write(" line\n")
	if got := string(fake.files["tty"].data); got != "partial line\n" {
		t.Fatalf("expected flush at newline, got %q", got)
	}
}

func TestOpenAppend(t *testing.T) {
	fake := newFakeOS()
	fake.put("log", "one\n")
	s, err := Open("log", "a", fakeOpts(fake))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.(*TextIOWrapper).Write("two\n")
	s.Close()
	if got := string(fake.files["log"].data); got != "one\ntwo\n" {
		t.Fatalf("expected appended data, got %q", got)
	}
}

func TestOpenUniversalModeWarns(t *testing.T) {
	fake := newFakeOS()
	fake.put("f", "")
	var buf bytes.Buffer
	state := exceptions.NewState(exceptions.Options{Stderr: &buf, WarningAction: exceptions.WarnError})
	opts := fakeOpts(fake)
	opts.State = state
	_, err := Open("f", "U", opts)
	expectException(t, err, runtime.DeprecationWarning, "'U' mode is deprecated")
	if fake.opens != 0 {
		t.Fatalf("expected warning-as-error to stop before opening")
	}
}

func TestWriteString(t *testing.T) {
	var buf bytes.Buffer
	state := exceptions.NewState(exceptions.Options{Stderr: &buf})

	err := WriteString(state, "x", nil)
	expectException(t, err, runtime.SystemError, "null file for PyFile_WriteString")
	state.Clear()

	state.SetString(runtime.ValueError, "pending")
	err = WriteString(state, "x", nil)
	expectException(t, err, runtime.ValueError, "pending")
	out := NewBytesIO(nil)
	err = WriteString(state, "x", out)
	expectException(t, err, runtime.ValueError, "pending")
	if v, _ := out.GetValue(); len(v) != 0 {
		t.Fatalf("expected nothing written while an error is pending, got %q", v)
	}
	state.Clear()

	if err := WriteString(state, "hi", out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := out.GetValue(); string(v) != "hi" {
		t.Fatalf("expected hi, got %q", v)
	}
}

func TestWithClosesOnError(t *testing.T) {
	b := NewBytesIO(nil)
	boom := errors.New("boom")
	err := With(b, func(*BytesIO) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected body error, got %v", err)
	}
	if !b.Closed() {
		t.Fatalf("expected stream closed after With")
	}
}

func TestFinalizeWarnsUnclosed(t *testing.T) {
	fake := newFakeOS()
	fake.put("f", "")
	var events []exceptions.UnraisableEvent
	var buf bytes.Buffer
	state := exceptions.NewState(exceptions.Options{
		Stderr:         &buf,
		WarningAction:  exceptions.WarnError,
		UnraisableHook: func(ev exceptions.UnraisableEvent) { events = append(events, ev) },
	})
	f, _ := NewFileIO("f", "r", FileIOOptions{OS: fake})
	f.Finalize(state, true)
	if !f.Closed() {
		t.Fatalf("expected finalizer to close the file")
	}
	if len(events) != 1 || !events[0].Exception.Class.IsSubtype(runtime.ResourceWarning) {
		t.Fatalf("expected one ResourceWarning reported as unraisable, got %v", events)
	}
	if state.Occurred() != nil {
		t.Fatalf("expected nothing left pending")
	}
}

func TestObjectMethods(t *testing.T) {
	h := NewObject(NewBytesIO([]byte("a\nb\n")))
	entered, err := runtime.CallMethod(h, "__enter__")
	if err != nil || entered != runtime.Value(h) {
		t.Fatalf("expected __enter__ to return the stream itself, got %v (%v)", entered, err)
	}
	lines, err := runtime.ToSlice(h)
	if err != nil || len(lines) != 2 {
		t.Fatalf("expected two lines from iteration, got %v (%v)", lines, err)
	}
	_, err = runtime.CallMethod(h, "write", runtime.Str("x"))
	expectException(t, err, runtime.TypeError, "a bytes-like object is required, not 'str'")
	pos, err := runtime.CallMethod(h, "tell")
	if err != nil || pos != runtime.Value(runtime.Int(4)) {
		t.Fatalf("expected position 4, got %v (%v)", pos, err)
	}
	if _, err := runtime.CallMethod(h, "__exit__", runtime.None, runtime.None, runtime.None); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	closed, _ := runtime.GetAttr(h, "closed")
	if closed != runtime.Value(runtime.True) {
		t.Fatalf("expected closed after __exit__, got %v", closed)
	}
	_, err = runtime.GetAttr(h, "nope")
	expectException(t, err, runtime.AttributeError, "'_io.BytesIO' object has no attribute 'nope'")
}
