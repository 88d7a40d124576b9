package pyio

import (
	"fmt"

	"github.com/danielsun1106/graalpython/pkg/exceptions"
	"github.com/danielsun1106/graalpython/pkg/runtime"
)

const bigChunk = 512 * 1024

// FileIO is the raw layer: unbuffered reads and writes straight to a
// descriptor it may or may not own.
type FileIO struct {
	os       OS
	fd       int
	name     string
	mode     rawMode
	closefd  bool
	seekable int
	blksize  int64
}

// FileIOOptions tune NewFileIO.
type FileIOOptions struct {
	OS OS
	// KeepFD leaves an adopted descriptor open on Close.
	KeepFD bool
	// Opener, when set, replaces the OS open call.
	Opener func(path string, flags int) (int, error)
}

// NewFileIO opens path with a raw mode such as "r", "wb" or "a+".
func NewFileIO(path string, mode string, opts FileIOOptions) (*FileIO, error) {
	rm, err := decodeRawMode(mode)
	if err != nil {
		return nil, err
	}
	if opts.KeepFD {
		return nil, runtime.Errorf(runtime.ValueError, "Cannot use closefd=False with file name")
	}
	f := &FileIO{os: opts.OS, fd: -1, name: path, mode: rm, closefd: true, seekable: -1}
	if f.os == nil {
		f.os = DefaultOS
	}
	var fd int
	if opts.Opener != nil {
		fd, err = opts.Opener(path, rm.flags)
		if err == nil && fd < 0 {
			return nil, runtime.Errorf(runtime.ValueError, "opener returned %d", fd)
		}
	} else {
		fd, err = f.os.Open(path, rm.flags, 0o666)
	}
	if err != nil {
		return nil, osError(err, path)
	}
	f.fd = fd
	if err := f.finishOpen(); err != nil {
		f.os.Close(fd)
		f.fd = -1
		return nil, err
	}
	return f, nil
}

// NewFileIOFromFD adopts an existing descriptor.
func NewFileIOFromFD(fd int, mode string, opts FileIOOptions) (*FileIO, error) {
	if fd < 0 {
		return nil, runtime.Errorf(runtime.ValueError, "negative file descriptor")
	}
	rm, err := decodeRawMode(mode)
	if err != nil {
		return nil, err
	}
	f := &FileIO{os: opts.OS, fd: fd, mode: rm, closefd: !opts.KeepFD, seekable: -1}
	if f.os == nil {
		f.os = DefaultOS
	}
	if err := f.finishOpen(); err != nil {
		f.fd = -1
		return nil, err
	}
	return f, nil
}

func (f *FileIO) finishOpen() error {
	st, err := f.os.Fstat(f.fd)
	if err != nil {
		return osError(err, f.name)
	}
	if st.IsDir {
		return runtime.NewOSError(eisdir, f.name)
	}
	f.blksize = DefaultBufferSize
	if st.BlkSize > 1 {
		f.blksize = st.BlkSize
	}
	if f.mode.appending {
		if _, err := f.os.Lseek(f.fd, 0, SeekEnd); err != nil {
			return osError(err, f.name)
		}
	}
	return nil
}

func (f *FileIO) Name() string { return f.name }

// Mode renders the mode the descriptor was opened with, e.g. "rb+".
func (f *FileIO) Mode() string { return f.mode.String() }

func (f *FileIO) CloseFD() bool { return f.closefd }

func (f *FileIO) BlkSize() int64 { return f.blksize }

func (f *FileIO) Closed() bool { return f.fd < 0 }

func (f *FileIO) Readable() bool { return !f.Closed() && f.mode.readable }

func (f *FileIO) Writable() bool { return !f.Closed() && f.mode.writable }

// Seekable probes the descriptor once and caches the answer.
func (f *FileIO) Seekable() bool {
	if f.Closed() {
		return false
	}
	if f.seekable < 0 {
		if _, err := f.os.Lseek(f.fd, 0, SeekCur); err != nil {
			f.seekable = 0
		} else {
			f.seekable = 1
		}
	}
	return f.seekable == 1
}

func (f *FileIO) checkReadable() error {
	if f.Closed() {
		return errClosed()
	}
	if !f.mode.readable {
		return unsupported("File not open for reading")
	}
	return nil
}

func (f *FileIO) checkWritable() error {
	if f.Closed() {
		return errClosed()
	}
	if !f.mode.writable {
		return unsupported("File not open for writing")
	}
	return nil
}

// Fileno returns the descriptor.
func (f *FileIO) Fileno() (int, error) {
	if f.Closed() {
		return -1, errClosed()
	}
	return f.fd, nil
}

// Isatty reports whether the descriptor is a terminal.
func (f *FileIO) Isatty() (bool, error) {
	if f.Closed() {
		return false, errClosed()
	}
	return f.os.Isatty(f.fd), nil
}

// Read performs at most one read call; n < 0 reads to EOF.
func (f *FileIO) Read(n int) ([]byte, error) {
	if err := f.checkReadable(); err != nil {
		return nil, err
	}
	if n < 0 {
		return f.ReadAll()
	}
	buf := make([]byte, n)
	got, err := f.os.Read(f.fd, buf)
	if err != nil {
		return nil, osError(err, f.name)
	}
	return buf[:got], nil
}

// ReadInto fills p with at most one read call.
func (f *FileIO) ReadInto(p []byte) (int, error) {
	if err := f.checkReadable(); err != nil {
		return 0, err
	}
	n, err := f.os.Read(f.fd, p)
	if err != nil {
		return 0, osError(err, f.name)
	}
	return n, nil
}

// ReadAll reads until a read returns nothing.
func (f *FileIO) ReadAll() ([]byte, error) {
	if err := f.checkReadable(); err != nil {
		return nil, err
	}
	var out []byte
	chunk := make([]byte, bigChunk)
	for {
		n, err := f.os.Read(f.fd, chunk)
		if err != nil {
			return out, osError(err, f.name)
		}
		if n == 0 {
			return out, nil
		}
		out = append(out, chunk[:n]...)
	}
}

func (f *FileIO) Write(p []byte) (int, error) {
	if err := f.checkWritable(); err != nil {
		return 0, err
	}
	n, err := f.os.Write(f.fd, p)
	if err != nil {
		return n, osError(err, f.name)
	}
	return n, nil
}

func (f *FileIO) Seek(offset int64, whence int) (int64, error) {
	if f.Closed() {
		return 0, errClosed()
	}
	pos, err := f.os.Lseek(f.fd, offset, whence)
	if err != nil {
		return 0, osError(err, f.name)
	}
	return pos, nil
}

func (f *FileIO) Tell() (int64, error) { return f.Seek(0, SeekCur) }

// Truncate resizes the file; size < 0 means the current position.
func (f *FileIO) Truncate(size int64) (int64, error) {
	if err := f.checkWritable(); err != nil {
		return 0, err
	}
	if size < 0 {
		pos, err := f.Tell()
		if err != nil {
			return 0, err
		}
		size = pos
	}
	if err := f.os.Ftruncate(f.fd, size); err != nil {
		return 0, osError(err, f.name)
	}
	return size, nil
}

func (f *FileIO) Flush() error {
	if f.Closed() {
		return errClosed()
	}
	return nil
}

// Close releases the descriptor when owned. Repeated calls do nothing.
func (f *FileIO) Close() error {
	if f.Closed() {
		return nil
	}
	fd := f.fd
	f.fd = -1
	if !f.closefd {
		return nil
	}
	if err := f.os.Close(fd); err != nil {
		return osError(err, f.name)
	}
	return nil
}

// Finalize closes a stream that was never closed explicitly, warning with
// ResourceWarning first. Nothing it raises propagates.
func (f *FileIO) Finalize(state *exceptions.State, warnUnclosed bool) {
	if f.Closed() {
		return
	}
	state.RunFinalizer(runtime.NewHostHandle("FileIO", f), func() error {
		if warnUnclosed && f.closefd {
			if err := state.Warn(runtime.ResourceWarning, "unclosed file "+f.String(), 1); err != nil {
				f.Close()
				return err
			}
		}
		return f.Close()
	})
}

func (f *FileIO) String() string {
	if f.Closed() {
		return "<_io.FileIO [closed]>"
	}
	closefd := "False"
	if f.closefd {
		closefd = "True"
	}
	if f.name == "" {
		return fmt.Sprintf("<_io.FileIO fd=%d mode='%s' closefd=%s>", f.fd, f.Mode(), closefd)
	}
	return fmt.Sprintf("<_io.FileIO name=%s mode='%s' closefd=%s>", runtime.ReprOf(runtime.Str(f.name)), f.Mode(), closefd)
}
