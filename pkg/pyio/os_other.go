//go:build !unix

package pyio

import (
	"io"
	"os"
	"sync"
	"syscall"

	"golang.org/x/term"
)

// fileTable hands out small integer descriptors for *os.File values on
// platforms without a unix descriptor API.
type fileTable struct {
	mu    sync.Mutex
	files map[int]*os.File
	next  int
}

func hostOS() OS {
	return &fileTable{
		files: map[int]*os.File{0: os.Stdin, 1: os.Stdout, 2: os.Stderr},
		next:  3,
	}
}

func (t *fileTable) get(fd int) (*os.File, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	f, ok := t.files[fd]
	if !ok {
		return nil, syscall.EBADF
	}
	return f, nil
}

func (t *fileTable) Open(path string, flags int, perm uint32) (int, error) {
	f, err := os.OpenFile(path, flags, os.FileMode(perm))
	if err != nil {
		return -1, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fd := t.next
	t.next++
	t.files[fd] = f
	return fd, nil
}

func (t *fileTable) Read(fd int, p []byte) (int, error) {
	f, err := t.get(fd)
	if err != nil {
		return 0, err
	}
	n, err := f.Read(p)
	if err == io.EOF {
		err = nil
	}
	return n, err
}

func (t *fileTable) Write(fd int, p []byte) (int, error) {
	f, err := t.get(fd)
	if err != nil {
		return 0, err
	}
	return f.Write(p)
}

func (t *fileTable) Lseek(fd int, offset int64, whence int) (int64, error) {
	f, err := t.get(fd)
	if err != nil {
		return 0, err
	}
	return f.Seek(offset, whence)
}

func (t *fileTable) Fstat(fd int) (Stat, error) {
	f, err := t.get(fd)
	if err != nil {
		return Stat{}, err
	}
	info, err := f.Stat()
	if err != nil {
		return Stat{}, err
	}
	return Stat{Size: info.Size(), IsDir: info.IsDir()}, nil
}

func (t *fileTable) Ftruncate(fd int, size int64) error {
	f, err := t.get(fd)
	if err != nil {
		return err
	}
	return f.Truncate(size)
}

func (t *fileTable) Close(fd int) error {
	t.mu.Lock()
	f, ok := t.files[fd]
	delete(t.files, fd)
	t.mu.Unlock()
	if !ok {
		return syscall.EBADF
	}
	return f.Close()
}

func (t *fileTable) Isatty(fd int) bool {
	f, err := t.get(fd)
	if err != nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
