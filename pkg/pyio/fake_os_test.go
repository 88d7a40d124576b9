package pyio

import (
	"syscall"
)

type fakeFile struct {
	data  []byte
	isDir bool
}

type fakeHandle struct {
	file  *fakeFile
	pos   int64
	flags int
}

// fakeOS is an in-memory descriptor table.
type fakeOS struct {
	files   map[string]*fakeFile
	handles map[int]*fakeHandle
	next    int
	opens   int
	closes  map[int]int
	reads   int
	tty     bool
	noSeek  bool
}

func newFakeOS() *fakeOS {
	return &fakeOS{
		files:   map[string]*fakeFile{},
		handles: map[int]*fakeHandle{},
		closes:  map[int]int{},
		next:    3,
	}
}

func (f *fakeOS) put(name, content string) {
	f.files[name] = &fakeFile{data: []byte(content)}
}

func (f *fakeOS) Open(path string, flags int, perm uint32) (int, error) {
	file, ok := f.files[path]
	switch {
	case ok && flags&OCreat != 0 && flags&OExcl != 0:
		return -1, syscall.EEXIST
	case !ok && flags&OCreat == 0:
		return -1, syscall.ENOENT
	case !ok:
		file = &fakeFile{}
		f.files[path] = file
	}
	if flags&OTrunc != 0 {
		file.data = nil
	}
	fd := f.next
	f.next++
	f.opens++
	f.handles[fd] = &fakeHandle{file: file, flags: flags}
	return fd, nil
}

func (f *fakeOS) handle(fd int) (*fakeHandle, error) {
	h, ok := f.handles[fd]
	if !ok {
		return nil, syscall.EBADF
	}
	return h, nil
}

func (f *fakeOS) Read(fd int, p []byte) (int, error) {
	h, err := f.handle(fd)
	if err != nil {
		return 0, err
	}
	f.reads++
	if h.pos >= int64(len(h.file.data)) {
		return 0, nil
	}
	n := copy(p, h.file.data[h.pos:])
	h.pos += int64(n)
	return n, nil
}

func (f *fakeOS) Write(fd int, p []byte) (int, error) {
	h, err := f.handle(fd)
	if err != nil {
		return 0, err
	}
	if h.flags&OAppend != 0 {
		h.pos = int64(len(h.file.data))
	}
	end := h.pos + int64(len(p))
	if end > int64(len(h.file.data)) {
		grown := make([]byte, end)
		copy(grown, h.file.data)
		h.file.data = grown
	}
	copy(h.file.data[h.pos:], p)
	h.pos = end
	return len(p), nil
}

func (f *fakeOS) Lseek(fd int, offset int64, whence int) (int64, error) {
	h, err := f.handle(fd)
	if err != nil {
		return 0, err
	}
	if f.noSeek {
		return 0, syscall.ESPIPE
	}
	switch whence {
	case SeekCur:
		offset += h.pos
	case SeekEnd:
		offset += int64(len(h.file.data))
	}
	if offset < 0 {
		return 0, syscall.EINVAL
	}
	h.pos = offset
	return offset, nil
}

func (f *fakeOS) Fstat(fd int) (Stat, error) {
	h, err := f.handle(fd)
	if err != nil {
		return Stat{}, err
	}
	return Stat{Size: int64(len(h.file.data)), IsDir: h.file.isDir, BlkSize: 4096}, nil
}

func (f *fakeOS) Ftruncate(fd int, size int64) error {
	h, err := f.handle(fd)
	if err != nil {
		return err
	}
	if size < int64(len(h.file.data)) {
		h.file.data = h.file.data[:size]
	}
	return nil
}

func (f *fakeOS) Close(fd int) error {
	if _, err := f.handle(fd); err != nil {
		return err
	}
	delete(f.handles, fd)
	f.closes[fd]++
	return nil
}

func (f *fakeOS) Isatty(fd int) bool { return f.tty }
