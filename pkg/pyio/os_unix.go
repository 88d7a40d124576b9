//go:build unix

package pyio

import (
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

type unixOS struct{}

func hostOS() OS { return unixOS{} }

func (unixOS) Open(path string, flags int, perm uint32) (int, error) {
	for {
		fd, err := unix.Open(path, flags|unix.O_CLOEXEC, perm)
		if err == unix.EINTR {
			continue
		}
		return fd, err
	}
}

func (unixOS) Read(fd int, p []byte) (int, error) {
	for {
		n, err := unix.Read(fd, p)
		if err == unix.EINTR {
			continue
		}
		if n < 0 {
			n = 0
		}
		return n, err
	}
}

func (unixOS) Write(fd int, p []byte) (int, error) {
	for {
		n, err := unix.Write(fd, p)
		if err == unix.EINTR {
			continue
		}
		if n < 0 {
			n = 0
		}
		return n, err
	}
}

func (unixOS) Lseek(fd int, offset int64, whence int) (int64, error) {
	return unix.Seek(fd, offset, whence)
}

func (unixOS) Fstat(fd int) (Stat, error) {
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return Stat{}, err
	}
	return Stat{
		Size:    st.Size,
		IsDir:   st.Mode&unix.S_IFMT == unix.S_IFDIR,
		BlkSize: int64(st.Blksize),
	}, nil
}

func (unixOS) Ftruncate(fd int, size int64) error { return unix.Ftruncate(fd, size) }

func (unixOS) Close(fd int) error { return unix.Close(fd) }

func (unixOS) Isatty(fd int) bool { return term.IsTerminal(fd) }
