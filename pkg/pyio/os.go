package pyio

import (
	"errors"
	"os"
	"syscall"

	"github.com/danielsun1106/graalpython/pkg/runtime"
)

// Open flags understood by OS implementations.
const (
	ORdOnly = os.O_RDONLY
	OWrOnly = os.O_WRONLY
	ORdWr   = os.O_RDWR
	OCreat  = os.O_CREATE
	OTrunc  = os.O_TRUNC
	OExcl   = os.O_EXCL
	OAppend = os.O_APPEND
)

// Seek whence values.
const (
	SeekSet = 0
	SeekCur = 1
	SeekEnd = 2
)

const eisdir = syscall.EISDIR

// Stat is the subset of fstat results the stack needs.
type Stat struct {
	Size    int64
	IsDir   bool
	BlkSize int64
}

// OS is the file-descriptor boundary every raw stream goes through.
type OS interface {
	Open(path string, flags int, perm uint32) (int, error)
	Read(fd int, p []byte) (int, error)
	Write(fd int, p []byte) (int, error)
	Lseek(fd int, offset int64, whence int) (int64, error)
	Fstat(fd int) (Stat, error)
	Ftruncate(fd int, size int64) error
	Close(fd int) error
	Isatty(fd int) bool
}

// DefaultOS is the host operating system.
var DefaultOS OS = hostOS()

// osError converts a host error into the matching OSError, naming path when
// one is known.
func osError(err error, path string) error {
	if err == nil {
		return nil
	}
	if _, ok := runtime.AsException(err); ok {
		return err
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return runtime.NewOSError(errno, path)
	}
	return runtime.WrapGoError(err)
}
