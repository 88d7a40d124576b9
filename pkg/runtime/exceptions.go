package runtime

import (
	"errors"
	"fmt"
	"strings"
	"syscall"
)

// ExceptionValue is a raised or raisable exception. It implements error so
// exceptions travel through ordinary Go error returns.
type ExceptionValue struct {
	identity
	Class           *Type
	Args            []Value
	Cause           *ExceptionValue
	Context         *ExceptionValue
	SuppressContext bool
	Attrs           *DictValue
	Traceback       []string
}

func (e *ExceptionValue) Kind() Kind { return KindException }

func (e *ExceptionValue) Error() string {
	msg := e.Message()
	if msg == "" {
		return e.Class.Name
	}
	return e.Class.Name + ": " + msg
}

// Message renders the exception the way str() does.
func (e *ExceptionValue) Message() string {
	if e.Class.IsSubtype(OSError) && len(e.Args) >= 2 {
		if code, ok := e.Args[0].(IntValue); ok {
			msg := fmt.Sprintf("[Errno %d] %s", code.Val, StrOf(e.Args[1]))
			if len(e.Args) >= 3 {
				msg += ": " + ReprOf(e.Args[2])
			}
			return msg
		}
	}
	switch len(e.Args) {
	case 0:
		return ""
	case 1:
		if e.Class.IsSubtype(KeyError) {
			return ReprOf(e.Args[0])
		}
		return StrOf(e.Args[0])
	default:
		return ReprOf(NewTuple(e.Args...))
	}
}

// Is lets errors.Is compare exceptions by class.
func (e *ExceptionValue) Is(target error) bool {
	other, ok := target.(*ExceptionValue)
	if !ok {
		return false
	}
	return e == other || (len(other.Args) == 0 && e.Class.IsSubtype(other.Class))
}

// NewException builds an exception of class t with the given args.
func NewException(t *Type, args ...Value) *ExceptionValue {
	return &ExceptionValue{Class: t, Args: args}
}

// Errorf builds an exception whose single argument is a formatted message.
func Errorf(t *Type, format string, args ...any) *ExceptionValue {
	return NewException(t, Str(fmt.Sprintf(format, args...)))
}

// AsException extracts the exception carried by err.
func AsException(err error) (*ExceptionValue, bool) {
	var exc *ExceptionValue
	if errors.As(err, &exc) {
		return exc, true
	}
	return nil, false
}

// IsException reports whether err carries an exception of class t.
func IsException(err error, t *Type) bool {
	exc, ok := AsException(err)
	return ok && exc.Class.IsSubtype(t)
}

// WrapGoError converts a host error into an exception. Errno values map onto
// the OSError hierarchy.
func WrapGoError(err error) *ExceptionValue {
	if err == nil {
		return nil
	}
	if exc, ok := AsException(err); ok {
		return exc
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return NewOSError(errno, "")
	}
	return Errorf(RuntimeError, "%s", err.Error())
}

// NewOSError builds the OSError subclass that matches errno.
func NewOSError(errno syscall.Errno, filename string) *ExceptionValue {
	cls := OSError
	switch errno {
	case syscall.ENOENT:
		cls = FileNotFoundError
	case syscall.EEXIST:
		cls = FileExistsError
	case syscall.EISDIR:
		cls = IsADirectoryError
	case syscall.EACCES, syscall.EPERM:
		cls = PermissionError
	case syscall.EAGAIN:
		cls = BlockingIOError
	}
	args := []Value{Int(int64(errno)), Str(errnoText(errno))}
	if filename != "" {
		args = append(args, Str(filename))
	}
	return NewException(cls, args...)
}

func errnoText(errno syscall.Errno) string {
	text := errno.Error()
	if text == "" {
		return text
	}
	return strings.ToUpper(text[:1]) + text[1:]
}

// Exception hierarchy.
var (
	BaseException      *Type
	SystemExit         *Type
	KeyboardInterrupt  *Type
	GeneratorExit      *Type
	Exception          *Type
	StopIteration      *Type
	ArithmeticError    *Type
	OverflowError      *Type
	ZeroDivisionError  *Type
	FloatingPointError *Type
	AssertionError     *Type
	AttributeError     *Type
	LookupError        *Type
	KeyError           *Type
	IndexError         *Type
	NameError          *Type
	RuntimeError       *Type
	NotImplementedErr  *Type
	RecursionError     *Type
	SystemError        *Type
	TypeError          *Type
	ValueError         *Type
	UnicodeError       *Type
	UnicodeDecodeError *Type
	UnicodeEncodeError *Type
	MemoryError        *Type
	ImportError        *Type
	OSError            *Type
	FileNotFoundError  *Type
	FileExistsError    *Type
	IsADirectoryError  *Type
	PermissionError    *Type
	BlockingIOError    *Type
	UnsupportedOp      *Type

	Warning                   *Type
	UserWarning               *Type
	DeprecationWarning        *Type
	PendingDeprecationWarning *Type
	SyntaxWarning             *Type
	RuntimeWarning            *Type
	FutureWarning             *Type
	ImportWarning             *Type
	UnicodeWarning            *Type
	BytesWarning              *Type
	ResourceWarning           *Type
)

func allocException(t *Type, args []Value, kwargs *DictValue) (Value, error) {
	return &ExceptionValue{Class: t, Args: append([]Value(nil), args...)}, nil
}

func initExceptions() {
	exc := func(name string, bases ...*Type) *Type {
		return newBuiltinType(name, nil, bases...)
	}
	BaseException = newBuiltinType("BaseException", allocException, ObjectType)
	SystemExit = exc("SystemExit", BaseException)
	KeyboardInterrupt = exc("KeyboardInterrupt", BaseException)
	GeneratorExit = exc("GeneratorExit", BaseException)
	Exception = exc("Exception", BaseException)
	StopIteration = exc("StopIteration", Exception)
	ArithmeticError = exc("ArithmeticError", Exception)
	OverflowError = exc("OverflowError", ArithmeticError)
	ZeroDivisionError = exc("ZeroDivisionError", ArithmeticError)
	FloatingPointError = exc("FloatingPointError", ArithmeticError)
	AssertionError = exc("AssertionError", Exception)
	AttributeError = exc("AttributeError", Exception)
	LookupError = exc("LookupError", Exception)
	KeyError = exc("KeyError", LookupError)
	IndexError = exc("IndexError", LookupError)
	NameError = exc("NameError", Exception)
	RuntimeError = exc("RuntimeError", Exception)
	NotImplementedErr = exc("NotImplementedError", RuntimeError)
	RecursionError = exc("RecursionError", RuntimeError)
	SystemError = exc("SystemError", Exception)
	TypeError = exc("TypeError", Exception)
	ValueError = exc("ValueError", Exception)
	UnicodeError = exc("UnicodeError", ValueError)
	UnicodeDecodeError = exc("UnicodeDecodeError", UnicodeError)
	UnicodeEncodeError = exc("UnicodeEncodeError", UnicodeError)
	MemoryError = exc("MemoryError", Exception)
	ImportError = exc("ImportError", Exception)
	OSError = exc("OSError", Exception)
	FileNotFoundError = exc("FileNotFoundError", OSError)
	FileExistsError = exc("FileExistsError", OSError)
	IsADirectoryError = exc("IsADirectoryError", OSError)
	PermissionError = exc("PermissionError", OSError)
	BlockingIOError = exc("BlockingIOError", OSError)
	UnsupportedOp = exc("UnsupportedOperation", OSError, ValueError)

	Warning = exc("Warning", Exception)
	UserWarning = exc("UserWarning", Warning)
	DeprecationWarning = exc("DeprecationWarning", Warning)
	PendingDeprecationWarning = exc("PendingDeprecationWarning", Warning)
	SyntaxWarning = exc("SyntaxWarning", Warning)
	RuntimeWarning = exc("RuntimeWarning", Warning)
	FutureWarning = exc("FutureWarning", Warning)
	ImportWarning = exc("ImportWarning", Warning)
	UnicodeWarning = exc("UnicodeWarning", Warning)
	BytesWarning = exc("BytesWarning", Warning)
	ResourceWarning = exc("ResourceWarning", Warning)

	BaseException.Dict.defineStr("__init__", NewFunction("__init__", func(ctx *NativeCallContext, args []Value) (Value, error) {
		if e, ok := args[0].(*ExceptionValue); ok {
			e.Args = append([]Value(nil), args[1:]...)
		}
		return None, nil
	}))
	BaseException.Dict.defineStr("__str__", NewFunction("__str__", func(ctx *NativeCallContext, args []Value) (Value, error) {
		if e, ok := args[0].(*ExceptionValue); ok {
			return Str(e.Message()), nil
		}
		return Str(""), nil
	}))
}

// BuiltinExceptions lists every exception class by name.
func BuiltinExceptions() map[string]*Type {
	out := make(map[string]*Type)
	for _, t := range []*Type{
		BaseException, SystemExit, KeyboardInterrupt, GeneratorExit, Exception, StopIteration,
		ArithmeticError, OverflowError, ZeroDivisionError, FloatingPointError, AssertionError,
		AttributeError, LookupError, KeyError, IndexError, NameError, RuntimeError, NotImplementedErr,
		RecursionError, SystemError, TypeError, ValueError, UnicodeError, UnicodeDecodeError,
		UnicodeEncodeError, MemoryError, ImportError, OSError, FileNotFoundError, FileExistsError,
		IsADirectoryError, PermissionError, BlockingIOError, Warning, UserWarning,
		DeprecationWarning, PendingDeprecationWarning, SyntaxWarning, RuntimeWarning, FutureWarning,
		ImportWarning, UnicodeWarning, BytesWarning, ResourceWarning,
	} {
		out[t.Name] = t
	}
	out["IOError"] = OSError
	out["EnvironmentError"] = OSError
	return out
}
