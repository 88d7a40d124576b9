package interpreter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danielsun1106/graalpython/pkg/config"
	"github.com/danielsun1106/graalpython/pkg/exceptions"
	"github.com/danielsun1106/graalpython/pkg/frame"
	"github.com/danielsun1106/graalpython/pkg/pyio"
	"github.com/danielsun1106/graalpython/pkg/runtime"
	"github.com/danielsun1106/graalpython/pkg/sre"
)

// Options configures New. Zero values fall back to the process streams, the
// host OS and the default configuration.
type Options struct {
	Config         *config.Config
	OS             pyio.OS
	Stdout         io.Writer
	Stderr         io.Writer
	UnraisableHook func(exceptions.UnraisableEvent)
}

// Interpreter owns one runtime state: the builtins scope, the call stack,
// the exception router and the compiled pattern cache.
type Interpreter struct {
	config   *config.Config
	global   *runtime.Environment
	builtins *runtime.Environment
	frames   *frame.Stack
	state    *exceptions.State
	patterns *sre.Cache
	os       pyio.OS
	stdout   io.Writer
	stderr   io.Writer
	open     []pyio.Stream
}

// New returns an interpreter with the builtins installed.
func New(opts Options) (*Interpreter, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	i := &Interpreter{
		config: cfg,
		os:     opts.OS,
		stdout: opts.Stdout,
		stderr: opts.Stderr,
	}
	if i.stdout == nil {
		i.stdout = os.Stdout
	}
	if i.stderr == nil {
		i.stderr = os.Stderr
	}
	logger, err := cfg.Diagnostics.Logger(i.stdout, i.stderr)
	if err != nil {
		return nil, fmt.Errorf("interpreter: %w", err)
	}
	action, err := exceptions.ParseWarningAction(cfg.Warnings.Action)
	if err != nil {
		return nil, fmt.Errorf("interpreter: %w", err)
	}
	engine, err := newEngine(cfg.Regex)
	if err != nil {
		return nil, fmt.Errorf("interpreter: %w", err)
	}

	i.builtins = runtime.NewEnvironment(nil)
	i.global = i.builtins.Extend()
	i.patterns = sre.NewCache(engine, cfg.Regex.CacheSize)
	i.installBuiltins()
	i.frames = frame.NewStack(i.builtins.ToDict())
	i.state = exceptions.NewState(exceptions.Options{
		Logger:         logger,
		Stderr:         i.stderr,
		Frames:         i.frames,
		WarningAction:  action,
		UnraisableHook: opts.UnraisableHook,
	})
	return i, nil
}

func newEngine(cfg config.Regex) (sre.Engine, error) {
	switch cfg.Engine {
	case "regexp2", "":
		return sre.Regexp2Engine{Timeout: cfg.Timeout}, nil
	}
	return nil, fmt.Errorf("unknown regex engine %q", cfg.Engine)
}

func (i *Interpreter) Config() *config.Config { return i.config }

// GlobalEnvironment returns the module scope; lookups fall through to the
// builtins.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment { return i.global }

// Builtins returns the builtins scope.
func (i *Interpreter) Builtins() *runtime.Environment { return i.builtins }

func (i *Interpreter) State() *exceptions.State { return i.state }

func (i *Interpreter) Frames() *frame.Stack { return i.frames }

func (i *Interpreter) Patterns() *sre.Cache { return i.patterns }

// Lookup resolves a name in the global scope.
func (i *Interpreter) Lookup(name string) (runtime.Value, error) {
	return i.global.Get(name)
}

// Call looks up name and calls it with args.
func (i *Interpreter) Call(name string, args ...runtime.Value) (runtime.Value, error) {
	fn, err := i.global.Get(name)
	if err != nil {
		return nil, err
	}
	return runtime.Call(fn, args...)
}

// Run executes body in a top-level frame. An exception escaping body is
// recorded as the last exception and returned.
func (i *Interpreter) Run(filename string, body func(*frame.Frame) error) error {
	_, err := i.frames.Enter(&frame.Code{Filename: filename, Name: "<module>", FirstLine: 1}, nil, nil, func(f *frame.Frame) (runtime.Value, error) {
		return runtime.None, body(f)
	})
	if err != nil {
		i.state.SetFromError(err)
		return i.state.Err()
	}
	return nil
}

// Report prints the pending exception, if any, with its chain and clears it.
func (i *Interpreter) Report() {
	if i.state.Occurred() != nil {
		i.state.PrintEx(true)
	}
}

// Open is open() with the configured defaults: the buffer size, the text
// encoding for text modes and the OS. The stream is tracked so Close can
// finalize it.
func (i *Interpreter) Open(path, mode string, opts pyio.OpenOptions) (pyio.Stream, error) {
	return i.track(pyio.Open(path, mode, i.openDefaults(mode, opts)))
}

func (i *Interpreter) openDefaults(mode string, opts pyio.OpenOptions) pyio.OpenOptions {
	if opts.OS == nil {
		opts.OS = i.os
	}
	if opts.BufferSize == 0 {
		opts.BufferSize = i.config.IO.BufferSize
	}
	if opts.Encoding == nil && i.config.IO.Encoding != "" && !strings.ContainsRune(mode, 'b') {
		enc := i.config.IO.Encoding
		opts.Encoding = &enc
	}
	if opts.State == nil {
		opts.State = i.state
	}
	return opts
}

func (i *Interpreter) track(s pyio.Stream, err error) (pyio.Stream, error) {
	if err != nil {
		return nil, err
	}
	i.open = append(i.open, s)
	return s, nil
}

// Compile returns a cached compiled pattern.
func (i *Interpreter) Compile(pattern string, flags int) (*sre.Pattern, error) {
	return i.patterns.Compile(pattern, flags)
}

// Close finalizes every stream opened through Open that is still open.
// With io.warn_unclosed each one first issues a ResourceWarning. Nothing
// raised here propagates.
func (i *Interpreter) Close() {
	for _, s := range i.open {
		if s.Closed() {
			continue
		}
		stream := s
		obj := pyio.NewObject(stream)
		i.state.RunFinalizer(obj, func() error {
			if i.config.IO.WarnUnclosed {
				if err := i.state.Warn(runtime.ResourceWarning, "unclosed file "+runtime.ReprOf(obj), 1); err != nil {
					stream.Close()
					return err
				}
			}
			return stream.Close()
		})
	}
	i.open = nil
}
