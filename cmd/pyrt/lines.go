package main

import (
	"github.com/danielsun1106/graalpython/pkg/interpreter"
	"github.com/danielsun1106/graalpython/pkg/pyio"
	"github.com/danielsun1106/graalpython/pkg/runtime"
)

type textFlags struct {
	encoding string
	errors   string
	newline  string
	raw      bool
}

func (tf textFlags) options() pyio.OpenOptions {
	opts := pyio.DefaultOpenOptions()
	if tf.encoding != "" {
		opts.Encoding = &tf.encoding
	}
	if tf.errors != "" {
		opts.Errors = &tf.errors
	}
	if tf.raw {
		nl := tf.newline
		opts.Newline = &nl
	}
	return opts
}

// eachLine opens path in text mode and calls fn for every line, newline
// included, with its 1-based number.
func eachLine(interp *interpreter.Interpreter, path string, tf textFlags, fn func(n int, line string) error) error {
	s, err := interp.Open(path, "r", tf.options())
	if err != nil {
		return err
	}
	text, ok := s.(*pyio.TextIOWrapper)
	if !ok {
		s.Close()
		return runtime.Errorf(runtime.TypeError, "expected a text stream, got %s", runtime.ReprOf(pyio.NewObject(s)))
	}
	return pyio.With(text, func(t *pyio.TextIOWrapper) error {
		for n := 1; ; n++ {
			line, err := t.ReadLine(-1)
			if err != nil {
				return err
			}
			if line == "" {
				return nil
			}
			if err := fn(n, line); err != nil {
				return err
			}
		}
	})
}

func withNewline(s string) string {
	if s == "" || s[len(s)-1] != '\n' {
		return s + "\n"
	}
	return s
}
