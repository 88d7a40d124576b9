package exceptions

import (
	"fmt"
	"strings"

	"github.com/danielsun1106/graalpython/pkg/runtime"
)

const (
	causeHeader   = "\nThe above exception was the direct cause of the following exception:\n\n"
	contextHeader = "\nDuring handling of the above exception, another exception occurred:\n\n"
)

// FormatException renders exc the way the interpreter prints an uncaught
// exception: the cause or context chain first, then exc itself.
func FormatException(exc *runtime.ExceptionValue) string {
	var b strings.Builder
	writeChain(&b, exc, map[*runtime.ExceptionValue]bool{})
	return b.String()
}

func writeChain(b *strings.Builder, exc *runtime.ExceptionValue, seen map[*runtime.ExceptionValue]bool) {
	seen[exc] = true
	switch {
	case exc.Cause != nil && !seen[exc.Cause]:
		writeChain(b, exc.Cause, seen)
		b.WriteString(causeHeader)
	case exc.Context != nil && !exc.SuppressContext && !seen[exc.Context]:
		writeChain(b, exc.Context, seen)
		b.WriteString(contextHeader)
	}
	if len(exc.Traceback) > 0 {
		b.WriteString("Traceback (most recent call last):\n")
		for _, line := range exc.Traceback {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	b.WriteString(exc.Error())
	b.WriteByte('\n')
}

// Severity distinguishes errors from warnings in diagnostics.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Note is a secondary line attached to a diagnostic.
type Note struct {
	Message  string
	Location string
}

// Diagnostic is a one-line report with optional notes, used for warnings and
// for exceptions that are logged rather than raised.
type Diagnostic struct {
	Severity Severity
	Message  string
	Location string
	Notes    []Note
}

// Describe renders a diagnostic as "runtime: <loc> <message>" followed by
// one "note:" line per note.
func (d Diagnostic) Describe() string {
	prefix := "runtime: "
	if d.Severity == SeverityWarning {
		prefix = "warning: runtime: "
	}
	message := strings.TrimSpace(d.Message)
	var b strings.Builder
	if d.Location != "" {
		fmt.Fprintf(&b, "%s%s %s", prefix, d.Location, message)
	} else {
		fmt.Fprintf(&b, "%s%s", prefix, message)
	}
	for _, note := range d.Notes {
		if note.Location != "" {
			fmt.Fprintf(&b, "\nnote: %s %s", note.Location, note.Message)
		} else {
			fmt.Fprintf(&b, "\nnote: %s", note.Message)
		}
	}
	return b.String()
}

// DescribeException builds a diagnostic for exc. Each link of its chain
// becomes a note.
func DescribeException(exc *runtime.ExceptionValue) Diagnostic {
	diag := Diagnostic{Message: exc.Error()}
	if len(exc.Traceback) > 0 {
		diag.Location = strings.TrimSpace(exc.Traceback[len(exc.Traceback)-1])
	}
	seen := map[*runtime.ExceptionValue]bool{exc: true}
	for link := next(exc); link != nil && !seen[link]; link = next(link) {
		seen[link] = true
		diag.Notes = append(diag.Notes, Note{Message: "while handling " + link.Error()})
	}
	return diag
}

func next(exc *runtime.ExceptionValue) *runtime.ExceptionValue {
	if exc.Cause != nil {
		return exc.Cause
	}
	if exc.SuppressContext {
		return nil
	}
	return exc.Context
}
