package exceptions

import (
	"fmt"

	"github.com/danielsun1106/graalpython/pkg/runtime"
)

// WarningAction selects what Warn does with a warning.
type WarningAction string

const (
	WarnDefault WarningAction = "default" // log once per category, message and location
	WarnAlways  WarningAction = "always"
	WarnOnce    WarningAction = "once" // log once per category and message
	WarnIgnore  WarningAction = "ignore"
	WarnError   WarningAction = "error"
)

// ParseWarningAction validates a configured action name.
func ParseWarningAction(name string) (WarningAction, error) {
	switch a := WarningAction(name); a {
	case WarnDefault, WarnAlways, WarnOnce, WarnIgnore, WarnError:
		return a, nil
	case "":
		return WarnDefault, nil
	}
	return "", fmt.Errorf("invalid warnings action %q", name)
}

type warningKey struct {
	category *runtime.Type
	message  string
	location string
}

// SetWarningAction changes the action for subsequent warnings.
func (s *State) SetWarningAction(action WarningAction) { s.action = action }

// Warn issues a warning of category (RuntimeWarning when nil). stackLevel 1
// attributes it to the running frame, 2 to its caller and so on. With the
// error action the warning is raised instead.
func (s *State) Warn(category *runtime.Type, message string, stackLevel int) error {
	if category == nil {
		category = runtime.RuntimeWarning
	}
	if !category.IsSubtype(runtime.Warning) {
		return runtime.Errorf(runtime.TypeError, "category must be a Warning subclass, not '%s'", category.Name)
	}
	switch s.action {
	case WarnIgnore:
		return nil
	case WarnError:
		return s.Raise(category, runtime.Str(message))
	}
	loc := s.location(stackLevel)
	key := warningKey{category: category, message: message}
	switch s.action {
	case WarnDefault:
		key.location = loc
		fallthrough
	case WarnOnce:
		if s.warned[key] {
			return nil
		}
		s.warned[key] = true
	}
	diag := Diagnostic{
		Severity: SeverityWarning,
		Message:  category.Name + ": " + message,
		Location: loc,
	}
	s.logger.Warn(diag.Describe(), "category", category.Name)
	return nil
}

// WarnFormat is Warn with a %-style message.
func (s *State) WarnFormat(category *runtime.Type, stackLevel int, format string, args ...runtime.Value) error {
	msg, err := runtime.FormatPercent(format, args...)
	if err != nil {
		return err
	}
	return s.Warn(category, msg, stackLevel)
}

func (s *State) location(stackLevel int) string {
	if s.frames == nil {
		return ""
	}
	if stackLevel < 1 {
		stackLevel = 1
	}
	f, err := s.frames.Current(stackLevel - 1)
	if err != nil {
		return ""
	}
	return f.Location()
}
