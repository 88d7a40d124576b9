package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

func parseLevel(name string) (slog.Level, error) {
	switch name {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown diagnostics level %q", name)
}

// Logger builds the diagnostics logger. stdout and stderr default to the
// process streams.
func (d Diagnostics) Logger(stdout, stderr io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(d.Level)
	if err != nil {
		return nil, err
	}
	var w io.Writer
	switch d.Output {
	case "stderr", "":
		w = stderr
		if w == nil {
			w = os.Stderr
		}
	case "stdout":
		w = stdout
		if w == nil {
			w = os.Stdout
		}
	case "discard":
		w = io.Discard
	default:
		return nil, fmt.Errorf("unknown diagnostics output %q", d.Output)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch d.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown diagnostics format %q", d.Format)
}
