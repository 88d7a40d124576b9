package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielsun1106/graalpython/pkg/config"
)

func captureCLI(t *testing.T, args []string) (int, string, string) {
	t.Helper()
	t.Setenv(config.EnvVar, "")
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestVersionCommand(t *testing.T) {
	code, stdout, _ := captureCLI(t, []string{"version"})
	if code != 0 || strings.TrimSpace(stdout) != cliToolVersion {
		t.Fatalf("unexpected version output %q (code %d)", stdout, code)
	}
}

func TestCatTranslatesNewlines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	writeFile(t, path, "one\r\ntwo\rthree")
	code, stdout, stderr := captureCLI(t, []string{"cat", path})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr=%q)", code, stderr)
	}
	if stdout != "one\ntwo\nthree" {
		t.Fatalf("unexpected output:\nexpected: %q\ngot: %q", "one\ntwo\nthree", stdout)
	}
	_, stdout, _ = captureCLI(t, []string{"cat", "--newline", "", path})
	if stdout != "one\r\ntwo\rthree" {
		t.Fatalf("expected untranslated output, got %q", stdout)
	}
}

func TestCatMissingFilePrintsTraceback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.txt")
	code, stdout, stderr := captureCLI(t, []string{"cat", path})
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if stdout != "" {
		t.Fatalf("expected no output, got %q", stdout)
	}
	if !strings.Contains(stderr, "FileNotFoundError: [Errno 2] No such file or directory: '"+path+"'") {
		t.Fatalf("expected FileNotFoundError on stderr, got %q", stderr)
	}
	if strings.Contains(stderr, "pyrt:") {
		t.Fatalf("expected the exception to be reported once, got %q", stderr)
	}
}

func TestGrepCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.txt")
	writeFile(t, path, "alpha 1\nBeta 22\ngamma\nbeta 333\n")

	code, stdout, stderr := captureCLI(t, []string{"grep", "-i", "-n", `beta`, path})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr=%q)", code, stderr)
	}
	want := "2:Beta 22\n4:beta 333\n"
	if stdout != want {
		t.Fatalf("unexpected output:\nexpected: %q\ngot: %q", want, stdout)
	}

	_, stdout, _ = captureCLI(t, []string{"grep", "-o", `\d+`, path})
	if stdout != "1\n22\n333\n" {
		t.Fatalf("unexpected -o output %q", stdout)
	}

	code, _, stderr = captureCLI(t, []string{"grep", `(?P<x>a)(?P<x>b)`, path})
	if code != 1 || !strings.Contains(stderr, "redefinition of group name 'x'") {
		t.Fatalf("expected a re.error traceback, got %q (code %d)", stderr, code)
	}
}

func TestSubCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	writeFile(t, path, "a-b-c\nx\n")

	code, stdout, stderr := captureCLI(t, []string{"sub", "--count", "1", "-", "+", path})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr=%q)", code, stderr)
	}
	if stdout != "a+b-c\nx\n" {
		t.Fatalf("unexpected output %q", stdout)
	}

	_, stdout, _ = captureCLI(t, []string{"sub", "--template", `(\w)-(\w)`, `\2\1`, path})
	if stdout != "ba-c\nx\n" {
		t.Fatalf("unexpected template output %q", stdout)
	}
	_, stdout, _ = captureCLI(t, []string{"sub", `(\w)`, `\1`, path})
	if stdout != `\1-\1-\1`+"\n"+`\1`+"\n" {
		t.Fatalf("expected a literal replacement, got %q", stdout)
	}
}

func TestModeCommand(t *testing.T) {
	code, stdout, stderr := captureCLI(t, []string{"mode", "rb+"})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr=%q)", code, stderr)
	}
	if stdout != "raw: r+\nflags: read,update,binary\n" {
		t.Fatalf("unexpected output %q", stdout)
	}
	cases := map[string]string{
		"rw": "ValueError: must have exactly one of create/read/write/append mode",
		"rr": "ValueError: invalid mode: 'rr'",
		"tb": "ValueError: can't have text and binary mode at once",
	}
	for mode, want := range cases {
		code, _, stderr := captureCLI(t, []string{"mode", mode})
		if code != 1 || !strings.Contains(stderr, want) {
			t.Fatalf("mode %q: expected %q, got %q (code %d)", mode, want, stderr, code)
		}
	}
	code, _, stderr = captureCLI(t, []string{"mode", "--encoding", "utf-8", "rb"})
	if code != 1 || !strings.Contains(stderr, "binary mode doesn't take an encoding argument") {
		t.Fatalf("expected the encoding to be rejected, got %q", stderr)
	}
}

func TestConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pyrt.yaml")
	writeFile(t, path, "io:\n  buffer_size: 64\nregex:\n  cache_size: 4\n")
	code, stdout, stderr := captureCLI(t, []string{"--config", path, "config"})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr=%q)", code, stderr)
	}
	for _, want := range []string{"buffer_size: 64", "cache_size: 4", "engine: regexp2"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, stdout)
		}
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, bad, "io:\n  buffer_size: 0\n")
	code, _, stderr = captureCLI(t, []string{"--config", bad, "version"})
	if code != 0 {
		t.Fatalf("version must not load the configuration, got code %d (%s)", code, stderr)
	}
	code, _, stderr = captureCLI(t, []string{"--config", bad, "config"})
	if code != 1 || !strings.Contains(stderr, "io.buffer_size must be positive") {
		t.Fatalf("expected a validation error, got %q (code %d)", stderr, code)
	}
}
