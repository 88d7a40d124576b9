package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielsun1106/graalpython/pkg/config"
	"github.com/danielsun1106/graalpython/pkg/frame"
	"github.com/danielsun1106/graalpython/pkg/interpreter"
)

const cliToolVersion = "pyrt 0.1.0-dev"

// errReported marks a failure whose traceback was already written.
var errReported = errors.New("exception reported")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(stderr, "pyrt:", err)
		}
		return 1
	}
	return 0
}

type cli struct {
	configPath string
	stdout     io.Writer
	stderr     io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:           "pyrt",
		Short:         "Python-compatible runtime core: files, patterns and exceptions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "configuration file (defaults to $"+config.EnvVar+")")

	root.AddCommand(newVersionCmd(c))
	root.AddCommand(newConfigCmd(c))
	root.AddCommand(newCatCmd(c))
	root.AddCommand(newGrepCmd(c))
	root.AddCommand(newSubCmd(c))
	root.AddCommand(newModeCmd(c))
	return root
}

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(c.stdout, cliToolVersion)
		},
	}
}

func (c *cli) loadConfig() (*config.Config, error) {
	return config.Locate(c.configPath)
}

// session runs body inside a fresh interpreter. An exception escaping body
// is printed as a traceback and the interpreter's open streams are
// finalized on the way out.
func (c *cli) session(name string, body func(*interpreter.Interpreter, *frame.Frame) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	interp, err := interpreter.New(interpreter.Options{Config: cfg, Stdout: c.stdout, Stderr: c.stderr})
	if err != nil {
		return err
	}
	defer interp.Close()
	if err := interp.Run(name, func(f *frame.Frame) error { return body(interp, f) }); err != nil {
		interp.Report()
		return errReported
	}
	return nil
}
