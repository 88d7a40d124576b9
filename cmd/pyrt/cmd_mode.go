package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielsun1106/graalpython/pkg/frame"
	"github.com/danielsun1106/graalpython/pkg/interpreter"
	"github.com/danielsun1106/graalpython/pkg/pyio"
)

func newModeCmd(c *cli) *cobra.Command {
	var tf textFlags

	cmd := &cobra.Command{
		Use:   "mode <mode>",
		Short: "Validate an open() mode and show how it decomposes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tf.raw = cmd.Flags().Changed("newline")
			opts := tf.options()
			return c.session("<mode>", func(*interpreter.Interpreter, *frame.Frame) error {
				m, err := pyio.ParseMode(args[0], pyio.TextOptions{Encoding: opts.Encoding, Errors: opts.Errors, Newline: opts.Newline})
				if err != nil {
					return err
				}
				fmt.Fprintf(c.stdout, "raw: %s\n", m.Raw())
				fmt.Fprintf(c.stdout, "flags: %s\n", modeFlags(m))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&tf.encoding, "encoding", "", "encoding argument")
	cmd.Flags().StringVar(&tf.errors, "errors", "", "errors argument")
	cmd.Flags().StringVar(&tf.newline, "newline", "", "newline argument")
	return cmd
}

func modeFlags(m pyio.Mode) string {
	var names []string
	for _, f := range []struct {
		on   bool
		name string
	}{
		{m.Creating, "create"},
		{m.Reading, "read"},
		{m.Writing, "write"},
		{m.Appending, "append"},
		{m.Updating, "update"},
		{m.Text, "text"},
		{m.Binary, "binary"},
		{m.Universal, "universal"},
	} {
		if f.on {
			names = append(names, f.name)
		}
	}
	return strings.Join(names, ",")
}
