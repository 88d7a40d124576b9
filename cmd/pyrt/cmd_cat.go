package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/danielsun1106/graalpython/pkg/frame"
	"github.com/danielsun1106/graalpython/pkg/interpreter"
)

func newCatCmd(c *cli) *cobra.Command {
	var tf textFlags

	cmd := &cobra.Command{
		Use:   "cat [--encoding enc] [--newline nl] <files...>",
		Short: "Print files through the text I/O stack",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tf.raw = cmd.Flags().Changed("newline")
			return c.session("<cat>", func(interp *interpreter.Interpreter, _ *frame.Frame) error {
				for _, path := range args {
					err := eachLine(interp, path, tf, func(_ int, line string) error {
						_, err := io.WriteString(c.stdout, line)
						return err
					})
					if err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&tf.encoding, "encoding", "", "text encoding (defaults to io.encoding)")
	cmd.Flags().StringVar(&tf.errors, "errors", "", "decoding error handler: strict, ignore or replace")
	cmd.Flags().StringVar(&tf.newline, "newline", "", "newline argument passed to open()")
	return cmd
}
