package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/danielsun1106/graalpython/pkg/frame"
	"github.com/danielsun1106/graalpython/pkg/interpreter"
	"github.com/danielsun1106/graalpython/pkg/sre"
)

func newSubCmd(c *cli) *cobra.Command {
	var (
		tf       textFlags
		count    int
		template bool
	)

	cmd := &cobra.Command{
		Use:   "sub [--count n] [--template] <pattern> <replacement> <files...>",
		Short: "Replace pattern matches on every line",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.session("<sub>", func(interp *interpreter.Interpreter, _ *frame.Frame) error {
				p, err := interp.Compile(args[0], 0)
				if err != nil {
					return err
				}
				repl := sre.Literal(args[1])
				if template {
					repl = func(m *sre.Match) (string, error) { return m.Expand(args[1]) }
				}
				for _, path := range args[2:] {
					err := eachLine(interp, path, tf, func(_ int, line string) error {
						out, err := p.Sub(repl, line, count)
						if err != nil {
							return err
						}
						_, err = io.WriteString(c.stdout, out)
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
	cmd.Flags().IntVar(&count, "count", 0, "replace at most n matches per line (0 means all)")
	cmd.Flags().BoolVar(&template, "template", false, "expand \\1 and \\g<name> references in the replacement")
	cmd.Flags().StringVar(&tf.encoding, "encoding", "", "text encoding (defaults to io.encoding)")
	return cmd
}
