package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielsun1106/graalpython/pkg/frame"
	"github.com/danielsun1106/graalpython/pkg/interpreter"
	"github.com/danielsun1106/graalpython/pkg/sre"
)

func newGrepCmd(c *cli) *cobra.Command {
	var (
		tf          textFlags
		ignoreCase  bool
		lineNumbers bool
		only        bool
	)

	cmd := &cobra.Command{
		Use:   "grep [-i] [-n] [-o] <pattern> <files...>",
		Short: "Print lines matching a Python regular expression",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := 0
			if ignoreCase {
				flags |= sre.IGNORECASE
			}
			return c.session("<grep>", func(interp *interpreter.Interpreter, _ *frame.Frame) error {
				p, err := interp.Compile(args[0], flags)
				if err != nil {
					return err
				}
				for _, path := range args[1:] {
					prefix := ""
					if len(args) > 2 {
						prefix = path + ":"
					}
					err := eachLine(interp, path, tf, func(n int, line string) error {
						lp := prefix
						if lineNumbers {
							lp = fmt.Sprintf("%s%d:", prefix, n)
						}
						return grepLine(c, p, lp, line, only)
					})
					if err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&ignoreCase, "ignore-case", "i", false, "compile with re.IGNORECASE")
	cmd.Flags().BoolVarP(&lineNumbers, "line-number", "n", false, "prefix each line with its number")
	cmd.Flags().BoolVarP(&only, "only-matching", "o", false, "print each match instead of the line")
	cmd.Flags().StringVar(&tf.encoding, "encoding", "", "text encoding (defaults to io.encoding)")
	return cmd
}

func grepLine(c *cli, p *sre.Pattern, prefix, line string, only bool) error {
	if !only {
		m, err := p.Search(line, 0, -1)
		if err != nil || m == nil {
			return err
		}
		_, err = fmt.Fprint(c.stdout, prefix, withNewline(line))
		return err
	}
	for m, err := range p.FindIter(line, 0, -1) {
		if err != nil {
			return err
		}
		g, _ := m.Group(0)
		if g == "" {
			continue
		}
		if _, err := fmt.Fprintln(c.stdout, prefix+g); err != nil {
			return err
		}
	}
	return nil
}
