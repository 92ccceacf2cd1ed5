package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRecognizeCmd() *cobra.Command {
	var opts inputOptions

	cmd := &cobra.Command{
		Use:          "recognize <grammar> [input]",
		Short:        "Print whether the grammar derives the input",
		Args:         cobra.RangeArgs(1, 2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, tokens, err := opts.load(cmd, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.Parse(tokens).Accepted())
			return nil
		},
	}

	opts.register(cmd)

	return cmd
}
