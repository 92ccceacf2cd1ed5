package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newChartCmd() *cobra.Command {
	var opts inputOptions

	cmd := &cobra.Command{
		Use:          "chart <grammar> [input]",
		Short:        "Dump the Earley chart built for the input",
		Args:         cobra.RangeArgs(1, 2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, tokens, err := opts.load(cmd, args)
			if err != nil {
				return err
			}
			chart := p.Parse(tokens)
			fmt.Fprint(cmd.OutOrStdout(), chart)
			fmt.Fprintf(cmd.OutOrStdout(), "accepted: %t\n", chart.Accepted())
			return nil
		},
	}

	opts.register(cmd)

	return cmd
}
