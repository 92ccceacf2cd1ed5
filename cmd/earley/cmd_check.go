package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var start string

	cmd := &cobra.Command{
		Use:          "check <grammar>",
		Short:        "Load a grammar and report configuration errors",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGrammar(args[0], start)
			if err != nil {
				return err
			}
			if err := g.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: start %s, %d rules, %d nonterminals, %d terminals\n",
				args[0], g.Start(), g.Len(), len(g.Nonterminals()), len(g.Terminals()))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "start production of an EBNF grammar")

	return cmd
}
