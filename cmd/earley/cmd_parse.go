package main

import (
	"fmt"

	"github.com/bumchik2/GrammarAlgorithms/format"
	"github.com/spf13/cobra"
)

func newParseCmd() *cobra.Command {
	var opts inputOptions
	var outputFormat string

	cmd := &cobra.Command{
		Use:          "parse <grammar> [input]",
		Short:        "Parse the input and print one syntax tree for it",
		Args:         cobra.RangeArgs(1, 2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			encoder, err := format.NewEncoder(outputFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			p, tokens, err := opts.load(cmd, args)
			if err != nil {
				return err
			}
			tree, err := p.Parse(tokens).Tree()
			if err != nil {
				return fmt.Errorf("parse: %w", err)
			}
			if err := encoder.Encode(tree); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (text, json, line, trace)")

	return cmd
}
