package main

import (
	"github.com/bumchik2/GrammarAlgorithms/lsp"
	"github.com/spf13/cobra"
)

func newLSPCmd() *cobra.Command {
	var start string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server for grammar files",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := lsp.NewServer(version, start)
			return server.RunStdio()
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "start production of EBNF grammars (default: first production)")

	return cmd
}
