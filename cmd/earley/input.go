package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bumchik2/GrammarAlgorithms/grammar"
	"github.com/bumchik2/GrammarAlgorithms/lex"
	"github.com/bumchik2/GrammarAlgorithms/parse"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("earley.cli")

// inputOptions are the flags shared by the commands that parse an input.
type inputOptions struct {
	start string
	file  string
	lexer string
	skip  []string
}

func (o *inputOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.start, "start", "", "start production of an EBNF grammar")
	cmd.Flags().StringVarP(&o.file, "file", "i", "", "read the input from a file instead of the argument")
	cmd.Flags().StringVar(&o.lexer, "lexer", "", "EBNF lexical grammar; the input is tokenized and token kinds become terminals")
	cmd.Flags().StringSliceVar(&o.skip, "skip", []string{"WhiteSpace", "Comment"}, "token kinds dropped before parsing (with --lexer)")
}

// load reads the grammar named by args[0] and the input from args[1], the
// --file flag or stdin, and returns a parser with the tokens to feed it.
func (o *inputOptions) load(cmd *cobra.Command, args []string) (*parse.Parser, []lex.Token, error) {
	filename, input, err := o.readInput(cmd, args)
	if err != nil {
		return nil, nil, err
	}

	if o.lexer == "" {
		g, err := loadGrammar(args[0], o.start, grammar.SplitLiterals())
		if err != nil {
			return nil, nil, err
		}
		p, err := parse.New(g)
		if err != nil {
			return nil, nil, fmt.Errorf("grammar %s: %w", args[0], err)
		}
		return p, lex.Runes(filename, string(input)), nil
	}

	lexGrammar, err := lex.LoadGrammar(o.lexer)
	if err != nil {
		return nil, nil, fmt.Errorf("lexer: %w", err)
	}
	lexer := lex.NewLexer(lexGrammar, input, filename)
	tokens, err := lexer.Tokenize()
	if err != nil {
		return nil, nil, fmt.Errorf("tokenize: %w", err)
	}
	log.Debugf("%s: %d tokens", filename, len(tokens))

	g, err := loadGrammar(args[0], o.start, grammar.TokenKinds(lexer.Kinds()...))
	if err != nil {
		return nil, nil, err
	}
	for _, kind := range lexer.Kinds() {
		if g.IsNonterminal(kind) {
			continue
		}
		if err := g.AddTerminal(kind); err != nil {
			return nil, nil, fmt.Errorf("token kind %s: %w", kind, err)
		}
	}
	p, err := parse.New(g, parse.WithSkipKinds(o.skip...))
	if err != nil {
		return nil, nil, fmt.Errorf("grammar %s: %w", args[0], err)
	}
	return p, tokens, nil
}

func (o *inputOptions) readInput(cmd *cobra.Command, args []string) (string, []byte, error) {
	switch {
	case o.file != "":
		data, err := os.ReadFile(o.file)
		if err != nil {
			return "", nil, fmt.Errorf("read input: %w", err)
		}
		return o.file, data, nil
	case len(args) > 1:
		return "", []byte(args[1]), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", nil, fmt.Errorf("read input: %w", err)
	}
	return "<stdin>", data, nil
}

// loadGrammar reads a text or EBNF grammar. EBNF grammars need a start
// production; text grammars name their own.
func loadGrammar(filename, start string, opts ...grammar.ImportOption) (*grammar.Grammar, error) {
	if filepath.Ext(filename) == ".ebnf" && start == "" {
		return nil, fmt.Errorf("grammar %s: --start is required for EBNF grammars", filename)
	}
	g, err := grammar.Load(filename, start, opts...)
	if err != nil {
		return nil, err
	}
	log.Debugf("%s: %d rules, start %s", filename, g.Len(), g.Start())
	return g, nil
}
