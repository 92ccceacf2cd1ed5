package lex

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/ebnf"
)

const calcLexer = `
WhiteSpace = " " | "\t" | "\n" .
Keyword = "if" | "else" .
Ident = letter { letter | digit } .
Number = digit { digit } .
Plus = "+" .
letter = "a" … "z" .
digit = "0" … "9" .
`

func mustLexer(t *testing.T, input string) *Lexer {
	t.Helper()
	g, err := ebnf.Parse("calc.ebnf", strings.NewReader(calcLexer))
	require.NoError(t, err)
	return NewLexer(g, []byte(input), "input")
}

func TestKinds(t *testing.T) {
	l := mustLexer(t, "")
	assert.Equal(t, []string{"WhiteSpace", "Keyword", "Ident", "Number", "Plus"}, l.Kinds())
}

func TestTokenize(t *testing.T) {
	tokens, err := mustLexer(t, "x1 + 42\nif").Tokenize()
	require.NoError(t, err)

	type tok struct {
		kind, literal string
		line, column  int
	}
	want := []tok{
		{"Ident", "x1", 1, 1},
		{"WhiteSpace", " ", 1, 3},
		{"Plus", "+", 1, 4},
		{"WhiteSpace", " ", 1, 5},
		{"Number", "42", 1, 6},
		{"WhiteSpace", "\n", 1, 8},
		{"Keyword", "if", 2, 1},
		{KindEOF, "", 2, 3},
	}
	require.Len(t, tokens, len(want))
	for i, w := range want {
		got := tok{tokens[i].Kind, tokens[i].Literal, tokens[i].Position.Line, tokens[i].Position.Column}
		assert.Equal(t, w, got, "token %d", i)
	}
}

func TestLongestMatch(t *testing.T) {
	tokens, err := mustLexer(t, "iffy").Tokenize()
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "Ident", tokens[0].Kind)
	assert.Equal(t, "iffy", tokens[0].Literal)
}

func TestErrorToken(t *testing.T) {
	l := mustLexer(t, "a?é")

	tok, err := l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, "Ident", tok.Kind)

	tok, err = l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, Token{Kind: KindError, Literal: "?", Position: Position{Filename: "input", Offset: 1, Line: 1, Column: 2}}, tok)

	tok, err = l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, KindError, tok.Kind)
	assert.Equal(t, "é", tok.Literal, "an unmatched character is consumed whole")

	tok, err = l.NextToken()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, KindEOF, tok.Kind)
}

func TestRunes(t *testing.T) {
	tokens := Runes("in", "aé\nb")
	require.Len(t, tokens, 4)

	assert.Equal(t, Token{Kind: "é", Literal: "é", Position: Position{Filename: "in", Offset: 1, Line: 1, Column: 2}}, tokens[1])
	assert.Equal(t, "\n", tokens[2].Kind)
	assert.Equal(t, Position{Filename: "in", Offset: 4, Line: 2, Column: 1}, tokens[3].Position)
	assert.Empty(t, Runes("", ""))
}
