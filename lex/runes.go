package lex

// Runes splits input into one token per character. Kind and Literal are both
// the character, so a grammar's single-character terminals match directly.
func Runes(filename, input string) []Token {
	tokens := make([]Token, 0, len(input))
	pos := Position{Filename: filename, Line: 1, Column: 1}
	for offset, r := range input {
		s := string(r)
		pos.Offset = offset
		tokens = append(tokens, Token{Kind: s, Literal: s, Position: pos})
		if r == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}
	return tokens
}
