package grammar

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Aliases for terminals that can't be written as a word.
var aliases = map[string]string{
	"space":   " ",
	"newline": "\n",
}

// Parse reads a grammar in the plain text format:
//
//	start
//	count
//	lhs n sym1 ... symn    (count times)
//
// Words are separated by whitespace. The word "epsilon" on a right hand side
// stands for no symbol, "space" and "newline" for the whitespace characters.
// Right hand side symbols that never appear on a left hand side and are a
// single character long become terminals.
func Parse(filename string, r io.Reader) (*Grammar, error) {
	s := &wordScanner{r: bufio.NewReader(r), filename: filename, line: 1, col: 1}

	start, pos, err := s.next("start symbol")
	if err != nil {
		return nil, err
	}
	g, err := New(start)
	if err != nil {
		return nil, &Error{Pos: pos, Symbol: start, Msg: err.Error()}
	}

	count, _, err := s.nextInt("rule count")
	if err != nil {
		return nil, err
	}

	for i := 0; i < count; i++ {
		from, pos, err := s.next(fmt.Sprintf("left hand side of rule %d", i+1))
		if err != nil {
			return nil, err
		}
		n, _, err := s.nextInt(fmt.Sprintf("length of rule %d", i+1))
		if err != nil {
			return nil, err
		}
		rule := Rule{From: from, Pos: pos}
		for j := 0; j < n; j++ {
			sym, _, err := s.next(fmt.Sprintf("symbol %d of rule %d", j+1, i+1))
			if err != nil {
				return nil, err
			}
			if sym == Epsilon {
				continue
			}
			if alias, ok := aliases[sym]; ok {
				sym = alias
			}
			rule.To = append(rule.To, sym)
		}
		if err := g.AddRule(rule); err != nil {
			return nil, &Error{Pos: pos, Symbol: from, Msg: err.Error()}
		}
	}

	if extra, pos, err := s.next(""); err == nil {
		return nil, &Error{Pos: pos, Symbol: extra, Msg: fmt.Sprintf("unexpected %q after %d rules", extra, count)}
	} else if !errors.Is(err, io.EOF) {
		return nil, err
	}

	g.classifyCharacters()
	return g, nil
}

// classifyCharacters declares every unclassified one-character symbol a
// terminal.
func (g *Grammar) classifyCharacters() {
	for _, r := range g.rules {
		for _, sym := range r.To {
			if g.classes[sym] == unclassified && utf8.RuneCountInString(sym) == 1 {
				g.AddTerminal(sym)
			}
		}
	}
}

// Load reads a grammar file, choosing the EBNF importer for ".ebnf" files and
// the plain text format otherwise. For EBNF files start names the start
// production; it is ignored for text files.
func Load(filename, start string, opts ...ImportOption) (*Grammar, error) {
	if filepath.Ext(filename) == ".ebnf" {
		return LoadEBNF(filename, start, opts...)
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()

	g, err := Parse(filename, f)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	return g, nil
}

type wordScanner struct {
	r         *bufio.Reader
	filename  string
	line, col int
}

func (s *wordScanner) pos() Pos {
	return Pos{Filename: s.filename, Line: s.line, Column: s.col}
}

func (s *wordScanner) read() (rune, error) {
	ch, _, err := s.r.ReadRune()
	if err != nil {
		return 0, err
	}
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch, nil
}

// next returns the next whitespace-delimited word. what describes the word
// for the error message when the input ends early.
func (s *wordScanner) next(what string) (string, Pos, error) {
	var word []rune
	var start Pos
	for {
		here := s.pos()
		ch, err := s.read()
		if err == io.EOF {
			if len(word) > 0 {
				return string(word), start, nil
			}
			if what == "" {
				return "", here, io.EOF
			}
			return "", here, &Error{Pos: here, Msg: fmt.Sprintf("unexpected end of input, expected %s", what)}
		}
		if err != nil {
			return "", here, fmt.Errorf("read grammar: %w", err)
		}
		if unicode.IsSpace(ch) {
			if len(word) > 0 {
				return string(word), start, nil
			}
			continue
		}
		if len(word) == 0 {
			start = here
		}
		word = append(word, ch)
	}
}

func (s *wordScanner) nextInt(what string) (int, Pos, error) {
	word, pos, err := s.next(what)
	if err != nil {
		return 0, pos, err
	}
	n, err := strconv.Atoi(word)
	if err != nil || n < 0 {
		return 0, pos, &Error{Pos: pos, Symbol: word, Msg: fmt.Sprintf("expected %s, got %q", what, word)}
	}
	return n, pos, nil
}
