package grammar

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"text/scanner"

	"golang.org/x/exp/ebnf"
)

// maxRangeSize bounds the number of rules a single "a" … "z" range expands to.
const maxRangeSize = 1 << 12

// ImportOption configures FromEBNF.
type ImportOption func(*importer)

// SplitLiterals turns every literal token into one terminal per character,
// for grammars recognized character by character.
func SplitLiterals() ImportOption {
	return func(im *importer) {
		im.split = true
	}
}

// TokenKinds declares names that are terminals even though the grammar has no
// production for them, usually the token kinds of a separate lexer grammar.
func TokenKinds(kinds ...string) ImportOption {
	return func(im *importer) {
		for _, k := range kinds {
			im.kinds[k] = true
		}
	}
}

// LoadEBNF reads an EBNF grammar file and converts it with FromEBNF.
func LoadEBNF(filename, start string, opts ...ImportOption) (*Grammar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()

	src, err := ebnf.Parse(filename, f)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	return FromEBNF(src, start, opts...)
}

// FromEBNF converts an EBNF grammar into plain rules. Alternatives become
// separate rules; groups, options, repetitions and character ranges are
// replaced by fresh nonterminals named after the production that uses them
// (expr~1, expr~2, ...). Literal tokens are terminals.
func FromEBNF(src ebnf.Grammar, start string, opts ...ImportOption) (*Grammar, error) {
	if _, ok := src[start]; !ok {
		return nil, fmt.Errorf("start production %q not found in grammar", start)
	}
	g, err := New(start)
	if err != nil {
		return nil, err
	}

	im := &importer{
		g:     g,
		src:   src,
		kinds: make(map[string]bool),
		fresh: make(map[string]int),
	}
	for _, opt := range opts {
		opt(im)
	}

	for _, prod := range sortedProductions(src) {
		if err := im.g.AddNonterminal(prod.Name.String); err != nil {
			return nil, err
		}
	}
	for _, prod := range sortedProductions(src) {
		if err := im.production(prod); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// sortedProductions returns the productions in source order.
func sortedProductions(src ebnf.Grammar) []*ebnf.Production {
	prods := make([]*ebnf.Production, 0, len(src))
	for _, p := range src {
		prods = append(prods, p)
	}
	slices.SortFunc(prods, func(a, b *ebnf.Production) int {
		return a.Name.StringPos.Offset - b.Name.StringPos.Offset
	})
	return prods
}

type importer struct {
	g     *Grammar
	src   ebnf.Grammar
	split bool
	kinds map[string]bool
	fresh map[string]int
}

func (im *importer) production(prod *ebnf.Production) error {
	return im.define(prod.Name.String, prod.Expr, toPos(prod.Name.StringPos))
}

// define adds one rule per alternative of expr.
func (im *importer) define(name string, expr ebnf.Expression, pos Pos) error {
	for _, alt := range alternatives(expr) {
		to, err := im.sequence(name, alt, pos)
		if err != nil {
			return err
		}
		if err := im.g.AddRule(Rule{From: name, To: to, Pos: pos}); err != nil {
			return &Error{Pos: pos, Symbol: name, Msg: err.Error()}
		}
	}
	return nil
}

func alternatives(expr ebnf.Expression) []ebnf.Expression {
	if alt, ok := expr.(ebnf.Alternative); ok {
		return alt
	}
	return []ebnf.Expression{expr}
}

func (im *importer) sequence(owner string, expr ebnf.Expression, pos Pos) ([]string, error) {
	seq, ok := expr.(ebnf.Sequence)
	if !ok {
		return im.symbols(owner, expr, pos)
	}
	var to []string
	for _, item := range seq {
		syms, err := im.symbols(owner, item, pos)
		if err != nil {
			return nil, err
		}
		to = append(to, syms...)
	}
	return to, nil
}

// symbols returns the right hand side symbols standing for expr.
func (im *importer) symbols(owner string, expr ebnf.Expression, pos Pos) ([]string, error) {
	switch e := expr.(type) {
	case nil:
		return nil, nil

	case *ebnf.Name:
		if im.kinds[e.String] {
			if err := im.g.AddTerminal(e.String); err != nil {
				return nil, &Error{Pos: toPos(e.StringPos), Symbol: e.String, Msg: err.Error()}
			}
		}
		return []string{e.String}, nil

	case *ebnf.Token:
		return im.literal(e)

	case *ebnf.Range:
		return im.charRange(owner, e)

	case *ebnf.Group:
		name := im.freshName(owner)
		if err := im.define(name, e.Body, pos); err != nil {
			return nil, err
		}
		return []string{name}, nil

	case *ebnf.Option:
		name := im.freshName(owner)
		if err := im.g.AddRule(Rule{From: name, Pos: pos}); err != nil {
			return nil, err
		}
		if err := im.define(name, e.Body, pos); err != nil {
			return nil, err
		}
		return []string{name}, nil

	case *ebnf.Repetition:
		name := im.freshName(owner)
		if err := im.g.AddRule(Rule{From: name, Pos: pos}); err != nil {
			return nil, err
		}
		for _, alt := range alternatives(e.Body) {
			to, err := im.sequence(name, alt, pos)
			if err != nil {
				return nil, err
			}
			if err := im.g.AddRule(Rule{From: name, To: append(to, name), Pos: pos}); err != nil {
				return nil, err
			}
		}
		return []string{name}, nil

	case ebnf.Alternative, ebnf.Sequence:
		name := im.freshName(owner)
		if err := im.define(name, e, pos); err != nil {
			return nil, err
		}
		return []string{name}, nil

	case *ebnf.Bad:
		return nil, &Error{Pos: toPos(e.TokPos), Msg: e.Error}
	}
	return nil, &Error{Pos: toPos(expr.Pos()), Msg: fmt.Sprintf("unsupported expression %T", expr)}
}

func (im *importer) literal(tok *ebnf.Token) ([]string, error) {
	var syms []string
	if im.split {
		for _, r := range tok.String {
			syms = append(syms, string(r))
		}
	} else if tok.String != "" {
		syms = []string{tok.String}
	}
	for _, s := range syms {
		if err := im.g.AddTerminal(s); err != nil {
			return nil, &Error{Pos: toPos(tok.StringPos), Symbol: s, Msg: err.Error()}
		}
	}
	return syms, nil
}

func (im *importer) charRange(owner string, r *ebnf.Range) ([]string, error) {
	begin, end := []rune(r.Begin.String), []rune(r.End.String)
	pos := toPos(r.Begin.StringPos)
	if len(begin) != 1 || len(end) != 1 {
		return nil, &Error{Pos: pos, Msg: fmt.Sprintf("range bounds must be single characters: %s … %s",
			strconv.Quote(r.Begin.String), strconv.Quote(r.End.String))}
	}
	if begin[0] > end[0] {
		return nil, &Error{Pos: pos, Msg: "decreasing character range"}
	}
	if end[0]-begin[0] >= maxRangeSize {
		return nil, &Error{Pos: pos, Msg: fmt.Sprintf("character range spans more than %d characters", maxRangeSize)}
	}

	name := im.freshName(owner)
	for c := begin[0]; c <= end[0]; c++ {
		sym := string(c)
		if err := im.g.AddTerminal(sym); err != nil {
			return nil, &Error{Pos: pos, Symbol: sym, Msg: err.Error()}
		}
		if err := im.g.AddRule(Rule{From: name, To: []string{sym}, Pos: pos}); err != nil {
			return nil, err
		}
	}
	return []string{name}, nil
}

func (im *importer) freshName(owner string) string {
	for {
		im.fresh[owner]++
		name := owner + "~" + strconv.Itoa(im.fresh[owner])
		if _, taken := im.g.classes[name]; !taken {
			if _, defined := im.src[name]; !defined {
				return name
			}
		}
	}
}

func toPos(p scanner.Position) Pos {
	return Pos{Filename: p.Filename, Line: p.Line, Column: p.Column}
}
