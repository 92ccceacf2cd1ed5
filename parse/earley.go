package parse

import (
	"errors"
	"fmt"
	"slices"

	"github.com/bumchik2/GrammarAlgorithms/grammar"
	"github.com/bumchik2/GrammarAlgorithms/lex"
	"github.com/tliron/commonlog"
)

// ErrNotRecognized is returned when a tree is requested for an input the
// grammar does not derive.
var ErrNotRecognized = errors.New("input not recognized")

// Parser is an Earley recognizer for one grammar. It keeps its own copy of
// the grammar's rules, so the grammar may be changed or discarded after New
// returns. A Parser has no per-parse state and may be used from several
// goroutines at once.
type Parser struct {
	rules       []grammar.Rule // grammar rules followed by the augmenting rule
	byLHS       map[string][]int
	nonterminal map[string]bool
	augment     int
	skip        map[string]bool
	log         commonlog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithSkipKinds drops tokens of the given kinds before parsing, typically
// whitespace and comments produced by a lexer.
func WithSkipKinds(kinds ...string) Option {
	return func(p *Parser) {
		for _, k := range kinds {
			p.skip[k] = true
		}
	}
}

// WithLogger replaces the default "earley.parse" logger.
func WithLogger(log commonlog.Logger) Option {
	return func(p *Parser) {
		p.log = log
	}
}

// New validates g and builds a parser for it. The rule S' -> S, with S the
// start symbol and S' a fresh name, is added as the single entry point.
func New(g *grammar.Grammar, opts ...Option) (*Parser, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	p := &Parser{
		rules:       g.Rules(),
		byLHS:       make(map[string][]int),
		nonterminal: make(map[string]bool),
		skip:        make(map[string]bool),
		log:         commonlog.GetLogger("earley.parse"),
	}
	for _, sym := range g.Nonterminals() {
		p.nonterminal[sym] = true
		p.byLHS[sym] = g.RulesFor(sym)
	}

	start := g.Start()
	entry := start + "'"
	for g.IsTerminal(entry) || g.IsNonterminal(entry) {
		entry += "'"
	}
	p.augment = len(p.rules)
	p.rules = append(p.rules, grammar.Rule{From: entry, To: []string{start}})
	p.nonterminal[entry] = true

	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Rule returns the rule with the given index; the index one past the
// grammar's last rule is the augmenting rule.
func (p *Parser) Rule(i int) grammar.Rule {
	return p.rules[i]
}

// classify tells what follows the dot of s and returns that symbol.
func (p *Parser) classify(s Situation) (Kind, string) {
	to := p.rules[s.Rule].To
	if s.Dot >= len(to) {
		return KindComplete, ""
	}
	sym := to[s.Dot]
	if p.nonterminal[sym] {
		return KindNonterminal, sym
	}
	return KindTerminal, sym
}

// Parse runs the recognizer over tokens and returns the filled chart. The EOF
// token and kinds configured with WithSkipKinds are dropped first.
func (p *Parser) Parse(tokens []lex.Token) *Chart {
	filtered := make([]lex.Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind == lex.KindEOF || p.skip[tok.Kind] {
			continue
		}
		filtered = append(filtered, tok)
	}

	ch := newChart(p, filtered)
	ch.insert(0, Situation{Rule: p.augment}, Provenance{})

	n := len(filtered)
	for i := 0; ; i++ {
		passes := p.closure(ch, i)
		p.log.Debugf("column %d: %d situations after %d passes", i, ch.columns[i].Len(), passes)
		if i == n {
			break
		}
		p.scan(ch, i)
		if ch.columns[i+1].Len() == 0 {
			p.log.Debugf("no situation survives token %d (%q), rejecting", i, filtered[i].Literal)
			break
		}
	}
	return ch
}

// ParseString parses input character by character.
func (p *Parser) ParseString(input string) *Chart {
	return p.Parse(lex.Runes("", input))
}

// Recognize reports whether the grammar derives input.
func (p *Parser) Recognize(input string) bool {
	return p.ParseString(input).Accepted()
}

// BuildTree parses input and returns one derivation of it. It returns
// ErrNotRecognized if the grammar does not derive input.
func (p *Parser) BuildTree(input string) (*Node, error) {
	return p.ParseString(input).Tree()
}

// closure alternates predict and complete on column i until a full pass adds
// nothing. It returns the number of passes that added situations.
func (p *Parser) closure(ch *Chart, i int) int {
	passes := 0
	for {
		changed := p.predict(ch, i)
		if p.complete(ch, i) {
			changed = true
		}
		if !changed {
			return passes
		}
		passes++
	}
}

// predict adds X -> • α @i for every nonterminal X after a dot in column i.
func (p *Parser) predict(ch *Chart, i int) bool {
	col := ch.columns[i]
	changed := false
	for k := 0; k < len(col.items); k++ {
		kind, sym := p.classify(col.items[k].Situation)
		if kind != KindNonterminal || col.predicted[sym] {
			continue
		}
		col.predicted[sym] = true
		for _, r := range p.byLHS[sym] {
			if ch.insert(i, Situation{Rule: r, Origin: i}, Provenance{}) {
				changed = true
			}
		}
	}
	return changed
}

// complete advances, for every finished B -> β • @j in column i, each
// situation in column j waiting for B.
//
// Columns before i are closed, so a finished situation with j < i only needs
// to be completed once. Those with j == i are revisited on every pass since
// situations waiting in column i may still appear.
func (p *Parser) complete(ch *Chart, i int) bool {
	col := ch.columns[i]
	changed := false
	for k := 0; k < len(col.items); k++ {
		done := col.items[k].Situation
		if kind, _ := p.classify(done); kind != KindComplete {
			continue
		}
		if done.Origin < i && k < col.completed {
			continue
		}
		origin := ch.columns[done.Origin]
		lhs := p.rules[done.Rule].From
		for _, w := range origin.waiting[lhs] {
			from := Provenance{
				Via:  ViaComplete,
				Prev: Ref{Column: done.Origin, Index: w},
				Done: Ref{Column: i, Index: k},
			}
			if ch.insert(i, origin.items[w].advance(), from) {
				changed = true
			}
		}
	}
	col.completed = len(col.items)
	return changed
}

// scan moves the dot over token i for every situation in column i expecting
// it. A terminal matches a token with the same kind or the same literal.
func (p *Parser) scan(ch *Chart, i int) {
	tok := ch.tokens[i]
	col := ch.columns[i]
	for k := 0; k < len(col.items); k++ {
		s := col.items[k].Situation
		kind, sym := p.classify(s)
		if kind != KindTerminal || (sym != tok.Kind && sym != tok.Literal) {
			continue
		}
		ch.insert(i+1, s.advance(), Provenance{Via: ViaScan, Prev: Ref{Column: i, Index: k}})
	}
}

// Recognize reports whether g derives input, read character by character.
func Recognize(g *grammar.Grammar, input string) (bool, error) {
	p, err := New(g)
	if err != nil {
		return false, err
	}
	return p.Recognize(input), nil
}

// BuildTree returns one derivation of input in g.
func BuildTree(g *grammar.Grammar, input string) (*Node, error) {
	p, err := New(g)
	if err != nil {
		return nil, err
	}
	return p.BuildTree(input)
}

// Rules returns the parser's rule table, the augmenting rule last.
func (p *Parser) Rules() []grammar.Rule {
	return slices.Clone(p.rules)
}

// AugmentRule returns the index of the S' -> S rule.
func (p *Parser) AugmentRule() int {
	return p.augment
}

func (p *Parser) String() string {
	return fmt.Sprintf("earley parser for %s (%d rules)", p.rules[p.augment].To[0], p.augment)
}
