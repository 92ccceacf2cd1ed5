// Package grammar holds context-free grammars: production rules, symbol
// classification and the readers that build them from text.
package grammar

import (
	"fmt"
	"slices"
	"strings"
)

// Epsilon is the word used in grammar files for "no symbol".
const Epsilon = "epsilon"

// Pos is a source position of a rule or symbol in a grammar file.
type Pos struct {
	Filename string
	Line     int
	Column   int
}

func (p Pos) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid reports whether the position was set by a reader.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

// Rule is a production From -> To[0] To[1] ... To[k-1]. An empty To is the
// empty production.
type Rule struct {
	From string
	To   []string
	Pos  Pos // ignored by Equal
}

// IsEmpty reports whether the rule derives the empty string directly.
func (r Rule) IsEmpty() bool {
	return len(r.To) == 0
}

// Equal compares the left and right hand sides.
func (r Rule) Equal(other Rule) bool {
	return r.From == other.From && slices.Equal(r.To, other.To)
}

func (r Rule) String() string {
	if len(r.To) == 0 {
		return r.From + " -> ε"
	}
	to := make([]string, len(r.To))
	for i, s := range r.To {
		to[i] = quoteSymbol(s)
	}
	return r.From + " -> " + strings.Join(to, " ")
}

// quoteSymbol makes whitespace terminals readable.
func quoteSymbol(s string) string {
	switch s {
	case " ":
		return "space"
	case "\n":
		return "newline"
	}
	return s
}

type class int

const (
	unclassified class = iota
	terminal
	nonterminal
)

// Grammar is a context-free grammar. The zero value is not usable; use New.
//
// A Grammar is mutable while it is being built. Parsers snapshot what they
// need, so a grammar must not be changed while a parser built from it runs
// concurrently.
type Grammar struct {
	start        string
	classes      map[string]class
	terminals    []string
	nonterminals []string
	rules        []Rule
	byLHS        map[string][]int
}

// New creates an empty grammar with the given start symbol.
func New(start string) (*Grammar, error) {
	g := &Grammar{
		classes: make(map[string]class),
		byLHS:   make(map[string][]int),
	}
	if err := g.SetStart(start); err != nil {
		return nil, err
	}
	return g, nil
}

// SetStart changes the start symbol, declaring it a nonterminal.
func (g *Grammar) SetStart(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("start symbol is empty")
	}
	if g.classes[symbol] == terminal {
		return fmt.Errorf("terminal %q can't be the start symbol", symbol)
	}
	if err := g.AddNonterminal(symbol); err != nil {
		return err
	}
	g.start = symbol
	return nil
}

// Start returns the start symbol.
func (g *Grammar) Start() string {
	return g.start
}

// AddTerminal declares symbol a terminal. Declaring it twice is a no-op.
func (g *Grammar) AddTerminal(symbol string) error {
	switch g.classes[symbol] {
	case terminal:
		return nil
	case nonterminal:
		return fmt.Errorf("symbol %q is already a nonterminal", symbol)
	}
	if symbol == "" {
		return fmt.Errorf("terminal symbol is empty")
	}
	g.classes[symbol] = terminal
	g.terminals = append(g.terminals, symbol)
	return nil
}

// AddNonterminal declares symbol a nonterminal. Declaring it twice is a no-op.
func (g *Grammar) AddNonterminal(symbol string) error {
	switch g.classes[symbol] {
	case nonterminal:
		return nil
	case terminal:
		return fmt.Errorf("symbol %q is already a terminal", symbol)
	}
	if symbol == "" {
		return fmt.Errorf("nonterminal symbol is empty")
	}
	g.classes[symbol] = nonterminal
	g.nonterminals = append(g.nonterminals, symbol)
	return nil
}

// AddRule appends r unless an equal rule is already present. The left hand
// side becomes a nonterminal; right hand side symbols are left unclassified.
func (g *Grammar) AddRule(r Rule) error {
	if r.From == "" {
		return fmt.Errorf("rule %s: empty left hand side", r)
	}
	for _, s := range r.To {
		if s == "" {
			return fmt.Errorf("rule %s: empty symbol on the right hand side", r)
		}
	}
	if g.ContainsRule(r) {
		return nil
	}
	if err := g.AddNonterminal(r.From); err != nil {
		return fmt.Errorf("rule %s: %w", r, err)
	}
	r.To = slices.Clone(r.To)
	g.byLHS[r.From] = append(g.byLHS[r.From], len(g.rules))
	g.rules = append(g.rules, r)
	return nil
}

// RemoveRule deletes the rule equal to r. Rule indices after it shift down.
func (g *Grammar) RemoveRule(r Rule) error {
	i := g.indexOf(r)
	if i < 0 {
		return fmt.Errorf("rule %s: not in grammar", r)
	}
	g.rules = slices.Delete(g.rules, i, i+1)
	g.reindex()
	return nil
}

// ContainsRule reports whether an equal rule is present.
func (g *Grammar) ContainsRule(r Rule) bool {
	return g.indexOf(r) >= 0
}

func (g *Grammar) indexOf(r Rule) int {
	for _, i := range g.byLHS[r.From] {
		if g.rules[i].Equal(r) {
			return i
		}
	}
	return -1
}

func (g *Grammar) reindex() {
	clear(g.byLHS)
	for i, r := range g.rules {
		g.byLHS[r.From] = append(g.byLHS[r.From], i)
	}
}

// IsTerminal reports whether symbol was declared a terminal.
func (g *Grammar) IsTerminal(symbol string) bool {
	return g.classes[symbol] == terminal
}

// IsNonterminal reports whether symbol was declared a nonterminal.
func (g *Grammar) IsNonterminal(symbol string) bool {
	return g.classes[symbol] == nonterminal
}

// Terminals returns the terminals in declaration order.
func (g *Grammar) Terminals() []string {
	return slices.Clone(g.terminals)
}

// Nonterminals returns the nonterminals in declaration order.
func (g *Grammar) Nonterminals() []string {
	return slices.Clone(g.nonterminals)
}

// RulesFor returns the indices of the rules with symbol on the left, in
// declaration order.
func (g *Grammar) RulesFor(symbol string) []int {
	return slices.Clone(g.byLHS[symbol])
}

// Rule returns the i-th rule in declaration order.
func (g *Grammar) Rule(i int) Rule {
	return g.rules[i]
}

// Rules returns all rules in declaration order.
func (g *Grammar) Rules() []Rule {
	return slices.Clone(g.rules)
}

// Len returns the number of rules.
func (g *Grammar) Len() int {
	return len(g.rules)
}

// Equal reports whether both grammars have the same start symbol and the
// same set of rules, in any order.
func (g *Grammar) Equal(other *Grammar) bool {
	if g.start != other.start || len(g.rules) != len(other.rules) {
		return false
	}
	for _, r := range g.rules {
		if !other.ContainsRule(r) {
			return false
		}
	}
	return true
}

func (g *Grammar) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "start: %s\n", g.start)
	for _, r := range g.rules {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	return b.String()
}
