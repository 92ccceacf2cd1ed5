package parse

import (
	"fmt"
	"strings"

	"github.com/bumchik2/GrammarAlgorithms/lex"
)

// Via tells how a situation entered its column.
type Via int

const (
	// ViaNone marks the seed situation and predictions; their dot is 0.
	ViaNone Via = iota
	// ViaScan marks a situation whose dot moved over a scanned token.
	ViaScan
	// ViaComplete marks a situation whose dot moved over a completed nonterminal.
	ViaComplete
)

func (v Via) String() string {
	switch v {
	case ViaNone:
		return "none"
	case ViaScan:
		return "scan"
	case ViaComplete:
		return "complete"
	}
	return fmt.Sprintf("Via(%d)", int(v))
}

// Ref locates an item in a chart.
type Ref struct {
	Column int
	Index  int
}

// Provenance records the items a situation was derived from. For ViaScan,
// Prev is the situation in the previous column before the dot moved. For
// ViaComplete, Prev is the waiting situation in column Done.Origin and Done
// is the completed situation in the same column as the derived one.
type Provenance struct {
	Via  Via
	Prev Ref
	Done Ref
}

type item struct {
	Situation
	from Provenance
}

// Column is the set of situations reachable after consuming a prefix of the
// input. Items are kept in insertion order; the first insertion of a
// situation fixes its provenance.
type Column struct {
	index     int
	items     []item
	seen      map[Situation]int
	waiting   map[string][]int // symbol after the dot -> item indices
	predicted map[string]bool
	completed int // items with an earlier origin below this index are completed
}

func newColumn(index int) *Column {
	return &Column{
		index:     index,
		seen:      make(map[Situation]int),
		waiting:   make(map[string][]int),
		predicted: make(map[string]bool),
	}
}

// Len returns the number of situations in the column.
func (c *Column) Len() int {
	return len(c.items)
}

// Situations returns the column's situations in insertion order.
func (c *Column) Situations() []Situation {
	out := make([]Situation, len(c.items))
	for i, it := range c.items {
		out[i] = it.Situation
	}
	return out
}

// Contains reports whether s is in the column.
func (c *Column) Contains(s Situation) bool {
	_, ok := c.seen[s]
	return ok
}

// Provenance returns how s entered the column.
func (c *Column) Provenance(s Situation) (Provenance, bool) {
	i, ok := c.seen[s]
	if !ok {
		return Provenance{}, false
	}
	return c.items[i].from, true
}

// Chart holds the columns of one parse. Columns only grow while the parse
// runs and are never changed afterwards.
type Chart struct {
	parser  *Parser
	tokens  []lex.Token
	columns []*Column
}

func newChart(p *Parser, tokens []lex.Token) *Chart {
	ch := &Chart{
		parser:  p,
		tokens:  tokens,
		columns: make([]*Column, len(tokens)+1),
	}
	for i := range ch.columns {
		ch.columns[i] = newColumn(i)
	}
	return ch
}

// insert adds s to column col unless it is already there.
func (ch *Chart) insert(col int, s Situation, from Provenance) bool {
	c := ch.columns[col]
	if _, ok := c.seen[s]; ok {
		return false
	}
	idx := len(c.items)
	c.seen[s] = idx
	c.items = append(c.items, item{Situation: s, from: from})
	if kind, sym := ch.parser.classify(s); kind != KindComplete {
		c.waiting[sym] = append(c.waiting[sym], idx)
	}
	return true
}

func (ch *Chart) item(ref Ref) item {
	return ch.columns[ref.Column].items[ref.Index]
}

// Len returns the number of columns, one more than the number of tokens.
func (ch *Chart) Len() int {
	return len(ch.columns)
}

// Column returns the i-th column.
func (ch *Chart) Column(i int) *Column {
	return ch.columns[i]
}

// Tokens returns the tokens the chart was built from.
func (ch *Chart) Tokens() []lex.Token {
	return ch.tokens
}

func (ch *Chart) accepting() Situation {
	return Situation{Rule: ch.parser.augment, Origin: 0, Dot: 1}
}

// Accepted reports whether the whole input was recognized.
func (ch *Chart) Accepted() bool {
	return ch.columns[len(ch.columns)-1].Contains(ch.accepting())
}

// Describe renders s with a dot marking its progress, e.g. "S -> ( • S ) S @0".
func (ch *Chart) Describe(s Situation) string {
	r := ch.parser.rules[s.Rule]
	var b strings.Builder
	b.WriteString(r.From)
	b.WriteString(" ->")
	for i, sym := range r.To {
		if i == s.Dot {
			b.WriteString(" •")
		}
		b.WriteByte(' ')
		b.WriteString(printable(sym))
	}
	if s.Dot == len(r.To) {
		b.WriteString(" •")
	}
	fmt.Fprintf(&b, " @%d", s.Origin)
	return b.String()
}

func (ch *Chart) String() string {
	var b strings.Builder
	for i, c := range ch.columns {
		fmt.Fprintf(&b, "column %d", i)
		if i > 0 {
			fmt.Fprintf(&b, " after %q", ch.tokens[i-1].Literal)
		}
		b.WriteString(":\n")
		for _, it := range c.items {
			fmt.Fprintf(&b, "  %s", ch.Describe(it.Situation))
			switch it.from.Via {
			case ViaScan:
				fmt.Fprintf(&b, "  (scan %d:%d)", it.from.Prev.Column, it.from.Prev.Index)
			case ViaComplete:
				fmt.Fprintf(&b, "  (complete %d:%d with %d:%d)",
					it.from.Prev.Column, it.from.Prev.Index, it.from.Done.Column, it.from.Done.Index)
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func printable(sym string) string {
	switch sym {
	case " ":
		return "space"
	case "\n":
		return "newline"
	}
	return sym
}
