package parse

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bumchik2/GrammarAlgorithms/grammar"
	"github.com/bumchik2/GrammarAlgorithms/lex"
)

// NoRule is the Rule of a leaf node.
const NoRule = -1

// Node is a node of a syntax tree. Leaves have a non-nil Token and hold the
// terminal they matched; interior nodes hold a nonterminal, the index of the
// rule that derived it and one child per right hand side symbol. A node owns
// its children exclusively.
type Node struct {
	Symbol   string
	Rule     int
	Children []*Node
	Token    *lex.Token
}

// IsTerminal returns true if this is a leaf node (token).
func (n *Node) IsTerminal() bool {
	return n.Token != nil
}

// Text returns the input covered by the node: the literals of its leaves,
// left to right.
func (n *Node) Text() string {
	var b strings.Builder
	n.Walk(func(node *Node, _ int) bool {
		if node.Token != nil {
			b.WriteString(node.Token.Literal)
		}
		return true
	})
	return b.String()
}

// Walk calls fn for n and its descendants in pre-order. Returning false from
// fn skips the node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Clone returns a deep copy of the tree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{Symbol: n.Symbol, Rule: n.Rule}
	if n.Token != nil {
		tok := *n.Token
		out.Token = &tok
	}
	if n.Children != nil {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// String renders the tree one symbol per line, children indented below their
// parent.
func (n *Node) String() string {
	var b strings.Builder
	n.Walk(func(node *Node, depth int) bool {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(printable(node.Symbol))
		b.WriteByte('\n')
		return true
	})
	return b.String()
}

// Check verifies that every interior node is derived by its rule in g: the
// rule's left hand side is the node's symbol and the children's symbols are
// its right hand side.
func (n *Node) Check(g *grammar.Grammar) error {
	var err error
	n.Walk(func(node *Node, _ int) bool {
		if err != nil || node.IsTerminal() {
			return false
		}
		if node.Rule < 0 || node.Rule >= g.Len() {
			err = fmt.Errorf("node %s: rule %d out of range", node.Symbol, node.Rule)
			return false
		}
		r := g.Rule(node.Rule)
		syms := make([]string, len(node.Children))
		for i, c := range node.Children {
			syms[i] = c.Symbol
		}
		if r.From != node.Symbol || !slices.Equal(r.To, syms) {
			err = fmt.Errorf("node %s %v does not match rule %s", node.Symbol, syms, r)
			return false
		}
		return true
	})
	return err
}

// Tree returns one derivation of the parsed input. It returns
// ErrNotRecognized if the chart did not accept.
//
// When the grammar is ambiguous the tree follows the provenance each
// situation got on its first insertion, which depends only on rule
// declaration order and the order situations were added. The same grammar
// and input always give the same tree.
func (ch *Chart) Tree() (*Node, error) {
	last := len(ch.columns) - 1
	idx, ok := ch.columns[last].seen[ch.accepting()]
	if !ok {
		return nil, ErrNotRecognized
	}
	root := ch.unwind(Ref{Column: last, Index: idx})
	return root.Children[0], nil
}

// unwind builds the node for the complete situation at ref, walking its
// provenance from the last right hand side symbol back to the first.
func (ch *Chart) unwind(ref Ref) *Node {
	top := ch.item(ref)
	r := ch.parser.rules[top.Rule]
	node := &Node{
		Symbol:   r.From,
		Rule:     top.Rule,
		Children: make([]*Node, len(r.To)),
	}

	for it := top; it.Dot > 0; it = ch.item(it.from.Prev) {
		switch it.from.Via {
		case ViaScan:
			tok := ch.tokens[it.from.Prev.Column]
			node.Children[it.Dot-1] = &Node{Symbol: r.To[it.Dot-1], Rule: NoRule, Token: &tok}
		case ViaComplete:
			node.Children[it.Dot-1] = ch.unwind(it.from.Done)
		default:
			panic(fmt.Sprintf("bug: situation %s has no provenance", ch.Describe(it.Situation)))
		}
	}
	return node
}
