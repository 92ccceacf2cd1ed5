// Package parse implements Earley chart parsing for arbitrary context-free
// grammars, including left recursive, ambiguous and empty-producing ones.
//
// A parse fills a Chart with one column of situations per input position,
// closing each column under predict and complete before scanning the next
// token. Every situation derived by scan or complete remembers the items it
// came from, so a recognized input yields a syntax tree, not just a verdict.
package parse

import "fmt"

// Situation is a partially matched rule: Rule indexes the parser's rule
// table, Origin is the column the match started at and Dot counts the right
// hand side symbols matched so far. Situations are compared structurally and
// used directly as map keys.
type Situation struct {
	Rule   int
	Origin int
	Dot    int
}

func (s Situation) advance() Situation {
	return Situation{Rule: s.Rule, Origin: s.Origin, Dot: s.Dot + 1}
}

// Kind classifies a situation by what follows its dot.
type Kind int

const (
	// KindComplete: the dot is at the end of the rule.
	KindComplete Kind = iota
	// KindTerminal: a terminal follows the dot and is scanned.
	KindTerminal
	// KindNonterminal: a nonterminal follows the dot and is predicted.
	KindNonterminal
)

func (k Kind) String() string {
	switch k {
	case KindComplete:
		return "Complete"
	case KindTerminal:
		return "Terminal"
	case KindNonterminal:
		return "Nonterminal"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}
