package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/bumchik2/GrammarAlgorithms/parse"
)

// LineEncoder writes one tab separated line per node in pre-order, for
// grep and awk:
//
//	node	depth	symbol	rule
//	leaf	depth	symbol	position	literal
type LineEncoder struct {
	w    io.Writer
	tree *parse.Node
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(tree *parse.Node) error {
	e.tree = tree
	return write(e.w, e)
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	if e.tree == nil {
		return nil, nil
	}
	e.tree.Walk(func(n *parse.Node, depth int) bool {
		if n.IsTerminal() {
			fmt.Fprintf(&sb, "leaf\t%d\t%q\t%s\t%q\n", depth, n.Symbol, n.Token.Position, n.Token.Literal)
		} else {
			fmt.Fprintf(&sb, "node\t%d\t%s\t%d\n", depth, n.Symbol, n.Rule)
		}
		return true
	})
	return []byte(sb.String()), nil
}
