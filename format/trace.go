package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/bumchik2/GrammarAlgorithms/parse"
)

// TraceEncoder writes the depth-first walk of a tree: each node's symbol,
// and around every child the lines "going down" and "going up".
type TraceEncoder struct {
	w    io.Writer
	tree *parse.Node
}

func NewTraceEncoder(w io.Writer) *TraceEncoder {
	return &TraceEncoder{w: w}
}

func (e *TraceEncoder) Encode(tree *parse.Node) error {
	e.tree = tree
	return write(e.w, e)
}

func (e *TraceEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	if e.tree != nil {
		trace(&sb, e.tree)
	}
	return []byte(sb.String()), nil
}

func trace(sb *strings.Builder, n *parse.Node) {
	fmt.Fprintf(sb, "%q\n", n.Symbol)
	for _, c := range n.Children {
		sb.WriteString("going down\n")
		trace(sb, c)
		sb.WriteString("going up\n")
	}
}
