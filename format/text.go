package format

import (
	"io"

	"github.com/bumchik2/GrammarAlgorithms/parse"
)

// TextEncoder writes a tree one symbol per line, each child indented two
// spaces below its parent.
type TextEncoder struct {
	w    io.Writer
	tree *parse.Node
}

func NewTextEncoder(w io.Writer) *TextEncoder {
	return &TextEncoder{w: w}
}

func (e *TextEncoder) Encode(tree *parse.Node) error {
	e.tree = tree
	return write(e.w, e)
}

func (e *TextEncoder) MarshalText() ([]byte, error) {
	if e.tree == nil {
		return nil, nil
	}
	return []byte(e.tree.String()), nil
}
