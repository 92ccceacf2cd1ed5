package format

import (
	"encoding/json"
	"io"

	"github.com/bumchik2/GrammarAlgorithms/parse"
)

type JSONEncoder struct {
	w    io.Writer
	tree *parse.Node
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(tree *parse.Node) error {
	e.tree = tree
	return write(e.w, e)
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	data, err := json.MarshalIndent(nodeToJSON(e.tree), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

type jsonNode struct {
	Symbol   string      `json:"symbol"`
	Rule     *int        `json:"rule,omitempty"`
	Text     string      `json:"text"`
	Position *jsonPos    `json:"position,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

type jsonPos struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

func nodeToJSON(n *parse.Node) *jsonNode {
	if n == nil {
		return nil
	}
	jn := &jsonNode{
		Symbol: n.Symbol,
		Text:   n.Text(),
	}
	if n.IsTerminal() {
		jn.Position = &jsonPos{
			Offset: n.Token.Position.Offset,
			Line:   n.Token.Position.Line,
			Column: n.Token.Position.Column,
		}
	} else {
		rule := n.Rule
		jn.Rule = &rule
	}
	for _, c := range n.Children {
		jn.Children = append(jn.Children, nodeToJSON(c))
	}
	return jn
}
