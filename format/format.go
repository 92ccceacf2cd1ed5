// Package format writes syntax trees in human and machine readable forms.
package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/bumchik2/GrammarAlgorithms/parse"
)

// Encoder writes one tree per call to Encode.
type Encoder interface {
	encoding.TextMarshaler
	Encode(tree *parse.Node) error
}

// NewEncoder returns the encoder registered under name: "text", "json",
// "line" or "trace".
func NewEncoder(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "text":
		return NewTextEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	case "line":
		return NewLineEncoder(w), nil
	case "trace":
		return NewTraceEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format: %s", name)
}

// write marshals with m and copies the result to w.
func write(w io.Writer, m encoding.TextMarshaler) error {
	text, err := m.MarshalText()
	if err != nil {
		return err
	}
	_, err = w.Write(text)
	return err
}
