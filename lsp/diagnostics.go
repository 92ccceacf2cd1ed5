package lsp

import (
	"errors"
	"path/filepath"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bumchik2/GrammarAlgorithms/grammar"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"golang.org/x/exp/ebnf"
)

const source = "earley"

// Analyze loads a grammar from text and reports every problem as a
// diagnostic. The grammar is nil when the text could not be read at all.
// Files ending in ".ebnf" are read as EBNF with start as the start
// production, or the first production when start is empty.
func Analyze(filename, text, start string) (*grammar.Grammar, []protocol.Diagnostic) {
	diagnostics := []protocol.Diagnostic{}

	var g *grammar.Grammar
	var err error
	if filepath.Ext(filename) == ".ebnf" {
		g, err = analyzeEBNF(filename, text, start)
	} else {
		g, err = grammar.Parse(filename, strings.NewReader(text))
	}
	if err != nil {
		return nil, append(diagnostics, errorDiagnostics(err)...)
	}

	if err := g.Validate(); err != nil {
		diagnostics = append(diagnostics, errorDiagnostics(err)...)
	}
	return g, diagnostics
}

func analyzeEBNF(filename, text, start string) (*grammar.Grammar, error) {
	src, err := ebnf.Parse(filename, strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	if start == "" {
		start = firstProduction(src)
	}
	return grammar.FromEBNF(src, start, grammar.SplitLiterals())
}

func firstProduction(src ebnf.Grammar) string {
	var names []string
	for name := range src {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return src[a].Name.StringPos.Offset - src[b].Name.StringPos.Offset
	})
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

func errorDiagnostics(err error) []protocol.Diagnostic {
	var list grammar.ErrorList
	if errors.As(err, &list) {
		var out []protocol.Diagnostic
		for _, e := range list {
			out = append(out, grammarDiagnostic(e))
		}
		return out
	}

	var single *grammar.Error
	if errors.As(err, &single) {
		return []protocol.Diagnostic{grammarDiagnostic(single)}
	}

	// ebnf.Parse returns an unexported slice of errors
	v := reflect.ValueOf(err)
	if v.Kind() == reflect.Slice {
		var out []protocol.Diagnostic
		for i := 0; i < v.Len(); i++ {
			if e, ok := v.Index(i).Interface().(error); ok {
				out = append(out, textDiagnostic(e.Error()))
			}
		}
		return out
	}
	return []protocol.Diagnostic{textDiagnostic(err.Error())}
}

func grammarDiagnostic(e *grammar.Error) protocol.Diagnostic {
	width := utf8.RuneCountInString(e.Symbol)
	if width == 0 {
		width = 1
	}
	return diagnostic(e.Pos.Line, e.Pos.Column, width, e.Msg)
}

// positioned matches messages of the form "file:line:column: message".
var positioned = regexp.MustCompile(`^(?:.*:)?(\d+):(\d+): (.*)$`)

func textDiagnostic(msg string) protocol.Diagnostic {
	if m := positioned.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		col, _ := strconv.Atoi(m[2])
		return diagnostic(line, col, 1, m[3])
	}
	return diagnostic(0, 0, 1, msg)
}

// diagnostic builds an error diagnostic from a one-based line and column.
func diagnostic(line, col, width int, msg string) protocol.Diagnostic {
	if line > 0 {
		line--
	}
	if col > 0 {
		col--
	}
	severity := protocol.DiagnosticSeverityError
	src := source
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(col)},
			End:   protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(col + width)},
		},
		Severity: &severity,
		Source:   &src,
		Message:  msg,
	}
}
