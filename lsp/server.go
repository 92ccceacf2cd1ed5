// Package lsp serves grammar files over the Language Server Protocol:
// diagnostics for malformed grammars, hover on symbols and completion of
// nonterminal names.
package lsp

import (
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bumchik2/GrammarAlgorithms/grammar"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "earley"

type document struct {
	path    string
	text    string
	grammar *grammar.Grammar
}

type Server struct {
	mu      sync.Mutex
	docs    map[string]*document
	start   string
	handler protocol.Handler
	server  *server.Server
	version string
	log     commonlog.Logger
}

// NewServer creates a server. start names the start production of EBNF
// grammars; when empty the first production of each file is used.
func NewServer(version, start string) *Server {
	ls := &Server{
		docs:    make(map[string]*document),
		start:   start,
		version: version,
		log:     commonlog.GetLogger("earley.lsp"),
	}

	ls.handler = protocol.Handler{
		Initialize:             ls.initialize,
		Initialized:            ls.initialized,
		Shutdown:               ls.shutdown,
		SetTrace:               ls.setTrace,
		TextDocumentDidOpen:    ls.textDocumentDidOpen,
		TextDocumentDidChange:  ls.textDocumentDidChange,
		TextDocumentDidClose:   ls.textDocumentDidClose,
		TextDocumentDidSave:    ls.textDocumentDidSave,
		TextDocumentHover:      ls.textDocumentHover,
		TextDocumentCompletion: ls.textDocumentCompletion,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    intPtr(int(protocol.TextDocumentSyncKindFull)),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.HoverProvider = true
	capabilities.CompletionProvider = &protocol.CompletionOptions{}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	ls.log.Info("client initialized")
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			ls.update(ctx, params.TextDocument.URI, textChange.Text)
		}
	}
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.mu.Lock()
	delete(ls.docs, params.TextDocument.URI)
	ls.mu.Unlock()
	return nil
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		ls.update(ctx, params.TextDocument.URI, *params.Text)
	}
	return nil
}

// update re-analyzes a document and publishes its diagnostics.
func (ls *Server) update(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	path, err := uriToPath(uri)
	if err != nil {
		ls.log.Warningf("bad document uri %s: %s", uri, err)
		return
	}

	g, diagnostics := Analyze(path, text, ls.start)
	ls.mu.Lock()
	ls.docs[uri] = &document{path: path, text: text, grammar: g}
	ls.mu.Unlock()

	ls.log.Debugf("%s: %d diagnostics", path, len(diagnostics))
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func (ls *Server) document(uri protocol.DocumentUri) *document {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.docs[uri]
}

func (ls *Server) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := ls.document(params.TextDocument.URI)
	if doc == nil || doc.grammar == nil {
		return nil, nil
	}
	word := wordAt(doc.text, int(params.Position.Line), int(params.Position.Character))
	if word == "" {
		return nil, nil
	}
	text := Describe(doc.grammar, word)
	if text == "" {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: text,
		},
	}, nil
}

func (ls *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc := ls.document(params.TextDocument.URI)
	if doc == nil || doc.grammar == nil {
		return nil, nil
	}

	names := doc.grammar.Nonterminals()
	sort.Strings(names)

	kind := protocol.CompletionItemKindClass
	var items []protocol.CompletionItem
	for _, name := range names {
		detail := strings.Join(ruleStrings(doc.grammar, name), "\n")
		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   &kind,
			Detail: &detail,
		})
	}
	return items, nil
}

// Describe returns a markdown description of symbol in g, or "" if g does
// not know it.
func Describe(g *grammar.Grammar, symbol string) string {
	switch {
	case g.IsNonterminal(symbol):
		var b strings.Builder
		b.WriteString("nonterminal `" + symbol + "`")
		if symbol == g.Start() {
			b.WriteString(" (start)")
		}
		b.WriteString("\n\n```\n")
		for _, r := range ruleStrings(g, symbol) {
			b.WriteString(r)
			b.WriteByte('\n')
		}
		b.WriteString("```\n")
		return b.String()
	case g.IsTerminal(symbol):
		return "terminal `" + symbol + "`"
	}
	return ""
}

func ruleStrings(g *grammar.Grammar, symbol string) []string {
	var out []string
	for _, i := range g.RulesFor(symbol) {
		out = append(out, g.Rule(i).String())
	}
	return out
}

// wordAt returns the symbol under a zero-based line and character position.
func wordAt(text string, line, char int) string {
	lines := strings.Split(text, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	runes := []rune(lines[line])
	if char < 0 || char > len(runes) {
		return ""
	}
	start, end := char, char
	for start > 0 && isWordRune(runes[start-1]) {
		start--
	}
	for end < len(runes) && isWordRune(runes[end]) {
		end++
	}
	return string(runes[start:end])
}

func isWordRune(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '=', '|', '.', '(', ')', '[', ']', '{', '}', '"', '`':
		return false
	}
	return true
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(i int) *protocol.TextDocumentSyncKind {
	v := protocol.TextDocumentSyncKind(i)
	return &v
}
