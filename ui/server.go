// Package ui serves a browser playground: paste a grammar and an input, see
// whether it is accepted, the witness tree and the chart.
package ui

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/bumchik2/GrammarAlgorithms/format"
	"github.com/bumchik2/GrammarAlgorithms/grammar"
	"github.com/bumchik2/GrammarAlgorithms/parse"
	"github.com/tliron/commonlog"
	"golang.org/x/exp/ebnf"
)

//go:embed templates
var embeddedFS embed.FS

// maxInput bounds the grammar and input accepted per request.
const maxInput = 1 << 20

// Request is a grammar and an input to run it on. Syntax is "cfg" for the
// plain text format or "ebnf"; Start is required for EBNF.
type Request struct {
	Syntax  string `json:"syntax"`
	Grammar string `json:"grammar"`
	Start   string `json:"start,omitempty"`
	Input   string `json:"input"`
}

// Result is what the playground shows for a Request.
type Result struct {
	Request  Request         `json:"request"`
	Error    string          `json:"error,omitempty"`
	Accepted bool            `json:"accepted"`
	Rules    []string        `json:"rules,omitempty"`
	Tree     json.RawMessage `json:"tree,omitempty"`
	TreeText string          `json:"treeText,omitempty"`
	Chart    []Column        `json:"chart,omitempty"`
}

type Column struct {
	Index      int      `json:"index"`
	Token      string   `json:"token,omitempty"`
	Situations []string `json:"situations"`
}

type Server struct {
	templateFS fs.FS
	mux        *http.ServeMux
	log        commonlog.Logger
}

func NewServer() (*Server, error) {
	templateFS := overlayFS("ui/templates", mustSub(embeddedFS, "templates"))

	// fail early on a broken template
	if _, err := parseTemplates(templateFS); err != nil {
		return nil, err
	}

	s := &Server{
		templateFS: templateFS,
		mux:        http.NewServeMux(),
		log:        commonlog.GetLogger("earley.ui"),
	}

	s.mux.HandleFunc("POST /parse", s.handleParse)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

var funcMap = template.FuncMap{
	"join": strings.Join,
}

func parseTemplates(fsys fs.FS) (*template.Template, error) {
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

// render re-reads the templates on every request so edits under
// ui/templates show up without a restart.
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, err := parseTemplates(s.templateFS)
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log.Errorf("render %s: %s", name, err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", Result{Request: Request{
		Syntax:  "cfg",
		Grammar: "S\n2\nS 0\nS 4 ( S ) S\n",
		Input:   "(())()",
	}})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxInput)

	var req Request
	wantJSON := r.Header.Get("Accept") == "application/json"
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form data: "+err.Error(), http.StatusBadRequest)
			return
		}
		req = Request{
			Syntax:  r.FormValue("syntax"),
			Grammar: r.FormValue("grammar"),
			Start:   r.FormValue("start"),
			Input:   r.FormValue("input"),
		}
	}

	result := Run(req)
	s.log.Debugf("parse %d bytes of %s grammar: accepted=%t", len(req.Input), req.Syntax, result.Accepted)

	if wantJSON {
		w.Header().Set("Content-Type", "application/json")
		if result.Error != "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}
		json.NewEncoder(w).Encode(result)
		return
	}

	s.render(w, "index.html", result)
}

// Run loads the grammar of req and parses its input character by
// character. Problems with the grammar are reported in Result.Error; a
// rejected input is not an error.
func Run(req Request) Result {
	result := Result{Request: req}

	g, err := loadGrammar(req)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	p, err := parse.New(g)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	for _, rule := range g.Rules() {
		result.Rules = append(result.Rules, rule.String())
	}

	chart := p.ParseString(req.Input)
	result.Accepted = chart.Accepted()
	result.Chart = columns(chart)

	if !result.Accepted {
		return result
	}
	tree, err := chart.Tree()
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.TreeText = tree.String()

	var buf bytes.Buffer
	if err := format.NewJSONEncoder(&buf).Encode(tree); err != nil {
		result.Error = err.Error()
		return result
	}
	result.Tree = json.RawMessage(bytes.TrimSpace(buf.Bytes()))
	return result
}

func loadGrammar(req Request) (*grammar.Grammar, error) {
	switch req.Syntax {
	case "", "cfg":
		return grammar.Parse("grammar", strings.NewReader(req.Grammar))
	case "ebnf":
		if req.Start == "" {
			return nil, fmt.Errorf("start production is required for EBNF grammars")
		}
		src, err := ebnf.Parse("grammar.ebnf", strings.NewReader(req.Grammar))
		if err != nil {
			return nil, err
		}
		return grammar.FromEBNF(src, req.Start, grammar.SplitLiterals())
	}
	return nil, fmt.Errorf("unknown grammar syntax: %s", req.Syntax)
}

func columns(chart *parse.Chart) []Column {
	tokens := chart.Tokens()
	out := make([]Column, chart.Len())
	for i := range out {
		col := chart.Column(i)
		out[i].Index = i
		if i < len(tokens) {
			out[i].Token = tokens[i].Literal
		}
		for _, s := range col.Situations() {
			out[i].Situations = append(out[i].Situations, chart.Describe(s))
		}
	}
	return out
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

type overlayFSType struct {
	primary   fs.FS
	secondary fs.FS
}

// overlayFS prefers files under primaryPath on disk and falls back to
// secondary.
func overlayFS(primaryPath string, secondary fs.FS) fs.FS {
	return &overlayFSType{
		primary:   os.DirFS(primaryPath),
		secondary: secondary,
	}
}

func (o *overlayFSType) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	return o.secondary.Open(name)
}

func (o *overlayFSType) ReadDir(name string) ([]fs.DirEntry, error) {
	entries := make(map[string]fs.DirEntry)

	if rd, ok := o.secondary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	if rd, ok := o.primary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	result := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, e)
	}
	return result, nil
}
