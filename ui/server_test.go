package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const brackets = "S\n2\nS 0\nS 4 ( S ) S\n"

func TestRun(t *testing.T) {
	result := Run(Request{Syntax: "cfg", Grammar: brackets, Input: "()"})
	require.Empty(t, result.Error)
	assert.True(t, result.Accepted)
	assert.Equal(t, []string{"S -> ε", "S -> ( S ) S"}, result.Rules)
	assert.Equal(t, "S\n  (\n  S\n  )\n  S\n", result.TreeText)
	require.Len(t, result.Chart, 3)
	assert.Equal(t, "(", result.Chart[0].Token)
	assert.Equal(t, "", result.Chart[2].Token)

	var tree struct {
		Symbol string `json:"symbol"`
		Text   string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(result.Tree, &tree))
	assert.Equal(t, "S", tree.Symbol)
	assert.Equal(t, "()", tree.Text)
}

func TestRunRejected(t *testing.T) {
	result := Run(Request{Grammar: brackets, Input: "(()"})
	assert.Empty(t, result.Error)
	assert.False(t, result.Accepted)
	assert.Nil(t, result.Tree)
	assert.NotEmpty(t, result.Chart)
}

func TestRunEBNF(t *testing.T) {
	result := Run(Request{Syntax: "ebnf", Grammar: `S = "a" { "b" } .`, Start: "S", Input: "abbb"})
	require.Empty(t, result.Error)
	assert.True(t, result.Accepted)

	result = Run(Request{Syntax: "ebnf", Grammar: `S = "a" .`, Input: "a"})
	assert.Contains(t, result.Error, "start production is required")
}

func TestRunInvalidGrammar(t *testing.T) {
	result := Run(Request{Grammar: "S\n1\nS 1 Expr\n", Input: ""})
	assert.Contains(t, result.Error, `"Expr"`)

	result = Run(Request{Syntax: "yacc", Grammar: brackets})
	assert.Equal(t, "unknown grammar syntax: yacc", result.Error)
}

func TestServer(t *testing.T) {
	s, err := NewServer()
	require.NoError(t, err)

	t.Run("index", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "<h1>earley playground</h1>")
	})

	t.Run("json", func(t *testing.T) {
		body, _ := json.Marshal(Request{Grammar: brackets, Input: "(())"})
		req := httptest.NewRequest("POST", "/parse", strings.NewReader(string(body)))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var result Result
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
		assert.True(t, result.Accepted)
	})

	t.Run("json error", func(t *testing.T) {
		body, _ := json.Marshal(Request{Grammar: "S\n1\n"})
		req := httptest.NewRequest("POST", "/parse", strings.NewReader(string(body)))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("form", func(t *testing.T) {
		form := url.Values{"syntax": {"cfg"}, "grammar": {brackets}, "input": {"(()"}}
		req := httptest.NewRequest("POST", "/parse", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `<h2 class="rejected">rejected</h2>`)
	})

	t.Run("bad json", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/parse", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
