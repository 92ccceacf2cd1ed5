package parse

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/bumchik2/GrammarAlgorithms/grammar"
	"github.com/bumchik2/GrammarAlgorithms/lex"
)

const bracketGrammar = `
S'
3
S' 1 S
S 0
S 4 ( S ) S
`

const arithmeticGrammar = `
S'
5
S' 1 S
S 3 S + U
S 1 U
U 1 n
U 3 ( S )
`

const ambiguousGrammar = `
E
2
E 3 E + E
E 1 n
`

func mustGrammar(t *testing.T, src string) *grammar.Grammar {
	t.Helper()
	g, err := grammar.Parse("test", strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse grammar: %v", err)
	}
	return g
}

func mustParser(t *testing.T, src string) *Parser {
	t.Helper()
	p, err := New(mustGrammar(t, src))
	if err != nil {
		t.Fatalf("new parser: %v", err)
	}
	return p
}

func TestRecognizeBrackets(t *testing.T) {
	p := mustParser(t, bracketGrammar)

	tests := []struct {
		input string
		want  bool
	}{
		{"(())()", true},
		{"(()", false},
		{"", true},
		{"((()())(()())())", true},
		{")(", false},
		{"()))", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := p.Recognize(tt.input); got != tt.want {
				t.Errorf("Recognize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRecognizeArithmetic(t *testing.T) {
	p := mustParser(t, arithmeticGrammar)

	input := "n+((n+(n+n+n)+n)+n)+n"
	tree, err := p.BuildTree(input)
	if err != nil {
		t.Fatalf("BuildTree(%q): %v", input, err)
	}

	if tree.Symbol != "S'" || len(tree.Children) != 1 {
		t.Fatalf("root = %s with %d children, want S' with 1", tree.Symbol, len(tree.Children))
	}
	s := tree.Children[0]
	if got := p.Rule(s.Rule).String(); got != "S -> S + U" {
		t.Errorf("outermost split = %s, want S -> S + U", got)
	}
	if got := s.Children[2].Text(); got != "n" {
		t.Errorf("last operand = %q, want %q", got, "n")
	}
	if got := tree.Text(); got != input {
		t.Errorf("Text() = %q, want %q", got, input)
	}

	for _, bad := range []string{"n+", "+n", "(n", "nn", "n+(n+n))"} {
		if p.Recognize(bad) {
			t.Errorf("Recognize(%q) = true, want false", bad)
		}
	}
}

func TestLeftRecursion(t *testing.T) {
	p := mustParser(t, `
S'
3
S' 1 S
S 2 S a
S 1 a
`)
	if !p.Recognize("aaaaaaaaaa") {
		t.Error("expected aaaaaaaaaa to be recognized")
	}
	if p.Recognize("") {
		t.Error("expected empty input to be rejected")
	}
}

func TestNullableCompletion(t *testing.T) {
	// A completes in the column it started in, before S -> A • A x exists.
	p := mustParser(t, `
S
3
S 3 A A x
A 0
A 1 a
`)

	tests := []struct {
		input string
		want  bool
	}{
		{"x", true},
		{"ax", true},
		{"aax", true},
		{"aaax", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := p.Recognize(tt.input); got != tt.want {
			t.Errorf("Recognize(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}

	tree, err := p.BuildTree("x")
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	if len(tree.Children) != 3 || len(tree.Children[0].Children) != 0 || len(tree.Children[1].Children) != 0 {
		t.Errorf("unexpected tree:\n%s", tree)
	}
}

func TestEmptyInput(t *testing.T) {
	nullable := mustParser(t, bracketGrammar)
	ch := nullable.ParseString("")
	if ch.Len() != 1 || !ch.Accepted() {
		t.Fatalf("empty input: %d columns, accepted %v", ch.Len(), ch.Accepted())
	}
	tree, err := ch.Tree()
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if tree.Text() != "" {
		t.Errorf("Text() = %q, want empty", tree.Text())
	}

	notNullable := mustParser(t, arithmeticGrammar)
	if notNullable.Recognize("") {
		t.Error("arithmetic grammar should not derive the empty string")
	}
}

func TestAmbiguousTreeIsDeterministic(t *testing.T) {
	g := mustGrammar(t, ambiguousGrammar)
	input := "n+n+n+n"

	first, err := BuildTree(g, input)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	if err := first.Check(g); err != nil {
		t.Errorf("Check: %v", err)
	}
	if first.Text() != input {
		t.Errorf("Text() = %q, want %q", first.Text(), input)
	}

	for i := 0; i < 10; i++ {
		again, err := BuildTree(g, input)
		if err != nil {
			t.Fatalf("BuildTree #%d: %v", i, err)
		}
		if again.String() != first.String() {
			t.Fatalf("tree #%d differs:\n%s\nwant:\n%s", i, again, first)
		}
	}
}

func TestTreeWithoutAcceptance(t *testing.T) {
	g := mustGrammar(t, arithmeticGrammar)

	ok, err := Recognize(g, "n+nn")
	if err != nil || ok {
		t.Fatalf("Recognize = %v, %v; want false, nil", ok, err)
	}

	_, err = BuildTree(g, "n+nn")
	if !errors.Is(err, ErrNotRecognized) {
		t.Errorf("BuildTree error = %v, want ErrNotRecognized", err)
	}
}

func TestNewRejectsInvalidGrammar(t *testing.T) {
	g := mustGrammar(t, `
S
1
S 2 Expr x
`)
	_, err := New(g)
	if !errors.Is(err, grammar.ErrInvalid) {
		t.Fatalf("New error = %v, want grammar.ErrInvalid", err)
	}
}

func TestSoundnessOverAllShortStrings(t *testing.T) {
	g := mustGrammar(t, bracketGrammar)
	p, err := New(g)
	if err != nil {
		t.Fatal(err)
	}

	var inputs []string
	var gen func(prefix string)
	gen = func(prefix string) {
		inputs = append(inputs, prefix)
		if len(prefix) == 8 {
			return
		}
		gen(prefix + "(")
		gen(prefix + ")")
	}
	gen("")

	for _, input := range inputs {
		ch := p.ParseString(input)
		if got, want := ch.Accepted(), balanced(input); got != want {
			t.Errorf("Recognize(%q) = %v, want %v", input, got, want)
			continue
		}
		if !ch.Accepted() {
			continue
		}
		tree, err := ch.Tree()
		if err != nil {
			t.Errorf("Tree(%q): %v", input, err)
			continue
		}
		if tree.Text() != input {
			t.Errorf("Tree(%q).Text() = %q", input, tree.Text())
		}
		if err := tree.Check(g); err != nil {
			t.Errorf("Tree(%q): %v", input, err)
		}
	}
}

func balanced(s string) bool {
	depth := 0
	for _, c := range s {
		if c == '(' {
			depth++
		} else {
			depth--
		}
		if depth < 0 {
			return false
		}
	}
	return depth == 0
}

func TestClosureIsIdempotent(t *testing.T) {
	p := mustParser(t, arithmeticGrammar)
	ch := p.ParseString("(n+n)+n")
	if !ch.Accepted() {
		t.Fatal("expected input to be recognized")
	}

	for i := 0; i < ch.Len(); i++ {
		before := ch.Column(i).Len()
		if passes := p.closure(ch, i); passes != 0 {
			t.Errorf("column %d: closure added situations in %d passes", i, passes)
		}
		if after := ch.Column(i).Len(); after != before {
			t.Errorf("column %d: %d situations, had %d", i, after, before)
		}
	}
}

func TestColumnDeduplication(t *testing.T) {
	p := mustParser(t, bracketGrammar)
	ch := newChart(p, nil)

	s := Situation{Rule: 2, Origin: 0, Dot: 0}
	if !ch.insert(0, s, Provenance{}) {
		t.Error("first insert should add the situation")
	}
	if ch.insert(0, s, Provenance{Via: ViaScan}) {
		t.Error("duplicate insert should be a no-op")
	}
	if !ch.insert(0, Situation{Rule: 2, Origin: 0, Dot: 1}, Provenance{}) {
		t.Error("situation with another dot should be added")
	}

	if got := ch.Column(0).Len(); got != 2 {
		t.Errorf("expected 2 situations, got %d", got)
	}
	from, ok := ch.Column(0).Provenance(s)
	if !ok || from.Via != ViaNone {
		t.Errorf("provenance = %v, %v; first insertion should win", from, ok)
	}
}

func TestProvenance(t *testing.T) {
	p := mustParser(t, bracketGrammar)
	ch := p.ParseString("()")

	accepting := Situation{Rule: p.AugmentRule(), Origin: 0, Dot: 1}
	from, ok := ch.Column(2).Provenance(accepting)
	if !ok {
		t.Fatal("accepting situation missing")
	}
	if from.Via != ViaComplete || from.Prev.Column != 0 || from.Done.Column != 2 {
		t.Errorf("accepting provenance = %+v", from)
	}

	// S -> ( • S ) S @0 was scanned from S -> • ( S ) S @0
	scanned := Situation{Rule: 2, Origin: 0, Dot: 1}
	from, ok = ch.Column(1).Provenance(scanned)
	if !ok || from.Via != ViaScan || from.Prev.Column != 0 {
		t.Errorf("scan provenance = %+v, %v", from, ok)
	}
	if got := ch.Column(0).Situations()[from.Prev.Index]; got != (Situation{Rule: 2, Origin: 0, Dot: 0}) {
		t.Errorf("scan predecessor = %+v", got)
	}
}

func TestColumnsOnlyGrow(t *testing.T) {
	p := mustParser(t, arithmeticGrammar)
	ch := p.ParseString("n+(n)")

	for i := 0; i < ch.Len(); i++ {
		col := ch.Column(i)
		seen := make(map[Situation]bool)
		for _, s := range col.Situations() {
			if seen[s] {
				t.Errorf("column %d holds %s twice", i, ch.Describe(s))
			}
			seen[s] = true
			if s.Origin > i {
				t.Errorf("column %d holds %s with a later origin", i, ch.Describe(s))
			}
		}
	}
}

func TestParseTokens(t *testing.T) {
	g := mustGrammar(t, `
Sum
3
Sum 3 Sum Plus Number
Sum 1 Number
Plus 1 +
`)
	if err := g.AddTerminal("Number"); err != nil {
		t.Fatal(err)
	}
	p, err := New(g, WithSkipKinds("WhiteSpace"))
	if err != nil {
		t.Fatal(err)
	}

	tokens := []lex.Token{
		{Kind: "Number", Literal: "12"},
		{Kind: "WhiteSpace", Literal: " "},
		{Kind: "Punct", Literal: "+"},
		{Kind: "WhiteSpace", Literal: " "},
		{Kind: "Number", Literal: "30"},
		{Kind: lex.KindEOF},
	}

	ch := p.Parse(tokens)
	if !ch.Accepted() {
		t.Fatalf("expected tokens to be recognized:\n%s", ch)
	}
	if len(ch.Tokens()) != 3 {
		t.Errorf("expected skipped tokens to be dropped, got %d tokens", len(ch.Tokens()))
	}
	tree, err := ch.Tree()
	if err != nil {
		t.Fatal(err)
	}
	if got := tree.Text(); got != "12+30" {
		t.Errorf("Text() = %q, want %q", got, "12+30")
	}
}

func TestConcurrentParses(t *testing.T) {
	p := mustParser(t, arithmeticGrammar)
	inputs := map[string]bool{
		"n+n":       true,
		"(n+n)+n":   true,
		"n+":        false,
		"((n))":     true,
		"n+(n+n+n)": true,
		"()":        false,
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		for input, want := range inputs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if got := p.Recognize(input); got != want {
					t.Errorf("Recognize(%q) = %v, want %v", input, got, want)
				}
			}()
		}
	}
	wg.Wait()
}

func TestAugmentingRuleIsFresh(t *testing.T) {
	p := mustParser(t, bracketGrammar)
	r := p.Rule(p.AugmentRule())
	if r.From != "S''" || len(r.To) != 1 || r.To[0] != "S'" {
		t.Errorf("augmenting rule = %s, want S'' -> S'", r)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindComplete, "Complete"},
		{KindTerminal, "Terminal"},
		{KindNonterminal, "Nonterminal"},
		{Kind(42), "Kind(42)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}
