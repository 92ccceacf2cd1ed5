package grammar

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("invalid grammar")

// Error is a single problem found in a grammar.
type Error struct {
	Pos    Pos
	Symbol string
	Msg    string
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return ErrInvalid
}

// ErrorList collects every problem found in one pass.
type ErrorList []*Error

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

func (l ErrorList) Unwrap() error {
	return ErrInvalid
}

// Validate reports configuration errors that would make parsing meaningless:
// a missing or terminal start symbol, symbols never classified, and
// nonterminals that are referenced but never defined.
func (g *Grammar) Validate() error {
	var errs ErrorList
	add := func(pos Pos, symbol, format string, args ...any) {
		errs = append(errs, &Error{Pos: pos, Symbol: symbol, Msg: fmt.Sprintf(format, args...)})
	}

	switch {
	case g.start == "":
		add(Pos{}, "", "no start symbol")
	case g.IsTerminal(g.start):
		add(Pos{}, g.start, "start symbol %q is a terminal", g.start)
	case len(g.byLHS[g.start]) == 0:
		add(Pos{}, g.start, "start symbol %q has no rules", g.start)
	}

	reported := make(map[string]bool)
	for _, r := range g.rules {
		for _, s := range r.To {
			if reported[s] {
				continue
			}
			switch g.classes[s] {
			case unclassified:
				reported[s] = true
				add(r.Pos, s, "rule %s: symbol %q is neither a terminal nor a nonterminal", r, s)
			case nonterminal:
				if len(g.byLHS[s]) == 0 {
					reported[s] = true
					add(r.Pos, s, "rule %s: nonterminal %q has no rules", r, s)
				}
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
