// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpr

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Expr is a parsed GPR expression.
type Expr interface {
	// Eval returns the truth value of the expression under the
	// assignment a. Every identifier in the expression is resolved,
	// so a missing gene is always reported as a *RefError even where
	// boolean short-circuiting would make its value irrelevant.
	Eval(a Assignment) (bool, error)

	String() string
}

// Ident is a gene identifier leaf.
type Ident string

// Not is a negated expression.
type Not struct {
	X Expr
}

// And is the conjunction of its terms.
type And []Expr

// Or is the disjunction of its terms.
type Or []Expr

func (e Ident) String() string { return string(e) }
func (e Not) String() string   { return "not " + join([]Expr{e.X}, "") }
func (e And) String() string   { return join(e, " and ") }
func (e Or) String() string    { return join(e, " or ") }

func join(terms []Expr, sep string) string {
	s := make([]string, len(terms))
	for i, t := range terms {
		switch t.(type) {
		case And, Or:
			s[i] = "(" + t.String() + ")"
		default:
			s[i] = t.String()
		}
	}
	return strings.Join(s, sep)
}

// SyntaxError is returned by Parse for a malformed GPR.
type SyntaxError struct {
	Offset int // byte offset of the error in the GPR
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("gpr: syntax error at offset %d: %s", e.Offset, e.Msg)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of expression"
	case tokIdent:
		return "identifier"
	case tokAnd:
		return "and"
	case tokOr:
		return "or"
	case tokNot:
		return "not"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	}
	return "unknown token"
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

func isDelim(r rune) bool { return unicode.IsSpace(r) || r == '(' || r == ')' }

func lex(s string) []token {
	var toks []token
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		default:
			j := strings.IndexFunc(s[i:], isDelim)
			if j < 0 {
				j = len(s)
			} else {
				j += i
			}
			t := token{kind: tokIdent, text: s[i:j], pos: i}
			switch strings.ToLower(t.text) {
			case "and":
				t.kind = tokAnd
			case "or":
				t.kind = tokOr
			case "not":
				t.kind = tokNot
			}
			toks = append(toks, t)
			i = j
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(s)})
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...interface{}) error {
	return &SyntaxError{Offset: t.pos, Msg: fmt.Sprintf(format, args...)}
}

// Parse parses a GPR. Operators are and, or and not in any letter case,
// with not binding tighter than and, and and binding tighter than or.
// Every other whitespace and parenthesis delimited word is an identifier.
// Malformed input, including an empty GPR, results in a *SyntaxError.
func Parse(gpr string) (Expr, error) {
	p := &parser{toks: lex(gpr)}
	if p.peek().kind == tokEOF {
		return nil, &SyntaxError{Offset: 0, Msg: "empty expression"}
	}
	e, err := p.or()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		if t.kind == tokRParen {
			return nil, p.errorf(t, "unbalanced ')'")
		}
		return nil, p.errorf(t, "unexpected %v %q", t.kind, t.text)
	}
	return e, nil
}

func (p *parser) or() (Expr, error) {
	x, err := p.and()
	if err != nil {
		return nil, err
	}
	terms := []Expr{x}
	for p.peek().kind == tokOr {
		p.next()
		y, err := p.and()
		if err != nil {
			return nil, err
		}
		terms = append(terms, y)
	}
	if len(terms) == 1 {
		return x, nil
	}
	return Or(terms), nil
}

func (p *parser) and() (Expr, error) {
	x, err := p.unary()
	if err != nil {
		return nil, err
	}
	terms := []Expr{x}
	for p.peek().kind == tokAnd {
		p.next()
		y, err := p.unary()
		if err != nil {
			return nil, err
		}
		terms = append(terms, y)
	}
	if len(terms) == 1 {
		return x, nil
	}
	return And(terms), nil
}

func (p *parser) unary() (Expr, error) {
	if p.peek().kind == tokNot {
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return Not{X: x}, nil
	}
	return p.primary()
}

func (p *parser) primary() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokIdent:
		return Ident(t.text), nil
	case tokLParen:
		x, err := p.or()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, p.errorf(c, "missing ')' for '(' at offset %d", t.pos)
		}
		return x, nil
	case tokEOF:
		return nil, p.errorf(t, "unexpected end of expression")
	}
	return nil, p.errorf(t, "unexpected %v", t.kind)
}
