// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpr

import "fmt"

// Assignment holds the presence of genes in a single organism.
type Assignment map[Gene]bool

// RefError is returned when a GPR refers to an identifier that has no
// value in an Assignment. This is usually a gene that is not in any
// cluster of the run, or a word that is not a gene identifier at all.
type RefError struct {
	Name string
}

func (e *RefError) Error() string {
	return fmt.Sprintf("gpr: unresolved gene reference %q", e.Name)
}

func (e Ident) Eval(a Assignment) (bool, error) {
	v, ok := a[Gene(e)]
	if !ok {
		return false, &RefError{Name: string(e)}
	}
	return v, nil
}

func (e Not) Eval(a Assignment) (bool, error) {
	v, err := e.X.Eval(a)
	return !v, err
}

func (e And) Eval(a Assignment) (bool, error) {
	v := true
	for _, t := range e {
		tv, err := t.Eval(a)
		if err != nil {
			return false, err
		}
		v = v && tv
	}
	return v, nil
}

func (e Or) Eval(a Assignment) (bool, error) {
	var v bool
	for _, t := range e {
		tv, err := t.Eval(a)
		if err != nil {
			return false, err
		}
		v = v || tv
	}
	return v, nil
}

// Idents returns the identifiers of e in order of appearance.
func Idents(e Expr) []Ident {
	var ids []Ident
	var walk func(Expr)
	walk = func(e Expr) {
		switch e := e.(type) {
		case Ident:
			ids = append(ids, e)
		case Not:
			walk(e.X)
		case And:
			for _, t := range e {
				walk(t)
			}
		case Or:
			for _, t := range e {
				walk(t)
			}
		}
	}
	walk(e)
	return ids
}
