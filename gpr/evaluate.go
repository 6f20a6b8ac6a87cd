// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpr

import (
	"errors"

	"go.uber.org/zap"
)

// Failure records a GPR that could not be evaluated.
type Failure struct {
	Reaction string
	GPR      string
	Err      error // *SyntaxError or *RefError
}

type compiled struct {
	gpr  string
	expr Expr
}

// Evaluate decides the presence of every reaction in t for each organism
// of res. A reaction is present in an organism when any of its GPRs holds.
//
// A GPR that fails to parse or that refers to a gene outside the clusters
// of res contributes nothing, and its reaction is left out of the returned
// Matrix. Each failing reaction/GPR pair is logged once as a warning, syntax
// errors before reference errors, and returned in the same order.
func Evaluate(res *Resolution, t *Table, log *zap.Logger) (*Matrix, []Failure) {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		syntax, refs []Failure
		seen         = make(map[[2]string]bool)
		failed       = make(map[string]bool)
		exprs        = make([][]compiled, len(t.Reactions))
	)
	fail := func(rxn, gpr string, err error) {
		failed[rxn] = true
		key := [2]string{rxn, gpr}
		if seen[key] {
			return
		}
		seen[key] = true
		f := Failure{Reaction: rxn, GPR: gpr, Err: err}
		var se *SyntaxError
		if errors.As(err, &se) {
			syntax = append(syntax, f)
		} else {
			refs = append(refs, f)
		}
	}

	domain := res.Domain()
	for i, r := range t.Reactions {
		for _, g := range r.GPRs {
			e, err := Parse(g)
			if err != nil {
				fail(r.ID, g, err)
				continue
			}
			if _, err = e.Eval(domain); err != nil {
				fail(r.ID, g, err)
				continue
			}
			exprs[i] = append(exprs[i], compiled{gpr: g, expr: e})
		}
	}

	for _, f := range syntax {
		log.Warn("syntax error in GPR (probably a missing parenthesis)",
			zap.String("reaction", f.Reaction), zap.String("gpr", f.GPR), zap.Error(f.Err))
	}
	for _, f := range refs {
		log.Warn("unresolved name in GPR (likely a bad gene name)",
			zap.String("reaction", f.Reaction), zap.String("gpr", f.GPR), zap.Error(f.Err))
	}

	m := &Matrix{Organisms: res.Organisms}
	rows := make([]int, len(t.Reactions))
	for i, r := range t.Reactions {
		if failed[r.ID] {
			rows[i] = -1
			continue
		}
		rows[i] = len(m.Reactions)
		m.Reactions = append(m.Reactions, r.ID)
		m.Presence = append(m.Presence, make([]bool, len(res.Organisms)))
	}

	for j, org := range res.Organisms {
		a := res.Assignment(org)
		for i := range t.Reactions {
			if rows[i] < 0 {
				continue
			}
			var present bool
			for _, c := range exprs[i] {
				// a has the same genes as domain.
				v, _ := c.expr.Eval(a)
				present = present || v
			}
			m.Presence[rows[i]][j] = present
		}
		log.Debug("evaluated organism", zap.String("organism", org), zap.Int("reactions", len(m.Reactions)))
	}

	return m, append(syntax, refs...)
}
