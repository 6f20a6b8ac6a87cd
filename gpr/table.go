// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gpr evaluates gene-protein-reaction relationships against gene
// cluster membership to decide which reactions are present in which
// organisms.
//
// A GPR is a boolean expression over gene identifiers of the form
// fig|<digits>.<digits>.peg.<digits> combined with and, or and not and
// grouped with parentheses. A reaction may have several GPRs, for example
// one per reference organism, and is present when any of them holds.
package gpr

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Reaction is a reaction and its GPR expressions in input order.
type Reaction struct {
	ID   string
	GPRs []string
}

// Table is an ordered collection of reactions. Reactions are held in the
// order they were first seen.
type Table struct {
	Reactions []*Reaction
	index     map[string]*Reaction
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{index: make(map[string]*Reaction)}
}

// Add appends gpr to the GPR list of the reaction id, creating the
// reaction if it has not been seen before.
func (t *Table) Add(id, gpr string) {
	if t.index == nil {
		t.index = make(map[string]*Reaction)
	}
	r, ok := t.index[id]
	if !ok {
		r = &Reaction{ID: id}
		t.index[id] = r
		t.Reactions = append(t.Reactions, r)
	}
	r.GPRs = append(r.GPRs, gpr)
}

// Reaction returns the reaction with the given id, or nil.
func (t *Table) Reaction(id string) *Reaction { return t.index[id] }

// Len returns the number of distinct reactions in the table.
func (t *Table) Len() int { return len(t.Reactions) }

var andOperator = regexp.MustCompile(`(?i)\band\b`)

// OrOnly returns gpr with every and operator replaced by or. It is used
// to check whether missing subunits explain an absent reaction.
func OrOnly(gpr string) string {
	return andOperator.ReplaceAllString(gpr, "or")
}

// ReadTable reads a two column tab-separated table of reaction IDs and
// GPRs. Rows without a second column are given an empty GPR. Blank lines
// are ignored. If orOnly is true every and operator is rewritten to or
// before the GPR is stored.
func ReadTable(r io.Reader, orOnly bool) (*Table, error) {
	t := NewTable()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimRight(sc.Text(), "\r\n")
		if text == "" {
			continue
		}
		f := strings.Split(text, "\t")
		var gpr string
		if len(f) > 1 {
			gpr = f[1]
		}
		if orOnly {
			gpr = OrOnly(gpr)
		}
		t.Add(f[0], gpr)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("gpr: failed to read table: %w", err)
	}
	return t, nil
}
