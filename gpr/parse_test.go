// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpr

import (
	"errors"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/check.v1"
)

func (s *S) TestParse(c *check.C) {
	for i, t := range []struct {
		in   string
		want Expr
		str  string
	}{
		{in: g1, want: Ident(g1), str: g1},
		{in: "  (" + g1 + ")  ", want: Ident(g1), str: g1},
		{
			in:   g1 + " and " + g2 + " or " + g3,
			want: Or{And{Ident(g1), Ident(g2)}, Ident(g3)},
			str:  "(" + g1 + " and " + g2 + ") or " + g3,
		},
		{
			in:   g1 + " OR " + g2 + " And " + g3,
			want: Or{Ident(g1), And{Ident(g2), Ident(g3)}},
			str:  g1 + " or (" + g2 + " and " + g3 + ")",
		},
		{
			in:   "(" + g1 + " or " + g2 + ")and(" + g3 + " or " + g4 + ")",
			want: And{Or{Ident(g1), Ident(g2)}, Or{Ident(g3), Ident(g4)}},
			str:  "(" + g1 + " or " + g2 + ") and (" + g3 + " or " + g4 + ")",
		},
		{
			in:   "not " + g1 + " and not (" + g2 + " or " + g3 + ")",
			want: And{Not{Ident(g1)}, Not{Or{Ident(g2), Ident(g3)}}},
			str:  "not " + g1 + " and not (" + g2 + " or " + g3 + ")",
		},
		{
			in:   g1 + " or " + g2 + " or " + g3,
			want: Or{Ident(g1), Ident(g2), Ident(g3)},
			str:  g1 + " or " + g2 + " or " + g3,
		},
	} {
		e, err := Parse(t.in)
		c.Assert(err, check.IsNil, check.Commentf("Test %d", i))
		if diff := cmp.Diff(t.want, e); diff != "" {
			c.Errorf("Test %d: unexpected parse tree (-want +got):\n%s", i, diff)
		}
		c.Check(e.String(), check.Equals, t.str, check.Commentf("Test %d", i))

		// The string form must parse to the same tree.
		re, err := Parse(e.String())
		c.Assert(err, check.IsNil)
		c.Check(cmp.Equal(e, re), check.Equals, true, check.Commentf("Test %d", i))
	}
}

func (s *S) TestParseErrors(c *check.C) {
	for _, t := range []struct {
		in     string
		offset int
	}{
		{in: "", offset: 0},
		{in: "   ", offset: 0},
		{in: "(" + g1 + " and " + g2, offset: 40},
		{in: g1 + ")", offset: 17},
		{in: g1 + " " + g2, offset: 18},
		{in: g1 + " and", offset: 21},
		{in: "or " + g1, offset: 0},
		{in: "()", offset: 1},
		{in: g1 + " and not", offset: 25},
	} {
		_, err := Parse(t.in)
		var se *SyntaxError
		c.Assert(errors.As(err, &se), check.Equals, true, check.Commentf("input %q: %v", t.in, err))
		c.Check(se.Offset, check.Equals, t.offset, check.Commentf("input %q: %v", t.in, err))
	}
}

func (s *S) TestEval(c *check.C) {
	a := Assignment{g1: true, g2: false, g3: true}
	for _, t := range []struct {
		in   string
		want bool
		ref  string
	}{
		{in: g1, want: true},
		{in: g2, want: false},
		{in: g1 + " and " + g2, want: false},
		{in: g1 + " and " + g3, want: true},
		{in: g2 + " or " + g3, want: true},
		{in: "not " + g2, want: true},
		{in: "not (" + g1 + " and " + g3 + ")", want: false},
		{in: g1 + " or " + gx, ref: gx},
		{in: g2 + " and " + gx, ref: gx},
		{in: "not b0001", ref: "b0001"},
	} {
		e, err := Parse(t.in)
		c.Assert(err, check.IsNil)
		v, err := e.Eval(a)
		if t.ref != "" {
			var re *RefError
			c.Assert(errors.As(err, &re), check.Equals, true, check.Commentf("input %q", t.in))
			c.Check(re.Name, check.Equals, t.ref)
			continue
		}
		c.Check(err, check.IsNil)
		c.Check(v, check.Equals, t.want, check.Commentf("input %q", t.in))
	}
}

func (s *S) TestIdents(c *check.C) {
	e, err := Parse("(" + g1 + " or not " + g2 + ") and " + g1)
	c.Assert(err, check.IsNil)
	c.Check(Idents(e), check.DeepEquals, []Ident{g1, g2, g1})
}

func (s *S) TestOrOnly(c *check.C) {
	c.Check(OrOnly(g1+" and ("+g2+" AND "+g3+")"), check.Equals, g1+" or ("+g2+" or "+g3+")")
	c.Check(OrOnly("band and"), check.Equals, "band or")
}
