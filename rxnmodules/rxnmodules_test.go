// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/gonum/matrix/mat64"
	"gopkg.in/check.v1"

	"github.com/itep-tools/itep/gpr"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

const table = "orgs\torgA\torgB\torgC\torgD\n" +
	"rxn1\t1\t1\t0\t0\n" +
	"rxn2\t1\t1\t0\t0\n" +
	"rxn3\t0\t0\t1\t1\n" +
	"rxn4\t0\t0\t1\t1\n"

func execute(stdin string, args ...string) (stdout string, err error) {
	var out, log bytes.Buffer
	cmd := newCommand(strings.NewReader(stdin), &out, &log)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), err
}

var line = regexp.MustCompile(`^\d+\t\[[^\]]*\]\t\([^)]*\)$`)

func (s *S) TestRun(c *check.C) {
	out, err := execute(table, "--cat", "2", "--rep", "3", "--seed", "1")
	c.Assert(err, check.IsNil)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	c.Assert(lines, check.HasLen, 6)
	for i, l := range lines {
		c.Check(line.MatchString(l), check.Equals, true, check.Commentf("%q", l))
		c.Check(strings.HasPrefix(l, string(rune('0'+i/2))+"\t"), check.Equals, true, check.Commentf("%q", l))
	}

	again, err := execute(table, "--cat", "2", "--rep", "3", "--seed", "1")
	c.Assert(err, check.IsNil)
	c.Check(again, check.Equals, out)
}

func (s *S) TestTranspose(c *check.C) {
	out, err := execute(table, "--cat", "1", "--seed", "1", "-t")
	c.Assert(err, check.IsNil)
	c.Check(out, check.Matches, `0\t\[(org[A-D]/[^,\]]+,?)*\]\t\((rxn[1-4]/[^,)]+,?)*\)\n`)
}

func (s *S) TestErrors(c *check.C) {
	for _, t := range []struct {
		in   string
		args []string
		err  string
	}{
		{in: table, args: []string{"--cat", "0"}, err: "number of modules must be positive: 0"},
		{in: table, args: []string{"--rep", "0"}, err: "number of replicates must be positive: 0"},
		{in: "orgs\torgA\nrxn1\t2\n", err: "gpr: .*"},
		{in: "orgs\n", err: "no table to factorise"},
	} {
		_, err := execute(t.in, t.args...)
		c.Check(err, check.ErrorMatches, t.err, check.Commentf("%v", t.args))
	}
}

func (s *S) TestModules(c *check.C) {
	W := mat64.NewDense(3, 2, []float64{
		0.5, 0,
		2, 0,
		0, 1,
	})
	H := mat64.NewDense(2, 2, []float64{
		1, 3,
		0, 2,
	})
	mods := modules(W, H, []string{"rxn1", "rxn2", "rxn3"}, []string{"orgA", "orgB"})
	c.Assert(mods, check.HasLen, 2)
	c.Check(mods[0].rows, check.DeepEquals, weights{{"rxn2", 2}, {"rxn1", 0.5}})
	c.Check(mods[0].cols, check.DeepEquals, weights{{"orgB", 3}, {"orgA", 1}})
	c.Check(mods[1].rows, check.DeepEquals, weights{{"rxn3", 1}})
	c.Check(mods[1].cols, check.DeepEquals, weights{{"orgB", 2}})

	var buf bytes.Buffer
	c.Assert(writeModules(&buf, 0, mods), check.IsNil)
	c.Check(buf.String(), check.Equals,
		"0\t[rxn2/2.000e+00,rxn1/5.000e-01]\t(orgB/3.000e+00,orgA/1.000e+00)\n"+
			"0\t[rxn3/1.000e+00]\t(orgB/2.000e+00)\n")

	c.Check(bestModule(H, 0), check.Equals, 0)
	c.Check(bestModule(H, 1), check.Equals, 0)
}

func (s *S) TestPresence(c *check.C) {
	m, err := gpr.ReadMatrix(strings.NewReader(table))
	c.Assert(err, check.IsNil)
	V := presence(m, false)
	r, cols := V.Dims()
	c.Check([2]int{r, cols}, check.Equals, [2]int{4, 4})
	T := presence(m, true)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			c.Check(T.At(j, i), check.Equals, V.At(i, j))
		}
	}
	c.Check(V.At(0, 0), check.Equals, 1.0)
	c.Check(V.At(0, 2), check.Equals, 0.0)
}
