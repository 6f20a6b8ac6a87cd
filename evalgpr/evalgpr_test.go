// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/check.v1"

	"github.com/itep-tools/itep/itep"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

const (
	g1 = "fig|83333.1.peg.1"
	g2 = "fig|83333.1.peg.2"
	g3 = "fig|83333.1.peg.3"
)

func fixture(c *check.C) (dir, db string) {
	ctx := context.Background()
	dir = c.MkDir()
	db = filepath.Join(dir, "DATABASE.sqlite")
	d, err := itep.Create(ctx, db, nil)
	c.Assert(err, check.IsNil)
	defer d.Close()
	c.Assert(d.AddCluster(ctx, "run", 1, []string{"orgA", "orgB"}, g1), check.IsNil)
	c.Assert(d.AddCluster(ctx, "run", 2, []string{"orgA"}, g2), check.IsNil)
	c.Assert(d.AddCluster(ctx, "run", 3, []string{"orgB"}, g3), check.IsNil)
	return dir, db
}

func execute(args ...string) (stdout, stderr string, err error) {
	var out, log bytes.Buffer
	cmd := newCommand(&out, &log)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	report(&log, err)
	return out.String(), log.String(), err
}

func status(err error) int {
	var e *exitError
	if errors.As(err, &e) {
		return e.status
	}
	return 1
}

func writeGPR(c *check.C, dir, name, text string) string {
	path := filepath.Join(dir, name)
	c.Assert(os.WriteFile(path, []byte(text), 0o644), check.IsNil)
	return path
}

func (s *S) TestPresence(c *check.C) {
	dir, db := fixture(c)
	path := writeGPR(c, dir, "gpr.txt", strings.Join([]string{
		"rxn1\t" + g1,
		"rxn2\t" + g1 + " and " + g2,
		"rxn3\t(" + g2 + " or " + g3 + ")",
		"rxn2\t" + g3,
		"",
	}, "\n"))

	out, log, err := execute("-g", path, "-i", "run", "--db", db)
	c.Assert(err, check.IsNil)
	c.Check(log, check.Equals, "")
	c.Check(out, check.Equals, "orgs\torgA\torgB\n"+
		"rxn1\t1\t1\n"+
		"rxn2\t1\t1\n"+
		"rxn3\t1\t1\n")

	out, _, err = execute("-g", path, "-i", "run", "--db", db, "--or")
	c.Assert(err, check.IsNil)
	c.Check(out, check.Equals, "orgs\torgA\torgB\n"+
		"rxn1\t1\t1\n"+
		"rxn2\t1\t1\n"+
		"rxn3\t1\t1\n")
}

func (s *S) TestAndRequiresAll(c *check.C) {
	dir, db := fixture(c)
	path := writeGPR(c, dir, "gpr.txt", "rxn\t"+g2+" and "+g3+"\n")

	out, _, err := execute("-g", path, "-i", "run", "--db", db)
	c.Assert(err, check.IsNil)
	c.Check(out, check.Equals, "orgs\torgA\torgB\nrxn\t0\t0\n")

	out, _, err = execute("-g", path, "-i", "run", "--db", db, "-o")
	c.Assert(err, check.IsNil)
	c.Check(out, check.Equals, "orgs\torgA\torgB\nrxn\t1\t1\n")
}

func (s *S) TestBadGPRs(c *check.C) {
	dir, db := fixture(c)
	path := writeGPR(c, dir, "gpr.txt", strings.Join([]string{
		"good\t" + g1,
		"unbalanced\t(" + g1 + " and " + g2,
		"badname\t" + g1 + " and geneX",
		"nogene\tspontaneous",
	}, "\n"))

	out, log, err := execute("-g", path, "-i", "run", "--db", db)
	c.Assert(err, check.IsNil)
	c.Check(out, check.Equals, "orgs\torgA\torgB\ngood\t1\t1\n")
	c.Check(log, check.Matches, "(?s).*no genes with expected format.*")
	c.Check(log, check.Matches, "(?s).*syntax error in GPR.*unbalanced.*")
	c.Check(log, check.Matches, "(?s).*unresolved name in GPR.*badname.*")
}

func (s *S) TestUsageErrors(c *check.C) {
	dir, db := fixture(c)
	path := writeGPR(c, dir, "nogenes.txt", "rxn\tspontaneous\n")

	for _, t := range []struct {
		args   []string
		status int
		err    string
	}{
		{args: []string{"-i", "run"}, status: 2, err: "GPR file .*required.*"},
		{args: []string{"-g", path}, status: 2, err: "run ID .*required.*"},
		{args: []string{"-g", filepath.Join(dir, "missing"), "-i", "run", "--db", db}, status: 2, err: "failed to open GPR file.*"},
		{args: []string{"-g", path, "-i", "run", "--db", db}, status: 2, err: ".*no genes.*"},
		{args: []string{"-g", writeGPR(c, dir, "gpr.txt", "rxn\t"+g1+"\n"), "-i", "run", "--db", filepath.Join(dir, "none.sqlite")}, status: 2, err: "itep: database not found.*"},
	} {
		out, log, err := execute(t.args...)
		c.Check(err, check.ErrorMatches, t.err, check.Commentf("%v", t.args))
		c.Check(status(err), check.Equals, t.status, check.Commentf("%v", t.args))
		c.Check(out, check.Equals, "")
		c.Check(log, check.Matches, "ERROR\t"+t.err+"\n", check.Commentf("%v", t.args))
	}
}

func (s *S) TestNoGenesReport(c *check.C) {
	dir, db := fixture(c)
	path := writeGPR(c, dir, "gpr.txt", "rxn1\tspontaneous\nrxn2\tb0001 and b0002\n")

	out, log, err := execute("-g", path, "-i", "run", "--db", db)
	c.Check(status(err), check.Equals, 2)
	c.Check(out, check.Equals, "")
	c.Check(strings.Count(log, "\n"), check.Equals, 1)
	c.Check(log, check.Matches, "ERROR\t.*no genes.*\n")
	c.Check(report(io.Discard, nil), check.Equals, 0)
	c.Check(report(io.Discard, errors.New("database is locked")), check.Equals, 1)
}

func (s *S) TestHeatmap(c *check.C) {
	dir, db := fixture(c)
	path := writeGPR(c, dir, "gpr.txt", "rxn1\t"+g1+"\nrxn2\t"+g2+"\n")
	img := filepath.Join(dir, "presence.svg")

	out, _, err := execute("-g", path, "-i", "run", "--db", db, "--heatmap", img)
	c.Assert(err, check.IsNil)
	c.Check(out, check.Equals, "orgs\torgA\torgB\nrxn1\t1\t1\nrxn2\t1\t0\n")
	fi, err := os.Stat(img)
	c.Assert(err, check.IsNil)
	c.Check(fi.Size() > 0, check.Equals, true)
}

func (s *S) TestHeatmapAllFailed(c *check.C) {
	dir, db := fixture(c)
	path := writeGPR(c, dir, "gpr.txt", "rxn1\t("+g1+"\n")
	img := filepath.Join(dir, "presence.png")

	out, log, err := execute("-g", path, "-i", "run", "--db", db, "--heatmap", img)
	c.Assert(err, check.IsNil)
	c.Check(out, check.Equals, "orgs\torgA\torgB\n")
	c.Check(log, check.Matches, "(?s).*syntax error in GPR.*heatmap not drawn.*")
	_, err = os.Stat(img)
	c.Check(os.IsNotExist(err), check.Equals, true)
}
