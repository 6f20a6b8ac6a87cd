// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// rxnmodules factorises a reaction presence/absence table, as written by
// evalgpr, using non-negative matrix factorisation to find groups of
// reactions that tend to be present together in the same organisms.
//
// Each output line describes one module of one replicate:
//
//	replicate	[reaction/weight,...]	(organism/weight,...)
//
// with reactions and organisms listed in order of decreasing weight.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gonum/matrix/mat64"
	"github.com/kortschak/nmf"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/itep-tools/itep/gpr"
	"github.com/itep-tools/itep/internal/diag"
)

type options struct {
	in        string
	out       string
	transpose bool
	cat       int
	iter      int
	rep       int
	limit     time.Duration
	tol       float64
	seed      int64
	verbose   bool
}

func newCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "rxnmodules [options] < Rxn_presence_absence > modules",
		Short:         "Find co-occurring reaction modules in a presence/absence table",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := diag.New(stderr, opts.verbose)
			defer log.Sync()
			return run(opts, stdin, stdout, log)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVar(&opts.in, "in", "", "presence/absence table to be factorised (default stdin)")
	f.StringVar(&opts.out, "out", "", "output file (default stdout)")
	f.BoolVarP(&opts.transpose, "transpose", "t", false, "factorise organisms rather than reactions")
	f.IntVar(&opts.cat, "cat", 5, "number of modules")
	f.IntVarP(&opts.iter, "iter", "i", 1000, "maximum iterations")
	f.IntVar(&opts.rep, "rep", 1, "resample replicates")
	f.DurationVar(&opts.limit, "time", 10*time.Second, "time limit for each factorisation")
	f.Float64Var(&opts.tol, "tol", 0.001, "tolerance for factorisation")
	f.Int64Var(&opts.seed, "seed", -1, "seed for random number generator (-1 uses system clock)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress")
	return cmd
}

func run(opts options, stdin io.Reader, stdout io.Writer, log *zap.Logger) error {
	if opts.cat < 1 {
		return fmt.Errorf("number of modules must be positive: %d", opts.cat)
	}
	if opts.rep < 1 {
		return fmt.Errorf("number of replicates must be positive: %d", opts.rep)
	}

	in := stdin
	if opts.in != "" {
		f, err := os.Open(opts.in)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	m, err := gpr.ReadMatrix(in)
	if err != nil {
		return err
	}
	rowNames, colNames := m.Reactions, m.Organisms
	V := presence(m, opts.transpose)
	if opts.transpose {
		rowNames, colNames = colNames, rowNames
	}
	r, c := V.Dims()
	if r == 0 || c == 0 {
		return errors.New("no table to factorise")
	}

	var nonZero float64
	V.Apply(func(_, _ int, v float64) float64 {
		if v != 0 {
			nonZero++
		}
		return v
	}, V)

	if opts.seed == -1 {
		opts.seed = time.Now().UnixNano()
	}
	log.Info("factorising table",
		zap.Int("rows", r),
		zap.Int("cols", c),
		zap.Float64("density", nonZero/float64(r*c)),
		zap.Int64("seed", opts.seed))
	rnd := rand.New(rand.NewSource(opts.seed))

	out := bufio.NewWriter(stdout)
	var file *os.File
	if opts.out != "" {
		file, err = os.Create(opts.out)
		if err != nil {
			return err
		}
		defer file.Close()
		out = bufio.NewWriter(file)
	}

	cfg := nmf.Config{Tolerance: opts.tol, MaxIter: opts.iter, Limit: opts.limit}
	for rep := 0; rep < opts.rep; rep++ {
		W, H, ok := factorise(V, opts.cat, cfg, rnd)
		log.Info("factorised", zap.Int("replicate", rep), zap.Bool("converged", ok))
		if !ok {
			log.Warn("factorisation did not converge", zap.Int("replicate", rep))
		}
		mods := modules(W, H, rowNames, colNames)
		for j, name := range colNames {
			best := bestModule(H, j)
			log.Debug("strongest module", zap.String("name", name), zap.Int("module", best))
		}
		if err := writeModules(out, rep, mods); err != nil {
			return err
		}
	}
	if err := out.Flush(); err != nil {
		return err
	}
	if file != nil {
		return file.Close()
	}
	return nil
}

// presence returns the presence values of m as a dense matrix with
// reactions as rows, or organisms as rows if transpose is true.
func presence(m *gpr.Matrix, transpose bool) *mat64.Dense {
	r, c := m.Dims()
	if transpose {
		V := mat64.NewDense(c, r, nil)
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				V.Set(j, i, float64(m.Value(i, j)))
			}
		}
		return V
	}
	V := mat64.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			V.Set(i, j, float64(m.Value(i, j)))
		}
	}
	return V
}

// factorise returns non-negative W and H such that W·H approximates V,
// starting from random positive factors with k columns and rows.
func factorise(V *mat64.Dense, k int, cfg nmf.Config, rnd *rand.Rand) (W, H *mat64.Dense, ok bool) {
	r, c := V.Dims()
	posNorm := func(_, _ int, _ float64) float64 { return math.Abs(rnd.NormFloat64()) }

	Wo := mat64.NewDense(r, k, nil)
	Wo.Apply(posNorm, Wo)

	Ho := mat64.NewDense(k, c, nil)
	Ho.Apply(posNorm, Ho)

	return nmf.Factors(V, Wo, Ho, cfg)
}

type weight struct {
	name   string
	weight float64
}

// weights sorts by decreasing weight.
type weights []weight

func (w weights) Len() int           { return len(w) }
func (w weights) Swap(i, j int)      { w[i], w[j] = w[j], w[i] }
func (w weights) Less(i, j int) bool { return w[i].weight > w[j].weight }

func (w weights) String() string {
	s := make([]string, 0, len(w))
	for _, e := range w {
		s = append(s, fmt.Sprintf("%s/%.3e", e.name, e.weight))
	}
	return strings.Join(s, ",")
}

// module is a factor of the table: the rows it draws on and the columns
// that use it, each with positive weight.
type module struct {
	rows weights
	cols weights
}

// modules returns one module per column of W and row of H.
func modules(W, H *mat64.Dense, rowNames, colNames []string) []module {
	k, c := H.Dims()
	r, _ := W.Dims()
	mods := make([]module, k)
	for i := range mods {
		for j := 0; j < r; j++ {
			if v := W.At(j, i); v > 0 {
				mods[i].rows = append(mods[i].rows, weight{name: rowNames[j], weight: v})
			}
		}
		for j := 0; j < c; j++ {
			if v := H.At(i, j); v > 0 {
				mods[i].cols = append(mods[i].cols, weight{name: colNames[j], weight: v})
			}
		}
		sort.Stable(mods[i].rows)
		sort.Stable(mods[i].cols)
	}
	return mods
}

// bestModule returns the index of the module with the greatest weight
// for column j of the table.
func bestModule(H *mat64.Dense, j int) int {
	k, _ := H.Dims()
	best := 0
	for i := 1; i < k; i++ {
		if H.At(i, j) > H.At(best, j) {
			best = i
		}
	}
	return best
}

func writeModules(w io.Writer, rep int, mods []module) error {
	for _, m := range mods {
		if _, err := fmt.Fprintf(w, "%d\t[%v]\t(%v)\n", rep, m.rows, m.cols); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	cmd := newCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR\t%v\n", err)
		os.Exit(1)
	}
}
