// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// evalgpr takes a two column table of reaction IDs and gene-protein-reaction
// relationships (GPRs) and prints a table of whether each reaction is present
// in each organism of an ITEP clustering run. A gene is present in an
// organism if any cluster of the run holding the gene also holds a gene of
// the organism.
//
// Gene IDs in the GPRs must be formatted as they are in the database, that
// is as fig|<digits>.<digits>.peg.<digits>.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/itep-tools/itep/gpr"
	"github.com/itep-tools/itep/internal/diag"
	"github.com/itep-tools/itep/itep"
)

// exitError is an error with a process exit status.
type exitError struct {
	status int
	err    error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// usage errors are configuration errors: missing or unusable inputs.
func usage(format string, args ...interface{}) error {
	return &exitError{status: 2, err: fmt.Errorf(format, args...)}
}

type options struct {
	gprFile string
	runID   string
	orOnly  bool
	db      string
	config  string
	heatmap string
	verbose bool
}

func newCommand(stdout, stderr io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "evalgpr -g GPR_file -i RunID [options] > Rxn_presence_absence",
		Short: "Evaluate reaction presence in each organism of a cluster run",
		Long: `evalgpr takes a two-column table of gene protein reaction relationships
(reaction IDs in the first column, GPRs such as "GeneX and GeneY" in the
second) and produces a table telling whether each reaction is present in
each organism of a cluster run, based on the presence or absence of the
individual genes in the clustering results.

Gene IDs in the GPRs must match those in the database, i.e. they must be in
fig|<digits>.<digits>.peg.<digits> format.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := diag.New(stderr, opts.verbose)
			defer log.Sync()
			return run(cmd.Context(), opts, stdout, log)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVarP(&opts.gprFile, "gprfile", "g", "", "GPR file (required)")
	f.StringVarP(&opts.runID, "runid", "i", "", "run ID used to identify presence/absence of genes (required)")
	f.BoolVarP(&opts.orOnly, "or", "o", false, "replace all AND in the input GPRs with OR (useful for diagnosing missing subunits)")
	f.StringVar(&opts.db, "db", "", "ITEP database (default from config or $ITEPROOT/db/DATABASE.sqlite)")
	f.StringVar(&opts.config, "config", "", "YAML config file (default $ITEPROOT/itep.yaml if present)")
	f.StringVar(&opts.heatmap, "heatmap", "", "also draw the presence matrix to this image file (.png, .svg, .pdf)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress")
	return cmd
}

func run(ctx context.Context, opts options, stdout io.Writer, log *zap.Logger) error {
	if opts.gprFile == "" {
		return usage("GPR file (-g) is a required argument to evalgpr")
	}
	if opts.runID == "" {
		return usage("run ID (-i) is a required argument to evalgpr")
	}

	f, err := os.Open(opts.gprFile)
	if err != nil {
		return usage("failed to open GPR file: %v", err)
	}
	tab, err := gpr.ReadTable(f, opts.orOnly)
	f.Close()
	if err != nil {
		return err
	}
	log.Debug("read GPR table", zap.String("file", opts.gprFile), zap.Int("reactions", tab.Len()))

	type noGene struct{ rxn, gpr string }
	var missing []noGene
	genes, err := gpr.Genes(tab, func(rxn, g string) { missing = append(missing, noGene{rxn, g}) })
	if err != nil {
		if errors.Is(err, gpr.ErrNoGenes) {
			return &exitError{status: 2, err: err}
		}
		return err
	}
	for _, m := range missing {
		log.Warn("no genes with expected format found in GPR", zap.String("reaction", m.rxn), zap.String("gpr", m.gpr))
	}

	path := opts.db
	if path == "" {
		cfg, err := itep.LoadConfig(opts.config)
		if err != nil {
			return usage("%v", err)
		}
		path = cfg.Database
	}
	db, err := itep.Open(ctx, path, log)
	if err != nil {
		if errors.Is(err, itep.ErrNoDatabase) {
			return &exitError{status: 2, err: err}
		}
		return err
	}
	res, err := gpr.Resolve(ctx, db, opts.runID, genes)
	db.Close()
	if err != nil {
		return err
	}
	log.Debug("resolved clusters",
		zap.String("run", opts.runID),
		zap.Int("genes", len(genes)),
		zap.Int("clusters", len(res.Clusters)),
		zap.Int("organisms", len(res.Organisms)))

	m, _ := gpr.Evaluate(res, tab, log)
	if _, err := m.WriteTo(stdout); err != nil {
		return err
	}

	if opts.heatmap == "" {
		return nil
	}
	if r, c := m.Dims(); r == 0 || c == 0 {
		log.Warn("presence matrix is empty; heatmap not drawn", zap.String("file", opts.heatmap))
		return nil
	}
	p, err := gpr.Heatmap(m)
	if err != nil {
		return err
	}
	w, h := gpr.HeatmapSize(m)
	if err := p.Save(w, h, opts.heatmap); err != nil {
		return fmt.Errorf("failed to write heatmap: %w", err)
	}
	return nil
}

// report writes err to w and returns the process exit status for it.
func report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintf(w, "ERROR\t%v\n", err)
	var e *exitError
	if errors.As(err, &e) {
		return e.status
	}
	return 1
}

func main() {
	cmd := newCommand(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(report(os.Stderr, err))
	}
}
