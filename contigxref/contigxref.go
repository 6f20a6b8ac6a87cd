// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// contigxref prints a conversion table from ITEP contig IDs to the contig
// IDs of the GenBank file they were derived from. The GenBank file must
// carry the original contig names as db_xref="originalContig:<id>"
// qualifiers of its source features, as added when ITEP IDs are assigned.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/itep-tools/itep/genbank"
	"github.com/itep-tools/itep/internal/diag"
	"github.com/itep-tools/itep/itep"
)

type exitError struct {
	status int
	err    error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usage(format string, args ...interface{}) error {
	return &exitError{status: 2, err: fmt.Errorf(format, args...)}
}

// normalized matches GenBank file names that carry the organism ID.
var normalized = regexp.MustCompile(`^(\d+\.\d+)\.gbk$`)

type options struct {
	genbank  string
	organism string
	db       string
	config   string
	fasta    string
	verbose  bool
}

// link is a row of the conversion table.
type link struct {
	itep     string
	original string
	seq      *genbank.Record
}

func newCommand(stdout, stderr io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use: `contigxref -g genbankfile [options] > Conversion_table
  contigxref -o organismid [options] > Conversion_table
  contigxref -g genbankfile -o organismid [options] > Conversion_table`,
		Short: "Convert ITEP contig IDs to the contig IDs of a GenBank file",
		Long: `contigxref prints a conversion table from ITEP contig IDs to contig IDs
in the provided GenBank file.

The GenBank file MUST have had ITEP IDs added to it, so that the source
feature of each record holds a db_xref="originalContig:<id>" qualifier.`,
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
	f.StringVarP(&opts.genbank, "genbank", "g", "", "GenBank file; if it is named [organismID].gbk the organism ID may be omitted")
	f.StringVarP(&opts.organism, "organismid", "o", "", "organism ID; without -g the GenBank file is expected at $ITEPROOT/genbank/[organismid].gbk")
	f.StringVar(&opts.db, "db", "", "ITEP database (default from config or $ITEPROOT/db/DATABASE.sqlite)")
	f.StringVar(&opts.config, "config", "", "YAML config file (default $ITEPROOT/itep.yaml if present)")
	f.StringVar(&opts.fasta, "fasta", "", "also write the contig sequences named by ITEP ID to this FASTA file")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress")
	return cmd
}

func run(ctx context.Context, opts options, stdout io.Writer, log *zap.Logger) error {
	if opts.genbank == "" && opts.organism == "" {
		return usage("at least one of GenBank file (-g) and organism ID (-o) is required")
	}

	var cfg *itep.Config
	if opts.genbank == "" || opts.db == "" {
		var err error
		cfg, err = itep.LoadConfig(opts.config)
		if err != nil {
			return usage("%v", err)
		}
	}

	switch {
	case opts.genbank == "":
		opts.genbank = cfg.GenBankPath(opts.organism)
		if _, err := os.Stat(opts.genbank); err != nil {
			return usage("unable to find GenBank file for organism ID %s (expected location: %s)", opts.organism, opts.genbank)
		}
	case opts.organism == "":
		m := normalized.FindStringSubmatch(filepath.Base(opts.genbank))
		if m == nil {
			return usage("unable to infer organism ID from GenBank file name %q: either the name must be normalized or the organism ID must be provided", opts.genbank)
		}
		opts.organism = m[1]
	}

	links, err := readLinks(opts.genbank, opts.organism, log)
	if err != nil {
		return err
	}

	path := opts.db
	if path == "" {
		path = cfg.Database
	}
	db, err := itep.Open(ctx, path, log)
	if err != nil {
		if errors.Is(err, itep.ErrNoDatabase) {
			return &exitError{status: 2, err: err}
		}
		return err
	}
	valid, err := db.ContigIDs(ctx, opts.organism)
	db.Close()
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(valid))
	for _, id := range valid {
		known[id] = true
	}
	for _, l := range links {
		if !known[l.itep] {
			log.Warn("ID mismatch between GenBank file and ITEP: ID generated from the GenBank file was not found in ITEP",
				zap.String("id", l.itep), zap.String("organism", opts.organism))
		}
	}

	if opts.fasta != "" {
		if err := writeFasta(opts.fasta, links); err != nil {
			return err
		}
	}

	for _, l := range links {
		if _, err := fmt.Fprintf(stdout, "%s\t%s\n", l.itep, l.original); err != nil {
			return err
		}
	}
	return nil
}

// readLinks returns the ITEP to original contig ID links of the records in
// the GenBank file in file order. ITEP IDs are the organism ID and the
// record's LOCUS name joined by a dot.
func readLinks(path, organism string, log *zap.Logger) ([]link, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, usage("failed to open GenBank file: %v", err)
	}
	defer f.Close()

	var (
		links []link
		seen  = make(map[string]bool)
	)
	sc := seqio.NewScanner(genbank.NewReader(f, alphabet.DNAredundant))
	for sc.Next() {
		rec := sc.Seq().(*genbank.Record)
		id := organism + "." + rec.Name()
		orig, err := rec.OriginalContig()
		switch {
		case errors.Is(err, genbank.ErrNoSource):
			log.Warn("record has no source feature", zap.String("record", rec.Name()))
			continue
		case errors.Is(err, genbank.ErrMissingOriginalContig):
			return nil, &exitError{status: 2, err: fmt.Errorf("GenBank file %s does not have the originalContig IDs (were ITEP IDs added to it?): %w", path, err)}
		}
		if seen[id] {
			log.Warn("duplicate contig ID in GenBank file", zap.String("id", id))
			continue
		}
		seen[id] = true
		log.Debug("linked contig", zap.String("id", id), zap.String("original", orig))
		links = append(links, link{itep: id, original: orig, seq: rec})
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("failed to read GenBank file: %w", err)
	}
	return links, nil
}

func writeFasta(path string, links []link) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create FASTA file: %w", err)
	}
	buf := bufio.NewWriter(out)
	w := fasta.NewWriter(buf, 60)
	for _, l := range links {
		s := linear.NewSeq(l.itep, l.seq.Seq.Seq, l.seq.Alphabet())
		s.Desc = l.original
		if _, err := w.Write(s); err != nil {
			out.Close()
			return fmt.Errorf("failed to write sequence %q: %w", l.itep, err)
		}
	}
	if err := buf.Flush(); err != nil {
		out.Close()
		return fmt.Errorf("failed to write FASTA file: %w", err)
	}
	return out.Close()
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
