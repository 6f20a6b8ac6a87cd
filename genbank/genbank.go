// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package genbank provides a reader for the subset of the GenBank flat file
// format used to cross-reference ITEP contigs: the LOCUS name, the
// DEFINITION, the feature table with its qualifiers and the ORIGIN sequence.
//
// Records are linear sequences carrying their feature table, so a Reader
// may be used anywhere a seqio.Reader is expected.
package genbank

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/feat"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/seq"
	"github.com/biogo/biogo/seq/linear"
)

var (
	// ErrMissingOriginalContig is returned when a source feature carries no
	// originalContig database cross-reference.
	ErrMissingOriginalContig = errors.New("genbank: source feature has no originalContig db_xref")

	// ErrNoSource is returned when a record has no source feature.
	ErrNoSource = errors.New("genbank: record has no source feature")
)

// OriginalContigPrefix marks the db_xref holding the contig name the record
// had before ITEP IDs were added to the file.
const OriginalContigPrefix = "originalContig:"

// Qualifier is a single /key=value feature qualifier.
type Qualifier struct {
	Key   string
	Value string
}

// Feature is an entry of a record's feature table. Its range is zero-based
// and half open, spanning the extreme positions of its location.
type Feature struct {
	Type       string
	Loc        string
	Qualifiers []Qualifier

	start, end int
	orient     feat.Orientation
	parent     *Record
}

var (
	_ feat.Feature  = (*Feature)(nil)
	_ feat.Orienter = (*Feature)(nil)
)

func (f *Feature) Start() int                    { return f.start }
func (f *Feature) End() int                      { return f.end }
func (f *Feature) Len() int                      { return f.end - f.start }
func (f *Feature) Name() string                  { return f.Type }
func (f *Feature) Description() string           { return f.Loc }
func (f *Feature) Orientation() feat.Orientation { return f.orient }
func (f *Feature) Location() feat.Feature {
	if f.parent == nil {
		return nil
	}
	return f.parent
}

// Values returns the values of all qualifiers with the given key in file
// order. Keys may be repeated, as db_xref commonly is.
func (f *Feature) Values(key string) []string {
	var v []string
	for _, q := range f.Qualifiers {
		if q.Key == key {
			v = append(v, q.Value)
		}
	}
	return v
}

// setLoc records the location string and derives the feature's range from
// the extreme positions it names.
func (f *Feature) setLoc(loc string) error {
	f.Loc = loc
	f.orient = feat.Forward
	if strings.HasPrefix(loc, "complement(") {
		f.orient = feat.Reverse
	}
	lo, hi := -1, -1
	for _, field := range strings.FieldsFunc(loc, func(r rune) bool { return r < '0' || '9' < r }) {
		p, err := strconv.Atoi(field)
		if err != nil {
			return err
		}
		if lo < 0 || p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	if lo < 1 {
		return fmt.Errorf("no positions in location %q", loc)
	}
	f.start, f.end = feat.OneToZero(lo), hi
	return nil
}

// Record is a GenBank entry. The embedded sequence's ID is the LOCUS name
// and its description is the DEFINITION.
type Record struct {
	*linear.Seq
	Features []*Feature
}

// Clone returns a copy of the Record.
func (r *Record) Clone() seq.Sequence {
	c := &Record{Seq: r.Seq.Clone().(*linear.Seq)}
	for _, f := range r.Features {
		cf := *f
		cf.Qualifiers = append([]Qualifier(nil), f.Qualifiers...)
		cf.parent = c
		c.Features = append(c.Features, &cf)
	}
	return c
}

// Source returns the first source feature of the record.
func (r *Record) Source() (*Feature, bool) {
	for _, f := range r.Features {
		if f.Type == "source" {
			return f, true
		}
	}
	return nil, false
}

// OriginalContig returns the contig name held in the originalContig
// db_xref of the record's source features. The first source feature must
// carry one; when later source features also carry one, the last of them
// is returned. Within a feature the first originalContig db_xref is used.
func (r *Record) OriginalContig() (string, error) {
	var (
		name  string
		found bool
	)
	for _, f := range r.Features {
		if f.Type != "source" {
			continue
		}
		for _, x := range f.Values("db_xref") {
			if strings.HasPrefix(x, OriginalContigPrefix) {
				name = strings.TrimPrefix(x, OriginalContigPrefix)
				found = true
				break
			}
		}
		if !found {
			return "", ErrMissingOriginalContig
		}
	}
	if !found {
		return "", ErrNoSource
	}
	return name, nil
}

// SyntaxError is a malformed line in a GenBank file.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("genbank: line %d: %s", e.Line, e.Msg)
}

// featureIndent is the column of feature keys in the feature table.
const featureIndent = 5

type section int

const (
	header section = iota
	definition
	features
	origin
)

// Reader reads GenBank records.
type Reader struct {
	sc    *bufio.Scanner
	line  int
	alpha alphabet.Alphabet
}

var _ seqio.Reader = (*Reader)(nil)

// NewReader returns a Reader reading from r. Sequences are given the
// alphabet alpha.
func NewReader(r io.Reader, alpha alphabet.Alphabet) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	return &Reader{sc: sc, alpha: alpha}
}

// Read returns the next record, or io.EOF when no records remain. The
// returned sequence is a *Record.
func (r *Reader) Read() (seq.Sequence, error) {
	rec, err := r.ReadRecord()
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ReadRecord returns the next record, or io.EOF when no records remain.
func (r *Reader) ReadRecord() (*Record, error) {
	var (
		rec   *Record
		state = header
		def   []string
		ft    *Feature
		q     *Qualifier
		seqb  []byte
	)
	finishFeature := func() {
		if ft != nil {
			for i, fq := range ft.Qualifiers {
				ft.Qualifiers[i].Value = unquote(fq.Value)
			}
			rec.Features = append(rec.Features, ft)
		}
		ft, q = nil, nil
	}
	finish := func() *Record {
		finishFeature()
		rec.Desc = strings.Join(def, " ")
		rec.Seq.Seq = alphabet.BytesToLetters(seqb)
		return rec
	}

	for r.sc.Scan() {
		r.line++
		text := strings.TrimRight(r.sc.Text(), "\r")
		if rec == nil {
			if strings.TrimSpace(text) == "" {
				continue
			}
			f := strings.Fields(text)
			if f[0] != "LOCUS" || len(f) < 2 {
				return nil, &SyntaxError{Line: r.line, Msg: "expected LOCUS line"}
			}
			rec = &Record{Seq: linear.NewSeq(f[1], nil, r.alpha)}
			continue
		}
		if strings.HasPrefix(text, "//") {
			return finish(), nil
		}

		if text != "" && text[0] != ' ' {
			// New top level keyword.
			keyword := strings.Fields(text)[0]
			switch keyword {
			case "DEFINITION":
				state = definition
				def = append(def, strings.TrimSpace(text[len(keyword):]))
			case "FEATURES":
				state = features
			case "ORIGIN":
				finishFeature()
				state = origin
			default:
				finishFeature()
				state = header
			}
			continue
		}

		switch state {
		case definition:
			def = append(def, strings.TrimSpace(text))
		case features:
			if err := r.featureLine(rec, text, &ft, &q, finishFeature); err != nil {
				return nil, err
			}
		case origin:
			for i := 0; i < len(text); i++ {
				if c := text[i]; ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') {
					seqb = append(seqb, c)
				}
			}
		}
	}
	if err := r.sc.Err(); err != nil {
		return nil, fmt.Errorf("genbank: %w", err)
	}
	if rec == nil {
		return nil, io.EOF
	}
	// Tolerate a final record without its // terminator.
	return finish(), nil
}

func (r *Reader) featureLine(rec *Record, text string, ft **Feature, q **Qualifier, finishFeature func()) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) > featureIndent && text[featureIndent] != ' ' && strings.TrimSpace(text[:featureIndent]) == "" {
		finishFeature()
		f := strings.Fields(text)
		if len(f) < 2 {
			return &SyntaxError{Line: r.line, Msg: "feature without location"}
		}
		nf := &Feature{Type: f[0], parent: rec}
		if err := nf.setLoc(f[1]); err != nil {
			return &SyntaxError{Line: r.line, Msg: err.Error()}
		}
		*ft = nf
		return nil
	}
	if *ft == nil {
		return &SyntaxError{Line: r.line, Msg: "qualifier outside of feature"}
	}
	body := strings.TrimSpace(text)
	if strings.HasPrefix(body, "/") && (*q == nil || closed((*q).Value)) {
		key, val, _ := strings.Cut(body[1:], "=")
		(*ft).Qualifiers = append((*ft).Qualifiers, Qualifier{Key: key, Value: val})
		*q = &(*ft).Qualifiers[len((*ft).Qualifiers)-1]
		return nil
	}
	if *q == nil {
		// Continuation of a long location.
		loc := (*ft).Loc + body
		if err := (*ft).setLoc(loc); err != nil {
			return &SyntaxError{Line: r.line, Msg: err.Error()}
		}
		return nil
	}
	sep := " "
	if (*q).Key == "translation" {
		sep = ""
	}
	(*q).Value += sep + body
	return nil
}

// closed returns whether a raw qualifier value is complete, that is it is
// unquoted or its quotes are balanced.
func closed(v string) bool {
	if !strings.HasPrefix(v, `"`) {
		return true
	}
	return len(v) > 1 && strings.Count(v, `"`)%2 == 0
}

// unquote strips the enclosing quotes of a qualifier value and collapses
// escaped quotes.
func unquote(v string) string {
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		v = v[1 : len(v)-1]
	}
	return strings.ReplaceAll(v, `""`, `"`)
}
