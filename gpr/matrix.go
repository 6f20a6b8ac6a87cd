// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpr

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Matrix is a reaction presence/absence table. Presence[i][j] holds
// whether Reactions[i] is present in Organisms[j].
type Matrix struct {
	Organisms []string
	Reactions []string
	Presence  [][]bool
}

// Dims returns the number of reactions and organisms in the matrix.
func (m *Matrix) Dims() (r, c int) { return len(m.Reactions), len(m.Organisms) }

// Value returns the presence of reaction i in organism j as 0 or 1.
func (m *Matrix) Value(i, j int) int {
	if m.Presence[i][j] {
		return 1
	}
	return 0
}

const header = "orgs"

// WriteTo writes the matrix as a tab-separated table. The first row is
// "orgs" followed by the organisms, and each following row is a reaction
// followed by a 0 or 1 for each organism.
func (m *Matrix) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	write := func(s string) error {
		_n, err := bw.WriteString(s)
		n += int64(_n)
		return err
	}

	var b strings.Builder
	b.WriteString(header)
	for _, o := range m.Organisms {
		b.WriteByte('\t')
		b.WriteString(o)
	}
	b.WriteByte('\n')
	if err := write(b.String()); err != nil {
		return n, err
	}
	for i, r := range m.Reactions {
		b.Reset()
		b.WriteString(r)
		for j := range m.Organisms {
			b.WriteByte('\t')
			b.WriteByte(byte('0' + m.Value(i, j)))
		}
		b.WriteByte('\n')
		if err := write(b.String()); err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

// ReadMatrix reads a presence/absence table in the format written by
// Matrix.WriteTo.
func ReadMatrix(r io.Reader) (*Matrix, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 16<<20)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("gpr: no table to read")
	}
	cols := strings.Split(strings.TrimRight(sc.Text(), "\r\n"), "\t")
	if cols[0] != header {
		return nil, fmt.Errorf("gpr: table header must start with %q: got %q", header, cols[0])
	}
	m := &Matrix{Organisms: cols[1:]}

	for line := 2; sc.Scan(); line++ {
		text := strings.TrimRight(sc.Text(), "\r\n")
		if text == "" {
			continue
		}
		row := strings.Split(text, "\t")
		if len(row) != len(m.Organisms)+1 {
			return nil, fmt.Errorf("gpr: table row mismatch at line %d: %d values for %d organisms", line, len(row)-1, len(m.Organisms))
		}
		p := make([]bool, len(m.Organisms))
		for j, v := range row[1:] {
			switch v {
			case "0":
			case "1":
				p[j] = true
			default:
				return nil, fmt.Errorf("gpr: invalid presence value %q at line %d column %d", v, line, j+2)
			}
		}
		m.Reactions = append(m.Reactions, row[0])
		m.Presence = append(m.Presence, p)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}
