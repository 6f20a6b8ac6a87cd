// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpr

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// grid is a plotter.GridXYZ with organisms as columns and reactions
// as rows.
type grid struct {
	*mat.Dense
}

func (g grid) Dims() (c, r int) { r, c = g.Dense.Dims(); return c, r }
func (g grid) Z(c, r int) float64 { return g.Dense.At(r, c) }
func (g grid) X(c int) float64    { return float64(c) }
func (g grid) Y(r int) float64    { return float64(r) }

// Presence is always 0 or 1, so the palette scale is fixed.
func (g grid) Min() float64 { return 0 }
func (g grid) Max() float64 { return 1 }

// Dense returns the matrix as a reactions by organisms dense matrix of
// 0 and 1 values.
func (m *Matrix) Dense() *mat.Dense {
	r, c := m.Dims()
	d := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			d.Set(i, j, float64(m.Value(i, j)))
		}
	}
	return d
}

// Heatmap returns a heat map plot of m with organisms along the X axis
// and reactions along the Y axis.
func Heatmap(m *Matrix) (*plot.Plot, error) {
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, errors.New("gpr: cannot plot an empty matrix")
	}
	p := plot.New()
	p.Title.Text = "Reaction presence"
	h := plotter.NewHeatMap(grid{m.Dense()}, palette.Heat(2, 1))
	p.Add(h)
	p.NominalX(m.Organisms...)
	p.NominalY(m.Reactions...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	return p, nil
}

// HeatmapSize returns a plot size that gives each cell of m room for
// its labels.
func HeatmapSize(m *Matrix) (w, h vg.Length) {
	r, c := m.Dims()
	const cell = 0.5 * vg.Centimeter
	return 8*vg.Centimeter + vg.Length(c)*cell, 6*vg.Centimeter + vg.Length(r)*cell
}
