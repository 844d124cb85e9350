/*
 * relaxplot.go, part of gorelax
 *
 * Copyright 2024 Raul Mera <rmera{at}usachDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package relaxplot plots the progress of a relaxation.
package relaxplot

import (
	"fmt"
	"image/color"
	"math"

	"github.com/rmera/relax/minimize"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// smallest value plotted in a log scale.
const logFloor = 1e-12

func basicPlot(title, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

func line(p *plot.Plot, pts plotter.XYs, c color.Color) error {
	l, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	l.LineStyle.Width = vg.Points(1.5)
	l.LineStyle.Color = c
	p.Add(l)
	return nil
}

// Energy plots the energy at each step, relative to the lowest one, and saves the
// plot in filename. The format is given by the extension of filename.
func Energy(steps []minimize.Step, title, filename string) error {
	if len(steps) == 0 {
		return fmt.Errorf("gorelax/relaxplot: no steps to plot")
	}
	emin := math.Inf(1)
	for _, s := range steps {
		emin = math.Min(emin, s.Energy)
	}
	pts := make(plotter.XYs, len(steps))
	for i, s := range steps {
		pts[i].X = float64(s.Iteration)
		pts[i].Y = s.Energy - emin
	}
	p := basicPlot(title, fmt.Sprintf("E - (%.6g)", emin))
	if err := line(p, pts, color.RGBA{B: 200, A: 255}); err != nil {
		return err
	}
	return p.Save(5*vg.Inch, 4*vg.Inch, filename)
}

// Gradient plots, in a log scale, the largest component of the gradient at each step,
// and saves the plot in filename. If threshold is positive, it is drawn as a horizontal line.
func Gradient(steps []minimize.Step, threshold float64, title, filename string) error {
	if len(steps) == 0 {
		return fmt.Errorf("gorelax/relaxplot: no steps to plot")
	}
	pts := make(plotter.XYs, len(steps))
	for i, s := range steps {
		pts[i].X = float64(s.Iteration)
		pts[i].Y = math.Max(s.GradMax, logFloor)
	}
	p := basicPlot(title, "Max |gradient|")
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	if err := line(p, pts, color.RGBA{R: 200, A: 255}); err != nil {
		return err
	}
	if threshold > 0 {
		th := plotter.XYs{{X: pts[0].X, Y: threshold}, {X: pts[len(pts)-1].X, Y: threshold}}
		if err := line(p, th, color.Gray{Y: 120}); err != nil {
			return err
		}
	}
	return p.Save(5*vg.Inch, 4*vg.Inch, filename)
}

// Trace writes the energy and gradient plots for a relaxation, as prefix_energy.png
// and prefix_gradient.png.
func Trace(res *minimize.Result, threshold float64, prefix string) error {
	if res == nil {
		return fmt.Errorf("gorelax/relaxplot: nil result")
	}
	if err := Energy(res.Trace, "Energy", prefix+"_energy.png"); err != nil {
		return err
	}
	return Gradient(res.Trace, threshold, "Gradient", prefix+"_gradient.png")
}
