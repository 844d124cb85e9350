/*
 * minimize_test.go, part of gorelax.
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

package minimize

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/rmera/relax"
	"github.com/rmera/relax/atoms"
	"github.com/rmera/relax/potentials"
	"github.com/rmera/relax/traj/stf"
	v3 "github.com/rmera/relax/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/mat"
)

// dimer returns two atoms 1.5 apart in a large cell, with a non-periodic Morse
// potential whose minimum is at 1.2.
func dimer(t *testing.T, calc atoms.Calculator) *atoms.Atoms {
	t.Helper()
	pos, err := v3.NewMatrix([]float64{0, 0, 0, 1.5, 0.1, 0})
	require.NoError(t, err)
	s, err := atoms.New(nil, pos, mat.NewDense(3, 3, []float64{10, 0, 0, 0, 10, 0, 0, 0, 10}), calc)
	require.NoError(t, err)
	return s
}

func distance(s relax.State) float64 {
	p := s.Positions()
	var d float64
	for k := 0; k < 3; k++ {
		d += math.Pow(p.At(1, k)-p.At(0, k), 2)
	}
	return math.Sqrt(d)
}

func TestProblem(t *testing.T) {
	s := dimer(t, potentials.NewMorse(1, 1.5, 1.2, 0))
	c, err := relax.NewFixedCell(s, nil)
	require.NoError(t, err)
	p := Problem(s, c)
	require.NotNil(t, p.Hess)
	x, err := c.Dofs(s)
	require.NoError(t, err)
	x[3] = 1.3
	e := p.Func(x)
	want, err := s.Energy()
	require.NoError(t, err)
	assert.Equal(t, want, e)

	grad := make([]float64, len(x))
	p.Grad(grad, x)
	g, err := c.Gradient(s)
	require.NoError(t, err)
	assert.Equal(t, g, grad)

	hess := mat.NewSymDense(len(x), nil)
	p.Hess(hess, x)
	H, err := s.Hessian()
	require.NoError(t, err)
	assert.True(t, mat.Equal(H, hess))

	vc, err := relax.NewVariableCell(s, nil)
	require.NoError(t, err)
	assert.Nil(t, Problem(s, vc).Hess)

	//evaluation errors give NaNs.
	s.SetCalculator(nil)
	assert.True(t, math.IsNaN(p.Func(x)))
	p.Grad(grad, x)
	assert.True(t, math.IsNaN(grad[0]))
}

func TestRunFixedCell(t *testing.T) {
	for _, name := range []string{"lbfgs", "bfgs", "cg", "newton"} {
		t.Run(name, func(t *testing.T) {
			s := dimer(t, potentials.NewMorse(1, 1.5, 1.2, 0))
			c, err := relax.NewFixedCell(s, &relax.Selection{Clamp: []int{0}})
			require.NoError(t, err)
			O := DefaultOptions()
			O.Method(name)
			O.GradThreshold(1e-7)
			res, err := Run(s, c, O)
			require.NoError(t, err)
			assert.True(t, res.Converged(), "status %v", res.Status)
			assert.InDelta(t, -1.0, res.Energy, 1e-8)
			assert.InDelta(t, 1.2, distance(s), 1e-5)
			assert.Equal(t, []float64{0, 0, 0}, s.Positions().RawRowView(0), "clamped atom moved")
			require.NotEmpty(t, res.Trace)
			assert.GreaterOrEqual(t, res.Trace[0].Energy, res.Energy)
			e, err := s.Energy()
			require.NoError(t, err)
			assert.Equal(t, res.Energy, e, "the state is left at the final configuration")
		})
	}
}

func TestRunVariableCell(t *testing.T) {
	pos, err := v3.NewMatrix([]float64{0.1, 0.2, 0.3})
	require.NoError(t, err)
	F := mat.NewDense(3, 3, []float64{1.5, 0, 0, 0.05, 1.4, 0, 0, 0.1, 1.45})
	s, err := atoms.New([]string{"Ar"}, pos, F, potentials.NewMorse(0.2, 2, 1.2, 1))
	require.NoError(t, err)
	e0, err := s.Energy()
	require.NoError(t, err)
	c, err := relax.NewVariableCell(s, nil)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	O := DefaultOptions()
	O.Logger(zap.New(core))
	O.TrajName(filepath.Join(t.TempDir(), "relax.stf"))
	res, err := Run(s, c, O)
	require.NoError(t, err)
	assert.Less(t, res.Energy, e0)
	assert.Less(t, res.GradMax, 1e-3)
	assert.Equal(t, 1, logs.FilterMessage("Relaxation finished").Len())
	assert.Equal(t, len(res.Trace), logs.FilterMessage("Iteration").Len())

	r, header, err := stf.New(O.TrajName())
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, "lbfgs", header["method"])
	frame := v3.Zeros(1)
	box := make([]float64, 9)
	var n int
	for {
		err := r.Next(frame, box)
		var last stf.LastFrameError
		if errors.As(err, &last) {
			break
		}
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, len(res.Trace)+1, n)
	assert.True(t, mat.Equal(s.Defm(), mat.NewDense(3, 3, box)), "the last frame has the final cell")
}

func TestRunErrors(t *testing.T) {
	s := dimer(t, potentials.NewMorse(1, 1.5, 1.2, 0))
	fc, err := relax.NewFixedCell(s, nil)
	require.NoError(t, err)
	vc, err := relax.NewVariableCell(s, nil)
	require.NoError(t, err)

	O := DefaultOptions()
	O.Method("simplex")
	_, err = Run(s, fc, O)
	assert.ErrorIs(t, err, ErrUnknownMethod)

	O.Method("Newton")
	_, err = Run(s, vc, O)
	assert.ErrorIs(t, err, ErrNoHessian)

	s.SetCalculator(nil)
	_, err = Run(s, fc, nil)
	assert.ErrorIs(t, err, atoms.ErrNoCalculator)

	pos, err := v3.NewMatrix([]float64{0, 0, 0})
	require.NoError(t, err)
	single, err := atoms.New(nil, pos, s.Defm(), nil)
	require.NoError(t, err)
	_, err = Run(single, fc, nil)
	assert.ErrorIs(t, err, relax.ErrAtomCount)
}

func TestRunNoDofs(t *testing.T) {
	s := dimer(t, potentials.NewMorse(1, 1.5, 1.2, 0))
	c, err := relax.NewFixedCell(s, &relax.Selection{Free: []int{}})
	require.NoError(t, err)
	before := s.Positions()
	res, err := Run(s, c, nil)
	require.NoError(t, err)
	e, err := s.Energy()
	require.NoError(t, err)
	assert.Equal(t, e, res.Energy)
	assert.True(t, mat.Equal(before, s.Positions()))
}

func TestOptions(t *testing.T) {
	O := DefaultOptions()
	assert.Equal(t, "lbfgs", O.Method())
	assert.Equal(t, "cg", O.Method("CG"))
	assert.Equal(t, "cg", O.Method(""))
	assert.Equal(t, 1e-4, O.GradThreshold())
	assert.Equal(t, 1e-4, O.GradThreshold(-1))
	assert.Equal(t, 1e-3, O.GradThreshold(1e-3))
	tol, it := O.EnergyTol(1e-8, 10)
	assert.Equal(t, 1e-8, tol)
	assert.Equal(t, 10, it)
	assert.Equal(t, 1000, O.MajorIterations())
	assert.Equal(t, 0, O.MajorIterations(0))
	assert.Equal(t, 20, O.FuncEvaluations(20))
	assert.Equal(t, "", O.TrajName())
	assert.NotNil(t, O.Logger())
	l := zap.NewExample()
	assert.Same(t, l, O.Logger(l))
}
