/*
 * morse_test.go, part of gorelax.
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

package potentials

import (
	"math"
	"testing"

	v3 "github.com/rmera/relax/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

func testSystem(t *testing.T) (*v3.Matrix, *mat.Dense) {
	pos, err := v3.NewMatrix([]float64{
		0.1, 0.0, 0.2,
		1.3, 0.2, 0.1,
		0.4, 1.2, 0.9,
	})
	require.NoError(t, err)
	F := mat.NewDense(3, 3, []float64{
		3.0, 0.2, 0.1,
		0.0, 3.2, 0.3,
		0.1, 0.0, 2.9,
	})
	return pos, F
}

func flatEnergy(t *testing.T, M *Morse, F mat.Matrix) func([]float64) float64 {
	return func(x []float64) float64 {
		p, err := v3.NewMatrix(append([]float64(nil), x...))
		require.NoError(t, err)
		e, err := M.Energy(p, F)
		require.NoError(t, err)
		return e
	}
}

func TestMorseMinimum(t *testing.T) {
	M := NewMorse(1.0, 1.5, 1.2, 0)
	e, d1, d2 := M.phi(M.R0)
	assert.InDelta(t, -M.D, e, 1e-12)
	assert.InDelta(t, 0, d1, 1e-12)
	assert.InDelta(t, 2*M.Alpha*M.Alpha*M.D, d2, 1e-12)
}

func TestMorseGradient(t *testing.T) {
	pos, F := testSystem(t)
	M := NewMorse(1.0, 1.5, 1.2, 1)
	g, err := M.Gradient(pos, F)
	require.NoError(t, err)
	ref := fd.Gradient(nil, flatEnergy(t, M, F), pos.Flat(), &fd.Settings{Formula: fd.Central, Step: 1e-5})
	for i, v := range g.Flat() {
		assert.InDelta(t, ref[i], v, 1e-6, "element %d", i)
	}
	//no net force for a pair potential.
	for k := 0; k < 3; k++ {
		var sum float64
		for i := 0; i < g.NVecs(); i++ {
			sum += g.At(i, k)
		}
		assert.InDelta(t, 0, sum, 1e-10)
	}
}

func TestMorseVirial(t *testing.T) {
	pos, F := testSystem(t)
	M := NewMorse(1.0, 1.5, 1.2, 1)
	V, err := M.Virial(pos, F)
	require.NoError(t, err)
	//E((I+e)X, (I+e)F) as a function of the 9 elements of e.
	strained := func(e []float64) float64 {
		S := mat.NewDense(3, 3, append([]float64(nil), e...))
		for k := 0; k < 3; k++ {
			S.Set(k, k, S.At(k, k)+1)
		}
		p := v3.Zeros(pos.NVecs())
		p.ApplyLinear(S, pos)
		G := mat.NewDense(3, 3, nil)
		G.Mul(S, F)
		en, err := M.Energy(p, G)
		require.NoError(t, err)
		return en
	}
	ref := fd.Gradient(nil, strained, make([]float64, 9), &fd.Settings{Formula: fd.Central, Step: 1e-5})
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			assert.InDelta(t, -ref[3*a+b], V.At(a, b), 1e-6, "element %d %d", a, b)
		}
	}
	assert.True(t, mat.EqualApprox(V, V.T(), 1e-10), "virial of a pair potential is symmetric")
}

func TestMorseHessian(t *testing.T) {
	pos, F := testSystem(t)
	M := NewMorse(1.0, 1.5, 1.2, 1)
	H, err := M.Hessian(pos, F)
	require.NoError(t, err)
	ref := mat.NewSymDense(9, nil)
	fd.Hessian(ref, flatEnergy(t, M, F), pos.Flat(), &fd.Settings{Formula: fd.Central, Step: 1e-4})
	assert.True(t, mat.EqualApprox(H, ref, 1e-4))
}

func TestMorseErrors(t *testing.T) {
	M := NewMorse(1.0, 1.5, 1.2, 1)
	pos, err := v3.NewMatrix([]float64{0, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	_, err = M.Energy(pos, mat.NewDense(3, 3, []float64{3, 0, 0, 0, 3, 0, 0, 0, 3}))
	assert.Error(t, err, "overlapping atoms")
	_, err = M.Energy(nil, mat.NewDense(3, 3, nil))
	assert.Error(t, err)
	_, err = M.Gradient(pos, mat.NewDense(2, 2, nil))
	assert.Error(t, err)
}

// A single atom only interacts with its own images, so its energy depends only on the cell.
func TestMorseSelfImages(t *testing.T) {
	M := NewMorse(1.0, 1.5, 1.2, 1)
	pos, err := v3.NewMatrix([]float64{0.3, 0.1, 0.2})
	require.NoError(t, err)
	F := mat.NewDense(3, 3, []float64{2, 0, 0, 0, 2, 0, 0, 0, 2})
	e, err := M.Energy(pos, F)
	require.NoError(t, err)
	p, _, _ := M.phi(2)
	q, _, _ := M.phi(2 * math.Sqrt2)
	r, _, _ := M.phi(2 * math.Sqrt(3))
	assert.InDelta(t, 0.5*(6*p+12*q+8*r), e, 1e-10)
	g, err := M.Gradient(pos, F)
	require.NoError(t, err)
	for _, v := range g.Flat() {
		assert.Equal(t, 0.0, v)
	}
}
