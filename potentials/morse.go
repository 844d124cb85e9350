/*
 * morse.go, part of gorelax.
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

// Package potentials implements simple interatomic potentials that can be used
// as calculators for atoms.Atoms.
package potentials

import (
	"fmt"
	"math"

	v3 "github.com/rmera/relax/v3"
	"gonum.org/v1/gonum/mat"
)

// Morse is a periodic Morse pair potential,
//
//	phi(r) = D*((1-exp(-Alpha*(r-R0)))^2 - 1)
//
// summed over all pairs of atoms, including the periodic images within a fixed
// shell of cell translations, n in [-Shell,Shell]^3. There is no cutoff, so the
// energy is smooth in both the positions and the deformation matrix.
// The columns of the deformation matrix are the cell vectors.
type Morse struct {
	D     float64
	Alpha float64
	R0    float64
	Shell int
}

// NewMorse returns a Morse potential with the given parameters and image shell.
func NewMorse(D, alpha, r0 float64, shell int) *Morse {
	if shell < 0 {
		shell = 0
	}
	return &Morse{D: D, Alpha: alpha, R0: r0, Shell: shell}
}

// phi returns the pair energy and its first and second derivatives at r.
func (M *Morse) phi(r float64) (e, d1, d2 float64) {
	ex := math.Exp(-M.Alpha * (r - M.R0))
	e = M.D * (ex*ex - 2*ex)
	d1 = 2 * M.Alpha * M.D * ex * (1 - ex)
	d2 = 2 * M.Alpha * M.Alpha * M.D * ex * (2*ex - 1)
	return e, d1, d2
}

// pairTerm is one term of the pair sum: atoms i and j and the vector
// r = x_j - x_i + F*n, with weight w.
type pairTerm struct {
	i, j int
	w    float64
	r    [3]float64
	d    float64
}

// shifts returns the cartesian translations F*n for every image n in the shell.
func (M *Morse) shifts(F mat.Matrix) [][3]float64 {
	s := M.Shell
	ret := make([][3]float64, 0, (2*s+1)*(2*s+1)*(2*s+1))
	for a := -s; a <= s; a++ {
		for b := -s; b <= s; b++ {
			for c := -s; c <= s; c++ {
				var t [3]float64
				for k := 0; k < 3; k++ {
					t[k] = float64(a)*F.At(k, 0) + float64(b)*F.At(k, 1) + float64(c)*F.At(k, 2)
				}
				ret = append(ret, t)
			}
		}
	}
	return ret
}

// each calls f for every term of the pair sum. Pairs i<j get weight 1 (the term
// for j,i and the opposite image is the same), the interactions of an atom with
// its own images get weight 1/2.
func (M *Morse) each(pos *v3.Matrix, F mat.Matrix, f func(t pairTerm)) error {
	if pos == nil {
		return fmt.Errorf("gorelax/potentials: nil coordinates")
	}
	if r, c := F.Dims(); r != 3 || c != 3 {
		return fmt.Errorf("gorelax/potentials: deformation matrix is %dx%d, not 3x3", r, c)
	}
	shifts := M.shifts(F)
	n := pos.NVecs()
	for i := 0; i < n; i++ {
		xi := pos.RawRowView(i)
		for j := i; j < n; j++ {
			xj := pos.RawRowView(j)
			w := 1.0
			if i == j {
				w = 0.5
			}
			for _, s := range shifts {
				var t pairTerm
				t.i, t.j, t.w = i, j, w
				for k := 0; k < 3; k++ {
					t.r[k] = xj[k] - xi[k] + s[k]
				}
				t.d = math.Sqrt(t.r[0]*t.r[0] + t.r[1]*t.r[1] + t.r[2]*t.r[2])
				if t.d == 0 {
					if i == j {
						continue //the atom itself.
					}
					return fmt.Errorf("gorelax/potentials: atoms %d and %d overlap", i, j)
				}
				f(t)
			}
		}
	}
	return nil
}

// Energy returns the potential energy for the positions pos and the deformation F.
func (M *Morse) Energy(pos *v3.Matrix, F mat.Matrix) (float64, error) {
	var e float64
	err := M.each(pos, F, func(t pairTerm) {
		p, _, _ := M.phi(t.d)
		e += t.w * p
	})
	if err != nil {
		return 0, err
	}
	return e, nil
}

// Gradient returns the derivative of the energy with respect to each position (minus the forces).
func (M *Morse) Gradient(pos *v3.Matrix, F mat.Matrix) (*v3.Matrix, error) {
	if pos == nil {
		return nil, fmt.Errorf("gorelax/potentials: nil coordinates")
	}
	g := v3.Zeros(pos.NVecs())
	err := M.each(pos, F, func(t pairTerm) {
		if t.i == t.j {
			return //doesn't depend on the position.
		}
		_, d1, _ := M.phi(t.d)
		gi := g.RawRowView(t.i)
		gj := g.RawRowView(t.j)
		for k := 0; k < 3; k++ {
			v := t.w * d1 * t.r[k] / t.d
			gj[k] += v
			gi[k] -= v
		}
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Virial returns V=-dE/de for a homogeneous strain e applied to positions and cell.
func (M *Morse) Virial(pos *v3.Matrix, F mat.Matrix) (*mat.Dense, error) {
	V := mat.NewDense(3, 3, nil)
	err := M.each(pos, F, func(t pairTerm) {
		_, d1, _ := M.phi(t.d)
		f := -t.w * d1 / t.d
		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				V.Set(a, b, V.At(a, b)+f*t.r[a]*t.r[b])
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return V, nil
}

// Hessian returns the second derivatives of the energy with respect to all the
// 3N flattened coordinates (3*atom+coordinate).
func (M *Morse) Hessian(pos *v3.Matrix, F mat.Matrix) (*mat.SymDense, error) {
	if pos == nil {
		return nil, fmt.Errorf("gorelax/potentials: nil coordinates")
	}
	n := 3 * pos.NVecs()
	h := make([]float64, n*n)
	add := func(r, c int, v float64) {
		h[r*n+c] += v
	}
	err := M.each(pos, F, func(t pairTerm) {
		if t.i == t.j {
			return
		}
		_, d1, d2 := M.phi(t.d)
		var u [3]float64
		for k := range u {
			u[k] = t.r[k] / t.d
		}
		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				var delta float64
				if a == b {
					delta = 1
				}
				B := t.w * (d2*u[a]*u[b] + d1/t.d*(delta-u[a]*u[b]))
				add(3*t.i+a, 3*t.i+b, B)
				add(3*t.j+a, 3*t.j+b, B)
				add(3*t.i+a, 3*t.j+b, -B)
				add(3*t.j+a, 3*t.i+b, -B)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return mat.NewSymDense(n, h), nil
}
