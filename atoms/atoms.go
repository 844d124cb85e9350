/*
 * atoms.go, part of gorelax.
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

// Package atoms provides Atoms, an in-memory implementation of relax.State, where
// the energy and its derivatives are obtained from a Calculator.
package atoms

import (
	"errors"
	"fmt"

	"github.com/rmera/relax"
	v3 "github.com/rmera/relax/v3"
	"gonum.org/v1/gonum/mat"
)

// ErrNoCalculator is returned when energies or derivatives are requested from
// an Atoms without a calculator.
var ErrNoCalculator = errors.New("gorelax/atoms: no calculator set")

// ErrNoHessian is returned when a Hessian is requested and the calculator can't give one.
var ErrNoHessian = errors.New("gorelax/atoms: calculator doesn't implement Hessian")

// Calculator gives the energy of a system and its derivatives, for the given positions
// and deformation matrix (whose columns are the cell vectors).
type Calculator interface {
	Energy(pos *v3.Matrix, F mat.Matrix) (float64, error)
	Gradient(pos *v3.Matrix, F mat.Matrix) (*v3.Matrix, error)
	//Virial returns -dE/de for a homogeneous strain e applied to positions and cell.
	Virial(pos *v3.Matrix, F mat.Matrix) (*mat.Dense, error)
}

// HessianCalculator is a Calculator that can also give the Hessian of the energy
// with respect to all the 3N flattened coordinates.
type HessianCalculator interface {
	Calculator
	Hessian(pos *v3.Matrix, F mat.Matrix) (*mat.SymDense, error)
}

// cache keeps the results of the calculator for the current configuration.
// Every write to the positions or the deformation empties it.
type cache struct {
	energy   *float64
	gradient *v3.Matrix
	virial   *mat.Dense
	hessian  *mat.SymDense
}

// Atoms is a set of atoms in a periodic cell. It implements relax.State.
// The values returned by the calculator are cached until the positions
// or the cell change. Atoms is not safe for concurrent use.
type Atoms struct {
	symbols []string
	pos     *v3.Matrix
	defm    *mat.Dense
	calc    Calculator
	c       cache
}

// New returns an Atoms with the given positions and deformation matrix, both of which are
// copied. symbols can be nil, otherwise it must have one element per atom. calc can be nil
// and set later with SetCalculator.
func New(symbols []string, pos *v3.Matrix, F mat.Matrix, calc Calculator) (*Atoms, error) {
	if pos == nil {
		return nil, fmt.Errorf("gorelax/atoms: nil positions")
	}
	n := pos.NVecs()
	if symbols != nil && len(symbols) != n {
		return nil, fmt.Errorf("gorelax/atoms: %d symbols for %d atoms", len(symbols), n)
	}
	A := &Atoms{calc: calc}
	if symbols != nil {
		A.symbols = append([]string(nil), symbols...)
	}
	A.pos = v3.Zeros(n)
	A.pos.Copy(pos)
	if err := A.SetDefm(F); err != nil {
		return nil, err
	}
	return A, nil
}

// Len returns the number of atoms.
func (A *Atoms) Len() int {
	return A.pos.NVecs()
}

// Symbols returns a copy of the chemical symbols of the atoms, or nil if they were not given.
func (A *Atoms) Symbols() []string {
	if A.symbols == nil {
		return nil
	}
	return append([]string(nil), A.symbols...)
}

// Positions returns a copy of the coordinates.
func (A *Atoms) Positions() *v3.Matrix {
	ret := v3.Zeros(A.Len())
	ret.Copy(A.pos)
	return ret
}

// SetPositions copies pos into the coordinates of the atoms.
func (A *Atoms) SetPositions(pos *v3.Matrix) error {
	if pos == nil || pos.NVecs() != A.Len() {
		return fmt.Errorf("gorelax/atoms: wrong number of positions for %d atoms", A.Len())
	}
	A.pos.Copy(pos)
	A.c = cache{}
	return nil
}

// Defm returns a copy of the deformation matrix.
func (A *Atoms) Defm() *mat.Dense {
	return mat.DenseCopyOf(A.defm)
}

// SetDefm copies F into the deformation matrix.
func (A *Atoms) SetDefm(F mat.Matrix) error {
	if F == nil {
		return fmt.Errorf("gorelax/atoms: nil deformation matrix")
	}
	if r, c := F.Dims(); r != 3 || c != 3 {
		return fmt.Errorf("gorelax/atoms: deformation matrix is %dx%d, not 3x3", r, c)
	}
	A.defm = mat.DenseCopyOf(F)
	A.c = cache{}
	return nil
}

// Volume returns the volume of the cell (the determinant of the deformation matrix).
func (A *Atoms) Volume() float64 {
	return mat.Det(A.defm)
}

// Calculator returns the calculator of A.
func (A *Atoms) Calculator() Calculator {
	return A.calc
}

// SetCalculator sets the calculator for A, and drops any cached results.
func (A *Atoms) SetCalculator(calc Calculator) {
	A.calc = calc
	A.c = cache{}
}

// Energy returns the energy at the current configuration.
func (A *Atoms) Energy() (float64, error) {
	if A.c.energy != nil {
		return *A.c.energy, nil
	}
	if A.calc == nil {
		return 0, ErrNoCalculator
	}
	e, err := A.calc.Energy(A.pos, A.defm)
	if err != nil {
		return 0, fmt.Errorf("gorelax/atoms: Energy: %w", err)
	}
	A.c.energy = &e
	return e, nil
}

// Gradient returns a copy of the gradient of the energy with respect to the positions.
func (A *Atoms) Gradient() (*v3.Matrix, error) {
	if A.c.gradient == nil {
		if A.calc == nil {
			return nil, ErrNoCalculator
		}
		g, err := A.calc.Gradient(A.pos, A.defm)
		if err != nil {
			return nil, fmt.Errorf("gorelax/atoms: Gradient: %w", err)
		}
		A.c.gradient = g
	}
	ret := v3.Zeros(A.Len())
	ret.Copy(A.c.gradient)
	return ret, nil
}

// Virial returns a copy of the virial at the current configuration.
func (A *Atoms) Virial() (*mat.Dense, error) {
	if A.c.virial == nil {
		if A.calc == nil {
			return nil, ErrNoCalculator
		}
		V, err := A.calc.Virial(A.pos, A.defm)
		if err != nil {
			return nil, fmt.Errorf("gorelax/atoms: Virial: %w", err)
		}
		A.c.virial = V
	}
	return mat.DenseCopyOf(A.c.virial), nil
}

// Hessian returns a copy of the Hessian of the energy with respect to the 3N
// flattened coordinates. It returns ErrNoHessian if the calculator can't give it.
func (A *Atoms) Hessian() (*mat.SymDense, error) {
	if A.c.hessian == nil {
		if A.calc == nil {
			return nil, ErrNoCalculator
		}
		hc, ok := A.calc.(HessianCalculator)
		if !ok {
			return nil, ErrNoHessian
		}
		H, err := hc.Hessian(A.pos, A.defm)
		if err != nil {
			return nil, fmt.Errorf("gorelax/atoms: Hessian: %w", err)
		}
		A.c.hessian = H
	}
	ret := mat.NewSymDense(A.c.hessian.SymmetricDim(), nil)
	ret.CopySym(A.c.hessian)
	return ret, nil
}

// Copy returns a deep copy of A which shares its calculator. The cache is not copied.
func (A *Atoms) Copy() *Atoms {
	ret := &Atoms{calc: A.calc}
	if A.symbols != nil {
		ret.symbols = append([]string(nil), A.symbols...)
	}
	ret.pos = A.Positions()
	ret.defm = A.Defm()
	return ret
}

var (
	_ relax.State     = (*Atoms)(nil)
	_ relax.Hessianer = (*Atoms)(nil)
)
