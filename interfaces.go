/*
 * interfaces.go, part of gorelax.
 *
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
 *
 */

package relax

import (
	v3 "github.com/rmera/relax/v3"
	"gonum.org/v1/gonum/mat"
)

// State is the interface for an atomistic configuration: positions, a cell deformation
// and the energy, gradient and virial at the current configuration.
// The constraints only read and write through these methods; they never keep a State.
type State interface {

	//Returns the number of atoms
	Len() int

	//Positions returns a copy of the cartesian coordinates of the atoms, one row per atom.
	Positions() *v3.Matrix

	//SetPositions sets the coordinates of the atoms to the given ones.
	SetPositions(pos *v3.Matrix) error

	//Defm returns a copy of the 3x3 deformation matrix. The columns
	//of the matrix are the cell vectors.
	Defm() *mat.Dense

	//SetDefm sets the deformation matrix.
	SetDefm(F mat.Matrix) error

	//Energy at the current configuration.
	Energy() (float64, error)

	//Gradient of the energy with respect to the positions (i.e. minus the forces).
	Gradient() (*v3.Matrix, error)

	//Virial returns V=-dE/de, where e is a homogeneous strain applied to both
	//positions and cell (X->(I+e)X, F->(I+e)F), at e=0.
	Virial() (*mat.Dense, error)
}

// Hessianer is a State that can also give the Hessian of the energy with respect
// to all the 3N flattened coordinates.
type Hessianer interface {
	Hessian() (*mat.SymDense, error)
}

// Constraint maps a State to and from a flat vector of degrees of freedom (dofs).
// Dofs, SetDofs and Gradient use the same order for the vector, so that Gradient
// is the derivative of the energy with respect to the elements of the Dofs vector.
type Constraint interface {

	//Dofs returns the dof vector for the current state.
	Dofs(s State) ([]float64, error)

	//SetDofs writes the dof vector x into the state.
	SetDofs(s State, x []float64) error

	//Gradient returns the derivative of the energy of s with respect to its dofs.
	Gradient(s State) ([]float64, error)

	//Project moves s onto the constraint surface, if there is one, and returns it.
	Project(s State) (State, error)
}

// MatrixProjector is a Constraint that can restrict a matrix over all coordinates
// (like a Hessian or a preconditioner) to the dofs.
type MatrixProjector interface {
	ProjectMatrix(M mat.Symmetric) (*mat.SymDense, error)
}
