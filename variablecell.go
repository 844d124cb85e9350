/*
 * variablecell.go, part of gorelax.
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

package relax

import (
	v3 "github.com/rmera/relax/v3"
	"gonum.org/v1/gonum/mat"
)

// VariableCell is a Constraint for relaxing the positions of the atoms and the shape of
// the cell together. The positions are described relative to a reference, taken when the
// constraint is built: with F0 and X0 the reference deformation and positions, and
// A=F*F0^-1 the affine map from the reference cell to the current one, the position of
// each atom is x_i = A*x0_i + u_i.
// The dofs are the free elements of the residual displacements u, followed by the
// 9 elements of F. The clamped atoms still follow the cell, only their residual
// displacement is kept at zero.
type VariableCell struct {
	natoms int
	ifree  []int
	x0     *v3.Matrix
	f0     *mat.Dense
	f0inv  *mat.Dense
}

// NewVariableCell returns a VariableCell constraint with the current positions and
// deformation of s as reference, and the free coordinates given by sel (see FreeIndices).
// It returns an error wrapping ErrSingularCell if the deformation of s can't be inverted,
// and one wrapping ErrConfiguration if s has no atoms.
func NewVariableCell(s State, sel *Selection) (*VariableCell, error) {
	n := s.Len()
	if n == 0 {
		return nil, newError(ErrConfiguration, "NewVariableCell", "the state has no atoms")
	}
	ifree, err := FreeIndices(n, sel)
	if err != nil {
		return nil, errDecorate(err, "NewVariableCell")
	}
	f0 := mat.DenseCopyOf(s.Defm())
	f0inv, err := invert3(f0, "NewVariableCell")
	if err != nil {
		return nil, err
	}
	x0 := v3.Zeros(n)
	x0.Copy(s.Positions())
	return &VariableCell{natoms: n, ifree: ifree, x0: x0, f0: f0, f0inv: f0inv}, nil
}

// NDofs returns the length of the dof vectors for the constraint.
func (C *VariableCell) NDofs() int {
	return len(C.ifree) + cellDofs
}

// FreeIndices returns a copy of the indexes of the free flattened coordinates.
func (C *VariableCell) FreeIndices() []int {
	return append([]int(nil), C.ifree...)
}

// Reference returns copies of the reference positions and deformation.
func (C *VariableCell) Reference() (*v3.Matrix, *mat.Dense) {
	x0 := v3.Zeros(C.natoms)
	x0.Copy(C.x0)
	return x0, mat.DenseCopyOf(C.f0)
}

func (C *VariableCell) checkState(s State, caller string) error {
	if n := s.Len(); n != C.natoms {
		return newError(ErrAtomCount, caller, "state has %d atoms, constraint was built for %d", n, C.natoms)
	}
	return nil
}

// affine returns A=F*F0^-1
func (C *VariableCell) affine(F mat.Matrix) *mat.Dense {
	A := mat.NewDense(3, 3, nil)
	A.Mul(F, C.f0inv)
	return A
}

// residuals returns U=X-A*X0, with A the affine map for the deformation F.
func (C *VariableCell) residuals(X *v3.Matrix, F mat.Matrix) *v3.Matrix {
	U := v3.Zeros(C.natoms)
	U.ApplyLinear(C.affine(F), C.x0)
	U.Dense.Sub(X.Dense, U.Dense)
	return U
}

// Dofs returns the free residual displacements of the atoms in s with respect to the
// reference, followed by the deformation of s.
func (C *VariableCell) Dofs(s State) ([]float64, error) {
	if err := C.checkState(s, "VariableCell.Dofs"); err != nil {
		return nil, err
	}
	F := s.Defm()
	U := C.residuals(s.Positions(), F)
	ret := gatherMatrix(make([]float64, 0, C.NDofs()), U, C.ifree)
	return flatCell(ret, F), nil
}

// SetDofs sets the deformation of s to the last 9 elements of x, and the positions
// to the affine transformation of the reference positions, plus the free residual
// displacements in the rest of x.
func (C *VariableCell) SetDofs(s State, x []float64) error {
	if err := C.checkState(s, "VariableCell.SetDofs"); err != nil {
		return err
	}
	if len(x) != C.NDofs() {
		return newError(ErrDofLength, "VariableCell.SetDofs", "got %d dofs, expected %d", len(x), C.NDofs())
	}
	np := len(C.ifree)
	F := cellFromFlat(x[np:])
	X := v3.Zeros(C.natoms)
	X.ApplyLinear(C.affine(F), C.x0)
	flat := X.Flat()
	scatterAdd(flat, C.ifree, x[:np])
	X.SetFlat(flat)
	if err := s.SetPositions(X); err != nil {
		return errDecorate(err, "VariableCell.SetDofs")
	}
	if err := s.SetDefm(F); err != nil {
		return errDecorate(err, "VariableCell.SetDofs")
	}
	return nil
}

// Gradient returns the derivative of the energy of s with respect to the dofs.
// The derivative with respect to the free residuals is the gradient for the
// corresponding coordinates. The derivative with respect to F (at constant residuals) is
//
//	S = (-V - sum_i g_i u_i^T) F^-T
//
// with V the virial, g_i the gradient for atom i and u_i its residual.
// -V*F^-T alone is the derivative at constant fractional coordinates. The sum
// vanishes when all the residuals are zero.
func (C *VariableCell) Gradient(s State) ([]float64, error) {
	const caller = "VariableCell.Gradient"
	if err := C.checkState(s, caller); err != nil {
		return nil, err
	}
	F := s.Defm()
	finv, err := invert3(F, caller)
	if err != nil {
		return nil, err
	}
	G, err := s.Gradient()
	if err != nil {
		return nil, errDecorate(err, caller)
	}
	V, err := s.Virial()
	if err != nil {
		return nil, errDecorate(err, caller)
	}
	U := C.residuals(s.Positions(), F)
	W := mat.NewDense(3, 3, nil)
	W.Mul(G.Dense.T(), U.Dense)
	W.Add(W, V)
	W.Scale(-1, W)
	S := mat.NewDense(3, 3, nil)
	S.Mul(W, finv.T())
	ret := gatherMatrix(make([]float64, 0, C.NDofs()), G, C.ifree)
	return flatCell(ret, S), nil
}

// Project does nothing, and returns s. Constraints for the volume or shape
// of the cell would project here.
func (C *VariableCell) Project(s State) (State, error) {
	return s, nil
}
