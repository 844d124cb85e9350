/*
 * fixedcell.go, part of gorelax.
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
	"gonum.org/v1/gonum/mat"
)

// FixedCell is a Constraint for relaxing only the positions of the atoms. The dofs are the
// free coordinates of the atoms, the cell is never modified.
type FixedCell struct {
	natoms int
	ifree  []int
}

// NewFixedCell returns a FixedCell constraint for s, with the free coordinates
// given by sel (see FreeIndices).
func NewFixedCell(s State, sel *Selection) (*FixedCell, error) {
	ifree, err := FreeIndices(s.Len(), sel)
	if err != nil {
		return nil, errDecorate(err, "NewFixedCell")
	}
	return &FixedCell{natoms: s.Len(), ifree: ifree}, nil
}

// NDofs returns the length of the dof vectors for the constraint.
func (C *FixedCell) NDofs() int {
	return len(C.ifree)
}

// FreeIndices returns a copy of the indexes of the free flattened coordinates.
func (C *FixedCell) FreeIndices() []int {
	return append([]int(nil), C.ifree...)
}

func (C *FixedCell) checkState(s State, caller string) error {
	if n := s.Len(); n != C.natoms {
		return newError(ErrAtomCount, caller, "state has %d atoms, constraint was built for %d", n, C.natoms)
	}
	return nil
}

// Dofs returns the free coordinates of the atoms in s.
func (C *FixedCell) Dofs(s State) ([]float64, error) {
	if err := C.checkState(s, "FixedCell.Dofs"); err != nil {
		return nil, err
	}
	return gatherMatrix(make([]float64, 0, len(C.ifree)), s.Positions(), C.ifree), nil
}

// SetDofs sets the free coordinates of the atoms in s to the values in x.
// The clamped coordinates keep their current values.
func (C *FixedCell) SetDofs(s State, x []float64) error {
	if err := C.checkState(s, "FixedCell.SetDofs"); err != nil {
		return err
	}
	if len(x) != len(C.ifree) {
		return newError(ErrDofLength, "FixedCell.SetDofs", "got %d dofs, expected %d", len(x), len(C.ifree))
	}
	pos := s.Positions()
	flat := pos.Flat()
	scatter(flat, C.ifree, x)
	pos.SetFlat(flat)
	if err := s.SetPositions(pos); err != nil {
		return errDecorate(err, "FixedCell.SetDofs")
	}
	return nil
}

// Gradient returns the derivatives of the energy of s with respect to its free coordinates.
func (C *FixedCell) Gradient(s State) ([]float64, error) {
	if err := C.checkState(s, "FixedCell.Gradient"); err != nil {
		return nil, err
	}
	g, err := s.Gradient()
	if err != nil {
		return nil, errDecorate(err, "FixedCell.Gradient")
	}
	return gatherMatrix(make([]float64, 0, len(C.ifree)), g, C.ifree), nil
}

// Project does nothing, as the constraint has no surface to project on. It returns s.
func (C *FixedCell) Project(s State) (State, error) {
	return s, nil
}

// ProjectMatrix returns the submatrix of M with the rows and columns of the free
// coordinates, in the order of the dof vector. M has to span all the 3N coordinates.
// There is no empty matrix to return when no coordinate is free, so in that case
// ProjectMatrix returns an error wrapping ErrConfiguration.
func (C *FixedCell) ProjectMatrix(M mat.Symmetric) (*mat.SymDense, error) {
	if n := M.SymmetricDim(); n != 3*C.natoms {
		return nil, newError(ErrDofLength, "FixedCell.ProjectMatrix", "matrix has dimension %d, expected %d", n, 3*C.natoms)
	}
	if len(C.ifree) == 0 {
		return nil, newError(ErrConfiguration, "FixedCell.ProjectMatrix", "no free coordinates")
	}
	ret := mat.NewSymDense(len(C.ifree), nil)
	for i, v := range C.ifree {
		for j := i; j < len(C.ifree); j++ {
			ret.SetSym(i, j, M.At(v, C.ifree[j]))
		}
	}
	return ret, nil
}
