/*
 * dofs.go, part of gorelax.
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

import "gonum.org/v1/gonum/mat"

//These are the functions an optimizer calls. Calls for the same state must not
//be interleaved or run concurrently.

// Dofs returns the dof vector for s under the constraint c.
func Dofs(s State, c Constraint) ([]float64, error) {
	return c.Dofs(s)
}

// SetDofs writes the dof vector x in s, under the constraint c.
func SetDofs(s State, c Constraint, x []float64) error {
	return c.SetDofs(s, x)
}

// Gradient returns the derivatives of the energy of s with respect to the dofs
// of the constraint c, in the same order as Dofs.
func Gradient(s State, c Constraint) ([]float64, error) {
	return c.Gradient(s)
}

// Energy sets the dofs of s to x, and returns the energy of the resulting state.
// Notice that s is modified.
func Energy(s State, c Constraint, x []float64) (float64, error) {
	if err := c.SetDofs(s, x); err != nil {
		return 0, errDecorate(err, "Energy")
	}
	e, err := s.Energy()
	if err != nil {
		return 0, errDecorate(err, "Energy")
	}
	return e, nil
}

// Project projects s onto the constraint surface of c.
func Project(s State, c Constraint) (State, error) {
	return c.Project(s)
}

// ProjectMatrix restricts M, which spans all coordinates of the system, to the dofs of c.
// It returns an error wrapping ErrNotSupported if c can't do that.
func ProjectMatrix(c Constraint, M mat.Symmetric) (*mat.SymDense, error) {
	p, ok := c.(MatrixProjector)
	if !ok {
		return nil, newError(ErrNotSupported, "ProjectMatrix", "constraint %T can't project matrices", c)
	}
	return p.ProjectMatrix(M)
}

var (
	_ Constraint      = (*FixedCell)(nil)
	_ MatrixProjector = (*FixedCell)(nil)
	_ Constraint      = (*VariableCell)(nil)
)
