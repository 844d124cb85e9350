/*
 * matrixhelp.go, part of gorelax.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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
	"math"

	"gonum.org/v1/gonum/mat"
)

// det returns the determinant of a 3x3 matrix. Panics if the matrix is not 3x3
func det(A mat.Matrix) float64 {
	r, c := A.Dims()
	if r != 3 || c != 3 {
		panic("Determinants are for now only available for 3x3 matrices")
	}
	return (A.At(0, 0)*(A.At(1, 1)*A.At(2, 2)-A.At(2, 1)*A.At(1, 2)) - A.At(1, 0)*(A.At(0, 1)*A.At(2, 2)-A.At(2, 1)*A.At(0, 2)) + A.At(2, 0)*(A.At(0, 1)*A.At(1, 2)-A.At(1, 1)*A.At(0, 2)))
}

// invert3 returns the inverse of the 3x3 matrix F, or an error wrapping ErrSingularCell if
// F is singular, ill-conditioned, or not 3x3. Caller is used to decorate the error.
func invert3(F mat.Matrix, caller string) (*mat.Dense, error) {
	r, c := F.Dims()
	if r != 3 || c != 3 {
		return nil, newError(ErrSingularCell, caller, "deformation matrix is %dx%d, not 3x3", r, c)
	}
	d := det(F)
	if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return nil, newError(ErrSingularCell, caller, "deformation matrix has determinant %g", d)
	}
	inv := mat.NewDense(3, 3, nil)
	//gonum returns a mat.Condition error for ill-conditioned matrices.
	if err := inv.Inverse(F); err != nil {
		return nil, newError(ErrSingularCell, caller, "can't invert deformation matrix: %v", err)
	}
	return inv, nil
}
