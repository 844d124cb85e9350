/*
 * flatten.go, part of gorelax.
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

//All the conversions between matrices and flat vectors used by the constraints
//go through the functions in this file. Positions and gradients are flattened
//atom-major (coordinate k of atom i at 3*i+k, see v3.Matrix.Flat), the
//3x3 cell matrices row-major.

// cellDofs is the number of dofs taken by the deformation matrix.
const cellDofs = 9

// flatIndex returns the index of coordinate k of atom i in the flat form of a
// position matrix.
func flatIndex(atom, coord int) int {
	return 3*atom + coord
}

// gather appends to dst the elements of x at the indexes in idx, in that order.
func gather(dst []float64, x []float64, idx []int) []float64 {
	for _, v := range idx {
		dst = append(dst, x[v])
	}
	return dst
}

// scatter sets the elements of dst at the indexes in idx to the values in vals.
func scatter(dst []float64, idx []int, vals []float64) {
	for i, v := range idx {
		dst[v] = vals[i]
	}
}

// scatterAdd adds the values in vals to the elements of dst at the indexes in idx.
func scatterAdd(dst []float64, idx []int, vals []float64) {
	for i, v := range idx {
		dst[v] += vals[i]
	}
}

// gatherMatrix appends to dst the elements of the flat form of P at the indexes in idx.
func gatherMatrix(dst []float64, P *v3.Matrix, idx []int) []float64 {
	return gather(dst, P.Flat(), idx)
}

// flatCell appends the 9 elements of the 3x3 matrix F to dst, row-major.
func flatCell(dst []float64, F mat.Matrix) []float64 {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			dst = append(dst, F.At(i, j))
		}
	}
	return dst
}

// cellFromFlat is the inverse of flatCell. x must have 9 elements, which are copied.
func cellFromFlat(x []float64) *mat.Dense {
	d := make([]float64, cellDofs)
	copy(d, x)
	return mat.NewDense(3, 3, d)
}
