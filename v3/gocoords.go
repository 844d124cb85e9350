/*
 * gocoords.go, part of gorelax.
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

package v3

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

//METHODS

// Flat returns a new slice with the elements of F in row-major order. Element 3*i+k
// is coordinate k of the vector i. If dest is given, and large enough, it is used
// to store the result.
func (F *Matrix) Flat(dest ...[]float64) []float64 {
	n := F.NVecs()
	var ret []float64
	if len(dest) > 0 && len(dest[0]) >= 3*n {
		ret = dest[0][:3*n]
	} else {
		ret = make([]float64, 3*n)
	}
	for i := 0; i < n; i++ {
		copy(ret[3*i:3*i+3], F.RawRowView(i))
	}
	return ret
}

// SetFlat sets the elements of F from data, which has to be in the
// row-major order used by Flat. Panics if the lengths don't match.
func (F *Matrix) SetFlat(data []float64) {
	n := F.NVecs()
	if len(data) != 3*n {
		panic(ErrShape)
	}
	for i := 0; i < n; i++ {
		copy(F.RawRowView(i), data[3*i:3*i+3])
	}
}

// ApplyLinear puts in the receiver the vectors of B, each transformed by the 3x3 matrix A,
// i.e. each row b_i of the receiver becomes A*b_i. The receiver can be B.
func (F *Matrix) ApplyLinear(A mat.Matrix, B *Matrix) {
	r, c := A.Dims()
	if r != 3 || c != 3 {
		panic(ErrShape)
	}
	n := B.NVecs()
	if F.NVecs() != n {
		panic(ErrShape)
	}
	var a [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			a[i][j] = A.At(i, j)
		}
	}
	for i := 0; i < n; i++ {
		b := B.RawRowView(i)
		x, y, z := b[0], b[1], b[2]
		f := F.RawRowView(i)
		for k := 0; k < 3; k++ {
			f[k] = a[k][0]*x + a[k][1]*y + a[k][2]*z
		}
	}
}

// String returns a neat string representation of a Matrix
func (F *Matrix) String() string {
	r, c := F.Dims()
	v := make([]string, r+2)
	v[0] = "\n["
	v[len(v)-1] = " ]"
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, F.Dense) //now row has a slice witht he row i
		if i == 0 {
			v[i+1] = fmt.Sprintf("%6.2f %6.2f %6.2f\n", row[0], row[1], row[2])
			continue
		} else if i == r-1 {
			v[i+1] = fmt.Sprintf(" %6.2f %6.2f %6.2f", row[0], row[1], row[2])
			continue
		} else {
			v[i+1] = fmt.Sprintf(" %6.2f %6.2f %6.2f\n", row[0], row[1], row[2])
		}
	}
	v[len(v)-2] = strings.Replace(v[len(v)-2], "\n", "", 1)
	return strings.Join(v, "")
}
