/*
 * v3_test.go, part of gorelax.
 *
 * Copyright 2013 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// Returns an identity matrix spanning span cols and rows
func gnEye(span int) *mat.Dense {
	A := mat.NewDense(span, span, nil)
	for i := 0; i < span; i++ {
		A.Set(i, i, 1.0)
	}
	return A
}

func TestGeo(Te *testing.T) {
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9}
	A, err := NewMatrix(a)
	if err != nil {
		Te.Fatal(err)
	}
	ar, _ := A.Dims()
	T := Zeros(ar)
	B := gnEye(ar)
	T.Mul(A, B)
	if !mat.Equal(T, A) {
		Te.Errorf("A*I should be A, got %v", T)
	}
	//B is a *mat.Dense, the receiver can be one of the Matrix arguments.
	A.Mul(A, B)
	if !mat.Equal(T, A) {
		Te.Errorf("In-place A*I should be A, got %v", A)
	}
	fmt.Println("A*I\n", T)
}

func TestNewMatrix(Te *testing.T) {
	if _, err := NewMatrix([]float64{1, 2, 3, 4}); err == nil {
		Te.Error("A slice with length not divisible by 3 should give an error")
	}
	if _, err := NewMatrix(nil); err == nil {
		Te.Error("An empty slice should give an error")
	}
}

func TestFlat(Te *testing.T) {
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	A, err := NewMatrix(append([]float64(nil), a...))
	if err != nil {
		Te.Fatal(err)
	}
	f := A.Flat()
	for i, v := range a {
		if f[i] != v {
			Te.Fatalf("Flat: element %d is %f, expected %f", i, f[i], v)
		}
	}
	if A.At(2, 1) != f[3*2+1] {
		Te.Errorf("Flat order should be atom-major")
	}
	//the flat slice is a copy
	f[0] = -1
	if A.At(0, 0) == -1 {
		Te.Errorf("Flat should return a copy")
	}
	dest := make([]float64, 20)
	g := A.Flat(dest)
	if len(g) != 12 || &g[0] != &dest[0] || g[11] != 12 {
		Te.Errorf("Flat should use a large enough destination: %v", g)
	}
	B := Zeros(4)
	B.SetFlat(a)
	if !mat.Equal(A, B) {
		Te.Errorf("SetFlat didn't reproduce the matrix: %v %v", A, B)
	}
	err = Maybe(func() { B.SetFlat(a[:5]) })
	if err == nil {
		Te.Errorf("SetFlat with the wrong length should panic")
	}
}

func TestApplyLinear(Te *testing.T) {
	A, _ := NewMatrix([]float64{1, 0, 0, 0, 1, 0, 1, 2, 3})
	R := mat.NewDense(3, 3, []float64{0, -1, 0, 1, 0, 0, 0, 0, 2})
	B := Zeros(3)
	B.ApplyLinear(R, A)
	expected := []float64{0, 1, 0, -1, 0, 0, -2, 1, 6}
	for i, v := range B.Flat() {
		if math.Abs(v-expected[i]) > 1e-14 {
			Te.Fatalf("ApplyLinear: got %v expected %v", B.Flat(), expected)
		}
	}
	//in place
	A.ApplyLinear(R, A)
	if !mat.Equal(A, B) {
		Te.Errorf("ApplyLinear in place differs: %v %v", A, B)
	}
}

func TestCopy(Te *testing.T) {
	A, err := NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	if err != nil {
		Te.Fatal(err)
	}
	B := Zeros(2)
	B.Copy(A)
	if !mat.Equal(A, B) {
		Te.Errorf("Copy: %v %v", A, B)
	}
	B.Set(0, 0, -1)
	if A.At(0, 0) != 1 {
		Te.Errorf("Copy should not share data: %v", A)
	}
	if err := Maybe(func() { Zeros(2).SetFlat([]float64{1}) }); err == nil {
		Te.Errorf("Maybe should return the panic as an error")
	}
	if err := Maybe(func() { mat.NewDense(2, 2, nil).Mul(A, A) }); err == nil {
		Te.Errorf("Maybe should return gonum's panics as errors")
	}
	if A.NVecs() != 2 {
		Te.Errorf("NVecs: %d", A.NVecs())
	}
	fmt.Println(A)
}
