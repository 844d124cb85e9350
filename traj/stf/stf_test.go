/*
 * stf_test.go, part of gorelax.
 *
 * Copyright 2021 Raul Mera <rauldotmeraatusachdotcl>
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
 */

package stf

import (
	"errors"
	"path/filepath"
	"testing"

	v3 "github.com/rmera/relax/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frames(t *testing.T) []*v3.Matrix {
	ret := make([]*v3.Matrix, 3)
	for i := range ret {
		m, err := v3.NewMatrix([]float64{
			0.12342 * float64(i), -1.5, 2.0,
			3.25, 4.0 + float64(i), -0.00049,
		})
		require.NoError(t, err)
		ret[i] = m
	}
	return ret
}

func TestWriteRead(t *testing.T) {
	box := []float64{3.1, 0.2, 0.1, 0, 2.9, 0.3, 0.2, 0.1, 3.0000000001}
	for _, ext := range []string{"stf", "stz", "stl", "str"} {
		t.Run(ext, func(t *testing.T) {
			name := filepath.Join(t.TempDir(), "test."+ext)
			w, err := NewWriter(name, 2, map[string]string{"title": "relax"})
			require.NoError(t, err)
			assert.Equal(t, 2, w.Len())
			in := frames(t)
			for _, f := range in {
				require.NoError(t, w.WNext(f, box))
			}
			require.NoError(t, w.WNext(in[0]))
			require.NoError(t, w.Close())
			assert.Error(t, w.WNext(in[0]))

			r, header, err := New(name)
			require.NoError(t, err)
			assert.Equal(t, "relax", header["title"])
			assert.Equal(t, "4", header["prec"])
			assert.Equal(t, 2, r.Len())
			assert.Equal(t, DefaultPrec, r.Prec())
			got := v3.Zeros(2)
			gotbox := make([]float64, 9)
			for _, f := range in {
				require.NoError(t, r.Next(got, gotbox))
				for i := 0; i < 2; i++ {
					for k := 0; k < 3; k++ {
						assert.InDelta(t, f.At(i, k), got.At(i, k), 0.5e-4)
					}
				}
				assert.Equal(t, box, gotbox)
			}
			require.NoError(t, r.Next(nil))
			err = r.Next(got)
			var last LastFrameError
			assert.True(t, errors.As(err, &last), "expected the end of the trajectory, got %v", err)
			assert.False(t, r.Readable())
		})
	}
}

func TestPrecision(t *testing.T) {
	name := filepath.Join(t.TempDir(), "prec.stf")
	w, err := NewWriter(name, 2, map[string]string{"prec": "1"})
	require.NoError(t, err)
	f := frames(t)[1]
	require.NoError(t, w.WNext(f))
	require.NoError(t, w.Close())
	r, _, err := New(name)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, 1, r.Prec())
	got := v3.Zeros(2)
	require.NoError(t, r.Next(got))
	assert.InDelta(t, 0.1, got.At(0, 0), 1e-12)
	assert.InDelta(t, 5.0, got.At(1, 1), 1e-12)
}

func TestWriterErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := NewWriter(filepath.Join(dir, "a.stf"), 0, nil)
	assert.Error(t, err)
	_, err = NewWriter(filepath.Join(dir, "b.stf"), 2, map[string]string{"a=b": "c"})
	assert.Error(t, err)
	w, err := NewWriter(filepath.Join(dir, "c.stf"), 2, nil)
	require.NoError(t, err)
	defer w.Close()
	assert.Error(t, w.WNext(nil))
	assert.Error(t, w.WNext(v3.Zeros(3)))
	_, _, err = New(filepath.Join(dir, "missing.stf"))
	assert.Error(t, err)
}

func TestConc(t *testing.T) {
	name := filepath.Join(t.TempDir(), "conc.stf")
	w, err := NewWriter(name, 2, nil)
	require.NoError(t, err)
	in := frames(t)
	for _, f := range in {
		require.NoError(t, w.WNext(f))
	}
	require.NoError(t, w.Close())

	r, _, err := New(name)
	require.NoError(t, err)
	defer r.Close()
	buf := []*v3.Matrix{v3.Zeros(2), nil, v3.Zeros(2)}
	chans, err := r.NextConc(buf)
	require.NoError(t, err)
	require.Len(t, chans, 3)
	first := <-chans[0]
	assert.InDelta(t, in[0].At(1, 1), first.At(1, 1), 1e-4)
	assert.Nil(t, <-chans[1])
	third := <-chans[2]
	assert.InDelta(t, in[2].At(1, 1), third.At(1, 1), 1e-4)

	_, err = r.NextConc([]*v3.Matrix{v3.Zeros(2)})
	assert.Error(t, err)
}
