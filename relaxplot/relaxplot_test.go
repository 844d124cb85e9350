/*
 * relaxplot_test.go, part of gorelax
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

package relaxplot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rmera/relax/minimize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrace(t *testing.T) {
	res := &minimize.Result{Trace: []minimize.Step{
		{Iteration: 0, Energy: -1.0, GradMax: 0.5},
		{Iteration: 1, Energy: -1.8, GradMax: 0.05},
		{Iteration: 2, Energy: -1.9, GradMax: 1e-3},
		{Iteration: 3, Energy: -1.9, GradMax: 0},
	}}
	prefix := filepath.Join(t.TempDir(), "relax")
	require.NoError(t, Trace(res, 1e-4, prefix))
	for _, suffix := range []string{"_energy.png", "_gradient.png"} {
		info, err := os.Stat(prefix + suffix)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestEmpty(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, Energy(nil, "", filepath.Join(dir, "e.png")))
	assert.Error(t, Gradient(nil, 0, "", filepath.Join(dir, "g.png")))
	assert.Error(t, Trace(nil, 0, filepath.Join(dir, "t")))
}
