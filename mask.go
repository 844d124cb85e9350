/*
 * mask.go, part of gorelax.
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

// Selection tells which coordinates of a system are allowed to move.
// At most one of the fields can be non-nil. A nil field means that
// the field was not given (an empty, non-nil slice is a valid selection).
// A nil *Selection, or a Selection with all fields nil, means that every
// coordinate is free.
type Selection struct {
	//Indexes of the atoms that are free to move. All 3 coordinates of each
	//atom in the list are free, the ones of every other atom are clamped.
	Free []int

	//Indexes of the atoms that can't move. Every other atom is free.
	Clamp []int

	//Mask must have 3 rows (x, y and z) with one element per atom.
	//Mask[k][i] is true if the coordinate k of the atom i is free.
	Mask [][]bool
}

// given returns the number of non-nil fields in S.
func (S *Selection) given() int {
	var n int
	if S.Free != nil {
		n++
	}
	if S.Clamp != nil {
		n++
	}
	if S.Mask != nil {
		n++
	}
	return n
}

// FreeIndices returns, in increasing order, the indexes of the flattened coordinates
// (3*atom+coordinate) of a system of natoms atoms that are free to move according to sel.
// It returns an error wrapping ErrConfiguration if more than one of sel's fields is given,
// if the mask has the wrong shape, or if any atom index is out of range.
func FreeIndices(natoms int, sel *Selection) ([]int, error) {
	const caller = "FreeIndices"
	if natoms < 0 {
		return nil, newError(ErrConfiguration, caller, "negative number of atoms: %d", natoms)
	}
	if sel == nil {
		sel = new(Selection)
	}
	if sel.given() > 1 {
		return nil, newError(ErrConfiguration, caller, "at most one of free, clamp or mask can be given")
	}
	var mask [][]bool
	switch {
	case sel.Mask != nil:
		if len(sel.Mask) != 3 {
			return nil, newError(ErrConfiguration, caller, "the mask must have 3 rows, not %d", len(sel.Mask))
		}
		for k, row := range sel.Mask {
			if len(row) != natoms {
				return nil, newError(ErrConfiguration, caller, "row %d of the mask has %d elements, but there are %d atoms", k, len(row), natoms)
			}
		}
		mask = sel.Mask
	case sel.Free != nil || sel.Clamp != nil:
		free := sel.Free
		if sel.Clamp != nil {
			if err := checkAtoms(natoms, sel.Clamp, "clamp"); err != nil {
				return nil, err
			}
			free = complement(natoms, sel.Clamp)
		} else if err := checkAtoms(natoms, free, "free"); err != nil {
			return nil, err
		}
		mask = atomsMask(natoms, free)
	default:
		ret := make([]int, 3*natoms)
		for i := range ret {
			ret[i] = i
		}
		return ret, nil
	}
	ret := make([]int, 0, 3*natoms)
	for i := 0; i < natoms; i++ {
		for k := 0; k < 3; k++ {
			if mask[k][i] {
				ret = append(ret, flatIndex(i, k))
			}
		}
	}
	return ret, nil
}

// checkAtoms returns an error if any index in atoms is out of the range [0,natoms).
func checkAtoms(natoms int, atoms []int, name string) error {
	for _, v := range atoms {
		if v < 0 || v >= natoms {
			return newError(ErrConfiguration, "FreeIndices", "atom %d in the %s list is out of range for %d atoms", v, name, natoms)
		}
	}
	return nil
}

// complement returns the atoms in [0,natoms) that are not in atoms.
func complement(natoms int, atoms []int) []int {
	in := make([]bool, natoms)
	for _, v := range atoms {
		in[v] = true
	}
	ret := make([]int, 0, natoms)
	for i, v := range in {
		if !v {
			ret = append(ret, i)
		}
	}
	return ret
}

// atomsMask returns a 3xnatoms mask where all the coordinates of the atoms in free are true.
func atomsMask(natoms int, free []int) [][]bool {
	mask := make([][]bool, 3)
	for k := range mask {
		mask[k] = make([]bool, natoms)
	}
	for _, v := range free {
		for k := 0; k < 3; k++ {
			mask[k][v] = true
		}
	}
	return mask
}
