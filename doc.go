/*
 * doc.go, part of gorelax.
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

/*
Package relax is the main package of the gorelax library. It maps an atomistic
configuration (the positions of N atoms and a 3x3 cell deformation matrix) to and
from a flat vector of degrees of freedom (dofs) that a generic unconstrained
optimizer can work with, and gives the gradient of the energy with respect to
those dofs.

# Constraints

FixedCell relaxes the positions only. The dofs are the free coordinates
of the atoms. It can also restrict a Hessian (or any symmetric matrix over
all 3N coordinates) to the dofs.

VariableCell relaxes positions and cell together. Positions are described
as an affine transport of a reference configuration plus a residual
displacement, the dofs are the free residuals followed by the 9 elements
of the deformation matrix.

Which coordinates are free is given by a Selection: a list of free atoms, a
list of clamped atoms, or a full 3xN boolean mask. See FreeIndices.

Flat vectors are atom-major: coordinate k of atom i is element 3*i+k. Indexes
of atoms and coordinates start at 0.

The atomistic configuration itself is anything that implements State. The
atoms package provides an in-memory implementation, and the minimize package
drives gonum's optimizers through a Constraint.
*/
package relax
