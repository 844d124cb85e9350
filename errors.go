/*
 * errors.go, part of gorelax.
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
	"errors"
	"fmt"
)

// The kinds of errors returned by this package. Every Error unwraps to one of them,
// so they can be checked with errors.Is.
var (
	// ErrConfiguration is returned when a constraint can't be built from the
	// given free/clamp/mask selection.
	ErrConfiguration = errors.New("gorelax: invalid constraint configuration")

	// ErrSingularCell is returned when a deformation matrix that needs to be inverted is singular.
	ErrSingularCell = errors.New("gorelax: singular deformation matrix")

	// ErrDofLength signals a dof (or gradient, or matrix) of the wrong size for the constraint.
	ErrDofLength = errors.New("gorelax: dof vector length mismatch")

	// ErrAtomCount signals a state with a different number of atoms than the one
	// the constraint was built for.
	ErrAtomCount = errors.New("gorelax: atom count mismatch")

	// ErrNotSupported is returned when a constraint lacks an optional capability.
	ErrNotSupported = errors.New("gorelax: operation not supported by constraint")
)

// Error is the error type for the relax package. The Decorate method allows to add
// the names of the functions the error went through, without changing its type.
// None of these errors is transient, so they are all critical.
type Error struct {
	message  string
	kind     error
	deco     []string
	critical bool
}

// Error returns a string with an error message.
func (err Error) Error() string {
	return fmt.Sprintf("%s: %s", err.kind, err.message)
}

// Unwrap returns the kind of the error (one of the Err* variables of this package).
func (err Error) Unwrap() error {
	return err.kind
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical return whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

func newError(kind error, caller string, format string, args ...interface{}) Error {
	return Error{message: fmt.Sprintf(format, args...), kind: kind, deco: []string{caller}, critical: true}
}

// errDecorate adds the caller's name to the decorations of err, if err is an Error.
// Other errors, which come from the State, are wrapped as they are.
func errDecorate(err error, caller string) error {
	var e Error
	if errors.As(err, &e) {
		e.deco = append(e.deco, caller)
		return e
	}
	return fmt.Errorf("gorelax/%s: %w", caller, err)
}
