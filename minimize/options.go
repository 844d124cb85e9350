/*
 * options.go, part of gorelax.
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

package minimize

import (
	"strings"

	"go.uber.org/zap"
)

// Options contains the options for a relaxation.
type Options struct {
	method          string
	gradThreshold   float64
	energyTol       float64
	energyIters     int
	majorIterations int
	funcEvaluations int
	trajName        string
	logger          *zap.Logger
}

// DefaultOptions returns reasonable options for a relaxation: L-BFGS until the largest
// component of the gradient is under 1e-4, at most 1000 iterations, no trajectory
// and no logging.
func DefaultOptions() *Options {
	r := new(Options)
	r.method = "lbfgs"
	r.gradThreshold = 1e-4
	r.energyTol = 1e-10
	r.energyIters = 50
	r.majorIterations = 1000
	r.logger = zap.NewNop()
	return r
}

// Method returns the name of the optimization method, and sets it to a new value, if given.
// Valid names are lbfgs, bfgs, cg, gd (gradient descent) and newton. The names are not case-sensitive.
func (O *Options) Method(name ...string) string {
	if len(name) > 0 && name[0] != "" {
		O.method = strings.ToLower(name[0])
	}
	return O.method
}

// GradThreshold returns the threshold for the largest component of the gradient
// under which the relaxation is considered converged, and sets it to a new value, if given.
func (O *Options) GradThreshold(g ...float64) float64 {
	if len(g) > 0 && g[0] > 0 {
		O.gradThreshold = g[0]
	}
	return O.gradThreshold
}

// EnergyTol returns the energy tolerance and the number of iterations for the
// energy convergence criterion: the relaxation stops if the energy improves by less
// than tol in iters major iterations. It sets them to new values, if given.
func (O *Options) EnergyTol(tol float64, iters ...int) (float64, int) {
	if tol > 0 {
		O.energyTol = tol
	}
	if len(iters) > 0 && iters[0] > 0 {
		O.energyIters = iters[0]
	}
	return O.energyTol, O.energyIters
}

// MajorIterations returns the maximum number of iterations, and sets it to a new value,
// if given. 0 means no limit.
func (O *Options) MajorIterations(n ...int) int {
	if len(n) > 0 && n[0] >= 0 {
		O.majorIterations = n[0]
	}
	return O.majorIterations
}

// FuncEvaluations returns the maximum number of energy evaluations, and sets it to a new value,
// if given. 0 means no limit.
func (O *Options) FuncEvaluations(n ...int) int {
	if len(n) > 0 && n[0] >= 0 {
		O.funcEvaluations = n[0]
	}
	return O.funcEvaluations
}

// TrajName returns the name of the stf file where each iteration is written, and sets it to a
// new value, if given. No trajectory is written if this value is an empty string.
func (O *Options) TrajName(name ...string) string {
	if len(name) > 0 {
		O.trajName = name[0]
	}
	return O.trajName
}

// Logger returns the logger for the relaxation, and sets it to a new value, if given.
func (O *Options) Logger(l ...*zap.Logger) *zap.Logger {
	if len(l) > 0 && l[0] != nil {
		O.logger = l[0]
	}
	return O.logger
}
