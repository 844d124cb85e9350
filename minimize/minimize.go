/*
 * minimize.go, part of gorelax.
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

// Package minimize relaxes a relax.State under a relax.Constraint with the
// optimizers in gonum's optimize package.
package minimize

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/rmera/relax"
	"github.com/rmera/relax/traj/stf"
	v3 "github.com/rmera/relax/v3"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// ErrUnknownMethod is returned when the optimization method in the options is not known.
var ErrUnknownMethod = errors.New("gorelax/minimize: unknown optimization method")

// ErrNoHessian is returned when a method that needs the Hessian is requested, but
// the state or the constraint can't give it.
var ErrNoHessian = errors.New("gorelax/minimize: method needs a Hessian")

// evaluator runs the state evaluations requested by the optimizer. The optimizer
// can't take errors from its callbacks, so the first one is kept here, and the
// recorder stops the optimization when it finds it.
type evaluator struct {
	s   relax.State
	c   relax.Constraint
	mu  sync.Mutex
	err error
}

func (E *evaluator) setErr(err error) {
	E.mu.Lock()
	defer E.mu.Unlock()
	if E.err == nil {
		E.err = err
	}
}

func (E *evaluator) getErr() error {
	E.mu.Lock()
	defer E.mu.Unlock()
	return E.err
}

// guard runs fn, turning the panics of the v3 package into errors.
func (E *evaluator) guard(fn func() error) bool {
	var err error
	perr := v3.Maybe(func() { err = fn() })
	if perr != nil {
		err = perr
	}
	if err != nil {
		E.setErr(err)
		return false
	}
	return true
}

func (E *evaluator) energy(x []float64) float64 {
	e := math.NaN()
	E.guard(func() error {
		v, err := relax.Energy(E.s, E.c, x)
		if err != nil {
			return err
		}
		e = v
		return nil
	})
	return e
}

func (E *evaluator) gradient(grad, x []float64) {
	ok := E.guard(func() error {
		if err := relax.SetDofs(E.s, E.c, x); err != nil {
			return err
		}
		g, err := relax.Gradient(E.s, E.c)
		if err != nil {
			return err
		}
		if len(g) != len(grad) {
			return fmt.Errorf("gorelax/minimize: gradient has %d elements, expected %d", len(g), len(grad))
		}
		copy(grad, g)
		return nil
	})
	if !ok {
		for i := range grad {
			grad[i] = math.NaN()
		}
	}
}

func (E *evaluator) hessian(h relax.Hessianer, p relax.MatrixProjector) func(*mat.SymDense, []float64) {
	return func(hess *mat.SymDense, x []float64) {
		ok := E.guard(func() error {
			if err := relax.SetDofs(E.s, E.c, x); err != nil {
				return err
			}
			H, err := h.Hessian()
			if err != nil {
				return err
			}
			P, err := p.ProjectMatrix(H)
			if err != nil {
				return err
			}
			hess.CopySym(P)
			return nil
		})
		if !ok {
			n := hess.SymmetricDim()
			for i := 0; i < n; i++ {
				for j := i; j < n; j++ {
					hess.SetSym(i, j, math.NaN())
				}
			}
		}
	}
}

// problem builds the optimization problem and returns it with its evaluator.
func problem(s relax.State, c relax.Constraint) (optimize.Problem, *evaluator) {
	E := &evaluator{s: s, c: c}
	p := optimize.Problem{
		Func: E.energy,
		Grad: E.gradient,
	}
	h, okh := s.(relax.Hessianer)
	mp, okp := c.(relax.MatrixProjector)
	if okh && okp {
		p.Hess = E.hessian(h, mp)
	}
	return p, E
}

// Problem returns a gonum optimization problem for the energy of s as a function of the dofs
// of c. The Hess field is only set if s is a relax.Hessianer and c a relax.MatrixProjector.
// The functions modify s. Errors in the evaluations give NaN energies and gradients; use Run
// to get them as errors.
func Problem(s relax.State, c relax.Constraint) optimize.Problem {
	p, _ := problem(s, c)
	return p
}

// Step contains the energy and the largest component of the gradient at one iteration.
type Step struct {
	Iteration int
	Energy    float64
	GradMax   float64
}

// Result is the outcome of a relaxation.
type Result struct {
	Energy          float64
	GradMax         float64
	Iterations      int
	FuncEvaluations int
	Status          optimize.Status
	Trace           []Step
}

// Converged returns true if the relaxation ended because a convergence criterion was met.
func (R *Result) Converged() bool {
	return R.Status == optimize.GradientThreshold || R.Status == optimize.FunctionConvergence
}

func method(name string) (optimize.Method, error) {
	switch name {
	case "lbfgs":
		return &optimize.LBFGS{}, nil
	case "bfgs":
		return &optimize.BFGS{}, nil
	case "cg":
		return &optimize.CG{}, nil
	case "gd", "gradientdescent":
		return &optimize.GradientDescent{}, nil
	case "newton":
		return &optimize.Newton{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
}

// Run relaxes s under the constraint c, and leaves s in the final configuration.
// If O is nil, DefaultOptions are used.
func Run(s relax.State, c relax.Constraint, O *Options) (*Result, error) {
	if O == nil {
		O = DefaultOptions()
	}
	log := O.Logger()
	m, err := method(O.Method())
	if err != nil {
		return nil, err
	}
	x0, err := relax.Dofs(s, c)
	if err != nil {
		return nil, fmt.Errorf("gorelax/minimize: %w", err)
	}
	p, E := problem(s, c)
	if _, ok := m.(*optimize.Newton); ok && p.Hess == nil {
		return nil, fmt.Errorf("%w: %s with %T", ErrNoHessian, O.Method(), c)
	}
	if len(x0) == 0 {
		log.Info("No degrees of freedom, nothing to relax")
		e, err := s.Energy()
		if err != nil {
			return nil, fmt.Errorf("gorelax/minimize: %w", err)
		}
		return &Result{Energy: e, Status: optimize.Success, Trace: []Step{{Energy: e}}}, nil
	}
	rec := &recorder{ev: E, log: log}
	if name := O.TrajName(); name != "" {
		rec.traj, err = stf.NewWriter(name, s.Len(), map[string]string{"program": "gorelax", "method": O.Method()})
		if err != nil {
			return nil, fmt.Errorf("gorelax/minimize: %w", err)
		}
		defer rec.traj.Close()
	}
	tol, iters := O.EnergyTol(0)
	settings := &optimize.Settings{
		GradientThreshold: O.GradThreshold(),
		MajorIterations:   O.MajorIterations(),
		FuncEvaluations:   O.FuncEvaluations(),
		Converger:         &optimize.FunctionConverge{Absolute: tol, Iterations: iters},
		Recorder:          rec,
	}
	log.Info("Starting relaxation", zap.String("method", O.Method()), zap.Int("dofs", len(x0)), zap.Int("atoms", s.Len()))
	res, err := optimize.Minimize(p, x0, settings, m)
	if everr := E.getErr(); everr != nil {
		log.Error("Relaxation aborted", zap.Error(everr))
		return nil, everr
	}
	if err != nil && res == nil {
		return nil, fmt.Errorf("gorelax/minimize: %w", err)
	}
	//the state is left wherever the last evaluation put it.
	if err2 := relax.SetDofs(s, c, res.X); err2 != nil {
		return nil, fmt.Errorf("gorelax/minimize: %w", err2)
	}
	ret := &Result{
		Energy:          res.F,
		GradMax:         gradMax(res.Gradient),
		Iterations:      res.MajorIterations,
		FuncEvaluations: res.FuncEvaluations,
		Status:          res.Status,
		Trace:           rec.trace,
	}
	if rec.traj != nil {
		if err2 := rec.frame(res.X); err2 != nil {
			return ret, err2
		}
	}
	fields := []zap.Field{zap.Float64("energy", ret.Energy), zap.Float64("gradmax", ret.GradMax),
		zap.Int("iterations", ret.Iterations), zap.Stringer("status", ret.Status)}
	if err != nil {
		//optimize still returns the best point when, for instance, a limit is hit.
		log.Warn("Relaxation ended with an error", append(fields, zap.Error(err))...)
		return ret, fmt.Errorf("gorelax/minimize: %w", err)
	}
	log.Info("Relaxation finished", fields...)
	return ret, nil
}

func gradMax(g []float64) float64 {
	if len(g) == 0 {
		return 0
	}
	return floats.Norm(g, math.Inf(1))
}

// recorder keeps the trace of the relaxation and writes the trajectory.
// It is also the place where evaluation errors stop the optimizer.
type recorder struct {
	ev    *evaluator
	log   *zap.Logger
	traj  *stf.StfW
	trace []Step
}

func (r *recorder) Init() error {
	return nil
}

func (r *recorder) Record(loc *optimize.Location, op optimize.Operation, stats *optimize.Stats) error {
	if err := r.ev.getErr(); err != nil {
		return err
	}
	if op != optimize.InitIteration && op&optimize.MajorIteration == 0 {
		return nil
	}
	st := Step{Iteration: stats.MajorIterations, Energy: loc.F, GradMax: gradMax(loc.Gradient)}
	r.trace = append(r.trace, st)
	r.log.Debug("Iteration", zap.Int("iteration", st.Iteration), zap.Float64("energy", st.Energy),
		zap.Float64("gradmax", st.GradMax), zap.Int("evaluations", stats.FuncEvaluations))
	if r.traj != nil {
		return r.frame(loc.X)
	}
	return nil
}

// frame writes the configuration for the dofs x to the trajectory.
func (r *recorder) frame(x []float64) error {
	s, c := r.ev.s, r.ev.c
	if err := relax.SetDofs(s, c, x); err != nil {
		return fmt.Errorf("gorelax/minimize: %w", err)
	}
	F := s.Defm()
	box := make([]float64, 0, 9)
	for i := 0; i < 3; i++ {
		box = append(box, mat.Row(nil, i, F)...)
	}
	if err := r.traj.WNext(s.Positions(), box); err != nil {
		return fmt.Errorf("gorelax/minimize: %w", err)
	}
	return nil
}
