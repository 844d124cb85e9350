/*
 * job.go, part of gorelax.
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

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rmera/relax"
	"github.com/rmera/relax/atoms"
	"github.com/rmera/relax/minimize"
	"github.com/rmera/relax/potentials"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Job is a relaxation job, as read from a YAML file.
type Job struct {
	// Structure is the JSON file with the starting configuration.
	Structure string `yaml:"structure"`
	// Output is the JSON file where the relaxed configuration is written.
	Output string `yaml:"output"`
	// Constraint is "fixed" (positions only) or "variable" (positions and cell).
	Constraint string `yaml:"constraint"`

	// At most one of the 3 can be given.
	Free  []int    `yaml:"free,omitempty"`
	Clamp []int    `yaml:"clamp,omitempty"`
	Mask  [][]bool `yaml:"mask,omitempty"`

	Potential PotentialConfig `yaml:"potential"`
	Minimizer MinimizerConfig `yaml:"minimizer"`

	// dir is the directory of the job file. Relative paths are relative to it.
	dir string
}

// PotentialConfig holds the parameters of the Morse potential.
type PotentialConfig struct {
	D     float64 `yaml:"d"`
	Alpha float64 `yaml:"alpha"`
	R0    float64 `yaml:"r0"`
	Shell int     `yaml:"shell"`
}

// MinimizerConfig holds the options for the relaxation.
type MinimizerConfig struct {
	Method        string  `yaml:"method"`
	GradThreshold float64 `yaml:"grad_threshold"`
	MaxIterations int     `yaml:"max_iterations"`
	MaxEvals      int     `yaml:"max_evaluations"`
	Trajectory    string  `yaml:"trajectory"`
	// Plot is the prefix for the energy and gradient plots. No plots are made if empty.
	Plot string `yaml:"plot"`
}

// DefaultJob returns a job with the default values.
func DefaultJob() *Job {
	O := minimize.DefaultOptions()
	return &Job{
		Output:     "relaxed.json",
		Constraint: "fixed",
		Potential: PotentialConfig{
			D:     1.0,
			Alpha: 1.5,
			R0:    1.2,
			Shell: 1,
		},
		Minimizer: MinimizerConfig{
			Method:        O.Method(),
			GradThreshold: O.GradThreshold(),
			MaxIterations: O.MajorIterations(),
		},
	}
}

// LoadJob reads a job file. Missing values take their defaults.
func LoadJob(path string) (*Job, error) {
	job := DefaultJob()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job: %w", err)
	}
	if err := yaml.Unmarshal(data, job); err != nil {
		return nil, fmt.Errorf("failed to parse job: %w", err)
	}
	job.dir = filepath.Dir(path)
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return job, nil
}

// Validate checks the values of the job that can be checked without reading the structure.
func (j *Job) Validate() error {
	if j.Structure == "" {
		return fmt.Errorf("job has no structure file")
	}
	switch j.Constraint {
	case "fixed", "variable":
	default:
		return fmt.Errorf("unknown constraint %q (use fixed or variable)", j.Constraint)
	}
	if j.Potential.R0 <= 0 || j.Potential.Alpha <= 0 {
		return fmt.Errorf("morse r0 and alpha must be positive")
	}
	if j.Potential.Shell < 0 {
		return fmt.Errorf("negative image shell")
	}
	return nil
}

// path returns name relative to the job's directory, unless it is absolute or empty.
func (j *Job) path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(j.dir, name)
}

// Selection returns the free coordinates of the job.
func (j *Job) Selection() *relax.Selection {
	return &relax.Selection{Free: j.Free, Clamp: j.Clamp, Mask: j.Mask}
}

// State reads the starting structure, with the Morse potential of the job as calculator.
func (j *Job) State() (*atoms.Atoms, error) {
	p := j.Potential
	return atoms.ReadJSON(j.path(j.Structure), potentials.NewMorse(p.D, p.Alpha, p.R0, p.Shell))
}

// NewConstraint builds the constraint of the job for s.
func (j *Job) NewConstraint(s relax.State) (relax.Constraint, error) {
	if j.Constraint == "variable" {
		return relax.NewVariableCell(s, j.Selection())
	}
	return relax.NewFixedCell(s, j.Selection())
}

// Options returns the minimization options of the job, logging to logger.
func (j *Job) Options(logger *zap.Logger) *minimize.Options {
	m := j.Minimizer
	O := minimize.DefaultOptions()
	O.Method(m.Method)
	O.GradThreshold(m.GradThreshold)
	O.MajorIterations(m.MaxIterations)
	O.FuncEvaluations(m.MaxEvals)
	O.TrajName(j.path(m.Trajectory))
	O.Logger(logger)
	return O
}
