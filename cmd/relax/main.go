/*
 * main.go, part of gorelax.
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

// Command relax relaxes atomistic structures with a Morse potential, with the cell
// fixed or variable.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rmera/relax"
	"github.com/rmera/relax/minimize"
	"github.com/rmera/relax/relaxplot"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "relax",
	Short: "Relax atomic positions and cell shape",
	Long: `relax minimizes the energy of a periodic system of atoms with respect to
the positions of the atoms and, optionally, the shape of the cell.

The job is described in a YAML file, see 'relax run --help'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run [job.yaml]",
	Short: "Run a relaxation",
	Long: `Reads the job file, relaxes the structure in it and writes the result.

Example job:

  structure: start.json
  output: relaxed.json
  constraint: variable     # or fixed
  clamp: [0]               # or free: [...], or a 3xN mask: [[...],[...],[...]]
  potential: {d: 1.0, alpha: 1.5, r0: 1.2, shell: 1}
  minimizer:
    method: lbfgs          # bfgs, cg, gd, newton (fixed cell only)
    grad_threshold: 1e-4
    max_iterations: 1000
    trajectory: relax.stf
    plot: relax`,
	Args: cobra.ExactArgs(1),
	RunE: runJob,
}

var dofsCmd = &cobra.Command{
	Use:   "dofs [job.yaml]",
	Short: "Print the degrees of freedom of a job",
	Long: `Builds the constraint of the job for its structure, and prints the free
coordinates, the dof vector and the gradient with respect to it, as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: printDofs,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every iteration")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(dofsCmd)
}

func runJob(cmd *cobra.Command, args []string) error {
	job, err := LoadJob(args[0])
	if err != nil {
		return err
	}
	s, err := job.State()
	if err != nil {
		return err
	}
	c, err := job.NewConstraint(s)
	if err != nil {
		return err
	}
	logger.Info("Loaded job", zap.String("job", args[0]), zap.Int("atoms", s.Len()), zap.String("constraint", job.Constraint))
	O := job.Options(logger)
	res, err := minimize.Run(s, c, O)
	if err != nil {
		return err
	}
	if prefix := job.path(job.Minimizer.Plot); prefix != "" {
		if err := relaxplot.Trace(res, O.GradThreshold(), prefix); err != nil {
			logger.Warn("Failed to plot the relaxation", zap.Error(err))
		}
	}
	if err := s.WriteJSON(job.path(job.Output)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Final energy: %.10g  Max gradient: %.3g  Iterations: %d  Status: %s\n",
		res.Energy, res.GradMax, res.Iterations, res.Status)
	return nil
}

// dofsReport is what the dofs command prints.
type dofsReport struct {
	Constraint  string    `json:"constraint"`
	FreeIndices []int     `json:"free_indices"`
	Dofs        []float64 `json:"dofs"`
	Gradient    []float64 `json:"gradient"`
	Energy      float64   `json:"energy"`
}

func printDofs(cmd *cobra.Command, args []string) error {
	job, err := LoadJob(args[0])
	if err != nil {
		return err
	}
	s, err := job.State()
	if err != nil {
		return err
	}
	c, err := job.NewConstraint(s)
	if err != nil {
		return err
	}
	r := dofsReport{Constraint: job.Constraint}
	switch C := c.(type) {
	case *relax.FixedCell:
		r.FreeIndices = C.FreeIndices()
	case *relax.VariableCell:
		r.FreeIndices = C.FreeIndices()
	}
	if r.Dofs, err = relax.Dofs(s, c); err != nil {
		return err
	}
	if r.Gradient, err = relax.Gradient(s, c); err != nil {
		return err
	}
	if r.Energy, err = s.Energy(); err != nil {
		return err
	}
	logger.Debug("Dofs", zap.Int("n", len(r.Dofs)))
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
