/*
 * json.go, part of gorelax.
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

package atoms

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	v3 "github.com/rmera/relax/v3"
	"gonum.org/v1/gonum/mat"
)

// Config is a ready-to-serialize container for a configuration.
// Defm is the deformation matrix, given row by row (the columns are the cell vectors).
type Config struct {
	Symbols   []string      `json:"symbols,omitempty"`
	Positions [][3]float64  `json:"positions"`
	Defm      [3][3]float64 `json:"defm"`
}

// Config returns the serializable form of A.
func (A *Atoms) Config() *Config {
	C := &Config{Symbols: A.Symbols()}
	C.Positions = make([][3]float64, A.Len())
	for i := range C.Positions {
		copy(C.Positions[i][:], A.pos.RawRowView(i))
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			C.Defm[i][j] = A.defm.At(i, j)
		}
	}
	return C
}

// Atoms builds an Atoms from the configuration, with the calculator calc (which can be nil).
func (C *Config) Atoms(calc Calculator) (*Atoms, error) {
	if len(C.Positions) == 0 {
		return nil, fmt.Errorf("gorelax/atoms: configuration has no atoms")
	}
	data := make([]float64, 0, 3*len(C.Positions))
	for _, p := range C.Positions {
		data = append(data, p[:]...)
	}
	pos, err := v3.NewMatrix(data)
	if err != nil {
		return nil, fmt.Errorf("gorelax/atoms: %w", err)
	}
	F := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		F.SetRow(i, C.Defm[i][:])
	}
	return New(C.Symbols, pos, F, calc)
}

// Encode writes A as indented JSON to out.
func (A *Atoms) Encode(out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(A.Config()); err != nil {
		return fmt.Errorf("gorelax/atoms: can't encode configuration: %w", err)
	}
	return nil
}

// Decode reads a JSON configuration from in and builds an Atoms with the calculator calc.
func Decode(in io.Reader, calc Calculator) (*Atoms, error) {
	C := new(Config)
	if err := json.NewDecoder(in).Decode(C); err != nil {
		return nil, fmt.Errorf("gorelax/atoms: can't decode configuration: %w", err)
	}
	return C.Atoms(calc)
}

// WriteJSON writes A to the file name.
func (A *Atoms) WriteJSON(name string) error {
	fout, err := os.Create(name)
	if err != nil {
		return err
	}
	defer fout.Close()
	if err := A.Encode(fout); err != nil {
		return err
	}
	return fout.Sync()
}

// ReadJSON reads the configuration in the file name.
func ReadJSON(name string, calc Calculator) (*Atoms, error) {
	fin, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer fin.Close()
	return Decode(fin, calc)
}
