/*
 * stf.go, part of gorelax.
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
 *
 */

package stf

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/lzw"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	v3 "github.com/rmera/relax/v3"
)

const (
	lzwLitwidth int = 8

	// DefaultPrec is the precision used when none is given in the header.
	// Relaxation steps can be small, so it is higher than what is usual for MD.
	DefaultPrec = 4
)

// compressor returns functions that wrap a writer and a reader with the compression
// given by the last letter of the file name: 'l' for lzw, 'z' for gzip, 'r' for
// raw deflate and zstd for anything else ('f', 's', ...).
func compressor(name string, level int) (func(io.Writer) (io.WriteCloser, error), func(io.Reader) (io.ReadCloser, error)) {
	zstdwriter := func(a io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(a, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	}
	zstdreader := func(a io.Reader) (io.ReadCloser, error) {
		r, err := zstd.NewReader(a)
		if err != nil {
			return nil, err
		}
		return r.IOReadCloser(), nil
	}
	if name == "" {
		return zstdwriter, zstdreader
	}
	switch strings.ToLower(name)[len(name)-1] {
	case 'l':
		return func(a io.Writer) (io.WriteCloser, error) { return lzw.NewWriter(a, lzw.MSB, lzwLitwidth), nil },
			func(a io.Reader) (io.ReadCloser, error) { return lzw.NewReader(a, lzw.MSB, lzwLitwidth), nil }
	case 'z':
		return func(a io.Writer) (io.WriteCloser, error) { return gzip.NewWriterLevel(a, level) },
			func(a io.Reader) (io.ReadCloser, error) { return gzip.NewReader(a) }
	case 'r':
		return func(a io.Writer) (io.WriteCloser, error) { return flate.NewWriter(a, level) },
			func(a io.Reader) (io.ReadCloser, error) { return flate.NewReader(a), nil }
	default:
		return zstdwriter, zstdreader
	}
}

// StfW writes relaxation trajectories: one frame of coordinates, plus
// optionally the 9 elements of the deformation matrix, per step.
type StfW struct {
	f         *os.File
	h         io.WriteCloser
	natoms    int
	filename  string
	writeable bool
	prec      int
	mult      float64
}

// Close flushes and closes the trajectory. It can't be written after this call.
func (S *StfW) Close() error {
	if S == nil || !S.writeable {
		return nil
	}
	S.writeable = false
	err := S.h.Close()
	if err2 := S.f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return Error{"Can't close trajectory: " + err.Error(), S.filename, []string{"Close"}, true}
	}
	return nil
}

// Len returns the number of atoms per frame.
func (S *StfW) Len() int {
	return S.natoms
}

// WNext writes a frame with the coordinates coord. If box is given and it has at least
// 9 elements, they are written at the end of the frame. For relaxations these are the
// elements of the deformation matrix, row by row.
func (S *StfW) WNext(coord *v3.Matrix, box ...[]float64) error {
	if !S.writeable {
		return Error{TrajUnIniWrite, S.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return Error{NilCoordinates, S.filename, []string{"WNext"}, true}
	}
	v := coord.NVecs()
	if v != S.natoms {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", v, S.natoms), S.filename, []string{"WNext"}, true}
	}
	w := bufio.NewWriter(S.h)
	var temp [3]int
	var floats [3]float64
	for i := 0; i < v; i++ {
		floats[0] = coord.At(i, 0)
		floats[1] = coord.At(i, 1)
		floats[2] = coord.At(i, 2)
		w.WriteString(coordsEncode(floats, temp, S.mult))
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		w.WriteString("*")
		for _, b := range box[0][:9] {
			w.WriteString(" ")
			w.WriteString(strconv.FormatFloat(b, 'g', -1, 64))
		}
		w.WriteString("\n")
	} else {
		w.WriteString("*\n")
	}
	if err := w.Flush(); err != nil {
		return Error{"Can't write frame: " + err.Error(), S.filename, []string{"WNext"}, true}
	}
	return nil
}

// NewWriter creates the trajectory file name, for frames of natoms atoms, and writes the header.
// The compression is chosen from the last letter of the name (see the package documentation).
// The "prec" key in the header sets the precision; if absent, DefaultPrec is used and added to it.
// compressionLevel, if given, is used for the gzip and deflate compressions.
func NewWriter(name string, natoms int, header map[string]string, compressionLevel ...int) (*StfW, error) {
	level := 9
	if len(compressionLevel) > 0 {
		level = compressionLevel[0]
	}
	if natoms <= 0 {
		return nil, Error{fmt.Sprintf("can't write frames of %d atoms", natoms), name, []string{"NewWriter"}, true}
	}
	S := new(StfW)
	S.filename = name
	S.natoms = natoms
	S.prec = DefaultPrec
	hdr := make(map[string]string, len(header)+1)
	for k, v := range header {
		if strings.ContainsAny(k, "=\n") || strings.Contains(v, "\n") || strings.HasPrefix(k, "*") {
			return nil, Error{fmt.Sprintf("invalid header entry %q", k), name, []string{"NewWriter"}, true}
		}
		hdr[k] = v
	}
	if p, ok := hdr["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err == nil && prec > 0 {
			S.prec = prec
		} else {
			log.Printf("Invalid precision for trajectory %s. Will use the default", S.filename)
		}
	}
	hdr["prec"] = strconv.Itoa(S.prec)
	S.mult = math.Pow(10.0, float64(S.prec))
	var err error
	S.f, err = os.Create(name)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"NewWriter"}, true}
	}
	newWriter, _ := compressor(name, level)
	S.h, err = newWriter(S.f)
	if err != nil {
		S.f.Close()
		return nil, Error{"Can't start compression " + err.Error(), S.filename, []string{"NewWriter"}, true}
	}
	//sorted, so the same header always gives the same file.
	keys := make([]string, 0, len(hdr))
	for k := range hdr {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var headerstr strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&headerstr, "%s=%s\n", k, hdr[k])
	}
	fmt.Fprintf(&headerstr, "** %d\n", S.natoms)
	if _, err := S.h.Write([]byte(headerstr.String())); err != nil {
		S.h.Close()
		S.f.Close()
		return nil, Error{"Can't write header " + err.Error(), S.filename, []string{"NewWriter"}, true}
	}
	S.writeable = true
	return S, nil
}

// StfR reads relaxation trajectories.
type StfR struct {
	f        *os.File
	dec      io.ReadCloser
	h        *bufio.Reader
	natoms   int
	filename string
	prec     int
	mult     float64
	readable bool
}

func coordsEncode(f [3]float64, temp [3]int, mult float64) string {
	for i, v := range f {
		temp[i] = int(math.RoundToEven(v * mult))
	}
	return fmt.Sprintf("%d %d %d\n", temp[0], temp[1], temp[2])
}

// New opens a STF trajectory for reading, and returns a pointer
// to the handle, a map with the metadata in the header, and error or nil.
func New(name string) (*StfR, map[string]string, error) {
	S := new(StfR)
	S.natoms = -1
	S.filename = name
	S.prec = DefaultPrec
	m := make(map[string]string)
	var err error
	S.f, err = os.Open(S.filename)
	if err != nil {
		return nil, nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"New"}, true}
	}
	_, newReader := compressor(name, 0)
	S.dec, err = newReader(bufio.NewReader(S.f))
	if err != nil {
		S.f.Close()
		return nil, nil, Error{"Can't read header " + err.Error(), S.filename, []string{"New"}, true}
	}
	S.h = bufio.NewReader(S.dec)
	for {
		str, err := S.h.ReadString('\n')
		if err != nil {
			S.closeFiles()
			return nil, nil, Error{"Can't read header " + err.Error(), S.filename, []string{"New"}, true}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) < 2 {
				S.closeFiles()
				return nil, nil, Error{fmt.Sprintf("Can't read atom number from '%s'", str), S.filename, []string{"New"}, true}
			}
			S.natoms, err = strconv.Atoi(nat[1])
			if err != nil || S.natoms <= 0 {
				S.closeFiles()
				return nil, nil, Error{fmt.Sprintf("Can't read atom number from '%s'", nat[1]), S.filename, []string{"New"}, true}
			}
			break
		}
		kv := strings.SplitN(str, "=", 2)
		if len(kv) != 2 {
			S.closeFiles()
			return nil, nil, Error{"Malformed header line: " + str, S.filename, []string{"New"}, true}
		}
		m[kv[0]] = kv[1]
	}
	if p, ok := m["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err == nil && prec > 0 {
			S.prec = prec
		} else {
			log.Printf("Invalid precision for trajectory %s. Will assume the default", S.filename)
		}
	}
	S.mult = math.Pow(10.0, float64(S.prec))
	S.readable = true
	return S, m, nil
}

// Readable returns true if the handle is readable (if it is possible to call Next on it)
func (S *StfR) Readable() bool {
	return S.readable
}

func coordsDecode(str string, temp *[3]float64, mult float64) error {
	s := strings.Fields(str)
	if len(s) < 3 {
		return fmt.Errorf("Ill formated coordinates line in stf: Too few fields: %s", str)
	}
	if len(s) > 3 {
		return fmt.Errorf("Ill formated coordinates line in stf: Too many fields: %s", str)
	}
	for i, v := range s {
		f, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("Can't parse coordinate %d (%s). Error: %s", i, v, err.Error())
		}
		temp[i] = float64(f) / mult
	}
	return nil
}

// Next puts in the given matrix (c) the coordinates for the next frame of the trajectory
// and, if given, and the information is present, puts the deformation matrix elements in box.
// If c is nil, the frame is read and checked, but not kept.
// Returns error if the operation is not successful. If the error is a LastFrameError, the end of the
// trajectory has been reached, not an actual error.
func (S *StfR) Next(c *v3.Matrix, box ...[]float64) error {
	if !S.readable {
		return Error{TrajUnIniRead, S.filename, []string{"Next"}, true}
	}
	if c != nil && c.NVecs() != S.natoms {
		return Error{fmt.Sprintf("Matrix has %d rows, but frames have %d atoms", c.NVecs(), S.natoms), S.filename, []string{"Next"}, true}
	}
	var temp [3]float64
	for i := 0; i < S.natoms; i++ {
		b, err := S.h.ReadString('\n')
		if err != nil {
			//EOF is only fine before the first atom.
			if errors.Is(err, io.EOF) && i == 0 && b == "" {
				S.Close()
				return newlastFrameError(S.filename, "Next")
			}
			return Error{ReadError + ": " + err.Error(), S.filename, []string{"Next"}, true}
		}
		if strings.HasPrefix(b, "*") {
			return Error{WrongFormat + ": frame too short", S.filename, []string{"Next"}, true}
		}
		if err := coordsDecode(strings.TrimSuffix(b, "\n"), &temp, S.mult); err != nil {
			return Error{err.Error(), S.filename, []string{"Next"}, true}
		}
		if c == nil {
			continue
		}
		for j, v := range temp {
			c.Set(i, j, v)
		}
	}
	s, err := S.h.ReadString('\n')
	if err != nil {
		return Error{"Can't read the frame termination mark: " + err.Error(), S.filename, []string{"Next"}, true}
	}
	if s[0] != '*' {
		return Error{WrongFormat + ": wrong number of atoms in frame", S.filename, []string{"Next"}, true}
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		fields := strings.Fields(strings.TrimSpace(s))
		if len(fields) >= 10 {
			var errbox error
			for j, v := range fields[1:10] {
				box[0][j], errbox = strconv.ParseFloat(v, 64)
				if errbox != nil {
					break
				}
			}
			//If we got an error reading any of the values, we just set the whole thing to zero
			//and log, no error returned.
			if errbox != nil {
				log.Printf("Failed to read box in a frame from %s", S.filename)
				for i := range box[0][:9] {
					box[0][i] = 0.0
				}
			}
		} else {
			log.Printf("Trajectory file %s does not contain (correct) box information: %s", S.filename, fields)
		}
	}
	return nil
}

func (S *StfR) closeFiles() {
	S.dec.Close()
	S.f.Close()
}

// Close closes the object, and marks it as unreadable
func (S *StfR) Close() {
	if !S.readable {
		return
	}
	S.closeFiles()
	S.readable = false
}

// Len returns the number of atoms in each frame of the trajectory.
func (S *StfR) Len() int {
	return S.natoms
}

// Prec returns the precision of the coordinates in the trajectory (the number of decimal places kept).
func (S *StfR) Prec() int {
	return S.prec
}

// NextConc takes a slice of matrices and reads as many frames as elements the slice has
// from the trajectory. The frames are discarded if the corresponding element of the slice
// is nil. The function returns a slice of channels through each of which
// the corresponding matrix will be transmitted.
func (S *StfR) NextConc(frames []*v3.Matrix) ([]chan *v3.Matrix, error) {
	if !S.Readable() {
		return nil, Error{TrajUnIniRead, S.filename, []string{"NextConc"}, true}
	}
	framechans := make([]chan *v3.Matrix, len(frames))
	for key, v := range frames {
		if err := S.Next(v); err != nil {
			return nil, errDecorate(err, "NextConc")
		}
		framechans[key] = make(chan *v3.Matrix)
		go func(keep *v3.Matrix, pipe chan *v3.Matrix) {
			pipe <- keep
		}(v, framechans[key])
	}
	return framechans, nil
}

//Errors

// Decorable is an error that keeps a list of the functions it went through.
type Decorable interface {
	error
	Decorate(string) []string
}

// LastFrameError is returned by Next when the trajectory ends normally.
type LastFrameError interface {
	error
	NormalLastFrameTermination()
}

// errDecorate decorates err with the caller's name, if err can be decorated, and returns it.
func errDecorate(err error, caller string) error {
	if e, ok := err.(Decorable); ok {
		e.Decorate(caller)
	}
	return err
}

// Error is the general structure for STF trajectory errors.
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("stf file %s error: %s", err.filename, err.message)
}

// Decorate Adds new information to the error
func (E Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

// FileName returns the file to which the failing trajectory was associated
func (err Error) FileName() string { return err.filename }

// Format returns the format of the file (always "stf") associated to the error
func (err Error) Format() string { return "stf" }

// Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	ReadError      = "Error reading frame"
	UnableToOpen   = "Unable to open file"
	NilCoordinates = "Given nil coordinates"
	WrongFormat    = "Wrong format in the STF file or frame"
)

// lastFrameError implements LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
}

// NormalLastFrameTermination does nothing
func (E *lastFrameError) NormalLastFrameTermination() {}

func (E *lastFrameError) FileName() string { return E.fileName }

func (E *lastFrameError) Error() string { return "EOF" }

func (E *lastFrameError) Critical() bool { return false }

func (E *lastFrameError) Format() string { return "stf" }

func (E *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) *lastFrameError {
	e := new(lastFrameError)
	e.fileName = filename
	e.deco = []string{caller}
	return e
}
