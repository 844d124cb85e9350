/*
 * doc.go, part of gorelax.
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

/*
Package stf implements the simple trajectory format, used by gorelax to store the
steps of a relaxation. stf aims to produce reasonably small files that are very easy
to read and write from other languages.

# Format

An STF file is compressed. The compression is given by the last letter of the file
name: 'l' for LZW, 'z' for gzip, 'r' for raw deflate, and z-standard (zstd) for
anything else, including the usual extension, stf.

A STF file may only contain ASCII symbols.

A STF file has a header starting in the first line, and ending with a line that starts with the
characters "**" followed by one or more spaces, and the number of atoms per frame.
Each line of the header must be a pair key=value. The precision (an integer greater than 0)
must be included in the header, with the key "prec", for example:

	prec=4

After the header, the file has one line per atom, per frame. Each line contains 3 integers,
the x, y and z cartesian coordinates multiplied by 10 to the power of the precision, and
rounded.

Each frame ends with a line starting with the character "*", optionally followed by
whitespace and 9 floating-point numbers separated by spaces. gorelax writes there the
elements of the deformation matrix, row by row, with full precision.

The "**" sequence may only be used as a header termination.
*/
package stf
