package phonon

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ForceConstants is the second-order force constant tensor indexed as
// (i, j, alpha, beta) with Cartesian indices alpha, beta. In the full
// layout both atom indices run over the supercell (Rows == Cols); in
// the compact layout the first index runs over the primitive atoms
// only.
type ForceConstants struct {
	Rows, Cols int
	Elems      []float64
}

// NewForceConstants allocates a zeroed tensor
func NewForceConstants(rows, cols int) *ForceConstants {
	return &ForceConstants{
		Rows:  rows,
		Cols:  cols,
		Elems: make([]float64, rows*cols*9),
	}
}

// IsCompact reports whether the tensor is in the compact layout
func (fc *ForceConstants) IsCompact() bool { return fc.Rows != fc.Cols }

// At returns the (i, j, a, b) element
func (fc *ForceConstants) At(i, j, a, b int) float64 {
	return fc.Elems[((i*fc.Cols+j)*3+a)*3+b]
}

// Set sets the (i, j, a, b) element
func (fc *ForceConstants) Set(i, j, a, b int, v float64) {
	fc.Elems[((i*fc.Cols+j)*3+a)*3+b] = v
}

// Scale multiplies every element by f
func (fc *ForceConstants) Scale(f float64) {
	for i := range fc.Elems {
		fc.Elems[i] *= f
	}
}

// FullToCompact restricts a full tensor to the rows of the primitive
// representatives
func FullToCompact(fc *ForceConstants, prim *Primitive) (*ForceConstants, error) {
	if fc.IsCompact() {
		return nil, fmt.Errorf("tensor is already compact (%dx%d)", fc.Rows, fc.Cols)
	}
	if fc.Cols != prim.Supercell.NumAtoms() {
		return nil, fmt.Errorf("tensor has %d columns, supercell has %d atoms",
			fc.Cols, prim.Supercell.NumAtoms())
	}
	out := NewForceConstants(prim.NumAtoms(), fc.Cols)
	for pi, rep := range prim.P2S {
		copy(out.Elems[pi*fc.Cols*9:(pi+1)*fc.Cols*9],
			fc.Elems[rep*fc.Cols*9:(rep+1)*fc.Cols*9])
	}
	return out, nil
}

// CompactToFull expands a compact tensor to all supercell rows using
// the primitive lattice translation that carries each representative
// onto its images
func CompactToFull(fc *ForceConstants, prim *Primitive) (*ForceConstants, error) {
	natom := prim.Supercell.NumAtoms()
	if !fc.IsCompact() && fc.Rows == natom {
		return fc, nil
	}
	if fc.Rows != prim.NumAtoms() || fc.Cols != natom {
		return nil, fmt.Errorf("tensor is %dx%d, want %dx%d",
			fc.Rows, fc.Cols, prim.NumAtoms(), natom)
	}
	out := NewForceConstants(natom, natom)
	for i := 0; i < natom; i++ {
		perm, err := prim.translationPermutation(i)
		if err != nil {
			return nil, err
		}
		inv := make([]int, natom)
		for j0, j := range perm {
			inv[j] = j0
		}
		pi := prim.S2P[i]
		for j := 0; j < natom; j++ {
			j0 := inv[j]
			for a := 0; a < 3; a++ {
				for b := 0; b < 3; b++ {
					out.Set(i, j, a, b, fc.At(pi, j0, a, b))
				}
			}
		}
	}
	return out, nil
}

// ParseForceConstants parses a FORCE_CONSTANTS text file. The first
// line holds one dimension (full layout) or two (compact); each
// following block is an index pair line and three rows of the 3x3
// tensor. For a compact file p2s, when given, must match the row
// count.
func ParseForceConstants(filename string, p2s []int) (*ForceConstants, error) {
	lines, err := readLines(filename)
	if err != nil {
		return nil, err
	}
	if len(lines) < 1 {
		return nil, fmt.Errorf("%s: empty force constants file", filename)
	}
	dims := strings.Fields(lines[0])
	rows, err := strconv.Atoi(dims[0])
	if err != nil {
		return nil, fmt.Errorf("%s: bad dimension line %q", filename, lines[0])
	}
	cols := rows
	if len(dims) > 1 {
		if cols, err = strconv.Atoi(dims[1]); err != nil {
			return nil, fmt.Errorf("%s: bad dimension line %q", filename, lines[0])
		}
	}
	if rows != cols && p2s != nil && len(p2s) != rows {
		return nil, fmt.Errorf("%s has %d compact rows, primitive has %d atoms",
			filename, rows, len(p2s))
	}
	want := 1 + rows*cols*4
	if len(lines) != want {
		return nil, fmt.Errorf("%s: expected %d lines for %dx%d blocks, got %d",
			filename, want, rows, cols, len(lines))
	}
	fc := NewForceConstants(rows, cols)
	pos := 1
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			pos++ // index pair line
			for a := 0; a < 3; a++ {
				row, err := parseFloats(lines[pos], 3)
				if err != nil {
					return nil, fmt.Errorf("%s: block (%d,%d) row %d: %w",
						filename, i+1, j+1, a+1, err)
				}
				for b := 0; b < 3; b++ {
					fc.Set(i, j, a, b, row[b])
				}
				pos++
			}
		}
	}
	return fc, nil
}

// WriteForceConstants writes fc in the FORCE_CONSTANTS text format.
// For a compact tensor p2s supplies the supercell atom numbers
// written on the index pair lines.
func WriteForceConstants(filename string, fc *ForceConstants, p2s []int) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%4d %4d\n", fc.Rows, fc.Cols)
	for i := 0; i < fc.Rows; i++ {
		num := i + 1
		if fc.IsCompact() && p2s != nil {
			num = p2s[i] + 1
		}
		for j := 0; j < fc.Cols; j++ {
			fmt.Fprintf(&buf, "%d %d\n", num, j+1)
			for a := 0; a < 3; a++ {
				fmt.Fprintf(&buf, "%22.15f%22.15f%22.15f\n",
					fc.At(i, j, a, 0), fc.At(i, j, a, 1), fc.At(i, j, a, 2))
			}
		}
	}
	return os.WriteFile(filename, buf.Bytes(), 0644)
}
