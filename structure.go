package phonon

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ReadCrystalStructure reads a crystal structure file in the format
// of the named calculator. An empty calculator means VASP. The second
// return value describes the source, currently just the filename.
func ReadCrystalStructure(filename, calculator string) (*Cell, string, error) {
	switch strings.ToLower(calculator) {
	case "", "vasp":
		cell, err := readPOSCAR(filename)
		if err != nil {
			return nil, "", err
		}
		return cell, filename, nil
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedCalculator, calculator)
	}
}

// readCrystalStructure wraps ReadCrystalStructure for the loader: a
// missing file passes through untouched while any other failure turns
// into a StructureFormatError pointing at the calculator hint.
func readCrystalStructure(filename, calculator string) (*Cell, string, error) {
	cell, src, err := ReadCrystalStructure(filename, calculator)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", err
		}
		return nil, "", &StructureFormatError{
			Filename:   filename,
			Calculator: calculator,
			Err:        err,
		}
	}
	return cell, src, nil
}

// readPOSCAR parses a VASP POSCAR/CONTCAR file. Only the VASP 5
// format with a symbol line is accepted. A negative scale factor is
// the target cell volume.
func readPOSCAR(filename string) (*Cell, error) {
	// the comment line may legally be blank, so line positions have
	// to be preserved
	lines, err := readAllLines(filename)
	if err != nil {
		return nil, err
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) < 8 {
		return nil, fmt.Errorf("%s: too short for a POSCAR", filename)
	}
	fields := strings.Fields(lines[1])
	if len(fields) == 0 {
		return nil, fmt.Errorf("%s: blank scale line", filename)
	}
	scale, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return nil, fmt.Errorf("%s: bad scale line %q: %w", filename, lines[1], err)
	}
	var lattice [3][3]float64
	for i := 0; i < 3; i++ {
		row, err := parseFloats(lines[2+i], 3)
		if err != nil {
			return nil, fmt.Errorf("%s: lattice row %d: %w", filename, i+1, err)
		}
		copy(lattice[i][:], row)
	}
	if scale < 0 {
		// negative scale means the desired cell volume
		det := mat.Det(denseFrom3x3(lattice))
		scale = math.Cbrt(-scale / det)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			lattice[i][j] *= scale
		}
	}

	species := strings.Fields(lines[5])
	counts := strings.Fields(lines[6])
	if len(species) == 0 || len(species) != len(counts) {
		return nil, fmt.Errorf("%s: %d species for %d counts",
			filename, len(species), len(counts))
	}
	var symbols []string
	for i, c := range counts {
		n, err := strconv.Atoi(c)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%s: bad atom count %q", filename, c)
		}
		for k := 0; k < n; k++ {
			symbols = append(symbols, species[i])
		}
	}

	next := 7
	if lines[next] != "" && strings.ContainsAny(lines[next][:1], "sS") {
		// selective dynamics, flags on the position lines are ignored
		next++
	}
	if next >= len(lines) || lines[next] == "" {
		return nil, fmt.Errorf("%s: missing coordinate mode line", filename)
	}
	cartesian := strings.ContainsAny(lines[next][:1], "cCkK")
	next++
	if len(lines) < next+len(symbols) {
		return nil, fmt.Errorf("%s: expected %d position lines, got %d",
			filename, len(symbols), len(lines)-next)
	}
	positions := make([][3]float64, len(symbols))
	for i := range symbols {
		row, err := parseFloats(lines[next+i], 3)
		if err != nil {
			return nil, fmt.Errorf("%s: position %d: %w", filename, i+1, err)
		}
		copy(positions[i][:], row)
	}
	if cartesian {
		var inv mat.Dense
		if err := inv.Inverse(denseFrom3x3(lattice)); err != nil {
			return nil, fmt.Errorf("%s: singular lattice: %w", filename, err)
		}
		for i := range positions {
			var frac [3]float64
			for a := 0; a < 3; a++ {
				for b := 0; b < 3; b++ {
					frac[a] += positions[i][b] * scale * inv.At(b, a)
				}
			}
			positions[i] = frac
		}
	}
	return NewCell(lattice, positions, symbols)
}
