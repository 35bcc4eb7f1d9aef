package phonon

import (
	"fmt"
	"strconv"
	"strings"
)

// FirstAtom is one displaced-supercell configuration: the 1-based
// number of the displaced atom, its Cartesian displacement, and the
// forces on every supercell atom
type FirstAtom struct {
	Number       int
	Displacement [3]float64
	Forces       [][3]float64
}

// Dataset is the displacement-force input from which force constants
// are derived. Exactly one of the two shapes is populated: FirstAtoms
// for displaced-supercell configurations, or the Displacements/Forces
// snapshot matrices (one entry per snapshot, one row per atom).
type Dataset struct {
	NumAtoms      int
	FirstAtoms    []FirstAtom
	Displacements [][][3]float64
	Forces        [][][3]float64
}

// HasDisplacements reports whether the dataset carries displacement
// data in either shape
func (d *Dataset) HasDisplacements() bool {
	return len(d.FirstAtoms) > 0 || len(d.Displacements) > 0
}

// HasForces reports whether every displacement in the dataset has
// forces attached
func (d *Dataset) HasForces() bool {
	if len(d.FirstAtoms) > 0 {
		for _, fa := range d.FirstAtoms {
			if len(fa.Forces) == 0 {
				return false
			}
		}
		return true
	}
	return len(d.Forces) > 0
}

// ParseForceSets parses a FORCE_SETS file and checks its atom count
// against natom. The grammar is: total atom count, displacement
// count, then per displacement the 1-based atom number, the Cartesian
// displacement, and one force line per atom.
func ParseForceSets(natom int, filename string) (*Dataset, error) {
	lines, err := readLines(filename)
	if err != nil {
		return nil, err
	}
	if len(lines) < 2 {
		return nil, fmt.Errorf("%s: too short for a FORCE_SETS file", filename)
	}
	fileNatom, err := strconv.Atoi(strings.Fields(lines[0])[0])
	if err != nil {
		return nil, fmt.Errorf("%s: bad atom count %q: %w", filename, lines[0], err)
	}
	if fileNatom != natom {
		return nil, fmt.Errorf("%s has %d atoms, supercell has %d",
			filename, fileNatom, natom)
	}
	ndisp, err := strconv.Atoi(strings.Fields(lines[1])[0])
	if err != nil {
		return nil, fmt.Errorf("%s: bad displacement count %q: %w",
			filename, lines[1], err)
	}
	want := 2 + ndisp*(2+natom)
	if len(lines) != want {
		return nil, fmt.Errorf("%s: expected %d lines for %d displacements, got %d",
			filename, want, ndisp, len(lines))
	}

	ds := &Dataset{NumAtoms: natom}
	pos := 2
	for d := 0; d < ndisp; d++ {
		num, err := strconv.Atoi(strings.Fields(lines[pos])[0])
		if err != nil || num < 1 || num > natom {
			return nil, fmt.Errorf("%s: bad displaced atom number %q",
				filename, lines[pos])
		}
		pos++
		disp, err := parseFloats(lines[pos], 3)
		if err != nil {
			return nil, fmt.Errorf("%s: displacement %d: %w", filename, d+1, err)
		}
		pos++
		fa := FirstAtom{Number: num}
		copy(fa.Displacement[:], disp)
		fa.Forces = make([][3]float64, natom)
		for i := 0; i < natom; i++ {
			f, err := parseFloats(lines[pos], 3)
			if err != nil {
				return nil, fmt.Errorf("%s: force line %d of displacement %d: %w",
					filename, i+1, d+1, err)
			}
			copy(fa.Forces[i][:], f)
			pos++
		}
		ds.FirstAtoms = append(ds.FirstAtoms, fa)
	}
	return ds, nil
}
