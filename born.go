package phonon

import (
	"fmt"
	"strconv"
	"strings"
)

// NACParams holds the non-analytical correction inputs: Born
// effective charges for the primitive atoms, the dielectric tensor,
// and the unit conversion factor. A nil factor means the source did
// not specify one and a default has to be filled in.
type NACParams struct {
	Born       [][3][3]float64
	Dielectric [3][3]float64
	Factor     *float64
}

// HasFactor reports whether the conversion factor has been set
func (n *NACParams) HasFactor() bool { return n.Factor != nil }

// ParseBORN parses a BORN file against the primitive cell. The first
// data line carries the conversion factor or the word "default", the
// second the 9 components of the dielectric tensor, and each
// following line the 9 components of the Born tensor of one primitive
// atom. Lines starting with # are comments.
func ParseBORN(prim *Primitive, filename string) (*NACParams, error) {
	raw, err := readLines(filename)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, l := range raw {
		if !strings.HasPrefix(l, "#") {
			lines = append(lines, l)
		}
	}
	if len(lines) < 2 {
		return nil, fmt.Errorf("%s: too short for a BORN file", filename)
	}

	nac := &NACParams{}
	if f := strings.Fields(lines[0]); strings.ToLower(f[0]) != "default" {
		v, err := strconv.ParseFloat(f[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: bad factor line %q: %w",
				filename, lines[0], err)
		}
		nac.Factor = &v
	}

	eps, err := parseFloats(lines[1], 9)
	if err != nil {
		return nil, fmt.Errorf("%s: dielectric tensor: %w", filename, err)
	}
	for i := 0; i < 3; i++ {
		copy(nac.Dielectric[i][:], eps[3*i:3*i+3])
	}

	natom := prim.NumAtoms()
	if len(lines)-2 != natom {
		return nil, fmt.Errorf(
			"%s: %d Born tensor lines for %d primitive atoms",
			filename, len(lines)-2, natom)
	}
	nac.Born = make([][3][3]float64, natom)
	for i := 0; i < natom; i++ {
		z, err := parseFloats(lines[2+i], 9)
		if err != nil {
			return nil, fmt.Errorf("%s: Born tensor of atom %d: %w",
				filename, i+1, err)
		}
		for r := 0; r < 3; r++ {
			copy(nac.Born[i][r][:], z[3*r:3*r+3])
		}
	}
	return nac, nil
}
