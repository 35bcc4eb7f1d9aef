package phonon

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var atomicMasses = map[string]float64{
	"H": 1.008, "He": 4.0026, "Li": 6.94,
	"Be": 9.0122, "B": 10.81, "C": 12.011,
	"N": 14.007, "O": 15.999, "F": 18.998,
	"Ne": 20.180, "Na": 22.990, "Mg": 24.305,
	"Al": 26.982, "Si": 28.085, "P": 30.974,
	"S": 32.06, "Cl": 35.45, "Ar": 39.948,
	"K": 39.098, "Ca": 40.078, "Sc": 44.956,
	"Ti": 47.867, "V": 50.942, "Cr": 51.996,
	"Mn": 54.938, "Fe": 55.845, "Co": 58.933,
	"Ni": 58.693, "Cu": 63.546, "Zn": 65.38,
	"Ga": 69.723, "Ge": 72.630, "As": 74.922,
	"Se": 78.971, "Br": 79.904, "Kr": 83.798,
	"Rb": 85.468, "Sr": 87.62, "Y": 88.906,
	"Zr": 91.224, "Nb": 92.906, "Mo": 95.95,
	"Ag": 107.87, "Cd": 112.41, "In": 114.82,
	"Sn": 118.71, "Sb": 121.76, "Te": 127.60,
	"I": 126.90, "Xe": 131.29, "Cs": 132.91,
	"Ba": 137.33, "W": 183.84, "Pt": 195.08,
	"Au": 196.97, "Pb": 207.2, "Bi": 208.98,
}

// Cell is a crystal structure: lattice vectors as rows in Angstrom,
// atomic positions in fractional coordinates, and the chemical symbol
// and mass of each atom. A Cell is treated as immutable once built.
type Cell struct {
	Lattice   [3][3]float64
	Positions [][3]float64
	Symbols   []string
	Masses    []float64
}

// NewCell builds a Cell, filling masses from the chemical symbols
func NewCell(lattice [3][3]float64, positions [][3]float64, symbols []string) (*Cell, error) {
	if len(positions) != len(symbols) {
		return nil, fmt.Errorf("%d positions for %d symbols",
			len(positions), len(symbols))
	}
	masses := make([]float64, len(symbols))
	for i, s := range symbols {
		m, ok := atomicMasses[s]
		if !ok {
			return nil, fmt.Errorf("unknown element %q", s)
		}
		masses[i] = m
	}
	return &Cell{
		Lattice:   lattice,
		Positions: positions,
		Symbols:   symbols,
		Masses:    masses,
	}, nil
}

// NumAtoms returns the number of atoms in the cell
func (c *Cell) NumAtoms() int { return len(c.Positions) }

// Volume returns the cell volume in Angstrom^3
func (c *Cell) Volume() float64 {
	return math.Abs(mat.Det(denseFrom3x3(c.Lattice)))
}

// CartesianPositions converts the fractional positions to Cartesian
func (c *Cell) CartesianPositions() [][3]float64 {
	cart := make([][3]float64, len(c.Positions))
	for i, p := range c.Positions {
		for a := 0; a < 3; a++ {
			cart[i][a] = p[0]*c.Lattice[0][a] +
				p[1]*c.Lattice[1][a] +
				p[2]*c.Lattice[2][a]
		}
	}
	return cart
}

// NewSupercell expands cell by a 3x3 integer matrix with positive
// determinant. The supercell lattice is smat . L and atoms are ordered
// with all lattice images of each unit cell atom grouped together.
func NewSupercell(cell *Cell, smat [3][3]int) (*Cell, error) {
	det := det3i(smat)
	if det <= 0 {
		return nil, fmt.Errorf("supercell matrix determinant must be positive, got %d", det)
	}
	sd := denseFromIntMat(smat)
	var inv mat.Dense
	if err := inv.Inverse(sd); err != nil {
		return nil, fmt.Errorf("inverting supercell matrix: %w", err)
	}
	// supercell lattice rows are integer combinations of the unit
	// cell rows
	var sl mat.Dense
	sl.Mul(sd, denseFrom3x3(cell.Lattice))

	points := latticePoints(smat, &inv)
	if len(points) != det {
		return nil, fmt.Errorf("found %d lattice points, determinant is %d",
			len(points), det)
	}

	n := cell.NumAtoms()
	positions := make([][3]float64, 0, n*det)
	symbols := make([]string, 0, n*det)
	masses := make([]float64, 0, n*det)
	for i := 0; i < n; i++ {
		for _, pt := range points {
			var frac [3]float64
			for a := 0; a < 3; a++ {
				x := 0.0
				for b := 0; b < 3; b++ {
					x += (cell.Positions[i][b] + float64(pt[b])) * inv.At(b, a)
				}
				frac[a] = wrapFrac(x)
			}
			positions = append(positions, frac)
			symbols = append(symbols, cell.Symbols[i])
			masses = append(masses, cell.Masses[i])
		}
	}
	return &Cell{
		Lattice:   mat3FromDense(&sl),
		Positions: positions,
		Symbols:   symbols,
		Masses:    masses,
	}, nil
}

// latticePoints enumerates the integer lattice vectors of the unit
// cell whose fractional image under inv(smat) lies in [0, 1)
func latticePoints(smat [3][3]int, inv *mat.Dense) [][3]int {
	bound := 0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if smat[i][j] < 0 {
				bound -= smat[i][j]
			} else {
				bound += smat[i][j]
			}
		}
	}
	const eps = 1e-10
	var points [][3]int
	for x := -bound; x <= bound; x++ {
		for y := -bound; y <= bound; y++ {
			for z := -bound; z <= bound; z++ {
				inside := true
				n := [3]float64{float64(x), float64(y), float64(z)}
				for a := 0; a < 3; a++ {
					f := n[0]*inv.At(0, a) + n[1]*inv.At(1, a) + n[2]*inv.At(2, a)
					if f < -eps || f >= 1-eps {
						inside = false
						break
					}
				}
				if inside {
					points = append(points, [3]int{x, y, z})
				}
			}
		}
	}
	return points
}

// Primitive is the symmetry-reduced cell of a supercell together with
// the maps between the two index spaces: P2S holds the supercell index
// of the representative of each primitive atom, S2P the primitive
// index of every supercell atom.
type Primitive struct {
	Cell      *Cell
	Supercell *Cell
	P2S       []int
	S2P       []int
	symprec   float64
}

// NewPrimitive reduces supercell by tmat, the transformation from the
// supercell basis to the primitive basis. Supercell atoms are grouped
// into equivalence classes under the primitive lattice translations;
// the first member of each class is its representative.
func NewPrimitive(supercell *Cell, tmat *mat.Dense, symprec float64) (*Primitive, error) {
	if symprec <= 0 {
		symprec = defaultSymprec
	}
	var pl mat.Dense
	pl.Mul(tmat.T(), denseFrom3x3(supercell.Lattice))
	var plInv mat.Dense
	if err := plInv.Inverse(&pl); err != nil {
		return nil, fmt.Errorf("singular primitive lattice: %w", err)
	}
	det := math.Abs(mat.Det(tmat))
	n := supercell.NumAtoms()
	nprim := int(math.Round(float64(n) * det))
	if math.Abs(float64(n)*det-float64(nprim)) > 1e-8 || nprim < 1 {
		return nil, fmt.Errorf("primitive matrix gives a non-integer atom count %f",
			float64(n)*det)
	}

	// positions of all supercell atoms in the primitive basis
	cart := supercell.CartesianPositions()
	pfrac := make([][3]float64, n)
	for i := 0; i < 3; i++ {
		for j := range cart {
			x := 0.0
			for b := 0; b < 3; b++ {
				x += cart[j][b] * plInv.At(b, i)
			}
			pfrac[j][i] = x
		}
	}

	s2p := make([]int, n)
	var p2s []int
	for i := 0; i < n; i++ {
		found := -1
		for pi, rep := range p2s {
			if supercell.Symbols[i] != supercell.Symbols[rep] {
				continue
			}
			same := true
			for a := 0; a < 3; a++ {
				if !nearInt(pfrac[i][a]-pfrac[rep][a], symprec) {
					same = false
					break
				}
			}
			if same {
				found = pi
				break
			}
		}
		if found < 0 {
			found = len(p2s)
			p2s = append(p2s, i)
		}
		s2p[i] = found
	}
	if len(p2s) != nprim {
		return nil, fmt.Errorf("expected %d primitive atoms, found %d",
			nprim, len(p2s))
	}

	positions := make([][3]float64, nprim)
	symbols := make([]string, nprim)
	masses := make([]float64, nprim)
	for pi, rep := range p2s {
		for a := 0; a < 3; a++ {
			positions[pi][a] = wrapFrac(pfrac[rep][a])
		}
		symbols[pi] = supercell.Symbols[rep]
		masses[pi] = supercell.Masses[rep]
	}
	pcell := &Cell{
		Lattice:   mat3FromDense(&pl),
		Positions: positions,
		Symbols:   symbols,
		Masses:    masses,
	}
	return &Primitive{
		Cell:      pcell,
		Supercell: supercell,
		P2S:       p2s,
		S2P:       s2p,
		symprec:   symprec,
	}, nil
}

// NumAtoms returns the number of atoms in the primitive cell
func (p *Primitive) NumAtoms() int { return len(p.P2S) }

// translationPermutation returns the permutation of supercell atoms
// under the primitive lattice translation that carries the
// representative of atom i onto atom i: perm[j] is the atom found at
// the position of j shifted by that translation.
func (p *Primitive) translationPermutation(i int) ([]int, error) {
	rep := p.P2S[p.S2P[i]]
	n := p.Supercell.NumAtoms()
	var inv mat.Dense
	if err := inv.Inverse(denseFrom3x3(p.Supercell.Lattice)); err != nil {
		return nil, err
	}
	cart := p.Supercell.CartesianPositions()
	var t [3]float64
	for a := 0; a < 3; a++ {
		x := 0.0
		for b := 0; b < 3; b++ {
			x += (cart[i][b] - cart[rep][b]) * inv.At(b, a)
		}
		t[a] = x
	}
	perm := make([]int, n)
	for j := 0; j < n; j++ {
		target := [3]float64{
			p.Supercell.Positions[j][0] + t[0],
			p.Supercell.Positions[j][1] + t[1],
			p.Supercell.Positions[j][2] + t[2],
		}
		found := -1
		for k := 0; k < n; k++ {
			same := true
			for a := 0; a < 3; a++ {
				if !nearInt(p.Supercell.Positions[k][a]-target[a], p.symprec) {
					same = false
					break
				}
			}
			if same {
				found = k
				break
			}
		}
		if found < 0 {
			return nil, fmt.Errorf(
				"translation of atom %d does not map atom %d onto a lattice site",
				i, j)
		}
		perm[j] = found
	}
	return perm, nil
}
