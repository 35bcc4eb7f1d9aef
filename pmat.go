package phonon

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// centeringMatrices are the conventional-to-primitive transformations
// for the standard lattice centerings
var centeringMatrices = map[byte][3][3]float64{
	'P': {{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	'F': {{0, 0.5, 0.5}, {0.5, 0, 0.5}, {0.5, 0.5, 0}},
	'I': {{-0.5, 0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, -0.5}},
	'A': {{1, 0, 0}, {0, 0.5, -0.5}, {0, 0.5, 0.5}},
	'C': {{0.5, 0.5, 0}, {-0.5, 0.5, 0}, {0, 0, 1}},
	'R': {
		{2. / 3, -1. / 3, -1. / 3},
		{1. / 3, 1. / 3, -2. / 3},
		{1. / 3, 1. / 3, 1. / 3},
	},
}

// PrimitiveMatrix selects how the primitive cell relates to the unit
// cell: an explicit 3x3 matrix, a conventional centering letter, or
// automatic detection from the pure translations of the structure.
// The zero value defers to automatic detection.
type PrimitiveMatrix struct {
	auto   bool
	letter byte
	matrix [3][3]float64
	hasMat bool
}

// AutoPrimitiveMatrix defers the choice of primitive cell to a
// translation search against the resolved structure
func AutoPrimitiveMatrix() PrimitiveMatrix {
	return PrimitiveMatrix{auto: true}
}

// IdentityPrimitiveMatrix keeps the unit cell as the primitive cell
func IdentityPrimitiveMatrix() PrimitiveMatrix {
	return PrimitiveMatrix{matrix: centeringMatrices['P'], hasMat: true}
}

// NewPrimitiveMatrix wraps an explicit transformation matrix
func NewPrimitiveMatrix(m [3][3]float64) PrimitiveMatrix {
	return PrimitiveMatrix{matrix: m, hasMat: true}
}

// CenteringPrimitiveMatrix selects one of the standard centering
// transformations P, F, I, A, C, or R
func CenteringPrimitiveMatrix(letter string) (PrimitiveMatrix, error) {
	if len(letter) != 1 {
		return PrimitiveMatrix{}, fmt.Errorf("bad centering %q", letter)
	}
	if _, ok := centeringMatrices[letter[0]]; !ok {
		return PrimitiveMatrix{}, fmt.Errorf("bad centering %q", letter)
	}
	return PrimitiveMatrix{letter: letter[0]}, nil
}

// IsAuto reports whether p defers to automatic detection. The zero
// value does.
func (p PrimitiveMatrix) IsAuto() bool {
	return p.auto || (p.letter == 0 && !p.hasMat)
}

// Canonicalize maps centering letters to their matrices and validates
// an explicit matrix. Auto passes through untouched since it can only
// be resolved against a concrete structure.
func (p PrimitiveMatrix) Canonicalize() (PrimitiveMatrix, error) {
	switch {
	case p.IsAuto():
		return AutoPrimitiveMatrix(), nil
	case p.letter != 0:
		m, ok := centeringMatrices[p.letter]
		if !ok {
			return p, fmt.Errorf("bad centering %q", string(p.letter))
		}
		return NewPrimitiveMatrix(m), nil
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.IsNaN(p.matrix[i][j]) || math.IsInf(p.matrix[i][j], 0) {
				return p, fmt.Errorf("primitive matrix element (%d,%d) is not finite", i, j)
			}
		}
	}
	det := mat.Det(denseFrom3x3(p.matrix))
	if det < 1e-8 {
		return p, fmt.Errorf("primitive matrix determinant must be positive, got %f", det)
	}
	if det > 1+1e-8 {
		return p, fmt.Errorf("primitive matrix must not enlarge the cell, determinant is %f", det)
	}
	return p, nil
}

// Resolve returns the concrete transformation matrix for cell,
// running the translation search when p is Auto
func (p PrimitiveMatrix) Resolve(cell *Cell, symprec float64) ([3][3]float64, error) {
	c, err := p.Canonicalize()
	if err != nil {
		return [3][3]float64{}, err
	}
	if !c.auto {
		return c.matrix, nil
	}
	return guessPrimitiveMatrix(cell, symprec)
}

// guessPrimitiveMatrix searches the pure translations of cell and
// picks the three independent ones spanning the smallest positive
// volume. The returned matrix has the chosen translations as columns,
// so an untranslatable cell yields the identity.
func guessPrimitiveMatrix(cell *Cell, symprec float64) ([3][3]float64, error) {
	if symprec <= 0 {
		symprec = defaultSymprec
	}
	trans := pureTranslations(cell, symprec)
	candidates := append(trans,
		[3]float64{1, 0, 0}, [3]float64{0, 1, 0}, [3]float64{0, 0, 1})
	want := 1 / float64(len(trans)+1)

	best := [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	bestDet := 1.0
	for _, a := range candidates {
		for _, b := range candidates {
			for _, c := range candidates {
				m := [3][3]float64{
					{a[0], b[0], c[0]},
					{a[1], b[1], c[1]},
					{a[2], b[2], c[2]},
				}
				det := mat.Det(denseFrom3x3(m))
				if det < symprec {
					continue
				}
				if det < bestDet-symprec {
					bestDet = det
					best = m
				}
			}
		}
	}
	if math.Abs(bestDet-want) > symprec {
		return best, fmt.Errorf(
			"translation search found volume ratio %f, expected %f",
			bestDet, want)
	}
	return best, nil
}

// pureTranslations returns the non-zero fractional translations that
// map the structure onto itself
func pureTranslations(cell *Cell, symprec float64) [][3]float64 {
	n := cell.NumAtoms()
	if n == 0 {
		return nil
	}
	var trans [][3]float64
	for i := 1; i < n; i++ {
		if cell.Symbols[i] != cell.Symbols[0] {
			continue
		}
		var t [3]float64
		for a := 0; a < 3; a++ {
			t[a] = cell.Positions[i][a] - cell.Positions[0][a]
		}
		if translationMapsCell(cell, t, symprec) {
			trans = append(trans, t)
		}
	}
	return trans
}

func translationMapsCell(cell *Cell, t [3]float64, symprec float64) bool {
	n := cell.NumAtoms()
	for j := 0; j < n; j++ {
		target := [3]float64{
			cell.Positions[j][0] + t[0],
			cell.Positions[j][1] + t[1],
			cell.Positions[j][2] + t[2],
		}
		found := false
		for k := 0; k < n; k++ {
			if cell.Symbols[k] != cell.Symbols[j] {
				continue
			}
			same := true
			for a := 0; a < 3; a++ {
				if !nearInt(cell.Positions[k][a]-target[a], symprec) {
					same = false
					break
				}
			}
			if same {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
