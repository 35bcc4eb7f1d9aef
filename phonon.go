package phonon

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Phonon is the mutable phonon calculation object the loader
// populates: the resolved structures plus whatever displacement data,
// force constants, and NAC parameters were found.
type Phonon struct {
	Unitcell        *Cell
	Supercell       *Cell
	Primitive       *Primitive
	SupercellMatrix [3][3]int
	Calculator      string
	Symprec         float64

	Dataset        *Dataset
	MLPDataset     *Dataset
	ForceConstants *ForceConstants
	NACParams      *NACParams
}

// NewPhonon builds the supercell and primitive cell for unitcell and
// returns the phonon object ready to receive force data. An Auto
// primitive matrix is resolved here by the translation search.
func NewPhonon(unitcell *Cell, smat [3][3]int, pmat PrimitiveMatrix, calculator string, symprec float64) (*Phonon, error) {
	if symprec <= 0 {
		symprec = defaultSymprec
	}
	if smat == ([3][3]int{}) {
		smat = identityIntMat()
	}
	scell, err := NewSupercell(unitcell, smat)
	if err != nil {
		return nil, err
	}
	pm, err := pmat.Resolve(unitcell, symprec)
	if err != nil {
		return nil, err
	}
	// transformation from the supercell basis to the primitive basis
	var sinv, tmat mat.Dense
	if err := sinv.Inverse(denseFromIntMat(smat)); err != nil {
		return nil, fmt.Errorf("inverting supercell matrix: %w", err)
	}
	tmat.Mul(&sinv, denseFrom3x3(pm))
	prim, err := NewPrimitive(scell, &tmat, symprec)
	if err != nil {
		return nil, err
	}
	return &Phonon{
		Unitcell:        unitcell,
		Supercell:       scell,
		Primitive:       prim,
		SupercellMatrix: smat,
		Calculator:      calculator,
		Symprec:         symprec,
	}, nil
}

// Forces reports whether the attached dataset carries forces
func (p *Phonon) Forces() bool {
	return p.Dataset != nil && p.Dataset.HasForces()
}

// ProduceForceConstants computes force constants from the attached
// dataset by the direct method: for each displaced atom the
// displacement set is pseudo-inverted and applied to the negated
// forces, giving one row block of the compact tensor. fullFC selects
// the full layout of the result. A dataset without forces yields
// ErrForcesetsNotFound.
func (p *Phonon) ProduceForceConstants(fullFC bool, fcCalculator, fcCalculatorOptions string) error {
	if fcCalculator != "" {
		return fmt.Errorf("%w: external force constants calculator %q (options %q)",
			ErrUnsupportedCalculator, fcCalculator, fcCalculatorOptions)
	}
	d := p.Dataset
	if d == nil || !d.HasDisplacements() || !d.HasForces() {
		return ErrForcesetsNotFound
	}
	if len(d.FirstAtoms) == 0 {
		return fmt.Errorf("snapshot datasets need an external force constants calculator")
	}
	natom := p.Supercell.NumAtoms()
	nprim := p.Primitive.NumAtoms()
	for _, fa := range d.FirstAtoms {
		if len(fa.Forces) != natom {
			return fmt.Errorf("displacement of atom %d has %d force rows, supercell has %d atoms",
				fa.Number, len(fa.Forces), natom)
		}
	}

	byAtom := make(map[int][]FirstAtom)
	for _, fa := range d.FirstAtoms {
		byAtom[fa.Number-1] = append(byAtom[fa.Number-1], fa)
	}
	fc := NewForceConstants(nprim, natom)
	filled := make([]bool, nprim)
	for atom, fas := range byAtom {
		row := -1
		for pi, rep := range p.Primitive.P2S {
			if rep == atom {
				row = pi
				break
			}
		}
		if row < 0 {
			fmt.Printf("warning: displaced atom %d is not a primitive lattice site, skipped\n",
				atom+1)
			continue
		}
		disps := mat.NewDense(len(fas), 3, nil)
		forces := mat.NewDense(len(fas), 3*natom, nil)
		for r, fa := range fas {
			for a := 0; a < 3; a++ {
				disps.Set(r, a, fa.Displacement[a])
			}
			for j := 0; j < natom; j++ {
				for b := 0; b < 3; b++ {
					forces.Set(r, 3*j+b, -fa.Forces[j][b])
				}
			}
		}
		var svd mat.SVD
		if !svd.Factorize(disps, mat.SVDThin) {
			return fmt.Errorf("SVD of displacements of atom %d failed", atom+1)
		}
		rank := svd.Rank(1e-12)
		if rank == 0 {
			return fmt.Errorf("displacements of atom %d are all zero", atom+1)
		}
		var x mat.Dense
		svd.SolveTo(&x, forces, rank)
		for j := 0; j < natom; j++ {
			for a := 0; a < 3; a++ {
				for b := 0; b < 3; b++ {
					fc.Set(row, j, a, b, x.At(a, 3*j+b))
				}
			}
		}
		filled[row] = true
	}
	for pi, ok := range filled {
		if !ok {
			fmt.Printf("warning: no displacements for primitive atom %d, its row stays zero\n",
				pi+1)
		}
	}
	if fullFC {
		full, err := CompactToFull(fc, p.Primitive)
		if err != nil {
			return err
		}
		fc = full
	}
	p.ForceConstants = fc
	return nil
}

// SymmetrizeForceConstants enforces transpose symmetry and the
// acoustic sum rule on the attached tensor. A compact tensor is
// expanded, symmetrized, and reduced back. showDrift prints the
// maximum deviations found before correction.
func (p *Phonon) SymmetrizeForceConstants(showDrift bool) error {
	if p.ForceConstants == nil {
		return fmt.Errorf("force constants are not set")
	}
	fc := p.ForceConstants
	compact := fc.IsCompact()
	if compact {
		full, err := CompactToFull(fc, p.Primitive)
		if err != nil {
			return err
		}
		fc = full
	}
	n := fc.Rows

	var driftT, driftA float64
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			for a := 0; a < 3; a++ {
				for b := 0; b < 3; b++ {
					d := math.Abs(fc.At(i, j, a, b) - fc.At(j, i, b, a))
					if d > driftT {
						driftT = d
					}
					avg := (fc.At(i, j, a, b) + fc.At(j, i, b, a)) / 2
					fc.Set(i, j, a, b, avg)
					fc.Set(j, i, b, a, avg)
				}
			}
		}
	}
	for i := 0; i < n; i++ {
		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				sum := 0.0
				for j := 0; j < n; j++ {
					sum += fc.At(i, j, a, b)
				}
				if math.Abs(sum) > driftA {
					driftA = math.Abs(sum)
				}
				fc.Set(i, i, a, b, fc.At(i, i, a, b)-sum)
			}
		}
	}
	if showDrift {
		fmt.Printf("Max drift of force constants: %f (transpose) %f (translation)\n",
			driftT, driftA)
	}

	if compact {
		reduced, err := FullToCompact(fc, p.Primitive)
		if err != nil {
			return err
		}
		fc = reduced
	}
	p.ForceConstants = fc
	return nil
}
