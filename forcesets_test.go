package phonon

import (
	"testing"
)

func TestParseForceSets(t *testing.T) {
	ds, err := ParseForceSets(2, "testfiles/FORCE_SETS")
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.FirstAtoms) != 2 {
		t.Fatalf("got %d displacements, wanted 2", len(ds.FirstAtoms))
	}
	fa := ds.FirstAtoms[0]
	if fa.Number != 1 {
		t.Errorf("got displaced atom %d, wanted 1", fa.Number)
	}
	if fa.Displacement != [3]float64{0.01, 0, 0} {
		t.Errorf("got displacement %v, wanted [0.01 0 0]", fa.Displacement)
	}
	if fa.Forces[0] != [3]float64{-0.1, 0, 0} {
		t.Errorf("got force %v, wanted [-0.1 0 0]", fa.Forces[0])
	}
	if !ds.HasDisplacements() || !ds.HasForces() {
		t.Error("dataset should have displacements and forces")
	}
}

func TestParseForceSetsAtomMismatch(t *testing.T) {
	if _, err := ParseForceSets(3, "testfiles/FORCE_SETS"); err == nil {
		t.Error("expected an atom count mismatch error")
	}
}

func TestDatasetShapes(t *testing.T) {
	empty := &Dataset{NumAtoms: 2}
	if empty.HasDisplacements() || empty.HasForces() {
		t.Error("empty dataset should have neither displacements nor forces")
	}
	dispOnly := &Dataset{
		NumAtoms:   2,
		FirstAtoms: []FirstAtom{{Number: 1, Displacement: [3]float64{0.01, 0, 0}}},
	}
	if !dispOnly.HasDisplacements() {
		t.Error("dataset should have displacements")
	}
	if dispOnly.HasForces() {
		t.Error("dataset without force rows should not have forces")
	}
	snapshots := &Dataset{
		NumAtoms:      2,
		Displacements: [][][3]float64{{{0.01, 0, 0}, {0, 0, 0}}},
		Forces:        [][][3]float64{{{-0.1, 0, 0}, {0.1, 0, 0}}},
	}
	if !snapshots.HasDisplacements() || !snapshots.HasForces() {
		t.Error("snapshot dataset should have displacements and forces")
	}
}
