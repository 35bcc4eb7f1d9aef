package phonon

import (
	"errors"
	"io/fs"
	"math"
	"reflect"
	"testing"
)

func TestReadPOSCAR(t *testing.T) {
	cell, err := readPOSCAR("testfiles/POSCAR")
	if err != nil {
		t.Fatal(err)
	}
	if got := cell.NumAtoms(); got != 2 {
		t.Fatalf("got %d atoms, wanted 2", got)
	}
	want := []string{"Cs", "Cl"}
	if !reflect.DeepEqual(cell.Symbols, want) {
		t.Errorf("got symbols %v, wanted %v", cell.Symbols, want)
	}
	if got := cell.Lattice[1][1]; got != 4.0 {
		t.Errorf("got lattice element %f, wanted 4.0", got)
	}
	if got := cell.Positions[1]; got != [3]float64{0.5, 0.5, 0.5} {
		t.Errorf("got position %v, wanted [0.5 0.5 0.5]", got)
	}
}

func TestReadPOSCARCartesian(t *testing.T) {
	direct, err := readPOSCAR("testfiles/POSCAR")
	if err != nil {
		t.Fatal(err)
	}
	cart, err := readPOSCAR("testfiles/POSCAR_cart")
	if err != nil {
		t.Fatal(err)
	}
	for i := range direct.Positions {
		for a := 0; a < 3; a++ {
			if math.Abs(direct.Positions[i][a]-cart.Positions[i][a]) > 1e-10 {
				t.Errorf("atom %d axis %d: got %f, wanted %f",
					i, a, cart.Positions[i][a], direct.Positions[i][a])
			}
		}
	}
}

func TestReadPOSCARBlankComment(t *testing.T) {
	want, err := readPOSCAR("testfiles/POSCAR")
	if err != nil {
		t.Fatal(err)
	}
	got, err := readPOSCAR("testfiles/POSCAR_blank")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, wanted %+v", got, want)
	}
}

func TestReadCrystalStructureNotFound(t *testing.T) {
	_, _, err := readCrystalStructure("testfiles/no_such_file", "")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("got %v, wanted fs.ErrNotExist", err)
	}
	var sfe *StructureFormatError
	if errors.As(err, &sfe) {
		t.Error("a missing file must not become a StructureFormatError")
	}
}

func TestReadCrystalStructureGuidance(t *testing.T) {
	_, _, err := readCrystalStructure("testfiles/garbage", "")
	var sfe *StructureFormatError
	if !errors.As(err, &sfe) {
		t.Fatalf("got %v, wanted a StructureFormatError", err)
	}
	if sfe.Unwrap() == nil {
		t.Error("the parse failure was not preserved as the cause")
	}
	if errors.Is(err, fs.ErrNotExist) {
		t.Error("a parse failure must not look like a missing file")
	}
}

func TestReadCrystalStructureUnsupported(t *testing.T) {
	_, _, err := ReadCrystalStructure("testfiles/POSCAR", "molpro")
	if !errors.Is(err, ErrUnsupportedCalculator) {
		t.Errorf("got %v, wanted ErrUnsupportedCalculator", err)
	}
}
