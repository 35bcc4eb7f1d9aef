package phonon

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestCenteringPrimitiveMatrix(t *testing.T) {
	tests := []struct {
		letter string
		det    float64
	}{
		{"P", 1},
		{"F", 0.25},
		{"I", 0.5},
		{"A", 0.5},
		{"C", 0.5},
		{"R", 1. / 3},
	}
	for _, test := range tests {
		pm, err := CenteringPrimitiveMatrix(test.letter)
		if err != nil {
			t.Fatalf("%s: %v", test.letter, err)
		}
		c, err := pm.Canonicalize()
		if err != nil {
			t.Fatalf("%s: %v", test.letter, err)
		}
		got := mat.Det(denseFrom3x3(c.matrix))
		if math.Abs(got-test.det) > 1e-10 {
			t.Errorf("%s: got determinant %f, wanted %f", test.letter, got, test.det)
		}
	}
	if _, err := CenteringPrimitiveMatrix("Q"); err == nil {
		t.Error("expected an error for centering Q")
	}
}

func TestCanonicalize(t *testing.T) {
	// the zero value defers to automatic detection
	var zero PrimitiveMatrix
	c, err := zero.Canonicalize()
	if err != nil {
		t.Fatal(err)
	}
	if !c.IsAuto() {
		t.Error("zero value did not canonicalize to auto")
	}
	// the explicit identity keeps the unit cell
	id, err := IdentityPrimitiveMatrix().Canonicalize()
	if err != nil {
		t.Fatal(err)
	}
	if got := mat.Det(denseFrom3x3(id.matrix)); math.Abs(got-1) > 1e-10 {
		t.Errorf("identity: got determinant %f, wanted 1", got)
	}
	// an enlarging matrix is rejected
	big := NewPrimitiveMatrix([3][3]float64{{2, 0, 0}, {0, 1, 0}, {0, 0, 1}})
	if _, err := big.Canonicalize(); err == nil {
		t.Error("expected an error for determinant 2")
	}
	// auto passes through
	if c, err := AutoPrimitiveMatrix().Canonicalize(); err != nil || !c.IsAuto() {
		t.Errorf("auto did not survive canonicalization: %v", err)
	}
}

func TestGuessPrimitiveMatrix(t *testing.T) {
	cell, err := readPOSCAR("testfiles/POSCAR_fcc")
	if err != nil {
		t.Fatal(err)
	}
	pm, err := AutoPrimitiveMatrix().Resolve(cell, 1e-5)
	if err != nil {
		t.Fatal(err)
	}
	got := mat.Det(denseFrom3x3(pm))
	if math.Abs(got-0.25) > 1e-8 {
		t.Errorf("got volume ratio %f, wanted 0.25", got)
	}
}

func TestGuessPrimitiveMatrixNoTranslations(t *testing.T) {
	cell := csclCell(t)
	pm, err := AutoPrimitiveMatrix().Resolve(cell, 1e-5)
	if err != nil {
		t.Fatal(err)
	}
	got := mat.Det(denseFrom3x3(pm))
	if math.Abs(got-1) > 1e-8 {
		t.Errorf("got volume ratio %f, wanted 1", got)
	}
}
